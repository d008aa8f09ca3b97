package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	chatStreamsStartedTotal  atomic.Uint64
	chatStreamsFinishedTotal atomic.Uint64
	chatStreamsFailedTotal   atomic.Uint64
	toolCallsTotal           atomic.Uint64
	documentMutationsTotal   atomic.Uint64
	updatesDroppedTotal      atomic.Uint64
	updatesDedupedTotal      atomic.Uint64

	chatStreamDuration = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000})
)

// IncChatStreamStarted increments the started counter.
func IncChatStreamStarted() {
	chatStreamsStartedTotal.Add(1)
}

// IncChatStreamFinished increments the finished counter.
func IncChatStreamFinished() {
	chatStreamsFinishedTotal.Add(1)
}

// IncChatStreamFailed increments the failed counter.
func IncChatStreamFailed() {
	chatStreamsFailedTotal.Add(1)
}

// IncToolCalls adds n to the tool-call counter.
func IncToolCalls(n int) {
	if n > 0 {
		toolCallsTotal.Add(uint64(n))
	}
}

// IncDocumentMutations increments the persisted-mutation counter.
func IncDocumentMutations() {
	documentMutationsTotal.Add(1)
}

// IncUpdatesDropped increments the dropped-update counter.
func IncUpdatesDropped() {
	updatesDroppedTotal.Add(1)
}

// IncUpdatesDeduped increments the deduplicated-update counter.
func IncUpdatesDeduped() {
	updatesDedupedTotal.Add(1)
}

// ObserveChatStreamDurationMs records a chat stream duration in milliseconds.
func ObserveChatStreamDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	chatStreamDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "chat_streams_started_total", "Total chat streams started", chatStreamsStartedTotal.Load())
	writeCounter(&buf, "chat_streams_finished_total", "Total chat streams finished", chatStreamsFinishedTotal.Load())
	writeCounter(&buf, "chat_streams_failed_total", "Total chat streams failed", chatStreamsFailedTotal.Load())
	writeCounter(&buf, "tool_calls_total", "Total agent tool calls executed", toolCallsTotal.Load())
	writeCounter(&buf, "document_mutations_total", "Total document mutations persisted", documentMutationsTotal.Load())
	writeCounter(&buf, "updates_dropped_total", "Total update events dropped on slow subscribers", updatesDroppedTotal.Load())
	writeCounter(&buf, "updates_deduped_total", "Total update events discarded as structurally identical", updatesDedupedTotal.Load())
	writeHistogram(&buf, "chat_stream_duration_ms", "Chat stream duration in milliseconds", chatStreamDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			break
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
