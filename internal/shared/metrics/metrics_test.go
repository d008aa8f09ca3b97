package metrics

import (
	"strings"
	"testing"
)

func TestRenderExposesAllSeries(t *testing.T) {
	IncChatStreamStarted()
	IncChatStreamFinished()
	IncToolCalls(3)
	IncDocumentMutations()
	IncUpdatesDropped()
	IncUpdatesDeduped()
	ObserveChatStreamDurationMs(750)

	out := Render()
	for _, name := range []string{
		"chat_streams_started_total",
		"chat_streams_finished_total",
		"chat_streams_failed_total",
		"tool_calls_total",
		"document_mutations_total",
		"updates_dropped_total",
		"updates_deduped_total",
		"chat_stream_duration_ms_bucket",
		"chat_stream_duration_ms_sum",
		"chat_stream_duration_ms_count",
	} {
		if !strings.Contains(out, name) {
			t.Fatalf("expected %s in render output:\n%s", name, out)
		}
	}
	if !strings.Contains(out, "# TYPE chat_stream_duration_ms histogram") {
		t.Fatalf("expected histogram type line")
	}
}

func TestHistogramBucketsAreCumulative(t *testing.T) {
	h := newHistogram([]float64{10, 100, 1000})
	h.Observe(5)
	h.Observe(50)
	h.Observe(5000)

	snap := h.Snapshot()
	if snap.count != 3 {
		t.Fatalf("expected count 3, got %d", snap.count)
	}
	// Per-bucket counts: one under 10, one under 100, one over the top bound.
	if snap.counts[0] != 1 || snap.counts[1] != 1 || snap.counts[2] != 0 {
		t.Fatalf("unexpected bucket counts: %v", snap.counts)
	}
}
