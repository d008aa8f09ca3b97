package llm

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"resume-studio-backend/internal/shared/telemetry"
)

const retryBaseDelay = 300 * time.Millisecond

type retryingClient struct {
	base      Client
	requestID string
	docID     string
}

// WithRetry wraps a client so one transient step failure is retried after a
// short delay. Only network-shaped and 5xx errors qualify; provider rejections
// surface immediately.
func WithRetry(base Client, requestID, docID string) Client {
	if base == nil {
		return nil
	}
	return retryingClient{
		base:      base,
		requestID: requestID,
		docID:     docID,
	}
}

func (r retryingClient) Step(ctx context.Context, req StepRequest) (StepResult, error) {
	res, err := r.base.Step(ctx, req)
	if err == nil || !shouldRetry(err) {
		return res, err
	}

	telemetry.Warn("llm.retry", map[string]any{
		"request_id":  r.requestID,
		"document_id": r.docID,
		"attempt":     1,
		"error":       err.Error(),
	})
	select {
	case <-time.After(retryBaseDelay):
	case <-ctx.Done():
		return StepResult{}, ctx.Err()
	}

	return r.base.Step(ctx, req)
}

func shouldRetry(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNotConfigured) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && (netErr.Timeout() || netErr.Temporary()) {
		return true
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "http status 5") || strings.Contains(msg, "server_error") {
		return true
	}
	if strings.Contains(msg, "timeout") && (strings.Contains(msg, "openai") || strings.Contains(msg, "llm") || strings.Contains(msg, "client.timeout")) {
		return true
	}
	if strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection closed") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "tls handshake timeout") ||
		strings.Contains(msg, "eof") {
		return true
	}

	return false
}
