package llm

import (
	"context"
	"errors"
	"testing"
)

// flakyClient fails the first n steps, then answers.
type flakyClient struct {
	failures int
	err      error
	calls    int
}

func (c *flakyClient) Step(ctx context.Context, req StepRequest) (StepResult, error) {
	c.calls++
	if c.calls <= c.failures {
		return StepResult{}, c.err
	}
	return StepResult{Content: "recovered"}, nil
}

func TestWithRetrySurvivesOneTransientFailure(t *testing.T) {
	base := &flakyClient{failures: 1, err: errors.New("read tcp: connection reset by peer")}
	client := WithRetry(base, "req-1", "res-1")

	res, err := client.Step(context.Background(), StepRequest{})
	if err != nil {
		t.Fatalf("expected the retry to recover, got %v", err)
	}
	if res.Content != "recovered" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if base.calls != 2 {
		t.Fatalf("expected 2 attempts, got %d", base.calls)
	}
}

func TestWithRetryDoesNotMaskPersistentFailure(t *testing.T) {
	base := &flakyClient{failures: 3, err: errors.New("openai: http status 503: server_error")}
	client := WithRetry(base, "req-1", "res-1")

	if _, err := client.Step(context.Background(), StepRequest{}); err == nil {
		t.Fatalf("expected the second failure to surface")
	}
	if base.calls != 2 {
		t.Fatalf("expected exactly one retry, got %d attempts", base.calls)
	}
}

func TestWithRetrySkipsNonTransientErrors(t *testing.T) {
	base := &flakyClient{failures: 1, err: errors.New("openai: http status 400: invalid_request_error")}
	client := WithRetry(base, "req-1", "res-1")

	if _, err := client.Step(context.Background(), StepRequest{}); err == nil {
		t.Fatalf("expected provider rejection to surface immediately")
	}
	if base.calls != 1 {
		t.Fatalf("expected a single attempt, got %d", base.calls)
	}
}

func TestWithRetrySkipsPlaceholder(t *testing.T) {
	base := &flakyClient{failures: 1, err: ErrNotConfigured}
	client := WithRetry(base, "req-1", "res-1")

	if _, err := client.Step(context.Background(), StepRequest{}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if base.calls != 1 {
		t.Fatalf("expected a single attempt, got %d", base.calls)
	}
}

func TestWithRetryHonorsCancellation(t *testing.T) {
	base := &flakyClient{failures: 2, err: errors.New("tls handshake timeout")}
	client := WithRetry(base, "req-1", "res-1")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := client.Step(ctx, StepRequest{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation during backoff, got %v", err)
	}
	if base.calls != 1 {
		t.Fatalf("expected no retry after cancellation, got %d attempts", base.calls)
	}
}

func TestShouldRetryClassification(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"deadline", context.DeadlineExceeded, true},
		{"5xx", errors.New("openai: http status 502"), true},
		{"server error", errors.New("server_error: overloaded"), true},
		{"connection reset", errors.New("read: connection reset by peer"), true},
		{"broken pipe", errors.New("write: broken pipe"), true},
		{"client timeout", errors.New("Client.Timeout exceeded while awaiting headers"), true},
		{"bad request", errors.New("openai: http status 400: invalid_request_error"), false},
		{"auth", errors.New("openai: http status 401: invalid api key"), false},
		{"not configured", ErrNotConfigured, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := shouldRetry(tc.err); got != tc.want {
				t.Fatalf("shouldRetry(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}
