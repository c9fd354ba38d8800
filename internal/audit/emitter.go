package audit

import (
	"context"
	"fmt"
	"time"
)

// SinkWriteError reports that the sink kept failing after all retry
// attempts. The caller decides whether it is fatal or log-and-continue.
type SinkWriteError struct {
	Attempts int
	Last     error
}

func (e *SinkWriteError) Error() string {
	return fmt.Sprintf("audit sink write failed after %d attempts: %v", e.Attempts, e.Last)
}

func (e *SinkWriteError) Unwrap() error { return e.Last }

// Emitter hands change documents to the sink, retrying transient write
// failures a bounded number of times with exponential backoff.
type Emitter struct {
	Sink         Sink
	MaxAttempts  int
	InitialDelay time.Duration
}

// NewEmitter returns an emitter with the default retry policy.
func NewEmitter(sink Sink) *Emitter {
	return &Emitter{Sink: sink, MaxAttempts: 3, InitialDelay: time.Second}
}

// Emit writes one document, retrying on failure. It returns a
// *SinkWriteError once retries are exhausted, or the context error if the
// caller cancels while backing off.
func (e *Emitter) Emit(ctx context.Context, doc Document) error {
	attempts := e.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	delay := e.InitialDelay
	var last error
	for i := 1; i <= attempts; i++ {
		if last = e.Sink.Write(ctx, doc); last == nil {
			return nil
		}
		if i == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return &SinkWriteError{Attempts: attempts, Last: last}
}
