package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"interview-agent/internal/config"
)

var (
	// ErrInvokeTimeout is returned when the remote call exceeded its
	// deadline on every attempt.
	ErrInvokeTimeout = errors.New("llm invocation timed out")
	// ErrInvocationFailed is returned when the remote call errored on every
	// attempt. It wraps the last underlying error.
	ErrInvocationFailed = errors.New("llm invocation failed")
)

// Invoker wraps a CompletionClient with a hard wait timeout and bounded
// retry with exponential backoff. The timeout bounds how long a caller
// waits, not how long the worker runs: a timed-out call is detached and its
// eventual result is discarded, never returned to a later caller.
type Invoker struct {
	client  CompletionClient
	timeout time.Duration
	retries int
	backoff float64
	sleep   func(time.Duration)
	logger  *zap.Logger
}

func NewInvoker(client CompletionClient, cfg *config.LLMConfig, logger *zap.Logger) *Invoker {
	timeout := cfg.InvokeTimeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	retries := cfg.InvokeRetries
	if retries < 0 {
		retries = 0
	}
	backoff := cfg.BackoffFactor
	if backoff < 1.0 {
		backoff = 1.0
	}
	return &Invoker{
		client:  client,
		timeout: timeout,
		retries: retries,
		backoff: backoff,
		sleep:   time.Sleep,
		logger:  logger,
	}
}

type invokeResult struct {
	text string
	err  error
}

// Invoke runs the completion call, waiting at most the configured timeout
// per attempt and retrying up to the configured number of times. Between
// attempt n and n+1 it sleeps backoff^(n-1) seconds, n starting at 1.
func (inv *Invoker) Invoke(ctx context.Context, prompt string) (string, error) {
	attempts := 1 + inv.retries
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			delay := time.Duration(math.Pow(inv.backoff, float64(attempt-2)) * float64(time.Second))
			inv.logger.Warn("retrying llm invocation",
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", attempts),
				zap.Duration("backoff", delay),
				zap.Error(lastErr))
			inv.sleep(delay)
		}

		text, err := inv.invokeOnce(ctx, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err
	}

	if errors.Is(lastErr, ErrInvokeTimeout) {
		return "", fmt.Errorf("%w after %s (attempts=%d)", ErrInvokeTimeout, inv.timeout, attempts)
	}
	return "", fmt.Errorf("%w after %d attempts: %w", ErrInvocationFailed, attempts, lastErr)
}

func (inv *Invoker) invokeOnce(ctx context.Context, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, inv.timeout)
	defer cancel()

	done := make(chan invokeResult, 1)
	go func() {
		text, err := inv.client.Complete(callCtx, prompt)
		// Buffered channel: if the caller already gave up, this send does
		// not block and the detached worker exits cleanly.
		done <- invokeResult{text: text, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil && errors.Is(res.err, context.DeadlineExceeded) {
			return "", ErrInvokeTimeout
		}
		return res.text, res.err
	case <-callCtx.Done():
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return "", ErrInvokeTimeout
		}
		return "", callCtx.Err()
	}
}
