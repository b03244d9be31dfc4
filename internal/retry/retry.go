// Package retry runs an operation under a bounded exponential backoff policy.
package retry

import (
	"context"
	"math/rand/v2"
	"time"
)

// Policy bounds how often and how patiently an operation is retried.
type Policy struct {
	// MaxAttempts is the total number of calls, including the first.
	MaxAttempts int
	// BaseDelay is the wait after the first failure; it doubles per attempt.
	BaseDelay time.Duration
	// MaxJitter is the exclusive upper bound of the random delay added to each wait.
	MaxJitter time.Duration
	// Retryable reports whether a failed call may be attempted again.
	// A nil Retryable retries every error.
	Retryable func(error) bool
}

// DefaultPolicy is three attempts with a 2s base delay and up to 1s of jitter.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   2 * time.Second,
		MaxJitter:   time.Second,
	}
}

// Backoff is the wait before attempt k+1 (k is 0-indexed), without jitter.
func (p Policy) Backoff(k int) time.Duration {
	return p.BaseDelay << uint(k)
}

// Retrier executes operations under a Policy. Sleep and Jitter are injectable
// so tests can observe delays without waiting.
type Retrier struct {
	Policy Policy
	Sleep  func(ctx context.Context, d time.Duration) error
	Jitter func(max time.Duration) time.Duration
	// OnRetry is called before each wait with the 1-based attempt that failed.
	OnRetry func(attempt int, err error, wait time.Duration)
}

// New returns a Retrier that sleeps on the wall clock.
func New(p Policy) *Retrier {
	return &Retrier{Policy: p}
}

// Do calls fn until it succeeds, returns a non-retryable error, the attempts
// are exhausted or ctx is done. It returns the number of calls made and the
// last error seen.
func (r *Retrier) Do(ctx context.Context, fn func(ctx context.Context) error) (int, error) {
	maxAttempts := r.Policy.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if cerr := ctx.Err(); cerr != nil {
			if err != nil {
				return attempt, err
			}
			return attempt, cerr
		}

		err = fn(ctx)
		if err == nil {
			return attempt + 1, nil
		}
		if r.Policy.Retryable != nil && !r.Policy.Retryable(err) {
			return attempt + 1, err
		}
		if attempt == maxAttempts-1 {
			break
		}

		wait := r.Policy.Backoff(attempt) + r.jitter()
		if r.OnRetry != nil {
			r.OnRetry(attempt+1, err, wait)
		}
		if serr := r.sleep(ctx, wait); serr != nil {
			return attempt + 1, err
		}
	}
	return maxAttempts, err
}

func (r *Retrier) jitter() time.Duration {
	if r.Policy.MaxJitter <= 0 {
		return 0
	}
	if r.Jitter != nil {
		return r.Jitter(r.Policy.MaxJitter)
	}
	return rand.N(r.Policy.MaxJitter)
}

func (r *Retrier) sleep(ctx context.Context, d time.Duration) error {
	if r.Sleep != nil {
		return r.Sleep(ctx, d)
	}
	return Sleep(ctx, d)
}

// Sleep waits for d or until ctx is done, whichever comes first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
