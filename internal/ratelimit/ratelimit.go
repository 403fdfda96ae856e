package ratelimit

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Limiter enforces a minimum interval between outbound requests to a
// marketplace. Wait blocks until the next request is allowed or the
// context is cancelled.
type Limiter interface {
	Wait(ctx context.Context) error
	SetDelay(min, max time.Duration)
}

// IntervalLimiter spaces requests by a randomized delay between minDelay
// and maxDelay. Jitter keeps the request pattern from looking mechanical.
type IntervalLimiter struct {
	minDelay   time.Duration
	maxDelay   time.Duration
	lastAction time.Time
	mu         sync.Mutex
}

func NewIntervalLimiter(minDelay, maxDelay time.Duration) *IntervalLimiter {
	if maxDelay < minDelay {
		maxDelay = minDelay
	}
	return &IntervalLimiter{minDelay: minDelay, maxDelay: maxDelay}
}

func (l *IntervalLimiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	elapsed := time.Since(l.lastAction)
	delay := l.nextDelay()

	if elapsed < delay {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay - elapsed):
		}
	}

	l.lastAction = time.Now()
	return nil
}

func (l *IntervalLimiter) SetDelay(min, max time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.minDelay = min
	l.maxDelay = max
	if l.maxDelay < l.minDelay {
		l.maxDelay = l.minDelay
	}
}

func (l *IntervalLimiter) nextDelay() time.Duration {
	if l.maxDelay <= l.minDelay {
		return l.minDelay
	}
	jitter := time.Duration(rand.Int63n(int64(l.maxDelay - l.minDelay)))
	return l.minDelay + jitter
}

// BackoffLimiter wraps an IntervalLimiter and widens the interval after
// consecutive errors, recovering slowly on success. Marketplaces throttle
// aggressively; backing off early is cheaper than getting blocked.
type BackoffLimiter struct {
	*IntervalLimiter
	errorStreak   int
	successStreak int
	errorLimit    int
	factor        float64
	ceiling       time.Duration
}

func NewBackoffLimiter(minDelay, maxDelay time.Duration) *BackoffLimiter {
	return &BackoffLimiter{
		IntervalLimiter: NewIntervalLimiter(minDelay, maxDelay),
		errorLimit:      3,
		factor:          1.5,
		ceiling:         2 * time.Minute,
	}
}

func (b *BackoffLimiter) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.successStreak++
	b.errorStreak = 0

	if b.successStreak > 5 {
		recovered := time.Duration(float64(b.minDelay) * 0.9)
		if recovered < time.Second {
			recovered = time.Second
		}
		b.minDelay = recovered
		b.successStreak = 0
	}
}

func (b *BackoffLimiter) RecordError() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.errorStreak++
	b.successStreak = 0

	if b.errorStreak >= b.errorLimit {
		b.minDelay = capDuration(time.Duration(float64(b.minDelay)*b.factor), b.ceiling)
		b.maxDelay = capDuration(time.Duration(float64(b.maxDelay)*b.factor), b.ceiling)
		b.errorStreak = 0
	}
}

func capDuration(d, ceiling time.Duration) time.Duration {
	if d > ceiling {
		return ceiling
	}
	return d
}
