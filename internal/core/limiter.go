package core

// limiter.go bounds how many exports and imports run at once.
//
// Every conversion holds a whole workbook in memory, so the service admits at
// most maxConcurrent of them. Callers that cannot get a slot within maxWait
// fail with ErrTooManyConversions. Drain blocks until in-flight conversions
// finish and is used during shutdown.

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTooManyConversions is returned when no slot frees up within the wait
// time. Clients should retry after a short delay.
var ErrTooManyConversions = errors.New("too many conversions in progress, please try again later")

const (
	DefaultMaxConcurrent = 4
	DefaultMaxWait       = 30 * time.Second
)

// Limiter is a counting semaphore for conversions.
type Limiter struct {
	slots   chan struct{}
	maxWait time.Duration

	mu     sync.Mutex
	active int
	total  int64
}

// NewLimiter admits at most maxConcurrent conversions; callers wait up to
// maxWait for a slot. Non-positive values select the defaults.
func NewLimiter(maxConcurrent int, maxWait time.Duration) *Limiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWait
	}
	return &Limiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
	}
}

// Acquire takes a slot. The caller must Release it exactly once.
func (l *Limiter) Acquire(ctx context.Context) error {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.total++
		l.mu.Unlock()
		return nil
	case <-timer.C:
		return ErrTooManyConversions
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release returns a slot taken by Acquire.
func (l *Limiter) Release() {
	l.mu.Lock()
	l.active--
	l.mu.Unlock()
	<-l.slots
}

// Do runs fn while holding a slot.
func (l *Limiter) Do(ctx context.Context, fn func() error) error {
	if err := l.Acquire(ctx); err != nil {
		return err
	}
	defer l.Release()
	return fn()
}

// Drain blocks until no conversion is active or ctx is done.
func (l *Limiter) Drain(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		if l.Status().Active == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// LimiterStatus is a snapshot of a Limiter.
type LimiterStatus struct {
	Active        int   `json:"active"`
	Available     int   `json:"available"`
	MaxConcurrent int   `json:"max_concurrent"`
	Started       int64 `json:"started"`
}

// Status returns the current state for health checks.
func (l *Limiter) Status() LimiterStatus {
	l.mu.Lock()
	defer l.mu.Unlock()
	return LimiterStatus{
		Active:        l.active,
		Available:     cap(l.slots) - l.active,
		MaxConcurrent: cap(l.slots),
		Started:       l.total,
	}
}
