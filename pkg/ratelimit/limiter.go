// Package ratelimit provides per-key request limiting.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter decides whether the caller identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Reset(ctx context.Context, key string) error
}

// TokenBucketLimiter implements token bucket rate limiting. Each key starts
// with maxTokens and regains one token every refillRate.
type TokenBucketLimiter struct {
	mu         sync.Mutex
	buckets    map[string]*bucket
	maxTokens  int
	refillRate time.Duration
	idleTTL    time.Duration
	now        func() time.Time
	stop       chan struct{}
	stopOnce   sync.Once
}

type bucket struct {
	tokens     int
	lastRefill time.Time
}

// NewTokenBucketLimiter creates a new token bucket rate limiter. Call Stop to
// end its cleanup goroutine.
func NewTokenBucketLimiter(maxTokens int, refillRate time.Duration) *TokenBucketLimiter {
	l := newTokenBucketLimiter(maxTokens, refillRate, time.Now)
	go l.cleanup(5 * time.Minute)
	return l
}

// NewPerMinute allows requestsPerMinute requests per key with bursts of the
// same size.
func NewPerMinute(requestsPerMinute int) *TokenBucketLimiter {
	return NewTokenBucketLimiter(requestsPerMinute, time.Minute/time.Duration(requestsPerMinute))
}

func newTokenBucketLimiter(maxTokens int, refillRate time.Duration, now func() time.Time) *TokenBucketLimiter {
	return &TokenBucketLimiter{
		buckets:    make(map[string]*bucket),
		maxTokens:  maxTokens,
		refillRate: refillRate,
		idleTTL:    time.Hour,
		now:        now,
		stop:       make(chan struct{}),
	}
}

// Allow takes a token for key if one is left.
func (l *TokenBucketLimiter) Allow(ctx context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, exists := l.buckets[key]
	if !exists {
		b = &bucket{tokens: l.maxTokens, lastRefill: now}
		l.buckets[key] = b
	}

	if refill := int(now.Sub(b.lastRefill) / l.refillRate); refill > 0 {
		b.tokens = min(b.tokens+refill, l.maxTokens)
		b.lastRefill = b.lastRefill.Add(time.Duration(refill) * l.refillRate)
	}

	if b.tokens > 0 {
		b.tokens--
		return true, nil
	}
	return false, nil
}

// Reset resets the rate limit for a key
func (l *TokenBucketLimiter) Reset(ctx context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.buckets, key)
	return nil
}

// Stop ends the cleanup goroutine.
func (l *TokenBucketLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

// cleanup removes idle buckets periodically
func (l *TokenBucketLimiter) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.evictIdle()
		}
	}
}

func (l *TokenBucketLimiter) evictIdle() {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	for key, b := range l.buckets {
		if now.Sub(b.lastRefill) > l.idleTTL {
			delete(l.buckets, key)
		}
	}
}
