package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestTokenBucketLimiter(t *testing.T) {
	ctx := context.Background()
	c := &clock{t: time.Unix(0, 0)}
	l := newTokenBucketLimiter(2, time.Second, c.now)

	for i := 0; i < 2; i++ {
		ok, _ := l.Allow(ctx, "a")
		assert.True(t, ok)
	}
	ok, _ := l.Allow(ctx, "a")
	assert.False(t, ok, "bucket exhausted")

	ok, _ = l.Allow(ctx, "b")
	assert.True(t, ok, "keys are independent")

	c.advance(1500 * time.Millisecond)
	ok, _ = l.Allow(ctx, "a")
	assert.True(t, ok)
	ok, _ = l.Allow(ctx, "a")
	assert.False(t, ok)

	c.advance(500 * time.Millisecond)
	ok, _ = l.Allow(ctx, "a")
	assert.True(t, ok, "partial refill time is kept")
}

func TestTokenBucketLimiter_ResetAndEvict(t *testing.T) {
	ctx := context.Background()
	c := &clock{t: time.Unix(0, 0)}
	l := newTokenBucketLimiter(1, time.Minute, c.now)

	_, _ = l.Allow(ctx, "a")
	ok, _ := l.Allow(ctx, "a")
	assert.False(t, ok)

	assert.NoError(t, l.Reset(ctx, "a"))
	ok, _ = l.Allow(ctx, "a")
	assert.True(t, ok)

	c.advance(2 * time.Hour)
	l.evictIdle()
	assert.Empty(t, l.buckets)
}
