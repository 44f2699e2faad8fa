// Package ratelimit throttles package downloads to a byte rate.
package ratelimit

import (
	"context"
	"io"
	"sync"
	"time"
)

// minBucket keeps bursts large enough for smooth network reads
const minBucket = 64 * 1024

// Limiter is a token bucket measured in bytes
type Limiter struct {
	bytesPerSecond int64

	mu         sync.Mutex
	tokens     int64
	bucketSize int64
	lastUpdate time.Time
	now        func() time.Time
}

// NewLimiter creates a limiter for bytesPerSecond. It returns nil, meaning
// unlimited, when bytesPerSecond is not positive.
func NewLimiter(bytesPerSecond int64) *Limiter {
	if bytesPerSecond <= 0 {
		return nil
	}

	bucketSize := bytesPerSecond
	if bucketSize < minBucket {
		bucketSize = minBucket
	}

	return &Limiter{
		bytesPerSecond: bytesPerSecond,
		tokens:         bucketSize,
		bucketSize:     bucketSize,
		lastUpdate:     time.Now(),
		now:            time.Now,
	}
}

// Wait blocks until n bytes may pass or ctx is done. Requests larger than
// the bucket are capped at the bucket size.
func (l *Limiter) Wait(ctx context.Context, n int64) error {
	if n > l.bucketSize {
		n = l.bucketSize
	}

	for {
		l.mu.Lock()
		l.refill()
		if l.tokens >= n {
			l.tokens -= n
			l.mu.Unlock()
			return nil
		}
		deficit := n - l.tokens
		l.mu.Unlock()

		wait := time.Duration(float64(deficit) / float64(l.bytesPerSecond) * float64(time.Second))
		if wait < time.Millisecond {
			wait = time.Millisecond
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// refill adds the tokens earned since the last update. Callers hold mu.
func (l *Limiter) refill() {
	now := l.now()
	earned := int64(now.Sub(l.lastUpdate).Seconds() * float64(l.bytesPerSecond))
	if earned <= 0 {
		return
	}
	l.tokens += earned
	if l.tokens > l.bucketSize {
		l.tokens = l.bucketSize
	}
	l.lastUpdate = now
}

// Reader throttles reads from an underlying reader
type Reader struct {
	ctx     context.Context
	reader  io.Reader
	limiter *Limiter
}

// NewReader wraps r. A nil limiter returns r unchanged.
func NewReader(ctx context.Context, r io.Reader, limiter *Limiter) io.Reader {
	if limiter == nil {
		return r
	}
	return &Reader{ctx: ctx, reader: r, limiter: limiter}
}

// Read implements io.Reader
func (r *Reader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}

	if int64(len(p)) > r.limiter.bucketSize {
		p = p[:r.limiter.bucketSize]
	}
	if err := r.limiter.Wait(r.ctx, int64(len(p))); err != nil {
		return 0, err
	}

	n, err := r.reader.Read(p)
	if n < len(p) {
		// return unused tokens
		r.limiter.mu.Lock()
		r.limiter.tokens += int64(len(p) - n)
		if r.limiter.tokens > r.limiter.bucketSize {
			r.limiter.tokens = r.limiter.bucketSize
		}
		r.limiter.mu.Unlock()
	}
	return n, err
}
