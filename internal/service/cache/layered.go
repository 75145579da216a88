package cache

import (
	"context"
	"time"
)

// Layered checks a process-local L1 before a shared L2 (Redis or SQLite).
type Layered struct {
	l1    *TTLCache
	l2    BytesCache
	l1TTL time.Duration
}

// NewLayered wraps l2 with an in-memory layer whose entries live at most l1TTL.
func NewLayered(l2 BytesCache, l1Size int, l1TTL time.Duration) *Layered {
	return &Layered{l1: NewTTLCache(l1Size), l2: l2, l1TTL: l1TTL}
}

func (lc *Layered) GetBytes(ctx context.Context, key string) ([]byte, bool, error) {
	if b, ok, _ := lc.l1.GetBytes(ctx, key); ok {
		return b, true, nil
	}
	b, ok, err := lc.l2.GetBytes(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	_ = lc.l1.SetBytes(ctx, key, b, lc.l1TTL)
	return b, true, nil
}

// SetBytes writes through to L2 first.
func (lc *Layered) SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := lc.l2.SetBytes(ctx, key, value, ttl); err != nil {
		return err
	}
	l1TTL := lc.l1TTL
	if ttl > 0 && ttl < l1TTL {
		l1TTL = ttl
	}
	return lc.l1.SetBytes(ctx, key, value, l1TTL)
}

func (lc *Layered) Close() error {
	_ = lc.l1.Close()
	return lc.l2.Close()
}
