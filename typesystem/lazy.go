package typesystem

import "sync/atomic"

// lazy is a write-once cell. Concurrent first readers may all compute; the
// first value published wins and the others are dropped, so compute must be
// deterministic.
type lazy[T any] struct {
	p atomic.Pointer[T]
}

func (l *lazy[T]) get(compute func() T) T {
	if v := l.p.Load(); v != nil {
		return *v
	}
	v := compute()
	if l.p.CompareAndSwap(nil, &v) {
		return v
	}
	return *l.p.Load()
}

// peek returns the published value, if any.
func (l *lazy[T]) peek() (T, bool) {
	if v := l.p.Load(); v != nil {
		return *v, true
	}
	var zero T
	return zero, false
}
