package rt

import "sync/atomic"

// ---------------------------------------------------------------------------
// Intrusive reference counting
// ---------------------------------------------------------------------------

// RefCounted is implemented by every shared payload type in this package.
// The count lives inside the target itself; handles only manipulate it.
//
// Both methods are unexported: the set of reference-counted payload types
// is closed, and the alias/reclaim/release discipline below is the only
// way the count may be touched.
type RefCounted interface {
	refCount() *atomic.Int64
	finalize()
}

// RefTarget is embedded by every reference-counted payload type and holds
// its intrusive count. A freshly constructed target carries no ownership
// until NewRef adopts it.
type RefTarget struct {
	refs atomic.Int64
}

func (t *RefTarget) refCount() *atomic.Int64 { return &t.refs }

// finalize is invoked exactly once, when the last owning handle goes
// away. The default does nothing; payload types that own other values or
// external resources shadow it.
func (t *RefTarget) finalize() {}

// Refs reports the target's current ownership count. Diagnostic use only;
// the count can change concurrently the moment this returns.
func Refs(t RefCounted) int64 { return t.refCount().Load() }

func incref(t RefCounted) {
	if n := t.refCount().Add(1); n <= 1 {
		panic("rt: incref on a dead target")
	}
}

func decref(t RefCounted) {
	n := t.refCount().Add(-1)
	if n < 0 {
		panic("rt: over-released target")
	}
	if n == 0 {
		t.finalize()
	}
}

// ---------------------------------------------------------------------------
// Owning handles
// ---------------------------------------------------------------------------

// Ref is an owning handle to a reference-counted target. Each live handle
// accounts for exactly one unit of the target's count; the target is
// finalized when the last unit is dropped. The zero Ref owns nothing.
//
// Handles are values and may be passed around freely, but each copy that
// will be independently dropped must come from Alias, not from plain
// assignment. Get, Alias, and Release panic on an emptied handle.
type Ref[T RefCounted] struct {
	t  T
	ok bool
}

// NewRef adopts a freshly constructed target, setting its count to one.
func NewRef[T RefCounted](t T) Ref[T] {
	t.refCount().Store(1)
	return Ref[T]{t: t, ok: true}
}

// NewAlias increments the target's count and returns a new owning handle.
// The target must be alive.
func NewAlias[T RefCounted](t T) Ref[T] {
	incref(t)
	return Ref[T]{t: t, ok: true}
}

// Reclaim wraps a target that already carries one unit of ownership,
// without incrementing. The caller's unit transfers to the new handle.
func Reclaim[T RefCounted](t T) Ref[T] {
	return Ref[T]{t: t, ok: true}
}

// Empty reports whether the handle owns nothing.
func (r Ref[T]) Empty() bool { return !r.ok }

// Get borrows the target without touching the count. The handle must
// outlive every use of the returned pointer.
func (r Ref[T]) Get() T {
	if !r.ok {
		panic("rt: Get on an empty handle")
	}
	return r.t
}

// Alias returns an additional owning handle to the same target.
func (r Ref[T]) Alias() Ref[T] {
	if !r.ok {
		panic("rt: Alias on an empty handle")
	}
	return NewAlias(r.t)
}

// Release relinquishes ownership bookkeeping and returns the raw target
// without decrementing. The caller now carries the unit of ownership this
// handle held, typically to stash it inside another structure.
func (r *Ref[T]) Release() T {
	if !r.ok {
		panic("rt: Release on an empty handle")
	}
	t := r.t
	*r = Ref[T]{}
	return t
}

// Drop gives up this handle's unit of ownership, finalizing the target
// when the last unit goes away. Drop on an empty handle is a no-op, so a
// handle may be dropped after Release or a previous Drop.
func (r *Ref[T]) Drop() {
	if !r.ok {
		return
	}
	t := r.t
	*r = Ref[T]{}
	decref(t)
}
