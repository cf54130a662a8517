package rt

// Tensor is an opaque handle to a numeric tensor managed entirely by an
// external subsystem. This package stores, moves, and aliases the
// handle; it never interprets the payload.
//
// The undefined tensor is not a Tensor at all: it is the tensor-tagged
// Value with no owned pointer (see UndefinedTensor), and it is
// identity-equal to None.
type Tensor struct {
	RefTarget
	impl    any
	release func()
}

// NewTensor wraps an external tensor payload. If release is non-nil it
// runs exactly once, when the last owning handle is dropped, so the
// external subsystem can reclaim storage.
func NewTensor(impl any, release func()) Ref[*Tensor] {
	return NewRef(&Tensor{impl: impl, release: release})
}

// Impl returns the opaque payload.
func (t *Tensor) Impl() any { return t.impl }

func (t *Tensor) finalize() {
	if t.release != nil {
		t.release()
		t.release = nil
	}
	t.impl = nil
}
