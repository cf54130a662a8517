package rt

// Blob is the legacy opaque container. Its payload is stored and
// retrieved without interpretation.
type Blob struct {
	RefTarget
	payload any
}

// NewBlob wraps an opaque payload.
func NewBlob(payload any) Ref[*Blob] {
	return NewRef(&Blob{payload: payload})
}

// Payload returns the wrapped payload.
func (b *Blob) Payload() any { return b.payload }

func (b *Blob) finalize() { b.payload = nil }
