package rt

import "fmt"

// ClassSchema resolves attribute names to slot indices for records. It
// is supplied and owned by an external registry (see the types
// package); records only hold a shared reference and call into it.
type ClassSchema interface {
	// Name returns the schema's qualified name.
	Name() string
	// NumAttrs returns the current attribute count, including
	// inherited attributes.
	NumAttrs() int
	// AttrIndex resolves an attribute name to its slot index.
	AttrIndex(name string) (int, bool)
	// AttrName returns the name stored at slot i.
	AttrName(i int) string
}

// Object is a user-defined record: a shared schema reference plus an
// exclusively owned, positionally indexed slot vector. Slot storage
// only ever grows; a schema that gained attributes after the record was
// built is tolerated by lazy growth on write.
//
// Records carry no internal synchronization.
type Object struct {
	RefTarget
	schema ClassSchema
	slots  []Value

	// attribute count observed at construction; a schema that later
	// reports fewer attributes has been shrunk or reordered, which slot
	// addressing cannot survive
	schemaLen int
}

// NewObject creates a record with numSlots None-valued slots.
func NewObject(schema ClassSchema, numSlots int) Ref[*Object] {
	return NewRef(&Object{
		schema:    schema,
		slots:     make([]Value, numSlots),
		schemaLen: schema.NumAttrs(),
	})
}

func (o *Object) finalize() {
	for i := range o.slots {
		o.slots[i].Drop()
	}
	o.slots = nil
}

// Schema returns the shared schema reference.
func (o *Object) Schema() ClassSchema { return o.schema }

// Name returns the schema's qualified name.
func (o *Object) Name() string { return o.schema.Name() }

// NumSlots returns the current slot count.
func (o *Object) NumSlots() int { return len(o.slots) }

// Slots returns the slot vector as a borrow. Callers must not drop
// elements through it.
func (o *Object) Slots() []Value { return o.slots }

// GetSlot borrows slot i. Reading beyond the current length is a
// contract violation.
func (o *Object) GetSlot(i int) Value {
	if i < 0 || i >= len(o.slots) {
		panic(fmt.Sprintf("Object.GetSlot: slot %d out of range [0,%d)", i, len(o.slots)))
	}
	return o.slots[i]
}

// SetSlot stores v into slot i, dropping the previous value. Ownership
// of v moves into the record. Writing beyond the current length grows
// the vector with None-valued slots; it never shrinks.
func (o *Object) SetSlot(i int, v Value) {
	if i < 0 {
		panic(fmt.Sprintf("Object.SetSlot: slot %d out of range", i))
	}
	if i >= len(o.slots) {
		// The schema may have gained attributes after this record was
		// constructed; grow to fit.
		grown := make([]Value, i+1)
		copy(grown, o.slots)
		o.slots = grown
	}
	o.slots[i].Drop()
	o.slots[i] = v
}

func (o *Object) resolveAttr(name, op string) int {
	n := o.schema.NumAttrs()
	if n < o.schemaLen {
		panic(fmt.Sprintf("%s: schema %s shrank from %d to %d attributes",
			op, o.schema.Name(), o.schemaLen, n))
	}
	o.schemaLen = n
	i, ok := o.schema.AttrIndex(name)
	if !ok {
		panic(fmt.Sprintf("%s: %s has no attribute %q", op, o.schema.Name(), name))
	}
	return i
}

// GetAttr borrows the slot named by the schema.
func (o *Object) GetAttr(name string) Value {
	return o.GetSlot(o.resolveAttr(name, "Object.GetAttr"))
}

// SetAttr stores v into the slot named by the schema, taking ownership.
func (o *Object) SetAttr(name string, v Value) {
	o.SetSlot(o.resolveAttr(name, "Object.SetAttr"), v)
}
