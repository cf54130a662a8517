package rt

import "sync"

// ---------------------------------------------------------------------------
// ConstantString: immutable backing storage for the string tag
// ---------------------------------------------------------------------------

// ConstantString is an immutable string payload shared through owning
// handles. It exposes only its content; lifetimes follow the standard
// handle rules.
type ConstantString struct {
	RefTarget
	s string
}

// NewConstantString allocates backing storage for s.
func NewConstantString(s string) Ref[*ConstantString] {
	return NewRef(&ConstantString{s: s})
}

// String returns the content.
func (c *ConstantString) String() string { return c.s }

// Len returns the content length in bytes.
func (c *ConstantString) Len() int { return len(c.s) }

// ---------------------------------------------------------------------------
// StringTable: interning
// ---------------------------------------------------------------------------

// StringTable interns string payloads so that equal content yields
// pointer-identical storage. Two values built from the same table and
// the same content are therefore identity-equal.
//
// The table holds one unit of ownership per entry; entries live as long
// as the table does.
type StringTable struct {
	mu        sync.RWMutex
	byContent map[string]*ConstantString
}

// NewStringTable creates an empty intern table.
func NewStringTable() *StringTable {
	return &StringTable{byContent: make(map[string]*ConstantString)}
}

// Intern returns an owning handle to the shared storage for s, creating
// it on first use.
func (st *StringTable) Intern(s string) Ref[*ConstantString] {
	// Fast path: read-only lookup
	st.mu.RLock()
	if c, ok := st.byContent[s]; ok {
		st.mu.RUnlock()
		return NewAlias(c)
	}
	st.mu.RUnlock()

	st.mu.Lock()
	defer st.mu.Unlock()

	// Double-check after acquiring write lock
	if c, ok := st.byContent[s]; ok {
		return NewAlias(c)
	}

	r := NewConstantString(s)
	c := r.Release() // the table keeps this unit
	st.byContent[s] = c
	return NewAlias(c)
}

// InternValue returns a string value backed by the shared storage for s.
func (st *StringTable) InternValue(s string) Value {
	r := st.Intern(s)
	return FromConstString(r)
}

// Len returns the number of interned strings.
func (st *StringTable) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.byContent)
}
