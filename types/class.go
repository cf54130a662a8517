// Package types implements the class-schema registry records resolve
// against. The rt core only sees the rt.ClassSchema boundary; this
// package is the concrete descriptor and its registry.
package types

import (
	"fmt"
	"sync"

	"github.com/chazu/rill/rt"
)

// Method is a callable bound to a class.
type Method interface {
	Name() string
	Invoke(recv rt.Value, args []rt.Value) (rt.Value, error)
}

// ClassType describes a record layout: a qualified name, an ordered
// attribute list, an optional superclass whose attributes occupy the
// leading slots, and a method table.
//
// Attribute appends are the only supported schema evolution; records
// built against an older revision grow their slot vectors lazily.
type ClassType struct {
	name       string
	namespace  string
	superclass *ClassType

	mu      sync.RWMutex
	attrs   []string
	methods map[string]Method
}

// NewClassType creates a class descriptor. The superclass may be nil.
func NewClassType(name, namespace string, superclass *ClassType, attrs []string) *ClassType {
	c := &ClassType{
		name:       name,
		namespace:  namespace,
		superclass: superclass,
		attrs:      append([]string(nil), attrs...),
		methods:    make(map[string]Method),
	}
	return c
}

// Name returns the qualified name, namespace-prefixed when present.
func (c *ClassType) Name() string {
	if c.namespace == "" {
		return c.name
	}
	return c.namespace + "." + c.name
}

// Namespace returns the bare namespace.
func (c *ClassType) Namespace() string { return c.namespace }

// Superclass returns the parent descriptor, or nil.
func (c *ClassType) Superclass() *ClassType { return c.superclass }

// attrOffset returns the starting slot index for this class's own
// attributes, accounting for inherited ones.
func (c *ClassType) attrOffset() int {
	if c.superclass == nil {
		return 0
	}
	return c.superclass.NumAttrs()
}

// NumAttrs returns the attribute count including inherited attributes.
func (c *ClassType) NumAttrs() int {
	c.mu.RLock()
	n := len(c.attrs)
	c.mu.RUnlock()
	return c.attrOffset() + n
}

// AttrIndex resolves an attribute name to its slot index, searching
// this class first and then the superclass chain.
func (c *ClassType) AttrIndex(name string) (int, bool) {
	c.mu.RLock()
	for i, n := range c.attrs {
		if n == name {
			c.mu.RUnlock()
			return c.attrOffset() + i, true
		}
	}
	c.mu.RUnlock()
	if c.superclass != nil {
		return c.superclass.AttrIndex(name)
	}
	return 0, false
}

// AttrName returns the name stored at slot i.
func (c *ClassType) AttrName(i int) string {
	off := c.attrOffset()
	if i < off {
		return c.superclass.AttrName(i)
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i-off >= len(c.attrs) {
		panic(fmt.Sprintf("ClassType.AttrName: slot %d out of range [0,%d)", i, off+len(c.attrs)))
	}
	return c.attrs[i-off]
}

// AttrNames returns all attribute names in slot order, including
// inherited ones.
func (c *ClassType) AttrNames() []string {
	var out []string
	if c.superclass != nil {
		out = c.superclass.AttrNames()
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append(out, c.attrs...)
}

// AddAttr appends an attribute and returns its slot index. Appending a
// duplicate name is an error.
func (c *ClassType) AddAttr(name string) (int, error) {
	if _, ok := c.AttrIndex(name); ok {
		return 0, fmt.Errorf("types: class %s already has attribute %q", c.Name(), name)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.attrs = append(c.attrs, name)
	return c.attrOffset() + len(c.attrs) - 1, nil
}

// AddMethod installs a method, replacing any previous binding.
func (c *ClassType) AddMethod(m Method) {
	c.mu.Lock()
	c.methods[m.Name()] = m
	c.mu.Unlock()
}

// GetMethod looks up a method by name, searching the superclass chain.
func (c *ClassType) GetMethod(name string) (Method, bool) {
	c.mu.RLock()
	m, ok := c.methods[name]
	c.mu.RUnlock()
	if ok {
		return m, true
	}
	if c.superclass != nil {
		return c.superclass.GetMethod(name)
	}
	return nil, false
}

// IsSubclassOf reports whether c is other or a descendant of it.
func (c *ClassType) IsSubclassOf(other *ClassType) bool {
	for cur := c; cur != nil; cur = cur.superclass {
		if cur == other {
			return true
		}
	}
	return false
}

// New instantiates a record of this class with one slot per attribute,
// all None.
func (c *ClassType) New() rt.Ref[*rt.Object] {
	return rt.NewObject(c, c.NumAttrs())
}

// interface conformance check
var _ rt.ClassSchema = (*ClassType)(nil)
