package rt

import "fmt"

// ---------------------------------------------------------------------------
// dictStore: the single associative store behind every dict variant
// ---------------------------------------------------------------------------

// dictKey normalizes a value for lookup: content for inline scalars and
// strings, pointer identity for reference payloads. None is a valid key.
type dictKey struct {
	tag  Tag
	bits uint64
	str  string
	ref  RefCounted
}

func keyOf(v Value) dictKey {
	switch v.tag {
	case TagString:
		return dictKey{tag: TagString, str: v.ref.(*ConstantString).String()}
	case TagNone, TagInt, TagDouble, TagBool, TagDevice, TagScalarKind, TagLayout, TagMemoryFormat:
		return dictKey{tag: v.tag, bits: v.bits}
	default:
		return dictKey{tag: v.tag, ref: v.ref}
	}
}

type dictEntry struct {
	key Value
	val Value
}

// dictStore owns an associative structure of erased values and
// preserves insertion order. Typed facades alias it without copying.
type dictStore struct {
	RefTarget
	keyKind ElemKind
	valKind ElemKind
	index   map[dictKey]int
	entries []dictEntry
}

func newDictStore(keyKind, valKind ElemKind) *dictStore {
	return &dictStore{
		keyKind: keyKind,
		valKind: valKind,
		index:   make(map[dictKey]int),
	}
}

func (s *dictStore) finalize() {
	for i := range s.entries {
		s.entries[i].key.Drop()
		s.entries[i].val.Drop()
	}
	s.entries = nil
	s.index = nil
}

// set inserts or replaces, taking ownership of both key and val. On
// replacement the incoming key is redundant and dropped along with the
// old value; the original key keeps its insertion position.
func (s *dictStore) set(key, val Value) {
	k := keyOf(key)
	if i, ok := s.index[k]; ok {
		key.Drop()
		s.entries[i].val.Drop()
		s.entries[i].val = val
		return
	}
	s.index[k] = len(s.entries)
	s.entries = append(s.entries, dictEntry{key: key, val: val})
}

// get borrows the value for key, if present. The probe key stays owned
// by the caller.
func (s *dictStore) get(key Value) (Value, bool) {
	i, ok := s.index[keyOf(key)]
	if !ok {
		return Value{}, false
	}
	return s.entries[i].val, true
}

// delete removes the entry for key, dropping both halves. Later entries
// shift down; insertion order of the survivors is preserved.
func (s *dictStore) delete(key Value) bool {
	k := keyOf(key)
	i, ok := s.index[k]
	if !ok {
		return false
	}
	s.entries[i].key.Drop()
	s.entries[i].val.Drop()
	s.entries = append(s.entries[:i], s.entries[i+1:]...)
	delete(s.index, k)
	for j := i; j < len(s.entries); j++ {
		s.index[keyOf(s.entries[j].key)] = j
	}
	return true
}

// ---------------------------------------------------------------------------
// Dict: typed facade
// ---------------------------------------------------------------------------

// DictElem constrains the key and value types a typed dict facade can
// expose. Strings are allowed here even though no list tag exists for
// them.
type DictElem interface {
	int64 | float64 | bool | string | Value
}

func dictKindOf[E DictElem]() ElemKind {
	var z E
	switch any(z).(type) {
	case int64:
		return ElemInt
	case float64:
		return ElemDouble
	case bool:
		return ElemBool
	case string:
		return ElemString
	default:
		return ElemGeneric
	}
}

func boxDictElem[E DictElem](e E) Value {
	switch x := any(e).(type) {
	case int64:
		return FromInt(x)
	case float64:
		return FromDouble(x)
	case bool:
		return FromBool(x)
	case string:
		return FromString(x)
	case Value:
		return x
	}
	panic("rt: unreachable dict element kind")
}

func unboxDictElem[E DictElem](v Value) E {
	var z E
	switch any(z).(type) {
	case int64:
		return any(v.Int()).(E)
	case float64:
		return any(v.Double()).(E)
	case bool:
		return any(v.Bool()).(E)
	case string:
		return any(v.StringValue()).(E)
	default:
		return any(v).(E)
	}
}

// Dict is a typed front-end over a shared associative store. It owns
// one unit of the store's count; aliases see each other's mutations.
// Iteration follows insertion order.
type Dict[K DictElem, V DictElem] struct {
	store *dictStore
}

// NewDict creates an empty dict whose store is marked with K's and V's
// kinds.
func NewDict[K DictElem, V DictElem]() Dict[K, V] {
	s := newDictStore(dictKindOf[K](), dictKindOf[V]())
	s.refs.Store(1) // the facade carries the initial unit
	return Dict[K, V]{store: s}
}

// NewDictOfKinds creates an empty dict whose store is marked with
// explicit element kinds but is handled through the generic facade.
// Used when the kinds are only known at runtime, e.g. while rebuilding
// a dict from its wire form; typed relabeling works afterwards as if
// the store had been created typed.
func NewDictOfKinds(keyKind, valKind ElemKind) Dict[Value, Value] {
	s := newDictStore(keyKind, valKind)
	s.refs.Store(1)
	return Dict[Value, Value]{store: s}
}

// Len returns the entry count.
func (d Dict[K, V]) Len() int { return len(d.store.entries) }

// KeyKind returns the key kind the store was created to hold.
func (d Dict[K, V]) KeyKind() ElemKind { return d.store.keyKind }

// ValKind returns the value kind the store was created to hold.
func (d Dict[K, V]) ValKind() ElemKind { return d.store.valKind }

// probeOf builds a lookup key. A Value element is borrowed directly;
// other kinds allocate a temporary the caller must drop.
func probeOf[E DictElem](e E) (Value, bool) {
	if x, ok := any(e).(Value); ok {
		return x, false
	}
	return boxDictElem(e), true
}

// Get borrows the value for k. Reference values remain owned by the
// store.
func (d Dict[K, V]) Get(k K) (V, bool) {
	probe, owned := probeOf(k)
	if owned {
		defer probe.Drop()
	}
	v, ok := d.store.get(probe)
	if !ok {
		var z V
		return z, false
	}
	return unboxDictElem[V](v), true
}

// Set inserts or replaces the entry for k. Ownership of both arguments
// moves into the store.
func (d Dict[K, V]) Set(k K, v V) {
	d.store.set(boxDictElem(k), boxDictElem(v))
}

// Delete removes the entry for k, reporting whether it existed.
func (d Dict[K, V]) Delete(k K) bool {
	probe, owned := probeOf(k)
	if owned {
		defer probe.Drop()
	}
	return d.store.delete(probe)
}

// Range calls f for each entry in insertion order until f returns
// false. Keys and values are borrows.
func (d Dict[K, V]) Range(f func(k K, v V) bool) {
	for i := range d.store.entries {
		e := d.store.entries[i]
		if !f(unboxDictElem[K](e.key), unboxDictElem[V](e.val)) {
			return
		}
	}
}

// Alias returns an additional owning facade over the same store.
func (d Dict[K, V]) Alias() Dict[K, V] {
	incref(d.store)
	return d
}

// Drop gives up the facade's unit of ownership.
func (d *Dict[K, V]) Drop() {
	if d.store == nil {
		return
	}
	s := d.store
	d.store = nil
	decref(s)
}

// ---------------------------------------------------------------------------
// Bridging dicts and values
// ---------------------------------------------------------------------------

// FromDict wraps a dict facade into a generic-dict value, consuming the
// facade's unit of ownership. The store keeps its element kinds for
// later capability checks.
func FromDict[K DictElem, V DictElem](d Dict[K, V]) Value {
	s := d.store
	d.store = nil
	return Value{tag: TagGenericDict, ref: s}
}

// GenericDict returns a borrowing generic facade regardless of the
// store's element kinds; per-element extraction still checks tags.
func (v Value) GenericDict() Dict[Value, Value] {
	v.mustBe(TagGenericDict, "Value.GenericDict")
	s := v.ref.(*dictStore)
	incref(s)
	return Dict[Value, Value]{store: s}
}

// TakeGenericDict is the moving form of GenericDict; v becomes None.
func (v *Value) TakeGenericDict() Dict[Value, Value] {
	v.mustBe(TagGenericDict, "Value.TakeGenericDict")
	s := v.ref.(*dictStore)
	*v = Value{}
	return Dict[Value, Value]{store: s}
}

func checkDictKinds[K DictElem, V DictElem](s *dictStore, op string) {
	wantK, wantV := dictKindOf[K](), dictKindOf[V]()
	if wantK == ElemGeneric && wantV == ElemGeneric {
		return
	}
	if s.keyKind != wantK || s.valKind != wantV {
		panic(fmt.Sprintf("%s: store holds %s/%s, requested %s/%s",
			op, s.keyKind, s.valKind, wantK, wantV))
	}
}
