package rt

import "fmt"

// ---------------------------------------------------------------------------
// Element kinds
// ---------------------------------------------------------------------------

// ElemKind tags the element type a backing store was created to hold.
// Typed facades check it before relabeling a store.
type ElemKind uint8

const (
	ElemGeneric ElemKind = iota
	ElemInt
	ElemDouble
	ElemBool
	ElemTensor
	ElemString // dict keys/values only; there is no string-list tag
)

func (k ElemKind) String() string {
	switch k {
	case ElemGeneric:
		return "generic"
	case ElemInt:
		return "int"
	case ElemDouble:
		return "double"
	case ElemBool:
		return "bool"
	case ElemTensor:
		return "tensor"
	case ElemString:
		return "string"
	default:
		return fmt.Sprintf("elem(%d)", uint8(k))
	}
}

// Elem constrains the element types a typed list facade can expose.
type Elem interface {
	int64 | float64 | bool | *Tensor | Value
}

func kindOf[E Elem]() ElemKind {
	var z E
	switch any(z).(type) {
	case int64:
		return ElemInt
	case float64:
		return ElemDouble
	case bool:
		return ElemBool
	case *Tensor:
		return ElemTensor
	default:
		return ElemGeneric
	}
}

func listTagFor(kind ElemKind) Tag {
	switch kind {
	case ElemInt:
		return TagIntList
	case ElemDouble:
		return TagDoubleList
	case ElemBool:
		return TagBoolList
	case ElemTensor:
		return TagTensorList
	default:
		return TagGenericList
	}
}

// boxElem erases a typed element. Reference elements are aliased so the
// store carries its own unit; a Value element is moved in as-is.
func boxElem[E Elem](e E) Value {
	switch x := any(e).(type) {
	case int64:
		return FromInt(x)
	case float64:
		return FromDouble(x)
	case bool:
		return FromBool(x)
	case *Tensor:
		if x == nil {
			return UndefinedTensor()
		}
		return FromTensor(NewAlias(x))
	case Value:
		return x
	}
	panic("rt: unreachable element kind")
}

// unboxElem recovers a typed element as a borrow: the backing store
// keeps its unit of ownership, so the result is valid only while the
// store is alive.
func unboxElem[E Elem](v Value) E {
	var z E
	switch any(z).(type) {
	case int64:
		return any(v.Int()).(E)
	case float64:
		return any(v.Double()).(E)
	case bool:
		return any(v.Bool()).(E)
	case *Tensor:
		v.mustBe(TagTensor, "List element")
		if v.ref == nil {
			return any((*Tensor)(nil)).(E)
		}
		return any(v.ref.(*Tensor)).(E)
	default:
		return any(v).(E)
	}
}

// ---------------------------------------------------------------------------
// listStore: the single sequence store behind every list variant
// ---------------------------------------------------------------------------

// listStore owns a contiguous sequence of erased values. Typed facades
// and tuples alias it without copying; mutation through any alias is
// visible through all of them.
type listStore struct {
	RefTarget
	kind  ElemKind
	elems []Value
}

func newListStore(kind ElemKind) *listStore {
	return &listStore{kind: kind}
}

func (s *listStore) finalize() {
	for i := range s.elems {
		s.elems[i].Drop()
	}
	s.elems = nil
}

func (s *listStore) checkIndex(i int, op string) {
	if i < 0 || i >= len(s.elems) {
		panic(fmt.Sprintf("%s: index %d out of range [0,%d)", op, i, len(s.elems)))
	}
}

// ---------------------------------------------------------------------------
// List: typed facade
// ---------------------------------------------------------------------------

// List is a typed front-end over a shared sequence store. It owns one
// unit of the store's count and relabels the element type at compile
// time; it never copies elements. Facades obtained by Alias (or by
// relabeling the same value) see each other's mutations.
type List[E Elem] struct {
	store *listStore
}

// NewList creates an empty list whose store is marked with E's kind.
func NewList[E Elem]() List[E] {
	s := newListStore(kindOf[E]())
	s.refs.Store(1) // the facade carries the initial unit
	return List[E]{store: s}
}

// NewListOf creates a list holding the given elements. Reference
// elements are aliased in; Value elements are moved in.
func NewListOf[E Elem](elems ...E) List[E] {
	l := NewList[E]()
	for _, e := range elems {
		l.Append(e)
	}
	return l
}

// Len returns the element count.
func (l List[E]) Len() int { return len(l.store.elems) }

// Kind returns the element kind the backing store was created to hold.
func (l List[E]) Kind() ElemKind { return l.store.kind }

// Get borrows element i. Reference elements remain owned by the store.
func (l List[E]) Get(i int) E {
	l.store.checkIndex(i, "List.Get")
	return unboxElem[E](l.store.elems[i])
}

// Set replaces element i, dropping the old element. Ownership of e
// moves into the store.
func (l List[E]) Set(i int, e E) {
	l.store.checkIndex(i, "List.Set")
	l.store.elems[i].Drop()
	l.store.elems[i] = boxElem(e)
}

// Append adds an element at the end. Ownership of e moves into the
// store.
func (l List[E]) Append(e E) {
	l.store.elems = append(l.store.elems, boxElem(e))
}

// Range calls f for each element in order until f returns false.
// Elements are borrows, as with Get.
func (l List[E]) Range(f func(i int, e E) bool) {
	for i := range l.store.elems {
		if !f(i, unboxElem[E](l.store.elems[i])) {
			return
		}
	}
}

// Alias returns an additional owning facade over the same store.
func (l List[E]) Alias() List[E] {
	incref(l.store)
	return l
}

// Drop gives up the facade's unit of ownership.
func (l *List[E]) Drop() {
	if l.store == nil {
		return
	}
	s := l.store
	l.store = nil
	decref(s)
}

// ---------------------------------------------------------------------------
// Bridging lists and values
// ---------------------------------------------------------------------------

// FromList wraps a list facade into a tagged value, consuming the
// facade's unit of ownership. The tag follows the store's element kind.
func FromList[E Elem](l List[E]) Value {
	s := l.store
	l.store = nil
	return Value{tag: listTagFor(s.kind), ref: s}
}

// FromIntSlice builds an int-list value from a plain slice.
func FromIntSlice(xs []int64) Value { return FromList(NewListOf(xs...)) }

// FromDoubleSlice builds a double-list value from a plain slice.
func FromDoubleSlice(xs []float64) Value { return FromList(NewListOf(xs...)) }

// FromBoolSlice builds a bool-list value from a plain slice.
func FromBoolSlice(xs []bool) Value { return FromList(NewListOf(xs...)) }

// FromTensorSlice builds a tensor-list value, aliasing each tensor.
func FromTensorSlice(xs []*Tensor) Value { return FromList(NewListOf(xs...)) }

// FromValues builds a generic-list value, moving each element in.
func FromValues(xs ...Value) Value { return FromList(NewListOf(xs...)) }

// FromTuple builds a tuple value around a generic sequence store,
// moving each element in. A tuple is the generic store under the tuple
// tag; it has no element-kind of its own.
func FromTuple(xs ...Value) Value {
	l := NewListOf(xs...)
	s := l.store
	l.store = nil
	return Value{tag: TagTuple, ref: s}
}

func borrowList[E Elem](v Value, tag Tag, op string) List[E] {
	v.mustBe(tag, op)
	s := v.ref.(*listStore)
	incref(s)
	return List[E]{store: s}
}

func takeList[E Elem](v *Value, tag Tag, op string) List[E] {
	v.mustBe(tag, op)
	s := v.ref.(*listStore)
	*v = Value{}
	return List[E]{store: s}
}

// IntList returns a borrowing facade. Panics unless the tag is IntList.
func (v Value) IntList() List[int64] {
	return borrowList[int64](v, TagIntList, "Value.IntList")
}

// TakeIntList is the moving form of IntList; v becomes None.
func (v *Value) TakeIntList() List[int64] {
	return takeList[int64](v, TagIntList, "Value.TakeIntList")
}

// DoubleList returns a borrowing facade. Panics unless the tag is
// DoubleList.
func (v Value) DoubleList() List[float64] {
	return borrowList[float64](v, TagDoubleList, "Value.DoubleList")
}

// TakeDoubleList is the moving form of DoubleList; v becomes None.
func (v *Value) TakeDoubleList() List[float64] {
	return takeList[float64](v, TagDoubleList, "Value.TakeDoubleList")
}

// BoolList returns a borrowing facade. Panics unless the tag is
// BoolList.
func (v Value) BoolList() List[bool] {
	return borrowList[bool](v, TagBoolList, "Value.BoolList")
}

// TakeBoolList is the moving form of BoolList; v becomes None.
func (v *Value) TakeBoolList() List[bool] {
	return takeList[bool](v, TagBoolList, "Value.TakeBoolList")
}

// TensorList returns a borrowing facade. Panics unless the tag is
// TensorList.
func (v Value) TensorList() List[*Tensor] {
	return borrowList[*Tensor](v, TagTensorList, "Value.TensorList")
}

// TakeTensorList is the moving form of TensorList; v becomes None.
func (v *Value) TakeTensorList() List[*Tensor] {
	return takeList[*Tensor](v, TagTensorList, "Value.TakeTensorList")
}

// GenericList returns a borrowing facade. Panics unless the tag is
// GenericList.
func (v Value) GenericList() List[Value] {
	return borrowList[Value](v, TagGenericList, "Value.GenericList")
}

// TakeGenericList is the moving form of GenericList; v becomes None.
func (v *Value) TakeGenericList() List[Value] {
	return takeList[Value](v, TagGenericList, "Value.TakeGenericList")
}

// Tuple returns a borrowing facade over the tuple's elements.
func (v Value) Tuple() List[Value] {
	return borrowList[Value](v, TagTuple, "Value.Tuple")
}

// TakeTuple is the moving form of Tuple; v becomes None.
func (v *Value) TakeTuple() List[Value] {
	return takeList[Value](v, TagTuple, "Value.TakeTuple")
}
