package rt

import "fmt"

// ---------------------------------------------------------------------------
// Generic erasure recovery
//
// The C++-style return-type overload set becomes a small family of
// conversion functions selected by static type at the call site. Two
// distinct shapes exist and must not be confused:
//
//   - ToSlice / ToMap produce a fresh owned container by element-wise
//     extraction: a deep copy of the spine, because the erased backing
//     store may be aliased elsewhere and must not be mutated through
//     the new owner.
//
//   - AsList / AsDict relabel a handle to the same backing store in
//     O(1), after checking the store was created to hold the requested
//     element type. Mutation through the facade is visible through
//     every alias.
// ---------------------------------------------------------------------------

// ToSlice extracts a list value into a fresh slice that owns its
// elements independently of the source list: scalar elements are plain
// copies, Value elements are cloned, tensor elements are aliased (drop
// each via Reclaim; a nil element is the undefined tensor and owns
// nothing). The caller must drop the owned elements.
func ToSlice[E Elem](v Value) []E {
	want := listTagFor(kindOf[E]())
	v.mustBe(want, "rt.ToSlice")
	s := v.ref.(*listStore)
	out := make([]E, 0, len(s.elems))
	for i := range s.elems {
		e := unboxElem[E](s.elems[i])
		switch x := any(e).(type) {
		case Value:
			e = any(x.Clone()).(E)
		case *Tensor:
			if x != nil {
				incref(x)
			}
		}
		out = append(out, e)
	}
	return out
}

// AsList relabels a list value as a typed facade without copying. The
// value must hold the list tag matching E; the facade owns its own unit
// of the store's count.
func AsList[E Elem](v Value) List[E] {
	want := listTagFor(kindOf[E]())
	return borrowList[E](v, want, "rt.AsList")
}

// TakeList is the moving form of AsList; v becomes None.
func TakeList[E Elem](v *Value) List[E] {
	want := listTagFor(kindOf[E]())
	return takeList[E](v, want, "rt.TakeList")
}

// AsDict relabels a generic-dict value as a typed facade without
// copying. The store must have been created to hold exactly the
// requested key and value kinds; Dict[Value, Value] is always allowed.
func AsDict[K DictElem, V DictElem](v Value) Dict[K, V] {
	v.mustBe(TagGenericDict, "rt.AsDict")
	s := v.ref.(*dictStore)
	checkDictKinds[K, V](s, "rt.AsDict")
	incref(s)
	return Dict[K, V]{store: s}
}

// TakeDict is the moving form of AsDict; v becomes None.
func TakeDict[K DictElem, V DictElem](v *Value) Dict[K, V] {
	v.mustBe(TagGenericDict, "rt.TakeDict")
	s := v.ref.(*dictStore)
	checkDictKinds[K, V](s, "rt.TakeDict")
	*v = Value{}
	return Dict[K, V]{store: s}
}

// MapKey constrains the key types an extracted Go map can use.
type MapKey interface {
	int64 | float64 | bool | string
}

// ToMap extracts a generic-dict value into a fresh Go map by
// element-wise extraction. Value payloads are cloned; the caller owns
// and must drop them.
func ToMap[K MapKey, V DictElem](v Value) map[K]V {
	v.mustBe(TagGenericDict, "rt.ToMap")
	s := v.ref.(*dictStore)
	out := make(map[K]V, len(s.entries))
	for i := range s.entries {
		e := s.entries[i]
		k := unboxMapKey[K](e.key)
		val := unboxDictElem[V](e.val)
		if x, ok := any(val).(Value); ok {
			val = any(x.Clone()).(V)
		}
		out[k] = val
	}
	return out
}

func unboxMapKey[K MapKey](v Value) K {
	var z K
	switch any(z).(type) {
	case int64:
		return any(v.Int()).(K)
	case float64:
		return any(v.Double()).(K)
	case bool:
		return any(v.Bool()).(K)
	case string:
		return any(v.StringValue()).(K)
	}
	panic(fmt.Sprintf("rt.ToMap: unsupported key %s", v.Tag()))
}

// Optional recovers an optional: None yields the zero T and false,
// anything else recurses into the supplied extraction.
func Optional[T any](v Value, extract func(Value) T) (T, bool) {
	if v.IsNone() {
		var z T
		return z, false
	}
	return extract(v), true
}

// OptionalInt is Optional specialized to the int extraction.
func OptionalInt(v Value) (int64, bool) { return Optional(v, Value.Int) }

// OptionalDouble is Optional specialized to the double extraction.
func OptionalDouble(v Value) (float64, bool) { return Optional(v, Value.Double) }

// OptionalBool is Optional specialized to the bool extraction.
func OptionalBool(v Value) (bool, bool) { return Optional(v, Value.Bool) }

// OptionalString is Optional specialized to the string content
// extraction.
func OptionalString(v Value) (string, bool) { return Optional(v, Value.StringValue) }
