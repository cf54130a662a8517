package rt

import (
	"fmt"
	"math"
)

// Value is the tagged union passed between stages of the execution
// graph. It is a fixed-size structure: a discriminant tag, inline scalar
// bits, and an owning pointer for the reference-counted variants.
//
// Ownership discipline: a Value accounts for exactly one unit of its
// payload's count. Clone creates an additional owning copy, Move
// transfers the unit out and leaves the source None, Drop gives the unit
// up. A plain struct copy is a borrow, not an owner, and must never be
// independently dropped.
//
// A single Value instance is not internally synchronized; sharing a
// mutable instance across goroutines is the caller's problem. The
// reference counts themselves are atomic, so distinct handles to the
// same payload may be cloned and dropped concurrently.
type Value struct {
	tag  Tag
	bits uint64
	ref  RefCounted
}

// Tag identifies which variant a Value currently holds.
type Tag uint8

const (
	TagNone Tag = iota
	TagInt
	TagDouble
	TagBool
	TagDevice
	TagScalarKind
	TagLayout
	TagMemoryFormat
	TagTensor
	TagString
	TagBlob
	TagIntList
	TagDoubleList
	TagBoolList
	TagTensorList
	TagGenericList
	TagGenericDict
	TagTuple
	TagObject
	TagFuture
)

func (t Tag) String() string {
	switch t {
	case TagNone:
		return "None"
	case TagInt:
		return "Int"
	case TagDouble:
		return "Double"
	case TagBool:
		return "Bool"
	case TagDevice:
		return "Device"
	case TagScalarKind:
		return "ScalarKind"
	case TagLayout:
		return "Layout"
	case TagMemoryFormat:
		return "MemoryFormat"
	case TagTensor:
		return "Tensor"
	case TagString:
		return "String"
	case TagBlob:
		return "Blob"
	case TagIntList:
		return "IntList"
	case TagDoubleList:
		return "DoubleList"
	case TagBoolList:
		return "BoolList"
	case TagTensorList:
		return "TensorList"
	case TagGenericList:
		return "GenericList"
	case TagGenericDict:
		return "GenericDict"
	case TagTuple:
		return "Tuple"
	case TagObject:
		return "Object"
	case TagFuture:
		return "Future"
	default:
		return fmt.Sprintf("Tag(%d)", uint8(t))
	}
}

// ---------------------------------------------------------------------------
// Construction
// ---------------------------------------------------------------------------

// None returns the empty value. The zero Value is also None.
func None() Value { return Value{} }

// FromInt creates an integer value.
func FromInt(n int64) Value { return Value{tag: TagInt, bits: uint64(n)} }

// FromDouble creates a double value.
func FromDouble(f float64) Value { return Value{tag: TagDouble, bits: math.Float64bits(f)} }

// FromBool creates a boolean value.
func FromBool(b bool) Value {
	if b {
		return Value{tag: TagBool, bits: 1}
	}
	return Value{tag: TagBool}
}

// FromDevice creates a device value.
func FromDevice(d Device) Value { return Value{tag: TagDevice, bits: packDevice(d)} }

// FromScalarKind creates a scalar-kind value.
func FromScalarKind(k ScalarKind) Value { return Value{tag: TagScalarKind, bits: uint64(k)} }

// FromLayout creates a layout value.
func FromLayout(l Layout) Value { return Value{tag: TagLayout, bits: uint64(l)} }

// FromMemoryFormat creates a memory-format value.
func FromMemoryFormat(m MemoryFormat) Value { return Value{tag: TagMemoryFormat, bits: uint64(m)} }

// FromString allocates fresh backing storage for s and wraps it.
func FromString(s string) Value {
	r := NewConstantString(s)
	return Value{tag: TagString, ref: r.Release()}
}

// FromConstString wraps existing string storage, consuming the handle.
func FromConstString(r Ref[*ConstantString]) Value {
	return Value{tag: TagString, ref: r.Release()}
}

// FromTensor wraps a tensor handle, consuming it. An empty handle
// produces the undefined-tensor value.
func FromTensor(r Ref[*Tensor]) Value {
	if r.Empty() {
		return Value{tag: TagTensor}
	}
	return Value{tag: TagTensor, ref: r.Release()}
}

// UndefinedTensor returns the tensor sentinel that carries no storage.
// It is identity-equal to None.
func UndefinedTensor() Value { return Value{tag: TagTensor} }

// FromBlob wraps an opaque blob handle, consuming it.
func FromBlob(r Ref[*Blob]) Value { return Value{tag: TagBlob, ref: r.Release()} }

// FromObject wraps a record handle, consuming it.
func FromObject(r Ref[*Object]) Value { return Value{tag: TagObject, ref: r.Release()} }

// FromFuture wraps a future handle, consuming it.
func FromFuture(r Ref[*Future]) Value { return Value{tag: TagFuture, ref: r.Release()} }

// ---------------------------------------------------------------------------
// Inspection
// ---------------------------------------------------------------------------

// Tag returns the value's discriminant.
func (v Value) Tag() Tag { return v.tag }

// OwnsPointer reports whether the value currently owns a payload
// pointer. It is false for every inline tag and for the undefined
// tensor.
func (v Value) OwnsPointer() bool { return v.ref != nil }

func (v Value) IsNone() bool         { return v.tag == TagNone }
func (v Value) IsInt() bool          { return v.tag == TagInt }
func (v Value) IsDouble() bool       { return v.tag == TagDouble }
func (v Value) IsBool() bool         { return v.tag == TagBool }
func (v Value) IsDevice() bool       { return v.tag == TagDevice }
func (v Value) IsScalarKind() bool   { return v.tag == TagScalarKind }
func (v Value) IsLayout() bool       { return v.tag == TagLayout }
func (v Value) IsMemoryFormat() bool { return v.tag == TagMemoryFormat }
func (v Value) IsTensor() bool       { return v.tag == TagTensor }
func (v Value) IsString() bool       { return v.tag == TagString }
func (v Value) IsBlob() bool         { return v.tag == TagBlob }
func (v Value) IsIntList() bool      { return v.tag == TagIntList }
func (v Value) IsDoubleList() bool   { return v.tag == TagDoubleList }
func (v Value) IsBoolList() bool     { return v.tag == TagBoolList }
func (v Value) IsTensorList() bool   { return v.tag == TagTensorList }
func (v Value) IsGenericList() bool  { return v.tag == TagGenericList }
func (v Value) IsGenericDict() bool  { return v.tag == TagGenericDict }
func (v Value) IsTuple() bool        { return v.tag == TagTuple }
func (v Value) IsObject() bool       { return v.tag == TagObject }
func (v Value) IsFuture() bool       { return v.tag == TagFuture }

// IsScalar reports whether the value is an int or a double.
func (v Value) IsScalar() bool { return v.tag == TagInt || v.tag == TagDouble }

func (v Value) mustBe(tag Tag, op string) {
	if v.tag != tag {
		panic(fmt.Sprintf("%s: have %s", op, v.tag))
	}
}

// ---------------------------------------------------------------------------
// Inline extraction
// ---------------------------------------------------------------------------

// Int returns the integer payload. Panics if the tag is not Int.
func (v Value) Int() int64 {
	v.mustBe(TagInt, "Value.Int")
	return int64(v.bits)
}

// Double returns the double payload. Panics if the tag is not Double.
func (v Value) Double() float64 {
	v.mustBe(TagDouble, "Value.Double")
	return math.Float64frombits(v.bits)
}

// Bool returns the boolean payload. Panics if the tag is not Bool.
func (v Value) Bool() bool {
	v.mustBe(TagBool, "Value.Bool")
	return v.bits != 0
}

// Device returns the device payload. Panics if the tag is not Device.
func (v Value) Device() Device {
	v.mustBe(TagDevice, "Value.Device")
	return unpackDevice(v.bits)
}

// ScalarKind returns the scalar-kind payload.
func (v Value) ScalarKind() ScalarKind {
	v.mustBe(TagScalarKind, "Value.ScalarKind")
	return ScalarKind(v.bits)
}

// Layout returns the layout payload.
func (v Value) Layout() Layout {
	v.mustBe(TagLayout, "Value.Layout")
	return Layout(v.bits)
}

// MemoryFormat returns the memory-format payload.
func (v Value) MemoryFormat() MemoryFormat {
	v.mustBe(TagMemoryFormat, "Value.MemoryFormat")
	return MemoryFormat(v.bits)
}

// ---------------------------------------------------------------------------
// Reference extraction
//
// Every reference-counted tag has an accessor pair: the borrowing form
// aliases a new handle and leaves the value untouched, the moving form
// reclaims the value's unit of ownership and resets it to None. Either
// form panics on a tag mismatch; that is an upstream invariant broken,
// not a runtime condition.
// ---------------------------------------------------------------------------

func borrowRef[T RefCounted](v Value, tag Tag, op string) Ref[T] {
	v.mustBe(tag, op)
	return NewAlias(v.ref.(T))
}

func takeRef[T RefCounted](v *Value, tag Tag, op string) Ref[T] {
	v.mustBe(tag, op)
	t := v.ref.(T)
	*v = Value{}
	return Reclaim(t)
}

// ConstString returns a new owning handle to the string storage.
func (v Value) ConstString() Ref[*ConstantString] {
	return borrowRef[*ConstantString](v, TagString, "Value.ConstString")
}

// TakeConstString moves the string storage out, leaving v None.
func (v *Value) TakeConstString() Ref[*ConstantString] {
	return takeRef[*ConstantString](v, TagString, "Value.TakeConstString")
}

// StringValue returns the string content without creating a handle.
func (v Value) StringValue() string {
	v.mustBe(TagString, "Value.StringValue")
	return v.ref.(*ConstantString).String()
}

// Tensor returns a new owning handle to the tensor. The undefined
// tensor yields an empty handle.
func (v Value) Tensor() Ref[*Tensor] {
	v.mustBe(TagTensor, "Value.Tensor")
	if v.ref == nil {
		return Ref[*Tensor]{}
	}
	return NewAlias(v.ref.(*Tensor))
}

// TakeTensor moves the tensor out, leaving v None. The undefined tensor
// yields an empty handle.
func (v *Value) TakeTensor() Ref[*Tensor] {
	v.mustBe(TagTensor, "Value.TakeTensor")
	if v.ref == nil {
		*v = Value{}
		return Ref[*Tensor]{}
	}
	t := v.ref.(*Tensor)
	*v = Value{}
	return Reclaim(t)
}

// Blob returns a new owning handle to the opaque blob.
func (v Value) Blob() Ref[*Blob] {
	return borrowRef[*Blob](v, TagBlob, "Value.Blob")
}

// TakeBlob moves the blob out, leaving v None.
func (v *Value) TakeBlob() Ref[*Blob] {
	return takeRef[*Blob](v, TagBlob, "Value.TakeBlob")
}

// Object returns a new owning handle to the record.
func (v Value) Object() Ref[*Object] {
	return borrowRef[*Object](v, TagObject, "Value.Object")
}

// TakeObject moves the record out, leaving v None.
func (v *Value) TakeObject() Ref[*Object] {
	return takeRef[*Object](v, TagObject, "Value.TakeObject")
}

// Future returns a new owning handle to the future.
func (v Value) Future() Ref[*Future] {
	return borrowRef[*Future](v, TagFuture, "Value.Future")
}

// TakeFuture moves the future out, leaving v None.
func (v *Value) TakeFuture() Ref[*Future] {
	return takeRef[*Future](v, TagFuture, "Value.TakeFuture")
}

// ---------------------------------------------------------------------------
// Ownership
// ---------------------------------------------------------------------------

// Clone returns a value owning its own unit of the payload's count.
// Inline payloads are plain copies.
func (v Value) Clone() Value {
	if v.ref != nil {
		incref(v.ref)
	}
	return v
}

// Move transfers ownership out of v, leaving it None. The result owns
// exactly the unit v previously owned.
func (v *Value) Move() Value {
	out := *v
	*v = Value{}
	return out
}

// Drop gives up v's unit of ownership and resets it to None. Dropping
// an inline or None value just resets it.
func (v *Value) Drop() {
	if v.ref != nil {
		decref(v.ref)
	}
	*v = Value{}
}

// ---------------------------------------------------------------------------
// Identity
// ---------------------------------------------------------------------------

// Is reports identity equality, not content equality:
//
//   - None is None; booleans compare by value.
//   - Tensors compare by storage pointer, and the undefined tensor is
//     identity-equal to None in both directions.
//   - Every other pair compares by payload pointer, requiring both
//     sides to actually own one.
func (v Value) Is(rhs Value) bool {
	switch {
	case v.tag == TagNone && rhs.tag == TagNone:
		return true
	case v.tag == TagBool && rhs.tag == TagBool:
		return v.bits == rhs.bits
	case v.tag == TagTensor && rhs.tag == TagTensor:
		return v.ref == rhs.ref
	case v.tag == TagTensor && rhs.tag == TagNone:
		return v.ref == nil
	case v.tag == TagNone && rhs.tag == TagTensor:
		return rhs.ref == nil
	default:
		return v.ref != nil && rhs.ref != nil && v.ref == rhs.ref
	}
}

// String renders a short diagnostic form. It never panics and never
// follows reference payloads deeply.
func (v Value) String() string {
	switch v.tag {
	case TagNone:
		return "None"
	case TagInt:
		return fmt.Sprintf("Int(%d)", int64(v.bits))
	case TagDouble:
		return fmt.Sprintf("Double(%g)", math.Float64frombits(v.bits))
	case TagBool:
		return fmt.Sprintf("Bool(%t)", v.bits != 0)
	case TagDevice:
		return fmt.Sprintf("Device(%s)", unpackDevice(v.bits))
	case TagScalarKind:
		return fmt.Sprintf("ScalarKind(%s)", ScalarKind(v.bits))
	case TagLayout:
		return fmt.Sprintf("Layout(%s)", Layout(v.bits))
	case TagMemoryFormat:
		return fmt.Sprintf("MemoryFormat(%s)", MemoryFormat(v.bits))
	case TagString:
		return fmt.Sprintf("String(%q)", v.ref.(*ConstantString).String())
	case TagTensor:
		if v.ref == nil {
			return "Tensor(undefined)"
		}
		return fmt.Sprintf("Tensor(%p)", v.ref)
	default:
		return fmt.Sprintf("%s(%p)", v.tag, v.ref)
	}
}
