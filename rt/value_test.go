package rt

import (
	"math"
	"testing"
)

// ---------------------------------------------------------------------------
// Inline payload round-trips
// ---------------------------------------------------------------------------

func TestIntRoundTrip(t *testing.T) {
	tests := []int64{0, 1, -1, 42, math.MaxInt64, math.MinInt64}
	for _, n := range tests {
		v := FromInt(n)
		if !v.IsInt() {
			t.Errorf("FromInt(%d).IsInt() = false, want true", n)
			continue
		}
		if got := v.Int(); got != n {
			t.Errorf("FromInt(%d).Int() = %d", n, got)
		}
		if v.OwnsPointer() {
			t.Errorf("FromInt(%d) should not own a pointer", n)
		}
	}
}

func TestDoubleRoundTrip(t *testing.T) {
	tests := []float64{0.0, -0.0, 1.5, -3.25, math.MaxFloat64, math.Inf(1), math.Inf(-1)}
	for _, f := range tests {
		v := FromDouble(f)
		if !v.IsDouble() {
			t.Errorf("FromDouble(%v).IsDouble() = false", f)
			continue
		}
		if got := v.Double(); got != f {
			t.Errorf("FromDouble(%v).Double() = %v", f, got)
		}
	}

	v := FromDouble(math.NaN())
	if !math.IsNaN(v.Double()) {
		t.Error("NaN round trip failed")
	}
}

func TestBoolRoundTrip(t *testing.T) {
	if !FromBool(true).Bool() {
		t.Error("FromBool(true).Bool() = false")
	}
	if FromBool(false).Bool() {
		t.Error("FromBool(false).Bool() = true")
	}
}

func TestDeviceRoundTrip(t *testing.T) {
	tests := []Device{
		{Type: DeviceCPU, Index: -1},
		{Type: DeviceCUDA, Index: 0},
		{Type: DeviceCUDA, Index: 7},
	}
	for _, d := range tests {
		v := FromDevice(d)
		if !v.IsDevice() {
			t.Errorf("FromDevice(%v).IsDevice() = false", d)
			continue
		}
		if got := v.Device(); got != d {
			t.Errorf("FromDevice(%v).Device() = %v", d, got)
		}
	}
}

func TestEnumRoundTrips(t *testing.T) {
	if got := FromScalarKind(ScalarFloat).ScalarKind(); got != ScalarFloat {
		t.Errorf("ScalarKind round trip = %v", got)
	}
	if got := FromLayout(LayoutSparse).Layout(); got != LayoutSparse {
		t.Errorf("Layout round trip = %v", got)
	}
	if got := FromMemoryFormat(MemoryContiguous).MemoryFormat(); got != MemoryContiguous {
		t.Errorf("MemoryFormat round trip = %v", got)
	}
}

func TestZeroValueIsNone(t *testing.T) {
	var v Value
	if !v.IsNone() {
		t.Error("zero Value should be None")
	}
	if !None().IsNone() {
		t.Error("None() should be None")
	}
	if None().OwnsPointer() {
		t.Error("None should not own a pointer")
	}
}

// ---------------------------------------------------------------------------
// Tag mismatch is a contract violation
// ---------------------------------------------------------------------------

func TestExtractionMismatchPanics(t *testing.T) {
	v := FromInt(3)
	expectPanic(t, "Double on int", func() { v.Double() })
	expectPanic(t, "Bool on int", func() { v.Bool() })
	expectPanic(t, "StringValue on int", func() { v.StringValue() })
	expectPanic(t, "Object on int", func() { v.Object() })
	expectPanic(t, "TakeFuture on int", func() { v.TakeFuture() })
	expectPanic(t, "IntList on int", func() { v.IntList() })
}

// ---------------------------------------------------------------------------
// Ownership: Clone / Move / Drop
// ---------------------------------------------------------------------------

func TestCloneIncrementsPayload(t *testing.T) {
	v := FromString("hello")
	s := v.ConstString()
	raw := s.Get()
	s.Drop()
	if n := Refs(raw); n != 1 {
		t.Fatalf("count = %d, want 1", n)
	}

	c := v.Clone()
	if n := Refs(raw); n != 2 {
		t.Errorf("count after Clone = %d, want 2", n)
	}
	c.Drop()
	if n := Refs(raw); n != 1 {
		t.Errorf("count after dropping clone = %d, want 1", n)
	}
	v.Drop()
}

func TestMoveLeavesSourceNone(t *testing.T) {
	v := FromString("payload")
	raw := v.ConstString()
	before := Refs(raw.Get())

	moved := v.Move()
	if !v.IsNone() {
		t.Error("source should be None after Move")
	}
	if v.OwnsPointer() {
		t.Error("source should not own a pointer after Move")
	}
	if !moved.IsString() {
		t.Error("moved value should be a string")
	}
	// No net count change: the unit transferred.
	if after := Refs(raw.Get()); after != before {
		t.Errorf("count changed across Move: %d -> %d", before, after)
	}
	moved.Drop()
	raw.Drop()
}

func TestTakeResetsSource(t *testing.T) {
	v := FromString("x")
	s := v.TakeConstString()
	if !v.IsNone() {
		t.Error("source should be None after TakeConstString")
	}
	if got := s.Get().String(); got != "x" {
		t.Errorf("content = %q, want %q", got, "x")
	}
	if n := Refs(s.Get()); n != 1 {
		t.Errorf("count = %d, want 1 (move must not change the count)", n)
	}
	s.Drop()
}

func TestBorrowAliases(t *testing.T) {
	v := FromString("y")
	s := v.ConstString()
	if n := Refs(s.Get()); n != 2 {
		t.Errorf("count after borrow = %d, want 2", n)
	}
	if !v.IsString() {
		t.Error("borrowing must not disturb the source")
	}
	s.Drop()
	v.Drop()
}

func TestValueDropFreesPayload(t *testing.T) {
	freed := false
	r := NewTensor("storage", func() { freed = true })
	v := FromTensor(r)
	if freed {
		t.Fatal("payload freed while the value owns it")
	}
	v.Drop()
	if !freed {
		t.Error("payload not freed when the last owning value dropped")
	}
	if !v.IsNone() {
		t.Error("value should be None after Drop")
	}
}

// ---------------------------------------------------------------------------
// Identity comparison
// ---------------------------------------------------------------------------

func TestIdentityTable(t *testing.T) {
	if !None().Is(None()) {
		t.Error("None is None should be true")
	}
	if !FromBool(true).Is(FromBool(true)) {
		t.Error("true is true should be true")
	}
	if FromBool(true).Is(FromBool(false)) {
		t.Error("true is false should be false")
	}

	// Undefined tensor and None are identity-equal, both directions.
	u := UndefinedTensor()
	if !u.Is(None()) {
		t.Error("undefined tensor is None should be true")
	}
	if !None().Is(u) {
		t.Error("None is undefined tensor should be true")
	}

	// Defined tensors compare by storage pointer.
	ta := FromTensor(NewTensor("a", nil))
	tb := FromTensor(NewTensor("b", nil))
	if !ta.Is(ta) {
		t.Error("tensor should be identical to itself")
	}
	if ta.Is(tb) {
		t.Error("distinct tensors should not be identical")
	}
	if ta.Is(None()) {
		t.Error("defined tensor is None should be false")
	}

	// Identity, not content: distinct lists with equal contents differ.
	la := FromIntSlice([]int64{1, 2, 3})
	lb := FromIntSlice([]int64{1, 2, 3})
	if la.Is(lb) {
		t.Error("independently built lists should not be identical")
	}
	aliased := la.Clone()
	if !la.Is(aliased) {
		t.Error("aliased list should be identical")
	}

	// Scalars never compare identical: no owned pointer on either side.
	if FromInt(1).Is(FromInt(1)) {
		t.Error("ints are not reference values and have no identity")
	}

	ta.Drop()
	tb.Drop()
	la.Drop()
	lb.Drop()
	aliased.Drop()
}
