package wire

import (
	"strings"
	"testing"

	"github.com/chazu/rill/manifest"
	"github.com/chazu/rill/rt"
	"github.com/chazu/rill/types"
)

func roundTrip(t *testing.T, v rt.Value, reg *types.Registry) rt.Value {
	t.Helper()
	data, err := Marshal(v)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	out, err := Unmarshal(data, reg)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	return out
}

func TestRoundTripScalars(t *testing.T) {
	for _, v := range []rt.Value{
		rt.None(),
		rt.FromInt(-7),
		rt.FromDouble(2.5),
		rt.FromBool(true),
		rt.FromDevice(rt.Device{Type: rt.DeviceCUDA, Index: 3}),
		rt.FromScalarKind(rt.ScalarFloat),
		rt.FromLayout(rt.LayoutSparse),
		rt.FromMemoryFormat(rt.MemoryChannelsLast),
	} {
		got := roundTrip(t, v, nil)
		if got.Tag() != v.Tag() {
			t.Errorf("tag = %s, want %s", got.Tag(), v.Tag())
		}
		switch v.Tag() {
		case rt.TagInt:
			if got.Int() != v.Int() {
				t.Errorf("int = %d", got.Int())
			}
		case rt.TagDouble:
			if got.Double() != v.Double() {
				t.Errorf("double = %v", got.Double())
			}
		case rt.TagDevice:
			if got.Device() != v.Device() {
				t.Errorf("device = %v", got.Device())
			}
		}
		got.Drop()
	}
}

func TestRoundTripString(t *testing.T) {
	v := rt.FromString("hello wire")
	got := roundTrip(t, v, nil)
	if got.StringValue() != "hello wire" {
		t.Errorf("string = %q", got.StringValue())
	}
	got.Drop()
	v.Drop()
}

func TestRoundTripTypedLists(t *testing.T) {
	v := rt.FromIntSlice([]int64{1, -2, 3})
	got := roundTrip(t, v, nil)
	if got.Tag() != rt.TagIntList {
		t.Fatalf("tag = %s", got.Tag())
	}
	xs := rt.ToSlice[int64](got)
	if len(xs) != 3 || xs[1] != -2 {
		t.Errorf("elems = %v", xs)
	}
	got.Drop()
	v.Drop()

	b := rt.FromBoolSlice([]bool{true, false})
	gotB := roundTrip(t, b, nil)
	if gotB.Tag() != rt.TagBoolList {
		t.Errorf("tag = %s", gotB.Tag())
	}
	gotB.Drop()
	b.Drop()
}

func TestRoundTripNestedGenericList(t *testing.T) {
	inner := rt.FromDoubleSlice([]float64{0.5})
	v := rt.FromValues(rt.FromInt(1), inner.Move(), rt.FromString("s"))

	got := roundTrip(t, v, nil)
	l := got.GenericList()
	if l.Len() != 3 {
		t.Fatalf("Len = %d, want 3", l.Len())
	}
	if l.Get(0).Int() != 1 {
		t.Error("elem 0 wrong")
	}
	nested := l.Get(1).DoubleList()
	if nested.Get(0) != 0.5 {
		t.Error("nested list wrong")
	}
	nested.Drop()
	if l.Get(2).StringValue() != "s" {
		t.Error("elem 2 wrong")
	}
	l.Drop()
	got.Drop()
	v.Drop()
}

func TestRoundTripTupleStaysTuple(t *testing.T) {
	v := rt.FromTuple(rt.FromInt(1), rt.FromBool(false))
	got := roundTrip(t, v, nil)
	if got.Tag() != rt.TagTuple {
		t.Errorf("tag = %s, want Tuple", got.Tag())
	}
	got.Drop()
	v.Drop()
}

func TestRoundTripDictKeepsOrderAndKinds(t *testing.T) {
	d := rt.NewDict[string, int64]()
	d.Set("z", 26)
	d.Set("a", 1)
	d.Set("m", 13)
	v := rt.FromDict(d)

	got := roundTrip(t, v, nil)
	typed := rt.AsDict[string, int64](got) // kinds survived the trip
	if typed.Len() != 3 {
		t.Fatalf("Len = %d, want 3", typed.Len())
	}
	var keys []string
	typed.Range(func(k string, _ int64) bool {
		keys = append(keys, k)
		return true
	})
	want := []string{"z", "a", "m"}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("order = %v, want %v", keys, want)
		}
	}
	typed.Drop()
	got.Drop()
	v.Drop()
}

func buildRegistry(t *testing.T) *types.Registry {
	t.Helper()
	m, err := manifest.Parse([]byte(`
[[class]]
name = "Shape"
namespace = "geom"
attrs = ["id"]

[[class]]
name = "Circle"
namespace = "geom"
extends = "geom.Shape"
attrs = ["radius"]
`))
	if err != nil {
		t.Fatal(err)
	}
	reg, err := m.Build()
	if err != nil {
		t.Fatal(err)
	}
	return reg
}

func TestRoundTripObject(t *testing.T) {
	reg := buildRegistry(t)
	circle, _ := reg.Lookup("geom.Circle")

	r := circle.New()
	r.Get().SetAttr("id", rt.FromInt(7))
	r.Get().SetAttr("radius", rt.FromDouble(1.5))
	v := rt.FromObject(r)

	got := roundTrip(t, v, reg)
	h := got.Object()
	o := h.Get()
	if o.Name() != "geom.Circle" {
		t.Errorf("class = %q", o.Name())
	}
	if o.GetAttr("id").Int() != 7 || o.GetAttr("radius").Double() != 1.5 {
		t.Error("slot values did not survive the trip")
	}
	h.Drop()
	got.Drop()
	v.Drop()
}

func TestUnmarshalObjectNeedsRegistry(t *testing.T) {
	reg := buildRegistry(t)
	shape, _ := reg.Lookup("geom.Shape")
	v := rt.FromObject(shape.New())
	data, err := Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	v.Drop()

	if _, err := Unmarshal(data, nil); err == nil || !strings.Contains(err.Error(), "no registry") {
		t.Errorf("err = %v, want missing-registry error", err)
	}
	if _, err := Unmarshal(data, types.NewRegistry()); err == nil || !strings.Contains(err.Error(), "unknown class") {
		t.Errorf("err = %v, want unknown-class error", err)
	}
}

func TestMarshalRejectsRuntimeOnlyValues(t *testing.T) {
	tensor := rt.FromTensor(rt.NewTensor("storage", nil))
	if _, err := Marshal(tensor); err == nil || !strings.Contains(err.Error(), "cannot cross") {
		t.Errorf("tensor err = %v", err)
	}
	tensor.Drop()

	fut := rt.FromFuture(rt.NewFuture())
	if _, err := Marshal(fut); err == nil {
		t.Error("future should not marshal")
	}
	fut.Drop()

	blob := rt.FromBlob(rt.NewBlob(struct{}{}))
	if _, err := Marshal(blob); err == nil {
		t.Error("blob should not marshal")
	}
	blob.Drop()

	// A runtime-only value nested inside a container is also rejected.
	inner := rt.FromTensor(rt.NewTensor("storage", nil))
	v := rt.FromValues(inner.Move())
	if _, err := Marshal(v); err == nil {
		t.Error("a list holding a tensor should not marshal")
	}
	v.Drop()
}

func TestMarshalRejectsReferenceDictKeys(t *testing.T) {
	d := rt.NewDict[rt.Value, rt.Value]()
	d.Set(rt.FromIntSlice([]int64{1}), rt.FromInt(1))
	v := rt.FromDict(d)
	if _, err := Marshal(v); err == nil || !strings.Contains(err.Error(), "dict key") {
		t.Errorf("err = %v, want dict-key error", err)
	}
	v.Drop()

	// Inline-scalar keys remain fine.
	d2 := rt.NewDict[rt.Value, rt.Value]()
	d2.Set(rt.None(), rt.FromInt(0))
	d2.Set(rt.FromBool(true), rt.FromInt(1))
	v2 := rt.FromDict(d2)
	got := roundTrip(t, v2, nil)
	g := got.GenericDict()
	if g.Len() != 2 {
		t.Errorf("Len = %d, want 2", g.Len())
	}
	probe := rt.FromBool(true)
	if val, ok := g.Get(probe); !ok || val.Int() != 1 {
		t.Error("bool key did not survive the trip")
	}
	g.Drop()
	got.Drop()
	v2.Drop()
}

func TestUnmarshalRejectsBadInput(t *testing.T) {
	if _, err := Unmarshal([]byte{0xFF, 0x00}, nil); err == nil {
		t.Error("garbage bytes should not unmarshal")
	}

	snap, err := cborMarshalForTest(Snapshot{Version: Version + 1})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Unmarshal(snap, nil); err == nil || !strings.Contains(err.Error(), "version") {
		t.Errorf("err = %v, want version error", err)
	}
}

func cborMarshalForTest(s Snapshot) ([]byte, error) {
	return cborEncMode.Marshal(&s)
}
