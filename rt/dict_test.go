package rt

import "testing"

func TestDictSetGet(t *testing.T) {
	d := NewDict[string, int64]()
	d.Set("one", 1)
	d.Set("two", 2)
	if d.Len() != 2 {
		t.Fatalf("Len = %d, want 2", d.Len())
	}
	if v, ok := d.Get("one"); !ok || v != 1 {
		t.Errorf("Get(one) = %d, %t", v, ok)
	}
	if _, ok := d.Get("three"); ok {
		t.Error("Get(three) should miss")
	}
	d.Drop()
}

func TestDictReplaceKeepsPosition(t *testing.T) {
	d := NewDict[string, int64]()
	d.Set("a", 1)
	d.Set("b", 2)
	d.Set("c", 3)
	d.Set("b", 20)

	var keys []string
	var vals []int64
	d.Range(func(k string, v int64) bool {
		keys = append(keys, k)
		vals = append(vals, v)
		return true
	})
	wantKeys := []string{"a", "b", "c"}
	wantVals := []int64{1, 20, 3}
	for i := range wantKeys {
		if keys[i] != wantKeys[i] || vals[i] != wantVals[i] {
			t.Fatalf("order after replace = %v/%v, want %v/%v", keys, vals, wantKeys, wantVals)
		}
	}
	d.Drop()
}

func TestDictDeletePreservesOrder(t *testing.T) {
	d := NewDict[int64, int64]()
	for i := int64(0); i < 5; i++ {
		d.Set(i, i*i)
	}
	if !d.Delete(2) {
		t.Fatal("Delete(2) should report true")
	}
	if d.Delete(2) {
		t.Fatal("second Delete(2) should report false")
	}

	var keys []int64
	d.Range(func(k, _ int64) bool {
		keys = append(keys, k)
		return true
	})
	want := []int64{0, 1, 3, 4}
	if len(keys) != len(want) {
		t.Fatalf("keys = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("keys = %v, want %v", keys, want)
		}
	}
	// Lookups after the reindex still hit.
	if v, ok := d.Get(4); !ok || v != 16 {
		t.Errorf("Get(4) after delete = %d, %t", v, ok)
	}
	d.Drop()
}

func TestDictMixedKeyTags(t *testing.T) {
	d := NewDict[Value, Value]()
	d.Set(FromInt(1), FromString("int"))
	d.Set(FromBool(true), FromString("bool"))
	d.Set(None(), FromString("none"))
	d.Set(FromString("k"), FromString("string"))

	probe := FromInt(1)
	if v, ok := d.Get(probe); !ok || v.StringValue() != "int" {
		t.Error("int key lookup failed")
	}
	probe = None()
	if v, ok := d.Get(probe); !ok || v.StringValue() != "none" {
		t.Error("None key lookup failed")
	}
	// Distinct string values with equal content are the same key.
	probe = FromString("k")
	if v, ok := d.Get(probe); !ok || v.StringValue() != "string" {
		t.Error("string keys should compare by content")
	}
	probe.Drop()
	d.Drop()
}

func TestDictReferenceKeysByIdentity(t *testing.T) {
	d := NewDict[Value, Value]()
	l1 := FromIntSlice([]int64{1})
	l2 := FromIntSlice([]int64{1})

	d.Set(l1.Clone(), FromInt(10))
	if _, ok := d.Get(l2); ok {
		t.Error("a distinct list with equal content must not match")
	}
	if v, ok := d.Get(l1); !ok || v.Int() != 10 {
		t.Error("the same list must match")
	}
	l1.Drop()
	l2.Drop()
	d.Drop()
}

func TestDictOwnsEntries(t *testing.T) {
	freed := false
	tv := FromTensor(NewTensor("storage", func() { freed = true }))

	d := NewDict[string, Value]()
	d.Set("t", tv.Move())
	if freed {
		t.Fatal("value freed while the dict owns it")
	}
	d.Set("t", None()) // replacement drops the old value
	if !freed {
		t.Error("replacing an entry should drop the old value")
	}
	d.Drop()
}

func TestDictAliasSharesStore(t *testing.T) {
	d := NewDict[string, int64]()
	alias := d.Alias()
	alias.Set("x", 1)
	if v, ok := d.Get("x"); !ok || v != 1 {
		t.Error("mutation through alias not visible")
	}
	alias.Drop()
	if _, ok := d.Get("x"); !ok {
		t.Error("store freed while a facade was still live")
	}
	d.Drop()
}

func TestGenericDictOverTypedStore(t *testing.T) {
	d := NewDict[string, int64]()
	d.Set("n", 42)
	v := FromDict(d)

	g := v.GenericDict()
	probe := FromString("n")
	got, ok := g.Get(probe)
	probe.Drop()
	if !ok || got.Int() != 42 {
		t.Error("generic facade should read a typed store")
	}
	g.Drop()
	v.Drop()
}

func TestGenericDictWrongTagPanics(t *testing.T) {
	v := FromInt(1)
	expectPanic(t, "GenericDict on int", func() { v.GenericDict() })
}

func TestTakeGenericDictMovesOwnership(t *testing.T) {
	d := NewDict[string, int64]()
	d.Set("a", 1)
	v := FromDict(d)
	g := v.TakeGenericDict()
	if !v.IsNone() {
		t.Error("source should be None after TakeGenericDict")
	}
	if n := Refs(g.store); n != 1 {
		t.Errorf("store count = %d, want 1", n)
	}
	g.Drop()
}
