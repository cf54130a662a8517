// Package wire serializes value trees crossing stage boundaries.
//
// A snapshot carries scalars, strings, lists, dicts, tuples, and
// records (by qualified class name). Tensors, blobs, and futures are
// process-local handles and never cross a boundary this way; encoding
// one is an error. Dict keys must be content-keyed tags (inline scalars
// or strings): reference keys hash by identity, which does not survive
// a snapshot, so encoding one is also an error. Decoding records
// requires a types.Registry to resolve class names against.
package wire

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/chazu/rill/rt"
	"github.com/chazu/rill/types"
)

// cborEncMode uses canonical mode for deterministic encoding.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("wire: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Version is the snapshot format version.
const Version = 1

// Wire kind codes. These are part of the format and must stay stable
// even if the runtime's tag enum is reordered.
const (
	kindNone uint8 = iota
	kindInt
	kindDouble
	kindBool
	kindString
	kindDevice
	kindScalarKind
	kindLayout
	kindMemoryFormat
	kindIntList
	kindDoubleList
	kindBoolList
	kindGenericList
	kindGenericDict
	kindTuple
	kindObject
)

// Element kind codes for dict capability tags.
const (
	elemGeneric uint8 = iota
	elemInt
	elemDouble
	elemBool
	elemString
)

// node is the wire form of a single value.
type node struct {
	Kind   uint8   `cbor:"t"`
	Int    int64   `cbor:"i,omitempty"`
	Double float64 `cbor:"d,omitempty"`
	Bool   bool    `cbor:"b,omitempty"`
	Str    string  `cbor:"s,omitempty"`
	Class  string  `cbor:"c,omitempty"`
	Elems  []node  `cbor:"e,omitempty"`
	Keys   []node  `cbor:"k,omitempty"`
	KK     uint8   `cbor:"kk,omitempty"`
	VK     uint8   `cbor:"vk,omitempty"`
}

// Snapshot is the versioned envelope around one value tree.
type Snapshot struct {
	Version int  `cbor:"v"`
	Root    node `cbor:"r"`
}

// Marshal serializes a value tree to CBOR bytes. The value is borrowed.
func Marshal(v rt.Value) ([]byte, error) {
	root, err := encode(v)
	if err != nil {
		return nil, err
	}
	return cborEncMode.Marshal(&Snapshot{Version: Version, Root: root})
}

// Unmarshal deserializes a snapshot, resolving record classes against
// reg. The result is owned by the caller. reg may be nil when the
// snapshot is known to carry no records.
func Unmarshal(data []byte, reg *types.Registry) (rt.Value, error) {
	var s Snapshot
	if err := cbor.Unmarshal(data, &s); err != nil {
		return rt.None(), fmt.Errorf("wire: unmarshal snapshot: %w", err)
	}
	if s.Version != Version {
		return rt.None(), fmt.Errorf("wire: unsupported snapshot version %d", s.Version)
	}
	return decode(s.Root, reg)
}

func elemKindCode(k rt.ElemKind) uint8 {
	switch k {
	case rt.ElemInt:
		return elemInt
	case rt.ElemDouble:
		return elemDouble
	case rt.ElemBool:
		return elemBool
	case rt.ElemString:
		return elemString
	default:
		return elemGeneric
	}
}

func elemKindOf(code uint8) rt.ElemKind {
	switch code {
	case elemInt:
		return rt.ElemInt
	case elemDouble:
		return rt.ElemDouble
	case elemBool:
		return rt.ElemBool
	case elemString:
		return rt.ElemString
	default:
		return rt.ElemGeneric
	}
}

func encode(v rt.Value) (node, error) {
	switch v.Tag() {
	case rt.TagNone:
		return node{Kind: kindNone}, nil
	case rt.TagInt:
		return node{Kind: kindInt, Int: v.Int()}, nil
	case rt.TagDouble:
		return node{Kind: kindDouble, Double: v.Double()}, nil
	case rt.TagBool:
		return node{Kind: kindBool, Bool: v.Bool()}, nil
	case rt.TagString:
		return node{Kind: kindString, Str: v.StringValue()}, nil
	case rt.TagDevice:
		d := v.Device()
		return node{Kind: kindDevice, Int: int64(d.Type)<<8 | int64(uint8(d.Index))}, nil
	case rt.TagScalarKind:
		return node{Kind: kindScalarKind, Int: int64(v.ScalarKind())}, nil
	case rt.TagLayout:
		return node{Kind: kindLayout, Int: int64(v.Layout())}, nil
	case rt.TagMemoryFormat:
		return node{Kind: kindMemoryFormat, Int: int64(v.MemoryFormat())}, nil
	case rt.TagIntList:
		l := v.IntList()
		defer l.Drop()
		elems := make([]node, 0, l.Len())
		l.Range(func(_ int, e int64) bool {
			elems = append(elems, node{Kind: kindInt, Int: e})
			return true
		})
		return node{Kind: kindIntList, Elems: elems}, nil
	case rt.TagDoubleList:
		l := v.DoubleList()
		defer l.Drop()
		elems := make([]node, 0, l.Len())
		l.Range(func(_ int, e float64) bool {
			elems = append(elems, node{Kind: kindDouble, Double: e})
			return true
		})
		return node{Kind: kindDoubleList, Elems: elems}, nil
	case rt.TagBoolList:
		l := v.BoolList()
		defer l.Drop()
		elems := make([]node, 0, l.Len())
		l.Range(func(_ int, e bool) bool {
			elems = append(elems, node{Kind: kindBool, Bool: e})
			return true
		})
		return node{Kind: kindBoolList, Elems: elems}, nil
	case rt.TagGenericList, rt.TagTuple:
		kind := kindGenericList
		var l rt.List[rt.Value]
		if v.Tag() == rt.TagTuple {
			kind = kindTuple
			l = v.Tuple()
		} else {
			l = v.GenericList()
		}
		defer l.Drop()
		elems := make([]node, 0, l.Len())
		var encErr error
		l.Range(func(_ int, e rt.Value) bool {
			n, err := encode(e)
			if err != nil {
				encErr = err
				return false
			}
			elems = append(elems, n)
			return true
		})
		if encErr != nil {
			return node{}, encErr
		}
		return node{Kind: kind, Elems: elems}, nil
	case rt.TagGenericDict:
		d := v.GenericDict()
		defer d.Drop()
		keys := make([]node, 0, d.Len())
		vals := make([]node, 0, d.Len())
		var encErr error
		d.Range(func(k, e rt.Value) bool {
			// Reference keys hash by identity, which a snapshot cannot
			// preserve: decoding would re-key by fresh identity and
			// collide entries that were distinct. Only content-keyed
			// tags survive the trip.
			switch k.Tag() {
			case rt.TagNone, rt.TagInt, rt.TagDouble, rt.TagBool,
				rt.TagDevice, rt.TagScalarKind, rt.TagLayout,
				rt.TagMemoryFormat, rt.TagString:
			default:
				encErr = fmt.Errorf("wire: %s dict key cannot cross a stage boundary", k.Tag())
				return false
			}
			kn, err := encode(k)
			if err != nil {
				encErr = err
				return false
			}
			vn, err := encode(e)
			if err != nil {
				encErr = err
				return false
			}
			keys = append(keys, kn)
			vals = append(vals, vn)
			return true
		})
		if encErr != nil {
			return node{}, encErr
		}
		return node{
			Kind:  kindGenericDict,
			Keys:  keys,
			Elems: vals,
			KK:    elemKindCode(d.KeyKind()),
			VK:    elemKindCode(d.ValKind()),
		}, nil
	case rt.TagObject:
		o := v.Object()
		defer o.Drop()
		obj := o.Get()
		elems := make([]node, 0, obj.NumSlots())
		for i := 0; i < obj.NumSlots(); i++ {
			n, err := encode(obj.GetSlot(i))
			if err != nil {
				return node{}, err
			}
			elems = append(elems, n)
		}
		return node{Kind: kindObject, Class: obj.Name(), Elems: elems}, nil
	default:
		return node{}, fmt.Errorf("wire: %s value cannot cross a stage boundary", v.Tag())
	}
}

func decode(n node, reg *types.Registry) (rt.Value, error) {
	switch n.Kind {
	case kindNone:
		return rt.None(), nil
	case kindInt:
		return rt.FromInt(n.Int), nil
	case kindDouble:
		return rt.FromDouble(n.Double), nil
	case kindBool:
		return rt.FromBool(n.Bool), nil
	case kindString:
		return rt.FromString(n.Str), nil
	case kindDevice:
		return rt.FromDevice(rt.Device{
			Type:  rt.DeviceType(n.Int >> 8),
			Index: int8(uint8(n.Int & 0xFF)),
		}), nil
	case kindScalarKind:
		return rt.FromScalarKind(rt.ScalarKind(n.Int)), nil
	case kindLayout:
		return rt.FromLayout(rt.Layout(n.Int)), nil
	case kindMemoryFormat:
		return rt.FromMemoryFormat(rt.MemoryFormat(n.Int)), nil
	case kindIntList:
		xs := make([]int64, len(n.Elems))
		for i, e := range n.Elems {
			xs[i] = e.Int
		}
		return rt.FromIntSlice(xs), nil
	case kindDoubleList:
		xs := make([]float64, len(n.Elems))
		for i, e := range n.Elems {
			xs[i] = e.Double
		}
		return rt.FromDoubleSlice(xs), nil
	case kindBoolList:
		xs := make([]bool, len(n.Elems))
		for i, e := range n.Elems {
			xs[i] = e.Bool
		}
		return rt.FromBoolSlice(xs), nil
	case kindGenericList, kindTuple:
		xs := make([]rt.Value, 0, len(n.Elems))
		for _, e := range n.Elems {
			v, err := decode(e, reg)
			if err != nil {
				for i := range xs {
					xs[i].Drop()
				}
				return rt.None(), err
			}
			xs = append(xs, v)
		}
		if n.Kind == kindTuple {
			return rt.FromTuple(xs...), nil
		}
		return rt.FromValues(xs...), nil
	case kindGenericDict:
		if len(n.Keys) != len(n.Elems) {
			return rt.None(), fmt.Errorf("wire: dict with %d keys but %d values", len(n.Keys), len(n.Elems))
		}
		d := rt.NewDictOfKinds(elemKindOf(n.KK), elemKindOf(n.VK))
		for i := range n.Keys {
			k, err := decode(n.Keys[i], reg)
			if err != nil {
				d.Drop()
				return rt.None(), err
			}
			v, err := decode(n.Elems[i], reg)
			if err != nil {
				k.Drop()
				d.Drop()
				return rt.None(), err
			}
			d.Set(k, v)
		}
		return rt.FromDict(d), nil
	case kindObject:
		if reg == nil {
			return rt.None(), fmt.Errorf("wire: record %s in snapshot but no registry supplied", n.Class)
		}
		ct, ok := reg.Lookup(n.Class)
		if !ok {
			return rt.None(), fmt.Errorf("wire: unknown class %s", n.Class)
		}
		r := rt.NewObject(ct, len(n.Elems))
		obj := r.Get()
		for i, e := range n.Elems {
			v, err := decode(e, reg)
			if err != nil {
				r.Drop()
				return rt.None(), err
			}
			obj.SetSlot(i, v)
		}
		return rt.FromObject(r), nil
	default:
		return rt.None(), fmt.Errorf("wire: unknown kind %d", n.Kind)
	}
}
