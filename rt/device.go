package rt

import "fmt"

// ---------------------------------------------------------------------------
// Inline enum payloads: device, scalar kind, layout, memory format
// ---------------------------------------------------------------------------

// DeviceType identifies the compute backend a tensor lives on.
type DeviceType uint8

const (
	DeviceCPU DeviceType = iota
	DeviceCUDA
)

func (t DeviceType) String() string {
	switch t {
	case DeviceCPU:
		return "cpu"
	case DeviceCUDA:
		return "cuda"
	default:
		return fmt.Sprintf("device(%d)", uint8(t))
	}
}

// Device is a backend plus an ordinal. Index -1 means the backend's
// current/default device.
type Device struct {
	Type  DeviceType
	Index int8
}

func (d Device) String() string {
	if d.Index < 0 {
		return d.Type.String()
	}
	return fmt.Sprintf("%s:%d", d.Type, d.Index)
}

// packDevice and unpackDevice round-trip a Device through the value's
// inline payload bits.
func packDevice(d Device) uint64 {
	return uint64(d.Type)<<8 | uint64(uint8(d.Index))
}

func unpackDevice(bits uint64) Device {
	return Device{Type: DeviceType(bits >> 8), Index: int8(bits & 0xFF)}
}

// ScalarKind identifies a tensor element type.
type ScalarKind uint8

const (
	ScalarByte ScalarKind = iota
	ScalarChar
	ScalarShort
	ScalarInt
	ScalarLong
	ScalarHalf
	ScalarFloat
	ScalarDouble
	ScalarBool
)

func (k ScalarKind) String() string {
	switch k {
	case ScalarByte:
		return "byte"
	case ScalarChar:
		return "char"
	case ScalarShort:
		return "short"
	case ScalarInt:
		return "int"
	case ScalarLong:
		return "long"
	case ScalarHalf:
		return "half"
	case ScalarFloat:
		return "float"
	case ScalarDouble:
		return "double"
	case ScalarBool:
		return "bool"
	default:
		return fmt.Sprintf("scalar(%d)", uint8(k))
	}
}

// Layout identifies a tensor storage layout.
type Layout uint8

const (
	LayoutStrided Layout = iota
	LayoutSparse
)

func (l Layout) String() string {
	switch l {
	case LayoutStrided:
		return "strided"
	case LayoutSparse:
		return "sparse"
	default:
		return fmt.Sprintf("layout(%d)", uint8(l))
	}
}

// MemoryFormat identifies a tensor's dimension ordering.
type MemoryFormat uint8

const (
	MemoryPreserve MemoryFormat = iota
	MemoryContiguous
	MemoryChannelsLast
)

func (m MemoryFormat) String() string {
	switch m {
	case MemoryPreserve:
		return "preserve"
	case MemoryContiguous:
		return "contiguous"
	case MemoryChannelsLast:
		return "channels_last"
	default:
		return fmt.Sprintf("memory_format(%d)", uint8(m))
	}
}
