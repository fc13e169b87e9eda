// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tracefab

import (
	"encoding/binary"
	"math"
)

// Tag identifies the concrete kind carried by an Argument. It is a closed
// set: u8/u16/u32/u64, i8/i16/i32/i64, f32/f64, char, thread, epoch_ns, plus
// each of those with the array bit set, plus the NONE sentinel.
type Tag uint8

const arrayBit Tag = 0x80

const (
	TagNone Tag = iota
	TagU8
	TagU16
	TagU32
	TagU64
	TagI8
	TagI16
	TagI32
	TagI64
	TagF32
	TagF64
	TagChar
	TagThread
	TagEpochNanos
)

// TagCountSentinel never appears as a real argument's tag. It marks the
// sample-schema frame on the network transport: an Argument with this tag,
// ArrayLen == the schema's argument count, and the fixed payload value
// 0xFAFAFAFA (see net/frame.go).
const TagCountSentinel Tag = 0xFF

// IsArray reports whether the array bit is set.
func (t Tag) IsArray() bool { return t&arrayBit != 0 }

// Base strips the array bit, returning the element tag.
func (t Tag) Base() Tag { return t &^ arrayBit }

// Array sets the array bit.
func (t Tag) Array() Tag { return t | arrayBit }

// typeSize is the closed tag-to-size table mandated by §4.1: the byte size
// of one element of the given base tag. NONE has size 0.
var typeSize = [...]uint8{
	TagNone:       0,
	TagU8:         1,
	TagU16:        2,
	TagU32:        4,
	TagU64:        8,
	TagI8:         1,
	TagI16:        2,
	TagI32:        4,
	TagI64:        8,
	TagF32:        4,
	TagF64:        8,
	TagChar:       1,
	TagThread:     4,
	TagEpochNanos: 8,
}

// TypeSize returns the element size in bytes for tag's base kind. It
// panics for an out-of-range base tag; the closed set is exhaustive for
// every tag this package itself produces, so this only fires on a
// hand-crafted or corrupted Tag value.
func TypeSize(tag Tag) int {
	b := tag.Base()
	if int(b) >= len(typeSize) {
		panic("tracefab: tag out of range for the closed type-size table")
	}
	return int(typeSize[b])
}

// Argument is a tagged value: either an inline scalar (at most 8 bytes) or
// a typed array-reference (element bytes plus a count). The array bit is
// set iff Array is non-nil.
//
// Argument is trivially copyable by design — it is the payload carried
// inside queue descriptors and crosses the arena/network boundary as raw
// bytes.
type Argument struct {
	Tag Tag

	// scalar holds the little-endian byte-equivalent of an inline scalar
	// value. Unused when Tag.IsArray().
	scalar [8]byte

	// Array holds the element bytes of an array-typed argument, little-
	// endian per element. Its length is always TypeSize(Tag)*ArrayLen.
	// For Tag == TagChar.Array() this is the raw string/char-array bytes.
	Array []byte

	// ArrayLen is the element count of an array-typed argument; 0 for
	// scalars, per §3's "unused/zero array_length for scalars" invariant.
	ArrayLen uint32
}

func scalarBytes(tag Tag, le func([]byte)) Argument {
	var a Argument
	a.Tag = tag
	le(a.scalar[:])
	return a
}

// ArgNone returns the NONE sentinel argument.
func ArgNone() Argument { return Argument{Tag: TagNone} }

func ArgU8(v uint8) Argument {
	return scalarBytes(TagU8, func(b []byte) { b[0] = v })
}

func ArgU16(v uint16) Argument {
	return scalarBytes(TagU16, func(b []byte) { binary.LittleEndian.PutUint16(b, v) })
}

func ArgU32(v uint32) Argument {
	return scalarBytes(TagU32, func(b []byte) { binary.LittleEndian.PutUint32(b, v) })
}

func ArgU64(v uint64) Argument {
	return scalarBytes(TagU64, func(b []byte) { binary.LittleEndian.PutUint64(b, v) })
}

func ArgI8(v int8) Argument {
	return scalarBytes(TagI8, func(b []byte) { b[0] = byte(v) })
}

func ArgI16(v int16) Argument {
	return scalarBytes(TagI16, func(b []byte) { binary.LittleEndian.PutUint16(b, uint16(v)) })
}

func ArgI32(v int32) Argument {
	return scalarBytes(TagI32, func(b []byte) { binary.LittleEndian.PutUint32(b, uint32(v)) })
}

func ArgI64(v int64) Argument {
	return scalarBytes(TagI64, func(b []byte) { binary.LittleEndian.PutUint64(b, uint64(v)) })
}

func ArgF32(v float32) Argument {
	return scalarBytes(TagF32, func(b []byte) { binary.LittleEndian.PutUint32(b, math.Float32bits(v)) })
}

func ArgF64(v float64) Argument {
	return scalarBytes(TagF64, func(b []byte) { binary.LittleEndian.PutUint64(b, math.Float64bits(v)) })
}

func ArgChar(v byte) Argument {
	return scalarBytes(TagChar, func(b []byte) { b[0] = v })
}

// ArgThread wraps a 32-bit opaque thread/goroutine identifier, typically
// sourced from an embedder-maintained id rather than any Go runtime
// concept (Go goroutines have no stable public id).
func ArgThread(v uint32) Argument {
	return scalarBytes(TagThread, func(b []byte) { binary.LittleEndian.PutUint32(b, v) })
}

// ArgEpochNanos wraps a 64-bit epoch-nanosecond timepoint.
func ArgEpochNanos(v int64) Argument {
	return scalarBytes(TagEpochNanos, func(b []byte) { binary.LittleEndian.PutUint64(b, uint64(v)) })
}

// ArgString records a zero-terminated-style character string. The
// recorded length excludes any terminator, matching §4.1: the caller
// passes a Go string, whose length already excludes one.
func ArgString(s string) Argument {
	return Argument{Tag: TagChar.Array(), Array: []byte(s), ArrayLen: uint32(len(s))}
}

// U8Value returns v's scalar payload reinterpreted as a uint8. Callers
// must check Tag first.
func (a Argument) U8Value() uint8 { return a.scalar[0] }

func (a Argument) U16Value() uint16 { return binary.LittleEndian.Uint16(a.scalar[:]) }
func (a Argument) U32Value() uint32 { return binary.LittleEndian.Uint32(a.scalar[:]) }
func (a Argument) U64Value() uint64 { return binary.LittleEndian.Uint64(a.scalar[:]) }

func (a Argument) I8Value() int8   { return int8(a.scalar[0]) }
func (a Argument) I16Value() int16 { return int16(binary.LittleEndian.Uint16(a.scalar[:])) }
func (a Argument) I32Value() int32 { return int32(binary.LittleEndian.Uint32(a.scalar[:])) }
func (a Argument) I64Value() int64 { return int64(binary.LittleEndian.Uint64(a.scalar[:])) }

func (a Argument) F32Value() float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(a.scalar[:]))
}
func (a Argument) F64Value() float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(a.scalar[:]))
}

func (a Argument) CharValue() byte     { return a.scalar[0] }
func (a Argument) ThreadValue() uint32 { return binary.LittleEndian.Uint32(a.scalar[:]) }
func (a Argument) EpochNanosValue() int64 {
	return int64(binary.LittleEndian.Uint64(a.scalar[:]))
}

// StringValue returns the array payload of a char-array argument as a Go
// string. Callers must check Tag == TagChar.Array() first.
func (a Argument) StringValue() string { return string(a.Array) }

// ScalarBytes returns the raw little-endian scalar payload, for wire
// encoding. It is meaningless for array-typed arguments.
func (a Argument) ScalarBytes() []byte { return a.scalar[:] }

// ArgumentFromWire reconstructs an Argument from its fixed-size wire
// fields (tag, array length, scalar bytes). The caller fills Array in
// separately for array-typed tags once the variable-length payload has
// been read off the wire.
func ArgumentFromWire(tag Tag, arrayLen uint32, scalar []byte) Argument {
	var a Argument
	a.Tag = tag
	a.ArrayLen = arrayLen
	copy(a.scalar[:], scalar)
	return a
}

// SentinelSchemaArgument builds the network transport's sample-schema
// sentinel argument (§6.3): TagCountSentinel, array length n, fixed
// payload 0xFAFAFAFA.
func SentinelSchemaArgument(n uint32) Argument {
	a := Argument{Tag: TagCountSentinel, ArrayLen: n}
	binary.LittleEndian.PutUint32(a.scalar[:4], 0xFAFAFAFA)
	return a
}

// Numeric constrains the scalar kinds that have an array-of-X constructor.
type Numeric interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~int8 | ~int16 | ~int32 | ~int64 |
		~float32 | ~float64
}

func numericTag[T Numeric]() Tag {
	var zero T
	switch any(zero).(type) {
	case uint8:
		return TagU8
	case uint16:
		return TagU16
	case uint32:
		return TagU32
	case uint64:
		return TagU64
	case int8:
		return TagI8
	case int16:
		return TagI16
	case int32:
		return TagI32
	case int64:
		return TagI64
	case float32:
		return TagF32
	case float64:
		return TagF64
	default:
		panic("tracefab: unreachable, Numeric is a closed constraint")
	}
}

// ArgArray builds an array-of-T Argument, encoding each element as
// little-endian bytes of its tag's type size. T must be one of the
// Numeric kinds; the closed set is enforced at compile time.
func ArgArray[T Numeric](v []T) Argument {
	tag := numericTag[T]()
	size := int(typeSize[tag])
	buf := make([]byte, size*len(v))
	for i, elem := range v {
		off := i * size
		switch size {
		case 1:
			buf[off] = byte(toU64(elem))
		case 2:
			binary.LittleEndian.PutUint16(buf[off:], uint16(toU64(elem)))
		case 4:
			binary.LittleEndian.PutUint32(buf[off:], uint32(toU64(elem)))
		case 8:
			binary.LittleEndian.PutUint64(buf[off:], toU64(elem))
		}
	}
	return Argument{Tag: tag.Array(), Array: buf, ArrayLen: uint32(len(v))}
}

func toU64[T Numeric](v T) uint64 {
	switch x := any(v).(type) {
	case uint8:
		return uint64(x)
	case uint16:
		return uint64(x)
	case uint32:
		return uint64(x)
	case uint64:
		return x
	case int8:
		return uint64(uint8(x))
	case int16:
		return uint64(uint16(x))
	case int32:
		return uint64(uint32(x))
	case int64:
		return uint64(x)
	case float32:
		return uint64(math.Float32bits(x))
	case float64:
		return math.Float64bits(x)
	default:
		panic("tracefab: unreachable, Numeric is a closed constraint")
	}
}
