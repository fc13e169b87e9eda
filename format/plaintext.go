// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package format provides concrete EventFormatter/SampleFormatter
// implementations (C12): a human-readable plain-text writer and an
// InfluxDB line-protocol encoder for samples.
package format

import (
	"encoding/binary"
	"math"
	"strconv"

	"code.hybscloud.com/tracefab"
)

// PlainText is a human-readable EventFormatter and SampleFormatter,
// grounded on PlainTextFormatters.hpp's `"[ func - file: line ] \"fmt\"
// // val, // val,\n"` layout — reimplemented with strconv.AppendInt /
// AppendFloat in place of the original's hand-rolled decimal printer.
type PlainText struct{}

// FormatAttributes is a no-op: the plain-text formatter only writes
// bytes on FormatEvent, matching the original's formatEventAttributes_.
func (PlainText) FormatAttributes(tracefab.Sink, *tracefab.EventAttributes) error {
	return nil
}

// FormatEvent writes "[ func - file: line ] \"message_format\" // v, // v, ...\n".
func (PlainText) FormatEvent(sink tracefab.Sink, attr *tracefab.EventAttributes, args []tracefab.Argument) error {
	buf := make([]byte, 0, 128)
	buf = append(buf, "[ "...)
	buf = append(buf, attr.Function...)
	buf = append(buf, " - "...)
	buf = append(buf, attr.File...)
	buf = append(buf, ": "...)
	buf = strconv.AppendUint(buf, uint64(attr.Line), 10)
	buf = append(buf, " ] \""...)
	buf = append(buf, attr.MessageFormat...)
	buf = append(buf, '"')
	for _, a := range args {
		buf = append(buf, " // "...)
		buf = appendArgument(buf, a)
	}
	buf = append(buf, '\n')
	return writeAll(sink, buf)
}

// FormatExpectedTypes is a no-op: the plain-text formatter does not echo
// the schema, matching the original's formatExpectedTypes bookkeeping
// role rather than a visible write.
func (PlainText) FormatExpectedTypes(tracefab.Sink, []tracefab.Tag) error {
	return nil
}

// FormatValues writes each sample value in schema order: numeric arrays
// bracketed in "{v,v,...}", char arrays as their raw text followed by ",",
// char scalars as the bare character, other scalars suffixed with ",".
func (PlainText) FormatValues(sink tracefab.Sink, args []tracefab.Argument) error {
	buf := make([]byte, 0, 64)
	for _, a := range args {
		buf = appendArgument(buf, a)
	}
	buf = append(buf, '\n')
	return writeAll(sink, buf)
}

func writeAll(sink tracefab.Sink, p []byte) error {
	n, err := sink.Write(p)
	if err != nil {
		return err
	}
	if n < len(p) {
		return tracefab.ErrSinkWriteShort
	}
	return nil
}

func appendArgument(buf []byte, a tracefab.Argument) []byte {
	if a.Tag.IsArray() {
		return appendArray(buf, a)
	}
	switch a.Tag {
	case tracefab.TagU8:
		buf = strconv.AppendUint(buf, uint64(a.U8Value()), 10)
	case tracefab.TagU16:
		buf = strconv.AppendUint(buf, uint64(a.U16Value()), 10)
	case tracefab.TagU32:
		buf = strconv.AppendUint(buf, uint64(a.U32Value()), 10)
	case tracefab.TagU64:
		buf = strconv.AppendUint(buf, a.U64Value(), 10)
	case tracefab.TagI8:
		buf = strconv.AppendInt(buf, int64(a.I8Value()), 10)
	case tracefab.TagI16:
		buf = strconv.AppendInt(buf, int64(a.I16Value()), 10)
	case tracefab.TagI32:
		buf = strconv.AppendInt(buf, int64(a.I32Value()), 10)
	case tracefab.TagI64:
		buf = strconv.AppendInt(buf, a.I64Value(), 10)
	case tracefab.TagF32:
		buf = strconv.AppendFloat(buf, float64(a.F32Value()), 'f', 7, 32)
	case tracefab.TagF64:
		buf = strconv.AppendFloat(buf, a.F64Value(), 'f', 16, 64)
	case tracefab.TagChar:
		buf = append(buf, a.CharValue())
		return buf
	case tracefab.TagThread:
		buf = strconv.AppendUint(buf, uint64(a.ThreadValue()), 10)
	case tracefab.TagEpochNanos:
		buf = strconv.AppendInt(buf, a.EpochNanosValue(), 10)
	default:
		return buf
	}
	return append(buf, ',')
}

func appendArray(buf []byte, a tracefab.Argument) []byte {
	if a.Tag.Base() == tracefab.TagChar {
		buf = append(buf, a.StringValue()...)
		return append(buf, ',')
	}
	buf = append(buf, '{')
	n := int(a.ArrayLen)
	size := tracefab.TypeSize(a.Tag)
	for i := 0; i < n; i++ {
		off := i * size
		elem := a.Array[off : off+size]
		switch a.Tag.Base() {
		case tracefab.TagU8:
			buf = strconv.AppendUint(buf, uint64(elem[0]), 10)
		case tracefab.TagU16:
			buf = strconv.AppendUint(buf, uint64(binary.LittleEndian.Uint16(elem)), 10)
		case tracefab.TagU32:
			buf = strconv.AppendUint(buf, uint64(binary.LittleEndian.Uint32(elem)), 10)
		case tracefab.TagU64:
			buf = strconv.AppendUint(buf, binary.LittleEndian.Uint64(elem), 10)
		case tracefab.TagI8:
			buf = strconv.AppendInt(buf, int64(int8(elem[0])), 10)
		case tracefab.TagI16:
			buf = strconv.AppendInt(buf, int64(int16(binary.LittleEndian.Uint16(elem))), 10)
		case tracefab.TagI32:
			buf = strconv.AppendInt(buf, int64(int32(binary.LittleEndian.Uint32(elem))), 10)
		case tracefab.TagI64:
			buf = strconv.AppendInt(buf, int64(binary.LittleEndian.Uint64(elem)), 10)
		case tracefab.TagF32:
			buf = strconv.AppendFloat(buf, float64(math.Float32frombits(binary.LittleEndian.Uint32(elem))), 'f', 7, 32)
		case tracefab.TagF64:
			buf = strconv.AppendFloat(buf, math.Float64frombits(binary.LittleEndian.Uint64(elem)), 'f', 16, 64)
		case tracefab.TagThread:
			buf = strconv.AppendUint(buf, uint64(binary.LittleEndian.Uint32(elem)), 10)
		case tracefab.TagEpochNanos:
			buf = strconv.AppendInt(buf, int64(binary.LittleEndian.Uint64(elem)), 10)
		}
		buf = append(buf, ',')
	}
	return append(buf, '}')
}
