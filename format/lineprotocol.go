// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package format

import (
	"strconv"
	"time"

	"github.com/influxdata/line-protocol/v2/lineprotocol"

	"code.hybscloud.com/tracefab"
)

// LineProtocol is a SampleFormatter that emits InfluxDB line protocol:
// one line per sample, fields named f0, f1, ... in schema order, a
// fixed measurement name, and the sample's first EpochNanos value (or
// the zero epoch when it has none) as the line's timestamp.
//
// It is a SampleFormatter only — events are variadic and source-
// annotated, not a fit for line protocol's fixed-field-set model, so it
// implements none of EventFormatter.
type LineProtocol struct {
	Measurement string
	schema      []tracefab.Tag
}

// FormatExpectedTypes records the schema; line protocol has no wire
// representation for a schema announcement of its own, so nothing is
// written to sink.
func (f *LineProtocol) FormatExpectedTypes(_ tracefab.Sink, schema []tracefab.Tag) error {
	f.schema = append([]tracefab.Tag(nil), schema...)
	return nil
}

// FormatValues encodes one sample as a single line-protocol line and
// writes it to sink.
func (f *LineProtocol) FormatValues(sink tracefab.Sink, args []tracefab.Argument) error {
	measurement := f.Measurement
	if measurement == "" {
		measurement = "sample"
	}

	var enc lineprotocol.Encoder
	enc.SetPrecision(lineprotocol.Nanosecond)
	enc.StartLine(measurement)
	for i, a := range args {
		v, ok := fieldValue(a)
		if !ok {
			continue
		}
		enc.AddField("f"+strconv.Itoa(i), v)
	}
	enc.EndLine(time.Unix(0, nowOrZero(args)))
	if err := enc.Err(); err != nil {
		return err
	}
	return writeAll(sink, enc.Bytes())
}

// nowOrZero uses an EpochNanos-tagged argument as the line's timestamp
// when the schema carries one, falling back to the zero epoch (line
// protocol requires a monotonically-meaningful timestamp per line, and
// samples in this wire format always provide their own clock reading
// when timing matters — §3's "epoch_ns" kind exists for exactly this).
func nowOrZero(args []tracefab.Argument) int64 {
	for _, a := range args {
		if a.Tag == tracefab.TagEpochNanos {
			return a.EpochNanosValue()
		}
	}
	return 0
}

func fieldValue(a tracefab.Argument) (lineprotocol.Value, bool) {
	if a.Tag.IsArray() {
		if a.Tag.Base() == tracefab.TagChar {
			return lineprotocol.StringValue(a.StringValue()), true
		}
		return lineprotocol.Value{}, false
	}
	switch a.Tag {
	case tracefab.TagU8:
		return lineprotocol.UintValue(uint64(a.U8Value())), true
	case tracefab.TagU16:
		return lineprotocol.UintValue(uint64(a.U16Value())), true
	case tracefab.TagU32:
		return lineprotocol.UintValue(uint64(a.U32Value())), true
	case tracefab.TagU64:
		return lineprotocol.UintValue(a.U64Value()), true
	case tracefab.TagI8:
		return lineprotocol.IntValue(int64(a.I8Value())), true
	case tracefab.TagI16:
		return lineprotocol.IntValue(int64(a.I16Value())), true
	case tracefab.TagI32:
		return lineprotocol.IntValue(int64(a.I32Value())), true
	case tracefab.TagI64:
		return lineprotocol.IntValue(a.I64Value()), true
	case tracefab.TagF32:
		return lineprotocol.FloatValue(float64(a.F32Value())), true
	case tracefab.TagF64:
		return lineprotocol.FloatValue(a.F64Value()), true
	case tracefab.TagChar:
		return lineprotocol.StringValue(string(a.CharValue())), true
	case tracefab.TagThread:
		return lineprotocol.UintValue(uint64(a.ThreadValue())), true
	case tracefab.TagEpochNanos:
		return lineprotocol.IntValue(a.EpochNanosValue()), true
	default:
		return lineprotocol.Value{}, false
	}
}
