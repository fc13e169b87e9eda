// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package net

import (
	"testing"

	"code.hybscloud.com/tracefab"
)

func TestEncodeDecodeAttributesRoundTrip(t *testing.T) {
	attr := &tracefab.EventAttributes{
		ID:            7,
		Line:          42,
		ArgCount:      2,
		MessageFormat: "value {} at {}",
		Function:      "doWork",
		File:          "work.go",
	}

	frame := encodeAttributes(attr)
	if got := frame[:8]; bytesToUint64LE(got) != AttrMark {
		t.Fatalf("encoded frame does not start with AttrMark")
	}

	got, err := decodeAttributes(frame[8:])
	if err != nil {
		t.Fatalf("decodeAttributes: %v", err)
	}
	if *got != *attr {
		t.Fatalf("decodeAttributes round trip = %+v, want %+v", *got, *attr)
	}
}

func TestEncodeDecodeAttributesTruncated(t *testing.T) {
	if _, err := decodeAttributes([]byte{1, 2, 3}); err != tracefab.ErrTruncatedFrame {
		t.Fatalf("decodeAttributes on short body: got %v, want ErrTruncatedFrame", err)
	}
}

func TestEncodeDecodeOccurrenceRoundTrip(t *testing.T) {
	args := []tracefab.Argument{
		tracefab.ArgU32(99),
		tracefab.ArgString("hi"),
		tracefab.ArgF64(1.25),
	}

	frame := encodeOccurrence(7, args)
	attrID, got, err := decodeOccurrence(frame[8:])
	if err != nil {
		t.Fatalf("decodeOccurrence: %v", err)
	}
	if attrID != 7 {
		t.Fatalf("attrID = %d, want 7", attrID)
	}
	if len(got) != len(args) {
		t.Fatalf("decoded %d arguments, want %d", len(got), len(args))
	}
	if got[0].U32Value() != 99 {
		t.Fatalf("args[0] = %d, want 99", got[0].U32Value())
	}
	if got[1].StringValue() != "hi" {
		t.Fatalf("args[1] = %q, want %q", got[1].StringValue(), "hi")
	}
	if got[2].F64Value() != 1.25 {
		t.Fatalf("args[2] = %v, want 1.25", got[2].F64Value())
	}
}

func TestEncodeDecodeSampleFrames(t *testing.T) {
	schema := []tracefab.Tag{tracefab.TagU32, tracefab.TagF64}

	schemaFrame := encodeSchema(schema)
	isSchema, gotSchema, _, err := decodeSampleFrame(schemaFrame, 0)
	if err != nil {
		t.Fatalf("decodeSampleFrame(schema): %v", err)
	}
	if !isSchema {
		t.Fatalf("expected the schema frame to be recognised as a schema frame")
	}
	if len(gotSchema) != len(schema) || gotSchema[0] != schema[0] || gotSchema[1] != schema[1] {
		t.Fatalf("decoded schema = %v, want %v", gotSchema, schema)
	}

	sampleArgs := []tracefab.Argument{tracefab.ArgU32(5), tracefab.ArgF64(2.5)}
	sampleFrame := encodeSample(sampleArgs)
	isSchema, _, values, err := decodeSampleFrame(sampleFrame, len(schema))
	if err != nil {
		t.Fatalf("decodeSampleFrame(sample): %v", err)
	}
	if isSchema {
		t.Fatalf("sample frame misclassified as a schema frame")
	}
	if values[0].U32Value() != 5 || values[1].F64Value() != 2.5 {
		t.Fatalf("decoded sample values = %v, want [5, 2.5]", values)
	}
}

func bytesToUint64LE(b []byte) uint64 {
	var v uint64
	for i := 7; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}
