// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package net frames attributes, occurrences, sample schemas, and sample
// values into the bit-exact wire format of §6.3: little-endian
// throughout, discriminated by an 8-byte marker at the head of each
// attributes/occurrence datagram.
//
// Grounded on WebChannels.hpp's WebEventChannel/WebTelemetryChannel: the
// same two marker words, the same attributes/occurrence/schema/sample
// frame shapes, translated from raw socket read/write calls to
// net.UDPConn and encoding/binary.
package net

import (
	"encoding/binary"

	"code.hybscloud.com/tracefab"
)

// AttrMark and OccuMark are the exact 64-bit marker words from §6.3, in
// their canonical byte order. They must never collide with a real tag
// byte sequence; the receiver reads 8 bytes and switches on them.
const (
	AttrMark uint64 = 0xAA115511BB0011EE
	OccuMark uint64 = 0x00CC0055EE44CCEE
)

// argWireSize is the fixed-size wire form of one Argument (C1): tag (1
// byte), 3 bytes of padding, array length (u32), and the inline scalar
// (8 bytes) — 16 bytes total regardless of kind. Array-typed arguments
// carry their element bytes immediately after the fixed-size argument
// vector, in argument order (§6.3).
const argWireSize = 16

func putArgFixed(b []byte, a tracefab.Argument) {
	b[0] = byte(a.Tag)
	binary.LittleEndian.PutUint32(b[4:8], a.ArrayLen)
	copy(b[8:16], a.ScalarBytes())
}

func getArgFixed(b []byte) tracefab.Argument {
	tag := tracefab.Tag(b[0])
	arrayLen := binary.LittleEndian.Uint32(b[4:8])
	return tracefab.ArgumentFromWire(tag, arrayLen, b[8:16])
}

// encodeAttributes serialises an attributes frame: mark, attr_id, line,
// argc, three length-prefixed strings.
func encodeAttributes(attr *tracefab.EventAttributes) []byte {
	msg, fn, file := []byte(attr.MessageFormat), []byte(attr.Function), []byte(attr.File)
	size := 8 + 4 + 4 + 2 + 4 + 4 + 4 + len(msg) + len(fn) + len(file)
	buf := make([]byte, size)
	off := 0
	binary.LittleEndian.PutUint64(buf[off:], AttrMark)
	off += 8
	binary.LittleEndian.PutUint32(buf[off:], attr.ID)
	off += 4
	binary.LittleEndian.PutUint32(buf[off:], attr.Line)
	off += 4
	binary.LittleEndian.PutUint16(buf[off:], attr.ArgCount)
	off += 2
	binary.LittleEndian.PutUint32(buf[off:], uint32(len(msg)))
	off += 4
	binary.LittleEndian.PutUint32(buf[off:], uint32(len(fn)))
	off += 4
	binary.LittleEndian.PutUint32(buf[off:], uint32(len(file)))
	off += 4
	off += copy(buf[off:], msg)
	off += copy(buf[off:], fn)
	copy(buf[off:], file)
	return buf
}

// decodeAttributes parses an attributes frame whose mark has already
// been consumed from body.
func decodeAttributes(body []byte) (*tracefab.EventAttributes, error) {
	if len(body) < 4+4+2+4+4+4 {
		return nil, tracefab.ErrTruncatedFrame
	}
	off := 0
	id := binary.LittleEndian.Uint32(body[off:])
	off += 4
	line := binary.LittleEndian.Uint32(body[off:])
	off += 4
	argc := binary.LittleEndian.Uint16(body[off:])
	off += 2
	lenMsg := binary.LittleEndian.Uint32(body[off:])
	off += 4
	lenFunc := binary.LittleEndian.Uint32(body[off:])
	off += 4
	lenFile := binary.LittleEndian.Uint32(body[off:])
	off += 4
	need := int(lenMsg) + int(lenFunc) + int(lenFile)
	if len(body)-off < need {
		return nil, tracefab.ErrTruncatedFrame
	}
	msg := string(body[off : off+int(lenMsg)])
	off += int(lenMsg)
	fn := string(body[off : off+int(lenFunc)])
	off += int(lenFunc)
	file := string(body[off : off+int(lenFile)])
	return &tracefab.EventAttributes{
		ID:            id,
		Line:          line,
		ArgCount:      argc,
		MessageFormat: msg,
		Function:      fn,
		File:          file,
	}, nil
}

// encodeOccurrence serialises an occurrence frame: mark, attr_id, argc,
// the fixed-size argument vector, then each array argument's payload
// bytes in order.
func encodeOccurrence(attrID uint32, args []tracefab.Argument) []byte {
	var payload int
	for _, a := range args {
		payload += len(a.Array)
	}
	size := 8 + 4 + 2 + len(args)*argWireSize + payload
	buf := make([]byte, size)
	off := 0
	binary.LittleEndian.PutUint64(buf[off:], OccuMark)
	off += 8
	binary.LittleEndian.PutUint32(buf[off:], attrID)
	off += 4
	binary.LittleEndian.PutUint16(buf[off:], uint16(len(args)))
	off += 2
	for _, a := range args {
		putArgFixed(buf[off:off+argWireSize], a)
		off += argWireSize
	}
	for _, a := range args {
		off += copy(buf[off:], a.Array)
	}
	return buf
}

// decodeOccurrence parses an occurrence frame whose mark has already
// been consumed from body. Array payloads alias body (the receiver's
// per-datagram scratch buffer) rather than being copied. A tag outside
// the closed type-size table yields ErrUnsupportedArgumentKind.
func decodeOccurrence(body []byte) (attrID uint32, args []tracefab.Argument, err error) {
	if len(body) < 4+2 {
		return 0, nil, tracefab.ErrTruncatedFrame
	}
	off := 0
	attrID = binary.LittleEndian.Uint32(body[off:])
	off += 4
	argc := binary.LittleEndian.Uint16(body[off:])
	off += 2

	if len(body)-off < int(argc)*argWireSize {
		return 0, nil, tracefab.ErrTruncatedFrame
	}
	args = make([]tracefab.Argument, argc)
	for i := range args {
		args[i] = getArgFixed(body[off : off+argWireSize])
		if args[i].Tag.Base() > tracefab.TagEpochNanos {
			return 0, nil, tracefab.ErrUnsupportedArgumentKind
		}
		off += argWireSize
	}
	for i := range args {
		if !args[i].Tag.IsArray() {
			continue
		}
		n := tracefab.TypeSize(args[i].Tag) * int(args[i].ArrayLen)
		if len(body)-off < n {
			return 0, nil, tracefab.ErrTruncatedFrame
		}
		args[i].Array = body[off : off+n]
		off += n
	}
	return attrID, args, nil
}

// sentinelSchemaArg builds the §6.3 "sentinel" argument that prefixes a
// sample-schema frame: TagCountSentinel, array_length = N, fixed payload
// 0xFAFAFAFA.
func sentinelSchemaArg(n int) tracefab.Argument {
	return tracefab.SentinelSchemaArgument(uint32(n))
}

// encodeSchema serialises the sample-schema frame: the sentinel argument
// followed by N raw tag bytes.
func encodeSchema(schema []tracefab.Tag) []byte {
	sentinel := sentinelSchemaArg(len(schema))
	buf := make([]byte, argWireSize+len(schema))
	putArgFixed(buf[:argWireSize], sentinel)
	for i, t := range schema {
		buf[argWireSize+i] = byte(t)
	}
	return buf
}

// encodeSample serialises one sample frame: the fixed-size argument
// vector (no marker — schema vs. sample is distinguished by the first
// argument's tag) followed by each array argument's payload bytes.
func encodeSample(args []tracefab.Argument) []byte {
	var payload int
	for _, a := range args {
		payload += len(a.Array)
	}
	buf := make([]byte, len(args)*argWireSize+payload)
	off := 0
	for _, a := range args {
		putArgFixed(buf[off:off+argWireSize], a)
		off += argWireSize
	}
	for _, a := range args {
		off += copy(buf[off:], a.Array)
	}
	return buf
}

// decodeSampleFrame inspects the first fixed-size argument in body: if
// its tag is TagCountSentinel, body is a schema frame and isSchema is
// true with schema populated; otherwise body is a sample frame of n
// arguments (n supplied by the caller, which tracks the schema length)
// and values is populated.
func decodeSampleFrame(body []byte, n int) (isSchema bool, schema []tracefab.Tag, values []tracefab.Argument, err error) {
	if len(body) < argWireSize {
		return false, nil, nil, tracefab.ErrTruncatedFrame
	}
	first := getArgFixed(body[:argWireSize])
	if first.Tag == tracefab.TagCountSentinel {
		count := int(first.ArrayLen)
		if len(body)-argWireSize < count {
			return false, nil, nil, tracefab.ErrTruncatedFrame
		}
		schema = make([]tracefab.Tag, count)
		for i := range schema {
			schema[i] = tracefab.Tag(body[argWireSize+i])
		}
		return true, schema, nil, nil
	}

	if len(body) < n*argWireSize {
		return false, nil, nil, tracefab.ErrTruncatedFrame
	}
	values = make([]tracefab.Argument, n)
	off := 0
	for i := range values {
		values[i] = getArgFixed(body[off : off+argWireSize])
		if values[i].Tag.Base() > tracefab.TagEpochNanos {
			return false, nil, nil, tracefab.ErrUnsupportedArgumentKind
		}
		off += argWireSize
	}
	for i := range values {
		if !values[i].Tag.IsArray() {
			continue
		}
		size := tracefab.TypeSize(values[i].Tag) * int(values[i].ArrayLen)
		if len(body)-off < size {
			return false, nil, nil, tracefab.ErrTruncatedFrame
		}
		values[i].Array = body[off : off+size]
		off += size
	}
	return false, nil, values, nil
}
