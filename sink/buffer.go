// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package sink provides concrete Sink implementations (C11): a flat
// in-memory buffer, a wrapped io.Writer stream, and a size/time-bounded
// rolling file.
package sink

import "bytes"

// Buffer is a flat in-memory Sink backed by a bytes.Buffer, useful for
// tests and embedders that want to inspect output without a filesystem
// or socket: bytes written are never discarded until the caller reads
// them via Bytes or resets the buffer.
type Buffer struct {
	buf bytes.Buffer
}

// NewBuffer returns an empty Buffer sink.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Write appends p, always accepting it in full.
func (b *Buffer) Write(p []byte) (int, error) {
	return b.buf.Write(p)
}

// Flush is a no-op: an in-memory buffer has nothing to flush downstream.
func (b *Buffer) Flush() bool { return true }

// Bytes returns the buffer's current contents. The slice is valid until
// the next Write or Reset.
func (b *Buffer) Bytes() []byte { return b.buf.Bytes() }

// Reset discards the buffer's contents.
func (b *Buffer) Reset() { b.buf.Reset() }
