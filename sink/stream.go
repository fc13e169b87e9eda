// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sink

import "io"

// flusher is implemented by io.Writers that can flush their own
// buffering (e.g. bufio.Writer); Stream calls it opportunistically.
type flusher interface {
	Flush() error
}

// Stream wraps any io.Writer (os.Stdout, os.Stderr, a network
// connection, ...) as a Sink, grounded on StdStreamWriter.hpp.
type Stream struct {
	w io.Writer
}

// NewStream wraps w as a Sink.
func NewStream(w io.Writer) *Stream {
	return &Stream{w: w}
}

// Write writes p to the wrapped io.Writer.
func (s *Stream) Write(p []byte) (int, error) {
	return s.w.Write(p)
}

// Flush flushes the wrapped writer if it exposes a Flush method,
// reporting false on error; writers with no flush semantics of their
// own always report true, matching StdStreamWriter::flush's unconditional
// success path.
func (s *Stream) Flush() bool {
	if f, ok := s.w.(flusher); ok {
		return f.Flush() == nil
	}
	return true
}
