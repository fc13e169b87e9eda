// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sink_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"code.hybscloud.com/tracefab/sink"
)

func TestBufferWriteFlushReset(t *testing.T) {
	b := sink.NewBuffer()
	n, err := b.Write([]byte("hello"))
	if err != nil || n != 5 {
		t.Fatalf("Write = (%d, %v), want (5, nil)", n, err)
	}
	if !b.Flush() {
		t.Fatalf("Flush on a Buffer must always succeed")
	}
	if string(b.Bytes()) != "hello" {
		t.Fatalf("Bytes() = %q, want %q", b.Bytes(), "hello")
	}
	b.Reset()
	if len(b.Bytes()) != 0 {
		t.Fatalf("Bytes() after Reset = %q, want empty", b.Bytes())
	}
}

func TestStreamWrapsWriter(t *testing.T) {
	var buf bytes.Buffer
	s := sink.NewStream(&buf)
	if _, err := s.Write([]byte("x")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if buf.String() != "x" {
		t.Fatalf("underlying writer got %q, want %q", buf.String(), "x")
	}
	if !s.Flush() {
		t.Fatalf("Flush on a writer with no Flush method must report true")
	}
}

func TestRollingFileWritesAndRotates(t *testing.T) {
	dir := t.TempDir()
	rf, err := sink.NewRollingFile(dir, "test-", 8, time.Hour, 0)
	if err != nil {
		t.Fatalf("NewRollingFile: %v", err)
	}
	defer rf.Close()

	// Oversize the first write past maxSize so it forces a rotation
	// before writing; the rotation may collide on the second-resolution
	// file name timestamp under a fast test run, so this only asserts
	// that writes keep succeeding and at least one rotated file exists,
	// not an exact file count.
	if _, err := rf.Write([]byte("0123456789")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := rf.Write([]byte("more")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !rf.Flush() {
		t.Fatalf("Flush should succeed")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) == 0 {
		t.Fatalf("expected at least one rolling file in %s", dir)
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) != ".txt" {
			t.Fatalf("unexpected file %q in rolling file directory", e.Name())
		}
	}
}
