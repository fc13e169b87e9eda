// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sink

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"code.hybscloud.com/tracefab/internal/telemetrylog"
)

// RollingFile is a size- and time-bounded rotating file Sink, grounded
// on RollingFileWriter.hpp's rotate-on-threshold design. Where the
// original drains a double-buffer on a dedicated writer thread, this
// reimplementation writes straight to the OS file behind a mutex and
// only syncs it to disk from an optional ticker goroutine; there is no
// user-space buffer or double-buffer swap.
type RollingFile struct {
	dirPath    string
	namePrefix string
	maxSize    int64
	maxAge     time.Duration

	mu        sync.Mutex
	file      *os.File
	size      int64
	openedAt  time.Time
	closeOnce sync.Once

	stop chan struct{}
	done chan struct{}

	log telemetrylog.Logger
}

// NewRollingFile opens (creating dirPath if needed) a rolling file sink
// that rotates to a fresh file once the current one exceeds maxSize
// bytes or has been open longer than maxAge. A zero maxSize or maxAge
// disables that rotation trigger. flushEvery governs how often the
// background goroutine calls Sync; it does not gate Write, which always
// reaches the OS file object directly.
func NewRollingFile(dirPath, namePrefix string, maxSize int64, maxAge time.Duration, flushEvery time.Duration) (*RollingFile, error) {
	if err := os.MkdirAll(dirPath, 0o755); err != nil {
		return nil, err
	}
	rf := &RollingFile{
		dirPath:    dirPath,
		namePrefix: namePrefix,
		maxSize:    maxSize,
		maxAge:     maxAge,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
		log:        telemetrylog.New(nil, "sink.rollingfile"),
	}
	if err := rf.openNewFile(); err != nil {
		return nil, err
	}
	if flushEvery > 0 {
		go rf.flushLoop(flushEvery)
	} else {
		close(rf.done)
	}
	return rf, nil
}

func (rf *RollingFile) newFilePath() string {
	ts := time.Now().UTC().Format("2006-01-02.15-04-05")
	return filepath.Join(rf.dirPath, fmt.Sprintf("%s%s.txt", rf.namePrefix, ts))
}

func (rf *RollingFile) openNewFile() error {
	path := rf.newFilePath()
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		rf.log.Error(err, "failed to open rolling file", "path", path)
		return err
	}
	if rf.file != nil {
		rf.file.Close()
	}
	rf.log.Info("rolled to new file", "path", path)
	rf.file = f
	rf.size = 0
	rf.openedAt = time.Now()
	return nil
}

func (rf *RollingFile) needsRoll(extra int) bool {
	if rf.maxSize > 0 && rf.size+int64(extra) > rf.maxSize {
		return true
	}
	if rf.maxAge > 0 && time.Since(rf.openedAt) > rf.maxAge {
		return true
	}
	return false
}

// Write appends p to the current file, rotating first if p would push
// the file past maxSize or the current file has outlived maxAge.
func (rf *RollingFile) Write(p []byte) (int, error) {
	rf.mu.Lock()
	defer rf.mu.Unlock()

	if rf.needsRoll(len(p)) {
		if err := rf.openNewFile(); err != nil {
			return 0, err
		}
	}
	n, err := rf.file.Write(p)
	rf.size += int64(n)
	return n, err
}

// Flush syncs the current file to disk.
func (rf *RollingFile) Flush() bool {
	rf.mu.Lock()
	defer rf.mu.Unlock()
	return rf.file.Sync() == nil
}

func (rf *RollingFile) flushLoop(every time.Duration) {
	defer close(rf.done)
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rf.Flush()
		case <-rf.stop:
			return
		}
	}
}

// Close stops the background flush goroutine (if any), flushes, and
// closes the current file.
func (rf *RollingFile) Close() error {
	rf.closeOnce.Do(func() { close(rf.stop) })
	<-rf.done
	rf.mu.Lock()
	defer rf.mu.Unlock()
	rf.file.Sync()
	return rf.file.Close()
}
