// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package telemetrylog is the library's own operational logger: a thin
// zerolog wrapper used to report channel-construction failures, network
// socket errors, and rotation events from the peripheral sinks — never
// on the hot event/sample path itself.
package telemetrylog

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Logger wraps a zerolog.Logger scoped to one component name.
type Logger struct {
	z zerolog.Logger
}

// New returns a Logger writing to w (os.Stderr if w is nil), tagged with
// component in every event.
func New(w io.Writer, component string) Logger {
	if w == nil {
		w = os.Stderr
	}
	z := zerolog.New(w).With().Timestamp().Str("component", component).Logger()
	return Logger{z: z}
}

// Info logs msg with the given key/value pairs (alternating string keys
// and arbitrary values).
func (l Logger) Info(msg string, kv ...any) {
	l.event(l.z.Info(), msg, kv...)
}

// Warn logs msg at warning level.
func (l Logger) Warn(msg string, kv ...any) {
	l.event(l.z.Warn(), msg, kv...)
}

// Error logs msg with err attached.
func (l Logger) Error(err error, msg string, kv ...any) {
	l.event(l.z.Error().Err(err), msg, kv...)
}

func (l Logger) event(e *zerolog.Event, msg string, kv ...any) {
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		e = e.Interface(key, kv[i+1])
	}
	e.Msg(msg)
}
