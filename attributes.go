// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tracefab

import (
	"runtime"
	"strings"
	"sync/atomic"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// EventAttributes is the immutable call-site record published to a
// channel's consumer exactly once: id, source line, expected argument
// count, and the three source-text fields.
//
// Created at first encounter of a call site. The strings are either
// static program text (producer side, same process) or owned by the
// receiver's own buffers (network transport, see net/receiver.go).
type EventAttributes struct {
	ID            uint32
	Line          uint32
	ArgCount      uint16
	MessageFormat string
	Function      string
	File          string
}

// globalNextAttrID is the single process-wide monotonic counter from
// which every EventSite draws its id, starting at 1. It is shared by
// every EventSite in the process regardless of which channel eventually
// registers it, matching §4.4's "process-wide counter" and Testable
// Property 1 ("ids are contiguous per process").
var globalNextAttrID atomix.Uint64

func allocateAttrID() uint32 {
	return uint32(globalNextAttrID.AddAcqRel(1))
}

// EventSite is the Go realisation of "call site" from §6.2: in a language
// without address-taken function-local statics shared across calls, the
// embedder constructs one EventSite per call site (typically a
// package-level var) and passes it to every LogEvent call from that site.
//
// EventSite carries the static scratch region (message format, function,
// file, line, expected argc) and the one-shot registration flag described
// in §4.4 and Design Note "Statically-scoped per-call-site state".
type EventSite struct {
	messageFormat string
	function      string
	file          string
	line          uint32
	argCount      uint16

	registering atomix.Bool
	attr        atomic.Pointer[EventAttributes] // nil until registered
}

// NewEventSite captures the call site of its own invocation — the file,
// line and function name of the caller — pairs it with messageFormat and
// the number of arguments the site will log, and returns a value the
// caller holds (typically in a package-level var) and reuses on every
// LogEvent call.
func NewEventSite(messageFormat string, argCount int) *EventSite {
	pc, file, line, _ := runtime.Caller(1)
	function := "unknown"
	if fn := runtime.FuncForPC(pc); fn != nil {
		function = fn.Name()
	}
	return &EventSite{
		messageFormat: messageFormat,
		function:      function,
		file:          basename(file),
		line:          uint32(line),
		argCount:      uint16(argCount),
	}
}

// basename returns the substring after the final '/' or '\' in path,
// matching §6.2's file-basename rule exactly.
func basename(path string) string {
	if idx := strings.LastIndexAny(path, "/\\"); idx >= 0 {
		return path[idx+1:]
	}
	return path
}

// registered returns the site's published attributes, or nil if
// registration has not yet completed.
func (s *EventSite) registered() *EventAttributes {
	return s.attr.Load()
}

// EnsureRegistered performs the one-shot idempotent registration: exactly
// one caller among any number of concurrent first-users wins the
// registration CAS, draws an id, builds the EventAttributes record, and
// invokes publish with it; every other caller (concurrent or later) spins
// until the record is visible and returns it without publishing again.
// This is Testable Property 4.
func (s *EventSite) EnsureRegistered(publish func(*EventAttributes)) *EventAttributes {
	if attr := s.registered(); attr != nil {
		return attr
	}
	if s.registering.CompareAndSwapAcqRel(false, true) {
		attr := &EventAttributes{
			ID:            allocateAttrID(),
			Line:          s.line,
			ArgCount:      s.argCount,
			MessageFormat: s.messageFormat,
			Function:      s.function,
			File:          s.file,
		}
		publish(attr)
		s.attr.Store(attr)
		return attr
	}
	var sw spin.Wait
	for {
		if attr := s.registered(); attr != nil {
			return attr
		}
		sw.Once()
	}
}

// attributeRegistry is the consumer-side id -> attributes mapping from
// §4.4. It is accessed only from the single goroutine that drains a
// channel or receiver, so it needs no internal synchronisation of its
// own; concurrency safety comes from the happens-before edge the
// attributes-only descriptor establishes before any matching occurrence.
type attributeRegistry struct {
	byID map[uint32]*EventAttributes
}

func newAttributeRegistry() *attributeRegistry {
	return &attributeRegistry{byID: make(map[uint32]*EventAttributes)}
}

func (r *attributeRegistry) publish(attr *EventAttributes) {
	r.byID[attr.ID] = attr
}

func (r *attributeRegistry) lookup(id uint32) (*EventAttributes, bool) {
	attr, ok := r.byID[id]
	return attr, ok
}
