// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tracefab

// EventFormatter converts a decoded attributes record or occurrence into
// bytes written to a Sink.
type EventFormatter interface {
	// FormatAttributes is called exactly once per attribute id, before
	// any FormatEvent call referencing that id.
	FormatAttributes(sink Sink, attr *EventAttributes) error
	FormatEvent(sink Sink, attr *EventAttributes, args []Argument) error
}

// SampleFormatter converts a sample channel's schema (once) and each
// subsequent sample's values into bytes written to a Sink.
type SampleFormatter interface {
	// FormatExpectedTypes is called exactly once, before any FormatValues
	// call.
	FormatExpectedTypes(sink Sink, schema []Tag) error
	FormatValues(sink Sink, args []Argument) error
}
