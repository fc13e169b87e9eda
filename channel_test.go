// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tracefab_test

import (
	"errors"
	"strings"
	"testing"

	"code.hybscloud.com/tracefab"
	"code.hybscloud.com/tracefab/format"
	"code.hybscloud.com/tracefab/sink"
)

func TestEventChannelLogAndDrain(t *testing.T) {
	buf := sink.NewBuffer()
	ch, err := tracefab.NewEventChannel(buf, format.PlainText{})
	if err != nil {
		t.Fatalf("NewEventChannel: %v", err)
	}

	site := tracefab.NewEventSite("value is {}", 1)
	if err := ch.LogEvent(site, tracefab.ArgU32(42)); err != nil {
		t.Fatalf("LogEvent: %v", err)
	}

	if err := ch.ProcessLoop(); err != nil {
		t.Fatalf("ProcessLoop: %v", err)
	}

	out := string(buf.Bytes())
	if !strings.Contains(out, "value is {}") {
		t.Fatalf("output %q does not contain the message format", out)
	}
	if !strings.Contains(out, "42") {
		t.Fatalf("output %q does not contain the argument value", out)
	}
}

func TestEventChannelDropPolicy(t *testing.T) {
	buf := sink.NewBuffer()
	ch, err := tracefab.NewEventChannel(buf, format.PlainText{},
		tracefab.WithQueueCapacity(2),
		tracefab.WithOverflowPolicy(tracefab.PolicyDrop),
	)
	if err != nil {
		t.Fatalf("NewEventChannel: %v", err)
	}

	site := tracefab.NewEventSite("drop me {}", 1)
	// First call registers the site (consumes one of the two slots with
	// the attributes-only descriptor via spinPublish, which bypasses
	// policy) and enqueues one occurrence in the other.
	for i := 0; i < 8; i++ {
		_ = ch.LogEvent(site, tracefab.ArgU32(uint32(i)))
	}

	if ch.DroppedEvents() == 0 {
		t.Fatalf("expected at least one dropped event with a 2-entry queue and 8 rapid LogEvent calls")
	}
}

// TestEventChannelPoisonsOnUnknownAttribute exercises S6: EventSite
// registration is a one-shot gate over the whole process (§4.4), not per
// channel, so a site first registered against one channel publishes its
// attributes-only descriptor there and nowhere else. A second channel
// that the same site later logs to will only ever see occurrence
// descriptors for that attribute id, never the attributes-only one —
// exactly the "unknown attribute" condition a hostile or buggy sender
// would otherwise have to forge a raw frame to reach.
func TestEventChannelPoisonsOnUnknownAttribute(t *testing.T) {
	site := tracefab.NewEventSite("shared site {}", 1)

	firstBuf := sink.NewBuffer()
	first, err := tracefab.NewEventChannel(firstBuf, format.PlainText{})
	if err != nil {
		t.Fatalf("NewEventChannel(first): %v", err)
	}
	if err := first.LogEvent(site, tracefab.ArgU32(1)); err != nil {
		t.Fatalf("LogEvent(first): %v", err)
	}
	if err := first.ProcessLoop(); err != nil {
		t.Fatalf("ProcessLoop(first): %v", err)
	}

	secondBuf := sink.NewBuffer()
	second, err := tracefab.NewEventChannel(secondBuf, format.PlainText{})
	if err != nil {
		t.Fatalf("NewEventChannel(second): %v", err)
	}
	if err := second.LogEvent(site, tracefab.ArgU32(2)); err != nil {
		t.Fatalf("LogEvent(second): %v", err)
	}

	_, err = second.TryProcessOne()
	if !errors.Is(err, tracefab.ErrUnknownAttribute) {
		t.Fatalf("TryProcessOne(second): got %v, want an error wrapping ErrUnknownAttribute", err)
	}
	if !errors.Is(err, tracefab.ErrChannelPoisoned) {
		t.Fatalf("TryProcessOne(second): got %v, want an error wrapping ErrChannelPoisoned", err)
	}

	if _, err2 := second.TryProcessOne(); !errors.Is(err2, tracefab.ErrChannelPoisoned) || !errors.Is(err2, tracefab.ErrUnknownAttribute) {
		t.Fatalf("TryProcessOne(second) after poisoning: got %v, want the same poisoned error", err2)
	}
}

func TestSampleChannelSchemaMismatch(t *testing.T) {
	buf := sink.NewBuffer()
	schema := []tracefab.Tag{tracefab.TagU32, tracefab.TagF64}
	ch, err := tracefab.NewSampleChannel(schema, buf, format.PlainText{})
	if err != nil {
		t.Fatalf("NewSampleChannel: %v", err)
	}

	if err := ch.LogSample(tracefab.ArgU32(1)); err != tracefab.ErrSchemaMismatch {
		t.Fatalf("LogSample with wrong argc: got %v, want ErrSchemaMismatch", err)
	}
	if err := ch.LogSample(tracefab.ArgU32(1), tracefab.ArgU32(2)); err != tracefab.ErrSchemaMismatch {
		t.Fatalf("LogSample with wrong tag sequence: got %v, want ErrSchemaMismatch", err)
	}
}

func TestSampleChannelLogAndDrain(t *testing.T) {
	buf := sink.NewBuffer()
	schema := []tracefab.Tag{tracefab.TagU32, tracefab.TagF64}
	ch, err := tracefab.NewSampleChannel(schema, buf, format.PlainText{})
	if err != nil {
		t.Fatalf("NewSampleChannel: %v", err)
	}

	if err := ch.LogSample(tracefab.ArgU32(7), tracefab.ArgF64(1.5)); err != nil {
		t.Fatalf("LogSample: %v", err)
	}
	if err := ch.ProcessLoop(); err != nil {
		t.Fatalf("ProcessLoop: %v", err)
	}

	out := string(buf.Bytes())
	if !strings.Contains(out, "7") {
		t.Fatalf("output %q does not contain the sample's first field", out)
	}
}
