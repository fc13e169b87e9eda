// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package net

import (
	"net"
	"sync/atomic"

	"code.hybscloud.com/tracefab"
)

// Sender is an unreliable datagram-socket publisher of attributes,
// occurrences, sample schemas, and sample values (§4.7). It maintains
// no reliability layer — loss is tolerated for telemetry, matching the
// UDPSocket::write semantics it is grounded on.
type Sender struct {
	conn *net.UDPConn
}

// Dial opens a UDP socket connected to addr ("host:port"). Every
// subsequent Send* call writes one datagram to that peer.
func Dial(addr string) (*Sender, error) {
	raddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, err
	}
	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return nil, err
	}
	return &Sender{conn: conn}, nil
}

// Close releases the underlying socket.
func (s *Sender) Close() error { return s.conn.Close() }

// SendAttributes publishes one attributes-only frame.
func (s *Sender) SendAttributes(attr *tracefab.EventAttributes) error {
	_, err := s.conn.Write(encodeAttributes(attr))
	return err
}

// SendOccurrence publishes one occurrence frame.
func (s *Sender) SendOccurrence(attrID uint32, args []tracefab.Argument) error {
	_, err := s.conn.Write(encodeOccurrence(attrID, args))
	return err
}

// SendSchema publishes the sample-schema frame. Callers send this
// exactly once, before any SendSample call, matching §6.3.
func (s *Sender) SendSchema(schema []tracefab.Tag) error {
	_, err := s.conn.Write(encodeSchema(schema))
	return err
}

// SendSample publishes one sample-values frame.
func (s *Sender) SendSample(args []tracefab.Argument) error {
	_, err := s.conn.Write(encodeSample(args))
	return err
}

// LogEvent registers site over the wire on first use (sending the
// attributes frame synchronously before any occurrence referencing it,
// per §4.4) and sends one occurrence frame. Unlike the in-process
// EventChannel, the network path has no arena to stage array payloads
// in: it writes the occurrence straight to the socket, grounded on
// WebChannels.hpp's WebEventChannel, which does the same.
func (s *Sender) LogEvent(site *tracefab.EventSite, args ...tracefab.Argument) error {
	var registerErr error
	attr := site.EnsureRegistered(func(a *tracefab.EventAttributes) {
		registerErr = s.SendAttributes(a)
	})
	if registerErr != nil {
		return registerErr
	}
	return s.SendOccurrence(attr.ID, args)
}

// SampleSender wraps a Sender with the sample path's schema-once
// bookkeeping: the schema must be published before any sample, and
// exactly once (§6.3, §4.6).
type SampleSender struct {
	sender     *Sender
	schema     []tracefab.Tag
	schemaOnce atomic.Bool
}

// NewSampleSender binds a SampleSender fixed to schema for its
// lifetime.
func NewSampleSender(sender *Sender, schema []tracefab.Tag) *SampleSender {
	sc := make([]tracefab.Tag, len(schema))
	copy(sc, schema)
	return &SampleSender{sender: sender, schema: sc}
}

// LogSample publishes the schema on the first call, then one sample
// frame. It asserts args matches the sender's schema exactly, returning
// ErrSchemaMismatch (and sending nothing) otherwise.
func (s *SampleSender) LogSample(args ...tracefab.Argument) error {
	if len(args) != len(s.schema) {
		return tracefab.ErrSchemaMismatch
	}
	for i, a := range args {
		if a.Tag != s.schema[i] {
			return tracefab.ErrSchemaMismatch
		}
	}
	if s.schemaOnce.CompareAndSwap(false, true) {
		if err := s.sender.SendSchema(s.schema); err != nil {
			return err
		}
	}
	return s.sender.SendSample(args)
}
