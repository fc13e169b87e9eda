// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package net

import (
	"encoding/binary"
	"errors"
	"net"

	"code.hybscloud.com/tracefab"
	"code.hybscloud.com/tracefab/internal/telemetrylog"
)

// maxDatagram bounds one read; UDP datagrams over IPv4 never exceed it
// in practice, and the arena/queue sizing on the sender side keeps
// occurrence payloads well under it.
const maxDatagram = 65507

// EventReceiver is the network consumer half of the event path (§4.7).
// It embeds its own id→attributes mapping, independent of any sender
// state, and dispatches decoded frames straight to a formatter — there
// is no arena or queue on this side, only a per-datagram scratch buffer.
type EventReceiver struct {
	conn      *net.UDPConn
	sink      tracefab.Sink
	formatter tracefab.EventFormatter
	attrs     map[uint32]*tracefab.EventAttributes
	buf       []byte
	poison    error
	log       telemetrylog.Logger
}

// ListenEvents binds an inbound UDP socket at addr ("host:port" or
// ":port") for the event path.
func ListenEvents(addr string, sink tracefab.Sink, formatter tracefab.EventFormatter) (*EventReceiver, error) {
	laddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, err
	}
	conn, err := net.ListenUDP("udp", laddr)
	if err != nil {
		return nil, err
	}
	return &EventReceiver{
		conn:      conn,
		sink:      sink,
		formatter: formatter,
		attrs:     make(map[uint32]*tracefab.EventAttributes),
		buf:       make([]byte, maxDatagram),
		log:       telemetrylog.New(nil, "net.eventreceiver"),
	}, nil
}

// Close releases the underlying socket.
func (r *EventReceiver) Close() error { return r.conn.Close() }

// TryProcessOne blocks for the next datagram, dispatches it, and
// reports whether the stream has been poisoned by a fatal decode error
// (UnknownAttribute or CorruptMark, per §7) — once poisoned, every
// subsequent call returns the same error immediately.
func (r *EventReceiver) TryProcessOne() error {
	if r.poison != nil {
		return r.poison
	}

	n, _, err := r.conn.ReadFromUDP(r.buf)
	if err != nil {
		return err
	}
	if n < 8 {
		return tracefab.ErrTruncatedFrame
	}
	mark := binary.LittleEndian.Uint64(r.buf[:8])
	body := r.buf[8:n]

	switch mark {
	case AttrMark:
		attr, err := decodeAttributes(body)
		if err != nil {
			return err
		}
		r.attrs[attr.ID] = attr
		return r.formatter.FormatAttributes(r.sink, attr)

	case OccuMark:
		attrID, args, err := decodeOccurrence(body)
		if err != nil {
			return err
		}
		attr, ok := r.attrs[attrID]
		if !ok {
			r.log.Error(tracefab.ErrUnknownAttribute, "occurrence referenced unknown attribute id", "attr_id", attrID)
			return r.poisonWith(tracefab.ErrUnknownAttribute)
		}
		return r.formatter.FormatEvent(r.sink, attr, args)

	default:
		r.log.Error(tracefab.ErrCorruptMark, "unrecognised frame marker", "mark", mark)
		return r.poisonWith(tracefab.ErrCorruptMark)
	}
}

// poisonWith latches cause (joined with ErrChannelPoisoned, matching the
// root package's channel poisoning contract) and returns it.
func (r *EventReceiver) poisonWith(cause error) error {
	r.poison = errors.Join(tracefab.ErrChannelPoisoned, cause)
	return r.poison
}

// SampleReceiver is the network consumer half of the sample path. It
// distinguishes the once-only schema frame from a sample frame by the
// first fixed-size argument's tag, as required by §6.3.
type SampleReceiver struct {
	conn      *net.UDPConn
	sink      tracefab.Sink
	formatter tracefab.SampleFormatter
	schema    []tracefab.Tag
	buf       []byte
}

// ListenSamples binds an inbound UDP socket at addr for the sample path.
func ListenSamples(addr string, sink tracefab.Sink, formatter tracefab.SampleFormatter) (*SampleReceiver, error) {
	laddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, err
	}
	conn, err := net.ListenUDP("udp", laddr)
	if err != nil {
		return nil, err
	}
	return &SampleReceiver{
		conn:      conn,
		sink:      sink,
		formatter: formatter,
		buf:       make([]byte, maxDatagram),
	}, nil
}

// Close releases the underlying socket.
func (r *SampleReceiver) Close() error { return r.conn.Close() }

// TryProcessOne blocks for the next datagram and dispatches it: the
// first datagram received must be the schema frame (enforced by the
// sender's publication order, §6.3), after which every datagram is a
// fixed-width sample of the schema's length.
func (r *SampleReceiver) TryProcessOne() error {
	n, _, err := r.conn.ReadFromUDP(r.buf)
	if err != nil {
		return err
	}
	body := r.buf[:n]

	isSchema, schema, values, err := decodeSampleFrame(body, len(r.schema))
	if err != nil {
		return err
	}
	if isSchema {
		r.schema = schema
		return r.formatter.FormatExpectedTypes(r.sink, r.schema)
	}
	return r.formatter.FormatValues(r.sink, values)
}
