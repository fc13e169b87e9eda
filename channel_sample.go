// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tracefab

import (
	"sync/atomic"

	"code.hybscloud.com/tracefab/internal/arena"
)

// SampleChannel is the producer/consumer pipe for fixed-schema samples
// (C6): the schema is published once, before any sample, then every
// LogSample call is checked against it.
type SampleChannel struct {
	schema    []Tag
	sink      Sink
	formatter SampleFormatter
	arena     *arena.Arena
	queue     descQueue[sampleDescriptor]
	policy    OverflowPolicy

	dropped    uint64
	depth      int64
	schemaOnce atomic.Bool
}

// NewSampleChannel constructs a SampleChannel fixed to schema for its
// lifetime.
func NewSampleChannel(schema []Tag, sink Sink, formatter SampleFormatter, opts ...Option) (*SampleChannel, error) {
	cfg := defaultChannelConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	sc := make([]Tag, len(schema))
	copy(sc, schema)
	return &SampleChannel{
		schema:    sc,
		sink:      sink,
		formatter: formatter,
		arena:     arena.New(cfg.arenaCapacity),
		queue:     newDescQueue[sampleDescriptor](cfg),
		policy:    cfg.policy,
	}, nil
}

// DroppedSamples returns the number of LogSample calls dropped under
// PolicyDrop since construction.
func (c *SampleChannel) DroppedSamples() uint64 {
	return atomic.LoadUint64(&c.dropped)
}

// DroppedCount satisfies metrics.DroppedCounter.
func (c *SampleChannel) DroppedCount() uint64 { return c.DroppedSamples() }

// ArenaBytesInUse returns a snapshot of the channel's argument arena
// occupancy in bytes. Satisfies metrics.OccupancySource.
func (c *SampleChannel) ArenaBytesInUse() uint32 { return c.arena.InUse() }

// QueueDepth returns a snapshot of the number of descriptors currently
// enqueued but not yet dequeued. Satisfies metrics.OccupancySource.
func (c *SampleChannel) QueueDepth() int64 { return atomic.LoadInt64(&c.depth) }

func (c *SampleChannel) matchesSchema(args []Argument) bool {
	if len(args) != len(c.schema) {
		return false
	}
	for i, a := range args {
		if a.Tag != c.schema[i] {
			return false
		}
	}
	return true
}

// LogSample asserts args matches the channel's schema (argc and, in
// order, each tag), publishing the schema to the consumer on the first
// call, then enqueues one sample descriptor. A schema mismatch returns
// ErrSchemaMismatch and enqueues nothing (§7, invariant 6).
func (c *SampleChannel) LogSample(args ...Argument) error {
	if !c.matchesSchema(args) {
		return ErrSchemaMismatch
	}

	if c.schemaOnce.CompareAndSwap(false, true) {
		spinPublish(c.queue, &sampleDescriptor{args: nil})
		atomic.AddInt64(&c.depth, 1)
	}

	reserved, err := arenaStage(c.arena, args, c.policy)
	if err != nil {
		if c.policy == PolicyDrop {
			atomic.AddUint64(&c.dropped, 1)
			return nil
		}
		return err
	}

	if args == nil {
		// nil args marks the schema publication; a sample of an empty
		// schema carries an empty, non-nil slice instead.
		args = []Argument{}
	}
	desc := sampleDescriptor{args: args}
	dropped, err := enqueueWithPolicy(c.queue, &desc, c.policy)
	if err != nil {
		if reserved > 0 {
			c.arena.Release(reserved)
		}
		return err
	}
	if dropped {
		atomic.AddUint64(&c.dropped, 1)
		if reserved > 0 {
			c.arena.Release(reserved)
		}
	} else {
		atomic.AddInt64(&c.depth, 1)
	}
	return nil
}

// TryProcessOne dequeues one descriptor and dispatches it to the
// formatter. A nil args descriptor is the once-only schema publication;
// any other descriptor is a sample whose arena bytes are released (in
// FIFO order) once formatted. It returns false iff the queue was empty.
func (c *SampleChannel) TryProcessOne() (bool, error) {
	desc, err := c.queue.Dequeue()
	if err != nil {
		return false, nil
	}
	atomic.AddInt64(&c.depth, -1)

	if desc.args == nil {
		if err := c.formatter.FormatExpectedTypes(c.sink, c.schema); err != nil {
			return true, err
		}
		return true, nil
	}

	formatErr := c.formatter.FormatValues(c.sink, desc.args)

	var argBytes uint32
	for _, a := range desc.args {
		argBytes += uint32(len(a.Array))
	}
	if argBytes > 0 {
		c.arena.Release(argBytes)
	}

	return true, formatErr
}

// ProcessLoop drains the channel until TryProcessOne reports no more work
// or an error occurs.
func (c *SampleChannel) ProcessLoop() error {
	for {
		more, err := c.TryProcessOne()
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
}
