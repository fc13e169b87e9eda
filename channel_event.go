// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tracefab

import (
	"errors"
	"sync/atomic"

	"code.hybscloud.com/tracefab/internal/arena"
)

// EventChannel is the producer/consumer pipe for discrete events (C5): a
// bounded descriptor queue plus a circular byte arena for variable-sized
// argument payloads, a sink, and a formatter.
type EventChannel struct {
	sink      Sink
	formatter EventFormatter
	arena     *arena.Arena
	queue     descQueue[eventDescriptor]
	policy    OverflowPolicy

	dropped uint64
	depth   int64

	registry *attributeRegistry
	poison   atomic.Pointer[error]
}

// NewEventChannel constructs an EventChannel. Defaults: 64KiB arena,
// 1024-entry queue, PolicyBlock, single producer.
func NewEventChannel(sink Sink, formatter EventFormatter, opts ...Option) (*EventChannel, error) {
	cfg := defaultChannelConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &EventChannel{
		sink:      sink,
		formatter: formatter,
		arena:     arena.New(cfg.arenaCapacity),
		queue:     newDescQueue[eventDescriptor](cfg),
		policy:    cfg.policy,
		registry:  newAttributeRegistry(),
	}, nil
}

// DroppedEvents returns the number of LogEvent calls dropped under
// PolicyDrop since construction (Testable Property 7).
func (c *EventChannel) DroppedEvents() uint64 {
	return atomic.LoadUint64(&c.dropped)
}

// DroppedCount satisfies metrics.DroppedCounter.
func (c *EventChannel) DroppedCount() uint64 { return c.DroppedEvents() }

// ArenaBytesInUse returns a snapshot of the channel's argument arena
// occupancy in bytes. Satisfies metrics.OccupancySource.
func (c *EventChannel) ArenaBytesInUse() uint32 { return c.arena.InUse() }

// QueueDepth returns a snapshot of the number of descriptors currently
// enqueued but not yet dequeued. Satisfies metrics.OccupancySource.
//
// The underlying queue deliberately exposes no length (see
// internal/queue's doc comment), so this is tracked independently here,
// at the one place that sees every successful Enqueue/Dequeue.
func (c *EventChannel) QueueDepth() int64 { return atomic.LoadInt64(&c.depth) }

func (c *EventChannel) poisonErr() error {
	if p := c.poison.Load(); p != nil {
		return *p
	}
	return nil
}

// poison_ latches err (the first stream-fatal cause) and returns it
// joined with ErrChannelPoisoned, so callers can test either the
// specific cause or the general poisoned condition with errors.Is.
func (c *EventChannel) poison_(err error) error {
	joined := errors.Join(ErrChannelPoisoned, err)
	c.poison.CompareAndSwap(nil, &joined)
	return c.poisonErr()
}

// LogEvent registers site on first use (idempotent, §4.4) and enqueues
// one occurrence descriptor carrying args. Array-typed arguments are
// copied into the channel's arena; scalar arguments travel inline.
//
// Ordering between concurrent producers on the same channel is only
// guaranteed relative to each producer's own calls (§5).
func (c *EventChannel) LogEvent(site *EventSite, args ...Argument) error {
	if err := c.poisonErr(); err != nil {
		return err
	}

	attr := site.EnsureRegistered(func(a *EventAttributes) {
		spinPublish(c.queue, &eventDescriptor{attr: a, args: nil})
		atomic.AddInt64(&c.depth, 1)
	})

	reserved, err := arenaStage(c.arena, args, c.policy)
	if err != nil {
		if c.policy == PolicyDrop {
			atomic.AddUint64(&c.dropped, 1)
			return nil
		}
		return err
	}

	if args == nil {
		// nil args marks an attributes-only descriptor; an occurrence
		// with no arguments carries an empty, non-nil slice instead.
		args = []Argument{}
	}
	desc := eventDescriptor{attr: attr, args: args}
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
// formatter, releasing any arena bytes the occurrence held. It returns
// false iff the queue was empty. Once a stream-fatal error occurs
// (ErrUnknownAttribute), the channel is poisoned and every subsequent
// call returns that same error.
func (c *EventChannel) TryProcessOne() (bool, error) {
	if err := c.poisonErr(); err != nil {
		return false, err
	}

	desc, err := c.queue.Dequeue()
	if err != nil {
		return false, nil
	}
	atomic.AddInt64(&c.depth, -1)

	if desc.args == nil {
		c.registry.publish(desc.attr)
		if err := c.formatter.FormatAttributes(c.sink, desc.attr); err != nil {
			return true, err
		}
		return true, nil
	}

	if _, ok := c.registry.lookup(desc.attr.ID); !ok {
		return true, c.poison_(ErrUnknownAttribute)
	}

	formatErr := c.formatter.FormatEvent(c.sink, desc.attr, desc.args)

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
// or an error occurs; it is a convenience for embedders that want a
// simple non-blocking drain pass rather than hand-rolling the loop.
func (c *EventChannel) ProcessLoop() error {
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
