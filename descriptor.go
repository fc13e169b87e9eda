// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tracefab

import (
	"code.hybscloud.com/iox"
	"code.hybscloud.com/spin"
	"code.hybscloud.com/tracefab/internal/arena"
	"code.hybscloud.com/tracefab/internal/queue"
)

// descQueue is satisfied by both queue.SPSC[T] and queue.MPSC[T]: a
// channel picks the single- or multi-producer strategy at construction
// (§4.3, §5) without the channel logic itself depending on which.
type descQueue[T any] interface {
	Enqueue(*T) error
	Dequeue() (T, error)
}

func newDescQueue[T any](cfg channelConfig) descQueue[T] {
	if cfg.multiProducer {
		return queue.NewMPSC[T](cfg.queueCapacity)
	}
	return queue.NewSPSC[T](cfg.queueCapacity)
}

// eventDescriptor is the channel-queue record from §3: a null args means
// "publish attributes only".
type eventDescriptor struct {
	attr *EventAttributes
	args []Argument
}

// sampleDescriptor is the channel-queue record for the sample path.
type sampleDescriptor struct {
	args []Argument
}

// arenaStage reserves space in a's FIFO for every array-typed argument in
// args and rewrites each argument's Array slice to alias the reserved
// arena region, in argument order. It honours policy: PolicyFail returns
// ErrArenaFull immediately, PolicyDrop returns ErrArenaFull without
// spinning, PolicyBlock spins until space is available.
//
// The reservation is a single Acquire call for the combined size of every
// array argument, not one Acquire per argument: the arena is a strict
// FIFO, so a partial failure partway through a per-argument loop would
// leave already-acquired bytes stranded (Release always frees from the
// oldest end, not from wherever an abandoned reservation happens to sit).
// One combined reservation makes the whole operation atomic from the
// arena's point of view — it either succeeds entirely or leaves no trace.
//
// It returns the total bytes reserved so the caller can release exactly
// that many bytes, in FIFO order, once the occurrence has been consumed.
func arenaStage(a *arena.Arena, args []Argument, policy OverflowPolicy) (reserved uint32, err error) {
	var total uint32
	for i := range args {
		total += uint32(len(args[i].Array))
	}
	if total == 0 {
		return 0, nil
	}

	off, err := tryAcquire(a, total, policy)
	if err != nil {
		return 0, err
	}

	region := a.Bytes(off, total)
	var cursor uint32
	for i := range args {
		n := uint32(len(args[i].Array))
		if n == 0 {
			continue
		}
		dst := region[cursor : cursor+n]
		copy(dst, args[i].Array)
		args[i].Array = dst
		cursor += n
	}
	return total, nil
}

func tryAcquire(a *arena.Arena, n uint32, policy OverflowPolicy) (uint32, error) {
	if policy == PolicyBlock {
		var sw spin.Wait
		for {
			off, err := a.Acquire(n)
			if err == nil {
				return off, nil
			}
			sw.Once()
		}
	}
	return a.Acquire(n)
}

// enqueueWithPolicy pushes into q honouring policy, reporting whether the
// push happened and whether it should count as a dropped producer call.
func enqueueWithPolicy[T any](q descQueue[T], item *T, policy OverflowPolicy) (dropped bool, err error) {
	if policy == PolicyBlock {
		var sw spin.Wait
		for {
			e := q.Enqueue(item)
			if e == nil {
				return false, nil
			}
			if !iox.IsWouldBlock(e) {
				return false, e
			}
			sw.Once()
		}
	}

	e := q.Enqueue(item)
	if e == nil {
		return false, nil
	}
	if !iox.IsWouldBlock(e) {
		return false, e
	}
	if policy == PolicyFail {
		return false, e
	}
	return true, nil
}

// spinPublish enqueues an attributes-only descriptor, spinning until it
// succeeds: §4.4 requires the attributes-only descriptor to reach the
// consumer before any occurrence referencing that id, so this path is
// never subject to the channel's overflow policy.
func spinPublish[T any](q descQueue[T], item *T) {
	var sw spin.Wait
	for {
		if q.Enqueue(item) == nil {
			return
		}
		sw.Once()
	}
}
