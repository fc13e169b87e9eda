// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package arena implements the bounded single-producer/single-consumer byte
// FIFO that channels use to stage variable-sized argument payloads (arrays,
// strings) between producer and consumer without per-record heap allocation.
//
// Space is reserved by the producer in strict order of Acquire calls and
// freed by the consumer in strict order of Release calls, so the arena's
// live region is always a single contiguous span or a wrapped pair of
// contiguous spans.
package arena

import (
	"errors"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// ErrFull is returned by Acquire when the free region cannot hold n
// contiguous or wrap-around bytes.
var ErrFull = errors.New("arena: full")

// Arena is a fixed-capacity circular byte allocator with FIFO semantics.
//
// One producer calls Acquire, one consumer calls Release. The allocator
// and deallocator sides each serialise retries behind their own
// compare-and-swap latch rather than an OS mutex, matching the producer
// and consumer's independent progress guarantees.
type Arena struct {
	capacity uint32
	buf      []byte

	_ pad
	// end is the producer cursor: the offset one past the most recently
	// acquired byte, in [0, capacity).
	end atomix.Uint64
	_   pad
	// begin is the consumer cursor: the offset of the oldest live byte,
	// in [0, capacity).
	begin atomix.Uint64
	_     pad
	// capEff records the "effective capacity" stashed by the wrap-discard
	// allocation case: the producer range [capEff, capacity) was abandoned
	// mid-buffer, and the consumer must wrap begin to 0 once it reaches
	// capEff rather than running to the true capacity. It is exposed as a
	// first-class atomic rather than implicit state so the producer/
	// consumer cursor dance can be reasoned about (and tested) directly.
	capEff atomix.Uint64
	_      pad

	allocating   atomix.Bool
	deallocating atomix.Bool
}

type pad [64]byte

// New creates an Arena with the given capacity in bytes. Capacity must be
// at least 1.
func New(capacity uint32) *Arena {
	if capacity == 0 {
		panic("arena: capacity must be >= 1")
	}
	a := &Arena{capacity: capacity, buf: make([]byte, capacity)}
	a.capEff.StoreRelaxed(uint64(capacity))
	return a
}

// Cap returns the arena's total capacity in bytes.
func (a *Arena) Cap() int {
	return int(a.capacity)
}

// Bytes returns the backing slice for the region [offset, offset+n)
// returned by a prior successful Acquire. The slice aliases the arena's
// own storage; callers on both the producer and consumer side use it to
// write and read the payload without a second copy.
func (a *Arena) Bytes(offset, n uint32) []byte {
	return a.buf[offset : offset+n]
}

// IsEmpty reports whether the arena currently holds no live bytes.
func (a *Arena) IsEmpty() bool {
	return a.begin.LoadAcquire() == a.end.LoadAcquire()
}

// InUse returns a snapshot of the number of bytes currently reserved
// (acquired but not yet released). It is approximate under concurrent
// Acquire/Release, same as any lock-free occupancy read, and is meant for
// periodic metrics sampling rather than control flow.
func (a *Arena) InUse() uint32 {
	beg := uint32(a.begin.LoadAcquire())
	end := uint32(a.end.LoadAcquire())
	if end >= beg {
		return end - beg
	}
	capEff := uint32(a.capEff.LoadAcquire())
	return (capEff - beg) + end
}

// Acquire reserves n bytes at the producer end and returns the offset of
// the first reserved byte. It returns ErrFull when the free region cannot
// hold n contiguous or wrap-around bytes; the caller decides whether to
// spin, drop, or fail per its own overflow policy — Acquire never blocks.
func (a *Arena) Acquire(n uint32) (uint32, error) {
	if n == 0 {
		return 0, nil
	}

	sw := spin.Wait{}
	for {
		if off, ok := a.tryAcquire(n); ok {
			return off, nil
		}
		if a.tryAcquireFailed(n) {
			return 0, ErrFull
		}
		sw.Once()
	}
}

// tryAcquireFailed reports whether a fresh read of the cursors shows the
// request genuinely cannot be satisfied (as opposed to a transient CAS
// race against a concurrent retry of the same side).
func (a *Arena) tryAcquireFailed(n uint32) bool {
	beg := uint32(a.begin.LoadAcquire())
	end := uint32(a.end.LoadAcquire())
	capacity := a.capacity
	if end >= beg {
		if n < capacity-end {
			return false
		}
		if n == capacity-end && beg > 0 {
			return false
		}
		if n < beg {
			return false
		}
		return true
	}
	return !(n < beg-end)
}

// tryAcquire attempts one allocation case. ok is false when the current
// snapshot lost a race against a concurrent retry and the caller should
// reread and try again; it does not mean the arena is full (see
// tryAcquireFailed for that determination).
func (a *Arena) tryAcquire(n uint32) (uint32, bool) {
	for a.allocating.LoadAcquire() {
		// Another acquire-side retry is mid-flight; wait it out rather
		// than racing the same latch.
		var sw spin.Wait
		sw.Once()
	}
	if !a.allocating.CompareAndSwapAcqRel(false, true) {
		return 0, false
	}
	defer a.allocating.StoreRelease(false)

	beg := uint32(a.begin.LoadAcquire())
	end := uint32(a.end.LoadAcquire())
	capacity := a.capacity

	if end >= beg {
		if n < capacity-end {
			if a.end.CompareAndSwapAcqRel(uint64(end), uint64(end+n)) {
				return end, true
			}
			return 0, false
		}
		if n == capacity-end && beg > 0 {
			// Exact wrap: this region runs to the true capacity, so an
			// effective capacity left by an earlier wrap-discard is void.
			a.capEff.StoreRelease(uint64(capacity))
			if a.end.CompareAndSwapAcqRel(uint64(end), 0) {
				return end, true
			}
			return 0, false
		}
		if n < beg {
			// Wrap-discard: the tail [end, capacity) of the buffer is
			// abandoned. Stash it as the effective capacity so Release
			// knows where the consumer must wrap back to 0.
			a.capEff.StoreRelease(uint64(end))
			if a.end.CompareAndSwapAcqRel(uint64(end), uint64(n)) {
				return 0, true
			}
			return 0, false
		}
		return 0, false
	}

	// end < beg
	if n < beg-end {
		if a.end.CompareAndSwapAcqRel(uint64(end), uint64(end+n)) {
			return end, true
		}
		return 0, false
	}
	return 0, false
}

// Release frees the oldest n bytes at the consumer end. It spins until the
// free succeeds; Release can never legitimately fail once the matching
// Acquire has happened-before it; the happens-before relation is the
// queue's responsibility, not the arena's.
func (a *Arena) Release(n uint32) {
	if n == 0 {
		return
	}
	sw := spin.Wait{}
	for !a.tryRelease(n) {
		sw.Once()
	}
}

func (a *Arena) tryRelease(n uint32) bool {
	for a.deallocating.LoadAcquire() {
		var sw spin.Wait
		sw.Once()
	}
	if !a.deallocating.CompareAndSwapAcqRel(false, true) {
		return false
	}
	defer a.deallocating.StoreRelease(false)

	beg := uint32(a.begin.LoadAcquire())
	end := uint32(a.end.LoadAcquire())

	if beg <= end {
		if end-beg >= n {
			return a.begin.CompareAndSwapAcqRel(uint64(beg), uint64(beg+n))
		}
		return false
	}

	// end < beg: the live region wraps through the effective capacity
	// stashed by the wrap-discard acquisition case.
	capEff := uint32(a.capEff.LoadAcquire())
	begNew := (beg + n) % capEff
	if n <= capEff-(beg-end) {
		return a.begin.CompareAndSwapAcqRel(uint64(beg), uint64(begNew))
	}
	return false
}
