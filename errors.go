// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tracefab

import (
	"errors"

	"code.hybscloud.com/tracefab/internal/arena"
	"code.hybscloud.com/tracefab/internal/queue"
)

// ErrArenaFull is returned when a producer could not reserve payload bytes
// for an event or sample's variable-length arguments.
//
// This is an alias for [arena.ErrFull] for ecosystem consistency: callers
// that only import the root package never need to know the arena exists.
var ErrArenaFull = arena.ErrFull

// ErrQueueFull is returned when a producer could not enqueue a descriptor.
//
// This is an alias for [queue.ErrWouldBlock]; the underlying queue makes no
// distinction between "full" and "would block" because both conditions mean
// the same thing to a non-blocking try_push.
var ErrQueueFull = queue.ErrWouldBlock

// ErrUnsupportedArgumentKind is returned when the network receiver decodes
// a wire tag outside the closed type-size table.
var ErrUnsupportedArgumentKind = errors.New("tracefab: unsupported argument kind")

// ErrSchemaMismatch is returned when a sample's argc or tag sequence
// disagrees with the channel's schema; the sample is not enqueued.
var ErrSchemaMismatch = errors.New("tracefab: sample does not match channel schema")

// ErrUnknownAttribute is returned by the consumer when an occurrence refers
// to an attribute id that was never published. It is stream-fatal: once
// returned, all subsequent calls to TryProcessOne on that channel return
// the same error.
var ErrUnknownAttribute = errors.New("tracefab: occurrence references unknown attribute id")

// ErrTruncatedFrame is returned by the network receiver when a frame ends
// before its declared fields are fully present.
var ErrTruncatedFrame = errors.New("tracefab: truncated network frame")

// ErrCorruptMark is returned by the network receiver when the 8-byte frame
// marker does not match either known value. It is stream-fatal.
var ErrCorruptMark = errors.New("tracefab: corrupt frame marker")

// ErrSinkWriteShort is returned by the format package's formatters when a
// sink accepted fewer bytes than offered; no retry is attempted.
var ErrSinkWriteShort = errors.New("tracefab: sink accepted fewer bytes than offered")

// ErrChannelPoisoned is returned by TryProcessOne once a stream-fatal error
// (ErrUnknownAttribute or ErrCorruptMark) has poisoned the channel.
var ErrChannelPoisoned = errors.New("tracefab: channel is poisoned by a prior stream-fatal error")

// IsWouldBlock reports whether err is a queue- or arena-full backpressure
// signal rather than a hard failure.
func IsWouldBlock(err error) bool {
	return errors.Is(err, ErrQueueFull) || errors.Is(err, ErrArenaFull)
}
