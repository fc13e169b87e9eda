// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tracefab

// Sink is the byte-writer contract at a channel's output boundary (C8).
//
// Implementations are not required to be thread-safe: the channel
// serialises every call from its single consumer goroutine. A short write
// (returned n < len(p)) means the sink is saturated; the caller decides
// whether to retry or treat it as ErrSinkWriteShort.
type Sink interface {
	Write(p []byte) (n int, err error)
	Flush() bool
}
