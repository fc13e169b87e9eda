// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tracefab

// OverflowPolicy selects what happens when a producer cannot reserve
// arena space or enqueue a descriptor (§4.5, §7).
type OverflowPolicy int

const (
	// PolicyBlock spins until the arena or queue has room. Producers
	// never block indefinitely under any other policy; under Block they
	// block only until room appears.
	PolicyBlock OverflowPolicy = iota
	// PolicyDrop counts the failed attempt in the channel's dropped
	// counter and returns nil to the caller without retrying.
	PolicyDrop
	// PolicyFail returns the underlying error (ErrArenaFull/ErrQueueFull)
	// to the caller immediately and does not count it as a drop.
	PolicyFail
)

const (
	defaultArenaCapacity = 64 * 1024
	defaultQueueCapacity = 1024
)

type channelConfig struct {
	arenaCapacity uint32
	queueCapacity int
	policy        OverflowPolicy
	multiProducer bool
}

func defaultChannelConfig() channelConfig {
	return channelConfig{
		arenaCapacity: defaultArenaCapacity,
		queueCapacity: defaultQueueCapacity,
		policy:        PolicyBlock,
	}
}

// Option configures an EventChannel or SampleChannel at construction:
// arena capacity, queue capacity, overflow policy, and producer
// cardinality.
type Option func(*channelConfig)

// WithArenaCapacity sets the circular byte arena's capacity in bytes.
func WithArenaCapacity(n uint32) Option {
	return func(c *channelConfig) { c.arenaCapacity = n }
}

// WithQueueCapacity sets the descriptor queue's capacity in entries.
func WithQueueCapacity(n int) Option {
	return func(c *channelConfig) { c.queueCapacity = n }
}

// WithOverflowPolicy sets the policy applied when the arena or queue is
// full (§4.5, §7). The default is PolicyBlock.
func WithOverflowPolicy(p OverflowPolicy) Option {
	return func(c *channelConfig) { c.policy = p }
}

// WithMultiProducer switches the channel's descriptor queue from the
// default single-producer strategy to the multi-producer atomic-latch
// strategy (§4.3, §5): use this when more than one goroutine calls
// LogEvent/LogSample on the same channel concurrently.
func WithMultiProducer() Option {
	return func(c *channelConfig) { c.multiProducer = true }
}
