// Package filter selects frames before they are printed or checked.
package filter

import (
	"strings"
	"sync/atomic"

	"firestige.xyz/pktchain/pkg/packet"
)

// Filter decides whether a frame is kept. p is nil when the frame did not
// decode.
type Filter interface {
	Match(data []byte, p packet.Packet) bool
}

// Chain keeps a frame only when every filter matches. An empty chain keeps
// everything. Counters are safe for concurrent use.
type Chain struct {
	filters []Filter
	matched atomic.Int64
	dropped atomic.Int64
}

func NewChain(filters ...Filter) *Chain {
	all := make([]Filter, len(filters))
	copy(all, filters)
	return &Chain{filters: all}
}

func (c *Chain) Match(data []byte, p packet.Packet) bool {
	for _, f := range c.filters {
		if !f.Match(data, p) {
			c.dropped.Add(1)
			return false
		}
	}
	c.matched.Add(1)
	return true
}

func (c *Chain) Len() int { return len(c.filters) }

func (c *Chain) Matched() int64 { return c.matched.Load() }

func (c *Chain) Dropped() int64 { return c.dropped.Load() }

// LayerFilter matches decoded chains holding a layer with the given name,
// compared case-insensitively against the layer type names.
type LayerFilter struct {
	name string
}

func NewLayerFilter(name string) *LayerFilter {
	return &LayerFilter{name: name}
}

func (f *LayerFilter) Match(_ []byte, p packet.Packet) bool {
	for _, l := range packet.Layers(p) {
		if strings.EqualFold(l.LayerType().String(), f.name) {
			return true
		}
	}
	return false
}
