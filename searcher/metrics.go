package searcher

import (
	"sync/atomic"
	"time"
)

// RoundMetric summarizes one search round.
type RoundMetric struct {
	StartTime         time.Time
	Duration          time.Duration
	Passes            int64
	DiscardedCycles   int64
	Expansions        int64
	TranspositionHits int64
	Playouts          int64
}

// Collector gathers per-round counters. Implementations must be safe for
// concurrent workers.
type Collector interface {
	Start()
	AddPass()
	AddDiscardedCycle()
	AddExpansion()
	AddTranspositionHit()
	AddPlayouts(n int)
	Complete() RoundMetric
}

type collector struct {
	startTime         time.Time
	passes            atomic.Int64
	discardedCycles   atomic.Int64
	expansions        atomic.Int64
	transpositionHits atomic.Int64
	playouts          atomic.Int64
}

// NewCollector returns a collector backed by atomic counters.
func NewCollector() Collector {
	return &collector{}
}

func (c *collector) Start() {
	c.startTime = time.Now()
	c.passes.Store(0)
	c.discardedCycles.Store(0)
	c.expansions.Store(0)
	c.transpositionHits.Store(0)
	c.playouts.Store(0)
}

func (c *collector) AddPass()             { c.passes.Add(1) }
func (c *collector) AddDiscardedCycle()   { c.discardedCycles.Add(1) }
func (c *collector) AddExpansion()        { c.expansions.Add(1) }
func (c *collector) AddTranspositionHit() { c.transpositionHits.Add(1) }
func (c *collector) AddPlayouts(n int)    { c.playouts.Add(int64(n)) }

func (c *collector) Complete() RoundMetric {
	return RoundMetric{
		StartTime:         c.startTime,
		Duration:          time.Since(c.startTime),
		Passes:            c.passes.Load(),
		DiscardedCycles:   c.discardedCycles.Load(),
		Expansions:        c.expansions.Load(),
		TranspositionHits: c.transpositionHits.Load(),
		Playouts:          c.playouts.Load(),
	}
}

type dummyCollector struct{}

// NewDummyCollector returns a collector that records nothing.
func NewDummyCollector() Collector { return dummyCollector{} }

func (dummyCollector) Start()                {}
func (dummyCollector) AddPass()              {}
func (dummyCollector) AddDiscardedCycle()    {}
func (dummyCollector) AddExpansion()         {}
func (dummyCollector) AddTranspositionHit()  {}
func (dummyCollector) AddPlayouts(int)       {}
func (dummyCollector) Complete() RoundMetric { return RoundMetric{} }
