package metrics

import (
	"sync"
	"time"
)

// BusSource exposes the bus state sampled by the Collector.
type BusSource interface {
	TotalListenerCount() int
	RegisterSize() int
}

// ModuleSource exposes module manager state sampled by the Collector.
type ModuleSource interface {
	LoadedCount() int
}

// Collector samples bus and module state into gauges
type Collector struct {
	bus      BusSource
	modules  ModuleSource
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewCollector creates a new metrics collector. modules may be nil.
func NewCollector(bus BusSource, modules ModuleSource) *Collector {
	return &Collector{
		bus:      bus,
		modules:  modules,
		interval: 15 * time.Second,
		stopCh:   make(chan struct{}),
	}
}

// Start begins collecting metrics
func (c *Collector) Start() {
	ticker := time.NewTicker(c.interval)
	go func() {
		// Collect immediately on start
		c.Collect()

		for {
			select {
			case <-ticker.C:
				c.Collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops the collector. It is safe to call more than once.
func (c *Collector) Stop() {
	c.stopOnce.Do(func() { close(c.stopCh) })
}

// Collect samples every source once
func (c *Collector) Collect() {
	if c.bus != nil {
		ListenersRegistered.Set(float64(c.bus.TotalListenerCount()))
		RegisterEvents.Set(float64(c.bus.RegisterSize()))
	}
	if c.modules != nil {
		ModulesLoaded.Set(float64(c.modules.LoadedCount()))
	}
}
