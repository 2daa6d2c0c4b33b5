// Package telemetry samples hardware and runtime counters on a fixed
// cadence, keeps a bounded in-memory history, and derives advisories from
// the latest readings. Sampling never fails: probe errors degrade to an
// "accelerator unavailable" snapshot instead of propagating.
package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"switchd/internal/gpu"
	"switchd/internal/runtime"
	"switchd/pkg/types"
)

const (
	defaultSampleInterval = 5 * time.Second
	defaultSampleTimeout  = 5 * time.Second
)

// CollectorConfig holds Collector construction tunables. Zero values fall
// back to package defaults.
type CollectorConfig struct {
	Probe    gpu.Probe
	Runtime  runtime.Controller
	History  *History
	Interval time.Duration
	Timeout  time.Duration
	Logger   zerolog.Logger
}

// Collector polls the hardware probe and the runtime, normalizes readings
// into snapshots, and fans them out to the history buffer, Prometheus
// gauges, and live subscribers. The poll loop is the only writer of the
// history buffer.
type Collector struct {
	probe    gpu.Probe
	rt       runtime.Controller
	history  *History
	interval time.Duration
	timeout  time.Duration
	log      zerolog.Logger

	mu      sync.RWMutex
	latest  types.Snapshot
	sampled bool
	lastTPS float64
	subs    map[chan types.Snapshot]struct{}
}

// NewCollector constructs a Collector.
func NewCollector(cfg CollectorConfig) *Collector {
	interval := cfg.Interval
	if interval <= 0 {
		interval = defaultSampleInterval
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultSampleTimeout
	}
	history := cfg.History
	if history == nil {
		history = NewHistory(0)
	}
	return &Collector{
		probe:    cfg.Probe,
		rt:       cfg.Runtime,
		history:  history,
		interval: interval,
		timeout:  timeout,
		log:      cfg.Logger.With().Str("component", "telemetry").Logger(),
		subs:     make(map[chan types.Snapshot]struct{}),
	}
}

// Sample takes one reading within the configured timeout. It always
// returns a well-formed snapshot: a probe failure yields
// AcceleratorAvailable=false with zeroed hardware fields, and a runtime
// failure leaves the process fields at their zero values while the
// hardware fields still reflect what the probe saw.
func (c *Collector) Sample(ctx context.Context) types.Snapshot {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	snap := types.Snapshot{Timestamp: time.Now()}

	if c.probe != nil {
		stats, err := c.probe.ReadAccelerator(ctx)
		if err != nil {
			c.log.Debug().Err(err).Msg("hardware probe unavailable")
		} else {
			snap.AcceleratorAvailable = true
			snap.AcceleratorName = stats.Name
			snap.UtilizationPct = stats.UtilizationPct
			snap.MemoryUsedBytes = stats.MemoryUsedBytes
			snap.MemoryTotalBytes = stats.MemoryTotalBytes
			snap.TemperatureC = stats.TemperatureC
		}
	}

	if c.rt != nil {
		running, err := c.rt.ListRunning(ctx)
		if err != nil {
			c.log.Debug().Err(err).Msg("runtime process listing unavailable")
		} else if len(running) > 0 {
			inst := running[0]
			snap.ActiveModel = inst.Name
			snap.AcceleratorBacked = inst.AcceleratorPct > 0
			snap.RuntimeMemoryBytes = inst.SizeVRAMBytes
			if snap.RuntimeMemoryBytes == 0 {
				snap.RuntimeMemoryBytes = inst.SizeBytes
			}
		}
	}

	c.mu.RLock()
	snap.TokensPerSec = c.lastTPS
	c.mu.RUnlock()

	return snap
}

// Run samples on the configured interval until the context is cancelled.
// Every snapshot lands in the history buffer, updates the exported gauges,
// and is fanned out to subscribers.
func (c *Collector) Run(ctx context.Context) {
	c.log.Info().Dur("interval", c.interval).Msg("telemetry collector started")

	// Prime the latest snapshot before the first tick.
	c.store(c.Sample(ctx))

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			c.log.Info().Msg("telemetry collector stopping")
			c.closeSubscribers()
			return
		case <-ticker.C:
			c.store(c.Sample(ctx))
		}
	}
}

// Latest returns the most recent snapshot and whether one exists yet.
func (c *Collector) Latest() (types.Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.latest, c.sampled
}

// Averages exposes the history buffer's rolling means.
func (c *Collector) Averages() types.Averages { return c.history.Averages() }

// HistoryLen reports the number of snapshots currently held.
func (c *Collector) HistoryLen() int { return c.history.Len() }

// Snapshots exposes a copy of the held time series, oldest first.
func (c *Collector) Snapshots() []types.Snapshot { return c.history.Snapshots() }

// RecordThroughput feeds an observed inference result into subsequent
// snapshots. Callers serving inference report token counts here; the
// collector itself never talks to the inference path.
func (c *Collector) RecordThroughput(tokens int, elapsed time.Duration) {
	if tokens <= 0 || elapsed <= 0 {
		return
	}
	rate := float64(tokens) / elapsed.Seconds()
	c.mu.Lock()
	c.lastTPS = rate
	c.mu.Unlock()
}

// Subscribe registers a live snapshot listener. The returned cancel func
// must be called to release the subscription. Slow consumers lose old
// snapshots rather than blocking the poll loop.
func (c *Collector) Subscribe() (<-chan types.Snapshot, func()) {
	ch := make(chan types.Snapshot, 1)
	c.mu.Lock()
	c.subs[ch] = struct{}{}
	if c.sampled {
		ch <- c.latest
	}
	c.mu.Unlock()

	cancel := func() {
		c.mu.Lock()
		if _, ok := c.subs[ch]; ok {
			delete(c.subs, ch)
			close(ch)
		}
		c.mu.Unlock()
	}
	return ch, cancel
}

func (c *Collector) store(snap types.Snapshot) {
	c.history.Append(snap)
	updateGauges(snap)

	// Fan out under the lock so a concurrent unsubscribe cannot close a
	// channel mid-send. Sends never block: stale entries are dropped.
	c.mu.Lock()
	defer c.mu.Unlock()
	c.latest = snap
	c.sampled = true
	for ch := range c.subs {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}

func (c *Collector) closeSubscribers() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for ch := range c.subs {
		delete(c.subs, ch)
		close(ch)
	}
}
