package control

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"switchd/internal/runtime"
)

// Defaults applied when corresponding DaemonConfig fields are unset.
const (
	defaultPingInterval  = 60 * time.Second
	defaultReloadRetries = 3
	defaultReloadBackoff = 5 * time.Second
)

// DaemonConfig holds the keep-alive loop's tunables.
type DaemonConfig struct {
	// Model is the desired resident model.
	Model string
	// PingInterval is the pause between liveness checks.
	PingInterval time.Duration
	// ReloadRetries bounds reload attempts within one tick.
	ReloadRetries int
	// ReloadBackoff is the fixed pause between reload attempts.
	ReloadBackoff time.Duration
}

// Daemon keeps the desired model resident: each tick it pings the model if
// it is loaded, and re-drives the switcher's start path if the runtime has
// unloaded it. A failed reload is logged and retried on the next tick; the
// daemon is never fatal to the rest of the system.
type Daemon struct {
	rt  runtime.Controller
	sw  *Switcher
	cfg DaemonConfig
	log zerolog.Logger
}

// NewDaemon constructs a keep-alive Daemon.
func NewDaemon(rt runtime.Controller, sw *Switcher, cfg DaemonConfig, log zerolog.Logger) *Daemon {
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = defaultPingInterval
	}
	if cfg.ReloadRetries <= 0 {
		cfg.ReloadRetries = defaultReloadRetries
	}
	if cfg.ReloadBackoff <= 0 {
		cfg.ReloadBackoff = defaultReloadBackoff
	}
	return &Daemon{
		rt:  rt,
		sw:  sw,
		cfg: cfg,
		log: log.With().Str("component", "keepalive").Str("model", cfg.Model).Logger(),
	}
}

// Run loops until the context is cancelled.
func (d *Daemon) Run(ctx context.Context) {
	d.log.Info().Dur("interval", d.cfg.PingInterval).Msg("keep-alive daemon started")

	ticker := time.NewTicker(d.cfg.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			d.log.Info().Msg("keep-alive daemon stopping")
			return
		case <-ticker.C:
			d.tick(ctx)
		}
	}
}

func (d *Daemon) tick(ctx context.Context) {
	running, err := d.rt.ListRunning(ctx)
	if err != nil {
		d.log.Warn().Err(err).Msg("runtime unreachable, skipping tick")
		return
	}
	for _, inst := range running {
		if inst.Name == d.cfg.Model {
			if err := d.rt.Ping(ctx, d.cfg.Model); err != nil {
				d.log.Warn().Err(err).Msg("keep-alive ping failed")
			} else {
				d.log.Debug().Msg("keep-alive ping sent")
			}
			return
		}
	}

	d.log.Info().Msg("desired model not loaded, reloading")
	d.reload(ctx)
}

// reload re-drives the switcher's start path with bounded retries and a
// fixed backoff. Exhausted retries are a warning, not an error: the next
// tick tries again.
func (d *Daemon) reload(ctx context.Context) {
	for attempt := 1; attempt <= d.cfg.ReloadRetries; attempt++ {
		err := d.sw.ensureStarted(ctx, d.cfg.Model)
		if err == nil {
			d.log.Info().Int("attempt", attempt).Msg("model reloaded")
			keepaliveReloadsTotal.WithLabelValues(outcomeSuccess).Inc()
			return
		}
		d.log.Warn().Err(err).Int("attempt", attempt).Msg("reload attempt failed")
		if attempt == d.cfg.ReloadRetries {
			break
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(d.cfg.ReloadBackoff):
		}
	}
	keepaliveReloadsTotal.WithLabelValues(outcomeTimeout).Inc()
	d.log.Warn().Int("attempts", d.cfg.ReloadRetries).Msg("reload failed, will retry next tick")
}
