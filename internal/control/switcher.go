package control

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"switchd/internal/runtime"
	"switchd/pkg/types"
)

// Defaults applied when corresponding SwitcherConfig fields are unset.
const (
	defaultPollInterval = 2 * time.Second
	defaultMaxAttempts  = 15
)

// switchState labels the phases of one switch operation for logging.
type switchState string

const (
	stateValidating switchState = "validating"
	stateStopping   switchState = "stopping"
	stateStarting   switchState = "starting"
	stateVerifying  switchState = "verifying"
	stateSucceeded  switchState = "succeeded"
	stateFailed     switchState = "failed"
)

// SwitcherConfig encapsulates the switch state machine's tunables.
type SwitcherConfig struct {
	// PollInterval is the pause between verify attempts.
	PollInterval time.Duration
	// MaxAttempts bounds the verify phase; the overall deadline is
	// roughly PollInterval * MaxAttempts.
	MaxAttempts int
}

// Switcher drives the model switch state machine:
//
//	Idle -> Validating -> Stopping -> Starting -> Verifying -> {Succeeded, Failed}
//
// A single mutex serializes the whole transition, so concurrent SwitchTo
// calls cannot interleave their stop/start steps. Callers should know that
// a switch stops every running instance first: only one active model is
// supported, and freeing the accelerator takes precedence over keeping
// unrelated instances alive.
type Switcher struct {
	mu    sync.Mutex
	rt    runtime.Controller
	state *ActiveState
	cfg   SwitcherConfig
	log   zerolog.Logger
}

// NewSwitcher constructs a Switcher around the runtime controller.
func NewSwitcher(rt runtime.Controller, state *ActiveState, cfg SwitcherConfig, log zerolog.Logger) *Switcher {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	return &Switcher{
		rt:    rt,
		state: state,
		cfg:   cfg,
		log:   log.With().Str("component", "switcher").Logger(),
	}
}

// Active returns the confirmed active-model record.
func (s *Switcher) Active() types.ActiveModel { return s.state.Current() }

// Installed lists the models the runtime has on disk.
func (s *Switcher) Installed(ctx context.Context) ([]types.Model, error) {
	models, err := s.rt.ListInstalled(ctx)
	if err != nil {
		return nil, runtimeUnavailableError{op: "listing", cause: err}
	}
	return models, nil
}

// SwitchTo makes target the single active model. The returned result is
// always well-formed; a non-nil error carries the failure type for status
// mapping and mirrors the result message. Switching to the already-active
// model is a fast no-op.
func (s *Switcher) SwitchTo(ctx context.Context, target string) (types.SwitchResult, error) {
	if target == "" {
		err := fmt.Errorf("target model must not be empty")
		return types.SwitchResult{Success: false, Message: err.Error()}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if cur := s.state.Current(); cur.Name == target {
		s.log.Debug().Str("model", target).Msg("switch is a no-op, model already active")
		return types.SwitchResult{
			Success:     true,
			Message:     fmt.Sprintf("model %q is already active", target),
			ActiveModel: target,
		}, nil
	}

	start := time.Now()
	s.log.Info().Str("model", target).Str("state", string(stateValidating)).Msg("switch started")

	// Validating: the target must be installed. No mutation happens on
	// this path.
	installed, err := s.rt.ListInstalled(ctx)
	if err != nil {
		werr := runtimeUnavailableError{op: "validation", cause: err}
		switchesTotal.WithLabelValues(outcomeError).Inc()
		return types.SwitchResult{Success: false, Message: werr.Error()}, werr
	}
	names := make([]string, 0, len(installed))
	found := false
	for _, m := range installed {
		names = append(names, m.Name)
		if m.Name == target {
			found = true
		}
	}
	if !found {
		werr := ErrModelNotFound(target, names)
		s.log.Warn().Str("model", target).Str("state", string(stateFailed)).Msg("switch target not installed")
		switchesTotal.WithLabelValues(outcomeNotFound).Inc()
		return types.SwitchResult{Success: false, Message: werr.Error()}, werr
	}

	// Stopping: free the runtime by unloading everything currently
	// loaded. Individual stop failures are logged and collected, never
	// fatal: the goal is freeing resources, not perfection.
	s.log.Info().Str("model", target).Str("state", string(stateStopping)).Msg("stopping running instances")
	running, err := s.rt.ListRunning(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("could not list running instances, continuing")
	}
	var stopFailures int
	for _, inst := range running {
		if err := s.rt.Stop(ctx, inst.Name); err != nil {
			stopFailures++
			s.log.Warn().Err(err).Str("instance", inst.Name).Msg("stop failed")
		}
	}
	if stopFailures > 0 {
		s.log.Warn().Int("failures", stopFailures).Msg("some instances did not stop cleanly")
	}

	// Starting: a non-blocking load request.
	s.log.Info().Str("model", target).Str("state", string(stateStarting)).Msg("requesting model load")
	if err := s.rt.Start(ctx, target); err != nil {
		werr := runtimeUnavailableError{op: "start", cause: err}
		switchesTotal.WithLabelValues(outcomeError).Inc()
		return types.SwitchResult{Success: false, Message: werr.Error()}, werr
	}

	// Verifying: poll the running listing until the target appears or
	// the attempt budget is exhausted.
	s.log.Info().Str("model", target).Str("state", string(stateVerifying)).Msg("waiting for model to come up")
	inst, err := s.verify(ctx, target)
	if err != nil {
		s.log.Warn().Err(err).Str("model", target).Str("state", string(stateFailed)).Msg("switch failed")
		switchesTotal.WithLabelValues(outcomeTimeout).Inc()
		return types.SwitchResult{Success: false, Message: err.Error()}, err
	}

	s.state.replace(activeRecord(inst))
	s.log.Info().
		Str("model", target).
		Str("state", string(stateSucceeded)).
		Dur("took", time.Since(start)).
		Msg("switch complete")
	switchesTotal.WithLabelValues(outcomeSuccess).Inc()
	return types.SwitchResult{
		Success:     true,
		Message:     fmt.Sprintf("switched to %q", target),
		ActiveModel: target,
	}, nil
}

// verify polls the running listing every PollInterval for up to
// MaxAttempts, suspending between attempts rather than busy-waiting.
// Context cancellation wins over the attempt budget.
func (s *Switcher) verify(ctx context.Context, target string) (types.RunningModel, error) {
	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		running, err := s.rt.ListRunning(ctx)
		if err != nil {
			s.log.Debug().Err(err).Int("attempt", attempt).Msg("verify listing failed")
		}
		for _, inst := range running {
			if inst.Name == target {
				return inst, nil
			}
		}
		if attempt == s.cfg.MaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return types.RunningModel{}, ctx.Err()
		case <-time.After(s.cfg.PollInterval):
		}
	}
	return types.RunningModel{}, startTimeoutError{name: target, attempts: s.cfg.MaxAttempts}
}

// ensureStarted is the keep-alive reload path: start and verify without
// the validate/stop phases, under the same mutex as SwitchTo so a reload
// cannot interleave with a switch.
func (s *Switcher) ensureStarted(ctx context.Context, target string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.rt.Start(ctx, target); err != nil {
		return runtimeUnavailableError{op: "start", cause: err}
	}
	inst, err := s.verify(ctx, target)
	if err != nil {
		return err
	}
	s.state.replace(activeRecord(inst))
	return nil
}

func activeRecord(inst types.RunningModel) types.ActiveModel {
	mem := inst.SizeVRAMBytes
	if mem == 0 {
		mem = inst.SizeBytes
	}
	return types.ActiveModel{
		Name:               inst.Name,
		AcceleratorBacked:  inst.AcceleratorPct > 0,
		RuntimeMemoryBytes: mem,
	}
}
