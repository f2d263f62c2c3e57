package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/me/rrsim/internal/logging"
	"github.com/me/rrsim/pkg/model"
)

// PlayerConfig holds playback configuration.
type PlayerConfig struct {
	// Delay between ticks. Zero steps as fast as possible.
	Delay time.Duration
}

// DefaultPlayerConfig returns a one-second step delay.
func DefaultPlayerConfig() PlayerConfig {
	return PlayerConfig{Delay: time.Second}
}

// SpeedDelay scales the default delay by factor, clamped to [0.2, 3.0].
// Smaller is faster.
func SpeedDelay(factor float64) time.Duration {
	if factor < 0.2 {
		factor = 0.2
	}
	if factor > 3.0 {
		factor = 3.0
	}
	return time.Duration(float64(DefaultPlayerConfig().Delay) * factor)
}

var errStopped = errors.New("player stopped")

// Player steps a simulation on a timer until it finishes. Pausing simply
// stops requesting ticks; the simulation itself holds no pause state.
type Player struct {
	stepper Stepper
	config  PlayerConfig
	onTick  func(model.TickResult)
	logger  *slog.Logger

	mu       sync.Mutex
	paused   bool
	resumeCh chan struct{}

	started  atomic.Bool
	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewPlayer creates a player. onTick, if non-nil, receives every tick result
// after the tick has completed.
func NewPlayer(st Stepper, cfg PlayerConfig, onTick func(model.TickResult), logger *slog.Logger) *Player {
	return &Player{
		stepper: st,
		config:  cfg,
		onTick:  onTick,
		logger:  logging.Component(logger, "player"),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
}

// Start steps until the run finishes, ctx is cancelled or Stop is called.
// It returns nil when the run finishes or the player is stopped.
func (p *Player) Start(ctx context.Context) error {
	p.started.Store(true)
	defer close(p.doneCh)
	p.logger.Debug("player started", "delay", p.config.Delay)

	for {
		if err := p.waitTurn(ctx); err != nil {
			if errors.Is(err, errStopped) {
				p.logger.Debug("player stopping (stop called)")
				return nil
			}
			p.logger.Debug("player stopping (context cancelled)")
			return err
		}
		res, err := p.Tick(ctx)
		if err != nil {
			return err
		}
		if res.Finished {
			p.logger.Debug("player finished", "tick", res.Tick)
			return nil
		}
	}
}

// Tick runs exactly one step and reports it to the callback.
func (p *Player) Tick(ctx context.Context) (model.TickResult, error) {
	if err := ctx.Err(); err != nil {
		return model.TickResult{}, err
	}
	res, err := p.stepper.Step()
	if err != nil {
		return model.TickResult{}, err
	}
	p.logger.Debug("tick", "tick", res.Tick, "events", len(res.Events), "finished", res.Finished)
	if p.onTick != nil {
		p.onTick(res)
	}
	return res, nil
}

// Pause stops stepping after the current tick.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.paused {
		p.paused = true
		p.resumeCh = make(chan struct{})
	}
}

// Resume continues stepping.
func (p *Player) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.paused {
		p.paused = false
		close(p.resumeCh)
	}
}

// Paused reports whether the player is paused.
func (p *Player) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

// Stop ends playback and waits for Start to return if it is running.
func (p *Player) Stop() error {
	p.stopOnce.Do(func() { close(p.stopCh) })
	if p.started.Load() {
		<-p.doneCh
	}
	return nil
}

// waitTurn blocks until the next tick may run.
func (p *Player) waitTurn(ctx context.Context) error {
	for {
		p.mu.Lock()
		paused, resumeCh := p.paused, p.resumeCh
		p.mu.Unlock()

		if paused {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-p.stopCh:
				return errStopped
			case <-resumeCh:
				continue
			}
		}

		if p.config.Delay <= 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-p.stopCh:
				return errStopped
			default:
				return nil
			}
		}

		timer := time.NewTimer(p.config.Delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-p.stopCh:
			timer.Stop()
			return errStopped
		case <-timer.C:
			if !p.Paused() {
				return nil
			}
		}
	}
}
