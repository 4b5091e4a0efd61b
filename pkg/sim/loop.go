package sim

import (
	"sync"
	"time"

	"github.com/open-teleop/turtlebridge/domain/teleop"
	customlog "github.com/open-teleop/turtlebridge/pkg/log"
)

// InputPoller yields the locally held input for the current tick
type InputPoller interface {
	Poll() (teleop.MovementCommand, bool)
}

// Router exchanges this tick's local commands for the commands to apply.
// *bridge.TickAdapter implements it.
type Router interface {
	Tick(local []teleop.MovementCommand) []teleop.MovementCommand
}

// Snapshot is the state published after each step
type Snapshot struct {
	Tick uint64 `json:"tick"`
	Pose Pose   `json:"pose"`
}

// Loop runs the fixed-timestep simulation: poll input, route through the
// bridge, apply and step.
type Loop struct {
	turtle *Turtle
	input  InputPoller
	router Router
	step   time.Duration
	logger customlog.Logger

	mu       sync.RWMutex
	snapshot Snapshot
}

// NewLoop creates a simulation loop. A nil router applies local input only.
func NewLoop(params Params, input InputPoller, router Router, logger customlog.Logger) *Loop {
	return &Loop{
		turtle: NewTurtle(params),
		input:  input,
		router: router,
		step:   params.Step,
		logger: logger,
	}
}

// Advance runs a single tick and returns the resulting snapshot.
func (l *Loop) Advance() Snapshot {
	var local []teleop.MovementCommand
	if l.input != nil {
		if cmd, ok := l.input.Poll(); ok {
			cmd.Origin = teleop.OriginLocal
			local = append(local, cmd)
		}
	}

	events := local
	if l.router != nil {
		events = l.router.Tick(local)
	}
	for _, cmd := range events {
		l.logger.Debugf("move event: rotate %d move %d (%s)", cmd.Rotation, cmd.Movement, cmd.Origin)
	}

	l.turtle.Apply(events)
	l.turtle.Step()

	l.mu.Lock()
	defer l.mu.Unlock()
	l.snapshot = Snapshot{Tick: l.snapshot.Tick + 1, Pose: l.turtle.Pose()}
	return l.snapshot
}

// Snapshot returns the state after the most recent tick. Safe for
// concurrent use.
func (l *Loop) Snapshot() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snapshot
}

// Run ticks at the fixed step until stop is closed.
func (l *Loop) Run(stop <-chan struct{}) {
	step := l.step
	if step <= 0 {
		step = time.Second / 60
	}
	ticker := time.NewTicker(step)
	defer ticker.Stop()

	l.logger.Infof("Simulation running at %v per tick", step)
	for {
		select {
		case <-stop:
			l.logger.Infof("Simulation stopped after %d ticks", l.Snapshot().Tick)
			return
		case <-ticker.C:
			l.Advance()
		}
	}
}
