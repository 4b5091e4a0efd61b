package sim

import (
	"math"
	"time"

	"github.com/open-teleop/turtlebridge/domain/teleop"
	"github.com/open-teleop/turtlebridge/pkg/config"
)

// Params tunes turtle motion
type Params struct {
	MovementSpeed float64       // units per second
	RotationSpeed float64       // radians per second
	MaxActiveTime time.Duration // how long a command keeps moving the turtle
	Step          time.Duration // fixed timestep
}

// ParamsFromConfig converts the simulation config section
func ParamsFromConfig(cfg config.SimulationConfig) Params {
	return Params{
		MovementSpeed: cfg.MovementSpeed,
		RotationSpeed: cfg.RotationSpeedDeg * math.Pi / 180,
		MaxActiveTime: cfg.MaxActiveTime(),
		Step:          cfg.TickInterval(),
	}
}

// Pose is the turtle position and heading. Theta is in radians, counter
// clockwise from the +X axis.
type Pose struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Theta  float64 `json:"theta"`
	Active bool    `json:"active"`
}

// Turtle integrates movement commands over fixed steps. The last command
// applied keeps acting for MaxActiveTime after it stops arriving.
type Turtle struct {
	params         Params
	pose           Pose
	activeTime     float64
	movementFactor float64
	rotationFactor float64
}

// NewTurtle creates a turtle at the origin facing +X
func NewTurtle(p Params) *Turtle {
	return &Turtle{params: p}
}

// Apply takes this tick's commands in order; later commands override
// earlier ones.
func (t *Turtle) Apply(cmds []teleop.MovementCommand) {
	for _, cmd := range cmds {
		t.rotationFactor = float64(cmd.Rotation)
		t.movementFactor = float64(cmd.Movement)
		t.activeTime = t.params.MaxActiveTime.Seconds()
	}
}

// Step advances one fixed timestep.
func (t *Turtle) Step() {
	if t.activeTime <= 1e-9 {
		t.pose.Active = false
		return
	}

	dt := t.params.Step.Seconds()
	t.pose.Theta = normalizeAngle(t.pose.Theta + t.rotationFactor*t.params.RotationSpeed*dt)

	distance := t.movementFactor * t.params.MovementSpeed * dt
	t.pose.X += math.Cos(t.pose.Theta) * distance
	t.pose.Y += math.Sin(t.pose.Theta) * distance

	t.activeTime -= dt
	t.pose.Active = true
}

// Pose returns the current pose
func (t *Turtle) Pose() Pose {
	return t.pose
}

func normalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a > math.Pi {
		a -= 2 * math.Pi
	} else if a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}
