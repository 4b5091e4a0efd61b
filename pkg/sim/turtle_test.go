package sim

import (
	"math"
	"testing"
	"time"

	"github.com/open-teleop/turtlebridge/domain/teleop"
	"github.com/open-teleop/turtlebridge/pkg/config"
)

func testParams() Params {
	return ParamsFromConfig(config.Default().Simulation)
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestParamsFromConfig(t *testing.T) {
	p := testParams()
	if !near(p.RotationSpeed, math.Pi/5) {
		t.Errorf("Expected 36 deg/s = pi/5 rad/s, got %v", p.RotationSpeed)
	}
	if p.MaxActiveTime != time.Second {
		t.Errorf("Expected 1s active time, got %v", p.MaxActiveTime)
	}
	if p.Step != time.Second/60 {
		t.Errorf("Expected 1/60s step, got %v", p.Step)
	}
}

func TestTurtleIdleWithoutCommands(t *testing.T) {
	turtle := NewTurtle(testParams())
	turtle.Step()
	if turtle.Pose() != (Pose{}) {
		t.Errorf("Expected turtle at rest, got %+v", turtle.Pose())
	}
}

func TestTurtleMovesForward(t *testing.T) {
	p := testParams()
	turtle := NewTurtle(p)
	turtle.Apply([]teleop.MovementCommand{{Movement: 1}})
	for i := 0; i < 30; i++ {
		turtle.Step()
	}

	pose := turtle.Pose()
	if !near(pose.X, 25) || !near(pose.Y, 0) {
		t.Errorf("Expected (25, 0) after half a second, got %+v", pose)
	}
	if !pose.Active {
		t.Errorf("Expected turtle active")
	}
}

func TestTurtleRotates(t *testing.T) {
	turtle := NewTurtle(testParams())
	turtle.Apply([]teleop.MovementCommand{{Rotation: 1}})
	for i := 0; i < 30; i++ {
		turtle.Step()
	}
	if got := turtle.Pose().Theta; !near(got, math.Pi/10) {
		t.Errorf("Expected theta pi/10 after half a second, got %v", got)
	}
}

func TestCommandDecays(t *testing.T) {
	turtle := NewTurtle(testParams())
	turtle.Apply([]teleop.MovementCommand{{Movement: 1}})

	// 60 steps of 1/60s use up the one second of active time.
	for i := 0; i < 60; i++ {
		turtle.Step()
	}
	x := turtle.Pose().X
	if !near(x, 50) {
		t.Errorf("Expected 50 units after one second, got %v", x)
	}

	turtle.Step()
	turtle.Step()
	if pose := turtle.Pose(); pose.X != x || pose.Active {
		t.Errorf("Expected turtle to stop after decay, got %+v", pose)
	}
}

func TestLastCommandWins(t *testing.T) {
	turtle := NewTurtle(testParams())
	turtle.Apply([]teleop.MovementCommand{
		{Movement: 1, Origin: teleop.OriginLocal},
		{Movement: -1, Origin: teleop.OriginRemote},
	})
	turtle.Step()
	if x := turtle.Pose().X; x >= 0 {
		t.Errorf("Expected the later command to drive backwards, got x=%v", x)
	}
}

func TestNormalizeAngle(t *testing.T) {
	for _, tt := range []struct{ in, want float64 }{
		{0, 0},
		{math.Pi, math.Pi},
		{-math.Pi, math.Pi},
		{3 * math.Pi / 2, -math.Pi / 2},
		{5 * math.Pi, math.Pi},
	} {
		if got := normalizeAngle(tt.in); !near(got, tt.want) {
			t.Errorf("normalizeAngle(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
