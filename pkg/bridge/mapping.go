package bridge

import (
	"math"

	"github.com/open-teleop/turtlebridge/domain/teleop"
	"github.com/open-teleop/turtlebridge/pkg/rosmsg"
)

// CommandFromTwist derives a remote command from a received velocity message.
// Values are rounded half away from zero; NaN maps to zero and values beyond
// the int32 range saturate.
func CommandFromTwist(t rosmsg.Twist) teleop.MovementCommand {
	return teleop.MovementCommand{
		Rotation: toAxis(t.Angular.Z),
		Movement: toAxis(t.Linear.X),
		Origin:   teleop.OriginRemote,
	}
}

// TwistFromCommand is the identity mapping used for publishing: only
// linear.x and angular.z are set.
func TwistFromCommand(c teleop.MovementCommand) rosmsg.Twist {
	return rosmsg.Twist{
		Linear:  rosmsg.Vector3{X: float64(c.Movement)},
		Angular: rosmsg.Vector3{Z: float64(c.Rotation)},
	}
}

func toAxis(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	r := math.Round(v)
	switch {
	case r > math.MaxInt32:
		return math.MaxInt32
	case r < math.MinInt32:
		return math.MinInt32
	}
	return int(r)
}
