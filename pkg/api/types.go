package api

import "github.com/open-teleop/turtlebridge/domain/teleop"

// --- Data Structures for WebSocket Messages ---

// Vector3 defines a standard 3D vector.
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// TwistMsg represents a command velocity message, matching geometry_msgs/Twist.
type TwistMsg struct {
	Linear  Vector3 `json:"linear"`
	Angular Vector3 `json:"angular"`
}

// Command extracts the planar part of the twist
func (m TwistMsg) Command() teleop.Command {
	return teleop.Command{LinearX: m.Linear.X, AngularZ: m.Angular.Z}
}
