package teleop

import "fmt"

// Origin tags where a MovementCommand came from.
type Origin int

const (
	// OriginLocal marks commands produced by this process's input.
	OriginLocal Origin = iota
	// OriginRemote marks commands received from the network. They are applied
	// to the simulation but never published again.
	OriginRemote
)

func (o Origin) String() string {
	switch o {
	case OriginLocal:
		return "local"
	case OriginRemote:
		return "remote"
	default:
		return fmt.Sprintf("Origin(%d)", int(o))
	}
}

// MovementCommand is a discretized stick input for one tick.
type MovementCommand struct {
	Rotation int    `json:"rotation"`
	Movement int    `json:"movement"`
	Origin   Origin `json:"origin"`
}

// IsZero reports whether the command requests no motion.
func (c MovementCommand) IsZero() bool {
	return c.Rotation == 0 && c.Movement == 0
}
