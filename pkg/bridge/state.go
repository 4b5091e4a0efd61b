package bridge

import "fmt"

// State of the bridge loop. Transitions only move forward:
// Connecting -> Running -> Draining -> Stopped, or Connecting -> Draining
// when the session cannot be opened.
type State int32

const (
	StateConnecting State = iota
	StateRunning
	StateDraining
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// MarshalText renders the state name in JSON diagnostics
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
