package bridge

import (
	"github.com/open-teleop/turtlebridge/domain/teleop"
)

// TickAdapter is the per-tick glue between the simulation and the loop. It
// is called only from the simulation goroutine and never blocks.
type TickAdapter struct {
	inbound  *CommandQueue
	outbound *CommandQueue
	dropped  uint64
}

// NewTickAdapter creates an adapter over the two queues
func NewTickAdapter(inbound, outbound *CommandQueue) *TickAdapter {
	return &TickAdapter{inbound: inbound, outbound: outbound}
}

// Tick returns the commands to apply this tick: the local commands followed
// by at most one remote command. Local commands are forwarded to the
// outbound queue exactly once; remote ones never are.
func (a *TickAdapter) Tick(local []teleop.MovementCommand) []teleop.MovementCommand {
	events := make([]teleop.MovementCommand, 0, len(local)+1)
	events = append(events, local...)

	if cmd, ok := a.inbound.TryPop(); ok {
		cmd.Origin = teleop.OriginRemote
		events = append(events, cmd)
	}

	for _, cmd := range events {
		if cmd.Origin != teleop.OriginLocal {
			continue
		}
		if !a.outbound.Push(cmd) {
			a.dropped++
		}
	}
	return events
}

// Dropped counts local commands not forwarded because the loop had stopped.
func (a *TickAdapter) Dropped() uint64 {
	return a.dropped
}
