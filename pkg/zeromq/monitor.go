package zeromq

import (
	"context"
	"fmt"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/pebbe/zmq4"
)

var monitorSeq atomic.Uint64

// connectAndWait connects socket to endpoint and blocks until the transport
// reports EVENT_CONNECTED, the timeout elapses or ctx is done. ZeroMQ connects
// lazily, so without the monitor an unreachable broker would go unnoticed.
func connectAndWait(ctx context.Context, zctx *zmq4.Context, socket *zmq4.Socket, endpoint string, timeout time.Duration) error {
	addr := fmt.Sprintf("inproc://turtlebridge-monitor-%d", monitorSeq.Add(1))
	if err := socket.Monitor(addr, zmq4.EVENT_CONNECTED); err != nil {
		return fmt.Errorf("failed to monitor socket: %w", err)
	}
	defer socket.Monitor("", 0)

	mon, err := zctx.NewSocket(zmq4.PAIR)
	if err != nil {
		return fmt.Errorf("failed to create monitor socket: %w", err)
	}
	defer mon.Close()
	mon.SetLinger(0)

	if err := mon.Connect(addr); err != nil {
		return fmt.Errorf("failed to connect monitor socket: %w", err)
	}

	if err := socket.Connect(endpoint); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrConnect, endpoint, err)
	}

	deadline := time.Now().Add(timeout)
	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrConnect, endpoint, err)
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return fmt.Errorf("%w: %s: no connection within %v", ErrConnect, endpoint, timeout)
		}
		if remaining > pollInterval {
			remaining = pollInterval
		}
		if err := mon.SetRcvtimeo(remaining); err != nil {
			return fmt.Errorf("failed to set monitor timeout: %w", err)
		}

		ev, _, _, err := mon.RecvEvent(0)
		if err != nil {
			if zmq4.AsErrno(err) == zmq4.Errno(syscall.EAGAIN) {
				continue
			}
			return fmt.Errorf("%w: %s: %w", ErrConnect, endpoint, err)
		}
		if ev == zmq4.EVENT_CONNECTED {
			return nil
		}
	}
}
