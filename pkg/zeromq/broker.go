package zeromq

import (
	"context"
	"fmt"

	"github.com/open-teleop/turtlebridge/pkg/config"
	customlog "github.com/open-teleop/turtlebridge/pkg/log"
	"github.com/pebbe/zmq4"
)

// Broker forwards messages from publishers (XSUB frontend) to subscribers
// (XPUB backend) and subscriptions in the opposite direction.
type Broker struct {
	cfg    config.BrokerConfig
	logger customlog.Logger
}

// NewBroker creates a broker for the configured bind addresses
func NewBroker(cfg config.BrokerConfig, logger customlog.Logger) *Broker {
	return &Broker{cfg: cfg, logger: logger}
}

// Run binds both sides and proxies until ctx is cancelled.
func (b *Broker) Run(ctx context.Context) error {
	zctx, err := zmq4.NewContext()
	if err != nil {
		return fmt.Errorf("failed to create ZMQ context: %w", err)
	}
	defer zctx.Term()

	frontend, err := b.bind(zctx, zmq4.XSUB, b.cfg.FrontendBindAddress)
	if err != nil {
		return err
	}
	defer frontend.Close()

	backend, err := b.bind(zctx, zmq4.XPUB, b.cfg.BackendBindAddress)
	if err != nil {
		return err
	}
	defer backend.Close()

	controlAddr := fmt.Sprintf("inproc://turtlebridge-broker-%d", monitorSeq.Add(1))
	control, err := b.bind(zctx, zmq4.PAIR, controlAddr)
	if err != nil {
		return err
	}
	defer control.Close()

	terminator, err := zctx.NewSocket(zmq4.PAIR)
	if err != nil {
		return fmt.Errorf("failed to create control socket: %w", err)
	}
	defer terminator.Close()
	terminator.SetLinger(0)
	if err := terminator.Connect(controlAddr); err != nil {
		return fmt.Errorf("failed to connect control socket: %w", err)
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			if _, err := terminator.Send("TERMINATE", 0); err != nil {
				b.logger.Errorf("Failed to stop broker proxy: %v", err)
			}
		case <-done:
		}
	}()

	b.logger.Infof("Broker running (publishers -> %s, subscribers -> %s)", b.cfg.FrontendBindAddress, b.cfg.BackendBindAddress)

	if err := zmq4.ProxySteerable(frontend, backend, nil, control); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("broker proxy failed: %w", err)
	}

	b.logger.Infof("Broker stopped")
	return nil
}

func (b *Broker) bind(zctx *zmq4.Context, t zmq4.Type, addr string) (*zmq4.Socket, error) {
	socket, err := zctx.NewSocket(t)
	if err != nil {
		return nil, fmt.Errorf("failed to create %v socket: %w", t, err)
	}
	if err := socket.SetLinger(0); err != nil {
		socket.Close()
		return nil, fmt.Errorf("failed to set linger option: %w", err)
	}
	if err := socket.Bind(addr); err != nil {
		socket.Close()
		return nil, fmt.Errorf("failed to bind to %s: %w", addr, err)
	}
	return socket, nil
}
