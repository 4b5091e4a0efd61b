package zeromq

import (
	"context"
	"fmt"
	"sync"
	"syscall"

	"github.com/open-teleop/turtlebridge/pkg/config"
	customlog "github.com/open-teleop/turtlebridge/pkg/log"
	"github.com/pebbe/zmq4"
)

// messageReceiver owns one SUB socket. After Start the socket is touched only
// by the reader goroutine.
type messageReceiver struct {
	socket *zmq4.Socket
	poller *zmq4.Poller
	topic  string
	out    chan []byte
	stop   chan struct{}
	once   sync.Once
	logger customlog.Logger
	wg     *sync.WaitGroup
}

func newMessageReceiver(ctx context.Context, zctx *zmq4.Context, cfg config.ZeroMQConfig, topic string, logger customlog.Logger, wg *sync.WaitGroup) (*messageReceiver, error) {
	socket, err := zctx.NewSocket(zmq4.SUB)
	if err != nil {
		return nil, fmt.Errorf("failed to create SUB socket: %w", err)
	}

	if err := socket.SetLinger(0); err != nil {
		socket.Close()
		return nil, fmt.Errorf("failed to set linger option: %w", err)
	}

	// ZeroMQ filters on prefixes; the reader narrows this to exact matches.
	if err := socket.SetSubscribe(topic); err != nil {
		socket.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}

	if err := connectAndWait(ctx, zctx, socket, cfg.Endpoint, cfg.ConnectTimeout()); err != nil {
		socket.Close()
		return nil, err
	}

	poller := zmq4.NewPoller()
	poller.Add(socket, zmq4.POLLIN)

	size := cfg.MessageBufferSize
	if size <= 0 {
		size = 1
	}

	return &messageReceiver{
		socket: socket,
		poller: poller,
		topic:  topic,
		out:    make(chan []byte, size),
		stop:   make(chan struct{}),
		logger: logger.WithField("topic", topic),
		wg:     wg,
	}, nil
}

// Start begins the message receiving loop
func (r *messageReceiver) Start() {
	r.wg.Add(1)
	go r.run()
}

func (r *messageReceiver) run() {
	defer r.wg.Done()
	defer close(r.out)
	defer r.socket.Close()

	for {
		select {
		case <-r.stop:
			return
		default:
		}

		sockets, err := r.poller.Poll(pollInterval)
		if err != nil {
			if zmq4.AsErrno(err) == zmq4.ETERM {
				r.logger.Warnf("Context terminated, stopping receiver")
				return
			}
			if zmq4.AsErrno(err) == zmq4.Errno(syscall.EINTR) {
				continue
			}
			r.logger.Errorf("Error polling socket: %v", err)
			return
		}
		if len(sockets) == 0 {
			continue
		}

		frames, err := r.socket.RecvMessageBytes(0)
		if err != nil {
			if zmq4.AsErrno(err) == zmq4.ETERM {
				return
			}
			r.logger.Warnf("Error receiving message: %v", err)
			continue
		}
		if len(frames) != 2 {
			r.logger.Warnf("Dropping message with %d frames", len(frames))
			continue
		}
		if string(frames[0]) != r.topic {
			continue
		}

		select {
		case r.out <- frames[1]:
		case <-r.stop:
			return
		}
	}
}

// Stop halts the message receiving loop. The reader closes its socket and
// the output channel on exit.
func (r *messageReceiver) Stop() {
	r.once.Do(func() { close(r.stop) })
}
