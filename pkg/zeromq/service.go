package zeromq

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/open-teleop/turtlebridge/pkg/config"
	customlog "github.com/open-teleop/turtlebridge/pkg/log"
	"github.com/pebbe/zmq4"
)

// Common errors
var (
	ErrServiceClosed = errors.New("zeromq session is closed")
	ErrConnect       = errors.New("zeromq connect failed")
	ErrPublish       = errors.New("zeromq publish failed")
)

// Session owns one connection to the pub/sub broker: a PUB socket dialled to
// the broker's XSUB side and one SUB socket per subscription dialled to its
// XPUB side. Publish is safe for concurrent use.
type Session struct {
	cfg       config.ZeroMQConfig
	ctx       *zmq4.Context
	sender    *messageSender
	receivers []*messageReceiver
	logger    customlog.Logger
	mu        sync.Mutex
	closed    bool
	wg        sync.WaitGroup
}

// Open creates the ZeroMQ context and connects the publish socket. It fails
// with ErrConnect when the broker does not accept the connection within the
// configured connect timeout. No retry is attempted.
func Open(ctx context.Context, cfg config.ZeroMQConfig, logger customlog.Logger) (*Session, error) {
	zctx, err := zmq4.NewContext()
	if err != nil {
		return nil, fmt.Errorf("failed to create ZMQ context: %w", err)
	}

	sender, err := newMessageSender(ctx, zctx, cfg)
	if err != nil {
		zctx.Term()
		return nil, err
	}

	logger.Infof("ZeroMQ session connected (publish=%s, subscribe=%s)", cfg.PublishEndpoint, cfg.Endpoint)

	return &Session{
		cfg:    cfg,
		ctx:    zctx,
		sender: sender,
		logger: logger,
	}, nil
}

// Subscribe opens a SUB socket for topic and returns the channel its reader
// goroutine feeds with payloads. Only frames whose topic equals topic exactly
// are delivered. The channel is closed when the session is closed or the
// transport fails.
func (s *Session) Subscribe(ctx context.Context, topic string) (<-chan []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrServiceClosed
	}

	r, err := newMessageReceiver(ctx, s.ctx, s.cfg, topic, s.logger, &s.wg)
	if err != nil {
		return nil, err
	}
	s.receivers = append(s.receivers, r)
	r.Start()

	s.logger.Debugf("Subscribed to %s", topic)
	return r.out, nil
}

// Publish sends data as a [topic, data] multipart message.
func (s *Session) Publish(topic string, data []byte) error {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return fmt.Errorf("%w: %w", ErrPublish, ErrServiceClosed)
	}
	return s.sender.PublishMessage(topic, data)
}

// Close stops every reader, closes the sockets and terminates the context.
// It is safe to call more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	receivers := s.receivers
	s.receivers = nil
	s.mu.Unlock()

	for _, r := range receivers {
		r.Stop()
	}
	s.logger.Debugf("Waiting for %d receiver goroutines to finish...", len(receivers))
	s.wg.Wait()

	s.sender.Close()

	if err := s.ctx.Term(); err != nil {
		return fmt.Errorf("failed to terminate ZMQ context: %w", err)
	}
	s.logger.Infof("ZeroMQ session closed")
	return nil
}

// messageSender handles sending messages to the broker
type messageSender struct {
	socket *zmq4.Socket
	mu     sync.Mutex
}

func newMessageSender(ctx context.Context, zctx *zmq4.Context, cfg config.ZeroMQConfig) (*messageSender, error) {
	socket, err := zctx.NewSocket(zmq4.PUB)
	if err != nil {
		return nil, fmt.Errorf("failed to create PUB socket: %w", err)
	}

	if err := socket.SetLinger(0); err != nil {
		socket.Close()
		return nil, fmt.Errorf("failed to set linger option: %w", err)
	}
	if cfg.SendTimeoutMs > 0 {
		if err := socket.SetSndtimeo(cfg.SendTimeout()); err != nil {
			socket.Close()
			return nil, fmt.Errorf("failed to set send timeout: %w", err)
		}
	}

	if err := connectAndWait(ctx, zctx, socket, cfg.PublishEndpoint, cfg.ConnectTimeout()); err != nil {
		socket.Close()
		return nil, err
	}

	return &messageSender{socket: socket}, nil
}

// PublishMessage sends the topic frame followed by the payload frame
func (s *messageSender) PublishMessage(topic string, message []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.socket == nil {
		return fmt.Errorf("%w: %w", ErrPublish, ErrServiceClosed)
	}

	if _, err := s.socket.Send(topic, zmq4.SNDMORE); err != nil {
		return fmt.Errorf("%w: failed to send topic %s: %w", ErrPublish, topic, err)
	}
	if _, err := s.socket.SendBytes(message, 0); err != nil {
		return fmt.Errorf("%w: failed to send message on %s: %w", ErrPublish, topic, err)
	}
	return nil
}

// Close cleans up resources
func (s *messageSender) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.socket != nil {
		s.socket.Close()
		s.socket = nil
	}
}

// pollInterval bounds how long a reader blocks before checking for shutdown.
const pollInterval = 100 * time.Millisecond
