package bridge

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/open-teleop/turtlebridge/domain/teleop"
	"github.com/open-teleop/turtlebridge/pkg/config"
	customlog "github.com/open-teleop/turtlebridge/pkg/log"
	"github.com/open-teleop/turtlebridge/pkg/queue"
	"github.com/open-teleop/turtlebridge/pkg/rosmsg"
	"github.com/open-teleop/turtlebridge/pkg/topics"
)

// Session is the network session the loop owns. *zeromq.Session satisfies it.
type Session interface {
	Subscribe(ctx context.Context, topic string) (<-chan []byte, error)
	Publish(topic string, data []byte) error
	Close() error
}

// Dialer opens a new session.
type Dialer func(ctx context.Context) (Session, error)

// CommandQueue carries movement commands between the tick and the loop.
type CommandQueue = queue.Queue[teleop.MovementCommand]

// Options configures a Loop
type Options struct {
	Topics            config.TopicsConfig
	ConnectRetries    int
	ReconnectInterval time.Duration
	Dial              Dialer
	Outbound          *CommandQueue // tick -> network
	Inbound           *CommandQueue // network -> tick
	Registry          *topics.Registry
	Logger            customlog.Logger
}

// Metrics is a point-in-time snapshot of the loop counters
type Metrics struct {
	SessionID       string    `json:"session_id"`
	State           State     `json:"state"`
	StartedAt       time.Time `json:"started_at"`
	ConnectAttempts uint64    `json:"connect_attempts"`
	Published       uint64    `json:"published"`
	PublishErrors   uint64    `json:"publish_errors"`
	RemoteCommands  uint64    `json:"remote_commands"`
	LogEntries      uint64    `json:"log_entries"`
	DecodeErrors    uint64    `json:"decode_errors"`
}

// Loop owns the network session and multiplexes the log subscription, the
// remote command subscription and the outbound queue.
type Loop struct {
	opts      Options
	id        string
	logger    customlog.Logger
	startedAt time.Time

	state           atomic.Int32
	connectAttempts atomic.Uint64
	published       atomic.Uint64
	publishErrors   atomic.Uint64
	remoteCommands  atomic.Uint64
	logEntries      atomic.Uint64
	decodeErrors    atomic.Uint64
}

// NewLoop creates a loop in the Connecting state
func NewLoop(opts Options) *Loop {
	id := uuid.New().String()
	if opts.Registry == nil {
		opts.Registry = topics.NewRegistry(opts.Logger)
		opts.Registry.LoadFromConfig(opts.Topics)
	}
	l := &Loop{
		opts:      opts,
		id:        id,
		logger:    opts.Logger.WithField("session", id[:8]),
		startedAt: time.Now(),
	}
	l.state.Store(int32(StateConnecting))
	return l
}

// ID returns the bridge session identifier
func (l *Loop) ID() string {
	return l.id
}

// State returns the current state
func (l *Loop) State() State {
	return State(l.state.Load())
}

// Metrics returns a snapshot of the counters
func (l *Loop) Metrics() Metrics {
	return Metrics{
		SessionID:       l.id,
		State:           l.State(),
		StartedAt:       l.startedAt,
		ConnectAttempts: l.connectAttempts.Load(),
		Published:       l.published.Load(),
		PublishErrors:   l.publishErrors.Load(),
		RemoteCommands:  l.remoteCommands.Load(),
		LogEntries:      l.logEntries.Load(),
		DecodeErrors:    l.decodeErrors.Load(),
	}
}

// Registry returns the topic statistics registry
func (l *Loop) Registry() *topics.Registry {
	return l.opts.Registry
}

func (l *Loop) setState(s State) {
	prev := State(l.state.Swap(int32(s)))
	l.logger.Debugf("Bridge state %s -> %s", prev, s)
}

// Run drives the loop until the outbound queue is closed and drained, a
// subscription ends, or ctx is cancelled. Both queues are closed on return.
// A connect failure is returned; every other termination returns nil.
func (l *Loop) Run(ctx context.Context) error {
	session, logs, commands, err := l.connect(ctx)
	if err != nil {
		l.logger.Errorf("Bridge failed to connect: %v", err)
		l.drain(nil)
		return err
	}

	l.setState(StateRunning)
	l.logger.Infof("Bridge running (log=%s, remote=%s, local=%s)",
		l.opts.Topics.Log, l.opts.Topics.RemoteCommand, l.opts.Topics.LocalCommand)

	l.run(ctx, session, logs, commands)
	l.drain(session)
	return nil
}

func (l *Loop) run(ctx context.Context, session Session, logs, commands <-chan []byte) {
	for {
		select {
		case data, ok := <-logs:
			if !ok {
				l.logger.Warnf("Log subscription closed, stopping bridge")
				return
			}
			l.handleLog(data)

		case data, ok := <-commands:
			if !ok {
				l.logger.Warnf("Remote command subscription closed, stopping bridge")
				return
			}
			l.handleRemoteCommand(data)

		case <-l.opts.Outbound.Ready():
			cmd, ok := l.opts.Outbound.TryPop()
			if !ok {
				if l.opts.Outbound.Drained() {
					l.logger.Infof("Outbound queue closed, stopping bridge")
					return
				}
				continue
			}
			l.publish(session, cmd)

		case <-ctx.Done():
			l.logger.Infof("Bridge cancelled: %v", ctx.Err())
			return
		}
	}
}

// connect opens the session and both subscriptions, retrying up to
// ConnectRetries additional times.
func (l *Loop) connect(ctx context.Context) (Session, <-chan []byte, <-chan []byte, error) {
	for attempt := 0; ; attempt++ {
		l.connectAttempts.Add(1)

		session, logs, commands, err := l.open(ctx)
		if err == nil {
			return session, logs, commands, nil
		}

		if attempt >= l.opts.ConnectRetries || ctx.Err() != nil {
			return nil, nil, nil, err
		}

		l.logger.Warnf("Connect attempt %d/%d failed: %v; retrying in %v",
			attempt+1, l.opts.ConnectRetries+1, err, l.opts.ReconnectInterval)

		select {
		case <-time.After(l.opts.ReconnectInterval):
		case <-ctx.Done():
			return nil, nil, nil, fmt.Errorf("%w (cancelled while waiting to retry)", err)
		}
	}
}

func (l *Loop) open(ctx context.Context) (Session, <-chan []byte, <-chan []byte, error) {
	session, err := l.opts.Dial(ctx)
	if err != nil {
		return nil, nil, nil, err
	}

	logs, err := session.Subscribe(ctx, l.opts.Topics.Log)
	if err != nil {
		session.Close()
		return nil, nil, nil, fmt.Errorf("subscribe %s: %w", l.opts.Topics.Log, err)
	}

	commands, err := session.Subscribe(ctx, l.opts.Topics.RemoteCommand)
	if err != nil {
		session.Close()
		return nil, nil, nil, fmt.Errorf("subscribe %s: %w", l.opts.Topics.RemoteCommand, err)
	}

	return session, logs, commands, nil
}

func (l *Loop) drain(session Session) {
	l.setState(StateDraining)
	if session != nil {
		if err := session.Close(); err != nil {
			l.logger.Warnf("Error closing session: %v", err)
		}
	}
	l.opts.Inbound.Close()
	l.opts.Outbound.Close()
	l.setState(StateStopped)
	l.logger.Infof("Bridge stopped")
}

func (l *Loop) handleLog(data []byte) {
	topic := l.opts.Topics.Log
	entry, err := rosmsg.DecodeLog(data)
	if err != nil {
		l.decodeErrors.Add(1)
		l.opts.Registry.RecordError(topic, topics.Inbound)
		l.logger.Warnf("Dropping message on %s (%d bytes): %v", topic, len(data), err)
		return
	}
	l.logEntries.Add(1)
	l.opts.Registry.RecordMessage(topic, topics.Inbound)
	l.renderLog(entry)
}

// renderLog writes a remote log entry at the level its severity maps to.
func (l *Loop) renderLog(entry rosmsg.Log) {
	logger := l.opts.Logger.WithFields(map[string]interface{}{
		"source": entry.Name,
		"file":   entry.File,
		"line":   entry.Line,
	})
	switch {
	case entry.Level >= rosmsg.LogError:
		logger.Errorf("%s", entry)
	case entry.Level >= rosmsg.LogWarn:
		logger.Warnf("%s", entry)
	case entry.Level >= rosmsg.LogInfo:
		logger.Infof("%s", entry)
	default:
		logger.Debugf("%s", entry)
	}
}

func (l *Loop) handleRemoteCommand(data []byte) {
	topic := l.opts.Topics.RemoteCommand
	twist, err := rosmsg.DecodeTwist(data)
	if err != nil {
		l.decodeErrors.Add(1)
		l.opts.Registry.RecordError(topic, topics.Inbound)
		l.logger.Warnf("Dropping message on %s (%d bytes): %v", topic, len(data), err)
		return
	}
	l.opts.Registry.RecordMessage(topic, topics.Inbound)

	cmd := CommandFromTwist(twist)
	if !l.opts.Inbound.Push(cmd) {
		l.logger.Warnf("Inbound queue closed, dropping remote command %+v", cmd)
		return
	}
	l.remoteCommands.Add(1)
}

func (l *Loop) publish(session Session, cmd teleop.MovementCommand) {
	topic := l.opts.Topics.LocalCommand
	if cmd.Origin != teleop.OriginLocal {
		// Never re-publish what came from the network.
		l.logger.Warnf("Refusing to publish %s command %+v", cmd.Origin, cmd)
		return
	}

	data := rosmsg.EncodeTwist(TwistFromCommand(cmd))
	if err := session.Publish(topic, data); err != nil {
		l.publishErrors.Add(1)
		l.opts.Registry.RecordError(topic, topics.Outbound)
		l.logger.Warnf("Failed to publish on %s: %v", topic, err)
		return
	}
	l.published.Add(1)
	l.opts.Registry.RecordMessage(topic, topics.Outbound)
}

