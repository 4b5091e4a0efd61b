package pose

import (
	"errors"
	"syscall"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/open-teleop/turtlebridge/pkg/flatbuffers/turtlesim"
	customlog "github.com/open-teleop/turtlebridge/pkg/log"
	"github.com/open-teleop/turtlebridge/pkg/sim"
)

// Source provides the latest simulation state. *sim.Loop implements it.
type Source interface {
	Snapshot() sim.Snapshot
}

// PoseService streams the turtle pose to websocket clients
type PoseService struct {
	source   Source
	interval time.Duration
	logger   customlog.Logger
	now      func() time.Time
}

// NewPoseService creates a pose service that sends rateHz frames per second
func NewPoseService(source Source, rateHz int, logger customlog.Logger) *PoseService {
	if rateHz <= 0 {
		rateHz = 10
	}
	return &PoseService{
		source:   source,
		interval: time.Second / time.Duration(rateHz),
		logger:   logger,
		now:      time.Now,
	}
}

// EncodePose serializes a snapshot as a turtlesim.Pose flatbuffer
func EncodePose(snap sim.Snapshot, timestampNs int64) []byte {
	builder := flatbuffers.NewBuilder(64)
	turtlesim.PoseStart(builder)
	turtlesim.PoseAddX(builder, snap.Pose.X)
	turtlesim.PoseAddY(builder, snap.Pose.Y)
	turtlesim.PoseAddTheta(builder, snap.Pose.Theta)
	turtlesim.PoseAddTick(builder, snap.Tick)
	turtlesim.PoseAddActive(builder, snap.Pose.Active)
	turtlesim.PoseAddTimestampNs(builder, timestampNs)
	turtlesim.FinishPoseBuffer(builder, turtlesim.PoseEnd(builder))
	return builder.FinishedBytes()
}

// DecodePose reads a frame produced by EncodePose
func DecodePose(buf []byte) (sim.Snapshot, int64) {
	p := turtlesim.GetRootAsPose(buf, 0)
	return sim.Snapshot{
		Tick: p.Tick(),
		Pose: sim.Pose{X: p.X(), Y: p.Y(), Theta: p.Theta(), Active: p.Active()},
	}, p.TimestampNs()
}

// GetPoseHandler returns the current pose as JSON
func (s *PoseService) GetPoseHandler(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":   "success",
		"snapshot": s.source.Snapshot(),
	})
}

// StreamHandler sends binary pose frames until the client disconnects.
// Frames are only sent when the tick advanced since the last one.
func (s *PoseService) StreamHandler(conn *websocket.Conn) {
	s.logger.Infof("Pose WebSocket connected: %s", conn.RemoteAddr())

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	var lastTick uint64
	sent := false
	for {
		select {
		case <-closed:
			s.logger.Infof("Pose WebSocket disconnected: %s", conn.RemoteAddr())
			return
		case <-ticker.C:
			snap := s.source.Snapshot()
			if sent && snap.Tick == lastTick {
				continue
			}
			frame := EncodePose(snap, s.now().UnixNano())
			if err := conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
				if errors.Is(err, syscall.EPIPE) || errors.Is(err, syscall.ECONNRESET) || errors.Is(err, websocket.ErrCloseSent) {
					s.logger.Infof("Pose WS connection closed normally.")
				} else {
					s.logger.Warnf("Pose WS write error: %v", err)
				}
				return
			}
			lastTick, sent = snap.Tick, true
		}
	}
}
