package api

import (
	"encoding/json"
	"errors"
	"syscall"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/open-teleop/turtlebridge/domain/teleop"
	customlog "github.com/open-teleop/turtlebridge/pkg/log"
)

// ControlHoldTimeout is how long a joystick sample stays held when the
// client stops sending.
const ControlHoldTimeout = time.Second

// Joystick is the virtual input the control socket drives.
// *teleop.TeleopService implements it.
type Joystick interface {
	ValidateCommand(cmd teleop.Command) error
	SendCommand(cmd teleop.Command, ttl time.Duration) teleop.MovementCommand
	Release()
}

// ControlWebSocketHandler reads JSON Twist messages and holds them as the
// local joystick input. The input is released when the client disconnects.
func ControlWebSocketHandler(conn *websocket.Conn, logger customlog.Logger, joystick Joystick) {
	logger.Infof("Control WebSocket connected: %s", conn.RemoteAddr())
	defer func() {
		joystick.Release()
		logger.Infof("Control WebSocket disconnected: %s", conn.RemoteAddr())
	}()

	for {
		mt, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				logger.Errorf("Control WS read error: %v", err)
			} else if err != websocket.ErrCloseSent && !errors.Is(err, syscall.EPIPE) && !errors.Is(err, syscall.ECONNRESET) {
				logger.Infof("Control WS connection closed: %v", err)
			} else {
				logger.Infof("Control WS connection closed normally.")
			}
			return
		}

		if mt != websocket.TextMessage {
			logger.Infof("Ignoring non-text Control WS message type: %d", mt)
			continue
		}

		held, err := HandleControlMessage(msg, joystick)
		if err != nil {
			logger.Warnf("Rejected Twist command from WS: %v. Message: %s", err, string(msg))
			continue
		}
		logger.Debugf("Holding joystick input: rotate %d move %d", held.Rotation, held.Movement)
	}
}

// HandleControlMessage parses one control message and applies it
func HandleControlMessage(msg []byte, joystick Joystick) (teleop.MovementCommand, error) {
	var twist TwistMsg
	if err := json.Unmarshal(msg, &twist); err != nil {
		return teleop.MovementCommand{}, err
	}
	cmd := twist.Command()
	if err := joystick.ValidateCommand(cmd); err != nil {
		return teleop.MovementCommand{}, err
	}
	return joystick.SendCommand(cmd, ControlHoldTimeout), nil
}
