package teleop

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
)

// MaxAxis bounds each axis of an operator command.
const MaxAxis = 10

// DefaultHoldTimeout is how long a one-shot HTTP command stays held.
const DefaultHoldTimeout = 500 * time.Millisecond

// Command represents a teleoperation command
type Command struct {
	LinearX  float64 `json:"linear_x"`
	AngularZ float64 `json:"angular_z"`
}

// TeleopService is the virtual joystick: operators set a held input through
// the API and the simulation polls it once per tick.
type TeleopService struct {
	mu          sync.Mutex
	held        MovementCommand
	expiresAt   time.Time // zero means held until released
	holdTimeout time.Duration
	now         func() time.Time
}

// NewTeleopService creates a new teleop service instance
func NewTeleopService() *TeleopService {
	return &TeleopService{
		holdTimeout: DefaultHoldTimeout,
		now:         time.Now,
	}
}

// CommandHandler processes one-shot teleop commands posted over HTTP. The
// command is held for the hold timeout.
func (s *TeleopService) CommandHandler(c *fiber.Ctx) error {
	var cmd Command
	if err := c.BodyParser(&cmd); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if err := s.ValidateCommand(cmd); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	held := s.SendCommand(cmd, s.holdTimeout)
	return c.JSON(fiber.Map{
		"status":  "command received",
		"command": held,
	})
}

// ValidateCommand checks if a command is within safe limits
func (s *TeleopService) ValidateCommand(cmd Command) error {
	for name, v := range map[string]float64{"linear_x": cmd.LinearX, "angular_z": cmd.AngularZ} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s must be finite", name)
		}
		if math.Abs(v) > MaxAxis {
			return fmt.Errorf("%s out of range [-%d, %d]: %v", name, MaxAxis, MaxAxis, v)
		}
	}
	return nil
}

// SendCommand holds cmd as the current input. A zero ttl holds it until the
// next command or Release.
func (s *TeleopService) SendCommand(cmd Command, ttl time.Duration) MovementCommand {
	held := MovementCommand{
		Rotation: int(math.Round(cmd.AngularZ)),
		Movement: int(math.Round(cmd.LinearX)),
		Origin:   OriginLocal,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.held = held
	s.expiresAt = time.Time{}
	if ttl > 0 {
		s.expiresAt = s.now().Add(ttl)
	}
	return held
}

// Release clears the held input.
func (s *TeleopService) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.held = MovementCommand{}
	s.expiresAt = time.Time{}
}

// Poll returns the held input as a local command while it is non-zero and
// has not expired.
func (s *TeleopService) Poll() (MovementCommand, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.expiresAt.IsZero() && !s.now().Before(s.expiresAt) {
		s.held = MovementCommand{}
		s.expiresAt = time.Time{}
	}
	if s.held.IsZero() {
		return MovementCommand{}, false
	}
	return s.held, true
}
