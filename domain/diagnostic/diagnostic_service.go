package diagnostic

import (
	"runtime"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/open-teleop/turtlebridge/pkg/bridge"
	"github.com/open-teleop/turtlebridge/pkg/topics"
)

// BridgeStatus is what the diagnostic service needs from the bridge loop.
// *bridge.Loop implements it.
type BridgeStatus interface {
	Metrics() bridge.Metrics
	Registry() *topics.Registry
}

// SystemMetrics represents process diagnostics information
type SystemMetrics struct {
	Timestamp     time.Time `json:"timestamp"`
	UptimeSeconds float64   `json:"uptime_seconds"`
	Goroutines    int       `json:"goroutines"`
	HeapAllocMB   float64   `json:"heap_alloc_mb"`
}

// Report is the full diagnostics payload
type Report struct {
	System SystemMetrics      `json:"system"`
	Bridge bridge.Metrics     `json:"bridge"`
	Topics []topics.TopicInfo `json:"topics"`
}

// DiagnosticService reports bridge and process health
type DiagnosticService struct {
	bridge    BridgeStatus
	startedAt time.Time
	now       func() time.Time
}

// NewDiagnosticService creates a new diagnostic service instance
func NewDiagnosticService(b BridgeStatus) *DiagnosticService {
	return &DiagnosticService{
		bridge:    b,
		startedAt: time.Now(),
		now:       time.Now,
	}
}

// GetMetrics collects the current report
func (s *DiagnosticService) GetMetrics() Report {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	now := s.now()
	return Report{
		System: SystemMetrics{
			Timestamp:     now,
			UptimeSeconds: now.Sub(s.startedAt).Seconds(),
			Goroutines:    runtime.NumGoroutine(),
			HeapAllocMB:   float64(mem.HeapAlloc) / (1 << 20),
		},
		Bridge: s.bridge.Metrics(),
		Topics: s.bridge.Registry().GetTopicStats(),
	}
}

// GetMetricsHandler handles API requests for diagnostics
func (s *DiagnosticService) GetMetricsHandler(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "success",
		"metrics": s.GetMetrics(),
	})
}

// HealthHandler reports 200 while the bridge is connecting or running and
// 503 once it has stopped.
func (s *DiagnosticService) HealthHandler(c *fiber.Ctx) error {
	state := s.bridge.Metrics().State
	status := fiber.StatusOK
	if state == bridge.StateDraining || state == bridge.StateStopped {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(fiber.Map{
		"status": "ok",
		"bridge": state,
	})
}
