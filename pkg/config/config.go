package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the file name looked up in the config directory.
const DefaultConfigFile = "turtlebridge.yaml"

// Config represents the turtlebridge configuration
type Config struct {
	Logging    LoggingConfig    `yaml:"logging" json:"logging"`
	Server     ServerConfig     `yaml:"server" json:"server"`
	ZeroMQ     ZeroMQConfig     `yaml:"zeromq" json:"zeromq"`
	Broker     BrokerConfig     `yaml:"broker" json:"broker"`
	Topics     TopicsConfig     `yaml:"topics" json:"topics"`
	Simulation SimulationConfig `yaml:"simulation" json:"simulation"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level   string `yaml:"level" json:"level"`
	LogPath string `yaml:"log_path,omitempty" json:"log_path,omitempty"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	HTTPPort int `yaml:"http_port" json:"http_port"`
}

// ZeroMQConfig holds the network session settings. Endpoint is the broker's
// XPUB side that subscriptions dial; PublishEndpoint is its XSUB side.
type ZeroMQConfig struct {
	Endpoint            string `yaml:"endpoint" json:"endpoint"`
	PublishEndpoint     string `yaml:"publish_endpoint" json:"publish_endpoint"`
	ConnectTimeoutMs    int    `yaml:"connect_timeout_ms" json:"connect_timeout_ms"`
	ConnectRetries      int    `yaml:"connect_retries" json:"connect_retries"`
	ReconnectIntervalMs int    `yaml:"reconnect_interval_ms" json:"reconnect_interval_ms"`
	MessageBufferSize   int    `yaml:"message_buffer_size" json:"message_buffer_size"`
	SendTimeoutMs       int    `yaml:"send_timeout_ms" json:"send_timeout_ms"`
}

// BrokerConfig holds the bind addresses of the standalone broker
type BrokerConfig struct {
	FrontendBindAddress string `yaml:"frontend_bind_address" json:"frontend_bind_address"` // publishers connect here (XSUB)
	BackendBindAddress  string `yaml:"backend_bind_address" json:"backend_bind_address"`   // subscribers connect here (XPUB)
}

// TopicsConfig names the three topics the bridge uses
type TopicsConfig struct {
	Log           string `yaml:"log" json:"log"`
	RemoteCommand string `yaml:"remote_command" json:"remote_command"`
	LocalCommand  string `yaml:"local_command" json:"local_command"`
}

// SimulationConfig holds the fixed-step simulation parameters
type SimulationConfig struct {
	TickHz           int     `yaml:"tick_hz" json:"tick_hz"`
	MaxActiveTimeMs  int     `yaml:"max_active_time_ms" json:"max_active_time_ms"`
	MovementSpeed    float64 `yaml:"movement_speed" json:"movement_speed"`         // units per second
	RotationSpeedDeg float64 `yaml:"rotation_speed_deg" json:"rotation_speed_deg"` // degrees per second
	PoseStreamHz     int     `yaml:"pose_stream_hz" json:"pose_stream_hz"`
}

// Default returns the configuration used when no file is provided.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "info"},
		Server:  ServerConfig{HTTPPort: 8080},
		ZeroMQ: ZeroMQConfig{
			Endpoint:            "tcp://127.0.0.1:7447",
			PublishEndpoint:     "tcp://127.0.0.1:7448",
			ConnectTimeoutMs:    2000,
			ConnectRetries:      0,
			ReconnectIntervalMs: 1000,
			MessageBufferSize:   1000,
			SendTimeoutMs:       1000,
		},
		Broker: BrokerConfig{
			FrontendBindAddress: "tcp://*:7448",
			BackendBindAddress:  "tcp://*:7447",
		},
		Topics: TopicsConfig{
			Log:           "/rt/rosout",
			RemoteCommand: "/rt/turtle1/cmd_vel",
			LocalCommand:  "/rt/turtle1/cmd_vel",
		},
		Simulation: SimulationConfig{
			TickHz:           60,
			MaxActiveTimeMs:  1000,
			MovementSpeed:    50,
			RotationSpeedDeg: 36,
			PoseStreamHz:     10,
		},
	}
}

// LoadConfig loads configuration from the specified file path on top of the
// defaults and applies environment variable overrides. An empty path skips
// the file.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("error reading config file '%s': %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("error parsing config file '%s': %w", path, err)
		}
	}

	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks required fields and ranges
func (c *Config) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"zeromq.endpoint", c.ZeroMQ.Endpoint},
		{"zeromq.publish_endpoint", c.ZeroMQ.PublishEndpoint},
		{"topics.log", c.Topics.Log},
		{"topics.remote_command", c.Topics.RemoteCommand},
		{"topics.local_command", c.Topics.LocalCommand},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("missing required field in config: %s", r.name)
		}
	}

	if c.ZeroMQ.ConnectTimeoutMs <= 0 {
		return fmt.Errorf("invalid config: zeromq.connect_timeout_ms must be positive")
	}
	if c.ZeroMQ.ConnectRetries < 0 {
		return fmt.Errorf("invalid config: zeromq.connect_retries must not be negative")
	}
	if c.ZeroMQ.MessageBufferSize <= 0 {
		return fmt.Errorf("invalid config: zeromq.message_buffer_size must be positive")
	}
	if c.Simulation.TickHz <= 0 {
		return fmt.Errorf("invalid config: simulation.tick_hz must be positive")
	}
	if c.Server.HTTPPort < 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid config: server.http_port out of range: %d", c.Server.HTTPPort)
	}
	return nil
}

// ConnectTimeout returns the broker connect timeout
func (z ZeroMQConfig) ConnectTimeout() time.Duration {
	return time.Duration(z.ConnectTimeoutMs) * time.Millisecond
}

// ReconnectInterval returns the wait between connect attempts
func (z ZeroMQConfig) ReconnectInterval() time.Duration {
	return time.Duration(z.ReconnectIntervalMs) * time.Millisecond
}

// SendTimeout returns the publish socket send timeout
func (z ZeroMQConfig) SendTimeout() time.Duration {
	return time.Duration(z.SendTimeoutMs) * time.Millisecond
}

// TickInterval returns the fixed simulation step
func (s SimulationConfig) TickInterval() time.Duration {
	return time.Second / time.Duration(s.TickHz)
}

// MaxActiveTime returns how long a command keeps affecting the turtle
func (s SimulationConfig) MaxActiveTime() time.Duration {
	return time.Duration(s.MaxActiveTimeMs) * time.Millisecond
}
