package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// envOverrides lists the settings that can be overridden from the environment.
// Unset variables leave the file value in place.
type envOverrides struct {
	LogLevel        string `env:"TURTLEBRIDGE_LOG_LEVEL"`
	LogPath         string `env:"TURTLEBRIDGE_LOG_PATH"`
	HTTPPort        int    `env:"PORT"`
	Endpoint        string `env:"TURTLEBRIDGE_ENDPOINT"`
	PublishEndpoint string `env:"TURTLEBRIDGE_PUBLISH_ENDPOINT"`
	LogTopic        string `env:"TURTLEBRIDGE_LOG_TOPIC"`
	RemoteTopic     string `env:"TURTLEBRIDGE_REMOTE_COMMAND_TOPIC"`
	LocalTopic      string `env:"TURTLEBRIDGE_LOCAL_COMMAND_TOPIC"`
}

// ApplyEnv overlays environment variables onto cfg.
func ApplyEnv(cfg *Config) error {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	setString(&cfg.Logging.Level, o.LogLevel)
	setString(&cfg.Logging.LogPath, o.LogPath)
	setString(&cfg.ZeroMQ.Endpoint, o.Endpoint)
	setString(&cfg.ZeroMQ.PublishEndpoint, o.PublishEndpoint)
	setString(&cfg.Topics.Log, o.LogTopic)
	setString(&cfg.Topics.RemoteCommand, o.RemoteTopic)
	setString(&cfg.Topics.LocalCommand, o.LocalTopic)
	if o.HTTPPort != 0 {
		cfg.Server.HTTPPort = o.HTTPPort
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
