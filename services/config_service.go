package services

import (
	"fmt"
	"sync"

	"github.com/open-teleop/turtlebridge/pkg/config"
	customlog "github.com/open-teleop/turtlebridge/pkg/log"
	"gopkg.in/yaml.v3"
)

// ConfigService exposes the effective configuration of the running process.
type ConfigService interface {
	GetCurrentConfig() *config.Config
	GetCurrentConfigYAML() ([]byte, error)
	Source() string
}

// configService implements the ConfigService interface.
type configService struct {
	source        string
	logger        customlog.Logger
	currentConfig *config.Config
	mu            sync.RWMutex
}

// NewConfigService wraps the configuration loaded at startup. source is the
// file it came from, empty when only defaults and environment were used.
func NewConfigService(cfg *config.Config, source string, logger customlog.Logger) (ConfigService, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	if logger == nil {
		logger, _ = customlog.NewLogrusLogger("info", "")
		logger.Warnf("No logger provided to ConfigService, using default.")
	}

	return &configService{
		source:        source,
		logger:        logger,
		currentConfig: cfg,
	}, nil
}

// GetCurrentConfig returns the effective configuration. Callers must treat
// it as read-only.
func (s *configService) GetCurrentConfig() *config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentConfig
}

// GetCurrentConfigYAML renders the effective configuration, including
// defaults and environment overrides, as YAML.
func (s *configService) GetCurrentConfigYAML() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := yaml.Marshal(s.currentConfig)
	if err != nil {
		s.logger.Errorf("Error rendering configuration as YAML: %v", err)
		return nil, fmt.Errorf("error rendering configuration: %w", err)
	}
	return data, nil
}

// Source returns the path the configuration was loaded from
func (s *configService) Source() string {
	return s.source
}
