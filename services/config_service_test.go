package services

import (
	"io"
	"testing"

	"github.com/open-teleop/turtlebridge/pkg/config"
	customlog "github.com/open-teleop/turtlebridge/pkg/log"
	"gopkg.in/yaml.v3"
)

func TestGetCurrentConfigYAML(t *testing.T) {
	cfg := config.Default()
	cfg.ZeroMQ.Endpoint = "tcp://broker:7447"

	svc, err := NewConfigService(cfg, "/etc/turtlebridge.yaml", customlog.NewWriterLogger("error", io.Discard))
	if err != nil {
		t.Fatalf("NewConfigService failed: %v", err)
	}
	if svc.Source() != "/etc/turtlebridge.yaml" {
		t.Errorf("Unexpected source %q", svc.Source())
	}

	data, err := svc.GetCurrentConfigYAML()
	if err != nil {
		t.Fatalf("GetCurrentConfigYAML failed: %v", err)
	}

	var parsed config.Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("Rendered YAML does not parse: %v", err)
	}
	if parsed != *cfg {
		t.Errorf("Round trip mismatch:\n got %+v\nwant %+v", parsed, *cfg)
	}
}

func TestNewConfigServiceRejectsNil(t *testing.T) {
	if _, err := NewConfigService(nil, "", nil); err == nil {
		t.Errorf("Expected error for nil config")
	}
}
