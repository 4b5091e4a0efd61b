package zeromq

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/open-teleop/turtlebridge/pkg/config"
	customlog "github.com/open-teleop/turtlebridge/pkg/log"
)

func testLogger() customlog.Logger {
	return customlog.NewWriterLogger("error", io.Discard)
}

// startBroker runs a broker on the given loopback ports until the test ends.
func startBroker(t *testing.T, pubPort, subPort string) config.ZeroMQConfig {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	b := NewBroker(config.BrokerConfig{
		FrontendBindAddress: "tcp://127.0.0.1:" + pubPort,
		BackendBindAddress:  "tcp://127.0.0.1:" + subPort,
	}, testLogger())
	go func() { done <- b.Run(ctx) }()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("Broker returned error: %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Errorf("Broker did not stop")
		}
	})

	cfg := config.Default().ZeroMQ
	cfg.Endpoint = "tcp://127.0.0.1:" + subPort
	cfg.PublishEndpoint = "tcp://127.0.0.1:" + pubPort
	return cfg
}

func TestOpenFailsWithoutBroker(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping ZeroMQ integration test in short mode")
	}

	cfg := config.Default().ZeroMQ
	cfg.PublishEndpoint = "tcp://127.0.0.1:1"
	cfg.ConnectTimeoutMs = 200

	start := time.Now()
	_, err := Open(context.Background(), cfg, testLogger())
	if !errors.Is(err, ErrConnect) {
		t.Fatalf("Expected ErrConnect, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Open took %v, expected to fail near the connect timeout", elapsed)
	}
}

func TestPublishSubscribeThroughBroker(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping ZeroMQ integration test in short mode")
	}

	cfg := startBroker(t, "57448", "57447")
	ctx := context.Background()

	session, err := Open(ctx, cfg, testLogger())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer session.Close()

	exact, err := session.Subscribe(ctx, "/rt/turtle1/cmd_vel")
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	// Subscriptions propagate through the broker asynchronously, so keep
	// publishing until the first message arrives.
	deadline := time.After(5 * time.Second)
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for received := false; !received; {
		select {
		case <-ticker.C:
			// A longer topic sharing the prefix must be filtered out.
			if err := session.Publish("/rt/turtle1/cmd_vel_extra", []byte("wrong")); err != nil {
				t.Fatalf("Publish failed: %v", err)
			}
			if err := session.Publish("/rt/turtle1/cmd_vel", []byte("right")); err != nil {
				t.Fatalf("Publish failed: %v", err)
			}
		case payload := <-exact:
			if string(payload) != "right" {
				t.Fatalf("Expected payload 'right', got %q", payload)
			}
			received = true
		case <-deadline:
			t.Fatalf("Timed out waiting for message")
		}
	}

	if err := session.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// The reader closes the channel once the session is closed.
	if !drainUntilClosed(exact, 2*time.Second) {
		t.Fatalf("Subscription channel not closed after Close")
	}

	if err := session.Publish("/rt/turtle1/cmd_vel", nil); !errors.Is(err, ErrPublish) {
		t.Errorf("Expected ErrPublish after Close, got %v", err)
	}
	if _, err := session.Subscribe(ctx, "/rt/rosout"); !errors.Is(err, ErrServiceClosed) {
		t.Errorf("Expected ErrServiceClosed after Close, got %v", err)
	}
	if err := session.Close(); err != nil {
		t.Errorf("Second Close returned error: %v", err)
	}
}

func drainUntilClosed(ch <-chan []byte, timeout time.Duration) bool {
	deadline := time.After(timeout)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return true
			}
		case <-deadline:
			return false
		}
	}
}
