package sim

import (
	"io"
	"testing"
	"time"

	"github.com/open-teleop/turtlebridge/domain/teleop"
	customlog "github.com/open-teleop/turtlebridge/pkg/log"
)

type stubInput struct {
	cmd teleop.MovementCommand
	ok  bool
}

func (s *stubInput) Poll() (teleop.MovementCommand, bool) { return s.cmd, s.ok }

type recordingRouter struct {
	seen   [][]teleop.MovementCommand
	inject []teleop.MovementCommand
}

func (r *recordingRouter) Tick(local []teleop.MovementCommand) []teleop.MovementCommand {
	r.seen = append(r.seen, local)
	return append(append([]teleop.MovementCommand(nil), local...), r.inject...)
}

func testLogger() customlog.Logger {
	return customlog.NewWriterLogger("error", io.Discard)
}

func TestAdvanceRoutesLocalInput(t *testing.T) {
	input := &stubInput{cmd: teleop.MovementCommand{Movement: 1, Origin: teleop.OriginRemote}, ok: true}
	router := &recordingRouter{}
	l := NewLoop(testParams(), input, router, testLogger())

	snap := l.Advance()
	if snap.Tick != 1 {
		t.Errorf("Expected tick 1, got %d", snap.Tick)
	}
	if len(router.seen) != 1 || len(router.seen[0]) != 1 {
		t.Fatalf("Expected one local command routed, got %+v", router.seen)
	}
	if router.seen[0][0].Origin != teleop.OriginLocal {
		t.Errorf("Polled input must be tagged local, got %s", router.seen[0][0].Origin)
	}
	if snap.Pose.X <= 0 {
		t.Errorf("Expected forward motion, got %+v", snap.Pose)
	}
	if l.Snapshot() != snap {
		t.Errorf("Snapshot mismatch: %+v vs %+v", l.Snapshot(), snap)
	}
}

func TestAdvanceAppliesRoutedRemote(t *testing.T) {
	router := &recordingRouter{inject: []teleop.MovementCommand{{Rotation: 1, Origin: teleop.OriginRemote}}}
	l := NewLoop(testParams(), &stubInput{}, router, testLogger())

	snap := l.Advance()
	if snap.Pose.Theta <= 0 {
		t.Errorf("Expected remote rotation applied, got %+v", snap.Pose)
	}
	if len(router.seen[0]) != 0 {
		t.Errorf("Expected no local input, got %+v", router.seen[0])
	}
}

func TestAdvanceWithoutRouter(t *testing.T) {
	l := NewLoop(testParams(), &stubInput{cmd: teleop.MovementCommand{Movement: -1}, ok: true}, nil, testLogger())
	if snap := l.Advance(); snap.Pose.X >= 0 {
		t.Errorf("Expected backward motion, got %+v", snap.Pose)
	}
}

func TestRunStops(t *testing.T) {
	p := testParams()
	p.Step = time.Millisecond
	l := NewLoop(p, &stubInput{}, nil, testLogger())

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		l.Run(stop)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for l.Snapshot().Tick < 3 {
		if time.Now().After(deadline) {
			t.Fatalf("Loop did not tick")
		}
		time.Sleep(time.Millisecond)
	}
	close(stop)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not return after stop")
	}
}
