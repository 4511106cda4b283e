package system

import (
	"context"
	"errors"
	"testing"
)

type recordingService struct {
	name    string
	started bool
	stopped bool
	failOn  bool
}

func (s *recordingService) Name() string { return s.name }

func (s *recordingService) Start(_ context.Context) error {
	if s.failOn {
		return errors.New("boom")
	}
	s.started = true
	return nil
}

func (s *recordingService) Stop(_ context.Context) error {
	s.stopped = true
	return nil
}

func TestManagerStartStop(t *testing.T) {
	m := NewManager()
	a := &recordingService{name: "a"}
	b := &recordingService{name: "b"}

	for _, svc := range []*recordingService{a, b} {
		if err := m.Register(svc); err != nil {
			t.Fatalf("register %s: %v", svc.name, err)
		}
	}

	ctx := context.Background()
	if err := m.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if !a.started || !b.started {
		t.Fatal("all services should have started")
	}

	if err := m.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if !a.stopped || !b.stopped {
		t.Fatal("all services should have stopped")
	}
}

func TestManagerRollsBackOnStartFailure(t *testing.T) {
	m := NewManager()
	ok := &recordingService{name: "ok"}
	bad := &recordingService{name: "bad", failOn: true}

	if err := m.Register(ok); err != nil {
		t.Fatalf("register ok: %v", err)
	}
	if err := m.Register(bad); err != nil {
		t.Fatalf("register bad: %v", err)
	}

	if err := m.Start(context.Background()); err == nil {
		t.Fatal("start should fail")
	}
	if !ok.stopped {
		t.Fatal("already-started services must be stopped on failure")
	}
}

func TestManagerRejectsDuplicatesAndLateRegistration(t *testing.T) {
	m := NewManager()

	if err := m.Register(NoopService{ServiceName: "x"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := m.Register(NoopService{ServiceName: "x"}); err == nil {
		t.Fatal("duplicate name must be rejected")
	}
	if err := m.Register(NoopService{}); err == nil {
		t.Fatal("empty name must be rejected")
	}

	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := m.Register(NoopService{ServiceName: "late"}); err == nil {
		t.Fatal("registration after start must be rejected")
	}
}
