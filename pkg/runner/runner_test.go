package runner_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/plaenen/commandkit/pkg/runner"
)

// eventLog records lifecycle events so tests can assert ordering.
type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) add(event string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
}

func (l *eventLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

type fakeService struct {
	name      string
	log       *eventLog
	startErr  error
	stopErr   error
	healthErr error
	onStart   chan struct{}
}

func (s *fakeService) Name() string { return s.name }

func (s *fakeService) Start(ctx context.Context) error {
	s.log.add("start " + s.name)
	if s.onStart != nil {
		close(s.onStart)
	}
	return s.startErr
}

func (s *fakeService) Stop(ctx context.Context) error {
	s.log.add("stop " + s.name)
	return s.stopErr
}

func (s *fakeService) HealthCheck(ctx context.Context) error {
	return s.healthErr
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func waitForRun(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("runner did not exit")
		return nil
	}
}

func TestRunStartsInOrderStopsInReverse(t *testing.T) {
	log := &eventLog{}
	ready := make(chan struct{})
	services := []runner.Service{
		&fakeService{name: "store", log: log},
		&fakeService{name: "server", log: log},
		&fakeService{name: "gateway", log: log, onStart: ready},
	}
	r := runner.New(services,
		runner.WithLogger(quietLogger()),
		runner.WithShutdownTimeout(2*time.Second),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	<-ready
	cancel()

	if err := waitForRun(t, done); err != nil {
		t.Fatalf("run returned error: %v", err)
	}

	want := []string{
		"start store", "start server", "start gateway",
		"stop gateway", "stop server", "stop store",
	}
	if got := log.snapshot(); !reflect.DeepEqual(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestRunStopsStartedOnStartFailure(t *testing.T) {
	log := &eventLog{}
	services := []runner.Service{
		&fakeService{name: "store", log: log},
		&fakeService{name: "server", log: log, startErr: errors.New("port taken")},
		&fakeService{name: "gateway", log: log},
	}
	r := runner.New(services, runner.WithLogger(quietLogger()))

	err := r.Run(context.Background())
	if err == nil {
		t.Fatal("expected start error")
	}
	if !strings.Contains(err.Error(), "start server") {
		t.Errorf("err = %v, want start server failure", err)
	}

	want := []string{"start store", "start server", "stop store"}
	if got := log.snapshot(); !reflect.DeepEqual(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestRunAggregatesStopErrors(t *testing.T) {
	log := &eventLog{}
	ready := make(chan struct{})
	services := []runner.Service{
		&fakeService{name: "store", log: log, stopErr: errors.New("flush failed")},
		&fakeService{name: "server", log: log, stopErr: errors.New("drain failed"), onStart: ready},
	}
	r := runner.New(services,
		runner.WithLogger(quietLogger()),
		runner.WithShutdownTimeout(2*time.Second),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	<-ready
	cancel()

	err := waitForRun(t, done)
	if err == nil {
		t.Fatal("expected stop errors")
	}
	if !strings.Contains(err.Error(), "stop server") || !strings.Contains(err.Error(), "stop store") {
		t.Errorf("err = %v, want both stop failures", err)
	}

	// A failing stop must not keep earlier services from stopping.
	want := []string{"start store", "start server", "stop server", "stop store"}
	if got := log.snapshot(); !reflect.DeepEqual(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestHealthCheck(t *testing.T) {
	log := &eventLog{}

	t.Run("AllHealthy", func(t *testing.T) {
		r := runner.New([]runner.Service{
			&fakeService{name: "store", log: log},
			&fakeService{name: "server", log: log},
		})
		if err := r.HealthCheck(context.Background()); err != nil {
			t.Errorf("health check failed: %v", err)
		}
	})

	t.Run("OneUnhealthy", func(t *testing.T) {
		r := runner.New([]runner.Service{
			&fakeService{name: "store", log: log},
			&fakeService{name: "server", log: log, healthErr: errors.New("disconnected")},
		})
		err := r.HealthCheck(context.Background())
		if err == nil {
			t.Fatal("expected unhealthy error")
		}
		if !strings.Contains(err.Error(), "server") {
			t.Errorf("err = %v, want server named", err)
		}
	})
}
