package application

import (
	"context"
	"log"
	"sync"
	"testing"
	"time"

	telemetry "energywatch/internal/telemetry/domain"
)

type blockingOwners struct {
	mu      sync.Mutex
	calls   int
	release chan struct{}
}

func (b *blockingOwners) ListOwnerIDs(_ context.Context) ([]int64, error) {
	b.mu.Lock()
	b.calls++
	b.mu.Unlock()
	<-b.release
	return nil, nil
}

func (b *blockingOwners) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func TestSchedulerSingleFlightSkipsOverlappingTicks(t *testing.T) {
	owners := &blockingOwners{release: make(chan struct{})}
	readings := &stubReadings{byOwner: map[int64][]telemetry.Reading{}}
	cfg := DefaultConfig()
	cfg.TickIntervalMs = 5
	cfg.InitialDelayMs = 0
	cfg.SingleFlight = true

	agent, err := NewAgent(owners, readings, &stubTariffs{}, &stubBaseline{}, &stubStore{}, systemClock{}, time.UTC, cfg, log.New(discard{}, "", 0))
	if err != nil {
		t.Fatalf("new agent: %v", err)
	}
	scheduler := NewScheduler(agent, cfg, log.New(discard{}, "", 0))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		scheduler.Start(ctx)
		close(done)
	}()

	// Many intervals elapse while the first tick blocks; single-flight
	// must keep it to exactly one in-flight run.
	time.Sleep(60 * time.Millisecond)
	if got := owners.count(); got != 1 {
		t.Fatalf("expected a single in-flight tick, got %d", got)
	}

	close(owners.release)
	cancel()
	<-done
}

func TestSchedulerStopsOnCancelDuringInitialDelay(t *testing.T) {
	owners := &stubOwners{}
	cfg := DefaultConfig()
	cfg.InitialDelayMs = 60000
	agent, err := NewAgent(owners, &stubReadings{}, &stubTariffs{}, &stubBaseline{}, &stubStore{}, systemClock{}, time.UTC, cfg, log.New(discard{}, "", 0))
	if err != nil {
		t.Fatalf("new agent: %v", err)
	}
	scheduler := NewScheduler(agent, cfg, log.New(discard{}, "", 0))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		scheduler.Start(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop on cancel")
	}
	if owners.calls != 0 {
		t.Fatalf("no tick should run before the initial delay, got %d", owners.calls)
	}
}
