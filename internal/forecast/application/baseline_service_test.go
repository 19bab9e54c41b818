package application

import (
	"context"
	"errors"
	"testing"
	"time"

	telemetry "energywatch/internal/telemetry/domain"
)

type stubReadings struct {
	readings []telemetry.Reading
	err      error
	gotFrom  time.Time
	gotTo    time.Time
}

func (s *stubReadings) ListByOwnerAndRange(_ context.Context, _ int64, from, to time.Time) ([]telemetry.Reading, error) {
	s.gotFrom, s.gotTo = from, to
	return s.readings, s.err
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func TestBaselineService_QueriesTrailingWindow(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	readings := &stubReadings{readings: []telemetry.Reading{
		{DeviceID: 1, Watt: 1000, Minutes: 60, RecordedAt: now.Add(-26 * time.Hour)},
		{DeviceID: 1, Watt: 3000, Minutes: 60, RecordedAt: now.Add(-2 * time.Hour)},
	}}
	service, err := NewBaselineService(readings, fixedClock{now: now}, time.UTC)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	profile, err := service.HourlyBaseline(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("baseline: %v", err)
	}
	if want := now.Add(-48 * time.Hour); !readings.gotFrom.Equal(want) {
		t.Fatalf("expected from %v, got %v", want, readings.gotFrom)
	}
	if !readings.gotTo.Equal(now) {
		t.Fatalf("expected to %v, got %v", now, readings.gotTo)
	}
	// Both readings land on hour 10: (1.0 + 3.0) / 2 days.
	if profile[10] != 2.0 {
		t.Fatalf("expected 2.0 at hour 10, got %v", profile[10])
	}
	if len(profile) != 24 {
		t.Fatalf("expected 24 hour keys, got %d", len(profile))
	}
}

func TestBaselineService_ZeroDaysSkipsQuery(t *testing.T) {
	readings := &stubReadings{err: errors.New("must not be called")}
	service, err := NewBaselineService(readings, fixedClock{now: time.Now()}, time.UTC)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	profile, err := service.HourlyBaseline(context.Background(), 1, 0)
	if err != nil {
		t.Fatalf("baseline: %v", err)
	}
	for hour := 0; hour < 24; hour++ {
		if profile[hour] != 0 {
			t.Fatalf("expected zero profile, got %v at hour %d", profile[hour], hour)
		}
	}
}

func TestBaselineService_ReadErrorPropagates(t *testing.T) {
	readings := &stubReadings{err: errors.New("down")}
	service, err := NewBaselineService(readings, fixedClock{now: time.Now()}, time.UTC)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if _, err := service.HourlyBaseline(context.Background(), 1, 7); err == nil {
		t.Fatal("expected error")
	}
}
