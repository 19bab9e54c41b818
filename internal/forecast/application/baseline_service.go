package application

import (
	"context"
	"errors"
	"time"

	forecast "energywatch/internal/forecast/domain"
	telemetry "energywatch/internal/telemetry/domain"
)

// ReadingQuery loads an owner's readings for a time range.
type ReadingQuery interface {
	ListByOwnerAndRange(ctx context.Context, ownerID int64, from, to time.Time) ([]telemetry.Reading, error)
}

// Clock provides time.
type Clock interface {
	Now() time.Time
}

// BaselineService computes an owner's expected-consumption profile from
// trailing history. The profile is recomputed from scratch on every call;
// nothing is cached, so there is no staleness to invalidate.
type BaselineService struct {
	readings ReadingQuery
	clock    Clock
	zone     *time.Location
}

// NewBaselineService constructs a BaselineService.
func NewBaselineService(readings ReadingQuery, clock Clock, zone *time.Location) (*BaselineService, error) {
	if readings == nil {
		return nil, errors.New("forecast: nil reading query")
	}
	if clock == nil {
		return nil, errors.New("forecast: nil clock")
	}
	if zone == nil {
		zone = time.UTC
	}
	return &BaselineService{readings: readings, clock: clock, zone: zone}, nil
}

// HourlyBaseline returns expected kWh per hour-of-day averaged over the
// last `days` days.
func (s *BaselineService) HourlyBaseline(ctx context.Context, ownerID int64, days int) (map[int]float64, error) {
	now := s.clock.Now()
	if days <= 0 {
		return forecast.HourlyBaseline(nil, days, s.zone), nil
	}

	from := now.Add(-time.Duration(days) * 24 * time.Hour)
	readings, err := s.readings.ListByOwnerAndRange(ctx, ownerID, from, now)
	if err != nil {
		return nil, err
	}
	return forecast.HourlyBaseline(readings, days, s.zone), nil
}
