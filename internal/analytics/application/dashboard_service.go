package application

import (
	"context"
	"errors"
	"time"

	analytics "energywatch/internal/analytics/domain"
	tariff "energywatch/internal/tariff/domain"
	telemetry "energywatch/internal/telemetry/domain"
)

// ReadingQuery loads an owner's readings joined with their device.
type ReadingQuery interface {
	ListByOwnerAndRange(ctx context.Context, ownerID int64, from, to time.Time) ([]telemetry.Reading, error)
}

// TariffFinder resolves an owner's tariff; nil means none configured.
type TariffFinder interface {
	FindByOwner(ctx context.Context, ownerID int64) (*tariff.Tariff, error)
}

// DashboardService produces consumption/cost summaries on demand.
type DashboardService struct {
	readings     ReadingQuery
	tariffs      TariffFinder
	zone         *time.Location
	defaultPrice float64
}

// NewDashboardService constructs a DashboardService. The zone fixes the
// bucket keys of every summary; defaultPrice applies to owners without a
// tariff.
func NewDashboardService(readings ReadingQuery, tariffs TariffFinder, zone *time.Location, defaultPrice float64) (*DashboardService, error) {
	if readings == nil {
		return nil, errors.New("dashboard: nil reading query")
	}
	if tariffs == nil {
		return nil, errors.New("dashboard: nil tariff finder")
	}
	if zone == nil {
		zone = time.UTC
	}
	return &DashboardService{
		readings:     readings,
		tariffs:      tariffs,
		zone:         zone,
		defaultPrice: defaultPrice,
	}, nil
}

// Summarize aggregates the owner's readings in [from, to) at the owner's
// tariff price, or the default price when no tariff exists.
func (s *DashboardService) Summarize(ctx context.Context, ownerID int64, from, to time.Time) (analytics.DashboardSummary, error) {
	readings, err := s.readings.ListByOwnerAndRange(ctx, ownerID, from, to)
	if err != nil {
		return analytics.DashboardSummary{}, err
	}

	price := s.defaultPrice
	if t, err := s.tariffs.FindByOwner(ctx, ownerID); err != nil {
		return analytics.DashboardSummary{}, err
	} else if t != nil {
		price = t.PricePerKwh
	}

	return analytics.Summarize(readings, price, s.zone), nil
}
