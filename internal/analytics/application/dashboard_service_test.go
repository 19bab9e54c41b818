package application

import (
	"context"
	"errors"
	"testing"
	"time"

	tariff "energywatch/internal/tariff/domain"
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

type stubTariffs struct {
	tariff *tariff.Tariff
	err    error
}

func (s *stubTariffs) FindByOwner(context.Context, int64) (*tariff.Tariff, error) {
	return s.tariff, s.err
}

func TestDashboardService_DefaultPriceWithoutTariff(t *testing.T) {
	readings := &stubReadings{readings: []telemetry.Reading{
		{DeviceID: 1, DeviceName: "heater", Watt: 1000, Minutes: 60, RecordedAt: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)},
	}}
	service, err := NewDashboardService(readings, &stubTariffs{}, time.UTC, 650.0)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	summary, err := service.Summarize(context.Background(), 1, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if summary.TotalKwh != 1.0 {
		t.Fatalf("expected 1.0 kWh, got %v", summary.TotalKwh)
	}
	if summary.TotalCost != 650.0 {
		t.Fatalf("expected default-price cost 650, got %v", summary.TotalCost)
	}
}

func TestDashboardService_TariffPriceWins(t *testing.T) {
	readings := &stubReadings{readings: []telemetry.Reading{
		{DeviceID: 1, DeviceName: "heater", Watt: 1000, Minutes: 60, RecordedAt: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)},
	}}
	tariffs := &stubTariffs{tariff: &tariff.Tariff{OwnerID: 1, PricePerKwh: 800.0}}
	service, err := NewDashboardService(readings, tariffs, time.UTC, 650.0)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	summary, err := service.Summarize(context.Background(), 1, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if summary.TotalCost != 800.0 {
		t.Fatalf("expected tariff-price cost 800, got %v", summary.TotalCost)
	}
}

func TestDashboardService_ReadErrorPropagates(t *testing.T) {
	readings := &stubReadings{err: errors.New("boom")}
	service, err := NewDashboardService(readings, &stubTariffs{}, time.UTC, 650.0)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if _, err := service.Summarize(context.Background(), 1, time.Now().Add(-time.Hour), time.Now()); err == nil {
		t.Fatal("expected error")
	}
}

func TestDashboardService_TariffErrorPropagates(t *testing.T) {
	readings := &stubReadings{readings: []telemetry.Reading{
		{DeviceID: 1, Watt: 100, Minutes: 60, RecordedAt: time.Now()},
	}}
	service, err := NewDashboardService(readings, &stubTariffs{err: errors.New("down")}, time.UTC, 650.0)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if _, err := service.Summarize(context.Background(), 1, time.Now().Add(-time.Hour), time.Now()); err == nil {
		t.Fatal("expected error")
	}
}
