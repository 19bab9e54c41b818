package forecast

import (
	"testing"
	"time"

	telemetry "energywatch/internal/telemetry/domain"
)

func TestHourlyBaselineZeroDays(t *testing.T) {
	readings := []telemetry.Reading{
		{DeviceID: 1, Watt: 1000, Minutes: 60, RecordedAt: time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)},
	}
	for _, days := range []int{0, -1} {
		profile := HourlyBaseline(readings, days, time.UTC)
		if len(profile) != HoursPerDay {
			t.Fatalf("days=%d: expected %d entries, got %d", days, HoursPerDay, len(profile))
		}
		for h, v := range profile {
			if v != 0.0 {
				t.Fatalf("days=%d: hour %d = %v, want 0.0", days, h, v)
			}
		}
	}
}

func TestHourlyBaselineAveragesAcrossDays(t *testing.T) {
	// Two samples at hour 10 on different days, 2.0 kWh each.
	readings := []telemetry.Reading{
		{DeviceID: 1, Watt: 2000, Minutes: 60, RecordedAt: time.Date(2025, 1, 1, 10, 15, 0, 0, time.UTC)},
		{DeviceID: 1, Watt: 2000, Minutes: 60, RecordedAt: time.Date(2025, 1, 2, 10, 45, 0, 0, time.UTC)},
	}
	profile := HourlyBaseline(readings, 2, time.UTC)

	if profile[10] != 2.0 {
		t.Fatalf("baseline[10] = %v, want 2.0", profile[10])
	}
	for h := 0; h < HoursPerDay; h++ {
		if h == 10 {
			continue
		}
		if profile[h] != 0.0 {
			t.Fatalf("baseline[%d] = %v, want 0.0", h, profile[h])
		}
	}
}

func TestHourlyBaselineUsesReferenceZone(t *testing.T) {
	bogota := time.FixedZone("America/Bogota", -5*60*60)
	// 03:00 UTC is hour 22 in Bogota.
	readings := []telemetry.Reading{
		{DeviceID: 1, Watt: 1000, Minutes: 60, RecordedAt: time.Date(2025, 1, 2, 3, 0, 0, 0, time.UTC)},
	}
	profile := HourlyBaseline(readings, 1, bogota)
	if profile[22] != 1.0 {
		t.Fatalf("baseline[22] = %v, want 1.0", profile[22])
	}
	if profile[3] != 0.0 {
		t.Fatalf("baseline[3] = %v, want 0.0 (grouped in UTC by mistake)", profile[3])
	}
}

func TestHourlyBaselineRounds(t *testing.T) {
	readings := []telemetry.Reading{
		{DeviceID: 1, Watt: 100, Minutes: 60, RecordedAt: time.Date(2025, 1, 1, 7, 0, 0, 0, time.UTC)},
	}
	// 0.1 kWh over 3 days = 0.0333... -> 0.033
	profile := HourlyBaseline(readings, 3, time.UTC)
	if profile[7] != 0.033 {
		t.Fatalf("baseline[7] = %v, want 0.033", profile[7])
	}
}
