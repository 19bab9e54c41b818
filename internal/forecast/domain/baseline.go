package forecast

import (
	"time"

	analytics "energywatch/internal/analytics/domain"
	telemetry "energywatch/internal/telemetry/domain"
)

// HoursPerDay is the number of slots in a baseline profile.
const HoursPerDay = 24

// HourlyBaseline computes the expected kWh per hour-of-day from a trailing
// history of readings spanning the given number of days. Readings are
// grouped by their local hour in the reference zone irrespective of
// calendar day, summed, and averaged over the day count. A non-positive
// day count means "no history" and yields an all-zero profile rather than
// an error.
//
// This is a deliberate plain historical average. Grouping key, division
// and rounding are load-bearing: the recommendation agent compares live
// windows against exactly these values.
func HourlyBaseline(readings []telemetry.Reading, days int, zone *time.Location) map[int]float64 {
	if zone == nil {
		zone = time.UTC
	}

	sums := make(map[int]float64, HoursPerDay)
	if days > 0 {
		for _, r := range readings {
			hour := r.RecordedAt.In(zone).Hour()
			sums[hour] += r.KWh()
		}
	}

	profile := make(map[int]float64, HoursPerDay)
	for h := 0; h < HoursPerDay; h++ {
		if days <= 0 {
			profile[h] = 0.0
			continue
		}
		profile[h] = analytics.Round3(sums[h] / float64(days))
	}
	return profile
}
