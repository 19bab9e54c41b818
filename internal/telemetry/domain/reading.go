package telemetry

import (
	"errors"
	"time"
)

// DefaultMinutes is the sampling duration assumed when a reading omits one.
const DefaultMinutes = 60

// ErrInvalidReading is returned when a reading fails validation.
var ErrInvalidReading = errors.New("telemetry: invalid reading")

// Reading is a single power sample for a device. Joined queries also fill
// DeviceName and OwnerID so callers never need to walk an entity graph.
type Reading struct {
	ID         int64
	DeviceID   int64
	DeviceName string
	OwnerID    int64
	Watt       int
	Minutes    int
	RecordedAt time.Time
}

// KWh converts a wattage sampled over a duration in minutes to kilowatt
// hours. Every component that needs energy from a reading goes through
// this one rule.
func KWh(watt, minutes int) float64 {
	return float64(watt) * (float64(minutes) / 60.0) / 1000.0
}

// KWh returns the energy this reading contributed. A missing duration
// counts as DefaultMinutes.
func (r Reading) KWh() float64 {
	minutes := r.Minutes
	if minutes <= 0 {
		minutes = DefaultMinutes
	}
	return KWh(r.Watt, minutes)
}

// Normalize applies defaults to an ingested reading.
func (r *Reading) Normalize(now time.Time) {
	if r.Minutes <= 0 {
		r.Minutes = DefaultMinutes
	}
	if r.RecordedAt.IsZero() {
		r.RecordedAt = now
	}
}

// Validate checks invariants after Normalize.
func (r Reading) Validate() error {
	if r.DeviceID <= 0 {
		return errors.New("telemetry: reading requires a device id")
	}
	if r.Watt < 0 {
		return errors.New("telemetry: watt must be non-negative")
	}
	if r.Minutes <= 0 {
		return errors.New("telemetry: minutes must be positive")
	}
	if r.RecordedAt.IsZero() {
		return errors.New("telemetry: recordedAt is required")
	}
	return nil
}
