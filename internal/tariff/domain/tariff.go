package tariff

import (
	"context"
	"errors"
)

// Tariff is an owner's pricing contract. PeakStart/PeakEnd are hours of
// day (0-23); either being nil means no peak window. At most one tariff
// exists per owner.
type Tariff struct {
	ID          int64   `json:"id"`
	OwnerID     int64   `json:"ownerId"`
	PricePerKwh float64 `json:"pricePerKwh"`
	PeakStart   *int    `json:"peakStart,omitempty"`
	PeakEnd     *int    `json:"peakEnd,omitempty"`
}

// Validate checks invariants before persisting.
func (t Tariff) Validate() error {
	if t.OwnerID <= 0 {
		return errors.New("tariff: owner id is required")
	}
	if t.PricePerKwh < 0 {
		return errors.New("tariff: price per kWh must be non-negative")
	}
	for _, bound := range []*int{t.PeakStart, t.PeakEnd} {
		if bound != nil && (*bound < 0 || *bound > 23) {
			return errors.New("tariff: peak hours must be within 0-23")
		}
	}
	return nil
}

// Repository persists tariffs. FindByOwner returns (nil, nil) when the
// owner has no tariff.
type Repository interface {
	FindByOwner(ctx context.Context, ownerID int64) (*Tariff, error)
	Upsert(ctx context.Context, t *Tariff) error
}
