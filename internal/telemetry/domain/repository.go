package telemetry

import (
	"context"
	"time"
)

// ReadingRepository persists power readings.
type ReadingRepository interface {
	Save(ctx context.Context, reading *Reading) error
	SaveBatch(ctx context.Context, readings []*Reading) error
}

// ReadingQuery loads readings joined with their device for an owner.
// Ranges are half-open: [from, to).
type ReadingQuery interface {
	ListByOwnerAndRange(ctx context.Context, ownerID int64, from, to time.Time) ([]Reading, error)
	ListByOwnerDeviceAndRange(ctx context.Context, ownerID, deviceID int64, from, to time.Time) ([]Reading, error)
}
