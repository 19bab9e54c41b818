package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	telemetry "energywatch/internal/telemetry/domain"
)

// ReadingRepository is an in-memory reading store for demo/testing.
type ReadingRepository struct {
	mu     sync.RWMutex
	nextID int64
	data   []telemetry.Reading
}

// NewReadingRepository constructs a repository.
func NewReadingRepository() *ReadingRepository {
	return &ReadingRepository{nextID: 1}
}

// Save stores one reading and assigns its id.
func (r *ReadingRepository) Save(_ context.Context, reading *telemetry.Reading) error {
	if reading == nil {
		return errors.New("reading memory repo: nil reading")
	}
	if err := reading.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	reading.ID = r.nextID
	r.nextID++
	r.data = append(r.data, *reading)
	return nil
}

// SaveBatch stores readings; the batch is validated up front so a bad
// entry leaves nothing behind.
func (r *ReadingRepository) SaveBatch(ctx context.Context, readings []*telemetry.Reading) error {
	if len(readings) == 0 {
		return errors.New("reading memory repo: empty batch")
	}
	for _, reading := range readings {
		if reading == nil {
			return errors.New("reading memory repo: nil reading in batch")
		}
		if err := reading.Validate(); err != nil {
			return err
		}
	}
	for _, reading := range readings {
		if err := r.Save(ctx, reading); err != nil {
			return err
		}
	}
	return nil
}

// ListByOwnerAndRange returns the owner's readings in [from, to), oldest
// first.
func (r *ReadingRepository) ListByOwnerAndRange(_ context.Context, ownerID int64, from, to time.Time) ([]telemetry.Reading, error) {
	return r.list(ownerID, 0, from, to)
}

// ListByOwnerDeviceAndRange narrows the range query to one device.
func (r *ReadingRepository) ListByOwnerDeviceAndRange(_ context.Context, ownerID, deviceID int64, from, to time.Time) ([]telemetry.Reading, error) {
	return r.list(ownerID, deviceID, from, to)
}

func (r *ReadingRepository) list(ownerID, deviceID int64, from, to time.Time) ([]telemetry.Reading, error) {
	if ownerID <= 0 {
		return nil, errors.New("reading memory repo: invalid owner id")
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []telemetry.Reading
	for _, reading := range r.data {
		if reading.OwnerID != ownerID {
			continue
		}
		if deviceID > 0 && reading.DeviceID != deviceID {
			continue
		}
		if reading.RecordedAt.Before(from) || !reading.RecordedAt.Before(to) {
			continue
		}
		result = append(result, reading)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].RecordedAt.Before(result[j].RecordedAt)
	})
	return result, nil
}
