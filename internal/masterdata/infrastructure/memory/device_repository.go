package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	masterdata "energywatch/internal/masterdata/domain"
)

// DeviceRepository is an in-memory device store for demo/testing.
type DeviceRepository struct {
	mu     sync.RWMutex
	nextID int64
	data   map[int64]masterdata.Device
}

// NewDeviceRepository constructs a repository.
func NewDeviceRepository() *DeviceRepository {
	return &DeviceRepository{nextID: 1, data: make(map[int64]masterdata.Device)}
}

// Get loads a device by id; ErrDeviceNotFound when absent.
func (r *DeviceRepository) Get(_ context.Context, id int64) (*masterdata.Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	device, ok := r.data[id]
	if !ok {
		return nil, masterdata.ErrDeviceNotFound
	}
	return &device, nil
}

// ListByOwner loads an owner's devices ordered by id.
func (r *DeviceRepository) ListByOwner(_ context.Context, ownerID int64) ([]masterdata.Device, error) {
	if ownerID <= 0 {
		return nil, errors.New("device memory repo: invalid owner id")
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []masterdata.Device
	for _, device := range r.data {
		if device.OwnerID == ownerID {
			result = append(result, device)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// Save stores a device and assigns its id.
func (r *DeviceRepository) Save(_ context.Context, device *masterdata.Device) error {
	if device == nil {
		return errors.New("device memory repo: nil device")
	}
	if err := device.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if device.CreatedAt.IsZero() {
		device.CreatedAt = time.Now().UTC()
	}
	device.ID = r.nextID
	r.nextID++
	r.data[device.ID] = *device
	return nil
}

// Update rewrites a device's mutable fields; ErrDeviceNotFound when the
// id does not exist.
func (r *DeviceRepository) Update(_ context.Context, device *masterdata.Device) error {
	if device == nil {
		return errors.New("device memory repo: nil device")
	}
	if err := device.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.data[device.ID]
	if !ok {
		return masterdata.ErrDeviceNotFound
	}
	existing.Name = device.Name
	existing.Type = device.Type
	existing.Watt = device.Watt
	existing.Location = device.Location
	r.data[device.ID] = existing
	return nil
}

// Delete removes a device.
func (r *DeviceRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data, id)
	return nil
}
