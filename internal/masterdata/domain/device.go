package masterdata

import (
	"context"
	"errors"
	"time"
)

// ErrDeviceNotFound is returned when a device id does not exist.
var ErrDeviceNotFound = errors.New("masterdata: device not found")

// Device is a monitored appliance. The agent never mutates devices; it
// only groups readings by their id and display name.
type Device struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type,omitempty"`
	Watt      int       `json:"watt,omitempty"`
	Location  string    `json:"location,omitempty"`
	OwnerID   int64     `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Validate checks the fields required before persisting.
func (d Device) Validate() error {
	if d.Name == "" {
		return errors.New("masterdata: device name is required")
	}
	if d.OwnerID <= 0 {
		return errors.New("masterdata: device requires an owner")
	}
	return nil
}

// DeviceRepository persists devices.
type DeviceRepository interface {
	Get(ctx context.Context, id int64) (*Device, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]Device, error)
	Save(ctx context.Context, device *Device) error
	Update(ctx context.Context, device *Device) error
	Delete(ctx context.Context, id int64) error
}
