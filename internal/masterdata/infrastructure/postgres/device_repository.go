package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	masterdata "energywatch/internal/masterdata/domain"
)

const defaultDevicesTable = "devices"

// DeviceRepository is a Postgres repository for devices.
type DeviceRepository struct {
	db    *sql.DB
	table string
}

// DeviceOption configures the repository.
type DeviceOption func(*DeviceRepository)

// WithDevicesTable overrides the default table name.
func WithDevicesTable(table string) DeviceOption {
	return func(repo *DeviceRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// NewDeviceRepository constructs a repository.
func NewDeviceRepository(db *sql.DB, opts ...DeviceOption) *DeviceRepository {
	repo := &DeviceRepository{db: db, table: defaultDevicesTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// Get loads a device by id; ErrDeviceNotFound when absent.
func (r *DeviceRepository) Get(ctx context.Context, id int64) (*masterdata.Device, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("device repo: nil db")
	}

	query := fmt.Sprintf(`
SELECT id, name, type, watt, location, owner_id, created_at
FROM %s
WHERE id = $1
LIMIT 1`, r.table)

	var device masterdata.Device
	if err := r.db.QueryRowContext(ctx, query, id).Scan(
		&device.ID,
		&device.Name,
		&device.Type,
		&device.Watt,
		&device.Location,
		&device.OwnerID,
		&device.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, masterdata.ErrDeviceNotFound
		}
		return nil, err
	}
	device.CreatedAt = device.CreatedAt.UTC()
	return &device, nil
}

// ListByOwner loads an owner's devices.
func (r *DeviceRepository) ListByOwner(ctx context.Context, ownerID int64) ([]masterdata.Device, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("device repo: nil db")
	}
	if ownerID <= 0 {
		return nil, errors.New("device repo: invalid owner id")
	}

	query := fmt.Sprintf(`
SELECT id, name, type, watt, location, owner_id, created_at
FROM %s
WHERE owner_id = $1
ORDER BY id ASC`, r.table)

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []masterdata.Device
	for rows.Next() {
		var device masterdata.Device
		if err := rows.Scan(
			&device.ID,
			&device.Name,
			&device.Type,
			&device.Watt,
			&device.Location,
			&device.OwnerID,
			&device.CreatedAt,
		); err != nil {
			return nil, err
		}
		device.CreatedAt = device.CreatedAt.UTC()
		result = append(result, device)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Save inserts a device and assigns its id.
func (r *DeviceRepository) Save(ctx context.Context, device *masterdata.Device) error {
	if r == nil || r.db == nil {
		return errors.New("device repo: nil db")
	}
	if device == nil {
		return errors.New("device repo: nil device")
	}
	if err := device.Validate(); err != nil {
		return err
	}
	if device.CreatedAt.IsZero() {
		device.CreatedAt = time.Now().UTC()
	}

	query := fmt.Sprintf(`
INSERT INTO %s (name, type, watt, location, owner_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id`, r.table)

	return r.db.QueryRowContext(ctx, query,
		device.Name, device.Type, device.Watt, device.Location, device.OwnerID, device.CreatedAt,
	).Scan(&device.ID)
}

// Update rewrites a device's mutable fields; ErrDeviceNotFound when the
// id does not exist.
func (r *DeviceRepository) Update(ctx context.Context, device *masterdata.Device) error {
	if r == nil || r.db == nil {
		return errors.New("device repo: nil db")
	}
	if device == nil {
		return errors.New("device repo: nil device")
	}
	if err := device.Validate(); err != nil {
		return err
	}

	query := fmt.Sprintf(`
UPDATE %s
SET name = $1, type = $2, watt = $3, location = $4
WHERE id = $5`, r.table)

	result, err := r.db.ExecContext(ctx, query,
		device.Name, device.Type, device.Watt, device.Location, device.ID,
	)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return masterdata.ErrDeviceNotFound
	}
	return nil
}

// Delete removes a device by id.
func (r *DeviceRepository) Delete(ctx context.Context, id int64) error {
	if r == nil || r.db == nil {
		return errors.New("device repo: nil db")
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.table)
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}
