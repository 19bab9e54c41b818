package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	telemetry "energywatch/internal/telemetry/domain"
)

const (
	defaultReadingsTable = "readings"
	defaultDevicesTable  = "devices"
)

// ReadingRepository is a Postgres repository for power readings. Queries
// join the devices table so results carry the device name and owner.
type ReadingRepository struct {
	db            *sql.DB
	readingsTable string
	devicesTable  string
}

// ReadingOption configures the repository.
type ReadingOption func(*ReadingRepository)

// WithReadingsTable overrides the readings table name.
func WithReadingsTable(table string) ReadingOption {
	return func(repo *ReadingRepository) {
		if table != "" {
			repo.readingsTable = table
		}
	}
}

// WithDevicesTable overrides the joined devices table name.
func WithDevicesTable(table string) ReadingOption {
	return func(repo *ReadingRepository) {
		if table != "" {
			repo.devicesTable = table
		}
	}
}

// NewReadingRepository constructs a repository.
func NewReadingRepository(db *sql.DB, opts ...ReadingOption) *ReadingRepository {
	repo := &ReadingRepository{
		db:            db,
		readingsTable: defaultReadingsTable,
		devicesTable:  defaultDevicesTable,
	}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// Save inserts one reading and assigns its id.
func (r *ReadingRepository) Save(ctx context.Context, reading *telemetry.Reading) error {
	if r == nil || r.db == nil {
		return errors.New("reading repo: nil db")
	}
	if reading == nil {
		return errors.New("reading repo: nil reading")
	}
	if err := reading.Validate(); err != nil {
		return err
	}

	query := fmt.Sprintf(`
INSERT INTO %s (device_id, watt, minutes, recorded_at)
VALUES ($1, $2, $3, $4)
RETURNING id`, r.readingsTable)

	return r.db.QueryRowContext(ctx, query,
		reading.DeviceID, reading.Watt, reading.Minutes, reading.RecordedAt,
	).Scan(&reading.ID)
}

// SaveBatch inserts readings inside one transaction: either the whole
// batch lands or none of it does.
func (r *ReadingRepository) SaveBatch(ctx context.Context, readings []*telemetry.Reading) error {
	if r == nil || r.db == nil {
		return errors.New("reading repo: nil db")
	}
	if len(readings) == 0 {
		return errors.New("reading repo: empty batch")
	}
	for _, reading := range readings {
		if reading == nil {
			return errors.New("reading repo: nil reading in batch")
		}
		if err := reading.Validate(); err != nil {
			return err
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	query := fmt.Sprintf(`
INSERT INTO %s (device_id, watt, minutes, recorded_at)
VALUES ($1, $2, $3, $4)
RETURNING id`, r.readingsTable)

	for _, reading := range readings {
		if err := tx.QueryRowContext(ctx, query,
			reading.DeviceID, reading.Watt, reading.Minutes, reading.RecordedAt,
		).Scan(&reading.ID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListByOwnerAndRange loads an owner's readings in [from, to), oldest
// first.
func (r *ReadingRepository) ListByOwnerAndRange(ctx context.Context, ownerID int64, from, to time.Time) ([]telemetry.Reading, error) {
	return r.list(ctx, ownerID, 0, from, to)
}

// ListByOwnerDeviceAndRange narrows the range query to one device.
func (r *ReadingRepository) ListByOwnerDeviceAndRange(ctx context.Context, ownerID, deviceID int64, from, to time.Time) ([]telemetry.Reading, error) {
	if deviceID <= 0 {
		return nil, errors.New("reading repo: invalid device id")
	}
	return r.list(ctx, ownerID, deviceID, from, to)
}

func (r *ReadingRepository) list(ctx context.Context, ownerID, deviceID int64, from, to time.Time) ([]telemetry.Reading, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("reading repo: nil db")
	}
	if ownerID <= 0 {
		return nil, errors.New("reading repo: invalid owner id")
	}

	query := fmt.Sprintf(`
SELECT r.id, r.device_id, d.name, d.owner_id, r.watt, r.minutes, r.recorded_at
FROM %s r
JOIN %s d ON d.id = r.device_id
WHERE d.owner_id = $1 AND r.recorded_at >= $2 AND r.recorded_at < $3`, r.readingsTable, r.devicesTable)

	args := []any{ownerID, from, to}
	if deviceID > 0 {
		query += " AND r.device_id = $4"
		args = append(args, deviceID)
	}
	query += " ORDER BY r.recorded_at ASC, r.id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []telemetry.Reading
	for rows.Next() {
		var reading telemetry.Reading
		if err := rows.Scan(
			&reading.ID,
			&reading.DeviceID,
			&reading.DeviceName,
			&reading.OwnerID,
			&reading.Watt,
			&reading.Minutes,
			&reading.RecordedAt,
		); err != nil {
			return nil, err
		}
		reading.RecordedAt = reading.RecordedAt.UTC()
		result = append(result, reading)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
