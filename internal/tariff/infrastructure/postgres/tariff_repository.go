package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	tariff "energywatch/internal/tariff/domain"
)

const defaultTariffsTable = "tariffs"

// TariffRepository is a Postgres repository for owner tariffs.
type TariffRepository struct {
	db    *sql.DB
	table string
}

// TariffOption configures the repository.
type TariffOption func(*TariffRepository)

// WithTariffsTable overrides the default table name.
func WithTariffsTable(table string) TariffOption {
	return func(repo *TariffRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// NewTariffRepository constructs a repository.
func NewTariffRepository(db *sql.DB, opts ...TariffOption) *TariffRepository {
	repo := &TariffRepository{db: db, table: defaultTariffsTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// FindByOwner loads an owner's tariff, or (nil, nil) when none exists.
func (r *TariffRepository) FindByOwner(ctx context.Context, ownerID int64) (*tariff.Tariff, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("tariff repo: nil db")
	}
	if ownerID <= 0 {
		return nil, errors.New("tariff repo: invalid owner id")
	}

	query := fmt.Sprintf(`
SELECT id, owner_id, price_per_kwh, peak_start, peak_end
FROM %s
WHERE owner_id = $1
LIMIT 1`, r.table)

	var t tariff.Tariff
	var peakStart, peakEnd sql.NullInt64
	if err := r.db.QueryRowContext(ctx, query, ownerID).Scan(
		&t.ID,
		&t.OwnerID,
		&t.PricePerKwh,
		&peakStart,
		&peakEnd,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if peakStart.Valid {
		hour := int(peakStart.Int64)
		t.PeakStart = &hour
	}
	if peakEnd.Valid {
		hour := int(peakEnd.Int64)
		t.PeakEnd = &hour
	}
	return &t, nil
}

// Upsert creates or replaces the owner's single tariff.
func (r *TariffRepository) Upsert(ctx context.Context, t *tariff.Tariff) error {
	if r == nil || r.db == nil {
		return errors.New("tariff repo: nil db")
	}
	if t == nil {
		return errors.New("tariff repo: nil tariff")
	}
	if err := t.Validate(); err != nil {
		return err
	}

	var peakStart, peakEnd sql.NullInt64
	if t.PeakStart != nil {
		peakStart = sql.NullInt64{Int64: int64(*t.PeakStart), Valid: true}
	}
	if t.PeakEnd != nil {
		peakEnd = sql.NullInt64{Int64: int64(*t.PeakEnd), Valid: true}
	}

	query := fmt.Sprintf(`
INSERT INTO %s (owner_id, price_per_kwh, peak_start, peak_end)
VALUES ($1, $2, $3, $4)
ON CONFLICT (owner_id) DO UPDATE
SET price_per_kwh = EXCLUDED.price_per_kwh,
    peak_start = EXCLUDED.peak_start,
    peak_end = EXCLUDED.peak_end
RETURNING id`, r.table)

	return r.db.QueryRowContext(ctx, query,
		t.OwnerID, t.PricePerKwh, peakStart, peakEnd,
	).Scan(&t.ID)
}
