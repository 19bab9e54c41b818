package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	recommend "energywatch/internal/recommend/domain"
)

const defaultRecommendationsTable = "recommendations"

// RecommendationRepository is a Postgres repository for recommendations.
type RecommendationRepository struct {
	db    *sql.DB
	table string
}

// Option configures the repository.
type Option func(*RecommendationRepository)

// WithTable overrides the default table name.
func WithTable(table string) Option {
	return func(repo *RecommendationRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// NewRecommendationRepository constructs a repository.
func NewRecommendationRepository(db *sql.DB, opts ...Option) *RecommendationRepository {
	repo := &RecommendationRepository{db: db, table: defaultRecommendationsTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// Save inserts a recommendation and assigns its id. The insert is the
// whole per-owner unit of work, so a failure leaves nothing behind.
func (r *RecommendationRepository) Save(ctx context.Context, rec *recommend.Recommendation) error {
	if r == nil || r.db == nil {
		return errors.New("recommendation repo: nil db")
	}
	if rec == nil {
		return errors.New("recommendation repo: nil recommendation")
	}
	if rec.OwnerID <= 0 {
		return errors.New("recommendation repo: invalid owner id")
	}
	if _, ok := recommend.ParseLevel(string(rec.Level)); !ok {
		return errors.New("recommendation repo: unknown level")
	}
	if rec.Status == "" {
		rec.Status = recommend.StatusNew
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	query := fmt.Sprintf(`
INSERT INTO %s (owner_id, message, level, status, created_at)
VALUES ($1, $2, $3, $4, $5)
RETURNING id`, r.table)

	return r.db.QueryRowContext(ctx, query,
		rec.OwnerID, rec.Message, string(rec.Level), string(rec.Status), rec.CreatedAt,
	).Scan(&rec.ID)
}

// ListByOwner returns the owner's recommendations newest first. status
// "ALL" (or empty) matches everything; limit is clamped to 1..200.
func (r *RecommendationRepository) ListByOwner(ctx context.Context, ownerID int64, status string, limit int) ([]recommend.Recommendation, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("recommendation repo: nil db")
	}
	if ownerID <= 0 {
		return nil, errors.New("recommendation repo: invalid owner id")
	}
	limit = recommend.ListLimit(limit)

	query := fmt.Sprintf(`
SELECT id, owner_id, message, level, status, created_at
FROM %s
WHERE owner_id = $1`, r.table)

	args := []any{ownerID}
	if status != "" && status != recommend.StatusFilterAll {
		query += " AND status = $2"
		args = append(args, status)
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT %d", limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []recommend.Recommendation
	for rows.Next() {
		var rec recommend.Recommendation
		var level, st string
		if err := rows.Scan(&rec.ID, &rec.OwnerID, &rec.Message, &level, &st, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.Level = recommend.Level(level)
		rec.Status = recommend.Status(st)
		rec.CreatedAt = rec.CreatedAt.UTC()
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateStatus transitions a recommendation; ErrNotFound when the id
// does not exist.
func (r *RecommendationRepository) UpdateStatus(ctx context.Context, id int64, status recommend.Status) (*recommend.Recommendation, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("recommendation repo: nil db")
	}
	if _, ok := recommend.ParseStatus(string(status)); !ok {
		return nil, errors.New("recommendation repo: unknown status")
	}

	query := fmt.Sprintf(`
UPDATE %s
SET status = $1
WHERE id = $2
RETURNING id, owner_id, message, level, status, created_at`, r.table)

	var rec recommend.Recommendation
	var level, st string
	if err := r.db.QueryRowContext(ctx, query, string(status), id).Scan(
		&rec.ID, &rec.OwnerID, &rec.Message, &level, &st, &rec.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, recommend.ErrNotFound
		}
		return nil, err
	}
	rec.Level = recommend.Level(level)
	rec.Status = recommend.Status(st)
	rec.CreatedAt = rec.CreatedAt.UTC()
	return &rec, nil
}

// Delete removes a recommendation by id.
func (r *RecommendationRepository) Delete(ctx context.Context, id int64) error {
	if r == nil || r.db == nil {
		return errors.New("recommendation repo: nil db")
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.table)
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}
