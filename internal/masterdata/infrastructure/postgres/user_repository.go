package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	masterdata "energywatch/internal/masterdata/domain"
)

const defaultUsersTable = "users"

// UserRepository is a Postgres repository for account owners.
type UserRepository struct {
	db    *sql.DB
	table string
}

// UserOption configures the repository.
type UserOption func(*UserRepository)

// WithUsersTable overrides the default table name.
func WithUsersTable(table string) UserOption {
	return func(repo *UserRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// NewUserRepository constructs a repository.
func NewUserRepository(db *sql.DB, opts ...UserOption) *UserRepository {
	repo := &UserRepository{db: db, table: defaultUsersTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// Save inserts a user and assigns its id. A duplicate email maps to
// ErrEmailTaken.
func (r *UserRepository) Save(ctx context.Context, user *masterdata.User) error {
	if r == nil || r.db == nil {
		return errors.New("user repo: nil db")
	}
	if user == nil {
		return errors.New("user repo: nil user")
	}
	if err := user.Validate(); err != nil {
		return err
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	query := fmt.Sprintf(`
INSERT INTO %s (username, email, full_name, password_hash, role, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id`, r.table)

	err := r.db.QueryRowContext(ctx, query,
		user.Username, user.Email, user.FullName, user.PasswordHash, user.Role, user.CreatedAt,
	).Scan(&user.ID)
	if err != nil && strings.Contains(err.Error(), "duplicate key") {
		return masterdata.ErrEmailTaken
	}
	return err
}

// FindByID loads a user; ErrUserNotFound when absent.
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*masterdata.User, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("user repo: nil db")
	}
	query := fmt.Sprintf(`
SELECT id, username, email, full_name, password_hash, role, created_at
FROM %s
WHERE id = $1
LIMIT 1`, r.table)
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// FindByEmail loads a user by email; ErrUserNotFound when absent.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*masterdata.User, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("user repo: nil db")
	}
	query := fmt.Sprintf(`
SELECT id, username, email, full_name, password_hash, role, created_at
FROM %s
WHERE email = $1
LIMIT 1`, r.table)
	return r.scanOne(r.db.QueryRowContext(ctx, query, email))
}

// ListOwnerIDs returns every account owner id, ascending.
func (r *UserRepository) ListOwnerIDs(ctx context.Context) ([]int64, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("user repo: nil db")
	}
	query := fmt.Sprintf(`SELECT id FROM %s ORDER BY id ASC`, r.table)
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *UserRepository) scanOne(row *sql.Row) (*masterdata.User, error) {
	var user masterdata.User
	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.FullName,
		&user.PasswordHash,
		&user.Role,
		&user.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, masterdata.ErrUserNotFound
		}
		return nil, err
	}
	user.CreatedAt = user.CreatedAt.UTC()
	return &user, nil
}
