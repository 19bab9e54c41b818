package masterdata

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Roles assigned at registration. Residents own devices and readings;
// admins are reserved for back-office tooling.
const (
	RoleResident = "RESIDENT"
	RoleAdmin    = "ADMIN"
)

// ErrUserNotFound is returned when a user id or email does not exist.
var ErrUserNotFound = errors.New("masterdata: user not found")

// ErrEmailTaken is returned when registering an already-used email.
var ErrEmailTaken = errors.New("masterdata: email already registered")

// User is an account owner. Username mirrors the email.
type User struct {
	ID           int64
	Username     string
	Email        string
	FullName     string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

// Validate checks the fields required before persisting a new user.
func (u User) Validate() error {
	if strings.TrimSpace(u.FullName) == "" {
		return errors.New("masterdata: full name is required")
	}
	if !strings.Contains(u.Email, "@") || !strings.Contains(u.Email, ".") {
		return errors.New("masterdata: email is not valid")
	}
	if u.PasswordHash == "" {
		return errors.New("masterdata: password hash is required")
	}
	if u.Role != RoleResident && u.Role != RoleAdmin {
		return errors.New("masterdata: unknown role")
	}
	return nil
}

// UserRepository persists account owners.
type UserRepository interface {
	Save(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id int64) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	ListOwnerIDs(ctx context.Context) ([]int64, error)
}
