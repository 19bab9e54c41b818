package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	masterdata "energywatch/internal/masterdata/domain"
)

// UserRepository is an in-memory user store for demo/testing.
type UserRepository struct {
	mu     sync.RWMutex
	nextID int64
	data   map[int64]masterdata.User
}

// NewUserRepository constructs a repository.
func NewUserRepository() *UserRepository {
	return &UserRepository{nextID: 1, data: make(map[int64]masterdata.User)}
}

// Save stores a user and assigns its id. Emails are unique.
func (r *UserRepository) Save(_ context.Context, user *masterdata.User) error {
	if user == nil {
		return errors.New("user memory repo: nil user")
	}
	if err := user.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.data {
		if strings.EqualFold(existing.Email, user.Email) {
			return masterdata.ErrEmailTaken
		}
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	user.ID = r.nextID
	r.nextID++
	r.data[user.ID] = *user
	return nil
}

// FindByID loads a user; ErrUserNotFound when absent.
func (r *UserRepository) FindByID(_ context.Context, id int64) (*masterdata.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.data[id]
	if !ok {
		return nil, masterdata.ErrUserNotFound
	}
	return &user, nil
}

// FindByEmail loads a user by email; ErrUserNotFound when absent.
func (r *UserRepository) FindByEmail(_ context.Context, email string) (*masterdata.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.data {
		if strings.EqualFold(user.Email, email) {
			u := user
			return &u, nil
		}
	}
	return nil, masterdata.ErrUserNotFound
}

// ListOwnerIDs returns all user ids in ascending order.
func (r *UserRepository) ListOwnerIDs(_ context.Context) ([]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]int64, 0, len(r.data))
	for id := range r.data {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}
