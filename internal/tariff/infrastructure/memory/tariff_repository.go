package memory

import (
	"context"
	"errors"
	"sync"

	tariff "energywatch/internal/tariff/domain"
)

// TariffRepository is an in-memory tariff store for demo/testing.
type TariffRepository struct {
	mu     sync.RWMutex
	nextID int64
	data   map[int64]tariff.Tariff // keyed by owner id
}

// NewTariffRepository constructs a repository.
func NewTariffRepository() *TariffRepository {
	return &TariffRepository{nextID: 1, data: make(map[int64]tariff.Tariff)}
}

// FindByOwner loads an owner's tariff, or (nil, nil) when none exists.
func (r *TariffRepository) FindByOwner(_ context.Context, ownerID int64) (*tariff.Tariff, error) {
	if ownerID <= 0 {
		return nil, errors.New("tariff memory repo: invalid owner id")
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.data[ownerID]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

// Upsert creates or replaces the owner's single tariff.
func (r *TariffRepository) Upsert(_ context.Context, t *tariff.Tariff) error {
	if t == nil {
		return errors.New("tariff memory repo: nil tariff")
	}
	if err := t.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.data[t.OwnerID]; ok {
		t.ID = existing.ID
	} else {
		t.ID = r.nextID
		r.nextID++
	}
	r.data[t.OwnerID] = *t
	return nil
}
