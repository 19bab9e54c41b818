package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	recommend "energywatch/internal/recommend/domain"
)

// RecommendationRepository is an in-memory store for demo/testing.
type RecommendationRepository struct {
	mu     sync.RWMutex
	nextID int64
	data   map[int64]recommend.Recommendation
}

// NewRecommendationRepository constructs a repository.
func NewRecommendationRepository() *RecommendationRepository {
	return &RecommendationRepository{nextID: 1, data: make(map[int64]recommend.Recommendation)}
}

// Save stores a recommendation and assigns its id.
func (r *RecommendationRepository) Save(_ context.Context, rec *recommend.Recommendation) error {
	if rec == nil {
		return errors.New("recommendation memory repo: nil recommendation")
	}
	if rec.OwnerID <= 0 {
		return errors.New("recommendation memory repo: invalid owner id")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec.Status == "" {
		rec.Status = recommend.StatusNew
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	rec.ID = r.nextID
	r.nextID++
	r.data[rec.ID] = *rec
	return nil
}

// ListByOwner returns the owner's recommendations newest first.
func (r *RecommendationRepository) ListByOwner(_ context.Context, ownerID int64, status string, limit int) ([]recommend.Recommendation, error) {
	if ownerID <= 0 {
		return nil, errors.New("recommendation memory repo: invalid owner id")
	}
	limit = recommend.ListLimit(limit)

	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []recommend.Recommendation
	for _, rec := range r.data {
		if rec.OwnerID != ownerID {
			continue
		}
		if status != "" && status != recommend.StatusFilterAll && string(rec.Status) != status {
			continue
		}
		result = append(result, rec)
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// UpdateStatus transitions a recommendation; recommend.ErrNotFound when
// absent.
func (r *RecommendationRepository) UpdateStatus(_ context.Context, id int64, status recommend.Status) (*recommend.Recommendation, error) {
	if _, ok := recommend.ParseStatus(string(status)); !ok {
		return nil, errors.New("recommendation memory repo: unknown status")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.data[id]
	if !ok {
		return nil, recommend.ErrNotFound
	}
	rec.Status = status
	r.data[id] = rec
	return &rec, nil
}

// Delete removes a recommendation.
func (r *RecommendationRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data, id)
	return nil
}
