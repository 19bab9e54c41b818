package recommend

import (
	"context"
	"errors"
	"time"
)

// Level grades a recommendation.
type Level string

// Status tracks whether the owner has acted on a recommendation.
type Status string

const (
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelAlert Level = "ALERT"

	StatusNew  Status = "NEW"
	StatusDone Status = "DONE"
)

// ErrNotFound is returned when a recommendation id does not exist.
var ErrNotFound = errors.New("recommend: recommendation not found")

// Recommendation is an advisory record emitted by the anomaly agent.
// Status transitions and deletion happen outside the agent; the agent
// only ever creates records with StatusNew.
type Recommendation struct {
	ID        int64     `json:"id"`
	OwnerID   int64     `json:"ownerId"`
	Message   string    `json:"message"`
	Level     Level     `json:"level"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// ParseLevel validates a level string.
func ParseLevel(value string) (Level, bool) {
	switch Level(value) {
	case LevelInfo, LevelWarn, LevelAlert:
		return Level(value), true
	}
	return "", false
}

// ParseStatus validates a status string.
func ParseStatus(value string) (Status, bool) {
	switch Status(value) {
	case StatusNew, StatusDone:
		return Status(value), true
	}
	return "", false
}

// Repository persists recommendations. The "ALL" status filter returns
// every status; limit is clamped to 1..200 by implementations.
type Repository interface {
	Save(ctx context.Context, rec *Recommendation) error
	ListByOwner(ctx context.Context, ownerID int64, status string, limit int) ([]Recommendation, error)
	UpdateStatus(ctx context.Context, id int64, status Status) (*Recommendation, error)
	Delete(ctx context.Context, id int64) error
}

// StatusFilterAll matches every status in Repository.ListByOwner.
const StatusFilterAll = "ALL"

// ListLimit clamps a requested page size into the supported 1..200 range.
func ListLimit(requested int) int {
	if requested < 1 {
		return 1
	}
	if requested > 200 {
		return 200
	}
	return requested
}
