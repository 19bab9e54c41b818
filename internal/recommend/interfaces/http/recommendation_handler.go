package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"energywatch/internal/audit"
	"energywatch/internal/auth"
	recommend "energywatch/internal/recommend/domain"
)

// defaultListLimit applies when the caller does not ask for a page size.
const defaultListLimit = 100

// Generator evaluates one owner's consumption on demand.
type Generator interface {
	GenerateForOwner(ctx context.Context, ownerID int64) error
}

// RecommendationHandler provides recommendation endpoints.
type RecommendationHandler struct {
	store       recommend.Repository
	generator   Generator
	auditLogger audit.Logger
	logger      *log.Logger
}

// NewRecommendationHandler constructs a handler. generator may be nil;
// the manual trigger then responds 503. auditLogger may be nil.
func NewRecommendationHandler(store recommend.Repository, generator Generator, auditLogger audit.Logger, logger *log.Logger) (*RecommendationHandler, error) {
	if store == nil {
		return nil, errors.New("recommendation handler: nil store")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &RecommendationHandler{store: store, generator: generator, auditLogger: auditLogger, logger: logger}, nil
}

// ServeHTTP routes /api/recommendations and subpaths.
func (h *RecommendationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/recommendations"), "/")

	switch {
	case rest == "":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleList(w, r)
	case rest == "generate":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleGenerate(w, r)
	case strings.HasSuffix(rest, "/status"):
		if r.Method != http.MethodPut {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		idValue := strings.TrimSuffix(rest, "/status")
		id, err := strconv.ParseInt(idValue, 10, 64)
		if err != nil {
			http.Error(w, "invalid recommendation id", http.StatusBadRequest)
			return
		}
		h.handleStatus(w, r, id)
	default:
		id, err := strconv.ParseInt(rest, 10, 64)
		if err != nil {
			http.Error(w, "invalid recommendation id", http.StatusBadRequest)
			return
		}
		if r.Method != http.MethodDelete {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleDelete(w, r, id)
	}
}

func (h *RecommendationHandler) handleList(w http.ResponseWriter, r *http.Request) {
	ownerID := resolveOwnerID(r)
	if ownerID <= 0 {
		http.Error(w, "owner is required", http.StatusBadRequest)
		return
	}

	status := strings.ToUpper(r.URL.Query().Get("status"))
	if status != "" && status != recommend.StatusFilterAll {
		if _, ok := recommend.ParseStatus(status); !ok {
			http.Error(w, "unknown status", http.StatusBadRequest)
			return
		}
	}
	limit := defaultListLimit
	if limitValue := r.URL.Query().Get("limit"); limitValue != "" {
		parsed, err := strconv.Atoi(limitValue)
		if err != nil {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	list, err := h.store.ListByOwner(r.Context(), ownerID, status, limit)
	if err != nil {
		h.logger.Printf("recommendations list: %v", err)
		http.Error(w, "list recommendations error", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []recommend.Recommendation{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(list)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *RecommendationHandler) handleStatus(w http.ResponseWriter, r *http.Request, id int64) {
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	status, ok := recommend.ParseStatus(strings.ToUpper(req.Status))
	if !ok {
		http.Error(w, "unknown status", http.StatusBadRequest)
		return
	}

	updated, err := h.store.UpdateStatus(r.Context(), id, status)
	if err != nil {
		if errors.Is(err, recommend.ErrNotFound) {
			http.Error(w, "recommendation not found", http.StatusNotFound)
			return
		}
		h.logger.Printf("recommendations status: %v", err)
		http.Error(w, "update status error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(updated)

	h.logAudit(r, updated.OwnerID, "recommendation.status", id, string(status))
}

func (h *RecommendationHandler) handleDelete(w http.ResponseWriter, r *http.Request, id int64) {
	if err := h.store.Delete(r.Context(), id); err != nil {
		h.logger.Printf("recommendations delete: %v", err)
		http.Error(w, "delete recommendation error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)

	h.logAudit(r, auth.OwnerIDFromContext(r.Context()), "recommendation.delete", id, "")
}

func (h *RecommendationHandler) logAudit(r *http.Request, ownerID int64, action string, id int64, status string) {
	if h.auditLogger == nil {
		return
	}
	var meta []byte
	if status != "" {
		meta, _ = json.Marshal(map[string]any{"status": status})
	}
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		OwnerID:      ownerID,
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       action,
		ResourceType: "recommendation",
		ResourceID:   strconv.FormatInt(id, 10),
		Metadata:     meta,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}

func (h *RecommendationHandler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if h.generator == nil {
		http.Error(w, "generator unavailable", http.StatusServiceUnavailable)
		return
	}
	ownerID := resolveOwnerID(r)
	if ownerID <= 0 {
		http.Error(w, "owner is required", http.StatusBadRequest)
		return
	}
	if err := h.generator.GenerateForOwner(r.Context(), ownerID); err != nil {
		h.logger.Printf("recommendations generate owner=%d: %v", ownerID, err)
		http.Error(w, "generate error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// resolveOwnerID prefers the authenticated owner; admins may select any
// owner with the ownerId query parameter.
func resolveOwnerID(r *http.Request) int64 {
	ownerID := auth.OwnerIDFromContext(r.Context())
	query := r.URL.Query().Get("ownerId")
	if query == "" {
		return ownerID
	}
	requested, err := strconv.ParseInt(query, 10, 64)
	if err != nil || requested <= 0 {
		return ownerID
	}
	if ownerID == 0 || requested == ownerID || auth.RoleFromContext(r.Context()) == auth.RoleAdmin {
		return requested
	}
	return ownerID
}
