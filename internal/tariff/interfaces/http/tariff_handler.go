package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"energywatch/internal/audit"
	"energywatch/internal/auth"
	tariff "energywatch/internal/tariff/domain"
)

// TariffHandler provides the owner tariff endpoint.
type TariffHandler struct {
	tariffs      tariff.Repository
	defaultPrice float64
	auditLogger  audit.Logger
	logger       *log.Logger
}

// NewTariffHandler constructs a handler. auditLogger may be nil.
func NewTariffHandler(tariffs tariff.Repository, defaultPrice float64, auditLogger audit.Logger, logger *log.Logger) (*TariffHandler, error) {
	if tariffs == nil {
		return nil, errors.New("tariff handler: nil tariff repository")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &TariffHandler{tariffs: tariffs, defaultPrice: defaultPrice, auditLogger: auditLogger, logger: logger}, nil
}

// ServeHTTP handles GET/PUT /api/tariff.
func (h *TariffHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleGet(w, r)
	case http.MethodPut:
		h.handlePut(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *TariffHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	ownerID := resolveOwnerID(r)
	if ownerID <= 0 {
		http.Error(w, "owner is required", http.StatusBadRequest)
		return
	}
	t, err := h.tariffs.FindByOwner(r.Context(), ownerID)
	if err != nil {
		h.logger.Printf("tariff get: %v", err)
		http.Error(w, "get tariff error", http.StatusInternalServerError)
		return
	}
	if t == nil {
		// No stored tariff: surface the default price so clients always
		// see the effective rate.
		t = &tariff.Tariff{OwnerID: ownerID, PricePerKwh: h.defaultPrice}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(t)
}

func (h *TariffHandler) handlePut(w http.ResponseWriter, r *http.Request) {
	ownerID := resolveOwnerID(r)
	if ownerID <= 0 {
		http.Error(w, "owner is required", http.StatusBadRequest)
		return
	}

	var t tariff.Tariff
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if t.OwnerID != 0 && t.OwnerID != ownerID && auth.RoleFromContext(r.Context()) != auth.RoleAdmin {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	if t.OwnerID == 0 {
		t.OwnerID = ownerID
	}
	if err := t.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.tariffs.Upsert(r.Context(), &t); err != nil {
		h.logger.Printf("tariff put: %v", err)
		http.Error(w, "save tariff error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(t)

	if h.auditLogger != nil {
		meta, _ := json.Marshal(map[string]any{"pricePerKwh": t.PricePerKwh})
		_ = h.auditLogger.Log(r.Context(), audit.Entry{
			OwnerID:      t.OwnerID,
			Actor:        auth.SubjectFromContext(r.Context()),
			Role:         string(auth.RoleFromContext(r.Context())),
			Action:       "tariff.upsert",
			ResourceType: "tariff",
			ResourceID:   strconv.FormatInt(t.ID, 10),
			Metadata:     meta,
			IP:           audit.ClientIP(r),
			UserAgent:    r.UserAgent(),
		})
	}
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
