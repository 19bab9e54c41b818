package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"energywatch/internal/auth"
)

// BaselineProvider computes expected consumption per hour of day.
type BaselineProvider interface {
	HourlyBaseline(ctx context.Context, ownerID int64, days int) (map[int]float64, error)
}

// ForecastHandler serves the hourly baseline profile.
type ForecastHandler struct {
	service     BaselineProvider
	defaultDays int
	logger      *log.Logger
}

// NewForecastHandler constructs a handler.
func NewForecastHandler(service BaselineProvider, defaultDays int, logger *log.Logger) (*ForecastHandler, error) {
	if service == nil {
		return nil, errors.New("forecast handler: nil service")
	}
	if defaultDays <= 0 {
		defaultDays = 7
	}
	if logger == nil {
		logger = log.Default()
	}
	return &ForecastHandler{service: service, defaultDays: defaultDays, logger: logger}, nil
}

type hourlyPoint struct {
	Hour int     `json:"hour"`
	Kwh  float64 `json:"kwh"`
}

type hourlyResponse struct {
	Days  int           `json:"days"`
	Hours []hourlyPoint `json:"hours"`
}

// ServeHTTP handles GET /api/forecast/hourly.
func (h *ForecastHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ownerID := resolveOwnerID(r)
	if ownerID <= 0 {
		http.Error(w, "owner is required", http.StatusBadRequest)
		return
	}
	days := h.defaultDays
	if daysValue := r.URL.Query().Get("days"); daysValue != "" {
		parsed, err := strconv.Atoi(daysValue)
		if err != nil || parsed < 0 {
			http.Error(w, "invalid days", http.StatusBadRequest)
			return
		}
		days = parsed
	}

	profile, err := h.service.HourlyBaseline(r.Context(), ownerID, days)
	if err != nil {
		h.logger.Printf("forecast hourly: %v", err)
		http.Error(w, "forecast error", http.StatusInternalServerError)
		return
	}

	hours := make([]hourlyPoint, 0, len(profile))
	for hour := 0; hour < 24; hour++ {
		hours = append(hours, hourlyPoint{Hour: hour, Kwh: profile[hour]})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(hourlyResponse{Days: days, Hours: hours})
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
