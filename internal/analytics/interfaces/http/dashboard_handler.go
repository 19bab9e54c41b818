package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	analytics "energywatch/internal/analytics/domain"
	"energywatch/internal/auth"
	"energywatch/internal/observability/metrics"
)

// SummaryProvider produces dashboard summaries.
type SummaryProvider interface {
	Summarize(ctx context.Context, ownerID int64, from, to time.Time) (analytics.DashboardSummary, error)
}

// DashboardHandler serves the dashboard summary, optionally exported as
// CSV, PDF or XLSX.
type DashboardHandler struct {
	service SummaryProvider
	logger  *log.Logger
}

// NewDashboardHandler constructs a handler.
func NewDashboardHandler(service SummaryProvider, logger *log.Logger) (*DashboardHandler, error) {
	if service == nil {
		return nil, errors.New("dashboard handler: nil service")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &DashboardHandler{service: service, logger: logger}, nil
}

// ServeHTTP handles GET /api/dashboard/summary.
func (h *DashboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ownerID := resolveOwnerID(r)
	if ownerID <= 0 {
		http.Error(w, "owner is required", http.StatusBadRequest)
		return
	}
	from, to, err := parseRange(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	summary, err := h.service.Summarize(r.Context(), ownerID, from, to)
	if err != nil {
		h.logger.Printf("dashboard summary: %v", err)
		http.Error(w, "summary error", http.StatusInternalServerError)
		return
	}

	format := r.URL.Query().Get("format")
	switch format {
	case "", "json":
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(summary)
	case "csv":
		data, err := BuildSummaryCSV(summary, from, to)
		metrics.IncSummaryExport("csv", err)
		if err != nil {
			http.Error(w, "export csv error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="summary.csv"`)
		_, _ = w.Write(data)
	case "pdf":
		data, err := BuildSummaryPDF(summary, from, to)
		metrics.IncSummaryExport("pdf", err)
		if err != nil {
			http.Error(w, "export pdf error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="summary.pdf"`)
		_, _ = w.Write(data)
	case "xlsx":
		data, err := BuildSummaryXLSX(summary, from, to)
		metrics.IncSummaryExport("xlsx", err)
		if err != nil {
			http.Error(w, "export xlsx error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="summary.xlsx"`)
		_, _ = w.Write(data)
	default:
		http.Error(w, "unknown format", http.StatusBadRequest)
	}
}

// parseRange reads the from/to query bounds; the range is half-open.
func parseRange(r *http.Request) (time.Time, time.Time, error) {
	fromValue := r.URL.Query().Get("from")
	toValue := r.URL.Query().Get("to")
	if fromValue == "" || toValue == "" {
		return time.Time{}, time.Time{}, errors.New("from/to required")
	}
	from, err := time.Parse(time.RFC3339, fromValue)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("from must be RFC3339")
	}
	to, err := time.Parse(time.RFC3339, toValue)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("to must be RFC3339")
	}
	if !to.After(from) {
		return time.Time{}, time.Time{}, errors.New("to must be after from")
	}
	return from, to, nil
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
