package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"energywatch/internal/auth"
	masterdata "energywatch/internal/masterdata/domain"
	"energywatch/internal/observability/metrics"
	telemetry "energywatch/internal/telemetry/domain"
)

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// ReadingHandler provides reading ingestion and listing endpoints.
type ReadingHandler struct {
	readings ReadingStore
	devices  masterdata.DeviceRepository
	clock    Clock
	logger   *log.Logger
}

// ReadingStore is the persistence surface the handler needs.
type ReadingStore interface {
	telemetry.ReadingRepository
	telemetry.ReadingQuery
}

// NewReadingHandler constructs a handler.
func NewReadingHandler(readings ReadingStore, devices masterdata.DeviceRepository, clock Clock, logger *log.Logger) (*ReadingHandler, error) {
	if readings == nil {
		return nil, errors.New("reading handler: nil reading store")
	}
	if devices == nil {
		return nil, errors.New("reading handler: nil device repository")
	}
	if clock == nil {
		clock = systemClock{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &ReadingHandler{readings: readings, devices: devices, clock: clock, logger: logger}, nil
}

// readingRequest is the ingestion payload. recordedAt defaults to now and
// minutes to the standard sampling duration.
type readingRequest struct {
	DeviceID   int64      `json:"deviceId"`
	Watt       int        `json:"watt"`
	Minutes    int        `json:"minutes"`
	RecordedAt *time.Time `json:"recordedAt"`
}

type readingResponse struct {
	ID         int64     `json:"id"`
	DeviceID   int64     `json:"deviceId"`
	DeviceName string    `json:"deviceName,omitempty"`
	Watt       int       `json:"watt"`
	Minutes    int       `json:"minutes"`
	Kwh        float64   `json:"kwh"`
	RecordedAt time.Time `json:"recordedAt"`
}

// ServeHTTP routes /api/readings and /api/readings/bulk.
func (h *ReadingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/api/readings/bulk" {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleBulk(w, r)
		return
	}
	switch r.Method {
	case http.MethodGet:
		h.handleList(w, r)
	case http.MethodPost:
		h.handleCreate(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *ReadingHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req readingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	reading, err := h.toReading(r, req)
	if err != nil {
		respondReadingError(w, err)
		return
	}
	if err := h.readings.Save(r.Context(), reading); err != nil {
		metrics.ObserveIngest("error", time.Since(start))
		h.logger.Printf("readings create: %v", err)
		http.Error(w, "save reading error", http.StatusInternalServerError)
		return
	}
	metrics.ObserveIngest("success", time.Since(start))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(toResponse(*reading))
}

// handleBulk ingests a batch. The whole batch is validated before any
// write so a bad entry leaves no partial effects.
func (h *ReadingHandler) handleBulk(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var reqs []readingRequest
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if len(reqs) == 0 {
		http.Error(w, "empty batch", http.StatusBadRequest)
		return
	}

	batch := make([]*telemetry.Reading, 0, len(reqs))
	for i, req := range reqs {
		reading, err := h.toReading(r, req)
		if err != nil {
			respondReadingError(w, fmt.Errorf("entry %d: %w", i, err))
			return
		}
		batch = append(batch, reading)
	}
	if err := h.readings.SaveBatch(r.Context(), batch); err != nil {
		metrics.ObserveIngest("error", time.Since(start))
		h.logger.Printf("readings bulk: %v", err)
		http.Error(w, "save batch error", http.StatusInternalServerError)
		return
	}
	metrics.ObserveIngest("success", time.Since(start))

	responses := make([]readingResponse, 0, len(batch))
	for _, reading := range batch {
		responses = append(responses, toResponse(*reading))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(responses)
}

func (h *ReadingHandler) handleList(w http.ResponseWriter, r *http.Request) {
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

	var readings []telemetry.Reading
	if deviceValue := r.URL.Query().Get("deviceId"); deviceValue != "" {
		deviceID, parseErr := strconv.ParseInt(deviceValue, 10, 64)
		if parseErr != nil || deviceID <= 0 {
			http.Error(w, "invalid deviceId", http.StatusBadRequest)
			return
		}
		readings, err = h.readings.ListByOwnerDeviceAndRange(r.Context(), ownerID, deviceID, from, to)
	} else {
		readings, err = h.readings.ListByOwnerAndRange(r.Context(), ownerID, from, to)
	}
	if err != nil {
		h.logger.Printf("readings list: %v", err)
		http.Error(w, "list readings error", http.StatusInternalServerError)
		return
	}

	responses := make([]readingResponse, 0, len(readings))
	for _, reading := range readings {
		responses = append(responses, toResponse(reading))
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(responses)
}

var errOwnerMismatch = errors.New("device belongs to another owner")

// toReading builds a normalized reading and checks the caller may write
// to the target device.
func (h *ReadingHandler) toReading(r *http.Request, req readingRequest) (*telemetry.Reading, error) {
	reading := &telemetry.Reading{
		DeviceID: req.DeviceID,
		Watt:     req.Watt,
		Minutes:  req.Minutes,
	}
	if req.RecordedAt != nil {
		reading.RecordedAt = req.RecordedAt.UTC()
	}
	reading.Normalize(h.clock.Now().UTC())
	if err := reading.Validate(); err != nil {
		return nil, err
	}

	device, err := h.devices.Get(r.Context(), reading.DeviceID)
	if err != nil {
		return nil, err
	}
	ownerID := auth.OwnerIDFromContext(r.Context())
	if ownerID > 0 && device.OwnerID != ownerID && auth.RoleFromContext(r.Context()) != auth.RoleAdmin {
		return nil, errOwnerMismatch
	}
	reading.DeviceName = device.Name
	reading.OwnerID = device.OwnerID
	return reading, nil
}

func respondReadingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, masterdata.ErrDeviceNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, errOwnerMismatch):
		http.Error(w, err.Error(), http.StatusForbidden)
	default:
		http.Error(w, err.Error(), http.StatusBadRequest)
	}
}

func toResponse(reading telemetry.Reading) readingResponse {
	return readingResponse{
		ID:         reading.ID,
		DeviceID:   reading.DeviceID,
		DeviceName: reading.DeviceName,
		Watt:       reading.Watt,
		Minutes:    reading.Minutes,
		Kwh:        reading.KWh(),
		RecordedAt: reading.RecordedAt,
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
