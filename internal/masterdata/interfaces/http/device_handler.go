package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"energywatch/internal/audit"
	"energywatch/internal/auth"
	masterdata "energywatch/internal/masterdata/domain"
)

// DeviceHandler provides device CRUD endpoints.
type DeviceHandler struct {
	devices     masterdata.DeviceRepository
	auditLogger audit.Logger
	logger      *log.Logger
}

// NewDeviceHandler constructs a handler. auditLogger may be nil.
func NewDeviceHandler(devices masterdata.DeviceRepository, auditLogger audit.Logger, logger *log.Logger) (*DeviceHandler, error) {
	if devices == nil {
		return nil, errors.New("device handler: nil device repository")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &DeviceHandler{devices: devices, auditLogger: auditLogger, logger: logger}, nil
}

// ServeHTTP routes /api/devices and /api/devices/{id}.
func (h *DeviceHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/devices"), "/")

	if rest == "" {
		switch r.Method {
		case http.MethodGet:
			h.handleList(w, r)
		case http.MethodPost:
			h.handleCreate(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		http.Error(w, "invalid device id", http.StatusBadRequest)
		return
	}
	switch r.Method {
	case http.MethodGet:
		h.handleGet(w, r, id)
	case http.MethodPut:
		h.handleUpdate(w, r, id)
	case http.MethodDelete:
		h.handleDelete(w, r, id)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *DeviceHandler) handleList(w http.ResponseWriter, r *http.Request) {
	ownerID := resolveOwnerID(r)
	if ownerID <= 0 {
		http.Error(w, "owner is required", http.StatusBadRequest)
		return
	}
	devices, err := h.devices.ListByOwner(r.Context(), ownerID)
	if err != nil {
		h.logger.Printf("devices list: %v", err)
		http.Error(w, "list devices error", http.StatusInternalServerError)
		return
	}
	if devices == nil {
		devices = []masterdata.Device{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(devices)
}

func (h *DeviceHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var device masterdata.Device
	if err := json.NewDecoder(r.Body).Decode(&device); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	ownerID := auth.OwnerIDFromContext(r.Context())
	if ownerID > 0 {
		if device.OwnerID != 0 && device.OwnerID != ownerID && auth.RoleFromContext(r.Context()) != auth.RoleAdmin {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		if device.OwnerID == 0 {
			device.OwnerID = ownerID
		}
	}
	if err := device.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.devices.Save(r.Context(), &device); err != nil {
		h.logger.Printf("devices create: %v", err)
		http.Error(w, "save device error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(device)

	h.logAudit(r, device.OwnerID, "device.create", device.ID, device.Name)
}

func (h *DeviceHandler) handleGet(w http.ResponseWriter, r *http.Request, id int64) {
	device, err := h.loadOwned(w, r, id)
	if device == nil || err != nil {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(device)
}

func (h *DeviceHandler) handleUpdate(w http.ResponseWriter, r *http.Request, id int64) {
	existing, err := h.loadOwned(w, r, id)
	if existing == nil || err != nil {
		return
	}

	var req masterdata.Device
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	existing.Name = req.Name
	existing.Type = req.Type
	existing.Watt = req.Watt
	existing.Location = req.Location
	if err := existing.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.devices.Update(r.Context(), existing); err != nil {
		if errors.Is(err, masterdata.ErrDeviceNotFound) {
			http.Error(w, "device not found", http.StatusNotFound)
			return
		}
		h.logger.Printf("devices update: %v", err)
		http.Error(w, "update device error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(existing)

	h.logAudit(r, existing.OwnerID, "device.update", existing.ID, existing.Name)
}

func (h *DeviceHandler) handleDelete(w http.ResponseWriter, r *http.Request, id int64) {
	existing, err := h.loadOwned(w, r, id)
	if existing == nil || err != nil {
		return
	}
	if err := h.devices.Delete(r.Context(), id); err != nil {
		h.logger.Printf("devices delete: %v", err)
		http.Error(w, "delete device error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)

	h.logAudit(r, existing.OwnerID, "device.delete", existing.ID, existing.Name)
}

func (h *DeviceHandler) logAudit(r *http.Request, ownerID int64, action string, deviceID int64, name string) {
	if h.auditLogger == nil {
		return
	}
	meta, _ := json.Marshal(map[string]any{"name": name})
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		OwnerID:      ownerID,
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       action,
		ResourceType: "device",
		ResourceID:   strconv.FormatInt(deviceID, 10),
		Metadata:     meta,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}

// loadOwned fetches the device and enforces owner scoping. It writes the
// error response itself; a nil device means the response is already sent.
func (h *DeviceHandler) loadOwned(w http.ResponseWriter, r *http.Request, id int64) (*masterdata.Device, error) {
	device, err := h.devices.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, masterdata.ErrDeviceNotFound) {
			http.Error(w, "device not found", http.StatusNotFound)
			return nil, err
		}
		h.logger.Printf("devices get: %v", err)
		http.Error(w, "get device error", http.StatusInternalServerError)
		return nil, err
	}
	ownerID := auth.OwnerIDFromContext(r.Context())
	if ownerID > 0 && device.OwnerID != ownerID && auth.RoleFromContext(r.Context()) != auth.RoleAdmin {
		http.Error(w, "forbidden", http.StatusForbidden)
		return nil, errors.New("owner mismatch")
	}
	return device, nil
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
