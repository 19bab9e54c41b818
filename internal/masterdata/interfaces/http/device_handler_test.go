package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"energywatch/internal/auth"
	masterdata "energywatch/internal/masterdata/domain"
	masterdatamem "energywatch/internal/masterdata/infrastructure/memory"
)

func newDeviceHandler(t *testing.T) (*DeviceHandler, *masterdatamem.DeviceRepository) {
	t.Helper()
	devices := masterdatamem.NewDeviceRepository()
	handler, err := NewDeviceHandler(devices, nil, nil)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	return handler, devices
}

func asOwner(req *http.Request, ownerID int64) *http.Request {
	return req.WithContext(auth.WithIdentity(req.Context(), ownerID, auth.RoleResident, strconv.FormatInt(ownerID, 10)))
}

func TestDeviceHandler_CreateAssignsOwner(t *testing.T) {
	handler, _ := newDeviceHandler(t)

	req := asOwner(httptest.NewRequest(http.MethodPost, "/api/devices", strings.NewReader(`{"name":"heater","watt":1500}`)), 1)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var created masterdata.Device
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.OwnerID != 1 {
		t.Fatalf("expected owner 1, got %d", created.OwnerID)
	}
	if created.ID == 0 {
		t.Fatal("expected assigned id")
	}
}

func TestDeviceHandler_UpdateForeignDeviceForbidden(t *testing.T) {
	handler, devices := newDeviceHandler(t)
	device := &masterdata.Device{Name: "heater", OwnerID: 2}
	if err := devices.Save(context.Background(), device); err != nil {
		t.Fatalf("seed: %v", err)
	}

	req := asOwner(httptest.NewRequest(http.MethodPut, "/api/devices/"+strconv.FormatInt(device.ID, 10), strings.NewReader(`{"name":"x"}`)), 1)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.Code)
	}
}

func TestDeviceHandler_UpdateUnknownDevice(t *testing.T) {
	handler, _ := newDeviceHandler(t)

	req := asOwner(httptest.NewRequest(http.MethodPut, "/api/devices/42", strings.NewReader(`{"name":"x"}`)), 1)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestDeviceHandler_DeleteOwnDevice(t *testing.T) {
	handler, devices := newDeviceHandler(t)
	device := &masterdata.Device{Name: "heater", OwnerID: 1}
	if err := devices.Save(context.Background(), device); err != nil {
		t.Fatalf("seed: %v", err)
	}

	req := asOwner(httptest.NewRequest(http.MethodDelete, "/api/devices/"+strconv.FormatInt(device.ID, 10), nil), 1)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
	if _, err := devices.Get(context.Background(), device.ID); err == nil {
		t.Fatal("expected device gone")
	}
}

func TestDeviceHandler_ListScopedToOwner(t *testing.T) {
	handler, devices := newDeviceHandler(t)
	for _, d := range []*masterdata.Device{
		{Name: "heater", OwnerID: 1},
		{Name: "fridge", OwnerID: 1},
		{Name: "neighbor-tv", OwnerID: 2},
	} {
		if err := devices.Save(context.Background(), d); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	req := asOwner(httptest.NewRequest(http.MethodGet, "/api/devices", nil), 1)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var list []masterdata.Device
	if err := json.Unmarshal(resp.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 devices, got %d", len(list))
	}
}
