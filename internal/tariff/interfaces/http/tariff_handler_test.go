package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	tariff "energywatch/internal/tariff/domain"
	tariffmem "energywatch/internal/tariff/infrastructure/memory"
)

func TestTariffHandler_GetFallsBackToDefaultPrice(t *testing.T) {
	handler, err := NewTariffHandler(tariffmem.NewTariffRepository(), 650.0, nil, nil)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/tariff?ownerId=1", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var got tariff.Tariff
	if err := json.Unmarshal(resp.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.PricePerKwh != 650.0 {
		t.Fatalf("expected default price 650, got %v", got.PricePerKwh)
	}
	if got.PeakStart != nil || got.PeakEnd != nil {
		t.Fatalf("expected no peak window, got %+v", got)
	}
}

func TestTariffHandler_PutThenGet(t *testing.T) {
	repo := tariffmem.NewTariffRepository()
	handler, err := NewTariffHandler(repo, 650.0, nil, nil)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}

	body := `{"pricePerKwh":800,"peakStart":18,"peakEnd":22}`
	req := httptest.NewRequest(http.MethodPut, "/api/tariff?ownerId=1", strings.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("put: expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/tariff?ownerId=1", nil)
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	var got tariff.Tariff
	if err := json.Unmarshal(resp.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.PricePerKwh != 800.0 {
		t.Fatalf("expected stored price 800, got %v", got.PricePerKwh)
	}
	if got.PeakStart == nil || *got.PeakStart != 18 || got.PeakEnd == nil || *got.PeakEnd != 22 {
		t.Fatalf("expected peak window 18-22, got %+v", got)
	}
}

func TestTariffHandler_PutRejectsBadPeakHours(t *testing.T) {
	handler, err := NewTariffHandler(tariffmem.NewTariffRepository(), 650.0, nil, nil)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}

	body := `{"pricePerKwh":800,"peakStart":25}`
	req := httptest.NewRequest(http.MethodPut, "/api/tariff?ownerId=1", strings.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestTariffHandler_PutRejectsNegativePrice(t *testing.T) {
	handler, err := NewTariffHandler(tariffmem.NewTariffRepository(), 650.0, nil, nil)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}

	req := httptest.NewRequest(http.MethodPut, "/api/tariff?ownerId=1", strings.NewReader(`{"pricePerKwh":-1}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}
