package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type stubBaseline struct {
	profile map[int]float64
	err     error
	gotDays int
}

func (s *stubBaseline) HourlyBaseline(_ context.Context, _ int64, days int) (map[int]float64, error) {
	s.gotDays = days
	return s.profile, s.err
}

func fullProfile(kwh float64) map[int]float64 {
	profile := make(map[int]float64, 24)
	for hour := 0; hour < 24; hour++ {
		profile[hour] = kwh
	}
	return profile
}

func TestForecastHandler_DefaultsDays(t *testing.T) {
	stub := &stubBaseline{profile: fullProfile(0.5)}
	handler, err := NewForecastHandler(stub, 7, nil)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/forecast/hourly?ownerId=1", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if stub.gotDays != 7 {
		t.Fatalf("expected default 7 days, got %d", stub.gotDays)
	}

	var got hourlyResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Days != 7 || len(got.Hours) != 24 {
		t.Fatalf("unexpected response shape: days=%d hours=%d", got.Days, len(got.Hours))
	}
	if got.Hours[0].Hour != 0 || got.Hours[23].Hour != 23 {
		t.Fatalf("expected hours ordered 0..23, got %+v", got.Hours)
	}
}

func TestForecastHandler_ExplicitDays(t *testing.T) {
	stub := &stubBaseline{profile: fullProfile(0)}
	handler, err := NewForecastHandler(stub, 7, nil)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/forecast/hourly?ownerId=1&days=30", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if stub.gotDays != 30 {
		t.Fatalf("expected 30 days, got %d", stub.gotDays)
	}
}

func TestForecastHandler_InvalidDays(t *testing.T) {
	handler, err := NewForecastHandler(&stubBaseline{}, 7, nil)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/forecast/hourly?ownerId=1&days=abc", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestForecastHandler_ServiceError(t *testing.T) {
	handler, err := NewForecastHandler(&stubBaseline{err: errors.New("down")}, 7, nil)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/forecast/hourly?ownerId=1", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
}
