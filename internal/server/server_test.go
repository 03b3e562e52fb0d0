package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/mlachapelle/maisonqc/internal/store"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()

	scenarioStore, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.Open() error: %v", err)
	}
	t.Cleanup(func() {
		_ = scenarioStore.Close()
	})

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	return NewHandler(nil, scenarioStore, cfg, "test")
}

const calculatePayload = `{
	"purchasePrice": 500000,
	"downPaymentAmount": 50000,
	"annualPropertyTax": 4800,
	"recurringMonthlyCosts": {"insurance": 100, "utility": 250, "upkeep": 150},
	"financingSources": [
		{"name": "Mortgage", "kind": "mortgage", "rate": 5.0, "termMonths": 300, "autoFillMortgage": true},
		{"name": "CELIAPP", "kind": "celiapp", "amount": 50000}
	],
	"householdMembers": [
		{"name": "Camille", "monthlyIncome": 6500}
	]
}`

func TestHandleCalculate(t *testing.T) {
	handler := newTestHandler(t)

	request := httptest.NewRequest(http.MethodPost, "/api/calculate", bytes.NewBufferString(calculatePayload))
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", recorder.Code, recorder.Body.String())
	}

	var response struct {
		Snapshot struct {
			Insurance struct {
				InsuranceRequired bool    `json:"insuranceRequired"`
				TotalFinanced     float64 `json:"totalFinanced"`
			} `json:"insurance"`
		} `json:"snapshot"`
		Duration string `json:"duration"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !response.Snapshot.Insurance.InsuranceRequired {
		t.Error("expected insurance to be required at 90% LTV")
	}
	if response.Snapshot.Insurance.TotalFinanced <= 450000 {
		t.Errorf("TotalFinanced = %v, expected premium to be capitalized", response.Snapshot.Insurance.TotalFinanced)
	}
	if response.Duration == "" {
		t.Error("expected a duration")
	}
}

func TestHandleCalculateBadBody(t *testing.T) {
	handler := newTestHandler(t)

	request := httptest.NewRequest(http.MethodPost, "/api/calculate", bytes.NewBufferString("not json"))
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, expected 400", recorder.Code)
	}
}

func TestScenarioLifecycle(t *testing.T) {
	handler := newTestHandler(t)

	state := `{"version": 1, "purchasePrice": 400000, "downPaymentAmount": 80000}`
	saveBody := fmt.Sprintf(`{"name": "Rosemont duplex", "state": %s}`, state)

	request := httptest.NewRequest(http.MethodPost, "/api/scenarios/", bytes.NewBufferString(saveBody))
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	if recorder.Code != http.StatusCreated {
		t.Fatalf("save status = %d, body = %s", recorder.Code, recorder.Body.String())
	}

	var saved store.Scenario
	if err := json.Unmarshal(recorder.Body.Bytes(), &saved); err != nil {
		t.Fatalf("failed to decode save response: %v", err)
	}

	// List
	request = httptest.NewRequest(http.MethodGet, "/api/scenarios/", nil)
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	if recorder.Code != http.StatusOK {
		t.Fatalf("list status = %d", recorder.Code)
	}
	var scenarios []store.Scenario
	if err := json.Unmarshal(recorder.Body.Bytes(), &scenarios); err != nil {
		t.Fatalf("failed to decode list response: %v", err)
	}
	if len(scenarios) != 1 {
		t.Fatalf("expected 1 scenario, got %d", len(scenarios))
	}

	// Calculate from the stored state
	request = httptest.NewRequest(http.MethodPost, "/api/scenarios/"+saved.ID+"/calculate", nil)
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	if recorder.Code != http.StatusOK {
		t.Fatalf("calculate status = %d, body = %s", recorder.Code, recorder.Body.String())
	}

	// Delete
	request = httptest.NewRequest(http.MethodDelete, "/api/scenarios/"+saved.ID, nil)
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	if recorder.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", recorder.Code)
	}

	request = httptest.NewRequest(http.MethodGet, "/api/scenarios/"+saved.ID, nil)
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("get-after-delete status = %d, expected 404", recorder.Code)
	}
}

func TestScenarioSaveRejectsBadState(t *testing.T) {
	handler := newTestHandler(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "Missing name", body: `{"state": {"version": 1}}`},
		{name: "Unsupported version", body: `{"name": "x", "state": {"version": 99}}`},
		{name: "State not an object", body: `{"name": "x", "state": "oops"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodPost, "/api/scenarios/", bytes.NewBufferString(tt.body))
			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, request)
			if recorder.Code != http.StatusBadRequest {
				t.Errorf("status = %d, expected 400", recorder.Code)
			}
		})
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	handler := newTestHandler(t)

	request := httptest.NewRequest(http.MethodPost, "/api/export", bytes.NewBufferString(calculatePayload))
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	if recorder.Code != http.StatusOK {
		t.Fatalf("export status = %d, body = %s", recorder.Code, recorder.Body.String())
	}

	exported := recorder.Body.Bytes()

	request = httptest.NewRequest(http.MethodPost, "/api/import", bytes.NewBuffer(exported))
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	if recorder.Code != http.StatusOK {
		t.Fatalf("import status = %d, body = %s", recorder.Code, recorder.Body.String())
	}

	var imported struct {
		PurchasePrice float64 `json:"purchasePrice"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &imported); err != nil {
		t.Fatalf("failed to decode import response: %v", err)
	}
	if imported.PurchasePrice != 500000 {
		t.Errorf("PurchasePrice = %v, expected 500000", imported.PurchasePrice)
	}
}

func TestHealthAndVersion(t *testing.T) {
	handler := newTestHandler(t)

	request := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	if recorder.Code != http.StatusOK {
		t.Fatalf("health status = %d", recorder.Code)
	}

	request = httptest.NewRequest(http.MethodGet, "/api/version", nil)
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	if recorder.Code != http.StatusOK {
		t.Fatalf("version status = %d", recorder.Code)
	}
	var version map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &version); err != nil {
		t.Fatalf("failed to decode version: %v", err)
	}
	if version["version"] != "test" {
		t.Errorf("version = %s, expected test", version["version"])
	}
}
