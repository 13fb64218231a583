package main

import (
	"database/sql"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/ecotread/tirecycle/internal/scenario"
	"github.com/ecotread/tirecycle/internal/storage"
)

func newTestServer(t *testing.T) *server {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open sqlite db: %v", err)
	}

	_, err = db.Exec(`
		CREATE TABLE kv (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		t.Fatalf("failed creating kv table: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Close()
	})

	kv := storage.NewKV(db)
	srv := &server{
		mgr: scenario.NewManager(scenario.NewStore(kv)),
		kv:  kv,
	}
	srv.loadSharedState()
	return srv
}

func postForm(t *testing.T, srv *server, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, req)
	return rec
}

func getJSON(t *testing.T, srv *server, path string, v any) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET %s returned %d: %s", path, rec.Code, rec.Body)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("GET %s returned invalid JSON: %v", path, err)
	}
}

func decodeScenarioKey(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON response: %v (%s)", err, rec.Body)
	}
	return body["scenario"]
}

func TestCreateScenarioSwitchesSelection(t *testing.T) {
	srv := newTestServer(t)

	rec := postForm(t, srv, "/api/scenarios", url.Values{
		"name":        {"Cheaper shredding"},
		"description": {"Swap the shredder"},
		"base":        {"proposed"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create returned %d: %s", rec.Code, rec.Body)
	}
	key := decodeScenarioKey(t, rec)

	var state statePayload
	getJSON(t, srv, "/api/state", &state)
	if state.Scenario != key || state.IsBuiltin {
		t.Fatalf("new scenario not selected: %+v", state)
	}
	if len(state.Options) != 3 {
		t.Fatalf("expected baseline, proposed and the new scenario, got %+v", state.Options)
	}
	if len(state.Process) != 6 {
		t.Fatalf("expected the proposed process copied (6 steps), got %d", len(state.Process))
	}
}

func TestCreateScenarioRequiresName(t *testing.T) {
	srv := newTestServer(t)

	rec := postForm(t, srv, "/api/scenarios", url.Values{"name": {"   "}})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty name, got %d: %s", rec.Code, rec.Body)
	}

	var state statePayload
	getJSON(t, srv, "/api/state", &state)
	if state.Scenario != "baseline" || len(state.Options) != 2 {
		t.Fatalf("rejected create changed state: %+v", state)
	}
}

func TestEditingBuiltinStepForksScenario(t *testing.T) {
	srv := newTestServer(t)

	rec := postForm(t, srv, "/api/steps/shredding", url.Values{
		"name":            {"Low-power Shredding"},
		"department":      {"processing"},
		"equipmentCost":   {"200000"},
		"laborCost":       {"300"},
		"energyCost":      {"not-a-number"},
		"maintenanceCost": {"-50"},
		"duration":        {"6"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("step update returned %d: %s", rec.Code, rec.Body)
	}
	key := decodeScenarioKey(t, rec)
	if key == "baseline" {
		t.Fatal("edit did not fork off the baseline")
	}

	var state statePayload
	getJSON(t, srv, "/api/state", &state)
	var edited bool
	for _, step := range state.Process {
		if step.ID == "shredding" {
			edited = true
			if step.Name != "Low-power Shredding" || step.EquipmentCost != 200000 {
				t.Fatalf("edit not applied: %+v", step)
			}
			// Unparsable and negative inputs coerce to 0.
			if step.EnergyCost != 0 || step.MaintenanceCost != 0 {
				t.Fatalf("form coercion failed: %+v", step)
			}
		}
	}
	if !edited {
		t.Fatalf("edited step missing from process: %+v", state.Process)
	}

	// The baseline template, re-selected, is unchanged.
	postForm(t, srv, "/api/scenarios/select", url.Values{"id": {"baseline"}})
	getJSON(t, srv, "/api/state", &state)
	for _, step := range state.Process {
		if step.ID == "shredding" && step.Name != "Tire Shredding & Steel Separation" {
			t.Fatalf("baseline mutated: %+v", step)
		}
	}
}

func TestDeletingBuiltinIsRejected(t *testing.T) {
	srv := newTestServer(t)

	rec := postForm(t, srv, "/api/scenarios/delete", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 deleting baseline, got %d: %s", rec.Code, rec.Body)
	}

	var state statePayload
	getJSON(t, srv, "/api/state", &state)
	if state.Scenario != "baseline" {
		t.Fatalf("rejected delete moved selection: %+v", state)
	}
}

func TestParametersCoerceInvalidInput(t *testing.T) {
	srv := newTestServer(t)

	rec := postForm(t, srv, "/api/parameters", url.Values{
		"annualThroughput": {"5000"},
		"tireWeight":       {"6"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("parameters update returned %d: %s", rec.Code, rec.Body)
	}
	if srv.params.AnnualThroughput != 5000 || srv.params.TireWeight != 6 {
		t.Fatalf("parameters not applied: %+v", srv.params)
	}

	postForm(t, srv, "/api/parameters", url.Values{
		"annualThroughput": {"garbage"},
		"tireWeight":       {"0"},
	})
	if srv.params.AnnualThroughput != 3000 || srv.params.TireWeight != 5.4 {
		t.Fatalf("invalid input did not coerce to defaults: %+v", srv.params)
	}
}

func TestProductSaveRejectsYieldOvershoot(t *testing.T) {
	srv := newTestServer(t)

	// Defaults already carry 75% total yield.
	rec := postForm(t, srv, "/api/products", url.Values{
		"name":  {"Textile Fiber"},
		"yield": {"30"},
		"price": {"80"},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for yield overshoot, got %d: %s", rec.Code, rec.Body)
	}

	rec = postForm(t, srv, "/api/products", url.Values{
		"name":  {"Textile Fiber"},
		"yield": {"20"},
		"price": {"80"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("product save returned %d: %s", rec.Code, rec.Body)
	}

	var payload productsPayload
	getJSON(t, srv, "/api/products", &payload)
	if len(payload.Products) != 3 || payload.TotalYield != 95 {
		t.Fatalf("unexpected catalog: %+v", payload)
	}
}

func TestAnalysisRevenueTotals(t *testing.T) {
	srv := newTestServer(t)

	var payload analysisPayload
	getJSON(t, srv, "/api/analysis", &payload)

	// 3000 tires * 5.4 t = 16200 t; 60% @ 230 + 15% @ 150.
	if math.Abs(payload.Summary.AnnualTonnageInput-16200) > 1e-6 {
		t.Fatalf("annualTonnageInput = %v", payload.Summary.AnnualTonnageInput)
	}
	if math.Abs(payload.Summary.AnnualRevenue-2600100) > 1e-3 {
		t.Fatalf("annualRevenue = %v", payload.Summary.AnnualRevenue)
	}
	if len(payload.RevenueScenarios) != 3 {
		t.Fatalf("expected 3 revenue scenarios, got %+v", payload.RevenueScenarios)
	}
}

func TestComparisonEquipmentInvestment(t *testing.T) {
	srv := newTestServer(t)

	var result struct {
		Metrics []struct {
			Name          string  `json:"name"`
			Baseline      float64 `json:"baseline"`
			Proposed      float64 `json:"proposed"`
			PercentChange float64 `json:"percentChange"`
			Outcome       string  `json:"outcome"`
		} `json:"metrics"`
	}
	getJSON(t, srv, "/api/comparison", &result)

	for _, m := range result.Metrics {
		if m.Name != "Equipment Investment" {
			continue
		}
		if m.Baseline != 1060000 || m.Proposed != 1620000 {
			t.Fatalf("unexpected equipment totals: %+v", m)
		}
		if m.Outcome != "negative" {
			t.Fatalf("cost increase should be negative, got %+v", m)
		}
		return
	}
	t.Fatalf("Equipment Investment metric missing: %+v", result)
}
