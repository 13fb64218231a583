package main

import (
	"encoding/json"
	"errors"
	"log"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/ecotread/tirecycle/internal/catalog"
	"github.com/ecotread/tirecycle/internal/compare"
	"github.com/ecotread/tirecycle/internal/config"
	"github.com/ecotread/tirecycle/internal/costing"
	"github.com/ecotread/tirecycle/internal/process"
	"github.com/ecotread/tirecycle/internal/scenario"
	"github.com/ecotread/tirecycle/internal/storage"
)

// server composes the calculator's units: the scenario manager, the
// shared catalogs/parameters, and the key-value store they persist
// through. Handlers serialize on mu; each operation runs to completion
// before the next observes the current-scenario pointer.
type server struct {
	mu       sync.Mutex
	mgr      *scenario.Manager
	kv       *storage.KV
	params   costing.Params
	products catalog.Products
	capital  catalog.CapitalItems
}

func main() {
	cfg := config.Load()

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	if err := storage.Migrate(db, "migrations"); err != nil {
		log.Fatalf("failed to run database migrations: %v", err)
	}

	kv := storage.NewKV(db)
	srv := &server{
		mgr: scenario.NewManager(scenario.NewStore(kv)),
		kv:  kv,
	}
	srv.loadSharedState()

	addr := ":" + cfg.Port
	log.Printf("listening on %s", addr)
	if err := http.ListenAndServe(addr, srv.routes()); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func (s *server) routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/api/state", s.handleState)
	r.Get("/api/analysis", s.handleAnalysis)
	r.Get("/api/comparison", s.handleComparison)

	r.Post("/api/scenarios", s.handleScenarioCreate)
	r.Post("/api/scenarios/select", s.handleScenarioSelect)
	r.Post("/api/scenarios/save", s.handleScenarioSave)
	r.Post("/api/scenarios/delete", s.handleScenarioDelete)

	r.Post("/api/steps", s.handleStepCreate)
	r.Post("/api/steps/{id}", s.handleStepUpdate)
	r.Post("/api/steps/{id}/delete", s.handleStepDelete)

	r.Post("/api/parameters", s.handleParametersUpdate)

	r.Get("/api/products", s.handleProductsList)
	r.Post("/api/products", s.handleProductSave)
	r.Post("/api/products/{id}", s.handleProductSave)
	r.Post("/api/products/{id}/delete", s.handleProductDelete)

	r.Get("/api/capital-costs", s.handleCapitalList)
	r.Post("/api/capital-costs", s.handleCapitalSave)
	r.Post("/api/capital-costs/{id}", s.handleCapitalSave)
	r.Post("/api/capital-costs/{id}/delete", s.handleCapitalDelete)

	return r
}

// diagramGroup is one swim lane of the process diagram: a merged
// department with its steps and their computed costs.
type diagramGroup struct {
	Department string `json:"department"`
	Label      string `json:"label"`
	Steps      []struct {
		Step process.Step     `json:"step"`
		Cost costing.StepCost `json:"cost"`
	} `json:"steps"`
}

type statePayload struct {
	Scenario  string            `json:"scenario"`
	IsBuiltin bool              `json:"isBuiltin"`
	Options   []scenario.Option `json:"options"`
	Params    costing.Params    `json:"params"`
	Process   process.Process   `json:"process"`
	Diagram   []diagramGroup    `json:"diagram"`
}

func (s *server) handleState(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.mgr.Current()
	p := s.mgr.CurrentProcess()
	writeJSON(w, http.StatusOK, statePayload{
		Scenario:  current.Key(),
		IsBuiltin: current.IsBuiltin(),
		Options:   s.mgr.Options(),
		Params:    s.params,
		Process:   p,
		Diagram:   buildDiagram(p, s.params),
	})
}

// buildDiagram groups steps into swim lanes in order of each merged
// department's first appearance in the process.
func buildDiagram(p process.Process, params costing.Params) []diagramGroup {
	var groups []diagramGroup
	index := make(map[string]int)

	for _, step := range p {
		dept := process.MergedDepartment(step.Department)
		i, ok := index[dept]
		if !ok {
			i = len(groups)
			index[dept] = i
			groups = append(groups, diagramGroup{
				Department: dept,
				Label:      process.FormatDepartment(dept),
			})
		}
		groups[i].Steps = append(groups[i].Steps, struct {
			Step process.Step     `json:"step"`
			Cost costing.StepCost `json:"cost"`
		}{Step: step, Cost: sanitizeStepCost(costing.CalculateStep(step, params))})
	}
	return groups
}

// finite replaces NaN and infinite values with 0. The cost engine does
// not clamp degenerate throughput; the serving layer must not let the
// resulting non-numeric values reach displayed output (or break JSON
// encoding).
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func sanitizeStepCost(sc costing.StepCost) costing.StepCost {
	sc.PerTire = finite(sc.PerTire)
	sc.PerTon = finite(sc.PerTon)
	return sc
}

func sanitizeSummary(s costing.Summary) costing.Summary {
	s.CostPerTire = finite(s.CostPerTire)
	s.CostPerTon = finite(s.CostPerTon)
	s.BreakEvenRevenue = finite(s.BreakEvenRevenue)
	s.ProfitMargin = finite(s.ProfitMargin)
	for i := range s.StepCosts {
		s.StepCosts[i] = sanitizeStepCost(s.StepCosts[i])
	}
	return s
}

type analysisPayload struct {
	Scenario         string                    `json:"scenario"`
	Summary          costing.Summary           `json:"summary"`
	RevenueScenarios []costing.RevenueScenario `json:"revenueScenarios"`
}

func (s *server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	writeJSON(w, http.StatusOK, analysisPayload{
		Scenario:         s.mgr.Current().Key(),
		Summary:          sanitizeSummary(costing.Calculate(s.mgr.CurrentProcess(), s.params, s.products, s.capital)),
		RevenueScenarios: costing.DefaultRevenueScenarios(),
	})
}

func (s *server) handleComparison(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	baseline := s.mgr.ProcessFor(scenario.Baseline())
	proposed := s.mgr.ProcessFor(scenario.Proposed())

	result := compare.Run(baseline, proposed, s.params, s.products, s.capital)
	result.Baseline = sanitizeSummary(result.Baseline)
	result.Proposed = sanitizeSummary(result.Proposed)
	for i, m := range result.Metrics {
		m.Baseline = finite(m.Baseline)
		m.Proposed = finite(m.Proposed)
		m.Difference = finite(m.Difference)
		m.PercentChange = finite(m.PercentChange)
		result.Metrics[i] = m
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *server) handleScenarioCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ref, err := s.mgr.Create(
		strings.TrimSpace(r.FormValue("name")),
		strings.TrimSpace(r.FormValue("description")),
		r.FormValue("base"),
	)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"scenario": ref.Key()})
}

func (s *server) handleScenarioSelect(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ref := s.mgr.Select(r.FormValue("id"))
	writeJSON(w, http.StatusOK, map[string]string{"scenario": ref.Key()})
}

func (s *server) handleScenarioSave(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.mgr.SaveCurrent(); err != nil {
		// A built-in cannot be updated in place; the client should ask
		// for a name and create a copy instead.
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"scenario": s.mgr.Current().Key()})
}

func (s *server) handleScenarioDelete(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.mgr.DeleteCurrent(); err != nil {
		if errors.Is(err, scenario.ErrBuiltinScenario) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"scenario": s.mgr.Current().Key()})
}

func (s *server) handleStepCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ref := s.mgr.AddStep(parseStepForm(r))
	writeJSON(w, http.StatusCreated, map[string]string{"scenario": ref.Key()})
}

func (s *server) handleStepUpdate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ref := s.mgr.UpdateStep(chi.URLParam(r, "id"), parseStepForm(r))
	writeJSON(w, http.StatusOK, map[string]string{"scenario": ref.Key()})
}

func (s *server) handleStepDelete(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ref := s.mgr.RemoveStep(chi.URLParam(r, "id"))
	writeJSON(w, http.StatusOK, map[string]string{"scenario": ref.Key()})
}

// parseStepForm reads step fields from the form. Cost and duration
// values are coerced: unparsable or negative input becomes 0.
func parseStepForm(r *http.Request) process.Step {
	return process.Step{
		Name:            strings.TrimSpace(r.FormValue("name")),
		Department:      strings.TrimSpace(r.FormValue("department")),
		EquipmentCost:   coerceNonNegative(r.FormValue("equipmentCost")),
		LaborCost:       coerceNonNegative(r.FormValue("laborCost")),
		EnergyCost:      coerceNonNegative(r.FormValue("energyCost")),
		MaintenanceCost: coerceNonNegative(r.FormValue("maintenanceCost")),
		DurationHours:   coerceNonNegative(r.FormValue("duration")),
		Description:     strings.TrimSpace(r.FormValue("description")),
	}
}

// coerceNonNegative turns a raw form value into a non-negative number,
// defaulting unparsable input to 0.
func coerceNonNegative(raw string) float64 {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || value < 0 {
		return 0
	}
	return value
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
