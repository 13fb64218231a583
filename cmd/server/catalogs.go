package main

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ecotread/tirecycle/internal/catalog"
	"github.com/ecotread/tirecycle/internal/costing"
	"github.com/ecotread/tirecycle/internal/storage"
)

// Storage keys for the state shared across all scenarios.
const (
	keyParameters   = "parameters"
	keyProducts     = "products"
	keyCapitalCosts = "capital_costs"
)

// loadSharedState loads the global parameters and the product and
// capital cost catalogs from the key-value store. Missing or malformed
// entries degrade to the code-defined defaults.
func (s *server) loadSharedState() {
	s.params = costing.DefaultParams()
	loadKey(s.kv, keyParameters, &s.params)

	s.products = catalog.DefaultProducts()
	loadKey(s.kv, keyProducts, &s.products)

	s.capital = catalog.DefaultCapitalItems()
	loadKey(s.kv, keyCapitalCosts, &s.capital)
}

func loadKey(kv *storage.KV, key string, v any) {
	raw, err := kv.Load(key)
	if err != nil {
		log.Printf("load %s: falling back to defaults: %v", key, err)
		return
	}
	if raw == "" {
		return
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		log.Printf("load %s: malformed saved data, keeping defaults: %v", key, err)
	}
}

func saveKey(kv *storage.KV, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("save %s: marshal failed, not persisted: %v", key, err)
		return
	}
	if err := kv.Save(key, string(data)); err != nil {
		log.Printf("save %s: in-memory state ahead of durable state: %v", key, err)
	}
}

func (s *server) handleParametersUpdate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	defaults := costing.DefaultParams()
	s.params.AnnualThroughput = coercePositive(r.FormValue("annualThroughput"), defaults.AnnualThroughput)
	s.params.TireWeight = coercePositive(r.FormValue("tireWeight"), defaults.TireWeight)
	saveKey(s.kv, keyParameters, s.params)

	writeJSON(w, http.StatusOK, s.params)
}

// coercePositive parses a raw form value, falling back when the input
// is unparsable or not positive.
func coercePositive(raw string, fallback float64) float64 {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

// productRow is a product with its computed output and revenue under
// the current parameters.
type productRow struct {
	catalog.Product
	OutputTons float64 `json:"outputTons"`
	Revenue    float64 `json:"revenue"`
}

type productsPayload struct {
	Products       []productRow       `json:"products"`
	TotalYield     float64            `json:"totalYield"`
	TotalRevenue   float64            `json:"totalRevenue"`
	YieldIndicator catalog.YieldLevel `json:"yieldIndicator"`
}

func (s *server) handleProductsList(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	writeJSON(w, http.StatusOK, s.productsPayload())
}

func (s *server) productsPayload() productsPayload {
	payload := productsPayload{
		Products:       make([]productRow, 0, len(s.products)),
		TotalYield:     s.products.TotalYield(),
		YieldIndicator: s.products.YieldIndicator(),
	}
	annualTonnage := s.params.AnnualTonnage()
	for _, p := range s.products {
		output := annualTonnage * p.YieldPercent / 100
		revenue := output * p.PricePerTon
		payload.TotalRevenue += revenue
		payload.Products = append(payload.Products, productRow{Product: p, OutputTons: output, Revenue: revenue})
	}
	return payload
}

func (s *server) handleProductSave(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := chi.URLParam(r, "id")
	if id == "" {
		id = "product-" + uuid.NewString()
	}
	product := catalog.Product{
		ID:           id,
		Name:         strings.TrimSpace(r.FormValue("name")),
		YieldPercent: coerceNonNegative(r.FormValue("yield")),
		PricePerTon:  coerceNonNegative(r.FormValue("price")),
	}

	if err := s.products.Upsert(product); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	saveKey(s.kv, keyProducts, s.products)

	writeJSON(w, http.StatusOK, s.productsPayload())
}

func (s *server) handleProductDelete(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.products.Delete(chi.URLParam(r, "id"))
	saveKey(s.kv, keyProducts, s.products)

	writeJSON(w, http.StatusOK, s.productsPayload())
}

// capitalRow is a capital cost item with its computed annual
// depreciation.
type capitalRow struct {
	catalog.CapitalItem
	AnnualDepreciation float64 `json:"annualDepreciation"`
}

type capitalPayload struct {
	Items                   []capitalRow `json:"items"`
	TotalCapitalCost        float64      `json:"totalCapitalCost"`
	TotalAnnualDepreciation float64      `json:"totalAnnualDepreciation"`
}

func (s *server) handleCapitalList(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	writeJSON(w, http.StatusOK, s.capitalPayload())
}

func (s *server) capitalPayload() capitalPayload {
	payload := capitalPayload{Items: make([]capitalRow, 0, len(s.capital))}
	for _, item := range s.capital {
		depreciation := item.AnnualDepreciation()
		payload.TotalCapitalCost += item.Cost
		payload.TotalAnnualDepreciation += depreciation
		payload.Items = append(payload.Items, capitalRow{CapitalItem: item, AnnualDepreciation: depreciation})
	}
	return payload
}

func (s *server) handleCapitalSave(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := chi.URLParam(r, "id")
	if id == "" {
		id = "capital-" + uuid.NewString()
	}
	item := catalog.CapitalItem{
		ID:                id,
		Name:              strings.TrimSpace(r.FormValue("name")),
		Cost:              coerceNonNegative(r.FormValue("cost")),
		DepreciationYears: coerceNonNegative(r.FormValue("depreciationYears")),
		Description:       strings.TrimSpace(r.FormValue("description")),
	}

	if err := s.capital.Upsert(item); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	saveKey(s.kv, keyCapitalCosts, s.capital)

	writeJSON(w, http.StatusOK, s.capitalPayload())
}

func (s *server) handleCapitalDelete(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.capital.Delete(chi.URLParam(r, "id"))
	saveKey(s.kv, keyCapitalCosts, s.capital)

	writeJSON(w, http.StatusOK, s.capitalPayload())
}
