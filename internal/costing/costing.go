// Package costing computes operating cost, depreciation, revenue and
// profit aggregates for a recycling process. Calculation is a pure
// function of its inputs; callers recompute on demand.
package costing

import (
	"math"

	"github.com/ecotread/tirecycle/internal/catalog"
	"github.com/ecotread/tirecycle/internal/process"
)

const (
	// Equipment capital is amortized straight-line at 10% per year for
	// step-level daily cost purposes.
	equipmentAnnualRate = 0.10
	daysPerYear         = 365

	// Flat margin applied to cost per ton for the break-even heuristic.
	breakEvenMarginFactor = 1.2
)

// Params are the global throughput parameters shared by all scenarios.
type Params struct {
	AnnualThroughput float64 `json:"annualThroughput"` // tires per year
	TireWeight       float64 `json:"tireWeight"`       // tonnes per tire
}

// DefaultParams returns the default throughput parameters.
func DefaultParams() Params {
	return Params{AnnualThroughput: 3000, TireWeight: 5.4}
}

// DailyTonnage is the daily tonnage capacity implied by the params.
func (p Params) DailyTonnage() float64 {
	return p.AnnualThroughput / daysPerYear * p.TireWeight
}

// AnnualTonnage is the annual tonnage input implied by the params.
func (p Params) AnnualTonnage() float64 {
	return p.AnnualThroughput * p.TireWeight
}

// StepBreakdown splits a step's daily cost into its components.
type StepBreakdown struct {
	Equipment   float64 `json:"equipment"`
	Labor       float64 `json:"labor"`
	Energy      float64 `json:"energy"`
	Maintenance float64 `json:"maintenance"`
}

// StepCost is the computed cost of a single step.
type StepCost struct {
	StepID     string        `json:"stepId"`
	Name       string        `json:"name"`
	Daily      float64       `json:"daily"`
	Annual     float64       `json:"annual"`
	PerTire    float64       `json:"perTire"`
	PerTon     float64       `json:"perTon"`
	Percentage float64       `json:"percentage"`
	Breakdown  StepBreakdown `json:"breakdown"`
}

// ProductRevenue is the computed output and revenue of one product.
type ProductRevenue struct {
	ProductID  string  `json:"productId"`
	Name       string  `json:"name"`
	OutputTons float64 `json:"outputTons"`
	Revenue    float64 `json:"revenue"`
}

// Summary is the full aggregate result over one process.
type Summary struct {
	TotalDaily          float64            `json:"totalDaily"`
	AnnualOperatingCost float64            `json:"annualOperatingCost"`
	AnnualDepreciation  float64            `json:"annualDepreciation"`
	TotalAnnualCost     float64            `json:"totalAnnualCost"`
	TotalCapitalCost    float64            `json:"totalCapitalCost"`
	CostPerTire         float64            `json:"costPerTire"`
	CostPerTon          float64            `json:"costPerTon"`
	TotalEquipment      float64            `json:"totalEquipment"`
	StepCosts           []StepCost         `json:"stepCosts"`
	DepartmentCosts     map[string]float64 `json:"departmentCosts"`

	AnnualTonnageInput float64          `json:"annualTonnageInput"`
	TotalYield         float64          `json:"totalYield"`
	AnnualRevenue      float64          `json:"annualRevenue"`
	AnnualProfit       float64          `json:"annualProfit"`
	ProfitMargin       float64          `json:"profitMargin"`
	ProductRevenues    []ProductRevenue `json:"productRevenues"`

	BreakEvenRevenue float64 `json:"breakEvenRevenue"`
}

// CalculateStep computes the cost figures for a single step. Division
// by a zero or negative throughput is not clamped; per-unit figures may
// be Inf or NaN and display layers are responsible for fallback.
func CalculateStep(step process.Step, params Params) StepCost {
	dailyEquipment := step.EquipmentCost * equipmentAnnualRate / daysPerYear
	daily := dailyEquipment + step.LaborCost + step.EnergyCost + step.MaintenanceCost
	annual := daily * daysPerYear

	return StepCost{
		StepID:  step.ID,
		Name:    step.Name,
		Daily:   daily,
		Annual:  annual,
		PerTire: annual / params.AnnualThroughput,
		PerTon:  daily / params.DailyTonnage(),
		Breakdown: StepBreakdown{
			Equipment:   dailyEquipment,
			Labor:       step.LaborCost,
			Energy:      step.EnergyCost,
			Maintenance: step.MaintenanceCost,
		},
	}
}

// Calculate computes the full aggregate over a process under the given
// parameters and catalogs.
func Calculate(p process.Process, params Params, products catalog.Products, capital catalog.CapitalItems) Summary {
	summary := Summary{
		StepCosts:       make([]StepCost, 0, len(p)),
		DepartmentCosts: make(map[string]float64),
	}

	for _, step := range p {
		sc := CalculateStep(step, params)
		summary.TotalDaily += sc.Daily
		summary.AnnualOperatingCost += sc.Annual
		summary.TotalEquipment += step.EquipmentCost
		summary.DepartmentCosts[process.MergedDepartment(step.Department)] += sc.Daily
		summary.StepCosts = append(summary.StepCosts, sc)
	}

	for i := range summary.StepCosts {
		summary.StepCosts[i].Percentage = share(summary.StepCosts[i].Daily, summary.TotalDaily)
	}

	for _, item := range capital {
		summary.TotalCapitalCost += item.Cost
		summary.AnnualDepreciation += item.AnnualDepreciation()
	}
	summary.TotalAnnualCost = summary.AnnualOperatingCost + summary.AnnualDepreciation

	summary.AnnualTonnageInput = params.AnnualTonnage()
	summary.ProductRevenues = make([]ProductRevenue, 0, len(products))
	for _, product := range products {
		output := summary.AnnualTonnageInput * product.YieldPercent / 100
		revenue := output * product.PricePerTon
		summary.TotalYield += product.YieldPercent
		summary.AnnualRevenue += revenue
		summary.ProductRevenues = append(summary.ProductRevenues, ProductRevenue{
			ProductID:  product.ID,
			Name:       product.Name,
			OutputTons: output,
			Revenue:    revenue,
		})
	}

	summary.AnnualProfit = summary.AnnualRevenue - summary.TotalAnnualCost
	if summary.AnnualRevenue > 0 {
		summary.ProfitMargin = summary.AnnualProfit / summary.AnnualRevenue * 100
	}

	summary.CostPerTire = summary.TotalAnnualCost / params.AnnualThroughput
	summary.CostPerTon = summary.TotalDaily / params.DailyTonnage()
	summary.BreakEvenRevenue = summary.CostPerTon * breakEvenMarginFactor

	return summary
}

// share returns cost as a percentage of total, rounded to one decimal.
// A zero total yields 0 rather than NaN.
func share(cost, total float64) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(cost/total*1000) / 10
}

// RevenueScenario is an illustrative price point used for charting in
// the flat-margin model. These are presentation constants, not part of
// the computational contract.
type RevenueScenario struct {
	Name        string  `json:"name"`
	PricePerTon float64 `json:"pricePerTon"`
}

// DefaultRevenueScenarios returns the conservative/average/optimistic
// price points.
func DefaultRevenueScenarios() []RevenueScenario {
	return []RevenueScenario{
		{Name: "Conservative", PricePerTon: 150},
		{Name: "Average", PricePerTon: 200},
		{Name: "Optimistic", PricePerTon: 250},
	}
}
