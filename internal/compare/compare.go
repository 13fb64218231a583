// Package compare produces the baseline-versus-proposed delta table.
package compare

import (
	"github.com/ecotread/tirecycle/internal/catalog"
	"github.com/ecotread/tirecycle/internal/costing"
	"github.com/ecotread/tirecycle/internal/process"
)

// Outcome labels the direction of a change. For cost metrics an
// increase is negative and a decrease positive; consumers rely on this
// sign convention.
type Outcome string

const (
	OutcomePositive Outcome = "positive"
	OutcomeNegative Outcome = "negative"
	OutcomeNeutral  Outcome = "neutral"
)

// Metric is one row of the comparison table.
type Metric struct {
	Name          string  `json:"name"`
	Baseline      float64 `json:"baseline"`
	Proposed      float64 `json:"proposed"`
	Difference    float64 `json:"difference"`
	PercentChange float64 `json:"percentChange"`
	Outcome       Outcome `json:"outcome"`
}

// Result pairs the metric rows with the two full aggregates they were
// derived from.
type Result struct {
	Metrics  []Metric        `json:"metrics"`
	Baseline costing.Summary `json:"baselineSummary"`
	Proposed costing.Summary `json:"proposedSummary"`
}

// Run computes the full aggregate for the baseline and proposed
// processes and derives the fixed list of comparison metrics. The
// engine is pure, so neither computation disturbs whatever scenario
// the caller has selected.
func Run(baseline, proposed process.Process, params costing.Params, products catalog.Products, capital catalog.CapitalItems) Result {
	b := costing.Calculate(baseline, params, products, capital)
	p := costing.Calculate(proposed, params, products, capital)

	return Result{
		Baseline: b,
		Proposed: p,
		Metrics: []Metric{
			metric("Total Daily Cost", b.TotalDaily, p.TotalDaily),
			metric("Cost Per Ton", b.CostPerTon, p.CostPerTon),
			metric("Annual Cost", b.AnnualOperatingCost, p.AnnualOperatingCost),
			metric("Equipment Investment", b.TotalEquipment, p.TotalEquipment),
		},
	}
}

// metric builds one cost-metric row. The percentage change is 0 when
// the baseline is 0 rather than propagating a non-numeric value.
func metric(name string, baseline, proposed float64) Metric {
	difference := proposed - baseline
	percent := 0.0
	if baseline != 0 {
		percent = difference / baseline * 100
	}

	outcome := OutcomeNeutral
	switch {
	case difference > 0:
		outcome = OutcomeNegative
	case difference < 0:
		outcome = OutcomePositive
	}

	return Metric{
		Name:          name,
		Baseline:      baseline,
		Proposed:      proposed,
		Difference:    difference,
		PercentChange: percent,
		Outcome:       outcome,
	}
}
