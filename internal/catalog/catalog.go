// Package catalog holds the process-wide product and capital cost
// catalogs. Both are shared across all scenarios and are not versioned
// per scenario.
package catalog

import (
	"errors"
	"fmt"
)

// ErrEmptyName is returned when a catalog entry is added or edited
// without a name.
var ErrEmptyName = errors.New("name is required")

// Product is one saleable output of the recycling process.
type Product struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	YieldPercent float64 `json:"yield"`
	PricePerTon  float64 `json:"price"`
}

// CapitalItem is a one-time capital investment. DepreciationYears of 0
// means the cost is never amortized (e.g. land).
type CapitalItem struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Cost              float64 `json:"cost"`
	DepreciationYears float64 `json:"depreciationYears"`
	Description       string  `json:"description"`
}

// AnnualDepreciation returns the item's straight-line annual
// depreciation, or 0 for items that are never amortized.
func (c CapitalItem) AnnualDepreciation() float64 {
	if c.DepreciationYears <= 0 {
		return 0
	}
	return c.Cost / c.DepreciationYears
}

// YieldLevel classifies the total product yield for display.
type YieldLevel string

const (
	YieldValid   YieldLevel = "valid"
	YieldWarning YieldLevel = "warning"
	YieldInvalid YieldLevel = "invalid"
)

// Products is the editable product catalog.
type Products []Product

// TotalYield sums the yield percentages across all products.
func (ps Products) TotalYield() float64 {
	total := 0.0
	for _, p := range ps {
		total += p.YieldPercent
	}
	return total
}

// YieldIndicator classifies the current total yield: invalid above
// 100%, warning above 95%, valid otherwise.
func (ps Products) YieldIndicator() YieldLevel {
	total := ps.TotalYield()
	switch {
	case total > 100:
		return YieldInvalid
	case total > 95:
		return YieldWarning
	default:
		return YieldValid
	}
}

// Find returns the product with the given id, or false.
func (ps Products) Find(id string) (Product, bool) {
	for _, p := range ps {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// Upsert adds the product, or replaces the one sharing its id. The
// yield-sum check is a soft constraint enforced only here, at edit
// time: if the resulting total yield would exceed 100% the catalog is
// left unchanged and an error is returned.
func (ps *Products) Upsert(p Product) error {
	if p.Name == "" {
		return ErrEmptyName
	}

	total := p.YieldPercent
	for _, existing := range *ps {
		if existing.ID != p.ID {
			total += existing.YieldPercent
		}
	}
	if total > 100 {
		return fmt.Errorf("total yield %.1f%% exceeds 100%%", total)
	}

	for i := range *ps {
		if (*ps)[i].ID == p.ID {
			(*ps)[i] = p
			return nil
		}
	}
	*ps = append(*ps, p)
	return nil
}

// SetYield updates one product's yield in place. Missing ids are a
// no-op. Inline table edits bypass the yield-sum check; the indicator
// reports the overshoot instead.
func (ps Products) SetYield(id string, yieldPercent float64) {
	for i := range ps {
		if ps[i].ID == id {
			ps[i].YieldPercent = yieldPercent
			return
		}
	}
}

// SetPrice updates one product's price in place. Missing ids are a
// no-op.
func (ps Products) SetPrice(id string, pricePerTon float64) {
	for i := range ps {
		if ps[i].ID == id {
			ps[i].PricePerTon = pricePerTon
			return
		}
	}
}

// Delete removes the product with the given id. Missing ids are a
// no-op.
func (ps *Products) Delete(id string) {
	for i := range *ps {
		if (*ps)[i].ID == id {
			*ps = append((*ps)[:i], (*ps)[i+1:]...)
			return
		}
	}
}

// CapitalItems is the editable capital cost catalog.
type CapitalItems []CapitalItem

// Find returns the item with the given id, or false.
func (cs CapitalItems) Find(id string) (CapitalItem, bool) {
	for _, c := range cs {
		if c.ID == id {
			return c, true
		}
	}
	return CapitalItem{}, false
}

// Upsert adds the item, or replaces the one sharing its id.
func (cs *CapitalItems) Upsert(item CapitalItem) error {
	if item.Name == "" {
		return ErrEmptyName
	}
	for i := range *cs {
		if (*cs)[i].ID == item.ID {
			(*cs)[i] = item
			return nil
		}
	}
	*cs = append(*cs, item)
	return nil
}

// Delete removes the item with the given id. Missing ids are a no-op.
func (cs *CapitalItems) Delete(id string) {
	for i := range *cs {
		if (*cs)[i].ID == id {
			*cs = append((*cs)[:i], (*cs)[i+1:]...)
			return
		}
	}
}

// DefaultProducts returns the default product catalog.
func DefaultProducts() Products {
	return Products{
		{ID: "rubber-crumb", Name: "Rubber Crumb", YieldPercent: 60, PricePerTon: 230},
		{ID: "steel-wire", Name: "Steel Wire", YieldPercent: 15, PricePerTon: 150},
	}
}

// DefaultCapitalItems returns the default capital cost catalog.
func DefaultCapitalItems() CapitalItems {
	return CapitalItems{
		{ID: "land", Name: "Land Purchase", Cost: 500000, DepreciationYears: 0, Description: "Land acquisition for facility"},
		{ID: "building", Name: "Building & Infrastructure", Cost: 1200000, DepreciationYears: 25, Description: "Facility construction and infrastructure"},
		{ID: "permits", Name: "Permits & Legal", Cost: 50000, DepreciationYears: 5, Description: "Environmental permits and legal setup"},
	}
}
