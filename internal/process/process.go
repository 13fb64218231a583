// Package process defines the step and process data model for a
// tire-recycling production pipeline.
package process

import "strings"

// Departments a step can be tagged with.
const (
	DeptCollection              = "collection"
	DeptTireTransportation      = "tire-transportation"
	DeptProcessing              = "processing"
	DeptFeedstockTransportation = "feedstock-transportation"
	DeptProductManufacturing    = "product-manufacturing"
	DeptProductDistribution     = "product-distribution"

	// DeptTransportation is the display/aggregation super-group that the
	// three transport-like departments are merged into.
	DeptTransportation = "transportation"
)

// Step is one stage of the recycling/manufacturing process.
type Step struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Department      string  `json:"department"`
	EquipmentCost   float64 `json:"equipmentCost"`
	LaborCost       float64 `json:"laborCost"`
	EnergyCost      float64 `json:"energyCost"`
	MaintenanceCost float64 `json:"maintenanceCost"`
	DurationHours   float64 `json:"duration"`
	Description     string  `json:"description"`
}

// Process is an ordered sequence of steps making up one production
// pipeline. Order is display order only; cost aggregation does not
// depend on it.
type Process []Step

// Clone returns a deep copy of the process.
func (p Process) Clone() Process {
	out := make(Process, len(p))
	copy(out, p)
	return out
}

// Find returns the step with the given id, or false if no step has it.
func (p Process) Find(id string) (Step, bool) {
	for _, step := range p {
		if step.ID == id {
			return step, true
		}
	}
	return Step{}, false
}

// Append adds a step to the end of the process. Appending a duplicate
// id is a no-op returning false; id generation is the caller's job.
func (p *Process) Append(step Step) bool {
	if _, exists := p.Find(step.ID); exists {
		return false
	}
	*p = append(*p, step)
	return true
}

// Replace overwrites the fields of the step with the given id, keeping
// its position. Returns false if no step has the id.
func (p Process) Replace(id string, step Step) bool {
	for i := range p {
		if p[i].ID == id {
			step.ID = id
			p[i] = step
			return true
		}
	}
	return false
}

// Remove deletes the step with the given id, preserving the order of
// the remaining steps. Returns false if no step has the id.
func (p *Process) Remove(id string) bool {
	for i := range *p {
		if (*p)[i].ID == id {
			*p = append((*p)[:i], (*p)[i+1:]...)
			return true
		}
	}
	return false
}

// MergedDepartment maps a step department to its aggregation bucket:
// the three transport-like departments roll into "transportation",
// every other department stands alone.
func MergedDepartment(department string) string {
	switch department {
	case DeptTireTransportation, DeptFeedstockTransportation, DeptProductDistribution:
		return DeptTransportation
	default:
		return department
	}
}

// FormatDepartment turns a department tag into a display label, e.g.
// "tire-transportation" becomes "Tire transportation".
func FormatDepartment(department string) string {
	if department == "" {
		return ""
	}
	label := strings.ReplaceAll(department, "-", " ")
	return strings.ToUpper(label[:1]) + label[1:]
}

// GroupByDepartment groups steps into their merged department buckets,
// preserving step order within each bucket. Used by the swim-lane
// rendering layer.
func GroupByDepartment(p Process) map[string][]Step {
	groups := make(map[string][]Step)
	for _, step := range p {
		dept := MergedDepartment(step.Department)
		groups[dept] = append(groups[dept], step)
	}
	return groups
}
