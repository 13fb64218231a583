package scenario

// Kind discriminates the scenario reference variants.
type Kind int

const (
	KindBaseline Kind = iota
	KindProposed
	KindCustom
)

// Keys of the two built-in scenarios.
const (
	KeyBaseline = "baseline"
	KeyProposed = "proposed"
)

// Ref identifies a scenario: one of the two built-in templates, or a
// custom scenario by its store key. The zero value is the baseline.
type Ref struct {
	kind Kind
	id   string
}

// Baseline returns a reference to the built-in baseline scenario.
func Baseline() Ref { return Ref{kind: KindBaseline} }

// Proposed returns a reference to the built-in proposed scenario.
func Proposed() Ref { return Ref{kind: KindProposed} }

// Custom returns a reference to the custom scenario with the given id.
func Custom(id string) Ref { return Ref{kind: KindCustom, id: id} }

// Kind reports which variant this reference is.
func (r Ref) Kind() Kind { return r.kind }

// IsBuiltin reports whether the reference points at a built-in
// template.
func (r Ref) IsBuiltin() bool { return r.kind != KindCustom }

// Key returns the external identifier: "baseline", "proposed", or the
// custom scenario's store key.
func (r Ref) Key() string {
	switch r.kind {
	case KindBaseline:
		return KeyBaseline
	case KindProposed:
		return KeyProposed
	default:
		return r.id
	}
}
