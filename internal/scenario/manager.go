package scenario

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ecotread/tirecycle/internal/process"
)

// BaseCurrent is the Create base key meaning "whatever scenario is
// currently selected".
const BaseCurrent = "current"

var (
	// ErrNameRequired is returned when a scenario is created without a
	// name, and by SaveCurrent when the current scenario is a built-in
	// and the caller must supply a name for the copy instead.
	ErrNameRequired = errors.New("scenario name is required")

	// ErrBuiltinScenario is returned when an operation would delete a
	// built-in scenario.
	ErrBuiltinScenario = errors.New("built-in scenarios cannot be deleted")
)

// Manager orchestrates scenario selection, creation, saving, deletion
// and step editing over a Store. Built-in templates are never mutated:
// the first edit while a built-in is selected forks it into a new
// custom scenario, applies the edit there, and switches to it, all
// within the one call.
type Manager struct {
	store   *Store
	current Ref
	now     func() time.Time
}

// NewManager returns a manager over the given store, with the baseline
// scenario selected.
func NewManager(store *Store) *Manager {
	return &Manager{store: store, current: Baseline(), now: time.Now}
}

// Current returns the reference to the selected scenario.
func (m *Manager) Current() Ref { return m.current }

// Store exposes the underlying store for listing.
func (m *Manager) Store() *Store { return m.store }

// Resolve maps an external key to a scenario reference. Keys that are
// neither built-in nor present in the store resolve to the baseline.
func (m *Manager) Resolve(key string) Ref {
	switch key {
	case KeyBaseline:
		return Baseline()
	case KeyProposed:
		return Proposed()
	}
	if _, ok := m.store.Get(key); ok {
		return Custom(key)
	}
	return Baseline()
}

// Select switches the current scenario to the one identified by key,
// falling back to the baseline for unknown keys.
func (m *Manager) Select(key string) Ref {
	m.current = m.Resolve(key)
	return m.current
}

// ProcessFor returns a copy of the process the reference points at.
// A custom reference whose scenario has been deleted falls back to the
// baseline template.
func (m *Manager) ProcessFor(ref Ref) process.Process {
	switch ref.Kind() {
	case KindBaseline:
		return BaselineProcess()
	case KindProposed:
		return ProposedProcess()
	default:
		if sc, ok := m.store.Get(ref.Key()); ok {
			return sc.Process.Clone()
		}
		return BaselineProcess()
	}
}

// CurrentProcess returns a copy of the selected scenario's process.
func (m *Manager) CurrentProcess() process.Process {
	return m.ProcessFor(m.current)
}

// CurrentScenario returns the custom scenario record currently
// selected, or false when a built-in is selected.
func (m *Manager) CurrentScenario() (Scenario, bool) {
	if m.current.IsBuiltin() {
		return Scenario{}, false
	}
	return m.store.Get(m.current.Key())
}

// Create registers a new custom scenario copied from the named base
// ("baseline", "proposed", "current", or a custom id; anything else
// falls back to the baseline), persists it, and selects it.
func (m *Manager) Create(name, description, baseKey string) (Ref, error) {
	if name == "" {
		return m.current, ErrNameRequired
	}

	var base process.Process
	if baseKey == BaseCurrent {
		base = m.CurrentProcess()
	} else {
		base = m.ProcessFor(m.Resolve(baseKey))
	}

	id := newScenarioID()
	m.store.Put(id, Scenario{
		Name:        name,
		Description: description,
		CreatedAt:   m.now().UTC(),
		Process:     base,
	})
	m.current = Custom(id)
	return m.current, nil
}

// SaveCurrent overwrites the selected custom scenario's process with
// its live state and stamps UpdatedAt. When a built-in is selected it
// returns ErrNameRequired: built-ins are never updated in place, and
// the caller should prompt for a name and call Create with the
// "current" base instead.
func (m *Manager) SaveCurrent() error {
	if m.current.IsBuiltin() {
		return ErrNameRequired
	}
	sc, ok := m.store.Get(m.current.Key())
	if !ok {
		return nil
	}
	sc.UpdatedAt = m.now().UTC()
	m.store.Put(m.current.Key(), sc)
	return nil
}

// DeleteCurrent removes the selected custom scenario and falls back to
// the baseline. Deleting a built-in fails with ErrBuiltinScenario and
// leaves the store unchanged.
func (m *Manager) DeleteCurrent() error {
	if m.current.IsBuiltin() {
		return ErrBuiltinScenario
	}
	m.store.Delete(m.current.Key())
	m.current = Baseline()
	return nil
}

// AddStep appends a step to the current process, forking a built-in
// first. A missing step id is generated. Returns the reference that
// received the edit.
func (m *Manager) AddStep(step process.Step) Ref {
	if step.ID == "" {
		step.ID = newStepID()
	}
	if step.Description == "" {
		step.Description = "Custom process step"
	}
	m.mutate(func(p *process.Process) { p.Append(step) })
	return m.current
}

// UpdateStep replaces the fields of the step with the given id in the
// current process, forking a built-in first. An unknown id is a silent
// no-op and does not fork.
func (m *Manager) UpdateStep(id string, step process.Step) Ref {
	if _, ok := m.CurrentProcess().Find(id); !ok {
		return m.current
	}
	m.mutate(func(p *process.Process) { p.Replace(id, step) })
	return m.current
}

// RemoveStep deletes the step with the given id from the current
// process, forking a built-in first. An unknown id is a silent no-op
// and does not fork.
func (m *Manager) RemoveStep(id string) Ref {
	if _, ok := m.CurrentProcess().Find(id); !ok {
		return m.current
	}
	m.mutate(func(p *process.Process) { p.Remove(id) })
	return m.current
}

// mutate applies fn to the current scenario's process, forking a
// built-in into a new custom scenario first, and persists the result.
func (m *Manager) mutate(fn func(*process.Process)) {
	if m.current.IsBuiltin() {
		kind := m.current.Kind()
		id := newScenarioID()
		m.store.Put(id, Scenario{
			Name:        modifiedName(kind),
			Description: modifiedDescription(kind),
			CreatedAt:   m.now().UTC(),
			Process:     m.CurrentProcess(),
		})
		m.current = Custom(id)
	}

	sc, ok := m.store.Get(m.current.Key())
	if !ok {
		return
	}
	fn(&sc.Process)
	sc.UpdatedAt = m.now().UTC()
	m.store.Put(m.current.Key(), sc)
}

// Option is one entry of the scenario dropdown.
type Option struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Options returns the selectable scenarios: the two built-ins followed
// by the custom scenarios in creation order.
func (m *Manager) Options() []Option {
	opts := []Option{
		{Key: KeyBaseline, Label: builtinDisplayName(KindBaseline)},
		{Key: KeyProposed, Label: builtinDisplayName(KindProposed)},
	}
	for _, entry := range m.store.List() {
		opts = append(opts, Option{Key: entry.ID, Label: entry.Scenario.Name})
	}
	return opts
}

func newScenarioID() string { return "scenario-" + uuid.NewString() }

func newStepID() string { return "custom-" + uuid.NewString() }
