// Package scenario manages named process variants: the two immutable
// built-in templates and the user-defined custom scenarios persisted
// through a key-value collaborator.
package scenario

import (
	"encoding/json"
	"log"
	"sort"
	"time"

	"github.com/ecotread/tirecycle/internal/process"
)

// StorageKey is the fixed key the full scenario mapping is persisted
// under.
const StorageKey = "scenarios"

// KV is the durable key-value capability the store needs from its
// persistence collaborator.
type KV interface {
	Load(key string) (string, error)
	Save(key, value string) error
}

// Scenario is a named, editable process variant.
type Scenario struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt,omitzero"`
	Process     process.Process `json:"process"`
}

// Store holds the custom scenarios, keyed by generated identifier.
// Built-ins never enter the store.
type Store struct {
	kv        KV
	scenarios map[string]Scenario
}

// NewStore loads the persisted scenarios from kv. Malformed or
// unreadable data degrades to an empty store; it is never fatal.
func NewStore(kv KV) *Store {
	s := &Store{kv: kv, scenarios: make(map[string]Scenario)}

	raw, err := kv.Load(StorageKey)
	if err != nil {
		log.Printf("scenario store: load failed, starting empty: %v", err)
		return s
	}
	if raw == "" {
		return s
	}
	if err := json.Unmarshal([]byte(raw), &s.scenarios); err != nil {
		log.Printf("scenario store: malformed saved data, starting empty: %v", err)
		s.scenarios = make(map[string]Scenario)
	}
	return s
}

// Get returns the scenario with the given id.
func (s *Store) Get(id string) (Scenario, bool) {
	sc, ok := s.scenarios[id]
	return sc, ok
}

// Put registers or replaces a scenario and persists the store. A save
// failure is logged; the in-memory store stays ahead of durable state.
func (s *Store) Put(id string, sc Scenario) {
	s.scenarios[id] = sc
	s.persist()
}

// Delete removes a scenario and persists the store. Missing ids are a
// no-op.
func (s *Store) Delete(id string) {
	if _, ok := s.scenarios[id]; !ok {
		return
	}
	delete(s.scenarios, id)
	s.persist()
}

// Len returns the number of custom scenarios.
func (s *Store) Len() int { return len(s.scenarios) }

// ListEntry pairs a scenario with its identifier for listing.
type ListEntry struct {
	ID       string
	Scenario Scenario
}

// List returns all custom scenarios ordered by creation time, oldest
// first, with the id as a tiebreaker.
func (s *Store) List() []ListEntry {
	entries := make([]ListEntry, 0, len(s.scenarios))
	for id, sc := range s.scenarios {
		entries = append(entries, ListEntry{ID: id, Scenario: sc})
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.Scenario.CreatedAt.Equal(b.Scenario.CreatedAt) {
			return a.Scenario.CreatedAt.Before(b.Scenario.CreatedAt)
		}
		return a.ID < b.ID
	})
	return entries
}

func (s *Store) persist() {
	data, err := json.Marshal(s.scenarios)
	if err != nil {
		log.Printf("scenario store: marshal failed, not persisted: %v", err)
		return
	}
	if err := s.kv.Save(StorageKey, string(data)); err != nil {
		log.Printf("scenario store: save failed, in-memory state ahead of durable state: %v", err)
	}
}
