package scenario

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/ecotread/tirecycle/internal/process"
)

// fakeKV is an in-memory persistence collaborator with switchable
// failure modes.
type fakeKV struct {
	data    map[string]string
	loadErr error
	saveErr error
	saveCnt int
}

func newFakeKV() *fakeKV { return &fakeKV{data: make(map[string]string)} }

func (f *fakeKV) Load(key string) (string, error) {
	if f.loadErr != nil {
		return "", f.loadErr
	}
	return f.data[key], nil
}

func (f *fakeKV) Save(key, value string) error {
	f.saveCnt++
	if f.saveErr != nil {
		return f.saveErr
	}
	f.data[key] = value
	return nil
}

func TestStoreDegradesToEmptyOnMalformedData(t *testing.T) {
	kv := newFakeKV()
	kv.data[StorageKey] = "{not json"

	store := NewStore(kv)
	if store.Len() != 0 {
		t.Fatalf("expected empty store, got %d scenarios", store.Len())
	}
}

func TestStoreDegradesToEmptyOnLoadFailure(t *testing.T) {
	kv := newFakeKV()
	kv.loadErr = errors.New("disk gone")

	store := NewStore(kv)
	if store.Len() != 0 {
		t.Fatalf("expected empty store, got %d scenarios", store.Len())
	}
}

func TestStoreRoundTripsThroughKV(t *testing.T) {
	kv := newFakeKV()
	store := NewStore(kv)

	mgr := NewManager(store)
	ref, err := mgr.Create("Lower energy", "Cheaper shredding line", KeyProposed)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	reloaded := NewStore(kv)
	sc, ok := reloaded.Get(ref.Key())
	if !ok {
		t.Fatalf("scenario %q not found after reload", ref.Key())
	}
	if sc.Name != "Lower energy" || sc.Description != "Cheaper shredding line" {
		t.Fatalf("unexpected reloaded scenario: %+v", sc)
	}
	if len(sc.Process) != len(ProposedProcess()) {
		t.Fatalf("reloaded process has %d steps, want %d", len(sc.Process), len(ProposedProcess()))
	}
	if sc.CreatedAt.IsZero() {
		t.Fatal("createdAt not persisted")
	}
}

func TestPersistedJSONShape(t *testing.T) {
	kv := newFakeKV()
	mgr := NewManager(NewStore(kv))

	ref, err := mgr.Create("Variant A", "", KeyBaseline)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	var raw map[string]map[string]json.RawMessage
	if err := json.Unmarshal([]byte(kv.data[StorageKey]), &raw); err != nil {
		t.Fatalf("persisted payload is not a scenario mapping: %v", err)
	}
	entry, ok := raw[ref.Key()]
	if !ok {
		t.Fatalf("payload missing scenario key %q: %v", ref.Key(), raw)
	}
	for _, field := range []string{"name", "description", "createdAt", "process"} {
		if _, ok := entry[field]; !ok {
			t.Fatalf("persisted scenario missing field %q", field)
		}
	}
	if _, ok := entry["updatedAt"]; ok {
		t.Fatal("updatedAt should be omitted until first update")
	}
	if !strings.Contains(string(entry["process"]), `"equipmentCost"`) {
		t.Fatalf("step JSON fields not in wire format: %s", entry["process"])
	}
}

func TestSelectFallsBackToBaseline(t *testing.T) {
	mgr := NewManager(NewStore(newFakeKV()))

	if ref := mgr.Select("no-such-scenario"); ref != Baseline() {
		t.Fatalf("expected fallback to baseline, got %+v", ref)
	}
	if ref := mgr.Select(KeyProposed); ref != Proposed() {
		t.Fatalf("expected proposed, got %+v", ref)
	}
}

func TestCreateRequiresName(t *testing.T) {
	store := NewStore(newFakeKV())
	mgr := NewManager(store)

	_, err := mgr.Create("", "desc", KeyBaseline)
	if !errors.Is(err, ErrNameRequired) {
		t.Fatalf("expected ErrNameRequired, got %v", err)
	}
	if store.Len() != 0 {
		t.Fatal("rejected create mutated the store")
	}
	if mgr.Current() != Baseline() {
		t.Fatalf("rejected create moved selection: %+v", mgr.Current())
	}
}

func TestCreateDeepCopiesBase(t *testing.T) {
	mgr := NewManager(NewStore(newFakeKV()))

	ref, err := mgr.Create("Variant", "", KeyBaseline)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if ref.IsBuiltin() {
		t.Fatalf("create returned a builtin ref: %+v", ref)
	}

	mgr.UpdateStep("shredding", process.Step{Name: "Cheap Shredding", Department: process.DeptProcessing})

	baseline := BaselineProcess()
	step, _ := baseline.Find("shredding")
	if step.Name != "Tire Shredding & Steel Separation" {
		t.Fatalf("baseline template mutated: %+v", step)
	}
	edited, _ := mgr.CurrentProcess().Find("shredding")
	if edited.Name != "Cheap Shredding" {
		t.Fatalf("edit not applied to custom scenario: %+v", edited)
	}
}

func TestEditWhileBuiltinForksIntoModifiedScenario(t *testing.T) {
	store := NewStore(newFakeKV())
	mgr := NewManager(store)
	mgr.Select(KeyProposed)

	ref := mgr.UpdateStep("ai-processing", process.Step{Name: "Tuned AI Line", Department: process.DeptProcessing, LaborCost: 250})

	if ref.IsBuiltin() {
		t.Fatalf("edit did not fork off the builtin: %+v", ref)
	}
	sc, ok := store.Get(ref.Key())
	if !ok {
		t.Fatal("forked scenario not registered")
	}
	if sc.Name != "Modified Proposed" {
		t.Fatalf("unexpected fork name %q", sc.Name)
	}
	if got, _ := sc.Process.Find("ai-processing"); got.Name != "Tuned AI Line" {
		t.Fatalf("edit not applied to fork: %+v", got)
	}

	// The builtin template, re-fetched, is untouched.
	original, _ := ProposedProcess().Find("ai-processing")
	if original.Name != "AI-Powered Processing Line" {
		t.Fatalf("builtin template mutated: %+v", original)
	}
}

func TestAddAndRemoveStepForkOnlyWhenEffective(t *testing.T) {
	store := NewStore(newFakeKV())
	mgr := NewManager(store)

	// Removing an unknown step while viewing a builtin must not fork.
	if ref := mgr.RemoveStep("does-not-exist"); !ref.IsBuiltin() {
		t.Fatalf("no-op removal forked a scenario: %+v", ref)
	}
	if store.Len() != 0 {
		t.Fatalf("no-op removal registered %d scenarios", store.Len())
	}

	ref := mgr.AddStep(process.Step{Name: "Pyrolysis", Department: process.DeptProcessing, EnergyCost: 900})
	if ref.IsBuiltin() || store.Len() != 1 {
		t.Fatalf("add step did not fork exactly once: ref=%+v len=%d", ref, store.Len())
	}
	p := mgr.CurrentProcess()
	added := p[len(p)-1]
	if added.Name != "Pyrolysis" || added.ID == "" || added.Description == "" {
		t.Fatalf("unexpected appended step: %+v", added)
	}

	if got := mgr.RemoveStep(added.ID); got != ref {
		t.Fatalf("removal switched scenario: %+v", got)
	}
	if _, ok := mgr.CurrentProcess().Find(added.ID); ok {
		t.Fatal("step not removed")
	}
}

func TestDeleteProtectionForBuiltins(t *testing.T) {
	store := NewStore(newFakeKV())
	mgr := NewManager(store)
	mgr.Create("Variant", "", KeyBaseline)
	mgr.Select(KeyProposed)

	if err := mgr.DeleteCurrent(); !errors.Is(err, ErrBuiltinScenario) {
		t.Fatalf("expected ErrBuiltinScenario, got %v", err)
	}
	if store.Len() != 1 {
		t.Fatalf("store changed by rejected delete: %d scenarios", store.Len())
	}
	if mgr.Current() != Proposed() {
		t.Fatalf("rejected delete moved selection: %+v", mgr.Current())
	}
}

func TestDeleteCurrentResetsToBaseline(t *testing.T) {
	store := NewStore(newFakeKV())
	mgr := NewManager(store)
	ref, _ := mgr.Create("Variant", "", KeyBaseline)

	if err := mgr.DeleteCurrent(); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := store.Get(ref.Key()); ok {
		t.Fatal("scenario still in store after delete")
	}
	if mgr.Current() != Baseline() {
		t.Fatalf("expected baseline after delete, got %+v", mgr.Current())
	}
}

func TestSaveCurrent(t *testing.T) {
	store := NewStore(newFakeKV())
	mgr := NewManager(store)

	// On a builtin, saving means "create a copy": the caller must
	// supply a name.
	if err := mgr.SaveCurrent(); !errors.Is(err, ErrNameRequired) {
		t.Fatalf("expected ErrNameRequired on builtin save, got %v", err)
	}

	ref, _ := mgr.Create("Variant", "", KeyBaseline)
	if err := mgr.SaveCurrent(); err != nil {
		t.Fatalf("save current: %v", err)
	}
	sc, _ := store.Get(ref.Key())
	if sc.UpdatedAt.IsZero() {
		t.Fatal("save did not stamp updatedAt")
	}
}

func TestSaveFailureDoesNotBlockInMemoryOperations(t *testing.T) {
	kv := newFakeKV()
	kv.saveErr = errors.New("disk full")
	store := NewStore(kv)
	mgr := NewManager(store)

	ref, err := mgr.Create("Variant", "", KeyBaseline)
	if err != nil {
		t.Fatalf("create with failing persistence: %v", err)
	}
	if _, ok := store.Get(ref.Key()); !ok {
		t.Fatal("scenario missing from in-memory store")
	}
	if kv.saveCnt == 0 {
		t.Fatal("persistence was never attempted")
	}
}

func TestOptionsListsBuiltinsThenCustoms(t *testing.T) {
	mgr := NewManager(NewStore(newFakeKV()))
	mgr.Create("Alpha", "", KeyBaseline)
	mgr.Create("Beta", "", KeyProposed)

	opts := mgr.Options()
	if len(opts) != 4 {
		t.Fatalf("expected 4 options, got %+v", opts)
	}
	if opts[0].Key != KeyBaseline || opts[1].Key != KeyProposed {
		t.Fatalf("builtins not first: %+v", opts)
	}
	if opts[2].Label != "Alpha" || opts[3].Label != "Beta" {
		t.Fatalf("customs not in creation order: %+v", opts)
	}
}
