package state_test

import (
	"testing"

	state "github.com/goliatone/go-state"
	"github.com/goliatone/go-state/pkg/storage"
)

func TestDefaultLazilyConstructs(t *testing.T) {
	t.Cleanup(state.ResetDefault)
	state.ResetDefault()

	c := state.Default()
	if c == nil {
		t.Fatal("expected a lazily constructed default container")
	}
	if c.Persistent() {
		t.Fatal("lazy default must not be persistent")
	}
	if state.Default() != c {
		t.Fatal("default container is not stable across calls")
	}
}

func TestInitForceReplacesDefault(t *testing.T) {
	t.Cleanup(state.ResetDefault)
	state.ResetDefault()

	first := state.Default()
	if err := first.Set("k", 1); err != nil {
		t.Fatalf("set: %v", err)
	}

	second, err := state.Init(true, state.WithInitial(map[string]any{"fresh": true}))
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if second == first {
		t.Fatal("force init should replace the instance")
	}
	if _, ok := second.Get("k"); ok {
		t.Fatal("forced replacement carried old state over")
	}
	if state.Default() != second {
		t.Fatal("default slot not updated")
	}
}

func TestInitUpgradesExistingInstanceInPlace(t *testing.T) {
	t.Cleanup(state.ResetDefault)
	state.ResetDefault()

	existing := state.Default()
	if err := existing.Set("draft", "kept"); err != nil {
		t.Fatalf("set: %v", err)
	}

	store := storage.NewMemory()
	upgraded, err := state.Init(false,
		state.WithStore(store),
		state.WithSlotKey("app"),
		state.WithPersistence(),
	)
	if err != nil {
		t.Fatalf("init: %v", err)
	}

	if upgraded != existing {
		t.Fatal("upgrade should keep the same instance")
	}
	if !upgraded.Persistent() {
		t.Fatal("instance was not upgraded to persistent")
	}
	if value, _ := upgraded.Get("draft"); value != "kept" {
		t.Fatalf("upgrade dropped in-memory state: %v", value)
	}
	if _, ok, _ := store.Read("app"); !ok {
		t.Fatal("upgrade should flush the table to the store")
	}
}

func TestInitWithoutForceOrPersistenceKeepsInstance(t *testing.T) {
	t.Cleanup(state.ResetDefault)
	state.ResetDefault()

	existing := state.Default()
	same, err := state.Init(false, state.WithInitial(map[string]any{"ignored": true}))
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if same != existing {
		t.Fatal("non-forced init replaced the instance")
	}
	if _, ok := same.Get("ignored"); ok {
		t.Fatal("non-forced init must not reseed state")
	}
}

func TestEnableDefaultPersistence(t *testing.T) {
	t.Cleanup(state.ResetDefault)
	state.ResetDefault()

	// Without a store this is a silent no-op end to end.
	if err := state.EnableDefaultPersistence("slot"); err != nil {
		t.Fatalf("enable default persistence: %v", err)
	}
	if !state.Default().Persistent() {
		t.Fatal("default container should report persistent")
	}
}

func TestResetDefaultDiscardsInstance(t *testing.T) {
	t.Cleanup(state.ResetDefault)
	state.ResetDefault()

	first := state.Default()
	state.ResetDefault()
	if state.Default() == first {
		t.Fatal("reset did not discard the default instance")
	}
}
