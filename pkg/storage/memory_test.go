package storage_test

import (
	"testing"

	"github.com/goliatone/go-state/pkg/storage"
)

func TestMemoryReadMissingSlot(t *testing.T) {
	store := storage.NewMemory()
	payload, ok, err := store.Read("missing")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if ok || payload != "" {
		t.Fatalf("expected absent slot, got %q (present=%v)", payload, ok)
	}
}

func TestMemoryWriteReadRoundTrip(t *testing.T) {
	store := storage.NewMemory()
	if err := store.Write("slot", `{"a":1}`); err != nil {
		t.Fatalf("write: %v", err)
	}

	payload, ok, err := store.Read("slot")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !ok || payload != `{"a":1}` {
		t.Fatalf("unexpected payload %q (present=%v)", payload, ok)
	}
	if store.Len() != 1 {
		t.Fatalf("expected one slot, got %d", store.Len())
	}
}

func TestMemoryWriteReplaces(t *testing.T) {
	store := storage.NewMemory()
	store.Seed("slot", "old")
	if err := store.Write("slot", "new"); err != nil {
		t.Fatalf("write: %v", err)
	}
	payload, _, _ := store.Read("slot")
	if payload != "new" {
		t.Fatalf("expected replacement, got %q", payload)
	}
}

func TestMemoryAvailable(t *testing.T) {
	if !storage.NewMemory().Available() {
		t.Fatal("memory store should always be available")
	}
}
