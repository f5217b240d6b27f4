package state

import (
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-state/internal/hydrate"
)

// DefaultSlotKey is the storage slot used when none is configured.
const DefaultSlotKey = "go-state"

// Persistent reports whether the persistence adapter has been enabled.
func (c *Container) Persistent() bool {
	return c.persist
}

// SlotKey returns the storage slot snapshots are written to.
func (c *Container) SlotKey() string {
	return c.slot
}

// EnablePersistence upgrades the container to persistent. The transition is
// one-way and idempotent: calling it on an already-persistent container is a
// no-op. A non-empty slot override is adopted first. Any snapshot already
// stored under the slot replaces the in-memory table wholesale (decode
// failures propagate), then the resulting table is written back so the slot
// is populated even when the store was empty.
func (c *Container) EnablePersistence(slot ...string) error {
	if c.persist {
		return nil
	}
	if len(slot) > 0 && slot[0] != "" {
		c.slot = slot[0]
	}
	c.persist = true
	if err := c.loadFromStore(); err != nil {
		return err
	}
	return c.flush()
}

// loadFromStore replaces the table with the snapshot stored under the slot
// key, when the store is usable and the slot populated. The version bumps
// when the load changes visible state.
func (c *Container) loadFromStore() error {
	if c.store == nil || !c.store.Available() {
		return nil
	}
	raw, ok, err := c.store.Read(c.slot)
	if err != nil {
		return fmt.Errorf("state: read slot %q: %w", c.slot, err)
	}
	if !ok {
		return nil
	}
	table, err := hydrate.NewDecoder().Decode(hydrate.Context{Slot: c.slot}, []byte(raw))
	if err != nil {
		return fmt.Errorf("state: %w", err)
	}
	changed := len(c.table) > 0 || len(table) > 0
	c.table = table
	if changed {
		c.version++
	}
	return nil
}

// flush serializes the full table to the store. Silent no-op while
// persistence is disabled or the store is absent or unavailable.
func (c *Container) flush() error {
	if !c.persist || c.store == nil || !c.store.Available() {
		return nil
	}
	payload, err := json.Marshal(c.table)
	if err != nil {
		return fmt.Errorf("state: serialize slot %q: %w", c.slot, err)
	}
	if err := c.store.Write(c.slot, string(payload)); err != nil {
		return fmt.Errorf("state: write slot %q: %w", c.slot, err)
	}
	return nil
}
