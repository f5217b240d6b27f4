package state

import (
	"reflect"

	"github.com/goliatone/go-state/internal/hydrate"
)

type hydrateConfig struct {
	replace       bool
	emit          bool
	onlyNew       bool
	recordHistory bool
}

// HydrateOption configures one Hydrate call.
type HydrateOption func(*hydrateConfig)

// HydrateReplace swaps the entire table for the snapshot instead of merging.
func HydrateReplace() HydrateOption {
	return func(cfg *hydrateConfig) {
		cfg.replace = true
	}
}

// OnlyNew skips snapshot keys that already hold a value in the table. This
// is the server-render path: values restored locally are not clobbered by
// server defaults.
func OnlyNew() HydrateOption {
	return func(cfg *hydrateConfig) {
		cfg.onlyNew = true
	}
}

// SilentHydrate suppresses the wildcard notification.
func SilentHydrate() HydrateOption {
	return func(cfg *hydrateConfig) {
		cfg.emit = false
	}
}

// RecordHistory pushes a pre-hydration snapshot onto the undo stack when the
// hydration changes anything.
func RecordHistory() HydrateOption {
	return func(cfg *hydrateConfig) {
		cfg.recordHistory = true
	}
}

// Hydrate applies an external snapshot to the table, bypassing middleware
// and per-key notifications. The default mode merges: a key is skipped when
// OnlyNew is set and the key is already present, when its value is the Skip
// marker, or when it equals the current value. Replace mode swaps the table
// wholesale. The version bumps and the snapshot persists only when at least
// one key actually changed; the return value reports that.
func (c *Container) Hydrate(snapshot map[string]any, opts ...HydrateOption) (bool, error) {
	cfg := hydrateConfig{emit: true}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if cfg.replace {
		return c.hydrateReplace(snapshot, cfg)
	}
	return c.hydrateMerge(snapshot, cfg)
}

// HydrateJSON decodes a serialized snapshot (e.g. a server-rendered blob)
// and applies it via Hydrate. Decode failures propagate before any state is
// touched.
func (c *Container) HydrateJSON(payload []byte, opts ...HydrateOption) (bool, error) {
	snapshot, err := hydrate.NewDecoder().Decode(hydrate.Context{Slot: c.slot}, payload)
	if err != nil {
		return false, err
	}
	return c.Hydrate(snapshot, opts...)
}

func (c *Container) hydrateReplace(snapshot map[string]any, cfg hydrateConfig) (bool, error) {
	changed := len(c.table) > 0 || len(snapshot) > 0
	if !changed {
		return false, nil
	}
	if cfg.recordHistory {
		c.history = append(c.history, c.snapshot())
	}
	table := make(map[string]any, len(snapshot))
	for key, value := range snapshot {
		if value == Skip {
			continue
		}
		table[key] = value
	}
	c.table = table
	c.version++
	if cfg.emit {
		c.bus.emitAll(c.snapshot())
	}
	c.logger.LogMutation(MutationLogEvent{Op: OpHydrate, Version: c.version})
	c.emitActivity("state.hydrate", "")
	return true, c.flush()
}

func (c *Container) hydrateMerge(snapshot map[string]any, cfg hydrateConfig) (bool, error) {
	delta := map[string]any{}
	for _, key := range sortedKeys(snapshot) {
		incoming := snapshot[key]
		if incoming == Skip {
			continue
		}
		current, exists := c.table[key]
		if cfg.onlyNew && exists {
			continue
		}
		if exists && reflect.DeepEqual(current, incoming) {
			continue
		}
		delta[key] = incoming
	}
	if len(delta) == 0 {
		return false, nil
	}

	if cfg.recordHistory {
		c.history = append(c.history, c.snapshot())
	}
	for key, value := range delta {
		c.table[key] = value
	}
	c.version++
	if cfg.emit {
		c.bus.emitAll(delta)
	}
	c.logger.LogMutation(MutationLogEvent{Op: OpHydrate, Version: c.version})
	c.emitActivity("state.hydrate", "")
	return true, c.flush()
}
