package state

import (
	"github.com/goliatone/go-state/pkg/activity"
	"github.com/goliatone/go-state/pkg/storage"
)

// Option configures a container at construction.
type Option func(*config)

type config struct {
	initial map[string]any
	store   storage.Store
	slot    string
	persist bool
	logger  MutationLogger
	emitter *activity.Emitter
}

func applyOptions(opts []Option) config {
	cfg := config{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithInitial seeds the table with values. When persistence is enabled at
// construction, restored values win and initial values only fill gaps.
func WithInitial(values map[string]any) Option {
	return func(cfg *config) {
		cfg.initial = values
	}
}

// WithStore wires the byte store snapshots are persisted to. A store alone
// does not enable persistence; combine with WithPersistence or call
// EnablePersistence later.
func WithStore(store storage.Store) Option {
	return func(cfg *config) {
		cfg.store = store
	}
}

// WithSlotKey sets the storage slot name. Defaults to DefaultSlotKey.
func WithSlotKey(slot string) Option {
	return func(cfg *config) {
		cfg.slot = slot
	}
}

// WithPersistence enables the persistence adapter at construction: the table
// loads from the store before initial values apply, and every committed
// mutation flushes the full table back out.
func WithPersistence() Option {
	return func(cfg *config) {
		cfg.persist = true
	}
}

// WithLogger attaches a mutation logger. The container stays silent by
// default.
func WithLogger(logger MutationLogger) Option {
	return func(cfg *config) {
		if logger == nil {
			cfg.logger = noopMutationLogger{}
			return
		}
		cfg.logger = logger
	}
}

// WithActivityEmitter forwards committed mutations to an activity emitter.
// Emission failures never fail the mutation; they surface through the
// mutation logger.
func WithActivityEmitter(emitter *activity.Emitter) Option {
	return func(cfg *config) {
		cfg.emitter = emitter
	}
}
