package state

import (
	"context"
	"sort"

	"github.com/goliatone/go-state/pkg/activity"
	"github.com/goliatone/go-state/pkg/storage"
	"github.com/google/uuid"
)

// Skip marks an entry that SetMany should ignore. It lets callers build
// update maps where "leave this key alone" is representable while nil stays
// a storable value.
var Skip any = skipValue{}

type skipValue struct{}

// Container is an in-memory key/value state table with middleware,
// subscriptions, undo/redo history and optional persistence. Not safe for
// concurrent use; confine each instance to one goroutine.
type Container struct {
	id      string
	table   map[string]any
	version uint64

	before    []middlewareEntry
	after     []middlewareEntry
	nextToken MiddlewareToken

	bus *bus

	history []map[string]any
	future  []map[string]any

	store   storage.Store
	slot    string
	persist bool

	logger  MutationLogger
	emitter *activity.Emitter
}

// New constructs a container. Construction fails only when persistence is
// requested and the store holds a snapshot that cannot be decoded.
func New(opts ...Option) (*Container, error) {
	cfg := applyOptions(opts)
	c := &Container{
		id:      uuid.NewString(),
		table:   map[string]any{},
		bus:     newBus(),
		slot:    cfg.slot,
		store:   cfg.store,
		logger:  cfg.logger,
		emitter: cfg.emitter,
	}
	if c.slot == "" {
		c.slot = DefaultSlotKey
	}
	if c.logger == nil {
		c.logger = noopMutationLogger{}
	}

	if cfg.persist {
		c.persist = true
		if err := c.loadFromStore(); err != nil {
			return nil, err
		}
	}

	// Initial values fill gaps only: anything restored from the store wins.
	seeded := false
	for _, key := range sortedKeys(cfg.initial) {
		if _, ok := c.table[key]; ok {
			continue
		}
		c.table[key] = cfg.initial[key]
		seeded = true
	}
	if seeded && c.persist {
		if err := c.flush(); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// ID returns the container's stable instance identity. Subscription topics
// are scoped per instance, never to the persistence slot key.
func (c *Container) ID() string {
	return c.id
}

// Version returns the monotonic mutation counter. It strictly increases on
// every committed mutation, so equal versions mean an identical table.
func (c *Container) Version() uint64 {
	return c.version
}

// Get returns the last value committed for key, if any. Pure read.
func (c *Container) Get(key string) (any, bool) {
	value, ok := c.table[key]
	return value, ok
}

// GetAll returns an independent shallow copy of the table.
func (c *Container) GetAll() map[string]any {
	return c.snapshot()
}

// Len returns the number of keys currently present.
func (c *Container) Len() int {
	return len(c.table)
}

// Keys returns the present keys in sorted order.
func (c *Container) Keys() []string {
	return sortedKeys(c.table)
}

// Set runs the full mutation protocol for one key: before middleware (which
// may veto or override), history push, commit, per-key then wildcard
// notification, after middleware, persistence flush. A veto returns nil with
// no observable side effect. Middleware errors propagate unwrapped.
func (c *Container) Set(key string, value any) error {
	mctx := &MutationContext{Key: key, Value: value}

	for _, entry := range c.before {
		decision, err := entry.fn(mctx, c.snapshot())
		if err != nil {
			return err
		}
		switch decision.kind {
		case decisionAbort:
			c.logger.LogMutation(MutationLogEvent{Op: OpSet, Key: key, Version: c.version, Vetoed: true})
			return nil
		case decisionOverride:
			mctx.Value = decision.value
		}
	}

	c.history = append(c.history, c.snapshot())
	c.table[key] = mctx.Value
	c.version++

	c.bus.emitKey(key, mctx.Value, true)
	c.bus.emitAll(map[string]any{key: mctx.Value})

	for _, entry := range c.after {
		if _, err := entry.fn(mctx, c.snapshot()); err != nil {
			return err
		}
	}

	c.logger.LogMutation(MutationLogEvent{Op: OpSet, Key: key, Version: c.version})
	c.emitActivity("state.set", key)
	return c.flush()
}

// SetMany applies Set once per entry, skipping values equal to Skip. Each
// entry runs the full mutation protocol, so middleware observes one context
// per key, not a batch. Entries apply in sorted key order so repeated calls
// behave deterministically.
func (c *Container) SetMany(updates map[string]any) error {
	for _, key := range sortedKeys(updates) {
		value := updates[key]
		if value == Skip {
			continue
		}
		if err := c.Set(key, value); err != nil {
			return err
		}
	}
	return nil
}

// Remove deletes key when present and notifies its per-key subscribers with
// an absent value. Remove runs no middleware and pushes no history entry, so
// it cannot be undone. No-op for a missing key.
func (c *Container) Remove(key string) error {
	if _, ok := c.table[key]; !ok {
		return nil
	}
	delete(c.table, key)
	c.version++
	c.bus.emitKey(key, nil, false)

	c.logger.LogMutation(MutationLogEvent{Op: OpRemove, Key: key, Version: c.version})
	c.emitActivity("state.remove", key)
	return c.flush()
}

// Clear empties the table and notifies wildcard subscribers with the empty
// resulting state. Like Remove it runs no middleware and pushes no history.
func (c *Container) Clear() error {
	c.table = map[string]any{}
	c.version++
	c.bus.emitAll(map[string]any{})

	c.logger.LogMutation(MutationLogEvent{Op: OpClear, Version: c.version})
	c.emitActivity("state.clear", "")
	return c.flush()
}

// snapshot returns an independent shallow copy of the live table.
func (c *Container) snapshot() map[string]any {
	out := make(map[string]any, len(c.table))
	for key, value := range c.table {
		out[key] = value
	}
	return out
}

func (c *Container) emitActivity(verb, key string) {
	if c.emitter == nil || !c.emitter.Enabled() {
		return
	}
	err := c.emitter.Emit(context.Background(), activity.Event{
		Verb:        verb,
		Key:         key,
		ContainerID: c.id,
		Metadata:    map[string]any{"version": c.version},
	})
	if err != nil {
		c.logger.LogMutation(MutationLogEvent{Op: "activity", Key: key, Version: c.version, Err: err})
	}
}

func sortedKeys(table map[string]any) []string {
	keys := make([]string, 0, len(table))
	for key := range table {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
