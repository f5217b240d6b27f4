// Package state implements a framework-agnostic, in-memory key/value state
// container with change notification, interception middleware, time-travel
// history, and optional durable persistence.
//
// Responsibilities:
//   - Container owns one key/value table plus a version counter that bumps on
//     every committed mutation, so bindings can memoize snapshots cheaply.
//   - Before/after middleware chains run synchronously around every Set and
//     may veto or override the value on the way in.
//   - Per-key and wildcard subscribers receive synchronous notifications in
//     registration order; per-key fires before wildcard within one mutation.
//   - Undo/redo stacks hold independent pre-mutation snapshots.
//   - Persistence is a lazily-enabled, one-way upgrade against a
//     storage.Store; an absent or unavailable store is always a silent no-op.
//
// Control flow for one Set:
//
//	before middleware -> history push -> commit + version bump ->
//	per-key emit -> wildcard emit -> after middleware -> persistence flush
//
// A Container is owned by a single logical thread of control. Every public
// operation runs to completion before returning and callbacks may re-enter
// the same instance, so the container takes no locks; confine each instance
// to one goroutine. Independent instances share nothing except, optionally,
// the same storage.Store under distinct slot keys.
package state
