// Package storage defines the byte-store contract a state container persists
// its snapshots to, plus a small set of ready-to-use implementations.
//
// Responsibilities:
//   - Store only reads/writes one opaque payload per slot key.
//   - The container owns serialization; stores never inspect payloads.
//   - An unavailable store is a valid state: the container treats every
//     operation against it as a silent no-op.
//
// Implementations: Memory (tests and examples), File (one JSON document per
// slot under a directory) and SQLite (single slots table, durable).
package storage

// Store persists one opaque payload per slot key.
type Store interface {
	// Available reports whether the store can currently serve reads and
	// writes. Callers are expected to check it before Read/Write and treat
	// false as "persistence disabled".
	Available() bool

	// Read returns the payload stored under slot. The boolean is false when
	// the slot has never been written.
	Read(slot string) (string, bool, error)

	// Write stores payload under slot, replacing any previous value.
	Write(slot string, payload string) error
}
