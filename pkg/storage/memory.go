package storage

import "sync"

// Memory is a minimal in-memory Store intended for tests and examples. It
// makes no durability promises beyond the lifetime of the process.
type Memory struct {
	mu    sync.RWMutex
	slots map[string]string
}

// NewMemory constructs an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{slots: map[string]string{}}
}

// Seed pre-populates slot with payload, replacing any previous value. Handy
// for arranging persistence fixtures.
func (s *Memory) Seed(slot, payload string) {
	s.mu.Lock()
	s.slots[slot] = payload
	s.mu.Unlock()
}

func (s *Memory) Available() bool {
	return s != nil
}

func (s *Memory) Read(slot string) (string, bool, error) {
	s.mu.RLock()
	payload, ok := s.slots[slot]
	s.mu.RUnlock()
	return payload, ok, nil
}

func (s *Memory) Write(slot string, payload string) error {
	s.mu.Lock()
	s.slots[slot] = payload
	s.mu.Unlock()
	return nil
}

// Len returns the number of populated slots.
func (s *Memory) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.slots)
}
