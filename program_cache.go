package state

import "sync"

// ProgramCache stores compiled expression programs keyed by expression
// strings. Evaluators consult it before compiling.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// MapProgramCache is a ProgramCache backed by a map. Safe for use from
// multiple containers sharing one set of compiled rules.
type MapProgramCache struct {
	mu       sync.RWMutex
	programs map[string]any
}

// NewMapProgramCache constructs an empty cache.
func NewMapProgramCache() *MapProgramCache {
	return &MapProgramCache{programs: map[string]any{}}
}

func (c *MapProgramCache) Get(key string) (any, bool) {
	c.mu.RLock()
	program, ok := c.programs[key]
	c.mu.RUnlock()
	return program, ok
}

func (c *MapProgramCache) Set(key string, value any) {
	c.mu.Lock()
	c.programs[key] = value
	c.mu.Unlock()
}
