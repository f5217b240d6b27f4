package state

import "sync"

// The package-level default container is a convenience for applications that
// want one ambient instance. The primary API is instance-passing; tests
// should pair any use of the default with ResetDefault.

var (
	defaultMu        sync.Mutex
	defaultContainer *Container
)

// Default returns the process-wide default container, lazily constructing a
// non-persistent one on first use.
func Default() *Container {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultContainer == nil {
		defaultContainer, _ = New()
	}
	return defaultContainer
}

// Init configures the default container. With force, or when no default
// exists yet, a fresh container replaces the old one, discarding its history
// and subscribers. Otherwise, when the options request persistence and the
// existing default is not yet persistent, it upgrades in place through the
// persistence enable path instead of being replaced.
func Init(force bool, opts ...Option) (*Container, error) {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultContainer == nil || force {
		container, err := New(opts...)
		if err != nil {
			return nil, err
		}
		defaultContainer = container
		return defaultContainer, nil
	}

	cfg := applyOptions(opts)
	if cfg.persist && !defaultContainer.persist {
		if cfg.store != nil && defaultContainer.store == nil {
			defaultContainer.store = cfg.store
		}
		if err := defaultContainer.EnablePersistence(cfg.slot); err != nil {
			return nil, err
		}
	}
	return defaultContainer, nil
}

// EnableDefaultPersistence enables persistence on the default container,
// constructing it first when needed.
func EnableDefaultPersistence(slot ...string) error {
	return Default().EnablePersistence(slot...)
}

// ResetDefault discards the default container so the next access constructs
// a fresh one. Intended for test teardown.
func ResetDefault() {
	defaultMu.Lock()
	defaultContainer = nil
	defaultMu.Unlock()
}
