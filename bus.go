package state

// bus is the per-instance observer list. Topics are key names plus one
// wildcard channel; they carry no persistence slot prefix, so reconfiguring
// persistence never orphans subscribers.
type bus struct {
	nextID int
	keyed  map[string][]keyListener
	all    []allListener
}

type keyListener struct {
	id int
	fn func(value any, present bool)
}

type allListener struct {
	id int
	fn func(delta map[string]any)
}

func newBus() *bus {
	return &bus{keyed: map[string][]keyListener{}}
}

// Subscribe registers fn for changes to key and returns its disposer.
// Delivery is synchronous within the mutating call, in registration order.
// Remove delivers a nil value with present=false.
func (c *Container) Subscribe(key string, fn func(value any, present bool)) func() {
	b := c.bus
	b.nextID++
	id := b.nextID
	b.keyed[key] = append(b.keyed[key], keyListener{id: id, fn: fn})
	return func() {
		listeners := b.keyed[key]
		for i, listener := range listeners {
			if listener.id == id {
				b.keyed[key] = append(listeners[:i:i], listeners[i+1:]...)
				return
			}
		}
	}
}

// SubscribeAll registers fn for every change and returns its disposer. The
// delta holds only the changed keys, except for Clear, Undo, Redo and
// replace-mode Hydrate which deliver the full resulting state.
func (c *Container) SubscribeAll(fn func(delta map[string]any)) func() {
	b := c.bus
	b.nextID++
	id := b.nextID
	b.all = append(b.all, allListener{id: id, fn: fn})
	return func() {
		for i, listener := range b.all {
			if listener.id == id {
				b.all = append(b.all[:i:i], b.all[i+1:]...)
				return
			}
		}
	}
}

// emitKey fans out to the listeners registered for key. The list is copied
// first so subscribing or unsubscribing from inside a callback never affects
// the in-flight emission.
func (b *bus) emitKey(key string, value any, present bool) {
	listeners := b.keyed[key]
	if len(listeners) == 0 {
		return
	}
	inFlight := make([]keyListener, len(listeners))
	copy(inFlight, listeners)
	for _, listener := range inFlight {
		listener.fn(value, present)
	}
}

func (b *bus) emitAll(delta map[string]any) {
	if len(b.all) == 0 {
		return
	}
	inFlight := make([]allListener, len(b.all))
	copy(inFlight, b.all)
	for _, listener := range inFlight {
		listener.fn(delta)
	}
}
