package state

// MutationContext is the transient record threaded through the middleware
// chain for one Set call. Before-middleware sees the value as it currently
// stands, including overrides applied by earlier middleware.
type MutationContext struct {
	Key   string
	Value any
}

// Middleware intercepts one mutation. It receives the mutation context and an
// independent snapshot of the current table, and returns a Decision plus an
// optional error. Errors propagate to the Set caller unwrapped; in the before
// phase they prevent the commit, in the after phase the commit has already
// happened.
type Middleware func(ctx *MutationContext, snapshot map[string]any) (Decision, error)

type decisionKind int

const (
	decisionContinue decisionKind = iota
	decisionAbort
	decisionOverride
)

// Decision is a middleware's verdict on the in-flight mutation. The zero
// value continues the chain unchanged.
type Decision struct {
	kind  decisionKind
	value any
}

// Continue lets the mutation proceed with the current value.
func Continue() Decision {
	return Decision{}
}

// Abort vetoes the whole mutation: no history entry, no commit, no
// notification, no persistence write. Only honored in the before phase.
func Abort() Decision {
	return Decision{kind: decisionAbort}
}

// Override replaces the context value for subsequent middleware and for the
// eventual commit. Only honored in the before phase.
func Override(value any) Decision {
	return Decision{kind: decisionOverride, value: value}
}

// MiddlewareToken identifies one registered middleware for removal. Function
// values are not comparable in Go, so registration hands back the identity.
// Tokens are unique per container, not across containers.
type MiddlewareToken uint64

type middlewareEntry struct {
	token MiddlewareToken
	fn    Middleware
}

// UseBefore appends fn to the before chain and returns its removal token.
// Before-middleware runs in registration order and may veto or override.
func (c *Container) UseBefore(fn Middleware) MiddlewareToken {
	c.nextToken++
	c.before = append(c.before, middlewareEntry{token: c.nextToken, fn: fn})
	return c.nextToken
}

// UseAfter appends fn to the after chain and returns its removal token.
// After-middleware runs post-commit in registration order; its decisions are
// ignored, only errors propagate.
func (c *Container) UseAfter(fn Middleware) MiddlewareToken {
	c.nextToken++
	c.after = append(c.after, middlewareEntry{token: c.nextToken, fn: fn})
	return c.nextToken
}

// RemoveBefore removes the before-middleware registered under token. No-op
// when the token is unknown.
func (c *Container) RemoveBefore(token MiddlewareToken) {
	c.before = removeMiddleware(c.before, token)
}

// RemoveAfter removes the after-middleware registered under token.
func (c *Container) RemoveAfter(token MiddlewareToken) {
	c.after = removeMiddleware(c.after, token)
}

func removeMiddleware(entries []middlewareEntry, token MiddlewareToken) []middlewareEntry {
	for i, entry := range entries {
		if entry.token == token {
			return append(entries[:i:i], entries[i+1:]...)
		}
	}
	return entries
}
