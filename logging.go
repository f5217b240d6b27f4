package state

// Mutation operations reported through MutationLogEvent.
const (
	OpSet     = "set"
	OpRemove  = "remove"
	OpClear   = "clear"
	OpUndo    = "undo"
	OpRedo    = "redo"
	OpHydrate = "hydrate"
)

// MutationLogEvent describes one committed or vetoed mutation for logging.
// Result is only populated by audit rules, which carry the evaluated
// expression value.
type MutationLogEvent struct {
	Op      string
	Key     string
	Version uint64
	Vetoed  bool
	Result  any
	Err     error
}

// MutationLogger records mutation events.
type MutationLogger interface {
	LogMutation(MutationLogEvent)
}

// MutationLoggerFunc adapts a function to MutationLogger.
type MutationLoggerFunc func(MutationLogEvent)

// LogMutation implements MutationLogger.
func (f MutationLoggerFunc) LogMutation(event MutationLogEvent) {
	if f != nil {
		f(event)
	}
}

type noopMutationLogger struct{}

func (noopMutationLogger) LogMutation(MutationLogEvent) {}
