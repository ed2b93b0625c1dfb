package invoker

// State tracks the lifecycle of one training invocation.
type State int32

const (
	StateNotStarted State = iota
	StateLaunching
	StateRunning
	StateCompleted
	StateFailed
)

// String implements fmt.Stringer for log output and the status endpoint.
func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateLaunching:
		return "launching"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}
