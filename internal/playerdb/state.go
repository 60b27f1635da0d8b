package playerdb

// State is the Updater's position in its linear update cycle:
// Idle -> BackedUp -> Read -> Merged -> Written -> Idle.
type State int32

const (
	StateIdle State = iota
	StateBackedUp
	StateRead
	StateMerged
	StateWritten
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateBackedUp:
		return "backed-up"
	case StateRead:
		return "read"
	case StateMerged:
		return "merged"
	case StateWritten:
		return "written"
	default:
		return "unknown"
	}
}
