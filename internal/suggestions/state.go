package suggestions

// State is the connection state of a Channel
type State int

const (
	Disabled State = iota
	Connecting
	Connected
	Disconnected
)

func (s State) String() string {
	switch s {
	case Disabled:
		return "disabled"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Disconnected:
		return "disconnected"
	}
	return "unknown"
}

// Status is a snapshot of the channel state. PendingRetry is only ever true
// while Disconnected.
type Status struct {
	State        State `json:"-"`
	PendingRetry bool  `json:"pending_retry"`
	Failures     int   `json:"consecutive_failures"`
}
