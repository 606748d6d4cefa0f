package session

// State is the lifecycle position of a capture session.
type State int

const (
	Initializing State = iota
	Running
	Closing
	Closed
)

func (s State) String() string {
	switch s {
	case Initializing:
		return "initializing"
	case Running:
		return "running"
	case Closing:
		return "closing"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}
