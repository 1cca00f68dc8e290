// internal/protocol/state.go
package protocol

// State is the session lifecycle. Transitions only move forward:
// Idle -> Configuring -> Streaming -> Stopping -> Closed, with Stopping
// reachable from every earlier state.
type State int

const (
	Idle State = iota
	Configuring
	Streaming
	Stopping
	Closed
)

var stateNames = [...]string{"IDLE", "CONFIGURING", "STREAMING", "STOPPING", "CLOSED"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "UNKNOWN"
	}
	return stateNames[s]
}
