package telephony

import "fmt"

// CallState represents the lifecycle state of a platform call handle.
type CallState int

const (
	// StateConnecting is the initial state before any signaling progress.
	StateConnecting CallState = iota
	// StateDialing is an outgoing call that has not been answered yet.
	StateDialing
	// StateRinging is an incoming call awaiting answer.
	StateRinging
	// StateActive is a connected call with media flowing.
	StateActive
	// StateHolding is a connected call currently on hold.
	StateHolding
	// StateDisconnected is the final state after the call ends.
	StateDisconnected
	// StateUnknown is reported when the platform gives no usable state.
	StateUnknown
)

// String returns the string representation of the state.
func (s CallState) String() string {
	switch s {
	case StateConnecting:
		return "Connecting"
	case StateDialing:
		return "Dialing"
	case StateRinging:
		return "Ringing"
	case StateActive:
		return "Active"
	case StateHolding:
		return "Holding"
	case StateDisconnected:
		return "Disconnected"
	case StateUnknown:
		return "Unknown"
	default:
		return fmt.Sprintf("Unknown(%d)", s)
	}
}

// IsLive returns true if the call still occupies a line.
func (s CallState) IsLive() bool {
	return s != StateDisconnected
}

// Direction indicates whether the device placed or received the call.
type Direction int

const (
	// DirectionOutgoing - the device placed the call.
	DirectionOutgoing Direction = iota
	// DirectionIncoming - the remote party placed the call.
	DirectionIncoming
)

// String returns the string representation of the direction.
func (d Direction) String() string {
	switch d {
	case DirectionOutgoing:
		return "outgoing"
	case DirectionIncoming:
		return "incoming"
	default:
		return "unknown"
	}
}
