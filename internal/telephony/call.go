// Package telephony defines the boundary to the platform telephony stack.
//
// The platform owns call handles and their lifetimes. The session core only
// observes handles and forwards commands to them; it never creates or
// destroys a call itself.
package telephony

import "time"

// Capability bits reported by the platform per call.
const (
	// CapMergeConference - the platform can merge this call natively.
	CapMergeConference uint32 = 1 << 0
	// CapSwapConference - the platform can swap held/active natively.
	CapSwapConference uint32 = 1 << 1
	// CapConference - this handle represents a merged conference.
	CapConference uint32 = 1 << 2
)

// Capabilities is the capability bitmask decoded into flags.
// Decode once per snapshot; never test raw bits in call logic.
type Capabilities struct {
	Merge      bool
	Swap       bool
	Conference bool
}

// DecodeCapabilities expands a platform capability bitmask.
func DecodeCapabilities(bits uint32) Capabilities {
	return Capabilities{
		Merge:      bits&CapMergeConference != 0,
		Swap:       bits&CapSwapConference != 0,
		Conference: bits&CapConference != 0,
	}
}

// Details carries the per-call attributes reported by the platform.
type Details struct {
	// Number is the remote party number as the network presented it.
	Number string
	// DisplayName is the network-provided caller name (CNAP), if any.
	DisplayName string
	// ConnectTime is when the call went active; zero if it never connected.
	ConnectTime time.Time
	// CreationTime is when the handle appeared.
	CreationTime time.Time
	// Direction is incoming or outgoing.
	Direction Direction
	// CapabilityBits is the raw platform capability bitmask.
	CapabilityBits uint32
	// AccountID identifies the line/account the call uses (SIM selection).
	AccountID string
}

// Capabilities decodes the raw capability bitmask.
func (d Details) Capabilities() Capabilities {
	return DecodeCapabilities(d.CapabilityBits)
}

// Observer receives per-handle transition callbacks. Callbacks may arrive
// on arbitrary goroutines.
type Observer interface {
	// StateChanged is called when the call's state changes.
	StateChanged(c Call, state CallState)
	// DetailsChanged is called when the call's details change.
	DetailsChanged(c Call, details Details)
	// ChildrenChanged is called when a conference gains or loses parties.
	ChildrenChanged(c Call, children []Call)
}

// Call is a live call handle owned by the platform.
//
// Observer registration must be torn down symmetrically: every
// RegisterObserver needs a matching UnregisterObserver before the handle
// is dropped, or the platform leaks the subscription.
type Call interface {
	// ID returns a stable identifier for the handle.
	ID() string

	// State returns the current call state.
	State() CallState

	// Details returns the current call details.
	Details() Details

	// Children returns the conference participants, if any.
	Children() []Call

	// Answer accepts a ringing call.
	Answer() error

	// Reject declines a ringing call, optionally with a text reply.
	Reject(message string) error

	// Disconnect hangs up the call.
	Disconnect() error

	// Hold puts the call on hold.
	Hold() error

	// Unhold resumes a held call.
	Unhold() error

	// MergeConference merges this call with its conferenceable peers
	// using the platform's native merge.
	MergeConference() error

	// Conference explicitly joins this call with another handle when the
	// native merge capability is absent.
	Conference(other Call) error

	// SwapConference swaps the active and held calls natively.
	SwapConference() error

	// SplitFromConference pulls this call out of its conference.
	SplitFromConference() error

	// PlayDtmfTone sends a DTMF digit on the call.
	PlayDtmfTone(digit rune) error

	// RegisterObserver subscribes to this handle's transitions.
	RegisterObserver(o Observer)

	// UnregisterObserver removes a previously registered observer.
	UnregisterObserver(o Observer)
}

// Driver delivers handle lifecycle events from the platform.
type Driver interface {
	// SetHandler installs the callbacks for handle add/remove events.
	// Must be called before the driver starts emitting.
	SetHandler(h DriverHandler)
}

// DriverHandler receives handle lifecycle events.
type DriverHandler interface {
	// CallAdded is invoked when the platform starts tracking a call.
	CallAdded(c Call)
	// CallRemoved is invoked when the platform stops tracking a call.
	CallRemoved(c Call)
}
