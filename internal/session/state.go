// Package session aggregates live call handles into one published
// call-session snapshot and exposes the in-call command surface.
package session

import (
	"fmt"
	"time"

	"github.com/sebas/callkeeper/internal/identity"
	"github.com/sebas/callkeeper/internal/telephony"
)

// Status is the caller-facing status of the session's primary call.
type Status int

const (
	// StatusConnecting - signaling started, no further progress yet.
	StatusConnecting Status = iota
	// StatusRinging - incoming call awaiting answer.
	StatusRinging
	// StatusDialing - outgoing call awaiting answer.
	StatusDialing
	// StatusActive - connected.
	StatusActive
	// StatusOnHold - connected but held.
	StatusOnHold
	// StatusDisconnected - ended.
	StatusDisconnected
	// StatusUnknown - the platform reported no usable state.
	StatusUnknown
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusConnecting:
		return "Connecting"
	case StatusRinging:
		return "Ringing"
	case StatusDialing:
		return "Dialing"
	case StatusActive:
		return "Active"
	case StatusOnHold:
		return "OnHold"
	case StatusDisconnected:
		return "Disconnected"
	case StatusUnknown:
		return "Unknown"
	default:
		return fmt.Sprintf("Unknown(%d)", s)
	}
}

// statusOf maps a platform call state to a session status.
func statusOf(s telephony.CallState) Status {
	switch s {
	case telephony.StateConnecting:
		return StatusConnecting
	case telephony.StateRinging:
		return StatusRinging
	case telephony.StateDialing:
		return StatusDialing
	case telephony.StateActive:
		return StatusActive
	case telephony.StateHolding:
		return StatusOnHold
	case telephony.StateDisconnected:
		return StatusDisconnected
	default:
		return StatusUnknown
	}
}

// State is the published call-session snapshot. It is immutable once
// published; a recompute always allocates a fresh value.
type State struct {
	Name   string
	Number string
	Status Status
	Kind   identity.CallKind

	Muted       bool
	Holding     bool
	SpeakerOn   bool
	BluetoothOn bool
	Incoming    bool
	Conference  bool

	CanMerge bool
	CanSwap  bool

	// Participants lists conference party names when Conference is set.
	Participants []string

	// Enrichment, work calls only.
	Role                string
	Department          string
	FamilyHead          string
	RelationshipManager string
	AUM                 string
	FamilyAUM           string

	ConnectTime time.Time

	// Second-call subset, zero-valued when only one call is tracked.
	HasSecondCall     bool
	SecondCallerName  string
	SecondCallNumber  string
	SecondCallHolding bool
}

// clone returns a copy safe to mutate before publishing.
func (s *State) clone() *State {
	next := *s
	if s.Participants != nil {
		next.Participants = append([]string(nil), s.Participants...)
	}
	return &next
}

// audioFlags carries the current device audio routing, injected into
// recompute so the function stays a pure transform of its inputs.
type audioFlags struct {
	muted     bool
	speakerOn bool
	bluetooth bool
}
