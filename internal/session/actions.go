package session

import (
	"context"
	"errors"

	"github.com/sebas/callkeeper/internal/telephony"
)

var (
	// ErrNoCall is returned when a command arrives with no live call.
	ErrNoCall = errors.New("no live call")
	// ErrNotRinging is returned when answer is attempted on a call that
	// is not ringing.
	ErrNotRinging = errors.New("call is not ringing")
)

// primaryCall resolves the current primary handle from the registry.
func (m *Manager) primaryCall() (telephony.Call, error) {
	calls := m.registry.Snapshot()
	if len(calls) == 0 {
		return nil, ErrNoCall
	}
	return selectPrimary(calls), nil
}

// Answer accepts the primary call. Valid only while it is ringing.
func (m *Manager) Answer() error {
	primary, err := m.primaryCall()
	if err != nil {
		return err
	}
	if primary.State() != telephony.StateRinging {
		return ErrNotRinging
	}
	return primary.Answer()
}

// Reject declines a ringing call, or requests disconnect otherwise.
func (m *Manager) Reject() error {
	primary, err := m.primaryCall()
	if err != nil {
		return err
	}
	if primary.State() == telephony.StateRinging {
		return primary.Reject("")
	}
	return primary.Disconnect()
}

// ToggleHold holds or resumes the primary call based on its current state.
func (m *Manager) ToggleHold() error {
	primary, err := m.primaryCall()
	if err != nil {
		return err
	}
	if primary.State() == telephony.StateHolding {
		return primary.Unhold()
	}
	return primary.Hold()
}

// Merge joins the tracked calls into a conference, natively when the
// platform advertises the capability, otherwise by explicitly
// conferencing the two handles.
func (m *Manager) Merge() error {
	calls := m.registry.Snapshot()
	if len(calls) == 0 {
		return ErrNoCall
	}
	primary := selectPrimary(calls)
	if primary.Details().Capabilities().Merge {
		return primary.MergeConference()
	}
	for _, c := range calls {
		if c.ID() != primary.ID() {
			return primary.Conference(c)
		}
	}
	return nil
}

// Swap exchanges the active and held calls, natively when possible,
// otherwise by holding the active handle and resuming the other.
func (m *Manager) Swap() error {
	calls := m.registry.Snapshot()
	if len(calls) == 0 {
		return ErrNoCall
	}
	primary := selectPrimary(calls)
	if primary.Details().Capabilities().Swap {
		return primary.SwapConference()
	}

	var other telephony.Call
	for _, c := range calls {
		if c.ID() != primary.ID() {
			other = c
			break
		}
	}
	if other == nil {
		return nil
	}

	// Hold the currently active side first so the platform never sees
	// two active lines.
	if primary.State() == telephony.StateActive {
		if err := primary.Hold(); err != nil {
			return err
		}
		return other.Unhold()
	}
	if err := other.Hold(); err != nil {
		return err
	}
	return primary.Unhold()
}

// SplitFromConference pulls the indexed participant out of the primary
// conference. Out-of-range indexes are a no-op.
func (m *Manager) SplitFromConference(index int) error {
	primary, err := m.primaryCall()
	if err != nil {
		return err
	}
	children := primary.Children()
	if index < 0 || index >= len(children) {
		return nil
	}
	return children[index].SplitFromConference()
}

// PlayDtmfTone forwards a DTMF digit to the primary call.
func (m *Manager) PlayDtmfTone(digit rune) error {
	primary, err := m.primaryCall()
	if err != nil {
		return err
	}
	return primary.PlayDtmfTone(digit)
}

// SendQuickResponse declines the primary call with a canned text. A
// ringing call is rejected with the message; otherwise the text goes out
// through the messaging collaborator before the reject.
func (m *Manager) SendQuickResponse(ctx context.Context, number, message string) error {
	primary, err := m.primaryCall()
	if err != nil {
		return err
	}
	if primary.State() == telephony.StateRinging {
		return primary.Reject(message)
	}
	if m.messenger != nil {
		if err := m.messenger.SendText(ctx, number, message); err != nil {
			return err
		}
	}
	return primary.Reject("")
}

// ToggleMute flips the device mute route and republishes.
func (m *Manager) ToggleMute() error {
	if m.audio == nil {
		return nil
	}
	if err := m.audio.SetMuted(!m.audio.Muted()); err != nil {
		return err
	}
	m.republish()
	return nil
}

// ToggleSpeaker flips the speaker route and republishes.
func (m *Manager) ToggleSpeaker() error {
	if m.audio == nil {
		return nil
	}
	if err := m.audio.SetSpeakerOn(!m.audio.SpeakerOn()); err != nil {
		return err
	}
	m.republish()
	return nil
}
