package session

import (
	"fmt"

	"github.com/sebas/callkeeper/internal/telephony"
)

// selectPrimary picks the foreground call from a registry snapshot.
// Priority: conference, then active, then dialing, then ringing, then the
// first-registered handle. Ties break by insertion order.
func selectPrimary(calls []telephony.Call) telephony.Call {
	if len(calls) == 0 {
		return nil
	}
	for _, c := range calls {
		if c.Details().Capabilities().Conference {
			return c
		}
	}
	for _, state := range []telephony.CallState{
		telephony.StateActive,
		telephony.StateDialing,
		telephony.StateRinging,
	} {
		for _, c := range calls {
			if c.State() == state {
				return c
			}
		}
	}
	return calls[0]
}

// selectSecondary picks the waiting or held call next to the primary.
// A ringing call only counts as waiting while the primary is active or
// held; waiting beats held when both exist.
func selectSecondary(calls []telephony.Call, primary telephony.Call) (secondary telephony.Call, holding bool) {
	primaryState := primary.State()
	if primaryState == telephony.StateActive || primaryState == telephony.StateHolding {
		for _, c := range calls {
			if c.ID() != primary.ID() && c.State() == telephony.StateRinging {
				return c, false
			}
		}
	}
	for _, c := range calls {
		if c.ID() != primary.ID() && c.State() == telephony.StateHolding {
			return c, true
		}
	}
	return nil, false
}

// displayName applies the anti-flicker rule: while the number is unchanged
// and the previous snapshot already carried a resolved name, keep it, so a
// pending resolution round never regresses the display to the raw number.
func displayName(number, prevName, prevNumber string) string {
	if prevNumber == number && prevName != "" && prevName != number {
		return prevName
	}
	return number
}

// recompute derives the canonical session snapshot from a registry
// snapshot and the previously published state. Pure: equal inputs always
// produce an equal snapshot, so concurrent invocations may race on
// publication safely.
func recompute(calls []telephony.Call, prev *State, audio audioFlags) *State {
	if len(calls) == 0 {
		return nil
	}

	primary := selectPrimary(calls)
	details := primary.Details()
	caps := details.Capabilities()
	secondary, secondaryHolding := selectSecondary(calls, primary)

	next := &State{
		Number:      details.Number,
		Status:      statusOf(primary.State()),
		Incoming:    details.Direction == telephony.DirectionIncoming,
		Holding:     primary.State() == telephony.StateHolding,
		Conference:  caps.Conference,
		ConnectTime: details.ConnectTime,
		Muted:       audio.muted,
		SpeakerOn:   audio.speakerOn,
		BluetoothOn: audio.bluetooth,
	}

	ringingSecondary := secondary != nil && secondary.State() == telephony.StateRinging
	next.CanMerge = (caps.Merge || len(calls) > 1) && !ringingSecondary
	next.CanSwap = caps.Swap || (len(calls) > 1 && secondaryHolding)

	if caps.Conference {
		children := primary.Children()
		next.Name = fmt.Sprintf("Conference (%d)", len(children))
		next.Participants = participantNames(children)
	} else {
		var prevName, prevNumber string
		if prev != nil {
			prevName, prevNumber = prev.Name, prev.Number
		}
		next.Name = displayName(details.Number, prevName, prevNumber)
		if next.Name != details.Number && prev != nil {
			// Carry resolved identity forward with the reused name.
			next.Kind = prev.Kind
			next.Role = prev.Role
			next.Department = prev.Department
			next.FamilyHead = prev.FamilyHead
			next.RelationshipManager = prev.RelationshipManager
			next.AUM = prev.AUM
			next.FamilyAUM = prev.FamilyAUM
		}
	}

	if secondary != nil {
		sd := secondary.Details()
		next.HasSecondCall = true
		next.SecondCallNumber = sd.Number
		next.SecondCallHolding = secondaryHolding

		var prevName, prevNumber string
		if prev != nil {
			prevName, prevNumber = prev.SecondCallerName, prev.SecondCallNumber
		}
		next.SecondCallerName = displayName(sd.Number, prevName, prevNumber)
	}

	return next
}

// participantNames prefers the network caller name per child, falling
// back to the raw number.
func participantNames(children []telephony.Call) []string {
	names := make([]string, 0, len(children))
	for _, child := range children {
		d := child.Details()
		if d.DisplayName != "" {
			names = append(names, d.DisplayName)
		} else {
			names = append(names, d.Number)
		}
	}
	return names
}
