package telephony

import "testing"

func TestCallStateString(t *testing.T) {
	tests := []struct {
		state CallState
		want  string
	}{
		{StateConnecting, "Connecting"},
		{StateDialing, "Dialing"},
		{StateRinging, "Ringing"},
		{StateActive, "Active"},
		{StateHolding, "Holding"},
		{StateDisconnected, "Disconnected"},
		{StateUnknown, "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestCallStateIsLive(t *testing.T) {
	for _, s := range []CallState{StateConnecting, StateDialing, StateRinging, StateActive, StateHolding, StateUnknown} {
		if !s.IsLive() {
			t.Errorf("%s.IsLive() = false, want true", s)
		}
	}
	if StateDisconnected.IsLive() {
		t.Error("Disconnected.IsLive() = true, want false")
	}
}

func TestDecodeCapabilities(t *testing.T) {
	caps := DecodeCapabilities(CapMergeConference | CapConference)
	if !caps.Merge || !caps.Conference {
		t.Errorf("DecodeCapabilities() = %+v, want merge and conference set", caps)
	}
	if caps.Swap {
		t.Error("Swap = true, want false for an unset bit")
	}

	none := DecodeCapabilities(0)
	if none.Merge || none.Swap || none.Conference {
		t.Errorf("DecodeCapabilities(0) = %+v, want all false", none)
	}
}
