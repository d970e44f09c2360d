package session

import (
	"testing"
	"time"

	"github.com/sebas/callkeeper/internal/identity"
	"github.com/sebas/callkeeper/internal/telephony"
	"github.com/sebas/callkeeper/internal/telephony/simdriver"
)

func TestRecomputeEmptyRegistryIsNil(t *testing.T) {
	if got := recompute(nil, nil, audioFlags{}); got != nil {
		t.Errorf("recompute(empty) = %+v, want nil", got)
	}
}

func TestRecomputeActiveBeatsRinging(t *testing.T) {
	driver := simdriver.New()
	ringing := newTestCall(t, driver, "1115550100", telephony.StateRinging)
	active := newTestCall(t, driver, "2225550100", telephony.StateActive)

	state := recompute([]telephony.Call{ringing, active}, nil, audioFlags{})
	if state == nil {
		t.Fatal("recompute() = nil, want state")
	}
	if state.Number != "2225550100" {
		t.Errorf("primary number = %s, want 2225550100 (Active beats Ringing)", state.Number)
	}
	if state.Status != StatusActive {
		t.Errorf("Status = %s, want Active", state.Status)
	}
}

func TestRecomputeConferenceBeatsEverything(t *testing.T) {
	driver := simdriver.New()
	a := newTestCall(t, driver, "1115550100", telephony.StateRinging)
	b := newTestCall(t, driver, "2225550100", telephony.StateRinging)
	conf := driver.AddCall(telephony.Details{
		Number:         "1115550100",
		CapabilityBits: telephony.CapConference,
	}, telephony.StateActive)
	conf.SetChildren([]telephony.Call{a, b})

	state := recompute([]telephony.Call{a, b, conf}, nil, audioFlags{})
	if state == nil {
		t.Fatal("recompute() = nil, want state")
	}
	if !state.Conference {
		t.Error("Conference = false, want true")
	}
	if state.Name != "Conference (2)" {
		t.Errorf("Name = %q, want %q", state.Name, "Conference (2)")
	}
	if len(state.Participants) != 2 {
		t.Errorf("Participants = %d, want 2", len(state.Participants))
	}
}

func TestRecomputeFallsBackToFirstRegistered(t *testing.T) {
	driver := simdriver.New()
	first := newTestCall(t, driver, "1115550100", telephony.StateHolding)
	second := newTestCall(t, driver, "2225550100", telephony.StateHolding)

	state := recompute([]telephony.Call{first, second}, nil, audioFlags{})
	if state.Number != "1115550100" {
		t.Errorf("primary number = %s, want first-registered 1115550100", state.Number)
	}
}

func TestRecomputeIsDeterministic(t *testing.T) {
	driver := simdriver.New()
	calls := []telephony.Call{
		newTestCall(t, driver, "1115550100", telephony.StateRinging),
		newTestCall(t, driver, "2225550100", telephony.StateActive),
		newTestCall(t, driver, "3335550100", telephony.StateHolding),
	}

	first := recompute(calls, nil, audioFlags{})
	for i := 0; i < 10; i++ {
		again := recompute(calls, nil, audioFlags{})
		if again.Number != first.Number || again.Status != first.Status {
			t.Fatalf("recompute() not deterministic: %+v vs %+v", again, first)
		}
	}
}

func TestRecomputeWaitingBeatsHeld(t *testing.T) {
	driver := simdriver.New()
	active := newTestCall(t, driver, "1115550100", telephony.StateActive)
	held := newTestCall(t, driver, "2225550100", telephony.StateHolding)
	waiting := newTestCall(t, driver, "3335550100", telephony.StateRinging)

	state := recompute([]telephony.Call{active, held, waiting}, nil, audioFlags{})
	if !state.HasSecondCall {
		t.Fatal("HasSecondCall = false, want true")
	}
	if state.SecondCallNumber != "3335550100" {
		t.Errorf("SecondCallNumber = %s, want waiting 3335550100", state.SecondCallNumber)
	}
	if state.SecondCallHolding {
		t.Error("SecondCallHolding = true, want false for a waiting call")
	}
}

func TestRecomputeCanSwapWithHeldSecondary(t *testing.T) {
	driver := simdriver.New()
	active := newTestCall(t, driver, "1115550100", telephony.StateActive)
	held := newTestCall(t, driver, "2225550100", telephony.StateHolding)

	// Native swap bit unset on both handles.
	state := recompute([]telephony.Call{active, held}, nil, audioFlags{})
	if !state.CanSwap {
		t.Error("CanSwap = false, want true with a held secondary")
	}
	if !state.CanMerge {
		t.Error("CanMerge = false, want true with two calls and no ringing secondary")
	}
}

func TestRecomputeRingingSecondaryDisablesMerge(t *testing.T) {
	driver := simdriver.New()
	active := driver.AddCall(telephony.Details{
		Number:         "1115550100",
		CapabilityBits: telephony.CapMergeConference,
	}, telephony.StateActive)
	waiting := newTestCall(t, driver, "2225550100", telephony.StateRinging)

	state := recompute([]telephony.Call{active, waiting}, nil, audioFlags{})
	if state.CanMerge {
		t.Error("CanMerge = true, want false with a ringing secondary regardless of the native bit")
	}
}

func TestRecomputeAntiFlickerKeepsResolvedName(t *testing.T) {
	driver := simdriver.New()
	c := newTestCall(t, driver, "9815550100", telephony.StateActive)

	prev := &State{
		Name:   "Asha Venkat",
		Number: "9815550100",
		Kind:   identity.KindWork,
	}
	state := recompute([]telephony.Call{c}, prev, audioFlags{})
	if state.Name != "Asha Venkat" {
		t.Errorf("Name = %q, want resolved name kept while number unchanged", state.Name)
	}
	if state.Kind != prev.Kind {
		t.Errorf("Kind = %v, want carried over %v", state.Kind, prev.Kind)
	}
}

func TestRecomputeNewNumberResetsName(t *testing.T) {
	driver := simdriver.New()
	c := newTestCall(t, driver, "2225550100", telephony.StateActive)

	prev := &State{Name: "Asha Venkat", Number: "9815550100"}
	state := recompute([]telephony.Call{c}, prev, audioFlags{})
	if state.Name != "2225550100" {
		t.Errorf("Name = %q, want raw number placeholder for a new number", state.Name)
	}
}

func TestRecomputeSecondaryAntiFlicker(t *testing.T) {
	driver := simdriver.New()
	active := newTestCall(t, driver, "1115550100", telephony.StateActive)
	held := newTestCall(t, driver, "2225550100", telephony.StateHolding)

	prev := &State{
		Name:              "1115550100",
		Number:            "1115550100",
		HasSecondCall:     true,
		SecondCallerName:  "Dad",
		SecondCallNumber:  "2225550100",
		SecondCallHolding: true,
	}
	state := recompute([]telephony.Call{active, held}, prev, audioFlags{})
	if state.SecondCallerName != "Dad" {
		t.Errorf("SecondCallerName = %q, want resolved name kept", state.SecondCallerName)
	}
}

func TestRecomputeConnectTimePropagates(t *testing.T) {
	driver := simdriver.New()
	connect := time.Now().Add(-time.Minute)
	c := driver.AddCall(telephony.Details{
		Number:      "1115550100",
		ConnectTime: connect,
	}, telephony.StateActive)

	state := recompute([]telephony.Call{c}, nil, audioFlags{})
	if !state.ConnectTime.Equal(connect) {
		t.Errorf("ConnectTime = %v, want %v", state.ConnectTime, connect)
	}
}
