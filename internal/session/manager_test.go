package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sebas/callkeeper/internal/identity"
	"github.com/sebas/callkeeper/internal/telephony"
	"github.com/sebas/callkeeper/internal/telephony/simdriver"
)

type recordingHook struct {
	mu    sync.Mutex
	notes []string
	fired chan struct{}
}

func newRecordingHook() *recordingHook {
	return &recordingHook{fired: make(chan struct{}, 8)}
}

func (h *recordingHook) OnRemoved(c telephony.Call, note string) {
	h.mu.Lock()
	h.notes = append(h.notes, note)
	h.mu.Unlock()
	h.fired <- struct{}{}
}

func (h *recordingHook) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.notes)
}

func (h *recordingHook) waitOne(t *testing.T) {
	t.Helper()
	select {
	case <-h.fired:
	case <-time.After(time.Second):
		t.Fatal("removal hook did not fire")
	}
}

func TestManagerSnapshotNilOnlyWhenRegistryEmpty(t *testing.T) {
	driver := simdriver.New()
	m := NewManager(ManagerConfig{})
	driver.SetHandler(m)

	if m.Current() != nil {
		t.Fatal("Current() != nil before any call")
	}

	c := driver.AddCall(telephony.Details{Number: "5550100"}, telephony.StateRinging)
	if m.Current() == nil {
		t.Fatal("Current() = nil with a tracked call")
	}

	driver.RemoveCall(c)
	if got := m.Current(); got != nil {
		t.Errorf("Current() = %+v after removal, want nil", got)
	}
}

func TestManagerIgnoresDuplicateAdds(t *testing.T) {
	driver := simdriver.New()
	m := NewManager(ManagerConfig{})
	c := driver.AddCall(telephony.Details{Number: "5550100"}, telephony.StateRinging)

	m.CallAdded(c)
	m.CallAdded(c)
	if got := c.ObserverCount(); got != 1 {
		t.Errorf("ObserverCount() = %d after duplicate add, want 1", got)
	}
}

func TestManagerObserverTeardownIsSymmetric(t *testing.T) {
	driver := simdriver.New()
	m := NewManager(ManagerConfig{})
	driver.SetHandler(m)

	c := driver.AddCall(telephony.Details{Number: "5550100"}, telephony.StateRinging)
	if got := c.ObserverCount(); got != 1 {
		t.Fatalf("ObserverCount() = %d after add, want 1", got)
	}

	driver.RemoveCall(c)
	if got := c.ObserverCount(); got != 0 {
		t.Errorf("ObserverCount() = %d after remove, want 0", got)
	}
}

func TestManagerRemovalHookFiresExactlyOnce(t *testing.T) {
	driver := simdriver.New()
	hook := newRecordingHook()
	m := NewManager(ManagerConfig{RemovalHook: hook})
	c := driver.AddCall(telephony.Details{Number: "5550100"}, telephony.StateActive)

	m.CallAdded(c)
	m.CallRemoved(c)
	m.CallRemoved(c)

	hook.waitOne(t)
	// Give a duplicate invocation a chance to land before asserting.
	time.Sleep(20 * time.Millisecond)
	if got := hook.count(); got != 1 {
		t.Errorf("hook fired %d times, want 1", got)
	}
}

func TestManagerNotePassedToHookThenCleared(t *testing.T) {
	driver := simdriver.New()
	hook := newRecordingHook()
	m := NewManager(ManagerConfig{RemovalHook: hook})

	first := driver.AddCall(telephony.Details{Number: "1115550100"}, telephony.StateActive)
	m.CallAdded(first)
	m.SetNote("discussed portfolio rebalance")
	m.CallRemoved(first)
	hook.waitOne(t)

	second := driver.AddCall(telephony.Details{Number: "2225550100"}, telephony.StateActive)
	m.CallAdded(second)
	m.CallRemoved(second)
	hook.waitOne(t)

	hook.mu.Lock()
	defer hook.mu.Unlock()
	if hook.notes[0] != "discussed portfolio rebalance" {
		t.Errorf("first note = %q, want the stored note", hook.notes[0])
	}
	if hook.notes[1] != "" {
		t.Errorf("second note = %q, want empty after take", hook.notes[1])
	}
}

func TestManagerCommitResolutionAppliesToMatchingNumber(t *testing.T) {
	driver := simdriver.New()
	m := NewManager(ManagerConfig{})
	driver.SetHandler(m)
	driver.AddCall(telephony.Details{Number: "9815550100"}, telephony.StateActive)

	m.CommitResolution(identity.Resolution{
		Number: "9815550100",
		Name:   "Asha Venkat",
		Kind:   identity.KindWork,
		Role:   "Client",
	}, false)

	state := m.Current()
	if state.Name != "Asha Venkat" {
		t.Errorf("Name = %q, want resolved name", state.Name)
	}
	if state.Kind != identity.KindWork {
		t.Errorf("Kind = %v, want KindWork", state.Kind)
	}
}

func TestManagerCommitResolutionDropsStaleResult(t *testing.T) {
	driver := simdriver.New()
	m := NewManager(ManagerConfig{})
	driver.SetHandler(m)

	old := driver.AddCall(telephony.Details{Number: "1115550100"}, telephony.StateActive)
	driver.RemoveCall(old)
	driver.AddCall(telephony.Details{Number: "2225550100"}, telephony.StateActive)

	// A round started for the old number finishes late.
	m.CommitResolution(identity.Resolution{
		Number: "1115550100",
		Name:   "Stale Name",
	}, false)

	state := m.Current()
	if state.Name == "Stale Name" {
		t.Error("stale resolution was committed over the current session")
	}
}

func TestManagerCommitResolutionSecondaryGuard(t *testing.T) {
	driver := simdriver.New()
	m := NewManager(ManagerConfig{})
	driver.SetHandler(m)

	driver.AddCall(telephony.Details{Number: "1115550100"}, telephony.StateActive)
	driver.AddCall(telephony.Details{Number: "2225550100"}, telephony.StateHolding)

	m.CommitResolution(identity.Resolution{Number: "2225550100", Name: "Dad"}, true)
	if got := m.Current().SecondCallerName; got != "Dad" {
		t.Errorf("SecondCallerName = %q, want Dad", got)
	}

	m.CommitResolution(identity.Resolution{Number: "3335550100", Name: "Wrong"}, true)
	if got := m.Current().SecondCallerName; got != "Dad" {
		t.Errorf("SecondCallerName = %q after mismatched commit, want Dad", got)
	}
}

func TestManagerWatchDeliversLatestSnapshot(t *testing.T) {
	driver := simdriver.New()
	m := NewManager(ManagerConfig{})
	driver.SetHandler(m)

	ch := m.Watch()
	defer m.Unwatch(ch)

	c := driver.AddCall(telephony.Details{Number: "5550100"}, telephony.StateRinging)
	c.SetState(telephony.StateActive)

	deadline := time.After(time.Second)
	for {
		select {
		case state := <-ch:
			if state != nil && state.Status == StatusActive {
				return
			}
		case <-deadline:
			t.Fatal("never observed the Active snapshot")
		}
	}
}

func TestManagerAnswerRequiresRinging(t *testing.T) {
	driver := simdriver.New()
	m := NewManager(ManagerConfig{})
	driver.SetHandler(m)

	if err := m.Answer(); err != ErrNoCall {
		t.Errorf("Answer() with no call = %v, want ErrNoCall", err)
	}

	c := driver.AddCall(telephony.Details{Number: "5550100"}, telephony.StateActive)
	if err := m.Answer(); err != ErrNotRinging {
		t.Errorf("Answer() on active call = %v, want ErrNotRinging", err)
	}

	c.SetState(telephony.StateRinging)
	if err := m.Answer(); err != nil {
		t.Errorf("Answer() on ringing call = %v, want nil", err)
	}
	if c.State() != telephony.StateActive {
		t.Errorf("State() = %s after answer, want Active", c.State())
	}
}

func TestManagerRejectDisconnectsNonRinging(t *testing.T) {
	driver := simdriver.New()
	m := NewManager(ManagerConfig{})
	driver.SetHandler(m)

	c := driver.AddCall(telephony.Details{Number: "5550100"}, telephony.StateActive)
	if err := m.Reject(); err != nil {
		t.Fatalf("Reject() = %v", err)
	}
	if c.State() != telephony.StateDisconnected {
		t.Errorf("State() = %s, want Disconnected", c.State())
	}
	if c.RejectMessage != "" {
		t.Errorf("RejectMessage = %q, want empty for a plain disconnect", c.RejectMessage)
	}
}

func TestManagerSendQuickResponseWhileRinging(t *testing.T) {
	driver := simdriver.New()
	m := NewManager(ManagerConfig{})
	driver.SetHandler(m)

	c := driver.AddCall(telephony.Details{Number: "5550100"}, telephony.StateRinging)
	if err := m.SendQuickResponse(context.Background(), "5550100", "In a meeting"); err != nil {
		t.Fatalf("SendQuickResponse() = %v", err)
	}
	if c.RejectMessage != "In a meeting" {
		t.Errorf("RejectMessage = %q, want the canned text", c.RejectMessage)
	}
}

func TestManagerPlayDtmfTone(t *testing.T) {
	driver := simdriver.New()
	m := NewManager(ManagerConfig{})
	driver.SetHandler(m)

	c := driver.AddCall(telephony.Details{Number: "5550100"}, telephony.StateActive)
	for _, d := range "123" {
		if err := m.PlayDtmfTone(d); err != nil {
			t.Fatalf("PlayDtmfTone(%c) = %v", d, err)
		}
	}
	if got := string(c.DtmfDigits); got != "123" {
		t.Errorf("DtmfDigits = %q, want 123", got)
	}
}

func TestManagerToggleHold(t *testing.T) {
	driver := simdriver.New()
	m := NewManager(ManagerConfig{})
	driver.SetHandler(m)

	c := driver.AddCall(telephony.Details{Number: "5550100"}, telephony.StateActive)
	if err := m.ToggleHold(); err != nil {
		t.Fatalf("ToggleHold() = %v", err)
	}
	if c.State() != telephony.StateHolding {
		t.Fatalf("State() = %s, want Holding", c.State())
	}
	if err := m.ToggleHold(); err != nil {
		t.Fatalf("ToggleHold() = %v", err)
	}
	if c.State() != telephony.StateActive {
		t.Errorf("State() = %s, want Active", c.State())
	}
}
