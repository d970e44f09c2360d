package main

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/sebas/callkeeper/internal/identity"
	"github.com/sebas/callkeeper/internal/telephony"
	"github.com/sebas/callkeeper/internal/telephony/simdriver"
)

// Demo collaborators standing in for the device platform.

type workDirectory map[string]identity.WorkRecord

func (d workDirectory) FindByNumber(ctx context.Context, normalized string) (*identity.WorkRecord, error) {
	for suffix, rec := range d {
		if strings.HasSuffix(normalized, suffix) {
			r := rec
			return &r, nil
		}
	}
	return nil, nil
}

type contactsDirectory map[string]string

func (d contactsDirectory) LookupName(ctx context.Context, number string) (string, error) {
	return d[identity.Normalize(number)], nil
}

var demoWorkDirectory = workDirectory{
	"5550100": {
		Name:                "Asha Venkat",
		Role:                "Client",
		FamilyHead:          "Venkat Family",
		RelationshipManager: "R. Iyer",
		AUM:                 "2.4M",
		FamilyAUM:           "5.1M",
	},
}

var demoContacts = contactsDirectory{
	"9815550199": "Dad",
}

type demoSlots struct{}

func (demoSlots) SlotFor(accountID string) (string, error) { return "SIM 1", nil }

type alwaysOnline struct{}

func (alwaysOnline) Online() bool { return true }

type logMessenger struct{}

func (logMessenger) SendText(ctx context.Context, number, message string) error {
	slog.Info("[Messenger] Text sent", "number", number, "message", message)
	return nil
}

type localAudio struct {
	mu      sync.Mutex
	muted   bool
	speaker bool
}

func (a *localAudio) SetMuted(m bool) error {
	a.mu.Lock()
	a.muted = m
	a.mu.Unlock()
	return nil
}

func (a *localAudio) SetSpeakerOn(on bool) error {
	a.mu.Lock()
	a.speaker = on
	a.mu.Unlock()
	return nil
}

func (a *localAudio) Muted() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.muted
}

func (a *localAudio) SpeakerOn() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.speaker
}

func (a *localAudio) BluetoothOn() bool { return false }

// runDemo plays a two-call scenario through the simulated driver: a work
// call arrives and is answered, a personal call waits and is answered
// (holding the first), then both end.
func runDemo(driver *simdriver.Driver) {
	time.Sleep(500 * time.Millisecond)

	work := driver.AddCall(telephony.Details{
		Number:       "+919815550100",
		Direction:    telephony.DirectionIncoming,
		CreationTime: time.Now(),
		AccountID:    "sim-0",
	}, telephony.StateRinging)

	time.Sleep(2 * time.Second)
	work.SetState(telephony.StateActive)

	time.Sleep(2 * time.Second)
	personal := driver.AddCall(telephony.Details{
		Number:       "+919815550199",
		DisplayName:  "UNKNOWN",
		Direction:    telephony.DirectionIncoming,
		CreationTime: time.Now(),
		AccountID:    "sim-0",
	}, telephony.StateRinging)

	time.Sleep(2 * time.Second)
	work.SetState(telephony.StateHolding)
	personal.SetState(telephony.StateActive)

	time.Sleep(2 * time.Second)
	driver.RemoveCall(personal)
	time.Sleep(time.Second)
	driver.RemoveCall(work)

	slog.Info("[Demo] Scenario complete")
}
