package simdriver

import (
	"sync"
	"time"

	"github.com/sebas/callkeeper/internal/telephony"
)

// Call is a simulated call handle.
type Call struct {
	id     string
	driver *Driver

	mu        sync.RWMutex
	state     telephony.CallState
	details   telephony.Details
	children  []telephony.Call
	observers []telephony.Observer

	// Last reject message, for test assertions.
	RejectMessage string
	// DTMF digits played on this handle, for test assertions.
	DtmfDigits []rune
}

var _ telephony.Call = (*Call)(nil)

// ID implements telephony.Call.
func (c *Call) ID() string { return c.id }

// State implements telephony.Call.
func (c *Call) State() telephony.CallState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Details implements telephony.Call.
func (c *Call) Details() telephony.Details {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.details
}

// Children implements telephony.Call.
func (c *Call) Children() []telephony.Call {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]telephony.Call, len(c.children))
	copy(out, c.children)
	return out
}

// SetState transitions the call and notifies observers.
func (c *Call) SetState(state telephony.CallState) {
	c.mu.Lock()
	if c.state == state {
		c.mu.Unlock()
		return
	}
	c.state = state
	if state == telephony.StateActive && c.details.ConnectTime.IsZero() {
		c.details.ConnectTime = time.Now()
	}
	obs := c.snapshotObservers()
	c.mu.Unlock()

	for _, o := range obs {
		o.StateChanged(c, state)
	}
}

// SetDetails replaces the call details and notifies observers.
func (c *Call) SetDetails(details telephony.Details) {
	c.mu.Lock()
	c.details = details
	obs := c.snapshotObservers()
	c.mu.Unlock()

	for _, o := range obs {
		o.DetailsChanged(c, details)
	}
}

// SetChildren replaces the conference children and notifies observers.
func (c *Call) SetChildren(children []telephony.Call) {
	c.mu.Lock()
	c.children = children
	obs := c.snapshotObservers()
	c.mu.Unlock()

	for _, o := range obs {
		o.ChildrenChanged(c, children)
	}
}

// snapshotObservers must be called with c.mu held.
func (c *Call) snapshotObservers() []telephony.Observer {
	obs := make([]telephony.Observer, len(c.observers))
	copy(obs, c.observers)
	return obs
}

// Answer implements telephony.Call.
func (c *Call) Answer() error {
	c.SetState(telephony.StateActive)
	return nil
}

// Reject implements telephony.Call.
func (c *Call) Reject(message string) error {
	c.mu.Lock()
	c.RejectMessage = message
	c.mu.Unlock()
	c.SetState(telephony.StateDisconnected)
	return nil
}

// Disconnect implements telephony.Call.
func (c *Call) Disconnect() error {
	c.SetState(telephony.StateDisconnected)
	return nil
}

// Hold implements telephony.Call.
func (c *Call) Hold() error {
	c.SetState(telephony.StateHolding)
	return nil
}

// Unhold implements telephony.Call.
func (c *Call) Unhold() error {
	c.SetState(telephony.StateActive)
	return nil
}

// MergeConference implements telephony.Call.
func (c *Call) MergeConference() error {
	other := c.driver.other(c)
	if other == nil {
		return nil
	}

	conf := c.driver.AddCall(telephony.Details{
		Number:         c.Details().Number,
		CapabilityBits: telephony.CapConference | telephony.CapSwapConference,
		ConnectTime:    time.Now(),
		CreationTime:   time.Now(),
	}, telephony.StateActive)
	conf.SetChildren([]telephony.Call{c, other})
	return nil
}

// Conference implements telephony.Call.
func (c *Call) Conference(other telephony.Call) error {
	return c.MergeConference()
}

// SwapConference implements telephony.Call.
func (c *Call) SwapConference() error {
	other := c.driver.other(c)
	if other == nil {
		return nil
	}
	if c.State() == telephony.StateActive {
		c.SetState(telephony.StateHolding)
		other.SetState(telephony.StateActive)
	} else {
		other.SetState(telephony.StateHolding)
		c.SetState(telephony.StateActive)
	}
	return nil
}

// SplitFromConference implements telephony.Call.
func (c *Call) SplitFromConference() error {
	return nil
}

// PlayDtmfTone implements telephony.Call.
func (c *Call) PlayDtmfTone(digit rune) error {
	c.mu.Lock()
	c.DtmfDigits = append(c.DtmfDigits, digit)
	c.mu.Unlock()
	return nil
}

// RegisterObserver implements telephony.Call.
func (c *Call) RegisterObserver(o telephony.Observer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, o)
}

// UnregisterObserver implements telephony.Call.
func (c *Call) UnregisterObserver(o telephony.Observer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, existing := range c.observers {
		if existing == o {
			c.observers = append(c.observers[:i], c.observers[i+1:]...)
			return
		}
	}
}

// ObserverCount reports registered observers, for leak assertions in tests.
func (c *Call) ObserverCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.observers)
}
