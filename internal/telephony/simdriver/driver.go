// Package simdriver provides an in-process telephony driver.
//
// It implements the telephony boundary without a device platform behind it,
// for the demo daemon and for tests. State transitions are driven by the
// embedding code (or by the command methods, which behave like a
// well-behaved platform would).
package simdriver

import (
	"sync"

	"github.com/google/uuid"

	"github.com/sebas/callkeeper/internal/telephony"
)

// Driver emits handle lifecycle events to a single handler.
type Driver struct {
	mu      sync.RWMutex
	handler telephony.DriverHandler
	calls   map[string]*Call
}

// New creates a simulated driver.
func New() *Driver {
	return &Driver{calls: make(map[string]*Call)}
}

// SetHandler implements telephony.Driver.
func (d *Driver) SetHandler(h telephony.DriverHandler) {
	d.mu.Lock()
	d.handler = h
	d.mu.Unlock()
}

// AddCall creates a handle in the given state and announces it.
func (d *Driver) AddCall(details telephony.Details, state telephony.CallState) *Call {
	c := &Call{
		id:      uuid.NewString(),
		driver:  d,
		state:   state,
		details: details,
	}

	d.mu.Lock()
	d.calls[c.id] = c
	h := d.handler
	d.mu.Unlock()

	if h != nil {
		h.CallAdded(c)
	}
	return c
}

// RemoveCall disconnects a handle and announces its removal.
func (d *Driver) RemoveCall(c *Call) {
	c.SetState(telephony.StateDisconnected)

	d.mu.Lock()
	delete(d.calls, c.id)
	h := d.handler
	d.mu.Unlock()

	if h != nil {
		h.CallRemoved(c)
	}
}

// other returns any tracked call that is not the given one.
func (d *Driver) other(c *Call) *Call {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, o := range d.calls {
		if o.id != c.id {
			return o
		}
	}
	return nil
}
