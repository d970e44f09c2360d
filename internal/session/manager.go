package session

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/sebas/callkeeper/internal/identity"
	"github.com/sebas/callkeeper/internal/telephony"
)

// RemovalHook runs exactly once per handle the platform stops tracking.
// The session manager invokes it off the recompute path.
type RemovalHook interface {
	OnRemoved(c telephony.Call, note string)
}

// ManagerConfig wires the session manager's collaborators. Any field may
// be nil; the corresponding behavior is then skipped.
type ManagerConfig struct {
	Resolver    *identity.Resolver
	Audio       telephony.AudioRoute
	Messenger   telephony.Messenger
	RemovalHook RemovalHook
}

// Manager owns the published call-session snapshot.
//
// It tracks platform handles in the registry, recomputes the snapshot on
// every trigger, and publishes through a compare-and-swap loop: concurrent
// recomputes are safe because each derives from a registry snapshot plus
// the previously published value, and last-write-wins is acceptable for
// equal inputs.
type Manager struct {
	registry  *Registry
	resolver  *identity.Resolver
	audio     telephony.AudioRoute
	messenger telephony.Messenger
	hook      RemovalHook

	published atomic.Pointer[State]

	watchMu  sync.Mutex
	watchers map[chan *State]struct{}

	noteMu sync.Mutex
	note   string
}

var (
	_ telephony.DriverHandler = (*Manager)(nil)
	_ telephony.Observer      = (*Manager)(nil)
	_ identity.Sink           = (*Manager)(nil)
)

// NewManager creates a session manager. Pass it to the platform driver as
// its handler to start tracking calls.
func NewManager(cfg ManagerConfig) *Manager {
	return &Manager{
		registry:  NewRegistry(),
		resolver:  cfg.Resolver,
		audio:     cfg.Audio,
		messenger: cfg.Messenger,
		hook:      cfg.RemovalHook,
		watchers:  make(map[chan *State]struct{}),
	}
}

// Current returns the latest published snapshot, nil when no call is live.
func (m *Manager) Current() *State {
	return m.published.Load()
}

// Watch subscribes to snapshot publications. Delivery is latest-wins; a
// slow consumer only ever misses intermediate snapshots, never the newest.
func (m *Manager) Watch() <-chan *State {
	ch := make(chan *State, 1)
	m.watchMu.Lock()
	m.watchers[ch] = struct{}{}
	m.watchMu.Unlock()
	return ch
}

// Unwatch removes a subscription created by Watch.
func (m *Manager) Unwatch(ch <-chan *State) {
	m.watchMu.Lock()
	defer m.watchMu.Unlock()
	for existing := range m.watchers {
		if existing == ch {
			delete(m.watchers, existing)
			close(existing)
			return
		}
	}
}

// CallAdded implements telephony.DriverHandler.
func (m *Manager) CallAdded(c telephony.Call) {
	if !m.registry.Add(c) {
		return
	}
	c.RegisterObserver(m)
	slog.Debug("[Session] Call added", "call_id", c.ID(), "state", c.State())
	m.republish()
}

// CallRemoved implements telephony.DriverHandler. The observer teardown
// and the removal hook fire at most once per handle.
func (m *Manager) CallRemoved(c telephony.Call) {
	if !m.registry.Remove(c) {
		return
	}
	c.UnregisterObserver(m)
	slog.Debug("[Session] Call removed", "call_id", c.ID())

	if m.hook != nil {
		note := m.takeNote()
		go m.hook.OnRemoved(c, note)
	}
	m.republish()
}

// StateChanged implements telephony.Observer.
func (m *Manager) StateChanged(c telephony.Call, state telephony.CallState) {
	m.republish()
}

// DetailsChanged implements telephony.Observer.
func (m *Manager) DetailsChanged(c telephony.Call, details telephony.Details) {
	m.republish()
}

// ChildrenChanged implements telephony.Observer.
func (m *Manager) ChildrenChanged(c telephony.Call, children []telephony.Call) {
	m.republish()
}

// republish recomputes and atomically replaces the published snapshot,
// then kicks identity resolution for any still-unresolved names.
func (m *Manager) republish() {
	for {
		prev := m.published.Load()
		next := recompute(m.registry.Snapshot(), prev, m.audioState())
		if m.published.CompareAndSwap(prev, next) {
			m.notify(next)
			m.triggerResolution(next)
			return
		}
	}
}

func (m *Manager) audioState() audioFlags {
	if m.audio == nil {
		return audioFlags{}
	}
	return audioFlags{
		muted:     m.audio.Muted(),
		speakerOn: m.audio.SpeakerOn(),
		bluetooth: m.audio.BluetoothOn(),
	}
}

func (m *Manager) notify(s *State) {
	m.watchMu.Lock()
	defer m.watchMu.Unlock()
	for ch := range m.watchers {
		select {
		case ch <- s:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- s:
			default:
			}
		}
	}
}

// triggerResolution starts lookup rounds for names still showing the raw
// number. Resolution runs off the recompute path; results come back
// through CommitResolution.
func (m *Manager) triggerResolution(s *State) {
	if s == nil || m.resolver == nil {
		return
	}

	if !s.Conference && s.Name == s.Number && s.Number != "" {
		m.resolver.ResolveAsync(s.Number, m.cnapFor(s.Number), false, m)
	}
	if s.HasSecondCall && s.SecondCallerName == s.SecondCallNumber && s.SecondCallNumber != "" {
		m.resolver.ResolveAsync(s.SecondCallNumber, m.cnapFor(s.SecondCallNumber), true, m)
	}
}

// cnapFor finds the network caller name the platform reported for a
// number, for the resolver's last tier.
func (m *Manager) cnapFor(number string) string {
	for _, c := range m.registry.Snapshot() {
		if d := c.Details(); d.Number == number {
			return d.DisplayName
		}
	}
	return ""
}

// CommitResolution implements identity.Sink. The guard re-reads the
// current snapshot and drops the result if the session has moved to a
// different number since the round started.
func (m *Manager) CommitResolution(res identity.Resolution, secondary bool) {
	for {
		cur := m.published.Load()
		if cur == nil {
			return
		}

		var next *State
		if secondary {
			if !cur.HasSecondCall || cur.SecondCallNumber != res.Number {
				return
			}
			next = cur.clone()
			next.SecondCallerName = res.Name
		} else {
			if cur.Conference || cur.Number != res.Number {
				return
			}
			next = cur.clone()
			next.Name = res.Name
			next.Kind = res.Kind
			next.Role = res.Role
			next.Department = res.Department
			next.FamilyHead = res.FamilyHead
			next.RelationshipManager = res.RelationshipManager
			next.AUM = res.AUM
			next.FamilyAUM = res.FamilyAUM
		}

		if m.published.CompareAndSwap(cur, next) {
			m.notify(next)
			return
		}
	}
}

// SetNote stores a free-text note attached to the next logged call.
func (m *Manager) SetNote(text string) {
	m.noteMu.Lock()
	m.note = text
	m.noteMu.Unlock()
}

func (m *Manager) takeNote() string {
	m.noteMu.Lock()
	defer m.noteMu.Unlock()
	note := m.note
	m.note = ""
	return note
}
