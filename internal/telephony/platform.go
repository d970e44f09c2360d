package telephony

import (
	"context"
	"time"
)

// SlotInfo resolves the SIM slot label for a call's account.
type SlotInfo interface {
	// SlotFor returns a human-readable slot label ("SIM 1", "SIM 2") for
	// the given account identifier.
	SlotFor(accountID string) (string, error)
}

// Messenger sends text messages through the platform messaging stack.
type Messenger interface {
	SendText(ctx context.Context, number, message string) error
}

// AudioRoute controls the device audio routing for the in-call path.
type AudioRoute interface {
	SetMuted(muted bool) error
	SetSpeakerOn(on bool) error
	Muted() bool
	SpeakerOn() bool
	BluetoothOn() bool
}

// LogEntry is one row of the platform's system call log.
type LogEntry struct {
	ID        int64
	Number    string
	Missed    bool
	Read      bool
	Timestamp time.Time
}

// SystemCallLog is the platform call-log content provider.
//
// The platform writes entries asynchronously after a call ends, so a lookup
// immediately after disconnect may legitimately find nothing.
type SystemCallLog interface {
	// FindBySuffix returns the newest entry whose number ends with the
	// given suffix, or nil if none exists yet.
	FindBySuffix(ctx context.Context, numberSuffix string) (*LogEntry, error)

	// MarkRead flags a missed entry as read/incoming. Some platforms
	// refuse to delete unread missed entries.
	MarkRead(ctx context.Context, id int64) error

	// Delete removes an entry.
	Delete(ctx context.Context, id int64) error
}
