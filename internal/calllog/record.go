// Package calllog persists completed calls and schedules their
// background jobs.
package calllog

import (
	"context"
	"time"
)

// Call record directions.
const (
	DirectionOutgoing = "outgoing"
	DirectionIncoming = "incoming"
	DirectionMissed   = "missed"
)

// Record is one completed call. Created exactly once per removed handle.
type Record struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Number    string    `json:"number"`
	Direction string    `json:"direction"` // "outgoing", "incoming", "missed"
	Duration  int64     `json:"duration"`  // seconds, 0 if never connected
	Timestamp time.Time `json:"timestamp"`
	SimSlot   string    `json:"sim_slot"`
	Work      bool      `json:"work"`
	Note      string    `json:"note,omitempty"`
	Synced    bool      `json:"synced"`
}

// Store is the call record persistence collaborator.
type Store interface {
	// Insert stores a new record.
	Insert(ctx context.Context, rec *Record) error

	// Unsynced returns all records not yet uploaded, oldest first.
	Unsynced(ctx context.Context) ([]*Record, error)

	// MarkSynced flags a record as uploaded.
	MarkSynced(ctx context.Context, id string) error

	// Close releases store resources.
	Close() error
}
