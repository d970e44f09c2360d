package syncserver

import (
	"context"
	"testing"

	callsyncv1 "github.com/sebas/callkeeper/pkg/callsync/v1"
)

func TestPushRecordsIsIdempotentPerID(t *testing.T) {
	s := New()
	req := &callsyncv1.PushRequest{
		DeviceID: "device-1",
		Records: []callsyncv1.RecordPayload{
			{ID: "a", Name: "Asha Venkat", Number: "5550100"},
			{ID: "b", Name: "Ravi Mehta", Number: "5550101"},
		},
	}

	resp, err := s.PushRecords(context.Background(), req)
	if err != nil {
		t.Fatalf("PushRecords() = %v", err)
	}
	if resp.Accepted != 2 {
		t.Errorf("Accepted = %d, want 2", resp.Accepted)
	}

	// A client retry re-sends the same batch; the store must not grow.
	if _, err := s.PushRecords(context.Background(), req); err != nil {
		t.Fatalf("PushRecords() retry = %v", err)
	}
	if got := s.RecordCount(); got != 2 {
		t.Errorf("RecordCount() = %d after retry, want 2", got)
	}
}

func TestPushAnonymizedAccumulates(t *testing.T) {
	s := New()
	batch := &callsyncv1.AnonymizedBatch{
		DeviceID: "device-1",
		Calls:    []callsyncv1.AnonymizedCall{{DurationSeconds: 30, Direction: "incoming"}},
	}

	for i := 0; i < 3; i++ {
		if _, err := s.PushAnonymized(context.Background(), batch); err != nil {
			t.Fatalf("PushAnonymized() = %v", err)
		}
	}
	if got := s.AnonymizedCount(); got != 3 {
		t.Errorf("AnonymizedCount() = %d, want 3", got)
	}
}
