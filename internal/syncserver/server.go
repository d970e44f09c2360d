// Package syncserver hosts the receiving end of the record sync service.
package syncserver

import (
	"context"
	"log/slog"
	"sync"

	callsyncv1 "github.com/sebas/callkeeper/pkg/callsync/v1"
)

// Server is an in-memory CallSync implementation.
type Server struct {
	mu         sync.RWMutex
	records    map[string]callsyncv1.RecordPayload // keyed by record ID
	anonymized []callsyncv1.AnonymizedCall
}

var _ callsyncv1.CallSyncServer = (*Server)(nil)

// New creates an empty sync server.
func New() *Server {
	return &Server{records: make(map[string]callsyncv1.RecordPayload)}
}

// PushRecords implements callsyncv1.CallSyncServer. Re-uploads of the
// same record ID overwrite, so client retries stay idempotent.
func (s *Server) PushRecords(ctx context.Context, in *callsyncv1.PushRequest) (*callsyncv1.PushResponse, error) {
	s.mu.Lock()
	for _, rec := range in.Records {
		s.records[rec.ID] = rec
	}
	total := len(s.records)
	s.mu.Unlock()

	slog.Info("[Sync] Received records",
		"device_id", in.DeviceID,
		"count", len(in.Records),
		"total", total,
	)
	return &callsyncv1.PushResponse{Accepted: len(in.Records)}, nil
}

// PushAnonymized implements callsyncv1.CallSyncServer.
func (s *Server) PushAnonymized(ctx context.Context, in *callsyncv1.AnonymizedBatch) (*callsyncv1.PushResponse, error) {
	s.mu.Lock()
	s.anonymized = append(s.anonymized, in.Calls...)
	s.mu.Unlock()

	slog.Info("[Sync] Received anonymized calls",
		"device_id", in.DeviceID,
		"count", len(in.Calls),
	)
	return &callsyncv1.PushResponse{Accepted: len(in.Calls)}, nil
}

// RecordCount reports stored records, for tests and stats.
func (s *Server) RecordCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// AnonymizedCount reports stored anonymized calls.
func (s *Server) AnonymizedCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.anonymized)
}
