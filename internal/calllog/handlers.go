package calllog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sebas/callkeeper/internal/identity"
	"github.com/sebas/callkeeper/internal/jobs"
	"github.com/sebas/callkeeper/internal/telephony"
	"github.com/sebas/callkeeper/internal/uplink"
	callsyncv1 "github.com/sebas/callkeeper/pkg/callsync/v1"
)

// anonymizedPayload is the anonymized upload job's payload.
type anonymizedPayload struct {
	DurationSeconds int64     `json:"duration_seconds"`
	Timestamp       time.Time `json:"timestamp"`
	Direction       string    `json:"direction"`
	SimSlot         string    `json:"sim_slot"`
}

// errLogEntryPending signals that the platform has not written its
// call-log entry yet.
var errLogEntryPending = errors.New("call log entry not present yet")

// Uplink is the slice of the sync client the handlers need.
type Uplink interface {
	PushRecords(ctx context.Context, records []callsyncv1.RecordPayload) error
	PushAnonymized(ctx context.Context, calls []callsyncv1.AnonymizedCall) error
}

// Handlers executes the orchestrator's background jobs.
type Handlers struct {
	store  Store
	uplink Uplink
	syslog telephony.SystemCallLog
}

// NewHandlers creates the job handlers.
func NewHandlers(store Store, up Uplink, syslog telephony.SystemCallLog) *Handlers {
	return &Handlers{store: store, uplink: up, syslog: syslog}
}

// Register installs the handlers on the worker.
func (h *Handlers) Register(w *jobs.Worker) {
	w.Register(JobTypeDeleteCallLog, h.deleteCallLog)
	w.Register(JobTypeUploadWork, h.uploadWork)
	w.Register(JobTypeUploadAnonymized, h.uploadAnonymized)
}

// deleteCallLog removes a logged work call from the platform call log.
// The job's delayed start covers the platform's asynchronous write; a
// still-missing entry is a retryable condition, not a failure.
func (h *Handlers) deleteCallLog(ctx context.Context, spec jobs.Spec) error {
	if h.syslog == nil {
		return nil
	}

	var payload deletePayload
	if err := json.Unmarshal(spec.Payload, &payload); err != nil {
		return fmt.Errorf("decode delete payload: %w", err)
	}

	suffix := identity.Normalize(payload.Number)
	if suffix == "" {
		return nil
	}

	entry, err := h.syslog.FindBySuffix(ctx, suffix)
	if err != nil {
		return jobs.Retry(fmt.Errorf("query call log: %w", err))
	}
	if entry == nil {
		return jobs.Retry(errLogEntryPending)
	}

	// Unread missed entries are refused deletion on some platforms;
	// mark them read first.
	if entry.Missed && !entry.Read {
		if err := h.syslog.MarkRead(ctx, entry.ID); err != nil {
			return jobs.Retry(fmt.Errorf("mark entry read: %w", err))
		}
	}
	if err := h.syslog.Delete(ctx, entry.ID); err != nil {
		return jobs.Retry(fmt.Errorf("delete entry: %w", err))
	}

	slog.Debug("[CallLog] Deleted platform log entry", "entry_id", entry.ID)
	return nil
}

// uploadWork pushes every unsynced work record and marks them synced.
func (h *Handlers) uploadWork(ctx context.Context, spec jobs.Spec) error {
	records, err := h.store.Unsynced(ctx)
	if err != nil {
		return jobs.Retry(fmt.Errorf("load unsynced records: %w", err))
	}
	if len(records) == 0 {
		return nil
	}

	payloads := make([]callsyncv1.RecordPayload, 0, len(records))
	for _, rec := range records {
		payloads = append(payloads, callsyncv1.RecordPayload{
			ID:              rec.ID,
			Name:            rec.Name,
			Number:          rec.Number,
			Direction:       rec.Direction,
			DurationSeconds: rec.Duration,
			Timestamp:       rec.Timestamp,
			SimSlot:         rec.SimSlot,
			Note:            rec.Note,
		})
	}

	if err := h.uplink.PushRecords(ctx, payloads); err != nil {
		if uplink.IsRetryable(err) {
			return jobs.Retry(err)
		}
		return err
	}

	for _, rec := range records {
		if err := h.store.MarkSynced(ctx, rec.ID); err != nil {
			slog.Warn("[CallLog] Failed to mark record synced", "record_id", rec.ID, "error", err)
		}
	}
	slog.Info("[CallLog] Uploaded work records", "count", len(records))
	return nil
}

// uploadAnonymized pushes one anonymized personal call shape.
func (h *Handlers) uploadAnonymized(ctx context.Context, spec jobs.Spec) error {
	var payload anonymizedPayload
	if err := json.Unmarshal(spec.Payload, &payload); err != nil {
		return fmt.Errorf("decode anonymized payload: %w", err)
	}

	call := callsyncv1.AnonymizedCall{
		DurationSeconds: payload.DurationSeconds,
		Timestamp:       payload.Timestamp,
		Direction:       payload.Direction,
		SimSlot:         payload.SimSlot,
	}
	if err := h.uplink.PushAnonymized(ctx, []callsyncv1.AnonymizedCall{call}); err != nil {
		if uplink.IsRetryable(err) {
			return jobs.Retry(err)
		}
		return err
	}
	return nil
}
