package calllog

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sebas/callkeeper/internal/identity"
	"github.com/sebas/callkeeper/internal/jobs"
	"github.com/sebas/callkeeper/internal/telephony"
)

// Job types scheduled by the orchestrator.
const (
	// JobTypeDeleteCallLog removes a call's entry from the platform
	// call log. Unique per raw number, replace on conflict.
	JobTypeDeleteCallLog = "delete-call-log"
	// JobTypeUploadWork pushes all unsynced work records.
	JobTypeUploadWork = "upload-work-records"
	// JobTypeUploadAnonymized pushes one anonymized personal call shape.
	JobTypeUploadAnonymized = "upload-anonymized"
)

// uploadSweepKey collapses bursts of terminations into one upload sweep.
const uploadSweepKey = "upload-work-records"

// deletePayload is the delete job's payload.
type deletePayload struct {
	Number string `json:"number"`
}

// Classifier decides work vs personal for a number. The network caller
// name plays no part here.
type Classifier interface {
	Classify(ctx context.Context, number string) identity.Resolution
}

// Orchestrator turns call removals into durable records and jobs.
type Orchestrator struct {
	store       Store
	scheduler   jobs.Scheduler
	classifier  Classifier
	slots       telephony.SlotInfo
	deleteGrace time.Duration
}

// NewOrchestrator creates a lifecycle logging orchestrator. deleteGrace
// is how long the delete job waits for the platform's asynchronous
// call-log write.
func NewOrchestrator(store Store, scheduler jobs.Scheduler, classifier Classifier, slots telephony.SlotInfo, deleteGrace time.Duration) *Orchestrator {
	return &Orchestrator{
		store:       store,
		scheduler:   scheduler,
		classifier:  classifier,
		slots:       slots,
		deleteGrace: deleteGrace,
	}
}

// OnRemoved logs a removed call handle. Runs once per handle, off the
// recompute path; every failure inside is local and silent toward the
// in-call surface.
func (o *Orchestrator) OnRemoved(c telephony.Call, note string) {
	ctx := context.Background()
	details := c.Details()

	number := strings.TrimSpace(details.Number)
	if number == "" {
		return
	}

	duration := int64(0)
	connected := !details.ConnectTime.IsZero()
	if connected {
		duration = int64(time.Since(details.ConnectTime).Seconds())
	}

	direction := DirectionOutgoing
	if details.Direction == telephony.DirectionIncoming {
		if connected {
			direction = DirectionIncoming
		} else {
			direction = DirectionMissed
		}
	}

	slot := o.slotFor(details.AccountID)
	res := o.classifier.Classify(ctx, number)

	slog.Info("[CallLog] Logging call",
		"number", number,
		"direction", direction,
		"duration", duration,
		"slot", slot,
		"kind", res.Kind,
	)

	if res.Kind == identity.KindWork {
		o.logWork(ctx, res, number, direction, duration, slot, note)
		return
	}
	o.logPersonal(ctx, res, direction, duration, slot)
}

func (o *Orchestrator) logWork(ctx context.Context, res identity.Resolution, number, direction string, duration int64, slot, note string) {
	rec := &Record{
		ID:        uuid.NewString(),
		Name:      res.Name,
		Number:    number,
		Direction: direction,
		Duration:  duration,
		Timestamp: time.Now(),
		SimSlot:   slot,
		Work:      true,
		Note:      note,
		Synced:    false,
	}
	if err := o.store.Insert(ctx, rec); err != nil {
		slog.Error("[CallLog] Failed to persist record", "number", number, "error", err)
	}

	if identity.IsElevatedRole(res.Role) {
		return
	}

	payload, _ := json.Marshal(deletePayload{Number: number})
	deleteSpec := jobs.NewSpec(JobTypeDeleteCallLog, payload)
	deleteSpec.RunAt = time.Now().Add(o.deleteGrace)
	if err := o.scheduler.EnqueueUnique(ctx, number, jobs.Replace, deleteSpec); err != nil {
		slog.Warn("[CallLog] Failed to schedule delete job", "number", number, "error", err)
	}

	uploadSpec := jobs.NewSpec(JobTypeUploadWork, nil)
	uploadSpec.Constraints.NetworkRequired = true
	if err := o.scheduler.EnqueueUnique(ctx, uploadSweepKey, jobs.Replace, uploadSpec); err != nil {
		slog.Warn("[CallLog] Failed to schedule upload job", "error", err)
	}
}

func (o *Orchestrator) logPersonal(ctx context.Context, res identity.Resolution, direction string, duration int64, slot string) {
	if identity.IsElevatedRole(res.Role) {
		return
	}

	// The anonymized payload deliberately carries no name or number.
	payload, _ := json.Marshal(anonymizedPayload{
		DurationSeconds: duration,
		Timestamp:       time.Now(),
		Direction:       direction,
		SimSlot:         slot,
	})
	spec := jobs.NewSpec(JobTypeUploadAnonymized, payload)
	spec.Constraints.NetworkRequired = true
	if err := o.scheduler.Enqueue(ctx, spec); err != nil {
		slog.Warn("[CallLog] Failed to schedule anonymized upload", "error", err)
	}
}

func (o *Orchestrator) slotFor(accountID string) string {
	if o.slots == nil {
		return "Unknown"
	}
	slot, err := o.slots.SlotFor(accountID)
	if err != nil || slot == "" {
		return "Unknown"
	}
	return slot
}
