// Package jobs provides a durable keyed job queue with at-least-once
// delivery, replace-on-conflict uniqueness, and constraint-gated
// execution.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ReplacePolicy controls what happens when a unique key already has a
// pending job.
type ReplacePolicy int

const (
	// Replace drops the pending job and enqueues the new one.
	Replace ReplacePolicy = iota
	// Keep leaves the pending job in place and drops the new one.
	Keep
)

// String returns the string representation of the policy.
func (p ReplacePolicy) String() string {
	switch p {
	case Replace:
		return "replace"
	case Keep:
		return "keep"
	default:
		return fmt.Sprintf("Unknown(%d)", p)
	}
}

// Constraints gate job execution on device conditions.
type Constraints struct {
	// NetworkRequired defers the job until connectivity is available.
	NetworkRequired bool `json:"network_required"`
}

// Spec describes one scheduled job. Specs survive process restarts; the
// payload must be self-contained.
type Spec struct {
	ID          string      `json:"id"`
	Type        string      `json:"type"`
	Key         string      `json:"key,omitempty"`
	Payload     []byte      `json:"payload,omitempty"`
	RunAt       time.Time   `json:"run_at"`
	Attempts    int         `json:"attempts"`
	Constraints Constraints `json:"constraints"`
}

// Scheduler enqueues jobs for background execution.
type Scheduler interface {
	// Enqueue schedules a job with no uniqueness key.
	Enqueue(ctx context.Context, spec Spec) error

	// EnqueueUnique schedules a job under a uniqueness key. With the
	// Replace policy a pending job for the same key is superseded, so
	// re-submitting is idempotent.
	EnqueueUnique(ctx context.Context, key string, policy ReplacePolicy, spec Spec) error
}

// Store persists pending jobs.
type Store interface {
	// Put inserts a job. For keyed jobs the policy decides conflicts.
	Put(ctx context.Context, spec Spec, policy ReplacePolicy) error

	// Claim returns jobs due at now and leases them until now+lease so
	// a poll during execution does not hand them out again.
	Claim(ctx context.Context, now time.Time, lease time.Duration, limit int) ([]Spec, error)

	// Reschedule moves a claimed job to a new run time.
	Reschedule(ctx context.Context, spec Spec) error

	// Remove deletes a job after completion or permanent failure.
	Remove(ctx context.Context, id string) error

	// Close releases store resources.
	Close() error
}

// RetryableError marks a job failure the worker should back off and
// retry. Any other error terminates the job.
type RetryableError struct {
	Cause error
}

// Error implements the error interface.
func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable: %v", e.Cause)
}

// Unwrap returns the underlying cause.
func (e *RetryableError) Unwrap() error { return e.Cause }

// Retry wraps an error as retryable.
func Retry(err error) error {
	return &RetryableError{Cause: err}
}

// IsRetryable reports whether the worker should re-attempt the job.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// NewSpec builds a job spec with a fresh ID, due immediately.
func NewSpec(jobType string, payload []byte) Spec {
	return Spec{
		ID:      uuid.NewString(),
		Type:    jobType,
		Payload: payload,
		RunAt:   time.Now(),
	}
}
