// Package identity resolves phone numbers to display identities using
// ordered external directories.
package identity

import (
	"context"
	"fmt"
	"strings"
)

// CallKind classifies a number as organizational or personal.
type CallKind int

const (
	// KindUnknown - the number matched no directory.
	KindUnknown CallKind = iota
	// KindWork - the number matched the work or CRM directory.
	KindWork
	// KindPersonal - the number matched only the device contacts.
	KindPersonal
)

// String returns the string representation of the kind.
func (k CallKind) String() string {
	switch k {
	case KindWork:
		return "work"
	case KindPersonal:
		return "personal"
	default:
		return "unknown"
	}
}

// WorkRecord is a hit in the organizational directory.
type WorkRecord struct {
	Name                string
	Role                string
	Department          string
	FamilyHead          string
	RelationshipManager string
	AUM                 string
	FamilyAUM           string
}

// CRMRecord is a hit in the CRM directory. Field names follow the CRM's
// own vocabulary; MapEnrichment translates them.
type CRMRecord struct {
	Name    string
	Module  string
	Owner   string
	Product string
}

// WorkDirectory is the organizational directory collaborator.
type WorkDirectory interface {
	// FindByNumber returns the record matching the normalized number,
	// or nil if there is no match.
	FindByNumber(ctx context.Context, normalized string) (*WorkRecord, error)
}

// CRMDirectory is the CRM directory collaborator.
type CRMDirectory interface {
	FindByNumber(ctx context.Context, normalized string) (*CRMRecord, error)
}

// ContactsDirectory is the device personal contacts collaborator.
type ContactsDirectory interface {
	// LookupName returns the contact display name for a number, or ""
	// if the number is not saved.
	LookupName(ctx context.Context, number string) (string, error)
}

// elevatedRoles are excluded from background log deletion and upload.
var elevatedRoles = map[string]struct{}{
	"management": {},
	"director":   {},
	"partner":    {},
}

// IsElevatedRole reports whether a directory role is exempt from the
// logging pipeline's background jobs.
func IsElevatedRole(role string) bool {
	_, ok := elevatedRoles[strings.ToLower(role)]
	return ok
}

// LookupError wraps a directory failure with the tier that produced it.
type LookupError struct {
	Tier  string
	Cause error
}

// Error implements the error interface.
func (e *LookupError) Error() string {
	return fmt.Sprintf("%s lookup failed: %v", e.Tier, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *LookupError) Unwrap() error { return e.Cause }
