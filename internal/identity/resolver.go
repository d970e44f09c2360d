package identity

import (
	"context"
	"log/slog"
	"strings"
)

// Resolution is the outcome of a lookup round, tagged with the number it
// was computed for. It is only ever applied through the Sink's commit
// guard; a stale result is discarded there.
type Resolution struct {
	// Number is the raw number the round was started for.
	Number string
	// Name is the resolved display name; equal to Number when nothing hit.
	Name string
	// Kind is work/personal/unknown.
	Kind CallKind

	// Enrichment, populated on work hits for the primary call only.
	Role                string
	Department          string
	FamilyHead          string
	RelationshipManager string
	AUM                 string
	FamilyAUM           string
}

// Sink receives completed resolutions. Implementations must re-check that
// the published snapshot still refers to the resolution's number before
// applying it (the commit guard).
type Sink interface {
	CommitResolution(res Resolution, secondary bool)
}

// Resolver performs tiered identity lookups off the recompute path.
// Tier order: work directory, CRM, device contacts, network caller name.
// First hit wins.
type Resolver struct {
	work     WorkDirectory
	crm      CRMDirectory
	contacts ContactsDirectory
}

// NewResolver creates a resolver over the given directories. Any directory
// may be nil; its tier is then skipped.
func NewResolver(work WorkDirectory, crm CRMDirectory, contacts ContactsDirectory) *Resolver {
	return &Resolver{work: work, crm: crm, contacts: contacts}
}

// ResolveAsync starts a lookup round for the given raw number and commits
// the outcome through the sink. cnap is the network-provided caller name,
// used as the last tier. There is no cancellation; staleness is detected
// at commit time instead.
func (r *Resolver) ResolveAsync(number, cnap string, secondary bool, sink Sink) {
	go func() {
		res, ok := r.Resolve(context.Background(), number, cnap, secondary)
		if !ok {
			return
		}
		sink.CommitResolution(res, secondary)
	}()
}

// Resolve runs the tiers synchronously. The boolean is false when the
// number is too short to be worth a round at all.
func (r *Resolver) Resolve(ctx context.Context, number, cnap string, secondary bool) (Resolution, bool) {
	normalized := Normalize(number)

	// Secondary lookups on short numbers are noise; primary lookups only
	// consult the organizational tiers for full-length numbers.
	if secondary && len(normalized) < 7 {
		return Resolution{}, false
	}

	res := Resolution{Number: number, Name: number, Kind: KindUnknown}

	if len(normalized) > 9 || secondary {
		if r.resolveWork(ctx, normalized, secondary, &res) {
			return res, true
		}
		if r.resolveCRM(ctx, normalized, secondary, &res) {
			return res, true
		}
	}

	if name := r.lookupContact(ctx, number); name != "" {
		res.Name = name
		res.Kind = KindPersonal
		return res, true
	}

	// The network caller name counts only when it is not the number
	// echoed back.
	if cnap != "" && Normalize(cnap) != normalized {
		res.Name = cnap
		return res, true
	}

	return res, true
}

func (r *Resolver) resolveWork(ctx context.Context, normalized string, secondary bool, res *Resolution) bool {
	if r.work == nil || normalized == "" {
		return false
	}
	rec, err := r.work.FindByNumber(ctx, normalized)
	if err != nil {
		slog.Warn("[Resolver] Work directory lookup failed", "error", err)
		return false
	}
	if rec == nil {
		return false
	}

	res.Name = rec.Name
	res.Kind = KindWork
	res.Role = rec.Role
	if secondary {
		return true
	}

	res.Department = rec.Department
	// Employees carry department metadata only; financial enrichment is
	// reserved for client records.
	if !strings.EqualFold(rec.Role, "Employee") {
		res.FamilyHead = rec.FamilyHead
		res.RelationshipManager = rec.RelationshipManager
		res.AUM = rec.AUM
		res.FamilyAUM = rec.FamilyAUM
	}
	return true
}

func (r *Resolver) resolveCRM(ctx context.Context, normalized string, secondary bool, res *Resolution) bool {
	if r.crm == nil || normalized == "" {
		return false
	}
	rec, err := r.crm.FindByNumber(ctx, normalized)
	if err != nil {
		slog.Warn("[Resolver] CRM lookup failed", "error", err)
		return false
	}
	if rec == nil {
		return false
	}

	res.Name = rec.Name
	res.Kind = KindWork
	if secondary {
		return true
	}

	// Map CRM vocabulary into the enrichment shape.
	res.FamilyHead = rec.Module
	res.RelationshipManager = rec.Owner
	res.AUM = rec.Product
	return true
}

func (r *Resolver) lookupContact(ctx context.Context, number string) string {
	if r.contacts == nil {
		return ""
	}
	name, err := r.contacts.LookupName(ctx, number)
	if err != nil {
		slog.Warn("[Resolver] Contact lookup failed", "error", err)
		return ""
	}
	return name
}

// Classify runs the directory tiers for the logging pipeline. The network
// caller name is irrelevant for classification.
func (r *Resolver) Classify(ctx context.Context, number string) Resolution {
	res, ok := r.Resolve(ctx, number, "", false)
	if !ok {
		return Resolution{Number: number, Name: number, Kind: KindUnknown}
	}
	return res
}
