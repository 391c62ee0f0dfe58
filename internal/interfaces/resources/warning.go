package resources

import (
	"canoe-backend/internal/domain"
	"canoe-backend/internal/pkg/jsonapi"
)

// WarningRelations says which warning relations were loaded. A nil fund
// option means that fund was not loaded.
type WarningRelations struct {
	Fund          *FundRelations
	DuplicateFund *FundRelations
	FundManager   bool
}

// ListWarningRelations matches the unresolved-warnings listing.
var ListWarningRelations = WarningRelations{
	Fund:          &FundRelations{Manager: true, Aliases: true},
	DuplicateFund: &FundRelations{Aliases: true},
	FundManager:   true,
}

// ResolvedWarningRelations matches the resolve response.
var ResolvedWarningRelations = WarningRelations{
	Fund:          &FundRelations{},
	DuplicateFund: &FundRelations{},
	FundManager:   true,
}

type Warning struct {
	Warning   domain.DuplicateWarning
	Relations WarningRelations
}

func NewWarning(w domain.DuplicateWarning, rel WarningRelations) Warning {
	return Warning{Warning: w, Relations: rel}
}

func (r Warning) ResourceType() string { return TypeWarning }
func (r Warning) ResourceID() string   { return jsonapi.ID(r.Warning.ID) }

func (r Warning) ResourceAttributes() map[string]interface{} {
	return map[string]interface{}{
		"matched_name": r.Warning.MatchedName,
		"is_resolved":  r.Warning.IsResolved,
		"created_at":   timestamp(r.Warning.CreatedAt),
	}
}

func (r Warning) fund() *Fund {
	if r.Relations.Fund == nil || r.Warning.Fund == nil {
		return nil
	}
	f := NewFund(*r.Warning.Fund, *r.Relations.Fund)
	return &f
}

func (r Warning) duplicateFund() *Fund {
	if r.Relations.DuplicateFund == nil || r.Warning.DuplicateFund == nil {
		return nil
	}
	f := NewFund(*r.Warning.DuplicateFund, *r.Relations.DuplicateFund)
	return &f
}

func (r Warning) manager() *Manager {
	if !r.Relations.FundManager || r.Warning.FundManager == nil {
		return nil
	}
	m := NewManager(*r.Warning.FundManager)
	return &m
}

func (r Warning) ResourceRelationships() map[string]jsonapi.Relationship {
	rels := map[string]jsonapi.Relationship{}
	if f := r.fund(); f != nil {
		rels["fund"] = jsonapi.ToOne(*f)
	}
	if d := r.duplicateFund(); d != nil {
		rels["duplicate_fund"] = jsonapi.ToOne(*d)
	}
	if m := r.manager(); m != nil {
		rels["fund_manager"] = jsonapi.ToOne(*m)
	}
	return rels
}

// ResourceIncluded lists the fund, its manager and aliases, the duplicate
// fund and its aliases, then the warning's manager.
func (r Warning) ResourceIncluded() []jsonapi.Resource {
	var out []jsonapi.Resource
	if f := r.fund(); f != nil {
		out = append(out, *f)
		out = append(out, f.ResourceIncluded()...)
	}
	if d := r.duplicateFund(); d != nil {
		out = append(out, *d)
		out = append(out, d.ResourceIncluded()...)
	}
	if m := r.manager(); m != nil {
		out = append(out, *m)
	}
	return out
}
