// Package resources maps domain entities onto JSON:API resources.
package resources

import (
	"time"

	"canoe-backend/internal/domain"
	"canoe-backend/internal/pkg/jsonapi"
)

const (
	TypeFund    = "funds"
	TypeManager = "fund-managers"
	TypeCompany = "companies"
	TypeAlias   = "fund-aliases"
	TypeWarning = "duplicate-warnings"
)

// microsecond UTC, e.g. 2025-01-15T10:00:00.000000Z
const timestampLayout = "2006-01-02T15:04:05.000000Z"

func timestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// FundRelations says which fund relations were loaded.
type FundRelations struct {
	Manager   bool
	Aliases   bool
	Companies bool
}

// AllFundRelations is what single-fund and fund-list endpoints load.
var AllFundRelations = FundRelations{Manager: true, Aliases: true, Companies: true}

type Fund struct {
	Fund      domain.Fund
	Relations FundRelations
}

func NewFund(f domain.Fund, rel FundRelations) Fund {
	return Fund{Fund: f, Relations: rel}
}

func (r Fund) ResourceType() string { return TypeFund }
func (r Fund) ResourceID() string   { return jsonapi.ID(r.Fund.ID) }

func (r Fund) ResourceAttributes() map[string]interface{} {
	return map[string]interface{}{
		"name":       r.Fund.Name,
		"start_year": r.Fund.StartYear,
		"created_at": timestamp(r.Fund.CreatedAt),
		"updated_at": timestamp(r.Fund.UpdatedAt),
	}
}

func (r Fund) manager() jsonapi.Resource {
	if !r.Relations.Manager || r.Fund.Manager == nil {
		return nil
	}
	return NewManager(*r.Fund.Manager)
}

func (r Fund) aliases() []jsonapi.Resource {
	return jsonapi.Map(r.Fund.Aliases, func(a domain.FundAlias) jsonapi.Resource { return Alias{Alias: a} })
}

func (r Fund) companies() []jsonapi.Resource {
	return jsonapi.Map(r.Fund.Companies, func(c domain.Company) jsonapi.Resource { return Company{Company: c} })
}

func (r Fund) ResourceRelationships() map[string]jsonapi.Relationship {
	rels := map[string]jsonapi.Relationship{}
	// a loaded but missing manager is left out rather than linked as null
	if m := r.manager(); m != nil {
		rels["manager"] = jsonapi.ToOne(m)
	}
	if r.Relations.Aliases {
		rels["aliases"] = jsonapi.ToMany(r.aliases())
	}
	if r.Relations.Companies {
		rels["companies"] = jsonapi.ToMany(r.companies())
	}
	return rels
}

func (r Fund) ResourceIncluded() []jsonapi.Resource {
	var out []jsonapi.Resource
	if m := r.manager(); m != nil {
		out = append(out, m)
	}
	if r.Relations.Aliases {
		out = append(out, r.aliases()...)
	}
	if r.Relations.Companies {
		out = append(out, r.companies()...)
	}
	return out
}

type Manager struct {
	Manager domain.FundManager
}

func NewManager(m domain.FundManager) Manager {
	return Manager{Manager: m}
}

func (r Manager) ResourceType() string { return TypeManager }
func (r Manager) ResourceID() string   { return jsonapi.ID(r.Manager.ID) }

func (r Manager) ResourceAttributes() map[string]interface{} {
	attrs := map[string]interface{}{
		"name":       r.Manager.Name,
		"created_at": timestamp(r.Manager.CreatedAt),
		"updated_at": timestamp(r.Manager.UpdatedAt),
	}
	if r.Manager.FundsCount != nil {
		attrs["funds_count"] = *r.Manager.FundsCount
	}
	return attrs
}

func (r Manager) ResourceRelationships() map[string]jsonapi.Relationship { return nil }
func (r Manager) ResourceIncluded() []jsonapi.Resource                  { return nil }

type Company struct {
	Company domain.Company
}

func (r Company) ResourceType() string { return TypeCompany }
func (r Company) ResourceID() string   { return jsonapi.ID(r.Company.ID) }

func (r Company) ResourceAttributes() map[string]interface{} {
	return map[string]interface{}{
		"name":       r.Company.Name,
		"created_at": timestamp(r.Company.CreatedAt),
		"updated_at": timestamp(r.Company.UpdatedAt),
	}
}

func (r Company) ResourceRelationships() map[string]jsonapi.Relationship { return nil }
func (r Company) ResourceIncluded() []jsonapi.Resource                  { return nil }

type Alias struct {
	Alias domain.FundAlias
}

func (r Alias) ResourceType() string { return TypeAlias }
func (r Alias) ResourceID() string   { return jsonapi.ID(r.Alias.ID) }

func (r Alias) ResourceAttributes() map[string]interface{} {
	return map[string]interface{}{"name": r.Alias.Name}
}

func (r Alias) ResourceRelationships() map[string]jsonapi.Relationship { return nil }
func (r Alias) ResourceIncluded() []jsonapi.Resource                  { return nil }
