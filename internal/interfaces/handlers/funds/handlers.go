package funds

import (
	"context"
	"errors"
	"fmt"

	fundsvc "canoe-backend/internal/application/funds"
	"canoe-backend/internal/domain"
	"canoe-backend/internal/interfaces/handlers/request"
	"canoe-backend/internal/interfaces/resources"
	"canoe-backend/internal/pkg/jsonapi"
	"canoe-backend/internal/pkg/response"
	"canoe-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
)

const (
	msgDuplicateAlias = "Duplicate alias values are not allowed."
	msgAliasInUse     = `The alias "%s" is already in use.`
)

type Handlers struct {
	Service *fundsvc.Service
	Paging  request.Paging
}

type storeFundRequest struct {
	Name          *string  `json:"name" validate:"required,filled,max=255"`
	StartYear     *int     `json:"start_year" validate:"required,min=1900,year_horizon"`
	FundManagerID *uint    `json:"fund_manager_id" validate:"required"`
	Aliases       []string `json:"aliases" validate:"omitempty,dive,filled,max=255"`
	CompanyIDs    []uint   `json:"company_ids" validate:"omitempty,dive,required"`
}

// Every field is optional on update; a present field follows the store rules.
type updateFundRequest struct {
	Name          *string  `json:"name" validate:"omitnil,filled,max=255"`
	StartYear     *int     `json:"start_year" validate:"omitnil,min=1900,year_horizon"`
	FundManagerID *uint    `json:"fund_manager_id" validate:"omitnil"`
	Aliases       []string `json:"aliases" validate:"omitempty,dive,filled,max=255"`
	CompanyIDs    []uint   `json:"company_ids" validate:"omitempty,dive,required"`
}

// GET /funds?name=&fund_manager_id=&year=&company_id=&page=
func (h *Handlers) Index(c *fiber.Ctx) error {
	filter := fundsvc.ListFilter{
		Name:          c.Query("name"),
		FundManagerID: request.QueryID(c, "fund_manager_id"),
		Year:          request.QueryInt(c, "year"),
		CompanyID:     request.QueryID(c, "company_id"),
	}
	page, err := h.Service.List(c.UserContext(), filter, h.Paging.Page(c))
	if err != nil {
		return err
	}
	doc := jsonapi.Collection(jsonapi.Map(page.Items, func(f domain.Fund) jsonapi.Resource {
		return resources.NewFund(f, resources.AllFundRelations)
	}))
	doc.Links = request.Links(c, page.Meta)
	doc.Meta = page.Meta
	return response.Success(c, doc)
}

// POST /funds: 201 with the fund, manager, aliases and companies
func (h *Handlers) Store(c *fiber.Ctx) error {
	var req storeFundRequest
	if errs := request.Decode(c, &req); errs != nil {
		return response.ValidationFailed(c, errs)
	}
	request.Trim(req.Name)
	request.TrimAll(req.Aliases)

	errs := validation.Struct(req)
	if errs == nil {
		errs = validation.New()
	}
	ctx := c.UserContext()
	if err := h.checkReferences(ctx, errs, req.FundManagerID, req.CompanyIDs); err != nil {
		return err
	}
	if err := h.checkAliases(ctx, errs, req.Aliases, 0); err != nil {
		return err
	}
	if errs.Any() {
		return response.ValidationFailed(c, errs)
	}

	fund, err := h.Service.Create(ctx, fundsvc.CreateFundInput{
		Name:          *req.Name,
		StartYear:     *req.StartYear,
		FundManagerID: *req.FundManagerID,
		Aliases:       req.Aliases,
		CompanyIDs:    req.CompanyIDs,
	})
	if err != nil {
		return err
	}
	return response.SuccessCreated(c, jsonapi.Single(resources.NewFund(*fund, resources.AllFundRelations)))
}

// GET /funds/:id
func (h *Handlers) Show(c *fiber.Ctx) error {
	id, ok := request.ID(c)
	if !ok {
		return response.NotFound(c, fundsvc.ErrFundNotFound.Error())
	}
	fund, err := h.Service.Get(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return response.Success(c, jsonapi.Single(resources.NewFund(*fund, resources.AllFundRelations)))
}

// PUT /funds/:id: partial update; aliases and company_ids replace the whole set when present
func (h *Handlers) Update(c *fiber.Ctx) error {
	id, ok := request.ID(c)
	if !ok {
		return response.NotFound(c, fundsvc.ErrFundNotFound.Error())
	}
	ctx := c.UserContext()
	if _, err := h.Service.Get(ctx, id); err != nil {
		return h.fail(c, err)
	}

	var req updateFundRequest
	if errs := request.Decode(c, &req); errs != nil {
		return response.ValidationFailed(c, errs)
	}
	request.Trim(req.Name)
	request.TrimAll(req.Aliases)

	errs := validation.Struct(req)
	if errs == nil {
		errs = validation.New()
	}
	if err := h.checkReferences(ctx, errs, req.FundManagerID, req.CompanyIDs); err != nil {
		return err
	}
	if err := h.checkAliases(ctx, errs, req.Aliases, id); err != nil {
		return err
	}
	if errs.Any() {
		return response.ValidationFailed(c, errs)
	}

	fund, err := h.Service.Update(ctx, id, fundsvc.UpdateFundInput{
		Name:          req.Name,
		StartYear:     req.StartYear,
		FundManagerID: req.FundManagerID,
		Aliases:       req.Aliases,
		CompanyIDs:    req.CompanyIDs,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return response.Success(c, jsonapi.Single(resources.NewFund(*fund, resources.AllFundRelations)))
}

// DELETE /funds/:id: soft delete, 204
func (h *Handlers) Destroy(c *fiber.Ctx) error {
	id, ok := request.ID(c)
	if !ok {
		return response.NotFound(c, fundsvc.ErrFundNotFound.Error())
	}
	if err := h.Service.Delete(c.UserContext(), id); err != nil {
		return h.fail(c, err)
	}
	return response.NoContent(c)
}

func (h *Handlers) fail(c *fiber.Ctx, err error) error {
	if errors.Is(err, fundsvc.ErrFundNotFound) {
		return response.NotFound(c, err.Error())
	}
	return err
}

func (h *Handlers) checkReferences(ctx context.Context, errs *validation.Errors, managerID *uint, companyIDs []uint) error {
	if managerID != nil && !errs.Has("fund_manager_id") {
		ok, err := h.Service.ManagerExists(ctx, *managerID)
		if err != nil {
			return err
		}
		if !ok {
			errs.Add("fund_manager_id", "The selected fund manager id is invalid.")
		}
	}
	if len(companyIDs) == 0 {
		return nil
	}
	missing, err := h.Service.MissingCompanyIDs(ctx, companyIDs)
	if err != nil {
		return err
	}
	for i, id := range companyIDs {
		field := fmt.Sprintf("company_ids.%d", i)
		if missing[id] && !errs.Has(field) {
			errs.Add(field, fmt.Sprintf("The selected %s is invalid.", field))
		}
	}
	return nil
}

func (h *Handlers) checkAliases(ctx context.Context, errs *validation.Errors, aliases []string, fundID uint) error {
	if len(aliases) == 0 {
		return nil
	}
	validation.DistinctFold(errs, "aliases", aliases, msgDuplicateAlias)
	taken, err := h.Service.TakenAliasNames(ctx, aliases, fundID)
	if err != nil {
		return err
	}
	for i, a := range aliases {
		if taken[a] {
			errs.Add(fmt.Sprintf("aliases.%d", i), fmt.Sprintf(msgAliasInUse, a))
		}
	}
	return nil
}
