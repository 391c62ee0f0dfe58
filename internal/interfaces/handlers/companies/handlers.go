package companies

import (
	"errors"

	companysvc "canoe-backend/internal/application/companies"
	"canoe-backend/internal/domain"
	"canoe-backend/internal/interfaces/handlers/request"
	"canoe-backend/internal/interfaces/resources"
	"canoe-backend/internal/pkg/jsonapi"
	"canoe-backend/internal/pkg/response"
	"canoe-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *companysvc.Service
	Paging  request.Paging
}

type storeCompanyRequest struct {
	Name *string `json:"name" validate:"required,filled,max=255"`
}

type updateCompanyRequest struct {
	Name *string `json:"name" validate:"omitnil,filled,max=255"`
}

func company(c domain.Company) jsonapi.Resource {
	return resources.Company{Company: c}
}

func (h *Handlers) Index(c *fiber.Ctx) error {
	page, err := h.Service.List(c.UserContext(), h.Paging.Page(c))
	if err != nil {
		return err
	}
	doc := jsonapi.Collection(jsonapi.Map(page.Items, company))
	doc.Links = request.Links(c, page.Meta)
	doc.Meta = page.Meta
	return response.Success(c, doc)
}

func (h *Handlers) Store(c *fiber.Ctx) error {
	var req storeCompanyRequest
	if errs := request.Decode(c, &req); errs != nil {
		return response.ValidationFailed(c, errs)
	}
	request.Trim(req.Name)
	if errs := validation.Struct(req); errs != nil {
		return response.ValidationFailed(c, errs)
	}
	created, err := h.Service.Create(c.UserContext(), *req.Name)
	if err != nil {
		return err
	}
	return response.SuccessCreated(c, jsonapi.Single(company(*created)))
}

func (h *Handlers) Show(c *fiber.Ctx) error {
	id, ok := request.ID(c)
	if !ok {
		return response.NotFound(c, companysvc.ErrCompanyNotFound.Error())
	}
	found, err := h.Service.Get(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return response.Success(c, jsonapi.Single(company(*found)))
}

func (h *Handlers) Update(c *fiber.Ctx) error {
	id, ok := request.ID(c)
	if !ok {
		return response.NotFound(c, companysvc.ErrCompanyNotFound.Error())
	}
	var req updateCompanyRequest
	if errs := request.Decode(c, &req); errs != nil {
		return response.ValidationFailed(c, errs)
	}
	request.Trim(req.Name)
	if errs := validation.Struct(req); errs != nil {
		return response.ValidationFailed(c, errs)
	}
	updated, err := h.Service.Update(c.UserContext(), id, req.Name)
	if err != nil {
		return h.fail(c, err)
	}
	return response.Success(c, jsonapi.Single(company(*updated)))
}

func (h *Handlers) Destroy(c *fiber.Ctx) error {
	id, ok := request.ID(c)
	if !ok {
		return response.NotFound(c, companysvc.ErrCompanyNotFound.Error())
	}
	if err := h.Service.Delete(c.UserContext(), id); err != nil {
		return h.fail(c, err)
	}
	return response.NoContent(c)
}

func (h *Handlers) fail(c *fiber.Ctx, err error) error {
	if errors.Is(err, companysvc.ErrCompanyNotFound) {
		return response.NotFound(c, err.Error())
	}
	return err
}
