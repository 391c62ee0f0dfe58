package managers

import (
	"errors"

	managersvc "canoe-backend/internal/application/managers"
	"canoe-backend/internal/domain"
	"canoe-backend/internal/interfaces/handlers/request"
	"canoe-backend/internal/interfaces/resources"
	"canoe-backend/internal/pkg/jsonapi"
	"canoe-backend/internal/pkg/response"
	"canoe-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *managersvc.Service
	Paging  request.Paging
}

type storeManagerRequest struct {
	Name *string `json:"name" validate:"required,filled,max=255"`
}

type updateManagerRequest struct {
	Name *string `json:"name" validate:"omitnil,filled,max=255"`
}

// GET /fund-managers: carries funds_count
func (h *Handlers) Index(c *fiber.Ctx) error {
	page, err := h.Service.List(c.UserContext(), h.Paging.Page(c))
	if err != nil {
		return err
	}
	doc := jsonapi.Collection(jsonapi.Map(page.Items, func(m domain.FundManager) jsonapi.Resource {
		return resources.NewManager(m)
	}))
	doc.Links = request.Links(c, page.Meta)
	doc.Meta = page.Meta
	return response.Success(c, doc)
}

func (h *Handlers) Store(c *fiber.Ctx) error {
	var req storeManagerRequest
	if errs := request.Decode(c, &req); errs != nil {
		return response.ValidationFailed(c, errs)
	}
	request.Trim(req.Name)
	if errs := validation.Struct(req); errs != nil {
		return response.ValidationFailed(c, errs)
	}
	m, err := h.Service.Create(c.UserContext(), *req.Name)
	if err != nil {
		return err
	}
	return response.SuccessCreated(c, jsonapi.Single(resources.NewManager(*m)))
}

func (h *Handlers) Show(c *fiber.Ctx) error {
	id, ok := request.ID(c)
	if !ok {
		return response.NotFound(c, managersvc.ErrManagerNotFound.Error())
	}
	m, err := h.Service.Get(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return response.Success(c, jsonapi.Single(resources.NewManager(*m)))
}

func (h *Handlers) Update(c *fiber.Ctx) error {
	id, ok := request.ID(c)
	if !ok {
		return response.NotFound(c, managersvc.ErrManagerNotFound.Error())
	}
	var req updateManagerRequest
	if errs := request.Decode(c, &req); errs != nil {
		return response.ValidationFailed(c, errs)
	}
	request.Trim(req.Name)
	if errs := validation.Struct(req); errs != nil {
		return response.ValidationFailed(c, errs)
	}
	m, err := h.Service.Update(c.UserContext(), id, req.Name)
	if err != nil {
		return h.fail(c, err)
	}
	return response.Success(c, jsonapi.Single(resources.NewManager(*m)))
}

// DELETE /fund-managers/:id: 409 while the manager still owns funds
func (h *Handlers) Destroy(c *fiber.Ctx) error {
	id, ok := request.ID(c)
	if !ok {
		return response.NotFound(c, managersvc.ErrManagerNotFound.Error())
	}
	if err := h.Service.Delete(c.UserContext(), id); err != nil {
		return h.fail(c, err)
	}
	return response.NoContent(c)
}

func (h *Handlers) fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, managersvc.ErrManagerNotFound):
		return response.NotFound(c, err.Error())
	case errors.Is(err, managersvc.ErrManagerHasFunds):
		return response.Conflict(c, err.Error())
	default:
		return err
	}
}
