package warnings

import (
	"errors"

	warningsvc "canoe-backend/internal/application/warnings"
	"canoe-backend/internal/domain"
	"canoe-backend/internal/interfaces/handlers/request"
	"canoe-backend/internal/interfaces/resources"
	"canoe-backend/internal/pkg/jsonapi"
	"canoe-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *warningsvc.Service
	Paging  request.Paging
}

// GET /duplicate-warnings: unresolved only, newest first
func (h *Handlers) Index(c *fiber.Ctx) error {
	page, err := h.Service.ListUnresolved(c.UserContext(), h.Paging.Page(c))
	if err != nil {
		return err
	}
	doc := jsonapi.Collection(jsonapi.Map(page.Items, func(w domain.DuplicateWarning) jsonapi.Resource {
		return resources.NewWarning(w, resources.ListWarningRelations)
	}))
	doc.Links = request.Links(c, page.Meta)
	doc.Meta = page.Meta
	return response.Success(c, doc)
}

// PATCH /duplicate-warnings/:id/resolve
func (h *Handlers) Resolve(c *fiber.Ctx) error {
	id, ok := request.ID(c)
	if !ok {
		return response.NotFound(c, warningsvc.ErrWarningNotFound.Error())
	}
	w, err := h.Service.Resolve(c.UserContext(), id)
	if errors.Is(err, warningsvc.ErrWarningNotFound) {
		return response.NotFound(c, err.Error())
	}
	if err != nil {
		return err
	}
	return response.Success(c, jsonapi.Single(resources.NewWarning(*w, resources.ResolvedWarningRelations)))
}
