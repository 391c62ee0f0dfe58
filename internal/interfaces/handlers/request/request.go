// Package request holds the parsing helpers shared by the HTTP handlers.
package request

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"canoe-backend/internal/pkg/pagination"
	"canoe-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
)

// Paging carries the configured page sizes.
type Paging struct {
	Default int
	Max     int
}

// DefaultPaging is fifteen per page, at most a hundred.
var DefaultPaging = Paging{Default: 15, Max: 100}

// Page reads page and per_page from the query string.
func (p Paging) Page(c *fiber.Ctx) pagination.Params {
	def, max := p.Default, p.Max
	if def <= 0 {
		def = DefaultPaging.Default
	}
	return pagination.Parse(c.Query("page"), c.Query("per_page"), def, max)
}

// Links builds pagination links for the current path and query.
func Links(c *fiber.Ctx, m pagination.Meta) pagination.Links {
	q, _ := url.ParseQuery(string(c.Request().URI().QueryString()))
	return pagination.NewLinks(c.Path(), q, m)
}

// ID parses the :id route parameter. Zero, negative and non-numeric ids are rejected.
func ID(c *fiber.Ctx) (uint, bool) {
	n, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

// QueryID parses an optional numeric filter. A present but invalid value
// yields 0, which matches no row.
func QueryID(c *fiber.Ctx, key string) *uint {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		n = 0
	}
	id := uint(n)
	return &id
}

// QueryInt parses an optional integer filter. A present but invalid value
// yields -1, which matches no row.
func QueryInt(c *fiber.Ctx, key string) *int {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		n = -1
	}
	return &n
}

// Decode unmarshals the JSON body into dst. An empty body decodes as {}.
func Decode(c *fiber.Ctx, dst interface{}) *validation.Errors {
	body := bytes.TrimSpace(c.Body())
	if len(body) == 0 {
		return nil
	}
	if body[0] != '{' {
		errs := validation.New()
		errs.Add("body", "The request body must be a valid JSON object.")
		return errs
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return validation.FromDecodeError(err)
	}
	return nil
}

// Trim trims s in place when set.
func Trim(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}

// TrimAll trims every element of ss in place.
func TrimAll(ss []string) {
	for i := range ss {
		ss[i] = strings.TrimSpace(ss[i])
	}
}
