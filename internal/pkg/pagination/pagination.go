// Package pagination implements page/per_page paging over GORM queries.
package pagination

import (
	"fmt"
	"math"
	"net/url"
	"strconv"

	"gorm.io/gorm"
)

// Params is a validated page request. Page is 1-based.
type Params struct {
	Page    int
	PerPage int
}

// Parse reads raw page and per_page values. Missing or invalid values fall
// back to page 1 and def; per_page is capped at max, and page at the last
// page whose offset still fits in an int.
func Parse(page, perPage string, def, max int) Params {
	p := Params{Page: 1, PerPage: def}
	if n, err := strconv.Atoi(page); err == nil && n > 0 {
		p.Page = n
	}
	if n, err := strconv.Atoi(perPage); err == nil && n > 0 {
		p.PerPage = n
	}
	if max > 0 && p.PerPage > max {
		p.PerPage = max
	}
	if p.PerPage > 0 && p.Page > math.MaxInt/p.PerPage {
		p.Page = math.MaxInt / p.PerPage
	}
	return p
}

// Offset is the number of rows skipped before this page. It saturates at
// math.MaxInt instead of wrapping negative.
func (p Params) Offset() int {
	if p.Page <= 1 || p.PerPage <= 0 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.PerPage {
		return math.MaxInt
	}
	return (p.Page - 1) * p.PerPage
}

// Meta is the pagination block of a collection document.
type Meta struct {
	CurrentPage int   `json:"current_page"`
	LastPage    int   `json:"last_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
}

// NewMeta computes the meta block. LastPage is at least 1.
func NewMeta(p Params, total int64) Meta {
	last := 1
	if total > 0 {
		last = int((total + int64(p.PerPage) - 1) / int64(p.PerPage))
	}
	return Meta{CurrentPage: p.Page, LastPage: last, PerPage: p.PerPage, Total: total}
}

// Links are navigation URLs. Prev and Next are null at the edges.
type Links struct {
	First string  `json:"first"`
	Last  string  `json:"last"`
	Prev  *string `json:"prev"`
	Next  *string `json:"next"`
}

// NewLinks builds links on path, keeping every other query parameter.
func NewLinks(path string, query url.Values, m Meta) Links {
	at := func(page int) string {
		q := url.Values{}
		for k, v := range query {
			q[k] = v
		}
		q.Set("page", strconv.Itoa(page))
		return path + "?" + q.Encode()
	}
	l := Links{First: at(1), Last: at(m.LastPage)}
	if m.CurrentPage > 1 {
		prev := at(m.CurrentPage - 1)
		l.Prev = &prev
	}
	if m.CurrentPage < m.LastPage {
		next := at(m.CurrentPage + 1)
		l.Next = &next
	}
	return l
}

// Page is one page of results.
type Page[T any] struct {
	Items []T
	Meta  Meta
}

// Paginate counts rows matched by base, then loads the requested page through
// load, which adds preloads, selects and ordering. base must carry a Model.
func Paginate[T any](base *gorm.DB, p Params, load func(*gorm.DB) *gorm.DB) (Page[T], error) {
	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return Page[T]{}, fmt.Errorf("count: %w", err)
	}
	items := make([]T, 0, p.PerPage)
	q := base.Session(&gorm.Session{})
	if load != nil {
		q = load(q)
	}
	if err := q.Offset(p.Offset()).Limit(p.PerPage).Find(&items).Error; err != nil {
		return Page[T]{}, fmt.Errorf("find: %w", err)
	}
	return Page[T]{Items: items, Meta: NewMeta(p, total)}, nil
}
