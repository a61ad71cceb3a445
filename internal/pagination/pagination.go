// Package pagination implements opt-in page/page_size query handling for
// list endpoints.
package pagination

import (
	"math"

	"gorm.io/gorm"
)

// MaxPageSize caps page_size.
const MaxPageSize = 100

// PageRequest holds pagination parameters parsed from query strings. The zero
// value means "no pagination": list endpoints return every row.
type PageRequest struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// IsZero reports whether the client asked for pagination at all.
func (p PageRequest) IsZero() bool {
	return p.Page == 0 && p.PageSize == 0
}

// Defaults fills in defaults for a partially specified request.
func (p *PageRequest) Defaults() {
	if p.Page == 0 {
		p.Page = 1
	}
	if p.PageSize == 0 {
		p.PageSize = 20
	}
}

// Offset returns the SQL OFFSET for the current page.
func (p *PageRequest) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// PageResponse wraps a list of items with paging metadata.
type PageResponse[T any] struct {
	Data       []T   `json:"data"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// NewPageResponse creates a PageResponse from the given data and total count.
func NewPageResponse[T any](data []T, page, pageSize int, totalItems int64) PageResponse[T] {
	if data == nil {
		data = []T{}
	}
	totalPages := 0
	if pageSize > 0 {
		totalPages = int(math.Ceil(float64(totalItems) / float64(pageSize)))
	}
	return PageResponse[T]{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: totalItems,
		TotalPages: totalPages,
	}
}

// Find counts and loads the rows selected by query into a PageResponse. With
// a zero request every row is returned as a single page.
func Find[T any](query *gorm.DB, req PageRequest) (*PageResponse[T], error) {
	var totalItems int64
	if err := query.Session(&gorm.Session{}).Count(&totalItems).Error; err != nil {
		return nil, err
	}

	var items []T
	if req.IsZero() {
		if err := query.Find(&items).Error; err != nil {
			return nil, err
		}
		size := len(items)
		if size == 0 {
			size = 1
		}
		result := NewPageResponse(items, 1, size, totalItems)
		return &result, nil
	}

	req.Defaults()
	if err := query.Scopes(Paginate(req)).Find(&items).Error; err != nil {
		return nil, err
	}
	result := NewPageResponse(items, req.Page, req.PageSize, totalItems)
	return &result, nil
}

// Paginate returns a GORM scope that applies OFFSET and LIMIT for the given page request.
func Paginate(req PageRequest) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(req.Offset()).Limit(req.PageSize)
	}
}
