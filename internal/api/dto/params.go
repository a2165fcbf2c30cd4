package dto

import "contentbe/internal/apperr"

const (
	DefaultPage = 1
	DefaultSize = 10
	MaxSize     = 100
)

// Params are the shared pagination query parameters for list endpoints.
// Defaults apply only when a parameter is omitted; an explicit size=0 is
// rejected by Validate.
type Params struct {
	Page int `form:"page,default=1"`
	Size int `form:"size,default=10"`
}

// Validate rejects out-of-range values: page must be >= 1 and size must be
// in [1, MaxSize].
func (p Params) Validate() error {
	if p.Page < 1 {
		return apperr.BadRequest("page must be greater than or equal to 1")
	}
	if p.Size < 1 || p.Size > MaxSize {
		return apperr.BadRequest("size must be between 1 and 100")
	}
	return nil
}

// Limit returns the page size as a query limit.
func (p Params) Limit() int {
	return p.Size
}

// Offset returns the row offset of the first item on the page.
func (p Params) Offset() int {
	return p.Size * (p.Page - 1)
}
