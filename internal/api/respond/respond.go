// Package respond defines the uniform response envelopes and the tagged
// result variant that transactional handlers return: a single record, a page
// of records, a raw pass-through response, or empty (meaning "not found").
package respond

import "context"

// Responder converts a record to its public, serializable shape. Results
// falling through without implementing it are rendered as-is.
type Responder interface {
	ResponseData() any
}

// Kind tags the variant of a handler result.
type Kind int

const (
	KindSingle Kind = iota
	KindPage
	KindRaw
	KindEmpty
)

// DataResponse is the `{data: ...}` envelope for single items.
type DataResponse struct {
	Data any `json:"data"`
}

// PaginationData describes one page of a list response. Total is the full
// matching row count, independent of page and size.
type PaginationData struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Size  int `json:"size"`
}

// PageResponse is the envelope for paginated lists.
type PageResponse struct {
	Data       []any          `json:"data"`
	Pagination PaginationData `json:"pagination"`
}

// Result is the value a transactional handler returns. Exactly one variant
// is set, distinguished by Kind.
type Result struct {
	kind    Kind
	item    any
	refresh func(context.Context) error
	page    PageResponse
	status  int
	body    any
}

// Single wraps one record for the `{data: ...}` envelope.
func Single(v any) Result {
	return Result{kind: KindSingle, item: v}
}

// WithRefresh attaches a post-commit refresh to a single result, used to
// re-read values the database computes at commit time.
func (r Result) WithRefresh(fn func(context.Context) error) Result {
	r.refresh = fn
	return r
}

// PageOf wraps one page of records plus the total matching row count. Items
// are converted to their serializable form when rendered.
func PageOf[T any](items []T, total, page, size int) Result {
	data := make([]any, len(items))
	for i := range items {
		data[i] = &items[i]
	}
	return Result{
		kind: KindPage,
		page: PageResponse{
			Data:       data,
			Pagination: PaginationData{Total: total, Page: page, Size: size},
		},
	}
}

// Raw passes a framework-level response through unchanged.
func Raw(status int, body any) Result {
	return Result{kind: KindRaw, status: status, body: body}
}

// Empty signals that the requested resource does not exist.
func Empty() Result {
	return Result{kind: KindEmpty}
}

// Kind returns the variant tag.
func (r Result) Kind() Kind {
	return r.kind
}

// Refresh runs the attached post-commit refresh, if any.
func (r Result) Refresh(ctx context.Context) error {
	if r.refresh == nil {
		return nil
	}
	return r.refresh(ctx)
}

// Envelope returns the single item wrapped in the data envelope, converted
// to its serializable form.
func (r Result) Envelope() DataResponse {
	return DataResponse{Data: serialize(r.item)}
}

// PageEnvelope returns the page with every item converted to its
// serializable form.
func (r Result) PageEnvelope() PageResponse {
	out := r.page
	out.Data = make([]any, len(r.page.Data))
	for i, item := range r.page.Data {
		out.Data[i] = serialize(item)
	}
	return out
}

// RawBody returns the status and body of a raw result.
func (r Result) RawBody() (int, any) {
	return r.status, r.body
}

func serialize(v any) any {
	if resp, ok := v.(Responder); ok {
		return resp.ResponseData()
	}
	return v
}
