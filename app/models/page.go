package models

import "math"

const (
	DefaultPageSize = 10
	MaxPageSize     = 100

	// PageLinkWindow is how many page links are shown on each side of the current page.
	PageLinkWindow = 5
)

var sortableFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"title":      true,
}

// SortByIDDesc is the newest-first order every board listing uses.
var SortByIDDesc = Sort{Field: "id", Desc: true}

// Normalize clamps the page number and size into range and replaces an unknown
// sort field with id. The page number is capped so Offset stays within int32.
func (r PageRequest) Normalize() PageRequest {
	if r.Number < 0 {
		r.Number = 0
	}
	if r.Size < 1 {
		r.Size = DefaultPageSize
	}
	if r.Size > MaxPageSize {
		r.Size = MaxPageSize
	}
	if maxPage := math.MaxInt32 / r.Size; r.Number > maxPage {
		r.Number = maxPage
	}
	if !sortableFields[r.Sort.Field] {
		r.Sort = SortByIDDesc
	}
	return r
}

// Offset is the number of rows skipped before this page.
func (r PageRequest) Offset() int {
	return r.Number * r.Size
}

// NewPage builds page metadata for items fetched with req out of total rows.
func NewPage[T any](items []T, req PageRequest, total int64) Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if req.Size > 0 {
		pages = int((total + int64(req.Size) - 1) / int64(req.Size))
	}
	return Page[T]{
		Items:         items,
		Number:        req.Number,
		Size:          req.Size,
		TotalElements: total,
		TotalPages:    pages,
	}
}

func (p Page[T]) HasPrevious() bool { return p.Number > 0 }

func (p Page[T]) HasNext() bool { return p.Number+1 < p.TotalPages }

func (p Page[T]) Previous() int { return p.Number - 1 }

func (p Page[T]) Next() int { return p.Number + 1 }

// IsEmpty reports whether the page holds no items.
func (p Page[T]) IsEmpty() bool { return len(p.Items) == 0 }

// Numbers lists the page indexes within PageLinkWindow of the current page,
// for rendering page links.
func (p Page[T]) Numbers() []int {
	first := max(p.Number-PageLinkWindow, 0)
	last := min(p.Number+PageLinkWindow, p.TotalPages-1)
	if last < first {
		return []int{}
	}
	nums := make([]int, 0, last-first+1)
	for i := first; i <= last; i++ {
		nums = append(nums, i)
	}
	return nums
}
