package pagination

// Response is the generic paginated response body.
// T is the type of data items (e.g. review.ItemDTO, search.ResultDTO).
//
// TotalCount is only present on offset endpoints; NextCursor is null when
// HasMore is false.
type Response[T any] struct {
	Items      []T     `json:"items"`
	TotalCount *int64  `json:"totalCount,omitempty"`
	HasMore    bool    `json:"hasMore"`
	NextCursor *string `json:"nextCursor"`
}

// NewResponse builds a response for a page whose items were already converted to T.
// withTotal controls whether the page's TotalCount is reported.
func NewResponse[T any](items []T, page *Page, withTotal bool) Response[T] {
	if items == nil {
		items = []T{}
	}
	resp := Response[T]{
		Items:   items,
		HasMore: page.HasMore,
	}
	if withTotal {
		total := page.TotalCount
		resp.TotalCount = &total
	}
	if page.NextCursor != "" {
		next := page.NextCursor
		resp.NextCursor = &next
	}
	return resp
}
