package shared

// Default and maximum list page sizes
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Filter is the paging, ordering and free-text part of a list query.
// Repositories whitelist OrderBy; an unknown column falls back to their
// default ordering.
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
}

// DefaultFilter is page 1 of DefaultPageSize, newest first
func DefaultFilter() Filter {
	return Filter{Page: 1, PageSize: DefaultPageSize, OrderBy: "created_at", OrderDir: "desc"}
}

// WithPage applies a requested page and size, ignoring values below 1 and
// capping the size at MaxPageSize.
func (f Filter) WithPage(page, size int) Filter {
	if page > 0 {
		f.Page = page
	}
	if size > 0 {
		f.PageSize = min(size, MaxPageSize)
	}
	return f
}

// Offset is the number of rows before the filter's page
func (f Filter) Offset() int {
	if f.Page < 1 || f.PageSize < 1 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}
