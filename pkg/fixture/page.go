package fixture

// Default pagination values.
const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// ListQuery selects a page of filtered records.
type ListQuery[T any] struct {
	Where    func(T) bool
	Page     int
	PageSize int
}

// Page is one page of a filtered list.
type Page[T any] struct {
	Items      []T
	Current    int
	PageSize   int
	Total      int
	TotalPages int
}

// Paginate slices items to the requested 1-based page. Out of range values
// fall back to the defaults, and pages past the end are empty.
func Paginate[T any](items []T, page, pageSize int) Page[T] {
	if page < 1 {
		page = DefaultPage
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	total := len(items)
	start := total
	if page-1 <= total/pageSize {
		start = min((page-1)*pageSize, total)
	}
	end := min(start+pageSize, total)

	return Page[T]{
		Items:      items[start:end],
		Current:    page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: (total + pageSize - 1) / pageSize,
	}
}
