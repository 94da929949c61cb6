package listing

import "slices"

const (
	// DefaultPageSize applies when no positive page size is supplied.
	DefaultPageSize = 20
	// MaxPageSize caps page sizes accepted from clients.
	MaxPageSize = 100
)

// Result is one page of a filtered, sorted listing.
type Result[T any] struct {
	Items      []T
	TotalCount int
	Page       int
	PageSize   int
	TotalPages int
}

// Paginate returns items[(page-1)*size : page*size]. Pages past the end yield an
// empty slice.
func Paginate[T any](items []T, page, size int) []T {
	page, size = normalizePage(page, size)
	// compare page counts so huge page numbers cannot overflow start
	if page > pageCount(len(items), size) {
		return []T{}
	}
	start := (page - 1) * size
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// TotalPages is ceil(total/size), never less than one.
func TotalPages(total, size int) int {
	_, size = normalizePage(1, size)
	if total <= 0 {
		return 1
	}
	return pageCount(total, size)
}

func pageCount(total, size int) int {
	pages := total / size
	if total%size != 0 {
		pages++
	}
	return pages
}

// Apply filters, stably sorts and paginates items without mutating the input.
func Apply[T Recorder](items []T, q Query) Result[T] {
	q = q.Normalize()
	filtered := Sorted(items, q.Filter, q.Sort)

	return Result[T]{
		Items:      Paginate(filtered, q.Page, q.PageSize),
		TotalCount: len(filtered),
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalPages: TotalPages(len(filtered), q.PageSize),
	}
}

// Sorted returns every item passing the filter, in comparator order.
func Sorted[T Recorder](items []T, f Filter, s SortState) []T {
	keep := BuildPredicate[T](f)
	out := make([]T, 0, len(items))
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	slices.SortStableFunc(out, BuildComparator[T](s))
	return out
}

func normalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	return page, size
}
