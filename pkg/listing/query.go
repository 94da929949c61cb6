package listing

// Query is the complete state of one list: what to show, in which order, and which page.
type Query struct {
	Filter   Filter
	Sort     SortState
	Page     int
	PageSize int
}

// NewQuery returns the first page with the default sort and no filter.
func NewQuery(pageSize int) Query {
	return Query{Sort: DefaultSort, Page: 1, PageSize: pageSize}.Normalize()
}

// Normalize clamps page and size and fills in the default sort.
func (q Query) Normalize() Query {
	q.Page, q.PageSize = normalizePage(q.Page, q.PageSize)
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
	q.Sort = q.Sort.Normalize()
	return q
}

// Action is a single change to a Query. The set of actions is closed.
type Action interface {
	apply(Query) Query
}

// SetFilter replaces the whole filter.
type SetFilter struct{ Filter Filter }

// SetSearch changes the free-text search.
type SetSearch struct{ Search string }

// SetStatuses changes the accepted statuses. An empty slice removes the constraint.
type SetStatuses struct{ Statuses []string }

// SetWeek changes the ISO week constraint. Nil removes it.
type SetWeek struct{ Week *int }

// SetGraded changes the graded constraint.
type SetGraded struct{ Graded Tristate }

// SetDateRange changes the date range.
type SetDateRange struct{ Range DateRange }

// ResetFilter clears every filter constraint.
type ResetFilter struct{}

// SetSort changes the sort field and order.
type SetSort struct{ Sort SortState }

// SetPage moves to another page.
type SetPage struct{ Page int }

// SetPageSize changes the page size.
type SetPageSize struct{ PageSize int }

func (a SetFilter) apply(q Query) Query { q.Filter = a.Filter; q.Page = 1; return q }

func (a SetSearch) apply(q Query) Query { q.Filter.Search = a.Search; q.Page = 1; return q }

func (a SetStatuses) apply(q Query) Query {
	q.Filter.Statuses = append([]string(nil), a.Statuses...)
	q.Page = 1
	return q
}

func (a SetWeek) apply(q Query) Query {
	if a.Week == nil {
		q.Filter.WeekNumber = nil
	} else {
		w := *a.Week
		q.Filter.WeekNumber = &w
	}
	q.Page = 1
	return q
}

func (a SetGraded) apply(q Query) Query { q.Filter.Graded = a.Graded; q.Page = 1; return q }

func (a SetDateRange) apply(q Query) Query { q.Filter.DateRange = a.Range; q.Page = 1; return q }

func (ResetFilter) apply(q Query) Query { q.Filter = Filter{}; q.Page = 1; return q }

func (a SetSort) apply(q Query) Query { q.Sort = a.Sort; return q }

func (a SetPage) apply(q Query) Query { q.Page = a.Page; return q }

func (a SetPageSize) apply(q Query) Query { q.PageSize = a.PageSize; q.Page = 1; return q }

// Update returns the query with the action applied. Filter and page size changes
// go back to the first page.
func (q Query) Update(a Action) Query {
	if a == nil {
		return q
	}
	return a.apply(q).Normalize()
}
