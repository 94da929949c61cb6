package listing

import (
	"cmp"
	"strings"
)

// SortField names a sortable column.
type SortField string

const (
	SortByDueDate         SortField = "dueDate"
	SortByCreatedAt       SortField = "createdAt"
	SortByTitle           SortField = "title"
	SortByMaxScore        SortField = "maxScore"
	SortByStatus          SortField = "status"
	SortByGrade           SortField = "grade"
	SortByAssignmentTitle SortField = "assignmentTitle"
	// SortBySubmittedAt orders by Record.Date like SortByDueDate. Both read
	// the row's date, which is the submission time for submissions.
	SortBySubmittedAt SortField = "submittedAt"
)

// SortOrder is either ascending or descending.
type SortOrder string

const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

// SortState pairs a field with an order.
type SortState struct {
	Field SortField
	Order SortOrder
}

// DefaultSort orders by due date, earliest first.
var DefaultSort = SortState{Field: SortByDueDate, Order: Asc}

// ParseSortField resolves a sort field name.
func ParseSortField(raw string) (SortField, bool) {
	switch f := SortField(strings.TrimSpace(raw)); f {
	case SortByDueDate, SortByCreatedAt, SortByTitle, SortByMaxScore, SortByStatus, SortByGrade,
		SortByAssignmentTitle, SortBySubmittedAt:
		return f, true
	default:
		return "", false
	}
}

// ParseSortOrder resolves a sort order, case-insensitively.
func ParseSortOrder(raw string) (SortOrder, bool) {
	switch o := SortOrder(strings.ToLower(strings.TrimSpace(raw))); o {
	case Asc, Desc:
		return o, true
	default:
		return "", false
	}
}

// Normalize fills in defaults for missing parts.
func (s SortState) Normalize() SortState {
	if _, ok := ParseSortField(string(s.Field)); !ok {
		s.Field = DefaultSort.Field
	}
	if s.Order != Desc {
		s.Order = Asc
	}
	return s
}

// BuildComparator returns a three-way comparator. Pinned items come first, then
// highlighted ones, then the requested field decides. Desc only inverts the field
// comparison; pinning and highlighting always lead.
func BuildComparator[T Recorder](s SortState) func(a, b T) int {
	s = s.Normalize()
	field := fieldComparator(s.Field)

	return func(a, b T) int {
		ra, rb := a.ListRecord(), b.ListRecord()
		if c := compareFlag(ra.Pinned, rb.Pinned); c != 0 {
			return c
		}
		if c := compareFlag(ra.Highlighted, rb.Highlighted); c != 0 {
			return c
		}
		c := field(ra, rb)
		if s.Order == Desc {
			return -c
		}
		return c
	}
}

// compareFlag puts true before false.
func compareFlag(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return -1
	default:
		return 1
	}
}

func fieldComparator(f SortField) func(a, b Record) int {
	switch f {
	case SortByCreatedAt:
		return func(a, b Record) int { return a.CreatedAt.Compare(b.CreatedAt) }
	case SortByTitle:
		return func(a, b Record) int { return compareFold(a.Title, b.Title) }
	case SortByMaxScore:
		return func(a, b Record) int { return cmp.Compare(a.MaxScore, b.MaxScore) }
	case SortByStatus:
		return func(a, b Record) int { return compareFold(a.Status, b.Status) }
	case SortByGrade:
		return func(a, b Record) int { return compareGrade(a.Grade, b.Grade) }
	case SortByAssignmentTitle:
		return func(a, b Record) int { return compareFold(a.AssignmentTitle, b.AssignmentTitle) }
	default: // SortByDueDate, SortBySubmittedAt
		return func(a, b Record) int { return a.Date.Compare(b.Date) }
	}
}

func compareFold(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

// compareGrade ranks a missing grade below any present one.
func compareGrade(a, b *float64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	default:
		return cmp.Compare(*a, *b)
	}
}
