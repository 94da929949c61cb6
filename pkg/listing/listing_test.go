package listing

import (
	"math"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	rec Record
}

func (i item) ListRecord() Record { return i.rec }

func titles(items []item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.rec.Title)
	}
	return out
}

func day(t *testing.T, raw string) time.Time {
	t.Helper()
	d, err := ParseDate(raw)
	require.NoError(t, err)
	return d
}

func ptr[T any](v T) *T { return &v }

func TestEmptyFilterAcceptsEverything(t *testing.T) {
	keep := BuildPredicate[item](Filter{})
	items := []item{
		{},
		{rec: Record{Title: "x", Status: "draft", Grade: ptr(3.0)}},
		{rec: Record{Date: time.Now(), Pinned: true}},
	}
	for _, it := range items {
		assert.True(t, keep(it))
	}
	assert.True(t, Filter{}.IsZero())
}

func TestStatusFilterRejectsExcludedStatus(t *testing.T) {
	it := item{rec: Record{Title: "Essay", Status: "draft", Type: "video-assignment", Date: time.Now()}}
	assert.True(t, BuildPredicate[item](Filter{Type: "video-assignment"})(it))
	assert.False(t, BuildPredicate[item](Filter{Type: "video-assignment", Statuses: []string{"published", "closed"}})(it))
	assert.True(t, BuildPredicate[item](Filter{Statuses: []string{"published", "draft"}})(it))
}

func TestSearchMatchesAnyTextField(t *testing.T) {
	items := []item{
		{rec: Record{Title: "Algorithm Basics"}},
		{rec: Record{Title: "Data Structures"}},
		{rec: Record{Title: "Graphs", Requirements: []string{"Explain ALGORITHM choice"}}},
		{rec: Record{Title: "Trees", Description: "no match here"}},
	}
	keep := BuildPredicate[item](Filter{Search: "algo"})

	var matched []string
	for _, it := range items {
		if keep(it) {
			matched = append(matched, it.rec.Title)
		}
	}
	assert.Equal(t, []string{"Algorithm Basics", "Graphs"}, matched)
}

func TestSearchScenarioOnlyFirstTitleMatches(t *testing.T) {
	items := []item{{rec: Record{Title: "Algorithm Basics"}}, {rec: Record{Title: "Data Structures"}}}
	res := Apply(items, Query{Filter: Filter{Search: "algo"}})
	assert.Equal(t, []string{"Algorithm Basics"}, titles(res.Items))
}

func TestISOWeekBoundaries(t *testing.T) {
	assert.Equal(t, 52, ISOWeek(day(t, "2023-12-31")))
	assert.Equal(t, 1, ISOWeek(day(t, "2024-01-01")))
	assert.Equal(t, 53, ISOWeek(day(t, "2020-12-31")))
	assert.Equal(t, 53, ISOWeek(day(t, "2021-01-01")))
	assert.Equal(t, 1, ISOWeek(day(t, "2024-12-31")))
}

func TestWeekFilterAcrossYearBoundary(t *testing.T) {
	dec31 := item{rec: Record{Title: "dec31", Date: day(t, "2023-12-31")}}
	jan1 := item{rec: Record{Title: "jan1", Date: day(t, "2024-01-01")}}

	week1 := BuildPredicate[item](Filter{WeekNumber: ptr(1)})
	assert.False(t, week1(dec31))
	assert.True(t, week1(jan1))

	week52 := BuildPredicate[item](Filter{WeekNumber: ptr(52)})
	assert.True(t, week52(dec31))
	assert.False(t, week52(jan1))
}

func TestDateFiltersFailClosedOnMissingDate(t *testing.T) {
	undated := item{rec: Record{Title: "undated"}}
	from := day(t, "2024-01-01")
	assert.False(t, BuildPredicate[item](Filter{WeekNumber: ptr(1)})(undated))
	assert.False(t, BuildPredicate[item](Filter{DateRange: DateRange{From: &from}})(undated))
}

func TestDateRangeScenario(t *testing.T) {
	start, err := ParseBound("2024-12-01", false)
	require.NoError(t, err)
	end, err := ParseBound("2024-12-31", true)
	require.NoError(t, err)
	keep := BuildPredicate[item](Filter{DateRange: DateRange{From: &start, To: &end}})

	assert.False(t, keep(item{rec: Record{Date: day(t, "2025-01-05")}}))
	assert.True(t, keep(item{rec: Record{Date: day(t, "2024-12-01")}}))
	assert.True(t, keep(item{rec: Record{Date: day(t, "2024-12-31T18:00:00Z")}}))
	assert.False(t, keep(item{rec: Record{Date: day(t, "2024-11-30T23:59:59Z")}}))
}

func TestDateRangeOpenBounds(t *testing.T) {
	start := day(t, "2024-06-01")
	keep := BuildPredicate[item](Filter{DateRange: DateRange{From: &start}})
	assert.True(t, keep(item{rec: Record{Date: day(t, "2030-01-01")}}))
	assert.False(t, keep(item{rec: Record{Date: day(t, "2024-05-31")}}))
}

func TestGradedTristate(t *testing.T) {
	graded := item{rec: Record{Grade: ptr(80.0), Status: "submitted"}}
	ungraded := item{rec: Record{Status: "graded"}}

	assert.True(t, BuildPredicate[item](Filter{Graded: Yes})(graded))
	assert.False(t, BuildPredicate[item](Filter{Graded: Yes})(ungraded))
	assert.False(t, BuildPredicate[item](Filter{Graded: No})(graded))
	assert.True(t, BuildPredicate[item](Filter{Graded: No})(ungraded))
	assert.True(t, BuildPredicate[item](Filter{Graded: Either})(ungraded))
}

func TestComparatorPinnedAlwaysFirst(t *testing.T) {
	pinned := item{rec: Record{Title: "Z", MaxScore: 1, Pinned: true}}
	plain := item{rec: Record{Title: "A", MaxScore: 100, Highlighted: true}}

	for _, field := range []SortField{SortByTitle, SortByMaxScore, SortByDueDate, SortByGrade} {
		for _, order := range []SortOrder{Asc, Desc} {
			cmp := BuildComparator[item](SortState{Field: field, Order: order})
			assert.Negative(t, cmp(pinned, plain), "%s %s", field, order)
			assert.Positive(t, cmp(plain, pinned), "%s %s", field, order)
		}
	}
}

func TestSubmittedAtSortsByRecordDate(t *testing.T) {
	field, ok := ParseSortField("submittedAt")
	require.True(t, ok)
	assert.Equal(t, SortBySubmittedAt, field)

	early := item{rec: Record{Title: "early", Date: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}}
	late := item{rec: Record{Title: "late", Date: time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC)}}
	items := []item{late, early}

	for _, f := range []SortField{SortBySubmittedAt, SortByDueDate} {
		res := Apply(items, Query{Sort: SortState{Field: f, Order: Asc}})
		assert.Equal(t, []string{"early", "late"}, titles(res.Items), f)
		res = Apply(items, Query{Sort: SortState{Field: f, Order: Desc}})
		assert.Equal(t, []string{"late", "early"}, titles(res.Items), f)
	}
}

func TestComparatorHighlightedBeforePlain(t *testing.T) {
	highlighted := item{rec: Record{Title: "Z", Highlighted: true}}
	plain := item{rec: Record{Title: "A"}}
	cmp := BuildComparator[item](SortState{Field: SortByTitle, Order: Desc})
	assert.Negative(t, cmp(highlighted, plain))
}

func TestComparatorDescReversesField(t *testing.T) {
	a := item{rec: Record{Title: "a", MaxScore: 10}}
	b := item{rec: Record{Title: "b", MaxScore: 90}}

	asc := BuildComparator[item](SortState{Field: SortByMaxScore, Order: Asc})
	desc := BuildComparator[item](SortState{Field: SortByMaxScore, Order: Desc})
	assert.Negative(t, asc(a, b))
	assert.Positive(t, desc(a, b))
	assert.Equal(t, asc(a, b), -desc(a, b))
}

func TestComparatorStringsIgnoreCase(t *testing.T) {
	cmp := BuildComparator[item](SortState{Field: SortByTitle, Order: Asc})
	assert.Negative(t, cmp(item{rec: Record{Title: "apple"}}, item{rec: Record{Title: "Banana"}}))
	assert.Zero(t, cmp(item{rec: Record{Title: "SAME"}}, item{rec: Record{Title: "same"}}))
}

func TestComparatorMissingGradeSortsLow(t *testing.T) {
	cmp := BuildComparator[item](SortState{Field: SortByGrade, Order: Asc})
	assert.Negative(t, cmp(item{}, item{rec: Record{Grade: ptr(0.0)}}))
}

func TestPinnedScenarioOrder(t *testing.T) {
	items := []item{
		{rec: Record{Title: "B", MaxScore: 50}},
		{rec: Record{Title: "A", MaxScore: 90, Pinned: true}},
		{rec: Record{Title: "C", MaxScore: 10}},
	}
	res := Apply(items, Query{Sort: SortState{Field: SortByTitle, Order: Asc}})
	assert.Equal(t, []string{"A", "B", "C"}, titles(res.Items))

	res = Apply(items, Query{Sort: SortState{Field: SortByMaxScore, Order: Asc}})
	assert.Equal(t, []string{"A", "C", "B"}, titles(res.Items))

	assert.Equal(t, "B", items[0].rec.Title, "input must not be reordered")
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3}
	assert.Empty(t, Paginate(items, 5, 10))
	assert.NotNil(t, Paginate(items, 5, 10))
	assert.Equal(t, []int{1, 2}, Paginate(items, 1, 2))
	assert.Equal(t, []int{3}, Paginate(items, 2, 2))
	assert.Equal(t, []int{1, 2, 3}, Paginate(items, 0, 0))
	assert.Empty(t, Paginate([]int{}, 1, 10))
}

func TestPaginateHugePageReturnsEmpty(t *testing.T) {
	items := []int{1, 2, 3}
	assert.NotPanics(t, func() {
		assert.Empty(t, Paginate(items, math.MaxInt, 20))
		assert.Empty(t, Paginate(items, math.MaxInt/10, 20))
		assert.Empty(t, Paginate(items, 2, math.MaxInt))
	})
	assert.Equal(t, []int{1, 2, 3}, Paginate(items, 1, math.MaxInt))
}

func TestApplyWithDecodedHugePage(t *testing.T) {
	q, err := DecodeAssignmentQuery(url.Values{"page": {"922337203685477580"}, "limit": {"20"}}, DefaultPageSize)
	require.NoError(t, err)

	items := []item{{rec: Record{Title: "A"}}, {rec: Record{Title: "B"}}}
	var res Result[item]
	assert.NotPanics(t, func() { res = Apply(items, q) })
	assert.Empty(t, res.Items)
	assert.Equal(t, 2, res.TotalCount)
	assert.Equal(t, 1, res.TotalPages)
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 1, TotalPages(0, 10))
	assert.Equal(t, 1, TotalPages(10, 10))
	assert.Equal(t, 2, TotalPages(11, 10))
	assert.Equal(t, 3, TotalPages(3, 1))
	assert.Equal(t, 1, TotalPages(2, math.MaxInt))
}

func TestApplyReportsTotals(t *testing.T) {
	items := make([]item, 0, 25)
	for i := 0; i < 25; i++ {
		items = append(items, item{rec: Record{Title: string(rune('a' + i)), Status: "published"}})
	}
	res := Apply(items, Query{Page: 3, PageSize: 10, Sort: SortState{Field: SortByTitle}})
	assert.Equal(t, 25, res.TotalCount)
	assert.Equal(t, 3, res.TotalPages)
	assert.Len(t, res.Items, 5)
	assert.Equal(t, "u", res.Items[0].rec.Title)
}
