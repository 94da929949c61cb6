package listing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryUpdateResetsPageOnFilterChange(t *testing.T) {
	q := NewQuery(10).Update(SetPage{Page: 4})
	require.Equal(t, 4, q.Page)

	q = q.Update(SetSearch{Search: "essay"})
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, "essay", q.Filter.Search)

	q = q.Update(SetPage{Page: 2}).Update(SetSort{Sort: SortState{Field: SortByTitle, Order: Desc}})
	assert.Equal(t, 2, q.Page, "sorting keeps the page")
	assert.Equal(t, SortByTitle, q.Sort.Field)

	q = q.Update(SetPageSize{PageSize: 500})
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, MaxPageSize, q.PageSize)
}

func TestQueryUpdateDoesNotAlias(t *testing.T) {
	week := 7
	statuses := []string{"published"}
	q := NewQuery(10).Update(SetWeek{Week: &week}).Update(SetStatuses{Statuses: statuses})
	week = 9
	statuses[0] = "draft"
	assert.Equal(t, 7, *q.Filter.WeekNumber)
	assert.Equal(t, []string{"published"}, q.Filter.Statuses)

	q = q.Update(ResetFilter{})
	assert.True(t, q.Filter.IsZero())
	assert.Equal(t, q, q.Update(nil))
}

func TestAssignmentQueryRoundTrip(t *testing.T) {
	week := 12
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 31, 23, 59, 59, 999999999, time.UTC)
	q := Query{
		Filter: Filter{
			CourseID:   "course-1",
			Statuses:   []string{"published", "closed"},
			Type:       "video-assignment",
			WeekNumber: &week,
			Search:     "essay",
			DateRange:  DateRange{From: &from, To: &to},
		},
		Sort:     SortState{Field: SortByMaxScore, Order: Desc},
		Page:     2,
		PageSize: 15,
	}

	values := EncodeAssignmentQuery(q)
	assert.Equal(t, "published,closed", values.Get(ParamStatuses))
	assert.Equal(t, "12", values.Get(ParamWeekNumber))

	decoded, err := DecodeAssignmentQuery(values, 20)
	require.NoError(t, err)
	assert.Equal(t, q.Filter.Statuses, decoded.Filter.Statuses)
	assert.Equal(t, week, *decoded.Filter.WeekNumber)
	assert.True(t, from.Equal(*decoded.Filter.DateRange.From))
	assert.True(t, to.Equal(*decoded.Filter.DateRange.To))
	assert.Equal(t, q.Sort, decoded.Sort)
	assert.Equal(t, 2, decoded.Page)
	assert.Equal(t, 15, decoded.PageSize)
}

func TestDecodeAssignmentQueryDefaultsAndErrors(t *testing.T) {
	q, err := DecodeAssignmentQuery(map[string][]string{ParamSortBy: {"bogus"}}, 20)
	require.NoError(t, err)
	assert.Equal(t, DefaultSort, q.Sort)
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, 20, q.PageSize)

	_, err = DecodeAssignmentQuery(map[string][]string{ParamWeekNumber: {"54"}}, 20)
	var perr *ParamError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, ParamWeekNumber, perr.Param)

	_, err = DecodeAssignmentQuery(map[string][]string{ParamDueDateFrom: {"yesterday"}}, 20)
	require.ErrorAs(t, err, &perr)

	_, err = DecodeAssignmentQuery(map[string][]string{ParamDueDateFrom: {"2024-05-02"}, ParamDueDateTo: {"2024-05-01"}}, 20)
	require.ErrorAs(t, err, &perr)
}

func TestDecodeAssignmentQueryDateOnlyEndCoversDay(t *testing.T) {
	q, err := DecodeAssignmentQuery(map[string][]string{ParamDueDateTo: {"2024-12-31"}}, 20)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 12, 31, 23, 59, 59, 999999999, time.UTC), *q.Filter.DateRange.To)
}

func TestSubmissionQueryRoundTrip(t *testing.T) {
	after := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)
	q := Query{
		Filter: Filter{
			CourseID:     "c1",
			AssignmentID: "a1",
			Statuses:     []string{"late"},
			Graded:       No,
			DateRange:    DateRange{From: &after},
		},
		Sort:     SortState{Field: SortByGrade, Order: Desc},
		Page:     1,
		PageSize: 50,
	}
	opts := SubmissionOptions{IncludeVideoURLs: true, VideoURLExpiry: 90 * time.Second}

	values := EncodeSubmissionQuery(q, opts)
	assert.Equal(t, "false", values.Get(ParamHasGrade))
	assert.Equal(t, "90", values.Get(ParamVideoURLExpiry))

	decoded, decodedOpts, err := DecodeSubmissionQuery(values, 20)
	require.NoError(t, err)
	assert.Equal(t, No, decoded.Filter.Graded)
	assert.Equal(t, []string{"late"}, decoded.Filter.Statuses)
	assert.Equal(t, "a1", decoded.Filter.AssignmentID)
	assert.True(t, after.Equal(*decoded.Filter.DateRange.From))
	assert.Nil(t, decoded.Filter.DateRange.To)
	assert.Equal(t, opts, decodedOpts)
}

func TestDecodeSubmissionQueryRejectsBadFlags(t *testing.T) {
	_, _, err := DecodeSubmissionQuery(map[string][]string{ParamHasGrade: {"maybe"}}, 20)
	assert.Error(t, err)
	_, _, err = DecodeSubmissionQuery(map[string][]string{ParamVideoURLExpiry: {"-5"}}, 20)
	assert.Error(t, err)
	_, _, err = DecodeSubmissionQuery(map[string][]string{ParamPage: {"two"}}, 20)
	assert.Error(t, err)
}
