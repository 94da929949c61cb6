package listing

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Query parameter names shared by the REST API and its clients.
const (
	ParamCourseID         = "courseId"
	ParamAssignmentID     = "assignmentId"
	ParamStatuses         = "statuses"
	ParamStatus           = "status"
	ParamType             = "type"
	ParamWeekNumber       = "weekNumber"
	ParamSearch           = "search"
	ParamDueDateFrom      = "dueDateFrom"
	ParamDueDateTo        = "dueDateTo"
	ParamSubmittedAfter   = "submittedAfter"
	ParamSubmittedBefore  = "submittedBefore"
	ParamHasGrade         = "hasGrade"
	ParamSortBy           = "sortBy"
	ParamSortOrder        = "sortOrder"
	ParamPage             = "page"
	ParamLimit            = "limit"
	ParamIncludeVideoURLs = "includeVideoUrls"
	ParamVideoURLExpiry   = "videoUrlExpiry"
)

// ParamError reports a query parameter that could not be decoded.
type ParamError struct {
	Param string
	Value string
	Err   error
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("invalid %s %q: %v", e.Param, e.Value, e.Err)
}

func (e *ParamError) Unwrap() error { return e.Err }

// SubmissionOptions are submission listing switches that do not filter.
type SubmissionOptions struct {
	IncludeVideoURLs bool
	VideoURLExpiry   time.Duration
}

// EncodeAssignmentQuery serialises q using the assignment listing parameter names.
func EncodeAssignmentQuery(q Query) url.Values {
	v := url.Values{}
	f := q.Filter
	setString(v, ParamCourseID, f.CourseID)
	setString(v, ParamAssignmentID, f.AssignmentID)
	if len(f.Statuses) > 0 {
		v.Set(ParamStatuses, strings.Join(f.Statuses, ","))
	}
	setString(v, ParamType, f.Type)
	if f.WeekNumber != nil {
		v.Set(ParamWeekNumber, strconv.Itoa(*f.WeekNumber))
	}
	setString(v, ParamSearch, strings.TrimSpace(f.Search))
	setTime(v, ParamDueDateFrom, f.DateRange.From)
	setTime(v, ParamDueDateTo, f.DateRange.To)
	encodeSortAndPage(v, q)
	return v
}

// DecodeAssignmentQuery parses assignment listing parameters.
func DecodeAssignmentQuery(v url.Values, defaultPageSize int) (Query, error) {
	q := NewQuery(defaultPageSize)
	f := &q.Filter
	f.CourseID = strings.TrimSpace(v.Get(ParamCourseID))
	f.AssignmentID = strings.TrimSpace(v.Get(ParamAssignmentID))
	f.Statuses = splitList(v[ParamStatuses])
	f.Type = strings.TrimSpace(v.Get(ParamType))
	f.Search = strings.TrimSpace(v.Get(ParamSearch))

	if raw := v.Get(ParamWeekNumber); raw != "" {
		week, err := strconv.Atoi(raw)
		if err != nil || week < 1 || week > 53 {
			return Query{}, &ParamError{Param: ParamWeekNumber, Value: raw, Err: fmt.Errorf("must be an ISO week between 1 and 53")}
		}
		f.WeekNumber = &week
	}
	var err error
	if f.DateRange, err = decodeRange(v, ParamDueDateFrom, ParamDueDateTo); err != nil {
		return Query{}, err
	}
	if err := decodeSortAndPage(v, &q); err != nil {
		return Query{}, err
	}
	return q.Normalize(), nil
}

// EncodeSubmissionQuery serialises q and opts using the submission listing parameter names.
func EncodeSubmissionQuery(q Query, opts SubmissionOptions) url.Values {
	v := url.Values{}
	f := q.Filter
	setString(v, ParamCourseID, f.CourseID)
	setString(v, ParamAssignmentID, f.AssignmentID)
	if len(f.Statuses) > 0 {
		v.Set(ParamStatus, strings.Join(f.Statuses, ","))
	}
	switch f.Graded {
	case Yes:
		v.Set(ParamHasGrade, "true")
	case No:
		v.Set(ParamHasGrade, "false")
	}
	setString(v, ParamSearch, strings.TrimSpace(f.Search))
	setTime(v, ParamSubmittedAfter, f.DateRange.From)
	setTime(v, ParamSubmittedBefore, f.DateRange.To)
	if opts.IncludeVideoURLs {
		v.Set(ParamIncludeVideoURLs, "true")
		if opts.VideoURLExpiry > 0 {
			v.Set(ParamVideoURLExpiry, strconv.Itoa(int(opts.VideoURLExpiry/time.Second)))
		}
	}
	encodeSortAndPage(v, q)
	return v
}

// DecodeSubmissionQuery parses submission listing parameters.
func DecodeSubmissionQuery(v url.Values, defaultPageSize int) (Query, SubmissionOptions, error) {
	q := NewQuery(defaultPageSize)
	var opts SubmissionOptions
	f := &q.Filter
	f.CourseID = strings.TrimSpace(v.Get(ParamCourseID))
	f.AssignmentID = strings.TrimSpace(v.Get(ParamAssignmentID))
	f.Statuses = splitList(v[ParamStatus])
	f.Search = strings.TrimSpace(v.Get(ParamSearch))

	if raw := v.Get(ParamHasGrade); raw != "" {
		graded, err := strconv.ParseBool(raw)
		if err != nil {
			return Query{}, opts, &ParamError{Param: ParamHasGrade, Value: raw, Err: err}
		}
		if graded {
			f.Graded = Yes
		} else {
			f.Graded = No
		}
	}
	var err error
	if f.DateRange, err = decodeRange(v, ParamSubmittedAfter, ParamSubmittedBefore); err != nil {
		return Query{}, opts, err
	}
	if raw := v.Get(ParamIncludeVideoURLs); raw != "" {
		include, err := strconv.ParseBool(raw)
		if err != nil {
			return Query{}, opts, &ParamError{Param: ParamIncludeVideoURLs, Value: raw, Err: err}
		}
		opts.IncludeVideoURLs = include
	}
	if raw := v.Get(ParamVideoURLExpiry); raw != "" {
		secs, err := strconv.Atoi(raw)
		if err != nil || secs <= 0 {
			return Query{}, opts, &ParamError{Param: ParamVideoURLExpiry, Value: raw, Err: fmt.Errorf("must be a positive number of seconds")}
		}
		opts.VideoURLExpiry = time.Duration(secs) * time.Second
	}
	if err := decodeSortAndPage(v, &q); err != nil {
		return Query{}, opts, err
	}
	return q.Normalize(), opts, nil
}

func encodeSortAndPage(v url.Values, q Query) {
	q = q.Normalize()
	v.Set(ParamSortBy, string(q.Sort.Field))
	v.Set(ParamSortOrder, string(q.Sort.Order))
	v.Set(ParamPage, strconv.Itoa(q.Page))
	v.Set(ParamLimit, strconv.Itoa(q.PageSize))
}

func decodeSortAndPage(v url.Values, q *Query) error {
	if field, ok := ParseSortField(v.Get(ParamSortBy)); ok {
		q.Sort.Field = field
	}
	if order, ok := ParseSortOrder(v.Get(ParamSortOrder)); ok {
		q.Sort.Order = order
	}
	if raw := v.Get(ParamPage); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return &ParamError{Param: ParamPage, Value: raw, Err: err}
		}
		q.Page = page
	}
	if raw := v.Get(ParamLimit); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			return &ParamError{Param: ParamLimit, Value: raw, Err: err}
		}
		q.PageSize = size
	}
	return nil
}

func decodeRange(v url.Values, fromKey, toKey string) (DateRange, error) {
	var r DateRange
	if raw := v.Get(fromKey); raw != "" {
		t, err := ParseBound(raw, false)
		if err != nil {
			return r, &ParamError{Param: fromKey, Value: raw, Err: err}
		}
		r.From = &t
	}
	if raw := v.Get(toKey); raw != "" {
		t, err := ParseBound(raw, true)
		if err != nil {
			return r, &ParamError{Param: toKey, Value: raw, Err: err}
		}
		r.To = &t
	}
	if r.From != nil && r.To != nil && r.From.After(*r.To) {
		return r, &ParamError{Param: fromKey, Value: v.Get(fromKey), Err: fmt.Errorf("must not be after %s", toKey)}
	}
	return r, nil
}

// splitList accepts both repeated keys and comma separated values.
func splitList(values []string) []string {
	var out []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				out = append(out, trimmed)
			}
		}
	}
	return out
}

func setString(v url.Values, key, value string) {
	if value != "" {
		v.Set(key, value)
	}
}

func setTime(v url.Values, key string, t *time.Time) {
	if t != nil {
		v.Set(key, t.UTC().Format(time.RFC3339Nano))
	}
}
