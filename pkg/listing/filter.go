package listing

import (
	"strings"
	"time"
)

// Tristate is a filter flag that may constrain true, constrain false, or not constrain at all.
type Tristate int

const (
	Either Tristate = iota
	Yes
	No
)

// DateRange bounds the item date. A nil bound is open on that side.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// IsZero reports whether neither bound is set.
func (r DateRange) IsZero() bool {
	return r.From == nil && r.To == nil
}

// Filter is a sparse set of constraints. The zero value accepts everything.
type Filter struct {
	Statuses     []string
	Type         string
	WeekNumber   *int
	Search       string
	DateRange    DateRange
	CourseID     string
	AssignmentID string
	Graded       Tristate
}

// IsZero reports whether the filter imposes no constraint.
func (f Filter) IsZero() bool {
	return len(f.Statuses) == 0 &&
		f.Type == "" &&
		f.WeekNumber == nil &&
		strings.TrimSpace(f.Search) == "" &&
		f.DateRange.IsZero() &&
		f.CourseID == "" &&
		f.AssignmentID == "" &&
		f.Graded == Either
}

// BuildPredicate turns a filter into a predicate. Every present constraint must hold.
func BuildPredicate[T Recorder](f Filter) func(T) bool {
	var statuses map[string]struct{}
	if len(f.Statuses) > 0 {
		statuses = make(map[string]struct{}, len(f.Statuses))
		for _, s := range f.Statuses {
			statuses[s] = struct{}{}
		}
	}
	needle := strings.ToLower(strings.TrimSpace(f.Search))

	return func(item T) bool {
		rec := item.ListRecord()

		if f.CourseID != "" && rec.CourseID != f.CourseID {
			return false
		}
		if f.AssignmentID != "" && rec.AssignmentID != f.AssignmentID {
			return false
		}
		if statuses != nil {
			if _, ok := statuses[rec.Status]; !ok {
				return false
			}
		}
		if f.Type != "" && rec.Type != f.Type {
			return false
		}
		if f.WeekNumber != nil {
			if rec.Date.IsZero() || ISOWeek(rec.Date) != *f.WeekNumber {
				return false
			}
		}
		if !f.DateRange.IsZero() && !inRange(rec.Date, f.DateRange) {
			return false
		}
		switch f.Graded {
		case Yes:
			if rec.Grade == nil {
				return false
			}
		case No:
			if rec.Grade != nil {
				return false
			}
		}
		if needle != "" && !matchesSearch(rec, needle) {
			return false
		}
		return true
	}
}

// inRange fails closed on a missing date.
func inRange(date time.Time, r DateRange) bool {
	if date.IsZero() {
		return false
	}
	if r.From != nil && date.Before(*r.From) {
		return false
	}
	if r.To != nil && date.After(*r.To) {
		return false
	}
	return true
}

func matchesSearch(rec Record, needle string) bool {
	if strings.Contains(strings.ToLower(rec.Title), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(rec.Description), needle) {
		return true
	}
	for _, req := range rec.Requirements {
		if strings.Contains(strings.ToLower(req), needle) {
			return true
		}
	}
	return false
}
