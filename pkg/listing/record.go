// Package listing implements the filter, sort and pagination pipeline shared by
// every assignment and submission list.
package listing

import "time"

// Record is the projection of a list item that the pipeline reads.
type Record struct {
	Title           string
	Description     string
	Requirements    []string
	Status          string
	Type            string
	Date            time.Time
	CreatedAt       time.Time
	MaxScore        float64
	Grade           *float64
	AssignmentTitle string
	CourseID        string
	AssignmentID    string
	Pinned          bool
	Highlighted     bool
}

// Recorder is implemented by anything that can be listed.
type Recorder interface {
	ListRecord() Record
}
