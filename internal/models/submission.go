package models

import (
	"database/sql/driver"
	"time"

	"github.com/noah-isme/coursework-api/pkg/listing"
)

// SubmissionStatus tracks where a student's work is in the grading flow.
type SubmissionStatus string

const (
	SubmissionStatusSubmitted SubmissionStatus = "submitted"
	SubmissionStatusGraded    SubmissionStatus = "graded"
	SubmissionStatusLate      SubmissionStatus = "late"
	SubmissionStatusReturned  SubmissionStatus = "returned"
	SubmissionStatusDraft     SubmissionStatus = "draft"
)

// IsValid reports whether the status is known.
func (s SubmissionStatus) IsValid() bool {
	switch s {
	case SubmissionStatusSubmitted, SubmissionStatusGraded, SubmissionStatusLate, SubmissionStatusReturned, SubmissionStatusDraft:
		return true
	default:
		return false
	}
}

// Metadata keys written by grading.
const (
	MetadataRubricScores    = "rubricScores"
	MetadataInstructorNotes = "instructorNotes"
)

// Submission is a student's answer to an assignment.
type Submission struct {
	ID              string             `db:"id" json:"id"`
	AssignmentID    string             `db:"assignment_id" json:"assignmentId"`
	CourseID        string             `db:"course_id" json:"courseId"`
	StudentID       string             `db:"student_id" json:"studentId"`
	Status          SubmissionStatus   `db:"status" json:"status"`
	SubmittedAt     time.Time          `db:"submitted_at" json:"submittedAt"`
	ProcessedAt     *time.Time         `db:"processed_at" json:"processedAt,omitempty"`
	Grade           *float64           `db:"grade" json:"grade,omitempty"`
	MaxScore        *float64           `db:"max_score" json:"maxScore,omitempty"`
	Feedback        *string            `db:"feedback" json:"feedback,omitempty"`
	Files           SubmissionFiles    `db:"files" json:"files"`
	Metadata        SubmissionMetadata `db:"metadata" json:"metadata,omitempty"`
	AssignmentTitle string             `db:"assignment_title" json:"assignmentTitle,omitempty"`
	CreatedAt       time.Time          `db:"created_at" json:"createdAt"`
}

// IsGraded reports whether a grade is recorded, whatever the status says.
func (s Submission) IsGraded() bool {
	return s.Grade != nil
}

// Percentage returns grade as a percentage of max score when both are usable.
func (s Submission) Percentage() (float64, bool) {
	if s.Grade == nil || s.MaxScore == nil || *s.MaxScore <= 0 {
		return 0, false
	}
	return *s.Grade / *s.MaxScore * 100, true
}

// ListRecord projects the submission for the listing pipeline.
func (s Submission) ListRecord() listing.Record {
	rec := listing.Record{
		Title:           s.AssignmentTitle,
		Status:          string(s.Status),
		Date:            s.SubmittedAt,
		CreatedAt:       s.CreatedAt,
		Grade:           s.Grade,
		AssignmentTitle: s.AssignmentTitle,
		CourseID:        s.CourseID,
		AssignmentID:    s.AssignmentID,
	}
	if s.Feedback != nil {
		rec.Description = *s.Feedback
	}
	if s.MaxScore != nil {
		rec.MaxScore = *s.MaxScore
	}
	return rec
}

// SubmissionFile describes one uploaded file.
type SubmissionFile struct {
	Name       string    `json:"name"`
	Path       string    `json:"path,omitempty"`
	URL        string    `json:"url,omitempty"`
	Size       int64     `json:"size"`
	MimeType   string    `json:"mimeType"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// IsVideo reports whether the file carries a video mime type.
func (f SubmissionFile) IsVideo() bool {
	return len(f.MimeType) >= 6 && f.MimeType[:6] == "video/"
}

// SubmissionFiles is persisted as a JSONB array.
type SubmissionFiles []SubmissionFile

// Value marshals the files for JSONB persistence.
func (f SubmissionFiles) Value() (driver.Value, error) {
	if f == nil {
		f = SubmissionFiles{}
	}
	return marshalJSONB([]SubmissionFile(f), "submission files")
}

// Scan unmarshals a JSONB array into the files.
func (f *SubmissionFiles) Scan(value interface{}) error {
	*f = SubmissionFiles{}
	return scanJSONB(value, f, "submission files")
}

// SubmissionMetadata is a free-form JSONB map.
type SubmissionMetadata map[string]interface{}

// Value marshals the metadata for JSONB persistence.
func (m SubmissionMetadata) Value() (driver.Value, error) {
	if m == nil {
		m = SubmissionMetadata{}
	}
	return marshalJSONB(map[string]interface{}(m), "submission metadata")
}

// Scan unmarshals a JSONB object into the metadata.
func (m *SubmissionMetadata) Scan(value interface{}) error {
	*m = SubmissionMetadata{}
	return scanJSONB(value, m, "submission metadata")
}

// SubmissionScope narrows which rows the repository loads before list filtering.
type SubmissionScope struct {
	CourseID     string
	AssignmentID string
	StudentID    string
}
