package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/noah-isme/coursework-api/pkg/listing"
)

// AssignmentType enumerates the kinds of coursework an instructor can publish.
type AssignmentType string

const (
	AssignmentTypeVideoAssignment AssignmentType = "video-assignment"
	AssignmentTypeVideoDiscussion AssignmentType = "video-discussion"
	AssignmentTypeVideoAssessment AssignmentType = "video-assessment"
	AssignmentTypeTextAssignment  AssignmentType = "text-assignment"
	AssignmentTypeQuiz            AssignmentType = "quiz"
)

// AssignmentStatus captures the publication lifecycle of an assignment.
type AssignmentStatus string

const (
	AssignmentStatusDraft     AssignmentStatus = "draft"
	AssignmentStatusPublished AssignmentStatus = "published"
	AssignmentStatusClosed    AssignmentStatus = "closed"
	AssignmentStatusArchived  AssignmentStatus = "archived"
)

// StudentVisibleAssignmentStatuses are the statuses students may list.
var StudentVisibleAssignmentStatuses = []string{
	string(AssignmentStatusPublished),
	string(AssignmentStatusClosed),
}

// IsValid reports whether the status is known.
func (s AssignmentStatus) IsValid() bool {
	switch s {
	case AssignmentStatusDraft, AssignmentStatusPublished, AssignmentStatusClosed, AssignmentStatusArchived:
		return true
	default:
		return false
	}
}

// IsValid reports whether the type is known.
func (t AssignmentType) IsValid() bool {
	switch t {
	case AssignmentTypeVideoAssignment, AssignmentTypeVideoDiscussion, AssignmentTypeVideoAssessment, AssignmentTypeTextAssignment, AssignmentTypeQuiz:
		return true
	default:
		return false
	}
}

// Assignment is a piece of coursework attached to a course.
type Assignment struct {
	ID              string             `db:"id" json:"id"`
	CourseID        string             `db:"course_id" json:"courseId"`
	Title           string             `db:"title" json:"title"`
	Description     string             `db:"description" json:"description"`
	Type            AssignmentType     `db:"type" json:"type"`
	Status          AssignmentStatus   `db:"status" json:"status"`
	DueDate         time.Time          `db:"due_date" json:"dueDate"`
	ResponseDueDate *time.Time         `db:"response_due_date" json:"responseDueDate,omitempty"`
	MaxScore        float64            `db:"max_score" json:"maxScore"`
	Weight          *float64           `db:"weight" json:"weight,omitempty"`
	Requirements    pq.StringArray     `db:"requirements" json:"requirements"`
	FileConstraints FileConstraints    `db:"file_constraints" json:"fileConstraints"`
	PeerResponse    PeerResponseConfig `db:"peer_response" json:"peerResponse"`
	IsPinned        bool               `db:"is_pinned" json:"isPinned"`
	IsHighlighted   bool               `db:"is_highlighted" json:"isHighlighted"`
	CreatedAt       time.Time          `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time          `db:"updated_at" json:"updatedAt"`
}

// ListRecord projects the assignment for the listing pipeline.
func (a Assignment) ListRecord() listing.Record {
	return listing.Record{
		Title:           a.Title,
		Description:     a.Description,
		Requirements:    a.Requirements,
		Status:          string(a.Status),
		Type:            string(a.Type),
		Date:            a.DueDate,
		CreatedAt:       a.CreatedAt,
		MaxScore:        a.MaxScore,
		AssignmentTitle: a.Title,
		CourseID:        a.CourseID,
		AssignmentID:    a.ID,
		Pinned:          a.IsPinned,
		Highlighted:     a.IsHighlighted,
	}
}

// IsPastDue reports whether the due date has passed at the reference time.
func (a Assignment) IsPastDue(reference time.Time) bool {
	return reference.After(a.DueDate)
}

// FileConstraints limit what students may upload.
type FileConstraints struct {
	AllowedExtensions []string `json:"allowedExtensions" validate:"omitempty,dive,required"`
	MaxSizeBytes      int64    `json:"maxSizeBytes" validate:"gte=0"`
}

// Value marshals the constraints for JSONB persistence.
func (f FileConstraints) Value() (driver.Value, error) {
	if f.AllowedExtensions == nil {
		f.AllowedExtensions = []string{}
	}
	return marshalJSONB(f, "file constraints")
}

// Scan unmarshals JSONB into the constraints.
func (f *FileConstraints) Scan(value interface{}) error {
	*f = FileConstraints{}
	return scanJSONB(value, f, "file constraints")
}

// PeerResponseConfig controls peer responses on discussion-style assignments.
type PeerResponseConfig struct {
	Enabled       bool `json:"enabled"`
	MinResponses  int  `json:"minResponses" validate:"gte=0"`
	MaxResponses  int  `json:"maxResponses" validate:"gte=0"`
	MinWords      int  `json:"minWords" validate:"gte=0"`
	MaxWords      int  `json:"maxWords" validate:"gte=0"`
	MinCharacters int  `json:"minCharacters" validate:"gte=0"`
	MaxCharacters int  `json:"maxCharacters" validate:"gte=0"`
}

// Validate checks that every lower bound is under its upper bound. A zero upper bound means unlimited.
func (p PeerResponseConfig) Validate() error {
	if !p.Enabled {
		return nil
	}
	if p.MaxResponses > 0 && p.MinResponses > p.MaxResponses {
		return fmt.Errorf("minResponses exceeds maxResponses")
	}
	if p.MaxWords > 0 && p.MinWords > p.MaxWords {
		return fmt.Errorf("minWords exceeds maxWords")
	}
	if p.MaxCharacters > 0 && p.MinCharacters > p.MaxCharacters {
		return fmt.Errorf("minCharacters exceeds maxCharacters")
	}
	return nil
}

// Value marshals the config for JSONB persistence.
func (p PeerResponseConfig) Value() (driver.Value, error) {
	return marshalJSONB(p, "peer response config")
}

// Scan unmarshals JSONB into the config.
func (p *PeerResponseConfig) Scan(value interface{}) error {
	*p = PeerResponseConfig{}
	return scanJSONB(value, p, "peer response config")
}

func marshalJSONB(v interface{}, label string) (driver.Value, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", label, err)
	}
	return data, nil
}

func scanJSONB(value interface{}, dest interface{}, label string) error {
	if value == nil {
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for %s", value, label)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("unmarshal %s: %w", label, err)
	}
	return nil
}
