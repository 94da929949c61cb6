package dto

import (
	"time"

	"github.com/noah-isme/coursework-api/internal/models"
	"github.com/noah-isme/coursework-api/pkg/listing"
)

// AssignmentListData is the data payload of GET /assignments.
type AssignmentListData struct {
	Assignments []models.Assignment `json:"assignments"`
	TotalCount  int                 `json:"totalCount"`
	Page        int                 `json:"page"`
	PageSize    int                 `json:"pageSize"`
	TotalPages  int                 `json:"totalPages"`
}

// NewAssignmentListData converts a pipeline result into the response payload.
func NewAssignmentListData(res listing.Result[models.Assignment]) AssignmentListData {
	items := res.Items
	if items == nil {
		items = []models.Assignment{}
	}
	return AssignmentListData{
		Assignments: items,
		TotalCount:  res.TotalCount,
		Page:        res.Page,
		PageSize:    res.PageSize,
		TotalPages:  res.TotalPages,
	}
}

// SubmissionListData is the data payload of GET /submissions.
type SubmissionListData struct {
	Submissions []models.Submission `json:"submissions"`
	TotalCount  int                 `json:"totalCount"`
	Page        int                 `json:"page"`
	PageSize    int                 `json:"pageSize"`
	TotalPages  int                 `json:"totalPages"`
}

// NewSubmissionListData converts a pipeline result into the response payload.
func NewSubmissionListData(res listing.Result[models.Submission]) SubmissionListData {
	items := res.Items
	if items == nil {
		items = []models.Submission{}
	}
	return SubmissionListData{
		Submissions: items,
		TotalCount:  res.TotalCount,
		Page:        res.Page,
		PageSize:    res.PageSize,
		TotalPages:  res.TotalPages,
	}
}

// AssignmentRequest is the payload for creating or replacing an assignment.
type AssignmentRequest struct {
	CourseID        string                    `json:"courseId" validate:"required"`
	Title           string                    `json:"title" validate:"required,min=3,max=255"`
	Description     string                    `json:"description"`
	Type            models.AssignmentType     `json:"type" validate:"required,oneof=video-assignment video-discussion video-assessment text-assignment quiz"`
	Status          models.AssignmentStatus   `json:"status" validate:"omitempty,oneof=draft published closed archived"`
	DueDate         time.Time                 `json:"dueDate" validate:"required"`
	ResponseDueDate *time.Time                `json:"responseDueDate,omitempty"`
	MaxScore        float64                   `json:"maxScore" validate:"gt=0"`
	Weight          *float64                  `json:"weight,omitempty" validate:"omitempty,gte=0,lte=100"`
	Requirements    []string                  `json:"requirements" validate:"omitempty,dive,required"`
	FileConstraints models.FileConstraints    `json:"fileConstraints"`
	PeerResponse    models.PeerResponseConfig `json:"peerResponse"`
	IsPinned        bool                      `json:"isPinned"`
	IsHighlighted   bool                      `json:"isHighlighted"`
}

// GradeRequest is the payload of PUT /submissions/:id/grade.
type GradeRequest struct {
	Grade           float64            `json:"grade"`
	Feedback        *string            `json:"feedback,omitempty"`
	RubricScores    map[string]float64 `json:"rubricScores,omitempty"`
	InstructorNotes *string            `json:"instructorNotes,omitempty"`
	Status          string             `json:"status,omitempty" validate:"omitempty,oneof=graded returned"`
}
