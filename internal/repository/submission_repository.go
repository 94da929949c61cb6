package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/coursework-api/internal/models"
)

const submissionSelect = `SELECT s.id, s.assignment_id, s.course_id, s.student_id, s.status, s.submitted_at, s.processed_at,
s.grade, COALESCE(s.max_score, a.max_score) AS max_score, s.feedback, s.files, s.metadata, a.title AS assignment_title, s.created_at
FROM submissions s JOIN assignments a ON a.id = s.assignment_id`

// SubmissionRepository manages persistence for submissions.
type SubmissionRepository struct {
	db *sqlx.DB
}

// NewSubmissionRepository constructs a SubmissionRepository.
func NewSubmissionRepository(db *sqlx.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// List returns submissions within scope joined with their assignment title.
func (r *SubmissionRepository) List(ctx context.Context, scope models.SubmissionScope) ([]models.Submission, error) {
	var conditions []string
	var args []interface{}

	if scope.CourseID != "" {
		args = append(args, scope.CourseID)
		conditions = append(conditions, fmt.Sprintf("s.course_id = $%d", len(args)))
	}
	if scope.AssignmentID != "" {
		args = append(args, scope.AssignmentID)
		conditions = append(conditions, fmt.Sprintf("s.assignment_id = $%d", len(args)))
	}
	if scope.StudentID != "" {
		args = append(args, scope.StudentID)
		conditions = append(conditions, fmt.Sprintf("s.student_id = $%d", len(args)))
	}

	query := submissionSelect
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY s.submitted_at ASC, s.id ASC"

	var submissions []models.Submission
	if err := r.db.SelectContext(ctx, &submissions, query, args...); err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return submissions, nil
}

// FindByID fetches a submission by ID. It returns sql.ErrNoRows when absent.
func (r *SubmissionRepository) FindByID(ctx context.Context, id string) (*models.Submission, error) {
	var submission models.Submission
	if err := r.db.GetContext(ctx, &submission, submissionSelect+" WHERE s.id = $1", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find submission: %w", err)
	}
	return &submission, nil
}

// UpdateGrade stores the grading outcome of a submission.
func (r *SubmissionRepository) UpdateGrade(ctx context.Context, s *models.Submission) error {
	if s.ProcessedAt == nil {
		now := time.Now().UTC()
		s.ProcessedAt = &now
	}
	const query = `UPDATE submissions SET grade = $2, feedback = $3, status = $4, metadata = $5, processed_at = $6 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, s.ID, s.Grade, s.Feedback, s.Status, s.Metadata, s.ProcessedAt)
	if err != nil {
		return fmt.Errorf("update submission grade: %w", err)
	}
	return expectOneRow(res)
}
