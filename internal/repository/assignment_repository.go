package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/coursework-api/internal/models"
)

const assignmentColumns = "id, course_id, title, description, type, status, due_date, response_due_date, max_score, weight, requirements, file_constraints, peer_response, is_pinned, is_highlighted, created_at, updated_at"

// AssignmentRepository manages persistence for assignments.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs an AssignmentRepository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// ListByCourse returns every assignment of a course, or of all courses when courseID is empty.
// Filtering, ordering and paging happen in the listing pipeline.
func (r *AssignmentRepository) ListByCourse(ctx context.Context, courseID string) ([]models.Assignment, error) {
	query := fmt.Sprintf("SELECT %s FROM assignments", assignmentColumns)
	var args []interface{}
	if courseID != "" {
		query += " WHERE course_id = $1"
		args = append(args, courseID)
	}
	query += " ORDER BY due_date ASC, id ASC"

	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query, args...); err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return assignments, nil
}

// FindByID fetches an assignment by ID. It returns sql.ErrNoRows when absent.
func (r *AssignmentRepository) FindByID(ctx context.Context, id string) (*models.Assignment, error) {
	query := fmt.Sprintf("SELECT %s FROM assignments WHERE id = $1", assignmentColumns)
	var assignment models.Assignment
	if err := r.db.GetContext(ctx, &assignment, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find assignment: %w", err)
	}
	return &assignment, nil
}

// Create inserts a new assignment.
func (r *AssignmentRepository) Create(ctx context.Context, a *models.Assignment) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	if a.Requirements == nil {
		a.Requirements = []string{}
	}

	const query = `INSERT INTO assignments (id, course_id, title, description, type, status, due_date, response_due_date, max_score, weight, requirements, file_constraints, peer_response, is_pinned, is_highlighted, created_at, updated_at)
VALUES (:id, :course_id, :title, :description, :type, :status, :due_date, :response_due_date, :max_score, :weight, :requirements, :file_constraints, :peer_response, :is_pinned, :is_highlighted, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, a); err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}
	return nil
}

// Update persists changes to an existing assignment.
func (r *AssignmentRepository) Update(ctx context.Context, a *models.Assignment) error {
	a.UpdatedAt = time.Now().UTC()
	if a.Requirements == nil {
		a.Requirements = []string{}
	}

	const query = `UPDATE assignments SET course_id = :course_id, title = :title, description = :description, type = :type, status = :status,
due_date = :due_date, response_due_date = :response_due_date, max_score = :max_score, weight = :weight, requirements = :requirements,
file_constraints = :file_constraints, peer_response = :peer_response, is_pinned = :is_pinned, is_highlighted = :is_highlighted, updated_at = :updated_at
WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, a)
	if err != nil {
		return fmt.Errorf("update assignment: %w", err)
	}
	return expectOneRow(res)
}

// Delete removes an assignment. Its submissions cascade.
func (r *AssignmentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM assignments WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	return expectOneRow(res)
}

func expectOneRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
