package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coursework-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

var assignmentRowColumns = []string{"id", "course_id", "title", "description", "type", "status", "due_date", "response_due_date", "max_score", "weight", "requirements", "file_constraints", "peer_response", "is_pinned", "is_highlighted", "created_at", "updated_at"}

func TestAssignmentRepositoryListByCourse(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	due := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(assignmentRowColumns).
		AddRow("a1", "course-1", "Algorithms", "sorting", "text-assignment", "published", due, nil, 100.0, nil,
			"{\"read chapter 2\",quiz}", `{"allowedExtensions":["pdf"],"maxSizeBytes":1024}`, `{"enabled":false}`, true, false, due, due)
	mock.ExpectQuery(regexp.QuoteMeta("FROM assignments WHERE course_id = $1 ORDER BY due_date ASC, id ASC")).
		WithArgs("course-1").
		WillReturnRows(rows)

	list, err := repo.ListByCourse(context.Background(), "course-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Algorithms", list[0].Title)
	assert.Equal(t, []string{"read chapter 2", "quiz"}, []string(list[0].Requirements))
	assert.Equal(t, []string{"pdf"}, list[0].FileConstraints.AllowedExtensions)
	assert.True(t, list[0].IsPinned)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryListAllCourses(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM assignments ORDER BY due_date ASC, id ASC")).
		WillReturnRows(sqlmock.NewRows(assignmentRowColumns))

	list, err := repo.ListByCourse(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM assignments WHERE id = $1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryCreateAssignsID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectExec("INSERT INTO assignments").WillReturnResult(sqlmock.NewResult(1, 1))

	a := &models.Assignment{CourseID: "course-1", Title: "Essay", Type: models.AssignmentTypeTextAssignment, Status: models.AssignmentStatusDraft, MaxScore: 10}
	require.NoError(t, repo.Create(context.Background(), a))
	assert.NotEmpty(t, a.ID)
	assert.False(t, a.CreatedAt.IsZero())
	assert.NotNil(t, a.Requirements)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryUpdateAndDeleteMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectExec("UPDATE assignments SET").WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.Update(context.Background(), &models.Assignment{ID: "nope"})
	assert.ErrorIs(t, err, sql.ErrNoRows)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM assignments WHERE id = $1")).
		WithArgs("a1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), "a1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
