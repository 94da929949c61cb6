package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/coursework-api/internal/dto"
	"github.com/noah-isme/coursework-api/internal/models"
	appErrors "github.com/noah-isme/coursework-api/pkg/errors"
	"github.com/noah-isme/coursework-api/pkg/events"
	"github.com/noah-isme/coursework-api/pkg/listing"
)

var (
	instructor = models.Actor{UserID: "inst-1", Role: models.RoleInstructor}
	student    = models.Actor{UserID: "stu-1", Role: models.RoleStudent}
)

func seededAssignments() *mockAssignmentRepo {
	day := func(d int) time.Time { return time.Date(2024, 3, d, 12, 0, 0, 0, time.UTC) }
	return &mockAssignmentRepo{items: map[string]*models.Assignment{
		"a1": {ID: "a1", CourseID: "c1", Title: "Algorithms", Status: models.AssignmentStatusPublished, Type: models.AssignmentTypeTextAssignment, DueDate: day(10), MaxScore: 10},
		"a2": {ID: "a2", CourseID: "c1", Title: "Draft essay", Status: models.AssignmentStatusDraft, Type: models.AssignmentTypeTextAssignment, DueDate: day(5), MaxScore: 10},
		"a3": {ID: "a3", CourseID: "c1", Title: "Closed quiz", Status: models.AssignmentStatusClosed, Type: models.AssignmentTypeQuiz, DueDate: day(1), MaxScore: 5, IsPinned: true},
		"a4": {ID: "a4", CourseID: "c2", Title: "Other course", Status: models.AssignmentStatusPublished, Type: models.AssignmentTypeQuiz, DueDate: day(2), MaxScore: 5},
	}}
}

func newAssignmentServiceForTest(repo *mockAssignmentRepo, cache *CacheService, emitter eventEmitter) *AssignmentService {
	return NewAssignmentService(repo, cache, NewMetricsService(), emitter, validator.New(), zap.NewNop())
}

func validAssignmentRequest() dto.AssignmentRequest {
	return dto.AssignmentRequest{
		CourseID: "c1",
		Title:    "Video reflection",
		Type:     models.AssignmentTypeVideoDiscussion,
		DueDate:  time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		MaxScore: 20,
	}
}

func TestAssignmentServiceListInstructorSeesAllOfCourse(t *testing.T) {
	svc := newAssignmentServiceForTest(seededAssignments(), nil, nil)
	q := listing.NewQuery(20)
	q.Filter.CourseID = "c1"

	res, hit, err := svc.List(context.Background(), q, instructor)
	require.NoError(t, err)
	assert.False(t, hit)
	require.Equal(t, 3, res.TotalCount)
	// pinned first, then by due date ascending
	assert.Equal(t, []string{"a3", "a2", "a1"}, []string{res.Items[0].ID, res.Items[1].ID, res.Items[2].ID})
}

func TestAssignmentServiceListStudentVisibility(t *testing.T) {
	svc := newAssignmentServiceForTest(seededAssignments(), nil, nil)
	q := listing.NewQuery(20)
	q.Filter.CourseID = "c1"

	res, _, err := svc.List(context.Background(), q, student)
	require.NoError(t, err)
	assert.Equal(t, 2, res.TotalCount)
	for _, a := range res.Items {
		assert.NotEqual(t, models.AssignmentStatusDraft, a.Status)
	}

	q.Filter.Statuses = []string{"draft"}
	res, _, err = svc.List(context.Background(), q, student)
	require.NoError(t, err)
	assert.Equal(t, 0, res.TotalCount)
	assert.Equal(t, 1, res.TotalPages)
	assert.NotNil(t, res.Items)
}

func TestAssignmentServiceListUsesCache(t *testing.T) {
	repo := seededAssignments()
	cache := NewCacheService(newMemoryCache(), nil, time.Minute, zap.NewNop(), true)
	svc := newAssignmentServiceForTest(repo, cache, nil)
	q := listing.NewQuery(20)
	q.Filter.CourseID = "c1"

	_, hit, err := svc.List(context.Background(), q, instructor)
	require.NoError(t, err)
	assert.False(t, hit)

	q.Filter.Search = "algo"
	res, hit, err := svc.List(context.Background(), q, instructor)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, repo.listCalls)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "a1", res.Items[0].ID)

	_, err = svc.Create(context.Background(), validAssignmentRequest(), instructor)
	require.NoError(t, err)
	_, hit, err = svc.List(context.Background(), q, instructor)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, repo.listCalls)
}

func TestAssignmentServiceCreate(t *testing.T) {
	repo := &mockAssignmentRepo{}
	emitter := &captureEmitter{}
	svc := newAssignmentServiceForTest(repo, nil, emitter)

	a, err := svc.Create(context.Background(), validAssignmentRequest(), instructor)
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentStatusDraft, a.Status)
	assert.NotNil(t, a.Requirements)
	require.Len(t, emitter.events, 1)
	assert.Equal(t, events.TypeAssignmentCreated, emitter.events[0].Type)
	assert.Equal(t, "inst-1", emitter.events[0].ActorID)
}

func TestAssignmentServiceCreateValidation(t *testing.T) {
	svc := newAssignmentServiceForTest(&mockAssignmentRepo{}, nil, nil)

	cases := map[string]func(r *dto.AssignmentRequest){
		"max score":    func(r *dto.AssignmentRequest) { r.MaxScore = 0 },
		"unknown type": func(r *dto.AssignmentRequest) { r.Type = "essay" },
		"weight":       func(r *dto.AssignmentRequest) { r.Weight = ptrFloat(120) },
		"peer bounds": func(r *dto.AssignmentRequest) {
			r.PeerResponse = models.PeerResponseConfig{Enabled: true, MinResponses: 3, MaxResponses: 1}
		},
		"response due": func(r *dto.AssignmentRequest) {
			early := r.DueDate.Add(-time.Hour)
			r.ResponseDueDate = &early
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := validAssignmentRequest()
			mutate(&req)
			_, err := svc.Create(context.Background(), req, instructor)
			require.Error(t, err)
			assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
		})
	}
}

func TestAssignmentServiceUpdateKeepsStatusWhenOmitted(t *testing.T) {
	repo := seededAssignments()
	svc := newAssignmentServiceForTest(repo, nil, nil)

	req := validAssignmentRequest()
	req.Title = "Algorithms II"
	a, err := svc.Update(context.Background(), "a1", req, instructor)
	require.NoError(t, err)
	assert.Equal(t, "Algorithms II", a.Title)
	assert.Equal(t, models.AssignmentStatusPublished, a.Status)

	_, err = svc.Update(context.Background(), "missing", req, instructor)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestAssignmentServiceGetHidesDraftsFromStudents(t *testing.T) {
	svc := newAssignmentServiceForTest(seededAssignments(), nil, nil)

	_, err := svc.Get(context.Background(), "a2", student)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	a, err := svc.Get(context.Background(), "a2", instructor)
	require.NoError(t, err)
	assert.Equal(t, "Draft essay", a.Title)
}

func TestAssignmentServiceDelete(t *testing.T) {
	repo := seededAssignments()
	emitter := &captureEmitter{}
	svc := newAssignmentServiceForTest(repo, nil, emitter)

	require.NoError(t, svc.Delete(context.Background(), "a1", instructor))
	assert.Equal(t, []string{"a1"}, repo.deleted)
	require.Len(t, emitter.events, 1)
	assert.Equal(t, events.TypeAssignmentDeleted, emitter.events[0].Type)

	err := svc.Delete(context.Background(), "a1", instructor)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestRestrictStatuses(t *testing.T) {
	allowed := []string{"published", "closed"}
	assert.Equal(t, allowed, restrictStatuses(nil, allowed))
	assert.Equal(t, []string{"closed"}, restrictStatuses([]string{"draft", "closed"}, allowed))
	assert.Nil(t, restrictStatuses([]string{"draft"}, allowed))
}
