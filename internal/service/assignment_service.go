package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/coursework-api/internal/dto"
	"github.com/noah-isme/coursework-api/internal/models"
	appErrors "github.com/noah-isme/coursework-api/pkg/errors"
	"github.com/noah-isme/coursework-api/pkg/events"
	"github.com/noah-isme/coursework-api/pkg/listing"
)

type assignmentRepository interface {
	ListByCourse(ctx context.Context, courseID string) ([]models.Assignment, error)
	FindByID(ctx context.Context, id string) (*models.Assignment, error)
	Create(ctx context.Context, assignment *models.Assignment) error
	Update(ctx context.Context, assignment *models.Assignment) error
	Delete(ctx context.Context, id string) error
}

type eventEmitter interface {
	Emit(ev events.Event)
}

// AssignmentService lists and maintains assignments.
type AssignmentService struct {
	repo      assignmentRepository
	cache     *CacheService
	metrics   *MetricsService
	events    eventEmitter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAssignmentService constructs an AssignmentService. cache, metrics and emitter may be nil.
func NewAssignmentService(repo assignmentRepository, cache *CacheService, metrics *MetricsService, emitter eventEmitter, validate *validator.Validate, logger *zap.Logger) *AssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if emitter == nil {
		emitter = noopEmitter{}
	}
	return &AssignmentService{repo: repo, cache: cache, metrics: metrics, events: emitter, validator: validate, logger: logger}
}

// List runs the listing pipeline over the course snapshot. The boolean reports a cache hit.
func (s *AssignmentService) List(ctx context.Context, query listing.Query, actor models.Actor) (listing.Result[models.Assignment], bool, error) {
	if actor.IsStudent() {
		query.Filter.Statuses = restrictStatuses(query.Filter.Statuses, models.StudentVisibleAssignmentStatuses)
		if query.Filter.Statuses == nil {
			return listing.Apply([]models.Assignment{}, query), false, nil
		}
	}

	snapshot, hit, err := s.snapshot(ctx, query.Filter.CourseID)
	if err != nil {
		return listing.Result[models.Assignment]{}, false, err
	}

	start := time.Now()
	result := listing.Apply(snapshot, query)
	s.metrics.ObserveList("assignments", result.TotalCount, time.Since(start))
	return result, hit, nil
}

// Get returns one assignment. Students cannot see drafts or archived work.
func (s *AssignmentService) Get(ctx context.Context, id string, actor models.Actor) (*models.Assignment, error) {
	assignment, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.IsStudent() && !studentVisible(assignment.Status) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
	}
	return assignment, nil
}

// Create validates and stores a new assignment.
func (s *AssignmentService) Create(ctx context.Context, req dto.AssignmentRequest, actor models.Actor) (*models.Assignment, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	assignment := &models.Assignment{}
	applyAssignmentRequest(assignment, req)
	if assignment.Status == "" {
		assignment.Status = models.AssignmentStatusDraft
	}

	if err := s.repo.Create(ctx, assignment); err != nil {
		return nil, appErrors.Internal(err, "failed to create assignment")
	}
	s.afterMutation(ctx, assignment.CourseID, events.TypeAssignmentCreated, assignment.ID, actor)
	return assignment, nil
}

// Update replaces the editable fields of an assignment.
func (s *AssignmentService) Update(ctx context.Context, id string, req dto.AssignmentRequest, actor models.Actor) (*models.Assignment, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	assignment, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	previousCourse := assignment.CourseID
	status := assignment.Status
	applyAssignmentRequest(assignment, req)
	if assignment.Status == "" {
		assignment.Status = status
	}

	if err := s.repo.Update(ctx, assignment); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Internal(err, "failed to update assignment")
	}
	if previousCourse != assignment.CourseID {
		s.cache.Invalidate(ctx, assignmentPatterns(previousCourse)...)
		s.cache.Invalidate(ctx, submissionPatterns(previousCourse)...)
	}
	s.afterMutation(ctx, assignment.CourseID, events.TypeAssignmentUpdated, assignment.ID, actor)
	return assignment, nil
}

// Delete removes an assignment and, through the schema, its submissions.
func (s *AssignmentService) Delete(ctx context.Context, id string, actor models.Actor) error {
	assignment, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return appErrors.Internal(err, "failed to delete assignment")
	}
	s.afterMutation(ctx, assignment.CourseID, events.TypeAssignmentDeleted, id, actor)
	return nil
}

func (s *AssignmentService) snapshot(ctx context.Context, courseID string) ([]models.Assignment, bool, error) {
	key := assignmentSnapshotKey(courseID)
	var cached []models.Assignment
	if s.cache.Get(ctx, key, &cached) {
		return cached, true, nil
	}
	assignments, err := s.repo.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, false, appErrors.Internal(err, "failed to list assignments")
	}
	s.cache.Set(ctx, key, assignments)
	return assignments, false, nil
}

func (s *AssignmentService) find(ctx context.Context, id string) (*models.Assignment, error) {
	assignment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Internal(err, "failed to load assignment")
	}
	return assignment, nil
}

func (s *AssignmentService) validate(req dto.AssignmentRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Validation(err, "invalid assignment payload")
	}
	if err := req.PeerResponse.Validate(); err != nil {
		return appErrors.Validation(err, err.Error())
	}
	if req.ResponseDueDate != nil && req.ResponseDueDate.Before(req.DueDate) {
		return appErrors.Clone(appErrors.ErrValidation, "responseDueDate must not be before dueDate")
	}
	return nil
}

func (s *AssignmentService) afterMutation(ctx context.Context, courseID, eventType, assignmentID string, actor models.Actor) {
	s.cache.Invalidate(ctx, assignmentPatterns(courseID)...)
	s.cache.Invalidate(ctx, submissionPatterns(courseID)...)
	s.events.Emit(events.New(eventType, courseID, assignmentID, actor.UserID, nil))
	s.logger.Info("assignment changed", zap.String("event", eventType), zap.String("assignment_id", assignmentID), zap.String("actor_id", actor.UserID))
}

func applyAssignmentRequest(a *models.Assignment, req dto.AssignmentRequest) {
	a.CourseID = strings.TrimSpace(req.CourseID)
	a.Title = strings.TrimSpace(req.Title)
	a.Description = req.Description
	a.Type = req.Type
	a.Status = req.Status
	a.DueDate = req.DueDate.UTC()
	if req.ResponseDueDate != nil {
		due := req.ResponseDueDate.UTC()
		a.ResponseDueDate = &due
	} else {
		a.ResponseDueDate = nil
	}
	a.MaxScore = req.MaxScore
	a.Weight = req.Weight
	a.Requirements = append([]string{}, req.Requirements...)
	a.FileConstraints = req.FileConstraints
	a.PeerResponse = req.PeerResponse
	a.IsPinned = req.IsPinned
	a.IsHighlighted = req.IsHighlighted
}

// restrictStatuses intersects requested with allowed. An empty request means all allowed.
// It returns nil when the intersection is empty.
func restrictStatuses(requested, allowed []string) []string {
	if len(requested) == 0 {
		return append([]string{}, allowed...)
	}
	var out []string
	for _, r := range requested {
		for _, a := range allowed {
			if r == a {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

func studentVisible(status models.AssignmentStatus) bool {
	for _, s := range models.StudentVisibleAssignmentStatuses {
		if string(status) == s {
			return true
		}
	}
	return false
}

type noopEmitter struct{}

func (noopEmitter) Emit(events.Event) {}
