package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/coursework-api/internal/dto"
	"github.com/noah-isme/coursework-api/internal/models"
	appErrors "github.com/noah-isme/coursework-api/pkg/errors"
	"github.com/noah-isme/coursework-api/pkg/events"
	"github.com/noah-isme/coursework-api/pkg/listing"
)

type submissionRepository interface {
	List(ctx context.Context, scope models.SubmissionScope) ([]models.Submission, error)
	FindByID(ctx context.Context, id string) (*models.Submission, error)
	UpdateGrade(ctx context.Context, submission *models.Submission) error
}

type fileURLSigner interface {
	URL(submissionID, relPath string, ttl time.Duration) (string, time.Time, error)
}

// SubmissionService lists, exposes and grades submissions.
type SubmissionService struct {
	repo      submissionRepository
	signer    fileURLSigner
	cache     *CacheService
	metrics   *MetricsService
	events    eventEmitter
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewSubmissionService constructs a SubmissionService. cache, metrics and emitter may be nil.
func NewSubmissionService(repo submissionRepository, signer fileURLSigner, cache *CacheService, metrics *MetricsService, emitter eventEmitter, validate *validator.Validate, logger *zap.Logger) *SubmissionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if emitter == nil {
		emitter = noopEmitter{}
	}
	return &SubmissionService{
		repo:      repo,
		signer:    signer,
		cache:     cache,
		metrics:   metrics,
		events:    emitter,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// List runs the listing pipeline over the caller's submissions. The boolean reports a cache hit.
func (s *SubmissionService) List(ctx context.Context, query listing.Query, opts listing.SubmissionOptions, actor models.Actor) (listing.Result[models.Submission], bool, error) {
	snapshot, hit, err := s.snapshot(ctx, query.Filter, actor)
	if err != nil {
		return listing.Result[models.Submission]{}, false, err
	}

	start := time.Now()
	result := listing.Apply(snapshot, query)
	s.metrics.ObserveList("submissions", result.TotalCount, time.Since(start))

	for i := range result.Items {
		result.Items[i].Files = s.presentFiles(result.Items[i], opts.IncludeVideoURLs, opts.VideoURLExpiry, true)
	}
	return result, hit, nil
}

// Matching returns every submission passing the query filter in query order, ignoring pagination.
func (s *SubmissionService) Matching(ctx context.Context, query listing.Query, actor models.Actor) ([]models.Submission, error) {
	snapshot, _, err := s.snapshot(ctx, query.Filter, actor)
	if err != nil {
		return nil, err
	}
	q := query.Normalize()
	return listing.Sorted(snapshot, q.Filter, q.Sort), nil
}

// Get returns one submission with signed URLs for all its files. Students only see their own.
func (s *SubmissionService) Get(ctx context.Context, id string, actor models.Actor) (*models.Submission, error) {
	submission, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.IsStudent() && submission.StudentID != actor.UserID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "submission not found")
	}
	submission.Files = s.presentFiles(*submission, true, 0, false)
	return submission, nil
}

// Grade records a grade, feedback and rubric data, then announces it.
func (s *SubmissionService) Grade(ctx context.Context, id string, req dto.GradeRequest, actor models.Actor) (*models.Submission, error) {
	if !actor.CanManageCoursework() {
		return nil, appErrors.ErrForbidden
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid grade payload")
	}

	submission, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if submission.MaxScore == nil || *submission.MaxScore <= 0 {
		return nil, appErrors.Clone(appErrors.ErrConflict, "submission has no maximum score to grade against")
	}
	if req.Grade < 0 || req.Grade > *submission.MaxScore {
		return nil, appErrors.Clone(appErrors.ErrGradeRange, fmt.Sprintf("grade must be between 0 and %g", *submission.MaxScore))
	}

	grade := req.Grade
	submission.Grade = &grade
	if req.Feedback != nil {
		feedback := *req.Feedback
		submission.Feedback = &feedback
	}
	submission.Status = models.SubmissionStatusGraded
	if req.Status != "" {
		submission.Status = models.SubmissionStatus(req.Status)
	}
	metadata := models.SubmissionMetadata{}
	for k, v := range submission.Metadata {
		metadata[k] = v
	}
	if req.RubricScores != nil {
		metadata[models.MetadataRubricScores] = req.RubricScores
	}
	if req.InstructorNotes != nil {
		metadata[models.MetadataInstructorNotes] = *req.InstructorNotes
	}
	submission.Metadata = metadata
	processed := s.now().UTC()
	submission.ProcessedAt = &processed

	if err := s.repo.UpdateGrade(ctx, submission); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "submission not found")
		}
		return nil, appErrors.Internal(err, "failed to grade submission")
	}

	s.cache.Invalidate(ctx, submissionPatterns(submission.CourseID)...)
	s.events.Emit(events.New(events.TypeSubmissionGraded, submission.CourseID, submission.ID, actor.UserID, map[string]interface{}{
		"assignmentId": submission.AssignmentID,
		"studentId":    submission.StudentID,
		"grade":        grade,
		"maxScore":     *submission.MaxScore,
		"status":       string(submission.Status),
	}))
	s.logger.Info("submission graded", zap.String("submission_id", submission.ID), zap.String("actor_id", actor.UserID), zap.Float64("grade", grade))

	submission.Files = s.presentFiles(*submission, false, 0, false)
	return submission, nil
}

func (s *SubmissionService) snapshot(ctx context.Context, f listing.Filter, actor models.Actor) ([]models.Submission, bool, error) {
	scope := models.SubmissionScope{CourseID: f.CourseID, AssignmentID: f.AssignmentID}
	if actor.IsStudent() {
		scope.StudentID = actor.UserID
	}

	key := submissionSnapshotKey(scope.CourseID, scope.AssignmentID, scope.StudentID)
	var cached []models.Submission
	if s.cache.Get(ctx, key, &cached) {
		return cached, true, nil
	}
	submissions, err := s.repo.List(ctx, scope)
	if err != nil {
		return nil, false, appErrors.Internal(err, "failed to list submissions")
	}
	s.cache.Set(ctx, key, submissions)
	return submissions, false, nil
}

func (s *SubmissionService) find(ctx context.Context, id string) (*models.Submission, error) {
	submission, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "submission not found")
		}
		return nil, appErrors.Internal(err, "failed to load submission")
	}
	return submission, nil
}

// presentFiles copies the file list for a response. Storage paths never leave the service.
// URLs are signed when sign is set, for video files only when videoOnly is set.
func (s *SubmissionService) presentFiles(sub models.Submission, sign bool, ttl time.Duration, videoOnly bool) models.SubmissionFiles {
	out := make(models.SubmissionFiles, len(sub.Files))
	for i, file := range sub.Files {
		path := file.Path
		file.Path = ""
		file.URL = ""
		if sign && s.signer != nil && path != "" && (!videoOnly || file.IsVideo()) {
			url, _, err := s.signer.URL(sub.ID, path, ttl)
			if err != nil {
				s.logger.Warn("sign file url", zap.String("submission_id", sub.ID), zap.String("file", file.Name), zap.Error(err))
			} else {
				file.URL = url
			}
		}
		out[i] = file
	}
	return out
}
