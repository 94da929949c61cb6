package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/coursework-api/internal/dto"
	"github.com/noah-isme/coursework-api/internal/models"
	"github.com/noah-isme/coursework-api/internal/service"
	appErrors "github.com/noah-isme/coursework-api/pkg/errors"
	"github.com/noah-isme/coursework-api/pkg/export"
	"github.com/noah-isme/coursework-api/pkg/listing"
	"github.com/noah-isme/coursework-api/pkg/response"
)

type submissionService interface {
	List(ctx context.Context, query listing.Query, opts listing.SubmissionOptions, actor models.Actor) (listing.Result[models.Submission], bool, error)
	Get(ctx context.Context, id string, actor models.Actor) (*models.Submission, error)
	Grade(ctx context.Context, id string, req dto.GradeRequest, actor models.Actor) (*models.Submission, error)
}

type exportService interface {
	Submissions(ctx context.Context, query listing.Query, format export.Format, actor models.Actor) (*service.ExportFile, error)
}

// SubmissionHandler serves the submission endpoints.
type SubmissionHandler struct {
	submissions submissionService
	exports     exportService
	cfg         ListConfig
}

// NewSubmissionHandler constructs a SubmissionHandler.
func NewSubmissionHandler(submissions submissionService, exports exportService, cfg ListConfig) *SubmissionHandler {
	return &SubmissionHandler{submissions: submissions, exports: exports, cfg: cfg}
}

// List godoc
// @Summary List submissions
// @Description Students only ever see their own submissions.
// @Tags Submissions
// @Produce json
// @Param courseId query string false "Course ID"
// @Param assignmentId query string false "Assignment ID"
// @Param status query string false "Comma separated statuses (submitted,graded,late,returned,draft)"
// @Param hasGrade query bool false "true for graded, false for ungraded"
// @Param search query string false "Case-insensitive match on assignment title and feedback"
// @Param submittedAfter query string false "Inclusive lower bound (RFC3339 or YYYY-MM-DD)"
// @Param submittedBefore query string false "Inclusive upper bound (RFC3339 or YYYY-MM-DD)"
// @Param includeVideoUrls query bool false "Attach signed URLs to video files"
// @Param videoUrlExpiry query int false "Signed URL lifetime in seconds"
// @Param sortBy query string false "submittedAt, createdAt, title, maxScore, status, grade or assignmentTitle; dueDate is an alias of submittedAt here"
// @Param sortOrder query string false "asc or desc"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope{data=dto.SubmissionListData}
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /submissions [get]
func (h *SubmissionHandler) List(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	query, opts, err := listing.DecodeSubmissionQuery(c.Request.URL.Query(), h.cfg.DefaultPageSize)
	if err == nil {
		err = validateSubmissionFilter(query.Filter)
	}
	if err != nil {
		response.Error(c, queryError(err))
		return
	}

	result, cacheHit, err := h.submissions.List(c.Request.Context(), h.cfg.clamp(query), opts, actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.NewSubmissionListData(result), listMeta(c, cacheHit))
}

// Export godoc
// @Summary Export submissions gradebook
// @Description Accepts the list filters and sort; every matching row is exported.
// @Tags Submissions
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /submissions/export [get]
func (h *SubmissionHandler) Export(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		response.Error(c, appErrors.Validation(err, err.Error()))
		return
	}
	query, _, err := listing.DecodeSubmissionQuery(c.Request.URL.Query(), h.cfg.DefaultPageSize)
	if err == nil {
		err = validateSubmissionFilter(query.Filter)
	}
	if err != nil {
		response.Error(c, queryError(err))
		return
	}

	file, err := h.exports.Submissions(c.Request.Context(), query, format, actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

// Get godoc
// @Summary Get submission
// @Tags Submissions
// @Produce json
// @Param id path string true "Submission ID"
// @Success 200 {object} response.Envelope{data=models.Submission}
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /submissions/{id} [get]
func (h *SubmissionHandler) Get(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	submission, err := h.submissions.Get(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, submission)
}

// Grade godoc
// @Summary Grade submission
// @Tags Submissions
// @Accept json
// @Produce json
// @Param id path string true "Submission ID"
// @Param payload body dto.GradeRequest true "Grade payload"
// @Success 200 {object} response.Envelope{data=models.Submission}
// @Failure 400 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Security BearerAuth
// @Router /submissions/{id}/grade [put]
func (h *SubmissionHandler) Grade(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.GradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Validation(err, "invalid grade payload"))
		return
	}
	submission, err := h.submissions.Grade(c.Request.Context(), c.Param("id"), req, actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, submission)
}
