package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/coursework-api/internal/dto"
	"github.com/noah-isme/coursework-api/internal/models"
	appErrors "github.com/noah-isme/coursework-api/pkg/errors"
	"github.com/noah-isme/coursework-api/pkg/listing"
	"github.com/noah-isme/coursework-api/pkg/response"
)

type assignmentService interface {
	List(ctx context.Context, query listing.Query, actor models.Actor) (listing.Result[models.Assignment], bool, error)
	Get(ctx context.Context, id string, actor models.Actor) (*models.Assignment, error)
	Create(ctx context.Context, req dto.AssignmentRequest, actor models.Actor) (*models.Assignment, error)
	Update(ctx context.Context, id string, req dto.AssignmentRequest, actor models.Actor) (*models.Assignment, error)
	Delete(ctx context.Context, id string, actor models.Actor) error
}

// AssignmentHandler serves the assignment endpoints.
type AssignmentHandler struct {
	service assignmentService
	cfg     ListConfig
}

// NewAssignmentHandler constructs an AssignmentHandler.
func NewAssignmentHandler(service assignmentService, cfg ListConfig) *AssignmentHandler {
	return &AssignmentHandler{service: service, cfg: cfg}
}

// List godoc
// @Summary List assignments
// @Description Filters, sorts and paginates assignments. Pinned items precede highlighted items, which precede the rest, in either order.
// @Tags Assignments
// @Produce json
// @Param courseId query string false "Course ID"
// @Param statuses query string false "Comma separated statuses (draft,published,closed,archived)"
// @Param type query string false "Assignment type"
// @Param weekNumber query int false "ISO week of the due date (1-53)"
// @Param search query string false "Case-insensitive match on title, description and requirements"
// @Param dueDateFrom query string false "Inclusive lower bound (RFC3339 or YYYY-MM-DD)"
// @Param dueDateTo query string false "Inclusive upper bound (RFC3339 or YYYY-MM-DD)"
// @Param sortBy query string false "dueDate, createdAt, title, maxScore, status, grade or assignmentTitle"
// @Param sortOrder query string false "asc or desc"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope{data=dto.AssignmentListData}
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /assignments [get]
func (h *AssignmentHandler) List(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	query, err := listing.DecodeAssignmentQuery(c.Request.URL.Query(), h.cfg.DefaultPageSize)
	if err == nil {
		err = validateAssignmentFilter(query.Filter)
	}
	if err != nil {
		response.Error(c, queryError(err))
		return
	}

	result, cacheHit, err := h.service.List(c.Request.Context(), h.cfg.clamp(query), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.NewAssignmentListData(result), listMeta(c, cacheHit))
}

// Get godoc
// @Summary Get assignment
// @Tags Assignments
// @Produce json
// @Param id path string true "Assignment ID"
// @Success 200 {object} response.Envelope{data=models.Assignment}
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /assignments/{id} [get]
func (h *AssignmentHandler) Get(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	assignment, err := h.service.Get(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment)
}

// Create godoc
// @Summary Create assignment
// @Tags Assignments
// @Accept json
// @Produce json
// @Param payload body dto.AssignmentRequest true "Assignment payload"
// @Success 201 {object} response.Envelope{data=models.Assignment}
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /assignments [post]
func (h *AssignmentHandler) Create(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.AssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Validation(err, "invalid assignment payload"))
		return
	}
	assignment, err := h.service.Create(c.Request.Context(), req, actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assignment)
}

// Update godoc
// @Summary Replace assignment
// @Tags Assignments
// @Accept json
// @Produce json
// @Param id path string true "Assignment ID"
// @Param payload body dto.AssignmentRequest true "Assignment payload"
// @Success 200 {object} response.Envelope{data=models.Assignment}
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /assignments/{id} [put]
func (h *AssignmentHandler) Update(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.AssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Validation(err, "invalid assignment payload"))
		return
	}
	assignment, err := h.service.Update(c.Request.Context(), c.Param("id"), req, actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment)
}

// Delete godoc
// @Summary Delete assignment
// @Tags Assignments
// @Param id path string true "Assignment ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /assignments/{id} [delete]
func (h *AssignmentHandler) Delete(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), actor); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
