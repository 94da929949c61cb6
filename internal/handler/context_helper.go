package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/coursework-api/internal/middleware"
	"github.com/noah-isme/coursework-api/internal/models"
	appErrors "github.com/noah-isme/coursework-api/pkg/errors"
	"github.com/noah-isme/coursework-api/pkg/listing"
	"github.com/noah-isme/coursework-api/pkg/response"
)

// ListConfig bounds list page sizes.
type ListConfig struct {
	DefaultPageSize int
	MaxPageSize     int
}

func (cfg ListConfig) clamp(q listing.Query) listing.Query {
	if limit := cfg.maxPageSize(); q.PageSize > limit {
		q.PageSize = limit
	}
	return q
}

// maxPageSize is the configured cap bounded by listing.MaxPageSize. A larger
// or unset MaxPageSize falls back to the hard cap.
func (cfg ListConfig) maxPageSize() int {
	if cfg.MaxPageSize <= 0 || cfg.MaxPageSize > listing.MaxPageSize {
		return listing.MaxPageSize
	}
	return cfg.MaxPageSize
}

// actorFromContext writes a 401 and returns false when no claims are present.
func actorFromContext(c *gin.Context) (models.Actor, bool) {
	claims := middleware.ClaimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return models.Actor{}, false
	}
	return claims.Actor(), true
}

func queryError(err error) error {
	var paramErr *listing.ParamError
	if errors.As(err, &paramErr) {
		return appErrors.Validation(err, paramErr.Error())
	}
	return appErrors.Validation(err, "invalid query parameters")
}

func listMeta(c *gin.Context, cacheHit bool) map[string]interface{} {
	middleware.SetCacheHit(c, cacheHit)
	return middleware.ExtractMeta(c)
}

var errUnknownValue = errors.New("unknown value")

func validateAssignmentFilter(f listing.Filter) error {
	if err := checkEnum(listing.ParamStatuses, f.Statuses, models.AssignmentStatus.IsValid); err != nil {
		return err
	}
	if f.Type != "" {
		return checkEnum(listing.ParamType, []string{f.Type}, models.AssignmentType.IsValid)
	}
	return nil
}

func validateSubmissionFilter(f listing.Filter) error {
	return checkEnum(listing.ParamStatus, f.Statuses, models.SubmissionStatus.IsValid)
}

// checkEnum reports the first value valid does not recognise as a ParamError.
func checkEnum[T ~string](param string, values []string, valid func(T) bool) error {
	for _, v := range values {
		if !valid(T(v)) {
			return &listing.ParamError{Param: param, Value: v, Err: errUnknownValue}
		}
	}
	return nil
}
