package handler

import (
	"errors"
	"mime"
	"net/http"
	"os"
	"path"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/coursework-api/pkg/errors"
	"github.com/noah-isme/coursework-api/pkg/response"
	"github.com/noah-isme/coursework-api/pkg/storage"
)

type tokenVerifier interface {
	Verify(token string) (submissionID, relPath string, err error)
}

type fileOpener interface {
	Open(relPath string) (*os.File, error)
}

// FileHandler streams submission files to holders of a signed link.
type FileHandler struct {
	verifier tokenVerifier
	files    fileOpener
	logger   *zap.Logger
}

// NewFileHandler constructs a FileHandler.
func NewFileHandler(verifier tokenVerifier, files fileOpener, logger *zap.Logger) *FileHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileHandler{verifier: verifier, files: files, logger: logger}
}

// Download godoc
// @Summary Download a submission file
// @Description The token comes from a signed URL returned by the submission endpoints.
// @Tags Files
// @Produce octet-stream
// @Param token path string true "Signed file token"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /files/{token} [get]
func (h *FileHandler) Download(c *gin.Context) {
	submissionID, relPath, err := h.verifier.Verify(c.Param("token"))
	if err != nil {
		msg := "invalid file link"
		if errors.Is(err, storage.ErrTokenExpired) {
			msg = "file link expired"
		}
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, msg))
		return
	}

	file, err := h.files.Open(relPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) || errors.Is(err, storage.ErrOutsideRoot) {
			response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "file not found"))
			return
		}
		h.logger.Error("open submission file", zap.String("submission_id", submissionID), zap.Error(err))
		response.Error(c, appErrors.ErrInternal)
		return
	}
	defer file.Close() //nolint:errcheck

	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Internal(err, "failed to stat file"))
		return
	}
	contentType := mime.TypeByExtension(path.Ext(relPath))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Cache-Control", "private, no-store")
	c.Header("Content-Disposition", `inline; filename="`+path.Base(relPath)+`"`)
	c.DataFromReader(http.StatusOK, info.Size(), contentType, file, nil)
}
