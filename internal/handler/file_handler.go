package handler

import (
	"github.com/gin-gonic/gin"

	appErrors "github.com/campuseye/attendance-api/pkg/errors"
	"github.com/campuseye/attendance-api/pkg/response"
	"github.com/campuseye/attendance-api/pkg/storage"
)

// FileHandler serves stored images through signed download tokens, so the
// image directories never need to be exposed as a static file root.
type FileHandler struct {
	signer *storage.DownloadSigner
	faces  *storage.ImageStore
}

// NewFileHandler creates a new handler.
func NewFileHandler(signer *storage.DownloadSigner, faces *storage.ImageStore) *FileHandler {
	return &FileHandler{signer: signer, faces: faces}
}

// Face godoc
// @Summary Download a reference face image via a signed token
// @Tags Students
// @Produce image/jpeg
// @Param token query string true "Signed download token"
// @Success 200 {file} binary
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /files/faces [get]
func (h *FileHandler) Face(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "token is required"))
		return
	}

	filename, err := h.signer.Verify(token)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired download token"))
		return
	}
	if !h.faces.Exists(filename) {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "image no longer exists"))
		return
	}
	c.File(h.faces.Path(filename))
}
