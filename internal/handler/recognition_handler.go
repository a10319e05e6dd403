package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/campuseye/attendance-api/internal/service"
	appErrors "github.com/campuseye/attendance-api/pkg/errors"
	"github.com/campuseye/attendance-api/pkg/response"
)

// RecognitionHandler wires HTTP endpoints to the recognition service.
type RecognitionHandler struct {
	service *service.RecognitionService
}

// NewRecognitionHandler creates a new handler.
func NewRecognitionHandler(svc *service.RecognitionService) *RecognitionHandler {
	return &RecognitionHandler{service: svc}
}

// Identify godoc
// @Summary Identify a face
// @Description Match an uploaded probe image against enrolled students. When
// course_id is supplied a successful match is also recorded as attendance for
// today.
// @Tags Recognition
// @Accept multipart/form-data
// @Produce json
// @Param image formData file true "Probe image (JPEG or PNG)"
// @Param course_id formData int false "Course to mark attendance for"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /recognition/identify [post]
func (h *RecognitionHandler) Identify(c *gin.Context) {
	probe, _, err := readImageForm(c, "image")
	if err != nil {
		response.Error(c, err)
		return
	}

	var courseID *int64
	if raw := c.PostForm("course_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "course_id must be a positive integer"))
			return
		}
		courseID = &id
	}

	result, err := h.service.Identify(c.Request.Context(), probe, courseID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
