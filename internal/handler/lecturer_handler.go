package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campuseye/attendance-api/internal/models"
	"github.com/campuseye/attendance-api/internal/service"
	appErrors "github.com/campuseye/attendance-api/pkg/errors"
	"github.com/campuseye/attendance-api/pkg/response"
)

// LecturerHandler wires HTTP endpoints to the lecturer service.
type LecturerHandler struct {
	service *service.LecturerService
}

// NewLecturerHandler creates a new handler.
func NewLecturerHandler(svc *service.LecturerService) *LecturerHandler {
	return &LecturerHandler{service: svc}
}

// List godoc
// @Summary List lecturers
// @Tags Lecturers
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /lecturers [get]
func (h *LecturerHandler) List(c *gin.Context) {
	lecturers, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lecturers, nil)
}

// Get godoc
// @Summary Get lecturer
// @Tags Lecturers
// @Produce json
// @Param id path int true "Lecturer ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /lecturers/{id} [get]
func (h *LecturerHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	lecturer, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lecturer, nil)
}

// Create godoc
// @Summary Register lecturer
// @Tags Lecturers
// @Accept json
// @Produce json
// @Param payload body models.CreateLecturerRequest true "Lecturer payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /lecturers [post]
func (h *LecturerHandler) Create(c *gin.Context) {
	var req models.CreateLecturerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid lecturer payload"))
		return
	}

	lecturer, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, lecturer)
}
