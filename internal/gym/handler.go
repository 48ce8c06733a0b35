package gym

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vslbak/gymflow-web/internal/api"
	"github.com/vslbak/gymflow-web/internal/logger"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{
		service: service,
	}
}

func respondError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrClassNotFound), errors.Is(err, ErrSessionNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrInvalidInput):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrNoSpotsAvailable):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: err.Error()})
	default:
		logger.Error(fallback, "error", err, "path", c.FullPath())
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: fallback})
	}
}

// @Summary      List classes
// @Tags         classes
// @Produce      json
// @Success      200 {array} api.GymClass
// @Failure      500 {object} api.ErrorResponse
// @Router       /classes [get]
func (h *Handler) ListClasses(c *gin.Context) {
	classes, err := h.service.ListClasses(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to fetch classes")
		return
	}

	c.JSON(http.StatusOK, classes)
}

// @Summary      Get a class
// @Tags         classes
// @Produce      json
// @Param        id path string true "Class ID"
// @Success      200 {object} api.GymClass
// @Failure      404 {object} api.ErrorResponse
// @Router       /classes/{id} [get]
func (h *Handler) GetClass(c *gin.Context) {
	class, err := h.service.GetClass(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to fetch class")
		return
	}

	c.JSON(http.StatusOK, class)
}

// @Summary      List sessions of a class
// @Description  Sessions carry a snapshot of the class whose classTime is the session start time.
// @Tags         classes,sessions
// @Produce      json
// @Param        id path string true "Class ID"
// @Success      200 {array} api.ClassSession
// @Failure      404 {object} api.ErrorResponse
// @Router       /classes/{id}/sessions [get]
func (h *Handler) ListClassSessions(c *gin.Context) {
	sessions, err := h.service.SessionsByClass(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to fetch sessions")
		return
	}

	c.JSON(http.StatusOK, sessions)
}

// @Summary      List sessions
// @Tags         sessions
// @Produce      json
// @Success      200 {array} api.ClassSession
// @Router       /sessions [get]
func (h *Handler) ListSessions(c *gin.Context) {
	sessions, err := h.service.ListSessions(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to fetch sessions")
		return
	}

	c.JSON(http.StatusOK, sessions)
}

// @Summary      Get a session
// @Tags         sessions
// @Produce      json
// @Param        id path string true "Session ID"
// @Success      200 {object} api.ClassSession
// @Failure      404 {object} api.ErrorResponse
// @Router       /sessions/{id} [get]
func (h *Handler) GetSession(c *gin.Context) {
	session, err := h.service.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to fetch session")
		return
	}

	c.JSON(http.StatusOK, session)
}

// @Summary      Create a class
// @Description  Admin-only
// @Tags         admin,classes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body api.CreateClassRequest true "Class payload"
// @Success      201 {object} api.GymClass
// @Failure      400 {object} api.ValidationResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Router       /classes [post]
func (h *Handler) CreateClass(c *gin.Context) {
	var req api.CreateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.NewValidationResponse(err))
		return
	}

	class, err := h.service.CreateClass(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Failed to create class")
		return
	}

	c.JSON(http.StatusCreated, class)
}

// @Summary      Update a class
// @Description  Admin-only. The path id wins over any id in the body.
// @Tags         admin,classes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Class ID"
// @Param        request body api.UpdateClassRequest true "Class payload"
// @Success      200 {object} api.GymClass
// @Failure      400 {object} api.ValidationResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /classes/{id} [put]
func (h *Handler) UpdateClass(c *gin.Context) {
	var req api.UpdateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.NewValidationResponse(err))
		return
	}
	req.ID = c.Param("id")

	class, err := h.service.UpdateClass(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Failed to update class")
		return
	}

	c.JSON(http.StatusOK, class)
}

// @Summary      Delete a class
// @Description  Admin-only. Removes the class and all of its sessions.
// @Tags         admin,classes
// @Security     BearerAuth
// @Param        id path string true "Class ID"
// @Success      204
// @Failure      404 {object} api.ErrorResponse
// @Router       /classes/{id} [delete]
func (h *Handler) DeleteClass(c *gin.Context) {
	if err := h.service.DeleteClass(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err, "Failed to delete class")
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary      Create a session
// @Description  Admin-only. Time defaults to the class time.
// @Tags         admin,sessions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body api.CreateSessionRequest true "Session payload"
// @Success      201 {object} api.ClassSession
// @Failure      400 {object} api.ValidationResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /sessions [post]
func (h *Handler) CreateSession(c *gin.Context) {
	var req api.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.NewValidationResponse(err))
		return
	}

	session, err := h.service.CreateSession(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Failed to create session")
		return
	}

	c.JSON(http.StatusCreated, session)
}

// @Summary      Update a session
// @Tags         admin,sessions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Session ID"
// @Param        request body api.UpdateSessionRequest true "Session payload"
// @Success      200 {object} api.ClassSession
// @Failure      400 {object} api.ValidationResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /sessions/{id} [put]
func (h *Handler) UpdateSession(c *gin.Context) {
	var req api.UpdateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.NewValidationResponse(err))
		return
	}
	req.ID = c.Param("id")

	session, err := h.service.UpdateSession(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Failed to update session")
		return
	}

	c.JSON(http.StatusOK, session)
}

// @Summary      Delete a session
// @Tags         admin,sessions
// @Security     BearerAuth
// @Param        id path string true "Session ID"
// @Success      204
// @Failure      404 {object} api.ErrorResponse
// @Router       /sessions/{id} [delete]
func (h *Handler) DeleteSession(c *gin.Context) {
	if err := h.service.DeleteSession(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err, "Failed to delete session")
		return
	}

	c.Status(http.StatusNoContent)
}
