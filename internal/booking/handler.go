package booking

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vslbak/gymflow-web/internal/api"
	"github.com/vslbak/gymflow-web/internal/auth"
	"github.com/vslbak/gymflow-web/internal/gym"
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
	case errors.Is(err, ErrBookingNotFound), errors.Is(err, gym.ErrSessionNotFound), errors.Is(err, gym.ErrClassNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, gym.ErrNoSpotsAvailable), errors.Is(err, ErrAlreadyCancelled):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrForbidden):
		c.JSON(http.StatusForbidden, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrPaymentIncomplete):
		c.JSON(http.StatusPaymentRequired, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrCheckoutFailed):
		c.JSON(http.StatusBadGateway, api.ErrorResponse{Error: ErrCheckoutFailed.Error()})
	default:
		logger.Error(fallback, "error", err, "path", c.FullPath())
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: fallback})
	}
}

func currentUser(c *gin.Context) (string, bool) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
	}
	return userID, ok
}

// CreateSession godoc
// @Summary      Book a class session
// @Description  Reserves a spot and returns the checkout redirect URL.
// @Tags         bookings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request body api.BookingRequest true "Session to book"
// @Success      200 {object} api.BookingResponse
// @Failure      400 {object} api.ValidationResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /booking/create-session [post]
func (h *Handler) CreateSession(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req api.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.NewValidationResponse(err))
		return
	}

	res, err := h.service.Create(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err, "Failed to create booking")
		return
	}

	c.JSON(http.StatusOK, res)
}

// Confirm godoc
// @Summary      Confirm a booking after checkout
// @Tags         bookings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request body api.ConfirmBookingRequest true "Checkout reference"
// @Success      200 {object} api.Booking
// @Failure      402 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /booking/confirm [post]
func (h *Handler) Confirm(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req api.ConfirmBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.NewValidationResponse(err))
		return
	}

	b, err := h.service.Confirm(c.Request.Context(), userID, req.SessionID)
	if err != nil {
		respondError(c, err, "Failed to confirm booking")
		return
	}

	c.JSON(http.StatusOK, b)
}

// UserBookings godoc
// @Summary      List my bookings
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Success      200 {array} api.Booking
// @Router       /booking/user/bookings [get]
func (h *Handler) UserBookings(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	bookings, err := h.service.ListForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to fetch bookings")
		return
	}

	c.JSON(http.StatusOK, bookings)
}

// AllBookings godoc
// @Summary      List all bookings
// @Description  Admin-only
// @Tags         admin,bookings
// @Security     BearerAuth
// @Produce      json
// @Success      200 {array} api.Booking
// @Router       /admin/bookings [get]
func (h *Handler) AllBookings(c *gin.Context) {
	bookings, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to fetch bookings")
		return
	}

	c.JSON(http.StatusOK, bookings)
}

// Cancel godoc
// @Summary      Cancel booking
// @Description  Cancels a booking of the current user and frees its spot.
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        id path string true "Booking ID"
// @Success      200 {object} api.MessageResponse
// @Failure      403 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /booking/{id} [delete]
func (h *Handler) Cancel(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.service.Cancel(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondError(c, err, "Failed to cancel booking")
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "Booking cancelled successfully"})
}
