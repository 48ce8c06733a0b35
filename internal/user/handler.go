package user

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vslbak/gymflow-web/internal/api"
	"github.com/vslbak/gymflow-web/internal/auth"
	"github.com/vslbak/gymflow-web/internal/logger"
)

// RefreshCookie carries the refresh token for clients that do not store it
// themselves.
const RefreshCookie = "gymflow_refresh"

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) respondTokens(c *gin.Context, status int, tokens auth.Tokens) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(RefreshCookie, tokens.RefreshToken, int(auth.RefreshTokenTTL.Seconds()), "/auth", "", false, true)
	c.JSON(status, api.LoginResponse{
		AccessToken:  tokens.AccessToken,
		ExpiresIn:    tokens.ExpiresIn,
		RefreshToken: tokens.RefreshToken,
	})
}

// Register godoc
// @Summary      Register new user
// @Description  Creates a USER account and returns access & refresh tokens.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      api.SignupRequest  true  "User registration data"
// @Success      201      {object}  api.LoginResponse
// @Failure      400      {object}  api.ValidationResponse
// @Failure      409      {object}  api.ErrorResponse
// @Failure      500      {object}  api.ErrorResponse
// @Router       /auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req api.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.NewValidationResponse(err))
		return
	}

	_, tokens, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrEmailExists) {
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: err.Error()})
			return
		}
		logger.Error("Registration failed", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to create user"})
		return
	}

	h.respondTokens(c, http.StatusCreated, tokens)
}

// Login godoc
// @Summary      Login user
// @Description  Authenticates user by email and password.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      api.LoginRequest  true  "User credentials"
// @Success      200      {object}  api.LoginResponse
// @Failure      400      {object}  api.ValidationResponse
// @Failure      401      {object}  api.ErrorResponse
// @Failure      500      {object}  api.ErrorResponse
// @Router       /auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req api.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.NewValidationResponse(err))
		return
	}

	_, tokens, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: err.Error()})
			return
		}
		logger.Error("Login failed", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to sign in"})
		return
	}

	h.respondTokens(c, http.StatusOK, tokens)
}

// GetMe godoc
// @Summary      Get current user
// @Description  Returns profile of the authenticated user.
// @Tags         auth
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  api.User
// @Failure      401  {object}  api.ErrorResponse
// @Failure      404  {object}  api.ErrorResponse
// @Router       /auth/me [get]
func (h *Handler) GetMe(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Not authenticated"})
		return
	}

	user, err := h.service.GetByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to load user"})
		return
	}

	c.JSON(http.StatusOK, user.ToAPI())
}

// RefreshToken godoc
// @Summary      Refresh tokens
// @Description  Exchanges a refresh token (body or cookie) for a new pair.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      api.RefreshTokenRequest  false  "Refresh token payload"
// @Success      200      {object}  api.LoginResponse
// @Failure      401      {object}  api.ErrorResponse
// @Failure      500      {object}  api.ErrorResponse
// @Router       /auth/refresh [post]
func (h *Handler) RefreshToken(c *gin.Context) {
	var req api.RefreshTokenRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, api.NewValidationResponse(err))
			return
		}
	}
	if req.RefreshToken == "" {
		if cookie, err := c.Cookie(RefreshCookie); err == nil {
			req.RefreshToken = cookie
		}
	}

	_, tokens, err := h.service.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, ErrInvalidRefreshToken) {
			c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: err.Error()})
			return
		}
		logger.Error("Token refresh failed", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to refresh token"})
		return
	}

	h.respondTokens(c, http.StatusOK, tokens)
}
