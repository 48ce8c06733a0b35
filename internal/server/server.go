package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vslbak/gymflow-web/internal/api"
	"github.com/vslbak/gymflow-web/internal/auth"
	"github.com/vslbak/gymflow-web/internal/booking"
	"github.com/vslbak/gymflow-web/internal/config"
	"github.com/vslbak/gymflow-web/internal/gym"
	"github.com/vslbak/gymflow-web/internal/logger"
	"github.com/vslbak/gymflow-web/internal/user"
)

// Deps are the services the HTTP layer is built on.
type Deps struct {
	Users    user.Service
	Gym      gym.Service
	Bookings booking.Service
	Issuer   *auth.TokenIssuer
	Store    string
}

type Server struct {
	router  *gin.Engine
	limiter *RateLimiter
	http    *http.Server
}

func New(deps Deps, cfg *config.Config) *Server {
	s := &Server{}
	if cfg.RateLimitRPS > 0 {
		s.limiter = NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, 3*time.Minute)
	}
	s.router = newRouter(deps, cfg, s.limiter)
	s.http = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// NewRouter builds the engine without rate limiting.
func NewRouter(deps Deps, cfg *config.Config) *gin.Engine {
	return newRouter(deps, cfg, nil)
}

func newRouter(deps Deps, cfg *config.Config, limiter *RateLimiter) *gin.Engine {
	if deps.Users == nil || deps.Gym == nil || deps.Bookings == nil || deps.Issuer == nil {
		panic("server: nil dependency")
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware(cfg.PublicURL))
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())
	if limiter != nil {
		router.Use(limiter.Middleware())
	}

	userHandler := user.NewHandler(deps.Users)
	gymHandler := gym.NewHandler(deps.Gym)
	bookingHandler := booking.NewHandler(deps.Bookings)

	router.GET("/health", Health(deps.Store))
	router.GET("/metrics", Metrics())
	SetupSwagger(router)

	router.GET("/classes", gymHandler.ListClasses)
	router.GET("/classes/:id", gymHandler.GetClass)
	router.GET("/classes/:id/sessions", gymHandler.ListClassSessions)
	router.GET("/sessions", gymHandler.ListSessions)
	router.GET("/sessions/:id", gymHandler.GetSession)

	public := router.Group("/auth")
	{
		public.POST("/register", userHandler.Register)
		public.POST("/login", userHandler.Login)
		public.POST("/refresh", userHandler.RefreshToken)
	}

	authMiddleware := auth.Middleware(deps.Issuer)
	router.GET("/auth/me", authMiddleware, userHandler.GetMe)

	protected := router.Group("/booking")
	protected.Use(authMiddleware)
	{
		protected.POST("/create-session", bookingHandler.CreateSession)
		protected.POST("/confirm", bookingHandler.Confirm)
		protected.GET("/user/bookings", bookingHandler.UserBookings)
		protected.DELETE("/:id", bookingHandler.Cancel)
	}

	admin := router.Group("")
	admin.Use(authMiddleware, auth.RequireRole(api.RoleAdmin))
	{
		admin.GET("/admin/bookings", bookingHandler.AllBookings)
		admin.POST("/classes", gymHandler.CreateClass)
		admin.PUT("/classes/:id", gymHandler.UpdateClass)
		admin.DELETE("/classes/:id", gymHandler.DeleteClass)
		admin.POST("/sessions", gymHandler.CreateSession)
		admin.PUT("/sessions/:id", gymHandler.UpdateSession)
		admin.DELETE("/sessions/:id", gymHandler.DeleteSession)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Not found"})
	})

	return router
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	logger.Info("HTTP server listening", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.limiter != nil {
		s.limiter.Stop()
	}
	return s.http.Shutdown(ctx)
}

func corsMiddleware(origin string) gin.HandlerFunc {
	if origin == "" {
		origin = "*"
	}
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		if origin != "*" {
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Add("Vary", "Origin")
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
