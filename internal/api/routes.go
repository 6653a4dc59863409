package api

import (
	"net/http"

	"contentos/internal/api/middleware"
	"contentos/internal/api/registry"
	"contentos/internal/metrics"
	"contentos/internal/routes"

	_ "contentos/docs/swagger"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

func (s *Server) registerRoutes() {
	s.echo.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "ContentOS API")
	})
	// Health check
	// @Summary Health check
	// @Description Check if the server is running
	// @Accept json
	// @Produce json
	// @Success 200 {object} map[string]string "OK"
	// @Router /health [get]
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/swagger/*", echoSwagger.WrapHandler)

	metrics.Register()
	s.echo.GET("/metrics", metrics.Handler())

	// Billing webhook stays outside the JWT group.
	routes.SetupWebhookRoutes(s.echo, s.db, s.config)

	// API v1 group
	api := s.echo.Group("/api/v1")
	auth := middleware.NewAuthMiddleware(s.db, s.config.JWT.Secret)
	api.Use(auth.Middleware())

	// Register CRUD routes for all workspace resources
	registry.RegisterCRUDRoutes(api, s.db)

	routes.SetupModuleRoutes(api, s.db, s.taskClient)
	routes.SetupSettingsRoutes(api, s.db)
	routes.SetupBrandVoiceRoutes(api, s.db)
}
