package routes

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"contentos/internal/config"
	"contentos/internal/handlers"
	"contentos/internal/utils/logger"
)

// SetupWebhookRoutes wires the billing webhook. It lives outside the JWT
// group; the handler authenticates with the shared webhook token instead.
func SetupWebhookRoutes(e *echo.Echo, db *gorm.DB, cfg *config.Config) {
	log := logger.New("webhook_routes")

	webhookHandler := handlers.NewWebhookHandler(db, cfg.Webhook.SecretToken)

	e.POST("/webhooks/billing", webhookHandler.Billing)

	log.Success("Webhook routes initialized successfully")
}
