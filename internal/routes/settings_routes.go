package routes

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"contentos/internal/handlers"
	"contentos/internal/utils/logger"
)

// SetupSettingsRoutes wires BYOK key management and per-module settings.
func SetupSettingsRoutes(api *echo.Group, db *gorm.DB) {
	log := logger.New("settings_routes")

	settingsHandler := handlers.NewSettingsHandler(db)

	settingsGroup := api.Group("/settings")
	settingsGroup.GET("/api-keys", settingsHandler.ListAPIKeys)
	settingsGroup.POST("/api-keys", settingsHandler.UpsertAPIKey)
	settingsGroup.DELETE("/api-keys/:provider", settingsHandler.DeleteAPIKey)
	settingsGroup.GET("/modules/:key", settingsHandler.GetModuleSettings)
	settingsGroup.PUT("/modules/:key", settingsHandler.PutModuleSettings)

	log.Success("Settings routes initialized successfully")
}
