package routes

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"contentos/internal/handlers"
	"contentos/internal/utils/logger"
)

// SetupBrandVoiceRoutes wires the workspace voice profile endpoints.
func SetupBrandVoiceRoutes(api *echo.Group, db *gorm.DB) {
	log := logger.New("brandvoice_routes")

	brandVoiceHandler := handlers.NewBrandVoiceHandler(db)

	voiceGroup := api.Group("/brand-voices")
	voiceGroup.GET("", brandVoiceHandler.List)
	voiceGroup.POST("", brandVoiceHandler.Create)
	voiceGroup.PUT("/:id", brandVoiceHandler.Update)
	voiceGroup.DELETE("/:id", brandVoiceHandler.Delete)

	log.Success("Brand voice routes initialized successfully")
}
