package routes

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"contentos/internal/handlers"
	"contentos/internal/tasks"
	"contentos/internal/utils/logger"
)

// SetupModuleRoutes wires the module enqueue endpoints and the marketplace.
func SetupModuleRoutes(api *echo.Group, db *gorm.DB, taskClient *tasks.TaskClient) {
	log := logger.New("module_routes")

	moduleHandler := handlers.NewModuleHandler(db, taskClient)

	moduleGroup := api.Group("/modules")
	moduleGroup.POST("/url-scan", moduleHandler.URLScan)
	moduleGroup.POST("/text-generator", moduleHandler.Generate)
	moduleGroup.POST("/shorts-generator", moduleHandler.Shorts)
	moduleGroup.POST("/authority-image", moduleHandler.AuthorityImage)
	moduleGroup.POST("/plan", moduleHandler.Plan)

	api.GET("/marketplace", moduleHandler.Marketplace)

	postHandler := handlers.NewPostHandler(db, taskClient)
	api.POST("/posts/:id/schedule", postHandler.Schedule)
	api.POST("/posts/:id/publish", postHandler.Publish)

	log.Success("Module routes initialized successfully")
}
