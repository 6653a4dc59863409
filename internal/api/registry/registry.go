package registry

import (
	"github.com/labstack/echo/v4"

	"contentos/internal/api/controllers"
	"contentos/internal/api/middleware"
	"contentos/internal/models"
	"contentos/internal/services"

	"gorm.io/gorm"
)

// RegisterCRUDRoutes wires the generic CRUD surface for every
// workspace-scoped resource.
// @Summary Register CRUD routes for all models
// @Accept json
// @Produce json
func RegisterCRUDRoutes(g *echo.Group, db *gorm.DB) {
	// Posts: full CRUD for any member.
	postService := services.NewBaseService(db, models.Post{})
	postController := controllers.NewBaseController(postService)
	// @Summary Post CRUD
	// @Router /api/v1/posts [get]
	postController.RegisterRoutes(g.Group("/posts"), "")

	// Assets are produced by processors; the API only reads and deletes.
	assetService := services.NewBaseService(db, models.Asset{})
	assetController := controllers.NewBaseController(assetService)
	// @Summary Asset read/delete
	// @Router /api/v1/assets [get]
	assetController.RegisterRoutes(g.Group("/assets"), "", "GET", "DELETE")

	// Schedule slots: full CRUD so the calendar can be edited by hand.
	slotService := services.NewBaseService(db, models.ScheduleSlot{})
	slotController := controllers.NewBaseController(slotService)
	// @Summary Schedule slot CRUD
	// @Router /api/v1/schedule-slots [get]
	slotController.RegisterRoutes(g.Group("/schedule-slots"), "")

	// Integrations: connecting or disconnecting a platform is admin work.
	integrationService := services.NewBaseService(db, models.Integration{})
	integrationController := controllers.NewBaseController(integrationService)
	integrationGroup := g.Group("/integrations")
	integrationGroup.GET("", integrationController.List)
	integrationGroup.GET("/:id", integrationController.Get)
	integrationWriteGroup := integrationGroup.Group("")
	integrationWriteGroup.Use(middleware.RequireWorkspaceRole(models.WorkspaceRoleAdmin))
	// @Summary Integration management
	// @Router /api/v1/integrations [post]
	integrationWriteGroup.POST("", integrationController.Create)
	integrationWriteGroup.PUT("/:id", integrationController.Update)
	integrationWriteGroup.DELETE("/:id", integrationController.Delete)
}
