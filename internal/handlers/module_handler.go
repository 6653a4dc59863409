package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"contentos/internal/api/middleware"
	"contentos/internal/api/validator"
	"contentos/internal/modules"
	"contentos/internal/tasks"
	"contentos/internal/utils/logger"
)

// ModuleHandler owns the enqueue endpoints for the content modules. Each
// endpoint gates on entitlement before anything reaches the queue; the
// processor re-checks before side effects.
type ModuleHandler struct {
	db         *gorm.DB
	taskClient *tasks.TaskClient
	log        *logger.Logger
}

func NewModuleHandler(db *gorm.DB, taskClient *tasks.TaskClient) *ModuleHandler {
	return &ModuleHandler{db: db, taskClient: taskClient, log: logger.New("ModuleHandler")}
}

func (h *ModuleHandler) requireModule(c echo.Context, moduleKey string) error {
	workspaceID := middleware.GetWorkspaceID(c)
	err := modules.RequireEntitlement(c.Request().Context(), h.db, workspaceID, moduleKey)
	if err == nil {
		return nil
	}
	if errors.Is(err, modules.ErrModuleNotEnabled) {
		cfg, _ := modules.Lookup(moduleKey)
		return echo.NewHTTPError(http.StatusForbidden, map[string]interface{}{
			"error":     "module not enabled for this workspace",
			"moduleKey": moduleKey,
			"price":     cfg.Price,
		})
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

func (h *ModuleHandler) enqueueError(err error) error {
	if errors.Is(err, tasks.ErrRateLimited) {
		return echo.NewHTTPError(http.StatusTooManyRequests, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

// URLScan enqueues a url scan job.
// @Summary Scan an article URL into draft posts
// @Tags modules
// @Accept json
// @Produce json
// @Param request body validator.URLScanRequest true "Scan parameters"
// @Success 202 {object} map[string]string "Job accepted"
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 403 {object} map[string]string "Module not enabled"
// @Router /api/v1/modules/url-scan [post]
func (h *ModuleHandler) URLScan(c echo.Context) error {
	var req validator.URLScanRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if err := h.requireModule(c, modules.KeyURLScanner); err != nil {
		return err
	}

	info, err := h.taskClient.EnqueueURLScan(c.Request().Context(), tasks.URLScanPayload{
		WorkspaceID: middleware.GetWorkspaceID(c),
		UserID:      middleware.GetUserID(c),
		URL:         req.URL,
		Platform:    req.Platform,
		PostCount:   req.PostCount,
	})
	if err != nil {
		return h.enqueueError(err)
	}

	return c.JSON(http.StatusAccepted, map[string]string{
		"jobId":   info.ID,
		"message": "URL scan queued",
	})
}

// Generate enqueues a viral text generation job.
// @Summary Generate a draft post from a prompt
// @Tags modules
// @Accept json
// @Produce json
// @Param request body validator.GenerateRequest true "Generation parameters"
// @Success 202 {object} map[string]string "Job accepted"
// @Router /api/v1/modules/text-generator [post]
func (h *ModuleHandler) Generate(c echo.Context) error {
	var req validator.GenerateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if err := h.requireModule(c, modules.KeyTextViral); err != nil {
		return err
	}

	info, err := h.taskClient.EnqueueGenerate(c.Request().Context(), tasks.GeneratePayload{
		WorkspaceID: middleware.GetWorkspaceID(c),
		UserID:      middleware.GetUserID(c),
		Prompt:      req.Prompt,
		Type:        req.Type,
		Platform:    req.Platform,
	})
	if err != nil {
		return h.enqueueError(err)
	}

	return c.JSON(http.StatusAccepted, map[string]string{
		"jobId":   info.ID,
		"message": "Generation queued",
	})
}

// Shorts enqueues a short-form script generation job.
// @Summary Generate a short-form video script
// @Tags modules
// @Accept json
// @Produce json
// @Param request body validator.ShortsRequest true "Script parameters"
// @Success 202 {object} map[string]string "Job accepted"
// @Router /api/v1/modules/shorts-generator [post]
func (h *ModuleHandler) Shorts(c echo.Context) error {
	var req validator.ShortsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if err := h.requireModule(c, modules.KeyShortsGenerator); err != nil {
		return err
	}

	info, err := h.taskClient.EnqueueShorts(c.Request().Context(), tasks.ShortsPayload{
		WorkspaceID: middleware.GetWorkspaceID(c),
		UserID:      middleware.GetUserID(c),
		Topic:       req.Topic,
		Platform:    req.Platform,
		Niche:       req.Niche,
		Tone:        req.Tone,
	})
	if err != nil {
		return h.enqueueError(err)
	}

	return c.JSON(http.StatusAccepted, map[string]string{
		"jobId":   info.ID,
		"message": "Shorts script queued",
	})
}

// AuthorityImage enqueues a quote-image rendering job.
// @Summary Render a branded quote image
// @Tags modules
// @Accept json
// @Produce json
// @Param request body validator.AuthorityImageRequest true "Image parameters"
// @Success 202 {object} map[string]string "Job accepted"
// @Router /api/v1/modules/authority-image [post]
func (h *ModuleHandler) AuthorityImage(c echo.Context) error {
	var req validator.AuthorityImageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if err := h.requireModule(c, modules.KeyAuthorityImage); err != nil {
		return err
	}

	info, err := h.taskClient.EnqueueAuthorityImage(c.Request().Context(), tasks.AuthorityImagePayload{
		WorkspaceID:     middleware.GetWorkspaceID(c),
		Text:            req.Text,
		Author:          req.Author,
		BackgroundColor: req.BackgroundColor,
		TextColor:       req.TextColor,
		AccentColor:     req.AccentColor,
		Style:           req.Style,
	})
	if err != nil {
		return h.enqueueError(err)
	}

	return c.JSON(http.StatusAccepted, map[string]string{
		"jobId":   info.ID,
		"message": "Authority image queued",
	})
}

// Plan enqueues a schedule planning job.
// @Summary Plan empty schedule slots for the coming days
// @Tags modules
// @Accept json
// @Produce json
// @Param request body validator.PlanRequest true "Planning parameters"
// @Success 202 {object} map[string]string "Job accepted"
// @Router /api/v1/modules/plan [post]
func (h *ModuleHandler) Plan(c echo.Context) error {
	var req validator.PlanRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if err := h.requireModule(c, modules.KeyPlan); err != nil {
		return err
	}

	info, err := h.taskClient.EnqueuePlan(c.Request().Context(), tasks.PlanPayload{
		WorkspaceID: middleware.GetWorkspaceID(c),
		Days:        req.Days,
	})
	if err != nil {
		return h.enqueueError(err)
	}

	return c.JSON(http.StatusAccepted, map[string]string{
		"jobId":   info.ID,
		"message": "Planning queued",
	})
}

// Marketplace lists the module catalog with per-workspace enablement.
// @Summary List available modules
// @Tags modules
// @Produce json
// @Success 200 {array} map[string]interface{}
// @Router /api/v1/marketplace [get]
func (h *ModuleHandler) Marketplace(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)

	out := make([]map[string]interface{}, 0, len(modules.Catalog()))
	for _, m := range modules.Catalog() {
		enabled, err := modules.CheckEntitlement(c.Request().Context(), h.db, workspaceID, m.Key)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		out = append(out, map[string]interface{}{
			"key":         m.Key,
			"name":        m.Name,
			"description": m.Description,
			"price":       m.Price,
			"category":    m.Category,
			"icon":        m.Icon,
			"enabled":     enabled,
		})
	}
	return c.JSON(http.StatusOK, out)
}
