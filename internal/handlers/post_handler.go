package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"contentos/internal/api/middleware"
	"contentos/internal/api/validator"
	"contentos/internal/models"
	"contentos/internal/tasks"
	"contentos/internal/utils/logger"
)

// PostHandler owns the post lifecycle endpoints beyond plain CRUD:
// scheduling and publishing.
type PostHandler struct {
	db         *gorm.DB
	taskClient *tasks.TaskClient
	log        *logger.Logger
}

func NewPostHandler(db *gorm.DB, taskClient *tasks.TaskClient) *PostHandler {
	return &PostHandler{db: db, taskClient: taskClient, log: logger.New("PostHandler")}
}

func (h *PostHandler) loadWorkspacePost(c echo.Context) (*models.Post, error) {
	id := c.Param("id")
	if id == "" {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "missing id parameter")
	}

	var post models.Post
	err := h.db.WithContext(c.Request().Context()).
		Where("id = ? AND workspace_id = ? AND is_deleted = ?", id, middleware.GetWorkspaceID(c), false).
		First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, echo.NewHTTPError(http.StatusNotFound, "post not found")
	}
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return &post, nil
}

// Schedule marks a post SCHEDULED and queues its future publish.
// @Summary Schedule a post for future publishing
// @Tags posts
// @Accept json
// @Produce json
// @Param id path string true "Post ID"
// @Param request body validator.SchedulePostRequest true "Schedule time (RFC3339)"
// @Success 200 {object} models.Post
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 404 {object} map[string]string "Not found"
// @Router /api/v1/posts/{id}/schedule [post]
func (h *PostHandler) Schedule(c echo.Context) error {
	post, err := h.loadWorkspacePost(c)
	if err != nil {
		return err
	}

	var req validator.SchedulePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	at, err := time.Parse(time.RFC3339, req.ScheduledFor)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "scheduledFor must be RFC3339")
	}
	if at.Before(time.Now()) {
		return echo.NewHTTPError(http.StatusBadRequest, "scheduledFor must be in the future")
	}

	updates := map[string]interface{}{
		"status":        models.PostStatusScheduled,
		"scheduled_for": &at,
	}
	if err := h.db.WithContext(c.Request().Context()).Model(post).Updates(updates).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if _, err := h.taskClient.EnqueuePublishAt(c.Request().Context(), tasks.PublishPayload{PostID: post.ID}, at); err != nil {
		// The periodic sweep will still pick the post up at its time.
		h.log.Warn("failed to pre-enqueue publish for post %s: %v", post.ID, err)
	}

	post.Status = models.PostStatusScheduled
	post.ScheduledFor = &at
	return c.JSON(http.StatusOK, post)
}

// Publish queues an immediate publish of a post.
// @Summary Publish a post now
// @Tags posts
// @Produce json
// @Param id path string true "Post ID"
// @Success 202 {object} map[string]string "Job accepted"
// @Failure 404 {object} map[string]string "Not found"
// @Router /api/v1/posts/{id}/publish [post]
func (h *PostHandler) Publish(c echo.Context) error {
	post, err := h.loadWorkspacePost(c)
	if err != nil {
		return err
	}

	info, err := h.taskClient.EnqueuePublish(c.Request().Context(), tasks.PublishPayload{PostID: post.ID})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusAccepted, map[string]string{
		"jobId":   info.ID,
		"message": "Publish queued",
	})
}
