package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"contentos/internal/api/middleware"
	"contentos/internal/api/validator"
	"contentos/internal/models"
	"contentos/internal/modules"
	"contentos/internal/utils/logger"
)

// BrandVoiceHandler owns the workspace voice profiles. Writes are gated on
// the brand voice module; a workspace keeps at most one default voice.
type BrandVoiceHandler struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBrandVoiceHandler(db *gorm.DB) *BrandVoiceHandler {
	return &BrandVoiceHandler{db: db, log: logger.New("BrandVoiceHandler")}
}

func (h *BrandVoiceHandler) requireBrandVoice(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	err := modules.RequireEntitlement(c.Request().Context(), h.db, workspaceID, modules.KeyBrandVoice)
	if err == nil {
		return nil
	}
	if errors.Is(err, modules.ErrModuleNotEnabled) {
		return echo.NewHTTPError(http.StatusForbidden, map[string]interface{}{
			"error":     "Brand Voice module required",
			"moduleKey": modules.KeyBrandVoice,
		})
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

func marshalWords(words []string) datatypes.JSON {
	if words == nil {
		words = []string{}
	}
	blob, _ := json.Marshal(words)
	return datatypes.JSON(blob)
}

// List returns the workspace's voices, default first, newest next.
// @Summary List brand voices
// @Tags brand-voices
// @Produce json
// @Success 200 {array} models.BrandVoice
// @Router /api/v1/brand-voices [get]
func (h *BrandVoiceHandler) List(c echo.Context) error {
	var voices []models.BrandVoice
	err := h.db.WithContext(c.Request().Context()).
		Where("workspace_id = ? AND is_deleted = ?", middleware.GetWorkspaceID(c), false).
		Order("is_default desc").
		Order("created_at desc").
		Find(&voices).Error
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, voices)
}

// Create stores a new voice profile.
// @Summary Create a brand voice
// @Tags brand-voices
// @Accept json
// @Produce json
// @Param request body validator.BrandVoiceRequest true "Voice profile"
// @Success 201 {object} models.BrandVoice
// @Failure 403 {object} map[string]string "Module not enabled"
// @Router /api/v1/brand-voices [post]
func (h *BrandVoiceHandler) Create(c echo.Context) error {
	var req validator.BrandVoiceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if err := h.requireBrandVoice(c); err != nil {
		return err
	}

	workspaceID := middleware.GetWorkspaceID(c)
	voice := models.BrandVoice{
		WorkspaceID: workspaceID,
		Name:        req.Name,
		Tone:        req.Tone,
		Style:       req.Style,
		Audience:    req.Audience,
		Keywords:    marshalWords(req.Keywords),
		AvoidWords:  marshalWords(req.AvoidWords),
		Examples:    req.Examples,
		IsDefault:   req.IsDefault,
	}

	err := h.db.WithContext(c.Request().Context()).Transaction(func(tx *gorm.DB) error {
		if req.IsDefault {
			err := tx.Model(&models.BrandVoice{}).
				Where("workspace_id = ? AND is_default = ?", workspaceID, true).
				Update("is_default", false).Error
			if err != nil {
				return err
			}
		}
		return tx.Create(&voice).Error
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, voice)
}

// Update replaces a voice's profile fields.
// @Summary Update a brand voice
// @Tags brand-voices
// @Accept json
// @Produce json
// @Param id path string true "Voice ID"
// @Param request body validator.BrandVoiceRequest true "Voice profile"
// @Success 200 {object} models.BrandVoice
// @Failure 404 {object} map[string]string "Not found"
// @Router /api/v1/brand-voices/{id} [put]
func (h *BrandVoiceHandler) Update(c echo.Context) error {
	var req validator.BrandVoiceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	workspaceID := middleware.GetWorkspaceID(c)
	var voice models.BrandVoice
	err := h.db.WithContext(c.Request().Context()).
		Where("id = ? AND workspace_id = ? AND is_deleted = ?", c.Param("id"), workspaceID, false).
		First(&voice).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "brand voice not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	err = h.db.WithContext(c.Request().Context()).Transaction(func(tx *gorm.DB) error {
		if req.IsDefault {
			err := tx.Model(&models.BrandVoice{}).
				Where("workspace_id = ? AND is_default = ? AND id <> ?", workspaceID, true, voice.ID).
				Update("is_default", false).Error
			if err != nil {
				return err
			}
		}
		return tx.Model(&voice).Updates(map[string]interface{}{
			"name":        req.Name,
			"tone":        req.Tone,
			"style":       req.Style,
			"audience":    req.Audience,
			"keywords":    marshalWords(req.Keywords),
			"avoid_words": marshalWords(req.AvoidWords),
			"examples":    req.Examples,
			"is_default":  req.IsDefault,
		}).Error
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, voice)
}

// Delete removes a voice from the workspace.
// @Summary Delete a brand voice
// @Tags brand-voices
// @Param id path string true "Voice ID"
// @Success 204 "No content"
// @Failure 404 {object} map[string]string "Not found"
// @Router /api/v1/brand-voices/{id} [delete]
func (h *BrandVoiceHandler) Delete(c echo.Context) error {
	result := h.db.WithContext(c.Request().Context()).
		Where("id = ? AND workspace_id = ?", c.Param("id"), middleware.GetWorkspaceID(c)).
		Delete(&models.BrandVoice{})
	if result.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, result.Error.Error())
	}
	if result.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "brand voice not found")
	}
	return c.NoContent(http.StatusNoContent)
}
