package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"contentos/internal/api/middleware"
	"contentos/internal/api/validator"
	"contentos/internal/models"
	"contentos/internal/utils/crypto"
	"contentos/internal/utils/logger"
)

// SettingsHandler owns BYOK API key storage and per-module settings.
// Stored keys are encrypted at rest and never leave the API unmasked.
type SettingsHandler struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSettingsHandler(db *gorm.DB) *SettingsHandler {
	return &SettingsHandler{db: db, log: logger.New("SettingsHandler")}
}

// maskKey renders a stored key as "****" plus its last four characters.
func maskKey(plaintext string) string {
	if len(plaintext) <= 4 {
		return "****"
	}
	return "****" + plaintext[len(plaintext)-4:]
}

type apiKeyResponse struct {
	ID        string `json:"id"`
	Provider  string `json:"provider"`
	MaskedKey string `json:"maskedKey"`
	Label     string `json:"label,omitempty"`
}

// ListAPIKeys lists the caller's stored keys, masked.
// @Summary List stored API keys
// @Tags settings
// @Produce json
// @Success 200 {array} apiKeyResponse
// @Router /api/v1/settings/api-keys [get]
func (h *SettingsHandler) ListAPIKeys(c echo.Context) error {
	var keys []models.UserApiKey
	err := h.db.WithContext(c.Request().Context()).
		Where("user_id = ? AND is_deleted = ?", middleware.GetUserID(c), false).
		Find(&keys).Error
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	out := make([]apiKeyResponse, 0, len(keys))
	for _, key := range keys {
		plaintext, err := crypto.Decrypt(key.APIKey)
		if err != nil {
			h.log.Warn("failed to decrypt key %s for masking: %v", key.ID, err)
			plaintext = ""
		}
		out = append(out, apiKeyResponse{
			ID:        key.ID,
			Provider:  key.Provider,
			MaskedKey: maskKey(plaintext),
			Label:     key.Label,
		})
	}
	return c.JSON(http.StatusOK, out)
}

// UpsertAPIKey stores or replaces a key for a provider.
// @Summary Store an API key
// @Tags settings
// @Accept json
// @Produce json
// @Param request body validator.APIKeyRequest true "Key details"
// @Success 201 {object} apiKeyResponse
// @Router /api/v1/settings/api-keys [post]
func (h *SettingsHandler) UpsertAPIKey(c echo.Context) error {
	var req validator.APIKeyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	encrypted, err := crypto.Encrypt(req.APIKey)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to encrypt key")
	}

	// A moduleKey scopes the key to one module; the resolver checks the
	// composite name before the bare provider.
	provider := req.Provider
	if req.ModuleKey != "" {
		provider = fmt.Sprintf("%s_%s", req.Provider, req.ModuleKey)
	}

	userID := middleware.GetUserID(c)
	key := models.UserApiKey{
		UserID:   userID,
		Provider: provider,
		APIKey:   encrypted,
		Label:    req.Label,
	}
	err = h.db.WithContext(c.Request().Context()).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "provider"}},
			DoUpdates: clause.AssignmentColumns([]string{"api_key", "label", "is_deleted", "deleted_at"}),
		}).
		Create(&key).Error
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, apiKeyResponse{
		ID:        key.ID,
		Provider:  key.Provider,
		MaskedKey: maskKey(req.APIKey),
		Label:     key.Label,
	})
}

// DeleteAPIKey removes a stored key by its provider string (bare or
// module-scoped composite).
// @Summary Delete a stored API key
// @Tags settings
// @Param provider path string true "Provider string"
// @Success 204 "No content"
// @Router /api/v1/settings/api-keys/{provider} [delete]
func (h *SettingsHandler) DeleteAPIKey(c echo.Context) error {
	provider := c.Param("provider")
	if provider == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing provider parameter")
	}

	result := h.db.WithContext(c.Request().Context()).
		Where("provider = ? AND user_id = ?", provider, middleware.GetUserID(c)).
		Delete(&models.UserApiKey{})
	if result.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, result.Error.Error())
	}
	if result.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "key not found")
	}

	return c.NoContent(http.StatusNoContent)
}

// GetModuleSettings returns the caller's settings blob for one module.
// @Summary Get per-module settings
// @Tags settings
// @Produce json
// @Param key path string true "Module key"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/settings/modules/{key} [get]
func (h *SettingsHandler) GetModuleSettings(c echo.Context) error {
	moduleKey := c.Param("key")

	var settings models.UserModuleSettings
	err := h.db.WithContext(c.Request().Context()).
		Where("user_id = ? AND module_key = ?", middleware.GetUserID(c), moduleKey).
		First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.JSON(http.StatusOK, map[string]interface{}{})
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var blob map[string]interface{}
	if len(settings.Settings) > 0 {
		if err := json.Unmarshal(settings.Settings, &blob); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "malformed settings blob")
		}
	}
	if blob == nil {
		blob = map[string]interface{}{}
	}
	return c.JSON(http.StatusOK, blob)
}

// PutModuleSettings replaces the caller's settings blob for one module.
// @Summary Replace per-module settings
// @Tags settings
// @Accept json
// @Produce json
// @Param key path string true "Module key"
// @Param request body validator.ModuleSettingsRequest true "Settings blob"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/settings/modules/{key} [put]
func (h *SettingsHandler) PutModuleSettings(c echo.Context) error {
	moduleKey := c.Param("key")

	var req validator.ModuleSettingsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	blob, err := json.Marshal(req.Settings)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "settings must be a JSON object")
	}

	settings := models.UserModuleSettings{
		UserID:    middleware.GetUserID(c),
		ModuleKey: moduleKey,
		Settings:  datatypes.JSON(blob),
	}
	err = h.db.WithContext(c.Request().Context()).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "module_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"settings"}),
		}).
		Create(&settings).Error
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, req.Settings)
}
