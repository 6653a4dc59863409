package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"contentos/internal/models"
)

func createUserWithKey(t *testing.T, db *gorm.DB, provider string) models.User {
	t.Helper()
	user := models.User{Email: fmt.Sprintf("%s@example.com", t.Name()), Name: "Test User"}
	require.NoError(t, db.Create(&user).Error)
	key := models.UserApiKey{UserID: user.ID, Provider: provider, APIKey: "opaque-ciphertext"}
	require.NoError(t, db.Create(&key).Error)
	return user
}

func TestDeleteAPIKeyByProvider(t *testing.T) {
	db := openHandlerDB(t)
	user := createUserWithKey(t, db, "gemini")
	handler := NewSettingsHandler(db)

	c, rec := newHandlerContext(t, http.MethodDelete, "/api/v1/settings/api-keys/gemini", "")
	c.Set("userID", user.ID)
	c.SetParamNames("provider")
	c.SetParamValues("gemini")
	require.NoError(t, handler.DeleteAPIKey(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	var count int64
	require.NoError(t, db.Model(&models.UserApiKey{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestDeleteAPIKeyModuleScopedProvider(t *testing.T) {
	db := openHandlerDB(t)
	user := createUserWithKey(t, db, "gemini_module.url_scanner")
	handler := NewSettingsHandler(db)

	c, rec := newHandlerContext(t, http.MethodDelete, "/api/v1/settings/api-keys/gemini_module.url_scanner", "")
	c.Set("userID", user.ID)
	c.SetParamNames("provider")
	c.SetParamValues("gemini_module.url_scanner")
	require.NoError(t, handler.DeleteAPIKey(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestDeleteAPIKeyUnknownProvider(t *testing.T) {
	db := openHandlerDB(t)
	user := createUserWithKey(t, db, "gemini")
	handler := NewSettingsHandler(db)

	c, _ := newHandlerContext(t, http.MethodDelete, "/api/v1/settings/api-keys/openai", "")
	c.Set("userID", user.ID)
	c.SetParamNames("provider")
	c.SetParamValues("openai")
	err := handler.DeleteAPIKey(c)
	assert.Equal(t, http.StatusNotFound, httpStatus(t, err))
}

func TestDeleteAPIKeyScopedToOwner(t *testing.T) {
	db := openHandlerDB(t)
	owner := createUserWithKey(t, db, "gemini")
	other := models.User{Email: "other@example.com", Name: "Other"}
	require.NoError(t, db.Create(&other).Error)
	handler := NewSettingsHandler(db)

	c, _ := newHandlerContext(t, http.MethodDelete, "/api/v1/settings/api-keys/gemini", "")
	c.Set("userID", other.ID)
	c.SetParamNames("provider")
	c.SetParamValues("gemini")
	err := handler.DeleteAPIKey(c)
	assert.Equal(t, http.StatusNotFound, httpStatus(t, err))

	var count int64
	require.NoError(t, db.Model(&models.UserApiKey{}).Where("user_id = ?", owner.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
