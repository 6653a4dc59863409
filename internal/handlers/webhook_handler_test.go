package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"contentos/internal/api/validator"
	"contentos/internal/models"
	"contentos/internal/modules"
)

func openHandlerDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Workspace{},
		&models.WorkspaceUser{},
		&models.Module{},
		&models.WorkspaceModule{},
		&models.UserApiKey{},
		&models.BrandVoice{},
	))
	return db
}

func createHandlerWorkspace(t *testing.T, db *gorm.DB) models.Workspace {
	t.Helper()
	workspace := models.Workspace{Name: "Acme", Slug: "acme-" + t.Name()}
	require.NoError(t, db.Create(&workspace).Error)
	return workspace
}

func newHandlerContext(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = validator.NewValidator()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func httpStatus(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	return he.Code
}

func TestBillingGrantRejectsUnknownModuleKey(t *testing.T) {
	db := openHandlerDB(t)
	workspace := createHandlerWorkspace(t, db)
	handler := NewWebhookHandler(db, "")

	body := fmt.Sprintf(`{"event":"dev.grant","workspaceId":%q,"moduleKey":"module.does_not_exist"}`, workspace.ID)
	c, _ := newHandlerContext(t, http.MethodPost, "/webhooks/billing", body)

	err := handler.Billing(c)
	assert.Equal(t, http.StatusBadRequest, httpStatus(t, err))

	var count int64
	require.NoError(t, db.Model(&models.WorkspaceModule{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestBillingGrantEnablesModule(t *testing.T) {
	db := openHandlerDB(t)
	workspace := createHandlerWorkspace(t, db)
	handler := NewWebhookHandler(db, "")

	body := fmt.Sprintf(`{"event":"transaction.completed","workspaceId":%q,"moduleKey":%q}`, workspace.ID, modules.KeyURLScanner)
	c, rec := newHandlerContext(t, http.MethodPost, "/webhooks/billing", body)

	require.NoError(t, handler.Billing(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"granted":true`)

	var entitlement models.WorkspaceModule
	require.NoError(t, db.Where("workspace_id = ? AND module_key = ?", workspace.ID, modules.KeyURLScanner).First(&entitlement).Error)
	assert.True(t, entitlement.Enabled)
}

func TestBillingRejectsUnknownEvent(t *testing.T) {
	db := openHandlerDB(t)
	workspace := createHandlerWorkspace(t, db)
	handler := NewWebhookHandler(db, "")

	body := fmt.Sprintf(`{"event":"transaction.refunded","workspaceId":%q,"moduleKey":%q}`, workspace.ID, modules.KeyURLScanner)
	c, _ := newHandlerContext(t, http.MethodPost, "/webhooks/billing", body)

	err := handler.Billing(c)
	assert.Equal(t, http.StatusBadRequest, httpStatus(t, err))
}

func TestBillingRequiresWebhookToken(t *testing.T) {
	db := openHandlerDB(t)
	workspace := createHandlerWorkspace(t, db)
	handler := NewWebhookHandler(db, "s3cret-token")

	body := fmt.Sprintf(`{"event":"dev.grant","workspaceId":%q,"moduleKey":%q}`, workspace.ID, modules.KeyTextViral)

	c, _ := newHandlerContext(t, http.MethodPost, "/webhooks/billing", body)
	err := handler.Billing(c)
	assert.Equal(t, http.StatusUnauthorized, httpStatus(t, err))

	c, _ = newHandlerContext(t, http.MethodPost, "/webhooks/billing", body)
	c.Request().Header.Set("X-Webhook-Token", "wrong")
	err = handler.Billing(c)
	assert.Equal(t, http.StatusUnauthorized, httpStatus(t, err))

	c, rec := newHandlerContext(t, http.MethodPost, "/webhooks/billing", body)
	c.Request().Header.Set("X-Webhook-Token", "s3cret-token")
	require.NoError(t, handler.Billing(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}
