package modules

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"contentos/internal/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Workspace{},
		&models.WorkspaceUser{},
		&models.Module{},
		&models.WorkspaceModule{},
		&models.UserApiKey{},
		&models.UserModuleSettings{},
	))
	return db
}

func createWorkspace(t *testing.T, db *gorm.DB) models.Workspace {
	t.Helper()
	workspace := models.Workspace{Name: "Acme", Slug: "acme-" + t.Name()}
	require.NoError(t, db.Create(&workspace).Error)
	return workspace
}

func TestCheckEntitlementFailsClosed(t *testing.T) {
	db := openTestDB(t)
	workspace := createWorkspace(t, db)

	enabled, err := CheckEntitlement(context.Background(), db, workspace.ID, KeyTextViral)

	require.NoError(t, err)
	assert.False(t, enabled)

	err = RequireEntitlement(context.Background(), db, workspace.ID, KeyTextViral)
	assert.ErrorIs(t, err, ErrModuleNotEnabled)
}

func TestGrantEnablesEntitlement(t *testing.T) {
	db := openTestDB(t)
	workspace := createWorkspace(t, db)

	entitlement, err := GrantEntitlement(context.Background(), db, workspace.ID, KeyURLScanner)
	require.NoError(t, err)
	assert.True(t, entitlement.Enabled)
	assert.NotNil(t, entitlement.PurchasedAt)

	enabled, err := CheckEntitlement(context.Background(), db, workspace.ID, KeyURLScanner)
	require.NoError(t, err)
	assert.True(t, enabled)

	// The catalog module row was upserted alongside.
	var module models.Module
	require.NoError(t, db.Where("key = ?", KeyURLScanner).First(&module).Error)
	assert.Equal(t, 3900, module.Price)
}

func TestGrantIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	workspace := createWorkspace(t, db)

	_, err := GrantEntitlement(context.Background(), db, workspace.ID, KeyPlan)
	require.NoError(t, err)
	_, err = GrantEntitlement(context.Background(), db, workspace.ID, KeyPlan)
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.WorkspaceModule{}).
		Where("workspace_id = ?", workspace.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestGrantUnknownModule(t *testing.T) {
	db := openTestDB(t)
	workspace := createWorkspace(t, db)

	_, err := GrantEntitlement(context.Background(), db, workspace.ID, "module.does_not_exist")
	assert.ErrorIs(t, err, ErrInvalidModuleKey)
}

func TestRevokeDisablesButKeepsRow(t *testing.T) {
	db := openTestDB(t)
	workspace := createWorkspace(t, db)

	_, err := GrantEntitlement(context.Background(), db, workspace.ID, KeyShortsGenerator)
	require.NoError(t, err)
	require.NoError(t, RevokeEntitlement(context.Background(), db, workspace.ID, KeyShortsGenerator))

	enabled, err := CheckEntitlement(context.Background(), db, workspace.ID, KeyShortsGenerator)
	require.NoError(t, err)
	assert.False(t, enabled)

	var count int64
	require.NoError(t, db.Model(&models.WorkspaceModule{}).
		Where("workspace_id = ?", workspace.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// Re-grant flips the same row back on.
	_, err = GrantEntitlement(context.Background(), db, workspace.ID, KeyShortsGenerator)
	require.NoError(t, err)
	enabled, err = CheckEntitlement(context.Background(), db, workspace.ID, KeyShortsGenerator)
	require.NoError(t, err)
	assert.True(t, enabled)
}

func TestSeedCatalog(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, SeedCatalog(db))
	require.NoError(t, SeedCatalog(db)) // idempotent

	var count int64
	require.NoError(t, db.Model(&models.Module{}).Count(&count).Error)
	assert.Equal(t, int64(len(Catalog())), count)
}
