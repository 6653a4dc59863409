package modules

import (
	"context"
	"errors"
	"fmt"
	"time"

	"contentos/internal/models"
	console "contentos/internal/utils/logger"

	"gorm.io/gorm"
)

var log = console.New("MODULES")

var (
	// ErrModuleNotEnabled is returned when a workspace has no enabled
	// entitlement for a module. Absence of a row is treated the same as a
	// disabled one (fail closed).
	ErrModuleNotEnabled = errors.New("module not enabled for this workspace")

	// ErrInvalidModuleKey is returned for keys not present in the catalog.
	ErrInvalidModuleKey = errors.New("invalid module key")
)

// CheckEntitlement reports whether the workspace has an enabled entitlement
// for the module. It has no side effects and fails closed on absence.
func CheckEntitlement(ctx context.Context, db *gorm.DB, workspaceID, moduleKey string) (bool, error) {
	var entitlement models.WorkspaceModule
	err := db.WithContext(ctx).
		Where("workspace_id = ? AND module_key = ?", workspaceID, moduleKey).
		First(&entitlement).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check entitlement: %w", err)
	}
	return entitlement.Enabled, nil
}

// RequireEntitlement is CheckEntitlement with the fail-closed decision folded
// in; processors and producers call this before doing anything else.
func RequireEntitlement(ctx context.Context, db *gorm.DB, workspaceID, moduleKey string) error {
	enabled, err := CheckEntitlement(ctx, db, workspaceID, moduleKey)
	if err != nil {
		return err
	}
	if !enabled {
		return fmt.Errorf("%w: %s", ErrModuleNotEnabled, moduleKey)
	}
	return nil
}

// GrantEntitlement upserts the catalog module row and enables the workspace's
// entitlement. Called by the billing webhook and the dev grant flow only;
// processors never mutate entitlements.
func GrantEntitlement(ctx context.Context, db *gorm.DB, workspaceID, moduleKey string) (*models.WorkspaceModule, error) {
	mod, ok := Lookup(moduleKey)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidModuleKey, moduleKey)
	}

	var entitlement models.WorkspaceModule
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Make sure the catalog row exists before pointing an entitlement at it.
		module := models.Module{
			Key:         mod.Key,
			Name:        mod.Name,
			Description: mod.Description,
			Price:       mod.Price,
			Category:    mod.Category,
			Icon:        mod.Icon,
			Active:      mod.Active,
		}
		if err := tx.Where(models.Module{Key: mod.Key}).FirstOrCreate(&module).Error; err != nil {
			return fmt.Errorf("failed to upsert module %s: %w", mod.Key, err)
		}

		err := tx.Where("workspace_id = ? AND module_key = ?", workspaceID, moduleKey).
			First(&entitlement).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			now := time.Now()
			entitlement = models.WorkspaceModule{
				WorkspaceID: workspaceID,
				ModuleKey:   moduleKey,
				Enabled:     true,
				PurchasedAt: &now,
			}
			return tx.Create(&entitlement).Error
		case err != nil:
			return err
		default:
			entitlement.Enabled = true
			return tx.Model(&entitlement).Update("enabled", true).Error
		}
	})
	if err != nil {
		return nil, err
	}

	log.Success("Granted %s to workspace %s", moduleKey, workspaceID)
	return &entitlement, nil
}

// RevokeEntitlement disables a workspace's entitlement (refund flow). The row
// is kept so purchase history survives.
func RevokeEntitlement(ctx context.Context, db *gorm.DB, workspaceID, moduleKey string) error {
	result := db.WithContext(ctx).Model(&models.WorkspaceModule{}).
		Where("workspace_id = ? AND module_key = ?", workspaceID, moduleKey).
		Update("enabled", false)
	if result.Error != nil {
		return fmt.Errorf("failed to revoke entitlement: %w", result.Error)
	}
	return nil
}

// SeedCatalog creates the catalog's module rows, leaving existing rows alone.
func SeedCatalog(db *gorm.DB) error {
	for _, mod := range catalog {
		module := models.Module{
			Key:         mod.Key,
			Name:        mod.Name,
			Description: mod.Description,
			Price:       mod.Price,
			Category:    mod.Category,
			Icon:        mod.Icon,
			Active:      mod.Active,
		}
		if err := db.Where(models.Module{Key: mod.Key}).FirstOrCreate(&module).Error; err != nil {
			return fmt.Errorf("failed to seed module %s: %w", mod.Key, err)
		}
	}
	log.Info("Seeded %d catalog modules", len(catalog))
	return nil
}
