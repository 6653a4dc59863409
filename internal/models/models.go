package models

import (
	"time"

	"contentos/internal/events"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type User struct {
	Base
	Email          string              `gorm:"uniqueIndex;not null" json:"email" validate:"required,email"`
	Name           string              `json:"name"`
	Workspaces     []WorkspaceUser     `gorm:"foreignKey:UserID" json:"workspaces,omitempty"`
	APIKeys        []UserApiKey        `gorm:"foreignKey:UserID" json:"apiKeys,omitempty"`
	ModuleSettings []UserModuleSettings `gorm:"foreignKey:UserID" json:"moduleSettings,omitempty"`
}

// Workspace is the tenant boundary. Every content entity hangs off one.
type Workspace struct {
	Base
	Name          string            `gorm:"not null" json:"name" validate:"required,min=2"`
	Slug          string            `gorm:"uniqueIndex;not null" json:"slug" validate:"required"`
	Users         []WorkspaceUser   `gorm:"foreignKey:WorkspaceID;constraint:OnDelete:CASCADE" json:"users,omitempty"`
	Modules       []WorkspaceModule `gorm:"foreignKey:WorkspaceID;constraint:OnDelete:CASCADE" json:"modules,omitempty"`
	Integrations  []Integration     `gorm:"foreignKey:WorkspaceID;constraint:OnDelete:CASCADE" json:"integrations,omitempty"`
	Posts         []Post            `gorm:"foreignKey:WorkspaceID" json:"posts,omitempty"`
	Assets        []Asset           `gorm:"foreignKey:WorkspaceID" json:"assets,omitempty"`
	ScheduleSlots []ScheduleSlot    `gorm:"foreignKey:WorkspaceID" json:"scheduleSlots,omitempty"`
}

func (w *Workspace) BeforeCreate(tx *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.New().String()
	}
	return nil
}

func (w *Workspace) AfterCreate(tx *gorm.DB) error {
	events.Emit("workspace.created", w)
	return nil
}

// WorkspaceUser is the role-carrying membership join.
type WorkspaceUser struct {
	Base
	WorkspaceID string        `gorm:"type:uuid;not null;uniqueIndex:idx_workspace_user" json:"workspaceId" validate:"required,uuid"`
	Workspace   *Workspace    `json:"workspace,omitempty"`
	UserID      string        `gorm:"type:uuid;not null;uniqueIndex:idx_workspace_user" json:"userId" validate:"required,uuid"`
	User        *User         `json:"user,omitempty"`
	Role        WorkspaceRole `gorm:"not null;default:'MEMBER'" json:"role" validate:"required,oneof=OWNER ADMIN MEMBER"`
}

// Module is a global catalog entry, not tenant-scoped.
type Module struct {
	Base
	Key         string `gorm:"uniqueIndex;not null" json:"key" validate:"required"`
	Name        string `gorm:"not null" json:"name" validate:"required"`
	Description string `json:"description"`
	// Price in cents, one-time purchase.
	Price    int    `gorm:"not null" json:"price"`
	Category string `json:"category"`
	Icon     string `json:"icon"`
	Active   bool   `gorm:"default:true" json:"active"`
}

// WorkspaceModule is the entitlement row. A disabled or absent row means every
// dependent job processor must refuse to run.
type WorkspaceModule struct {
	Base
	WorkspaceID string     `gorm:"type:uuid;not null;uniqueIndex:idx_workspace_module" json:"workspaceId" validate:"required,uuid"`
	Workspace   *Workspace `json:"workspace,omitempty"`
	ModuleKey   string     `gorm:"not null;uniqueIndex:idx_workspace_module" json:"moduleKey" validate:"required"`
	Module      *Module    `gorm:"foreignKey:ModuleKey;references:Key" json:"module,omitempty"`
	Enabled     bool       `gorm:"default:false" json:"enabled"`
	PurchasedAt *time.Time `json:"purchasedAt,omitempty"`
}

// Integration holds a workspace's stored third-party connector credentials.
// Credentials are secretbox-encrypted JSON, never returned in cleartext.
type Integration struct {
	Base
	WorkspaceID string            `gorm:"type:uuid;not null;index" json:"workspaceId" validate:"required,uuid"`
	Workspace   *Workspace        `json:"workspace,omitempty"`
	Platform    string            `gorm:"not null" json:"platform" validate:"required"`
	Credentials string            `gorm:"not null" json:"-"`
	Status      IntegrationStatus `gorm:"not null;default:'ACTIVE'" json:"status" validate:"required,oneof=ACTIVE EXPIRED REVOKED DISABLED"`
}

// UserApiKey is a per-user BYOK secret. Provider is either a bare provider
// name ("gemini") or a module-scoped composite ("gemini_module.text_viral")
// that overrides the bare key for that module.
type UserApiKey struct {
	Base
	UserID   string `gorm:"type:uuid;not null;uniqueIndex:idx_user_provider" json:"userId" validate:"required,uuid"`
	User     *User  `json:"user,omitempty"`
	Provider string `gorm:"not null;uniqueIndex:idx_user_provider" json:"provider" validate:"required"`
	// APIKey is stored secretbox-encrypted; the settings API only ever
	// returns a masked form.
	APIKey string `gorm:"not null" json:"-"`
	Label  string `json:"label"`
}

// UserModuleSettings is a per-user, per-module settings blob; the credential
// resolver reads aiProvider/aiModel out of it.
type UserModuleSettings struct {
	Base
	UserID    string         `gorm:"type:uuid;not null;uniqueIndex:idx_user_module" json:"userId" validate:"required,uuid"`
	User      *User          `json:"user,omitempty"`
	ModuleKey string         `gorm:"not null;uniqueIndex:idx_user_module" json:"moduleKey" validate:"required"`
	Settings  datatypes.JSON `gorm:"type:jsonb" json:"settings"`
}
