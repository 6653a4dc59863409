package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base contains common columns for all tables
type Base struct {
	ID        string    `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	DeletedAt time.Time `gorm:"index;default:NULL" json:"-" validate:"omitempty"`
	IsDeleted bool      `json:"isDeleted" default:"false"`
}

// BeforeCreate will set a UUID rather than numeric ID
func (base *Base) BeforeCreate(tx *gorm.DB) error {
	if base.ID == "" {
		base.ID = uuid.New().String()
	}
	return nil
}

type PostStatus string

const (
	PostStatusDraft     PostStatus = "DRAFT"
	PostStatusScheduled PostStatus = "SCHEDULED"
	PostStatusPublished PostStatus = "PUBLISHED"
	PostStatusFailed    PostStatus = "FAILED"
)

type AssetType string

const (
	AssetTypeImage AssetType = "IMAGE"
	AssetTypeVideo AssetType = "VIDEO"
)

type WorkspaceRole string

const (
	WorkspaceRoleOwner  WorkspaceRole = "OWNER"
	WorkspaceRoleAdmin  WorkspaceRole = "ADMIN"
	WorkspaceRoleMember WorkspaceRole = "MEMBER"
)

type IntegrationStatus string

const (
	IntegrationStatusActive   IntegrationStatus = "ACTIVE"
	IntegrationStatusExpired  IntegrationStatus = "EXPIRED"
	IntegrationStatusRevoked  IntegrationStatus = "REVOKED"
	IntegrationStatusDisabled IntegrationStatus = "DISABLED"
)

// IsValidWorkspaceRole checks if a given role is valid
func IsValidWorkspaceRole(role WorkspaceRole) bool {
	switch role {
	case WorkspaceRoleOwner, WorkspaceRoleAdmin, WorkspaceRoleMember:
		return true
	default:
		return false
	}
}
