package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"contentos/internal/models"
	"contentos/internal/modules"
	"contentos/internal/utils/logger"
)

var log = logger.New("auth_middleware")

type AuthMiddleware struct {
	jwtSecret string
	db        *gorm.DB
}

type Claims struct {
	UserID      string `json:"user_id"`
	WorkspaceID string `json:"workspace_id"`
	Email       string `json:"email"`
	jwt.RegisteredClaims
}

func NewAuthMiddleware(db *gorm.DB, jwtSecret string) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSecret: jwtSecret,
		db:        db,
	}
}

func (m *AuthMiddleware) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing authorization header")
			}

			tokenParts := strings.Split(authHeader, " ")
			if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid authorization header format")
			}

			return m.validateJWT(c, tokenParts[1], next)
		}
	}
}

func (m *AuthMiddleware) validateJWT(c echo.Context, tokenString string, next echo.HandlerFunc) error {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}

	if claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now()) {
		return echo.NewHTTPError(http.StatusUnauthorized, "Token has expired")
	}

	user := &models.User{}
	if err := m.db.Where("id = ?", claims.UserID).First(user).Error; err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
	}

	workspaceID, err := m.resolveWorkspace(c, user, claims.WorkspaceID)
	if err != nil {
		return err
	}

	c.Set("userID", claims.UserID)
	c.Set("workspaceID", workspaceID)
	c.Set("email", user.Email)

	return next(c)
}

// resolveWorkspace verifies membership in the claimed workspace, or lazily
// creates the user's default workspace on first use when the token carries
// no workspace.
func (m *AuthMiddleware) resolveWorkspace(c echo.Context, user *models.User, claimedID string) (string, error) {
	if claimedID != "" {
		var membership models.WorkspaceUser
		err := m.db.
			Where("workspace_id = ? AND user_id = ?", claimedID, user.ID).
			First(&membership).Error
		if err != nil {
			return "", echo.NewHTTPError(http.StatusForbidden, "Not a member of this workspace")
		}
		c.Set("workspaceRole", string(membership.Role))
		return claimedID, nil
	}

	var membership models.WorkspaceUser
	err := m.db.Where("user_id = ?", user.ID).Order("created_at asc").First(&membership).Error
	if err == nil {
		c.Set("workspaceRole", string(membership.Role))
		return membership.WorkspaceID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", echo.NewHTTPError(http.StatusInternalServerError, "Failed to resolve workspace")
	}

	workspace := models.Workspace{
		Name: fmt.Sprintf("%s's Workspace", user.Email),
		Slug: fmt.Sprintf("ws-%s", uuid.New().String()[:8]),
	}
	err = m.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&workspace).Error; err != nil {
			return err
		}
		return tx.Create(&models.WorkspaceUser{
			WorkspaceID: workspace.ID,
			UserID:      user.ID,
			Role:        models.WorkspaceRoleOwner,
		}).Error
	})
	if err != nil {
		return "", echo.NewHTTPError(http.StatusInternalServerError, "Failed to create default workspace")
	}

	// The planner module is free; new workspaces start with it enabled.
	if _, err := modules.GrantEntitlement(c.Request().Context(), m.db, workspace.ID, modules.KeyPlan); err != nil {
		log.Warn("failed to grant planner module to workspace %s: %v", workspace.ID, err)
	}

	log.Info("created default workspace %s for user %s", workspace.ID, user.ID)
	c.Set("workspaceRole", string(models.WorkspaceRoleOwner))
	return workspace.ID, nil
}

// GetUserID Helper functions to get values from context
func GetUserID(c echo.Context) string {
	if id, ok := c.Get("userID").(string); ok {
		return id
	}
	return ""
}

func GetWorkspaceID(c echo.Context) string {
	if id, ok := c.Get("workspaceID").(string); ok {
		return id
	}
	return ""
}

func GetEmail(c echo.Context) string {
	if email, ok := c.Get("email").(string); ok {
		return email
	}
	return ""
}

func GetWorkspaceRole(c echo.Context) string {
	if role, ok := c.Get("workspaceRole").(string); ok {
		return role
	}
	return ""
}

// GenerateToken signs an HMAC token for a user. Used by the dev token
// helper and by tests.
func GenerateToken(secret, userID, email, workspaceID string, ttl time.Duration) (string, error) {
	claims := &Claims{
		UserID:      userID,
		WorkspaceID: workspaceID,
		Email:       email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
