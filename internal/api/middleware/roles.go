package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"contentos/internal/models"
)

// roleRank orders workspace roles so a requirement of MEMBER is satisfied
// by ADMIN and OWNER.
var roleRank = map[models.WorkspaceRole]int{
	models.WorkspaceRoleMember: 1,
	models.WorkspaceRoleAdmin:  2,
	models.WorkspaceRoleOwner:  3,
}

// RequireWorkspaceRole gates a route on the caller's role in the current
// workspace, as resolved by the auth middleware.
func RequireWorkspaceRole(required models.WorkspaceRole) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role := models.WorkspaceRole(GetWorkspaceRole(c))
			if roleRank[role] == 0 {
				return echo.NewHTTPError(http.StatusForbidden, "no workspace role")
			}
			if roleRank[role] < roleRank[required] {
				return echo.NewHTTPError(http.StatusForbidden, "insufficient workspace role")
			}
			return next(c)
		}
	}
}
