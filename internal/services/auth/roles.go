// internal/services/auth/roles.go
package auth

import "scmdash/internal/models"

// Role names checked by RoleMiddleware.
const (
	RoleCanView = "CanView"
	RoleCanEdit = "CanEdit"
	RoleIsAdmin = "IsAdmin"
)

// getAccountRoles retrieves the roles for a given account.
func getAccountRoles(account *models.Account) []string {
	var roles []string
	if account.CanView {
		roles = append(roles, RoleCanView)
	}
	if account.CanEdit {
		roles = append(roles, RoleCanEdit)
	}
	if account.IsAdmin {
		roles = append(roles, RoleIsAdmin)
	}
	return roles
}
