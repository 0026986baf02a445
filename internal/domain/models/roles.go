// internal/domain/models/roles.go
package models

// User roles.
const (
	RoleLearner    = "learner"
	RoleInstructor = "instructor"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super-admin"
)

// User statuses.
const (
	UserActive   = "active"
	UserDisabled = "disabled"
)

// ValidRole reports whether role is one of the known user roles.
func ValidRole(role string) bool {
	switch role {
	case RoleLearner, RoleInstructor, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// IsAdminRole reports whether role carries admin privileges.
// Super-admins are admins for every permission check.
func IsAdminRole(role string) bool {
	return role == RoleAdmin || role == RoleSuperAdmin
}
