package auth

import "strings"

// Role values carried in tokens.
const (
	RoleHR       = "HR"
	RoleEmployee = "EMPLOYEE"
	RoleAdmin    = "ADMIN"
)

// DefaultRole is assigned when registration supplies an unknown role.
const DefaultRole = RoleEmployee

// ParseRole returns role when it belongs to the closed set, DefaultRole otherwise.
// Matching is exact after trimming whitespace.
func ParseRole(role string) string {
	switch role = strings.TrimSpace(role); role {
	case RoleHR, RoleEmployee, RoleAdmin:
		return role
	default:
		return DefaultRole
	}
}
