package enums

import "fmt"

// Role maps to the role column on profiles.
type Role string

const (
	RoleManager   Role = "manager"
	RoleScheduler Role = "scheduler"
)

var validRoles = []Role{
	RoleManager,
	RoleScheduler,
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether the value matches a known role.
func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRole converts raw input into Role.
func ParseRole(value string) (Role, error) {
	for _, candidate := range validRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}
