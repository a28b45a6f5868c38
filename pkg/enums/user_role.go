package enums

import "fmt"

// UserRole is the account-level role stored on users.
type UserRole string

const (
	UserRoleCustomer UserRole = "customer"
	UserRoleAdmin    UserRole = "admin"
	// UserRolePetugas is store staff with admin dashboard access.
	UserRolePetugas UserRole = "petugas"
)

var validUserRoles = []UserRole{
	UserRoleCustomer,
	UserRoleAdmin,
	UserRolePetugas,
}

// StaffRoles may sign in to the admin dashboard.
var StaffRoles = []UserRole{UserRoleAdmin, UserRolePetugas}

// String implements fmt.Stringer.
func (r UserRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known UserRole.
func (r UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// IsStaff reports whether the role can use admin endpoints.
func (r UserRole) IsStaff() bool {
	for _, candidate := range StaffRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseUserRole converts raw input into a UserRole.
func ParseUserRole(value string) (UserRole, error) {
	for _, candidate := range validUserRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user role %q", value)
}
