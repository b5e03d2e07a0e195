package enums

import "fmt"

// UserRole is the role carried in access tokens.
type UserRole string

const (
	UserRoleAdmin         UserRole = "admin"
	UserRolePharmacyStaff UserRole = "pharmacy_staff"
	UserRoleCustomer      UserRole = "customer"
)

var validUserRoles = []UserRole{
	UserRoleAdmin,
	UserRolePharmacyStaff,
	UserRoleCustomer,
}

// String implements fmt.Stringer.
func (v UserRole) String() string {
	return string(v)
}

// IsValid reports whether the value is a known UserRole.
func (v UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == v {
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

// IsStaff reports whether the role may manage inventory and orders.
func (v UserRole) IsStaff() bool {
	return v == UserRoleAdmin || v == UserRolePharmacyStaff
}
