package domain

import "fmt"

// Role enumerates dashboard operator roles.
type Role string

const (
	RoleAdmin    Role = "admin"
	RolePharmacy Role = "pharmacy"
	RoleCashier  Role = "cashier"
	RoleDoctor   Role = "doctor"
)

// AllRoles lists every valid role in display order.
var AllRoles = []Role{RoleAdmin, RolePharmacy, RoleCashier, RoleDoctor}

// Valid reports whether r is one of the enumerated roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RolePharmacy, RoleCashier, RoleDoctor:
		return true
	}
	return false
}

// ParseRole converts a raw string into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}
