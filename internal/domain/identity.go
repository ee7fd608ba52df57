package domain

import "fmt"

// Role is the closed set of roles a credential can carry.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleCustomer Role = "CUSTOMER"
)

// ParseRole maps a raw claim value onto the closed role set. The backend
// labels non-admin accounts USER in token claims; those are customers.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleCustomer, "USER":
		return RoleCustomer, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Identity is the user derived from the bearer credential's claims. It
// exists only while a decodable credential is stored.
type Identity struct {
	Username string
	Role     Role
}

// Action names a role-gated capability.
type Action string

const (
	// ActionManageProducts covers product create, update and delete.
	ActionManageProducts Action = "manage-products"
)

// Can reports whether the identity may perform the given action. All
// role checks in the application go through here.
func (id Identity) Can(action Action) bool {
	switch action {
	case ActionManageProducts:
		return id.Role == RoleAdmin
	default:
		return false
	}
}
