package domain

import "fmt"

// Role is the role id carried in the login token.
type Role int

const (
	RoleAdmin    Role = 1
	RoleCustomer Role = 2
	RoleDelivery Role = 3
)

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleCustomer:
		return "customer"
	case RoleDelivery:
		return "delivery"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleCustomer || r == RoleDelivery
}

// LandingPath is the screen a role is sent to after login.
func (r Role) LandingPath() string {
	switch r {
	case RoleAdmin:
		return "/admin-inventory"
	case RoleDelivery:
		return "/delivery-backorders"
	default:
		return "/"
	}
}
