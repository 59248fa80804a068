package models

import (
	"fmt"
	"strings"
)

// Role is the kind of actor using the client. The empty Role means "not
// chosen yet".
type Role string

const (
	RoleNone        Role = ""
	RoleRestaurant  Role = "restaurant"
	RoleAssociation Role = "association"
)

func (r Role) Valid() bool {
	return r == RoleRestaurant || r == RoleAssociation
}

// Counterpart is the directory a role browses: restaurants for associations
// and associations for restaurants.
func (r Role) Counterpart() Role {
	switch r {
	case RoleRestaurant:
		return RoleAssociation
	case RoleAssociation:
		return RoleRestaurant
	default:
		return RoleNone
	}
}

func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return RoleNone, fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}
