package models

import "strings"

type Role string

const (
	RoleInputter   Role = "Inputter"
	RoleAuthorizer Role = "Authorizer"
	RoleAdmin      Role = "Admin"
)

// Roles lists every known role.
var Roles = []Role{RoleInputter, RoleAuthorizer, RoleAdmin}

// ParseRole matches s against the known roles, ignoring case and
// surrounding whitespace.
func ParseRole(s string) (Role, bool) {
	for _, r := range Roles {
		if strings.EqualFold(strings.TrimSpace(s), string(r)) {
			return r, true
		}
	}
	return Role(s), false
}
