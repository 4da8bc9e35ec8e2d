package identity

import (
	"strings"
)

// Role is the permission level of a club member
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleDiretor Role = "diretor"
	RoleJogador Role = "jogador" // least privilege, read only
)

// ValidRoles lists every role a member can hold
var ValidRoles = []Role{RoleAdmin, RoleDiretor, RoleJogador}

// Role sets used by the finance operations
var (
	FinanceReaders = ValidRoles
	FinanceWriters = []Role{RoleAdmin, RoleDiretor}
	AdminOnly      = []Role{RoleAdmin}
)

// IsValid checks if the role is one of ValidRoles
func (r Role) IsValid() bool {
	for _, v := range ValidRoles {
		if r == v {
			return true
		}
	}
	return false
}

// String returns the string representation of Role
func (r Role) String() string {
	return string(r)
}

// In reports whether r is one of allowed
func (r Role) In(allowed []Role) bool {
	for _, a := range allowed {
		if r == a {
			return true
		}
	}
	return false
}

// JoinRoles renders roles as a comma separated list
func JoinRoles(roles []Role) string {
	parts := make([]string, len(roles))
	for i, r := range roles {
		parts[i] = string(r)
	}
	return strings.Join(parts, ", ")
}
