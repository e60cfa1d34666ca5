// Package entity contains the account, session and token records of the auth core.
package entity

// Role is the authorization tier carried in access tokens.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) String() string {
	return string(r)
}

func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	default:
		return false
	}
}

// ParseRole maps a stored role string to a Role. Unknown values get the least privilege.
func ParseRole(s string) Role {
	if role := Role(s); role.IsValid() {
		return role
	}

	return RoleUser
}
