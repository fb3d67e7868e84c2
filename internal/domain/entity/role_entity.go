package entity

import "fmt"

// Role is the closed set of account roles. The variants are mutually
// exclusive; authorization boundaries switch on the type rather than
// comparing raw strings.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleClient Role = "client"
	RoleOwner  Role = "owner"
)

// ParseRole validates a stored or submitted role string.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleClient, RoleOwner:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

func (r Role) String() string { return string(r) }

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleClient, RoleOwner:
		return true
	}
	return false
}
