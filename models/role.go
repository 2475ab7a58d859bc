package models

import "strings"

// Role is the caller's role as asserted by the identity provider
type Role string

const (
	RoleStudent    Role = "STUDENT"
	RoleInstructor Role = "INSTRUCTOR"
	RoleAdmin      Role = "ADMIN"
)

// Capability is a single permission a role may hold
type Capability string

const (
	CapGradeEssays        Capability = "grade_essays"
	CapRevokeCertificates Capability = "revoke_certificates"
	CapReconcilePaths     Capability = "reconcile_paths"
)

var roleCapabilities = map[Role][]Capability{
	RoleInstructor: {CapGradeEssays},
	RoleAdmin:      {CapGradeEssays, CapRevokeCertificates, CapReconcilePaths},
}

// ParseRole normalises a role claim. Unknown values are rejected.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	switch r {
	case RoleStudent, RoleInstructor, RoleAdmin:
		return r, true
	}
	return "", false
}

// Can reports whether the role holds the capability
func (r Role) Can(c Capability) bool {
	for _, held := range roleCapabilities[r] {
		if held == c {
			return true
		}
	}
	return false
}
