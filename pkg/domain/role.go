package domain

import dErrors "healthhub/pkg/domain-errors"

// Role is the application role carried in an access token.
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
)

func (r Role) IsValid() bool {
	return r == RolePatient || r == RoleDoctor
}

// ParseRole validates a role claim.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid role")
	}
	return r, nil
}
