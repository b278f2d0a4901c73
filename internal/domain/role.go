package domain

// Role is the actor role carried in the access token
type Role string

const (
	RoleCoordinator       Role = "Event Coordinator"
	RoleHOD               Role = "HOD"
	RoleDean              Role = "Dean"
	RoleInstitutionalHead Role = "Institutional Head"
	RoleAdmin             Role = "Admin/ITC"
)

// IsValid checks if the role is known
func (r Role) IsValid() bool {
	switch r {
	case RoleCoordinator, RoleHOD, RoleDean, RoleInstitutionalHead, RoleAdmin:
		return true
	}
	return false
}

// IsApprover reports whether the role sits in the approval chain
func (r Role) IsApprover() bool {
	return r == RoleHOD || r == RoleDean || r == RoleInstitutionalHead
}

func (r Role) String() string {
	return string(r)
}

// Actor is the authenticated caller as resolved by the role gate
type Actor struct {
	ID   string
	Role Role
}
