package constants

import "fmt"

// Role is the closed set of account roles. Stored as text in users.role.
type Role string

const (
	RoleAdmin     Role = "Admin"
	RoleDonor     Role = "Donor"
	RoleRecipient Role = "Recipient"
)

// Template pesan error role
const (
	ErrOnlyAdminsCanAccess     = "only admins may %s"
	ErrOnlyOwnerOrAdminsAccess = "only the owning %s or an admin may %s"
)

func RoleErrorAdmin(action string) string {
	return fmt.Sprintf(ErrOnlyAdminsCanAccess, action)
}

func RoleErrorOwner(owner Role, action string) string {
	return fmt.Sprintf(ErrOnlyOwnerOrAdminsAccess, owner, action)
}

// ==========================
// ✅ Grouped Role Slices
// ==========================
var (
	AllRoles = []Role{
		RoleAdmin,
		RoleDonor,
		RoleRecipient,
	}

	ProfileRoles = []Role{
		RoleDonor,
		RoleRecipient,
	}
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDonor, RoleRecipient:
		return true
	}
	return false
}

func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}
