package constants

import "fmt"

const (
	RoleUser  = "user"
	RoleStaff = "staff"
	RoleAdmin = "admin"
	RoleOwner = "owner"
)

// Template pesan error role
const (
	ErrOnlyAdminsCanAccess = "❌ Hanya admin yang boleh mengakses fitur %s."
	ErrOnlyOwnersCanAccess = "❌ Hanya owner yang boleh mengakses fitur %s."
)

func RoleErrorAdmin(feature string) string {
	return fmt.Sprintf(ErrOnlyAdminsCanAccess, feature)
}

func RoleErrorOwner(feature string) string {
	return fmt.Sprintf(ErrOnlyOwnersCanAccess, feature)
}

// ==========================
// ✅ Grouped Role Slices
// ==========================
var (
	AllRoles = []string{
		RoleUser,
		RoleStaff,
		RoleAdmin,
		RoleOwner,
	}

	// Role yang boleh memproses refund / lihat semua payment
	AdminAndAbove = []string{
		RoleAdmin,
		RoleOwner,
	}

	OwnerOnly = []string{
		RoleOwner,
	}
)
