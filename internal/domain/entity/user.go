package entity

// Roles válidos para los usuarios del sistema.
const (
	RoleMasterAdmin = "master_admin" // visibilidad y escritura sobre todas las sucursales
	RoleBranchAdmin = "branch_admin"
	RoleSeller      = "seller"
)

// ValidRole indica si el rol es conocido.
func ValidRole(role string) bool {
	switch role {
	case RoleMasterAdmin, RoleBranchAdmin, RoleSeller:
		return true
	}
	return false
}
