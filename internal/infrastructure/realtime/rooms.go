package realtime

import (
	"github.com/jhoicas/sucursales-api/internal/domain/auth"
)

// AdminRoom sala de la administración global: recibe los eventos de todas las sucursales.
const AdminRoom = "admin"

// BranchRoom nombre de la sala de una sucursal.
func BranchRoom(branchID string) string {
	return "branch:" + branchID
}

// RoomsFor salas que corresponden al principal. activeBranches solo se usa para la administración global.
func RoomsFor(p auth.Principal, activeBranches []string) []string {
	if auth.IsGlobalAdmin(p) {
		rooms := make([]string, 0, len(activeBranches)+1)
		for _, id := range activeBranches {
			rooms = append(rooms, BranchRoom(id))
		}
		return append(rooms, AdminRoom)
	}
	switch v := p.(type) {
	case auth.TokenPrincipal, auth.HeaderPrincipal:
		branches := auth.Branches(v)
		rooms := make([]string, 0, len(branches))
		for _, id := range branches {
			if id != "" {
				rooms = append(rooms, BranchRoom(id))
			}
		}
		return rooms
	case auth.AnonymousPrincipal:
		return nil
	}
	return nil
}
