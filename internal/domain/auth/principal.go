// Package auth modela la identidad resuelta de quien llama.
//
// Hay exactamente tres variantes: token verificado, identidad por cabeceras y anónimo.
// Las decisiones de autorización se toman con un type switch sobre Principal.
package auth

import (
	"slices"

	"github.com/jhoicas/sucursales-api/internal/domain/entity"
)

// Kind variante del principal.
type Kind string

const (
	KindToken     Kind = "token"
	KindHeader    Kind = "header"
	KindAnonymous Kind = "anonymous"
)

// Capability permiso elemental.
type Capability uint8

const (
	CapReadBranch Capability = 1 << iota // recibir eventos y leer datos de sus sucursales
	CapReadAll                           // recibir eventos y leer datos de todas las sucursales
	CapWrite                             // operaciones que mutan (ventas, traspasos)
	CapAdmin                             // administración global: editar/borrar ventas, aprobar cualquier traspaso
)

// Capabilities conjunto de permisos.
type Capabilities uint8

// Has indica si el conjunto contiene el permiso.
func (c Capabilities) Has(want Capability) bool {
	return c&Capabilities(want) != 0
}

// Principal identidad de quien llama. La interfaz está sellada: solo las tres variantes de este paquete la implementan.
type Principal interface {
	Kind() Kind
	Capabilities() Capabilities
	sealed()
}

// TokenPrincipal identidad verificada por el servicio de tokens.
type TokenPrincipal struct {
	UserID    string
	Username  string
	Role      string
	BranchIDs []string
}

// HeaderPrincipal identidad declarada con x-username / x-branch-id. Solo lectura.
type HeaderPrincipal struct {
	Username string
	BranchID string
}

// AnonymousPrincipal sin identidad. No se une a ninguna sala de sucursal.
type AnonymousPrincipal struct{}

func (TokenPrincipal) Kind() Kind     { return KindToken }
func (HeaderPrincipal) Kind() Kind    { return KindHeader }
func (AnonymousPrincipal) Kind() Kind { return KindAnonymous }

func (p TokenPrincipal) Capabilities() Capabilities {
	if p.Role == entity.RoleMasterAdmin {
		return Capabilities(CapReadAll | CapWrite | CapAdmin)
	}
	return Capabilities(CapReadBranch | CapWrite)
}

func (HeaderPrincipal) Capabilities() Capabilities    { return Capabilities(CapReadBranch) }
func (AnonymousPrincipal) Capabilities() Capabilities { return 0 }

func (TokenPrincipal) sealed()     {}
func (HeaderPrincipal) sealed()    {}
func (AnonymousPrincipal) sealed() {}

// IsGlobalAdmin indica si el principal tiene visibilidad global.
func IsGlobalAdmin(p Principal) bool {
	return p != nil && p.Capabilities().Has(CapAdmin)
}

// CanWrite indica si el principal puede ejecutar operaciones que mutan.
func CanWrite(p Principal) bool {
	return p != nil && p.Capabilities().Has(CapWrite)
}

// Branches sucursales asignadas explícitamente al principal.
func Branches(p Principal) []string {
	switch v := p.(type) {
	case TokenPrincipal:
		return v.BranchIDs
	case HeaderPrincipal:
		if v.BranchID == "" {
			return nil
		}
		return []string{v.BranchID}
	case AnonymousPrincipal:
		return nil
	}
	return nil
}

// CanAccessBranch indica si el principal ve la sucursal (administración global ve todas).
func CanAccessBranch(p Principal, branchID string) bool {
	if p == nil {
		return false
	}
	caps := p.Capabilities()
	if caps.Has(CapReadAll) {
		return true
	}
	if !caps.Has(CapReadBranch) || branchID == "" {
		return false
	}
	return slices.Contains(Branches(p), branchID)
}

// CanOperateBranch indica si el principal puede mutar datos de la sucursal.
func CanOperateBranch(p Principal, branchID string) bool {
	return CanWrite(p) && CanAccessBranch(p, branchID)
}

// PrimaryBranch sucursal por defecto del principal (la primera asignada).
func PrimaryBranch(p Principal) (string, bool) {
	b := Branches(p)
	if len(b) == 0 {
		return "", false
	}
	return b[0], true
}

// ActorID identificador para auditoría (created_by, logs).
func ActorID(p Principal) string {
	switch v := p.(type) {
	case TokenPrincipal:
		return v.UserID
	case HeaderPrincipal:
		return "header:" + v.Username
	case AnonymousPrincipal:
		return "anonymous"
	}
	return ""
}
