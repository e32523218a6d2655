package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/sucursales-api/internal/domain"
	"github.com/jhoicas/sucursales-api/internal/domain/auth"
	"github.com/jhoicas/sucursales-api/internal/domain/entity"
)

type stubVerifier struct {
	claims auth.Claims
	err    error
}

func (s stubVerifier) Verify(context.Context, string) (auth.Claims, error) {
	return s.claims, s.err
}

func TestResolve_TokenVerificado(t *testing.T) {
	v := stubVerifier{claims: auth.Claims{UserID: "u1", Role: entity.RoleSeller, BranchIDs: []string{"b1"}}}
	p, err := auth.Resolve(context.Background(), v, auth.Credentials{Token: "abc", Username: "ignorado", BranchID: "b9"})
	require.NoError(t, err)

	tp, ok := p.(auth.TokenPrincipal)
	require.True(t, ok)
	assert.Equal(t, "u1", tp.UserID)
	assert.Equal(t, auth.KindToken, p.Kind())
	assert.True(t, auth.CanOperateBranch(p, "b1"))
	assert.False(t, auth.CanAccessBranch(p, "b9"))
}

func TestResolve_TokenInvalidoRechazado(t *testing.T) {
	v := stubVerifier{err: errors.New("firma inválida")}
	_, err := auth.Resolve(context.Background(), v, auth.Credentials{Token: "abc", Username: "ana", BranchID: "b1"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestResolve_Cabeceras(t *testing.T) {
	p, err := auth.Resolve(context.Background(), nil, auth.Credentials{Username: "  Ana ", BranchID: "b2"})
	require.NoError(t, err)

	hp, ok := p.(auth.HeaderPrincipal)
	require.True(t, ok)
	assert.Equal(t, "ana", hp.Username, "el usuario declarado se normaliza")
	assert.True(t, auth.CanAccessBranch(p, "b2"))
	assert.False(t, auth.CanWrite(p), "la identidad por cabeceras es de solo lectura")
}

func TestResolve_AnonimoSinCabecerasCompletas(t *testing.T) {
	p, err := auth.Resolve(context.Background(), nil, auth.Credentials{Username: "ana"})
	require.NoError(t, err)
	assert.Equal(t, auth.KindAnonymous, p.Kind())
	assert.Empty(t, auth.Branches(p))
	assert.False(t, auth.CanAccessBranch(p, "b1"))
}

func TestMasterAdminVeTodo(t *testing.T) {
	p := auth.TokenPrincipal{UserID: "root", Role: entity.RoleMasterAdmin}
	assert.True(t, auth.IsGlobalAdmin(p))
	assert.True(t, auth.CanOperateBranch(p, "cualquiera"))
	_, ok := auth.PrimaryBranch(p)
	assert.False(t, ok)
}
