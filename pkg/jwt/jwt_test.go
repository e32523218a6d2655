package jwt

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "secreto-de-pruebas"

func TestGenerateParse_IdaYVuelta(t *testing.T) {
	tok, err := Generate(testSecret, Identity{UserID: "u1", Username: "ana", Role: "seller", BranchIDs: []string{"b1", "b2"}}, "sucursales-api", 5)
	require.NoError(t, err)

	c, err := Parse(testSecret, "sucursales-api", tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", c.UserID)
	assert.Equal(t, "u1", c.Subject)
	assert.Equal(t, []string{"b1", "b2"}, c.BranchIDs)
}

func TestParse_Rechazos(t *testing.T) {
	tok, err := Generate(testSecret, Identity{UserID: "u1", Role: "seller"}, "sucursales-api", 5)
	require.NoError(t, err)
	expired, err := Generate(testSecret, Identity{UserID: "u1", Role: "seller"}, "sucursales-api", -1)
	require.NoError(t, err)

	_, err = Parse("otro-secreto", "sucursales-api", tok)
	assert.Error(t, err, "firma incorrecta")

	_, err = Parse(testSecret, "otro-emisor", tok)
	assert.Error(t, err, "emisor distinto")

	_, err = Parse(testSecret, "sucursales-api", expired)
	assert.Error(t, err, "expirado")

	_, err = Parse("", "", tok)
	assert.Error(t, err)

	_, err = Generate("", Identity{UserID: "u1"}, "", 5)
	assert.Error(t, err)
}

func TestVerifier(t *testing.T) {
	tok, err := Generate(testSecret, Identity{UserID: "root", Username: "admin", Role: "master_admin"}, "", 5)
	require.NoError(t, err)

	c, err := NewVerifier(testSecret, "").Verify(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, "root", c.UserID)
	assert.Equal(t, "master_admin", c.Role)
	assert.Empty(t, c.BranchIDs)

	_, err = NewVerifier(testSecret, "").Verify(context.Background(), "no-es-un-token")
	assert.Error(t, err)
}
