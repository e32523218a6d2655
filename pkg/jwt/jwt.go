package jwt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jhoicas/sucursales-api/internal/domain/auth"
)

// Claims claims estándar JWT más la identidad de sucursal que usan el REST y el canal en tiempo real.
type Claims struct {
	jwt.RegisteredClaims
	UserID    string   `json:"user_id"`
	Username  string   `json:"username"`
	Role      string   `json:"role"` // master_admin | branch_admin | seller
	BranchIDs []string `json:"branch_ids"`
}

// Identity datos que se firman en el token.
type Identity struct {
	UserID    string
	Username  string
	Role      string
	BranchIDs []string
}

// Generate genera un token HS256 firmado.
func Generate(secret string, id Identity, issuer string, expMinutes int) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("jwt: secret vacío")
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expMinutes) * time.Minute)),
		},
		UserID:    id.UserID,
		Username:  id.Username,
		Role:      id.Role,
		BranchIDs: id.BranchIDs,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Parse valida firma, expiración y emisor (si issuer no está vacío) y devuelve los claims.
func Parse(secret, issuer, tokenString string) (*Claims, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt: secret vacío")
	}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("claims inválidos")
	}
	return claims, nil
}

var _ auth.TokenVerifier = (*Verifier)(nil)

// Verifier adapta Parse al puerto auth.TokenVerifier.
type Verifier struct {
	secret string
	issuer string
}

// NewVerifier construye el verificador.
func NewVerifier(secret, issuer string) *Verifier {
	return &Verifier{secret: secret, issuer: issuer}
}

// Verify implementa auth.TokenVerifier.
func (v *Verifier) Verify(_ context.Context, token string) (auth.Claims, error) {
	c, err := Parse(v.secret, v.issuer, token)
	if err != nil {
		return auth.Claims{}, err
	}
	return auth.Claims{
		UserID:    c.UserID,
		Username:  c.Username,
		Role:      c.Role,
		BranchIDs: c.BranchIDs,
	}, nil
}
