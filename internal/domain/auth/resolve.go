package auth

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/jhoicas/sucursales-api/internal/domain"
)

// Claims resultado del servicio de verificación de tokens.
type Claims struct {
	UserID    string
	Username  string
	Role      string
	BranchIDs []string
}

// TokenVerifier colaborador externo que valida un token de sesión.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}

// Credentials datos de identidad presentados por el cliente.
type Credentials struct {
	Token    string
	Username string // x-username
	BranchID string // x-branch-id
}

var fold = cases.Fold()

// Resolve obtiene el principal: token verificado, si no cabeceras completas, si no anónimo.
// Un token presente pero inválido se rechaza en vez de degradar a otra variante.
func Resolve(ctx context.Context, verifier TokenVerifier, cred Credentials) (Principal, error) {
	if tok := strings.TrimSpace(cred.Token); tok != "" {
		if verifier == nil {
			return nil, fmt.Errorf("%w: verificador de tokens no configurado", domain.ErrUnauthorized)
		}
		claims, err := verifier.Verify(ctx, tok)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
		}
		if claims.UserID == "" || claims.Role == "" {
			return nil, fmt.Errorf("%w: claims incompletos", domain.ErrUnauthorized)
		}
		return TokenPrincipal{
			UserID:    claims.UserID,
			Username:  claims.Username,
			Role:      claims.Role,
			BranchIDs: claims.BranchIDs,
		}, nil
	}

	username := strings.TrimSpace(cred.Username)
	branchID := strings.TrimSpace(cred.BranchID)
	if username != "" && branchID != "" {
		return HeaderPrincipal{Username: fold.String(username), BranchID: branchID}, nil
	}
	return AnonymousPrincipal{}, nil
}
