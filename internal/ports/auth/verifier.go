package auth

import "context"

// AuthVerifier valida un bearer token (ID token de Google en prod) y devuelve sus claims.
type AuthVerifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}
