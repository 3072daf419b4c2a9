package googleid

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"safedose-api/internal/ports/auth"
)

var ErrTokenEmpty = errors.New("token is empty")

// Verifier implementa auth.AuthVerifier con ID tokens de Google Sign-In.
type Verifier struct {
	client *Client
}

var _ auth.AuthVerifier = (*Verifier)(nil)

func NewVerifier(client *Client) *Verifier {
	return &Verifier{client: client}
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	if v == nil || v.client == nil {
		return auth.Claims{}, ErrNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrTokenEmpty
	}

	claims, err := v.client.TokenInfo(ctx, token)
	if err != nil {
		return auth.Claims{}, fmt.Errorf("google id verify failed: %w", err)
	}
	return claims, nil
}
