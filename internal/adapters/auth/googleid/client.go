package googleid

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"safedose-api/internal/platform/httpclient"
	"safedose-api/internal/ports/auth"
)

const DefaultTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

var (
	ErrNotConfigured = errors.New("google id client not configured")
	ErrUnauthorized  = errors.New("google id token rejected")
	ErrUpstream      = errors.New("google tokeninfo upstream error")
)

type Config struct {
	// ClientID es el aud esperado en el ID token.
	ClientID     string
	TokenInfoURL string
	Timeout      time.Duration
}

// Client valida ID tokens contra el endpoint tokeninfo de Google.
type Client struct {
	clientID     string
	tokenInfoURL string
	http         *httpclient.Client
}

func NewClient(cfg Config) *Client {
	u := strings.TrimSpace(cfg.TokenInfoURL)
	if u == "" {
		u = DefaultTokenInfoURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		clientID:     strings.TrimSpace(cfg.ClientID),
		tokenInfoURL: u,
		http:         httpclient.New(timeout),
	}
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.clientID != ""
}

type tokenInfo struct {
	Aud           string `json:"aud"`
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified string `json:"email_verified"`
	Name          string `json:"name"`
	Exp           string `json:"exp"`
}

// TokenInfo consulta tokeninfo y verifica aud. No cachea.
func (c *Client) TokenInfo(ctx context.Context, idToken string) (auth.Claims, error) {
	if !c.IsConfigured() {
		return auth.Claims{}, ErrNotConfigured
	}
	idToken = strings.TrimSpace(idToken)
	if idToken == "" {
		return auth.Claims{}, ErrUnauthorized
	}

	endpoint := c.tokenInfoURL + "?id_token=" + url.QueryEscape(idToken)

	var out tokenInfo
	if err := c.http.DoJSON(ctx, http.MethodGet, endpoint, nil, nil, &out); err != nil {
		var he *httpclient.HTTPError
		if errors.As(err, &he) && he.StatusCode >= 400 && he.StatusCode < 500 {
			return auth.Claims{}, ErrUnauthorized
		}
		return auth.Claims{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	if out.Aud != c.clientID {
		return auth.Claims{}, fmt.Errorf("%w: audience mismatch", ErrUnauthorized)
	}
	sub := strings.TrimSpace(out.Sub)
	if sub == "" {
		return auth.Claims{}, fmt.Errorf("%w: missing sub", ErrUnauthorized)
	}

	return auth.Claims{
		UserID: sub,
		Email:  strings.TrimSpace(out.Email),
		Name:   strings.TrimSpace(out.Name),
	}, nil
}
