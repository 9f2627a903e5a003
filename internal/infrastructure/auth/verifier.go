// Package auth verifies bearer access tokens presented to the API.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/projectmgmt/backend/internal/infrastructure/config"
)

// Token errors
var (
	ErrMissingToken      = errors.New("missing bearer token")
	ErrInvalidToken      = errors.New("invalid token")
	ErrExpiredToken      = errors.New("token has expired")
	ErrTokenNotYetValid  = errors.New("token not yet valid")
	ErrInvalidClaims     = errors.New("invalid token claims")
	ErrInvalidTokenType  = errors.New("invalid token type")
	ErrInvalidIssuer     = errors.New("invalid token issuer")
	ErrInvalidClient     = errors.New("token issued for another client")
	ErrUnknownSigningKey = errors.New("unknown signing key")
	ErrMissingSubject    = errors.New("token has no subject")
	ErrUnsupportedMode   = errors.New("unsupported auth mode")
	ErrJWKSUnavailable   = errors.New("signing keys unavailable")
	errUnexpectedSigning = errors.New("unexpected signing method")
)

// TokenUseAccess is the token_use claim carried by access tokens
const TokenUseAccess = "access"

// Principal is the verified identity behind a request
type Principal struct {
	Subject   string
	Username  string
	ClientID  string
	TokenID   string
	ExpiresAt time.Time
}

// Verifier checks a raw bearer token and returns its principal
type Verifier interface {
	Verify(ctx context.Context, token string) (*Principal, error)
}

// Claims are the access token claims read by both verifiers.
// The field set follows Cognito access tokens.
type Claims struct {
	jwt.RegisteredClaims
	TokenUse string `json:"token_use"`
	ClientID string `json:"client_id,omitempty"`
	Username string `json:"username,omitempty"`
}

func (c *Claims) principal() (*Principal, error) {
	if c.Subject == "" {
		return nil, ErrMissingSubject
	}
	p := &Principal{
		Subject:  c.Subject,
		Username: c.Username,
		ClientID: c.ClientID,
		TokenID:  c.ID,
	}
	if c.ExpiresAt != nil {
		p.ExpiresAt = c.ExpiresAt.Time
	}
	return p, nil
}

// NewVerifier builds the verifier for cfg.Mode. Mode "none" returns a nil
// verifier, which the middleware treats as authentication disabled.
func NewVerifier(cfg config.AuthConfig, client *http.Client) (Verifier, error) {
	switch cfg.Mode {
	case config.AuthModeNone, "":
		return nil, nil
	case config.AuthModeHMAC:
		return NewHMACVerifier(cfg.HMACSecret, cfg.Issuer), nil
	case config.AuthModeCognito:
		keys := NewJWKSCache(cognitoJWKSURL(cfg), cfg.JWKSRefresh, client)
		return NewCognitoVerifier(cfg.CognitoIssuer(), cfg.CognitoClientID, keys), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMode, cfg.Mode)
	}
}

func cognitoJWKSURL(cfg config.AuthConfig) string {
	return cfg.CognitoIssuer() + "/.well-known/jwks.json"
}

// mapParseError folds jwt library errors into the package errors
func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpiredToken
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return ErrTokenNotYetValid
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return ErrInvalidIssuer
	case errors.Is(err, ErrUnknownSigningKey):
		return ErrUnknownSigningKey
	case errors.Is(err, ErrJWKSUnavailable):
		return ErrJWKSUnavailable
	case errors.Is(err, jwt.ErrTokenInvalidClaims):
		return ErrInvalidClaims
	default:
		return ErrInvalidToken
	}
}
