package auth

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	defaultJWKSRefresh = time.Hour
	// minimum gap between refreshes triggered by an unknown kid
	jwksMissRefreshGap = 30 * time.Second
)

// CognitoVerifier verifies RS256 access tokens issued by a Cognito user pool
type CognitoVerifier struct {
	issuer   string
	clientID string
	keys     KeySource
}

// KeySource looks up RSA verification keys by key id
type KeySource interface {
	Key(ctx context.Context, kid string) (*rsa.PublicKey, error)
}

// NewCognitoVerifier creates a verifier. An empty clientID skips the
// client_id check.
func NewCognitoVerifier(issuer, clientID string, keys KeySource) *CognitoVerifier {
	return &CognitoVerifier{issuer: issuer, clientID: clientID, keys: keys}
}

// Verify implements Verifier
func (v *CognitoVerifier) Verify(ctx context.Context, tokenString string) (*Principal, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, errUnexpectedSigning
		}
		kid, _ := token.Header["kid"].(string)
		if kid == "" {
			return nil, ErrUnknownSigningKey
		}
		return v.keys.Key(ctx, kid)
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(v.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, mapParseError(err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenUse != TokenUseAccess {
		return nil, ErrInvalidTokenType
	}
	if v.clientID != "" && claims.ClientID != v.clientID {
		return nil, ErrInvalidClient
	}
	return claims.principal()
}

type jwk struct {
	Kid string `json:"kid"`
	Kty string `json:"kty"`
	Alg string `json:"alg"`
	Use string `json:"use"`
	N   string `json:"n"`
	E   string `json:"e"`
}

type jwkSet struct {
	Keys []jwk `json:"keys"`
}

// JWKSCache fetches a JSON Web Key Set and keeps it for the refresh interval.
// An unknown kid forces an early refresh, at most once per jwksMissRefreshGap.
type JWKSCache struct {
	url     string
	refresh time.Duration
	client  *http.Client
	now     func() time.Time

	mu          sync.Mutex
	keys        map[string]*rsa.PublicKey
	fetchedAt   time.Time
	lastAttempt time.Time
}

// NewJWKSCache creates a cache for the key set at url
func NewJWKSCache(url string, refresh time.Duration, client *http.Client) *JWKSCache {
	if refresh <= 0 {
		refresh = defaultJWKSRefresh
	}
	if client == nil {
		client = &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	return &JWKSCache{
		url:     url,
		refresh: refresh,
		client:  client,
		now:     time.Now,
	}
}

// Key implements KeySource
func (c *JWKSCache) Key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	stale := c.keys == nil || now.Sub(c.fetchedAt) >= c.refresh
	if stale {
		if err := c.fetchLocked(ctx, now); err != nil && c.keys == nil {
			return nil, err
		}
	}

	if key, ok := c.keys[kid]; ok {
		return key, nil
	}
	if !stale && now.Sub(c.lastAttempt) >= jwksMissRefreshGap {
		if err := c.fetchLocked(ctx, now); err != nil {
			return nil, err
		}
		if key, ok := c.keys[kid]; ok {
			return key, nil
		}
	}
	return nil, ErrUnknownSigningKey
}

func (c *JWKSCache) fetchLocked(ctx context.Context, now time.Time) error {
	c.lastAttempt = now

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrJWKSUnavailable, err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrJWKSUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrJWKSUnavailable, resp.StatusCode)
	}

	var set jwkSet
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return fmt.Errorf("%w: %v", ErrJWKSUnavailable, err)
	}

	keys := make(map[string]*rsa.PublicKey, len(set.Keys))
	for _, k := range set.Keys {
		if k.Kty != "RSA" || k.Kid == "" {
			continue
		}
		if k.Use != "" && k.Use != "sig" {
			continue
		}
		pub, err := k.publicKey()
		if err != nil {
			continue
		}
		keys[k.Kid] = pub
	}

	c.keys = keys
	c.fetchedAt = now
	return nil
}

func (k jwk) publicKey() (*rsa.PublicKey, error) {
	n, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, err
	}
	e, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, err
	}
	exp := new(big.Int).SetBytes(e)
	if !exp.IsInt64() || exp.Int64() > 1<<31-1 || exp.Int64() < 3 {
		return nil, fmt.Errorf("bad exponent")
	}
	return &rsa.PublicKey{N: new(big.Int).SetBytes(n), E: int(exp.Int64())}, nil
}
