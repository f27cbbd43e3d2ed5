package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mkravets/auth-service/internal/common"
)

// defaultMinRefreshInterval caps how often an unknown kid may trigger a
// refetch, so a flood of forged tokens cannot hammer the JWKS endpoint.
const defaultMinRefreshInterval = 5 * time.Minute

// JWKSClient fetches and caches the JWK set used to verify access tokens.
// Keys are cached by kid; an unknown kid triggers a rate-limited refresh.
type JWKSClient struct {
	uri        string
	httpClient *http.Client

	mu          sync.Mutex
	keys        map[string]*JWK
	lastRefresh time.Time
	minInterval time.Duration
}

// NewJWKSClient builds a client for the JWKS document at uri.
func NewJWKSClient(uri string) *JWKSClient {
	return &JWKSClient{
		uri:         uri,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		keys:        make(map[string]*JWK),
		minInterval: defaultMinRefreshInterval,
	}
}

// VerifyAccessToken verifies tokenString against the cached JWK set,
// refreshing the set when the token references an unknown kid.
func (c *JWKSClient) VerifyAccessToken(ctx context.Context, tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) {
			kid, _ := t.Header["kid"].(string)
			jwk, err := c.key(ctx, kid)
			if err != nil {
				return nil, err
			}
			return jwk.PublicKey()
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(common.TokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, common.ErrUnauthenticated
	}

	return claims, nil
}

// key returns the JWK for kid. An empty kid matches a single-key set.
func (c *JWKSClient) key(ctx context.Context, kid string) (*JWK, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if jwk := c.lookupLocked(kid); jwk != nil {
		return jwk, nil
	}

	if time.Since(c.lastRefresh) < c.minInterval {
		return nil, fmt.Errorf("unknown kid %q", kid)
	}
	if err := c.refreshLocked(ctx); err != nil {
		return nil, err
	}

	if jwk := c.lookupLocked(kid); jwk != nil {
		return jwk, nil
	}
	return nil, fmt.Errorf("unknown kid %q", kid)
}

func (c *JWKSClient) lookupLocked(kid string) *JWK {
	if kid == "" && len(c.keys) == 1 {
		for _, jwk := range c.keys {
			return jwk
		}
	}
	return c.keys[kid]
}

func (c *JWKSClient) refreshLocked(ctx context.Context) error {
	c.lastRefresh = time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.uri, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetching JWKS: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetching JWKS: unexpected status %s", resp.Status)
	}

	var set JWKSet
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return fmt.Errorf("decoding JWKS: %w", err)
	}
	if len(set.Keys) == 0 {
		return errors.New("JWKS document contains no keys")
	}

	keys := make(map[string]*JWK, len(set.Keys))
	for i := range set.Keys {
		k := set.Keys[i]
		keys[k.Kid] = &k
	}
	c.keys = keys

	return nil
}
