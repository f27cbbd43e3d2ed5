package auth

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mkravets/auth-service/internal/common"
	"github.com/mkravets/auth-service/internal/server/models"
)

// IssueRefreshToken mints a long-lived HS256 token whose jti points at the
// persisted refresh-token record. The symmetric secret is deliberate: refresh
// tokens are only ever verified by this same service, so there is no need to
// expose refresh-verification capability through the JWKS.
func IssueRefreshToken(secret []byte, userID int64, role models.Role, recordID int64, validity time.Duration) (string, error) {
	registered := newClaims(userID, role, validity)
	registered.ID = strconv.FormatInt(recordID, 10)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: registered,
		Role:             role,
	})

	return token.SignedString(secret)
}

// ParseRefreshToken checks signature, expiry and issuer, rejecting any token
// not signed with HS256. Liveness of the backing record is the caller's
// problem: a cryptographically valid token may still be revoked.
func ParseRefreshToken(secret []byte, tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
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

// RecordID parses the jti claim back into a refresh-token record id.
func (c *Claims) RecordID() (int64, error) {
	return strconv.ParseInt(c.ID, 10, 64)
}
