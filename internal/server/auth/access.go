package auth

import (
	"crypto/rsa"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mkravets/auth-service/internal/common"
	"github.com/mkravets/auth-service/internal/server/models"
)

// Claims is the claim set carried by both token kinds. Refresh tokens
// additionally set RegisteredClaims.ID (jti) to their store record id.
type Claims struct {
	jwt.RegisteredClaims
	Role models.Role `json:"role"`
}

// UserID parses the sub claim back into a user id.
func (c *Claims) UserID() (int64, error) {
	return strconv.ParseInt(c.Subject, 10, 64)
}

func newClaims(userID int64, role models.Role, validity time.Duration) jwt.RegisteredClaims {
	now := time.Now()
	return jwt.RegisteredClaims{
		Issuer:    common.TokenIssuer,
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
	}
}

// IssueAccessToken mints a short-lived RS256 token for userID. Access tokens
// are never persisted: anyone holding the JWKS can verify them without
// contacting this service.
func IssueAccessToken(key *rsa.PrivateKey, kid string, userID int64, role models.Role, validity time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, Claims{
		RegisteredClaims: newClaims(userID, role, validity),
		Role:             role,
	})
	token.Header["kid"] = kid

	return token.SignedString(key)
}

// VerifyAccessToken checks signature, expiry and issuer against the given
// public key, rejecting any token not signed with RS256.
func VerifyAccessToken(pub *rsa.PublicKey, tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return pub, nil },
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
