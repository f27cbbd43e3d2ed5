package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/mkravets/auth-service/internal/common"
	"github.com/mkravets/auth-service/internal/server/auth"
	"github.com/mkravets/auth-service/internal/server/models"
)

type ctxKey string

const (
	identityKey      ctxKey = "identity"
	refreshRecordKey ctxKey = "refreshRecord"
)

// Identity is the authenticated caller, taken from a verified token. It is
// what the token said at signing time, not a fresh database read.
type Identity struct {
	UserID int64
	Role   models.Role
}

// IdentityFromContext returns the identity placed by the authentication
// middleware.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

func recordIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(refreshRecordKey).(int64)
	return id, ok
}

// extractToken pulls a token from the Authorization header, falling back to
// the named cookie. The header wins when both are present.
func extractToken(r *http.Request, cookieName string) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if c, err := r.Cookie(cookieName); err == nil {
		return c.Value
	}
	return ""
}

// authenticate verifies an access token against the JWKS and stores the
// caller's identity in the request context. Missing, malformed, expired and
// wrongly signed tokens all get the same 401.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r, common.AccessTokenCookieName)
		if token == "" {
			writeUnauthenticated(w)
			return
		}

		claims, err := s.verifier.VerifyAccessToken(r.Context(), token)
		if err != nil {
			writeUnauthenticated(w)
			return
		}
		userID, err := claims.UserID()
		if err != nil {
			writeUnauthenticated(w)
			return
		}

		ctx := context.WithValue(r.Context(), identityKey, Identity{UserID: userID, Role: claims.Role})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// validateRefresh checks a refresh token's signature and then its record's
// liveness. A revoked or mismatched record is indistinguishable from a
// forged token.
func (s *Server) validateRefresh(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := s.parseRefreshClaims(w, r)
		if !ok {
			return
		}
		userID, _ := claims.UserID()
		recordID, _ := claims.RecordID()

		live, err := s.repos.RefreshTokens(s.db).IsLive(r.Context(), recordID, userID)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		if !live {
			writeUnauthenticated(w)
			return
		}

		next.ServeHTTP(w, r.WithContext(s.withRefreshIdentity(r.Context(), claims, userID, recordID)))
	})
}

// parseRefresh checks only the refresh token's signature, without touching
// the store. Logout runs behind it so revoking an already revoked token
// stays idempotent.
func (s *Server) parseRefresh(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := s.parseRefreshClaims(w, r)
		if !ok {
			return
		}
		userID, _ := claims.UserID()
		recordID, _ := claims.RecordID()

		next.ServeHTTP(w, r.WithContext(s.withRefreshIdentity(r.Context(), claims, userID, recordID)))
	})
}

func (s *Server) parseRefreshClaims(w http.ResponseWriter, r *http.Request) (*auth.Claims, bool) {
	token := extractToken(r, common.RefreshTokenCookieName)
	if token == "" {
		writeUnauthenticated(w)
		return nil, false
	}
	claims, err := auth.ParseRefreshToken(s.refreshSecret, token)
	if err != nil {
		writeUnauthenticated(w)
		return nil, false
	}
	if _, err := claims.UserID(); err != nil {
		writeUnauthenticated(w)
		return nil, false
	}
	if _, err := claims.RecordID(); err != nil {
		writeUnauthenticated(w)
		return nil, false
	}
	return claims, true
}

func (s *Server) withRefreshIdentity(ctx context.Context, claims *auth.Claims, userID, recordID int64) context.Context {
	ctx = context.WithValue(ctx, identityKey, Identity{UserID: userID, Role: claims.Role})
	return context.WithValue(ctx, refreshRecordKey, recordID)
}

// requireRole gates a route to the listed roles. It reads the identity set
// by authenticate, so it must be mounted after it.
func (s *Server) requireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok {
				writeUnauthenticated(w)
				return
			}
			for _, role := range roles {
				if id.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeForbidden(w)
		})
	}
}

// logRequests emits one structured line per request with the final status.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info(r.Context(), "request",
			"method", r.Method, "path", r.URL.Path, "status", ww.Status())
	})
}
