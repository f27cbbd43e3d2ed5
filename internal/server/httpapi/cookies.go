package httpapi

import (
	"net/http"

	"github.com/mkravets/auth-service/internal/common"
	"github.com/mkravets/auth-service/internal/server/services"
)

const (
	accessCookieMaxAge  = 900
	refreshCookieMaxAge = 86400
)

func tokenCookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	}
}

func setTokenCookies(w http.ResponseWriter, pair *services.TokenPair) {
	http.SetCookie(w, tokenCookie(common.AccessTokenCookieName, pair.AccessToken, accessCookieMaxAge))
	http.SetCookie(w, tokenCookie(common.RefreshTokenCookieName, pair.RefreshToken, refreshCookieMaxAge))
}

func clearTokenCookies(w http.ResponseWriter) {
	http.SetCookie(w, tokenCookie(common.AccessTokenCookieName, "", -1))
	http.SetCookie(w, tokenCookie(common.RefreshTokenCookieName, "", -1))
}
