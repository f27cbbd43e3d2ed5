package common

// TokenIssuer is the iss claim stamped on every token this service signs.
const TokenIssuer = "auth-service"

// Cookie names for the token pair set on register/login/refresh.
const (
	AccessTokenCookieName  = "access_token"
	RefreshTokenCookieName = "refresh_token"
)
