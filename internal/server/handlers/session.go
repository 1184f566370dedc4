package handlers

import (
	"net/http"
	"time"
)

// SessionCookie carries the access token of the admin console
const SessionCookie = "portfolio_session"

// SessionClaims returns the claims of a valid session cookie
func SessionClaims(r *http.Request, cfg JWTConfig) (*CustomClaims, bool) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil || cookie.Value == "" {
		return nil, false
	}
	claims, err := ValidateAccessToken(cfg, cookie.Value)
	if err != nil {
		return nil, false
	}
	return claims, true
}

func setSessionCookie(w http.ResponseWriter, token string, ttl time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/admin",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func clearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/admin",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}
