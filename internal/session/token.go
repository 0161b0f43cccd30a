package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenExpiry extrae, sin verificar firma, la expiración de un bearer token
// con forma JWT. Para tokens opacos devuelve ok=false y el chequeo se omite.
func tokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
