// Package auth implements the signed-cookie session used to identify
// users. The token is an HMAC-signed JWT carried in an httpOnly cookie;
// handlers receive the resolved identity explicitly and never reach into
// transport state themselves.
package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// CookieName is the session cookie name.
const CookieName = "session"

// tokenTTL matches the cookie max-age: 7 days.
const tokenTTL = 7 * 24 * time.Hour

var ErrInvalidToken = errors.New("invalid session token")

// Identity is the verified caller identity resolved from a session cookie.
type Identity struct {
	UserID       uuid.UUID
	DisplayName  string
	HasConsented bool
	IsAdmin      bool
}

type sessionClaims struct {
	UserID       string `json:"userId"`
	DisplayName  string `json:"displayName"`
	HasConsented bool   `json:"hasConsented"`
	IsAdmin      bool   `json:"isAdmin,omitempty"`
	jwt.RegisteredClaims
}

// CreateToken signs a session token for the given identity.
func CreateToken(secret []byte, id Identity) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		UserID:       id.UserID.String(),
		DisplayName:  id.DisplayName,
		HasConsented: id.HasConsented,
		IsAdmin:      id.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// VerifyToken parses and verifies a session token, returning the identity
// it carries.
func VerifyToken(secret []byte, token string) (*Identity, error) {
	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, ErrInvalidToken
	}

	return &Identity{
		UserID:       userID,
		DisplayName:  claims.DisplayName,
		HasConsented: claims.HasConsented,
		IsAdmin:      claims.IsAdmin,
	}, nil
}

// FromRequest resolves the identity from the request's session cookie.
// Returns nil when there is no cookie or the token does not verify.
func FromRequest(secret []byte, r *http.Request) *Identity {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	id, err := VerifyToken(secret, cookie.Value)
	if err != nil {
		return nil
	}
	return id
}

// SessionCookie builds the Set-Cookie value carrying a session token.
func SessionCookie(token string, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(tokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	}
}

// ClearSessionCookie builds the Set-Cookie value that logs a client out.
func ClearSessionCookie(secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	}
}
