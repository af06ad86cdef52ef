// auth/jwt.go
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

var ErrNoToken = errors.New("auth: no bearer token")

// JWTAuth authenticates HS256 bearer tokens whose subject is the user ID.
// Tokens come from "Authorization: Bearer" or, for browsers, CookieName.
type JWTAuth struct {
	secret     []byte
	Issuer     string
	TTL        time.Duration
	CookieName string
	Logger     *zap.Logger
}

// NewJWTAuth returns an authenticator for secret, issuing one-hour tokens.
func NewJWTAuth(secret string) *JWTAuth {
	return &JWTAuth{
		secret: []byte(secret),
		Issuer: "fhurl",
		TTL:    time.Hour,
		Logger: zap.NewNop(),
	}
}

// Issue signs a token for userID.
func (a *JWTAuth) Issue(userID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    a.Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(a.TTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Parse verifies token and returns its claims.
func (a *JWTAuth) Parse(token string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(a.Issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("auth: %w", err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("auth: token has no subject")
	}
	return claims, nil
}

// TokenFromRequest extracts the raw token, header first.
func (a *JWTAuth) TokenFromRequest(r *http.Request) (string, error) {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(h) > len("bearer ") && strings.EqualFold(h[:len("bearer ")], "bearer ") {
		if tok := strings.TrimSpace(h[len("bearer "):]); tok != "" {
			return tok, nil
		}
	}
	if a.CookieName != "" {
		if c, err := r.Cookie(a.CookieName); err == nil && c.Value != "" {
			return c.Value, nil
		}
	}
	return "", ErrNoToken
}

// Subject returns the verified user ID of the request's token.
func (a *JWTAuth) Subject(r *http.Request) (string, error) {
	tok, err := a.TokenFromRequest(r)
	if err != nil {
		return "", err
	}
	claims, err := a.Parse(tok)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

func (a *JWTAuth) Authenticated(r *http.Request) bool {
	_, err := a.Subject(r)
	if err != nil && !errors.Is(err, ErrNoToken) && a.Logger != nil {
		a.Logger.Debug("bearer token rejected", zap.String("path", r.URL.Path), zap.Error(err))
	}
	return err == nil
}

// Middleware puts the token's subject into the request context so UserID
// sees it. Requests without a valid token pass through unchanged.
func (a *JWTAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sub, err := a.Subject(r); err == nil {
			r = r.WithContext(WithUserID(r.Context(), sub))
		}
		next.ServeHTTP(w, r)
	})
}
