// Package auth validates the bearer tokens issued by the account service.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/maxcasase/BDPW-Back-End/pkg/middleware"
)

// Claims are the access token claims. UserID keeps whatever JSON type the
// issuer used (string or number).
type Claims struct {
	UserID any    `json:"user_id,omitempty"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

var errNoSubject = errors.New("token carries neither user_id nor sub")

// Validator checks HMAC-signed access tokens.
type Validator struct {
	secret []byte
	parser *jwt.Parser
}

// NewValidator creates a validator for tokens signed with secret.
func NewValidator(secret string) *Validator {
	return &Validator{
		secret: []byte(secret),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
			jwt.WithJSONNumber(),
			jwt.WithLeeway(30*time.Second),
		),
	}
}

// Validate parses token and returns the caller. The user_id claim wins over
// sub when both are present.
func (v *Validator) Validate(token string) (*middleware.Claims, error) {
	claims := &Claims{}
	parsed, err := v.parser.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse access token: %w", err)
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("invalid access token claims")
	}

	caller := claims.UserID
	if s, ok := caller.(string); ok && s == "" {
		caller = nil
	}
	if caller == nil && claims.Subject != "" {
		caller = claims.Subject
	}
	if caller == nil {
		return nil, errNoSubject
	}

	return &middleware.Claims{UserID: caller, Email: claims.Email, Role: claims.Role}, nil
}
