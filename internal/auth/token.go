// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Userdir Contributors

package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/oops"

	"github.com/userdir/userdir/internal/directory"
)

// DefaultTokenTTL is the session token lifetime when none is configured.
const DefaultTokenTTL = time.Hour

// Role claim values.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Claims is the JWT claim set carried in session tokens: the registered
// claims plus the subject's role.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// JWTIssuer issues and parses HS256-signed session tokens. It satisfies
// directory.TokenIssuer.
type JWTIssuer struct {
	key      []byte
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
}

// NewJWTIssuer creates a JWTIssuer. key must be non-empty; a non-positive ttl
// falls back to DefaultTokenTTL.
func NewJWTIssuer(key []byte, issuer, audience string, ttl time.Duration) (*JWTIssuer, error) {
	if len(key) == 0 {
		return nil, oops.Code("TOKEN_CONFIG_INVALID").Errorf("signing key is required")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &JWTIssuer{
		key:      key,
		issuer:   issuer,
		audience: audience,
		ttl:      ttl,
		now:      time.Now,
	}, nil
}

// Issue produces a signed session token for the user. The subject is the
// user's login; the role claim reflects the admin flag.
func (j *JWTIssuer) Issue(u *directory.User) (string, error) {
	role := RoleUser
	if u.Admin {
		role = RoleAdmin
	}

	now := j.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.Login,
			Issuer:    j.issuer,
			Audience:  jwt.ClaimStrings{j.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
		},
		Role: role,
	})

	signed, err := token.SignedString(j.key)
	if err != nil {
		return "", oops.Code("TOKEN_SIGN_FAILED").Wrap(err)
	}
	return signed, nil
}

// Parse verifies a session token and returns the subject login.
func (j *JWTIssuer) Parse(tokenString string) (string, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return j.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(j.issuer),
		jwt.WithAudience(j.audience),
		jwt.WithTimeFunc(func() time.Time { return j.now() }),
	)
	if err != nil {
		return "", oops.Code("TOKEN_INVALID").Wrap(err)
	}
	if claims.Subject == "" {
		return "", oops.Code("TOKEN_INVALID").Errorf("token has no subject")
	}
	return claims.Subject, nil
}
