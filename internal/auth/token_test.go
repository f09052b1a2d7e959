// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Userdir Contributors

package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/userdir/userdir/internal/auth"
	"github.com/userdir/userdir/internal/directory"
)

func TestNewJWTIssuer(t *testing.T) {
	t.Run("empty key is rejected", func(t *testing.T) {
		_, err := auth.NewJWTIssuer(nil, "userdir", "userdir", time.Hour)
		require.Error(t, err)
	})

	t.Run("non-positive ttl falls back to default", func(t *testing.T) {
		issuer, err := auth.NewJWTIssuer([]byte("secret"), "userdir", "userdir", 0)
		require.NoError(t, err)
		require.NotNil(t, issuer)
	})
}

func TestJWTIssuer_IssueAndParse(t *testing.T) {
	issuer, err := auth.NewJWTIssuer([]byte("secret"), "userdir", "userdir", time.Hour)
	require.NoError(t, err)

	u := &directory.User{Login: "alice", Admin: false}

	token, err := issuer.Issue(u)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	login, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", login)
}

func TestJWTIssuer_RoleClaim(t *testing.T) {
	issuer, err := auth.NewJWTIssuer([]byte("secret"), "userdir", "userdir", time.Hour)
	require.NoError(t, err)

	token, err := issuer.Issue(&directory.User{Login: "root", Admin: true})
	require.NoError(t, err)

	var claims auth.Claims
	_, err = jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return []byte("secret"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, auth.RoleAdmin, claims.Role)
	assert.Equal(t, "root", claims.Subject)
}

func TestJWTIssuer_Parse(t *testing.T) {
	issuer, err := auth.NewJWTIssuer([]byte("secret"), "userdir", "userdir", time.Hour)
	require.NoError(t, err)

	t.Run("garbage token is rejected", func(t *testing.T) {
		_, err := issuer.Parse("not.a.token")
		assert.Error(t, err)
	})

	t.Run("token signed with a different key is rejected", func(t *testing.T) {
		other, err := auth.NewJWTIssuer([]byte("other"), "userdir", "userdir", time.Hour)
		require.NoError(t, err)

		token, err := other.Issue(&directory.User{Login: "mallory"})
		require.NoError(t, err)

		_, err = issuer.Parse(token)
		assert.Error(t, err)
	})

	t.Run("token for the wrong issuer is rejected", func(t *testing.T) {
		other, err := auth.NewJWTIssuer([]byte("secret"), "elsewhere", "userdir", time.Hour)
		require.NoError(t, err)

		token, err := other.Issue(&directory.User{Login: "alice"})
		require.NoError(t, err)

		_, err = issuer.Parse(token)
		assert.Error(t, err)
	})
}
