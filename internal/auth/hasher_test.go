// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Userdir Contributors

package auth_test

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/userdir/userdir/internal/auth"
)

func TestHashPassword(t *testing.T) {
	hasher := auth.NewPBKDF2Hasher()

	t.Run("produces decodable salt+key blob", func(t *testing.T) {
		hash, err := hasher.Hash("password123")
		require.NoError(t, err)

		raw, err := base64.StdEncoding.DecodeString(hash)
		require.NoError(t, err)
		assert.Len(t, raw, 48)
	})

	t.Run("different passwords produce different hashes", func(t *testing.T) {
		hash1, err := hasher.Hash("password1")
		require.NoError(t, err)
		hash2, err := hasher.Hash("password2")
		require.NoError(t, err)
		assert.NotEqual(t, hash1, hash2)
	})

	t.Run("same password produces different hashes due to salt", func(t *testing.T) {
		hash1, err := hasher.Hash("samepassword")
		require.NoError(t, err)
		hash2, err := hasher.Hash("samepassword")
		require.NoError(t, err)
		assert.NotEqual(t, hash1, hash2)
	})

	t.Run("empty password is rejected", func(t *testing.T) {
		_, err := hasher.Hash("")
		assert.ErrorIs(t, err, auth.ErrEmptyPassword)
	})
}

func TestVerifyPassword(t *testing.T) {
	hasher := auth.NewPBKDF2Hasher()

	t.Run("correct password verifies", func(t *testing.T) {
		hash, err := hasher.Hash("correcthorse")
		require.NoError(t, err)

		ok, err := hasher.Verify("correcthorse", hash)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("wrong password does not verify", func(t *testing.T) {
		hash, err := hasher.Hash("correcthorse")
		require.NoError(t, err)

		ok, err := hasher.Verify("batterystaple", hash)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("invalid base64 is an error", func(t *testing.T) {
		_, err := hasher.Verify("password", "not base64!")
		assert.Error(t, err)
	})

	t.Run("truncated blob is an error", func(t *testing.T) {
		short := base64.StdEncoding.EncodeToString([]byte("tooshort"))
		_, err := hasher.Verify("password", short)
		assert.Error(t, err)
	})

	t.Run("verify is case sensitive", func(t *testing.T) {
		hash, err := hasher.Hash("Password1")
		require.NoError(t, err)

		ok, err := hasher.Verify("password1", hash)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("all-zero dummy blob never verifies", func(t *testing.T) {
		dummy := strings.Repeat("A", 64)
		ok, err := hasher.Verify("anything", dummy)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
