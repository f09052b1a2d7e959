// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Userdir Contributors

// Package auth provides credential hashing and session token issuance for
// the user directory.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"

	"github.com/samber/oops"
	"golang.org/x/crypto/pbkdf2"
)

// PBKDF2-SHA256 parameters. The encoded form is base64(salt || key).
const (
	pbkdf2SaltLen    = 16
	pbkdf2KeyLen     = 32
	pbkdf2Iterations = 100_000
)

// ErrEmptyPassword is returned when attempting to hash an empty password.
var ErrEmptyPassword = oops.Code("AUTH_EMPTY_PASSWORD").Errorf("password cannot be empty")

// PBKDF2Hasher hashes passwords with PBKDF2-SHA256 and a random per-password
// salt. It satisfies directory.PasswordHasher.
type PBKDF2Hasher struct{}

// NewPBKDF2Hasher creates a new PBKDF2Hasher.
func NewPBKDF2Hasher() *PBKDF2Hasher {
	return &PBKDF2Hasher{}
}

// Hash produces a salted PBKDF2-SHA256 hash of the password.
func (h *PBKDF2Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	salt := make([]byte, pbkdf2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", oops.Code("AUTH_SALT_FAILED").Wrap(err)
	}

	key := pbkdf2.Key([]byte(password), salt, pbkdf2Iterations, pbkdf2KeyLen, sha256.New)

	combined := make([]byte, 0, pbkdf2SaltLen+pbkdf2KeyLen)
	combined = append(combined, salt...)
	combined = append(combined, key...)
	return base64.StdEncoding.EncodeToString(combined), nil
}

// Verify checks if the password matches the encoded hash.
// Returns (true, nil) on match, (false, nil) on mismatch, or error on an
// invalid hash. The comparison is constant-time.
func (h *PBKDF2Hasher) Verify(password, encodedHash string) (bool, error) {
	combined, err := base64.StdEncoding.DecodeString(encodedHash)
	if err != nil {
		return false, oops.Code("AUTH_INVALID_HASH").Wrap(err)
	}
	if len(combined) != pbkdf2SaltLen+pbkdf2KeyLen {
		return false, oops.Code("AUTH_INVALID_HASH").
			Errorf("invalid hash length: %d", len(combined))
	}

	salt := combined[:pbkdf2SaltLen]
	expected := combined[pbkdf2SaltLen:]

	computed := pbkdf2.Key([]byte(password), salt, pbkdf2Iterations, pbkdf2KeyLen, sha256.New)

	return subtle.ConstantTimeCompare(computed, expected) == 1, nil
}
