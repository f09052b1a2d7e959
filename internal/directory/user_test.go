// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Userdir Contributors

package directory_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/userdir/userdir/internal/directory"
	"github.com/userdir/userdir/pkg/errutil"
)

func TestValidateLogin(t *testing.T) {
	tests := []struct {
		name    string
		login   string
		wantErr bool
	}{
		{"letters and digits", "alice42", false},
		{"single letter", "a", false},
		{"mixed case", "AliceB", false},
		{"empty", "", true},
		{"underscore", "alice_b", true},
		{"space", "alice b", true},
		{"cyrillic", "алиса", true},
		{"punctuation", "alice!", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := directory.ValidateLogin(tt.login)
			if tt.wantErr {
				errutil.AssertErrorCode(t, err, directory.CodeValidationFailed)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"letters and digits", "Secret123", false},
		{"empty", "", true},
		{"underscore", "Secret_123", true},
		{"space", "Secret 123", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := directory.ValidatePassword(tt.password)
			if tt.wantErr {
				errutil.AssertErrorCode(t, err, directory.CodeValidationFailed)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"latin", "Alice Smith", false},
		{"russian", "Алиса Иванова", false},
		{"with yo", "Пётр", false},
		{"empty", "", true},
		{"digits", "Alice2", true},
		{"punctuation", "Alice-Smith", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := directory.ValidateName(tt.value)
			if tt.wantErr {
				errutil.AssertErrorCode(t, err, directory.CodeValidationFailed)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateBirthday(t *testing.T) {
	t.Run("nil is valid", func(t *testing.T) {
		assert.NoError(t, directory.ValidateBirthday(nil))
	})

	t.Run("past date is valid", func(t *testing.T) {
		past := time.Date(1990, 6, 15, 0, 0, 0, 0, time.UTC)
		assert.NoError(t, directory.ValidateBirthday(&past))
	})

	t.Run("future date is rejected", func(t *testing.T) {
		future := time.Now().Add(24 * time.Hour)
		err := directory.ValidateBirthday(&future)
		errutil.AssertErrorCode(t, err, directory.CodeValidationFailed)
	})
}

func TestValidateGender(t *testing.T) {
	assert.NoError(t, directory.ValidateGender(directory.GenderUnknown))
	assert.NoError(t, directory.ValidateGender(directory.GenderMale))
	assert.NoError(t, directory.ValidateGender(directory.GenderFemale))

	err := directory.ValidateGender(directory.Gender(7))
	errutil.AssertErrorCode(t, err, directory.CodeValidationFailed)
}

func TestGenderString(t *testing.T) {
	assert.Equal(t, "unknown", directory.GenderUnknown.String())
	assert.Equal(t, "male", directory.GenderMale.String())
	assert.Equal(t, "female", directory.GenderFemale.String())
	assert.Equal(t, "unknown", directory.Gender(42).String())
}

func TestUserIsActive(t *testing.T) {
	u := &directory.User{Login: "alice"}
	assert.True(t, u.IsActive())

	now := time.Now()
	u.RevokedOn = &now
	assert.False(t, u.IsActive())
}
