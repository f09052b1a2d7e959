// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Userdir Contributors

// Package directory implements the user directory core: the authoritative
// in-memory store, its read cache, the authorization policy, and the
// service façade that external boundaries call.
package directory

import (
	"regexp"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Gender is a small enumerated code on a user profile.
type Gender int

// Gender codes.
const (
	GenderUnknown Gender = iota
	GenderMale
	GenderFemale
)

// String returns the lowercase name of the gender code.
func (g Gender) String() string {
	switch g {
	case GenderMale:
		return "male"
	case GenderFemale:
		return "female"
	default:
		return "unknown"
	}
}

// Valid reports whether g is one of the defined codes.
func (g Gender) Valid() bool {
	return g >= GenderUnknown && g <= GenderFemale
}

// User is one account record. The Store exclusively owns all live instances;
// everything handed out by Store or Cache reads is a copy.
type User struct {
	ID           ulid.ULID
	Login        string
	PasswordHash string
	Name         string
	Gender       Gender
	Birthday     *time.Time
	Admin        bool
	CreatedOn    time.Time
	CreatedBy    string
	ModifiedOn   time.Time
	ModifiedBy   string
	RevokedOn    *time.Time
	RevokedBy    string
}

// IsActive reports whether the account is not soft-deleted.
func (u *User) IsActive() bool {
	return u.RevokedOn == nil
}

// Validation patterns for account fields.
var (
	loginRegex    = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
	passwordRegex = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
	nameRegex     = regexp.MustCompile(`^[a-zA-Zа-яА-ЯёЁ\s]+$`)
)

// ValidateLogin checks the shape of a login: non-empty, Latin letters and
// digits only.
func ValidateLogin(login string) error {
	if login == "" || !loginRegex.MatchString(login) {
		return oops.Code(CodeValidationFailed).
			With("field", "login").
			Errorf("login can only contain Latin letters and numbers")
	}
	return nil
}

// ValidatePassword checks the shape of a plaintext password: non-empty,
// Latin letters and digits only.
func ValidatePassword(password string) error {
	if password == "" || !passwordRegex.MatchString(password) {
		return oops.Code(CodeValidationFailed).
			With("field", "password").
			Errorf("password can only contain Latin letters and numbers")
	}
	return nil
}

// ValidateName checks the shape of a display name: non-empty, Russian and
// Latin letters and spaces only.
func ValidateName(name string) error {
	if name == "" || !nameRegex.MatchString(name) {
		return oops.Code(CodeValidationFailed).
			With("field", "name").
			Errorf("name can only contain Russian and Latin letters")
	}
	return nil
}

// ValidateBirthday rejects birthdays in the future. A nil birthday is valid.
func ValidateBirthday(birthday *time.Time) error {
	if birthday != nil && birthday.After(time.Now()) {
		return oops.Code(CodeValidationFailed).
			With("field", "birthday").
			Errorf("birthday cannot be in the future")
	}
	return nil
}

// ValidateGender rejects gender codes outside the defined enumeration.
func ValidateGender(g Gender) error {
	if !g.Valid() {
		return oops.Code(CodeValidationFailed).
			With("field", "gender").
			Errorf("gender must be unknown, male, or female")
	}
	return nil
}
