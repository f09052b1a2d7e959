// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Userdir Contributors

package directory

import (
	"log/slog"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Pagination bounds.
const (
	MaxPageSize     = 100
	DefaultPageSize = 10
)

// PasswordHasher provides one-way password hashing and verification.
type PasswordHasher interface {
	// Hash produces a salted one-way hash of the password.
	Hash(password string) (string, error)

	// Verify checks if the password matches the hash.
	// Returns (true, nil) on match, (false, nil) on mismatch, or error on
	// invalid hash.
	Verify(password, hash string) (bool, error)
}

// TokenIssuer produces an opaque session token for an authenticated user.
type TokenIssuer interface {
	Issue(u *User) (string, error)
}

// dummyPasswordHash is verified when a login doesn't exist, so that
// authentication takes the same time either way. It decodes to 48 zero bytes
// and will never match any password.
//
//nolint:gosec // G101: intentionally fake hash for timing attack prevention, not a credential.
const dummyPasswordHash = "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// CreateUserParams carries the validated-at-the-service inputs of CreateUser.
type CreateUserParams struct {
	Login    string
	Password string
	Name     string
	Gender   Gender
	Birthday *time.Time
	Admin    bool
}

// UpdateUserParams carries optional profile changes; nil fields are left
// untouched.
type UpdateUserParams struct {
	Name     *string
	Gender   *Gender
	Birthday *time.Time
}

// PaginatedResult is one page of a user listing.
type PaginatedResult struct {
	Items      []User
	PageNumber int
	PageSize   int
	TotalCount int
	TotalPages int
}

// Service is the directory façade: it validates input shape, resolves the
// actor, applies Policy, performs the Store operation, and invalidates the
// Cache before returning. It holds no state of its own.
type Service struct {
	store  *Store
	cache  *Cache
	policy Policy
	hasher PasswordHasher
	tokens TokenIssuer
	logger *slog.Logger
}

// NewService creates a Service. The token issuer may be nil when the caller
// never authenticates (e.g. seed tooling); everything else is required.
func NewService(store *Store, cache *Cache, hasher PasswordHasher, tokens TokenIssuer, logger *slog.Logger) (*Service, error) {
	if store == nil {
		return nil, oops.Errorf("store is required")
	}
	if cache == nil {
		return nil, oops.Errorf("cache is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  store,
		cache:  cache,
		hasher: hasher,
		tokens: tokens,
		logger: logger,
	}, nil
}

// Authenticate verifies credentials and returns a session token. Every
// failure mode (unknown login, revoked account, wrong password) yields the
// same AUTHENTICATION_FAILED error so callers cannot enumerate logins.
func (s *Service) Authenticate(login, password string) (string, error) {
	u, err := s.GetByCredentials(login, password)
	if err != nil {
		return "", err
	}

	if s.tokens == nil {
		return "", oops.Errorf("token issuer is not configured")
	}
	token, err := s.tokens.Issue(u)
	if err != nil {
		return "", oops.With("operation", "issue token").Wrap(err)
	}

	s.logger.Info("user authenticated", "login", u.Login)
	return token, nil
}

// GetByCredentials verifies credentials and returns the matching active
// record. Password verification runs even for unknown logins, against a dummy
// hash, to keep response time independent of login existence.
func (s *Service) GetByCredentials(login, password string) (*User, error) {
	u, exists := s.store.Get(login)

	targetHash := dummyPasswordHash
	if exists {
		targetHash = u.PasswordHash
	}

	valid, err := s.hasher.Verify(password, targetHash)
	if err != nil {
		// A corrupt dummy-hash verification is indistinguishable from a
		// mismatch to the caller.
		if exists {
			s.logger.Warn("password verification error", "login", login)
		}
		return nil, authenticationFailed()
	}

	if !exists || !valid || !u.IsActive() {
		return nil, authenticationFailed()
	}
	return u, nil
}

// CreateUser validates the inputs, gates admin creation on the creating
// actor, and inserts the new record. createdBy is stamped into the audit
// fields.
func (s *Service) CreateUser(p CreateUserParams, createdBy string) (*User, error) {
	if err := ValidateLogin(p.Login); err != nil {
		return nil, err
	}
	if err := ValidatePassword(p.Password); err != nil {
		return nil, err
	}
	if err := ValidateName(p.Name); err != nil {
		return nil, err
	}
	if err := ValidateGender(p.Gender); err != nil {
		return nil, err
	}
	if err := ValidateBirthday(p.Birthday); err != nil {
		return nil, err
	}

	if p.Admin {
		if err := s.policy.RequireAdmin(s.resolveActor(createdBy)); err != nil {
			return nil, err
		}
	}

	if s.store.ExistsByLogin(p.Login) {
		return nil, oops.Code(CodeLoginAlreadyExists).
			With("login", p.Login).
			Errorf("login %q already exists", p.Login)
	}

	hash, err := s.hasher.Hash(p.Password)
	if err != nil {
		return nil, oops.With("operation", "hash password").Wrap(err)
	}

	now := time.Now()
	u := &User{
		ID:           ulid.Make(),
		Login:        p.Login,
		PasswordHash: hash,
		Name:         p.Name,
		Gender:       p.Gender,
		Birthday:     p.Birthday,
		Admin:        p.Admin,
		CreatedOn:    now,
		CreatedBy:    createdBy,
		ModifiedOn:   now,
		ModifiedBy:   createdBy,
	}
	if err := s.store.Insert(u); err != nil {
		return nil, err
	}
	s.cache.Invalidate(u.Login)

	s.logger.Info("user created", "login", u.Login, "created_by", createdBy)
	return copyUser(u), nil
}

// ListActivePaginated returns one page of the cached active-user list,
// ordered by creation time.
func (s *Service) ListActivePaginated(pageNumber, pageSize int) PaginatedResult {
	return paginate(s.cache.ListActive(), pageNumber, pageSize)
}

// ListAll returns every record, revoked included, through the cache.
func (s *Service) ListAll() []User {
	return s.cache.ListAll()
}

// ListOlderThanPaginated returns one page of the users whose birthday is at
// least age years in the past.
func (s *Service) ListOlderThanPaginated(age, pageNumber, pageSize int) PaginatedResult {
	return paginate(s.store.ListOlderThan(age), pageNumber, pageSize)
}

// GetByLoginCached returns the record for login through the read cache.
func (s *Service) GetByLoginCached(login string) (*User, error) {
	return s.cache.GetByLogin(login)
}

// GetByLogin returns the record for login straight from the store.
func (s *Service) GetByLogin(login string) (*User, error) {
	u, ok := s.store.Get(login)
	if !ok {
		return nil, notFound(login)
	}
	return u, nil
}

// GetCurrentUser returns the record behind an authenticated caller's login.
// An unresolvable login fails with AUTHENTICATION_REQUIRED rather than
// USER_NOT_FOUND: the login came from a credential, not from user input.
func (s *Service) GetCurrentUser(login string) (*User, error) {
	u := s.resolveActor(login)
	if err := s.policy.RequireActiveActor(u); err != nil {
		return nil, err
	}
	return u, nil
}

// UpdateUser applies a profile change under the self-or-admin rule.
func (s *Service) UpdateUser(login string, p UpdateUserParams, modifiedBy string) (*User, error) {
	if p.Name != nil {
		if err := ValidateName(*p.Name); err != nil {
			return nil, err
		}
	}
	if p.Gender != nil {
		if err := ValidateGender(*p.Gender); err != nil {
			return nil, err
		}
	}
	if err := ValidateBirthday(p.Birthday); err != nil {
		return nil, err
	}

	target, ok := s.store.Get(login)
	if !ok {
		return nil, notFound(login)
	}
	if err := s.policy.RequireSelfOrAdmin(s.resolveActor(modifiedBy), target); err != nil {
		return nil, err
	}

	updated, err := s.store.Mutate(login, modifiedBy, func(u *User) {
		if p.Name != nil {
			u.Name = *p.Name
		}
		if p.Gender != nil {
			u.Gender = *p.Gender
		}
		if p.Birthday != nil {
			b := *p.Birthday
			u.Birthday = &b
		}
	})
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(login)

	s.logger.Info("user updated", "login", login, "modified_by", modifiedBy)
	return updated, nil
}

// UpdatePassword replaces the stored hash under the self-or-admin rule.
func (s *Service) UpdatePassword(login, newPassword, modifiedBy string) (*User, error) {
	if err := ValidatePassword(newPassword); err != nil {
		return nil, err
	}

	target, ok := s.store.Get(login)
	if !ok {
		return nil, notFound(login)
	}
	if err := s.policy.RequireSelfOrAdmin(s.resolveActor(modifiedBy), target); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return nil, oops.With("operation", "hash password").Wrap(err)
	}

	updated, err := s.store.Mutate(login, modifiedBy, func(u *User) {
		u.PasswordHash = hash
	})
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(login)

	s.logger.Info("password updated", "login", login, "modified_by", modifiedBy)
	return updated, nil
}

// UpdateLogin re-keys the account from oldLogin to newLogin. The new login
// passes the same shape and uniqueness rules as creation. Order is fixed:
// validate shape, resolve actor and policy, check uniqueness, mutate.
func (s *Service) UpdateLogin(oldLogin, newLogin, modifiedBy string) (*User, error) {
	if err := ValidateLogin(newLogin); err != nil {
		return nil, err
	}

	target, ok := s.store.Get(oldLogin)
	if !ok {
		return nil, notFound(oldLogin)
	}
	if err := s.policy.RequireSelfOrAdmin(s.resolveActor(modifiedBy), target); err != nil {
		return nil, err
	}

	if s.store.ExistsByLogin(newLogin) {
		return nil, oops.Code(CodeLoginAlreadyExists).
			With("login", newLogin).
			Errorf("login %q already exists", newLogin)
	}

	updated, err := s.store.Rename(oldLogin, newLogin, modifiedBy)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(oldLogin, newLogin)

	s.logger.Info("login changed",
		"old_login", oldLogin, "new_login", newLogin, "modified_by", modifiedBy)
	return updated, nil
}

// DeleteUser revokes (softDelete true) or permanently removes (softDelete
// false) the record. Admin-only. A hard delete frees the login for reuse.
func (s *Service) DeleteUser(login, revokedBy string, softDelete bool) error {
	if err := s.policy.RequireAdmin(s.resolveActor(revokedBy)); err != nil {
		return err
	}

	if softDelete {
		if _, err := s.store.SoftDelete(login, revokedBy); err != nil {
			return err
		}
	} else {
		if err := s.store.HardDelete(login); err != nil {
			return err
		}
	}
	s.cache.Invalidate(login)

	s.logger.Info("user deleted",
		"login", login, "revoked_by", revokedBy, "soft", softDelete)
	return nil
}

// RestoreUser clears the revoked state of a soft-deleted record. Admin-only.
func (s *Service) RestoreUser(login, modifiedBy string) (*User, error) {
	if err := s.policy.RequireAdmin(s.resolveActor(modifiedBy)); err != nil {
		return nil, err
	}

	restored, err := s.store.Restore(login, modifiedBy)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(login)

	s.logger.Info("user restored", "login", login, "modified_by", modifiedBy)
	return restored, nil
}

// RequireAdminActor resolves actorLogin and applies the admin-only rule.
// Boundaries use it to gate admin-only reads before calling a list operation.
func (s *Service) RequireAdminActor(actorLogin string) error {
	return s.policy.RequireAdmin(s.resolveActor(actorLogin))
}

// resolveActor maps an actor login to its record, or nil when the login is
// blank or unknown.
func (s *Service) resolveActor(login string) *User {
	if strings.TrimSpace(login) == "" {
		return nil
	}
	u, ok := s.store.Get(login)
	if !ok {
		return nil
	}
	return u
}

func authenticationFailed() error {
	return oops.Code(CodeAuthenticationFailed).Errorf(authenticationFailedMessage)
}

// paginate slices one page out of items. pageSize is clamped to
// [1, MaxPageSize] with DefaultPageSize substituted for non-positive values;
// pageNumber is clamped to at least 1.
func paginate(items []User, pageNumber, pageSize int) PaginatedResult {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	if pageNumber < 1 {
		pageNumber = 1
	}

	total := len(items)
	totalPages := (total + pageSize - 1) / pageSize

	start := (pageNumber - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	page := make([]User, end-start)
	copy(page, items[start:end])

	return PaginatedResult{
		Items:      page,
		PageNumber: pageNumber,
		PageSize:   pageSize,
		TotalCount: total,
		TotalPages: totalPages,
	}
}
