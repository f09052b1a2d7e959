// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Userdir Contributors

package directory

import (
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Bootstrap administrator seeded into every new store. The process is
// volatile: a restart resets the directory to this single record.
const (
	BootstrapAdminLogin    = "Admin"
	BootstrapAdminPassword = "Admin_123"
	BootstrapAdminName     = "System Administrator"

	// SystemActor is the sentinel actor recorded on seed data.
	SystemActor = "System"
)

// Store is the single source of truth for user records: a mutex-guarded
// mapping from login to record. It performs no authorization and no caching;
// Policy and Cache wrap it.
//
// Thread-safety: all access to users goes through mu. Records handed out are
// copies, so callers can never mutate a live record except through Mutate.
type Store struct {
	mu    sync.RWMutex
	users map[string]*User
}

// NewStore creates an empty store. Most callers want NewBootstrappedStore.
func NewStore() *Store {
	return &Store{users: make(map[string]*User)}
}

// NewBootstrappedStore creates a store seeded with the bootstrap
// administrator, its password hashed with the given hasher and its audit
// fields stamped to the system actor.
func NewBootstrappedStore(hasher PasswordHasher) (*Store, error) {
	s := NewStore()

	hash, err := hasher.Hash(BootstrapAdminPassword)
	if err != nil {
		return nil, oops.With("operation", "hash bootstrap password").Wrap(err)
	}

	now := time.Now()
	admin := &User{
		ID:           ulid.Make(),
		Login:        BootstrapAdminLogin,
		PasswordHash: hash,
		Name:         BootstrapAdminName,
		Gender:       GenderUnknown,
		Admin:        true,
		CreatedOn:    now,
		CreatedBy:    SystemActor,
		ModifiedOn:   now,
		ModifiedBy:   SystemActor,
	}
	if err := s.Insert(admin); err != nil {
		return nil, err
	}
	return s, nil
}

// Get returns a copy of the record for login, or false if absent.
func (s *Store) Get(login string) (*User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[login]
	if !ok {
		return nil, false
	}
	return copyUser(u), true
}

// ExistsByLogin reports whether any record, active or revoked, holds login.
func (s *Store) ExistsByLogin(login string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.users[login]
	return ok
}

// Insert adds a new record. The login must not be present, revoked records
// included.
func (s *Store) Insert(u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[u.Login]; ok {
		return oops.Code(CodeLoginAlreadyExists).
			With("login", u.Login).
			Errorf("login %q already exists", u.Login)
	}
	s.users[u.Login] = copyUser(u)
	return nil
}

// Rename re-keys the record from oldLogin to newLogin atomically: under the
// lock there is no interleaving where both keys map to the record or neither
// does. Audit fields are stamped to modifiedBy.
func (s *Store) Rename(oldLogin, newLogin, modifiedBy string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[oldLogin]
	if !ok {
		return nil, notFound(oldLogin)
	}
	if _, taken := s.users[newLogin]; taken {
		return nil, oops.Code(CodeLoginAlreadyExists).
			With("login", newLogin).
			Errorf("login %q already exists", newLogin)
	}

	delete(s.users, oldLogin)
	u.Login = newLogin
	u.ModifiedOn = time.Now()
	u.ModifiedBy = modifiedBy
	s.users[newLogin] = u
	return copyUser(u), nil
}

// Mutate applies updateFn to the record for login and stamps the audit
// fields. updateFn must not change Login; use Rename for that.
func (s *Store) Mutate(login, modifiedBy string, updateFn func(*User)) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[login]
	if !ok {
		return nil, notFound(login)
	}
	updateFn(u)
	u.ModifiedOn = time.Now()
	u.ModifiedBy = modifiedBy
	return copyUser(u), nil
}

// SoftDelete marks the record revoked. The record remains and its login stays
// reserved until hard-deleted.
func (s *Store) SoftDelete(login, revokedBy string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[login]
	if !ok {
		return nil, notFound(login)
	}
	now := time.Now()
	u.RevokedOn = &now
	u.RevokedBy = revokedBy
	u.ModifiedOn = now
	u.ModifiedBy = revokedBy
	return copyUser(u), nil
}

// Restore clears the revoked state.
func (s *Store) Restore(login, modifiedBy string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[login]
	if !ok {
		return nil, notFound(login)
	}
	u.RevokedOn = nil
	u.RevokedBy = ""
	u.ModifiedOn = time.Now()
	u.ModifiedBy = modifiedBy
	return copyUser(u), nil
}

// HardDelete permanently removes the record, freeing its login for reuse.
func (s *Store) HardDelete(login string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[login]; !ok {
		return notFound(login)
	}
	delete(s.users, login)
	return nil
}

// ListActive returns a snapshot of all non-revoked records ordered by
// CreatedOn ascending.
func (s *Store) ListActive() []User {
	return s.list(func(u *User) bool { return u.IsActive() })
}

// ListAll returns a snapshot of every record, revoked included, ordered by
// CreatedOn ascending.
func (s *Store) ListAll() []User {
	return s.list(func(*User) bool { return true })
}

// ListOlderThan returns a snapshot of records whose birthday is at least age
// years in the past, ordered by CreatedOn ascending. Records without a
// birthday are excluded.
func (s *Store) ListOlderThan(age int) []User {
	cutoff := time.Now().AddDate(-age, 0, 0)
	return s.list(func(u *User) bool {
		return u.Birthday != nil && !u.Birthday.After(cutoff)
	})
}

// Len returns the number of records, revoked included.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

// list copies matching records under the read lock so the snapshot is
// isolated from later mutation of the live store.
func (s *Store) list(match func(*User) bool) []User {
	s.mu.RLock()
	out := make([]User, 0, len(s.users))
	for _, u := range s.users {
		if match(u) {
			out = append(out, *copyUser(u))
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedOn.Equal(out[j].CreatedOn) {
			return out[i].Login < out[j].Login
		}
		return out[i].CreatedOn.Before(out[j].CreatedOn)
	})
	return out
}

func notFound(login string) error {
	return oops.Code(CodeUserNotFound).
		With("login", login).
		Errorf("user %q not found", login)
}

// copyUser deep-copies a record, including the pointer-typed date fields.
func copyUser(u *User) *User {
	c := *u
	if u.Birthday != nil {
		b := *u.Birthday
		c.Birthday = &b
	}
	if u.RevokedOn != nil {
		r := *u.RevokedOn
		c.RevokedOn = &r
	}
	return &c
}
