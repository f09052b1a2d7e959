// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Userdir Contributors

package directory

import "github.com/samber/oops"

// Policy decides whether an actor may perform an operation against a target.
// Decisions are pure functions of (actor, target); there is no hidden state.
//
// Precedence, matching the rule order the service relies on:
//  1. no resolved actor                  → AUTHENTICATION_REQUIRED
//  2. revoked actor (active-actor ops)   → ACCOUNT_INACTIVE
//  3. admin-only operations              → ADMIN_ACCESS_REQUIRED
//  4. self-or-admin operations           → ACCOUNT_UPDATE_FORBIDDEN
//
// The self-or-admin rule is admin OR (self AND target active); it does not
// route through the active-actor check.
type Policy struct{}

// RequireActor fails unless an actor was resolved.
func (Policy) RequireActor(actor *User) error {
	if actor == nil {
		return oops.Code(CodeAuthenticationRequired).
			Errorf("authentication required")
	}
	return nil
}

// RequireActiveActor fails unless an actor was resolved and is not revoked.
func (p Policy) RequireActiveActor(actor *User) error {
	if err := p.RequireActor(actor); err != nil {
		return err
	}
	if !actor.IsActive() {
		return oops.Code(CodeAccountInactive).
			With("actor", actor.Login).
			Errorf("your account is inactive")
	}
	return nil
}

// RequireAdmin gates admin-only operations: create admin user, list-all,
// list-by-age, get-any-by-login, delete, restore.
func (p Policy) RequireAdmin(actor *User) error {
	if err := p.RequireActiveActor(actor); err != nil {
		return err
	}
	if !actor.Admin {
		return oops.Code(CodeAdminAccessRequired).
			With("actor", actor.Login).
			Errorf("admin access required")
	}
	return nil
}

// RequireSelfOrAdmin gates profile, password, and login updates: the actor
// must be an admin, or be the target itself while the target is active. A
// revoked non-admin touching their own account fails the self branch (the
// target is the revoked record) and is forbidden, not reported inactive.
func (p Policy) RequireSelfOrAdmin(actor, target *User) error {
	if err := p.RequireActor(actor); err != nil {
		return err
	}
	if actor.Admin {
		return nil
	}
	if actor.Login == target.Login && target.IsActive() {
		return nil
	}
	return oops.Code(CodeAccountUpdateForbidden).
		With("actor", actor.Login).
		With("target", target.Login).
		Errorf("you can only update your own active account")
}
