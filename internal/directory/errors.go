// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Userdir Contributors

package directory

// Error codes attached to oops errors raised by this package. Boundaries map
// these to their own status vocabulary; the core never maps them itself.
const (
	CodeValidationFailed       = "VALIDATION_FAILED"
	CodeLoginAlreadyExists     = "LOGIN_ALREADY_EXISTS"
	CodeUserNotFound           = "USER_NOT_FOUND"
	CodeAuthenticationRequired = "AUTHENTICATION_REQUIRED"
	CodeAccountInactive        = "ACCOUNT_INACTIVE"
	CodeAdminAccessRequired    = "ADMIN_ACCESS_REQUIRED"
	CodeAccountUpdateForbidden = "ACCOUNT_UPDATE_FORBIDDEN"
	CodeAuthenticationFailed   = "AUTHENTICATION_FAILED"
	CodeCacheIntegrity         = "CACHE_INTEGRITY"
)

// authenticationFailedMessage is deliberately uninformative about whether the
// login or the password was wrong, to avoid login enumeration.
const authenticationFailedMessage = "invalid login or password"
