// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Userdir Contributors

package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/userdir/userdir/internal/directory"
	"github.com/userdir/userdir/pkg/errutil"
)

// errorResponse is the JSON body of every failed request.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// statusForCode maps domain error codes to HTTP status codes. The core never
// does this mapping itself.
func statusForCode(code string) int {
	switch code {
	case directory.CodeValidationFailed:
		return http.StatusBadRequest
	case directory.CodeLoginAlreadyExists:
		return http.StatusConflict
	case directory.CodeUserNotFound:
		return http.StatusNotFound
	case directory.CodeAuthenticationRequired,
		directory.CodeAccountInactive,
		directory.CodeAuthenticationFailed:
		return http.StatusUnauthorized
	case directory.CodeAdminAccessRequired,
		directory.CodeAccountUpdateForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps a domain error to its HTTP status and writes the JSON
// error body. Internal errors are logged but surfaced without detail.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errutil.Code(err)
	status := statusForCode(code)

	msg := err.Error()
	if status == http.StatusInternalServerError {
		errutil.LogError(s.logger, "internal error", err)
		msg = "internal error"
	}

	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	//nolint:errcheck // response write error means the client went away
	json.NewEncoder(w).Encode(body)
}
