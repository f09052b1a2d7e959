// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Userdir Contributors

package httpapi

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/samber/oops"

	"github.com/userdir/userdir/internal/directory"
)

// actorKey carries the resolved actor login through the request context.
type actorKey struct{}

// actorLogin returns the actor login resolved by withActor, or "" when the
// request carried no credentials.
func actorLogin(ctx context.Context) string {
	login, _ := ctx.Value(actorKey{}).(string)
	return login
}

// withActor resolves "who is calling" from the Authorization header before
// any handler runs. A missing header leaves the actor unresolved; the
// service's policy decides whether that is acceptable per operation. A header
// that is present but malformed or carries bad credentials is rejected here
// with 401.
func (s *Server) withActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}

		login, err := s.resolveActor(header)
		if err != nil {
			s.writeError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), actorKey{}, login)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// resolveActor maps an Authorization header to a login. Bearer tokens are
// verified by the token parser; Basic credentials go through the generic
// credential check so failures stay indistinguishable.
func (s *Server) resolveActor(header string) (string, error) {
	switch {
	case strings.HasPrefix(header, "Bearer "):
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		login, err := s.tokens.Parse(token)
		if err != nil {
			return "", oops.Code(directory.CodeAuthenticationRequired).
				Errorf("invalid session token")
		}
		return login, nil

	case strings.HasPrefix(header, "Basic "):
		encoded := strings.TrimSpace(strings.TrimPrefix(header, "Basic "))
		decoded, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return "", oops.Code(directory.CodeAuthenticationRequired).
				Errorf("invalid credentials format")
		}
		login, password, ok := strings.Cut(string(decoded), ":")
		if !ok {
			return "", oops.Code(directory.CodeAuthenticationRequired).
				Errorf("invalid credentials format")
		}
		u, err := s.svc.GetByCredentials(login, password)
		if err != nil {
			return "", err
		}
		return u.Login, nil

	default:
		return "", oops.Code(directory.CodeAuthenticationRequired).
			Errorf("unsupported authorization scheme")
	}
}
