// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Userdir Contributors

package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/samber/oops"

	"github.com/userdir/userdir/internal/directory"
)

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	token, err := s.svc.Authenticate(req.Login, req.Password)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: token})
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	u, err := s.svc.CreateUser(directory.CreateUserParams{
		Login:    req.Login,
		Password: req.Password,
		Name:     req.Name,
		Gender:   directory.Gender(req.Gender),
		Birthday: req.Birthday,
		Admin:    req.Admin,
	}, actorLogin(r.Context()))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, createUserResponse{ID: u.ID.String(), Login: u.Login})
}

func (s *Server) handleListActive(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.RequireAdminActor(actorLogin(r.Context())); err != nil {
		s.writeError(w, err)
		return
	}

	page, pageSize := pagination(r)
	writeJSON(w, http.StatusOK, toPageResponse(s.svc.ListActivePaginated(page, pageSize)))
}

func (s *Server) handleSelf(w http.ResponseWriter, r *http.Request) {
	u, err := s.svc.GetCurrentUser(actorLogin(r.Context()))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileResponse(u))
}

func (s *Server) handleListOlderThan(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.RequireAdminActor(actorLogin(r.Context())); err != nil {
		s.writeError(w, err)
		return
	}

	age, err := strconv.Atoi(r.PathValue("age"))
	if err != nil || age < 0 {
		s.writeError(w, oops.Code(directory.CodeValidationFailed).
			Errorf("age must be a non-negative integer"))
		return
	}

	page, pageSize := pagination(r)
	writeJSON(w, http.StatusOK, toPageResponse(s.svc.ListOlderThanPaginated(age, page, pageSize)))
}

func (s *Server) handleGetByLogin(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.RequireAdminActor(actorLogin(r.Context())); err != nil {
		s.writeError(w, err)
		return
	}

	u, err := s.svc.GetByLoginCached(r.PathValue("login"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAdminResponse(u))
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	var gender *directory.Gender
	if req.Gender != nil {
		g := directory.Gender(*req.Gender)
		gender = &g
	}

	u, err := s.svc.UpdateUser(r.PathValue("login"), directory.UpdateUserParams{
		Name:     req.Name,
		Gender:   gender,
		Birthday: req.Birthday,
	}, actorLogin(r.Context()))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileResponse(u))
}

func (s *Server) handleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	var req updatePasswordRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	if _, err := s.svc.UpdatePassword(r.PathValue("login"), req.NewPassword, actorLogin(r.Context())); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "password updated"})
}

func (s *Server) handleUpdateLogin(w http.ResponseWriter, r *http.Request) {
	var req updateLoginRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	oldLogin := r.PathValue("login")
	u, err := s.svc.UpdateLogin(oldLogin, req.NewLogin, actorLogin(r.Context()))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updateLoginResponse{OldLogin: oldLogin, NewLogin: u.Login})
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	soft := true
	if v := r.URL.Query().Get("soft"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			s.writeError(w, oops.Code(directory.CodeValidationFailed).
				Errorf("soft must be a boolean"))
			return
		}
		soft = parsed
	}

	if err := s.svc.DeleteUser(r.PathValue("login"), actorLogin(r.Context()), soft); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRestoreUser(w http.ResponseWriter, r *http.Request) {
	u, err := s.svc.RestoreUser(r.PathValue("login"), actorLogin(r.Context()))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileResponse(u))
}

// decodeBody decodes a JSON request body, mapping malformed input to a
// validation failure.
func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return oops.Code(directory.CodeValidationFailed).
			With("operation", "decode request body").
			Wrap(err)
	}
	return nil
}

// pagination reads page and pageSize query parameters; unparseable or absent
// values fall back to the service defaults.
func pagination(r *http.Request) (page, pageSize int) {
	page = 1
	pageSize = directory.DefaultPageSize

	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil {
		page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("pageSize")); err == nil {
		pageSize = v
	}
	return page, pageSize
}
