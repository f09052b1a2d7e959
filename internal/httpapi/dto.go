// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Userdir Contributors

package httpapi

import (
	"time"

	"github.com/userdir/userdir/internal/directory"
)

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type createUserRequest struct {
	Login    string     `json:"login"`
	Password string     `json:"password"`
	Name     string     `json:"name"`
	Gender   int        `json:"gender"`
	Birthday *time.Time `json:"birthday,omitempty"`
	Admin    bool       `json:"admin"`
}

type createUserResponse struct {
	ID    string `json:"id"`
	Login string `json:"login"`
}

type updateUserRequest struct {
	Name     *string    `json:"name,omitempty"`
	Gender   *int       `json:"gender,omitempty"`
	Birthday *time.Time `json:"birthday,omitempty"`
}

type updatePasswordRequest struct {
	NewPassword string `json:"newPassword"`
}

type updateLoginRequest struct {
	NewLogin string `json:"newLogin"`
}

type updateLoginResponse struct {
	OldLogin string `json:"oldLogin"`
	NewLogin string `json:"newLogin"`
}

// profileResponse is the self view: no audit fields.
type profileResponse struct {
	Name     string     `json:"name"`
	Gender   string     `json:"gender"`
	Birthday *time.Time `json:"birthday,omitempty"`
	IsActive bool       `json:"isActive"`
}

// adminUserResponse is the administrator view including audit fields.
type adminUserResponse struct {
	ID         string     `json:"id"`
	Login      string     `json:"login"`
	Name       string     `json:"name"`
	Gender     string     `json:"gender"`
	Birthday   *time.Time `json:"birthday,omitempty"`
	IsActive   bool       `json:"isActive"`
	CreatedOn  time.Time  `json:"createdOn"`
	CreatedBy  string     `json:"createdBy"`
	ModifiedOn time.Time  `json:"modifiedOn"`
	ModifiedBy string     `json:"modifiedBy"`
	RevokedOn  *time.Time `json:"revokedOn,omitempty"`
	RevokedBy  string     `json:"revokedBy,omitempty"`
}

type pageResponse struct {
	Data       []adminUserResponse `json:"data"`
	Page       int                 `json:"page"`
	PageSize   int                 `json:"pageSize"`
	TotalCount int                 `json:"totalCount"`
	TotalPages int                 `json:"totalPages"`
}

func toProfileResponse(u *directory.User) profileResponse {
	return profileResponse{
		Name:     u.Name,
		Gender:   u.Gender.String(),
		Birthday: u.Birthday,
		IsActive: u.IsActive(),
	}
}

func toAdminResponse(u *directory.User) adminUserResponse {
	return adminUserResponse{
		ID:         u.ID.String(),
		Login:      u.Login,
		Name:       u.Name,
		Gender:     u.Gender.String(),
		Birthday:   u.Birthday,
		IsActive:   u.IsActive(),
		CreatedOn:  u.CreatedOn,
		CreatedBy:  u.CreatedBy,
		ModifiedOn: u.ModifiedOn,
		ModifiedBy: u.ModifiedBy,
		RevokedOn:  u.RevokedOn,
		RevokedBy:  u.RevokedBy,
	}
}

func toPageResponse(page directory.PaginatedResult) pageResponse {
	data := make([]adminUserResponse, len(page.Items))
	for i := range page.Items {
		data[i] = toAdminResponse(&page.Items[i])
	}
	return pageResponse{
		Data:       data,
		Page:       page.PageNumber,
		PageSize:   page.PageSize,
		TotalCount: page.TotalCount,
		TotalPages: page.TotalPages,
	}
}
