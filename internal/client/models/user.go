package models

import "strings"

// User is the profile returned by /auth/me and cached locally.
type User struct {
	ID       int64  `json:"id,omitempty"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	UserType string `json:"userType,omitempty"`
	Crop     string `json:"crop,omitempty"`
	Location string `json:"location,omitempty"`
	State    string `json:"state,omitempty"`
	District string `json:"district,omitempty"`
	Village  string `json:"village,omitempty"`
	IsActive *bool  `json:"is_active,omitempty"`
}

// DisplayName is the name shown in prompts: Name, else the email local part.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if n := strings.TrimSpace(u.Name); n != "" {
		return n
	}
	local, _, _ := strings.Cut(u.Email, "@")
	return local
}

// IsAdmin reports whether the account type is admin.
func (u *User) IsAdmin() bool {
	return u != nil && strings.EqualFold(u.UserType, "admin")
}

// AuthResponse is returned by login, admin-login and signup. Signup may
// omit the token, in which case the user must log in explicitly.
type AuthResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
	Message     string `json:"message,omitempty"`
	User        *User  `json:"user,omitempty"`
}

// LoginRequest is the body of POST /auth/login and /auth/admin-login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SignupRequest is the body of POST /auth/signup.
type SignupRequest struct {
	Name     string `json:"name" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Phone    string `json:"phone,omitempty" validate:"omitempty,max=20"`
	UserType string `json:"userType" validate:"required,oneof=farmer buyer expert admin"`
	Crop     string `json:"crop,omitempty"`
	Location string `json:"location,omitempty"`
}

// ProfileUpdate is the body of PATCH /auth/profile. Nil fields are left
// unchanged by the backend.
type ProfileUpdate struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,max=20"`
	Crop     *string `json:"crop,omitempty"`
	Location *string `json:"location,omitempty"`
	State    *string `json:"state,omitempty"`
	District *string `json:"district,omitempty"`
	Village  *string `json:"village,omitempty"`
}

// Empty reports whether the update changes nothing.
func (p ProfileUpdate) Empty() bool {
	return p.Name == nil && p.Phone == nil && p.Crop == nil && p.Location == nil &&
		p.State == nil && p.District == nil && p.Village == nil
}
