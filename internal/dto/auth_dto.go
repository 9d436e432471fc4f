package dto

import "github.com/noah-isme/resto-dashboard/internal/models"

// LoginRequest is the payload of POST /login.
type LoginRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}

// RegisterRequest is the payload of POST /register.
type RegisterRequest struct {
	Name     string `json:"name" form:"name" validate:"required"`
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}

// SessionResponse describes who is signed in.
type SessionResponse struct {
	Authenticated bool         `json:"authenticated"`
	User          *models.User `json:"user,omitempty"`
	Initial       string       `json:"initial"`
	Redirect      string       `json:"redirect,omitempty"`
}
