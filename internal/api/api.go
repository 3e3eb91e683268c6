// Package api holds the request and response shapes shared by the gRPC and
// HTTP transports and the client, plus their input validation.
package api

import (
	"strings"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

const (
	ServiceName = "authkeeper.AuthService"

	MethodRegister = "/" + ServiceName + "/Register"
	MethodLogin    = "/" + ServiceName + "/Login"
	MethodMe       = "/" + ServiceName + "/Me"
	MethodPing     = "/" + ServiceName + "/Ping"
)

const MessageAccountCreated = "Account created successfully"

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,username"`
	Password string `json:"password" validate:"required,min=8"`
}

// Normalize trims surrounding whitespace from the username.
func (r *RegisterRequest) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password"`
}

type MeRequest struct{}

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}

type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

func NewUserResponse(identity *models.Identity) UserResponse {
	return UserResponse{
		ID:        identity.ID,
		Email:     identity.Email,
		Username:  identity.Username,
		CreatedAt: identity.CreatedAt,
	}
}

type RegisterResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	// ExpiresIn is the token lifetime in seconds.
	ExpiresIn int64 `json:"expires_in"`
}

type ErrorResponse struct {
	Detail string `json:"detail"`
}
