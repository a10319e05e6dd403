package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// UserRole tags the account type resolved at login. The role is an explicit
// enum carried in the token; handlers never infer it from record shape.
type UserRole string

const (
	RoleLecturer UserRole = "lecturer"
	RoleStudent  UserRole = "student"
)

// Principal is the credential lookup result: one account, one tagged role.
type Principal struct {
	ID           int64
	Name         string
	Email        string
	Role         UserRole
	PasswordHash string
}

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the issued token and tagged identity.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int64     `json:"expires_in"`
	Role        UserRole  `json:"role"`
	Email       string    `json:"email"`
	IssuedAt    time.Time `json:"issued_at"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID int64    `json:"user_id"`
	Role   UserRole `json:"role"`
	Email  string   `json:"email"`
	jwt.RegisteredClaims
}
