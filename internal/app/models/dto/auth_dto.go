package dto

import "github.com/yigit/edustay/internal/app/models"

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest represents a user registration request.
// Role defaults to STUDENT when omitted.
type RegisterRequest struct {
	Name        string  `json:"name" binding:"required,max=255"`
	Email       string  `json:"email" binding:"required,email"`
	Password    string  `json:"password" binding:"required,min=6"`
	Phone       *string `json:"phone" binding:"omitempty,max=50"`
	Nationality *string `json:"nationality" binding:"omitempty,max=100"`
	Role        string  `json:"role" example:"STUDENT" enums:"STUDENT,INSTRUCTOR,HOMEOWNER"`
}

// RefreshTokenRequest represents refresh token request
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken           string `json:"accessToken"`
	TokenType             string `json:"tokenType" example:"Bearer"`
	ExpiresIn             int64  `json:"expiresIn"`
	RefreshToken          string `json:"refreshToken,omitempty"`
	RefreshTokenExpiresIn int64  `json:"refreshTokenExpiresIn,omitempty"`
}

// UserResponse is a user without credentials
type UserResponse struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Email       string          `json:"email"`
	Phone       *string         `json:"phone,omitempty"`
	Nationality *string         `json:"nationality,omitempty"`
	Role        models.RoleType `json:"role"`
}

// NewUserResponse strips the password hash from a user
func NewUserResponse(user *models.User) UserResponse {
	return UserResponse{
		ID:          user.ID,
		Name:        user.Name,
		Email:       user.Email,
		Phone:       user.Phone,
		Nationality: user.Nationality,
		Role:        user.RoleType,
	}
}

// AuthResponse represents successful authentication response
type AuthResponse struct {
	Token TokenResponse `json:"token"`
	User  UserResponse  `json:"user"`
}

// LogoutRequest names the refresh token to revoke; an empty token revokes every session
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}
