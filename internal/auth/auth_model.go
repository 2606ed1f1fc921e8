package auth

import "github.com/JayPadhiyar-42/scorepact/internal/user"

const DefaultUserRole = "player"

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=30"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	AccessToken string     `json:"access_token"`
	User        *user.User `json:"user"`
}
