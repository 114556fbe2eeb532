package usecase

import (
	authdomain "agendamail-backend/internal/auth/domain"
	authdto "agendamail-backend/internal/auth/dto"
)

// AuthUsecase defines the authentication operations exposed to delivery
type AuthUsecase interface {
	Login(req *authdto.LoginRequest) (*authdto.TokenResponse, error)
	Register(req *authdto.RegisterRequest) (*authdto.TokenResponse, error)
	GoogleSignIn(idToken string) (*authdto.TokenResponse, error)
	RefreshToken(refreshToken string) (*authdto.TokenResponse, error)
	Logout(refreshToken string) error
	ValidateToken(tokenString string) (*authdomain.User, error)
}
