package usecase

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	authdomain "agendamail-backend/internal/auth/domain"
	authdto "agendamail-backend/internal/auth/dto"
	"agendamail-backend/internal/auth/repository"
	"agendamail-backend/pkg/apperrors"
	"agendamail-backend/pkg/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	providerEmail  = "email"
	providerGoogle = "google"

	googleTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo?id_token="
)

// authUsecase implements AuthUsecase
type authUsecase struct {
	userRepo repository.UserRepository
	config   *config.Config
}

func NewAuthUsecase(userRepo repository.UserRepository, cfg *config.Config) AuthUsecase {
	return &authUsecase{
		userRepo: userRepo,
		config:   cfg,
	}
}

func (u *authUsecase) Login(req *authdto.LoginRequest) (*authdto.TokenResponse, error) {
	user, err := u.userRepo.FindByEmail(req.Email)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	if user == nil {
		return nil, apperrors.Auth("invalid email or password")
	}
	if user.Provider != providerEmail {
		return nil, apperrors.Auth("please use Google Sign-In for this account")
	}
	if !repository.CheckPasswordHash(req.Password, user.Password) {
		return nil, apperrors.Auth("invalid email or password")
	}

	return u.issueTokens(user)
}

func (u *authUsecase) Register(req *authdto.RegisterRequest) (*authdto.TokenResponse, error) {
	existing, err := u.userRepo.FindByEmail(req.Email)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	if existing != nil {
		return nil, apperrors.Validation("email already registered")
	}

	hashed, err := repository.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &authdomain.User{
		Email:    req.Email,
		Password: hashed,
		Name:     req.Name,
		Provider: providerEmail,
	}
	if err := u.userRepo.Create(user); err != nil {
		return nil, apperrors.Storage(err)
	}

	return u.issueTokens(user)
}

// googleTokenInfo is the subset of Google's tokeninfo response the sign-in
// flow needs. EmailVerified arrives as the string "true"/"false".
type googleTokenInfo struct {
	Email         string `json:"email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	EmailVerified string `json:"email_verified"`
}

func (u *authUsecase) GoogleSignIn(idToken string) (*authdto.TokenResponse, error) {
	info, err := verifyGoogleIDToken(idToken)
	if err != nil {
		return nil, err
	}

	user, err := u.userRepo.FindByEmail(info.Email)
	if err != nil {
		return nil, apperrors.Storage(err)
	}

	if user == nil {
		user = &authdomain.User{
			Email:     info.Email,
			Name:      info.Name,
			AvatarURL: info.Picture,
			Provider:  providerGoogle,
		}
		if err := u.userRepo.Create(user); err != nil {
			return nil, apperrors.Storage(err)
		}
	} else {
		// Refresh profile data Google may have changed since last sign-in
		user.Name = info.Name
		user.AvatarURL = info.Picture
		if err := u.userRepo.Update(user); err != nil {
			return nil, apperrors.Storage(err)
		}
	}

	return u.issueTokens(user)
}

func verifyGoogleIDToken(idToken string) (*googleTokenInfo, error) {
	resp, err := http.Get(googleTokenInfoURL + idToken)
	if err != nil {
		return nil, apperrors.Upstream("unable to reach Google token verification", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.Auth("google token was rejected")
	}

	var info googleTokenInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, apperrors.Upstream("unable to decode Google token info", err)
	}
	if info.EmailVerified != "true" {
		return nil, apperrors.Auth("google email is not verified")
	}
	return &info, nil
}

func (u *authUsecase) RefreshToken(refreshToken string) (*authdto.TokenResponse, error) {
	claims, err := u.parseToken(refreshToken)
	if err != nil {
		return nil, err
	}

	stored, err := u.userRepo.FindRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	if stored == nil || stored.ExpiresAt.Before(time.Now()) {
		return nil, apperrors.Auth("refresh token expired")
	}

	user, err := u.userForClaims(claims)
	if err != nil {
		return nil, err
	}

	return u.issueTokens(user)
}

func (u *authUsecase) Logout(refreshToken string) error {
	if err := u.userRepo.DeleteRefreshToken(refreshToken); err != nil {
		return apperrors.Storage(err)
	}
	return nil
}

func (u *authUsecase) ValidateToken(tokenString string) (*authdomain.User, error) {
	claims, err := u.parseToken(tokenString)
	if err != nil {
		return nil, err
	}
	return u.userForClaims(claims)
}

// parseToken verifies the HS256 signature and standard claims (exp included)
// and returns the claim map
func (u *authUsecase) parseToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(u.config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, apperrors.Auth("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apperrors.Auth("invalid token claims")
	}
	return claims, nil
}

func (u *authUsecase) userForClaims(claims jwt.MapClaims) (*authdomain.User, error) {
	userID, ok := claims["user_id"].(string)
	if !ok {
		return nil, apperrors.Auth("invalid token claims")
	}

	user, err := u.userRepo.FindByID(userID)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	if user == nil {
		return nil, apperrors.Auth("user not found")
	}
	return user, nil
}

// issueTokens signs a fresh access/refresh pair and persists the refresh
// token so it can be revoked on logout
func (u *authUsecase) issueTokens(user *authdomain.User) (*authdto.TokenResponse, error) {
	now := time.Now()

	accessToken, err := u.signToken(jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"exp":     now.Add(u.config.JWTAccessExpiry).Unix(),
		"iat":     now.Unix(),
	})
	if err != nil {
		return nil, fmt.Errorf("signing access token: %w", err)
	}

	refreshToken, err := u.signToken(jwt.MapClaims{
		"user_id":  user.ID,
		"token_id": uuid.New().String(),
		"exp":      now.Add(u.config.JWTRefreshExpiry).Unix(),
		"iat":      now.Unix(),
	})
	if err != nil {
		return nil, fmt.Errorf("signing refresh token: %w", err)
	}

	if err := u.userRepo.SaveRefreshToken(&authdomain.RefreshToken{
		Token:     refreshToken,
		UserID:    user.ID,
		ExpiresAt: now.Add(u.config.JWTRefreshExpiry),
	}); err != nil {
		return nil, apperrors.Storage(err)
	}

	return &authdto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
	}, nil
}

func (u *authUsecase) signToken(claims jwt.MapClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(u.config.JWTSecret))
}
