package usecase

import (
	"fmt"
	"testing"
	"time"

	authdomain "agendamail-backend/internal/auth/domain"
	authdto "agendamail-backend/internal/auth/dto"
	"agendamail-backend/pkg/apperrors"
	"agendamail-backend/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	users  map[string]*authdomain.User // keyed by email
	tokens map[string]*authdomain.RefreshToken
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:  make(map[string]*authdomain.User),
		tokens: make(map[string]*authdomain.RefreshToken),
	}
}

func (r *fakeUserRepo) Create(user *authdomain.User) error {
	r.nextID++
	user.ID = fmt.Sprintf("user-%d", r.nextID)
	r.users[user.Email] = user
	return nil
}

func (r *fakeUserRepo) FindByEmail(email string) (*authdomain.User, error) {
	return r.users[email], nil
}

func (r *fakeUserRepo) FindByID(id string) (*authdomain.User, error) {
	for _, user := range r.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) Update(user *authdomain.User) error {
	r.users[user.Email] = user
	return nil
}

func (r *fakeUserRepo) SaveRefreshToken(token *authdomain.RefreshToken) error {
	r.tokens[token.Token] = token
	return nil
}

func (r *fakeUserRepo) FindRefreshToken(token string) (*authdomain.RefreshToken, error) {
	return r.tokens[token], nil
}

func (r *fakeUserRepo) DeleteRefreshToken(token string) error {
	delete(r.tokens, token)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:        "test-secret",
		JWTAccessExpiry:  15 * time.Minute,
		JWTRefreshExpiry: time.Hour,
	}
}

func register(t *testing.T, uc AuthUsecase, email, password string) *authdto.TokenResponse {
	t.Helper()
	resp, err := uc.Register(&authdto.RegisterRequest{
		Email:    email,
		Password: password,
		Name:     "Test User",
	})
	require.NoError(t, err)
	return resp
}

func assertErrKind(t *testing.T, err error, kind apperrors.Kind) {
	t.Helper()
	require.Error(t, err)
	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, kind, appErr.Kind)
}

func TestLoginFailures(t *testing.T) {
	repo := newFakeUserRepo()
	uc := NewAuthUsecase(repo, testConfig())
	register(t, uc, "me@example.com", "secret-pass")

	repo.users["google@example.com"] = &authdomain.User{
		ID:       "user-google",
		Email:    "google@example.com",
		Provider: providerGoogle,
	}

	t.Run("unknown email", func(t *testing.T) {
		_, err := uc.Login(&authdto.LoginRequest{Email: "nobody@example.com", Password: "secret-pass"})
		assertErrKind(t, err, apperrors.KindAuth)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := uc.Login(&authdto.LoginRequest{Email: "me@example.com", Password: "wrong"})
		assertErrKind(t, err, apperrors.KindAuth)
	})

	t.Run("google account has no password login", func(t *testing.T) {
		_, err := uc.Login(&authdto.LoginRequest{Email: "google@example.com", Password: "anything"})
		assertErrKind(t, err, apperrors.KindAuth)
		assert.Contains(t, err.Error(), "Google Sign-In")
	})
}

func TestLoginSuccess(t *testing.T) {
	uc := NewAuthUsecase(newFakeUserRepo(), testConfig())
	register(t, uc, "me@example.com", "secret-pass")

	resp, err := uc.Login(&authdto.LoginRequest{Email: "me@example.com", Password: "secret-pass"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "me@example.com", resp.User.Email)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	uc := NewAuthUsecase(newFakeUserRepo(), testConfig())
	register(t, uc, "me@example.com", "secret-pass")

	_, err := uc.Register(&authdto.RegisterRequest{
		Email:    "me@example.com",
		Password: "other-pass",
		Name:     "Someone Else",
	})
	assertErrKind(t, err, apperrors.KindValidation)
}

func TestValidateTokenRoundTrip(t *testing.T) {
	uc := NewAuthUsecase(newFakeUserRepo(), testConfig())
	resp := register(t, uc, "me@example.com", "secret-pass")

	user, err := uc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, user.ID)
	assert.Equal(t, "me@example.com", user.Email)
}

func TestValidateTokenGarbage(t *testing.T) {
	uc := NewAuthUsecase(newFakeUserRepo(), testConfig())
	_, err := uc.ValidateToken("not-a-jwt")
	assertErrKind(t, err, apperrors.KindAuth)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	repo := newFakeUserRepo()
	issuer := NewAuthUsecase(repo, testConfig())
	resp := register(t, issuer, "me@example.com", "secret-pass")

	other := NewAuthUsecase(repo, &config.Config{
		JWTSecret:        "different-secret",
		JWTAccessExpiry:  15 * time.Minute,
		JWTRefreshExpiry: time.Hour,
	})
	_, err := other.ValidateToken(resp.AccessToken)
	assertErrKind(t, err, apperrors.KindAuth)
}

func TestRefreshTokenRotation(t *testing.T) {
	uc := NewAuthUsecase(newFakeUserRepo(), testConfig())
	resp := register(t, uc, "me@example.com", "secret-pass")

	rotated, err := uc.RefreshToken(resp.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, rotated.AccessToken)
	assert.Equal(t, resp.User.ID, rotated.User.ID)
}

func TestRefreshTokenRevokedByLogout(t *testing.T) {
	uc := NewAuthUsecase(newFakeUserRepo(), testConfig())
	resp := register(t, uc, "me@example.com", "secret-pass")

	require.NoError(t, uc.Logout(resp.RefreshToken))

	_, err := uc.RefreshToken(resp.RefreshToken)
	assertErrKind(t, err, apperrors.KindAuth)
}
