package usecase

import (
	"context"
	"fmt"
	"time"

	accountdomain "agendamail-backend/internal/account/domain"
	"agendamail-backend/internal/account/repository"
	"agendamail-backend/pkg/apperrors"
	"agendamail-backend/pkg/config"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

const providerGoogle = "google"

// accountUsecase implements AccountUsecase
type accountUsecase struct {
	accountRepo   repository.AccountRepository
	agendaCleaner AgendaCleaner
	config        *config.Config
	oauthConfig   *oauth2.Config
}

func NewAccountUsecase(accountRepo repository.AccountRepository, cfg *config.Config) AccountUsecase {
	return &accountUsecase{
		accountRepo: accountRepo,
		config:      cfg,
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURI,
			Endpoint:     google.Endpoint,
			Scopes: []string{
				"https://www.googleapis.com/auth/gmail.modify",
				"https://www.googleapis.com/auth/calendar.readonly",
				"https://www.googleapis.com/auth/userinfo.email",
			},
		},
	}
}

func (u *accountUsecase) LinkAccount(ctx context.Context, userID, authCode string) (*accountdomain.EmailAccount, error) {
	token, err := u.oauthConfig.Exchange(ctx, authCode)
	if err != nil {
		return nil, apperrors.Upstream("failed to exchange authorization code", err)
	}

	email, err := u.fetchProfileEmail(ctx, token)
	if err != nil {
		return nil, err
	}

	// Re-linking an existing mailbox just refreshes its credential
	account, err := u.accountRepo.FindAccountByEmail(userID, email)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	if account == nil {
		account = &accountdomain.EmailAccount{
			UserID: userID,
			Email:  email,
		}
		if err := u.accountRepo.CreateAccount(account); err != nil {
			return nil, apperrors.Storage(err)
		}
	}

	link := &accountdomain.AccountLink{
		UserID:         userID,
		EmailAccountID: account.ID,
		Provider:       providerGoogle,
		AccessToken:    token.AccessToken,
		RefreshToken:   token.RefreshToken,
		TokenExpiry:    token.Expiry,
	}
	if err := u.accountRepo.SaveLink(link); err != nil {
		return nil, apperrors.Storage(err)
	}

	return account, nil
}

func (u *accountUsecase) fetchProfileEmail(ctx context.Context, token *oauth2.Token) (string, error) {
	client := u.oauthConfig.Client(ctx, token)
	svc, err := oauth2api.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return "", apperrors.Upstream("unable to create userinfo service", err)
	}

	info, err := svc.Userinfo.Get().Do()
	if err != nil {
		return "", apperrors.Upstream("unable to fetch Google profile", err)
	}
	if info.Email == "" {
		return "", apperrors.Upstream("google profile has no email", nil)
	}
	return info.Email, nil
}

func (u *accountUsecase) ListAccounts(userID string) ([]accountdomain.EmailAccount, error) {
	accounts, err := u.accountRepo.ListAccountsByUser(userID)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	return accounts, nil
}

// SetAgendaCleaner allows wiring agenda cleanup after creation
func (u *accountUsecase) SetAgendaCleaner(cleaner AgendaCleaner) {
	u.agendaCleaner = cleaner
}

func (u *accountUsecase) UnlinkAccount(userID, accountID string) error {
	account, err := u.accountRepo.FindAccountByID(userID, accountID)
	if err != nil {
		return apperrors.Storage(err)
	}
	if account == nil {
		return apperrors.NotFound("account not found")
	}

	// Agenda rows derived from this mailbox go first, so a failure here
	// never strands them behind a deleted account
	if u.agendaCleaner != nil {
		if err := u.agendaCleaner.DeleteByAccount(userID, accountID); err != nil {
			return apperrors.Storage(err)
		}
	}
	if err := u.accountRepo.DeleteLinksByAccount(userID, accountID); err != nil {
		return apperrors.Storage(err)
	}
	if err := u.accountRepo.DeleteAccount(userID, accountID); err != nil {
		return apperrors.Storage(err)
	}
	return nil
}

func (u *accountUsecase) PrimaryAccount(userID, sessionEmail string) (string, error) {
	accounts, err := u.accountRepo.ListAccountsByUser(userID)
	if err != nil {
		return "", apperrors.Storage(err)
	}
	return ResolvePrimary(accounts, sessionEmail)
}

func (u *accountUsecase) RedirectToApp(userID, sessionEmail string) (string, error) {
	accountID, err := u.PrimaryAccount(userID, sessionEmail)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s?account=%s", u.config.AppHomePath, accountID), nil
}

func (u *accountUsecase) Credentials(userID, accountID string) (string, string, accountdomain.TokenUpdateFunc, error) {
	link, err := u.accountRepo.FindLink(userID, accountID, providerGoogle)
	if err != nil {
		return "", "", nil, apperrors.Storage(err)
	}
	if link == nil || link.AccessToken == "" {
		return "", "", nil, apperrors.Auth("missing google credential, please reconnect the account")
	}

	linkID := link.ID
	onRefresh := func(token *oauth2.Token) error {
		expiry := token.Expiry
		if expiry.IsZero() {
			expiry = time.Now().Add(time.Hour)
		}
		return u.accountRepo.UpdateLinkTokens(userID, linkID, token.AccessToken, token.RefreshToken, expiry)
	}

	return link.AccessToken, link.RefreshToken, onRefresh, nil
}

func (u *accountUsecase) AccountByAddress(email string) (*accountdomain.EmailAccount, error) {
	account, err := u.accountRepo.FindAccountByAddress(email)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	return account, nil
}
