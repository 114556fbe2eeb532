package usecase

import (
	"errors"
	"testing"
	"time"

	accountdomain "agendamail-backend/internal/account/domain"
	"agendamail-backend/pkg/apperrors"
	"agendamail-backend/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAccountRepo struct {
	accounts map[string]*accountdomain.EmailAccount // keyed by ID

	deletedAccounts []string
	deletedLinks    []string
}

func newFakeAccountRepo(accounts ...*accountdomain.EmailAccount) *fakeAccountRepo {
	repo := &fakeAccountRepo{accounts: make(map[string]*accountdomain.EmailAccount)}
	for _, account := range accounts {
		repo.accounts[account.ID] = account
	}
	return repo
}

func (r *fakeAccountRepo) CreateAccount(account *accountdomain.EmailAccount) error {
	r.accounts[account.ID] = account
	return nil
}

func (r *fakeAccountRepo) FindAccountByID(userID, id string) (*accountdomain.EmailAccount, error) {
	account, ok := r.accounts[id]
	if !ok || account.UserID != userID {
		return nil, nil
	}
	return account, nil
}

func (r *fakeAccountRepo) FindAccountByEmail(userID, email string) (*accountdomain.EmailAccount, error) {
	for _, account := range r.accounts {
		if account.UserID == userID && account.Email == email {
			return account, nil
		}
	}
	return nil, nil
}

func (r *fakeAccountRepo) FindAccountByAddress(email string) (*accountdomain.EmailAccount, error) {
	for _, account := range r.accounts {
		if account.Email == email {
			return account, nil
		}
	}
	return nil, nil
}

func (r *fakeAccountRepo) ListAccountsByUser(userID string) ([]accountdomain.EmailAccount, error) {
	var out []accountdomain.EmailAccount
	for _, account := range r.accounts {
		if account.UserID == userID {
			out = append(out, *account)
		}
	}
	return out, nil
}

func (r *fakeAccountRepo) DeleteAccount(userID, id string) error {
	delete(r.accounts, id)
	r.deletedAccounts = append(r.deletedAccounts, id)
	return nil
}

func (r *fakeAccountRepo) SaveLink(link *accountdomain.AccountLink) error { return nil }

func (r *fakeAccountRepo) FindLink(userID, accountID, provider string) (*accountdomain.AccountLink, error) {
	return nil, nil
}

func (r *fakeAccountRepo) UpdateLinkTokens(userID, linkID, accessToken, refreshToken string, expiry time.Time) error {
	return nil
}

func (r *fakeAccountRepo) DeleteLinksByAccount(userID, accountID string) error {
	r.deletedLinks = append(r.deletedLinks, accountID)
	return nil
}

type recordingCleaner struct {
	calls [][2]string
	err   error
}

func (c *recordingCleaner) DeleteByAccount(userID, accountID string) error {
	c.calls = append(c.calls, [2]string{userID, accountID})
	return c.err
}

func TestUnlinkAccountCleansAgenda(t *testing.T) {
	repo := newFakeAccountRepo(&accountdomain.EmailAccount{
		ID:     "acc-1",
		UserID: "user-1",
		Email:  "me@example.com",
	})
	cleaner := &recordingCleaner{}

	uc := NewAccountUsecase(repo, &config.Config{})
	uc.SetAgendaCleaner(cleaner)

	require.NoError(t, uc.UnlinkAccount("user-1", "acc-1"))

	require.Len(t, cleaner.calls, 1)
	assert.Equal(t, [2]string{"user-1", "acc-1"}, cleaner.calls[0])
	assert.Equal(t, []string{"acc-1"}, repo.deletedLinks)
	assert.Equal(t, []string{"acc-1"}, repo.deletedAccounts)
}

func TestUnlinkAccountNotFound(t *testing.T) {
	cleaner := &recordingCleaner{}
	uc := NewAccountUsecase(newFakeAccountRepo(), &config.Config{})
	uc.SetAgendaCleaner(cleaner)

	err := uc.UnlinkAccount("user-1", "missing")
	require.Error(t, err)

	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.KindNotFound, appErr.Kind)
	assert.Empty(t, cleaner.calls)
}

func TestUnlinkAccountCleanerFailureKeepsAccount(t *testing.T) {
	repo := newFakeAccountRepo(&accountdomain.EmailAccount{
		ID:     "acc-1",
		UserID: "user-1",
		Email:  "me@example.com",
	})
	cleaner := &recordingCleaner{err: errors.New("db down")}

	uc := NewAccountUsecase(repo, &config.Config{})
	uc.SetAgendaCleaner(cleaner)

	err := uc.UnlinkAccount("user-1", "acc-1")
	require.Error(t, err)

	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.KindStorage, appErr.Kind)
	assert.Empty(t, repo.deletedLinks)
	assert.Empty(t, repo.deletedAccounts)
}
