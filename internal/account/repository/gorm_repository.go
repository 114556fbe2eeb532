package repository

import (
	"errors"
	"time"

	accountdomain "agendamail-backend/internal/account/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// accountRepository implements AccountRepository using GORM
type accountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) CreateAccount(account *accountdomain.EmailAccount) error {
	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	account.CreatedAt = time.Now()
	account.UpdatedAt = time.Now()
	return r.db.Create(account).Error
}

func (r *accountRepository) FindAccountByID(userID, id string) (*accountdomain.EmailAccount, error) {
	var account accountdomain.EmailAccount
	err := r.db.Where("user_id = ? AND id = ?", userID, id).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) FindAccountByEmail(userID, email string) (*accountdomain.EmailAccount, error) {
	var account accountdomain.EmailAccount
	err := r.db.Where("user_id = ? AND email = ?", userID, email).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// FindAccountByAddress looks a mailbox up by address alone. Push
// notifications arrive keyed by email address, before any user scope exists.
func (r *accountRepository) FindAccountByAddress(email string) (*accountdomain.EmailAccount, error) {
	var account accountdomain.EmailAccount
	err := r.db.Where("email = ?", email).Order("created_at ASC, id ASC").First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// ListAccountsByUser returns accounts ordered by creation time with ID as
// tie-break, so the order is total and the primary-account selection stays
// deterministic across requests.
func (r *accountRepository) ListAccountsByUser(userID string) ([]accountdomain.EmailAccount, error) {
	var accounts []accountdomain.EmailAccount
	err := r.db.Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&accounts).Error
	return accounts, err
}

func (r *accountRepository) DeleteAccount(userID, id string) error {
	return r.db.Where("user_id = ? AND id = ?", userID, id).Delete(&accountdomain.EmailAccount{}).Error
}

// SaveLink inserts or replaces the credential for (account, provider) in a
// single conditional write.
func (r *accountRepository) SaveLink(link *accountdomain.AccountLink) error {
	if link.ID == "" {
		link.ID = uuid.New().String()
	}
	link.CreatedAt = time.Now()
	link.UpdatedAt = time.Now()
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "email_account_id"}, {Name: "provider"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"access_token", "refresh_token", "token_expiry", "updated_at",
		}),
	}).Create(link).Error
}

func (r *accountRepository) FindLink(userID, accountID, provider string) (*accountdomain.AccountLink, error) {
	var link accountdomain.AccountLink
	err := r.db.Where("user_id = ? AND email_account_id = ? AND provider = ?", userID, accountID, provider).First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &link, nil
}

func (r *accountRepository) UpdateLinkTokens(userID, linkID, accessToken, refreshToken string, expiry time.Time) error {
	updates := map[string]interface{}{
		"access_token": accessToken,
		"token_expiry": expiry,
		"updated_at":   time.Now(),
	}
	// Google only returns a refresh token on first consent; keep the stored
	// one when the refresh response omits it.
	if refreshToken != "" {
		updates["refresh_token"] = refreshToken
	}
	return r.db.Model(&accountdomain.AccountLink{}).
		Where("user_id = ? AND id = ?", userID, linkID).
		Updates(updates).Error
}

func (r *accountRepository) DeleteLinksByAccount(userID, accountID string) error {
	return r.db.Where("user_id = ? AND email_account_id = ?", userID, accountID).Delete(&accountdomain.AccountLink{}).Error
}
