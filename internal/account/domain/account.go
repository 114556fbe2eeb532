package domain

import "time"

// EmailAccount is one mailbox bound to a user. A user may link several; the
// primary one is recomputed per request from current data, never cached.
type EmailAccount struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"index;not null"`
	Email     string    `json:"email" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AccountLink holds the external credential for a mailbox. One link exists
// per (account, provider); token refreshes overwrite the stored tokens.
type AccountLink struct {
	ID             string    `json:"id" gorm:"primaryKey"`
	UserID         string    `json:"user_id" gorm:"index;not null"`
	EmailAccountID string    `json:"email_account_id" gorm:"uniqueIndex:idx_account_provider;not null"`
	Provider       string    `json:"provider" gorm:"uniqueIndex:idx_account_provider;not null"` // "google"
	AccessToken    string    `json:"-"`
	RefreshToken   string    `json:"-"`
	TokenExpiry    time.Time `json:"token_expiry"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
