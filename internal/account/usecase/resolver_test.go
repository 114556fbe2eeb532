package usecase

import (
	"testing"
	"time"

	accountdomain "agendamail-backend/internal/account/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func account(id, email string, createdAt time.Time) accountdomain.EmailAccount {
	return accountdomain.EmailAccount{ID: id, Email: email, CreatedAt: createdAt}
}

func TestResolvePrimary(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		accounts     []accountdomain.EmailAccount
		sessionEmail string
		want         string
	}{
		{
			name: "session email match wins over creation order",
			accounts: []accountdomain.EmailAccount{
				account("acc-old", "old@example.com", base),
				account("acc-match", "me@example.com", base.Add(48*time.Hour)),
			},
			sessionEmail: "me@example.com",
			want:         "acc-match",
		},
		{
			name: "no match falls back to earliest created",
			accounts: []accountdomain.EmailAccount{
				account("acc-b", "b@example.com", base.Add(time.Hour)),
				account("acc-a", "a@example.com", base),
			},
			sessionEmail: "me@example.com",
			want:         "acc-a",
		},
		{
			name: "created-at tie broken by account id",
			accounts: []accountdomain.EmailAccount{
				account("acc-z", "z@example.com", base),
				account("acc-a", "a@example.com", base),
			},
			sessionEmail: "me@example.com",
			want:         "acc-a",
		},
		{
			name: "single account",
			accounts: []accountdomain.EmailAccount{
				account("acc-only", "only@example.com", base),
			},
			sessionEmail: "someone-else@example.com",
			want:         "acc-only",
		},
		{
			name: "match on earliest of two matching candidates",
			accounts: []accountdomain.EmailAccount{
				account("acc-2", "me@example.com", base.Add(time.Hour)),
				account("acc-1", "me@example.com", base),
			},
			sessionEmail: "me@example.com",
			want:         "acc-1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolvePrimary(tt.accounts, tt.sessionEmail)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			// Result must be a member of the input list
			found := false
			for _, a := range tt.accounts {
				if a.ID == got {
					found = true
				}
			}
			assert.True(t, found, "resolved id must come from the input list")
		})
	}
}

func TestResolvePrimaryEmptyList(t *testing.T) {
	_, err := ResolvePrimary(nil, "me@example.com")
	assert.ErrorIs(t, err, ErrNoAccounts)

	_, err = ResolvePrimary([]accountdomain.EmailAccount{}, "me@example.com")
	assert.ErrorIs(t, err, ErrNoAccounts)
}

func TestResolvePrimaryIsDeterministic(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	accounts := []accountdomain.EmailAccount{
		account("acc-c", "c@example.com", base),
		account("acc-b", "b@example.com", base),
		account("acc-a", "a@example.com", base.Add(time.Minute)),
	}

	first, err := ResolvePrimary(accounts, "nobody@example.com")
	require.NoError(t, err)

	// Same inputs, possibly reordered, must give the same output
	reordered := []accountdomain.EmailAccount{accounts[2], accounts[0], accounts[1]}
	for i := 0; i < 10; i++ {
		got, err := ResolvePrimary(reordered, "nobody@example.com")
		require.NoError(t, err)
		assert.Equal(t, first, got)
	}
}

func TestResolvePrimaryDoesNotMutateInput(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	accounts := []accountdomain.EmailAccount{
		account("acc-b", "b@example.com", base.Add(time.Hour)),
		account("acc-a", "a@example.com", base),
	}

	_, err := ResolvePrimary(accounts, "nobody@example.com")
	require.NoError(t, err)
	assert.Equal(t, "acc-b", accounts[0].ID)
	assert.Equal(t, "acc-a", accounts[1].ID)
}
