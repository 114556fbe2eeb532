package usecase

import (
	"sort"

	accountdomain "agendamail-backend/internal/account/domain"
	"agendamail-backend/pkg/apperrors"
)

// ErrNoAccounts signals the caller should redirect to onboarding instead of
// surfacing a failure.
var ErrNoAccounts = apperrors.NotFound("no linked email accounts")

// ResolvePrimary selects the primary account for a session. It is a pure
// function of (accounts, sessionEmail): candidates are ordered by CreatedAt
// ascending with account ID as the tie-break so the order is total, the
// first account whose email equals the session email wins, and if none
// matches the earliest-created account is used.
func ResolvePrimary(accounts []accountdomain.EmailAccount, sessionEmail string) (string, error) {
	if len(accounts) == 0 {
		return "", ErrNoAccounts
	}

	sorted := make([]accountdomain.EmailAccount, len(accounts))
	copy(sorted, accounts)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
		}
		return sorted[i].ID < sorted[j].ID
	})

	for _, account := range sorted {
		if account.Email == sessionEmail {
			return account.ID, nil
		}
	}

	return sorted[0].ID, nil
}
