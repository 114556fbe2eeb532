package usecase

import (
	"context"
	"errors"
	"testing"

	accountdomain "agendamail-backend/internal/account/domain"
	emaildomain "agendamail-backend/internal/email/domain"
	"agendamail-backend/pkg/apperrors"
	"agendamail-backend/pkg/config"
	"agendamail-backend/pkg/gmail"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
)

type fakeMailService struct {
	lastFromEmail string
	sendErr       error
	draftErr      error
}

func (f *fakeMailService) ListThreads(ctx context.Context, accessToken, refreshToken string, query emaildomain.ThreadQuery, onTokenRefresh accountdomain.TokenUpdateFunc) (*emaildomain.ThreadPage, error) {
	return &emaildomain.ThreadPage{}, nil
}

func (f *fakeMailService) GetMessage(ctx context.Context, accessToken, refreshToken, messageID string, onTokenRefresh accountdomain.TokenUpdateFunc) (*emaildomain.Message, error) {
	return &emaildomain.Message{ID: messageID}, nil
}

func (f *fakeMailService) SendMessage(ctx context.Context, accessToken, refreshToken, fromName, fromEmail, to, subject, body string, onTokenRefresh accountdomain.TokenUpdateFunc) (string, string, error) {
	f.lastFromEmail = fromEmail
	if f.sendErr != nil {
		return "", "", f.sendErr
	}
	return "msg-1", "thread-1", nil
}

func (f *fakeMailService) ReplyToMessage(ctx context.Context, accessToken, refreshToken, fromName, fromEmail, messageID, body string, onTokenRefresh accountdomain.TokenUpdateFunc) (string, string, error) {
	return "reply-1", "thread-1", nil
}

func (f *fakeMailService) SendDraft(ctx context.Context, accessToken, refreshToken, draftID string, onTokenRefresh accountdomain.TokenUpdateFunc) (string, string, error) {
	if f.draftErr != nil {
		return "", "", f.draftErr
	}
	return "msg-2", "thread-2", nil
}

func (f *fakeMailService) Watch(ctx context.Context, accessToken, refreshToken string, topicName string, onTokenRefresh accountdomain.TokenUpdateFunc) error {
	return nil
}

func (f *fakeMailService) Stop(ctx context.Context, accessToken, refreshToken string, onTokenRefresh accountdomain.TokenUpdateFunc) error {
	return nil
}

type fakeResolver struct {
	credErr error
}

func (f *fakeResolver) PrimaryAccount(userID, sessionEmail string) (string, error) {
	return "acc-1", nil
}

func (f *fakeResolver) ListAccounts(userID string) ([]accountdomain.EmailAccount, error) {
	return []accountdomain.EmailAccount{{ID: "acc-1", UserID: userID, Email: "primary@example.com"}}, nil
}

func (f *fakeResolver) Credentials(userID, accountID string) (string, string, accountdomain.TokenUpdateFunc, error) {
	if f.credErr != nil {
		return "", "", nil, f.credErr
	}
	return "access", "refresh", nil, nil
}

func TestSendMessageUsesPrimaryMailboxAddress(t *testing.T) {
	mail := &fakeMailService{}
	uc := NewEmailUsecase(mail, &fakeResolver{}, &config.Config{})

	err := uc.SendMessage(context.Background(), "user-1", "me@example.com", "a@b.c", "Hi", "Hello")
	require.NoError(t, err)
	assert.Equal(t, "primary@example.com", mail.lastFromEmail)
}

func TestSendDraftNotFound(t *testing.T) {
	mail := &fakeMailService{draftErr: gmail.ErrDraftNotFound}
	uc := NewEmailUsecase(mail, &fakeResolver{}, &config.Config{})

	_, _, err := uc.SendDraft(context.Background(), "user-1", "me@example.com", "missing")
	require.Error(t, err)
	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.KindNotFound, appErr.Kind)
}

func TestSendDraftUpstreamFailure(t *testing.T) {
	mail := &fakeMailService{draftErr: errors.New("googleapi: 503")}
	uc := NewEmailUsecase(mail, &fakeResolver{}, &config.Config{})

	_, _, err := uc.SendDraft(context.Background(), "user-1", "me@example.com", "d-1")
	require.Error(t, err)
	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.KindUpstream, appErr.Kind)
}

func TestExpiredCredentialMapsToAuthError(t *testing.T) {
	refreshErr := &oauth2.RetrieveError{ErrorCode: "invalid_grant"}
	mail := &fakeMailService{sendErr: refreshErr}
	uc := NewEmailUsecase(mail, &fakeResolver{}, &config.Config{})

	err := uc.SendMessage(context.Background(), "user-1", "me@example.com", "a@b.c", "Hi", "Hello")
	require.Error(t, err)
	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.KindAuth, appErr.Kind)
	assert.True(t, appErr.Known)
}

func TestRejectedTokenMapsToAuthError(t *testing.T) {
	mail := &fakeMailService{sendErr: &googleapi.Error{Code: 401}}
	uc := NewEmailUsecase(mail, &fakeResolver{}, &config.Config{})

	err := uc.SendMessage(context.Background(), "user-1", "me@example.com", "a@b.c", "Hi", "Hello")
	require.Error(t, err)
	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.KindAuth, appErr.Kind)
	assert.True(t, appErr.Known)
}

func TestCredentialErrorPassedThrough(t *testing.T) {
	credErr := apperrors.Auth("missing google credential, please reconnect the account")
	uc := NewEmailUsecase(&fakeMailService{}, &fakeResolver{credErr: credErr}, &config.Config{})

	err := uc.SendMessage(context.Background(), "user-1", "me@example.com", "a@b.c", "Hi", "Hello")
	require.Error(t, err)
	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.KindAuth, appErr.Kind)
	assert.True(t, appErr.Known)
}

func TestWatchRequiresTopic(t *testing.T) {
	uc := NewEmailUsecase(&fakeMailService{}, &fakeResolver{}, &config.Config{})

	err := uc.Watch(context.Background(), "user-1", "me@example.com")
	require.Error(t, err)
	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.KindValidation, appErr.Kind)
}
