package usecase

import (
	"context"
	"errors"
	"log"

	accountdomain "agendamail-backend/internal/account/domain"
	emaildomain "agendamail-backend/internal/email/domain"
	"agendamail-backend/pkg/apperrors"
	"agendamail-backend/pkg/config"
	"agendamail-backend/pkg/gmail"
)

// emailUsecase implements EmailUsecase
type emailUsecase struct {
	mailService MailService
	accounts    AccountResolver
	config      *config.Config
	usage       UsageRecorder
}

func NewEmailUsecase(mailService MailService, accounts AccountResolver, cfg *config.Config) EmailUsecase {
	return &emailUsecase{
		mailService: mailService,
		accounts:    accounts,
		config:      cfg,
	}
}

// SetUsageRecorder allows wiring the usage tracker after creation
func (u *emailUsecase) SetUsageRecorder(rec UsageRecorder) {
	u.usage = rec
}

// mailbox bundles the resolved primary account with its credential
type mailbox struct {
	accountID    string
	email        string
	accessToken  string
	refreshToken string
	onRefresh    accountdomain.TokenUpdateFunc
}

func (u *emailUsecase) primaryMailbox(userID, sessionEmail string) (*mailbox, error) {
	accountID, err := u.accounts.PrimaryAccount(userID, sessionEmail)
	if err != nil {
		return nil, err
	}

	email := ""
	accounts, err := u.accounts.ListAccounts(userID)
	if err != nil {
		return nil, err
	}
	for _, account := range accounts {
		if account.ID == accountID {
			email = account.Email
			break
		}
	}

	accessToken, refreshToken, onRefresh, err := u.accounts.Credentials(userID, accountID)
	if err != nil {
		return nil, err
	}

	return &mailbox{
		accountID:    accountID,
		email:        email,
		accessToken:  accessToken,
		refreshToken: refreshToken,
		onRefresh:    onRefresh,
	}, nil
}

func (u *emailUsecase) ListThreads(ctx context.Context, userID, sessionEmail string, query emaildomain.ThreadQuery) (*emaildomain.ThreadPage, error) {
	box, err := u.primaryMailbox(userID, sessionEmail)
	if err != nil {
		return nil, err
	}

	page, err := u.mailService.ListThreads(ctx, box.accessToken, box.refreshToken, query, box.onRefresh)
	if err != nil {
		return nil, classifyUpstream("unable to list threads", err)
	}

	u.recordUsage(ctx, userID, "gmail_list_threads", int64(len(page.Threads)))
	return page, nil
}

func (u *emailUsecase) GetMessage(ctx context.Context, userID, sessionEmail, messageID string) (*emaildomain.Message, error) {
	box, err := u.primaryMailbox(userID, sessionEmail)
	if err != nil {
		return nil, err
	}

	msg, err := u.mailService.GetMessage(ctx, box.accessToken, box.refreshToken, messageID, box.onRefresh)
	if err != nil {
		return nil, classifyUpstream("unable to fetch message", err)
	}
	return msg, nil
}

func (u *emailUsecase) SendMessage(ctx context.Context, userID, sessionEmail, to, subject, body string) error {
	box, err := u.primaryMailbox(userID, sessionEmail)
	if err != nil {
		return err
	}

	_, _, err = u.mailService.SendMessage(ctx, box.accessToken, box.refreshToken, "", box.email, to, subject, body, box.onRefresh)
	if err != nil {
		return classifyUpstream("unable to send message", err)
	}

	u.recordUsage(ctx, userID, "gmail_send", 1)
	return nil
}

func (u *emailUsecase) ReplyToMessage(ctx context.Context, userID, sessionEmail, messageID, body string) (string, string, error) {
	box, err := u.primaryMailbox(userID, sessionEmail)
	if err != nil {
		return "", "", err
	}

	id, threadID, err := u.mailService.ReplyToMessage(ctx, box.accessToken, box.refreshToken, "", box.email, messageID, body, box.onRefresh)
	if err != nil {
		return "", "", classifyUpstream("unable to send reply", err)
	}

	u.recordUsage(ctx, userID, "gmail_reply", 1)
	return id, threadID, nil
}

func (u *emailUsecase) SendDraft(ctx context.Context, userID, sessionEmail, draftID string) (string, string, error) {
	box, err := u.primaryMailbox(userID, sessionEmail)
	if err != nil {
		return "", "", err
	}

	id, threadID, err := u.mailService.SendDraft(ctx, box.accessToken, box.refreshToken, draftID, box.onRefresh)
	if err != nil {
		if errors.Is(err, gmail.ErrDraftNotFound) {
			return "", "", apperrors.NotFound("draft not found")
		}
		return "", "", classifyUpstream("unable to send draft", err)
	}

	u.recordUsage(ctx, userID, "gmail_send_draft", 1)
	return id, threadID, nil
}

func (u *emailUsecase) Watch(ctx context.Context, userID, sessionEmail string) error {
	if u.config.GooglePubSubTopic == "" {
		return apperrors.Validation("push notifications are not configured")
	}

	box, err := u.primaryMailbox(userID, sessionEmail)
	if err != nil {
		return err
	}

	topic := "projects/" + u.config.GoogleProjectID + "/topics/" + u.config.GooglePubSubTopic
	if err := u.mailService.Watch(ctx, box.accessToken, box.refreshToken, topic, box.onRefresh); err != nil {
		return classifyUpstream("unable to register mailbox watch", err)
	}
	return nil
}

func (u *emailUsecase) StopWatch(ctx context.Context, userID, sessionEmail string) error {
	box, err := u.primaryMailbox(userID, sessionEmail)
	if err != nil {
		return err
	}

	if err := u.mailService.Stop(ctx, box.accessToken, box.refreshToken, box.onRefresh); err != nil {
		return classifyUpstream("unable to stop mailbox watch", err)
	}
	return nil
}

// classifyUpstream separates dead credentials from ordinary upstream
// failures: a failed token refresh or an upstream 401 means the user has to
// reconnect the mailbox, so the client gets a 401 it can act on instead of
// a generic 500.
func classifyUpstream(msg string, err error) error {
	if gmail.IsAuthError(err) {
		return apperrors.Auth("google credential expired, please reconnect the account")
	}
	return apperrors.Upstream(msg, err)
}

func (u *emailUsecase) recordUsage(ctx context.Context, userID, op string, cost int64) {
	if u.usage == nil || cost == 0 {
		return
	}
	if err := u.usage.Record(ctx, userID, op, cost); err != nil {
		log.Printf("[Usage] Failed to record %s for user %s: %v", op, userID, err)
	}
}
