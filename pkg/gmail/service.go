package gmail

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	accountdomain "agendamail-backend/internal/account/domain"
	emaildomain "agendamail-backend/internal/email/domain"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// TokenUpdateFunc is a callback function that handles token updates
type TokenUpdateFunc = accountdomain.TokenUpdateFunc

// ErrDraftNotFound is returned when a draft id does not resolve upstream
var ErrDraftNotFound = errors.New("draft not found")

type Service struct {
	clientID     string
	clientSecret string
}

type notifyTokenSource struct {
	src      oauth2.TokenSource
	current  *oauth2.Token
	callback TokenUpdateFunc
}

func (s *notifyTokenSource) Token() (*oauth2.Token, error) {
	t, err := s.src.Token()
	if err != nil {
		return nil, err
	}
	if s.callback != nil && s.current.AccessToken != t.AccessToken {
		s.current = t
		if err := s.callback(t); err != nil {
			fmt.Printf("Failed to update token: %v\n", err)
		}
	}
	return t, nil
}

func NewService(clientID, clientSecret string) *Service {
	return &Service{
		clientID:     clientID,
		clientSecret: clientSecret,
	}
}

// GetGmailService creates Gmail service with the account's stored tokens
func (s *Service) GetGmailService(ctx context.Context, accessToken, refreshToken string, onTokenRefresh TokenUpdateFunc) (*gmail.Service, error) {
	token := &oauth2.Token{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
	}

	// Only force refresh if we have a refresh token
	if refreshToken != "" {
		token.Expiry = time.Now()
	}

	config := &oauth2.Config{
		ClientID:     s.clientID,
		ClientSecret: s.clientSecret,
		Endpoint:     google.Endpoint,
	}

	tokenSource := config.TokenSource(ctx, token)

	// Wrap token source to detect refreshes
	wrappedSource := &notifyTokenSource{
		src:      tokenSource,
		current:  token,
		callback: onTokenRefresh,
	}

	client := oauth2.NewClient(ctx, wrappedSource)

	srv, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create Gmail service: %v", err)
	}

	return srv, nil
}

// BuildSearchQuery assembles the Gmail q= string from caller-supplied
// filters. Filters are forwarded verbatim; only the type shorthand is
// translated to Gmail search operators.
func BuildSearchQuery(q emaildomain.ThreadQuery) string {
	var parts []string

	if q.LabelID != "" && q.LabelID != "ALL" {
		parts = append(parts, "label:"+q.LabelID)
	}
	if q.FromEmail != "" {
		parts = append(parts, "from:"+q.FromEmail)
	}
	switch q.Type {
	case "", "inbox":
		if q.LabelID == "" {
			parts = append(parts, "in:inbox")
		}
	case "sent":
		parts = append(parts, "in:sent")
	case "draft":
		parts = append(parts, "in:draft")
	case "starred":
		parts = append(parts, "is:starred")
	case "unread":
		parts = append(parts, "is:unread")
	}
	if q.Query != "" {
		parts = append(parts, q.Query)
	}

	return strings.Join(parts, " ")
}

// ListThreads retrieves one page of threads matching the query. Pagination
// uses the Gmail pageToken as-is.
func (s *Service) ListThreads(ctx context.Context, accessToken, refreshToken string, query emaildomain.ThreadQuery, onTokenRefresh TokenUpdateFunc) (*emaildomain.ThreadPage, error) {
	srv, err := s.GetGmailService(ctx, accessToken, refreshToken, onTokenRefresh)
	if err != nil {
		return nil, err
	}

	user := "me"

	maxResults := query.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}
	if maxResults > 500 {
		maxResults = 500 // Gmail API maximum
	}

	listCall := srv.Users.Threads.List(user).MaxResults(maxResults)
	if q := BuildSearchQuery(query); q != "" {
		listCall = listCall.Q(q)
	}
	if query.PageToken != "" {
		listCall = listCall.PageToken(query.PageToken)
	}

	resp, err := listCall.Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve threads: %v", err)
	}

	page := &emaildomain.ThreadPage{
		Threads:            make([]emaildomain.Thread, 0, len(resp.Threads)),
		NextPageToken:      resp.NextPageToken,
		ResultSizeEstimate: int(resp.ResultSizeEstimate),
	}

	// Fetch thread details in parallel with a bounded number of in-flight
	// requests
	type threadResult struct {
		index  int
		thread *emaildomain.Thread
		err    error
	}

	threadChan := make(chan threadResult, len(resp.Threads))
	semaphore := make(chan struct{}, 10)

	for i, t := range resp.Threads {
		go func(index int, threadID string) {
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			full, err := srv.Users.Threads.Get(user, threadID).Format("metadata").
				MetadataHeaders("From", "To", "Subject", "Message-ID", "References", "List-Unsubscribe").Do()
			if err != nil {
				threadChan <- threadResult{index, nil, err}
				return
			}

			thread := convertGmailThread(full)
			threadChan <- threadResult{index, &thread, nil}
		}(i, t.Id)
	}

	ordered := make([]*emaildomain.Thread, len(resp.Threads))
	for range resp.Threads {
		result := <-threadChan
		if result.err == nil && result.thread != nil {
			ordered[result.index] = result.thread
		}
		// Threads we can't fetch are skipped
	}
	for _, t := range ordered {
		if t != nil {
			page.Threads = append(page.Threads, *t)
		}
	}

	return page, nil
}

// GetMessage retrieves a single message with full payload
func (s *Service) GetMessage(ctx context.Context, accessToken, refreshToken, messageID string, onTokenRefresh TokenUpdateFunc) (*emaildomain.Message, error) {
	srv, err := s.GetGmailService(ctx, accessToken, refreshToken, onTokenRefresh)
	if err != nil {
		return nil, err
	}

	msg, err := srv.Users.Messages.Get("me", messageID).Format("full").Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve message: %v", err)
	}

	converted := ConvertGmailMessage(msg)
	return &converted, nil
}

// SendMessage sends an HTML email and returns the new message and thread ids
func (s *Service) SendMessage(ctx context.Context, accessToken, refreshToken, fromName, fromEmail, to, subject, body string, onTokenRefresh TokenUpdateFunc) (string, string, error) {
	srv, err := s.GetGmailService(ctx, accessToken, refreshToken, onTokenRefresh)
	if err != nil {
		return "", "", err
	}

	raw := buildRawMessage(fromName, fromEmail, to, subject, body, "", "")

	sent, err := srv.Users.Messages.Send("me", &gmail.Message{Raw: raw}).Do()
	if err != nil {
		return "", "", fmt.Errorf("unable to send message: %v", err)
	}

	return sent.Id, sent.ThreadId, nil
}

// ReplyToMessage sends a reply threaded under the original message. The
// In-Reply-To and References headers come from the original so Gmail keeps
// the conversation together.
func (s *Service) ReplyToMessage(ctx context.Context, accessToken, refreshToken, fromName, fromEmail, messageID, body string, onTokenRefresh TokenUpdateFunc) (string, string, error) {
	srv, err := s.GetGmailService(ctx, accessToken, refreshToken, onTokenRefresh)
	if err != nil {
		return "", "", err
	}

	user := "me"
	original, err := srv.Users.Messages.Get(user, messageID).Format("metadata").
		MetadataHeaders("From", "Reply-To", "Subject", "Message-ID", "References").Do()
	if err != nil {
		if isNotFound(err) {
			return "", "", fmt.Errorf("message %s not found", messageID)
		}
		return "", "", fmt.Errorf("unable to retrieve original message: %v", err)
	}

	headers := original.Payload.Headers
	replyTo := getHeader(headers, "Reply-To")
	if replyTo == "" {
		replyTo = getHeader(headers, "From")
	}
	subject := ReplySubject(getHeader(headers, "Subject"))
	origMsgID := getHeader(headers, "Message-ID")
	references := strings.TrimSpace(getHeader(headers, "References") + " " + origMsgID)

	raw := buildRawMessage(fromName, fromEmail, replyTo, subject, body, origMsgID, references)

	sent, err := srv.Users.Messages.Send(user, &gmail.Message{
		Raw:      raw,
		ThreadId: original.ThreadId,
	}).Do()
	if err != nil {
		return "", "", fmt.Errorf("unable to send reply: %v", err)
	}

	return sent.Id, sent.ThreadId, nil
}

// SendDraft sends an already-composed Gmail draft
func (s *Service) SendDraft(ctx context.Context, accessToken, refreshToken, draftID string, onTokenRefresh TokenUpdateFunc) (string, string, error) {
	srv, err := s.GetGmailService(ctx, accessToken, refreshToken, onTokenRefresh)
	if err != nil {
		return "", "", err
	}

	sent, err := srv.Users.Drafts.Send("me", &gmail.Draft{Id: draftID}).Do()
	if err != nil {
		if isNotFound(err) {
			return "", "", ErrDraftNotFound
		}
		return "", "", fmt.Errorf("unable to send draft: %v", err)
	}

	return sent.Id, sent.ThreadId, nil
}

// Watch sets up push notifications for the account's mailbox
func (s *Service) Watch(ctx context.Context, accessToken, refreshToken string, topicName string, onTokenRefresh TokenUpdateFunc) error {
	srv, err := s.GetGmailService(ctx, accessToken, refreshToken, onTokenRefresh)
	if err != nil {
		return err
	}

	// Stop any existing watch first; Gmail allows only one push client per
	// user, and stopping a nonexistent watch is harmless.
	_ = srv.Users.Stop("me").Do()

	req := &gmail.WatchRequest{
		TopicName: topicName,
		LabelIds:  []string{"INBOX"},
	}

	if _, err := srv.Users.Watch("me", req).Do(); err != nil {
		return fmt.Errorf("unable to watch mailbox: %v", err)
	}

	return nil
}

// Stop stops push notifications for the account's mailbox
func (s *Service) Stop(ctx context.Context, accessToken, refreshToken string, onTokenRefresh TokenUpdateFunc) error {
	srv, err := s.GetGmailService(ctx, accessToken, refreshToken, onTokenRefresh)
	if err != nil {
		return err
	}

	if err := srv.Users.Stop("me").Do(); err != nil {
		return fmt.Errorf("unable to stop mailbox watch: %v", err)
	}

	return nil
}

// ValidateToken validates the access token by making a simple API call
func (s *Service) ValidateToken(ctx context.Context, accessToken, refreshToken string, onTokenRefresh TokenUpdateFunc) error {
	srv, err := s.GetGmailService(ctx, accessToken, refreshToken, onTokenRefresh)
	if err != nil {
		return err
	}

	if _, err := srv.Users.GetProfile("me").Do(); err != nil {
		return errors.New("invalid or expired access token")
	}

	return nil
}

// Helper functions

func isNotFound(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound
}

// IsAuthError reports whether err means the stored credential is no longer
// usable: the token source failed to refresh (e.g. invalid_grant after the
// user revoked access) or the API rejected the token with a 401.
func IsAuthError(err error) bool {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return true
	}
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusUnauthorized
}

// ReplySubject prefixes "Re: " unless the subject already carries it
func ReplySubject(subject string) string {
	if strings.HasPrefix(strings.ToLower(subject), "re:") {
		return subject
	}
	return "Re: " + subject
}

func buildRawMessage(fromName, fromEmail, to, subject, body, inReplyTo, references string) string {
	var msg bytes.Buffer

	if fromName != "" && fromEmail != "" {
		encodedName := fmt.Sprintf("=?utf-8?B?%s?=", base64.StdEncoding.EncodeToString([]byte(fromName)))
		msg.WriteString(fmt.Sprintf("From: %s <%s>\r\n", encodedName, fromEmail))
	}
	msg.WriteString(fmt.Sprintf("To: %s\r\n", to))
	// Encode subject to handle non-ASCII characters (RFC 2047)
	encodedSubject := fmt.Sprintf("=?utf-8?B?%s?=", base64.StdEncoding.EncodeToString([]byte(subject)))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", encodedSubject))
	if inReplyTo != "" {
		msg.WriteString(fmt.Sprintf("In-Reply-To: %s\r\n", inReplyTo))
	}
	if references != "" {
		msg.WriteString(fmt.Sprintf("References: %s\r\n", references))
	}
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
	msg.WriteString(body)
	msg.WriteString("\r\n")

	return base64.URLEncoding.EncodeToString(msg.Bytes())
}

func convertGmailThread(t *gmail.Thread) emaildomain.Thread {
	thread := emaildomain.Thread{
		ID:       t.Id,
		Snippet:  t.Snippet,
		Messages: make([]emaildomain.Message, 0, len(t.Messages)),
	}
	for _, m := range t.Messages {
		thread.Messages = append(thread.Messages, ConvertGmailMessage(m))
	}
	if thread.Snippet == "" && len(t.Messages) > 0 {
		thread.Snippet = t.Messages[len(t.Messages)-1].Snippet
	}
	return thread
}

// ConvertGmailMessage reshapes the upstream message into the application's
// record
func ConvertGmailMessage(msg *gmail.Message) emaildomain.Message {
	var headers []*gmail.MessagePartHeader
	if msg.Payload != nil {
		headers = msg.Payload.Headers
	}

	from := getHeader(headers, "From")
	fromName, fromEmail := SplitAddress(from)

	toHeader := getHeader(headers, "To")
	toArray := []string{}
	if toHeader != "" {
		toArray = []string{toHeader}
	}

	body, isHTML := getMessageBody(msg.Payload)
	preview := msg.Snippet
	if preview == "" {
		preview = PreviewText(body, isHTML)
	}

	return emaildomain.Message{
		ID:            msg.Id,
		ThreadID:      msg.ThreadId,
		Subject:       getHeader(headers, "Subject"),
		From:          from,
		FromName:      fromName,
		FromEmail:     fromEmail,
		To:            toArray,
		Preview:       preview,
		Body:          body,
		IsHTML:        isHTML,
		ReceivedAt:    time.Unix(msg.InternalDate/1000, 0),
		IsUnread:      hasLabel(msg.LabelIds, "UNREAD"),
		IsStarred:     hasLabel(msg.LabelIds, "STARRED"),
		IsImportant:   hasLabel(msg.LabelIds, "IMPORTANT"),
		LabelIDs:      msg.LabelIds,
		Attachments:   getAttachments(msg.Payload),
		ListUnsub:     getHeader(headers, "List-Unsubscribe") != "",
		RFCMessageID:  getHeader(headers, "Message-ID"),
		ReferencesHdr: getHeader(headers, "References"),
	}
}

// SplitAddress extracts name and email from a "Name <email@example.com>"
// header value
func SplitAddress(from string) (string, string) {
	if idx := strings.Index(from, "<"); idx >= 0 {
		name := strings.TrimSpace(from[:idx])
		email := strings.TrimSpace(strings.TrimSuffix(from[idx+1:], ">"))
		if end := strings.Index(email, ">"); end >= 0 {
			email = email[:end]
		}
		return name, email
	}
	return "", strings.TrimSpace(from)
}

// PreviewText collapses a body into a short plain-text preview
func PreviewText(body string, isHTML bool) string {
	preview := body

	if isHTML {
		re := regexp.MustCompile(`<[^>]*>`)
		preview = re.ReplaceAllString(preview, " ")
		preview = strings.ReplaceAll(preview, "&nbsp;", " ")
		preview = strings.ReplaceAll(preview, "&lt;", "<")
		preview = strings.ReplaceAll(preview, "&gt;", ">")
		preview = strings.ReplaceAll(preview, "&amp;", "&")
		preview = strings.ReplaceAll(preview, "&quot;", "\"")
	}

	// Collapse multiple spaces into one
	preview = strings.Join(strings.Fields(preview), " ")

	if len(preview) > 200 {
		preview = preview[:200] + "..."
	}
	return preview
}

func getHeader(headers []*gmail.MessagePartHeader, name string) string {
	for _, header := range headers {
		if strings.EqualFold(header.Name, name) {
			return header.Value
		}
	}
	return ""
}

func getMessageBody(payload *gmail.MessagePart) (string, bool) {
	if payload == nil {
		return "", false
	}

	// If the payload itself is the body
	if payload.Body != nil && payload.Body.Data != "" {
		data, err := base64.URLEncoding.DecodeString(payload.Body.Data)
		if err == nil {
			return string(data), payload.MimeType == "text/html"
		}
	}

	var htmlBody string
	var plainBody string

	var findBody func(parts []*gmail.MessagePart)
	findBody = func(parts []*gmail.MessagePart) {
		for _, part := range parts {
			if part.MimeType == "text/html" {
				if part.Body != nil && part.Body.Data != "" {
					data, err := base64.URLEncoding.DecodeString(part.Body.Data)
					if err == nil {
						htmlBody = string(data)
					}
				}
			} else if part.MimeType == "text/plain" {
				if part.Body != nil && part.Body.Data != "" {
					data, err := base64.URLEncoding.DecodeString(part.Body.Data)
					if err == nil {
						plainBody = string(data)
					}
				}
			}

			if len(part.Parts) > 0 {
				findBody(part.Parts)
			}
		}
	}

	findBody(payload.Parts)

	if htmlBody != "" {
		return htmlBody, true
	}
	return plainBody, false
}

func getAttachments(payload *gmail.MessagePart) []emaildomain.Attachment {
	if payload == nil {
		return nil
	}

	var attachments []emaildomain.Attachment

	var findAttachments func(parts []*gmail.MessagePart)
	findAttachments = func(parts []*gmail.MessagePart) {
		for _, part := range parts {
			if part.Filename != "" && part.Body != nil && part.Body.AttachmentId != "" {
				attachments = append(attachments, emaildomain.Attachment{
					ID:       part.Body.AttachmentId,
					Name:     part.Filename,
					Size:     int64(part.Body.Size),
					MimeType: part.MimeType,
				})
			}

			if len(part.Parts) > 0 {
				findAttachments(part.Parts)
			}
		}
	}

	findAttachments(payload.Parts)
	return attachments
}

func hasLabel(labels []string, labelID string) bool {
	for _, label := range labels {
		if label == labelID {
			return true
		}
	}
	return false
}
