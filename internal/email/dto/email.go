package dto

// SendEmailRequest is the payload for sending a new message. Clients send
// the content as body, message or html; the first non-empty one wins.
type SendEmailRequest struct {
	To      string `json:"to" binding:"required"`
	Subject string `json:"subject" binding:"required"`
	Body    string `json:"body"`
	Message string `json:"message"`
	HTML    string `json:"html"`
}

// Content returns the effective message body
func (r SendEmailRequest) Content() string {
	if r.Body != "" {
		return r.Body
	}
	if r.Message != "" {
		return r.Message
	}
	return r.HTML
}

// ReplyRequest is the payload for replying within an existing thread.
// Clients send the content as body, reply or message; the first non-empty
// one wins.
type ReplyRequest struct {
	Body    string `json:"body"`
	Reply   string `json:"reply"`
	Message string `json:"message"`
}

// Content returns the effective reply body
func (r ReplyRequest) Content() string {
	if r.Body != "" {
		return r.Body
	}
	if r.Reply != "" {
		return r.Reply
	}
	return r.Message
}

// SendResponse acknowledges an accepted send
type SendResponse struct {
	Status string `json:"status"`
}

// DraftSendResponse reports the sent draft's identifiers
type DraftSendResponse struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId"`
	ThreadID  string `json:"threadId"`
}
