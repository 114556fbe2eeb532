package domain

import "time"

// Message is the application's reshaped view of a Gmail message
type Message struct {
	ID            string       `json:"id"`
	ThreadID      string       `json:"thread_id"`
	Subject       string       `json:"subject"`
	From          string       `json:"from"`
	FromName      string       `json:"from_name"`
	FromEmail     string       `json:"from_email"`
	To            []string     `json:"to"`
	Preview       string       `json:"preview"`
	Body          string       `json:"body,omitempty"`
	IsHTML        bool         `json:"is_html"`
	ReceivedAt    time.Time    `json:"received_at"`
	IsUnread      bool         `json:"is_unread"`
	IsStarred     bool         `json:"is_starred"`
	IsImportant   bool         `json:"is_important"`
	LabelIDs      []string     `json:"label_ids,omitempty"`
	Attachments   []Attachment `json:"attachments,omitempty"`
	ListUnsub     bool         `json:"-"` // carries a List-Unsubscribe header
	RFCMessageID  string       `json:"-"` // Message-ID header, for reply threading
	ReferencesHdr string       `json:"-"` // References header, for reply threading
}

type Attachment struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	MimeType string `json:"mime_type"`
	Size     int64  `json:"size"`
}

// Thread groups messages under one Gmail conversation
type Thread struct {
	ID       string    `json:"id"`
	Snippet  string    `json:"snippet"`
	Messages []Message `json:"messages"`
}

// ThreadPage is one page of a thread listing
type ThreadPage struct {
	Threads            []Thread `json:"threads"`
	NextPageToken      string   `json:"nextPageToken,omitempty"`
	ResultSizeEstimate int      `json:"resultSizeEstimate"`
}

// ThreadQuery carries caller-supplied list filters, forwarded to the Gmail
// API unmodified once validated at the boundary.
type ThreadQuery struct {
	LabelID    string
	Query      string
	FromEmail  string
	Type       string // inbox, sent, draft, starred, unread
	MaxResults int64
	PageToken  string
}
