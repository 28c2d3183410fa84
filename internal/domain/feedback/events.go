package feedback

import "time"

const (
	EventSessionStarted     = "FeedbackSessionStarted"
	EventCommentAdded       = "CommentAdded"
	EventSuggestionProposed = "SuggestionProposed"
	EventSuggestionResolved = "SuggestionResolved"
	EventSessionClosed      = "FeedbackSessionClosed"
)

type SessionStarted struct {
	SessionID  string    `json:"session_id"`
	DocumentID string    `json:"document_id"`
	Reviewer   string    `json:"reviewer"`
	StartedAt  time.Time `json:"started_at"`
}

type CommentAdded struct {
	SessionID string    `json:"session_id"`
	CommentID string    `json:"comment_id"`
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	Anchor    string    `json:"anchor,omitempty"` // Quoted passage the comment refers to
	AddedAt   time.Time `json:"added_at"`
}

type SuggestionProposed struct {
	SessionID    string    `json:"session_id"`
	SuggestionID string    `json:"suggestion_id"`
	Excerpt      string    `json:"excerpt"`
	Replacement  string    `json:"replacement"`
	ProposedBy   string    `json:"proposed_by"` // Reviewer or model name
	ProposedAt   time.Time `json:"proposed_at"`
}

type SuggestionResolved struct {
	SessionID    string    `json:"session_id"`
	SuggestionID string    `json:"suggestion_id"`
	Accepted     bool      `json:"accepted"`
	ResolvedBy   string    `json:"resolved_by"`
	ResolvedAt   time.Time `json:"resolved_at"`
}

type SessionClosed struct {
	SessionID string    `json:"session_id"`
	ClosedBy  string    `json:"closed_by"`
	ClosedAt  time.Time `json:"closed_at"`
}
