package command

// Document commands

type UploadDocument struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Content     []byte `json:"content"`
	UploadedBy  string `json:"uploaded_by"`
}

type ConvertDocument struct {
	DocumentID string `json:"document_id"`
	Converter  string `json:"converter"`
	Markdown   string `json:"markdown"`
}

type AnalyzeDocument struct {
	DocumentID       string `json:"document_id"`
	Model            string `json:"model"`
	Summary          string `json:"summary"`
	FindingsCount    int    `json:"findings_count"`
	PolicyRepository string `json:"policy_repository,omitempty"`
	StartSession     bool   `json:"start_session"` // Open a feedback session for the findings
	Reviewer         string `json:"reviewer,omitempty"`
}

type ArchiveDocument struct {
	DocumentID string `json:"document_id"`
	Reason     string `json:"reason"`
}

// Feedback commands

type StartSession struct {
	DocumentID string `json:"document_id"`
	Reviewer   string `json:"reviewer"`
}

type AddComment struct {
	SessionID string `json:"session_id"`
	Author    string `json:"author"`
	Body      string `json:"body"`
	Anchor    string `json:"anchor,omitempty"`
}

type ProposeSuggestion struct {
	SessionID   string `json:"session_id"`
	Excerpt     string `json:"excerpt"`
	Replacement string `json:"replacement"`
	ProposedBy  string `json:"proposed_by"`
}

type ResolveSuggestion struct {
	SessionID    string `json:"session_id"`
	SuggestionID string `json:"suggestion_id"`
	Accepted     bool   `json:"accepted"`
	ResolvedBy   string `json:"resolved_by"`
}

type CloseSession struct {
	SessionID string `json:"session_id"`
	ClosedBy  string `json:"closed_by"`
}

// Policy commands

type CreatePolicyRepo struct {
	Name      string `json:"name"`
	CreatedBy string `json:"created_by"`
}

type AddPolicy struct {
	RepositoryID string `json:"repository_id"`
	Code         string `json:"code"`
	Title        string `json:"title"`
	Body         string `json:"body"`
}

type RevisePolicy struct {
	RepositoryID string `json:"repository_id"`
	Code         string `json:"code"`
	Title        string `json:"title"`
	Body         string `json:"body"`
}

type RemovePolicy struct {
	RepositoryID string `json:"repository_id"`
	Code         string `json:"code"`
}
