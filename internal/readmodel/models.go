package readmodel

import "time"

// Collection names in the read store
const (
	CollectionDocuments    = "documents"
	CollectionSessions     = "sessions"
	CollectionPolicyRepos  = "policy_repositories"
	CollectionAccounts     = "accounts"
	CollectionAccountEmail = "account_emails" // email -> account id index
)

// DocumentReadModel is the read model for documents
type DocumentReadModel struct {
	ID            string    `json:"id"`
	Filename      string    `json:"filename"`
	ContentType   string    `json:"content_type"`
	ContentHash   string    `json:"content_hash"`
	UploadedBy    string    `json:"uploaded_by"`
	Status        string    `json:"status"`
	Summary       string    `json:"summary,omitempty"`
	Model         string    `json:"model,omitempty"`
	FindingsCount int       `json:"findings_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// SessionReadModel is the read model for feedback sessions
type SessionReadModel struct {
	ID              string    `json:"id"`
	DocumentID      string    `json:"document_id"`
	Reviewer        string    `json:"reviewer"`
	Closed          bool      `json:"closed"`
	CommentCount    int       `json:"comment_count"`
	OpenSuggestions int       `json:"open_suggestions"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// PolicyRepoReadModel is the read model for policy repositories
type PolicyRepoReadModel struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	PolicyCount int       `json:"policy_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AccountReadModel is the read model for accounts
type AccountReadModel struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}
