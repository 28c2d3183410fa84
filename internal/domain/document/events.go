package document

import "time"

const (
	EventDocumentUploaded  = "DocumentUploaded"
	EventDocumentConverted = "DocumentConverted"
	EventDocumentAnalyzed  = "DocumentAnalyzed"
	EventDocumentArchived  = "DocumentArchived"
)

type DocumentUploaded struct {
	DocumentID  string    `json:"document_id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	ContentHash string    `json:"content_hash"` // SHA-256 of the raw upload
	UploadedBy  string    `json:"uploaded_by"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

type DocumentConverted struct {
	DocumentID  string    `json:"document_id"`
	Converter   string    `json:"converter"` // e.g. "pdf", "docx", "markdown"
	Markdown    string    `json:"markdown"`
	ConvertedAt time.Time `json:"converted_at"`
}

type DocumentAnalyzed struct {
	DocumentID    string    `json:"document_id"`
	Model         string    `json:"model"`
	Summary       string    `json:"summary"`
	FindingsCount int       `json:"findings_count"`
	AnalyzedAt    time.Time `json:"analyzed_at"`
}

type DocumentArchived struct {
	DocumentID string    `json:"document_id"`
	Reason     string    `json:"reason"`
	ArchivedAt time.Time `json:"archived_at"`
}
