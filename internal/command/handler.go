package command

import (
	"context"
	"log"

	"github.com/example/doc-insight/internal/domain/document"
	"github.com/example/doc-insight/internal/domain/feedback"
	"github.com/example/doc-insight/internal/domain/policy"
)

// Handler is the use-case layer: each method loads an aggregate through
// its service, runs one business operation and saves. On a concurrency
// conflict surfacing past the repository's retries the caller should
// re-issue the command against fresh state.
type Handler struct {
	documentSvc *document.Service
	feedbackSvc *feedback.Service
	policySvc   *policy.Service
}

func NewHandler(
	documentSvc *document.Service,
	feedbackSvc *feedback.Service,
	policySvc *policy.Service,
) *Handler {
	return &Handler{
		documentSvc: documentSvc,
		feedbackSvc: feedbackSvc,
		policySvc:   policySvc,
	}
}

// UploadDocument registers a new document
func (h *Handler) UploadDocument(ctx context.Context, cmd UploadDocument) (*document.Document, error) {
	return h.documentSvc.Upload(ctx, cmd.Filename, cmd.ContentType, cmd.Content, cmd.UploadedBy)
}

// ConvertDocument records a converter's markdown rendition
func (h *Handler) ConvertDocument(ctx context.Context, cmd ConvertDocument) (*document.Document, error) {
	return h.documentSvc.Convert(ctx, cmd.DocumentID, cmd.Converter, cmd.Markdown)
}

// AnalyzeDocument records an analysis result and optionally opens a
// feedback session for its findings
func (h *Handler) AnalyzeDocument(ctx context.Context, cmd AnalyzeDocument) (*document.Document, error) {
	doc, err := h.documentSvc.Analyze(ctx, cmd.DocumentID, cmd.Model, cmd.Summary, cmd.FindingsCount)
	if err != nil {
		return nil, err
	}

	if cmd.StartSession {
		if _, err := h.feedbackSvc.Start(ctx, cmd.DocumentID, cmd.Reviewer); err != nil {
			// The analysis itself is durable; the reviewer can open a
			// session manually.
			log.Printf("[Command] Failed to start feedback session for document %s: %v", cmd.DocumentID, err)
		}
	}
	return doc, nil
}

// ArchiveDocument retires a document
func (h *Handler) ArchiveDocument(ctx context.Context, cmd ArchiveDocument) error {
	return h.documentSvc.Archive(ctx, cmd.DocumentID, cmd.Reason)
}

// StartSession opens a feedback session on a document
func (h *Handler) StartSession(ctx context.Context, cmd StartSession) (*feedback.Session, error) {
	if _, err := h.documentSvc.Get(ctx, cmd.DocumentID); err != nil {
		return nil, err
	}
	return h.feedbackSvc.Start(ctx, cmd.DocumentID, cmd.Reviewer)
}

// AddComment records a comment in a session
func (h *Handler) AddComment(ctx context.Context, cmd AddComment) (*feedback.Session, error) {
	return h.feedbackSvc.AddComment(ctx, cmd.SessionID, cmd.Author, cmd.Body, cmd.Anchor)
}

// ProposeSuggestion records a proposed edit in a session
func (h *Handler) ProposeSuggestion(ctx context.Context, cmd ProposeSuggestion) (*feedback.Session, error) {
	return h.feedbackSvc.ProposeSuggestion(ctx, cmd.SessionID, cmd.Excerpt, cmd.Replacement, cmd.ProposedBy)
}

// ResolveSuggestion accepts or rejects a pending suggestion
func (h *Handler) ResolveSuggestion(ctx context.Context, cmd ResolveSuggestion) (*feedback.Session, error) {
	return h.feedbackSvc.ResolveSuggestion(ctx, cmd.SessionID, cmd.SuggestionID, cmd.Accepted, cmd.ResolvedBy)
}

// CloseSession ends a feedback session
func (h *Handler) CloseSession(ctx context.Context, cmd CloseSession) error {
	return h.feedbackSvc.Close(ctx, cmd.SessionID, cmd.ClosedBy)
}

// CreatePolicyRepo makes a new policy repository
func (h *Handler) CreatePolicyRepo(ctx context.Context, cmd CreatePolicyRepo) (*policy.Repository, error) {
	return h.policySvc.Create(ctx, cmd.Name, cmd.CreatedBy)
}

// AddPolicy adds a policy to a repository
func (h *Handler) AddPolicy(ctx context.Context, cmd AddPolicy) (*policy.Repository, error) {
	return h.policySvc.AddPolicy(ctx, cmd.RepositoryID, cmd.Code, cmd.Title, cmd.Body)
}

// RevisePolicy replaces a policy's text
func (h *Handler) RevisePolicy(ctx context.Context, cmd RevisePolicy) (*policy.Repository, error) {
	return h.policySvc.RevisePolicy(ctx, cmd.RepositoryID, cmd.Code, cmd.Title, cmd.Body)
}

// RemovePolicy deletes a policy from a repository
func (h *Handler) RemovePolicy(ctx context.Context, cmd RemovePolicy) error {
	return h.policySvc.RemovePolicy(ctx, cmd.RepositoryID, cmd.Code)
}
