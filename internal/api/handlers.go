package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/example/doc-insight/internal/api/middleware"
	"github.com/example/doc-insight/internal/command"
	"github.com/example/doc-insight/internal/domain/document"
	"github.com/example/doc-insight/internal/domain/feedback"
	"github.com/example/doc-insight/internal/domain/policy"
	"github.com/example/doc-insight/internal/infrastructure/store"
	"github.com/example/doc-insight/internal/query"
)

type Handlers struct {
	cmdHandler   *command.Handler
	queryHandler *query.Handler
}

func NewHandlers(cmdHandler *command.Handler, queryHandler *query.Handler) *Handlers {
	return &Handlers{
		cmdHandler:   cmdHandler,
		queryHandler: queryHandler,
	}
}

// Document handlers

func (h *Handlers) UploadDocument(w http.ResponseWriter, r *http.Request) {
	var cmd command.UploadDocument
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	cmd.UploadedBy = middleware.GetAccountID(r.Context())

	doc, err := h.cmdHandler.UploadDocument(r.Context(), cmd)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, doc)
}

func (h *Handlers) ListDocuments(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.queryHandler.ListDocuments())
}

func (h *Handlers) GetDocument(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/documents/")
	doc, ok := h.queryHandler.GetDocument(id)
	if !ok {
		http.Error(w, "Document not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, doc)
}

func (h *Handlers) ConvertDocument(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/documents/")
	id = strings.TrimSuffix(id, "/convert")

	var cmd command.ConvertDocument
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	cmd.DocumentID = id

	doc, err := h.cmdHandler.ConvertDocument(r.Context(), cmd)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, doc)
}

func (h *Handlers) AnalyzeDocument(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/documents/")
	id = strings.TrimSuffix(id, "/analyze")

	var cmd command.AnalyzeDocument
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	cmd.DocumentID = id
	if cmd.Reviewer == "" {
		cmd.Reviewer = middleware.GetAccountID(r.Context())
	}

	doc, err := h.cmdHandler.AnalyzeDocument(r.Context(), cmd)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, doc)
}

func (h *Handlers) ArchiveDocument(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/documents/")
	id = strings.TrimSuffix(id, "/archive")

	var cmd command.ArchiveDocument
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&cmd)
	}
	cmd.DocumentID = id

	if err := h.cmdHandler.ArchiveDocument(r.Context(), cmd); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Document archived"})
}

// Feedback session handlers

func (h *Handlers) StartSession(w http.ResponseWriter, r *http.Request) {
	var cmd command.StartSession
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if cmd.Reviewer == "" {
		cmd.Reviewer = middleware.GetAccountID(r.Context())
	}

	session, err := h.cmdHandler.StartSession(r.Context(), cmd)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, session)
}

func (h *Handlers) ListSessions(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.queryHandler.ListSessions())
}

func (h *Handlers) GetSession(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/sessions/")
	session, ok := h.queryHandler.GetSession(id)
	if !ok {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, session)
}

func (h *Handlers) AddComment(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/sessions/")
	id = strings.TrimSuffix(id, "/comments")

	var cmd command.AddComment
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	cmd.SessionID = id
	if cmd.Author == "" {
		cmd.Author = middleware.GetAccountID(r.Context())
	}

	session, err := h.cmdHandler.AddComment(r.Context(), cmd)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, session)
}

func (h *Handlers) ProposeSuggestion(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/sessions/")
	id = strings.TrimSuffix(id, "/suggestions")

	var cmd command.ProposeSuggestion
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	cmd.SessionID = id
	if cmd.ProposedBy == "" {
		cmd.ProposedBy = middleware.GetAccountID(r.Context())
	}

	session, err := h.cmdHandler.ProposeSuggestion(r.Context(), cmd)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, session)
}

func (h *Handlers) ResolveSuggestion(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/sessions/")
	id = strings.TrimSuffix(id, "/resolve")

	var cmd command.ResolveSuggestion
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	cmd.SessionID = id
	cmd.ResolvedBy = middleware.GetAccountID(r.Context())

	session, err := h.cmdHandler.ResolveSuggestion(r.Context(), cmd)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, session)
}

func (h *Handlers) CloseSession(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/sessions/")
	id = strings.TrimSuffix(id, "/close")

	cmd := command.CloseSession{
		SessionID: id,
		ClosedBy:  middleware.GetAccountID(r.Context()),
	}
	if err := h.cmdHandler.CloseSession(r.Context(), cmd); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Session closed"})
}

// Policy handlers

func (h *Handlers) CreatePolicyRepo(w http.ResponseWriter, r *http.Request) {
	var cmd command.CreatePolicyRepo
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	cmd.CreatedBy = middleware.GetAccountID(r.Context())

	repo, err := h.cmdHandler.CreatePolicyRepo(r.Context(), cmd)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, repo)
}

func (h *Handlers) ListPolicyRepos(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.queryHandler.ListPolicyRepos())
}

func (h *Handlers) AddPolicy(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/policies/")
	id = strings.TrimSuffix(id, "/add")

	var cmd command.AddPolicy
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	cmd.RepositoryID = id

	repo, err := h.cmdHandler.AddPolicy(r.Context(), cmd)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, repo)
}

func (h *Handlers) RevisePolicy(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/policies/")
	id = strings.TrimSuffix(id, "/revise")

	var cmd command.RevisePolicy
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	cmd.RepositoryID = id

	repo, err := h.cmdHandler.RevisePolicy(r.Context(), cmd)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, repo)
}

func (h *Handlers) RemovePolicy(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/policies/")
	id = strings.TrimSuffix(id, "/remove")

	var cmd command.RemovePolicy
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	cmd.RepositoryID = id

	if err := h.cmdHandler.RemovePolicy(r.Context(), cmd); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Policy removed"})
}

// Helpers

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func extractPathParam(path, prefix string) string {
	return strings.TrimPrefix(path, prefix)
}

// respondDomainError maps domain and persistence errors to HTTP statuses
func respondDomainError(w http.ResponseWriter, err error) {
	var conflict *store.ConcurrencyError
	switch {
	case errors.As(err, &conflict):
		http.Error(w, "Conflicting update, please retry", http.StatusConflict)
	case errors.Is(err, document.ErrDocumentNotFound),
		errors.Is(err, feedback.ErrSessionNotFound),
		errors.Is(err, feedback.ErrSuggestionNotFound),
		errors.Is(err, policy.ErrRepositoryNotFound),
		errors.Is(err, policy.ErrPolicyNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, document.ErrDocumentArchived),
		errors.Is(err, document.ErrAlreadyConverted),
		errors.Is(err, feedback.ErrSessionClosed),
		errors.Is(err, feedback.ErrSuggestionResolved),
		errors.Is(err, policy.ErrDuplicatePolicy):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, document.ErrEmptyFilename),
		errors.Is(err, document.ErrEmptyContent),
		errors.Is(err, document.ErrNotConverted),
		errors.Is(err, feedback.ErrEmptyComment),
		errors.Is(err, feedback.ErrEmptySuggestion),
		errors.Is(err, feedback.ErrMissingDocument),
		errors.Is(err, policy.ErrEmptyName),
		errors.Is(err, policy.ErrEmptyCode):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
