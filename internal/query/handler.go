package query

import (
	"github.com/example/doc-insight/internal/infrastructure/store"
	"github.com/example/doc-insight/internal/readmodel"
)

// Handler serves queries from the read models
type Handler struct {
	readStore store.ReadStoreInterface
}

func NewHandler(readStore store.ReadStoreInterface) *Handler {
	return &Handler{readStore: readStore}
}

// Documents

func (h *Handler) GetDocument(id string) (*readmodel.DocumentReadModel, bool) {
	data, ok := h.readStore.Get(readmodel.CollectionDocuments, id)
	if !ok {
		return nil, false
	}
	return data.(*readmodel.DocumentReadModel), true
}

func (h *Handler) ListDocuments() []*readmodel.DocumentReadModel {
	items := h.readStore.GetAll(readmodel.CollectionDocuments)
	documents := make([]*readmodel.DocumentReadModel, 0, len(items))
	for _, item := range items {
		documents = append(documents, item.(*readmodel.DocumentReadModel))
	}
	return documents
}

// Feedback sessions

func (h *Handler) GetSession(id string) (*readmodel.SessionReadModel, bool) {
	data, ok := h.readStore.Get(readmodel.CollectionSessions, id)
	if !ok {
		return nil, false
	}
	return data.(*readmodel.SessionReadModel), true
}

func (h *Handler) ListSessions() []*readmodel.SessionReadModel {
	items := h.readStore.GetAll(readmodel.CollectionSessions)
	sessions := make([]*readmodel.SessionReadModel, 0, len(items))
	for _, item := range items {
		sessions = append(sessions, item.(*readmodel.SessionReadModel))
	}
	return sessions
}

// Policy repositories

func (h *Handler) GetPolicyRepo(id string) (*readmodel.PolicyRepoReadModel, bool) {
	data, ok := h.readStore.Get(readmodel.CollectionPolicyRepos, id)
	if !ok {
		return nil, false
	}
	return data.(*readmodel.PolicyRepoReadModel), true
}

func (h *Handler) ListPolicyRepos() []*readmodel.PolicyRepoReadModel {
	items := h.readStore.GetAll(readmodel.CollectionPolicyRepos)
	repos := make([]*readmodel.PolicyRepoReadModel, 0, len(items))
	for _, item := range items {
		repos = append(repos, item.(*readmodel.PolicyRepoReadModel))
	}
	return repos
}

// Accounts

func (h *Handler) GetAccount(id string) (*readmodel.AccountReadModel, bool) {
	data, ok := h.readStore.Get(readmodel.CollectionAccounts, id)
	if !ok {
		return nil, false
	}
	return data.(*readmodel.AccountReadModel), true
}

// FindAccountIDByEmail resolves an email to an account ID via the
// projected index
func (h *Handler) FindAccountIDByEmail(email string) (string, bool) {
	data, ok := h.readStore.Get(readmodel.CollectionAccountEmail, email)
	if !ok {
		return "", false
	}
	return data.(string), true
}
