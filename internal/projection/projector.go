package projection

import (
	"context"
	"encoding/json"
	"log"

	"github.com/example/doc-insight/internal/domain/account"
	"github.com/example/doc-insight/internal/domain/document"
	"github.com/example/doc-insight/internal/domain/feedback"
	"github.com/example/doc-insight/internal/domain/policy"
	"github.com/example/doc-insight/internal/infrastructure/store"
	"github.com/example/doc-insight/internal/readmodel"
)

// Projector folds published events into the read store. It is an eventual
// consumer of the event log: it can lag behind writes and be rebuilt from
// scratch by replaying the log.
type Projector struct {
	readStore store.ReadStoreInterface
}

func NewProjector(readStore store.ReadStoreInterface) *Projector {
	return &Projector{readStore: readStore}
}

// HandleMessage decodes a Kafka message into an event and projects it
func (p *Projector) HandleMessage(ctx context.Context, key, value []byte) error {
	var event store.Event
	if err := json.Unmarshal(value, &event); err != nil {
		return err
	}
	return p.HandleEvent(event)
}

// HandleEvent projects one event into the read models
func (p *Projector) HandleEvent(event store.Event) error {
	switch event.AggregateType {
	case document.AggregateType:
		return p.handleDocumentEvent(event)
	case feedback.AggregateType:
		return p.handleSessionEvent(event)
	case policy.AggregateType:
		return p.handlePolicyEvent(event)
	case account.AggregateType:
		return p.handleAccountEvent(event)
	}
	return nil
}

func (p *Projector) getDocument(id string) *readmodel.DocumentReadModel {
	if data, ok := p.readStore.Get(readmodel.CollectionDocuments, id); ok {
		return data.(*readmodel.DocumentReadModel)
	}
	return nil
}

func (p *Projector) handleDocumentEvent(event store.Event) error {
	switch event.EventType {
	case document.EventDocumentUploaded:
		var data document.DocumentUploaded
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		p.readStore.Set(readmodel.CollectionDocuments, data.DocumentID, &readmodel.DocumentReadModel{
			ID:          data.DocumentID,
			Filename:    data.Filename,
			ContentType: data.ContentType,
			ContentHash: data.ContentHash,
			UploadedBy:  data.UploadedBy,
			Status:      string(document.StatusUploaded),
			CreatedAt:   data.UploadedAt,
			UpdatedAt:   data.UploadedAt,
		})
	case document.EventDocumentConverted:
		var data document.DocumentConverted
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		if doc := p.getDocument(data.DocumentID); doc != nil {
			doc.Status = string(document.StatusConverted)
			doc.UpdatedAt = data.ConvertedAt
			p.readStore.Set(readmodel.CollectionDocuments, doc.ID, doc)
		}
	case document.EventDocumentAnalyzed:
		var data document.DocumentAnalyzed
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		if doc := p.getDocument(data.DocumentID); doc != nil {
			doc.Status = string(document.StatusAnalyzed)
			doc.Summary = data.Summary
			doc.Model = data.Model
			doc.FindingsCount = data.FindingsCount
			doc.UpdatedAt = data.AnalyzedAt
			p.readStore.Set(readmodel.CollectionDocuments, doc.ID, doc)
		}
	case document.EventDocumentArchived:
		var data document.DocumentArchived
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		if doc := p.getDocument(data.DocumentID); doc != nil {
			doc.Status = string(document.StatusArchived)
			doc.UpdatedAt = data.ArchivedAt
			p.readStore.Set(readmodel.CollectionDocuments, doc.ID, doc)
		}
	}
	return nil
}

func (p *Projector) getSession(id string) *readmodel.SessionReadModel {
	if data, ok := p.readStore.Get(readmodel.CollectionSessions, id); ok {
		return data.(*readmodel.SessionReadModel)
	}
	return nil
}

func (p *Projector) handleSessionEvent(event store.Event) error {
	switch event.EventType {
	case feedback.EventSessionStarted:
		var data feedback.SessionStarted
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		p.readStore.Set(readmodel.CollectionSessions, data.SessionID, &readmodel.SessionReadModel{
			ID:         data.SessionID,
			DocumentID: data.DocumentID,
			Reviewer:   data.Reviewer,
			CreatedAt:  data.StartedAt,
			UpdatedAt:  data.StartedAt,
		})
	case feedback.EventCommentAdded:
		var data feedback.CommentAdded
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		if session := p.getSession(data.SessionID); session != nil {
			session.CommentCount++
			session.UpdatedAt = data.AddedAt
			p.readStore.Set(readmodel.CollectionSessions, session.ID, session)
		}
	case feedback.EventSuggestionProposed:
		var data feedback.SuggestionProposed
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		if session := p.getSession(data.SessionID); session != nil {
			session.OpenSuggestions++
			session.UpdatedAt = data.ProposedAt
			p.readStore.Set(readmodel.CollectionSessions, session.ID, session)
		}
	case feedback.EventSuggestionResolved:
		var data feedback.SuggestionResolved
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		if session := p.getSession(data.SessionID); session != nil {
			if session.OpenSuggestions > 0 {
				session.OpenSuggestions--
			}
			session.UpdatedAt = data.ResolvedAt
			p.readStore.Set(readmodel.CollectionSessions, session.ID, session)
		}
	case feedback.EventSessionClosed:
		var data feedback.SessionClosed
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		if session := p.getSession(data.SessionID); session != nil {
			session.Closed = true
			session.UpdatedAt = data.ClosedAt
			p.readStore.Set(readmodel.CollectionSessions, session.ID, session)
		}
	}
	return nil
}

func (p *Projector) getPolicyRepo(id string) *readmodel.PolicyRepoReadModel {
	if data, ok := p.readStore.Get(readmodel.CollectionPolicyRepos, id); ok {
		return data.(*readmodel.PolicyRepoReadModel)
	}
	return nil
}

func (p *Projector) handlePolicyEvent(event store.Event) error {
	switch event.EventType {
	case policy.EventRepositoryCreated:
		var data policy.RepositoryCreated
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		p.readStore.Set(readmodel.CollectionPolicyRepos, data.RepositoryID, &readmodel.PolicyRepoReadModel{
			ID:        data.RepositoryID,
			Name:      data.Name,
			CreatedAt: data.CreatedAt,
			UpdatedAt: data.CreatedAt,
		})
	case policy.EventPolicyAdded:
		var data policy.PolicyAdded
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		if repo := p.getPolicyRepo(data.RepositoryID); repo != nil {
			repo.PolicyCount++
			repo.UpdatedAt = data.AddedAt
			p.readStore.Set(readmodel.CollectionPolicyRepos, repo.ID, repo)
		}
	case policy.EventPolicyRemoved:
		var data policy.PolicyRemoved
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		if repo := p.getPolicyRepo(data.RepositoryID); repo != nil {
			if repo.PolicyCount > 0 {
				repo.PolicyCount--
			}
			repo.UpdatedAt = data.RemovedAt
			p.readStore.Set(readmodel.CollectionPolicyRepos, repo.ID, repo)
		}
	case policy.EventPolicyRevised:
		var data policy.PolicyRevised
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		if repo := p.getPolicyRepo(data.RepositoryID); repo != nil {
			repo.UpdatedAt = data.RevisedAt
			p.readStore.Set(readmodel.CollectionPolicyRepos, repo.ID, repo)
		}
	}
	return nil
}

func (p *Projector) handleAccountEvent(event store.Event) error {
	switch event.EventType {
	case account.EventAccountRegistered:
		var data account.AccountRegistered
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		p.readStore.Set(readmodel.CollectionAccounts, data.AccountID, &readmodel.AccountReadModel{
			ID:        data.AccountID,
			Email:     data.Email,
			Name:      data.Name,
			Role:      data.Role,
			IsActive:  true,
			CreatedAt: data.RegisteredAt,
		})
		p.readStore.Set(readmodel.CollectionAccountEmail, data.Email, data.AccountID)
	case account.EventAccountDeactivated:
		var data account.AccountDeactivated
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		if item, ok := p.readStore.Get(readmodel.CollectionAccounts, data.AccountID); ok {
			acct := item.(*readmodel.AccountReadModel)
			acct.IsActive = false
			p.readStore.Set(readmodel.CollectionAccounts, acct.ID, acct)
		}
	}
	return nil
}

// Replay rebuilds the read models by paging through the full event log
func (p *Projector) Replay(ctx context.Context, eventStore store.EventStoreInterface, batchSize int) (int64, error) {
	var lastSequence int64
	var total int
	for {
		events, err := eventStore.GetAllEvents(ctx, lastSequence, batchSize)
		if err != nil {
			return lastSequence, err
		}
		if len(events) == 0 {
			break
		}
		for _, event := range events {
			if err := p.HandleEvent(event); err != nil {
				log.Printf("[Projector] Error replaying event %s: %v", event.ID, err)
			}
			lastSequence = event.Sequence
		}
		total += len(events)
	}
	log.Printf("[Projector] Replayed %d events, read models rebuilt", total)
	return lastSequence, nil
}
