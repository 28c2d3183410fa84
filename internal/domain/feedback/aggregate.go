package feedback

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/example/doc-insight/internal/domain/aggregate"
	"github.com/example/doc-insight/internal/infrastructure/store"
	"github.com/google/uuid"
)

const AggregateType = "FeedbackSession"

type SuggestionStatus string

const (
	SuggestionPending  SuggestionStatus = "pending"
	SuggestionAccepted SuggestionStatus = "accepted"
	SuggestionRejected SuggestionStatus = "rejected"
)

var (
	ErrSessionNotFound      = errors.New("feedback session not found")
	ErrSessionClosed        = errors.New("feedback session is closed")
	ErrEmptyComment         = errors.New("comment body must not be empty")
	ErrEmptySuggestion      = errors.New("suggestion excerpt must not be empty")
	ErrSuggestionNotFound   = errors.New("suggestion not found")
	ErrSuggestionResolved   = errors.New("suggestion is already resolved")
	ErrMissingDocument      = errors.New("feedback session requires a document id")
)

type Comment struct {
	ID      string    `json:"id"`
	Author  string    `json:"author"`
	Body    string    `json:"body"`
	Anchor  string    `json:"anchor,omitempty"`
	AddedAt time.Time `json:"added_at"`
}

type Suggestion struct {
	ID          string           `json:"id"`
	Excerpt     string           `json:"excerpt"`
	Replacement string           `json:"replacement"`
	ProposedBy  string           `json:"proposed_by"`
	Status      SuggestionStatus `json:"status"`
	ResolvedBy  string           `json:"resolved_by,omitempty"`
}

type Session struct {
	aggregate.Base

	DocumentID  string       `json:"document_id"`
	Reviewer    string       `json:"reviewer"`
	Closed      bool         `json:"closed"`
	Comments    []Comment    `json:"comments"`
	Suggestions []Suggestion `json:"suggestions"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

func (s *Session) findSuggestion(id string) *Suggestion {
	for i := range s.Suggestions {
		if s.Suggestions[i].ID == id {
			return &s.Suggestions[i]
		}
	}
	return nil
}

// ApplyEvent folds a single event into session state
func (s *Session) ApplyEvent(event store.Event) error {
	switch event.EventType {
	case EventSessionStarted:
		var data SessionStarted
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		s.ID = data.SessionID
		s.DocumentID = data.DocumentID
		s.Reviewer = data.Reviewer
		s.CreatedAt = data.StartedAt
		s.UpdatedAt = data.StartedAt
	case EventCommentAdded:
		var data CommentAdded
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		s.Comments = append(s.Comments, Comment{
			ID:      data.CommentID,
			Author:  data.Author,
			Body:    data.Body,
			Anchor:  data.Anchor,
			AddedAt: data.AddedAt,
		})
		s.UpdatedAt = data.AddedAt
	case EventSuggestionProposed:
		var data SuggestionProposed
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		s.Suggestions = append(s.Suggestions, Suggestion{
			ID:          data.SuggestionID,
			Excerpt:     data.Excerpt,
			Replacement: data.Replacement,
			ProposedBy:  data.ProposedBy,
			Status:      SuggestionPending,
		})
		s.UpdatedAt = data.ProposedAt
	case EventSuggestionResolved:
		var data SuggestionResolved
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		if sg := s.findSuggestion(data.SuggestionID); sg != nil {
			if data.Accepted {
				sg.Status = SuggestionAccepted
			} else {
				sg.Status = SuggestionRejected
			}
			sg.ResolvedBy = data.ResolvedBy
		}
		s.UpdatedAt = data.ResolvedAt
	case EventSessionClosed:
		var data SessionClosed
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		s.Closed = true
		s.UpdatedAt = data.ClosedAt
	}
	return nil
}

type Service struct {
	repo *aggregate.Repository[*Session]
}

func NewService(eventStore store.EventStoreInterface, snapshotStore store.SnapshotStoreInterface, opts ...aggregate.Option) *Service {
	repo := aggregate.NewRepository(eventStore, snapshotStore, AggregateType, func() *Session {
		return &Session{}
	}, opts...)
	return &Service{repo: repo}
}

// Get loads a feedback session by ID
func (s *Service) Get(ctx context.Context, sessionID string) (*Session, error) {
	session, found, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Start opens a feedback session on a document
func (s *Service) Start(ctx context.Context, documentID, reviewer string) (*Session, error) {
	if documentID == "" {
		return nil, ErrMissingDocument
	}

	session := &Session{Base: aggregate.Base{ID: uuid.New().String()}}
	event := SessionStarted{
		SessionID:  session.ID,
		DocumentID: documentID,
		Reviewer:   reviewer,
		StartedAt:  time.Now(),
	}
	if err := aggregate.Raise(session, AggregateType, EventSessionStarted, event); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// AddComment records a reviewer comment
func (s *Service) AddComment(ctx context.Context, sessionID, author, body, anchor string) (*Session, error) {
	if body == "" {
		return nil, ErrEmptyComment
	}

	session, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Closed {
		return nil, ErrSessionClosed
	}

	event := CommentAdded{
		SessionID: sessionID,
		CommentID: uuid.New().String(),
		Author:    author,
		Body:      body,
		Anchor:    anchor,
		AddedAt:   time.Now(),
	}
	if err := aggregate.Raise(session, AggregateType, EventCommentAdded, event); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// ProposeSuggestion records a proposed edit awaiting resolution
func (s *Service) ProposeSuggestion(ctx context.Context, sessionID, excerpt, replacement, proposedBy string) (*Session, error) {
	if excerpt == "" {
		return nil, ErrEmptySuggestion
	}

	session, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Closed {
		return nil, ErrSessionClosed
	}

	event := SuggestionProposed{
		SessionID:    sessionID,
		SuggestionID: uuid.New().String(),
		Excerpt:      excerpt,
		Replacement:  replacement,
		ProposedBy:   proposedBy,
		ProposedAt:   time.Now(),
	}
	if err := aggregate.Raise(session, AggregateType, EventSuggestionProposed, event); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// ResolveSuggestion accepts or rejects a pending suggestion
func (s *Service) ResolveSuggestion(ctx context.Context, sessionID, suggestionID string, accepted bool, resolvedBy string) (*Session, error) {
	session, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Closed {
		return nil, ErrSessionClosed
	}

	suggestion := session.findSuggestion(suggestionID)
	if suggestion == nil {
		return nil, ErrSuggestionNotFound
	}
	if suggestion.Status != SuggestionPending {
		return nil, ErrSuggestionResolved
	}

	event := SuggestionResolved{
		SessionID:    sessionID,
		SuggestionID: suggestionID,
		Accepted:     accepted,
		ResolvedBy:   resolvedBy,
		ResolvedAt:   time.Now(),
	}
	if err := aggregate.Raise(session, AggregateType, EventSuggestionResolved, event); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Close ends the session; no further comments or resolutions are accepted
func (s *Service) Close(ctx context.Context, sessionID, closedBy string) error {
	session, err := s.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.Closed {
		return ErrSessionClosed
	}

	event := SessionClosed{
		SessionID: sessionID,
		ClosedBy:  closedBy,
		ClosedAt:  time.Now(),
	}
	if err := aggregate.Raise(session, AggregateType, EventSessionClosed, event); err != nil {
		return err
	}

	return s.repo.Save(ctx, session)
}
