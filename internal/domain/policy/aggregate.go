package policy

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/example/doc-insight/internal/domain/aggregate"
	"github.com/example/doc-insight/internal/infrastructure/store"
	"github.com/google/uuid"
)

const AggregateType = "PolicyRepository"

var (
	ErrRepositoryNotFound = errors.New("policy repository not found")
	ErrEmptyName          = errors.New("repository name must not be empty")
	ErrEmptyCode          = errors.New("policy code must not be empty")
	ErrDuplicatePolicy    = errors.New("policy code already exists")
	ErrPolicyNotFound     = errors.New("policy not found")
)

type Policy struct {
	Code     string `json:"code"`
	Title    string `json:"title"`
	Body     string `json:"body"`
	Revision int    `json:"revision"` // Starts at 1, bumped on each revise
}

// Repository is a named collection of review policies that document
// analysis runs are checked against.
type Repository struct {
	aggregate.Base

	Name      string            `json:"name"`
	CreatedBy string            `json:"created_by"`
	Policies  map[string]Policy `json:"policies"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// ApplyEvent folds a single event into repository state
func (r *Repository) ApplyEvent(event store.Event) error {
	switch event.EventType {
	case EventRepositoryCreated:
		var data RepositoryCreated
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		r.ID = data.RepositoryID
		r.Name = data.Name
		r.CreatedBy = data.CreatedBy
		r.Policies = make(map[string]Policy)
		r.CreatedAt = data.CreatedAt
		r.UpdatedAt = data.CreatedAt
	case EventPolicyAdded:
		var data PolicyAdded
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		if r.Policies == nil {
			r.Policies = make(map[string]Policy)
		}
		r.Policies[data.Code] = Policy{
			Code:     data.Code,
			Title:    data.Title,
			Body:     data.Body,
			Revision: 1,
		}
		r.UpdatedAt = data.AddedAt
	case EventPolicyRevised:
		var data PolicyRevised
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		if p, ok := r.Policies[data.Code]; ok {
			p.Title = data.Title
			p.Body = data.Body
			p.Revision++
			r.Policies[data.Code] = p
		}
		r.UpdatedAt = data.RevisedAt
	case EventPolicyRemoved:
		var data PolicyRemoved
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		delete(r.Policies, data.Code)
		r.UpdatedAt = data.RemovedAt
	}
	return nil
}

type Service struct {
	repo *aggregate.Repository[*Repository]
}

func NewService(eventStore store.EventStoreInterface, snapshotStore store.SnapshotStoreInterface, opts ...aggregate.Option) *Service {
	repo := aggregate.NewRepository(eventStore, snapshotStore, AggregateType, func() *Repository {
		return &Repository{}
	}, opts...)
	return &Service{repo: repo}
}

// Get loads a policy repository by ID
func (s *Service) Get(ctx context.Context, repositoryID string) (*Repository, error) {
	repo, found, err := s.repo.Get(ctx, repositoryID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrRepositoryNotFound
	}
	return repo, nil
}

// Create makes a new, empty policy repository
func (s *Service) Create(ctx context.Context, name, createdBy string) (*Repository, error) {
	if name == "" {
		return nil, ErrEmptyName
	}

	repo := &Repository{Base: aggregate.Base{ID: uuid.New().String()}}
	event := RepositoryCreated{
		RepositoryID: repo.ID,
		Name:         name,
		CreatedBy:    createdBy,
		CreatedAt:    time.Now(),
	}
	if err := aggregate.Raise(repo, AggregateType, EventRepositoryCreated, event); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, repo); err != nil {
		return nil, err
	}
	return repo, nil
}

// AddPolicy adds a policy under a unique code
func (s *Service) AddPolicy(ctx context.Context, repositoryID, code, title, body string) (*Repository, error) {
	if code == "" {
		return nil, ErrEmptyCode
	}

	repo, err := s.Get(ctx, repositoryID)
	if err != nil {
		return nil, err
	}
	if _, exists := repo.Policies[code]; exists {
		return nil, ErrDuplicatePolicy
	}

	event := PolicyAdded{
		RepositoryID: repositoryID,
		Code:         code,
		Title:        title,
		Body:         body,
		AddedAt:      time.Now(),
	}
	if err := aggregate.Raise(repo, AggregateType, EventPolicyAdded, event); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, repo); err != nil {
		return nil, err
	}
	return repo, nil
}

// RevisePolicy replaces a policy's text and bumps its revision
func (s *Service) RevisePolicy(ctx context.Context, repositoryID, code, title, body string) (*Repository, error) {
	repo, err := s.Get(ctx, repositoryID)
	if err != nil {
		return nil, err
	}
	if _, exists := repo.Policies[code]; !exists {
		return nil, ErrPolicyNotFound
	}

	event := PolicyRevised{
		RepositoryID: repositoryID,
		Code:         code,
		Title:        title,
		Body:         body,
		RevisedAt:    time.Now(),
	}
	if err := aggregate.Raise(repo, AggregateType, EventPolicyRevised, event); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, repo); err != nil {
		return nil, err
	}
	return repo, nil
}

// RemovePolicy deletes a policy from the repository
func (s *Service) RemovePolicy(ctx context.Context, repositoryID, code string) error {
	repo, err := s.Get(ctx, repositoryID)
	if err != nil {
		return err
	}
	if _, exists := repo.Policies[code]; !exists {
		return ErrPolicyNotFound
	}

	event := PolicyRemoved{
		RepositoryID: repositoryID,
		Code:         code,
		RemovedAt:    time.Now(),
	}
	if err := aggregate.Raise(repo, AggregateType, EventPolicyRemoved, event); err != nil {
		return err
	}

	return s.repo.Save(ctx, repo)
}
