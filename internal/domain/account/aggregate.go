package account

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/example/doc-insight/internal/domain/aggregate"
	"github.com/example/doc-insight/internal/infrastructure/store"
	"github.com/google/uuid"
)

const AggregateType = "Account"

const (
	RoleReviewer = "reviewer"
	RoleAdmin    = "admin"
)

var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidEmail       = errors.New("email is required")
	ErrInvalidName        = errors.New("name is required")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDeactivated = errors.New("account is deactivated")
)

// PasswordHasher hashes and verifies passwords. Satisfied by the auth
// package; injected so the domain does not depend on bcrypt directly.
type PasswordHasher interface {
	HashPassword(password string) (string, error)
	CheckPassword(password, hash string) bool
}

type Account struct {
	aggregate.Base

	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ApplyEvent folds a single event into account state
func (a *Account) ApplyEvent(event store.Event) error {
	switch event.EventType {
	case EventAccountRegistered:
		var data AccountRegistered
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		a.ID = data.AccountID
		a.Email = data.Email
		a.PasswordHash = data.PasswordHash
		a.Name = data.Name
		a.Role = data.Role
		a.IsActive = true
		a.CreatedAt = data.RegisteredAt
		a.UpdatedAt = data.RegisteredAt
	case EventPasswordChanged:
		var data PasswordChanged
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		a.PasswordHash = data.PasswordHash
		a.UpdatedAt = data.ChangedAt
	case EventAccountDeactivated:
		var data AccountDeactivated
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		a.IsActive = false
		a.UpdatedAt = data.DeactivatedAt
	}
	return nil
}

type Service struct {
	repo   *aggregate.Repository[*Account]
	hasher PasswordHasher
}

func NewService(eventStore store.EventStoreInterface, snapshotStore store.SnapshotStoreInterface, hasher PasswordHasher, opts ...aggregate.Option) *Service {
	repo := aggregate.NewRepository(eventStore, snapshotStore, AggregateType, func() *Account {
		return &Account{}
	}, opts...)
	return &Service{repo: repo, hasher: hasher}
}

// Get loads an account by ID
func (s *Service) Get(ctx context.Context, accountID string) (*Account, error) {
	acct, found, err := s.repo.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrAccountNotFound
	}
	return acct, nil
}

// Register creates a reviewer account
func (s *Service) Register(ctx context.Context, email, password, name string) (*Account, error) {
	return s.RegisterWithRole(ctx, email, password, name, RoleReviewer)
}

// RegisterWithRole creates an account with a specific role
func (s *Service) RegisterWithRole(ctx context.Context, email, password, name, role string) (*Account, error) {
	if email == "" {
		return nil, ErrInvalidEmail
	}
	if name == "" {
		return nil, ErrInvalidName
	}

	passwordHash, err := s.hasher.HashPassword(password)
	if err != nil {
		return nil, err
	}

	acct := &Account{Base: aggregate.Base{ID: uuid.New().String()}}
	event := AccountRegistered{
		AccountID:    acct.ID,
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		Role:         role,
		RegisteredAt: time.Now(),
	}
	if err := aggregate.Raise(acct, AggregateType, EventAccountRegistered, event); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, acct); err != nil {
		return nil, err
	}
	return acct, nil
}

// Authenticate verifies credentials against the stored hash
func (s *Service) Authenticate(ctx context.Context, accountID, password string) (*Account, error) {
	acct, err := s.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !acct.IsActive {
		return nil, ErrAccountDeactivated
	}
	if !s.hasher.CheckPassword(password, acct.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return acct, nil
}

// ChangePassword verifies the current password and records a new hash
func (s *Service) ChangePassword(ctx context.Context, accountID, currentPassword, newPassword string) error {
	acct, err := s.Authenticate(ctx, accountID, currentPassword)
	if err != nil {
		return err
	}

	passwordHash, err := s.hasher.HashPassword(newPassword)
	if err != nil {
		return err
	}

	event := PasswordChanged{
		AccountID:    accountID,
		PasswordHash: passwordHash,
		ChangedAt:    time.Now(),
	}
	if err := aggregate.Raise(acct, AggregateType, EventPasswordChanged, event); err != nil {
		return err
	}

	return s.repo.Save(ctx, acct)
}

// Deactivate disables an account
func (s *Service) Deactivate(ctx context.Context, accountID string) error {
	acct, err := s.Get(ctx, accountID)
	if err != nil {
		return err
	}
	if !acct.IsActive {
		return ErrAccountDeactivated
	}

	event := AccountDeactivated{
		AccountID:     accountID,
		DeactivatedAt: time.Now(),
	}
	if err := aggregate.Raise(acct, AggregateType, EventAccountDeactivated, event); err != nil {
		return err
	}

	return s.repo.Save(ctx, acct)
}
