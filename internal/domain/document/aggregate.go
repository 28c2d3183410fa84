package document

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/example/doc-insight/internal/domain/aggregate"
	"github.com/example/doc-insight/internal/infrastructure/store"
	"github.com/google/uuid"
)

const AggregateType = "Document"

type Status string

const (
	StatusUploaded  Status = "uploaded"
	StatusConverted Status = "converted"
	StatusAnalyzed  Status = "analyzed"
	StatusArchived  Status = "archived"
)

var (
	ErrDocumentNotFound  = errors.New("document not found")
	ErrEmptyFilename     = errors.New("document filename must not be empty")
	ErrEmptyContent      = errors.New("document content must not be empty")
	ErrAlreadyConverted  = errors.New("document is already converted")
	ErrNotConverted      = errors.New("document must be converted before analysis")
	ErrDocumentArchived  = errors.New("document is archived")
	ErrInvalidTransition = errors.New("invalid document status transition")
)

type Document struct {
	aggregate.Base

	Filename      string    `json:"filename"`
	ContentType   string    `json:"content_type"`
	ContentHash   string    `json:"content_hash"`
	UploadedBy    string    `json:"uploaded_by"`
	Status        Status    `json:"status"`
	Converter     string    `json:"converter,omitempty"`
	Markdown      string    `json:"markdown,omitempty"`
	Model         string    `json:"model,omitempty"`
	Summary       string    `json:"summary,omitempty"`
	FindingsCount int       `json:"findings_count"`
	AnalysisRuns  int       `json:"analysis_runs"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ApplyEvent folds a single event into document state
func (d *Document) ApplyEvent(event store.Event) error {
	switch event.EventType {
	case EventDocumentUploaded:
		var data DocumentUploaded
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		d.ID = data.DocumentID
		d.Filename = data.Filename
		d.ContentType = data.ContentType
		d.ContentHash = data.ContentHash
		d.UploadedBy = data.UploadedBy
		d.Status = StatusUploaded
		d.CreatedAt = data.UploadedAt
		d.UpdatedAt = data.UploadedAt
	case EventDocumentConverted:
		var data DocumentConverted
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		d.Converter = data.Converter
		d.Markdown = data.Markdown
		d.Status = StatusConverted
		d.UpdatedAt = data.ConvertedAt
	case EventDocumentAnalyzed:
		var data DocumentAnalyzed
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		d.Model = data.Model
		d.Summary = data.Summary
		d.FindingsCount = data.FindingsCount
		d.AnalysisRuns++
		d.Status = StatusAnalyzed
		d.UpdatedAt = data.AnalyzedAt
	case EventDocumentArchived:
		var data DocumentArchived
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		d.Status = StatusArchived
		d.UpdatedAt = data.ArchivedAt
	}
	return nil
}

type Service struct {
	repo *aggregate.Repository[*Document]
}

func NewService(eventStore store.EventStoreInterface, snapshotStore store.SnapshotStoreInterface, opts ...aggregate.Option) *Service {
	repo := aggregate.NewRepository(eventStore, snapshotStore, AggregateType, func() *Document {
		return &Document{}
	}, opts...)
	return &Service{repo: repo}
}

// Get loads a document by ID
func (s *Service) Get(ctx context.Context, documentID string) (*Document, error) {
	doc, found, err := s.repo.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrDocumentNotFound
	}
	return doc, nil
}

// Upload registers a new document and returns it at version 1
func (s *Service) Upload(ctx context.Context, filename, contentType string, content []byte, uploadedBy string) (*Document, error) {
	if filename == "" {
		return nil, ErrEmptyFilename
	}
	if len(content) == 0 {
		return nil, ErrEmptyContent
	}

	hash := sha256.Sum256(content)

	doc := &Document{Base: aggregate.Base{ID: uuid.New().String()}}
	event := DocumentUploaded{
		DocumentID:  doc.ID,
		Filename:    filename,
		ContentType: contentType,
		ContentHash: hex.EncodeToString(hash[:]),
		UploadedBy:  uploadedBy,
		UploadedAt:  time.Now(),
	}
	if err := aggregate.Raise(doc, AggregateType, EventDocumentUploaded, event); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Convert records the markdown rendition produced by a format converter
func (s *Service) Convert(ctx context.Context, documentID, converter, markdown string) (*Document, error) {
	doc, err := s.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}

	switch doc.Status {
	case StatusArchived:
		return nil, ErrDocumentArchived
	case StatusConverted, StatusAnalyzed:
		return nil, ErrAlreadyConverted
	}

	event := DocumentConverted{
		DocumentID:  documentID,
		Converter:   converter,
		Markdown:    markdown,
		ConvertedAt: time.Now(),
	}
	if err := aggregate.Raise(doc, AggregateType, EventDocumentConverted, event); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Analyze records the result of an analysis run. Re-analysis of an already
// analyzed document is allowed and replaces the previous summary.
func (s *Service) Analyze(ctx context.Context, documentID, model, summary string, findingsCount int) (*Document, error) {
	doc, err := s.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}

	switch doc.Status {
	case StatusArchived:
		return nil, ErrDocumentArchived
	case StatusUploaded:
		return nil, ErrNotConverted
	}

	event := DocumentAnalyzed{
		DocumentID:    documentID,
		Model:         model,
		Summary:       summary,
		FindingsCount: findingsCount,
		AnalyzedAt:    time.Now(),
	}
	if err := aggregate.Raise(doc, AggregateType, EventDocumentAnalyzed, event); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Archive retires a document. Archiving twice is an error.
func (s *Service) Archive(ctx context.Context, documentID, reason string) error {
	doc, err := s.Get(ctx, documentID)
	if err != nil {
		return err
	}

	if doc.Status == StatusArchived {
		return ErrDocumentArchived
	}

	event := DocumentArchived{
		DocumentID: documentID,
		Reason:     reason,
		ArchivedAt: time.Now(),
	}
	if err := aggregate.Raise(doc, AggregateType, EventDocumentArchived, event); err != nil {
		return err
	}

	if err := s.repo.Save(ctx, doc); err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}
	return nil
}
