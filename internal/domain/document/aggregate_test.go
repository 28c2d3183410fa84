package document

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/example/doc-insight/internal/infrastructure/store"
	"github.com/example/doc-insight/internal/infrastructure/store/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDocumentService() (*Service, *mocks.MockEventStore, *mocks.MockSnapshotStore) {
	eventStore := mocks.NewMockEventStore()
	snapshotStore := mocks.NewMockSnapshotStore()
	service := NewService(eventStore, snapshotStore)
	return service, eventStore, snapshotStore
}

func seedUploaded(eventStore *mocks.MockEventStore, documentID string) {
	_ = eventStore.AddEvent(documentID, AggregateType, EventDocumentUploaded, DocumentUploaded{
		DocumentID:  documentID,
		Filename:    "report.pdf",
		ContentType: "application/pdf",
		UploadedBy:  "acct-1",
	})
}

func seedConverted(eventStore *mocks.MockEventStore, documentID string) {
	_ = eventStore.AddEvent(documentID, AggregateType, EventDocumentConverted, DocumentConverted{
		DocumentID: documentID,
		Converter:  "pdf",
		Markdown:   "# Report",
	})
}

// ============================================
// Upload Tests
// ============================================

func TestService_Upload_Success(t *testing.T) {
	service, eventStore, _ := newTestDocumentService()
	ctx := context.Background()

	content := []byte("raw pdf bytes")
	doc, err := service.Upload(ctx, "report.pdf", "application/pdf", content, "acct-1")

	require.NoError(t, err)
	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, 1, doc.GetVersion())
	assert.Equal(t, "report.pdf", doc.Filename)
	assert.Equal(t, StatusUploaded, doc.Status)
	assert.Equal(t, "acct-1", doc.UploadedBy)

	hash := sha256.Sum256(content)
	assert.Equal(t, hex.EncodeToString(hash[:]), doc.ContentHash)

	require.Len(t, eventStore.AppendCalls, 1)
	call := eventStore.AppendCalls[0]
	assert.Equal(t, 0, call.ExpectedVersion)
	require.Len(t, call.Events, 1)
	assert.Equal(t, EventDocumentUploaded, call.Events[0].EventType)
	assert.Equal(t, AggregateType, call.Events[0].AggregateType)
}

func TestService_Upload_EmptyFilename(t *testing.T) {
	service, eventStore, _ := newTestDocumentService()
	ctx := context.Background()

	doc, err := service.Upload(ctx, "", "application/pdf", []byte("x"), "acct-1")

	assert.ErrorIs(t, err, ErrEmptyFilename)
	assert.Nil(t, doc)
	assert.Empty(t, eventStore.AppendCalls)
}

func TestService_Upload_EmptyContent(t *testing.T) {
	service, _, _ := newTestDocumentService()
	ctx := context.Background()

	doc, err := service.Upload(ctx, "report.pdf", "application/pdf", nil, "acct-1")

	assert.ErrorIs(t, err, ErrEmptyContent)
	assert.Nil(t, doc)
}

func TestService_Upload_EventStoreError(t *testing.T) {
	service, eventStore, _ := newTestDocumentService()
	ctx := context.Background()

	eventStore.AppendErr = errors.New("database error")

	doc, err := service.Upload(ctx, "report.pdf", "application/pdf", []byte("x"), "acct-1")

	assert.Error(t, err)
	assert.Nil(t, doc)
}

// ============================================
// Convert Tests
// ============================================

func TestService_Convert_Success(t *testing.T) {
	service, eventStore, _ := newTestDocumentService()
	ctx := context.Background()

	seedUploaded(eventStore, "doc-1")

	doc, err := service.Convert(ctx, "doc-1", "pdf", "# Report")

	require.NoError(t, err)
	assert.Equal(t, StatusConverted, doc.Status)
	assert.Equal(t, "pdf", doc.Converter)
	assert.Equal(t, "# Report", doc.Markdown)
	assert.Equal(t, 2, doc.GetVersion())

	require.Len(t, eventStore.AppendCalls, 1)
	assert.Equal(t, 1, eventStore.AppendCalls[0].ExpectedVersion)
}

func TestService_Convert_NotFound(t *testing.T) {
	service, _, _ := newTestDocumentService()
	ctx := context.Background()

	_, err := service.Convert(ctx, "nope", "pdf", "# Report")

	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestService_Convert_AlreadyConverted(t *testing.T) {
	service, eventStore, _ := newTestDocumentService()
	ctx := context.Background()

	seedUploaded(eventStore, "doc-1")
	seedConverted(eventStore, "doc-1")

	_, err := service.Convert(ctx, "doc-1", "pdf", "# Again")

	assert.ErrorIs(t, err, ErrAlreadyConverted)
}

func TestService_Convert_Archived(t *testing.T) {
	service, eventStore, _ := newTestDocumentService()
	ctx := context.Background()

	seedUploaded(eventStore, "doc-1")
	_ = eventStore.AddEvent("doc-1", AggregateType, EventDocumentArchived, DocumentArchived{DocumentID: "doc-1"})

	_, err := service.Convert(ctx, "doc-1", "pdf", "# Report")

	assert.ErrorIs(t, err, ErrDocumentArchived)
}

// ============================================
// Analyze Tests
// ============================================

func TestService_Analyze_Success(t *testing.T) {
	service, eventStore, _ := newTestDocumentService()
	ctx := context.Background()

	seedUploaded(eventStore, "doc-1")
	seedConverted(eventStore, "doc-1")

	doc, err := service.Analyze(ctx, "doc-1", "reviewer-large", "Three findings.", 3)

	require.NoError(t, err)
	assert.Equal(t, StatusAnalyzed, doc.Status)
	assert.Equal(t, "reviewer-large", doc.Model)
	assert.Equal(t, "Three findings.", doc.Summary)
	assert.Equal(t, 3, doc.FindingsCount)
	assert.Equal(t, 1, doc.AnalysisRuns)
}

func TestService_Analyze_BeforeConversion(t *testing.T) {
	service, eventStore, _ := newTestDocumentService()
	ctx := context.Background()

	seedUploaded(eventStore, "doc-1")

	_, err := service.Analyze(ctx, "doc-1", "reviewer-large", "summary", 0)

	assert.ErrorIs(t, err, ErrNotConverted)
}

func TestService_Analyze_ReanalysisReplacesSummary(t *testing.T) {
	service, eventStore, _ := newTestDocumentService()
	ctx := context.Background()

	seedUploaded(eventStore, "doc-1")
	seedConverted(eventStore, "doc-1")

	_, err := service.Analyze(ctx, "doc-1", "reviewer-small", "First pass.", 1)
	require.NoError(t, err)

	doc, err := service.Analyze(ctx, "doc-1", "reviewer-large", "Second pass.", 4)

	require.NoError(t, err)
	assert.Equal(t, "Second pass.", doc.Summary)
	assert.Equal(t, 4, doc.FindingsCount)
	assert.Equal(t, 2, doc.AnalysisRuns)
}

func TestService_Analyze_Archived(t *testing.T) {
	service, eventStore, _ := newTestDocumentService()
	ctx := context.Background()

	seedUploaded(eventStore, "doc-1")
	seedConverted(eventStore, "doc-1")
	_ = eventStore.AddEvent("doc-1", AggregateType, EventDocumentArchived, DocumentArchived{DocumentID: "doc-1"})

	_, err := service.Analyze(ctx, "doc-1", "reviewer-large", "summary", 0)

	assert.ErrorIs(t, err, ErrDocumentArchived)
}

// ============================================
// Archive Tests
// ============================================

func TestService_Archive_Success(t *testing.T) {
	service, eventStore, _ := newTestDocumentService()
	ctx := context.Background()

	seedUploaded(eventStore, "doc-1")

	err := service.Archive(ctx, "doc-1", "superseded")

	require.NoError(t, err)
	require.Len(t, eventStore.AppendCalls, 1)
	assert.Equal(t, EventDocumentArchived, eventStore.AppendCalls[0].Events[0].EventType)
}

func TestService_Archive_Twice(t *testing.T) {
	service, eventStore, _ := newTestDocumentService()
	ctx := context.Background()

	seedUploaded(eventStore, "doc-1")

	require.NoError(t, service.Archive(ctx, "doc-1", "superseded"))
	err := service.Archive(ctx, "doc-1", "again")

	assert.ErrorIs(t, err, ErrDocumentArchived)
}

func TestService_Archive_NotFound(t *testing.T) {
	service, _, _ := newTestDocumentService()
	ctx := context.Background()

	err := service.Archive(ctx, "nope", "reason")

	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

// ============================================
// Lifecycle Tests
// ============================================

func TestDocumentLifecycle_HappyPath(t *testing.T) {
	service, _, _ := newTestDocumentService()
	ctx := context.Background()

	doc, err := service.Upload(ctx, "report.pdf", "application/pdf", []byte("bytes"), "acct-1")
	require.NoError(t, err)

	doc, err = service.Convert(ctx, doc.ID, "pdf", "# Report")
	require.NoError(t, err)

	doc, err = service.Analyze(ctx, doc.ID, "reviewer-large", "Looks fine.", 0)
	require.NoError(t, err)
	assert.Equal(t, 3, doc.GetVersion())

	require.NoError(t, service.Archive(ctx, doc.ID, "done"))

	final, err := service.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusArchived, final.Status)
	assert.Equal(t, 4, final.GetVersion())
	// Earlier fields survive later transitions
	assert.Equal(t, "# Report", final.Markdown)
	assert.Equal(t, "Looks fine.", final.Summary)
}

func TestService_LoadFromSnapshot(t *testing.T) {
	service, eventStore, snapshotStore := newTestDocumentService()
	ctx := context.Background()

	seedUploaded(eventStore, "doc-1")
	snapshotStore.SetSnapshot(&store.Snapshot{
		AggregateID:   "doc-1",
		AggregateType: AggregateType,
		Version:       1,
		State:         []byte(`{"id":"doc-1","version":1,"filename":"report.pdf","status":"uploaded"}`),
	})

	doc, err := service.Convert(ctx, "doc-1", "pdf", "# Report")

	require.NoError(t, err)
	assert.Equal(t, StatusConverted, doc.Status)
	assert.Equal(t, 2, doc.GetVersion())
}
