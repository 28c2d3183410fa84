package feedback

import (
	"context"
	"errors"
	"testing"

	"github.com/example/doc-insight/internal/infrastructure/store/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSessionService() (*Service, *mocks.MockEventStore) {
	eventStore := mocks.NewMockEventStore()
	service := NewService(eventStore, mocks.NewMockSnapshotStore())
	return service, eventStore
}

func seedSession(eventStore *mocks.MockEventStore, sessionID string) {
	_ = eventStore.AddEvent(sessionID, AggregateType, EventSessionStarted, SessionStarted{
		SessionID:  sessionID,
		DocumentID: "doc-1",
		Reviewer:   "acct-1",
	})
}

// ============================================
// Start Tests
// ============================================

func TestService_Start_Success(t *testing.T) {
	service, eventStore := newTestSessionService()
	ctx := context.Background()

	session, err := service.Start(ctx, "doc-1", "acct-1")

	require.NoError(t, err)
	assert.NotEmpty(t, session.ID)
	assert.Equal(t, "doc-1", session.DocumentID)
	assert.Equal(t, "acct-1", session.Reviewer)
	assert.False(t, session.Closed)
	assert.Equal(t, 1, session.GetVersion())

	require.Len(t, eventStore.AppendCalls, 1)
	assert.Equal(t, EventSessionStarted, eventStore.AppendCalls[0].Events[0].EventType)
}

func TestService_Start_MissingDocument(t *testing.T) {
	service, eventStore := newTestSessionService()
	ctx := context.Background()

	session, err := service.Start(ctx, "", "acct-1")

	assert.ErrorIs(t, err, ErrMissingDocument)
	assert.Nil(t, session)
	assert.Empty(t, eventStore.AppendCalls)
}

// ============================================
// AddComment Tests
// ============================================

func TestService_AddComment_Success(t *testing.T) {
	service, eventStore := newTestSessionService()
	ctx := context.Background()

	seedSession(eventStore, "sess-1")

	session, err := service.AddComment(ctx, "sess-1", "acct-1", "Unclear wording.", "the second clause")

	require.NoError(t, err)
	require.Len(t, session.Comments, 1)
	assert.Equal(t, "Unclear wording.", session.Comments[0].Body)
	assert.Equal(t, "the second clause", session.Comments[0].Anchor)
	assert.NotEmpty(t, session.Comments[0].ID)
}

func TestService_AddComment_EmptyBody(t *testing.T) {
	service, eventStore := newTestSessionService()
	ctx := context.Background()

	seedSession(eventStore, "sess-1")

	_, err := service.AddComment(ctx, "sess-1", "acct-1", "", "")

	assert.ErrorIs(t, err, ErrEmptyComment)
}

func TestService_AddComment_SessionNotFound(t *testing.T) {
	service, _ := newTestSessionService()
	ctx := context.Background()

	_, err := service.AddComment(ctx, "nope", "acct-1", "body", "")

	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestService_AddComment_ClosedSession(t *testing.T) {
	service, eventStore := newTestSessionService()
	ctx := context.Background()

	seedSession(eventStore, "sess-1")
	_ = eventStore.AddEvent("sess-1", AggregateType, EventSessionClosed, SessionClosed{SessionID: "sess-1"})

	_, err := service.AddComment(ctx, "sess-1", "acct-1", "too late", "")

	assert.ErrorIs(t, err, ErrSessionClosed)
}

// ============================================
// Suggestion Tests
// ============================================

func TestService_ProposeSuggestion_Success(t *testing.T) {
	service, eventStore := newTestSessionService()
	ctx := context.Background()

	seedSession(eventStore, "sess-1")

	session, err := service.ProposeSuggestion(ctx, "sess-1", "teh", "the", "reviewer-large")

	require.NoError(t, err)
	require.Len(t, session.Suggestions, 1)
	assert.Equal(t, "teh", session.Suggestions[0].Excerpt)
	assert.Equal(t, "the", session.Suggestions[0].Replacement)
	assert.Equal(t, SuggestionPending, session.Suggestions[0].Status)
}

func TestService_ProposeSuggestion_EmptyExcerpt(t *testing.T) {
	service, eventStore := newTestSessionService()
	ctx := context.Background()

	seedSession(eventStore, "sess-1")

	_, err := service.ProposeSuggestion(ctx, "sess-1", "", "the", "acct-1")

	assert.ErrorIs(t, err, ErrEmptySuggestion)
}

func TestService_ResolveSuggestion_Accept(t *testing.T) {
	service, eventStore := newTestSessionService()
	ctx := context.Background()

	seedSession(eventStore, "sess-1")
	session, err := service.ProposeSuggestion(ctx, "sess-1", "teh", "the", "reviewer-large")
	require.NoError(t, err)
	suggestionID := session.Suggestions[0].ID

	session, err = service.ResolveSuggestion(ctx, "sess-1", suggestionID, true, "acct-1")

	require.NoError(t, err)
	assert.Equal(t, SuggestionAccepted, session.Suggestions[0].Status)
	assert.Equal(t, "acct-1", session.Suggestions[0].ResolvedBy)
}

func TestService_ResolveSuggestion_Reject(t *testing.T) {
	service, eventStore := newTestSessionService()
	ctx := context.Background()

	seedSession(eventStore, "sess-1")
	session, err := service.ProposeSuggestion(ctx, "sess-1", "teh", "the", "reviewer-large")
	require.NoError(t, err)
	suggestionID := session.Suggestions[0].ID

	session, err = service.ResolveSuggestion(ctx, "sess-1", suggestionID, false, "acct-1")

	require.NoError(t, err)
	assert.Equal(t, SuggestionRejected, session.Suggestions[0].Status)
}

func TestService_ResolveSuggestion_NotFound(t *testing.T) {
	service, eventStore := newTestSessionService()
	ctx := context.Background()

	seedSession(eventStore, "sess-1")

	_, err := service.ResolveSuggestion(ctx, "sess-1", "nope", true, "acct-1")

	assert.ErrorIs(t, err, ErrSuggestionNotFound)
}

func TestService_ResolveSuggestion_Twice(t *testing.T) {
	service, eventStore := newTestSessionService()
	ctx := context.Background()

	seedSession(eventStore, "sess-1")
	session, err := service.ProposeSuggestion(ctx, "sess-1", "teh", "the", "reviewer-large")
	require.NoError(t, err)
	suggestionID := session.Suggestions[0].ID

	_, err = service.ResolveSuggestion(ctx, "sess-1", suggestionID, true, "acct-1")
	require.NoError(t, err)

	_, err = service.ResolveSuggestion(ctx, "sess-1", suggestionID, false, "acct-2")

	assert.ErrorIs(t, err, ErrSuggestionResolved)
}

// ============================================
// Close Tests
// ============================================

func TestService_Close_Success(t *testing.T) {
	service, eventStore := newTestSessionService()
	ctx := context.Background()

	seedSession(eventStore, "sess-1")

	err := service.Close(ctx, "sess-1", "acct-1")

	require.NoError(t, err)

	session, err := service.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.True(t, session.Closed)
}

func TestService_Close_Twice(t *testing.T) {
	service, eventStore := newTestSessionService()
	ctx := context.Background()

	seedSession(eventStore, "sess-1")
	require.NoError(t, service.Close(ctx, "sess-1", "acct-1"))

	err := service.Close(ctx, "sess-1", "acct-1")

	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestService_Close_ThenResolveRejected(t *testing.T) {
	service, eventStore := newTestSessionService()
	ctx := context.Background()

	seedSession(eventStore, "sess-1")
	session, err := service.ProposeSuggestion(ctx, "sess-1", "teh", "the", "reviewer-large")
	require.NoError(t, err)
	suggestionID := session.Suggestions[0].ID

	require.NoError(t, service.Close(ctx, "sess-1", "acct-1"))

	_, err = service.ResolveSuggestion(ctx, "sess-1", suggestionID, true, "acct-1")

	assert.ErrorIs(t, err, ErrSessionClosed)
}

// ============================================
// Error Path Tests
// ============================================

func TestService_Start_EventStoreError(t *testing.T) {
	service, eventStore := newTestSessionService()
	ctx := context.Background()

	eventStore.AppendErr = errors.New("database error")

	session, err := service.Start(ctx, "doc-1", "acct-1")

	assert.Error(t, err)
	assert.Nil(t, session)
}
