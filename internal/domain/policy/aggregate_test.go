package policy

import (
	"context"
	"testing"

	"github.com/example/doc-insight/internal/infrastructure/store/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPolicyService() (*Service, *mocks.MockEventStore) {
	eventStore := mocks.NewMockEventStore()
	service := NewService(eventStore, mocks.NewMockSnapshotStore())
	return service, eventStore
}

func seedRepository(eventStore *mocks.MockEventStore, repositoryID string) {
	_ = eventStore.AddEvent(repositoryID, AggregateType, EventRepositoryCreated, RepositoryCreated{
		RepositoryID: repositoryID,
		Name:         "security",
		CreatedBy:    "acct-1",
	})
}

// ============================================
// Create Tests
// ============================================

func TestService_Create_Success(t *testing.T) {
	service, eventStore := newTestPolicyService()
	ctx := context.Background()

	repo, err := service.Create(ctx, "security", "acct-1")

	require.NoError(t, err)
	assert.NotEmpty(t, repo.ID)
	assert.Equal(t, "security", repo.Name)
	assert.Empty(t, repo.Policies)
	assert.Equal(t, 1, repo.GetVersion())

	require.Len(t, eventStore.AppendCalls, 1)
	assert.Equal(t, EventRepositoryCreated, eventStore.AppendCalls[0].Events[0].EventType)
}

func TestService_Create_EmptyName(t *testing.T) {
	service, _ := newTestPolicyService()
	ctx := context.Background()

	repo, err := service.Create(ctx, "", "acct-1")

	assert.ErrorIs(t, err, ErrEmptyName)
	assert.Nil(t, repo)
}

// ============================================
// AddPolicy Tests
// ============================================

func TestService_AddPolicy_Success(t *testing.T) {
	service, eventStore := newTestPolicyService()
	ctx := context.Background()

	seedRepository(eventStore, "repo-1")

	repo, err := service.AddPolicy(ctx, "repo-1", "SEC-004", "No plaintext secrets", "Secrets must never appear in documents.")

	require.NoError(t, err)
	p, ok := repo.Policies["SEC-004"]
	require.True(t, ok)
	assert.Equal(t, "No plaintext secrets", p.Title)
	assert.Equal(t, 1, p.Revision)
}

func TestService_AddPolicy_EmptyCode(t *testing.T) {
	service, eventStore := newTestPolicyService()
	ctx := context.Background()

	seedRepository(eventStore, "repo-1")

	_, err := service.AddPolicy(ctx, "repo-1", "", "title", "body")

	assert.ErrorIs(t, err, ErrEmptyCode)
}

func TestService_AddPolicy_DuplicateCode(t *testing.T) {
	service, eventStore := newTestPolicyService()
	ctx := context.Background()

	seedRepository(eventStore, "repo-1")
	_, err := service.AddPolicy(ctx, "repo-1", "SEC-004", "first", "body")
	require.NoError(t, err)

	_, err = service.AddPolicy(ctx, "repo-1", "SEC-004", "second", "body")

	assert.ErrorIs(t, err, ErrDuplicatePolicy)
}

func TestService_AddPolicy_RepositoryNotFound(t *testing.T) {
	service, _ := newTestPolicyService()
	ctx := context.Background()

	_, err := service.AddPolicy(ctx, "nope", "SEC-004", "title", "body")

	assert.ErrorIs(t, err, ErrRepositoryNotFound)
}

// ============================================
// RevisePolicy Tests
// ============================================

func TestService_RevisePolicy_BumpsRevision(t *testing.T) {
	service, eventStore := newTestPolicyService()
	ctx := context.Background()

	seedRepository(eventStore, "repo-1")
	_, err := service.AddPolicy(ctx, "repo-1", "SEC-004", "title", "body v1")
	require.NoError(t, err)

	repo, err := service.RevisePolicy(ctx, "repo-1", "SEC-004", "title", "body v2")
	require.NoError(t, err)
	assert.Equal(t, 2, repo.Policies["SEC-004"].Revision)
	assert.Equal(t, "body v2", repo.Policies["SEC-004"].Body)

	repo, err = service.RevisePolicy(ctx, "repo-1", "SEC-004", "title", "body v3")
	require.NoError(t, err)
	assert.Equal(t, 3, repo.Policies["SEC-004"].Revision)
}

func TestService_RevisePolicy_NotFound(t *testing.T) {
	service, eventStore := newTestPolicyService()
	ctx := context.Background()

	seedRepository(eventStore, "repo-1")

	_, err := service.RevisePolicy(ctx, "repo-1", "SEC-404", "title", "body")

	assert.ErrorIs(t, err, ErrPolicyNotFound)
}

// ============================================
// RemovePolicy Tests
// ============================================

func TestService_RemovePolicy_Success(t *testing.T) {
	service, eventStore := newTestPolicyService()
	ctx := context.Background()

	seedRepository(eventStore, "repo-1")
	_, err := service.AddPolicy(ctx, "repo-1", "SEC-004", "title", "body")
	require.NoError(t, err)

	require.NoError(t, service.RemovePolicy(ctx, "repo-1", "SEC-004"))

	repo, err := service.Get(ctx, "repo-1")
	require.NoError(t, err)
	assert.NotContains(t, repo.Policies, "SEC-004")
}

func TestService_RemovePolicy_NotFound(t *testing.T) {
	service, eventStore := newTestPolicyService()
	ctx := context.Background()

	seedRepository(eventStore, "repo-1")

	err := service.RemovePolicy(ctx, "repo-1", "SEC-404")

	assert.ErrorIs(t, err, ErrPolicyNotFound)
}

func TestService_RemovePolicy_CodeReusableAfterRemoval(t *testing.T) {
	service, eventStore := newTestPolicyService()
	ctx := context.Background()

	seedRepository(eventStore, "repo-1")
	_, err := service.AddPolicy(ctx, "repo-1", "SEC-004", "old", "body")
	require.NoError(t, err)
	require.NoError(t, service.RemovePolicy(ctx, "repo-1", "SEC-004"))

	repo, err := service.AddPolicy(ctx, "repo-1", "SEC-004", "new", "body")

	require.NoError(t, err)
	assert.Equal(t, "new", repo.Policies["SEC-004"].Title)
	// Revision restarts for the re-added code
	assert.Equal(t, 1, repo.Policies["SEC-004"].Revision)
}
