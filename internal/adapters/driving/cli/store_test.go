package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/wikiassist/internal/core/domain"
)

func TestHeartbeatCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	collectionService = &mockCollectionService{heartbeat: 1712345678}

	out, err := execute("heartbeat")

	require.NoError(t, err)
	assert.Contains(t, out, "Heartbeat: 1712345678")
}

func TestHeartbeatCmd_Unreachable(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	collectionService = &mockCollectionService{err: &domain.TransportError{Op: "heartbeat", Err: errors.New("refused")}}

	_, err := execute("heartbeat")

	require.Error(t, err)
	var te *domain.TransportError
	assert.ErrorAs(t, err, &te)
}

func TestIdentityCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	collectionService = &mockCollectionService{identity: &domain.Identity{
		UserID: "u1", Tenant: "default_tenant", Databases: []string{"default_database", "other"},
	}}

	out, err := execute("identity")

	require.NoError(t, err)
	assert.Contains(t, out, "User:      u1")
	assert.Contains(t, out, "Tenant:    default_tenant")
	assert.Contains(t, out, "Databases: default_database, other")
}

func TestListCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	t.Run("empty", func(t *testing.T) {
		collectionService = &mockCollectionService{}

		out, err := execute("list")

		require.NoError(t, err)
		assert.Contains(t, out, "No collections.")
	})

	t.Run("collections", func(t *testing.T) {
		collectionService = &mockCollectionService{collections: []domain.Collection{
			{ID: "c1", Name: "reports"},
			{ID: "c2", Name: "templates"},
		}}

		out, err := execute("list")

		require.NoError(t, err)
		assert.Contains(t, out, "reports")
		assert.Contains(t, out, "c2")
	})
}

func TestGetCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	mock := &mockCollectionService{getRes: &domain.GetResult{
		IDs:       []string{"reports:a@2"},
		Documents: []string{"body"},
		Metadatas: []map[string]any{{"processed_at": "2024-03-01T10:00:00Z"}},
	}}
	collectionService = mock

	out, err := execute("get", "-c", "reports", "reports:a", "reports:b@4")

	require.NoError(t, err)
	assert.Equal(t, "reports", mock.lastCollection)
	assert.Equal(t, []string{"reports:a", "reports:b@4"}, mock.lastIDs)
	assert.Contains(t, out, "[reports:a@2]")
	assert.Contains(t, out, "processed_at: 2024-03-01T10:00:00Z")
	assert.Contains(t, out, "  body")
}

func TestGetCmd_NoRecords(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("get", "reports:a")

	require.NoError(t, err)
	assert.Contains(t, out, "No records found.")
}

func TestDeleteCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	t.Run("requires confirmation", func(t *testing.T) {
		mock := &mockCollectionService{}
		collectionService = mock

		_, err := execute("delete", "reports")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "without --yes")
		assert.Empty(t, mock.deleted)
	})

	t.Run("deletes with --yes", func(t *testing.T) {
		mock := &mockCollectionService{}
		collectionService = mock

		out, err := execute("delete", "--yes", "reports")

		require.NoError(t, err)
		assert.Equal(t, []string{"reports"}, mock.deleted)
		assert.Contains(t, out, "Deleted collection reports")
	})

	t.Run("not found", func(t *testing.T) {
		collectionService = &mockCollectionService{err: domain.ErrNotFound}

		_, err := execute("delete", "--yes", "missing")

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestStoreCmds_ServiceNotConfigured(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	collectionService = nil

	for _, args := range [][]string{
		{"heartbeat"}, {"identity"}, {"list"}, {"get", "x"}, {"delete", "--yes", "x"}, {"query", "x"},
	} {
		_, err := execute(args...)
		require.Error(t, err, args[0])
		assert.Contains(t, err.Error(), "collection service not configured", args[0])
	}
}
