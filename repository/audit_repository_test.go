package repository

import (
	"context"
	"testing"

	"partnerpay/models"
	"partnerpay/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditRepository_SeededMigrationEntries(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewAuditRepository(testDB.DB)
	ctx := context.Background()

	entries, err := repo.Query(ctx, models.AuditFilter{EntityType: models.AuditEntityScenario})
	require.NoError(t, err)
	require.Len(t, entries, 3)

	for _, e := range entries {
		assert.Equal(t, models.AuditActionMigrated, e.Action)
		assert.Nil(t, e.OldValue)
		assert.Contains(t, e.NewValue, "shares")
	}
}

func TestAuditRepository_AppendAndQuery(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	testDB.Reset(t)
	repo := NewAuditRepository(testDB.DB)
	ctx := context.Background()

	created := &models.AuditEntry{
		EntityType: models.AuditEntityScenario,
		EntityID:   1,
		Action:     models.AuditActionCreated,
		NewValue:   map[string]any{"name": "Alfa", "description": "", "is_default": true},
	}
	require.NoError(t, repo.Append(ctx, created))
	assert.NotZero(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	shares := &models.AuditEntry{
		EntityType: models.AuditEntityScenarioShares,
		EntityID:   1,
		Action:     models.AuditActionUpdated,
		OldValue:   map[string]any{},
		NewValue:   map[string]any{"W1": 60.0, "W2": 40.0},
	}
	require.NoError(t, repo.Append(ctx, shares))

	other := &models.AuditEntry{
		EntityType: models.AuditEntityScenario,
		EntityID:   2,
		Action:     models.AuditActionDeleted,
		OldValue:   map[string]any{"name": "Beta"},
	}
	require.NoError(t, repo.Append(ctx, other))

	t.Run("newest first", func(t *testing.T) {
		entries, err := repo.Query(ctx, models.AuditFilter{})
		require.NoError(t, err)
		require.Len(t, entries, 3)
		assert.Equal(t, other.ID, entries[0].ID)
		assert.Equal(t, created.ID, entries[2].ID)
	})

	t.Run("snapshots round trip", func(t *testing.T) {
		entries, err := repo.Query(ctx, models.AuditFilter{EntityType: models.AuditEntityScenarioShares})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, map[string]any{}, entries[0].OldValue)
		assert.Equal(t, 60.0, entries[0].NewValue["W1"])
	})

	t.Run("nil snapshot stays nil", func(t *testing.T) {
		id := int64(2)
		entries, err := repo.Query(ctx, models.AuditFilter{EntityID: &id})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Nil(t, entries[0].NewValue)
		assert.Equal(t, "Beta", entries[0].OldValue["name"])
	})

	t.Run("type and id filter", func(t *testing.T) {
		id := int64(1)
		entries, err := repo.Query(ctx, models.AuditFilter{EntityType: models.AuditEntityScenario, EntityID: &id})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, true, entries[0].NewValue["is_default"])
	})

	t.Run("limit", func(t *testing.T) {
		entries, err := repo.Query(ctx, models.AuditFilter{Limit: 2})
		require.NoError(t, err)
		assert.Len(t, entries, 2)
	})
}
