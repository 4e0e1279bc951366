package repository

import (
	"context"
	"errors"
	"testing"

	"partnerpay/repository/testutil"
	"partnerpay/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarioRepository_SeededScenarios(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewScenarioRepository(testDB.DB)
	ctx := context.Background()

	scenarios, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, scenarios, 3)
	assert.Equal(t, "Scenariusz 1", scenarios[0].Name)
	assert.Equal(t, "Scenariusz 3", scenarios[2].Name)

	def, err := repo.GetDefault(ctx)
	require.NoError(t, err)
	require.NotNil(t, def)
	assert.Equal(t, "Scenariusz 1", def.Name)

	third, err := repo.GetByName(ctx, "Scenariusz 3")
	require.NoError(t, err)
	shares, err := repo.GetShares(ctx, third.ID)
	require.NoError(t, err)
	assert.True(t, shares["W3"].Equal(decimal.RequireFromString("33.34")))
	assert.True(t, shares.Total().Equal(decimal.NewFromInt(100)))
}

func TestScenarioRepository_CRUD(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	testDB.Reset(t)
	repo := NewScenarioRepository(testDB.DB)
	ctx := context.Background()

	t.Run("create and get", func(t *testing.T) {
		scenario := testutil.CreateTestScenario("Alfa")
		require.NoError(t, repo.Create(ctx, scenario))
		assert.NotZero(t, scenario.ID)
		assert.False(t, scenario.CreatedAt.IsZero())

		byID, err := repo.GetByID(ctx, scenario.ID)
		require.NoError(t, err)
		require.NotNil(t, byID)
		assert.Equal(t, "Alfa", byID.Name)
		assert.Equal(t, "test scenario Alfa", byID.Description)

		byName, err := repo.GetByName(ctx, "Alfa")
		require.NoError(t, err)
		assert.Equal(t, scenario.ID, byName.ID)
	})

	t.Run("missing returns nil", func(t *testing.T) {
		missing, err := repo.GetByName(ctx, "Nie ma")
		require.NoError(t, err)
		assert.Nil(t, missing)

		def, err := repo.GetDefault(ctx)
		require.NoError(t, err)
		assert.Nil(t, def)
	})

	t.Run("duplicate name", func(t *testing.T) {
		err := repo.Create(ctx, testutil.CreateTestScenario("Alfa"))
		assert.True(t, errors.Is(err, service.ErrDuplicateName))
	})

	t.Run("update to taken name", func(t *testing.T) {
		beta := testutil.CreateTestScenario("Beta")
		require.NoError(t, repo.Create(ctx, beta))

		beta.Name = "Alfa"
		err := repo.Update(ctx, beta)
		assert.True(t, errors.Is(err, service.ErrDuplicateName))
	})

	t.Run("update missing", func(t *testing.T) {
		ghost := testutil.CreateTestScenario("Ghost")
		ghost.ID = 9999
		err := repo.Update(ctx, ghost)
		assert.True(t, errors.Is(err, service.ErrNotFound))
	})

	t.Run("delete", func(t *testing.T) {
		gamma := testutil.CreateTestScenario("Gamma")
		require.NoError(t, repo.Create(ctx, gamma))

		require.NoError(t, repo.Delete(ctx, gamma.ID))
		assert.True(t, errors.Is(repo.Delete(ctx, gamma.ID), service.ErrNotFound))
	})
}

func TestScenarioRepository_DefaultFlag(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	testDB.Reset(t)
	repo := NewScenarioRepository(testDB.DB)
	ctx := context.Background()

	first := testutil.CreateTestScenario("First")
	first.IsDefault = true
	require.NoError(t, repo.Create(ctx, first))

	t.Run("index rejects a second default", func(t *testing.T) {
		second := testutil.CreateTestScenario("Second")
		second.IsDefault = true
		assert.Error(t, repo.Create(ctx, second))
	})

	t.Run("clear defaults spares the excepted id", func(t *testing.T) {
		cleared, err := repo.ClearDefaults(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), cleared)

		cleared, err = repo.ClearDefaults(ctx, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(1), cleared)

		def, err := repo.GetDefault(ctx)
		require.NoError(t, err)
		assert.Nil(t, def)
	})
}

func TestScenarioRepository_Shares(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	testDB.Reset(t)
	repo := NewScenarioRepository(testDB.DB)
	ctx := context.Background()

	scenario := testutil.CreateTestScenario("Shares")
	require.NoError(t, repo.Create(ctx, scenario))

	empty, err := repo.GetShares(ctx, scenario.ID)
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.NoError(t, repo.ReplaceShares(ctx, scenario.ID, testutil.CreateTestShares(map[string]string{
		"W1": "40", "W2": "30", "W3": "30",
	})))
	require.NoError(t, repo.ReplaceShares(ctx, scenario.ID, testutil.CreateTestShares(map[string]string{
		"W1": "55.5", "W4": "44.5",
	})))

	shares, err := repo.GetShares(ctx, scenario.ID)
	require.NoError(t, err)
	require.Len(t, shares, 2, "replacement is not a merge")
	assert.True(t, shares["W1"].Equal(decimal.RequireFromString("55.5")))
	assert.True(t, shares["W4"].Equal(decimal.RequireFromString("44.5")))

	require.NoError(t, repo.DeleteShares(ctx, scenario.ID))
	shares, err = repo.GetShares(ctx, scenario.ID)
	require.NoError(t, err)
	assert.Empty(t, shares)
}
