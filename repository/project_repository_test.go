package repository

import (
	"context"
	"errors"
	"testing"

	"partnerpay/models"
	"partnerpay/repository/testutil"
	"partnerpay/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectRepository(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewProjectRepository(testDB.DB)
	ctx := context.Background()

	march := testutil.CreateTestProjectOn("Marzec A", testutil.Day(2024, 3, 5), 1000)
	march.Value = decimal.RequireFromString("1000.55")
	require.NoError(t, repo.Create(ctx, march))
	march2 := testutil.CreateTestProjectOn("Marzec B", testutil.Day(2024, 3, 20), 500)
	require.NoError(t, repo.Create(ctx, march2))
	lastYear := testutil.CreateTestProjectOn("Grudzień", testutil.Day(2023, 12, 1), 200)
	lastYear.Scenario = "Scenariusz 2"
	require.NoError(t, repo.Create(ctx, lastYear))

	t.Run("get by id", func(t *testing.T) {
		got, err := repo.GetByID(ctx, march.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "Marzec A", got.Name)
		assert.True(t, got.Value.Equal(decimal.RequireFromString("1000.55")))
		assert.Equal(t, testutil.Day(2024, 3, 5), got.Date.UTC())
		assert.Equal(t, "2024-03", got.Month())

		missing, err := repo.GetByID(ctx, 9999)
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("get all newest first", func(t *testing.T) {
		all, err := repo.GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, lastYear.ID, all[0].ID)
		assert.Equal(t, march.ID, all[2].ID)
	})

	t.Run("update", func(t *testing.T) {
		march2.Name = "Marzec B2"
		march2.PlannedDays = 7
		require.NoError(t, repo.Update(ctx, march2))

		require.NoError(t, repo.UpdatePlannedDays(ctx, march2.ID, 8))

		got, err := repo.GetByID(ctx, march2.ID)
		require.NoError(t, err)
		assert.Equal(t, "Marzec B2", got.Name)
		assert.Equal(t, 8, got.PlannedDays)

		assert.True(t, errors.Is(repo.UpdatePlannedDays(ctx, 9999, 1), service.ErrNotFound))
		ghost := testutil.CreateTestProject("Ghost", "S", 1, 1)
		ghost.ID = 9999
		assert.True(t, errors.Is(repo.Update(ctx, ghost), service.ErrNotFound))
	})

	t.Run("scenario references", func(t *testing.T) {
		count, err := repo.CountByScenario(ctx, "Scenariusz 1")
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		moved, err := repo.RenameScenario(ctx, "Scenariusz 2", "Zimowy")
		require.NoError(t, err)
		assert.Equal(t, int64(1), moved)

		count, err = repo.CountByScenario(ctx, "Scenariusz 2")
		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})

	t.Run("summaries", func(t *testing.T) {
		monthly, err := repo.SummaryByPeriod(ctx, models.SummaryMonthly)
		require.NoError(t, err)
		require.Len(t, monthly, 2)
		assert.Equal(t, "2024-03", monthly[0].Period)
		assert.Equal(t, 2, monthly[0].ProjectCount)
		assert.True(t, monthly[0].TotalValue.Equal(decimal.RequireFromString("1500.55")))
		assert.Equal(t, 18, monthly[0].TotalPlannedDays)
		assert.Equal(t, "2023-12", monthly[1].Period)

		yearly, err := repo.SummaryByPeriod(ctx, models.SummaryYearly)
		require.NoError(t, err)
		require.Len(t, yearly, 2)
		assert.Equal(t, "2024", yearly[0].Period)
		assert.Equal(t, "2023", yearly[1].Period)

		_, err = repo.SummaryByPeriod(ctx, models.SummaryPeriod("week"))
		assert.Error(t, err)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, lastYear.ID))
		assert.True(t, errors.Is(repo.Delete(ctx, lastYear.ID), service.ErrNotFound))
	})
}
