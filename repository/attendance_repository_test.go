package repository

import (
	"context"
	"testing"
	"time"

	"partnerpay/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttendanceRepository(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	projects := NewProjectRepository(testDB.DB)
	repo := NewAttendanceRepository(testDB.DB)
	ctx := context.Background()

	project := testutil.CreateTestProject("Dom", "Scenariusz 1", 1000, 10)
	require.NoError(t, projects.Create(ctx, project))
	other := testutil.CreateTestProjectOn("Garaż", testutil.Day(2024, 4, 2), 500)
	require.NoError(t, projects.Create(ctx, other))

	t.Run("last write wins", func(t *testing.T) {
		day := testutil.Day(2024, 3, 18)

		first := testutil.CreateTestAttendance(project.ID, day, "W1", true)
		require.NoError(t, repo.Upsert(ctx, first))

		time.Sleep(10 * time.Millisecond)

		second := testutil.CreateTestAttendance(project.ID, day, "W1", false)
		require.NoError(t, repo.Upsert(ctx, second))

		assert.Equal(t, first.ID, second.ID, "the same key keeps its row")
		assert.True(t, second.LoggedAt.After(first.LoggedAt))

		entries, err := repo.GetByProject(ctx, project.ID)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.False(t, entries[0].Present)
	})

	t.Run("ordering and counts", func(t *testing.T) {
		require.NoError(t, repo.Upsert(ctx, testutil.CreateTestAttendance(project.ID, testutil.Day(2024, 3, 18), "W2", true)))
		require.NoError(t, repo.Upsert(ctx, testutil.CreateTestAttendance(project.ID, testutil.Day(2024, 3, 19), "W2", true)))
		require.NoError(t, repo.Upsert(ctx, testutil.CreateTestAttendance(project.ID, testutil.Day(2024, 3, 19), "W1", true)))
		require.NoError(t, repo.Upsert(ctx, testutil.CreateTestAttendance(other.ID, testutil.Day(2024, 4, 2), "W1", true)))

		entries, err := repo.GetByProject(ctx, project.ID)
		require.NoError(t, err)
		require.Len(t, entries, 4)

		var keys []string
		for _, e := range entries {
			keys = append(keys, e.Date.Format(time.DateOnly)+"/"+e.Partner)
		}
		assert.Equal(t, []string{"2024-03-19/W1", "2024-03-19/W2", "2024-03-18/W1", "2024-03-18/W2"}, keys)

		worked, err := repo.CountPresentByPartner(ctx, project.ID, []string{"W1", "W2", "W3"})
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"W1": 1, "W2": 2, "W3": 0}, worked)

		none, err := repo.CountPresentByPartner(ctx, project.ID, nil)
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("export joins project", func(t *testing.T) {
		rows, err := repo.GetAllForExport(ctx)
		require.NoError(t, err)
		require.Len(t, rows, 5)

		assert.Equal(t, "Garaż", rows[0].ProjectName, "most recently logged first")
		assert.Equal(t, "2024-04", rows[0].ProjectMonth)
		for _, r := range rows[1:] {
			assert.Equal(t, "Dom", r.ProjectName)
			assert.Equal(t, "2024-03", r.ProjectMonth)
		}
	})

	t.Run("delete by project", func(t *testing.T) {
		removed, err := repo.DeleteByProject(ctx, project.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(4), removed)

		entries, err := repo.GetByProject(ctx, project.ID)
		require.NoError(t, err)
		assert.Empty(t, entries)

		remaining, err := repo.GetByProject(ctx, other.ID)
		require.NoError(t, err)
		assert.Len(t, remaining, 1)
	})
}
