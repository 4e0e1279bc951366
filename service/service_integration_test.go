package service_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"partnerpay/config"
	"partnerpay/events"
	"partnerpay/models"
	"partnerpay/repository"
	"partnerpay/repository/testutil"
	"partnerpay/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServices struct {
	db         *testutil.TestDatabase
	bus        *events.Bus
	scenarios  service.ScenarioService
	attendance service.AttendanceService
	audit      service.AuditService
	payouts    service.PayoutService
	projects   service.ProjectService
}

func setupServices(t *testing.T) *testServices {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	testDB := testutil.SetupTestDatabase(t)
	bus := events.NewBus()
	uowFactory := repository.NewUnitOfWorkFactory(testDB.DB, bus)

	cfg := &config.Config{
		FirmPercentage:    decimal.NewFromInt(3),
		Currency:          "zł",
		DefaultPartners:   []string{"W1", "W2", "W3"},
		AuditQueryLimit:   200,
		FallbackScenarios: config.DefaultFallbackScenarios(),
		Environment:       "test",
	}

	return &testServices{
		db:         testDB,
		bus:        bus,
		scenarios:  service.NewScenarioService(uowFactory, cfg.FallbackScenarios),
		attendance: service.NewAttendanceService(uowFactory),
		audit:      service.NewAuditService(uowFactory, cfg.AuditQueryLimit),
		payouts:    service.NewPayoutService(uowFactory, cfg),
		projects:   service.NewProjectService(uowFactory),
	}
}

func countDefaults(t *testing.T, ctx context.Context, scenarios service.ScenarioService) (int, string) {
	t.Helper()
	all, err := scenarios.ListScenarios(ctx)
	require.NoError(t, err)

	count, name := 0, ""
	for _, s := range all {
		if s.IsDefault {
			count++
			name = s.Name
		}
	}
	return count, name
}

func TestScenarioStore_Integration(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()

	t.Run("exactly one default after create and update", func(t *testing.T) {
		count, name := countDefaults(t, ctx, s.scenarios)
		require.Equal(t, 1, count)
		assert.Equal(t, "Scenariusz 1", name)

		_, err := s.scenarios.CreateScenario(ctx, "Nowy", "", true)
		require.NoError(t, err)
		count, name = countDefaults(t, ctx, s.scenarios)
		assert.Equal(t, 1, count)
		assert.Equal(t, "Nowy", name)

		second, err := s.scenarios.GetScenarioByName(ctx, "Scenariusz 2")
		require.NoError(t, err)
		_, err = s.scenarios.UpdateScenario(ctx, second.ID, second.Name, second.Description, true)
		require.NoError(t, err)
		count, name = countDefaults(t, ctx, s.scenarios)
		assert.Equal(t, 1, count)
		assert.Equal(t, "Scenariusz 2", name)
	})

	t.Run("referenced scenario cannot be deleted", func(t *testing.T) {
		project := testutil.CreateTestProject("Dom", "Scenariusz 3", 1000, 10)
		require.NoError(t, s.projects.CreateProject(ctx, project))

		third, err := s.scenarios.GetScenarioByName(ctx, "Scenariusz 3")
		require.NoError(t, err)

		err = s.scenarios.DeleteScenario(ctx, third.ID)
		assert.True(t, errors.Is(err, service.ErrInUse))

		after, err := s.scenarios.GetScenario(ctx, third.ID)
		require.NoError(t, err)
		assert.Equal(t, third.Name, after.Name)
		assert.Len(t, after.Shares, 3)
	})

	t.Run("duplicate create rolls back and publishes nothing", func(t *testing.T) {
		published := 0
		s.bus.Subscribe(events.EventTypeScenarioChanged, func(ctx context.Context, event events.Event) {
			published++
		})

		_, err := s.scenarios.CreateScenario(ctx, "Scenariusz 1", "", false)
		assert.True(t, errors.Is(err, service.ErrDuplicateName))
		assert.Equal(t, 0, published)

		_, err = s.scenarios.CreateScenario(ctx, "Kolejny", "", false)
		require.NoError(t, err)
		assert.Equal(t, 1, published)
	})

	t.Run("share replacement is audited", func(t *testing.T) {
		scenario, err := s.scenarios.GetScenarioByName(ctx, "Kolejny")
		require.NoError(t, err)

		validation, err := s.scenarios.SetScenarioShares(ctx, scenario.ID, models.Shares{
			"W1": decimal.NewFromInt(60),
			"W2": decimal.NewFromInt(39),
		})
		require.NoError(t, err)
		assert.False(t, validation.Valid)
		assert.Equal(t, "too small by 1.00%", validation.Message)

		stored, err := s.scenarios.GetScenario(ctx, scenario.ID)
		require.NoError(t, err)
		assert.Len(t, stored.Shares, 2, "out-of-balance shares are still saved")

		entries, err := s.audit.Query(ctx, models.AuditFilter{EntityType: models.AuditEntityScenarioShares, EntityID: &scenario.ID})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Empty(t, entries[0].OldValue)
		assert.Equal(t, 60.0, entries[0].NewValue["W1"])
	})

	t.Run("deleting a scenario keeps its history", func(t *testing.T) {
		scenario, err := s.scenarios.GetScenarioByName(ctx, "Kolejny")
		require.NoError(t, err)

		require.NoError(t, s.scenarios.DeleteScenario(ctx, scenario.ID))

		_, err = s.scenarios.GetScenario(ctx, scenario.ID)
		assert.True(t, errors.Is(err, service.ErrNotFound))

		entries, err := s.audit.Query(ctx, models.AuditFilter{EntityType: models.AuditEntityScenario, EntityID: &scenario.ID})
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, models.AuditActionDeleted, entries[0].Action)
		assert.Equal(t, models.AuditActionCreated, entries[1].Action)
		assert.Contains(t, entries[0].OldValue, "shares")
	})
}

func TestScenarioExportImport_RoundTrip_Integration(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()

	custom, err := s.scenarios.CreateScenario(ctx, "Własny", "opis", false)
	require.NoError(t, err)
	_, err = s.scenarios.SetScenarioShares(ctx, custom.ID, models.Shares{
		"Ala": decimal.RequireFromString("12.5"),
		"Ola": decimal.RequireFromString("87.5"),
	})
	require.NoError(t, err)

	before, err := s.scenarios.ListScenarios(ctx)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, s.scenarios.ExportScenarios(ctx, &buf))

	s.db.Reset(t)
	empty, err := s.scenarios.ListScenarios(ctx)
	require.NoError(t, err)
	require.Empty(t, empty)

	result, err := s.scenarios.ImportScenarios(ctx, &buf)
	require.NoError(t, err)
	assert.Equal(t, len(before), result.Imported)
	assert.Empty(t, result.Errors)

	after, err := s.scenarios.ListScenarios(ctx)
	require.NoError(t, err)
	require.Len(t, after, len(before))

	byName := make(map[string]*models.Scenario, len(after))
	for _, sc := range after {
		byName[sc.Name] = sc
	}
	for _, want := range before {
		got, ok := byName[want.Name]
		require.True(t, ok, "scenario %s missing after import", want.Name)
		assert.Equal(t, want.Description, got.Description)
		assert.Equal(t, want.IsDefault, got.IsDefault)
		require.Len(t, got.Shares, len(want.Shares))
		for partner, pct := range want.Shares {
			assert.True(t, pct.Equal(got.Shares[partner]), "%s/%s: %s != %s", want.Name, partner, pct, got.Shares[partner])
		}
	}

	t.Run("importing again updates in place", func(t *testing.T) {
		var again bytes.Buffer
		require.NoError(t, s.scenarios.ExportScenarios(ctx, &again))

		result, err := s.scenarios.ImportScenarios(ctx, &again)
		require.NoError(t, err)
		assert.Equal(t, len(before), result.Imported)

		all, err := s.scenarios.ListScenarios(ctx)
		require.NoError(t, err)
		assert.Len(t, all, len(before))
	})
}

func TestPayoutFlow_Integration(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()

	project := testutil.CreateTestProject("Dom", "Scenariusz 1", 1000, 10)
	require.NoError(t, s.projects.CreateProject(ctx, project))

	start := testutil.Day(2024, 3, 18)
	worked := map[string]int{"W1": 5, "W2": 3, "W3": 2}
	for partner, days := range worked {
		for d := 0; d < days; d++ {
			_, err := s.attendance.LogAttendance(ctx, project.ID, start.AddDate(0, 0, d), partner, true)
			require.NoError(t, err)
		}
	}
	// a corrected absence overwrites an earlier presence
	_, err := s.attendance.LogAttendance(ctx, project.ID, start.AddDate(0, 0, 9), "W1", true)
	require.NoError(t, err)
	_, err = s.attendance.LogAttendance(ctx, project.ID, start.AddDate(0, 0, 9), "W1", false)
	require.NoError(t, err)

	counts, err := s.attendance.GetWorkedDaysByPartner(ctx, project.ID, []string{"W1", "W2", "W3", "W4"})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"W1": 5, "W2": 3, "W3": 2, "W4": 0}, counts)

	report, err := s.payouts.CalculatePayouts(ctx, project.ID, []string{"W1", "W2", "W3"})
	require.NoError(t, err)
	assert.Equal(t, models.ShareSourceScenario, report.ShareSource)
	assert.Equal(t, "30.00", report.FirmCut.StringFixed(2))
	assert.Equal(t, "339.50", report.TotalPaid.StringFixed(2))
	assert.Equal(t, "630.50", report.Remaining.StringFixed(2))
	assert.False(t, report.OverPlan)

	t.Run("deleting the project removes its worklog", func(t *testing.T) {
		var deleted []events.ProjectDeletedEvent
		s.bus.Subscribe(events.EventTypeProjectDeleted, func(ctx context.Context, event events.Event) {
			deleted = append(deleted, event.(events.ProjectDeletedEvent))
		})

		require.NoError(t, s.projects.DeleteProject(ctx, project.ID))

		entries, err := s.attendance.ListEntries(ctx, project.ID)
		require.NoError(t, err)
		assert.Empty(t, entries)

		require.Len(t, deleted, 1)
		assert.Equal(t, int64(11), deleted[0].WorklogEntries)

		_, err = s.payouts.CalculatePayouts(ctx, project.ID, nil)
		assert.True(t, errors.Is(err, service.ErrNotFound))
	})

	t.Run("attendance on a missing project", func(t *testing.T) {
		_, err := s.attendance.LogAttendance(ctx, 9999, time.Now(), "W1", true)
		assert.True(t, errors.Is(err, service.ErrNotFound))
	})
}
