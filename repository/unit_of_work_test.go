package repository

import (
	"context"
	"testing"

	"partnerpay/events"
	"partnerpay/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitOfWork_CommitPersistsAndFlushesEvents(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	testDB.Reset(t)
	ctx := context.Background()

	bus := events.NewBus()
	var received []events.Event
	bus.Subscribe(events.EventTypeScenarioChanged, func(ctx context.Context, e events.Event) {
		received = append(received, e)
	})

	uow := NewUnitOfWorkFactory(testDB.DB, bus).Create()
	require.NoError(t, uow.Begin(ctx))
	defer uow.Rollback()

	scenario := testutil.CreateTestScenario("Committed")
	require.NoError(t, uow.ScenarioRepository().Create(ctx, scenario))
	uow.EventBus().Publish(events.ScenarioChangedEvent{ScenarioID: scenario.ID, Name: scenario.Name, Action: "created"})

	assert.Empty(t, received, "events wait for commit")
	require.NoError(t, uow.Commit())
	require.Len(t, received, 1)

	stored, err := NewScenarioRepository(testDB.DB).GetByName(ctx, "Committed")
	require.NoError(t, err)
	assert.NotNil(t, stored)

	assert.NoError(t, uow.Rollback(), "rollback after commit is a no-op")
}

func TestUnitOfWork_RollbackDiscardsChangesAndEvents(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	testDB.Reset(t)
	ctx := context.Background()

	bus := events.NewBus()
	received := 0
	bus.Subscribe(events.EventTypeScenarioChanged, func(ctx context.Context, e events.Event) {
		received++
	})

	uow := NewUnitOfWorkFactory(testDB.DB, bus).Create()
	require.NoError(t, uow.Begin(ctx))

	scenario := testutil.CreateTestScenario("Discarded")
	require.NoError(t, uow.ScenarioRepository().Create(ctx, scenario))
	uow.EventBus().Publish(events.ScenarioChangedEvent{ScenarioID: scenario.ID, Name: scenario.Name, Action: "created"})

	require.NoError(t, uow.Rollback())
	assert.Equal(t, 0, received)

	stored, err := NewScenarioRepository(testDB.DB).GetByName(ctx, "Discarded")
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestUnitOfWork_Lifecycle(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	uow := NewUnitOfWorkFactory(testDB.DB, events.NewBus()).Create()

	assert.Panics(t, func() { uow.ProjectRepository() })
	assert.Error(t, uow.Commit())

	require.NoError(t, uow.Begin(ctx))
	assert.Error(t, uow.Begin(ctx), "nested begin is rejected")
	assert.NotNil(t, uow.AttendanceRepository())
	assert.NotNil(t, uow.AuditRepository())
	assert.NotNil(t, uow.PartnerRepository())
	require.NoError(t, uow.Rollback())
}
