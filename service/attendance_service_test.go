package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"partnerpay/events"
	"partnerpay/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAttendanceService_LogAttendance(t *testing.T) {
	ctx := context.Background()
	m := newUoWMocks()
	m.uow.On("Commit").Return(nil)

	day := time.Date(2024, 3, 18, 14, 30, 0, 0, time.FixedZone("CET", 3600))
	m.projects.On("GetByID", ctx, int64(1)).Return(testProject(1, "1000", 10, "S"), nil)
	m.attendance.On("Upsert", ctx, mock.MatchedBy(func(e *models.AttendanceEntry) bool {
		return e.ProjectID == 1 &&
			e.Partner == "W1" &&
			e.Present &&
			e.Date.Equal(time.Date(2024, 3, 18, 0, 0, 0, 0, time.UTC))
	})).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*models.AttendanceEntry).ID = 77
	})

	entry, err := NewAttendanceService(m.factory).LogAttendance(ctx, 1, day, " W1 ", true)

	require.NoError(t, err)
	assert.Equal(t, int64(77), entry.ID)
	require.Len(t, m.events.Events, 1)
	logged, ok := m.events.Events[0].(events.AttendanceLoggedEvent)
	require.True(t, ok)
	assert.Equal(t, "W1", logged.Partner)

	m.attendance.AssertExpectations(t)
	m.uow.AssertCalled(t, "Commit")
}

func TestAttendanceService_LogAttendance_UnknownProject(t *testing.T) {
	ctx := context.Background()
	m := newUoWMocks()

	m.projects.On("GetByID", ctx, int64(5)).Return(nil, nil)

	_, err := NewAttendanceService(m.factory).LogAttendance(ctx, 5, time.Now(), "W1", true)

	assert.True(t, errors.Is(err, ErrNotFound))
	m.attendance.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	m.uow.AssertNotCalled(t, "Commit")
}

func TestAttendanceService_LogAttendance_BlankPartner(t *testing.T) {
	m := newUoWMocks()

	_, err := NewAttendanceService(m.factory).LogAttendance(context.Background(), 1, time.Now(), "", true)

	assert.True(t, errors.Is(err, ErrValidation))
	m.factory.AssertNotCalled(t, "Create")
}

func TestAttendanceService_LogDay_WritesEveryPartnerInOneTransaction(t *testing.T) {
	ctx := context.Background()
	m := newUoWMocks()
	m.uow.On("Commit").Return(nil).Once()

	m.projects.On("GetByID", ctx, int64(1)).Return(testProject(1, "1000", 10, "S"), nil)

	var written []string
	m.attendance.On("Upsert", ctx, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		e := args.Get(1).(*models.AttendanceEntry)
		written = append(written, e.Partner)
	})

	presence := map[string]bool{"W3": false, "W1": true, "W2": true}
	err := NewAttendanceService(m.factory).LogDay(ctx, 1, time.Date(2024, 3, 18, 0, 0, 0, 0, time.UTC), presence)

	require.NoError(t, err)
	assert.Equal(t, []string{"W1", "W2", "W3"}, written)
	m.factory.AssertNumberOfCalls(t, "Create", 1)
	assert.Len(t, m.events.Events, 3)
}

func TestAttendanceService_LogDay_FailureRollsBack(t *testing.T) {
	ctx := context.Background()
	m := newUoWMocks()

	m.projects.On("GetByID", ctx, int64(1)).Return(testProject(1, "1000", 10, "S"), nil)
	m.attendance.On("Upsert", ctx, mock.Anything).Return(errors.New("connection reset"))

	err := NewAttendanceService(m.factory).LogDay(ctx, 1, time.Now(), map[string]bool{"W1": true})

	require.Error(t, err)
	m.uow.AssertNotCalled(t, "Commit")
	m.uow.AssertCalled(t, "Rollback")
}

func TestAttendanceService_GetWorkedDaysByPartner(t *testing.T) {
	ctx := context.Background()
	m := newUoWMocks()
	partners := []string{"W1", "W2"}

	m.attendance.On("CountPresentByPartner", ctx, int64(1), partners).Return(map[string]int{"W1": 4, "W2": 0}, nil)

	worked, err := NewAttendanceService(m.factory).GetWorkedDaysByPartner(ctx, 1, partners)

	require.NoError(t, err)
	assert.Equal(t, map[string]int{"W1": 4, "W2": 0}, worked)
}

func TestAttendanceService_ListEntries(t *testing.T) {
	ctx := context.Background()
	m := newUoWMocks()

	entries := []*models.AttendanceEntry{
		{ID: 2, ProjectID: 1, Partner: "W1", Date: time.Date(2024, 3, 19, 0, 0, 0, 0, time.UTC)},
		{ID: 1, ProjectID: 1, Partner: "W1", Date: time.Date(2024, 3, 18, 0, 0, 0, 0, time.UTC)},
	}
	m.attendance.On("GetByProject", ctx, int64(1)).Return(entries, nil)

	result, err := NewAttendanceService(m.factory).ListEntries(ctx, 1)

	require.NoError(t, err)
	assert.Equal(t, entries, result)
}
