package service

import (
	"time"

	"partnerpay/config"
	"partnerpay/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// uowMocks bundles a mock unit of work with every mock repository wired in
type uowMocks struct {
	factory    *MockUnitOfWorkFactory
	uow        *MockUnitOfWork
	projects   *MockProjectRepository
	partners   *MockPartnerRepository
	scenarios  *MockScenarioRepository
	attendance *MockAttendanceRepository
	audit      *MockAuditRepository
	events     *MockEventPublisher
}

// newUoWMocks returns mocks where Create, Begin and Rollback always succeed.
// Tests add their own Commit expectation.
func newUoWMocks() *uowMocks {
	m := &uowMocks{
		factory:    new(MockUnitOfWorkFactory),
		uow:        new(MockUnitOfWork),
		projects:   new(MockProjectRepository),
		partners:   new(MockPartnerRepository),
		scenarios:  new(MockScenarioRepository),
		attendance: new(MockAttendanceRepository),
		audit:      new(MockAuditRepository),
		events:     new(MockEventPublisher),
	}
	m.uow.SetRepositories(m.projects, m.partners, m.scenarios, m.attendance, m.audit, m.events)

	m.factory.On("Create").Return(m.uow)
	m.uow.On("Begin", mock.Anything).Return(nil)
	m.uow.On("Rollback").Return(nil)

	return m
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testConfig() *config.Config {
	return &config.Config{
		FirmPercentage:    decimal.NewFromInt(3),
		Currency:          "zł",
		DefaultPartners:   []string{"W1", "W2", "W3"},
		AuditQueryLimit:   200,
		FallbackScenarios: config.DefaultFallbackScenarios(),
		Environment:       "test",
	}
}

func testProject(id int64, value string, plannedDays int, scenario string) *models.Project {
	return &models.Project{
		ID:          id,
		Name:        "Dom jednorodzinny",
		Date:        time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		Scenario:    scenario,
		Value:       dec(value),
		PlannedDays: plannedDays,
		CreatedAt:   time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}
