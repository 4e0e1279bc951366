package service

import (
	"context"

	"partnerpay/events"
	"partnerpay/models"

	"github.com/stretchr/testify/mock"
)

// MockProjectRepository is a mock implementation of ProjectRepository
type MockProjectRepository struct {
	mock.Mock
}

func (m *MockProjectRepository) Create(ctx context.Context, project *models.Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

func (m *MockProjectRepository) GetByID(ctx context.Context, id int64) (*models.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *MockProjectRepository) Update(ctx context.Context, project *models.Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

func (m *MockProjectRepository) UpdatePlannedDays(ctx context.Context, id int64, plannedDays int) error {
	args := m.Called(ctx, id, plannedDays)
	return args.Error(0)
}

func (m *MockProjectRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProjectRepository) GetAll(ctx context.Context) ([]*models.Project, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Project), args.Error(1)
}

func (m *MockProjectRepository) CountByScenario(ctx context.Context, scenarioName string) (int, error) {
	args := m.Called(ctx, scenarioName)
	return args.Int(0), args.Error(1)
}

func (m *MockProjectRepository) RenameScenario(ctx context.Context, oldName, newName string) (int64, error) {
	args := m.Called(ctx, oldName, newName)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProjectRepository) SummaryByPeriod(ctx context.Context, period models.SummaryPeriod) ([]*models.PeriodSummary, error) {
	args := m.Called(ctx, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PeriodSummary), args.Error(1)
}

// MockPartnerRepository is a mock implementation of PartnerRepository
type MockPartnerRepository struct {
	mock.Mock
}

func (m *MockPartnerRepository) Create(ctx context.Context, partner *models.Partner) error {
	args := m.Called(ctx, partner)
	return args.Error(0)
}

func (m *MockPartnerRepository) Update(ctx context.Context, oldName string, partner *models.Partner) error {
	args := m.Called(ctx, oldName, partner)
	return args.Error(0)
}

func (m *MockPartnerRepository) Delete(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *MockPartnerRepository) GetAll(ctx context.Context) ([]*models.Partner, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Partner), args.Error(1)
}

// MockScenarioRepository is a mock implementation of ScenarioRepository
type MockScenarioRepository struct {
	mock.Mock
}

func (m *MockScenarioRepository) Create(ctx context.Context, scenario *models.Scenario) error {
	args := m.Called(ctx, scenario)
	return args.Error(0)
}

func (m *MockScenarioRepository) GetByID(ctx context.Context, id int64) (*models.Scenario, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Scenario), args.Error(1)
}

func (m *MockScenarioRepository) GetByName(ctx context.Context, name string) (*models.Scenario, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Scenario), args.Error(1)
}

func (m *MockScenarioRepository) GetDefault(ctx context.Context) (*models.Scenario, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Scenario), args.Error(1)
}

func (m *MockScenarioRepository) GetAll(ctx context.Context) ([]*models.Scenario, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Scenario), args.Error(1)
}

func (m *MockScenarioRepository) Update(ctx context.Context, scenario *models.Scenario) error {
	args := m.Called(ctx, scenario)
	return args.Error(0)
}

func (m *MockScenarioRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockScenarioRepository) ClearDefaults(ctx context.Context, exceptID int64) (int64, error) {
	args := m.Called(ctx, exceptID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockScenarioRepository) GetShares(ctx context.Context, scenarioID int64) (models.Shares, error) {
	args := m.Called(ctx, scenarioID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(models.Shares), args.Error(1)
}

func (m *MockScenarioRepository) DeleteShares(ctx context.Context, scenarioID int64) error {
	args := m.Called(ctx, scenarioID)
	return args.Error(0)
}

func (m *MockScenarioRepository) ReplaceShares(ctx context.Context, scenarioID int64, shares models.Shares) error {
	args := m.Called(ctx, scenarioID, shares)
	return args.Error(0)
}

// MockAttendanceRepository is a mock implementation of AttendanceRepository
type MockAttendanceRepository struct {
	mock.Mock
}

func (m *MockAttendanceRepository) Upsert(ctx context.Context, entry *models.AttendanceEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockAttendanceRepository) GetByProject(ctx context.Context, projectID int64) ([]*models.AttendanceEntry, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.AttendanceEntry), args.Error(1)
}

func (m *MockAttendanceRepository) CountPresentByPartner(ctx context.Context, projectID int64, partners []string) (map[string]int, error) {
	args := m.Called(ctx, projectID, partners)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}

func (m *MockAttendanceRepository) DeleteByProject(ctx context.Context, projectID int64) (int64, error) {
	args := m.Called(ctx, projectID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAttendanceRepository) GetAllForExport(ctx context.Context) ([]*models.WorklogExportRow, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.WorklogExportRow), args.Error(1)
}

// MockAuditRepository is a mock implementation of AuditRepository
type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Append(ctx context.Context, entry *models.AuditEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockAuditRepository) Query(ctx context.Context, filter models.AuditFilter) ([]*models.AuditEntry, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.AuditEntry), args.Error(1)
}

// MockEventPublisher records published events
type MockEventPublisher struct {
	Events []events.Event
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Events = append(m.Events, event)
}

// MockUnitOfWork is a mock implementation of UnitOfWork. Transaction calls
// go through mock expectations; repository getters return whatever was set.
type MockUnitOfWork struct {
	mock.Mock
	projectRepo    ProjectRepository
	partnerRepo    PartnerRepository
	scenarioRepo   ScenarioRepository
	attendanceRepo AttendanceRepository
	auditRepo      AuditRepository
	publisher      *MockEventPublisher
}

// SetRepositories wires the given mock repositories into the unit of work.
// Any argument of a repository mock type is accepted, in any order.
func (m *MockUnitOfWork) SetRepositories(repos ...any) {
	for _, repo := range repos {
		switch r := repo.(type) {
		case *MockProjectRepository:
			m.projectRepo = r
		case *MockPartnerRepository:
			m.partnerRepo = r
		case *MockScenarioRepository:
			m.scenarioRepo = r
		case *MockAttendanceRepository:
			m.attendanceRepo = r
		case *MockAuditRepository:
			m.auditRepo = r
		case *MockEventPublisher:
			m.publisher = r
		}
	}
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) ProjectRepository() ProjectRepository {
	return m.projectRepo
}

func (m *MockUnitOfWork) PartnerRepository() PartnerRepository {
	return m.partnerRepo
}

func (m *MockUnitOfWork) ScenarioRepository() ScenarioRepository {
	return m.scenarioRepo
}

func (m *MockUnitOfWork) AttendanceRepository() AttendanceRepository {
	return m.attendanceRepo
}

func (m *MockUnitOfWork) AuditRepository() AuditRepository {
	return m.auditRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	if m.publisher == nil {
		m.publisher = &MockEventPublisher{}
	}
	return m.publisher
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}
