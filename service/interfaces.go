package service

import (
	"context"
	"io"
	"time"

	"partnerpay/events"
	"partnerpay/models"
)

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	// Create inserts a project and fills in its ID and CreatedAt
	Create(ctx context.Context, project *models.Project) error

	// GetByID returns nil, nil when the project does not exist
	GetByID(ctx context.Context, id int64) (*models.Project, error)

	// Update overwrites every editable field
	Update(ctx context.Context, project *models.Project) error

	// UpdatePlannedDays changes only the planned day count
	UpdatePlannedDays(ctx context.Context, id int64, plannedDays int) error

	// Delete removes the project row
	Delete(ctx context.Context, id int64) error

	// GetAll returns all projects, newest first
	GetAll(ctx context.Context) ([]*models.Project, error)

	// CountByScenario counts projects referencing a scenario name
	CountByScenario(ctx context.Context, scenarioName string) (int, error)

	// RenameScenario repoints projects from one scenario name to another
	RenameScenario(ctx context.Context, oldName, newName string) (int64, error)

	// SummaryByPeriod aggregates projects per month or year, newest first
	SummaryByPeriod(ctx context.Context, period models.SummaryPeriod) ([]*models.PeriodSummary, error)
}

// PartnerRepository defines the interface for partner data access
type PartnerRepository interface {
	Create(ctx context.Context, partner *models.Partner) error
	Update(ctx context.Context, oldName string, partner *models.Partner) error
	Delete(ctx context.Context, name string) error
	GetAll(ctx context.Context) ([]*models.Partner, error)
}

// ScenarioRepository defines the interface for scenario and share data access
type ScenarioRepository interface {
	// Create inserts a scenario and fills in ID and timestamps
	Create(ctx context.Context, scenario *models.Scenario) error

	// GetByID returns nil, nil when the scenario does not exist
	GetByID(ctx context.Context, id int64) (*models.Scenario, error)

	// GetByName returns nil, nil when the scenario does not exist
	GetByName(ctx context.Context, name string) (*models.Scenario, error)

	// GetDefault returns nil, nil when no scenario is the default
	GetDefault(ctx context.Context) (*models.Scenario, error)

	// GetAll returns all scenarios ordered by name, without shares
	GetAll(ctx context.Context) ([]*models.Scenario, error)

	// Update writes name, description and default flag
	Update(ctx context.Context, scenario *models.Scenario) error

	// Delete removes the scenario row
	Delete(ctx context.Context, id int64) error

	// ClearDefaults unsets the default flag on every scenario but exceptID
	ClearDefaults(ctx context.Context, exceptID int64) (int64, error)

	// GetShares returns the share map of a scenario
	GetShares(ctx context.Context, scenarioID int64) (models.Shares, error)

	// DeleteShares removes every share of a scenario
	DeleteShares(ctx context.Context, scenarioID int64) error

	// ReplaceShares deletes all shares of a scenario and inserts the given ones
	ReplaceShares(ctx context.Context, scenarioID int64, shares models.Shares) error
}

// AttendanceRepository defines the interface for worklog data access
type AttendanceRepository interface {
	// Upsert writes an entry, overwriting one with the same key
	Upsert(ctx context.Context, entry *models.AttendanceEntry) error

	// GetByProject returns entries ordered by date DESC, partner ASC
	GetByProject(ctx context.Context, projectID int64) ([]*models.AttendanceEntry, error)

	// CountPresentByPartner counts present days, 0 for partners without any
	CountPresentByPartner(ctx context.Context, projectID int64, partners []string) (map[string]int, error)

	// DeleteByProject removes a project's entries and returns how many
	DeleteByProject(ctx context.Context, projectID int64) (int64, error)

	// GetAllForExport returns the joined worklog, most recently logged first
	GetAllForExport(ctx context.Context) ([]*models.WorklogExportRow, error)
}

// AuditRepository defines the interface for the append-only audit log
type AuditRepository interface {
	// Append records an entry and fills in its ID and CreatedAt
	Append(ctx context.Context, entry *models.AuditEntry) error

	// Query returns entries newest first
	Query(ctx context.Context, filter models.AuditFilter) ([]*models.AuditEntry, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	ProjectRepository() ProjectRepository
	PartnerRepository() PartnerRepository
	ScenarioRepository() ScenarioRepository
	AttendanceRepository() AttendanceRepository
	AuditRepository() AuditRepository

	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	// Create creates a new UnitOfWork instance
	Create() UnitOfWork
}

// ScenarioService defines the interface for scenario and share management
type ScenarioService interface {
	// CreateScenario creates a scenario, clearing any other default when isDefault is set
	CreateScenario(ctx context.Context, name, description string, isDefault bool) (*models.Scenario, error)

	// UpdateScenario changes name, description and default flag
	UpdateScenario(ctx context.Context, id int64, name, description string, isDefault bool) (*models.Scenario, error)

	// DeleteScenario removes a scenario and its shares unless a project references it
	DeleteScenario(ctx context.Context, id int64) error

	// SetScenarioShares replaces all shares of a scenario
	SetScenarioShares(ctx context.Context, id int64, shares models.Shares) (*models.ShareValidation, error)

	// GetScenario returns a scenario with its shares
	GetScenario(ctx context.Context, id int64) (*models.Scenario, error)

	// GetScenarioByName returns a scenario with its shares
	GetScenarioByName(ctx context.Context, name string) (*models.Scenario, error)

	// ListScenarios returns every scenario with its shares, ordered by name
	ListScenarios(ctx context.Context) ([]*models.Scenario, error)

	// GetDefaultScenario returns the default scenario, or nil when there is none
	GetDefaultScenario(ctx context.Context) (*models.Scenario, error)

	// ResolveShares finds the shares to use for a scenario name and where they came from
	ResolveShares(ctx context.Context, scenarioName string) (models.Shares, models.ShareSource, error)

	// ExportScenarios writes every scenario as a JSON document
	ExportScenarios(ctx context.Context, w io.Writer) error

	// ImportScenarios upserts scenarios by name from a JSON document
	ImportScenarios(ctx context.Context, r io.Reader) (*ImportResult, error)
}

// AttendanceService defines the interface for the attendance ledger
type AttendanceService interface {
	// LogAttendance records one partner's presence on one day
	LogAttendance(ctx context.Context, projectID int64, date time.Time, partner string, present bool) (*models.AttendanceEntry, error)

	// LogDay records the presence of several partners on one day
	LogDay(ctx context.Context, projectID int64, date time.Time, presence map[string]bool) error

	// GetWorkedDaysByPartner counts present days for each requested partner
	GetWorkedDaysByPartner(ctx context.Context, projectID int64, partners []string) (map[string]int, error)

	// ListEntries returns a project's worklog
	ListEntries(ctx context.Context, projectID int64) ([]*models.AttendanceEntry, error)
}

// AuditService defines the interface for reading the audit trail
type AuditService interface {
	// Query returns audit entries newest first
	Query(ctx context.Context, filter models.AuditFilter) ([]*models.AuditEntry, error)
}

// PayoutService defines the interface for payout calculation
type PayoutService interface {
	// CalculatePayouts builds the payout report of a project for the given partners
	CalculatePayouts(ctx context.Context, projectID int64, partners []string) (*models.PayoutReport, error)
}

// ProjectService defines the interface for project management
type ProjectService interface {
	CreateProject(ctx context.Context, project *models.Project) error
	UpdateProject(ctx context.Context, project *models.Project) error
	UpdatePlannedDays(ctx context.Context, id int64, plannedDays int) error

	// DeleteProject removes a project together with its worklog
	DeleteProject(ctx context.Context, id int64) error

	GetProject(ctx context.Context, id int64) (*models.Project, error)
	ListProjects(ctx context.Context) ([]*models.Project, error)
	MonthlySummary(ctx context.Context) ([]*models.PeriodSummary, error)
	YearlySummary(ctx context.Context) ([]*models.PeriodSummary, error)
}

// PartnerService defines the interface for the partner directory
type PartnerService interface {
	AddPartner(ctx context.Context, name string, sharePercentage float64) (*models.Partner, error)
	UpdatePartner(ctx context.Context, oldName, newName string, sharePercentage float64) error
	DeletePartner(ctx context.Context, name string) error
	ListPartners(ctx context.Context) ([]*models.Partner, error)

	// PartnerNames returns the partner names, or the configured defaults when there are none
	PartnerNames(ctx context.Context) ([]string, error)
}

// ExportService defines the interface for tabular exports
type ExportService interface {
	ExportProjectsCSV(ctx context.Context, w io.Writer) error
	ExportWorklogCSV(ctx context.Context, w io.Writer) error
	ExportPayoutXLSX(report *models.PayoutReport, w io.Writer) error
}
