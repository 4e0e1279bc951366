package service

import (
	"context"
	"fmt"
	"strings"

	"partnerpay/events"
	"partnerpay/models"

	log "github.com/sirupsen/logrus"
)

type projectService struct {
	uowFactory UnitOfWorkFactory
}

// NewProjectService creates a new project service
func NewProjectService(uowFactory UnitOfWorkFactory) ProjectService {
	return &projectService{
		uowFactory: uowFactory,
	}
}

// CreateProject validates and stores a new project
func (s *projectService) CreateProject(ctx context.Context, project *models.Project) error {
	if err := validateProject(project); err != nil {
		return err
	}
	project.Date = truncateToDate(project.Date)

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.ProjectRepository().Create(ctx, project); err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"projectID": project.ID,
		"name":      project.Name,
		"scenario":  project.Scenario,
	}).Info("Project created")

	return nil
}

// UpdateProject overwrites every editable field of an existing project
func (s *projectService) UpdateProject(ctx context.Context, project *models.Project) error {
	if err := validateProject(project); err != nil {
		return err
	}
	project.Date = truncateToDate(project.Date)

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.ProjectRepository().Update(ctx, project); err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// UpdatePlannedDays changes only a project's planned day count
func (s *projectService) UpdatePlannedDays(ctx context.Context, id int64, plannedDays int) error {
	if plannedDays < 1 {
		return &ValidationError{Field: "planned_days", Message: "must be at least 1"}
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.ProjectRepository().UpdatePlannedDays(ctx, id, plannedDays); err != nil {
		return fmt.Errorf("failed to update planned days: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// DeleteProject removes a project's worklog and then the project itself
func (s *projectService) DeleteProject(ctx context.Context, id int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	project, err := uow.ProjectRepository().GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get project: %w", err)
	}
	if project == nil {
		return &NotFoundError{Entity: "project", Key: id}
	}

	removed, err := uow.AttendanceRepository().DeleteByProject(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete worklog: %w", err)
	}

	if err := uow.ProjectRepository().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	uow.EventBus().Publish(events.ProjectDeletedEvent{
		ProjectID:      id,
		Name:           project.Name,
		WorklogEntries: removed,
	})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetProject returns a project or a NotFoundError
func (s *projectService) GetProject(ctx context.Context, id int64) (*models.Project, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	project, err := uow.ProjectRepository().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	if project == nil {
		return nil, &NotFoundError{Entity: "project", Key: id}
	}
	return project, nil
}

// ListProjects returns all projects, newest first
func (s *projectService) ListProjects(ctx context.Context) ([]*models.Project, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	projects, err := uow.ProjectRepository().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// MonthlySummary aggregates projects per YYYY-MM, newest month first
func (s *projectService) MonthlySummary(ctx context.Context) ([]*models.PeriodSummary, error) {
	return s.summary(ctx, models.SummaryMonthly)
}

// YearlySummary aggregates projects per year, newest year first
func (s *projectService) YearlySummary(ctx context.Context) ([]*models.PeriodSummary, error) {
	return s.summary(ctx, models.SummaryYearly)
}

func (s *projectService) summary(ctx context.Context, period models.SummaryPeriod) ([]*models.PeriodSummary, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	summary, err := uow.ProjectRepository().SummaryByPeriod(ctx, period)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize projects by %s: %w", period, err)
	}
	return summary, nil
}

func validateProject(project *models.Project) error {
	project.Name = strings.TrimSpace(project.Name)
	project.Scenario = strings.TrimSpace(project.Scenario)

	if err := validateStruct(project); err != nil {
		return err
	}
	if project.Value.IsNegative() {
		return &ValidationError{Field: "value", Message: "must not be negative"}
	}
	return nil
}
