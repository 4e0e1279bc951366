package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"partnerpay/events"
	"partnerpay/models"

	log "github.com/sirupsen/logrus"
)

type attendanceService struct {
	uowFactory UnitOfWorkFactory
}

// NewAttendanceService creates a new attendance service
func NewAttendanceService(uowFactory UnitOfWorkFactory) AttendanceService {
	return &attendanceService{
		uowFactory: uowFactory,
	}
}

// LogAttendance records one partner's presence on one day, overwriting any earlier value
func (s *attendanceService) LogAttendance(ctx context.Context, projectID int64, date time.Time, partner string, present bool) (*models.AttendanceEntry, error) {
	partner = strings.TrimSpace(partner)
	if partner == "" {
		return nil, &ValidationError{Field: "partner", Message: "partner cannot be empty"}
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := requireProject(ctx, uow, projectID); err != nil {
		return nil, err
	}

	entry, err := logEntry(ctx, uow, projectID, date, partner, present)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return entry, nil
}

// LogDay records the presence of several partners on one day in a single transaction
func (s *attendanceService) LogDay(ctx context.Context, projectID int64, date time.Time, presence map[string]bool) error {
	partners := make([]string, 0, len(presence))
	for partner := range presence {
		if strings.TrimSpace(partner) == "" {
			return &ValidationError{Field: "partner", Message: "partner cannot be empty"}
		}
		partners = append(partners, partner)
	}
	sort.Strings(partners)

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := requireProject(ctx, uow, projectID); err != nil {
		return err
	}

	for _, partner := range partners {
		if _, err := logEntry(ctx, uow, projectID, date, partner, presence[partner]); err != nil {
			return err
		}
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"projectID": projectID,
		"date":      date.Format(time.DateOnly),
		"partners":  len(partners),
	}).Info("Attendance day logged")

	return nil
}

// GetWorkedDaysByPartner counts present days per partner, 0 for partners without entries
func (s *attendanceService) GetWorkedDaysByPartner(ctx context.Context, projectID int64, partners []string) (map[string]int, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	worked, err := uow.AttendanceRepository().CountPresentByPartner(ctx, projectID, partners)
	if err != nil {
		return nil, fmt.Errorf("failed to count worked days: %w", err)
	}
	return worked, nil
}

// ListEntries returns a project's worklog, newest date first
func (s *attendanceService) ListEntries(ctx context.Context, projectID int64) ([]*models.AttendanceEntry, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	entries, err := uow.AttendanceRepository().GetByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list worklog: %w", err)
	}
	return entries, nil
}

func requireProject(ctx context.Context, uow UnitOfWork, projectID int64) error {
	project, err := uow.ProjectRepository().GetByID(ctx, projectID)
	if err != nil {
		return fmt.Errorf("failed to get project: %w", err)
	}
	if project == nil {
		return &NotFoundError{Entity: "project", Key: projectID}
	}
	return nil
}

func logEntry(ctx context.Context, uow UnitOfWork, projectID int64, date time.Time, partner string, present bool) (*models.AttendanceEntry, error) {
	entry := &models.AttendanceEntry{
		ProjectID: projectID,
		Date:      truncateToDate(date),
		Partner:   partner,
		Present:   present,
	}
	if err := uow.AttendanceRepository().Upsert(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to log attendance: %w", err)
	}

	uow.EventBus().Publish(events.AttendanceLoggedEvent{
		ProjectID: projectID,
		Date:      entry.Date,
		Partner:   partner,
		Present:   present,
	})

	return entry, nil
}

// truncateToDate drops the time of day, keeping the calendar date in UTC
func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
