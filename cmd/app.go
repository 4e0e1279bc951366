// Package cmd implements the partnerpay command-line application.
package cmd

import (
	"context"
	"fmt"

	"partnerpay/config"
	"partnerpay/database"
	"partnerpay/events"
	"partnerpay/repository"
	"partnerpay/service"

	log "github.com/sirupsen/logrus"
)

// App holds the services one command invocation works with
type App struct {
	Config     *config.Config
	Projects   service.ProjectService
	Partners   service.PartnerService
	Scenarios  service.ScenarioService
	Attendance service.AttendanceService
	Payouts    service.PayoutService
	Audit      service.AuditService
	Export     service.ExportService

	db *database.DB
}

// NewApp connects to the database and wires every service
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	log.Debug("Connecting to database...")
	db, err := database.NewConnection(ctx, databaseURL(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	eventBus := events.NewBus()
	subscribeLogging(eventBus)

	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	return &App{
		Config:     cfg,
		Projects:   service.NewProjectService(uowFactory),
		Partners:   service.NewPartnerService(uowFactory, cfg.DefaultPartners),
		Scenarios:  service.NewScenarioService(uowFactory, cfg.FallbackScenarios),
		Attendance: service.NewAttendanceService(uowFactory),
		Payouts:    service.NewPayoutService(uowFactory, cfg),
		Audit:      service.NewAuditService(uowFactory, cfg.AuditQueryLimit),
		Export:     service.NewExportService(uowFactory, cfg.Currency),
		db:         db,
	}, nil
}

// Close releases the connection pool
func (a *App) Close() {
	log.Debug("Closing database connection...")
	a.db.Close()
}

func databaseURL(cfg *config.Config) string {
	if cfg.DatabaseName == "" {
		return cfg.DatabaseURL
	}
	return database.ConstructDatabaseURL(cfg.DatabaseURL, cfg.DatabaseName)
}

// subscribeLogging records committed domain changes in the log. Services
// do not log these changes themselves.
func subscribeLogging(bus *events.Bus) {
	bus.Subscribe(events.EventTypeScenarioChanged, func(ctx context.Context, e events.Event) {
		ev := e.(events.ScenarioChangedEvent)
		log.WithFields(log.Fields{
			"scenarioID": ev.ScenarioID,
			"name":       ev.Name,
			"action":     ev.Action,
			"isDefault":  ev.IsDefault,
		}).Info("Scenario changed")
	})
	bus.Subscribe(events.EventTypeSharesReplaced, func(ctx context.Context, e events.Event) {
		ev := e.(events.SharesReplacedEvent)
		entry := log.WithFields(log.Fields{
			"scenarioID": ev.ScenarioID,
			"partners":   ev.PartnerCount,
		})
		if ev.Valid {
			entry.Info("Scenario shares replaced")
		} else {
			entry.Warn("Scenario shares replaced but do not sum to 100%")
		}
	})
	bus.Subscribe(events.EventTypeAttendanceLogged, func(ctx context.Context, e events.Event) {
		ev := e.(events.AttendanceLoggedEvent)
		log.WithFields(log.Fields{
			"projectID": ev.ProjectID,
			"date":      ev.Date.Format("2006-01-02"),
			"partner":   ev.Partner,
			"present":   ev.Present,
		}).Debug("Attendance logged")
	})
	bus.Subscribe(events.EventTypeProjectDeleted, func(ctx context.Context, e events.Event) {
		ev := e.(events.ProjectDeletedEvent)
		log.WithFields(log.Fields{
			"projectID":      ev.ProjectID,
			"name":           ev.Name,
			"worklogEntries": ev.WorklogEntries,
		}).Info("Project deleted")
	})
}
