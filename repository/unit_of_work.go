package repository

import (
	"context"
	"errors"
	"fmt"

	"partnerpay/database"
	"partnerpay/events"
	"partnerpay/service"

	"github.com/jackc/pgx/v5"
)

// unitOfWork implements the UnitOfWork interface
type unitOfWork struct {
	db               *database.DB
	tx               pgx.Tx
	ctx              context.Context
	transactionalBus *events.TransactionalBus
	projectRepo      service.ProjectRepository
	partnerRepo      service.PartnerRepository
	scenarioRepo     service.ScenarioRepository
	attendanceRepo   service.AttendanceRepository
	auditRepo        service.AuditRepository
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB, eventBus *events.Bus) service.UnitOfWorkFactory {
	return &unitOfWorkFactory{
		db:       db,
		eventBus: eventBus,
	}
}

type unitOfWorkFactory struct {
	db       *database.DB
	eventBus *events.Bus
}

func (f *unitOfWorkFactory) Create() service.UnitOfWork {
	return &unitOfWork{
		db:               f.db,
		transactionalBus: events.NewTransactionalBus(f.eventBus),
	}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	u.projectRepo = newProjectRepositoryWithTx(tx)
	u.partnerRepo = newPartnerRepositoryWithTx(tx)
	u.scenarioRepo = newScenarioRepositoryWithTx(tx)
	u.attendanceRepo = newAttendanceRepositoryWithTx(tx)
	u.auditRepo = newAuditRepositoryWithTx(tx)

	return nil
}

// Commit commits the transaction and then publishes the events it collected
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	if err := u.tx.Commit(u.ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.tx = nil

	if u.transactionalBus != nil {
		u.transactionalBus.Flush(u.ctx)
	}

	return nil
}

// Rollback rolls back the transaction. It is a no-op after Commit.
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil
	}

	err := u.tx.Rollback(u.ctx)
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	u.tx = nil

	if u.transactionalBus != nil {
		u.transactionalBus.Discard()
	}

	return nil
}

// ProjectRepository returns the project repository for this unit of work
func (u *unitOfWork) ProjectRepository() service.ProjectRepository {
	if u.projectRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.projectRepo
}

// PartnerRepository returns the partner repository for this unit of work
func (u *unitOfWork) PartnerRepository() service.PartnerRepository {
	if u.partnerRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.partnerRepo
}

// ScenarioRepository returns the scenario repository for this unit of work
func (u *unitOfWork) ScenarioRepository() service.ScenarioRepository {
	if u.scenarioRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.scenarioRepo
}

// AttendanceRepository returns the attendance repository for this unit of work
func (u *unitOfWork) AttendanceRepository() service.AttendanceRepository {
	if u.attendanceRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.attendanceRepo
}

// AuditRepository returns the audit repository for this unit of work
func (u *unitOfWork) AuditRepository() service.AuditRepository {
	if u.auditRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.auditRepo
}

// EventBus returns the transactional event bus for this unit of work
func (u *unitOfWork) EventBus() service.EventPublisher {
	if u.transactionalBus == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.transactionalBus
}
