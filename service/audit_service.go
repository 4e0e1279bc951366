package service

import (
	"context"
	"fmt"

	"partnerpay/models"
)

type auditService struct {
	uowFactory   UnitOfWorkFactory
	defaultLimit int
}

// NewAuditService creates a new audit service. defaultLimit applies to
// queries that do not set a positive limit.
func NewAuditService(uowFactory UnitOfWorkFactory, defaultLimit int) AuditService {
	return &auditService{
		uowFactory:   uowFactory,
		defaultLimit: defaultLimit,
	}
}

// Query returns audit entries newest first
func (s *auditService) Query(ctx context.Context, filter models.AuditFilter) ([]*models.AuditEntry, error) {
	if filter.Limit <= 0 {
		filter.Limit = s.defaultLimit
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	entries, err := uow.AuditRepository().Query(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}
	return entries, nil
}
