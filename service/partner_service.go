package service

import (
	"context"
	"fmt"
	"strings"

	"partnerpay/models"

	"github.com/shopspring/decimal"
)

type partnerService struct {
	uowFactory      UnitOfWorkFactory
	defaultPartners []string
}

// NewPartnerService creates a new partner service. defaultPartners is
// returned by PartnerNames while no partner is stored.
func NewPartnerService(uowFactory UnitOfWorkFactory, defaultPartners []string) PartnerService {
	return &partnerService{
		uowFactory:      uowFactory,
		defaultPartners: defaultPartners,
	}
}

// AddPartner stores a new partner
func (s *partnerService) AddPartner(ctx context.Context, name string, sharePercentage float64) (*models.Partner, error) {
	partner, err := newPartner(name, sharePercentage)
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.PartnerRepository().Create(ctx, partner); err != nil {
		return nil, fmt.Errorf("failed to add partner: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return partner, nil
}

// UpdatePartner renames a partner and changes its informational share
func (s *partnerService) UpdatePartner(ctx context.Context, oldName, newName string, sharePercentage float64) error {
	partner, err := newPartner(newName, sharePercentage)
	if err != nil {
		return err
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.PartnerRepository().Update(ctx, oldName, partner); err != nil {
		return fmt.Errorf("failed to update partner: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// DeletePartner removes a partner. Its worklog entries are kept.
func (s *partnerService) DeletePartner(ctx context.Context, name string) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.PartnerRepository().Delete(ctx, name); err != nil {
		return fmt.Errorf("failed to delete partner: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListPartners returns stored partners ordered by name
func (s *partnerService) ListPartners(ctx context.Context) ([]*models.Partner, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	partners, err := uow.PartnerRepository().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list partners: %w", err)
	}
	return partners, nil
}

// PartnerNames returns the stored partner names, or the defaults when none are stored
func (s *partnerService) PartnerNames(ctx context.Context) ([]string, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return partnerNames(ctx, uow, s.defaultPartners)
}

func partnerNames(ctx context.Context, uow UnitOfWork, defaults []string) ([]string, error) {
	partners, err := uow.PartnerRepository().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list partners: %w", err)
	}

	if len(partners) == 0 {
		return append([]string(nil), defaults...), nil
	}

	names := make([]string, 0, len(partners))
	for _, p := range partners {
		names = append(names, p.Name)
	}
	return names, nil
}

func newPartner(name string, sharePercentage float64) (*models.Partner, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Field: "name", Message: "partner name cannot be empty"}
	}

	share := decimal.NewFromFloat(sharePercentage)
	if share.IsNegative() || share.GreaterThan(hundred) {
		return nil, &ValidationError{Field: "share_percentage", Message: "must be between 0 and 100"}
	}

	return &models.Partner{Name: name, SharePercentage: share}, nil
}
