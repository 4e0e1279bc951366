package service

import (
	"context"
	"fmt"

	"partnerpay/config"
	"partnerpay/models"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type payoutService struct {
	uowFactory UnitOfWorkFactory
	config     *config.Config
}

// NewPayoutService creates a new payout service
func NewPayoutService(uowFactory UnitOfWorkFactory, cfg *config.Config) PayoutService {
	return &payoutService{
		uowFactory: uowFactory,
		config:     cfg,
	}
}

// CalculatePayouts builds the payout report of a project. When partners is
// empty the partner directory (or the configured defaults) is used.
func (s *payoutService) CalculatePayouts(ctx context.Context, projectID int64, partners []string) (*models.PayoutReport, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	project, err := uow.ProjectRepository().GetByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	if project == nil {
		return nil, &NotFoundError{Entity: "project", Key: projectID}
	}

	if len(partners) == 0 {
		partners, err = partnerNames(ctx, uow, s.config.DefaultPartners)
		if err != nil {
			return nil, err
		}
	}

	shares, source, err := resolveShares(ctx, uow, s.config.FallbackScenarios, project.Scenario)
	if err != nil {
		return nil, err
	}

	worked, err := uow.AttendanceRepository().CountPresentByPartner(ctx, projectID, partners)
	if err != nil {
		return nil, fmt.Errorf("failed to count worked days: %w", err)
	}

	report := CalculatePayouts(project, shares, source, worked, partners, s.config.FirmPercentage)

	if report.OverPlan {
		log.WithFields(log.Fields{
			"projectID":   projectID,
			"plannedDays": report.PlannedDays,
			"workedDays":  report.TotalWorkedDays,
			"remaining":   report.Remaining.StringFixed(2),
		}).Warn("Project worked days exceed the plan")
	}

	return report, nil
}

// CalculatePayouts applies the payout formula to already loaded data.
//
//	firmCut       = value * firmPct / 100
//	distributable = value - firmCut
//	payout        = share / 100 * distributable / plannedDays * workedDays
//
// Each partner is counted once, repeats are ignored. Only partners with a
// positive share get a line. A plannedDays of 0 pays
// nothing. Worked days are not capped at the plan: OverPlan is set and
// Remaining may go negative.
func CalculatePayouts(project *models.Project, shares models.Shares, source models.ShareSource, worked map[string]int, partners []string, firmPct decimal.Decimal) *models.PayoutReport {
	firmCut := project.Value.Mul(firmPct).Div(hundred)
	distributable := project.Value.Sub(firmCut)

	perDay := decimal.Zero
	if project.PlannedDays > 0 {
		perDay = distributable.Div(decimal.NewFromInt(int64(project.PlannedDays)))
	}

	report := &models.PayoutReport{
		ProjectID:      project.ID,
		ProjectName:    project.Name,
		Scenario:       project.Scenario,
		ShareSource:    source,
		TotalValue:     project.Value,
		FirmPercentage: firmPct,
		FirmCut:        firmCut,
		Distributable:  distributable,
		PlannedDays:    project.PlannedDays,
		Payouts:        []models.PartnerPayout{},
		TotalPaid:      decimal.Zero,
	}

	seen := make(map[string]bool, len(partners))
	for _, partner := range partners {
		if seen[partner] {
			continue
		}
		seen[partner] = true

		days := worked[partner]
		report.TotalWorkedDays += days

		share := shares[partner]
		if !share.IsPositive() {
			continue
		}

		payout := share.Div(hundred).Mul(perDay).Mul(decimal.NewFromInt(int64(days)))
		report.Payouts = append(report.Payouts, models.PartnerPayout{
			Partner:    partner,
			SharePct:   share,
			WorkedDays: days,
			Payout:     payout,
		})
		report.TotalPaid = report.TotalPaid.Add(payout)
	}

	report.Remaining = distributable.Sub(report.TotalPaid)
	report.OverPlan = report.TotalWorkedDays > project.PlannedDays

	return report
}
