package models

import (
	"github.com/shopspring/decimal"
)

// PartnerPayout is one partner's line in a payout report
type PartnerPayout struct {
	Partner    string
	SharePct   decimal.Decimal
	WorkedDays int
	Payout     decimal.Decimal
}

// PayoutReport is computed on demand and never persisted
type PayoutReport struct {
	ProjectID       int64
	ProjectName     string
	Scenario        string
	ShareSource     ShareSource
	TotalValue      decimal.Decimal
	FirmPercentage  decimal.Decimal
	FirmCut         decimal.Decimal
	Distributable   decimal.Decimal
	PlannedDays     int
	TotalWorkedDays int
	Payouts         []PartnerPayout // in the order partners were requested
	TotalPaid       decimal.Decimal
	Remaining       decimal.Decimal
	OverPlan        bool
}

// PayoutFor returns the line for a partner, if the partner has one
func (r *PayoutReport) PayoutFor(partner string) (PartnerPayout, bool) {
	for _, p := range r.Payouts {
		if p.Partner == partner {
			return p, true
		}
	}
	return PartnerPayout{}, false
}
