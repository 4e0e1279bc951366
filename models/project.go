package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Project is a piece of work whose value is split among partners
type Project struct {
	ID          int64           `db:"id"`
	Name        string          `db:"name" validate:"required,max=255"`
	Date        time.Time       `db:"date" validate:"required"`
	Scenario    string          `db:"scenario" validate:"required"` // referenced by name, not id
	Value       decimal.Decimal `db:"value"`
	PlannedDays int             `db:"planned_days" validate:"gte=1"`
	CreatedAt   time.Time       `db:"created_at"`
}

// Month returns the YYYY-MM bucket the project falls in
func (p *Project) Month() string {
	return p.Date.Format("2006-01")
}

// PeriodSummary aggregates projects over a month or a year
type PeriodSummary struct {
	Period           string          `db:"period"`
	ProjectCount     int             `db:"project_count"`
	TotalValue       decimal.Decimal `db:"total_value"`
	TotalPlannedDays int             `db:"total_planned_days"`
}

// SummaryPeriod selects the bucket size of a project summary
type SummaryPeriod string

const (
	SummaryMonthly SummaryPeriod = "month"
	SummaryYearly  SummaryPeriod = "year"
)
