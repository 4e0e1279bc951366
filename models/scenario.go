package models

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Shares maps a partner name to its percentage of the distributable amount
type Shares map[string]decimal.Decimal

// Total returns the sum of all percentages
func (s Shares) Total() decimal.Decimal {
	total := decimal.Zero
	for _, pct := range s {
		total = total.Add(pct)
	}
	return total
}

// Partners returns the partner names in sorted order
func (s Shares) Partners() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns an independent copy
func (s Shares) Clone() Shares {
	out := make(Shares, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Scenario is a named percentage split of project value among partners
type Scenario struct {
	ID          int64     `db:"id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	IsDefault   bool      `db:"is_default"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
	Shares      Shares    `db:"-"`
}

// ShareSource tells where the shares used for a payout came from
type ShareSource string

const (
	ShareSourceScenario ShareSource = "scenario"
	ShareSourceFallback ShareSource = "fallback"
	ShareSourceNone     ShareSource = "none"
)

// ShareValidation is the advisory result of checking that shares add up to 100%
type ShareValidation struct {
	Valid   bool
	Message string
	Total   decimal.Decimal
}

// ScenarioDocument is one record of the structured scenario export
type ScenarioDocument struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	IsDefault   bool               `json:"is_default"`
	Shares      map[string]float64 `json:"shares"`
}
