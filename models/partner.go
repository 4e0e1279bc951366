package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Partner is a person who takes part in projects and receives payouts.
// SharePercentage is informational only; payouts use scenario shares.
type Partner struct {
	ID              int64           `db:"id"`
	Name            string          `db:"name"`
	SharePercentage decimal.Decimal `db:"share_percentage"`
	CreatedAt       time.Time       `db:"created_at"`
}
