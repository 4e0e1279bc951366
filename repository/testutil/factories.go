package testutil

import (
	"time"

	"partnerpay/models"

	"github.com/shopspring/decimal"
)

// CreateTestProject creates a project worth value with the given plan
func CreateTestProject(name, scenario string, value int64, plannedDays int) *models.Project {
	return &models.Project{
		Name:        name,
		Date:        time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		Scenario:    scenario,
		Value:       decimal.NewFromInt(value),
		PlannedDays: plannedDays,
	}
}

// CreateTestProjectOn creates a project dated on the given day
func CreateTestProjectOn(name string, date time.Time, value int64) *models.Project {
	project := CreateTestProject(name, "Scenariusz 1", value, 10)
	project.Date = date
	return project
}

// CreateTestScenario creates a non-default scenario without shares
func CreateTestScenario(name string) *models.Scenario {
	return &models.Scenario{
		Name:        name,
		Description: "test scenario " + name,
	}
}

// CreateTestShares builds a share map from partner/percent pairs
func CreateTestShares(pairs map[string]string) models.Shares {
	shares := make(models.Shares, len(pairs))
	for partner, pct := range pairs {
		shares[partner] = decimal.RequireFromString(pct)
	}
	return shares
}

// CreateTestAttendance creates a worklog entry for one partner and day
func CreateTestAttendance(projectID int64, day time.Time, partner string, present bool) *models.AttendanceEntry {
	return &models.AttendanceEntry{
		ProjectID: projectID,
		Date:      day,
		Partner:   partner,
		Present:   present,
	}
}

// Day returns midnight UTC of the given date
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
