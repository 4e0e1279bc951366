package models

import (
	"time"
)

// AttendanceEntry records whether a partner worked on a project on a given day.
// (ProjectID, Date, Partner) is unique; writing the same key again overwrites it.
type AttendanceEntry struct {
	ID        int64     `db:"id"`
	ProjectID int64     `db:"project_id"`
	Date      time.Time `db:"date"`
	Partner   string    `db:"partner"`
	Present   bool      `db:"present"`
	LoggedAt  time.Time `db:"logged_at"`
}

// WorklogExportRow is a worklog entry joined with its project for export
type WorklogExportRow struct {
	AttendanceEntry
	ProjectName  string `db:"project_name"`
	ProjectMonth string `db:"project_month"`
}
