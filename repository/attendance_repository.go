package repository

import (
	"context"
	"fmt"

	"partnerpay/database"
	"partnerpay/models"
)

// AttendanceRepository implements the AttendanceRepository interface on the worklog table
type AttendanceRepository struct {
	q queryable
}

// NewAttendanceRepository creates a new attendance repository
func NewAttendanceRepository(db *database.DB) *AttendanceRepository {
	return &AttendanceRepository{q: db.Pool}
}

// newAttendanceRepositoryWithTx creates a new attendance repository with a transaction
func newAttendanceRepositoryWithTx(tx queryable) *AttendanceRepository {
	return &AttendanceRepository{q: tx}
}

// Upsert writes the entry for (project, date, partner), overwriting any
// earlier value and refreshing logged_at.
func (r *AttendanceRepository) Upsert(ctx context.Context, entry *models.AttendanceEntry) error {
	query := `
		INSERT INTO worklog (project_id, date, partner, present, logged_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (project_id, date, partner)
		DO UPDATE SET present = EXCLUDED.present, logged_at = EXCLUDED.logged_at
		RETURNING id, logged_at
	`

	err := r.q.QueryRow(ctx, query,
		entry.ProjectID,
		entry.Date,
		entry.Partner,
		entry.Present,
	).Scan(&entry.ID, &entry.LoggedAt)
	if err != nil {
		return fmt.Errorf("failed to log attendance for %q on project %d: %w", entry.Partner, entry.ProjectID, err)
	}

	return nil
}

// GetByProject returns a project's entries, newest date first, partner as tiebreak
func (r *AttendanceRepository) GetByProject(ctx context.Context, projectID int64) ([]*models.AttendanceEntry, error) {
	query := `
		SELECT id, project_id, date, partner, present, logged_at
		FROM worklog
		WHERE project_id = $1
		ORDER BY date DESC, partner
	`

	rows, err := r.q.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to get worklog for project %d: %w", projectID, err)
	}
	defer rows.Close()

	var entries []*models.AttendanceEntry
	for rows.Next() {
		var e models.AttendanceEntry
		if err := rows.Scan(&e.ID, &e.ProjectID, &e.Date, &e.Partner, &e.Present, &e.LoggedAt); err != nil {
			return nil, fmt.Errorf("failed to scan worklog entry: %w", err)
		}
		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate worklog: %w", err)
	}

	return entries, nil
}

// CountPresentByPartner counts present days per partner. Every requested
// partner is in the result, with 0 when it has no present entries.
func (r *AttendanceRepository) CountPresentByPartner(ctx context.Context, projectID int64, partners []string) (map[string]int, error) {
	worked := make(map[string]int, len(partners))
	for _, p := range partners {
		worked[p] = 0
	}
	if len(partners) == 0 {
		return worked, nil
	}

	query := `
		SELECT partner, COUNT(*)
		FROM worklog
		WHERE project_id = $1 AND present AND partner = ANY($2)
		GROUP BY partner
	`

	rows, err := r.q.Query(ctx, query, projectID, partners)
	if err != nil {
		return nil, fmt.Errorf("failed to count worked days for project %d: %w", projectID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var partner string
		var count int
		if err := rows.Scan(&partner, &count); err != nil {
			return nil, fmt.Errorf("failed to scan worked days: %w", err)
		}
		worked[partner] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate worked days: %w", err)
	}

	return worked, nil
}

// DeleteByProject removes every worklog entry of a project
func (r *AttendanceRepository) DeleteByProject(ctx context.Context, projectID int64) (int64, error) {
	result, err := r.q.Exec(ctx, `DELETE FROM worklog WHERE project_id = $1`, projectID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete worklog for project %d: %w", projectID, err)
	}
	return result.RowsAffected(), nil
}

// GetAllForExport returns the whole worklog joined with project name and month,
// most recently logged first.
func (r *AttendanceRepository) GetAllForExport(ctx context.Context) ([]*models.WorklogExportRow, error) {
	query := `
		SELECT w.id, w.project_id, p.name, to_char(p.date, 'YYYY-MM'),
		       w.date, w.partner, w.present, w.logged_at
		FROM worklog w
		JOIN projects p ON w.project_id = p.id
		ORDER BY w.logged_at DESC, w.id DESC
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get worklog for export: %w", err)
	}
	defer rows.Close()

	var result []*models.WorklogExportRow
	for rows.Next() {
		var row models.WorklogExportRow
		err := rows.Scan(
			&row.ID,
			&row.ProjectID,
			&row.ProjectName,
			&row.ProjectMonth,
			&row.Date,
			&row.Partner,
			&row.Present,
			&row.LoggedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan worklog export row: %w", err)
		}
		result = append(result, &row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate worklog export: %w", err)
	}

	return result, nil
}
