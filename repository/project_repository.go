package repository

import (
	"context"
	"errors"
	"fmt"

	"partnerpay/database"
	"partnerpay/models"
	"partnerpay/service"

	"github.com/jackc/pgx/v5"
)

// ProjectRepository implements the ProjectRepository interface
type ProjectRepository struct {
	q queryable
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *database.DB) *ProjectRepository {
	return &ProjectRepository{q: db.Pool}
}

// newProjectRepositoryWithTx creates a new project repository with a transaction
func newProjectRepositoryWithTx(tx queryable) *ProjectRepository {
	return &ProjectRepository{q: tx}
}

const projectColumns = `id, name, date, scenario, value, planned_days, created_at`

// Create inserts a project and fills in its ID and creation time
func (r *ProjectRepository) Create(ctx context.Context, project *models.Project) error {
	query := `
		INSERT INTO projects (name, date, scenario, value, planned_days)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		project.Name,
		project.Date,
		project.Scenario,
		project.Value,
		project.PlannedDays,
	).Scan(&project.ID, &project.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create project %q: %w", project.Name, err)
	}

	return nil
}

// GetByID retrieves a project, returning nil when it does not exist
func (r *ProjectRepository) GetByID(ctx context.Context, id int64) (*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`

	project, err := scanProject(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project %d: %w", id, err)
	}

	return project, nil
}

// Update overwrites every editable field of a project
func (r *ProjectRepository) Update(ctx context.Context, project *models.Project) error {
	query := `
		UPDATE projects
		SET name = $1, date = $2, scenario = $3, value = $4, planned_days = $5
		WHERE id = $6
	`

	result, err := r.q.Exec(ctx, query,
		project.Name,
		project.Date,
		project.Scenario,
		project.Value,
		project.PlannedDays,
		project.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update project %d: %w", project.ID, err)
	}

	if result.RowsAffected() == 0 {
		return &service.NotFoundError{Entity: "project", Key: project.ID}
	}

	return nil
}

// UpdatePlannedDays changes only the planned day count
func (r *ProjectRepository) UpdatePlannedDays(ctx context.Context, id int64, plannedDays int) error {
	result, err := r.q.Exec(ctx, `UPDATE projects SET planned_days = $1 WHERE id = $2`, plannedDays, id)
	if err != nil {
		return fmt.Errorf("failed to update planned days for project %d: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return &service.NotFoundError{Entity: "project", Key: id}
	}

	return nil
}

// Delete removes the project row. Worklog rows must be deleted first.
func (r *ProjectRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.q.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project %d: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return &service.NotFoundError{Entity: "project", Key: id}
	}

	return nil
}

// GetAll returns all projects, newest first
func (r *ProjectRepository) GetAll(ctx context.Context) ([]*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects ORDER BY created_at DESC, id DESC`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get projects: %w", err)
	}
	defer rows.Close()

	var projects []*models.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, project)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate projects: %w", err)
	}

	return projects, nil
}

// CountByScenario returns how many projects reference a scenario name
func (r *ProjectRepository) CountByScenario(ctx context.Context, scenarioName string) (int, error) {
	var count int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM projects WHERE scenario = $1`, scenarioName).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count projects for scenario %q: %w", scenarioName, err)
	}
	return count, nil
}

// RenameScenario repoints projects from one scenario name to another
func (r *ProjectRepository) RenameScenario(ctx context.Context, oldName, newName string) (int64, error) {
	result, err := r.q.Exec(ctx, `UPDATE projects SET scenario = $1 WHERE scenario = $2`, newName, oldName)
	if err != nil {
		return 0, fmt.Errorf("failed to rename scenario %q on projects: %w", oldName, err)
	}
	return result.RowsAffected(), nil
}

// SummaryByPeriod aggregates projects by month or year, newest period first
func (r *ProjectRepository) SummaryByPeriod(ctx context.Context, period models.SummaryPeriod) ([]*models.PeriodSummary, error) {
	var format string
	switch period {
	case models.SummaryMonthly:
		format = "YYYY-MM"
	case models.SummaryYearly:
		format = "YYYY"
	default:
		return nil, fmt.Errorf("unknown summary period %q", period)
	}

	query := `
		SELECT to_char(date, $1) AS period,
		       COUNT(*),
		       COALESCE(SUM(value), 0),
		       COALESCE(SUM(planned_days), 0)
		FROM projects
		GROUP BY 1
		ORDER BY 1 DESC
	`

	rows, err := r.q.Query(ctx, query, format)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize projects by %s: %w", period, err)
	}
	defer rows.Close()

	var summaries []*models.PeriodSummary
	for rows.Next() {
		var s models.PeriodSummary
		if err := rows.Scan(&s.Period, &s.ProjectCount, &s.TotalValue, &s.TotalPlannedDays); err != nil {
			return nil, fmt.Errorf("failed to scan project summary: %w", err)
		}
		summaries = append(summaries, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate project summary: %w", err)
	}

	return summaries, nil
}

func scanProject(row pgx.Row) (*models.Project, error) {
	var p models.Project
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Date,
		&p.Scenario,
		&p.Value,
		&p.PlannedDays,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
