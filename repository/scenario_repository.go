package repository

import (
	"context"
	"errors"
	"fmt"

	"partnerpay/database"
	"partnerpay/models"
	"partnerpay/service"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// ScenarioRepository implements the ScenarioRepository interface
type ScenarioRepository struct {
	q queryable
}

// NewScenarioRepository creates a new scenario repository
func NewScenarioRepository(db *database.DB) *ScenarioRepository {
	return &ScenarioRepository{q: db.Pool}
}

// newScenarioRepositoryWithTx creates a new scenario repository with a transaction
func newScenarioRepositoryWithTx(tx queryable) *ScenarioRepository {
	return &ScenarioRepository{q: tx}
}

const scenarioColumns = `id, name, description, is_default, created_at, updated_at`

// Create inserts a scenario; a taken name yields a DuplicateNameError
func (r *ScenarioRepository) Create(ctx context.Context, scenario *models.Scenario) error {
	query := `
		INSERT INTO scenarios (name, description, is_default)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query, scenario.Name, scenario.Description, scenario.IsDefault).
		Scan(&scenario.ID, &scenario.CreatedAt, &scenario.UpdatedAt)
	if isUniqueViolation(err) {
		return &service.DuplicateNameError{Entity: "scenario", Name: scenario.Name}
	}
	if err != nil {
		return fmt.Errorf("failed to create scenario %q: %w", scenario.Name, err)
	}

	return nil
}

// GetByID retrieves a scenario without its shares, nil when missing
func (r *ScenarioRepository) GetByID(ctx context.Context, id int64) (*models.Scenario, error) {
	query := `SELECT ` + scenarioColumns + ` FROM scenarios WHERE id = $1`

	scenario, err := scanScenario(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scenario %d: %w", id, err)
	}

	return scenario, nil
}

// GetByName retrieves a scenario without its shares, nil when missing
func (r *ScenarioRepository) GetByName(ctx context.Context, name string) (*models.Scenario, error) {
	query := `SELECT ` + scenarioColumns + ` FROM scenarios WHERE name = $1`

	scenario, err := scanScenario(r.q.QueryRow(ctx, query, name))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scenario %q: %w", name, err)
	}

	return scenario, nil
}

// GetDefault returns the default scenario, nil when none is flagged
func (r *ScenarioRepository) GetDefault(ctx context.Context) (*models.Scenario, error) {
	query := `SELECT ` + scenarioColumns + ` FROM scenarios WHERE is_default LIMIT 1`

	scenario, err := scanScenario(r.q.QueryRow(ctx, query))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get default scenario: %w", err)
	}

	return scenario, nil
}

// GetAll returns every scenario ordered by name, without shares
func (r *ScenarioRepository) GetAll(ctx context.Context) ([]*models.Scenario, error) {
	query := `SELECT ` + scenarioColumns + ` FROM scenarios ORDER BY name`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get scenarios: %w", err)
	}
	defer rows.Close()

	var scenarios []*models.Scenario
	for rows.Next() {
		scenario, err := scanScenario(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan scenario: %w", err)
		}
		scenarios = append(scenarios, scenario)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate scenarios: %w", err)
	}

	return scenarios, nil
}

// Update writes name, description and default flag and bumps updated_at
func (r *ScenarioRepository) Update(ctx context.Context, scenario *models.Scenario) error {
	query := `
		UPDATE scenarios
		SET name = $1, description = $2, is_default = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING updated_at
	`

	err := r.q.QueryRow(ctx, query, scenario.Name, scenario.Description, scenario.IsDefault, scenario.ID).
		Scan(&scenario.UpdatedAt)
	if isUniqueViolation(err) {
		return &service.DuplicateNameError{Entity: "scenario", Name: scenario.Name}
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return &service.NotFoundError{Entity: "scenario", Key: scenario.ID}
	}
	if err != nil {
		return fmt.Errorf("failed to update scenario %d: %w", scenario.ID, err)
	}

	return nil
}

// Delete removes the scenario row. Shares must be deleted first.
func (r *ScenarioRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.q.Exec(ctx, `DELETE FROM scenarios WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete scenario %d: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return &service.NotFoundError{Entity: "scenario", Key: id}
	}

	return nil
}

// ClearDefaults unsets is_default on every scenario except exceptID
func (r *ScenarioRepository) ClearDefaults(ctx context.Context, exceptID int64) (int64, error) {
	result, err := r.q.Exec(ctx,
		`UPDATE scenarios SET is_default = FALSE, updated_at = NOW() WHERE is_default AND id <> $1`,
		exceptID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to clear default scenarios: %w", err)
	}
	return result.RowsAffected(), nil
}

// GetShares returns the partner -> percentage map of a scenario
func (r *ScenarioRepository) GetShares(ctx context.Context, scenarioID int64) (models.Shares, error) {
	rows, err := r.q.Query(ctx,
		`SELECT user_name, share_percentage FROM scenario_shares WHERE scenario_id = $1 ORDER BY user_name`,
		scenarioID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get shares for scenario %d: %w", scenarioID, err)
	}
	defer rows.Close()

	shares := make(models.Shares)
	for rows.Next() {
		var partner string
		var pct decimal.Decimal
		if err := rows.Scan(&partner, &pct); err != nil {
			return nil, fmt.Errorf("failed to scan scenario share: %w", err)
		}
		shares[partner] = pct
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate scenario shares: %w", err)
	}

	return shares, nil
}

// DeleteShares removes all shares of a scenario
func (r *ScenarioRepository) DeleteShares(ctx context.Context, scenarioID int64) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM scenario_shares WHERE scenario_id = $1`, scenarioID); err != nil {
		return fmt.Errorf("failed to delete shares for scenario %d: %w", scenarioID, err)
	}
	return nil
}

// ReplaceShares deletes every share of the scenario and inserts the given set.
// Callers run it inside a unit of work so the swap is atomic.
func (r *ScenarioRepository) ReplaceShares(ctx context.Context, scenarioID int64, shares models.Shares) error {
	if err := r.DeleteShares(ctx, scenarioID); err != nil {
		return err
	}

	query := `
		INSERT INTO scenario_shares (scenario_id, user_name, share_percentage)
		VALUES ($1, $2, $3)
	`

	for _, partner := range shares.Partners() {
		if _, err := r.q.Exec(ctx, query, scenarioID, partner, shares[partner]); err != nil {
			return fmt.Errorf("failed to insert share for %q in scenario %d: %w", partner, scenarioID, err)
		}
	}

	return nil
}

func scanScenario(row pgx.Row) (*models.Scenario, error) {
	var s models.Scenario
	err := row.Scan(
		&s.ID,
		&s.Name,
		&s.Description,
		&s.IsDefault,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
