package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"partnerpay/config"
	"partnerpay/events"
	"partnerpay/models"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

var (
	hundred        = decimal.NewFromInt(100)
	shareTolerance = decimal.RequireFromString("0.01")
)

// ImportResult reports the outcome of a scenario import
type ImportResult struct {
	Imported int
	Errors   []error
}

type scenarioService struct {
	uowFactory UnitOfWorkFactory
	fallback   config.FallbackScenarios
}

// NewScenarioService creates a new scenario service. fallback is consulted by
// ResolveShares for scenario names that are not stored.
func NewScenarioService(uowFactory UnitOfWorkFactory, fallback config.FallbackScenarios) ScenarioService {
	return &scenarioService{
		uowFactory: uowFactory,
		fallback:   fallback,
	}
}

// ValidateShares checks that the percentages add up to 100 within 0.01.
// The result is advisory: out-of-balance shares may still be saved.
func ValidateShares(shares models.Shares) models.ShareValidation {
	total := shares.Total()
	diff := total.Sub(hundred)

	if diff.Abs().LessThan(shareTolerance) {
		return models.ShareValidation{
			Valid:   true,
			Message: fmt.Sprintf("shares sum to %s%%", total.StringFixed(2)),
			Total:   total,
		}
	}

	if diff.IsNegative() {
		return models.ShareValidation{
			Message: fmt.Sprintf("too small by %s%%", diff.Abs().StringFixed(2)),
			Total:   total,
		}
	}
	return models.ShareValidation{
		Message: fmt.Sprintf("too large by %s%%", diff.StringFixed(2)),
		Total:   total,
	}
}

// CreateScenario creates a scenario, clearing any other default when isDefault is set
func (s *scenarioService) CreateScenario(ctx context.Context, name, description string, isDefault bool) (*models.Scenario, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Field: "name", Message: "scenario name cannot be empty"}
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	scenario, err := createScenario(ctx, uow, name, description, isDefault)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return scenario, nil
}

// UpdateScenario changes name, description and default flag. Projects that
// referenced the old name follow a rename.
func (s *scenarioService) UpdateScenario(ctx context.Context, id int64, name, description string, isDefault bool) (*models.Scenario, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Field: "name", Message: "scenario name cannot be empty"}
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	existing, err := uow.ScenarioRepository().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get scenario: %w", err)
	}
	if existing == nil {
		return nil, &NotFoundError{Entity: "scenario", Key: id}
	}

	scenario, err := updateScenario(ctx, uow, existing, name, description, isDefault)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return scenario, nil
}

// DeleteScenario removes a scenario and its shares unless a project references it
func (s *scenarioService) DeleteScenario(ctx context.Context, id int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	scenarioRepo := uow.ScenarioRepository()

	scenario, err := scenarioRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get scenario: %w", err)
	}
	if scenario == nil {
		return &NotFoundError{Entity: "scenario", Key: id}
	}

	refs, err := uow.ProjectRepository().CountByScenario(ctx, scenario.Name)
	if err != nil {
		return fmt.Errorf("failed to count projects using scenario: %w", err)
	}
	if refs > 0 {
		return &InUseError{Entity: "scenario", Name: scenario.Name, References: refs}
	}

	shares, err := scenarioRepo.GetShares(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get scenario shares: %w", err)
	}

	if err := scenarioRepo.DeleteShares(ctx, id); err != nil {
		return fmt.Errorf("failed to delete scenario shares: %w", err)
	}
	if err := scenarioRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete scenario: %w", err)
	}

	oldValue := scenarioSnapshot(scenario)
	oldValue["shares"] = sharesSnapshot(shares)

	err = uow.AuditRepository().Append(ctx, &models.AuditEntry{
		EntityType: models.AuditEntityScenario,
		EntityID:   id,
		Action:     models.AuditActionDeleted,
		OldValue:   oldValue,
	})
	if err != nil {
		return fmt.Errorf("failed to record audit entry: %w", err)
	}

	uow.EventBus().Publish(events.ScenarioChangedEvent{
		ScenarioID: id,
		Name:       scenario.Name,
		Action:     string(models.AuditActionDeleted),
		IsDefault:  scenario.IsDefault,
	})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// SetScenarioShares replaces all shares of a scenario. The returned
// validation tells whether the new shares add up to 100%.
func (s *scenarioService) SetScenarioShares(ctx context.Context, id int64, shares models.Shares) (*models.ShareValidation, error) {
	if err := checkShareRange(shares); err != nil {
		return nil, err
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	scenario, err := uow.ScenarioRepository().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get scenario: %w", err)
	}
	if scenario == nil {
		return nil, &NotFoundError{Entity: "scenario", Key: id}
	}

	if err := replaceShares(ctx, uow, id, shares); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	validation := ValidateShares(shares)
	return &validation, nil
}

// GetScenario returns a scenario with its shares
func (s *scenarioService) GetScenario(ctx context.Context, id int64) (*models.Scenario, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	scenario, err := uow.ScenarioRepository().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get scenario: %w", err)
	}
	if scenario == nil {
		return nil, &NotFoundError{Entity: "scenario", Key: id}
	}

	if err := loadShares(ctx, uow, scenario); err != nil {
		return nil, err
	}
	return scenario, nil
}

// GetScenarioByName returns a scenario with its shares
func (s *scenarioService) GetScenarioByName(ctx context.Context, name string) (*models.Scenario, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	scenario, err := uow.ScenarioRepository().GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get scenario: %w", err)
	}
	if scenario == nil {
		return nil, &NotFoundError{Entity: "scenario", Key: name}
	}

	if err := loadShares(ctx, uow, scenario); err != nil {
		return nil, err
	}
	return scenario, nil
}

// ListScenarios returns every scenario with its shares, ordered by name
func (s *scenarioService) ListScenarios(ctx context.Context) ([]*models.Scenario, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return listScenarios(ctx, uow)
}

// GetDefaultScenario returns the default scenario with its shares, or nil when none is set
func (s *scenarioService) GetDefaultScenario(ctx context.Context) (*models.Scenario, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	scenario, err := uow.ScenarioRepository().GetDefault(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get default scenario: %w", err)
	}
	if scenario == nil {
		return nil, nil
	}

	if err := loadShares(ctx, uow, scenario); err != nil {
		return nil, err
	}
	return scenario, nil
}

// ResolveShares finds the shares a payout should use for a scenario name
func (s *scenarioService) ResolveShares(ctx context.Context, scenarioName string) (models.Shares, models.ShareSource, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return resolveShares(ctx, uow, s.fallback, scenarioName)
}

// ExportScenarios writes every scenario with its shares as a JSON array ordered by name
func (s *scenarioService) ExportScenarios(ctx context.Context, w io.Writer) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	scenarios, err := listScenarios(ctx, uow)
	if err != nil {
		return err
	}

	docs := make([]models.ScenarioDocument, 0, len(scenarios))
	for _, sc := range scenarios {
		shares := make(map[string]float64, len(sc.Shares))
		for partner, pct := range sc.Shares {
			shares[partner] = pct.InexactFloat64()
		}
		docs = append(docs, models.ScenarioDocument{
			Name:        sc.Name,
			Description: sc.Description,
			IsDefault:   sc.IsDefault,
			Shares:      shares,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(docs); err != nil {
		return fmt.Errorf("failed to encode scenarios: %w", err)
	}

	return nil
}

// ImportScenarios upserts scenarios by name from a JSON array. Each record
// is imported in its own transaction; a bad record is reported in the
// result and the rest of the batch continues.
func (s *scenarioService) ImportScenarios(ctx context.Context, r io.Reader) (*ImportResult, error) {
	var records []json.RawMessage
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, &ValidationError{Field: "document", Message: fmt.Sprintf("expected a JSON array of scenarios: %v", err)}
	}
	if records == nil {
		return nil, &ValidationError{Field: "document", Message: "expected a JSON array of scenarios, got null"}
	}

	result := &ImportResult{}
	for i, raw := range records {
		name, err := s.importScenario(ctx, raw)
		if err != nil {
			log.WithFields(log.Fields{
				"index": i,
				"name":  name,
				"error": err,
			}).Warn("Skipping scenario import record")
			result.Errors = append(result.Errors, &ImportEntryError{Index: i, Name: name, Err: err})
			continue
		}
		result.Imported++
	}

	log.WithFields(log.Fields{
		"imported": result.Imported,
		"failed":   len(result.Errors),
	}).Info("Scenario import finished")

	return result, nil
}

func (s *scenarioService) importScenario(ctx context.Context, raw json.RawMessage) (string, error) {
	var doc models.ScenarioDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return "", &ValidationError{Field: "record", Message: err.Error()}
	}

	name := strings.TrimSpace(doc.Name)
	if name == "" {
		return "", &ValidationError{Field: "name", Message: "scenario name cannot be empty"}
	}

	shares := make(models.Shares, len(doc.Shares))
	for partner, pct := range doc.Shares {
		shares[partner] = decimal.NewFromFloat(pct)
	}
	if err := checkShareRange(shares); err != nil {
		return name, err
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return name, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	existing, err := uow.ScenarioRepository().GetByName(ctx, name)
	if err != nil {
		return name, fmt.Errorf("failed to get scenario: %w", err)
	}

	var scenario *models.Scenario
	if existing == nil {
		scenario, err = createScenario(ctx, uow, name, doc.Description, doc.IsDefault)
	} else {
		scenario, err = updateScenario(ctx, uow, existing, name, doc.Description, doc.IsDefault)
	}
	if err != nil {
		return name, err
	}

	if err := replaceShares(ctx, uow, scenario.ID, shares); err != nil {
		return name, err
	}

	if err := uow.Commit(); err != nil {
		return name, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return name, nil
}

// createScenario inserts a scenario inside an open unit of work
func createScenario(ctx context.Context, uow UnitOfWork, name, description string, isDefault bool) (*models.Scenario, error) {
	scenarioRepo := uow.ScenarioRepository()

	if isDefault {
		if _, err := scenarioRepo.ClearDefaults(ctx, 0); err != nil {
			return nil, fmt.Errorf("failed to clear default scenario: %w", err)
		}
	}

	scenario := &models.Scenario{
		Name:        name,
		Description: description,
		IsDefault:   isDefault,
	}
	if err := scenarioRepo.Create(ctx, scenario); err != nil {
		return nil, fmt.Errorf("failed to create scenario: %w", err)
	}

	err := uow.AuditRepository().Append(ctx, &models.AuditEntry{
		EntityType: models.AuditEntityScenario,
		EntityID:   scenario.ID,
		Action:     models.AuditActionCreated,
		NewValue:   scenarioSnapshot(scenario),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record audit entry: %w", err)
	}

	uow.EventBus().Publish(events.ScenarioChangedEvent{
		ScenarioID: scenario.ID,
		Name:       scenario.Name,
		Action:     string(models.AuditActionCreated),
		IsDefault:  scenario.IsDefault,
	})

	return scenario, nil
}

// updateScenario rewrites an existing scenario inside an open unit of work
func updateScenario(ctx context.Context, uow UnitOfWork, existing *models.Scenario, name, description string, isDefault bool) (*models.Scenario, error) {
	scenarioRepo := uow.ScenarioRepository()
	oldValue := scenarioSnapshot(existing)

	if isDefault {
		if _, err := scenarioRepo.ClearDefaults(ctx, existing.ID); err != nil {
			return nil, fmt.Errorf("failed to clear default scenario: %w", err)
		}
	}

	updated := *existing
	updated.Name = name
	updated.Description = description
	updated.IsDefault = isDefault
	if err := scenarioRepo.Update(ctx, &updated); err != nil {
		return nil, fmt.Errorf("failed to update scenario: %w", err)
	}

	if existing.Name != name {
		moved, err := uow.ProjectRepository().RenameScenario(ctx, existing.Name, name)
		if err != nil {
			return nil, fmt.Errorf("failed to move projects to renamed scenario: %w", err)
		}
		log.WithFields(log.Fields{
			"scenarioID": existing.ID,
			"oldName":    existing.Name,
			"newName":    name,
			"projects":   moved,
		}).Info("Scenario renamed")
	}

	err := uow.AuditRepository().Append(ctx, &models.AuditEntry{
		EntityType: models.AuditEntityScenario,
		EntityID:   existing.ID,
		Action:     models.AuditActionUpdated,
		OldValue:   oldValue,
		NewValue:   scenarioSnapshot(&updated),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record audit entry: %w", err)
	}

	uow.EventBus().Publish(events.ScenarioChangedEvent{
		ScenarioID: updated.ID,
		Name:       updated.Name,
		Action:     string(models.AuditActionUpdated),
		IsDefault:  updated.IsDefault,
	})

	return &updated, nil
}

// replaceShares swaps a scenario's shares and audits the before/after maps
func replaceShares(ctx context.Context, uow UnitOfWork, scenarioID int64, shares models.Shares) error {
	scenarioRepo := uow.ScenarioRepository()

	oldShares, err := scenarioRepo.GetShares(ctx, scenarioID)
	if err != nil {
		return fmt.Errorf("failed to get scenario shares: %w", err)
	}

	if err := scenarioRepo.ReplaceShares(ctx, scenarioID, shares); err != nil {
		return fmt.Errorf("failed to replace scenario shares: %w", err)
	}

	err = uow.AuditRepository().Append(ctx, &models.AuditEntry{
		EntityType: models.AuditEntityScenarioShares,
		EntityID:   scenarioID,
		Action:     models.AuditActionUpdated,
		OldValue:   sharesSnapshot(oldShares),
		NewValue:   sharesSnapshot(shares),
	})
	if err != nil {
		return fmt.Errorf("failed to record audit entry: %w", err)
	}

	uow.EventBus().Publish(events.SharesReplacedEvent{
		ScenarioID:   scenarioID,
		PartnerCount: len(shares),
		Valid:        ValidateShares(shares).Valid,
	})

	return nil
}

// resolveShares looks up persisted shares first, then the fallback table
func resolveShares(ctx context.Context, uow UnitOfWork, fallback config.FallbackScenarios, scenarioName string) (models.Shares, models.ShareSource, error) {
	scenarioRepo := uow.ScenarioRepository()

	scenario, err := scenarioRepo.GetByName(ctx, scenarioName)
	if err != nil {
		return nil, "", fmt.Errorf("failed to get scenario: %w", err)
	}
	if scenario != nil {
		shares, err := scenarioRepo.GetShares(ctx, scenario.ID)
		if err != nil {
			return nil, "", fmt.Errorf("failed to get scenario shares: %w", err)
		}
		return shares, models.ShareSourceScenario, nil
	}

	if shares, ok := fallback.Lookup(scenarioName); ok {
		log.WithField("scenario", scenarioName).Warn("Scenario not stored, using built-in fallback shares")
		return shares, models.ShareSourceFallback, nil
	}

	log.WithField("scenario", scenarioName).Warn("Scenario not stored and has no fallback, no partner is paid")
	return models.Shares{}, models.ShareSourceNone, nil
}

func listScenarios(ctx context.Context, uow UnitOfWork) ([]*models.Scenario, error) {
	scenarios, err := uow.ScenarioRepository().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list scenarios: %w", err)
	}

	for _, sc := range scenarios {
		if err := loadShares(ctx, uow, sc); err != nil {
			return nil, err
		}
	}

	sort.SliceStable(scenarios, func(i, j int) bool {
		return scenarios[i].Name < scenarios[j].Name
	})
	return scenarios, nil
}

func loadShares(ctx context.Context, uow UnitOfWork, scenario *models.Scenario) error {
	shares, err := uow.ScenarioRepository().GetShares(ctx, scenario.ID)
	if err != nil {
		return fmt.Errorf("failed to get shares of scenario %d: %w", scenario.ID, err)
	}
	scenario.Shares = shares
	return nil
}

// checkShareRange rejects blank partner names and percentages outside 0-100
func checkShareRange(shares models.Shares) error {
	for partner, pct := range shares {
		if strings.TrimSpace(partner) == "" {
			return &ValidationError{Field: "shares", Message: "partner name cannot be empty"}
		}
		if pct.IsNegative() || pct.GreaterThan(hundred) {
			return &ValidationError{
				Field:   "shares",
				Message: fmt.Sprintf("share of %s must be between 0 and 100, got %s", partner, pct.String()),
			}
		}
		// stored as NUMERIC(5,2)
		if !pct.Equal(pct.Round(2)) {
			return &ValidationError{
				Field:   "shares",
				Message: fmt.Sprintf("share of %s has more than two decimals: %s", partner, pct.String()),
			}
		}
	}
	return nil
}

func scenarioSnapshot(s *models.Scenario) map[string]any {
	return map[string]any{
		"name":        s.Name,
		"description": s.Description,
		"is_default":  s.IsDefault,
	}
}

func sharesSnapshot(shares models.Shares) map[string]any {
	out := make(map[string]any, len(shares))
	for partner, pct := range shares {
		out[partner] = pct.InexactFloat64()
	}
	return out
}
