package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"partnerpay/database"
	"partnerpay/models"
)

// AuditRepository implements the AuditRepository interface.
// The audit log is append-only: there is no update or delete.
type AuditRepository struct {
	q queryable
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *database.DB) *AuditRepository {
	return &AuditRepository{q: db.Pool}
}

// newAuditRepositoryWithTx creates a new audit repository with a transaction
func newAuditRepositoryWithTx(tx queryable) *AuditRepository {
	return &AuditRepository{q: tx}
}

// Append records a new audit entry
func (r *AuditRepository) Append(ctx context.Context, entry *models.AuditEntry) error {
	oldJSON, err := marshalSnapshot(entry.OldValue)
	if err != nil {
		return fmt.Errorf("failed to marshal old value: %w", err)
	}
	newJSON, err := marshalSnapshot(entry.NewValue)
	if err != nil {
		return fmt.Errorf("failed to marshal new value: %w", err)
	}

	query := `
		INSERT INTO audit_log (entity_type, entity_id, action, old_value, new_value)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err = r.q.QueryRow(ctx, query,
		entry.EntityType,
		entry.EntityID,
		entry.Action,
		oldJSON,
		newJSON,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append audit entry for %s %d: %w", entry.EntityType, entry.EntityID, err)
	}

	return nil
}

// Query returns audit entries newest first, optionally filtered by type and id
func (r *AuditRepository) Query(ctx context.Context, filter models.AuditFilter) ([]*models.AuditEntry, error) {
	var conditions []string
	var args []any

	if filter.EntityType != "" {
		args = append(args, filter.EntityType)
		conditions = append(conditions, fmt.Sprintf("entity_type = $%d", len(args)))
	}
	if filter.EntityID != nil {
		args = append(args, *filter.EntityID)
		conditions = append(conditions, fmt.Sprintf("entity_id = $%d", len(args)))
	}

	query := `
		SELECT id, entity_type, entity_id, action, old_value, new_value, created_at
		FROM audit_log
	`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}
	defer rows.Close()

	var entries []*models.AuditEntry
	for rows.Next() {
		var entry models.AuditEntry
		var oldJSON, newJSON []byte

		err := rows.Scan(
			&entry.ID,
			&entry.EntityType,
			&entry.EntityID,
			&entry.Action,
			&oldJSON,
			&newJSON,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}

		if len(oldJSON) > 0 {
			if err := json.Unmarshal(oldJSON, &entry.OldValue); err != nil {
				return nil, fmt.Errorf("failed to unmarshal old value of audit entry %d: %w", entry.ID, err)
			}
		}
		if len(newJSON) > 0 {
			if err := json.Unmarshal(newJSON, &entry.NewValue); err != nil {
				return nil, fmt.Errorf("failed to unmarshal new value of audit entry %d: %w", entry.ID, err)
			}
		}

		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate audit log: %w", err)
	}

	return entries, nil
}

// marshalSnapshot keeps a missing snapshot as SQL NULL rather than JSON null
func marshalSnapshot(snapshot map[string]any) ([]byte, error) {
	if snapshot == nil {
		return nil, nil
	}
	return json.Marshal(snapshot)
}
