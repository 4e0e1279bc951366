package models

import (
	"time"
)

// AuditEntityType identifies what kind of entity an audit entry refers to
type AuditEntityType string

const (
	AuditEntityScenario       AuditEntityType = "scenario"
	AuditEntityScenarioShares AuditEntityType = "scenario_shares"
)

// AuditAction is the kind of mutation that was recorded
type AuditAction string

const (
	AuditActionCreated  AuditAction = "created"
	AuditActionUpdated  AuditAction = "updated"
	AuditActionDeleted  AuditAction = "deleted"
	AuditActionMigrated AuditAction = "migrated"
)

// AuditEntry is an immutable record of a mutation with before/after snapshots
type AuditEntry struct {
	ID         int64           `db:"id"`
	EntityType AuditEntityType `db:"entity_type"`
	EntityID   int64           `db:"entity_id"`
	Action     AuditAction     `db:"action"`
	OldValue   map[string]any  `db:"old_value"`
	NewValue   map[string]any  `db:"new_value"`
	CreatedAt  time.Time       `db:"created_at"`
}

// AuditFilter narrows an audit query. Zero values mean "any".
type AuditFilter struct {
	EntityType AuditEntityType
	EntityID   *int64
	Limit      int
}
