package repository

import (
	"context"
	"fmt"

	"partnerpay/database"
	"partnerpay/models"
	"partnerpay/service"
)

// PartnerRepository implements the PartnerRepository interface on the users table
type PartnerRepository struct {
	q queryable
}

// NewPartnerRepository creates a new partner repository
func NewPartnerRepository(db *database.DB) *PartnerRepository {
	return &PartnerRepository{q: db.Pool}
}

// newPartnerRepositoryWithTx creates a new partner repository with a transaction
func newPartnerRepositoryWithTx(tx queryable) *PartnerRepository {
	return &PartnerRepository{q: tx}
}

// Create adds a partner; a taken name yields a DuplicateNameError
func (r *PartnerRepository) Create(ctx context.Context, partner *models.Partner) error {
	query := `
		INSERT INTO users (name, share_percentage)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query, partner.Name, partner.SharePercentage).Scan(&partner.ID, &partner.CreatedAt)
	if isUniqueViolation(err) {
		return &service.DuplicateNameError{Entity: "partner", Name: partner.Name}
	}
	if err != nil {
		return fmt.Errorf("failed to create partner %q: %w", partner.Name, err)
	}

	return nil
}

// Update renames a partner and/or changes its informational share
func (r *PartnerRepository) Update(ctx context.Context, oldName string, partner *models.Partner) error {
	query := `
		UPDATE users
		SET name = $1, share_percentage = $2
		WHERE name = $3
	`

	result, err := r.q.Exec(ctx, query, partner.Name, partner.SharePercentage, oldName)
	if isUniqueViolation(err) {
		return &service.DuplicateNameError{Entity: "partner", Name: partner.Name}
	}
	if err != nil {
		return fmt.Errorf("failed to update partner %q: %w", oldName, err)
	}

	if result.RowsAffected() == 0 {
		return &service.NotFoundError{Entity: "partner", Key: oldName}
	}

	return nil
}

// Delete removes a partner by name
func (r *PartnerRepository) Delete(ctx context.Context, name string) error {
	result, err := r.q.Exec(ctx, `DELETE FROM users WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("failed to delete partner %q: %w", name, err)
	}

	if result.RowsAffected() == 0 {
		return &service.NotFoundError{Entity: "partner", Key: name}
	}

	return nil
}

// GetAll returns every partner ordered by name
func (r *PartnerRepository) GetAll(ctx context.Context) ([]*models.Partner, error) {
	rows, err := r.q.Query(ctx, `SELECT id, name, share_percentage, created_at FROM users ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to get partners: %w", err)
	}
	defer rows.Close()

	var partners []*models.Partner
	for rows.Next() {
		var p models.Partner
		if err := rows.Scan(&p.ID, &p.Name, &p.SharePercentage, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan partner: %w", err)
		}
		partners = append(partners, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate partners: %w", err)
	}

	return partners, nil
}
