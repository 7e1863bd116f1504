package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sellerledger-sync/internal/domain/mapping"
	"github.com/sellerledger-sync/internal/domain/shared"
	"github.com/sellerledger-sync/internal/platform/persistence"
)

// MappingRepository implements the mapping.Repository interface for PostgreSQL
type MappingRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewMappingRepository creates a new PostgreSQL account mapping repository
func NewMappingRepository(logger *slog.Logger, db *persistence.PostgresDB) mapping.Repository {
	return &MappingRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// GetActiveByOrgAndProvider retrieves all active mappings for an (org,
// provider) pair. The export path calls this fresh before every run.
func (r *MappingRepository) GetActiveByOrgAndProvider(ctx context.Context, orgID uuid.UUID, provider shared.Provider) ([]*mapping.Mapping, error) {
	query := `
		SELECT id, org_id, provider, account_type, external_id, active, created_at, updated_at
		FROM account_mappings
		WHERE org_id = $1 AND provider = $2 AND active = TRUE
		ORDER BY account_type
	`

	rows, err := r.querier.Query(ctx, query, orgID, provider)
	if err != nil {
		r.logger.Error("Failed to query account mappings",
			"org_id", orgID.String(),
			"provider", string(provider),
			"error", err,
		)
		return nil, fmt.Errorf("failed to query account mappings: %w", err)
	}
	defer rows.Close()

	var mappings []*mapping.Mapping
	for rows.Next() {
		var m mapping.Mapping
		err := rows.Scan(
			&m.ID,
			&m.OrgID,
			&m.Provider,
			&m.AccountType,
			&m.ExternalID,
			&m.Active,
			&m.CreatedAt,
			&m.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account mapping: %w", err)
		}
		mappings = append(mappings, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read account mapping rows: %w", err)
	}

	return mappings, nil
}

// Upsert replaces the active mapping for (org, provider, account_type). The
// previous row is deactivated rather than deleted so old exports stay
// explainable.
func (r *MappingRepository) Upsert(ctx context.Context, m *mapping.Mapping) error {
	deactivate := `
		UPDATE account_mappings
		SET active = FALSE, updated_at = $1
		WHERE org_id = $2 AND provider = $3 AND account_type = $4 AND active = TRUE
	`
	now := time.Now().UTC()
	if _, err := r.querier.Exec(ctx, deactivate, now, m.OrgID, m.Provider, m.AccountType); err != nil {
		r.logger.Error("Failed to deactivate previous mapping",
			"org_id", m.OrgID.String(),
			"account_type", string(m.AccountType),
			"error", err,
		)
		return fmt.Errorf("failed to deactivate previous mapping: %w", err)
	}

	insert := `
		INSERT INTO account_mappings (id, org_id, provider, account_type, external_id, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, TRUE, $6, $7)
	`
	if _, err := r.querier.Exec(ctx, insert, m.ID, m.OrgID, m.Provider, m.AccountType, m.ExternalID, now, now); err != nil {
		r.logger.Error("Failed to insert account mapping",
			"org_id", m.OrgID.String(),
			"account_type", string(m.AccountType),
			"error", err,
		)
		return fmt.Errorf("failed to insert account mapping: %w", err)
	}

	return nil
}
