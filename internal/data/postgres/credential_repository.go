package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sellerledger-sync/internal/domain/credential"
	"github.com/sellerledger-sync/internal/domain/shared"
	"github.com/sellerledger-sync/internal/platform/persistence"
)

// CredentialRepository implements the credential.Repository interface for PostgreSQL
type CredentialRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewCredentialRepository creates a new PostgreSQL provider credential repository
func NewCredentialRepository(logger *slog.Logger, db *persistence.PostgresDB) credential.Repository {
	return &CredentialRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// GetActive retrieves the credential for an (org, provider) pair.
// Returns (nil, nil) when the org never connected the provider; expiry is the
// caller's concern so a stale token can still be reported precisely.
func (r *CredentialRepository) GetActive(ctx context.Context, orgID uuid.UUID, provider shared.Provider) (*credential.Credential, error) {
	query := `
		SELECT org_id, provider, access_token, refresh_token, realm_id, expires_at, created_at, updated_at
		FROM provider_credentials
		WHERE org_id = $1 AND provider = $2
	`

	var cred credential.Credential
	err := r.querier.QueryRow(ctx, query, orgID, provider).Scan(
		&cred.OrgID,
		&cred.Provider,
		&cred.AccessToken,
		&cred.RefreshToken,
		&cred.RealmID,
		&cred.ExpiresAt,
		&cred.CreatedAt,
		&cred.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get provider credential",
			"org_id", orgID.String(),
			"provider", string(provider),
			"error", err,
		)
		return nil, fmt.Errorf("failed to get provider credential: %w", err)
	}

	return &cred, nil
}

// Upsert stores or replaces the credential for an (org, provider) pair
func (r *CredentialRepository) Upsert(ctx context.Context, c *credential.Credential) error {
	query := `
		INSERT INTO provider_credentials (org_id, provider, access_token, refresh_token, realm_id, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		ON CONFLICT (org_id, provider)
		DO UPDATE SET access_token = $3, refresh_token = $4, realm_id = $5, expires_at = $6, updated_at = $7
	`

	now := time.Now().UTC()
	_, err := r.querier.Exec(ctx, query,
		c.OrgID,
		c.Provider,
		c.AccessToken,
		c.RefreshToken,
		c.RealmID,
		c.ExpiresAt,
		now,
	)
	if err != nil {
		r.logger.Error("Failed to upsert provider credential",
			"org_id", c.OrgID.String(),
			"provider", string(c.Provider),
			"error", err,
		)
		return fmt.Errorf("failed to upsert provider credential: %w", err)
	}

	return nil
}
