package credential

import (
	"context"

	"github.com/google/uuid"
	"github.com/sellerledger-sync/internal/domain/shared"
)

// Repository manages provider credential persistence.
// GetActive returns (nil, nil) when no credential exists for the pair.
type Repository interface {
	GetActive(ctx context.Context, orgID uuid.UUID, provider shared.Provider) (*Credential, error)
	Upsert(ctx context.Context, c *Credential) error
}
