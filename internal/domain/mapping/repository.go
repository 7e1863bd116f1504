package mapping

import (
	"context"

	"github.com/google/uuid"
	"github.com/sellerledger-sync/internal/domain/shared"
)

// Repository manages account mapping persistence. The export pipeline only
// reads mappings; writes come from the configuration surface.
type Repository interface {
	GetActiveByOrgAndProvider(ctx context.Context, orgID uuid.UUID, provider shared.Provider) ([]*Mapping, error)
	Upsert(ctx context.Context, m *Mapping) error
}
