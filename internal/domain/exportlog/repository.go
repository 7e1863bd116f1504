package exportlog

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository persists export provenance records. The store is append-only:
// Create is the only write, queries serve the audit surface.
type Repository interface {
	Create(ctx context.Context, rec *Record) error
	GetByOrgAndDateRange(ctx context.Context, orgID uuid.UUID, from, to time.Time, limit, offset int) ([]*Record, error)
	CountByOrgAndDateRange(ctx context.Context, orgID uuid.UUID, from, to time.Time) (int64, error)
}
