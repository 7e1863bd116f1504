package record

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository manages transaction record persistence. Records are append-only:
// there is no update or delete, duplicates are rejected at insert time.
type Repository interface {
	Create(ctx context.Context, rec *Record) error
	GetByHash(ctx context.Context, orgID uuid.UUID, contentHash string) (*Record, error)
	GetByOrgAndDateRange(ctx context.Context, orgID uuid.UUID, from, to time.Time) ([]*Record, error)
}

// ErrDuplicateRecord indicates a (org, content hash) uniqueness violation
type ErrDuplicateRecord struct {
	OrgID       uuid.UUID
	ContentHash string
}

func (e ErrDuplicateRecord) Error() string {
	return "duplicate transaction record for org " + e.OrgID.String() + ": " + e.ContentHash
}

// Is implements the errors.Is interface for ErrDuplicateRecord
func (e ErrDuplicateRecord) Is(target error) bool {
	t, ok := target.(ErrDuplicateRecord)
	if !ok {
		return false
	}
	if t.ContentHash == "" {
		return true
	}
	return e.OrgID == t.OrgID && e.ContentHash == t.ContentHash
}
