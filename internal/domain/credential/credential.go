package credential

import (
	"time"

	"github.com/google/uuid"
	"github.com/sellerledger-sync/internal/domain/shared"
)

// Credential is a per-organization, per-provider bearer credential used by
// commit-mode exports. Read fresh before every commit-mode invocation.
type Credential struct {
	OrgID        uuid.UUID       `json:"org_id"`
	Provider     shared.Provider `json:"provider"`
	AccessToken  string          `json:"-"`
	RefreshToken string          `json:"-"`
	RealmID      string          `json:"realm_id"` // Provider-side company identifier
	ExpiresAt    time.Time       `json:"expires_at"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Expired reports whether the access token is past its expiry
func (c *Credential) Expired(now time.Time) bool {
	return !c.ExpiresAt.After(now)
}

// NotConnectedError indicates a missing or expired provider credential.
// It aborts an export before any network call.
type NotConnectedError struct {
	OrgID    uuid.UUID
	Provider shared.Provider
}

func (e NotConnectedError) Error() string {
	return "org " + e.OrgID.String() + " is not connected to " + string(e.Provider)
}

// Is implements the errors.Is interface for NotConnectedError
func (e NotConnectedError) Is(target error) bool {
	_, ok := target.(NotConnectedError)
	return ok
}
