package mapping

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sellerledger-sync/internal/domain/shared"
)

// Mapping binds a logical account type to an external-provider account
// identifier, scoped to (organization, provider). At most one active mapping
// exists per (org, provider, account type).
type Mapping struct {
	ID          uuid.UUID          `json:"id"`
	OrgID       uuid.UUID          `json:"org_id"`
	Provider    shared.Provider    `json:"provider"`
	AccountType shared.AccountType `json:"account_type"`
	ExternalID  string             `json:"external_id"`
	Active      bool               `json:"active"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// Set is a resolved lookup from logical account type to external account id
type Set map[shared.AccountType]string

// Verify checks that every required account type is present, returning
// MissingMappingError naming exactly the absent keys
func (s Set) Verify(required []shared.AccountType) error {
	var missing []string
	for _, key := range required {
		if _, ok := s[key]; !ok {
			missing = append(missing, string(key))
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return MissingMappingError{Keys: missing}
	}
	return nil
}

// MissingMappingError names the account-type keys that have no active mapping
// for an (org, provider) pair. It aborts an export before any network call so
// the caller can prompt for configuration.
type MissingMappingError struct {
	Keys []string
}

func (e MissingMappingError) Error() string {
	return "missing account mappings for: " + strings.Join(e.Keys, ", ")
}

// Is implements the errors.Is interface for MissingMappingError
func (e MissingMappingError) Is(target error) bool {
	_, ok := target.(MissingMappingError)
	return ok
}
