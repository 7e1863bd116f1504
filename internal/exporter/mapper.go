package exporter

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/sellerledger-sync/internal/domain/journal"
	"github.com/sellerledger-sync/internal/domain/mapping"
	"github.com/sellerledger-sync/internal/domain/shared"
)

// Resolver loads an organization's account mappings and rewrites journal
// lines from logical account types to provider account ids
type Resolver struct {
	mappingRepo mapping.Repository
	logger      *slog.Logger
}

// NewResolver creates an account mapping resolver
func NewResolver(logger *slog.Logger, mappingRepo mapping.Repository) *Resolver {
	return &Resolver{
		mappingRepo: mappingRepo,
		logger:      logger,
	}
}

// ResolveMappings loads all active mappings for (org, provider) and verifies
// every required account type is present. Mappings are fetched fresh per
// invocation so configuration changes take effect immediately. Fails with
// mapping.MissingMappingError naming exactly the absent keys.
func (r *Resolver) ResolveMappings(ctx context.Context, orgID uuid.UUID, provider shared.Provider, required []shared.AccountType) (mapping.Set, error) {
	mappings, err := r.mappingRepo.GetActiveByOrgAndProvider(ctx, orgID, provider)
	if err != nil {
		r.logger.Error("Failed to load account mappings",
			"org_id", orgID.String(),
			"provider", string(provider),
			"error", err,
		)
		return nil, fmt.Errorf("failed to load account mappings: %w", err)
	}

	set := make(mapping.Set, len(mappings))
	for _, m := range mappings {
		set[m.AccountType] = m.ExternalID
	}

	if err := set.Verify(required); err != nil {
		return nil, err
	}
	return set, nil
}

// ResolveAccountIDs rewrites each line's account in place: logical keys with
// a known mapping become external ids; already-resolved external ids pass
// through unchanged, since some callers pre-resolve accounts before
// construction. Logical keys absent from the set are left untouched.
func ResolveAccountIDs(j *journal.Journal, set mapping.Set) {
	for i := range j.Lines {
		ref := j.Lines[i].Account
		if ref.Resolved() {
			continue
		}
		if externalID, ok := set[ref.Logical]; ok {
			j.Lines[i].Account = journal.ExternalAccount(externalID)
		}
	}
}
