package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"
	"github.com/sellerledger-sync/internal/domain/mapping"
	"github.com/sellerledger-sync/internal/domain/shared"
)

// UnknownAccountTypeError indicates a mapping key outside the logical
// account vocabulary
type UnknownAccountTypeError struct {
	Key string
}

func (e UnknownAccountTypeError) Error() string {
	return "unknown account type: " + e.Key
}

// Is implements the errors.Is interface for UnknownAccountTypeError
func (e UnknownAccountTypeError) Is(target error) bool {
	_, ok := target.(UnknownAccountTypeError)
	return ok
}

// mappingService implements MappingService on top of the mapping repository
type mappingService struct {
	mappingRepo mapping.Repository
	logger      *slog.Logger
}

// NewMappingService creates the account mapping configuration service
func NewMappingService(logger *slog.Logger, mappingRepo mapping.Repository) MappingService {
	return &mappingService{
		mappingRepo: mappingRepo,
		logger:      logger,
	}
}

// GetMappings returns the active mappings for an (org, provider) pair
func (s *mappingService) GetMappings(ctx context.Context, orgID uuid.UUID, provider shared.Provider) ([]*mapping.Mapping, error) {
	return s.mappingRepo.GetActiveByOrgAndProvider(ctx, orgID, provider)
}

// PutMappings upserts one mapping per entry. Keys outside the logical account
// vocabulary are rejected before any write so a typo cannot partially apply.
func (s *mappingService) PutMappings(ctx context.Context, orgID uuid.UUID, provider shared.Provider, entries map[shared.AccountType]string) error {
	valid := make(map[shared.AccountType]bool, len(shared.AllAccountTypes()))
	for _, t := range shared.AllAccountTypes() {
		valid[t] = true
	}
	for accountType := range entries {
		if !valid[accountType] {
			return UnknownAccountTypeError{Key: string(accountType)}
		}
	}

	keys := make([]shared.AccountType, 0, len(entries))
	for accountType := range entries {
		keys = append(keys, accountType)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	for _, accountType := range keys {
		m := &mapping.Mapping{
			ID:          uuid.New(),
			OrgID:       orgID,
			Provider:    provider,
			AccountType: accountType,
			ExternalID:  entries[accountType],
			Active:      true,
		}
		if err := s.mappingRepo.Upsert(ctx, m); err != nil {
			return fmt.Errorf("failed to save mapping for %s: %w", accountType, err)
		}
	}

	s.logger.Info("Account mappings updated",
		"org_id", orgID.String(),
		"provider", string(provider),
		"entries", len(entries),
	)
	return nil
}
