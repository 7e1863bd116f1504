package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sellerledger-sync/internal/domain/exportlog"
	"github.com/sellerledger-sync/internal/domain/journal"
	"github.com/sellerledger-sync/internal/domain/record"
	"github.com/sellerledger-sync/internal/domain/shared"
)

// ExportRequest describes one export or preview run over a date range
type ExportRequest struct {
	OrgID         uuid.UUID
	Provider      shared.Provider
	From          time.Time
	To            time.Time
	Mode          shared.AggregationMode
	DryRun        bool
	ClassID       string
	LocationID    string
	CorrelationID string
}

// Service orchestrates the export pipeline: fetch records for the period,
// aggregate into balanced journals, then hand off to the committer. Preview
// runs the same aggregation and mapping with no writes anywhere.
type Service struct {
	recordRepo record.Repository
	exportRepo exportlog.Repository
	builder    *Builder
	resolver   *Resolver
	committer  *Committer
	verifier   *Verifier
	logger     *slog.Logger
}

func NewService(
	logger *slog.Logger,
	recordRepo record.Repository,
	exportRepo exportlog.Repository,
	builder *Builder,
	resolver *Resolver,
	committer *Committer,
	verifier *Verifier,
) *Service {
	return &Service{
		recordRepo: recordRepo,
		exportRepo: exportRepo,
		builder:    builder,
		resolver:   resolver,
		committer:  committer,
		verifier:   verifier,
		logger:     logger,
	}
}

// Export aggregates the period's records and submits the resulting journals.
// With DryRun set the submission stops at preview provenance and no provider
// call is made.
func (s *Service) Export(ctx context.Context, req ExportRequest) (*SubmitOutcome, error) {
	journals, err := s.buildJournals(ctx, req)
	if err != nil {
		return nil, err
	}

	params := SubmitParams{
		OrgID:         req.OrgID,
		Provider:      req.Provider,
		PeriodStart:   req.From,
		PeriodEnd:     req.To,
		DryRun:        req.DryRun,
		ClassID:       req.ClassID,
		LocationID:    req.LocationID,
		CorrelationID: req.CorrelationID,
	}
	return s.committer.Submit(ctx, params, journals)
}

// Preview aggregates and maps the period's journals without writing anything:
// no provenance records, no provider calls. A missing mapping surfaces as
// mapping.MissingMappingError exactly as it would on export.
func (s *Service) Preview(ctx context.Context, req ExportRequest) ([]*journal.Journal, error) {
	journals, err := s.buildJournals(ctx, req)
	if err != nil {
		return nil, err
	}

	set, err := s.resolver.ResolveMappings(ctx, req.OrgID, req.Provider, requiredKeys(journals))
	if err != nil {
		return nil, err
	}
	for _, j := range journals {
		ResolveAccountIDs(j, set)
	}

	s.logger.Info("Export preview built",
		"org_id", req.OrgID.String(),
		"provider", string(req.Provider),
		"journals", len(journals),
	)
	return journals, nil
}

// ListExports pages through the org's provenance records for a date range,
// newest first, returning the page and the total count.
func (s *Service) ListExports(ctx context.Context, orgID uuid.UUID, from, to time.Time, limit, offset int) ([]*exportlog.Record, int64, error) {
	records, err := s.exportRepo.GetByOrgAndDateRange(ctx, orgID, from, to, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list export records: %w", err)
	}
	total, err := s.exportRepo.CountByOrgAndDateRange(ctx, orgID, from, to)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count export records: %w", err)
	}
	return records, total, nil
}

// Verify runs the round-trip probe posting
func (s *Service) Verify(ctx context.Context, params VerifyParams) (*RoundTripResult, error) {
	return s.verifier.RunRoundTrip(ctx, params)
}

func (s *Service) buildJournals(ctx context.Context, req ExportRequest) ([]*journal.Journal, error) {
	if !req.Provider.Valid() {
		return nil, fmt.Errorf("unknown provider: %s", req.Provider)
	}

	records, err := s.recordRepo.GetByOrgAndDateRange(ctx, req.OrgID, req.From, req.To)
	if err != nil {
		return nil, fmt.Errorf("failed to load records for export: %w", err)
	}

	var journals []*journal.Journal
	switch req.Mode {
	case shared.AggregationPerOrder:
		journals = s.builder.BuildPerOrder(records)
	case shared.AggregationSummarized, "":
		journals = s.builder.BuildSummarized(records)
	default:
		return nil, fmt.Errorf("unknown aggregation mode: %s", req.Mode)
	}

	s.logger.Debug("Journals built for export",
		"org_id", req.OrgID.String(),
		"records", len(records),
		"journals", len(journals),
	)
	return journals, nil
}
