package exporter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sellerledger-sync/internal/domain/credential"
	"github.com/sellerledger-sync/internal/domain/exportlog"
	"github.com/sellerledger-sync/internal/domain/journal"
	"github.com/sellerledger-sync/internal/domain/shared"
	"github.com/sellerledger-sync/internal/platform/messaging/producers"
	"github.com/sellerledger-sync/internal/platform/providers"
)

// SubmitParams identifies one submission attempt
type SubmitParams struct {
	OrgID         uuid.UUID
	Provider      shared.Provider
	PeriodStart   time.Time
	PeriodEnd     time.Time
	DryRun        bool
	ClassID       string
	LocationID    string
	CorrelationID string
}

// JournalResult reports the outcome for one journal in a batch. Failures are
// returned inline, never thrown, so callers can retry only the failed subset.
type JournalResult struct {
	Journal       *journal.Journal    `json:"journal"`
	Status        shared.ExportStatus `json:"status"`
	ExternalID    string              `json:"external_id,omitempty"`
	HTTPStatus    int                 `json:"http_status,omitempty"`
	FailureReason string              `json:"failure_reason,omitempty"`

	// rawBody is persisted to provenance but kept out of API responses
	rawBody string
}

// SubmitOutcome summarizes one batch submission
type SubmitOutcome struct {
	Committed int             `json:"committed"`
	Results   []JournalResult `json:"results"`
}

// ExportCompletedEvent is published after each commit-mode batch
type ExportCompletedEvent struct {
	OrgID       uuid.UUID       `json:"org_id"`
	Provider    shared.Provider `json:"provider"`
	PeriodStart time.Time       `json:"period_start"`
	PeriodEnd   time.Time       `json:"period_end"`
	Committed   int             `json:"committed"`
	Failed      int             `json:"failed"`
	OccurredAt  time.Time       `json:"occurred_at"`
}

// Committer maps journals to provider account ids and posts them, persisting
// one provenance record per attempt. Each invocation is stateless: mappings
// and credentials are fetched fresh from the store.
type Committer struct {
	resolver       *Resolver
	credRepo       credential.Repository
	exportRepo     exportlog.Repository
	ledgers        map[shared.Provider]providers.LedgerProvider
	events         producers.MessagePublisher    // Optional, may be nil
	dlq            producers.DeadLetterPublisher // Optional, may be nil
	logger         *slog.Logger
	dryRunOverride bool
	requestTimeout time.Duration
}

// NewCommitter creates an export committer. dryRunOverride forces every
// submission into preview mode regardless of the per-request flag.
func NewCommitter(
	logger *slog.Logger,
	resolver *Resolver,
	credRepo credential.Repository,
	exportRepo exportlog.Repository,
	ledgers []providers.LedgerProvider,
	events producers.MessagePublisher,
	dlq producers.DeadLetterPublisher,
	dryRunOverride bool,
	requestTimeout time.Duration,
) *Committer {
	byName := make(map[shared.Provider]providers.LedgerProvider, len(ledgers))
	for _, l := range ledgers {
		byName[l.Name()] = l
	}
	return &Committer{
		resolver:       resolver,
		credRepo:       credRepo,
		exportRepo:     exportRepo,
		ledgers:        byName,
		events:         events,
		dlq:            dlq,
		logger:         logger,
		dryRunOverride: dryRunOverride,
		requestTimeout: requestTimeout,
	}
}

// Submit maps and posts a batch of journals. Pre-flight failures (missing
// mappings, missing credential) abort before any side effect; per-journal
// posting failures are reported inline and do not roll back or stop earlier
// and later postings. Dry-run returns the fully mapped journals and writes
// only "previewed" provenance markers, with no provider call.
func (c *Committer) Submit(ctx context.Context, params SubmitParams, journals []*journal.Journal) (*SubmitOutcome, error) {
	logger := c.logger
	if params.CorrelationID != "" {
		logger = logger.With("correlation_id", params.CorrelationID)
	}

	required := requiredKeys(journals)
	set, err := c.resolver.ResolveMappings(ctx, params.OrgID, params.Provider, required)
	if err != nil {
		return nil, err
	}

	for _, j := range journals {
		ResolveAccountIDs(j, set)
	}

	dryRun := params.DryRun || c.dryRunOverride
	if dryRun {
		return c.preview(ctx, logger, params, journals)
	}

	ledger, ok := c.ledgers[params.Provider]
	if !ok {
		return nil, fmt.Errorf("provider %s does not support posting", params.Provider)
	}

	cred, err := c.credRepo.GetActive(ctx, params.OrgID, params.Provider)
	if err != nil {
		return nil, fmt.Errorf("failed to load provider credential: %w", err)
	}
	if cred == nil || cred.Expired(time.Now()) {
		return nil, credential.NotConnectedError{OrgID: params.OrgID, Provider: params.Provider}
	}

	outcome := &SubmitOutcome{Results: make([]JournalResult, 0, len(journals))}

	opts := providers.PostOptions{ClassID: params.ClassID, LocationID: params.LocationID}

	// Sequential posting keeps per-journal provenance ordering deterministic
	// and stays inside the provider's rate limits.
	for _, j := range journals {
		result := c.postOne(ctx, logger, ledger, cred, j, opts)
		if result.Status == shared.ExportStatusCommitted {
			outcome.Committed++
		}

		if err := c.exportRepo.Create(ctx, c.provenance(params, j, result)); err != nil {
			// The posting already happened; losing the audit row is worse
			// than a failed post, so surface it loudly but keep going.
			logger.Error("Failed to persist export record",
				"org_id", params.OrgID.String(),
				"journal_date", j.Date,
				"error", err,
			)
		}

		outcome.Results = append(outcome.Results, result)
	}

	c.publishEvent(ctx, logger, params, outcome)

	logger.Info("Export batch finished",
		"org_id", params.OrgID.String(),
		"provider", string(params.Provider),
		"journals", len(journals),
		"committed", outcome.Committed,
	)

	return outcome, nil
}

// preview returns the fully mapped journals without contacting the provider.
// Side-effect-free on the external system.
func (c *Committer) preview(ctx context.Context, logger *slog.Logger, params SubmitParams, journals []*journal.Journal) (*SubmitOutcome, error) {
	outcome := &SubmitOutcome{Results: make([]JournalResult, 0, len(journals))}
	for _, j := range journals {
		result := JournalResult{Journal: j, Status: shared.ExportStatusPreviewed}
		if err := c.exportRepo.Create(ctx, c.provenance(params, j, result)); err != nil {
			logger.Error("Failed to persist preview record", "journal_date", j.Date, "error", err)
		}
		outcome.Results = append(outcome.Results, result)
	}

	logger.Info("Dry-run export previewed",
		"org_id", params.OrgID.String(),
		"provider", string(params.Provider),
		"journals", len(journals),
	)
	return outcome, nil
}

func (c *Committer) postOne(ctx context.Context, logger *slog.Logger, ledger providers.LedgerProvider, cred *credential.Credential, j *journal.Journal, opts providers.PostOptions) JournalResult {
	callCtx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	receipt, err := ledger.PostJournal(callCtx, cred, j, opts)

	result := JournalResult{Journal: j}
	if receipt != nil {
		result.ExternalID = receipt.ExternalID
		result.HTTPStatus = receipt.HTTPStatus
		result.rawBody = receipt.RawBody
	}

	switch {
	case err == nil && receipt != nil && receipt.HTTPStatus < 300:
		result.Status = shared.ExportStatusCommitted
	case errors.Is(err, providers.TimeoutError{}) || errors.Is(err, context.DeadlineExceeded):
		result.Status = shared.ExportStatusError
		result.FailureReason = providers.TimeoutError{Op: "post journal"}.Error()
	default:
		result.Status = shared.ExportStatusError
		if err != nil {
			result.FailureReason = err.Error()
		} else {
			result.FailureReason = fmt.Sprintf("unexpected provider status %d", result.HTTPStatus)
		}
		logger.Error("Journal posting failed",
			"journal_date", j.Date,
			"marketplace", j.Marketplace,
			"http_status", result.HTTPStatus,
			"error", result.FailureReason,
		)
	}
	return result
}

func (c *Committer) provenance(params SubmitParams, j *journal.Journal, result JournalResult) *exportlog.Record {
	rec := &exportlog.Record{
		ID:            uuid.New(),
		OrgID:         params.OrgID,
		Provider:      params.Provider,
		PeriodStart:   params.PeriodStart,
		PeriodEnd:     params.PeriodEnd,
		Status:        result.Status,
		Preview:       j,
		ExternalID:    result.ExternalID,
		HTTPStatus:    result.HTTPStatus,
		RawResponse:   result.rawBody,
		FailureReason: result.FailureReason,
		CorrelationID: params.CorrelationID,
		CreatedAt:     time.Now().UTC(),
	}
	return rec
}

// publishEvent notifies downstream consumers about a finished commit-mode
// batch. Best-effort: failures route to the DLQ and never fail the export.
func (c *Committer) publishEvent(ctx context.Context, logger *slog.Logger, params SubmitParams, outcome *SubmitOutcome) {
	if c.events == nil {
		return
	}

	event := ExportCompletedEvent{
		OrgID:       params.OrgID,
		Provider:    params.Provider,
		PeriodStart: params.PeriodStart,
		PeriodEnd:   params.PeriodEnd,
		Committed:   outcome.Committed,
		Failed:      len(outcome.Results) - outcome.Committed,
		OccurredAt:  time.Now().UTC(),
	}

	if err := c.events.Publish(ctx, params.OrgID.String(), event); err != nil {
		logger.Warn("Failed to publish export event", "error", err)
		if c.dlq != nil {
			raw, _ := json.Marshal(event)
			if dlqErr := c.dlq.PublishToDLQ(ctx, params.OrgID.String(), raw, err.Error()); dlqErr != nil {
				logger.Error("Failed to publish export event to DLQ", "error", dlqErr)
			}
		}
	}
}

// requiredKeys is the union of logical account types across the batch, in
// first-seen order
func requiredKeys(journals []*journal.Journal) []shared.AccountType {
	seen := make(map[shared.AccountType]bool)
	var keys []shared.AccountType
	for _, j := range journals {
		for _, key := range j.LogicalKeys() {
			if !seen[key] {
				seen[key] = true
				keys = append(keys, key)
			}
		}
	}
	return keys
}
