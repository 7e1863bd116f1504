package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sellerledger-sync/internal/domain/credential"
	"github.com/sellerledger-sync/internal/domain/journal"
	"github.com/sellerledger-sync/internal/domain/shared"
	"github.com/sellerledger-sync/internal/platform/providers"
)

// probeCents is the amount posted to every account bucket by a round-trip
// probe. Small enough to be obviously synthetic in a sandbox ledger.
const probeCents int64 = 100

// VerifyParams identifies one round-trip verification run
type VerifyParams struct {
	OrgID         uuid.UUID
	Provider      shared.Provider
	SameDay       bool
	ClassID       string
	LocationID    string
	CorrelationID string
}

// RoundTripResult reports both legs of a verification run. Forward is always
// populated; Reverse is populated only when the forward posting committed.
type RoundTripResult struct {
	Forward  JournalResult  `json:"forward"`
	Reverse  *JournalResult `json:"reverse,omitempty"`
	Verified bool           `json:"verified"`
}

// Verifier posts a small probe journal touching every mapped account bucket,
// then posts its exact line-wise inverse, so an org can confirm end to end
// that mappings, credentials, and the provider connection all work before
// trusting a real export. Net ledger effect of a successful run is zero.
type Verifier struct {
	committer *Committer
	logger    *slog.Logger
}

func NewVerifier(logger *slog.Logger, committer *Committer) *Verifier {
	return &Verifier{committer: committer, logger: logger}
}

// RunRoundTrip executes the forward and reverse probe postings. Pre-flight
// failures (missing mappings, missing credential) return an error before any
// posting; once the forward leg is attempted, outcomes are reported in the
// result even when a leg fails, since a half-completed probe leaves a real
// entry in the external ledger that the caller must know about.
func (v *Verifier) RunRoundTrip(ctx context.Context, params VerifyParams) (*RoundTripResult, error) {
	c := v.committer
	logger := v.logger
	if params.CorrelationID != "" {
		logger = logger.With("correlation_id", params.CorrelationID)
	}

	now := time.Now().UTC()
	forward := buildProbeJournal(now.Format("2006-01-02"))

	set, err := c.resolver.ResolveMappings(ctx, params.OrgID, params.Provider, shared.AllAccountTypes())
	if err != nil {
		return nil, err
	}
	ResolveAccountIDs(forward, set)

	ledger, ok := c.ledgers[params.Provider]
	if !ok {
		return nil, fmt.Errorf("provider %s does not support posting", params.Provider)
	}

	cred, err := c.credRepo.GetActive(ctx, params.OrgID, params.Provider)
	if err != nil {
		return nil, fmt.Errorf("failed to load provider credential: %w", err)
	}
	if cred == nil || cred.Expired(now) {
		return nil, credential.NotConnectedError{OrgID: params.OrgID, Provider: params.Provider}
	}

	submitParams := SubmitParams{
		OrgID:         params.OrgID,
		Provider:      params.Provider,
		PeriodStart:   now,
		PeriodEnd:     now,
		CorrelationID: params.CorrelationID,
	}
	opts := providers.PostOptions{ClassID: params.ClassID, LocationID: params.LocationID}

	result := &RoundTripResult{}
	result.Forward = c.postOne(ctx, logger, ledger, cred, forward, opts)
	if err := c.exportRepo.Create(ctx, c.provenance(submitParams, forward, result.Forward)); err != nil {
		logger.Error("Failed to persist forward probe record", "error", err)
	}

	if result.Forward.Status != shared.ExportStatusCommitted {
		logger.Warn("Round-trip probe failed on forward leg",
			"org_id", params.OrgID.String(),
			"provider", string(params.Provider),
			"reason", result.Forward.FailureReason,
		)
		return result, nil
	}

	reverseDate := now
	if !params.SameDay {
		reverseDate = now.AddDate(0, 0, 1)
	}
	reverse := forward.Reverse(
		reverseDate.Format("2006-01-02"),
		fmt.Sprintf("Reversal of verification probe %s", result.Forward.ExternalID),
	)

	rev := c.postOne(ctx, logger, ledger, cred, reverse, opts)
	result.Reverse = &rev

	revRecord := c.provenance(submitParams, reverse, rev)
	revRecord.LinkedExternalID = result.Forward.ExternalID
	if err := c.exportRepo.Create(ctx, revRecord); err != nil {
		logger.Error("Failed to persist reverse probe record", "error", err)
	}

	result.Verified = rev.Status == shared.ExportStatusCommitted
	if result.Verified {
		logger.Info("Round-trip verification succeeded",
			"org_id", params.OrgID.String(),
			"provider", string(params.Provider),
			"forward_id", result.Forward.ExternalID,
			"reverse_id", rev.ExternalID,
		)
	} else {
		// The forward entry is now stranded in the external ledger.
		logger.Error("Round-trip verification left an unreversed probe entry",
			"org_id", params.OrgID.String(),
			"provider", string(params.Provider),
			"forward_id", result.Forward.ExternalID,
			"reason", rev.FailureReason,
		)
	}

	return result, nil
}

// buildProbeJournal puts probeCents through every account bucket: income and
// liability buckets on the credit side, expense and contra buckets on the
// debit side, with the clearing account absorbing the residual.
func buildProbeJournal(date string) *journal.Journal {
	j := &journal.Journal{
		Date: date,
		Memo: "Round-trip verification probe",
	}

	credits := []shared.AccountType{
		shared.AccountTypeRevenue,
		shared.AccountTypeShippingIncome,
		shared.AccountTypeSalesTaxLiability,
	}
	debits := []shared.AccountType{
		shared.AccountTypeFeesExpense,
		shared.AccountTypeRefundsContra,
		shared.AccountTypeChargebacksExpense,
		shared.AccountTypeShippingCost,
	}

	for _, t := range credits {
		j.Lines = append(j.Lines, journal.Line{
			Account:     journal.LogicalAccount(t),
			AmountCents: probeCents,
			Direction:   shared.DirectionCredit,
			Memo:        "Verification probe",
		})
	}
	for _, t := range debits {
		j.Lines = append(j.Lines, journal.Line{
			Account:     journal.LogicalAccount(t),
			AmountCents: probeCents,
			Direction:   shared.DirectionDebit,
			Memo:        "Verification probe",
		})
	}

	j.AddBalancingLine(journal.LogicalAccount(shared.AccountTypeClearing), "Verification probe")
	return j
}
