// Package ingest implements the import boundary: it normalizes loosely-typed
// rows into transaction records, deduplicates them by content hash, and
// stores the survivors. Row-level failures are collected and reported, never
// thrown; a bad row does not abort the batch.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/sellerledger-sync/internal/domain/record"
	"github.com/sellerledger-sync/internal/domain/shared"
	"github.com/sellerledger-sync/internal/normalize"
)

// Row is one loosely-typed imported row. Money fields accept numbers, numeric
// strings, or currency-formatted strings; Date accepts ISO-8601 and common
// locale variants.
type Row struct {
	Type        string      `json:"type,omitempty"` // "sale" (default) or "expense"
	Date        string      `json:"date"`
	Amount      interface{} `json:"amount,omitempty"`
	Category    string      `json:"category"`
	Vendor      string      `json:"vendor,omitempty"`
	Marketplace string      `json:"marketplace,omitempty"`
	OrderRef    string      `json:"order_ref,omitempty"`

	SalePrice       interface{} `json:"sale_price,omitempty"`
	ShippingCharged interface{} `json:"shipping_charged,omitempty"`
	PlatformFees    interface{} `json:"platform_fees,omitempty"`
	Refunds         interface{} `json:"refunds,omitempty"`
	Discounts       interface{} `json:"discounts,omitempty"`
	Chargebacks     interface{} `json:"chargebacks,omitempty"`
	ShippingCost    interface{} `json:"shipping_cost,omitempty"`
	TaxCollected    interface{} `json:"tax_collected,omitempty"`

	Miles       interface{} `json:"miles,omitempty"`
	MileageRate interface{} `json:"mileage_rate,omitempty"`
}

// RowError reports one malformed row by its position in the import sequence
type RowError struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// RowSkip reports one row skipped as a duplicate. Not an error.
type RowSkip struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// Result summarizes one import invocation
type Result struct {
	Inserted          int        `json:"inserted"`
	SkippedDuplicates []RowSkip  `json:"skipped_duplicates"`
	ValidationErrors  []RowError `json:"validation_errors"`
}

// Service imports rows for an organization
type Service struct {
	recordRepo record.Repository
	pool       *ants.Pool
	logger     *slog.Logger
}

// NewService creates an import service backed by a bounded worker pool of the
// given size. Normalization runs in the pool; inserts stay sequential.
func NewService(logger *slog.Logger, recordRepo record.Repository, poolSize int) (*Service, error) {
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create import worker pool: %w", err)
	}

	return &Service{
		recordRepo: recordRepo,
		pool:       pool,
		logger:     logger,
	}, nil
}

// Shutdown releases the worker pool
func (s *Service) Shutdown() {
	s.pool.Release()
}

type normalized struct {
	rec *record.Record
	err error
}

// Import normalizes, deduplicates, and stores rows for one organization.
// Normalization is pure and runs with bounded parallelism; dedup checks and
// inserts run sequentially in row order so duplicate classification is
// deterministic even when the same file contains a row twice.
func (s *Service) Import(ctx context.Context, orgID uuid.UUID, source string, rows []Row) (*Result, error) {
	results := make([]normalized, len(rows))

	var wg sync.WaitGroup
	for i := range rows {
		i := i
		wg.Add(1)
		if err := s.pool.Submit(func() {
			defer wg.Done()
			rec, err := s.normalizeRow(orgID, source, rows[i])
			results[i] = normalized{rec: rec, err: err}
		}); err != nil {
			// Pool rejected the task (released or overloaded); fall back to
			// normalizing inline so the row is not lost.
			rec, nErr := s.normalizeRow(orgID, source, rows[i])
			results[i] = normalized{rec: rec, err: nErr}
			wg.Done()
		}
	}
	wg.Wait()

	out := &Result{
		SkippedDuplicates: []RowSkip{},
		ValidationErrors:  []RowError{},
	}

	for i, res := range results {
		if res.err != nil {
			out.ValidationErrors = append(out.ValidationErrors, RowError{Index: i, Reason: res.err.Error()})
			continue
		}

		existing, err := s.recordRepo.GetByHash(ctx, orgID, res.rec.ContentHash)
		if err != nil {
			return nil, fmt.Errorf("failed to check for duplicate row %d: %w", i, err)
		}
		if existing != nil {
			out.SkippedDuplicates = append(out.SkippedDuplicates, RowSkip{
				Index:  i,
				Reason: "duplicate of record " + existing.ID.String(),
			})
			continue
		}

		if err := s.recordRepo.Create(ctx, res.rec); err != nil {
			// The store's uniqueness guarantee arbitrates concurrent writers;
			// losing that race is a skip, not a failure.
			var dup record.ErrDuplicateRecord
			if errors.As(err, &dup) {
				out.SkippedDuplicates = append(out.SkippedDuplicates, RowSkip{
					Index:  i,
					Reason: "duplicate content hash " + res.rec.ContentHash,
				})
				continue
			}
			return nil, fmt.Errorf("failed to store row %d: %w", i, err)
		}
		out.Inserted++
	}

	s.logger.Info("Import completed",
		"org_id", orgID.String(),
		"source", source,
		"rows", len(rows),
		"inserted", out.Inserted,
		"skipped", len(out.SkippedDuplicates),
		"invalid", len(out.ValidationErrors),
	)

	return out, nil
}

// normalizeRow converts one loosely-typed row into an immutable record.
// It is pure apart from id/time generation.
func (s *Service) normalizeRow(orgID uuid.UUID, source string, row Row) (*record.Record, error) {
	if strings.TrimSpace(row.Category) == "" {
		return nil, fmt.Errorf("missing category")
	}

	occurredAt, err := normalize.EpochMillis(row.Date)
	if err != nil {
		return nil, err
	}

	recType := shared.RecordTypeSale
	if strings.EqualFold(strings.TrimSpace(row.Type), string(shared.RecordTypeExpense)) {
		recType = shared.RecordTypeExpense
	}

	rec := &record.Record{
		ID:          uuid.New(),
		OrgID:       orgID,
		Type:        recType,
		OccurredAt:  occurredAt,
		Category:    strings.TrimSpace(row.Category),
		Vendor:      strings.TrimSpace(row.Vendor),
		Marketplace: strings.TrimSpace(row.Marketplace),
		OrderRef:    strings.TrimSpace(row.OrderRef),
		Source:      strings.TrimSpace(source),
		CreatedAt:   time.Now().UTC(),
	}

	if rec.AmountCents, err = normalize.Cents(row.Amount); err != nil {
		return nil, err
	}

	moneyFields := []struct {
		raw  interface{}
		dest *int64
	}{
		{row.SalePrice, &rec.SalePriceCents},
		{row.ShippingCharged, &rec.ShippingChargedCents},
		{row.PlatformFees, &rec.PlatformFeesCents},
		{row.Refunds, &rec.RefundsCents},
		{row.Discounts, &rec.DiscountsCents},
		{row.Chargebacks, &rec.ChargebacksCents},
		{row.ShippingCost, &rec.ShippingCostCents},
		{row.TaxCollected, &rec.TaxCollectedCents},
	}
	for _, f := range moneyFields {
		if *f.dest, err = normalize.Cents(f.raw); err != nil {
			return nil, err
		}
	}

	if rec.Type == shared.RecordTypeExpense {
		if rec.Miles, err = floatField(row.Miles); err != nil {
			return nil, fmt.Errorf("invalid miles: %w", err)
		}
		if rec.MileageRateCents, err = normalize.Cents(row.MileageRate); err != nil {
			return nil, fmt.Errorf("invalid mileage rate: %w", err)
		}
		if rec.AmountCents == 0 && rec.Miles > 0 && rec.MileageRateCents > 0 {
			rec.AmountCents = normalize.MileageCents(rec.Miles, rec.MileageRateCents)
		}
	}

	rec.ContentHash = ContentHash(rec.Source, rec.OccurredAt, rec.AmountCents, rec.Category, rec.Vendor)
	return rec, nil
}

func floatField(v interface{}) (float64, error) {
	if v == nil {
		return 0, nil
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case string:
		if strings.TrimSpace(n) == "" {
			return 0, nil
		}
		var f float64
		if _, err := fmt.Sscanf(strings.TrimSpace(n), "%g", &f); err != nil {
			return 0, fmt.Errorf("unparseable number %q", n)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("unsupported numeric type %T", v)
	}
}
