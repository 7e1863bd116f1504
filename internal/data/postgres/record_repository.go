// Package postgres provides PostgreSQL implementations of the domain
// repositories: transaction records, account mappings, and provider
// credentials.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sellerledger-sync/internal/domain/record"
	"github.com/sellerledger-sync/internal/platform/persistence"
)

const uniqueViolationCode = "23505"

// RecordRepository implements the record.Repository interface for PostgreSQL
type RecordRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewRecordRepository creates a new PostgreSQL transaction record repository
func NewRecordRepository(logger *slog.Logger, db *persistence.PostgresDB) record.Repository {
	return &RecordRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// Create stores a new transaction record. The (org_id, content_hash) unique
// constraint turns a replayed import row into ErrDuplicateRecord, which the
// ingest service counts as a skip.
func (r *RecordRepository) Create(ctx context.Context, rec *record.Record) error {
	query := `
		INSERT INTO transaction_records (
			id, org_id, type, occurred_at, amount_cents, category, vendor,
			marketplace, order_ref, sale_price_cents, shipping_charged_cents,
			platform_fees_cents, refunds_cents, discounts_cents, chargebacks_cents,
			shipping_cost_cents, tax_collected_cents, miles, mileage_rate_cents,
			source, content_hash, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
	`

	_, err := r.querier.Exec(ctx, query,
		rec.ID,
		rec.OrgID,
		rec.Type,
		rec.OccurredAt,
		rec.AmountCents,
		rec.Category,
		rec.Vendor,
		rec.Marketplace,
		rec.OrderRef,
		rec.SalePriceCents,
		rec.ShippingChargedCents,
		rec.PlatformFeesCents,
		rec.RefundsCents,
		rec.DiscountsCents,
		rec.ChargebacksCents,
		rec.ShippingCostCents,
		rec.TaxCollectedCents,
		rec.Miles,
		rec.MileageRateCents,
		rec.Source,
		rec.ContentHash,
		rec.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return record.ErrDuplicateRecord{OrgID: rec.OrgID, ContentHash: rec.ContentHash}
		}
		r.logger.Error("Failed to create transaction record", "org_id", rec.OrgID.String(), "error", err)
		return fmt.Errorf("failed to create transaction record: %w", err)
	}

	return nil
}

// GetByHash retrieves a record by its content hash within an organization.
// Returns (nil, nil) when no record matches.
func (r *RecordRepository) GetByHash(ctx context.Context, orgID uuid.UUID, contentHash string) (*record.Record, error) {
	query := selectRecordColumns + `
		WHERE org_id = $1 AND content_hash = $2
	`

	rec, err := r.scanRecord(r.querier.QueryRow(ctx, query, orgID, contentHash))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get record by hash", "org_id", orgID.String(), "error", err)
		return nil, fmt.Errorf("failed to get record by hash: %w", err)
	}

	return rec, nil
}

// GetByOrgAndDateRange retrieves all records whose occurrence time falls in
// [from, to], ordered by occurrence time then insertion order
func (r *RecordRepository) GetByOrgAndDateRange(ctx context.Context, orgID uuid.UUID, from, to time.Time) ([]*record.Record, error) {
	query := selectRecordColumns + `
		WHERE org_id = $1 AND occurred_at >= $2 AND occurred_at <= $3
		ORDER BY occurred_at, created_at
	`

	rows, err := r.querier.Query(ctx, query, orgID, from.UnixMilli(), to.UnixMilli())
	if err != nil {
		r.logger.Error("Failed to query records by date range", "org_id", orgID.String(), "error", err)
		return nil, fmt.Errorf("failed to query records by date range: %w", err)
	}
	defer rows.Close()

	var records []*record.Record
	for rows.Next() {
		rec, err := r.scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read record rows: %w", err)
	}

	return records, nil
}

const selectRecordColumns = `
	SELECT id, org_id, type, occurred_at, amount_cents, category, vendor,
		marketplace, order_ref, sale_price_cents, shipping_charged_cents,
		platform_fees_cents, refunds_cents, discounts_cents, chargebacks_cents,
		shipping_cost_cents, tax_collected_cents, miles, mileage_rate_cents,
		source, content_hash, created_at
	FROM transaction_records
`

func (r *RecordRepository) scanRecord(row pgx.Row) (*record.Record, error) {
	var rec record.Record
	err := row.Scan(
		&rec.ID,
		&rec.OrgID,
		&rec.Type,
		&rec.OccurredAt,
		&rec.AmountCents,
		&rec.Category,
		&rec.Vendor,
		&rec.Marketplace,
		&rec.OrderRef,
		&rec.SalePriceCents,
		&rec.ShippingChargedCents,
		&rec.PlatformFeesCents,
		&rec.RefundsCents,
		&rec.DiscountsCents,
		&rec.ChargebacksCents,
		&rec.ShippingCostCents,
		&rec.TaxCollectedCents,
		&rec.Miles,
		&rec.MileageRateCents,
		&rec.Source,
		&rec.ContentHash,
		&rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
