package postgres

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sellerledger-sync/internal/domain/record"
	"github.com/sellerledger-sync/internal/domain/shared"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

var recordColumns = []string{
	"id", "org_id", "type", "occurred_at", "amount_cents", "category", "vendor",
	"marketplace", "order_ref", "sale_price_cents", "shipping_charged_cents",
	"platform_fees_cents", "refunds_cents", "discounts_cents", "chargebacks_cents",
	"shipping_cost_cents", "tax_collected_cents", "miles", "mileage_rate_cents",
	"source", "content_hash", "created_at",
}

func recordRow(rec *record.Record) *pgxmock.Rows {
	return pgxmock.NewRows(recordColumns).AddRow(
		rec.ID, rec.OrgID, rec.Type, rec.OccurredAt, rec.AmountCents, rec.Category, rec.Vendor,
		rec.Marketplace, rec.OrderRef, rec.SalePriceCents, rec.ShippingChargedCents,
		rec.PlatformFeesCents, rec.RefundsCents, rec.DiscountsCents, rec.ChargebacksCents,
		rec.ShippingCostCents, rec.TaxCollectedCents, rec.Miles, rec.MileageRateCents,
		rec.Source, rec.ContentHash, rec.CreatedAt,
	)
}

func sampleRecord() *record.Record {
	return &record.Record{
		ID:                   uuid.New(),
		OrgID:                uuid.New(),
		Type:                 shared.RecordTypeSale,
		OccurredAt:           time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC).UnixMilli(),
		Category:             "sales",
		Marketplace:          "etsy",
		OrderRef:             "ord-1",
		SalePriceCents:       10000,
		ShippingChargedCents: 500,
		Source:               "etsy_csv",
		ContentHash:          "abc123",
		CreatedAt:            time.Now().UTC(),
	}
}

func TestRecordRepository_Create(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &RecordRepository{querier: mock, logger: newTestLogger()}
	rec := sampleRecord()

	query := `INSERT INTO transaction_records`

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(rec.ID, rec.OrgID, rec.Type, rec.OccurredAt, rec.AmountCents, rec.Category, rec.Vendor,
				rec.Marketplace, rec.OrderRef, rec.SalePriceCents, rec.ShippingChargedCents,
				rec.PlatformFeesCents, rec.RefundsCents, rec.DiscountsCents, rec.ChargebacksCents,
				rec.ShippingCostCents, rec.TaxCollectedCents, rec.Miles, rec.MileageRateCents,
				rec.Source, rec.ContentHash, rec.CreatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		err := repo.Create(ctx, rec)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unique violation becomes duplicate record error", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(rec.ID, rec.OrgID, rec.Type, rec.OccurredAt, rec.AmountCents, rec.Category, rec.Vendor,
				rec.Marketplace, rec.OrderRef, rec.SalePriceCents, rec.ShippingChargedCents,
				rec.PlatformFeesCents, rec.RefundsCents, rec.DiscountsCents, rec.ChargebacksCents,
				rec.ShippingCostCents, rec.TaxCollectedCents, rec.Miles, rec.MileageRateCents,
				rec.Source, rec.ContentHash, rec.CreatedAt).
			WillReturnError(&pgconn.PgError{Code: uniqueViolationCode})

		err := repo.Create(ctx, rec)
		require.Error(t, err)

		var dup record.ErrDuplicateRecord
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, rec.OrgID, dup.OrgID)
		assert.Equal(t, rec.ContentHash, dup.ContentHash)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failure", func(t *testing.T) {
		expectedErr := errors.New("db error")
		mock.ExpectExec(query).
			WithArgs(rec.ID, rec.OrgID, rec.Type, rec.OccurredAt, rec.AmountCents, rec.Category, rec.Vendor,
				rec.Marketplace, rec.OrderRef, rec.SalePriceCents, rec.ShippingChargedCents,
				rec.PlatformFeesCents, rec.RefundsCents, rec.DiscountsCents, rec.ChargebacksCents,
				rec.ShippingCostCents, rec.TaxCollectedCents, rec.Miles, rec.MileageRateCents,
				rec.Source, rec.ContentHash, rec.CreatedAt).
			WillReturnError(expectedErr)

		err := repo.Create(ctx, rec)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create transaction record")
		assert.ErrorIs(t, err, expectedErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRecordRepository_GetByHash(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &RecordRepository{querier: mock, logger: newTestLogger()}
	rec := sampleRecord()

	query := `WHERE org_id = \$1 AND content_hash = \$2`

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(rec.OrgID, rec.ContentHash).WillReturnRows(recordRow(rec))

		got, err := repo.GetByHash(ctx, rec.OrgID, rec.ContentHash)
		assert.NoError(t, err)
		assert.Equal(t, rec, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found returns nil", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(rec.OrgID, "missing").WillReturnRows(pgxmock.NewRows(recordColumns))

		got, err := repo.GetByHash(ctx, rec.OrgID, "missing")
		assert.NoError(t, err)
		assert.Nil(t, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRecordRepository_GetByOrgAndDateRange(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &RecordRepository{querier: mock, logger: newTestLogger()}
	orgID := uuid.New()
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 31, 23, 59, 59, 0, time.UTC)

	query := `WHERE org_id = \$1 AND occurred_at >= \$2 AND occurred_at <= \$3`

	t.Run("returns all rows in range", func(t *testing.T) {
		rec1 := sampleRecord()
		rec1.OrgID = orgID
		rec2 := sampleRecord()
		rec2.OrgID = orgID
		rec2.ContentHash = "def456"

		rows := pgxmock.NewRows(recordColumns)
		for _, rec := range []*record.Record{rec1, rec2} {
			rows.AddRow(
				rec.ID, rec.OrgID, rec.Type, rec.OccurredAt, rec.AmountCents, rec.Category, rec.Vendor,
				rec.Marketplace, rec.OrderRef, rec.SalePriceCents, rec.ShippingChargedCents,
				rec.PlatformFeesCents, rec.RefundsCents, rec.DiscountsCents, rec.ChargebacksCents,
				rec.ShippingCostCents, rec.TaxCollectedCents, rec.Miles, rec.MileageRateCents,
				rec.Source, rec.ContentHash, rec.CreatedAt,
			)
		}

		mock.ExpectQuery(query).WithArgs(orgID, from.UnixMilli(), to.UnixMilli()).WillReturnRows(rows)

		records, err := repo.GetByOrgAndDateRange(ctx, orgID, from, to)
		assert.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "abc123", records[0].ContentHash)
		assert.Equal(t, "def456", records[1].ContentHash)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty range", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(orgID, from.UnixMilli(), to.UnixMilli()).
			WillReturnRows(pgxmock.NewRows(recordColumns))

		records, err := repo.GetByOrgAndDateRange(ctx, orgID, from, to)
		assert.NoError(t, err)
		assert.Empty(t, records)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
