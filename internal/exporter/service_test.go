package exporter

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sellerledger-sync/internal/domain/exportlog"
	"github.com/sellerledger-sync/internal/domain/mapping"
	"github.com/sellerledger-sync/internal/domain/record"
	"github.com/sellerledger-sync/internal/domain/shared"
)

type serviceFixture struct {
	*committerFixture
	recordRepo *MockRecordRepository
	service    *Service
}

func newServiceFixture() *serviceFixture {
	cf := newCommitterFixture(false)
	recordRepo := new(MockRecordRepository)
	resolver := NewResolver(testLogger(), cf.mappingRepo)
	service := NewService(
		testLogger(),
		recordRepo,
		cf.exportRepo,
		NewBuilder(),
		resolver,
		cf.committer,
		NewVerifier(testLogger(), cf.committer),
	)
	return &serviceFixture{committerFixture: cf, recordRepo: recordRepo, service: service}
}

func exportRequest(orgID uuid.UUID) ExportRequest {
	to := time.Now().UTC()
	return ExportRequest{
		OrgID:    orgID,
		Provider: shared.ProviderQuickBooks,
		From:     to.AddDate(0, 0, -7),
		To:       to,
		Mode:     shared.AggregationSummarized,
	}
}

func TestService_Export(t *testing.T) {
	ctx := context.Background()

	t.Run("DryRunEndToEnd", func(t *testing.T) {
		f := newServiceFixture()
		orgID := uuid.New()
		req := exportRequest(orgID)
		req.DryRun = true

		rec := saleRecord(time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC), "etsy", "ord-1")
		rec.SalePriceCents = 10000
		f.recordRepo.On("GetByOrgAndDateRange", ctx, orgID, req.From, req.To).
			Return([]*record.Record{rec}, nil).Once()
		f.expectMappings(orgID)
		f.exportRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

		outcome, err := f.service.Export(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, 0, outcome.Committed)
		require.Len(t, outcome.Results, 1)
		assert.Equal(t, shared.ExportStatusPreviewed, outcome.Results[0].Status)
		f.ledger.AssertNotCalled(t, "PostJournal", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("InvalidProviderRejected", func(t *testing.T) {
		f := newServiceFixture()
		req := exportRequest(uuid.New())
		req.Provider = "freshbooks"

		_, err := f.service.Export(ctx, req)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown provider")
		f.recordRepo.AssertNotCalled(t, "GetByOrgAndDateRange", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("UnknownModeRejected", func(t *testing.T) {
		f := newServiceFixture()
		orgID := uuid.New()
		req := exportRequest(orgID)
		req.Mode = "weekly"

		f.recordRepo.On("GetByOrgAndDateRange", ctx, orgID, req.From, req.To).
			Return([]*record.Record{}, nil).Once()

		_, err := f.service.Export(ctx, req)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown aggregation mode")
	})
}

func TestService_Preview(t *testing.T) {
	ctx := context.Background()

	t.Run("ReturnsMappedJournalsWithoutWrites", func(t *testing.T) {
		f := newServiceFixture()
		orgID := uuid.New()
		req := exportRequest(orgID)

		rec := saleRecord(time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC), "etsy", "ord-1")
		rec.SalePriceCents = 10000
		f.recordRepo.On("GetByOrgAndDateRange", ctx, orgID, req.From, req.To).
			Return([]*record.Record{rec}, nil).Once()
		f.expectMappings(orgID)

		journals, err := f.service.Preview(ctx, req)
		require.NoError(t, err)
		require.Len(t, journals, 1)
		assert.True(t, journals[0].Balanced())
		for _, line := range journals[0].Lines {
			assert.True(t, line.Account.Resolved())
		}

		// Preview is write-free end to end.
		f.exportRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		f.ledger.AssertNotCalled(t, "PostJournal", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		f.credRepo.AssertNotCalled(t, "GetActive", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("MissingMappingSurfacesSameAsExport", func(t *testing.T) {
		f := newServiceFixture()
		orgID := uuid.New()
		req := exportRequest(orgID)

		rec := saleRecord(time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC), "etsy", "ord-1")
		rec.SalePriceCents = 10000
		f.recordRepo.On("GetByOrgAndDateRange", ctx, orgID, req.From, req.To).
			Return([]*record.Record{rec}, nil).Once()
		f.mappingRepo.On("GetActiveByOrgAndProvider", mock.Anything, orgID, shared.ProviderQuickBooks).
			Return([]*mapping.Mapping{}, nil).Once()

		_, err := f.service.Preview(ctx, req)
		assert.ErrorIs(t, err, mapping.MissingMappingError{})
	})
}

func TestService_ListExports(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture()
	orgID := uuid.New()
	from := time.Now().AddDate(0, -1, 0)
	to := time.Now()

	page := []*exportlog.Record{{ID: uuid.New(), OrgID: orgID}}
	f.exportRepo.On("GetByOrgAndDateRange", ctx, orgID, from, to, 20, 40).Return(page, nil).Once()
	f.exportRepo.On("CountByOrgAndDateRange", ctx, orgID, from, to).Return(int64(61), nil).Once()

	records, total, err := f.service.ListExports(ctx, orgID, from, to, 20, 40)
	require.NoError(t, err)
	assert.Equal(t, page, records)
	assert.Equal(t, int64(61), total)
}
