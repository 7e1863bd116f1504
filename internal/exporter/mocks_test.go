package exporter

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/sellerledger-sync/internal/domain/credential"
	"github.com/sellerledger-sync/internal/domain/exportlog"
	"github.com/sellerledger-sync/internal/domain/journal"
	"github.com/sellerledger-sync/internal/domain/mapping"
	"github.com/sellerledger-sync/internal/domain/record"
	"github.com/sellerledger-sync/internal/domain/shared"
	"github.com/sellerledger-sync/internal/platform/providers"
)

// MockRecordRepository mocks record.Repository
type MockRecordRepository struct {
	mock.Mock
}

func (m *MockRecordRepository) Create(ctx context.Context, rec *record.Record) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockRecordRepository) GetByHash(ctx context.Context, orgID uuid.UUID, contentHash string) (*record.Record, error) {
	args := m.Called(ctx, orgID, contentHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*record.Record), args.Error(1)
}

func (m *MockRecordRepository) GetByOrgAndDateRange(ctx context.Context, orgID uuid.UUID, from, to time.Time) ([]*record.Record, error) {
	args := m.Called(ctx, orgID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*record.Record), args.Error(1)
}

// MockMappingRepository mocks mapping.Repository
type MockMappingRepository struct {
	mock.Mock
}

func (m *MockMappingRepository) GetActiveByOrgAndProvider(ctx context.Context, orgID uuid.UUID, provider shared.Provider) ([]*mapping.Mapping, error) {
	args := m.Called(ctx, orgID, provider)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*mapping.Mapping), args.Error(1)
}

func (m *MockMappingRepository) Upsert(ctx context.Context, ma *mapping.Mapping) error {
	args := m.Called(ctx, ma)
	return args.Error(0)
}

// MockCredentialRepository mocks credential.Repository
type MockCredentialRepository struct {
	mock.Mock
}

func (m *MockCredentialRepository) GetActive(ctx context.Context, orgID uuid.UUID, provider shared.Provider) (*credential.Credential, error) {
	args := m.Called(ctx, orgID, provider)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*credential.Credential), args.Error(1)
}

func (m *MockCredentialRepository) Upsert(ctx context.Context, c *credential.Credential) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

// MockExportRepository mocks exportlog.Repository
type MockExportRepository struct {
	mock.Mock
}

func (m *MockExportRepository) Create(ctx context.Context, rec *exportlog.Record) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockExportRepository) GetByOrgAndDateRange(ctx context.Context, orgID uuid.UUID, from, to time.Time, limit, offset int) ([]*exportlog.Record, error) {
	args := m.Called(ctx, orgID, from, to, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*exportlog.Record), args.Error(1)
}

func (m *MockExportRepository) CountByOrgAndDateRange(ctx context.Context, orgID uuid.UUID, from, to time.Time) (int64, error) {
	args := m.Called(ctx, orgID, from, to)
	return args.Get(0).(int64), args.Error(1)
}

// MockLedgerProvider mocks providers.LedgerProvider
type MockLedgerProvider struct {
	mock.Mock
	name shared.Provider
}

func (m *MockLedgerProvider) Name() shared.Provider {
	if m.name == "" {
		return shared.ProviderQuickBooks
	}
	return m.name
}

func (m *MockLedgerProvider) PostJournal(ctx context.Context, cred *credential.Credential, j *journal.Journal, opts providers.PostOptions) (*providers.Receipt, error) {
	args := m.Called(ctx, cred, j, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*providers.Receipt), args.Error(1)
}

// MockPublisher mocks producers.MessagePublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, key string, value interface{}) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockDLQPublisher mocks producers.DeadLetterPublisher
type MockDLQPublisher struct {
	mock.Mock
}

func (m *MockDLQPublisher) PublishToDLQ(ctx context.Context, key string, originalMessageValue []byte, reason string) error {
	args := m.Called(ctx, key, originalMessageValue, reason)
	return args.Error(0)
}

func (m *MockDLQPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}
