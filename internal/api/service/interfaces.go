// Package service defines the boundaries between the HTTP handlers and the
// application services, plus the thin services that have no package of their
// own.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sellerledger-sync/internal/domain/exportlog"
	"github.com/sellerledger-sync/internal/domain/journal"
	"github.com/sellerledger-sync/internal/domain/mapping"
	"github.com/sellerledger-sync/internal/domain/shared"
	"github.com/sellerledger-sync/internal/exporter"
	"github.com/sellerledger-sync/internal/ingest"
)

// ImportService ingests loosely-typed rows into transaction records
type ImportService interface {
	Import(ctx context.Context, orgID uuid.UUID, source string, rows []ingest.Row) (*ingest.Result, error)
}

// ExportService runs the export pipeline: preview, commit, audit, verify
type ExportService interface {
	Export(ctx context.Context, req exporter.ExportRequest) (*exporter.SubmitOutcome, error)
	Preview(ctx context.Context, req exporter.ExportRequest) ([]*journal.Journal, error)
	ListExports(ctx context.Context, orgID uuid.UUID, from, to time.Time, limit, offset int) ([]*exportlog.Record, int64, error)
	Verify(ctx context.Context, params exporter.VerifyParams) (*exporter.RoundTripResult, error)
}

// MappingService manages the account mapping configuration surface
type MappingService interface {
	GetMappings(ctx context.Context, orgID uuid.UUID, provider shared.Provider) ([]*mapping.Mapping, error)
	PutMappings(ctx context.Context, orgID uuid.UUID, provider shared.Provider, entries map[shared.AccountType]string) error
}

// Compile-time checks against the concrete services
var (
	_ ImportService = (*ingest.Service)(nil)
	_ ExportService = (*exporter.Service)(nil)
)
