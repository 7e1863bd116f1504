// Package mongo provides the MongoDB implementation of the export provenance
// repository. The collection is append-only: rows are written once per
// submission attempt and never updated.
package mongo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sellerledger-sync/internal/domain/exportlog"
)

const (
	// ExportCollectionName is the name of the export provenance collection
	ExportCollectionName = "export_records"
)

// ExportRepository implements the exportlog.Repository interface for MongoDB
type ExportRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewExportRepository creates a new MongoDB export provenance repository
func NewExportRepository(logger *slog.Logger, db *mongo.Database) exportlog.Repository {
	return &ExportRepository{
		db:     db,
		logger: logger,
	}
}

// Create appends one provenance record. Retried submissions insert new rows;
// nothing is ever overwritten.
func (r *ExportRepository) Create(ctx context.Context, rec *exportlog.Record) error {
	collection := r.db.Collection(ExportCollectionName)

	if _, err := collection.InsertOne(ctx, rec); err != nil {
		r.logger.Error("Failed to create export record",
			"org_id", rec.OrgID.String(),
			"provider", string(rec.Provider),
			"error", err)
		return fmt.Errorf("failed to create export record: %w", err)
	}

	return nil
}

// GetByOrgAndDateRange retrieves paginated provenance records whose export
// period overlaps [from, to]. Results are sorted by creation time in
// descending order (newest first).
func (r *ExportRepository) GetByOrgAndDateRange(ctx context.Context, orgID uuid.UUID, from, to time.Time, limit, offset int) ([]*exportlog.Record, error) {
	collection := r.db.Collection(ExportCollectionName)

	filter := rangeFilter(orgID, from, to)
	opts := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to get export records",
			"org_id", orgID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get export records: %w", err)
	}
	defer cursor.Close(ctx)

	var records []*exportlog.Record
	if err := cursor.All(ctx, &records); err != nil {
		r.logger.Error("Failed to decode export records",
			"org_id", orgID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to decode export records: %w", err)
	}

	return records, nil
}

// CountByOrgAndDateRange counts provenance records whose export period
// overlaps [from, to]
func (r *ExportRepository) CountByOrgAndDateRange(ctx context.Context, orgID uuid.UUID, from, to time.Time) (int64, error) {
	collection := r.db.Collection(ExportCollectionName)

	count, err := collection.CountDocuments(ctx, rangeFilter(orgID, from, to))
	if err != nil {
		r.logger.Error("Failed to count export records",
			"org_id", orgID.String(),
			"error", err)
		return 0, fmt.Errorf("failed to count export records: %w", err)
	}

	return count, nil
}

func rangeFilter(orgID uuid.UUID, from, to time.Time) bson.M {
	return bson.M{
		"org_id":       orgID,
		"period_start": bson.M{"$lte": to},
		"period_end":   bson.M{"$gte": from},
	}
}
