package exportlog

import (
	"time"

	"github.com/google/uuid"
	"github.com/sellerledger-sync/internal/domain/journal"
	"github.com/sellerledger-sync/internal/domain/shared"
)

// Record is the durable provenance of one journal submission attempt, whether
// previewed, committed, or failed. One row is written per attempt and never
// mutated afterwards; retries create new rows.
type Record struct {
	ID          uuid.UUID           `json:"id" bson:"id"`
	OrgID       uuid.UUID           `json:"org_id" bson:"org_id"`
	Provider    shared.Provider     `json:"provider" bson:"provider"`
	PeriodStart time.Time           `json:"period_start" bson:"period_start"`
	PeriodEnd   time.Time           `json:"period_end" bson:"period_end"`
	Status      shared.ExportStatus `json:"status" bson:"status"`

	// Preview holds the fully mapped journal as it stood before the wire
	// transform, for audit and dry-run inspection.
	Preview *journal.Journal `json:"preview,omitempty" bson:"preview,omitempty"`

	ExternalID    string `json:"external_id,omitempty" bson:"external_id,omitempty"`
	HTTPStatus    int    `json:"http_status,omitempty" bson:"http_status,omitempty"`
	RawResponse   string `json:"raw_response,omitempty" bson:"raw_response,omitempty"`
	FailureReason string `json:"failure_reason,omitempty" bson:"failure_reason,omitempty"`

	// LinkedExternalID ties a reversal entry back to the forward entry it
	// cancels during verification round trips.
	LinkedExternalID string `json:"linked_external_id,omitempty" bson:"linked_external_id,omitempty"`

	CorrelationID string    `json:"correlation_id,omitempty" bson:"correlation_id,omitempty"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
}
