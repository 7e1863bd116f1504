package handler

import (
	"github.com/sellerledger-sync/internal/domain/journal"
	"github.com/sellerledger-sync/internal/ingest"
)

// ImportRequest represents a batch of rows to import from one source
type ImportRequest struct {
	Source string       `json:"source" binding:"required"`
	Rows   []ingest.Row `json:"rows" binding:"required,min=1"`
}

// ExportRequest represents a request to export a date range to a provider
type ExportRequest struct {
	Provider   string `json:"provider" binding:"required,oneof=quickbooks xero"`
	From       string `json:"from" binding:"required"` // YYYY-MM-DD
	To         string `json:"to" binding:"required"`   // YYYY-MM-DD, inclusive
	Mode       string `json:"mode,omitempty" binding:"omitempty,oneof=summarized per_order"`
	DryRun     bool   `json:"dry_run,omitempty"`
	ClassID    string `json:"class_id,omitempty"`
	LocationID string `json:"location_id,omitempty"`
}

// VerifyRequest represents a request to run the round-trip posting check
type VerifyRequest struct {
	Provider   string `json:"provider" binding:"required,oneof=quickbooks xero"`
	SameDay    bool   `json:"same_day,omitempty"`
	ClassID    string `json:"class_id,omitempty"`
	LocationID string `json:"location_id,omitempty"`
}

// ExportListParams represents query parameters for the export audit listing
type ExportListParams struct {
	From    string `form:"from" binding:"required"`
	To      string `form:"to" binding:"required"`
	Page    int    `form:"page,default=1" binding:"min=1"`
	PerPage int    `form:"per_page,default=10" binding:"min=1,max=100"`
}

// ExportRecordResponse represents one provenance record in API responses
type ExportRecordResponse struct {
	ID               string           `json:"id"`
	Provider         string           `json:"provider"`
	PeriodStart      string           `json:"period_start"`
	PeriodEnd        string           `json:"period_end"`
	Status           string           `json:"status"`
	ExternalID       string           `json:"external_id,omitempty"`
	HTTPStatus       int              `json:"http_status,omitempty"`
	FailureReason    string           `json:"failure_reason,omitempty"`
	LinkedExternalID string           `json:"linked_external_id,omitempty"`
	CorrelationID    string           `json:"correlation_id,omitempty"`
	CreatedAt        string           `json:"created_at"`
	Preview          *journal.Journal `json:"preview,omitempty"`
}

// PutMappingsRequest represents a bulk account mapping update, keyed by
// logical account type
type PutMappingsRequest struct {
	Mappings map[string]string `json:"mappings" binding:"required,min=1"`
}

// MappingResponse represents one active account mapping in API responses
type MappingResponse struct {
	AccountType string `json:"account_type"`
	ExternalID  string `json:"external_id"`
	UpdatedAt   string `json:"updated_at"`
}
