package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sellerledger-sync/internal/api/middleware"
	"github.com/sellerledger-sync/internal/api/service"
	"github.com/sellerledger-sync/internal/domain/credential"
	"github.com/sellerledger-sync/internal/domain/exportlog"
	"github.com/sellerledger-sync/internal/domain/mapping"
	"github.com/sellerledger-sync/internal/domain/shared"
	"github.com/sellerledger-sync/internal/exporter"
)

// ExportHandler handles HTTP requests for the export pipeline
type ExportHandler struct {
	exportService service.ExportService
	logger        *slog.Logger
}

// NewExportHandler creates a new export handler
func NewExportHandler(logger *slog.Logger, exportService service.ExportService) *ExportHandler {
	return &ExportHandler{
		exportService: exportService,
		logger:        logger,
	}
}

// Create runs an export for a date range. With dry_run set the response
// carries the fully mapped journals and nothing reaches the provider.
func (h *ExportHandler) Create(c *gin.Context) {
	req, ok := h.bindExportRequest(c)
	if !ok {
		return
	}

	outcome, err := h.exportService.Export(c.Request.Context(), req)
	if err != nil {
		h.respondExportError(c, err)
		return
	}

	RespondOK(c, outcome)
}

// Preview aggregates and maps the date range without any side effect
func (h *ExportHandler) Preview(c *gin.Context) {
	req, ok := h.bindExportRequest(c)
	if !ok {
		return
	}

	journals, err := h.exportService.Preview(c.Request.Context(), req)
	if err != nil {
		h.respondExportError(c, err)
		return
	}

	RespondOK(c, gin.H{"journals": journals})
}

// List retrieves paginated export provenance records for a date range
func (h *ExportHandler) List(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("org_id"))
	if err != nil {
		RespondBadRequest(c, "Invalid organization ID")
		return
	}

	var params ExportListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		h.logger.Error("Invalid list parameters", "error", err)
		RespondBadRequest(c, "Invalid list parameters")
		return
	}

	from, to, err := parseDateRange(params.From, params.To)
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	offset := (params.Page - 1) * params.PerPage
	records, total, err := h.exportService.ListExports(c.Request.Context(), orgID, from, to, params.PerPage, offset)
	if err != nil {
		h.logger.Error("Failed to list exports", "org_id", orgID.String(), "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]ExportRecordResponse, 0, len(records))
	for _, rec := range records {
		responses = append(responses, mapExportRecordToResponse(rec))
	}

	RespondWithPaginatedData(c, http.StatusOK, responses, params.Page, params.PerPage, int(total))
}

// Verify posts the round-trip probe journal and its reversal
func (h *ExportHandler) Verify(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("org_id"))
	if err != nil {
		RespondBadRequest(c, "Invalid organization ID")
		return
	}

	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.exportService.Verify(c.Request.Context(), exporter.VerifyParams{
		OrgID:         orgID,
		Provider:      shared.Provider(req.Provider),
		SameDay:       req.SameDay,
		ClassID:       req.ClassID,
		LocationID:    req.LocationID,
		CorrelationID: middleware.GetCorrelationID(c),
	})
	if err != nil {
		h.respondExportError(c, err)
		return
	}

	RespondOK(c, result)
}

func (h *ExportHandler) bindExportRequest(c *gin.Context) (exporter.ExportRequest, bool) {
	orgID, err := uuid.Parse(c.Param("org_id"))
	if err != nil {
		RespondBadRequest(c, "Invalid organization ID")
		return exporter.ExportRequest{}, false
	}

	var req ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return exporter.ExportRequest{}, false
	}

	from, to, err := parseDateRange(req.From, req.To)
	if err != nil {
		RespondBadRequest(c, err.Error())
		return exporter.ExportRequest{}, false
	}

	return exporter.ExportRequest{
		OrgID:         orgID,
		Provider:      shared.Provider(req.Provider),
		From:          from,
		To:            to,
		Mode:          shared.AggregationMode(req.Mode),
		DryRun:        req.DryRun,
		ClassID:       req.ClassID,
		LocationID:    req.LocationID,
		CorrelationID: middleware.GetCorrelationID(c),
	}, true
}

// respondExportError maps the export pipeline's pre-flight errors to precise
// client responses; everything else is a 500.
func (h *ExportHandler) respondExportError(c *gin.Context, err error) {
	var missing mapping.MissingMappingError
	if errors.As(err, &missing) {
		RespondUnprocessable(c, "MISSING_ACCOUNT_MAPPINGS", missing.Error())
		return
	}

	var notConnected credential.NotConnectedError
	if errors.As(err, &notConnected) {
		RespondConflict(c, "PROVIDER_NOT_CONNECTED", notConnected.Error())
		return
	}

	h.logger.Error("Export operation failed", "error", err)
	RespondInternalError(c)
}

// parseDateRange parses inclusive YYYY-MM-DD bounds into a UTC window
// covering the whole of both days
func parseDateRange(fromStr, toStr string) (time.Time, time.Time, error) {
	from, err := time.ParseInLocation("2006-01-02", fromStr, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("invalid from date, expected YYYY-MM-DD")
	}
	to, err := time.ParseInLocation("2006-01-02", toStr, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("invalid to date, expected YYYY-MM-DD")
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, errors.New("to date precedes from date")
	}
	return from, to.AddDate(0, 0, 1).Add(-time.Millisecond), nil
}

func mapExportRecordToResponse(rec *exportlog.Record) ExportRecordResponse {
	return ExportRecordResponse{
		ID:               rec.ID.String(),
		Provider:         string(rec.Provider),
		PeriodStart:      rec.PeriodStart.Format(time.RFC3339),
		PeriodEnd:        rec.PeriodEnd.Format(time.RFC3339),
		Status:           string(rec.Status),
		ExternalID:       rec.ExternalID,
		HTTPStatus:       rec.HTTPStatus,
		FailureReason:    rec.FailureReason,
		LinkedExternalID: rec.LinkedExternalID,
		CorrelationID:    rec.CorrelationID,
		CreatedAt:        rec.CreatedAt.Format(time.RFC3339),
		Preview:          rec.Preview,
	}
}
