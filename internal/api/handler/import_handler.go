package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sellerledger-sync/internal/api/service"
)

// ImportHandler handles HTTP requests for record imports
type ImportHandler struct {
	importService service.ImportService
	logger        *slog.Logger
}

// NewImportHandler creates a new import handler
func NewImportHandler(logger *slog.Logger, importService service.ImportService) *ImportHandler {
	return &ImportHandler{
		importService: importService,
		logger:        logger,
	}
}

// Create imports a batch of rows for an organization. The whole batch is
// processed even when individual rows fail: the response reports inserted,
// skipped-duplicate, and invalid rows separately.
func (h *ImportHandler) Create(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("org_id"))
	if err != nil {
		h.logger.Error("Invalid org ID", "org_id", c.Param("org_id"), "error", err)
		RespondBadRequest(c, "Invalid organization ID")
		return
	}

	var req ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.importService.Import(c.Request.Context(), orgID, req.Source, req.Rows)
	if err != nil {
		h.logger.Error("Failed to import rows", "org_id", orgID.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, result)
}
