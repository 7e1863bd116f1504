package handler

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sellerledger-sync/internal/api/service"
	"github.com/sellerledger-sync/internal/domain/shared"
)

// MappingHandler handles HTTP requests for account mapping configuration
type MappingHandler struct {
	mappingService service.MappingService
	logger         *slog.Logger
}

// NewMappingHandler creates a new mapping handler
func NewMappingHandler(logger *slog.Logger, mappingService service.MappingService) *MappingHandler {
	return &MappingHandler{
		mappingService: mappingService,
		logger:         logger,
	}
}

// Get returns the active mappings for an (org, provider) pair
func (h *MappingHandler) Get(c *gin.Context) {
	orgID, provider, ok := h.bindScope(c)
	if !ok {
		return
	}

	mappings, err := h.mappingService.GetMappings(c.Request.Context(), orgID, provider)
	if err != nil {
		h.logger.Error("Failed to get mappings", "org_id", orgID.String(), "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]MappingResponse, 0, len(mappings))
	for _, m := range mappings {
		responses = append(responses, MappingResponse{
			AccountType: string(m.AccountType),
			ExternalID:  m.ExternalID,
			UpdatedAt:   m.UpdatedAt.Format(time.RFC3339),
		})
	}

	RespondOK(c, gin.H{"mappings": responses})
}

// Put upserts mappings for an (org, provider) pair. Unknown account-type keys
// reject the whole request.
func (h *MappingHandler) Put(c *gin.Context) {
	orgID, provider, ok := h.bindScope(c)
	if !ok {
		return
	}

	var req PutMappingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	entries := make(map[shared.AccountType]string, len(req.Mappings))
	for key, externalID := range req.Mappings {
		if externalID == "" {
			RespondBadRequest(c, "empty external account id for "+key)
			return
		}
		entries[shared.AccountType(key)] = externalID
	}

	if err := h.mappingService.PutMappings(c.Request.Context(), orgID, provider, entries); err != nil {
		var unknown service.UnknownAccountTypeError
		if errors.As(err, &unknown) {
			RespondBadRequest(c, unknown.Error())
			return
		}
		h.logger.Error("Failed to save mappings", "org_id", orgID.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondNoContent(c)
}

func (h *MappingHandler) bindScope(c *gin.Context) (uuid.UUID, shared.Provider, bool) {
	orgID, err := uuid.Parse(c.Param("org_id"))
	if err != nil {
		RespondBadRequest(c, "Invalid organization ID")
		return uuid.Nil, "", false
	}

	provider := shared.Provider(c.Param("provider"))
	if !provider.Valid() {
		RespondBadRequest(c, "Unknown provider: "+c.Param("provider"))
		return uuid.Nil, "", false
	}

	return orgID, provider, true
}
