package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Jeancampos10/site-control-hub-api/internal/dto"
	appErrors "github.com/Jeancampos10/site-control-hub-api/pkg/errors"
)

type updateGateway interface {
	Apply(ctx context.Context, req dto.ApplyBulkUpdateRequest) (*dto.ApplyBulkUpdateResult, error)
	Healthcheck(ctx context.Context) dto.HealthcheckResult
}

// BulkUpdateHandler exposes the edge-function-compatible gateway surface.
// The response shape intentionally deviates from the common envelope: legacy
// dashboard clients consume `{success, updatedCount, message}` /
// `{success:false, error}` bodies directly. The shared secret is attached by
// the gateway and never appears in any response.
type BulkUpdateHandler struct {
	gateway updateGateway
}

// NewBulkUpdateHandler constructs the handler.
func NewBulkUpdateHandler(gateway updateGateway) *BulkUpdateHandler {
	return &BulkUpdateHandler{gateway: gateway}
}

// Apply godoc
// @Summary Forward a bulk update to the sheets script endpoint
// @Tags BulkUpdate
// @Accept json
// @Produce json
// @Param healthcheck query bool false "Probe configuration and reachability without mutating"
// @Success 200 {object} map[string]interface{}
// @Router /apply-bulk-update [post]
func (h *BulkUpdateHandler) Apply(c *gin.Context) {
	if c.Query("healthcheck") == "true" {
		result := h.gateway.Healthcheck(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"success": result.Success, "message": result.Message})
		return
	}

	var req dto.ApplyBulkUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid bulk update payload"})
		return
	}

	result, err := h.gateway.Apply(c.Request.Context(), req)
	if err != nil {
		appErr := appErrors.FromError(err)
		status := appErr.Status
		if status < http.StatusBadRequest {
			status = http.StatusInternalServerError
		}
		c.JSON(status, gin.H{"success": false, "error": appErr.Message})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"updatedCount": result.UpdatedCount,
		"message":      result.Message,
	})
}
