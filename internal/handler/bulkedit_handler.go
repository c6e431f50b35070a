package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Jeancampos10/site-control-hub-api/internal/dto"
	"github.com/Jeancampos10/site-control-hub-api/internal/models"
	appErrors "github.com/Jeancampos10/site-control-hub-api/pkg/errors"
	"github.com/Jeancampos10/site-control-hub-api/pkg/response"
)

type bulkEditService interface {
	Submit(ctx context.Context, req dto.SubmitBulkEditRequest, actor *models.JWTClaims) (*dto.BulkEditSubmissionResult, error)
	Apply(ctx context.Context, id string) (*dto.ApplyOutcome, error)
	List(ctx context.Context, filter models.BulkEditLogFilter, actor *models.JWTClaims) ([]models.BulkEditLog, error)
	Get(ctx context.Context, id string, actor *models.JWTClaims) (*models.BulkEditLog, error)
	Export(ctx context.Context, format string, actor *models.JWTClaims) ([]byte, string, error)
}

// BulkEditHandler exposes REST endpoints for the bulk-edit pipeline.
type BulkEditHandler struct {
	service bulkEditService
}

// NewBulkEditHandler constructs the handler.
func NewBulkEditHandler(service bulkEditService) *BulkEditHandler {
	return &BulkEditHandler{service: service}
}

// Submit godoc
// @Summary Submit a bulk edit for deferred application
// @Tags BulkEdits
// @Accept json
// @Produce json
// @Param payload body dto.SubmitBulkEditRequest true "Bulk edit payload"
// @Success 201 {object} response.Envelope
// @Router /bulk-edits [post]
func (h *BulkEditHandler) Submit(c *gin.Context) {
	var req dto.SubmitBulkEditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid bulk edit payload"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	result, err := h.service.Submit(c.Request.Context(), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, result, nil)
}

// List godoc
// @Summary List bulk edit logs
// @Tags BulkEdits
// @Produce json
// @Param status query string false "Comma separated statuses"
// @Param sheet query string false "Sheet name"
// @Success 200 {object} response.Envelope
// @Router /bulk-edits [get]
func (h *BulkEditHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	filter := models.BulkEditLogFilter{
		SheetName: strings.TrimSpace(c.Query("sheet")),
	}
	if rawStatus := c.Query("status"); rawStatus != "" {
		parts := strings.Split(rawStatus, ",")
		statuses := make([]models.BulkEditStatus, 0, len(parts))
		for _, part := range parts {
			part = strings.ToLower(strings.TrimSpace(part))
			if part == "" {
				continue
			}
			statuses = append(statuses, models.BulkEditStatus(part))
		}
		filter.Status = statuses
	}
	logs, err := h.service.List(c.Request.Context(), filter, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, logs, nil)
}

// Get godoc
// @Summary Get bulk edit log detail
// @Tags BulkEdits
// @Produce json
// @Param id path string true "Log ID"
// @Success 200 {object} response.Envelope
// @Router /bulk-edits/{id} [get]
func (h *BulkEditHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	log, err := h.service.Get(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, log, nil)
}

// Apply godoc
// @Summary Drive a pending bulk edit to the sheet now
// @Tags BulkEdits
// @Produce json
// @Param id path string true "Log ID"
// @Success 200 {object} response.Envelope
// @Router /bulk-edits/{id}/apply [post]
func (h *BulkEditHandler) Apply(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	outcome, err := h.service.Apply(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, outcome, nil)
}

// Export godoc
// @Summary Export the bulk edit audit trail
// @Tags BulkEdits
// @Produce text/csv
// @Param format query string false "csv or pdf"
// @Success 200 {file} byte
// @Router /bulk-edits/export [get]
func (h *BulkEditHandler) Export(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	format := c.DefaultQuery("format", "csv")
	payload, contentType, err := h.service.Export(c.Request.Context(), format, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	filename := "bulk-edit-logs." + strings.ToLower(format)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, payload)
}
