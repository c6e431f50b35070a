package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/Jeancampos10/site-control-hub-api/internal/dto"
	appErrors "github.com/Jeancampos10/site-control-hub-api/pkg/errors"
)

type updateGatewayStub struct {
	result      *dto.ApplyBulkUpdateResult
	err         error
	health      dto.HealthcheckResult
	applyCalls  int
	healthCalls int
}

func (g *updateGatewayStub) Apply(ctx context.Context, req dto.ApplyBulkUpdateRequest) (*dto.ApplyBulkUpdateResult, error) {
	g.applyCalls++
	if g.err != nil {
		return nil, g.err
	}
	return g.result, nil
}

func (g *updateGatewayStub) Healthcheck(ctx context.Context) dto.HealthcheckResult {
	g.healthCalls++
	return g.health
}

func newBulkUpdateRouter(stub *updateGatewayStub) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/apply-bulk-update", NewBulkUpdateHandler(stub).Apply)
	return r
}

func TestBulkUpdateHandlerSuccess(t *testing.T) {
	stub := &updateGatewayStub{result: &dto.ApplyBulkUpdateResult{UpdatedCount: 7, Message: "7 rows updated"}}
	r := newBulkUpdateRouter(stub)

	body := []byte(`{"sheetName":"Abastecimentos","updates":{"Motorista":"Carlos Silva"}}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/apply-bulk-update", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &parsed))
	require.Equal(t, true, parsed["success"])
	require.EqualValues(t, 7, parsed["updatedCount"])
	require.Equal(t, "7 rows updated", parsed["message"])
	require.NotContains(t, w.Body.String(), "authToken")
}

func TestBulkUpdateHandlerInvalidBody(t *testing.T) {
	stub := &updateGatewayStub{}
	r := newBulkUpdateRouter(stub)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/apply-bulk-update", bytes.NewReader([]byte(`not json`)))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &parsed))
	require.Equal(t, false, parsed["success"])
	require.NotEmpty(t, parsed["error"])
	require.Zero(t, stub.applyCalls)
}

func TestBulkUpdateHandlerNotConfigured(t *testing.T) {
	stub := &updateGatewayStub{err: appErrors.Clone(appErrors.ErrNotConfigured, "sheets script URL is not configured")}
	r := newBulkUpdateRouter(stub)

	body := []byte(`{"sheetName":"Abastecimentos","updates":{"Motorista":"Carlos Silva"}}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/apply-bulk-update", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &parsed))
	require.Equal(t, false, parsed["success"])
	require.Equal(t, "sheets script URL is not configured", parsed["error"])
}

func TestBulkUpdateHandlerUpstreamError(t *testing.T) {
	stub := &updateGatewayStub{err: appErrors.Clone(appErrors.ErrUpstreamRejected, "sheet locked")}
	r := newBulkUpdateRouter(stub)

	body := []byte(`{"sheetName":"Abastecimentos","updates":{"Motorista":"Carlos Silva"}}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/apply-bulk-update", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadGateway, w.Code)
	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &parsed))
	require.Equal(t, false, parsed["success"])
	require.Equal(t, "sheet locked", parsed["error"])
}

func TestBulkUpdateHandlerHealthcheck(t *testing.T) {
	stub := &updateGatewayStub{health: dto.HealthcheckResult{Success: true, Message: "sheets integration configured and reachable"}}
	r := newBulkUpdateRouter(stub)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/apply-bulk-update?healthcheck=true", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &parsed))
	require.Equal(t, true, parsed["success"])
	require.Equal(t, 1, stub.healthCalls)
	require.Zero(t, stub.applyCalls)
}
