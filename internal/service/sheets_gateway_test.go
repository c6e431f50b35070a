package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Jeancampos10/site-control-hub-api/internal/dto"
	"github.com/Jeancampos10/site-control-hub-api/pkg/config"
	appErrors "github.com/Jeancampos10/site-control-hub-api/pkg/errors"
)

// scriptSpy counts mutating (POST) and non-mutating (GET) calls separately.
type scriptSpy struct {
	mutating    int64
	nonMutating int64
	handler     http.HandlerFunc
}

func newScriptSpy(handler http.HandlerFunc) *scriptSpy {
	return &scriptSpy{handler: handler}
}

func (s *scriptSpy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		atomic.AddInt64(&s.mutating, 1)
	} else {
		atomic.AddInt64(&s.nonMutating, 1)
	}
	if s.handler != nil {
		s.handler(w, r)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func newGateway(url string) *SheetsGateway {
	return NewSheetsGateway(config.SheetsConfig{
		ScriptURL:    url,
		SharedSecret: "secret-token",
		Timeout:      2 * time.Second,
	}, nil, nil)
}

func TestSheetsGatewayApplySuccess(t *testing.T) {
	var received map[string]interface{}
	spy := newScriptSpy(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":      true,
			"updatedCount": 7,
			"message":      "7 rows updated",
		})
	})
	server := httptest.NewServer(spy)
	defer server.Close()

	gateway := newGateway(server.URL)
	dateFilter := "2024-05-01"
	result, err := gateway.Apply(context.Background(), dto.ApplyBulkUpdateRequest{
		SheetName:  "Abastecimentos",
		DateFilter: &dateFilter,
		Filters:    map[string]string{"Veiculo": "CB-012"},
		Updates:    map[string]string{"Motorista": "Carlos Silva"},
	})
	require.NoError(t, err)
	require.Equal(t, 7, result.UpdatedCount)
	require.Equal(t, "7 rows updated", result.Message)

	// The shared secret rides in the body, attached server-side.
	require.Equal(t, "secret-token", received["authToken"])
	require.Equal(t, "Abastecimentos", received["sheetName"])
	require.Equal(t, "2024-05-01", received["dateFilter"])
}

func TestSheetsGatewayApplyNotConfigured(t *testing.T) {
	spy := newScriptSpy(nil)
	server := httptest.NewServer(spy)
	defer server.Close()

	// URL deliberately absent: the gateway must fail fast without touching
	// the network.
	gateway := NewSheetsGateway(config.SheetsConfig{SharedSecret: "secret-token"}, nil, nil)
	_, err := gateway.Apply(context.Background(), dto.ApplyBulkUpdateRequest{
		SheetName: "Abastecimentos",
		Updates:   map[string]string{"Motorista": "Carlos Silva"},
	})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrNotConfigured.Code, appErrors.FromError(err).Code)
	require.EqualValues(t, 0, atomic.LoadInt64(&spy.mutating))
	require.EqualValues(t, 0, atomic.LoadInt64(&spy.nonMutating))
}

func TestSheetsGatewayApplyUpstreamError(t *testing.T) {
	spy := newScriptSpy(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	server := httptest.NewServer(spy)
	defer server.Close()

	gateway := newGateway(server.URL)
	_, err := gateway.Apply(context.Background(), dto.ApplyBulkUpdateRequest{
		SheetName: "Abastecimentos",
		Updates:   map[string]string{"Motorista": "Carlos Silva"},
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	require.Equal(t, appErrors.ErrUpstream.Code, appErr.Code)
	require.Contains(t, appErr.Message, "500")
}

func TestSheetsGatewayApplyRejected(t *testing.T) {
	spy := newScriptSpy(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"error":   "sheet locked",
		})
	})
	server := httptest.NewServer(spy)
	defer server.Close()

	gateway := newGateway(server.URL)
	_, err := gateway.Apply(context.Background(), dto.ApplyBulkUpdateRequest{
		SheetName: "Abastecimentos",
		Updates:   map[string]string{"Motorista": "Carlos Silva"},
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	require.Equal(t, appErrors.ErrUpstreamRejected.Code, appErr.Code)
	require.Equal(t, "sheet locked", appErr.Message)
}

func TestSheetsGatewayHealthcheckNeverMutates(t *testing.T) {
	spy := newScriptSpy(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "updatedCount": 1, "message": "ok"})
	})
	server := httptest.NewServer(spy)
	defer server.Close()

	gateway := newGateway(server.URL)
	for i := 0; i < 3; i++ {
		result := gateway.Healthcheck(context.Background())
		require.True(t, result.Success)
	}
	require.EqualValues(t, 0, atomic.LoadInt64(&spy.mutating))
	require.EqualValues(t, 3, atomic.LoadInt64(&spy.nonMutating))

	// A real apply afterwards is the only mutating call the spy sees.
	_, err := gateway.Apply(context.Background(), dto.ApplyBulkUpdateRequest{
		SheetName: "Abastecimentos",
		Updates:   map[string]string{"Motorista": "Carlos Silva"},
	})
	require.NoError(t, err)
	require.EqualValues(t, 1, atomic.LoadInt64(&spy.mutating))
}

func TestSheetsGatewayHealthcheckNotConfigured(t *testing.T) {
	gateway := NewSheetsGateway(config.SheetsConfig{}, nil, nil)
	result := gateway.Healthcheck(context.Background())
	require.False(t, result.Success)
	require.Contains(t, result.Message, "not configured")

	gateway = NewSheetsGateway(config.SheetsConfig{ScriptURL: "http://example.invalid"}, nil, nil)
	result = gateway.Healthcheck(context.Background())
	require.False(t, result.Success)
	require.Contains(t, result.Message, "secret")
}
