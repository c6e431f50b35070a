package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Jeancampos10/site-control-hub-api/internal/dto"
	"github.com/Jeancampos10/site-control-hub-api/pkg/config"
	appErrors "github.com/Jeancampos10/site-control-hub-api/pkg/errors"
)

// SheetsGateway drives logged bulk edits to completion against the external
// Apps Script endpoint. It is the only component allowed to hold or transmit
// the shared secret; callers never see the token, only the outcome.
type SheetsGateway struct {
	cfg     config.SheetsConfig
	client  *http.Client
	metrics *MetricsService
	logger  *zap.Logger
}

// NewSheetsGateway constructs a gateway with sane defaults.
func NewSheetsGateway(cfg config.SheetsConfig, metrics *MetricsService, logger *zap.Logger) *SheetsGateway {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SheetsGateway{
		cfg:     cfg,
		metrics: metrics,
		logger:  logger,
		client:  &http.Client{Timeout: timeout},
	}
}

// scriptRequest is the outbound body. The authToken is attached here, server
// side, immediately before the call.
type scriptRequest struct {
	AuthToken  string            `json:"authToken"`
	SheetName  string            `json:"sheetName"`
	DateFilter *string           `json:"dateFilter"`
	Filters    map[string]string `json:"filters"`
	Updates    map[string]string `json:"updates"`
}

type scriptResponse struct {
	Success      bool   `json:"success"`
	UpdatedCount int    `json:"updatedCount"`
	Message      string `json:"message"`
	Error        string `json:"error"`
}

// Apply forwards the bulk update to the script endpoint and returns the
// upstream-reported outcome verbatim. It never retries: the endpoint is not
// guaranteed idempotent per call, so a blind retry could double-apply.
func (g *SheetsGateway) Apply(ctx context.Context, req dto.ApplyBulkUpdateRequest) (*dto.ApplyBulkUpdateResult, error) {
	if g.cfg.ScriptURL == "" {
		return nil, appErrors.Clone(appErrors.ErrNotConfigured, "sheets script URL is not configured")
	}

	body, err := json.Marshal(scriptRequest{
		AuthToken:  g.cfg.SharedSecret,
		SheetName:  req.SheetName,
		DateFilter: req.DateFilter,
		Filters:    req.Filters,
		Updates:    req.Updates,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode script request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.ScriptURL, bytes.NewReader(body))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build script request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := g.client.Do(httpReq)
	duration := time.Since(start)
	if err != nil {
		g.observe("apply", "transport_error", duration)
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "sheets script call failed")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		g.observe("apply", "transport_error", duration)
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to read script response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		g.observe("apply", "upstream_error", duration)
		return nil, appErrors.Clone(appErrors.ErrUpstream,
			fmt.Sprintf("sheets script returned status %d: %s", resp.StatusCode, snippet(raw)))
	}

	var parsed scriptResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		g.observe("apply", "upstream_error", duration)
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to decode script response")
	}

	if !parsed.Success {
		g.observe("apply", "rejected", duration)
		reason := parsed.Error
		if reason == "" {
			reason = parsed.Message
		}
		if reason == "" {
			reason = "script reported failure without a reason"
		}
		return nil, appErrors.Clone(appErrors.ErrUpstreamRejected, reason)
	}

	g.observe("apply", "success", duration)
	return &dto.ApplyBulkUpdateResult{
		UpdatedCount: parsed.UpdatedCount,
		Message:      parsed.Message,
	}, nil
}

// Healthcheck reports configuration and reachability without mutating
// anything: a config inspection plus a GET ping, never a write. Safe to call
// speculatively before enabling bulk-edit UI.
func (g *SheetsGateway) Healthcheck(ctx context.Context) dto.HealthcheckResult {
	if g.cfg.ScriptURL == "" {
		return dto.HealthcheckResult{Success: false, Message: "sheets script URL is not configured"}
	}
	if g.cfg.SharedSecret == "" {
		return dto.HealthcheckResult{Success: false, Message: "sheets shared secret is not configured"}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.cfg.ScriptURL, nil)
	if err != nil {
		return dto.HealthcheckResult{Success: false, Message: fmt.Sprintf("failed to build healthcheck request: %v", err)}
	}

	start := time.Now()
	resp, err := g.client.Do(req)
	duration := time.Since(start)
	if err != nil {
		g.observe("healthcheck", "transport_error", duration)
		return dto.HealthcheckResult{Success: false, Message: fmt.Sprintf("sheets script unreachable: %v", err)}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))

	if resp.StatusCode >= http.StatusInternalServerError {
		g.observe("healthcheck", "upstream_error", duration)
		return dto.HealthcheckResult{Success: false, Message: fmt.Sprintf("sheets script returned status %d", resp.StatusCode)}
	}

	g.observe("healthcheck", "success", duration)
	return dto.HealthcheckResult{Success: true, Message: "sheets integration configured and reachable"}
}

func (g *SheetsGateway) observe(mode, outcome string, duration time.Duration) {
	if g.metrics != nil {
		g.metrics.ObserveGatewayCall(mode, outcome, duration)
	}
}

func snippet(raw []byte) string {
	s := strings.TrimSpace(string(raw))
	if len(s) > 256 {
		s = s[:256]
	}
	if s == "" {
		s = "<empty body>"
	}
	return s
}
