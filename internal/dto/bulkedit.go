package dto

// SubmitBulkEditRequest is the orchestration-layer payload: a filter
// predicate, the field changes to apply to every matched row, and the rows
// the client determined would match.
type SubmitBulkEditRequest struct {
	SheetName    string              `json:"sheetName" binding:"required"`
	Filters      map[string]string   `json:"filters" binding:"required"`
	Updates      map[string]string   `json:"updates" binding:"required"`
	AffectedRows []map[string]string `json:"affectedRows"`
	Description  string              `json:"description"`
}

// BulkEditSubmissionResult reports the outcome of a submission. The edit is
// logged and queued; application to the sheet happens later.
type BulkEditSubmissionResult struct {
	LogID             string `json:"logId"`
	Status            string `json:"status"`
	AffectedRowsCount int    `json:"affectedRowsCount"`
	Message           string `json:"message"`
}

// ApplyBulkUpdateRequest mirrors the edge-function body forwarded to the
// Apps Script endpoint. The shared secret is attached server-side and never
// appears here.
type ApplyBulkUpdateRequest struct {
	SheetName  string            `json:"sheetName" binding:"required"`
	DateFilter *string           `json:"dateFilter"`
	Filters    map[string]string `json:"filters"`
	Updates    map[string]string `json:"updates" binding:"required"`
}

// ApplyBulkUpdateResult carries the upstream-reported outcome verbatim; the
// script endpoint is the sole authority on how many rows changed.
type ApplyBulkUpdateResult struct {
	UpdatedCount int    `json:"updatedCount"`
	Message      string `json:"message"`
}

// HealthcheckResult reports gateway configuration and reachability without
// mutating anything.
type HealthcheckResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ApplyOutcome summarises a deferred application attempt for API consumers.
type ApplyOutcome struct {
	LogID        string `json:"logId"`
	Status       string `json:"status"`
	UpdatedCount int    `json:"updatedCount"`
	Message      string `json:"message"`
}
