package models

import "time"

// DateFilterKey is the filter key extracted into the dedicated date_filter
// column instead of being persisted inside the filters map. The sheets use
// the Portuguese column name.
const DateFilterKey = "Data"

// SampleLimit caps how many matched rows are captured for audit display.
const SampleLimit = 5

// BulkEditStatus tracks the lifecycle of a proposed bulk edit.
type BulkEditStatus string

const (
	BulkEditStatusPending BulkEditStatus = "pending"
	BulkEditStatusApplied BulkEditStatus = "applied"
	BulkEditStatusFailed  BulkEditStatus = "failed"
)

// BulkEditLog is the durable record of a proposed bulk edit against a sheet.
// Filters, Updates and AffectedRowsSample are JSONB payloads; the sample is
// audit-only and never drives the actual update.
type BulkEditLog struct {
	ID                 string         `db:"id" json:"id"`
	SheetName          string         `db:"sheet_name" json:"sheetName"`
	DateFilter         *string        `db:"date_filter" json:"dateFilter,omitempty"`
	Filters            []byte         `db:"filters" json:"filters"`
	Updates            []byte         `db:"updates" json:"updates"`
	AffectedRowsCount  int            `db:"affected_rows_count" json:"affectedRowsCount"`
	AffectedRowsSample []byte         `db:"affected_rows_sample" json:"affectedRowsSample"`
	Status             BulkEditStatus `db:"status" json:"status"`
	CreatedBy          string         `db:"created_by" json:"createdBy"`
	CreatedAt          time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt          time.Time      `db:"updated_at" json:"updatedAt"`
}

// BulkEditLogFilter constrains listing queries.
type BulkEditLogFilter struct {
	Status    []BulkEditStatus
	SheetName string
	CreatedBy string
	Limit     int
	Offset    int
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
