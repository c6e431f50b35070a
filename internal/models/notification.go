package models

import "time"

// NotificationTypeEdit tags notifications emitted by the bulk-edit fan-out.
const NotificationTypeEdit = "edit"

// FieldChange captures a single field diff in display-string form.
type FieldChange struct {
	Old string `json:"old"`
	New string `json:"new"`
}

// NotificationData is the structured payload stored alongside a notification.
type NotificationData struct {
	EditorID   string                 `json:"editorId"`
	EditorName string                 `json:"editorName"`
	SheetType  string                 `json:"sheetType"`
	RecordID   string                 `json:"recordId"`
	Changes    map[string]FieldChange `json:"changes,omitempty"`
}

// Notification is one persisted row per (edit event, admin recipient).
type Notification struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"userId"`
	Type      string    `db:"type" json:"type"`
	Title     string    `db:"title" json:"title"`
	Message   string    `db:"message" json:"message"`
	Data      []byte    `db:"data" json:"data"`
	Read      bool      `db:"read" json:"read"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
