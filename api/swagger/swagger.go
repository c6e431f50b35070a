package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Site Control Hub API",
        "description": "Deferred bulk-edit reconciliation backend for the site control dashboard",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Actor identity"},
        {"name": "BulkEdits", "description": "Bulk edit log and deferred application"},
        {"name": "BulkUpdate", "description": "Edge-function-compatible sheets gateway"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check (database and sheets gateway)",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Degraded"}
                }
            }
        },
        "/api/v1/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate and receive an access token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "Token issued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/api/v1/bulk-edits": {
            "post": {
                "tags": ["BulkEdits"],
                "summary": "Submit a bulk edit for deferred application",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitBulkEditRequest"}}
                ],
                "responses": {
                    "201": {"description": "Logged and queued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error"},
                    "401": {"description": "Unauthorized"}
                }
            },
            "get": {
                "tags": ["BulkEdits"],
                "summary": "List bulk edit logs",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string", "description": "Comma separated: pending, applied, failed"},
                    {"name": "sheet", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Logs", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/bulk-edits/{id}": {
            "get": {
                "tags": ["BulkEdits"],
                "summary": "Get bulk edit log detail",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Log", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/api/v1/bulk-edits/{id}/apply": {
            "post": {
                "tags": ["BulkEdits"],
                "summary": "Drive a pending bulk edit to the sheet now",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Applied", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already processed"},
                    "502": {"description": "Upstream failure"}
                }
            }
        },
        "/api/v1/bulk-edits/export": {
            "get": {
                "tags": ["BulkEdits"],
                "summary": "Export the bulk edit audit trail",
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "description": "csv or pdf"}
                ],
                "responses": {
                    "200": {"description": "File download"}
                }
            }
        },
        "/apply-bulk-update": {
            "post": {
                "tags": ["BulkUpdate"],
                "summary": "Forward a bulk update to the sheets script endpoint",
                "parameters": [
                    {"name": "healthcheck", "in": "query", "type": "boolean", "description": "Probe without mutating"},
                    {"name": "payload", "in": "body", "schema": {"$ref": "#/definitions/ApplyBulkUpdateRequest"}}
                ],
                "responses": {
                    "200": {"description": "Upstream outcome"},
                    "400": {"description": "Not configured or invalid payload"},
                    "502": {"description": "Upstream failure"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "SubmitBulkEditRequest": {
            "type": "object",
            "required": ["sheetName", "filters", "updates"],
            "properties": {
                "sheetName": {"type": "string"},
                "filters": {"type": "object", "additionalProperties": {"type": "string"}},
                "updates": {"type": "object", "additionalProperties": {"type": "string"}},
                "affectedRows": {"type": "array", "items": {"type": "object"}},
                "description": {"type": "string"}
            }
        },
        "ApplyBulkUpdateRequest": {
            "type": "object",
            "required": ["sheetName", "updates"],
            "properties": {
                "sheetName": {"type": "string"},
                "dateFilter": {"type": "string"},
                "filters": {"type": "object", "additionalProperties": {"type": "string"}},
                "updates": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
