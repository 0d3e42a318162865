// Package forms manages intake form templates: JSON schemas the client UI
// renders when a commission is submitted.
package forms

import (
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound indicates a missing form template.
var ErrNotFound = errors.New("form template not found")

// Template is a versionless intake form definition.
type Template struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Schema    json.RawMessage `json:"schema"`
	IsActive  bool            `json:"is_active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// UpsertTemplateRequest creates or replaces a template.
type UpsertTemplateRequest struct {
	Name     string          `json:"name" validate:"required,max=160"`
	Schema   json.RawMessage `json:"schema" validate:"required"`
	IsActive *bool           `json:"is_active,omitempty"`
}
