package models

import "time"

// ContentFormat identifies how Section.Content should be interpreted by
// a client that renders it.
type ContentFormat string

const (
	ContentFormatMarkdown ContentFormat = "markdown"
	ContentFormatPlain    ContentFormat = "plain"
	ContentFormatJSON     ContentFormat = "json"
)

// Section is ordered attached content on any entity (Project, Feature,
// or Task): a single polymorphic (entityType, entityId) row instead of
// a separate join table per parent type, the same shape the tag table
// uses.
type Section struct {
	ID               string        `db:"id" json:"id"`
	EntityType       EntityType    `db:"entity_type" json:"entity_type"`
	EntityID         string        `db:"entity_id" json:"entity_id"`
	Title            string        `db:"title" json:"title"`
	UsageDescription string        `db:"usage_description" json:"usage_description,omitempty"`
	Content          string        `db:"content" json:"content"`
	ContentFormat    ContentFormat `db:"content_format" json:"content_format"`
	Ordinal          int           `db:"ordinal" json:"ordinal"`
	Tags             []string      `db:"-" json:"tags,omitempty"`
	Version          int64         `db:"version" json:"version"`
	CreatedAt        time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time     `db:"updated_at" json:"updated_at"`
}

// Validate checks field-level invariants that do not require a database
// round trip.
func (s *Section) Validate() error {
	if s.Title == "" {
		return NewValidationError("title", "cannot be empty")
	}
	if !s.EntityType.IsValid() {
		return NewValidationError("entity_type", "must be project, feature, or task")
	}
	if s.EntityID == "" {
		return NewValidationError("entity_id", "cannot be empty")
	}
	if s.Ordinal < 0 {
		return NewValidationError("ordinal", "cannot be negative")
	}
	switch s.ContentFormat {
	case ContentFormatMarkdown, ContentFormatPlain, ContentFormatJSON:
	default:
		return NewValidationError("content_format", "must be markdown, plain, or json")
	}
	return nil
}
