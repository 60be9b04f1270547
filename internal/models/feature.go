package models

import "time"

// Feature is a child of a Project, though the parent is optional: a
// Feature may stand alone. Carries a Priority and a version column for
// optimistic concurrency.
type Feature struct {
	ID          string    `db:"id" json:"id"`
	ProjectID   *string   `db:"project_id" json:"project_id,omitempty"`
	Key         string    `db:"key" json:"key"`
	Name        string    `db:"name" json:"name"`
	Summary     string    `db:"summary" json:"summary,omitempty"`
	Status      string    `db:"status" json:"status"`
	Priority    Priority  `db:"priority" json:"priority"`
	Tags        []string  `db:"-" json:"tags,omitempty"`
	Version     int64     `db:"version" json:"version"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Validate checks field-level invariants.
func (f *Feature) Validate() error {
	if f.Name == "" {
		return NewValidationError("name", "cannot be empty")
	}
	if f.Status == "" {
		return NewValidationError("status", "cannot be empty")
	}
	if f.Priority != "" && !f.Priority.IsValid() {
		return NewValidationError("priority", "must be HIGH, MEDIUM, or LOW")
	}
	return nil
}

// EntityType returns the polymorphic entity type discriminator for a Feature.
func (f *Feature) EntityType() EntityType { return EntityTypeFeature }
