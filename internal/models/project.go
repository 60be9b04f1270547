package models

import "time"

// Project is the top-level container in the hierarchy: a human-readable
// key, a title/description/status, a UUID primary key, and a version
// column for optimistic concurrency.
type Project struct {
	ID          string    `db:"id" json:"id"`
	Key         string    `db:"key" json:"key"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description,omitempty"`
	Summary     string    `db:"summary" json:"summary,omitempty"`
	Status      string    `db:"status" json:"status"`
	Tags        []string  `db:"-" json:"tags,omitempty"`
	Version     int64     `db:"version" json:"version"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Validate checks field-level invariants that do not require a database
// round trip. Status legality against the workflow config is checked by
// the Status Progression Service, not here.
func (p *Project) Validate() error {
	if p.Name == "" {
		return NewValidationError("name", "cannot be empty")
	}
	if p.Status == "" {
		return NewValidationError("status", "cannot be empty")
	}
	return nil
}

// EntityType returns the polymorphic entity type discriminator for a Project.
func (p *Project) EntityType() EntityType { return EntityTypeProject }
