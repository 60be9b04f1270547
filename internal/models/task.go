package models

import "time"

// Task is a leaf work item, child of a Feature and/or a Project: either
// parent may be left unset but at least one must be set, and if both
// are set the Feature's ProjectID must equal the Task's ProjectID. Priority is a closed HIGH/MEDIUM/LOW
// enum; Complexity is a separate numeric 1-10 estimate the recommendation
// engine uses as a tie-breaker.
type Task struct {
	ID          string    `db:"id" json:"id"`
	FeatureID   *string   `db:"feature_id" json:"feature_id,omitempty"`
	ProjectID   *string   `db:"project_id" json:"project_id,omitempty"`
	Title       string    `db:"title" json:"title"`
	Summary     string    `db:"summary" json:"summary,omitempty"`
	Status      string    `db:"status" json:"status"`
	Priority    Priority  `db:"priority" json:"priority"`
	Complexity  int       `db:"complexity" json:"complexity"`
	Tags        []string  `db:"-" json:"tags,omitempty"`
	Version     int64     `db:"version" json:"version"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Validate checks field-level invariants that do not require a database
// round trip.
func (t *Task) Validate() error {
	if t.Title == "" {
		return NewValidationError("title", "cannot be empty")
	}
	if t.Status == "" {
		return NewValidationError("status", "cannot be empty")
	}
	if t.Priority != "" && !t.Priority.IsValid() {
		return NewValidationError("priority", "must be HIGH, MEDIUM, or LOW")
	}
	if t.Complexity < 1 || t.Complexity > 10 {
		return NewValidationError("complexity", "must be between 1 and 10")
	}
	if t.FeatureID == nil && t.ProjectID == nil {
		return NewValidationError("feature_id/project_id", "at least one parent must be set")
	}
	return nil
}

// EntityType returns the polymorphic entity type discriminator for a Task.
func (t *Task) EntityType() EntityType { return EntityTypeTask }
