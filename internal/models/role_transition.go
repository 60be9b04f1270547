package models

import "time"

// RoleTransition is an immutable, append-only event recording a role
// change on an entity, written only when a status change actually moves
// the entity from one role to another, never on a same-role status
// change.
type RoleTransition struct {
	ID         string     `db:"id" json:"id"`
	EntityID   string     `db:"entity_id" json:"entity_id"`
	EntityType EntityType `db:"entity_type" json:"entity_type"`
	FromRole   Role       `db:"from_role" json:"from_role"`
	ToRole     Role       `db:"to_role" json:"to_role"`
	FromStatus string     `db:"from_status" json:"from_status"`
	ToStatus   string     `db:"to_status" json:"to_status"`
	Trigger    Trigger    `db:"trigger" json:"trigger"`
	Timestamp  time.Time  `db:"timestamp" json:"timestamp"`
}
