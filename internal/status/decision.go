package status

import "github.com/jwwelbor/shark-orchestrator/internal/models"

// DecisionKind classifies the outcome of proposing a status transition.
type DecisionKind string

const (
	// DecisionAllowed means the transition is permitted and changes the
	// entity's role.
	DecisionAllowed DecisionKind = "allowed"
	// DecisionAllowedNoRoleChange means the transition is permitted but
	// the new status maps to the same role as the old one.
	DecisionAllowedNoRoleChange DecisionKind = "allowed_no_role_change"
	// DecisionRejected means the transition is not permitted.
	DecisionRejected DecisionKind = "rejected"
)

// Decision is the outcome of ProposeTransition: either an allowed
// transition (with the resulting role) or a rejection with a reason.
type Decision struct {
	Kind    DecisionKind
	NewRole models.Role
	Reason  string
}

// Allowed builds a Decision for a transition that changes role.
func Allowed(newRole models.Role) Decision {
	return Decision{Kind: DecisionAllowed, NewRole: newRole}
}

// AllowedNoRoleChange builds a Decision for a transition that keeps the
// entity in the same role.
func AllowedNoRoleChange(role models.Role) Decision {
	return Decision{Kind: DecisionAllowedNoRoleChange, NewRole: role}
}

// Rejected builds a Decision describing why a transition is refused.
func Rejected(reason string) Decision {
	return Decision{Kind: DecisionRejected, Reason: reason}
}

// IsAllowed reports whether the transition may proceed.
func (d Decision) IsAllowed() bool {
	return d.Kind == DecisionAllowed || d.Kind == DecisionAllowedNoRoleChange
}

// ChangesRole reports whether applying the transition changes role.
func (d Decision) ChangesRole() bool {
	return d.Kind == DecisionAllowed
}
