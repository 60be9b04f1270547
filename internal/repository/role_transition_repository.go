package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jwwelbor/shark-orchestrator/internal/models"
)

// RoleTransitionRepository appends and queries the audit trail of role
// changes, for any entity type.
type RoleTransitionRepository struct {
	db *DB
}

// NewRoleTransitionRepository creates a RoleTransitionRepository.
func NewRoleTransitionRepository(db *DB) *RoleTransitionRepository {
	return &RoleTransitionRepository{db: db}
}

// AppendInTx inserts a role transition record within a caller-managed
// transaction, so the status update and its audit record commit
// together or not at all.
func (r *RoleTransitionRepository) AppendInTx(ctx context.Context, tx *sql.Tx, rt *models.RoleTransition) error {
	rt.ID = uuid.NewString()

	var fromRole, fromStatus any
	if rt.FromRole != "" {
		fromRole = string(rt.FromRole)
	}
	if rt.FromStatus != "" {
		fromStatus = rt.FromStatus
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO role_transitions (id, entity_id, entity_type, from_role, to_role, from_status, to_status, trigger)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rt.ID, rt.EntityID, string(rt.EntityType), fromRole, string(rt.ToRole), fromStatus, rt.ToStatus, string(rt.Trigger),
	)
	if err != nil {
		return models.NewDatabaseError("append role transition", err)
	}
	return nil
}

// ListForEntity returns an entity's role-transition history, most
// recent first.
func (r *RoleTransitionRepository) ListForEntity(ctx context.Context, entityType models.EntityType, entityID string) ([]*models.RoleTransition, error) {
	rows, err := r.db.QueryContext(ctx, roleTransitionSelectColumns+`
		FROM role_transitions WHERE entity_type = ? AND entity_id = ? ORDER BY timestamp DESC, rowid DESC`,
		string(entityType), entityID,
	)
	if err != nil {
		return nil, models.NewDatabaseError("list role transitions", err)
	}
	return scanRows(rows, func(rows *sql.Rows) (*models.RoleTransition, error) { return scanRoleTransition(rows) })
}

const roleTransitionSelectColumns = `SELECT id, entity_id, entity_type, from_role, to_role, from_status, to_status, trigger, timestamp`

func scanRoleTransition(row rowScanner) (*models.RoleTransition, error) {
	rt := &models.RoleTransition{}
	var entityType, toRole, trigger string
	var fromRole, fromStatus sql.NullString
	err := row.Scan(&rt.ID, &rt.EntityID, &entityType, &fromRole, &toRole, &fromStatus, &rt.ToStatus, &trigger, &rt.Timestamp)
	if err != nil {
		return nil, err
	}
	rt.EntityType = models.EntityType(entityType)
	rt.ToRole = models.Role(toRole)
	rt.Trigger = models.Trigger(trigger)
	if fromRole.Valid {
		rt.FromRole = models.Role(fromRole.String)
	}
	if fromStatus.Valid {
		rt.FromStatus = fromStatus.String
	}
	return rt, nil
}
