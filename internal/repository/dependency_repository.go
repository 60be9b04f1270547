package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jwwelbor/shark-orchestrator/internal/models"
)

// DependencyRepository manages directed edges between tasks: three
// kinds (BLOCKS, RELATES_TO, IS_BLOCKED_BY), each optionally carrying
// an UnblockAt role threshold.
type DependencyRepository struct {
	db *DB
}

// NewDependencyRepository creates a DependencyRepository.
func NewDependencyRepository(db *DB) *DependencyRepository {
	return &DependencyRepository{db: db}
}

// CreateInTx inserts a single dependency edge within a caller-managed
// transaction, so batch creation (linear/fan-out/fan-in) and the cycle
// check that must happen before the insert commits share one
// transaction.
func (r *DependencyRepository) CreateInTx(ctx context.Context, tx *sql.Tx, d *models.Dependency) error {
	if err := d.Validate(); err != nil {
		return err
	}
	d.ID = uuid.NewString()

	var unblockAt any
	if d.UnblockAt != nil {
		unblockAt = string(*d.UnblockAt)
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO dependencies (id, from_task_id, to_task_id, type, unblock_at)
		VALUES (?, ?, ?, ?, ?)`,
		d.ID, d.FromTaskID, d.ToTaskID, string(d.Type), unblockAt,
	)
	if err != nil {
		return models.NewDatabaseError("create dependency", err)
	}
	return nil
}

// Create inserts a single dependency edge in its own transaction.
func (r *DependencyRepository) Create(ctx context.Context, d *models.Dependency) error {
	tx, err := r.db.BeginTxContext(ctx)
	if err != nil {
		return models.NewDatabaseError("begin create dependency", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := r.CreateInTx(ctx, tx, d); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return models.NewDatabaseError("commit create dependency", err)
	}
	return nil
}

// ListOutbound returns every dependency edge originating from a task.
func (r *DependencyRepository) ListOutbound(ctx context.Context, taskID string) ([]*models.Dependency, error) {
	rows, err := r.db.QueryContext(ctx, dependencySelectColumns+` FROM dependencies WHERE from_task_id = ?`, taskID)
	if err != nil {
		return nil, models.NewDatabaseError("list outbound dependencies", err)
	}
	return scanRows(rows, func(rows *sql.Rows) (*models.Dependency, error) { return scanDependency(rows) })
}

// ListInbound returns every dependency edge pointing at a task. The
// blocking-resolution algorithm reads this for each candidate task's
// incoming BLOCKS edges.
func (r *DependencyRepository) ListInbound(ctx context.Context, taskID string) ([]*models.Dependency, error) {
	rows, err := r.db.QueryContext(ctx, dependencySelectColumns+` FROM dependencies WHERE to_task_id = ?`, taskID)
	if err != nil {
		return nil, models.NewDatabaseError("list inbound dependencies", err)
	}
	return scanRows(rows, func(rows *sql.Rows) (*models.Dependency, error) { return scanDependency(rows) })
}

// ListAll returns every dependency edge, used by the cycle detector to
// build its adjacency list in one query rather than one per node.
func (r *DependencyRepository) ListAll(ctx context.Context) ([]*models.Dependency, error) {
	rows, err := r.db.QueryContext(ctx, dependencySelectColumns+` FROM dependencies`)
	if err != nil {
		return nil, models.NewDatabaseError("list dependencies", err)
	}
	return scanRows(rows, func(rows *sql.Rows) (*models.Dependency, error) { return scanDependency(rows) })
}

// Delete removes a single dependency edge.
func (r *DependencyRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM dependencies WHERE id = ?`, id)
	if err != nil {
		return models.NewDatabaseError("delete dependency", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return models.NewDatabaseError("delete dependency rows affected", err)
	}
	if rows == 0 {
		return models.NewNotFoundError("dependency", id)
	}
	return nil
}

// DeleteForTaskInTx removes every dependency edge touching a task
// (either endpoint), within a caller-managed transaction. Used by the
// completion cascade before a task row is deleted.
func (r *DependencyRepository) DeleteForTaskInTx(ctx context.Context, tx *sql.Tx, taskID string) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM dependencies WHERE from_task_id = ? OR to_task_id = ?`, taskID, taskID)
	if err != nil {
		return models.NewDatabaseError("delete dependencies for task", err)
	}
	return nil
}

// DeleteByEndpoints removes the edge(s) between two tasks. When depType
// is empty, every edge between the pair is removed regardless of type;
// otherwise only the matching type is removed.
func (r *DependencyRepository) DeleteByEndpoints(ctx context.Context, fromTaskID, toTaskID string, depType models.DependencyType) error {
	query := `DELETE FROM dependencies WHERE from_task_id = ? AND to_task_id = ?`
	args := []any{fromTaskID, toTaskID}
	if depType != "" {
		query += ` AND type = ?`
		args = append(args, string(depType))
	}
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return models.NewDatabaseError("delete dependency by endpoints", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return models.NewDatabaseError("delete dependency by endpoints rows affected", err)
	}
	if rows == 0 {
		return models.NewNotFoundError("dependency", fromTaskID+"->"+toTaskID)
	}
	return nil
}

// DeleteAllForTask removes every dependency edge touching a task
// (either endpoint) outside of any caller-managed transaction, exposed
// as its own storage-layer operation distinct from the completion
// cascade's in-transaction DeleteForTaskInTx.
func (r *DependencyRepository) DeleteAllForTask(ctx context.Context, taskID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM dependencies WHERE from_task_id = ? OR to_task_id = ?`, taskID, taskID)
	if err != nil {
		return models.NewDatabaseError("delete all dependencies for task", err)
	}
	return nil
}

// FindByTaskID returns every dependency edge touching a task, either
// endpoint, combining ListOutbound and ListInbound into the single
// findByTaskId contract.
func (r *DependencyRepository) FindByTaskID(ctx context.Context, taskID string) ([]*models.Dependency, error) {
	rows, err := r.db.QueryContext(ctx, dependencySelectColumns+` FROM dependencies WHERE from_task_id = ? OR to_task_id = ?`, taskID, taskID)
	if err != nil {
		return nil, models.NewDatabaseError("find dependencies by task", err)
	}
	return scanRows(rows, func(rows *sql.Rows) (*models.Dependency, error) { return scanDependency(rows) })
}

// HasCyclicDependency reports whether creating an edge from->to would
// close a cycle: true iff from is reachable from to by following
// existing outgoing BLOCKS edges (a DFS from "to" finding "from").
func (r *DependencyRepository) HasCyclicDependency(ctx context.Context, fromTaskID, toTaskID string) (bool, error) {
	all, err := r.ListAll(ctx)
	if err != nil {
		return false, err
	}
	graph := make(map[string][]string, len(all))
	for _, dep := range all {
		if dep.Type == models.DependencyBlocks {
			graph[dep.FromTaskID] = append(graph[dep.FromTaskID], dep.ToTaskID)
		}
	}
	visited := make(map[string]bool)
	var dfs func(node string) bool
	dfs = func(node string) bool {
		if node == fromTaskID {
			return true
		}
		if visited[node] {
			return false
		}
		visited[node] = true
		for _, next := range graph[node] {
			if dfs(next) {
				return true
			}
		}
		return false
	}
	return dfs(toTaskID), nil
}

const dependencySelectColumns = `SELECT id, from_task_id, to_task_id, type, unblock_at, created_at`

func scanDependency(row rowScanner) (*models.Dependency, error) {
	d := &models.Dependency{}
	var depType string
	var unblockAt sql.NullString
	err := row.Scan(&d.ID, &d.FromTaskID, &d.ToTaskID, &depType, &unblockAt, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	d.Type = models.DependencyType(depType)
	if unblockAt.Valid {
		role := models.Role(unblockAt.String)
		d.UnblockAt = &role
	}
	return d, nil
}
