package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jwwelbor/shark-orchestrator/internal/models"
)

// TaskRepository handles CRUD and query operations for tasks, with a
// dual optional FeatureID/ProjectID parent, a Priority/Complexity
// split, and version-based optimistic concurrency on Update.
type TaskRepository struct {
	db   *DB
	tags *TagRepository
}

// NewTaskRepository creates a TaskRepository.
func NewTaskRepository(db *DB) *TaskRepository {
	return &TaskRepository{db: db, tags: NewTagRepository(db)}
}

// Create inserts a new task, defaulting Priority and Complexity when the
// caller leaves them unset rather than forcing every caller to name them.
func (r *TaskRepository) Create(ctx context.Context, t *models.Task) error {
	if t.Priority == "" {
		t.Priority = models.PriorityMedium
	}
	if t.Complexity == 0 {
		t.Complexity = 5
	}
	if err := t.Validate(); err != nil {
		return err
	}
	if err := r.checkParentConsistency(ctx, r.db, t); err != nil {
		return err
	}
	t.ID = uuid.NewString()
	t.Version = 1
	searchVector := BuildSearchVector(t.Tags, t.Title, t.Summary)

	tx, err := r.db.BeginTxContext(ctx)
	if err != nil {
		return models.NewDatabaseError("begin create task", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO tasks (id, feature_id, project_id, title, summary, status, priority, complexity, search_vector, version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.FeatureID, t.ProjectID, t.Title, t.Summary, t.Status, string(t.Priority), t.Complexity, searchVector, t.Version,
	)
	if err != nil {
		return models.NewDatabaseError("create task", err)
	}
	if err := r.tags.Replace(ctx, tx, models.EntityTypeTask, t.ID, t.Tags); err != nil {
		return models.NewDatabaseError("save task tags", err)
	}
	if err := tx.Commit(); err != nil {
		return models.NewDatabaseError("commit create task", err)
	}
	return nil
}

// GetByID fetches a task by UUID.
func (r *TaskRepository) GetByID(ctx context.Context, id string) (*models.Task, error) {
	row := r.db.QueryRowContext(ctx, taskSelectColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, models.NewNotFoundError(string(models.EntityTypeTask), id)
	}
	if err != nil {
		return nil, models.NewDatabaseError("get task", err)
	}
	if err := r.attachTags(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// ListByFeature returns every task belonging to a feature.
func (r *TaskRepository) ListByFeature(ctx context.Context, featureID string) ([]*models.Task, error) {
	rows, err := r.db.QueryContext(ctx, taskSelectColumns+` FROM tasks WHERE feature_id = ? ORDER BY created_at`, featureID)
	if err != nil {
		return nil, models.NewDatabaseError("list tasks by feature", err)
	}
	return scanRows(rows, func(rows *sql.Rows) (*models.Task, error) { return scanTask(rows) })
}

// ListByProject returns every task directly attached to a project
// (FeatureID unset, ProjectID set). A task carrying both a FeatureID
// and a ProjectID is reached through its feature via ListByFeature
// instead, so callers that need a project's full task set (e.g. the
// completion cascade) must combine both without double-counting.
func (r *TaskRepository) ListByProject(ctx context.Context, projectID string) ([]*models.Task, error) {
	rows, err := r.db.QueryContext(ctx, taskSelectColumns+` FROM tasks WHERE project_id = ? AND feature_id IS NULL ORDER BY created_at`, projectID)
	if err != nil {
		return nil, models.NewDatabaseError("list tasks by project", err)
	}
	return scanRows(rows, func(rows *sql.Rows) (*models.Task, error) { return scanTask(rows) })
}

// List returns every task.
func (r *TaskRepository) List(ctx context.Context) ([]*models.Task, error) {
	rows, err := r.db.QueryContext(ctx, taskSelectColumns+` FROM tasks ORDER BY created_at`)
	if err != nil {
		return nil, models.NewDatabaseError("list tasks", err)
	}
	return scanRows(rows, func(rows *sql.Rows) (*models.Task, error) { return scanTask(rows) })
}

// FilterByStatus returns every task with the given status.
func (r *TaskRepository) FilterByStatus(ctx context.Context, status string) ([]*models.Task, error) {
	rows, err := r.db.QueryContext(ctx, taskSelectColumns+` FROM tasks WHERE status = ? ORDER BY created_at`, status)
	if err != nil {
		return nil, models.NewDatabaseError("filter tasks by status", err)
	}
	return scanRows(rows, func(rows *sql.Rows) (*models.Task, error) { return scanTask(rows) })
}

// FilterByStatuses returns every task whose status is in the given set,
// used by the recommendation engine to pull all tasks with a role's
// statuses in one query.
func (r *TaskRepository) FilterByStatuses(ctx context.Context, statuses []string) ([]*models.Task, error) {
	if len(statuses) == 0 {
		return []*models.Task{}, nil
	}
	placeholders := ""
	args := make([]any, len(statuses))
	for i, s := range statuses {
		if i > 0 {
			placeholders += ", "
		}
		placeholders += "?"
		args[i] = s
	}
	rows, err := r.db.QueryContext(ctx, taskSelectColumns+` FROM tasks WHERE status IN (`+placeholders+`) ORDER BY created_at`, args...)
	if err != nil {
		return nil, models.NewDatabaseError("filter tasks by statuses", err)
	}
	return scanRows(rows, func(rows *sql.Rows) (*models.Task, error) { return scanTask(rows) })
}

// TaskFilter narrows FindByFilters' result set. A zero-value field
// applies no constraint: empty slices/strings mean "don't filter on
// this", Limit<=0 means unbounded.
type TaskFilter struct {
	ProjectID    string
	FeatureID    string
	StatusIn     []string
	StatusNotIn  []string
	PriorityIn   []models.Priority
	Tags         []string
	MatchAllTags bool
	TextQuery    string
	Limit        int
}

// FindByFilters is the query_container/manage_task list surface's
// general-purpose filter: multi-value status include/exclude,
// ANY-or-ALL tag matching, whitespace-split AND-of-LIKE text search,
// ordered by most-recently-modified and capped at Limit.
func (r *TaskRepository) FindByFilters(ctx context.Context, f TaskFilter) ([]*models.Task, error) {
	query := taskSelectColumns + ` FROM tasks WHERE 1 = 1`
	var args []any

	if f.ProjectID != "" {
		query += ` AND project_id = ?`
		args = append(args, f.ProjectID)
	}
	if f.FeatureID != "" {
		query += ` AND feature_id = ?`
		args = append(args, f.FeatureID)
	}
	if len(f.StatusIn) > 0 {
		query += ` AND status IN (` + sqlPlaceholders(len(f.StatusIn)) + `)`
		args = append(args, stringsToAny(f.StatusIn)...)
	}
	if len(f.StatusNotIn) > 0 {
		query += ` AND status NOT IN (` + sqlPlaceholders(len(f.StatusNotIn)) + `)`
		args = append(args, stringsToAny(f.StatusNotIn)...)
	}
	if len(f.PriorityIn) > 0 {
		priorities := make([]string, len(f.PriorityIn))
		for i, p := range f.PriorityIn {
			priorities[i] = string(p)
		}
		query += ` AND priority IN (` + sqlPlaceholders(len(priorities)) + `)`
		args = append(args, stringsToAny(priorities)...)
	}
	if f.TextQuery != "" {
		clause, qargs := searchClause(f.TextQuery)
		if clause == "" {
			return []*models.Task{}, nil
		}
		query += ` AND ` + clause
		args = append(args, qargs...)
	}
	if len(f.Tags) > 0 {
		tagged, err := r.tags.FindByTags(ctx, f.Tags, f.MatchAllTags)
		if err != nil {
			return nil, models.NewDatabaseError("filter tasks by tags", err)
		}
		ids := make([]string, 0, len(tagged))
		for _, te := range tagged {
			if te.EntityType == models.EntityTypeTask {
				ids = append(ids, te.EntityID)
			}
		}
		if len(ids) == 0 {
			return []*models.Task{}, nil
		}
		query += ` AND id IN (` + sqlPlaceholders(len(ids)) + `)`
		args = append(args, stringsToAny(ids)...)
	}

	query += ` ORDER BY updated_at DESC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, models.NewDatabaseError("find tasks by filters", err)
	}
	return scanRows(rows, func(rows *sql.Rows) (*models.Task, error) { return scanTask(rows) })
}

// Search matches tasks whose search_vector contains every
// whitespace-separated term in query.
func (r *TaskRepository) Search(ctx context.Context, query string) ([]*models.Task, error) {
	clause, args := searchClause(query)
	if clause == "" {
		return []*models.Task{}, nil
	}
	rows, err := r.db.QueryContext(ctx, taskSelectColumns+` FROM tasks WHERE `+clause+` ORDER BY created_at`, args...)
	if err != nil {
		return nil, models.NewDatabaseError("search tasks", err)
	}
	return scanRows(rows, func(rows *sql.Rows) (*models.Task, error) { return scanTask(rows) })
}

// Update persists t's mutable fields under optimistic concurrency.
func (r *TaskRepository) Update(ctx context.Context, t *models.Task) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if err := r.checkParentConsistency(ctx, r.db, t); err != nil {
		return err
	}
	searchVector := BuildSearchVector(t.Tags, t.Title, t.Summary)
	expected := t.Version

	tx, err := r.db.BeginTxContext(ctx)
	if err != nil {
		return models.NewDatabaseError("begin update task", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `
		UPDATE tasks
		SET feature_id = ?, project_id = ?, title = ?, summary = ?, status = ?, priority = ?, complexity = ?, search_vector = ?, version = version + 1
		WHERE id = ? AND version = ?`,
		t.FeatureID, t.ProjectID, t.Title, t.Summary, t.Status, string(t.Priority), t.Complexity, searchVector, t.ID, expected,
	)
	if err != nil {
		return models.NewDatabaseError("update task", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return models.NewDatabaseError("update task rows affected", err)
	}
	if rows == 0 {
		return checkVersionConflict(ctx, tx, "tasks", models.EntityTypeTask, t.ID, expected)
	}
	if err := r.tags.Replace(ctx, tx, models.EntityTypeTask, t.ID, t.Tags); err != nil {
		return models.NewDatabaseError("save task tags", err)
	}
	if err := tx.Commit(); err != nil {
		return models.NewDatabaseError("commit update task", err)
	}
	t.Version = expected + 1
	return nil
}

// ApplyStatus updates only status and version inside an existing
// transaction, used by the status progression service so the status
// change and its role-transition record commit atomically.
func (r *TaskRepository) ApplyStatus(ctx context.Context, tx *sql.Tx, id string, newStatus string, expectedVersion int64) (int64, error) {
	result, err := tx.ExecContext(ctx,
		`UPDATE tasks SET status = ?, version = version + 1 WHERE id = ? AND version = ?`,
		newStatus, id, expectedVersion,
	)
	if err != nil {
		return 0, models.NewDatabaseError("apply task status", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, models.NewDatabaseError("apply task status rows affected", err)
	}
	if rows == 0 {
		return 0, checkVersionConflict(ctx, tx, "tasks", models.EntityTypeTask, id, expectedVersion)
	}
	return expectedVersion + 1, nil
}

// DeleteInTx removes a task, its tags, and (via ON DELETE CASCADE) its
// dependency edges, within a caller-managed transaction. It does not
// remove the task's sections. Used by the completion cascade.
func (r *TaskRepository) DeleteInTx(ctx context.Context, tx *sql.Tx, id string) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return models.NewDatabaseError("delete task", err)
	}
	_, err = tx.ExecContext(ctx, `DELETE FROM tags WHERE entity_type = ? AND entity_id = ?`, string(models.EntityTypeTask), id)
	if err != nil {
		return models.NewDatabaseError("delete task tags", err)
	}
	return nil
}

// checkParentConsistency enforces that when a task names both a Feature
// and a Project parent, the Feature actually belongs to that Project.
func (r *TaskRepository) checkParentConsistency(ctx context.Context, q querier, t *models.Task) error {
	if t.FeatureID == nil || t.ProjectID == nil {
		return nil
	}
	var featureProjectID *string
	err := q.QueryRowContext(ctx, `SELECT project_id FROM features WHERE id = ?`, *t.FeatureID).Scan(&featureProjectID)
	if err == sql.ErrNoRows {
		return models.NewNotFoundError(string(models.EntityTypeFeature), *t.FeatureID)
	}
	if err != nil {
		return models.NewDatabaseError("check task parent consistency", err)
	}
	if featureProjectID == nil || *featureProjectID != *t.ProjectID {
		return models.NewValidationError("project_id", "must match the feature's project")
	}
	return nil
}

func (r *TaskRepository) attachTags(ctx context.Context, t *models.Task) error {
	tags, err := r.tags.ListForEntity(ctx, models.EntityTypeTask, t.ID)
	if err != nil {
		return models.NewDatabaseError("load task tags", err)
	}
	t.Tags = tags
	return nil
}

const taskSelectColumns = `SELECT id, feature_id, project_id, title, summary, status, priority, complexity, version, created_at, updated_at`

func scanTask(row rowScanner) (*models.Task, error) {
	t := &models.Task{}
	var priority string
	err := row.Scan(&t.ID, &t.FeatureID, &t.ProjectID, &t.Title, &t.Summary, &t.Status, &priority, &t.Complexity, &t.Version, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.Priority = models.Priority(priority)
	return t, nil
}
