package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jwwelbor/shark-orchestrator/internal/models"
	"github.com/jwwelbor/shark-orchestrator/internal/slug"
)

// ProjectRepository handles CRUD and query operations for projects,
// with UUID ids and a version column for optimistic concurrency.
type ProjectRepository struct {
	db   *DB
	tags *TagRepository
}

// NewProjectRepository creates a ProjectRepository.
func NewProjectRepository(db *DB) *ProjectRepository {
	return &ProjectRepository{db: db, tags: NewTagRepository(db)}
}

// Create inserts a new project, assigning it a fresh ID and version 1.
func (r *ProjectRepository) Create(ctx context.Context, p *models.Project) error {
	if err := p.Validate(); err != nil {
		return err
	}
	p.ID = uuid.NewString()
	p.Version = 1
	if p.Key == "" {
		p.Key = slug.Generate(p.Name)
	}
	searchVector := BuildSearchVector(p.Tags, p.Name, p.Description, p.Summary)

	tx, err := r.db.BeginTxContext(ctx)
	if err != nil {
		return models.NewDatabaseError("begin create project", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO projects (id, key, name, description, summary, status, search_vector, version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Key, p.Name, p.Description, p.Summary, p.Status, searchVector, p.Version,
	)
	if err != nil {
		return models.NewDatabaseError("create project", err)
	}

	if err := r.tags.Replace(ctx, tx, models.EntityTypeProject, p.ID, p.Tags); err != nil {
		return models.NewDatabaseError("save project tags", err)
	}

	if err := tx.Commit(); err != nil {
		return models.NewDatabaseError("commit create project", err)
	}
	return nil
}

// GetByID fetches a project by its UUID.
func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*models.Project, error) {
	row := r.db.QueryRowContext(ctx, projectSelectColumns+` FROM projects WHERE id = ?`, id)
	p, err := scanProject(row)
	if err == sql.ErrNoRows {
		return nil, models.NewNotFoundError(string(models.EntityTypeProject), id)
	}
	if err != nil {
		return nil, models.NewDatabaseError("get project", err)
	}
	if err := r.attachTags(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// GetByKey fetches a project by its human-readable key.
func (r *ProjectRepository) GetByKey(ctx context.Context, key string) (*models.Project, error) {
	row := r.db.QueryRowContext(ctx, projectSelectColumns+` FROM projects WHERE key = ?`, key)
	p, err := scanProject(row)
	if err == sql.ErrNoRows {
		return nil, models.NewNotFoundError(string(models.EntityTypeProject), key)
	}
	if err != nil {
		return nil, models.NewDatabaseError("get project by key", err)
	}
	if err := r.attachTags(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// List returns every project ordered by creation time.
func (r *ProjectRepository) List(ctx context.Context) ([]*models.Project, error) {
	rows, err := r.db.QueryContext(ctx, projectSelectColumns+` FROM projects ORDER BY created_at`)
	if err != nil {
		return nil, models.NewDatabaseError("list projects", err)
	}
	projects, err := scanRows(rows, func(rows *sql.Rows) (*models.Project, error) { return scanProject(rows) })
	if err != nil {
		return nil, models.NewDatabaseError("list projects", err)
	}
	for _, p := range projects {
		if err := r.attachTags(ctx, p); err != nil {
			return nil, err
		}
	}
	return projects, nil
}

// FilterByStatus returns every project with the given status.
func (r *ProjectRepository) FilterByStatus(ctx context.Context, status string) ([]*models.Project, error) {
	rows, err := r.db.QueryContext(ctx, projectSelectColumns+` FROM projects WHERE status = ? ORDER BY created_at`, status)
	if err != nil {
		return nil, models.NewDatabaseError("filter projects by status", err)
	}
	return scanRows(rows, func(rows *sql.Rows) (*models.Project, error) { return scanProject(rows) })
}

// Search matches projects whose search_vector contains every
// whitespace-separated term in query (case-insensitive AND-of-LIKE). A
// purely-whitespace query matches nothing.
func (r *ProjectRepository) Search(ctx context.Context, query string) ([]*models.Project, error) {
	clause, args := searchClause(query)
	if clause == "" {
		return []*models.Project{}, nil
	}
	rows, err := r.db.QueryContext(ctx, projectSelectColumns+` FROM projects WHERE `+clause+` ORDER BY created_at`, args...)
	if err != nil {
		return nil, models.NewDatabaseError("search projects", err)
	}
	return scanRows(rows, func(rows *sql.Rows) (*models.Project, error) { return scanProject(rows) })
}

// Update persists p's mutable fields using optimistic concurrency: the
// WHERE clause requires p.Version to still match the stored version,
// and a zero-row result is resolved into NotFoundError or
// ConflictError by checkVersionConflict.
func (r *ProjectRepository) Update(ctx context.Context, p *models.Project) error {
	if err := p.Validate(); err != nil {
		return err
	}
	searchVector := BuildSearchVector(p.Tags, p.Name, p.Description, p.Summary)
	expected := p.Version

	tx, err := r.db.BeginTxContext(ctx)
	if err != nil {
		return models.NewDatabaseError("begin update project", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `
		UPDATE projects
		SET name = ?, description = ?, summary = ?, status = ?, search_vector = ?, version = version + 1
		WHERE id = ? AND version = ?`,
		p.Name, p.Description, p.Summary, p.Status, searchVector, p.ID, expected,
	)
	if err != nil {
		return models.NewDatabaseError("update project", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return models.NewDatabaseError("update project rows affected", err)
	}
	if rows == 0 {
		return checkVersionConflict(ctx, tx, "projects", models.EntityTypeProject, p.ID, expected)
	}

	if err := r.tags.Replace(ctx, tx, models.EntityTypeProject, p.ID, p.Tags); err != nil {
		return models.NewDatabaseError("save project tags", err)
	}

	if err := tx.Commit(); err != nil {
		return models.NewDatabaseError("commit update project", err)
	}
	p.Version = expected + 1
	return nil
}

// ApplyStatus updates only status and version inside an existing
// transaction, used by the status progression service when it also
// needs to append a role transition row atomically. Returns the new
// version on success.
func (r *ProjectRepository) ApplyStatus(ctx context.Context, tx *sql.Tx, id string, newStatus string, expectedVersion int64) (int64, error) {
	result, err := tx.ExecContext(ctx,
		`UPDATE projects SET status = ?, version = version + 1 WHERE id = ? AND version = ?`,
		newStatus, id, expectedVersion,
	)
	if err != nil {
		return 0, models.NewDatabaseError("apply project status", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, models.NewDatabaseError("apply project status rows affected", err)
	}
	if rows == 0 {
		return 0, checkVersionConflict(ctx, tx, "projects", models.EntityTypeProject, id, expectedVersion)
	}
	return expectedVersion + 1, nil
}

func (r *ProjectRepository) attachTags(ctx context.Context, p *models.Project) error {
	tags, err := r.tags.ListForEntity(ctx, models.EntityTypeProject, p.ID)
	if err != nil {
		return models.NewDatabaseError("load project tags", err)
	}
	p.Tags = tags
	return nil
}

const projectSelectColumns = `SELECT id, key, name, description, summary, status, version, created_at, updated_at`

func scanProject(row rowScanner) (*models.Project, error) {
	p := &models.Project{}
	err := row.Scan(&p.ID, &p.Key, &p.Name, &p.Description, &p.Summary, &p.Status, &p.Version, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}
