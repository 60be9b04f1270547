package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jwwelbor/shark-orchestrator/internal/models"
	"github.com/jwwelbor/shark-orchestrator/internal/slug"
)

// FeatureRepository handles CRUD and query operations for features,
// with an optional ProjectID parent and version-based optimistic
// concurrency.
type FeatureRepository struct {
	db   *DB
	tags *TagRepository
}

// NewFeatureRepository creates a FeatureRepository.
func NewFeatureRepository(db *DB) *FeatureRepository {
	return &FeatureRepository{db: db, tags: NewTagRepository(db)}
}

// Create inserts a new feature, defaulting Priority when the caller
// leaves it unset rather than forcing every caller to name it.
func (r *FeatureRepository) Create(ctx context.Context, f *models.Feature) error {
	if f.Priority == "" {
		f.Priority = models.PriorityMedium
	}
	if err := f.Validate(); err != nil {
		return err
	}
	f.ID = uuid.NewString()
	f.Version = 1
	if f.Key == "" {
		f.Key = slug.Generate(f.Name)
	}
	searchVector := BuildSearchVector(f.Tags, f.Name, f.Summary)

	tx, err := r.db.BeginTxContext(ctx)
	if err != nil {
		return models.NewDatabaseError("begin create feature", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO features (id, project_id, key, name, summary, status, priority, search_vector, version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.ProjectID, f.Key, f.Name, f.Summary, f.Status, string(f.Priority), searchVector, f.Version,
	)
	if err != nil {
		return models.NewDatabaseError("create feature", err)
	}
	if err := r.tags.Replace(ctx, tx, models.EntityTypeFeature, f.ID, f.Tags); err != nil {
		return models.NewDatabaseError("save feature tags", err)
	}
	if err := tx.Commit(); err != nil {
		return models.NewDatabaseError("commit create feature", err)
	}
	return nil
}

// GetByID fetches a feature by UUID.
func (r *FeatureRepository) GetByID(ctx context.Context, id string) (*models.Feature, error) {
	row := r.db.QueryRowContext(ctx, featureSelectColumns+` FROM features WHERE id = ?`, id)
	f, err := scanFeature(row)
	if err == sql.ErrNoRows {
		return nil, models.NewNotFoundError(string(models.EntityTypeFeature), id)
	}
	if err != nil {
		return nil, models.NewDatabaseError("get feature", err)
	}
	if err := r.attachTags(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

// GetByKey fetches a feature by its human-readable key.
func (r *FeatureRepository) GetByKey(ctx context.Context, key string) (*models.Feature, error) {
	row := r.db.QueryRowContext(ctx, featureSelectColumns+` FROM features WHERE key = ?`, key)
	f, err := scanFeature(row)
	if err == sql.ErrNoRows {
		return nil, models.NewNotFoundError(string(models.EntityTypeFeature), key)
	}
	if err != nil {
		return nil, models.NewDatabaseError("get feature by key", err)
	}
	if err := r.attachTags(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

// ListByProject returns every feature belonging to a project, ordered
// by creation time.
func (r *FeatureRepository) ListByProject(ctx context.Context, projectID string) ([]*models.Feature, error) {
	rows, err := r.db.QueryContext(ctx, featureSelectColumns+` FROM features WHERE project_id = ? ORDER BY created_at`, projectID)
	if err != nil {
		return nil, models.NewDatabaseError("list features by project", err)
	}
	return scanRows(rows, func(rows *sql.Rows) (*models.Feature, error) { return scanFeature(rows) })
}

// List returns every feature.
func (r *FeatureRepository) List(ctx context.Context) ([]*models.Feature, error) {
	rows, err := r.db.QueryContext(ctx, featureSelectColumns+` FROM features ORDER BY created_at`)
	if err != nil {
		return nil, models.NewDatabaseError("list features", err)
	}
	return scanRows(rows, func(rows *sql.Rows) (*models.Feature, error) { return scanFeature(rows) })
}

// FilterByStatus returns every feature with the given status.
func (r *FeatureRepository) FilterByStatus(ctx context.Context, status string) ([]*models.Feature, error) {
	rows, err := r.db.QueryContext(ctx, featureSelectColumns+` FROM features WHERE status = ? ORDER BY created_at`, status)
	if err != nil {
		return nil, models.NewDatabaseError("filter features by status", err)
	}
	return scanRows(rows, func(rows *sql.Rows) (*models.Feature, error) { return scanFeature(rows) })
}

// Search matches features whose search_vector contains every
// whitespace-separated term in query.
func (r *FeatureRepository) Search(ctx context.Context, query string) ([]*models.Feature, error) {
	clause, args := searchClause(query)
	if clause == "" {
		return []*models.Feature{}, nil
	}
	rows, err := r.db.QueryContext(ctx, featureSelectColumns+` FROM features WHERE `+clause+` ORDER BY created_at`, args...)
	if err != nil {
		return nil, models.NewDatabaseError("search features", err)
	}
	return scanRows(rows, func(rows *sql.Rows) (*models.Feature, error) { return scanFeature(rows) })
}

// Update persists f's mutable fields under optimistic concurrency.
func (r *FeatureRepository) Update(ctx context.Context, f *models.Feature) error {
	if err := f.Validate(); err != nil {
		return err
	}
	searchVector := BuildSearchVector(f.Tags, f.Name, f.Summary)
	expected := f.Version

	tx, err := r.db.BeginTxContext(ctx)
	if err != nil {
		return models.NewDatabaseError("begin update feature", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `
		UPDATE features
		SET project_id = ?, name = ?, summary = ?, status = ?, priority = ?, search_vector = ?, version = version + 1
		WHERE id = ? AND version = ?`,
		f.ProjectID, f.Name, f.Summary, f.Status, string(f.Priority), searchVector, f.ID, expected,
	)
	if err != nil {
		return models.NewDatabaseError("update feature", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return models.NewDatabaseError("update feature rows affected", err)
	}
	if rows == 0 {
		return checkVersionConflict(ctx, tx, "features", models.EntityTypeFeature, f.ID, expected)
	}
	if err := r.tags.Replace(ctx, tx, models.EntityTypeFeature, f.ID, f.Tags); err != nil {
		return models.NewDatabaseError("save feature tags", err)
	}
	if err := tx.Commit(); err != nil {
		return models.NewDatabaseError("commit update feature", err)
	}
	f.Version = expected + 1
	return nil
}

// ApplyStatus updates only status and version inside an existing
// transaction.
func (r *FeatureRepository) ApplyStatus(ctx context.Context, tx *sql.Tx, id string, newStatus string, expectedVersion int64) (int64, error) {
	result, err := tx.ExecContext(ctx,
		`UPDATE features SET status = ?, version = version + 1 WHERE id = ? AND version = ?`,
		newStatus, id, expectedVersion,
	)
	if err != nil {
		return 0, models.NewDatabaseError("apply feature status", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, models.NewDatabaseError("apply feature status rows affected", err)
	}
	if rows == 0 {
		return 0, checkVersionConflict(ctx, tx, "features", models.EntityTypeFeature, id, expectedVersion)
	}
	return expectedVersion + 1, nil
}

func (r *FeatureRepository) attachTags(ctx context.Context, f *models.Feature) error {
	tags, err := r.tags.ListForEntity(ctx, models.EntityTypeFeature, f.ID)
	if err != nil {
		return models.NewDatabaseError("load feature tags", err)
	}
	f.Tags = tags
	return nil
}

const featureSelectColumns = `SELECT id, project_id, key, name, summary, status, priority, version, created_at, updated_at`

func scanFeature(row rowScanner) (*models.Feature, error) {
	f := &models.Feature{}
	var priority string
	err := row.Scan(&f.ID, &f.ProjectID, &f.Key, &f.Name, &f.Summary, &f.Status, &priority, &f.Version, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	f.Priority = models.Priority(priority)
	return f, nil
}
