package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jwwelbor/shark-orchestrator/internal/models"
)

// SectionRepository manages the content sections attached to projects,
// features, and tasks, stored in a single polymorphic table that
// carries the content inline rather than pointing at an external file.
type SectionRepository struct {
	db *DB
}

// NewSectionRepository creates a SectionRepository.
func NewSectionRepository(db *DB) *SectionRepository {
	return &SectionRepository{db: db}
}

// Create inserts a new section. The (entity_type, entity_id, ordinal)
// unique constraint enforces ordinal uniqueness per parent entity; a
// violation surfaces as a DatabaseError wrapping the driver's
// constraint-violation error, since SQLite doesn't give the caller a
// typed conflict to branch on.
func (r *SectionRepository) Create(ctx context.Context, s *models.Section) error {
	if err := s.Validate(); err != nil {
		return err
	}
	s.ID = uuid.NewString()
	s.Version = 1

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sections (id, entity_type, entity_id, title, usage_description, content, content_format, ordinal, version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, string(s.EntityType), s.EntityID, s.Title, s.UsageDescription, s.Content, string(s.ContentFormat), s.Ordinal, s.Version,
	)
	if err != nil {
		return models.NewDatabaseError("create section", err)
	}
	return nil
}

// GetByID fetches a section by UUID.
func (r *SectionRepository) GetByID(ctx context.Context, id string) (*models.Section, error) {
	row := r.db.QueryRowContext(ctx, sectionSelectColumns+` FROM sections WHERE id = ?`, id)
	s, err := scanSection(row)
	if err == sql.ErrNoRows {
		return nil, models.NewNotFoundError("section", id)
	}
	if err != nil {
		return nil, models.NewDatabaseError("get section", err)
	}
	return s, nil
}

// ListForEntity returns every section attached to an entity, ordered by
// ordinal.
func (r *SectionRepository) ListForEntity(ctx context.Context, entityType models.EntityType, entityID string) ([]*models.Section, error) {
	rows, err := r.db.QueryContext(ctx,
		sectionSelectColumns+` FROM sections WHERE entity_type = ? AND entity_id = ? ORDER BY ordinal`,
		string(entityType), entityID,
	)
	if err != nil {
		return nil, models.NewDatabaseError("list sections", err)
	}
	return scanRows(rows, func(rows *sql.Rows) (*models.Section, error) { return scanSection(rows) })
}

// Update persists a section's mutable fields under optimistic
// concurrency.
func (r *SectionRepository) Update(ctx context.Context, s *models.Section) error {
	if err := s.Validate(); err != nil {
		return err
	}
	expected := s.Version

	result, err := r.db.ExecContext(ctx, `
		UPDATE sections
		SET title = ?, usage_description = ?, content = ?, content_format = ?, ordinal = ?, version = version + 1
		WHERE id = ? AND version = ?`,
		s.Title, s.UsageDescription, s.Content, string(s.ContentFormat), s.Ordinal, s.ID, expected,
	)
	if err != nil {
		return models.NewDatabaseError("update section", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return models.NewDatabaseError("update section rows affected", err)
	}
	if rows == 0 {
		return checkVersionConflict(ctx, r.db, "sections", "section", s.ID, expected)
	}
	s.Version = expected + 1
	return nil
}

// Delete removes a section.
func (r *SectionRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sections WHERE id = ?`, id)
	if err != nil {
		return models.NewDatabaseError("delete section", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return models.NewDatabaseError("delete section rows affected", err)
	}
	if rows == 0 {
		return models.NewNotFoundError("section", id)
	}
	return nil
}

// DeleteForEntityInTx removes every section belonging to an entity
// within a caller-managed transaction. Used by the completion cascade.
func (r *SectionRepository) DeleteForEntityInTx(ctx context.Context, tx *sql.Tx, entityType models.EntityType, entityID string) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM sections WHERE entity_type = ? AND entity_id = ?`, string(entityType), entityID)
	if err != nil {
		return models.NewDatabaseError("delete sections for entity", err)
	}
	return nil
}

const sectionSelectColumns = `SELECT id, entity_type, entity_id, title, usage_description, content, content_format, ordinal, version, created_at, updated_at`

func scanSection(row rowScanner) (*models.Section, error) {
	s := &models.Section{}
	var entityType, contentFormat string
	err := row.Scan(&s.ID, &entityType, &s.EntityID, &s.Title, &s.UsageDescription, &s.Content, &contentFormat, &s.Ordinal, &s.Version, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	s.EntityType = models.EntityType(entityType)
	s.ContentFormat = models.ContentFormat(contentFormat)
	return s, nil
}
