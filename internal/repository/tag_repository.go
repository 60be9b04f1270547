package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/jwwelbor/shark-orchestrator/internal/models"
)

// TagRepository manages the polymorphic tags table shared by projects,
// features, and tasks: one (entity_type, entity_id) keyed table instead
// of a separate join table per parent type.
type TagRepository struct {
	db *DB
}

// NewTagRepository creates a TagRepository.
func NewTagRepository(db *DB) *TagRepository {
	return &TagRepository{db: db}
}

// Replace overwrites the full tag set for an entity within tx (or
// directly against db when tx is nil), normalizing to a sorted,
// de-duplicated, lower-cased set so repeated saves are idempotent.
func (r *TagRepository) Replace(ctx context.Context, q querier, entityType models.EntityType, entityID string, tags []string) error {
	if q == nil {
		q = r.db
	}

	if _, err := q.ExecContext(ctx,
		`DELETE FROM tags WHERE entity_type = ? AND entity_id = ?`, string(entityType), entityID,
	); err != nil {
		return fmt.Errorf("clear tags: %w", err)
	}

	for _, tag := range normalizeTags(tags) {
		if _, err := q.ExecContext(ctx,
			`INSERT INTO tags (entity_type, entity_id, tag) VALUES (?, ?, ?)`,
			string(entityType), entityID, tag,
		); err != nil {
			return fmt.Errorf("insert tag %q: %w", tag, err)
		}
	}
	return nil
}

// ListForEntity returns the sorted tag set for a single entity.
func (r *TagRepository) ListForEntity(ctx context.Context, entityType models.EntityType, entityID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT tag FROM tags WHERE entity_type = ? AND entity_id = ? ORDER BY tag`,
		string(entityType), entityID,
	)
	if err != nil {
		return nil, fmt.Errorf("query tags: %w", err)
	}
	return scanRows(rows, func(rows *sql.Rows) (string, error) {
		var tag string
		err := rows.Scan(&tag)
		return tag, err
	})
}

// HasAnyTag reports whether entityID carries at least one tag from the
// given case-insensitive candidate set. Used by the completion cascade's
// retention check.
func (r *TagRepository) HasAnyTag(ctx context.Context, entityType models.EntityType, entityID string, candidates []string) (bool, error) {
	if len(candidates) == 0 {
		return false, nil
	}
	tags, err := r.ListForEntity(ctx, entityType, entityID)
	if err != nil {
		return false, err
	}
	wanted := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		wanted[strings.ToLower(strings.TrimSpace(c))] = struct{}{}
	}
	for _, tag := range tags {
		if _, ok := wanted[tag]; ok {
			return true, nil
		}
	}
	return false, nil
}

// FindByTag returns every (entityType, entityID) pair carrying the
// given tag, case-insensitively.
func (r *TagRepository) FindByTag(ctx context.Context, tag string) ([]TaggedEntity, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT entity_type, entity_id FROM tags WHERE tag = ? ORDER BY entity_type, entity_id`,
		strings.ToLower(strings.TrimSpace(tag)),
	)
	if err != nil {
		return nil, fmt.Errorf("find by tag: %w", err)
	}
	return scanRows(rows, func(rows *sql.Rows) (TaggedEntity, error) {
		var te TaggedEntity
		var entityType string
		err := rows.Scan(&entityType, &te.EntityID)
		te.EntityType = models.EntityType(entityType)
		return te, err
	})
}

// FindByTags returns every (entityType, entityID) pair carrying at
// least one of the given tags (matchAll=false) or all of them
// (matchAll=true).
func (r *TagRepository) FindByTags(ctx context.Context, tags []string, matchAll bool) ([]TaggedEntity, error) {
	wanted := normalizeTags(tags)
	if len(wanted) == 0 {
		return nil, nil
	}

	args := stringsToAny(wanted)

	query := fmt.Sprintf(`SELECT entity_type, entity_id, COUNT(DISTINCT tag) AS matches
		FROM tags WHERE tag IN (%s) GROUP BY entity_type, entity_id`, sqlPlaceholders(len(wanted)))
	if matchAll {
		query += fmt.Sprintf(` HAVING matches = %d`, len(wanted))
	}
	query += ` ORDER BY entity_type, entity_id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find by tags: %w", err)
	}
	return scanRows(rows, func(rows *sql.Rows) (TaggedEntity, error) {
		var te TaggedEntity
		var entityType string
		var matches int
		err := rows.Scan(&entityType, &te.EntityID, &matches)
		te.EntityType = models.EntityType(entityType)
		return te, err
	})
}

// GetAllTags returns every distinct tag in use, sorted.
func (r *TagRepository) GetAllTags(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT tag FROM tags ORDER BY tag`)
	if err != nil {
		return nil, fmt.Errorf("get all tags: %w", err)
	}
	return scanRows(rows, func(rows *sql.Rows) (string, error) {
		var tag string
		err := rows.Scan(&tag)
		return tag, err
	})
}

// CountByTag returns how many entities carry the given tag.
func (r *TagRepository) CountByTag(ctx context.Context, tag string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tags WHERE tag = ?`, strings.ToLower(strings.TrimSpace(tag))).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count by tag: %w", err)
	}
	return count, nil
}

// TaggedEntity identifies one entity carrying a tag being queried for.
type TaggedEntity struct {
	EntityType models.EntityType
	EntityID   string
}

func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// BuildSearchVector lowercases and concatenates a set of text fields
// with an entity's tags into the single denormalized column the search
// component matches with whitespace-split AND-of-LIKE semantics
// (deliberately not an FTS5 virtual table: the field set here is small
// and dynamic enough that a plain LIKE scan is simpler to keep correct).
func BuildSearchVector(tags []string, fields ...string) string {
	parts := make([]string, 0, len(fields)+1)
	for _, f := range fields {
		if f != "" {
			parts = append(parts, strings.ToLower(f))
		}
	}
	if len(tags) > 0 {
		parts = append(parts, strings.ToLower(strings.Join(tags, " ")))
	}
	return strings.Join(parts, " ")
}
