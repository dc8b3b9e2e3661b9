package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/webforge-app/webforge-backend/internal/content/domain"
	"github.com/webforge-app/webforge-backend/internal/content/query"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS projects (
	seq         BIGSERIAL UNIQUE,
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL CHECK (btrim(name) <> ''),
	owner_id    TEXT NOT NULL,
	status      TEXT NOT NULL DEFAULT 'draft' CHECK (status IN ('draft', 'published')),
	last_edited TIMESTAMPTZ NOT NULL,
	content     JSON, -- not JSONB: the text is returned as stored
	version     BIGINT NOT NULL DEFAULT 1
)`,
	`CREATE INDEX IF NOT EXISTS projects_owner_id_idx ON projects (owner_id)`,
	`CREATE TABLE IF NOT EXISTS templates (
	seq           BIGSERIAL UNIQUE,
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL CHECK (btrim(name) <> ''),
	description   TEXT NOT NULL DEFAULT '',
	category      TEXT NOT NULL DEFAULT '',
	preview_url   TEXT NOT NULL DEFAULT '',
	thumbnail_url TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
	`CREATE INDEX IF NOT EXISTS templates_category_idx ON templates (category)`,
}

const (
	projectColumns  = `id, name, owner_id, status, last_edited, content, version`
	templateColumns = `id, name, description, category, preview_url, thumbnail_url, created_at`
)

// PostgresStore keeps projects and templates in two tables. Ordering follows
// the seq column, i.e. insertion order.
type PostgresStore struct {
	db   *sql.DB
	pool *pgxpool.Pool
}

// NewPostgresStore wraps an existing database handle.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// OpenPostgresStore builds a store on top of a pgx pool. Close releases the pool.
func OpenPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: stdlib.OpenDBFromPool(pool), pool: pool}
}

// Migrate creates the tables and indexes if they do not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) Close() error {
	err := s.db.Close()
	if s.pool != nil {
		s.pool.Close()
	}
	return err
}

func (s *PostgresStore) InsertProject(ctx context.Context, p domain.Project) (*domain.Project, error) {
	const q = `
INSERT INTO projects (id, name, owner_id, status, last_edited, content, version)
VALUES ($1, $2, $3, $4, $5, $6::json, $7)
RETURNING ` + projectColumns + `;
`
	for i := 0; i < maxIDAttempts; i++ {
		id, err := domain.NewID(domain.ProjectIDPrefix)
		if err != nil {
			return nil, err
		}

		out, err := scanProject(s.db.QueryRowContext(ctx, q,
			id, p.Name, p.OwnerID, string(p.Status), p.LastEdited, jsonArg(p.Content), p.Version))
		if err == nil {
			return out, nil
		}

		// unique violation on id → retry
		if isUniqueViolation(err) {
			continue
		}
		return nil, fmt.Errorf("insert project: %w", err)
	}

	return nil, fmt.Errorf("failed to generate unique project id")
}

func (s *PostgresStore) FindProjects(ctx context.Context, f query.ProjectFilter) ([]domain.Project, error) {
	q := `SELECT ` + projectColumns + ` FROM projects`
	where, args := f.SQL(1)
	if where != "" {
		q += ` WHERE ` + where
	}
	q += ` ORDER BY seq;`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("find projects: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Project, 0, 16)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find projects: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) FindProjectByID(ctx context.Context, id string) (*domain.Project, error) {
	const q = `SELECT ` + projectColumns + ` FROM projects WHERE id = $1;`

	p, err := scanProject(s.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("project %q: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("find project: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) UpdateProject(ctx context.Context, p domain.Project, expectedVersion int64) (*domain.Project, error) {
	const q = `
UPDATE projects
SET name = $3, status = $4, content = $5::json,
    last_edited = GREATEST(last_edited, $6), version = version + 1
WHERE id = $1 AND owner_id = $2 AND ($7::bigint = 0 OR version = $7::bigint)
RETURNING ` + projectColumns + `;
`
	out, err := scanProject(s.db.QueryRowContext(ctx, q,
		p.ID, p.OwnerID, p.Name, string(p.Status), jsonArg(p.Content), p.LastEdited, expectedVersion))
	if err == nil {
		return out, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("update project: %w", err)
	}
	if expectedVersion == 0 {
		return nil, fmt.Errorf("project %q: %w", p.ID, domain.ErrNotFound)
	}

	// Distinguish a stale version from a vanished record.
	const existsQ = `SELECT EXISTS (SELECT 1 FROM projects WHERE id = $1 AND owner_id = $2);`
	var exists bool
	if err := s.db.QueryRowContext(ctx, existsQ, p.ID, p.OwnerID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("project %q: %w", p.ID, domain.ErrConflict)
	}
	return nil, fmt.Errorf("project %q: %w", p.ID, domain.ErrNotFound)
}

func (s *PostgresStore) DeleteProject(ctx context.Context, id, ownerID string) (bool, error) {
	const q = `DELETE FROM projects WHERE id = $1 AND owner_id = $2;`

	result, err := s.db.ExecContext(ctx, q, id, ownerID)
	if err != nil {
		return false, fmt.Errorf("delete project: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete project: %w", err)
	}
	return rowsAffected > 0, nil
}

func (s *PostgresStore) InsertTemplate(ctx context.Context, t domain.Template) (*domain.Template, error) {
	const q = `
INSERT INTO templates (id, name, description, category, preview_url, thumbnail_url, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + templateColumns + `;
`
	for i := 0; i < maxIDAttempts; i++ {
		id, err := domain.NewID(domain.TemplateIDPrefix)
		if err != nil {
			return nil, err
		}

		out, err := scanTemplate(s.db.QueryRowContext(ctx, q,
			id, t.Name, t.Description, t.Category, t.PreviewURL, t.ThumbnailURL, t.CreatedAt))
		if err == nil {
			return out, nil
		}

		if isUniqueViolation(err) {
			continue
		}
		return nil, fmt.Errorf("insert template: %w", err)
	}

	return nil, fmt.Errorf("failed to generate unique template id")
}

func (s *PostgresStore) FindTemplates(ctx context.Context, pred query.Predicate) ([]domain.Template, error) {
	q := `SELECT ` + templateColumns + ` FROM templates`
	where, args := pred.SQL(1)
	if where != "" {
		q += ` WHERE ` + where
	}
	q += ` ORDER BY seq;`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("find templates: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Template, 0, 16)
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find templates: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) FindTemplateByID(ctx context.Context, id string) (*domain.Template, error) {
	const q = `SELECT ` + templateColumns + ` FROM templates WHERE id = $1;`

	t, err := scanTemplate(s.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("template %q: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("find template: %w", err)
	}
	return t, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*domain.Project, error) {
	var (
		p       domain.Project
		status  string
		content []byte
	)
	if err := row.Scan(&p.ID, &p.Name, &p.OwnerID, &status, &p.LastEdited, &content, &p.Version); err != nil {
		return nil, err
	}
	p.Status = domain.Status(status)
	p.LastEdited = p.LastEdited.UTC()
	if content != nil {
		p.Content = json.RawMessage(content)
	}
	return &p, nil
}

func scanTemplate(row rowScanner) (*domain.Template, error) {
	var t domain.Template
	if err := row.Scan(&t.ID, &t.Name, &t.Description, &t.Category, &t.PreviewURL, &t.ThumbnailURL, &t.CreatedAt); err != nil {
		return nil, err
	}
	t.CreatedAt = t.CreatedAt.UTC()
	return &t, nil
}

// jsonArg maps absent content to SQL NULL.
func jsonArg(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
