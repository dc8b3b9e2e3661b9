// Package repository holds the document store drivers for projects and templates.
package repository

import (
	"context"

	"github.com/webforge-app/webforge-backend/internal/content/domain"
	"github.com/webforge-app/webforge-backend/internal/content/query"
)

// maxIDAttempts bounds retries when a generated ID collides with an existing one.
const maxIDAttempts = 5

// ProjectStore persists projects.
type ProjectStore interface {
	// InsertProject assigns an ID and stores p.
	InsertProject(ctx context.Context, p domain.Project) (*domain.Project, error)
	// FindProjects returns the projects matching f in insertion order.
	FindProjects(ctx context.Context, f query.ProjectFilter) ([]domain.Project, error)
	// FindProjectByID returns domain.ErrNotFound when id is absent.
	FindProjectByID(ctx context.Context, id string) (*domain.Project, error)
	// UpdateProject writes the mutable fields of p for the record owned by p.OwnerID.
	// expectedVersion 0 means last-write-wins; otherwise a stale version yields
	// domain.ErrConflict. The stored version is incremented and lastEdited never decreases.
	UpdateProject(ctx context.Context, p domain.Project, expectedVersion int64) (*domain.Project, error)
	// DeleteProject removes the project if it exists and is owned by ownerID.
	DeleteProject(ctx context.Context, id, ownerID string) (bool, error)
}

// TemplateStore persists catalog templates.
type TemplateStore interface {
	InsertTemplate(ctx context.Context, t domain.Template) (*domain.Template, error)
	// FindTemplates returns the templates matching pred in insertion order.
	FindTemplates(ctx context.Context, pred query.Predicate) ([]domain.Template, error)
	FindTemplateByID(ctx context.Context, id string) (*domain.Template, error)
}

// Store is the document store handle shared by the whole process.
type Store interface {
	ProjectStore
	TemplateStore
	Ping(ctx context.Context) error
	Close() error
}
