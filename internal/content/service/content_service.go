// Package service orchestrates project and template operations on top of a
// document store.
package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/webforge-app/webforge-backend/internal/auth"
	"github.com/webforge-app/webforge-backend/internal/content/domain"
	"github.com/webforge-app/webforge-backend/internal/content/query"
	"github.com/webforge-app/webforge-backend/internal/content/repository"
	"github.com/webforge-app/webforge-backend/internal/logging"
)

const (
	entityProject  = "project"
	entityTemplate = "template"
)

// Store is the persistence the service depends on.
type Store interface {
	repository.ProjectStore
	repository.TemplateStore
}

// Options configures a ContentService. Zero values are usable.
type Options struct {
	// TemplatesRequireAdmin restricts template creation to admin principals.
	TemplatesRequireAdmin bool
	Logger                *zap.Logger
	Metrics               *Metrics
	// Now overrides the clock, mostly for tests.
	Now func() time.Time
}

// ContentService handles project and template business logic
type ContentService struct {
	store                 Store
	logger                *zap.Logger
	metrics               *Metrics
	now                   func() time.Time
	templatesRequireAdmin bool
}

// New creates a content service backed by store.
func New(store Store, opts Options) *ContentService {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &ContentService{
		store:                 store,
		logger:                logger.Named("content"),
		metrics:               opts.Metrics,
		now:                   now,
		templatesRequireAdmin: opts.TemplatesRequireAdmin,
	}
}

// ListProjects returns every project matching f in insertion order.
func (s *ContentService) ListProjects(ctx context.Context, f query.ProjectFilter) (out []domain.Project, err error) {
	defer s.track(ctx, entityProject, "list", time.Now(), &err)

	out, err = s.store.FindProjects(ctx, f)
	if err != nil {
		return nil, storeError("list projects", err)
	}
	return out, nil
}

// CreateProject validates in and persists a new project owned by principal.
func (s *ContentService) CreateProject(ctx context.Context, principal auth.Principal, in domain.ProjectInput) (out *domain.Project, err error) {
	defer s.track(ctx, entityProject, "create", time.Now(), &err)

	if !principal.IsAuthenticated() {
		return nil, domain.ErrAuthenticationRequired
	}
	p, err := domain.NewProject(principal.ID, in, s.clock())
	if err != nil {
		return nil, err
	}

	out, err = s.store.InsertProject(ctx, p)
	if err != nil {
		return nil, storeError("create project", err)
	}
	return out, nil
}

// GetProject returns the project with the given id.
func (s *ContentService) GetProject(ctx context.Context, id string) (out *domain.Project, err error) {
	defer s.track(ctx, entityProject, "get", time.Now(), &err)

	if id == "" {
		return nil, &domain.ValidationError{Field: "_id", Message: "is required"}
	}
	out, err = s.store.FindProjectByID(ctx, id)
	if err != nil {
		return nil, storeError("get project", err)
	}
	return out, nil
}

// UpdateProject applies patch to the project id owned by principal.
//
// Projects owned by someone else are reported as not found. When the patch
// carries a version it must match the stored one, otherwise the write is
// rejected with domain.ErrConflict.
func (s *ContentService) UpdateProject(ctx context.Context, principal auth.Principal, id string, patch domain.ProjectPatch) (out *domain.Project, err error) {
	defer s.track(ctx, entityProject, "update", time.Now(), &err)

	if !principal.IsAuthenticated() {
		return nil, domain.ErrAuthenticationRequired
	}
	if id == "" {
		return nil, &domain.ValidationError{Field: "_id", Message: "is required"}
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	cur, err := s.store.FindProjectByID(ctx, id)
	if err != nil {
		return nil, storeError("update project", err)
	}
	if cur.OwnerID != principal.ID {
		return nil, domain.ErrNotFound
	}

	var expected int64
	if patch.Version != nil {
		expected = *patch.Version
		if expected != cur.Version {
			return nil, domain.ErrConflict
		}
	}

	next := patch.Apply(*cur, s.clock())
	out, err = s.store.UpdateProject(ctx, next, expected)
	if err != nil {
		return nil, storeError("update project", err)
	}
	return out, nil
}

// DeleteProject removes the project id if principal owns it. Deleting an
// absent or foreign project is a successful no-op.
func (s *ContentService) DeleteProject(ctx context.Context, principal auth.Principal, id string) (err error) {
	defer s.track(ctx, entityProject, "delete", time.Now(), &err)

	if !principal.IsAuthenticated() {
		return domain.ErrAuthenticationRequired
	}
	if id == "" {
		return &domain.ValidationError{Field: "_id", Message: "is required"}
	}

	deleted, err := s.store.DeleteProject(ctx, id, principal.ID)
	if err != nil {
		return storeError("delete project", err)
	}
	if !deleted {
		logging.FromContext(ctx, s.logger).Debug("delete was a no-op", zap.String("project_id", id))
	}
	return nil
}

// ListTemplates returns the catalog templates matching f.
func (s *ContentService) ListTemplates(ctx context.Context, f query.TemplateFilter) (out []domain.Template, err error) {
	defer s.track(ctx, entityTemplate, "list", time.Now(), &err)

	out, err = s.store.FindTemplates(ctx, query.Build(f))
	if err != nil {
		return nil, storeError("list templates", err)
	}
	return out, nil
}

// CreateTemplate adds a template to the catalog.
func (s *ContentService) CreateTemplate(ctx context.Context, principal auth.Principal, in domain.TemplateInput) (out *domain.Template, err error) {
	defer s.track(ctx, entityTemplate, "create", time.Now(), &err)

	if !principal.IsAuthenticated() {
		return nil, domain.ErrAuthenticationRequired
	}
	if s.templatesRequireAdmin && !principal.Admin {
		return nil, domain.ErrForbidden
	}
	t, err := domain.NewTemplate(in, s.clock())
	if err != nil {
		return nil, err
	}

	out, err = s.store.InsertTemplate(ctx, t)
	if err != nil {
		return nil, storeError("create template", err)
	}
	return out, nil
}

// GetTemplate returns the template with the given id.
func (s *ContentService) GetTemplate(ctx context.Context, id string) (out *domain.Template, err error) {
	defer s.track(ctx, entityTemplate, "get", time.Now(), &err)

	if id == "" {
		return nil, &domain.ValidationError{Field: "_id", Message: "is required"}
	}
	out, err = s.store.FindTemplateByID(ctx, id)
	if err != nil {
		return nil, storeError("get template", err)
	}
	return out, nil
}

// clock returns the current time in UTC at the precision every store keeps.
func (s *ContentService) clock() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// track logs the outcome of an operation and records its metrics.
func (s *ContentService) track(ctx context.Context, entity, op string, start time.Time, errp *error) {
	var err error
	if errp != nil {
		err = *errp
	}
	result := classify(err)
	s.metrics.observe(entity, op, result, time.Since(start).Seconds())

	log := logging.FromContext(ctx, s.logger).With(
		zap.String("entity", entity),
		zap.String("operation", op),
		zap.String("result", result),
	)
	switch result {
	case resultOK:
		log.Debug("operation completed")
	case resultStoreError:
		log.Error("operation failed", zap.Error(err))
	default:
		log.Warn("operation rejected", zap.Error(err))
	}
}

func classify(err error) string {
	switch {
	case err == nil:
		return resultOK
	case domain.IsValidation(err):
		return resultValidation
	case errors.Is(err, domain.ErrAuthenticationRequired):
		return resultUnauthenticated
	case errors.Is(err, domain.ErrForbidden):
		return resultForbidden
	case errors.Is(err, domain.ErrNotFound):
		return resultNotFound
	case errors.Is(err, domain.ErrConflict):
		return resultConflict
	default:
		return resultStoreError
	}
}

// storeError passes domain outcomes through and wraps everything else.
func storeError(op string, err error) error {
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrConflict) || domain.IsStore(err) {
		return err
	}
	return &domain.StoreError{Op: op, Err: err}
}
