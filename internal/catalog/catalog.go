// Package catalog loads template catalogs from YAML and seeds them into the
// content service.
package catalog

import (
	"bytes"
	"context"
	"errors"
	_ "embed"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/webforge-app/webforge-backend/internal/auth"
	"github.com/webforge-app/webforge-backend/internal/content/domain"
	"github.com/webforge-app/webforge-backend/internal/content/query"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// File is the on-disk catalog layout.
type File struct {
	Templates []domain.TemplateInput `yaml:"templates"`
}

// Default returns the built-in template gallery.
func Default() ([]domain.TemplateInput, error) {
	return Load(bytes.NewReader(defaultCatalog))
}

// LoadFile reads a catalog from path.
func LoadFile(path string) ([]domain.TemplateInput, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load decodes a catalog. Unknown keys are rejected.
func Load(r io.Reader) ([]domain.TemplateInput, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file File
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return file.Templates, nil
}

// TemplateService is the part of the content service seeding needs.
type TemplateService interface {
	ListTemplates(ctx context.Context, f query.TemplateFilter) ([]domain.Template, error)
	CreateTemplate(ctx context.Context, principal auth.Principal, in domain.TemplateInput) (*domain.Template, error)
}

// Result summarises a seeding run.
type Result struct {
	Created int
	Skipped int
}

// Seed creates every template in items that is not already present with the
// same name and category. It stops at the first failure.
func Seed(ctx context.Context, svc TemplateService, principal auth.Principal, items []domain.TemplateInput, logger *zap.Logger) (Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var res Result
	for _, in := range items {
		existing, err := svc.ListTemplates(ctx, query.TemplateFilter{Category: in.Category})
		if err != nil {
			return res, fmt.Errorf("list %q: %w", in.Category, err)
		}
		if containsName(existing, in) {
			res.Skipped++
			logger.Debug("template already present", zap.String("name", in.Name), zap.String("category", in.Category))
			continue
		}

		t, err := svc.CreateTemplate(ctx, principal, in)
		if err != nil {
			return res, fmt.Errorf("create %q: %w", in.Name, err)
		}
		res.Created++
		logger.Info("template created", zap.String("id", t.ID), zap.String("name", t.Name))
	}
	return res, nil
}

func containsName(ts []domain.Template, in domain.TemplateInput) bool {
	for _, t := range ts {
		if t.Name == in.Name && t.Category == in.Category {
			return true
		}
	}
	return false
}
