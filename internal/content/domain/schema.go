package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	// Report JSON field names so errors match what the client sent.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ProjectInput holds the client-suppliable fields for project creation.
type ProjectInput struct {
	Name    string          `json:"name" validate:"notblank"`
	Status  Status          `json:"status" validate:"omitempty,oneof=draft published"`
	Content json.RawMessage `json:"content"`
}

// ProjectPatch holds the subset of mutable project fields supplied on update.
// Nil fields are left unchanged. Version, when set, must match the stored version.
type ProjectPatch struct {
	Name    *string         `json:"name" validate:"omitnil,notblank"`
	Status  *Status         `json:"status" validate:"omitnil,oneof=draft published"`
	Content json.RawMessage `json:"content"`
	Version *int64          `json:"version" validate:"omitnil,gte=1"`
}

// TemplateInput holds the fields accepted when creating a catalog template.
type TemplateInput struct {
	Name         string `json:"name" yaml:"name" validate:"notblank"`
	Description  string `json:"description" yaml:"description"`
	Category     string `json:"category" yaml:"category"`
	PreviewURL   string `json:"previewUrl" yaml:"previewUrl"`
	ThumbnailURL string `json:"thumbnailUrl" yaml:"thumbnailUrl"`
}

// NewProject validates in and builds a project owned by ownerID.
// The ID is left empty; the store assigns it on insert.
func NewProject(ownerID string, in ProjectInput, now time.Time) (Project, error) {
	if err := validate.Struct(in); err != nil {
		return Project{}, toValidationError(err)
	}
	if err := validateContent(in.Content); err != nil {
		return Project{}, err
	}

	status := in.Status
	if status == "" {
		status = StatusDraft
	}

	return Project{
		Name:       in.Name,
		OwnerID:    ownerID,
		Status:     status,
		LastEdited: now,
		Content:    in.Content,
		Version:    1,
	}, nil
}

// Validate checks the supplied subset of fields.
func (p ProjectPatch) Validate() error {
	if err := validate.Struct(p); err != nil {
		return toValidationError(err)
	}
	return validateContent(p.Content)
}

// Apply returns cur with the patch applied. LastEdited is refreshed to now but
// never moves backwards, and the version is bumped.
func (p ProjectPatch) Apply(cur Project, now time.Time) Project {
	next := cur
	if p.Name != nil {
		next.Name = *p.Name
	}
	if p.Status != nil {
		next.Status = *p.Status
	}
	if p.Content != nil {
		next.Content = p.Content
	}
	next.LastEdited = now
	if now.Before(cur.LastEdited) {
		next.LastEdited = cur.LastEdited
	}
	next.Version = cur.Version + 1
	return next
}

// NewTemplate validates in and builds a template. Optional text fields
// default to the empty string.
func NewTemplate(in TemplateInput, now time.Time) (Template, error) {
	if err := validate.Struct(in); err != nil {
		return Template{}, toValidationError(err)
	}
	return Template{
		Name:         in.Name,
		Description:  in.Description,
		Category:     in.Category,
		PreviewURL:   in.PreviewURL,
		ThumbnailURL: in.ThumbnailURL,
		CreatedAt:    now,
	}, nil
}

func validateContent(raw json.RawMessage) error {
	if raw == nil {
		return nil
	}
	if !json.Valid(raw) {
		return &ValidationError{Field: "content", Message: "must be valid JSON"}
	}
	return nil
}

func toValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ValidationError{Message: err.Error()}
	}

	fe := verrs[0]
	var msg string
	switch fe.Tag() {
	case "notblank", "required":
		msg = "is required"
	case "oneof":
		msg = fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gte":
		msg = fmt.Sprintf("must be at least %s", fe.Param())
	default:
		msg = fmt.Sprintf("failed %q check", fe.Tag())
	}
	return &ValidationError{Field: fe.Field(), Message: msg}
}
