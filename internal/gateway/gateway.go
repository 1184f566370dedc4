// Package gateway translates content operations into document store and
// object store calls. Every write is a read-modify-write inside a single
// store transaction and is validated against the document's JSON schema
// before it is persisted.
package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/iudanet/portfolio/internal/models"
	"github.com/iudanet/portfolio/internal/server/storage"
	"github.com/iudanet/portfolio/internal/validation"
)

var (
	// ErrDuplicateID indicates that a row with the requested id already exists
	ErrDuplicateID = errors.New("row id already exists")

	// ErrInvalidOrder indicates that a reorder request is not a permutation
	// of the collection's row ids
	ErrInvalidOrder = errors.New("reorder ids must list every row exactly once")
)

// Singleton describes a single-document kind with record type T and patch type P.
type Singleton[T, P any] struct {
	Kind string
}

// Collection describes an ordered row kind with record type T and patch type P.
type Collection[T, P any] struct {
	Kind string
}

// Content kinds
var (
	Settings = Singleton[models.Settings, models.SettingsPatch]{Kind: models.KindSettings}
	Profile  = Singleton[models.Profile, models.ProfilePatch]{Kind: models.KindProfile}
	About    = Singleton[models.About, models.AboutPatch]{Kind: models.KindAbout}
	Contact  = Singleton[models.Contact, models.ContactPatch]{Kind: models.KindContact}

	Experience     = Collection[models.Experience, models.ExperiencePatch]{Kind: models.KindExperience}
	Projects       = Collection[models.Project, models.ProjectPatch]{Kind: models.KindProjects}
	Skills         = Collection[models.SkillCategory, models.SkillCategoryPatch]{Kind: models.KindSkills}
	Certifications = Collection[models.Certification, models.CertificationPatch]{Kind: models.KindCertifications}
	Education      = Collection[models.Education, models.EducationPatch]{Kind: models.KindEducation}
)

// Gateway is the single entry point to persisted content.
type Gateway struct {
	docs      storage.DocumentStore
	objects   storage.ObjectStore
	validator *validation.DocumentValidator
	logger    *slog.Logger
	now       func() time.Time
}

// New creates a gateway over the given stores
func New(logger *slog.Logger, docs storage.DocumentStore, objects storage.ObjectStore, validator *validation.DocumentValidator) *Gateway {
	return &Gateway{
		docs:      docs,
		objects:   objects,
		validator: validator,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// fields is a document decoded one level deep. Merging replaces whole
// top-level values, which is the shallow-merge contract of every update.
type fields map[string]json.RawMessage

func parseFields(data []byte) (fields, error) {
	f := make(fields)
	if len(data) == 0 {
		return f, nil
	}
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	if f == nil {
		f = make(fields)
	}
	return f, nil
}

// merge overlays the non-nil fields of patch
func (f fields) merge(patch any) error {
	data, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("failed to encode patch: %w", err)
	}
	var p fields
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("failed to decode patch: %w", err)
	}
	for k, v := range p {
		f[k] = v
	}
	return nil
}

func (f fields) set(key string, v any) {
	data, _ := json.Marshal(v) // strings, ints, bools and times only
	f[key] = data
}

func (f fields) has(key string) bool {
	_, ok := f[key]
	return ok
}

func (f fields) str(key string) string {
	var s string
	if raw, ok := f[key]; ok {
		_ = json.Unmarshal(raw, &s)
	}
	return s
}

// hasPublished reports whether documents of kind carry a published flag
func hasPublished(kind string) bool {
	return kind != models.KindSettings
}

// normalize applies field defaults. A document without published is
// visible, and a contact without contactFormEnabled shows its form.
func normalize(kind string, f fields) {
	if hasPublished(kind) && !f.has("published") {
		f.set("published", true)
	}
	if kind == models.KindContact && !f.has("contactFormEnabled") {
		f.set("contactFormEnabled", true)
	}
}

// decode turns stored JSON into a record, applying defaults first
func decode[T any](kind string, data []byte) (T, error) {
	var v T
	f, err := parseFields(data)
	if err != nil {
		return v, err
	}
	normalize(kind, f)
	raw, err := json.Marshal(f)
	if err != nil {
		return v, fmt.Errorf("failed to encode document: %w", err)
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("failed to decode %s document: %w", kind, err)
	}
	return v, nil
}

// encode validates the document and returns its JSON form
func (g *Gateway) encode(kind string, f fields) ([]byte, error) {
	normalize(kind, f)
	data, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	if err := g.validator.Validate(kind, data); err != nil {
		return nil, err
	}
	return data, nil
}

// fromRecord converts a typed record into fields
func fromRecord(v any) (fields, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}
	return parseFields(data)
}

func (g *Gateway) logError(msg, kind string, err error) {
	g.logger.Error(msg, slog.String("kind", kind), slog.Any("error", err))
}
