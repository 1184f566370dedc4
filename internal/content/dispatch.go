package content

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/iudanet/portfolio/internal/models"
)

var (
	// ErrUnknownKind indicates a kind name that is neither a singleton nor a collection
	ErrUnknownKind = errors.New("unknown content kind")

	// ErrInvalidPayload indicates a request body that does not decode into the kind's patch
	ErrInvalidPayload = errors.New("invalid payload")
)

// decodePatch decodes a JSON patch, rejecting unknown fields
func decodePatch[P any](data []byte) (P, error) {
	var p P
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return p, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return p, fmt.Errorf("%w: trailing data after JSON object", ErrInvalidPayload)
	}
	return p, nil
}

// Section returns the part of p stored under kind
func Section(p models.Portfolio, kind string) (any, error) {
	switch kind {
	case models.KindSettings:
		return p.Settings, nil
	case models.KindProfile:
		return p.Profile, nil
	case models.KindAbout:
		return p.About, nil
	case models.KindContact:
		return p.Contact, nil
	case models.KindExperience:
		return p.Experience, nil
	case models.KindProjects:
		return p.Projects, nil
	case models.KindSkills:
		return p.Skills, nil
	case models.KindCertifications:
		return p.Certifications, nil
	case models.KindEducation:
		return p.Education, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// ApplySingletonPatch decodes payload as the patch type of kind and
// applies it
func (s *Service) ApplySingletonPatch(ctx context.Context, kind string, payload []byte) (any, error) {
	switch kind {
	case models.KindSettings:
		return applyJSON(payload, func(p models.SettingsPatch) (models.Settings, error) { return s.UpdateSettings(ctx, p) })
	case models.KindProfile:
		return applyJSON(payload, func(p models.ProfilePatch) (models.Profile, error) { return s.UpdateProfile(ctx, p) })
	case models.KindAbout:
		return applyJSON(payload, func(p models.AboutPatch) (models.About, error) { return s.UpdateAbout(ctx, p) })
	case models.KindContact:
		return applyJSON(payload, func(p models.ContactPatch) (models.Contact, error) { return s.UpdateContact(ctx, p) })
	default:
		return nil, fmt.Errorf("%w: %q is not a singleton", ErrUnknownKind, kind)
	}
}

// AddRowJSON decodes payload as a row patch of kind and adds the row
func (s *Service) AddRowJSON(ctx context.Context, kind string, payload []byte) (any, error) {
	switch kind {
	case models.KindExperience:
		return applyJSON(payload, func(p models.ExperiencePatch) (models.Experience, error) { return s.AddExperience(ctx, p) })
	case models.KindProjects:
		return applyJSON(payload, func(p models.ProjectPatch) (models.Project, error) { return s.AddProject(ctx, p) })
	case models.KindSkills:
		return applyJSON(payload, func(p models.SkillCategoryPatch) (models.SkillCategory, error) { return s.AddSkillCategory(ctx, p) })
	case models.KindCertifications:
		return applyJSON(payload, func(p models.CertificationPatch) (models.Certification, error) { return s.AddCertification(ctx, p) })
	case models.KindEducation:
		return applyJSON(payload, func(p models.EducationPatch) (models.Education, error) { return s.AddEducation(ctx, p) })
	default:
		return nil, fmt.Errorf("%w: %q is not a collection", ErrUnknownKind, kind)
	}
}

// UpdateRowJSON decodes payload as a row patch of kind and applies it to
// the row with id
func (s *Service) UpdateRowJSON(ctx context.Context, kind, id string, payload []byte) (any, error) {
	switch kind {
	case models.KindExperience:
		return applyJSON(payload, func(p models.ExperiencePatch) (models.Experience, error) { return s.UpdateExperience(ctx, id, p) })
	case models.KindProjects:
		return applyJSON(payload, func(p models.ProjectPatch) (models.Project, error) { return s.UpdateProject(ctx, id, p) })
	case models.KindSkills:
		return applyJSON(payload, func(p models.SkillCategoryPatch) (models.SkillCategory, error) {
			return s.UpdateSkillCategory(ctx, id, p)
		})
	case models.KindCertifications:
		return applyJSON(payload, func(p models.CertificationPatch) (models.Certification, error) {
			return s.UpdateCertification(ctx, id, p)
		})
	case models.KindEducation:
		return applyJSON(payload, func(p models.EducationPatch) (models.Education, error) { return s.UpdateEducation(ctx, id, p) })
	default:
		return nil, fmt.Errorf("%w: %q is not a collection", ErrUnknownKind, kind)
	}
}

// DeleteRowByKind removes the row with id from the collection kind
func (s *Service) DeleteRowByKind(ctx context.Context, kind, id string) error {
	switch kind {
	case models.KindExperience:
		return s.DeleteExperience(ctx, id)
	case models.KindProjects:
		return s.DeleteProject(ctx, id)
	case models.KindSkills:
		return s.DeleteSkillCategory(ctx, id)
	case models.KindCertifications:
		return s.DeleteCertification(ctx, id)
	case models.KindEducation:
		return s.DeleteEducation(ctx, id)
	default:
		return fmt.Errorf("%w: %q is not a collection", ErrUnknownKind, kind)
	}
}

// ReorderRowsByKind reorders the collection kind to follow ids
func (s *Service) ReorderRowsByKind(ctx context.Context, kind string, ids []string) (any, error) {
	switch kind {
	case models.KindExperience:
		return s.ReorderExperience(ctx, ids)
	case models.KindProjects:
		return s.ReorderProjects(ctx, ids)
	case models.KindSkills:
		return s.ReorderSkillCategories(ctx, ids)
	case models.KindCertifications:
		return s.ReorderCertifications(ctx, ids)
	case models.KindEducation:
		return s.ReorderEducation(ctx, ids)
	default:
		return nil, fmt.Errorf("%w: %q is not a collection", ErrUnknownKind, kind)
	}
}

func applyJSON[P, T any](payload []byte, apply func(P) (T, error)) (any, error) {
	patch, err := decodePatch[P](payload)
	if err != nil {
		return nil, err
	}
	v, err := apply(patch)
	if err != nil {
		return nil, err
	}
	return v, nil
}
