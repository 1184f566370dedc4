package content

import (
	"context"
	"log/slog"

	"github.com/iudanet/portfolio/internal/gateway"
	"github.com/iudanet/portfolio/internal/models"
	"github.com/iudanet/portfolio/internal/seed"
)

type record[T any] interface {
	Clone() T
}

type row[T any] interface {
	record[T]
	RowID() string
	WithOrder(i int) T
}

// singletonField binds a singleton kind to its place in the state
type singletonField[T record[T], P any] struct {
	kind gateway.Singleton[T, P]
	set  func(p *models.Portfolio, v T)
	live func(l *models.Presence) *bool
}

// collectionField binds a collection kind to its place in the state
type collectionField[T row[T], P any] struct {
	kind gateway.Collection[T, P]
	rows func(p *models.Portfolio) *[]T
	live func(l *models.Presence) *bool
	seed func(p models.Portfolio) []T
}

var (
	settingsField = singletonField[models.Settings, models.SettingsPatch]{
		kind: gateway.Settings,
		set:  func(p *models.Portfolio, v models.Settings) { p.Settings = v },
		live: func(l *models.Presence) *bool { return &l.Settings },
	}
	profileField = singletonField[models.Profile, models.ProfilePatch]{
		kind: gateway.Profile,
		set:  func(p *models.Portfolio, v models.Profile) { p.Profile = v },
		live: func(l *models.Presence) *bool { return &l.Profile },
	}
	aboutField = singletonField[models.About, models.AboutPatch]{
		kind: gateway.About,
		set:  func(p *models.Portfolio, v models.About) { p.About = v },
		live: func(l *models.Presence) *bool { return &l.About },
	}
	contactField = singletonField[models.Contact, models.ContactPatch]{
		kind: gateway.Contact,
		set:  func(p *models.Portfolio, v models.Contact) { p.Contact = v },
		live: func(l *models.Presence) *bool { return &l.Contact },
	}

	experienceField = collectionField[models.Experience, models.ExperiencePatch]{
		kind: gateway.Experience,
		rows: func(p *models.Portfolio) *[]models.Experience { return &p.Experience },
		live: func(l *models.Presence) *bool { return &l.Experience },
		seed: func(p models.Portfolio) []models.Experience { return p.Experience },
	}
	projectsField = collectionField[models.Project, models.ProjectPatch]{
		kind: gateway.Projects,
		rows: func(p *models.Portfolio) *[]models.Project { return &p.Projects },
		live: func(l *models.Presence) *bool { return &l.Projects },
		seed: func(p models.Portfolio) []models.Project { return p.Projects },
	}
	skillsField = collectionField[models.SkillCategory, models.SkillCategoryPatch]{
		kind: gateway.Skills,
		rows: func(p *models.Portfolio) *[]models.SkillCategory { return &p.Skills },
		live: func(l *models.Presence) *bool { return &l.Skills },
		seed: func(p models.Portfolio) []models.SkillCategory { return p.Skills },
	}
	certificationsField = collectionField[models.Certification, models.CertificationPatch]{
		kind: gateway.Certifications,
		rows: func(p *models.Portfolio) *[]models.Certification { return &p.Certifications },
		live: func(l *models.Presence) *bool { return &l.Certifications },
		seed: func(p models.Portfolio) []models.Certification { return p.Certifications },
	}
	educationField = collectionField[models.Education, models.EducationPatch]{
		kind: gateway.Education,
		rows: func(p *models.Portfolio) *[]models.Education { return &p.Education },
		live: func(l *models.Presence) *bool { return &l.Education },
		seed: func(p models.Portfolio) []models.Education { return p.Education },
	}
)

func updateSingleton[T record[T], P any](ctx context.Context, s *Service, f singletonField[T, P], patch P) (T, error) {
	var zero T

	callCtx, cancel := s.callCtx(ctx)
	v, err := gateway.SetSingleton(callCtx, s.gw, f.kind, patch)
	cancel()
	if err != nil {
		s.recordError(err)
		return zero, err
	}

	stored := (*v).Clone()
	s.commit(func(p *models.Portfolio, l *models.Presence) {
		f.set(p, stored)
		*f.live(l) = true
	})
	return *v, nil
}

// setRows replaces a collection in local state. An empty collection shows
// the seed rows, the same way Load treats it.
func setRows[T row[T], P any](f collectionField[T, P], p *models.Portfolio, l *models.Presence, rows []T) {
	if len(rows) == 0 {
		*f.rows(p) = f.seed(seed.Default())
		*f.live(l) = false
		return
	}
	*f.rows(p) = rows
	*f.live(l) = true
}

// syncRows applies a local edit to a live collection. A collection still
// showing seed rows is replaced by the stored list instead, so local state
// never mixes seed and stored rows. When that list cannot be read the seed
// rows stay in place and the state is marked stale until the next reload.
func syncRows[T row[T], P any](ctx context.Context, s *Service, f collectionField[T, P], edit func([]T) []T) {
	s.mu.RLock()
	live := *f.live(&s.live)
	s.mu.RUnlock()

	if !live {
		callCtx, cancel := s.callCtx(ctx)
		rows, err := gateway.ListCollection(callCtx, s.gw, f.kind)
		cancel()
		if err != nil {
			s.logger.WarnContext(ctx, "failed to refresh collection after write",
				slog.String("kind", f.kind.Kind),
				slog.Any("error", err),
			)
			s.recordError(err)
			return
		}
		s.commit(func(p *models.Portfolio, l *models.Presence) {
			setRows(f, p, l, rows)
		})
		return
	}

	s.commit(func(p *models.Portfolio, l *models.Presence) {
		setRows(f, p, l, edit(clone(*f.rows(p))))
	})
}

func addRow[T row[T], P any](ctx context.Context, s *Service, f collectionField[T, P], patch P) (T, error) {
	callCtx, cancel := s.callCtx(ctx)
	v, err := gateway.AddRow(callCtx, s.gw, f.kind, patch)
	cancel()
	if err != nil {
		s.recordError(err)
		return v, err
	}

	syncRows(ctx, s, f, func(rows []T) []T {
		return append(rows, v.Clone())
	})
	return v, nil
}

func updateRow[T row[T], P any](ctx context.Context, s *Service, f collectionField[T, P], id string, patch P) (T, error) {
	callCtx, cancel := s.callCtx(ctx)
	v, err := gateway.UpdateRow(callCtx, s.gw, f.kind, id, patch)
	cancel()
	if err != nil {
		s.recordError(err)
		return v, err
	}

	syncRows(ctx, s, f, func(rows []T) []T {
		for i := range rows {
			if rows[i].RowID() == id {
				rows[i] = v.Clone()
			}
		}
		return rows
	})
	return v, nil
}

func deleteRow[T row[T], P any](ctx context.Context, s *Service, f collectionField[T, P], id string) error {
	callCtx, cancel := s.callCtx(ctx)
	err := gateway.DeleteRow(callCtx, s.gw, f.kind, id)
	cancel()
	if err != nil {
		s.recordError(err)
		return err
	}

	syncRows(ctx, s, f, func(rows []T) []T {
		out := make([]T, 0, len(rows))
		for _, r := range rows {
			if r.RowID() != id {
				out = append(out, r.WithOrder(len(out)))
			}
		}
		return out
	})
	return nil
}

func reorderRows[T row[T], P any](ctx context.Context, s *Service, f collectionField[T, P], ids []string) ([]T, error) {
	callCtx, cancel := s.callCtx(ctx)
	rows, err := gateway.ReorderRows(callCtx, s.gw, f.kind, ids)
	cancel()
	if err != nil {
		s.recordError(err)
		return nil, err
	}

	stored := clone(rows)
	s.commit(func(p *models.Portfolio, l *models.Presence) {
		setRows(f, p, l, stored)
	})
	return rows, nil
}

func clone[T record[T]](rows []T) []T {
	out := make([]T, len(rows))
	for i, r := range rows {
		out[i] = r.Clone()
	}
	return out
}

// UpdateSettings merges patch into the site settings
func (s *Service) UpdateSettings(ctx context.Context, patch models.SettingsPatch) (models.Settings, error) {
	return updateSingleton(ctx, s, settingsField, patch)
}

// UpdateProfile merges patch into the profile
func (s *Service) UpdateProfile(ctx context.Context, patch models.ProfilePatch) (models.Profile, error) {
	return updateSingleton(ctx, s, profileField, patch)
}

// UpdateAbout merges patch into the about section
func (s *Service) UpdateAbout(ctx context.Context, patch models.AboutPatch) (models.About, error) {
	return updateSingleton(ctx, s, aboutField, patch)
}

// UpdateContact merges patch into the contact details
func (s *Service) UpdateContact(ctx context.Context, patch models.ContactPatch) (models.Contact, error) {
	return updateSingleton(ctx, s, contactField, patch)
}

func (s *Service) AddExperience(ctx context.Context, patch models.ExperiencePatch) (models.Experience, error) {
	return addRow(ctx, s, experienceField, patch)
}

func (s *Service) UpdateExperience(ctx context.Context, id string, patch models.ExperiencePatch) (models.Experience, error) {
	return updateRow(ctx, s, experienceField, id, patch)
}

func (s *Service) DeleteExperience(ctx context.Context, id string) error {
	return deleteRow(ctx, s, experienceField, id)
}

func (s *Service) ReorderExperience(ctx context.Context, ids []string) ([]models.Experience, error) {
	return reorderRows(ctx, s, experienceField, ids)
}

func (s *Service) AddProject(ctx context.Context, patch models.ProjectPatch) (models.Project, error) {
	return addRow(ctx, s, projectsField, patch)
}

func (s *Service) UpdateProject(ctx context.Context, id string, patch models.ProjectPatch) (models.Project, error) {
	return updateRow(ctx, s, projectsField, id, patch)
}

func (s *Service) DeleteProject(ctx context.Context, id string) error {
	return deleteRow(ctx, s, projectsField, id)
}

func (s *Service) ReorderProjects(ctx context.Context, ids []string) ([]models.Project, error) {
	return reorderRows(ctx, s, projectsField, ids)
}

func (s *Service) AddSkillCategory(ctx context.Context, patch models.SkillCategoryPatch) (models.SkillCategory, error) {
	return addRow(ctx, s, skillsField, patch)
}

func (s *Service) UpdateSkillCategory(ctx context.Context, id string, patch models.SkillCategoryPatch) (models.SkillCategory, error) {
	return updateRow(ctx, s, skillsField, id, patch)
}

func (s *Service) DeleteSkillCategory(ctx context.Context, id string) error {
	return deleteRow(ctx, s, skillsField, id)
}

func (s *Service) ReorderSkillCategories(ctx context.Context, ids []string) ([]models.SkillCategory, error) {
	return reorderRows(ctx, s, skillsField, ids)
}

func (s *Service) AddCertification(ctx context.Context, patch models.CertificationPatch) (models.Certification, error) {
	return addRow(ctx, s, certificationsField, patch)
}

func (s *Service) UpdateCertification(ctx context.Context, id string, patch models.CertificationPatch) (models.Certification, error) {
	return updateRow(ctx, s, certificationsField, id, patch)
}

func (s *Service) DeleteCertification(ctx context.Context, id string) error {
	return deleteRow(ctx, s, certificationsField, id)
}

func (s *Service) ReorderCertifications(ctx context.Context, ids []string) ([]models.Certification, error) {
	return reorderRows(ctx, s, certificationsField, ids)
}

func (s *Service) AddEducation(ctx context.Context, patch models.EducationPatch) (models.Education, error) {
	return addRow(ctx, s, educationField, patch)
}

func (s *Service) UpdateEducation(ctx context.Context, id string, patch models.EducationPatch) (models.Education, error) {
	return updateRow(ctx, s, educationField, id, patch)
}

func (s *Service) DeleteEducation(ctx context.Context, id string) error {
	return deleteRow(ctx, s, educationField, id)
}

func (s *Service) ReorderEducation(ctx context.Context, ids []string) ([]models.Education, error) {
	return reorderRows(ctx, s, educationField, ids)
}
