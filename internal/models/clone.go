package models

import (
	"maps"
	"slices"
	"time"
)

// Clone returns a deep copy of the portfolio.
func (p Portfolio) Clone() Portfolio {
	out := p
	out.Settings = p.Settings.Clone()
	out.Profile = p.Profile.Clone()
	out.About = p.About.Clone()
	out.Contact = p.Contact.Clone()
	out.Experience = cloneRows(p.Experience, Experience.Clone)
	out.Projects = cloneRows(p.Projects, Project.Clone)
	out.Skills = cloneRows(p.Skills, SkillCategory.Clone)
	out.Certifications = cloneRows(p.Certifications, Certification.Clone)
	out.Education = cloneRows(p.Education, Education.Clone)
	return out
}

func (s Settings) Clone() Settings {
	s.SocialLinks = maps.Clone(s.SocialLinks)
	s.UpdatedAt = cloneTime(s.UpdatedAt)
	return s
}

func (p Profile) Clone() Profile {
	p.CTAButtons = slices.Clone(p.CTAButtons)
	p.Stats = slices.Clone(p.Stats)
	p.UpdatedAt = cloneTime(p.UpdatedAt)
	return p
}

func (a About) Clone() About {
	a.Highlights = slices.Clone(a.Highlights)
	a.UpdatedAt = cloneTime(a.UpdatedAt)
	return a
}

func (c Contact) Clone() Contact {
	c.UpdatedAt = cloneTime(c.UpdatedAt)
	return c
}

func (e Experience) Clone() Experience {
	e.Bullets = slices.Clone(e.Bullets)
	e.TechTags = slices.Clone(e.TechTags)
	e.CreatedAt, e.UpdatedAt = cloneTime(e.CreatedAt), cloneTime(e.UpdatedAt)
	return e
}

func (p Project) Clone() Project {
	p.Stack = slices.Clone(p.Stack)
	p.Metrics = slices.Clone(p.Metrics)
	p.Images = slices.Clone(p.Images)
	p.CreatedAt, p.UpdatedAt = cloneTime(p.CreatedAt), cloneTime(p.UpdatedAt)
	return p
}

func (s SkillCategory) Clone() SkillCategory {
	s.Skills = slices.Clone(s.Skills)
	s.CreatedAt, s.UpdatedAt = cloneTime(s.CreatedAt), cloneTime(s.UpdatedAt)
	return s
}

func (c Certification) Clone() Certification {
	c.CreatedAt, c.UpdatedAt = cloneTime(c.CreatedAt), cloneTime(c.UpdatedAt)
	return c
}

func (e Education) Clone() Education {
	e.CreatedAt, e.UpdatedAt = cloneTime(e.CreatedAt), cloneTime(e.UpdatedAt)
	return e
}

// Counts returns the number of rows per collection kind.
func (p Portfolio) Counts() map[string]int {
	return map[string]int{
		KindExperience:     len(p.Experience),
		KindProjects:       len(p.Projects),
		KindSkills:         len(p.Skills),
		KindCertifications: len(p.Certifications),
		KindEducation:      len(p.Education),
	}
}

func cloneRows[T any](rows []T, clone func(T) T) []T {
	if rows == nil {
		return nil
	}
	out := make([]T, len(rows))
	for i, r := range rows {
		out[i] = clone(r)
	}
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
