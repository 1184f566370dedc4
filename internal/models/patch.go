package models

// Patch types carry partial updates. A nil field is left untouched by the
// merge; a non-nil field replaces the stored value as a whole.

type SettingsPatch struct {
	SocialLinks     *map[string]string `json:"socialLinks,omitempty"`
	SiteTitle       *string            `json:"siteTitle,omitempty"`
	SiteDescription *string            `json:"siteDescription,omitempty"`
	ThemeDefault    *string            `json:"themeDefault,omitempty"`
	SEOKeywords     *string            `json:"seoKeywords,omitempty"`
	OGImage         *string            `json:"ogImage,omitempty"`
}

type ProfilePatch struct {
	Name         *string      `json:"name,omitempty"`
	Title        *string      `json:"title,omitempty"`
	Subtitle     *string      `json:"subtitle,omitempty"`
	Summary      *string      `json:"summary,omitempty"`
	ProfileImage *string      `json:"profileImage,omitempty"`
	ResumeURL    *string      `json:"resumeUrl,omitempty"`
	CTAButtons   *[]CTAButton `json:"ctaButtons,omitempty"`
	Stats        *[]Stat      `json:"stats,omitempty"`
	Published    *bool        `json:"published,omitempty"`
}

type AboutPatch struct {
	Headline   *string   `json:"headline,omitempty"`
	LongBio    *string   `json:"longBio,omitempty"`
	Highlights *[]string `json:"highlights,omitempty"`
	Published  *bool     `json:"published,omitempty"`
}

type ContactPatch struct {
	Email              *string `json:"email,omitempty"`
	Phone              *string `json:"phone,omitempty"`
	Location           *string `json:"location,omitempty"`
	LinkedIn           *string `json:"linkedin,omitempty"`
	GitHub             *string `json:"github,omitempty"`
	Twitter            *string `json:"twitter,omitempty"`
	CalendlyLink       *string `json:"calendlyLink,omitempty"`
	ContactFormEnabled *bool   `json:"contactFormEnabled,omitempty"`
	Published          *bool   `json:"published,omitempty"`
}

type ExperiencePatch struct {
	ID          *string   `json:"id,omitempty"`
	Company     *string   `json:"company,omitempty"`
	Role        *string   `json:"role,omitempty"`
	Location    *string   `json:"location,omitempty"`
	StartDate   *string   `json:"startDate,omitempty"`
	EndDate     *string   `json:"endDate,omitempty"`
	Description *string   `json:"description,omitempty"`
	Bullets     *[]string `json:"bullets,omitempty"`
	TechTags    *[]string `json:"techTags,omitempty"`
	Current     *bool     `json:"current,omitempty"`
	Published   *bool     `json:"published,omitempty"`
}

type ProjectPatch struct {
	ID          *string   `json:"id,omitempty"`
	Title       *string   `json:"title,omitempty"`
	Subtitle    *string   `json:"subtitle,omitempty"`
	Description *string   `json:"description,omitempty"`
	GitHubLink  *string   `json:"githubLink,omitempty"`
	LiveLink    *string   `json:"liveLink,omitempty"`
	Stack       *[]string `json:"stack,omitempty"`
	Metrics     *[]Stat   `json:"metrics,omitempty"`
	Images      *[]string `json:"images,omitempty"`
	Featured    *bool     `json:"featured,omitempty"`
	Published   *bool     `json:"published,omitempty"`
}

type SkillCategoryPatch struct {
	ID        *string  `json:"id,omitempty"`
	Category  *string  `json:"category,omitempty"`
	Skills    *[]Skill `json:"skills,omitempty"`
	Published *bool    `json:"published,omitempty"`
}

type CertificationPatch struct {
	ID             *string `json:"id,omitempty"`
	Title          *string `json:"title,omitempty"`
	Issuer         *string `json:"issuer,omitempty"`
	Date           *string `json:"date,omitempty"`
	CredentialLink *string `json:"credentialLink,omitempty"`
	Image          *string `json:"image,omitempty"`
	Published      *bool   `json:"published,omitempty"`
}

type EducationPatch struct {
	ID          *string `json:"id,omitempty"`
	Degree      *string `json:"degree,omitempty"`
	Institution *string `json:"institution,omitempty"`
	Status      *string `json:"status,omitempty"`
	Published   *bool   `json:"published,omitempty"`
}

// Ptr returns a pointer to v. Handy for building patches.
func Ptr[T any](v T) *T {
	return &v
}
