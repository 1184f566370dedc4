package models

import "time"

// Document kinds. Singletons live under SingletonKey, collections hold rows.
const (
	KindSettings       = "settings"
	KindProfile        = "profile"
	KindAbout          = "about"
	KindContact        = "contact"
	KindExperience     = "experience"
	KindProjects       = "projects"
	KindSkills         = "skills"
	KindCertifications = "certifications"
	KindEducation      = "education"

	SingletonKey = "main"
)

// SingletonKinds lists singleton kinds in display order.
var SingletonKinds = []string{KindSettings, KindProfile, KindAbout, KindContact}

// CollectionKinds lists collection kinds in display order.
var CollectionKinds = []string{KindExperience, KindProjects, KindSkills, KindCertifications, KindEducation}

// IsSingletonKind reports whether kind names a singleton.
func IsSingletonKind(kind string) bool {
	for _, k := range SingletonKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// IsCollectionKind reports whether kind names a collection.
func IsCollectionKind(kind string) bool {
	for _, k := range CollectionKinds {
		if k == kind {
			return true
		}
	}
	return false
}

type CTAButton struct {
	Text    string `json:"text"`
	Link    string `json:"link"`
	Primary bool   `json:"primary"`
}

type Stat struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type Skill struct {
	Name        string `json:"name"`
	Proficiency int    `json:"proficiency"` // 0-100
}

// Settings holds site-wide metadata.
type Settings struct {
	SocialLinks     map[string]string `json:"socialLinks"`
	UpdatedAt       *time.Time        `json:"updatedAt,omitempty"`
	SiteTitle       string            `json:"siteTitle"`
	SiteDescription string            `json:"siteDescription"`
	ThemeDefault    string            `json:"themeDefault"`
	SEOKeywords     string            `json:"seoKeywords"`
	OGImage         string            `json:"ogImage"`
}

type Profile struct {
	UpdatedAt    *time.Time  `json:"updatedAt,omitempty"`
	Name         string      `json:"name"`
	Title        string      `json:"title"`
	Subtitle     string      `json:"subtitle"`
	Summary      string      `json:"summary"`
	ProfileImage string      `json:"profileImage"`
	ResumeURL    string      `json:"resumeUrl"`
	CTAButtons   []CTAButton `json:"ctaButtons"`
	Stats        []Stat      `json:"stats"`
	Published    bool        `json:"published"`
}

type About struct {
	UpdatedAt  *time.Time `json:"updatedAt,omitempty"`
	Headline   string     `json:"headline"`
	LongBio    string     `json:"longBio"` // HTML, sanitized on render
	Highlights []string   `json:"highlights"`
	Published  bool       `json:"published"`
}

type Contact struct {
	UpdatedAt          *time.Time `json:"updatedAt,omitempty"`
	Email              string     `json:"email"`
	Phone              string     `json:"phone"`
	Location           string     `json:"location"`
	LinkedIn           string     `json:"linkedin"`
	GitHub             string     `json:"github"`
	Twitter            string     `json:"twitter"`
	CalendlyLink       string     `json:"calendlyLink"`
	ContactFormEnabled bool       `json:"contactFormEnabled"`
	Published          bool       `json:"published"`
}

type Experience struct {
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
	ID          string     `json:"id"`
	Company     string     `json:"company"`
	Role        string     `json:"role"`
	Location    string     `json:"location"`
	StartDate   string     `json:"startDate"`
	EndDate     string     `json:"endDate"`
	Description string     `json:"description"`
	Bullets     []string   `json:"bullets"`
	TechTags    []string   `json:"techTags"`
	Order       int        `json:"order"`
	Current     bool       `json:"current"`
	Published   bool       `json:"published"`
}

type Project struct {
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Subtitle    string     `json:"subtitle"`
	Description string     `json:"description"`
	GitHubLink  string     `json:"githubLink"`
	LiveLink    string     `json:"liveLink"`
	Stack       []string   `json:"stack"`
	Metrics     []Stat     `json:"metrics"`
	Images      []string   `json:"images"`
	Order       int        `json:"order"`
	Featured    bool       `json:"featured"`
	Published   bool       `json:"published"`
}

type SkillCategory struct {
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
	ID        string     `json:"id"`
	Category  string     `json:"category"`
	Skills    []Skill    `json:"skills"`
	Order     int        `json:"order"`
	Published bool       `json:"published"`
}

type Certification struct {
	CreatedAt      *time.Time `json:"createdAt,omitempty"`
	UpdatedAt      *time.Time `json:"updatedAt,omitempty"`
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Issuer         string     `json:"issuer"`
	Date           string     `json:"date"`
	CredentialLink string     `json:"credentialLink"`
	Image          string     `json:"image"`
	Order          int        `json:"order"`
	Published      bool       `json:"published"`
}

type Education struct {
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
	ID          string     `json:"id"`
	Degree      string     `json:"degree"`
	Institution string     `json:"institution"`
	Status      string     `json:"status"`
	Order       int        `json:"order"`
	Published   bool       `json:"published"`
}

// RowID returns the row identifier.
func (e Experience) RowID() string    { return e.ID }
func (p Project) RowID() string       { return p.ID }
func (s SkillCategory) RowID() string { return s.ID }
func (c Certification) RowID() string { return c.ID }
func (e Education) RowID() string     { return e.ID }

// WithOrder returns a copy of the row at position i.
func (e Experience) WithOrder(i int) Experience       { e.Order = i; return e }
func (p Project) WithOrder(i int) Project             { p.Order = i; return p }
func (s SkillCategory) WithOrder(i int) SkillCategory { s.Order = i; return s }
func (c Certification) WithOrder(i int) Certification { c.Order = i; return c }
func (e Education) WithOrder(i int) Education         { e.Order = i; return e }

// Portfolio is the aggregated content of the site.
type Portfolio struct {
	Settings       Settings        `json:"settings"`
	Profile        Profile         `json:"profile"`
	About          About           `json:"about"`
	Contact        Contact         `json:"contact"`
	Experience     []Experience    `json:"experience"`
	Projects       []Project       `json:"projects"`
	Skills         []SkillCategory `json:"skills"`
	Certifications []Certification `json:"certifications"`
	Education      []Education     `json:"education"`
}

// Presence records which portfolio fields were found in the backend.
// Collections count as present only when they have at least one row.
type Presence struct {
	Settings       bool `json:"settings"`
	Profile        bool `json:"profile"`
	About          bool `json:"about"`
	Contact        bool `json:"contact"`
	Experience     bool `json:"experience"`
	Projects       bool `json:"projects"`
	Skills         bool `json:"skills"`
	Certifications bool `json:"certifications"`
	Education      bool `json:"education"`
}
