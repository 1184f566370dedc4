// Package seed holds the default portfolio content. It is used to bootstrap
// an empty backend and as the fallback whenever live content is missing or
// the backend cannot be reached.
package seed

import "github.com/iudanet/portfolio/internal/models"

// Default returns a fresh copy of the seed content. Callers may modify the
// result freely.
func Default() models.Portfolio {
	return models.Portfolio{
		Settings: models.Settings{
			SiteTitle:       "Alex Doe - Software Engineer",
			SiteDescription: "Software engineer building reliable backend systems, data pipelines and developer tools.",
			ThemeDefault:    "dark",
			SEOKeywords:     "Go, Backend, Distributed Systems, Cloud, APIs",
			OGImage:         "",
			SocialLinks: map[string]string{
				"github":   "https://github.com/example",
				"linkedin": "https://linkedin.com/in/example",
				"twitter":  "",
				"email":    "hello@example.com",
			},
		},
		Profile: models.Profile{
			Name:         "Alex Doe",
			Title:        "Software Engineer",
			Subtitle:     "Building systems that stay up",
			Summary:      "Backend engineer with experience designing APIs, storage layers and deployment pipelines. Focused on simple designs, measurable reliability and clear documentation.",
			ProfileImage: "",
			ResumeURL:    "",
			CTAButtons: []models.CTAButton{
				{Text: "View Projects", Link: "/projects", Primary: true},
				{Text: "Contact Me", Link: "/contact", Primary: false},
			},
			Stats: []models.Stat{
				{Label: "Years Experience", Value: "5+"},
				{Label: "Projects Shipped", Value: "20+"},
				{Label: "Certifications", Value: "5"},
				{Label: "Uptime Target", Value: "99.9%"},
			},
			Published: true,
		},
		About: models.About{
			Headline: "Turning requirements into dependable software",
			LongBio: `<p>I am a software engineer who enjoys the parts of a system most people never see: the storage layer, the deploy pipeline and the alert that never fires.</p>
<p>Over the last few years I have built APIs, background workers and internal tools for product teams of every size. I care about readable code, honest metrics and leaving systems easier to operate than I found them.</p>
<p>Outside of work I mentor new engineers and contribute to open source tooling.</p>`,
			Highlights: []string{
				"Production services with measurable reliability gains",
				"API and storage design for growing products",
				"Automation that removes manual operational work",
				"Mentoring and technical writing",
			},
			Published: true,
		},
		Contact: models.Contact{
			Email:              "hello@example.com",
			Phone:              "",
			Location:           "Remote",
			LinkedIn:           "https://linkedin.com/in/example",
			GitHub:             "https://github.com/example",
			Twitter:            "",
			CalendlyLink:       "",
			ContactFormEnabled: true,
			Published:          true,
		},
		Experience: []models.Experience{
			{
				ID:          "exp1",
				Company:     "Northwind Labs",
				Role:        "Senior Backend Engineer",
				Location:    "Remote",
				StartDate:   "Jan 2024",
				EndDate:     "Present",
				Current:     true,
				Description: "Leading the platform team's API and storage work",
				Bullets: []string{
					"Cut p99 latency of the public API by 40% by reworking the query layer",
					"Designed the event pipeline that replaced nightly batch jobs",
				},
				TechTags:  []string{"Go", "PostgreSQL", "Kafka", "Kubernetes"},
				Order:     0,
				Published: true,
			},
			{
				ID:          "exp2",
				Company:     "Contoso Retail",
				Role:        "Backend Engineer",
				Location:    "Berlin",
				StartDate:   "Mar 2022",
				EndDate:     "Dec 2023",
				Current:     false,
				Description: "Built order and inventory services",
				Bullets: []string{
					"Shipped the inventory reservation service handling peak holiday traffic",
					"Introduced contract tests between checkout and payment services",
				},
				TechTags:  []string{"Go", "gRPC", "Redis"},
				Order:     1,
				Published: true,
			},
			{
				ID:          "exp3",
				Company:     "Fabrikam Analytics",
				Role:        "Data Engineer",
				Location:    "Remote",
				StartDate:   "Jun 2020",
				EndDate:     "Feb 2022",
				Current:     false,
				Description: "Maintained ingestion pipelines and reporting",
				Bullets: []string{
					"Moved ingestion from cron scripts to a scheduled workflow engine",
				},
				TechTags:  []string{"Python", "Airflow", "BigQuery"},
				Order:     2,
				Published: true,
			},
			{
				ID:          "exp4",
				Company:     "Tailspin Studio",
				Role:        "Software Developer",
				Location:    "Lisbon",
				StartDate:   "Sep 2019",
				EndDate:     "May 2020",
				Current:     false,
				Description: "Full-stack work on client projects",
				Bullets: []string{
					"Delivered booking systems for three hospitality clients",
				},
				TechTags:  []string{"TypeScript", "Node.js", "PostgreSQL"},
				Order:     3,
				Published: true,
			},
			{
				ID:          "exp5",
				Company:     "Open Source",
				Role:        "Maintainer",
				Location:    "Remote",
				StartDate:   "2018",
				EndDate:     "Present",
				Current:     true,
				Description: "Maintaining developer tooling libraries",
				Bullets: []string{
					"Reviewed and merged contributions from the community",
				},
				TechTags:  []string{"Go", "CLI", "Community"},
				Order:     4,
				Published: true,
			},
		},
		Projects: []models.Project{
			{
				ID:          "proj1",
				Title:       "Ledger Service",
				Subtitle:    "Double-entry accounting API",
				Description: "An append-only ledger with idempotent postings and point-in-time balances.",
				Stack:       []string{"Go", "PostgreSQL", "gRPC"},
				GitHubLink:  "https://github.com/example/ledger",
				LiveLink:    "",
				Metrics:     []models.Stat{{Label: "Postings/sec", Value: "5k"}},
				Images:      []string{},
				Featured:    true,
				Order:       0,
				Published:   true,
			},
			{
				ID:          "proj2",
				Title:       "Deploy Bot",
				Subtitle:    "ChatOps release automation",
				Description: "A chat bot that runs release checklists and rolls back on failed health checks.",
				Stack:       []string{"Go", "Kubernetes", "Slack API"},
				GitHubLink:  "https://github.com/example/deploybot",
				LiveLink:    "",
				Metrics:     []models.Stat{{Label: "Release time", Value: "-60%"}},
				Images:      []string{},
				Featured:    true,
				Order:       1,
				Published:   true,
			},
			{
				ID:          "proj3",
				Title:       "Log Sampler",
				Subtitle:    "Adaptive log sampling proxy",
				Description: "Keeps error logs intact while sampling noisy info logs under load.",
				Stack:       []string{"Go", "OpenTelemetry"},
				GitHubLink:  "https://github.com/example/logsampler",
				LiveLink:    "",
				Metrics:     []models.Stat{{Label: "Log volume", Value: "-70%"}},
				Images:      []string{},
				Featured:    true,
				Order:       2,
				Published:   true,
			},
			{
				ID:          "proj4",
				Title:       "Schema Diff",
				Subtitle:    "Database migration reviewer",
				Description: "Compares schemas across environments and flags destructive migrations.",
				Stack:       []string{"Python", "PostgreSQL"},
				GitHubLink:  "https://github.com/example/schemadiff",
				LiveLink:    "",
				Metrics:     []models.Stat{},
				Images:      []string{},
				Featured:    false,
				Order:       3,
				Published:   true,
			},
			{
				ID:          "proj5",
				Title:       "Status Page",
				Subtitle:    "Static incident status site",
				Description: "A static status page generated from health check history.",
				Stack:       []string{"TypeScript", "Cloud Storage"},
				GitHubLink:  "",
				LiveLink:    "https://status.example.com",
				Metrics:     []models.Stat{},
				Images:      []string{},
				Featured:    false,
				Order:       4,
				Published:   true,
			},
		},
		Skills: []models.SkillCategory{
			{ID: "cat1", Category: "Languages", Skills: []models.Skill{{Name: "Go", Proficiency: 95}, {Name: "Python", Proficiency: 80}, {Name: "TypeScript", Proficiency: 70}}, Order: 0, Published: true},
			{ID: "cat2", Category: "Databases", Skills: []models.Skill{{Name: "PostgreSQL", Proficiency: 90}, {Name: "SQLite", Proficiency: 85}, {Name: "Redis", Proficiency: 75}}, Order: 1, Published: true},
			{ID: "cat3", Category: "Infrastructure", Skills: []models.Skill{{Name: "Kubernetes", Proficiency: 80}, {Name: "Terraform", Proficiency: 70}}, Order: 2, Published: true},
			{ID: "cat4", Category: "Cloud", Skills: []models.Skill{{Name: "GCP", Proficiency: 80}, {Name: "AWS", Proficiency: 70}}, Order: 3, Published: true},
			{ID: "cat5", Category: "Messaging", Skills: []models.Skill{{Name: "Kafka", Proficiency: 75}, {Name: "NATS", Proficiency: 65}}, Order: 4, Published: true},
			{ID: "cat6", Category: "Practices", Skills: []models.Skill{{Name: "Testing", Proficiency: 90}, {Name: "Observability", Proficiency: 85}}, Order: 5, Published: true},
		},
		Certifications: []models.Certification{
			{ID: "cert1", Title: "Professional Cloud Architect", Issuer: "Google Cloud", Date: "2024", CredentialLink: "https://www.credential.net/example-1", Order: 0, Published: true},
			{ID: "cert2", Title: "Certified Kubernetes Administrator", Issuer: "CNCF", Date: "2023", CredentialLink: "https://www.credly.com/badges/example-2", Order: 1, Published: true},
			{ID: "cert3", Title: "Solutions Architect Associate", Issuer: "AWS", Date: "2022", CredentialLink: "https://www.credly.com/badges/example-3", Order: 2, Published: true},
			{ID: "cert4", Title: "Terraform Associate", Issuer: "HashiCorp", Date: "2022", CredentialLink: "https://www.credly.com/badges/example-4", Order: 3, Published: true},
			{ID: "cert5", Title: "PostgreSQL Associate", Issuer: "EDB", Date: "2021", CredentialLink: "", Order: 4, Published: true},
		},
		Education: []models.Education{
			{ID: "edu1", Degree: "MSc Computer Science", Institution: "Example University", Status: "In Progress", Order: 0, Published: true},
			{ID: "edu2", Degree: "BSc Software Engineering", Institution: "Example Institute of Technology", Status: "Completed", Order: 1, Published: true},
		},
	}
}
