// Package web holds the embedded HTML templates of the public site and the
// admin console.
package web

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/url"
	"path"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/publicsuffix"
)

//go:embed templates
var templatesFS embed.FS

// Renderer executes named pages such as "public/home" or "admin/dashboard".
type Renderer struct {
	pages map[string]*template.Template
}

// New parses every page together with the layout of its section
func New() (*Renderer, error) {
	policy := bluemonday.UGCPolicy()
	funcs := template.FuncMap{
		"sanitize": func(s string) template.HTML {
			return template.HTML(policy.Sanitize(s))
		},
		"linkLabel": LinkLabel,
		"toJSON":    toJSON,
		"join":      strings.Join,
		"add":       func(a, b int) int { return a + b },
	}

	r := &Renderer{pages: make(map[string]*template.Template)}
	for _, section := range []string{"public", "admin"} {
		files, err := fs.Glob(templatesFS, "templates/"+section+"/*.html")
		if err != nil {
			return nil, fmt.Errorf("failed to list %s templates: %w", section, err)
		}
		for _, file := range files {
			name := section + "/" + strings.TrimSuffix(path.Base(file), ".html")
			t, err := template.New(name).Funcs(funcs).ParseFS(templatesFS, "templates/layout/"+section+".html", file)
			if err != nil {
				return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
			}
			r.pages[name] = t
		}
	}
	return r, nil
}

// Render executes page into w. Output is buffered so a template error never
// leaves a half-written page.
func (r *Renderer) Render(w io.Writer, name string, data any) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// LinkLabel returns the registrable domain of link, e.g. "coursera.org" for
// https://www.coursera.org/verify/x. Links without a host are returned as is.
func LinkLabel(link string) string {
	u, err := url.Parse(link)
	if err != nil || u.Hostname() == "" {
		return link
	}
	host := u.Hostname()
	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return domain
}

func toJSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
