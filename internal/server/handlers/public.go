package handlers

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/iudanet/portfolio/internal/models"
	"github.com/iudanet/portfolio/internal/render"
	"github.com/iudanet/portfolio/internal/server/storage"
)

// maxFeatured is how many featured projects the home page shows
const maxFeatured = 3

// PortfolioSource exposes the content visible to visitors
type PortfolioSource interface {
	Published() models.Portfolio
}

// PageRenderer executes named HTML pages
type PageRenderer interface {
	Render(w io.Writer, name string, data any) error
}

// publicPage is the view model of every public page
type publicPage struct {
	Site       models.Settings
	Active     string
	Filter     string
	Portfolio  models.Portfolio
	Featured   []models.Project
	Projects   []models.Project
	Tags       []string
	PDFEnabled bool
}

// PublicHandler renders the public site
type PublicHandler struct {
	responder
	content PortfolioSource
	pages   PageRenderer
	pdf     render.PDFRenderer
	objects storage.ObjectReader
}

// NewPublicHandler creates the public site handler. pdf and objects may be
// nil: /resume.pdf then redirects to the uploaded resume and /files/ is not
// served.
func NewPublicHandler(logger *slog.Logger, content PortfolioSource, pages PageRenderer, pdf render.PDFRenderer, objects storage.ObjectReader) *PublicHandler {
	return &PublicHandler{
		responder: responder{logger: logger},
		content:   content,
		pages:     pages,
		pdf:       pdf,
		objects:   objects,
	}
}

func (h *PublicHandler) page(active string) publicPage {
	p := h.content.Published()
	return publicPage{
		Site:       p.Settings,
		Active:     active,
		Portfolio:  p,
		PDFEnabled: h.pdf != nil,
	}
}

func (h *PublicHandler) renderPage(w http.ResponseWriter, r *http.Request, name string, data publicPage, status int) {
	var buf bytes.Buffer
	if err := h.pages.Render(&buf, name, data); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to render page", slog.String("page", name), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// Home handles GET /
func (h *PublicHandler) Home(w http.ResponseWriter, r *http.Request) {
	data := h.page("home")
	data.Featured = featuredProjects(data.Portfolio.Projects, maxFeatured)
	h.renderPage(w, r, "public/home", data, http.StatusOK)
}

// About handles GET /about
func (h *PublicHandler) About(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, "public/about", h.page("about"), http.StatusOK)
}

// Experience handles GET /experience
func (h *PublicHandler) Experience(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, "public/experience", h.page("experience"), http.StatusOK)
}

// Projects handles GET /projects?filter=<tag|featured>
func (h *PublicHandler) Projects(w http.ResponseWriter, r *http.Request) {
	data := h.page("projects")
	data.Filter = strings.TrimSpace(r.URL.Query().Get("filter"))
	data.Tags = stackTags(data.Portfolio.Projects)
	data.Projects = filterProjects(data.Portfolio.Projects, data.Filter)
	h.renderPage(w, r, "public/projects", data, http.StatusOK)
}

// Skills handles GET /skills
func (h *PublicHandler) Skills(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, "public/skills", h.page("skills"), http.StatusOK)
}

// Certifications handles GET /certifications
func (h *PublicHandler) Certifications(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, "public/certifications", h.page("certifications"), http.StatusOK)
}

// Contact handles GET /contact
func (h *PublicHandler) Contact(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, "public/contact", h.page("contact"), http.StatusOK)
}

// Resume handles GET /resume
func (h *PublicHandler) Resume(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, "public/resume", h.page("resume"), http.StatusOK)
}

// NotFound renders the 404 page for unknown paths
func (h *PublicHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, "public/notfound", h.page(""), http.StatusNotFound)
}

// ResumePDF handles GET /resume.pdf. The resume page is printed with
// headless Chrome when a renderer is configured; otherwise, or when
// printing fails, the uploaded resume is served by redirect.
func (h *PublicHandler) ResumePDF(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	data := h.page("resume")
	data.PDFEnabled = false

	if h.pdf != nil {
		var buf bytes.Buffer
		err := h.pages.Render(&buf, "public/resume", data)
		if err == nil {
			var pdf []byte
			pdf, err = h.pdf.RenderHTMLToPDF(ctx, buf.String())
			if err == nil {
				w.Header().Set("Content-Type", "application/pdf")
				w.Header().Set("Content-Disposition", `inline; filename="resume.pdf"`)
				w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
				_, _ = w.Write(pdf)
				return
			}
		}
		h.logger.ErrorContext(ctx, "failed to render resume pdf", slog.Any("error", err))
	}

	if url := data.Portfolio.Profile.ResumeURL; url != "" {
		http.Redirect(w, r, url, http.StatusFound)
		return
	}
	h.NotFound(w, r)
}

// Files handles GET /files/{path...} for stores served by this application
func (h *PublicHandler) Files(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.objects == nil {
		http.NotFound(w, r)
		return
	}

	objectPath := r.PathValue("path")
	clean := path.Clean("/" + objectPath)[1:]
	if clean == "" || clean != objectPath {
		http.NotFound(w, r)
		return
	}

	body, info, err := h.objects.Open(ctx, clean)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			http.NotFound(w, r)
			return
		}
		h.logger.ErrorContext(ctx, "failed to open object", slog.String("path", clean), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	defer func() {
		if err := body.Close(); err != nil {
			h.logger.WarnContext(ctx, "failed to close object", slog.Any("error", err))
		}
	}()

	w.Header().Set("Content-Type", info.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if !info.UpdatedAt.IsZero() {
		w.Header().Set("Last-Modified", info.UpdatedAt.UTC().Format(http.TimeFormat))
	}
	if _, err := io.Copy(w, body); err != nil {
		h.logger.WarnContext(ctx, "failed to send object", slog.String("path", clean), slog.Any("error", err))
	}
}

// Portfolio handles GET /api/v1/portfolio
func (h *PublicHandler) Portfolio(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age="+strconv.Itoa(int(time.Minute.Seconds())))
	h.sendJSON(w, h.content.Published(), http.StatusOK)
}

func featuredProjects(projects []models.Project, limit int) []models.Project {
	var out []models.Project
	for _, p := range projects {
		if !p.Featured {
			continue
		}
		out = append(out, p)
		if len(out) == limit {
			break
		}
	}
	return out
}

// filterProjects keeps projects whose stack carries tag, case-insensitively.
// "featured" keeps featured projects; an empty filter keeps everything.
func filterProjects(projects []models.Project, filter string) []models.Project {
	if filter == "" {
		return projects
	}
	if filter == "featured" {
		return featuredProjects(projects, len(projects))
	}

	var out []models.Project
	for _, p := range projects {
		for _, tag := range p.Stack {
			if strings.EqualFold(tag, filter) {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

// stackTags lists distinct stack tags in order of first appearance
func stackTags(projects []models.Project) []string {
	seen := make(map[string]bool)
	var tags []string
	for _, p := range projects {
		for _, tag := range p.Stack {
			key := strings.ToLower(tag)
			if seen[key] {
				continue
			}
			seen[key] = true
			tags = append(tags, tag)
		}
	}
	return tags
}
