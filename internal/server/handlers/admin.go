package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/iudanet/portfolio/internal/content"
	"github.com/iudanet/portfolio/internal/models"
	"github.com/iudanet/portfolio/internal/server/storage"
	"github.com/iudanet/portfolio/pkg/api"
)

// Authenticator signs the admin in and out
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (*api.TokenResponse, error)
	RevokeTokens(ctx context.Context, userID string) error
	AccessTTL() time.Duration
}

// adminSections are the editor pages in navigation order
var adminSections = append(append([]string{}, models.SingletonKinds...), models.CollectionKinds...)

// newRowTemplates prefill the add form of each collection
var newRowTemplates = map[string]string{
	models.KindExperience:     `{"company": "", "role": "", "location": "", "startDate": "", "endDate": "", "current": false, "bullets": [], "techTags": [], "published": true}`,
	models.KindProjects:       `{"title": "", "subtitle": "", "description": "", "stack": [], "featured": false, "published": true}`,
	models.KindSkills:         `{"category": "", "skills": [{"name": "", "proficiency": 50}], "published": true}`,
	models.KindCertifications: `{"title": "", "issuer": "", "date": "", "credentialLink": "", "published": true}`,
	models.KindEducation:      `{"degree": "", "institution": "", "status": "", "published": true}`,
}

// rowUploads are the per-row image uploads of a collection
var rowUploads = map[string]uploadForm{
	models.KindProjects:       {Label: "Add image", Accept: "image/*"},
	models.KindCertifications: {Label: "Badge image", Accept: "image/*"},
}

// profileUploads are the upload forms of the profile page, keyed by the
// field receiving the URL
var profileUploads = map[string]uploadForm{
	"profileImage": {Label: "Profile image", Accept: "image/*", Target: "profileImage", Action: "/admin/profile/upload", folder: "profile"},
	"resumeUrl":    {Label: "Resume (PDF)", Accept: "application/pdf,.pdf", Target: "resumeUrl", Action: "/admin/profile/upload", folder: "resume"},
}

type uploadForm struct {
	Label  string
	Accept string
	Target string
	Action string
	folder string
}

type kindCount struct {
	Kind  string
	Count int
	Live  bool
}

type adminRow struct {
	ID        string
	Label     string
	JSON      string
	Published bool
}

// adminPage is the view model of every admin page
type adminPage struct {
	Snapshot      content.Snapshot
	RowUpload     *uploadForm
	Title         string
	Active        string
	Flash         string
	Email         string
	Kind          string
	Record        string
	NewRow        string
	OrderIDs      string
	Sections      []string
	Counts        []kindCount
	Rows          []adminRow
	Uploads       []uploadForm
	Saved         bool
	Authenticated bool
}

// AdminPages serves the HTML admin console
type AdminPages struct {
	responder
	content      ContentManager
	auth         Authenticator
	pages        PageRenderer
	jwtConfig    JWTConfig
	secureCookie bool
}

// NewAdminPages creates the admin console handler. secureCookie marks the
// session cookie Secure and should be set when served over https.
func NewAdminPages(logger *slog.Logger, content ContentManager, auth Authenticator, pages PageRenderer, jwtConfig JWTConfig, secureCookie bool) *AdminPages {
	return &AdminPages{
		responder:    responder{logger: logger},
		content:      content,
		auth:         auth,
		pages:        pages,
		jwtConfig:    jwtConfig,
		secureCookie: secureCookie,
	}
}

func (h *AdminPages) render(w http.ResponseWriter, r *http.Request, name string, data adminPage, status int) {
	data.Sections = adminSections
	data.Authenticated = name != "admin/login"

	var buf bytes.Buffer
	if err := h.pages.Render(&buf, name, data); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to render page", slog.String("page", name), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// LoginPage handles GET /admin
func (h *AdminPages) LoginPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := SessionClaims(r, h.jwtConfig); ok {
		http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
		return
	}
	h.render(w, r, "admin/login", adminPage{Title: "Sign in"}, http.StatusOK)
}

// Login handles POST /admin/login
func (h *AdminPages) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	email := strings.TrimSpace(r.FormValue("email"))

	tokens, err := h.auth.SignIn(ctx, email, r.FormValue("password"))
	if err != nil {
		status := http.StatusUnauthorized
		flash := "Invalid email or password."
		if !errors.Is(err, ErrInvalidCredentials) {
			h.logger.ErrorContext(ctx, "login failed", slog.Any("error", err))
			status = http.StatusInternalServerError
			flash = "Sign in is unavailable, try again later."
		}
		h.render(w, r, "admin/login", adminPage{Title: "Sign in", Flash: flash, Email: email}, status)
		return
	}

	setSessionCookie(w, tokens.AccessToken, h.auth.AccessTTL(), h.secureCookie)
	http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
}

// Logout handles POST /admin/logout
func (h *AdminPages) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if userID, _, ok := UserFromContext(ctx); ok {
		if err := h.auth.RevokeTokens(ctx, userID); err != nil {
			h.logger.WarnContext(ctx, "failed to revoke tokens", slog.Any("error", err))
		}
	}
	clearSessionCookie(w, h.secureCookie)
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// Dashboard handles GET /admin/dashboard
func (h *AdminPages) Dashboard(w http.ResponseWriter, r *http.Request) {
	h.renderDashboard(w, r, "", http.StatusOK)
}

func (h *AdminPages) renderDashboard(w http.ResponseWriter, r *http.Request, flash string, status int) {
	snap := h.content.Snapshot()
	p := snap.Portfolio
	data := adminPage{
		Title:    "Dashboard",
		Active:   "dashboard",
		Flash:    flash,
		Saved:    r.URL.Query().Get("saved") == "1",
		Snapshot: snap,
		Counts: []kindCount{
			{Kind: models.KindExperience, Count: len(p.Experience), Live: snap.Live.Experience},
			{Kind: models.KindProjects, Count: len(p.Projects), Live: snap.Live.Projects},
			{Kind: models.KindSkills, Count: len(p.Skills), Live: snap.Live.Skills},
			{Kind: models.KindCertifications, Count: len(p.Certifications), Live: snap.Live.Certifications},
			{Kind: models.KindEducation, Count: len(p.Education), Live: snap.Live.Education},
		},
	}
	h.render(w, r, "admin/dashboard", data, status)
}

// Initialize handles POST /admin/initialize
func (h *AdminPages) Initialize(w http.ResponseWriter, r *http.Request) {
	if err := h.content.InitializeBackend(r.Context()); err != nil {
		h.logger.ErrorContext(r.Context(), "initialize failed", slog.Any("error", err))
		h.renderDashboard(w, r, "Initialize failed: "+err.Error(), statusFor(err))
		return
	}
	http.Redirect(w, r, "/admin/dashboard?saved=1", http.StatusSeeOther)
}

// Reload handles POST /admin/reload
func (h *AdminPages) Reload(w http.ResponseWriter, r *http.Request) {
	if err := h.content.Reload(r.Context()); err != nil {
		h.logger.ErrorContext(r.Context(), "reload failed", slog.Any("error", err))
		h.renderDashboard(w, r, "Reload failed, showing seed content: "+err.Error(), http.StatusServiceUnavailable)
		return
	}
	http.Redirect(w, r, "/admin/dashboard?saved=1", http.StatusSeeOther)
}

// Section handles GET /admin/{kind}
func (h *AdminPages) Section(w http.ResponseWriter, r *http.Request) {
	h.renderSection(w, r, r.PathValue("kind"), "", "", http.StatusOK)
}

// renderSection renders the editor of kind. A non-empty payload replaces
// the record textarea so a rejected edit is not lost.
func (h *AdminPages) renderSection(w http.ResponseWriter, r *http.Request, kind, flash, payload string, status int) {
	snap := h.content.Snapshot()
	section, err := content.Section(snap.Portfolio, kind)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	data := adminPage{
		Title:    strings.ToUpper(kind[:1]) + kind[1:],
		Active:   kind,
		Kind:     kind,
		Flash:    flash,
		Saved:    r.URL.Query().Get("saved") == "1",
		Snapshot: snap,
	}

	if models.IsSingletonKind(kind) {
		data.Record = editableJSON(section, "updatedAt")
		if payload != "" {
			data.Record = payload
		}
		if kind == models.KindProfile {
			data.Uploads = []uploadForm{profileUploads["profileImage"], profileUploads["resumeUrl"]}
		}
		h.render(w, r, "admin/singleton", data, status)
		return
	}

	data.Rows = adminRows(section)
	ids := make([]string, 0, len(data.Rows))
	for _, row := range data.Rows {
		ids = append(ids, row.ID)
	}
	data.OrderIDs = strings.Join(ids, "\n")
	data.NewRow = newRowTemplates[kind]
	if payload != "" {
		data.NewRow = payload
	}
	if up, ok := rowUploads[kind]; ok {
		data.RowUpload = &up
	}
	h.render(w, r, "admin/collection", data, status)
}

// Save handles POST /admin/{kind}: a patch for singletons, a new row for
// collections
func (h *AdminPages) Save(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	kind := r.PathValue("kind")
	payload := r.FormValue("payload")

	var err error
	switch {
	case models.IsSingletonKind(kind):
		_, err = h.content.ApplySingletonPatch(ctx, kind, []byte(payload))
	case models.IsCollectionKind(kind):
		_, err = h.content.AddRowJSON(ctx, kind, []byte(payload))
	default:
		http.NotFound(w, r)
		return
	}

	if err != nil {
		h.fail(w, r, kind, payload, err)
		return
	}
	h.saved(w, r, kind, "")
}

// UpdateRow handles POST /admin/{kind}/{id}
func (h *AdminPages) UpdateRow(w http.ResponseWriter, r *http.Request) {
	kind, id := r.PathValue("kind"), r.PathValue("id")
	payload := r.FormValue("payload")

	if _, err := h.content.UpdateRowJSON(r.Context(), kind, id, []byte(payload)); err != nil {
		h.fail(w, r, kind, "", err)
		return
	}
	h.saved(w, r, kind, id)
}

// DeleteRow handles POST /admin/{kind}/{id}/delete
func (h *AdminPages) DeleteRow(w http.ResponseWriter, r *http.Request) {
	kind := r.PathValue("kind")
	if err := h.content.DeleteRowByKind(r.Context(), kind, r.PathValue("id")); err != nil {
		h.fail(w, r, kind, "", err)
		return
	}
	h.saved(w, r, kind, "")
}

// Reorder handles POST /admin/{kind}/order with ids separated by commas
// or whitespace
func (h *AdminPages) Reorder(w http.ResponseWriter, r *http.Request) {
	kind := r.PathValue("kind")
	ids := strings.FieldsFunc(r.FormValue("ids"), func(c rune) bool {
		return c == ',' || c == ' ' || c == '\n' || c == '\r' || c == '\t'
	})

	if _, err := h.content.ReorderRowsByKind(r.Context(), kind, ids); err != nil {
		h.fail(w, r, kind, "", err)
		return
	}
	h.saved(w, r, kind, "")
}

// ProfileUpload handles POST /admin/profile/upload. The stored file URL is
// written to the profile field named by the "target" form value.
func (h *AdminPages) ProfileUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	kind := models.KindProfile

	res, err := h.upload(w, r, func(target string) (string, bool) {
		form, ok := profileUploads[target]
		return form.folder, ok
	})
	if err != nil {
		h.fail(w, r, kind, "", err)
		return
	}

	patch, err := json.Marshal(map[string]string{r.FormValue("target"): res.URL})
	if err != nil {
		h.fail(w, r, kind, "", err)
		return
	}
	if _, err := h.content.ApplySingletonPatch(ctx, kind, patch); err != nil {
		h.fail(w, r, kind, "", err)
		return
	}
	h.saved(w, r, kind, "")
}

// RowUpload handles POST /admin/{kind}/{id}/upload. Project images are
// appended to the row; a certification image replaces the current one.
func (h *AdminPages) RowUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	kind, id := r.PathValue("kind"), r.PathValue("id")
	if _, ok := rowUploads[kind]; !ok {
		http.NotFound(w, r)
		return
	}

	images, ok := storedRowImages(h.content.Snapshot(), kind, id)
	if !ok {
		h.fail(w, r, kind, "", fmt.Errorf("%w: %s row %q", storage.ErrDocumentNotFound, kind, id))
		return
	}

	res, err := h.upload(w, r, func(string) (string, bool) { return kind, true })
	if err != nil {
		h.fail(w, r, kind, "", err)
		return
	}

	var patch any
	switch kind {
	case models.KindProjects:
		patch = map[string][]string{"images": append(images, res.URL)}
	default:
		patch = map[string]string{"image": res.URL}
	}

	payload, err := json.Marshal(patch)
	if err != nil {
		h.fail(w, r, kind, "", err)
		return
	}
	if _, err := h.content.UpdateRowJSON(ctx, kind, id, payload); err != nil {
		h.fail(w, r, kind, "", err)
		return
	}
	h.saved(w, r, kind, id)
}

// storedRowImages reports whether row id of kind is stored and returns a
// copy of its images. Seed rows shown for an empty collection are not
// stored.
func storedRowImages(snap content.Snapshot, kind, id string) ([]string, bool) {
	switch kind {
	case models.KindProjects:
		if !snap.Live.Projects {
			return nil, false
		}
		for _, p := range snap.Portfolio.Projects {
			if p.ID == id {
				return append([]string{}, p.Images...), true
			}
		}
	case models.KindCertifications:
		if !snap.Live.Certifications {
			return nil, false
		}
		for _, c := range snap.Portfolio.Certifications {
			if c.ID == id {
				return nil, true
			}
		}
	}
	return nil, false
}

// upload stores the "file" part in the folder chosen by folderFor from the
// "target" form value
func (h *AdminPages) upload(w http.ResponseWriter, r *http.Request, folderFor func(target string) (string, bool)) (content.UploadResult, error) {
	file, header, err := readUpload(w, r)
	if err != nil {
		return content.UploadResult{}, err
	}
	defer func() {
		_ = file.Close()
	}()

	folder, ok := folderFor(r.FormValue("target"))
	if !ok {
		return content.UploadResult{}, fmt.Errorf("%w: unknown upload target", content.ErrInvalidPayload)
	}

	return h.content.UploadFile(r.Context(), content.UploadRequest{
		Body:     file,
		Folder:   folder,
		Filename: header.Filename,
		Size:     header.Size,
	})
}

// fail re-renders the editor of kind with err as flash message
func (h *AdminPages) fail(w http.ResponseWriter, r *http.Request, kind, payload string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "admin action failed", slog.String("kind", kind), slog.Any("error", err))
	} else {
		h.logger.WarnContext(r.Context(), "admin action rejected", slog.String("kind", kind), slog.Any("error", err))
	}
	h.renderSection(w, r, kind, "Not saved: "+err.Error(), payload, status)
}

func (h *AdminPages) saved(w http.ResponseWriter, r *http.Request, kind, anchor string) {
	target := "/admin/" + kind + "?saved=1"
	if anchor != "" {
		target += "#" + anchor
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// adminRows lists the rows of a collection section for editing
func adminRows(section any) []adminRow {
	var rows []adminRow
	add := func(id, label string, published bool, v any) {
		rows = append(rows, adminRow{
			ID:        id,
			Label:     label,
			JSON:      editableJSON(v, "id", "order", "createdAt", "updatedAt"),
			Published: published,
		})
	}

	switch s := section.(type) {
	case []models.Experience:
		for _, e := range s {
			add(e.ID, e.Role+" at "+e.Company, e.Published, e)
		}
	case []models.Project:
		for _, p := range s {
			add(p.ID, p.Title, p.Published, p)
		}
	case []models.SkillCategory:
		for _, c := range s {
			add(c.ID, c.Category, c.Published, c)
		}
	case []models.Certification:
		for _, c := range s {
			add(c.ID, c.Title, c.Published, c)
		}
	case []models.Education:
		for _, e := range s {
			add(e.ID, e.Degree, e.Published, e)
		}
	}
	return rows
}

// editableJSON renders v as indented JSON without the fields patches
// cannot carry
func editableJSON(v any, drop ...string) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return "{}"
	}
	for _, key := range drop {
		delete(fields, key)
	}
	out, err := json.MarshalIndent(fields, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(out)
}
