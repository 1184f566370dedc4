package server

import (
	"net/http"

	"github.com/iudanet/portfolio/internal/server/handlers"
	"github.com/iudanet/portfolio/internal/server/middleware"
)

// Handlers groups everything the router dispatches to
type Handlers struct {
	Public   *handlers.PublicHandler
	Auth     *handlers.AuthHandler
	AdminAPI *handlers.AdminAPIHandler
	Admin    *handlers.AdminPages
	Health   *handlers.HealthHandler
}

// Guards are the middlewares protecting routes
type Guards struct {
	// APIAuth checks the Bearer access token of /api/v1/admin
	APIAuth func(http.Handler) http.Handler
	// Session checks the admin console cookie
	Session func(http.Handler) http.Handler
	// LoginLimit throttles credential checks
	LoginLimit func(http.Handler) http.Handler
}

// NewRouter registers every route on a new mux
func NewRouter(h Handlers, g Guards) *http.ServeMux {
	mux := http.NewServeMux()

	// public pages
	mux.HandleFunc("GET /{$}", h.Public.Home)
	mux.HandleFunc("GET /about", h.Public.About)
	mux.HandleFunc("GET /experience", h.Public.Experience)
	mux.HandleFunc("GET /projects", h.Public.Projects)
	mux.HandleFunc("GET /skills", h.Public.Skills)
	mux.HandleFunc("GET /certifications", h.Public.Certifications)
	mux.HandleFunc("GET /contact", h.Public.Contact)
	mux.HandleFunc("GET /resume", h.Public.Resume)
	mux.HandleFunc("GET /resume.pdf", h.Public.ResumePDF)
	mux.HandleFunc("GET /files/{path...}", h.Public.Files)
	mux.HandleFunc("GET /", h.Public.NotFound)

	mux.HandleFunc("GET /api/v1/portfolio", h.Public.Portfolio)
	mux.HandleFunc("GET /api/v1/health", h.Health.Health)

	// token auth
	mux.Handle("POST /api/v1/auth/login", g.LoginLimit(http.HandlerFunc(h.Auth.Login)))
	mux.HandleFunc("POST /api/v1/auth/refresh", h.Auth.Refresh)
	mux.HandleFunc("POST /api/v1/auth/logout", h.Auth.Logout)

	// JSON admin API
	api := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, g.APIAuth(fn))
	}
	api("GET /api/v1/admin/portfolio", h.AdminAPI.Portfolio)
	api("POST /api/v1/admin/reload", h.AdminAPI.Reload)
	api("POST /api/v1/admin/initialize", h.AdminAPI.Initialize)
	api("PATCH /api/v1/admin/singletons/{kind}", h.AdminAPI.PatchSingleton)
	api("POST /api/v1/admin/collections/{kind}", h.AdminAPI.AddRow)
	api("PUT /api/v1/admin/collections/{kind}/order", h.AdminAPI.Reorder)
	api("PATCH /api/v1/admin/collections/{kind}/{id}", h.AdminAPI.UpdateRow)
	api("DELETE /api/v1/admin/collections/{kind}/{id}", h.AdminAPI.DeleteRow)
	api("POST /api/v1/admin/uploads", h.AdminAPI.Upload)
	api("DELETE /api/v1/admin/uploads", h.AdminAPI.DeleteUpload)

	// HTML admin console
	mux.HandleFunc("GET /admin", h.Admin.LoginPage)
	mux.Handle("POST /admin/login", g.LoginLimit(http.HandlerFunc(h.Admin.Login)))

	admin := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, g.Session(fn))
	}
	admin("POST /admin/logout", h.Admin.Logout)
	admin("GET /admin/dashboard", h.Admin.Dashboard)
	admin("POST /admin/initialize", h.Admin.Initialize)
	admin("POST /admin/reload", h.Admin.Reload)
	admin("POST /admin/profile/upload", h.Admin.ProfileUpload)
	admin("GET /admin/{kind}", h.Admin.Section)
	admin("POST /admin/{kind}", h.Admin.Save)
	admin("POST /admin/{kind}/order", h.Admin.Reorder)
	admin("POST /admin/{kind}/{id}", h.Admin.UpdateRow)
	admin("POST /admin/{kind}/{id}/delete", h.Admin.DeleteRow)
	admin("POST /admin/{kind}/{id}/upload", h.Admin.RowUpload)

	return mux
}

// guardsFor builds the production guards
func guardsFor(s *Server) Guards {
	return Guards{
		APIAuth:    middleware.AuthMiddleware(s.logger, s.jwtConfig),
		Session:    middleware.SessionGate(s.logger, s.jwtConfig),
		LoginLimit: s.limiter.Middleware,
	}
}
