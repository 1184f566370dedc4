// Package content owns the in-memory portfolio state served to pages and
// the mutators that change it. Every mutation writes through the gateway
// first and patches local state only after the write succeeded.
package content

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/iudanet/portfolio/internal/gateway"
	"github.com/iudanet/portfolio/internal/models"
	"github.com/iudanet/portfolio/internal/seed"
)

// Status is the load state of the service.
type Status string

const (
	StatusUninitialized  Status = "uninitialized"
	StatusLoading        Status = "loading"
	StatusReady          Status = "ready"
	StatusReadyWithError Status = "ready-with-error"
)

// Config holds service options
type Config struct {
	// CallTimeout bounds every gateway call when > 0
	CallTimeout time.Duration
}

// Snapshot is a point-in-time copy of the service state.
type Snapshot struct {
	LoadedAt           time.Time        `json:"loadedAt"`
	Status             Status           `json:"status"`
	Error              string           `json:"error,omitempty"`
	Portfolio          models.Portfolio `json:"portfolio"`
	Live               models.Presence  `json:"live"`
	BackendInitialized bool             `json:"backendInitialized"`
}

// Service aggregates persisted content with seed fallbacks.
type Service struct {
	loadedAt    time.Time
	gw          *gateway.Gateway
	logger      *slog.Logger
	lastErr     error
	status      Status
	state       models.Portfolio
	live        models.Presence
	cfg         Config
	mu          sync.RWMutex
	initialized bool
}

// NewService creates a service showing seed content until Load is called
func NewService(logger *slog.Logger, gw *gateway.Gateway, cfg Config) *Service {
	return &Service{
		gw:     gw,
		logger: logger,
		cfg:    cfg,
		status: StatusUninitialized,
		state:  seed.Default(),
	}
}

// callCtx applies the per-call timeout
func (s *Service) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.CallTimeout > 0 {
		return context.WithTimeout(ctx, s.cfg.CallTimeout)
	}
	return ctx, func() {}
}

// Load fetches all content from the backend. Fields the backend does not
// hold fall back to seed content field by field. When the backend is not
// initialized, or any read fails, the whole state is the seed and the
// failure is recorded in the snapshot.
func (s *Service) Load(ctx context.Context) error {
	s.mu.Lock()
	s.status = StatusLoading
	s.mu.Unlock()

	state, live, initialized, err := s.fetch(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.loadedAt = time.Now().UTC()
	s.initialized = initialized
	s.lastErr = err
	s.state = state
	s.live = live
	if err != nil {
		s.status = StatusReadyWithError
		s.logger.ErrorContext(ctx, "failed to load content, serving seed", slog.Any("error", err))
		return err
	}

	s.status = StatusReady
	s.logger.InfoContext(ctx, "content loaded",
		slog.Bool("backend_initialized", initialized),
		slog.Any("live", live),
	)
	return nil
}

// Reload is Load under the name the admin surface uses
func (s *Service) Reload(ctx context.Context) error {
	return s.Load(ctx)
}

func (s *Service) fetch(ctx context.Context) (models.Portfolio, models.Presence, bool, error) {
	ctx, cancel := s.callCtx(ctx)
	defer cancel()

	initialized, err := s.gw.IsInitialized(ctx)
	if err != nil {
		return seed.Default(), models.Presence{}, false, err
	}
	if !initialized {
		return seed.Default(), models.Presence{}, false, nil
	}

	data, presence, err := s.gw.GetAllPortfolioData(ctx)
	if err != nil {
		return seed.Default(), models.Presence{}, true, err
	}
	return withFallback(*data, *presence), *presence, true, nil
}

// withFallback replaces every field that is absent from the backend with
// its seed value
func withFallback(data models.Portfolio, presence models.Presence) models.Portfolio {
	def := seed.Default()
	if !presence.Settings {
		data.Settings = def.Settings
	}
	if !presence.Profile {
		data.Profile = def.Profile
	}
	if !presence.About {
		data.About = def.About
	}
	if !presence.Contact {
		data.Contact = def.Contact
	}
	if !presence.Experience {
		data.Experience = def.Experience
	}
	if !presence.Projects {
		data.Projects = def.Projects
	}
	if !presence.Skills {
		data.Skills = def.Skills
	}
	if !presence.Certifications {
		data.Certifications = def.Certifications
	}
	if !presence.Education {
		data.Education = def.Education
	}
	return data
}

// Snapshot returns a deep copy of the current state
func (s *Service) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		LoadedAt:           s.loadedAt,
		Status:             s.status,
		Portfolio:          s.state.Clone(),
		Live:               s.live,
		BackendInitialized: s.initialized,
	}
	if s.lastErr != nil {
		snap.Error = s.lastErr.Error()
	}
	return snap
}

// Published returns the content visible to the public: unpublished
// singletons are blanked and unpublished rows dropped.
func (s *Service) Published() models.Portfolio {
	s.mu.RLock()
	p := s.state.Clone()
	s.mu.RUnlock()

	if !p.Profile.Published {
		p.Profile = models.Profile{}
	}
	if !p.About.Published {
		p.About = models.About{}
	}
	if !p.Contact.Published {
		p.Contact = models.Contact{}
	}
	p.Experience = published(p.Experience, func(r models.Experience) bool { return r.Published })
	p.Projects = published(p.Projects, func(r models.Project) bool { return r.Published })
	p.Skills = published(p.Skills, func(r models.SkillCategory) bool { return r.Published })
	p.Certifications = published(p.Certifications, func(r models.Certification) bool { return r.Published })
	p.Education = published(p.Education, func(r models.Education) bool { return r.Published })
	return p
}

func published[T any](rows []T, visible func(T) bool) []T {
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		if visible(r) {
			out = append(out, r)
		}
	}
	return out
}

// InitializeBackend writes the seed content into an empty backend and
// reloads
func (s *Service) InitializeBackend(ctx context.Context) error {
	callCtx, cancel := s.callCtx(ctx)
	err := s.gw.InitializeWithSeed(callCtx, seed.Default())
	cancel()
	if err != nil {
		s.recordError(err)
		return err
	}
	return s.Load(ctx)
}

// recordError keeps the last failure for the snapshot. Content already in
// memory stays served.
func (s *Service) recordError(err error) {
	s.mu.Lock()
	s.lastErr = err
	s.status = StatusReadyWithError
	s.mu.Unlock()
}

// commit patches local state after a successful write
func (s *Service) commit(patch func(p *models.Portfolio, live *models.Presence)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	patch(&s.state, &s.live)
}
