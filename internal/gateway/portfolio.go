package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/iudanet/portfolio/internal/models"
	"github.com/iudanet/portfolio/internal/server/storage"
)

// IsInitialized reports whether the backend holds a profile record, which
// is the marker written by InitializeWithSeed.
func (g *Gateway) IsInitialized(ctx context.Context) (bool, error) {
	_, err := g.docs.GetDocument(ctx, models.KindProfile, models.SingletonKey)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, storage.ErrDocumentNotFound) {
		return false, nil
	}
	g.logger.ErrorContext(ctx, "failed to check initialization", slog.Any("error", err))
	return false, fmt.Errorf("failed to check initialization: %w", err)
}

// InitializeWithSeed fills what the backend is missing, in one
// transaction: absent singletons get their seed record and empty
// collections get their seed rows. Existing documents are never touched,
// so running it twice is a no-op.
func (g *Gateway) InitializeWithSeed(ctx context.Context, seed models.Portfolio) error {
	now := g.now()
	err := g.docs.RunInTx(ctx, func(tx storage.DocumentTx) error {
		singletons := []struct {
			kind string
			v    any
		}{
			{models.KindSettings, seed.Settings},
			{models.KindProfile, seed.Profile},
			{models.KindAbout, seed.About},
			{models.KindContact, seed.Contact},
		}
		for _, s := range singletons {
			if err := g.seedDocument(ctx, tx, s.kind, models.SingletonKey, s.v, now); err != nil {
				return err
			}
		}

		if err := seedRows(ctx, g, tx, models.KindExperience, seed.Experience, now); err != nil {
			return err
		}
		if err := seedRows(ctx, g, tx, models.KindProjects, seed.Projects, now); err != nil {
			return err
		}
		if err := seedRows(ctx, g, tx, models.KindSkills, seed.Skills, now); err != nil {
			return err
		}
		if err := seedRows(ctx, g, tx, models.KindCertifications, seed.Certifications, now); err != nil {
			return err
		}
		return seedRows(ctx, g, tx, models.KindEducation, seed.Education, now)
	})
	if err != nil {
		g.logger.ErrorContext(ctx, "failed to initialize backend", slog.Any("error", err))
		return fmt.Errorf("failed to initialize backend: %w", err)
	}

	g.logger.InfoContext(ctx, "backend initialized with seed content")
	return nil
}

type row interface {
	RowID() string
}

// seedRows writes the seed rows into an empty collection. A collection
// holding any row is left alone, so rows the admin deleted stay deleted.
func seedRows[T row](ctx context.Context, g *Gateway, tx storage.DocumentTx, kind string, rows []T, now time.Time) error {
	n, err := tx.CountDocuments(ctx, kind)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	for order, r := range rows {
		f, err := fromRecord(r)
		if err != nil {
			return err
		}
		f.set("order", order)
		f.set("createdAt", now)
		f.set("updatedAt", now)

		data, err := g.encode(kind, f)
		if err != nil {
			return fmt.Errorf("seed %s row %s: %w", kind, r.RowID(), err)
		}
		doc := &models.Document{Collection: kind, ID: r.RowID(), Data: data, Order: order, UpdatedAt: now}
		if err := tx.PutDocument(ctx, doc); err != nil {
			return err
		}
	}
	return nil
}

func (g *Gateway) seedDocument(ctx context.Context, tx storage.DocumentTx, kind, id string, v any, now time.Time) error {
	_, err := tx.GetDocument(ctx, kind, id)
	if err == nil {
		return nil
	}
	if !errors.Is(err, storage.ErrDocumentNotFound) {
		return err
	}

	f, err := fromRecord(v)
	if err != nil {
		return err
	}
	f.set("updatedAt", now)
	data, err := g.encode(kind, f)
	if err != nil {
		return fmt.Errorf("seed %s: %w", kind, err)
	}
	return tx.PutDocument(ctx, &models.Document{Collection: kind, ID: id, Data: data, UpdatedAt: now})
}

// GetAllPortfolioData fetches every kind concurrently. Singletons missing
// from the backend are returned as zero values and reported in the
// presence map; the first failing fetch fails the whole call.
func (g *Gateway) GetAllPortfolioData(ctx context.Context) (*models.Portfolio, *models.Presence, error) {
	var (
		p        models.Portfolio
		presence models.Presence
	)

	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error { return loadSingleton(ctx, g, Settings, &p.Settings, &presence.Settings) })
	eg.Go(func() error { return loadSingleton(ctx, g, Profile, &p.Profile, &presence.Profile) })
	eg.Go(func() error { return loadSingleton(ctx, g, About, &p.About, &presence.About) })
	eg.Go(func() error { return loadSingleton(ctx, g, Contact, &p.Contact, &presence.Contact) })

	eg.Go(func() error { return loadCollection(ctx, g, Experience, &p.Experience, &presence.Experience) })
	eg.Go(func() error { return loadCollection(ctx, g, Projects, &p.Projects, &presence.Projects) })
	eg.Go(func() error { return loadCollection(ctx, g, Skills, &p.Skills, &presence.Skills) })
	eg.Go(func() error { return loadCollection(ctx, g, Certifications, &p.Certifications, &presence.Certifications) })
	eg.Go(func() error { return loadCollection(ctx, g, Education, &p.Education, &presence.Education) })

	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}
	return &p, &presence, nil
}

func loadSingleton[T, P any](ctx context.Context, g *Gateway, kind Singleton[T, P], dst *T, present *bool) error {
	v, err := GetSingleton(ctx, g, kind)
	if err != nil {
		return err
	}
	if v != nil {
		*dst = *v
		*present = true
	}
	return nil
}

func loadCollection[T, P any](ctx context.Context, g *Gateway, kind Collection[T, P], dst *[]T, present *bool) error {
	rows, err := ListCollection(ctx, g, kind)
	if err != nil {
		return err
	}
	*dst = rows
	*present = len(rows) > 0
	return nil
}
