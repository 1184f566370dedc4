package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iudanet/portfolio/internal/config"
	"github.com/iudanet/portfolio/internal/content"
	"github.com/iudanet/portfolio/internal/gateway"
	"github.com/iudanet/portfolio/internal/render"
	"github.com/iudanet/portfolio/internal/server"
	"github.com/iudanet/portfolio/internal/server/handlers"
	"github.com/iudanet/portfolio/internal/server/storage"
	"github.com/iudanet/portfolio/internal/server/storage/boltdb"
	"github.com/iudanet/portfolio/internal/server/storage/gcs"
	"github.com/iudanet/portfolio/internal/server/storage/postgres"
	"github.com/iudanet/portfolio/internal/server/storage/sqlite"
	"github.com/iudanet/portfolio/internal/validation"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

const tokenPurgeInterval = time.Hour

// documentBackend is a database holding documents, users and tokens
type documentBackend interface {
	storage.DocumentStore
	storage.UserStorage
	storage.TokenStorage
	io.Closer
}

// objectBackend is a file store
type objectBackend interface {
	storage.ObjectStore
	io.Closer
}

func main() {
	fs := flag.NewFlagSet("portfolio-server", flag.ExitOnError)
	showVersion := fs.Bool("version", false, "Show version information")
	flags := config.RegisterFlags(fs)
	_ = fs.Parse(os.Args[1:])

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	cfg, err := config.Load(flags.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	flags.Apply(fs, cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration:\n%v\n", err)
		os.Exit(1)
	}

	logger := cfg.Log.NewLogger()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped", slog.Any("error", err))
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	docs, err := openDocuments(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer closeLogged(logger, "document store", docs)

	objects, err := openObjects(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeLogged(logger, "object store", objects)

	if cfg.Admin.Email != "" {
		if err := server.EnsureAdmin(ctx, logger, docs, cfg.Admin.Email, cfg.Admin.Password); err != nil {
			return err
		}
	} else {
		logger.Warn("no admin configured, set admin.email and admin.password to enable the console")
	}

	validator, err := validation.NewDocumentValidator()
	if err != nil {
		return fmt.Errorf("failed to load schemas: %w", err)
	}

	svc := content.NewService(logger, gateway.New(logger, docs, objects, validator), content.Config{
		CallTimeout: cfg.Content.CallTimeout,
	})
	if err := svc.Load(ctx); err != nil {
		logger.Warn("serving seed content", slog.Any("error", err))
	}

	opts := server.Options{
		Logger:  logger,
		Content: svc,
		Users:   docs,
		Tokens:  docs,
		Addr:    cfg.Server.Addr,
		BaseURL: cfg.Server.BaseURL,
		Version: Version,
		JWT: handlers.JWTConfig{
			Secret:          []byte(cfg.Auth.JWTSecret),
			AccessTokenTTL:  cfg.Auth.AccessTTL,
			RefreshTokenTTL: cfg.Auth.RefreshTTL,
		},
		LoginPerMinute: cfg.RateLimit.LoginPerMinute,
	}
	if reader, ok := objects.(storage.ObjectReader); ok {
		opts.Objects = reader
	}
	if cfg.Render.Enabled {
		opts.PDF = render.NewChromedpRenderer(logger, cfg.Render.ChromePath)
	}

	srv, err := server.New(opts)
	if err != nil {
		return err
	}

	go server.PurgeExpiredTokens(ctx, logger, docs, tokenPurgeInterval)

	return srv.Run(ctx)
}

func openDocuments(ctx context.Context, cfg config.StorageConfig) (documentBackend, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return postgres.New(ctx, cfg.PostgresDSN)
	case config.DriverSQLite:
		return sqlite.New(ctx, cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

func openObjects(ctx context.Context, cfg *config.Config) (objectBackend, error) {
	switch cfg.Objects.Driver {
	case config.DriverGCS:
		return gcs.New(ctx, gcs.Config{
			Bucket:          cfg.Objects.GCSBucket,
			PublicBaseURL:   cfg.Objects.GCSPublicBaseURL,
			CredentialsFile: cfg.Objects.GCSCredentialsFile,
			EmulatorHost:    os.Getenv("STORAGE_EMULATOR_HOST"),
		})
	case config.DriverBolt:
		return boltdb.New(ctx, cfg.Objects.BoltPath, cfg.Server.BaseURL)
	default:
		return nil, fmt.Errorf("unknown objects driver %q", cfg.Objects.Driver)
	}
}

func closeLogged(logger *slog.Logger, name string, c io.Closer) {
	if err := c.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		logger.Error("failed to close "+name, slog.Any("error", err))
	}
}

func printVersion() {
	fmt.Printf("Portfolio Server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
