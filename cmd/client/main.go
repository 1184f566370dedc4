package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/iudanet/portfolio/internal/client/api"
	"github.com/iudanet/portfolio/internal/client/auth"
	"github.com/iudanet/portfolio/internal/client/cli"
	"github.com/iudanet/portfolio/internal/client/iocli"
	"github.com/iudanet/portfolio/internal/client/storage/boltdb"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var boltStorage *boltdb.Storage
	root := cli.NewRootCommand(versionString(), func(server, db string) (*cli.Cli, func() error, error) {
		var err error
		boltStorage, err = boltdb.New(ctx, db)
		if err != nil {
			return nil, nil, err
		}

		apiClient := api.NewClient(server)
		session := auth.NewService(apiClient, boltStorage, logger)
		return cli.New(apiClient, session, iocli.NewStdio()), nil, nil
	})

	err := root.ExecuteContext(ctx)
	if boltStorage != nil {
		if closeErr := boltStorage.Close(); closeErr != nil {
			logger.Error("failed to close database", "error", closeErr)
		}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func versionString() string {
	return fmt.Sprintf("%s (built %s, commit %s)", Version, BuildDate, GitCommit)
}
