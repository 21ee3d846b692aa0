package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/groan-lab/groan/internal/builder"
	corecfg "github.com/groan-lab/groan/internal/core/config"
	"github.com/groan-lab/groan/internal/fetcher"
	"github.com/groan-lab/groan/internal/groups"
	"github.com/groan-lab/groan/internal/mediawiki"
	"github.com/groan-lab/groan/internal/projection"
	"github.com/groan-lab/groan/internal/server"
)

const usage = `usage: groan [-config groan.yaml] <command> [flags] [title...]

commands:
  fetch   download revision histories of the tracked titles
  build   compute monthly average-size series from stored revisions
  serve   run the read-only HTTP API

With titles given, fetch and build act on those instead of the groups file.
`

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	flag.Usage = func() { fmt.Fprint(flag.CommandLine.Output(), usage) }
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	// 0. Initialize Logger
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	// 1. Load Configuration
	cfg, err := corecfg.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Log.SlogLevel()})).
		With("run_id", uuid.NewString())
	slog.SetDefault(logger)
	slog.Debug("Loaded config", "config", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, flag.Arg(0), flag.Args()[1:]); err != nil {
		slog.Error("Command failed", "command", flag.Arg(0), "error", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *corecfg.Config, command string, args []string) error {
	switch command {
	case "fetch":
		return runFetch(ctx, cfg, args)
	case "build":
		return runBuild(ctx, cfg, args)
	case "serve":
		return runServe(ctx, cfg, args)
	}
	return fmt.Errorf("unknown command %q\n\n%s", command, usage)
}

// loadGroups returns one group per title argument, or the configured groups
// file when no titles are given.
func loadGroups(cfg *corecfg.Config, titles []string) ([]groups.Group, error) {
	if len(titles) > 0 {
		gs := make([]groups.Group, len(titles))
		for i, t := range titles {
			gs[i] = groups.Group{t}
		}
		return gs, nil
	}

	gs, err := groups.Load(cfg.Input.GroupsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load groups: %w", err)
	}
	slog.Info("Loaded groups", "file", cfg.Input.GroupsFile, "groups", len(gs))
	return gs, nil
}

func runFetch(ctx context.Context, cfg *corecfg.Config, args []string) error {
	fs := flag.NewFlagSet("fetch", flag.ContinueOnError)
	force := fs.Bool("force", false, "Refetch titles that are already stored")
	if err := fs.Parse(args); err != nil {
		return err
	}

	gs, err := loadGroups(cfg, fs.Args())
	if err != nil {
		return err
	}

	st, err := openStores(cfg.Storage)
	if err != nil {
		return err
	}
	defer st.close()

	client, err := mediawiki.NewClient(mediawiki.ClientConfig{
		APIURL:    cfg.API.URL,
		UserAgent: cfg.API.UserAgent,
		PageLimit: cfg.API.PageLimit,
		Timeout:   cfg.API.RequestTimeout,
	})
	if err != nil {
		return err
	}

	svc := fetcher.NewService(mediawiki.NewRevisionSource(client, cfg.API.RequestDelay), st.revisions)

	start := time.Now()
	sum, err := svc.FetchGroups(ctx, gs, *force)
	slog.Info("Fetch finished",
		"fetched", sum.Fetched,
		"skipped", sum.Skipped,
		"failed", sum.Failed,
		"elapsed", time.Since(start).Round(100*time.Millisecond))
	return err
}

func runBuild(ctx context.Context, cfg *corecfg.Config, args []string) error {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	workers := fs.Int("workers", cfg.Builder.WorkerCount, "Titles built in parallel")
	if err := fs.Parse(args); err != nil {
		return err
	}

	gs, err := loadGroups(cfg, fs.Args())
	if err != nil {
		return err
	}

	st, err := openStores(cfg.Storage)
	if err != nil {
		return err
	}
	defer st.close()

	start := time.Now()
	sum, err := builder.NewService(st.revisions, st.series, *workers).BuildGroups(ctx, gs)
	slog.Info("Build finished",
		"built", sum.Built,
		"failed", sum.Failed,
		"elapsed", time.Since(start).Round(100*time.Millisecond))
	return err
}

func runServe(ctx context.Context, cfg *corecfg.Config, args []string) error {
	if len(args) > 0 {
		return errors.New("serve takes no arguments")
	}

	gs, err := loadGroups(cfg, nil)
	if err != nil {
		return err
	}

	st, err := openStores(cfg.Storage)
	if err != nil {
		return err
	}
	defer st.close()

	projectionSvc := projection.NewService(st.revisions, st.series, gs)

	srv := server.New(fmtAddr(cfg.Server.Host, cfg.Server.Port), cfg.Server.Mode, st.checks)
	projectionSvc.RegisterRoutes(srv.Engine)

	// HTTP server blocks until ctx is cancelled.
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	slog.Info("Shutdown complete")
	return nil
}

func fmtAddr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}
