package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/viper"

	"github.com/bgdnvk/hrassist/internal/agent"
	"github.com/bgdnvk/hrassist/internal/agent/learning"
	"github.com/bgdnvk/hrassist/internal/agent/memory"
	"github.com/bgdnvk/hrassist/internal/agent/respond"
	"github.com/bgdnvk/hrassist/internal/ai"
	"github.com/bgdnvk/hrassist/internal/config"
	"github.com/bgdnvk/hrassist/internal/events"
	ghclient "github.com/bgdnvk/hrassist/internal/github"
	"github.com/bgdnvk/hrassist/internal/hrdata"
	"github.com/bgdnvk/hrassist/internal/identity"
	"github.com/bgdnvk/hrassist/internal/metrics"
	"github.com/bgdnvk/hrassist/internal/policy"
)

// app holds everything a command needs, built once from configuration.
type app struct {
	cfg      config.Config
	logger   *slog.Logger
	engine   *agent.Engine
	repo     *learning.Repository
	library  *policy.Library
	registry *prometheus.Registry
	verifier *identity.Verifier
	closers  []func() error
}

type buildOptions struct {
	jsonLogs  bool
	logOutput io.Writer
	// withoutLearning skips the learning database, for commands that must
	// work without one.
	withoutLearning bool
}

func newLogger(debug, jsonLogs bool, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if jsonLogs {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

func buildApp(ctx context.Context, opts buildOptions) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	a := &app{
		cfg:      cfg,
		logger:   newLogger(cfg.Debug, opts.jsonLogs, opts.logOutput),
		registry: prometheus.NewRegistry(),
	}
	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	engineOpts := []agent.Option{
		agent.WithLogger(a.logger),
		agent.WithObserver(metrics.New(a.registry)),
	}

	sessions, err := a.openSessions(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	if !opts.withoutLearning {
		repo, err := a.openLearning(ctx)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.repo = repo
		engineOpts = append(engineOpts, agent.WithLearning(repo))
	}

	if cfg.Assistant.TemplatesFile != "" {
		bundles, err := respond.LoadBundles(cfg.Assistant.TemplatesFile)
		if err != nil {
			a.Close()
			return nil, err
		}
		engineOpts = append(engineOpts, agent.WithComposer(respond.NewComposer(bundles, nil)))
	}

	library, err := a.openPolicyLibrary(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	if library != nil {
		a.library = library
		engineOpts = append(engineOpts, agent.WithPolicy(library))
	}

	if cfg.AI.Enabled {
		llm, err := ai.NewClient(ctx, ai.ConfigFromViper(viper.GetViper(), cfg.AI.DefaultProvider), a.logger)
		if err != nil {
			a.logger.Warn("language model disabled", "error", err)
		} else {
			engineOpts = append(engineOpts, agent.WithLLM(llm))
		}
	}

	if cfg.HRData.DSN != "" {
		dir, err := a.openRecords(ctx)
		if err != nil {
			a.Close()
			return nil, err
		}
		engineOpts = append(engineOpts, agent.WithRecords(dir))
	}

	if len(cfg.Events.Brokers) > 0 {
		pub := events.NewPublisher(events.Config{
			Brokers:      cfg.Events.Brokers,
			Topic:        cfg.Events.Topic,
			WriteTimeout: cfg.Events.WriteTimeout,
		}, a.logger)
		a.closers = append(a.closers, pub.Close)
		engineOpts = append(engineOpts, agent.WithPublisher(pub))
	}

	if cfg.Auth.JWTSecret != "" {
		a.verifier = identity.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	}

	a.engine = agent.New(sessions, engineOpts...)
	return a, nil
}

func (a *app) openSessions(ctx context.Context) (memory.Store, error) {
	switch a.cfg.Session.Backend {
	case "badger":
		store, err := memory.OpenBadger(memory.BadgerConfig{
			Path:     a.cfg.Session.BadgerPath,
			InMemory: a.cfg.Session.BadgerPath == "",
			TTL:      a.cfg.Session.TTL,
			Logger:   a.logger,
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, store.Close)
		return store, nil
	default:
		store := memory.New(a.cfg.Session.TTL)
		go store.RunSweeper(ctx, a.cfg.Session.SweepInterval)
		return store, nil
	}
}

func (a *app) openLearning(ctx context.Context) (*learning.Repository, error) {
	dialect, err := learning.ParseDialect(a.cfg.Database.Driver)
	if err != nil {
		return nil, err
	}
	db, err := learning.Open(ctx, dialect, a.cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, db.Close)

	repo := learning.NewRepository(db, dialect,
		learning.WithRetry(learning.Retry{Retries: a.cfg.Database.Retries, Backoff: a.cfg.Database.Backoff}),
		learning.WithLogger(a.logger),
	)
	if err := repo.Migrate(ctx); err != nil {
		return nil, err
	}
	return repo, nil
}

func (a *app) openPolicyLibrary(ctx context.Context) (*policy.Library, error) {
	pc := a.cfg.Policy
	var source policy.Source
	switch pc.Source {
	case "github":
		if pc.GitHub.BaseURL != "" {
			client, err := ghclient.NewClientWithBaseURL(pc.GitHub.Token, pc.GitHub.Owner, pc.GitHub.Repo, pc.GitHub.Ref, pc.GitHub.BaseURL)
			if err != nil {
				return nil, err
			}
			source = client
		} else {
			source = ghclient.NewClient(pc.GitHub.Token, pc.GitHub.Owner, pc.GitHub.Repo, pc.GitHub.Ref)
		}
	case "s3":
		s3src, err := policy.NewS3Source(ctx, policy.S3Config{
			Bucket:          pc.S3.Bucket,
			Prefix:          pc.S3.Prefix,
			Region:          pc.S3.Region,
			Endpoint:        pc.S3.Endpoint,
			AccessKeyID:     pc.S3.AccessKeyID,
			SecretAccessKey: pc.S3.SecretAccessKey,
			LinkTTL:         pc.S3.LinkTTL,
		})
		if err != nil {
			return nil, err
		}
		source = s3src
	case "gcs":
		gcs, err := policy.NewGCSSource(ctx, policy.GCSConfig{
			Bucket:          pc.GCS.Bucket,
			Prefix:          pc.GCS.Prefix,
			CredentialsFile: pc.GCS.CredentialsFile,
			Endpoint:        pc.GCS.Endpoint,
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, gcs.Close)
		source = gcs
	default:
		return nil, nil
	}
	return policy.NewLibrary(source, pc.Paths, pc.CacheTTL, a.logger), nil
}

func (a *app) openRecords(ctx context.Context) (*hrdata.Directory, error) {
	dialect, err := learning.ParseDialect(a.cfg.HRData.Driver)
	if err != nil {
		return nil, err
	}
	db, err := learning.Open(ctx, dialect, a.cfg.HRData.DSN)
	if err != nil {
		return nil, fmt.Errorf("hr records database: %w", err)
	}
	a.closers = append(a.closers, db.Close)
	return hrdata.NewDirectory(db, a.cfg.HRData.Queries, a.logger), nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && a.logger != nil {
			a.logger.Warn("close failed", "error", err)
		}
	}
	a.closers = nil
}
