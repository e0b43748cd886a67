package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/roach88/tally/internal/classifier"
	"github.com/roach88/tally/internal/compose"
	"github.com/roach88/tally/internal/config"
	"github.com/roach88/tally/internal/executor"
	"github.com/roach88/tally/internal/ledger"
	"github.com/roach88/tally/internal/orchestrator"
	"github.com/roach88/tally/internal/pending"
)

// app is the wired pipeline a command runs against.
type app struct {
	cfg      config.Config
	locale   string
	ledger   *ledger.SQLStore
	pending  pending.Store
	sweeper  *pending.Sweeper
	composer *compose.Composer
	orch     *orchestrator.Orchestrator
	logger   *slog.Logger
	redis    *redis.Client
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func (o *RootOptions) loadConfig() (config.Config, error) {
	if o.ConfigPath == "" {
		return config.Default(), nil
	}
	return config.Load(o.ConfigPath)
}

// openApp loads config and connects every collaborator. The caller must
// Close the result.
func openApp(ctx context.Context, o *RootOptions, logOut io.Writer) (*app, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	logger := newLogger(logOut, o.Verbose)

	a := &app{cfg: cfg, logger: logger, locale: o.Locale}
	if a.locale == "" {
		a.locale = cfg.DefaultLocale
	}

	a.ledger, err = ledger.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open ledger", err)
	}

	if err := a.openPending(ctx); err != nil {
		a.Close()
		return nil, err
	}

	cls := o.Classifier
	if cls == nil {
		cls, err = classifier.NewHTTPClient(classifier.HTTPConfig{
			Endpoint:      cfg.Classifier.Endpoint,
			Model:         cfg.Classifier.Model,
			APIKey:        cfg.Classifier.APIKey(),
			Timeout:       cfg.Classifier.Timeout,
			RatePerSecond: cfg.Classifier.RatePerSecond,
			Burst:         cfg.Classifier.Burst,
		}, logger)
		if err != nil {
			a.Close()
			return nil, WrapExitError(ExitCommandError, "failed to create classifier", err)
		}
	}

	a.composer, err = compose.New()
	if err != nil {
		a.Close()
		return nil, WrapExitError(ExitCommandError, "failed to load messages", err)
	}

	orchOpts := []orchestrator.Option{
		orchestrator.WithLogger(logger),
		orchestrator.WithJournal(a.ledger),
	}
	if o.IDs != nil {
		orchOpts = append(orchOpts, orchestrator.WithIDGenerator(o.IDs))
	}
	a.orch = orchestrator.New(cls, a.pending, a.ledger, executor.New(a.ledger, logger), a.composer, orchOpts...)
	a.sweeper = pending.NewSweeper(a.pending, cfg.Pending.SweepInterval, pending.WithSweepLogger(logger))

	logger.Debug("pipeline ready",
		"driver", cfg.Database.Driver,
		"pending", cfg.Pending.Backend,
		"ttl", cfg.Pending.TTL,
		"locale", a.locale,
	)
	return a, nil
}

func (a *app) openPending(ctx context.Context) error {
	p := a.cfg.Pending
	switch p.Backend {
	case config.BackendRedis:
		a.redis = redis.NewClient(&redis.Options{
			Addr:     p.Redis.Addr,
			Password: p.Redis.Password,
			DB:       p.Redis.DB,
		})
		if err := a.redis.Ping(ctx).Err(); err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to reach redis at %s", p.Redis.Addr), err)
		}
		store, err := pending.NewRedisStore(a.redis, p.TTL, pending.WithRedisPrefix(p.Redis.Prefix))
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to create pending store", err)
		}
		a.pending = store
	default:
		a.pending = pending.NewMemoryStore(p.TTL)
	}
	return nil
}

// ephemeral reports whether staged actions die with the process.
func (a *app) ephemeral() bool {
	return a.cfg.Pending.Backend != config.BackendRedis
}

// Close releases the ledger and redis connections.
func (a *app) Close() error {
	var errs []error
	if a.ledger != nil {
		errs = append(errs, a.ledger.Close())
	}
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	return errors.Join(errs...)
}
