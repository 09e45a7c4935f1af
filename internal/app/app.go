// Package app assembles the VerseCue service from its parts: transcript
// source, detection pipeline, verse store, learned-alias persistence, and
// the metrics/health HTTP server.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"

	"github.com/versecue/versecue/internal/bible"
	"github.com/versecue/versecue/internal/books"
	"github.com/versecue/versecue/internal/config"
	"github.com/versecue/versecue/internal/detect"
	"github.com/versecue/versecue/internal/engine"
	"github.com/versecue/versecue/internal/health"
	"github.com/versecue/versecue/internal/observe"
	"github.com/versecue/versecue/internal/source"
)

// App owns the assembled service. Construct with [New], drive with [Run],
// release resources with [Shutdown].
type App struct {
	cfg     *config.Config
	log     *slog.Logger
	metrics *observe.Metrics
	out     io.Writer
	level   *slog.LevelVar

	mu       sync.RWMutex
	eng      *engine.Engine
	canon    *books.Canon
	learned  books.LearnedStore
	store    bible.Store
	src      source.Source
	sqlite   *bible.SQLiteStore
	pool     *pgxpool.Pool
	httpSrv  *http.Server
}

// Option configures an [App].
type Option func(*App)

// WithSource overrides the transcript source built from the config. Tests
// use this to feed scripted transcripts.
func WithSource(s source.Source) Option {
	return func(a *App) {
		a.src = s
	}
}

// WithOutput sets where detection JSON lines are written.
// Default: os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(a *App) {
		a.out = w
	}
}

// WithMetrics sets the metrics instance. Default: [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(a *App) {
		a.metrics = m
	}
}

// WithLogger sets the application logger. Default: [slog.Default].
func WithLogger(log *slog.Logger) Option {
	return func(a *App) {
		a.log = log
	}
}

// WithLevelVar hands the app the level var behind its logger so that config
// reloads can adjust verbosity at runtime.
func WithLevelVar(v *slog.LevelVar) Option {
	return func(a *App) {
		a.level = v
	}
}

// New builds the service from cfg. The caller is expected to have installed
// the OTel providers (see observe.InitProvider) beforehand.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	a := &App{
		cfg: cfg,
		log: slog.Default(),
		out: os.Stdout,
	}
	for _, o := range opts {
		o(a)
	}
	if a.metrics == nil {
		a.metrics = observe.DefaultMetrics()
	}

	canon, err := books.LoadCanon()
	if err != nil {
		return nil, fmt.Errorf("app: load canon: %w", err)
	}
	a.canon = canon

	if err := a.buildLearnedStore(ctx); err != nil {
		return nil, err
	}
	if err := a.buildVerseStore(ctx); err != nil {
		return nil, err
	}
	if err := a.buildEngine(ctx, cfg.Detection); err != nil {
		return nil, err
	}
	if a.src == nil {
		if err := a.buildSource(); err != nil {
			return nil, err
		}
	}
	a.buildHTTPServer()

	return a, nil
}

// Run consumes the transcript source until it is exhausted or ctx is done,
// writing each detection as a JSON line. The metrics server runs alongside
// when configured.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	if a.httpSrv != nil {
		g.Go(func() error {
			a.log.Info("metrics server listening", "addr", a.httpSrv.Addr)
			if err := a.httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("app: metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return a.httpSrv.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		return a.consume(ctx)
	})

	return g.Wait()
}

// Teach records an operator-taught alias through the current engine.
func (a *App) Teach(ctx context.Context, alias, canonical string) error {
	return a.engine().Teach(ctx, alias, canonical)
}

// SetLogLevel applies a hot-reloaded log level.
func (a *App) SetLogLevel(level config.LogLevel) {
	if a.level == nil {
		return
	}
	switch level {
	case config.LogDebug:
		a.level.Set(slog.LevelDebug)
	case config.LogWarn:
		a.level.Set(slog.LevelWarn)
	case config.LogError:
		a.level.Set(slog.LevelError)
	default:
		a.level.Set(slog.LevelInfo)
	}
	a.log.Info("log level changed", "level", level)
}

// ApplyDetection rebuilds the pipeline with hot-reloaded detection settings.
// Taught aliases survive the rebuild via the learned store.
func (a *App) ApplyDetection(ctx context.Context, det config.DetectionConfig) error {
	if err := a.buildEngine(ctx, det); err != nil {
		return err
	}
	a.log.Info("detection settings reloaded",
		"debounce_seconds", det.DebounceSeconds,
		"max_chapter", det.MaxChapter,
		"max_edit_distance", det.MaxEditDistance,
	)
	return nil
}

// Shutdown releases the app's resources. Safe to call after Run returns.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if a.src != nil {
		if err := a.src.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.sqlite != nil {
		if err := a.sqlite.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
	return errors.Join(errs...)
}

// consume is the main detection loop.
func (a *App) consume(ctx context.Context) error {
	enc := json.NewEncoder(a.out)
	for {
		line, err := a.src.Read(ctx)
		if errors.Is(err, io.EOF) {
			a.log.Info("transcript source exhausted")
			return nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("app: read transcript: %w", err)
		}
		a.metrics.TranscriptLines.Add(ctx, 1,
			metric.WithAttributes(observe.Attr("source", a.src.Kind())))

		detections, err := a.engine().Detect(ctx, line)
		if err != nil {
			// Verse-store failures should not kill the loop; the next
			// fragment may succeed.
			a.log.Error("detection failed", "err", err)
			continue
		}
		for _, d := range detections {
			a.log.Info("reference detected",
				"reference", d.Reference.Display(),
				"pattern", string(d.Pattern),
				"confidence", d.Confidence,
			)
			if err := enc.Encode(d); err != nil {
				return fmt.Errorf("app: write detection: %w", err)
			}
		}
	}
}

func (a *App) engine() *engine.Engine {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.eng
}

func (a *App) buildLearnedStore(ctx context.Context) error {
	switch {
	case a.cfg.Learned.PostgresDSN != "":
		pool, err := pgxpool.New(ctx, a.cfg.Learned.PostgresDSN)
		if err != nil {
			return fmt.Errorf("app: connect learned store: %w", err)
		}
		store := books.NewPostgresStore(pool)
		if err := store.Migrate(ctx); err != nil {
			pool.Close()
			return err
		}
		a.pool = pool
		a.learned = store
	case a.cfg.Learned.Path != "":
		a.learned = books.NewFileStore(a.cfg.Learned.Path)
	}
	return nil
}

func (a *App) buildVerseStore(ctx context.Context) error {
	if a.cfg.Bible.SQLitePath == "" {
		a.store = bible.NewMemStore(a.canon)
		return nil
	}
	s, err := bible.OpenSQLite(ctx, a.cfg.Bible.SQLitePath, a.cfg.Bible.Translation)
	if err != nil {
		return err
	}
	a.sqlite = s
	a.store = s
	return nil
}

func (a *App) buildEngine(ctx context.Context, det config.DetectionConfig) error {
	var scanOpts []detect.Option
	if det.MaxChapter > 0 {
		scanOpts = append(scanOpts, detect.WithMaxChapter(det.MaxChapter))
	}
	if len(det.ExtraFillers) > 0 {
		scanOpts = append(scanOpts, detect.WithExtraFillers(det.ExtraFillers))
	}

	var resOpts []books.Option
	if det.MaxEditDistance > 0 {
		resOpts = append(resOpts, books.WithMaxEditDistance(det.MaxEditDistance))
	}
	if len(det.ExtraExclusions) > 0 {
		resOpts = append(resOpts, books.WithExtraExclusions(det.ExtraExclusions))
	}
	if a.learned != nil {
		resOpts = append(resOpts, books.WithLearnedStore(a.learned))
	}
	resolver := books.NewResolver(a.canon, resOpts...)
	if a.learned != nil {
		if err := resolver.LoadLearned(ctx); err != nil {
			return fmt.Errorf("app: load learned aliases: %w", err)
		}
	}

	engOpts := []engine.Option{
		engine.WithLogger(a.log),
		engine.WithMetrics(a.metrics),
	}
	if det.DebounceSeconds > 0 {
		engOpts = append(engOpts, engine.WithDebounce(time.Duration(det.DebounceSeconds)*time.Second))
	}

	eng := engine.New(detect.NewScanner(scanOpts...), resolver, a.store, engOpts...)

	a.mu.Lock()
	a.eng = eng
	a.mu.Unlock()
	return nil
}

func (a *App) buildSource() error {
	switch a.cfg.Source.Kind {
	case config.SourceWebsocket:
		a.src = source.NewWebsocket(a.cfg.Source.URL, source.WithWebsocketLogger(a.log))
	case config.SourceStdin, "":
		a.src = source.NewStdin(os.Stdin)
	default:
		return fmt.Errorf("app: unsupported source kind %q", a.cfg.Source.Kind)
	}
	return nil
}

func (a *App) buildHTTPServer() {
	if a.cfg.Server.MetricsAddr == "" {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.Handler())
	health.New(a.readinessChecks()...).Register(mux)

	a.httpSrv = &http.Server{
		Addr:              a.cfg.Server.MetricsAddr,
		Handler:           observe.Middleware(a.metrics)(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// readinessChecks probes the stores the pipeline depends on.
func (a *App) readinessChecks() []health.Checker {
	checks := []health.Checker{
		{
			Name: "bible",
			Check: func(ctx context.Context) error {
				_, err := a.store.MaxChapters(ctx, "Genesis")
				return err
			},
		},
	}
	if a.pool != nil {
		checks = append(checks, health.Checker{
			Name: "learned",
			Check: func(ctx context.Context) error {
				return a.pool.Ping(ctx)
			},
		})
	}
	return checks
}
