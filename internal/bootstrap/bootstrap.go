package bootstrap

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/sony/gobreaker/v2"

	"github.com/kirillkom/file-organizer/internal/config"
	"github.com/kirillkom/file-organizer/internal/core/domain"
	"github.com/kirillkom/file-organizer/internal/core/ports"
	"github.com/kirillkom/file-organizer/internal/core/scoring"
	"github.com/kirillkom/file-organizer/internal/core/usecase"
	rediscache "github.com/kirillkom/file-organizer/internal/infrastructure/cache/redis"
	"github.com/kirillkom/file-organizer/internal/infrastructure/extractor/content"
	"github.com/kirillkom/file-organizer/internal/infrastructure/imaging"
	"github.com/kirillkom/file-organizer/internal/infrastructure/llm"
	"github.com/kirillkom/file-organizer/internal/infrastructure/llm/ollama"
	"github.com/kirillkom/file-organizer/internal/infrastructure/llm/openai"
	"github.com/kirillkom/file-organizer/internal/infrastructure/metadata"
	"github.com/kirillkom/file-organizer/internal/infrastructure/ocr"
	natsqueue "github.com/kirillkom/file-organizer/internal/infrastructure/queue/nats"
	"github.com/kirillkom/file-organizer/internal/infrastructure/rasterizer/poppler"
	"github.com/kirillkom/file-organizer/internal/infrastructure/repository/journal"
	"github.com/kirillkom/file-organizer/internal/infrastructure/resilience"
	"github.com/kirillkom/file-organizer/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/file-organizer/internal/infrastructure/tagging"
	"github.com/kirillkom/file-organizer/internal/observability/logging"
	"github.com/kirillkom/file-organizer/internal/observability/metrics"
)

// Options selects which optional collaborators a process needs.
type Options struct {
	Service string
	// Queue connects to NATS and publishes organized events.
	Queue bool
	// SkipBackendCheck disables the startup reachability probe for commands
	// that never call the backend.
	SkipBackendCheck bool
	// LogWriter replaces stdout as the primary log sink.
	LogWriter io.Writer
}

type App struct {
	Config  config.Config
	Catalog domain.Catalog
	Logger  *slog.Logger

	Organizer *usecase.OrganizeUseCase
	Journal   *journal.Repository
	Queue     *natsqueue.Queue
	Metrics   *metrics.OrganizerMetrics

	closers []func()
}

type pinger interface {
	Ping(ctx context.Context) error
}

func New(ctx context.Context, cfg config.Config, opts Options) (*App, error) {
	if opts.Service == "" {
		opts.Service = "organizer"
	}
	app := &App{Config: cfg}

	loaded, err := config.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		return nil, domain.WrapError(domain.ErrConfig, "load catalog", err)
	}
	app.Catalog = loaded.Catalog

	var logSinks []io.Writer
	logPath := cfg.LogFile
	if logPath == "" {
		logPath = loaded.LogFile
	}
	if logPath != "" {
		logFile, err := logging.OpenLogFile(logPath)
		if err != nil {
			return nil, domain.WrapError(domain.ErrConfig, "open log file", err)
		}
		logSinks = append(logSinks, logFile)
		app.closers = append(app.closers, func() { _ = logFile.Close() })
	}
	var logger *slog.Logger
	if opts.LogWriter != nil {
		logger = logging.NewJSONLoggerTo(opts.LogWriter, opts.Service, cfg.LogLevel, logSinks...)
	} else {
		logger = logging.NewJSONLogger(opts.Service, cfg.LogLevel, logSinks...)
	}
	app.Logger = logger

	app.Metrics = metrics.NewOrganizerMetrics(opts.Service)
	resilienceOpts := []resilience.ExecutorOption{
		resilience.WithLogger(logger),
		resilience.WithStateListener(func(operation string, _, to gobreaker.State) {
			app.Metrics.BreakerTransition(operation, to.String())
		}),
	}
	executor := resilience.NewExecutor(resilience.DefaultConfig(), resilienceOpts...)

	backend, probe, err := newBackend(cfg, executor)
	if err != nil {
		app.Close()
		return nil, err
	}
	if !opts.SkipBackendCheck {
		if err := waitForBackend(ctx, probe, logger); err != nil {
			app.Close()
			return nil, domain.WrapError(domain.ErrBackend, "backend unreachable", err)
		}
	}
	backend = llm.NewRateLimited(backend, cfg.AIRatePerMin)

	decisionOpts := []usecase.DecisionOption{}
	if cfg.RedisURL != "" {
		cache, err := rediscache.New(cfg.RedisURL, cfg.DecisionCacheTTL)
		if err != nil {
			app.Close()
			return nil, domain.WrapError(domain.ErrConfig, "open redis", err)
		}
		if err := cache.Ping(ctx); err != nil {
			logger.Warn("decision_cache_unavailable", "error", err)
			_ = cache.Close()
		} else {
			decisionOpts = append(decisionOpts, usecase.WithDecisionCache(cache))
			app.closers = append(app.closers, func() { _ = cache.Close() })
		}
	}

	organizeOpts := []usecase.OrganizeOption{}
	if cfg.JournalDSN != "" {
		repo, err := journal.Open(cfg.JournalDSN)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("open journal: %w", err)
		}
		app.closers = append(app.closers, func() { _ = repo.Close() })
		if err := repo.EnsureSchema(ctx); err != nil {
			app.Close()
			return nil, fmt.Errorf("ensure journal schema: %w", err)
		}
		app.Journal = repo
		organizeOpts = append(organizeOpts, usecase.WithJournal(repo))
	}

	if opts.Queue {
		queue, err := natsqueue.New(cfg.NATSURL, cfg.NATSOrganizeSubj, cfg.NATSOrganizedSubj, natsqueue.Options{
			ResilienceExecutor: resilience.NewExecutor(resilience.QueueConfig(), resilienceOpts...),
			Logger:             logger,
		})
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("connect nats: %w", err)
		}
		app.closers = append(app.closers, queue.Close)
		app.Queue = queue
		organizeOpts = append(organizeOpts, usecase.WithPublisher(queue))
	}

	organizeOpts = append(organizeOpts, usecase.WithRecorder(app.Metrics))

	engine := ocr.Select(nativeOCR(cfg, logger), ocr.NewTesseract(cfg.OCRTesseractPath, cfg.OCRLanguages, logger), exec.LookPath)
	logger.Info("ocr_engine_selected", "engine", engine.Name())

	extractor := content.NewExtractor(
		engine,
		imaging.NewEnhancer(cfg.TempDir, cfg.ImageMaxWidth, logger),
		poppler.New(cfg.PDFRasterizerCmd),
		metadata.NewReader(logger),
		content.Options{TempDir: cfg.TempDir, PDFRasterDPI: cfg.PDFRasterDPI},
		logger,
	)

	tagBinary := tagging.Discover(app.Catalog.TagCLI, exec.LookPath)
	tagger := tagging.NewCLITagger(tagBinary)
	logger.Debug("tag_cli_resolved", "binary", tagBinary)

	app.Organizer = usecase.NewOrganizeUseCase(
		extractor,
		scoring.NewScorer(nil, logger),
		usecase.NewDecisionEngine(backend, app.Catalog, logger, decisionOpts...),
		usecase.NewDispositionExecutor(localfs.New(), tagger, usecase.SystemClock{}, cfg.TagSettleDelay, logger),
		app.Catalog,
		logger,
		organizeOpts...,
	)
	return app, nil
}

// Close releases resources in reverse acquisition order.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func newBackend(cfg config.Config, executor *resilience.Executor) (ports.ClassificationBackend, pinger, error) {
	switch strings.ToLower(cfg.AIProvider) {
	case "", "ollama":
		client := ollama.New(cfg.OllamaURL, cfg.AIModel,
			ollama.WithTimeout(cfg.BackendTimeout),
			ollama.WithTemperature(cfg.AITemperature),
			ollama.WithResilience(executor),
		)
		return client, client, nil
	case "openai":
		client := openai.New(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.AIModel, cfg.AITemperature, executor)
		return client, client, nil
	default:
		return nil, nil, domain.WrapError(domain.ErrConfig, "select backend", fmt.Errorf("unknown AI_PROVIDER %q", cfg.AIProvider))
	}
}

func nativeOCR(cfg config.Config, logger *slog.Logger) *ocr.CommandOCR {
	if cfg.OCRNativeCommand == "" {
		return nil
	}
	return ocr.NewCommand("native", cfg.OCRNativeCommand, strings.Fields(cfg.OCRNativeArgs), logger)
}

// waitForBackend retries the probe briefly so a backend that is still
// starting does not fail the whole process.
func waitForBackend(ctx context.Context, probe pinger, logger *slog.Logger) error {
	backoff := retry.WithMaxRetries(3, retry.NewFibonacci(500*time.Millisecond))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := probe.Ping(probeCtx); err != nil {
			logger.Warn("backend_probe_failed", "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
}
