package container

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go-shoe-studio/internal/catalog"
	"go-shoe-studio/internal/config"
	"go-shoe-studio/internal/factory"
	"go-shoe-studio/internal/genai"
	"go-shoe-studio/internal/logger"
	"go-shoe-studio/internal/observer"
	"go-shoe-studio/internal/repository"
	"go-shoe-studio/internal/service"
	"go-shoe-studio/internal/storage"
	"go-shoe-studio/internal/transport"
	"go-shoe-studio/pkg/validation"

	"github.com/sirupsen/logrus"
)

// Container holds all application dependencies
type Container struct {
	config           *config.Config
	assetFetcher     storage.AssetFetcher
	generator        genai.Generator
	history          repository.TransformRepository
	events           *observer.EventPublisher
	metrics          *observer.MetricsObserver
	designService    *service.DesignService
	transformService *service.TransformService
	moodboardService *service.MoodboardService
	handler          http.Handler
	stopJanitor      context.CancelFunc
}

// NewContainer creates a new dependency injection container
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	components := factory.NewComponentFactory(cfg)

	// Build dependency graph
	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	assetFetcher, err := components.StorageFactory.CreateStorage(factory.StorageType(cfg.StorageBackend))
	if err != nil {
		return nil, fmt.Errorf("failed to create asset storage: %w", err)
	}
	generator, err := components.GeneratorFactory.CreateGenerator(factory.GeneratorType(cfg.GenAIBackend))
	if err != nil {
		return nil, fmt.Errorf("failed to create image generator: %w", err)
	}
	if cc, ok := generator.(genai.CredentialChecker); ok {
		if err := cc.CheckCredential(); err != nil {
			logger.WithError(err).Warn("GEMINI_API_KEY is not usable; transforms will be refused until it is set")
		}
	}

	history, err := openHistory(ctx, cfg.HistoryDBPath)
	if err != nil {
		return nil, err
	}

	events := observer.NewEventPublisher()
	metrics := observer.NewMetricsObserver()
	events.Subscribe(observer.NewLoggingObserver(logger.Logger))
	events.Subscribe(metrics)

	store := service.NewStore()
	stopJanitor := func() {}
	if cfg.SessionTTL > 0 {
		var janitorCtx context.Context
		janitorCtx, stopJanitor = context.WithCancel(context.WithoutCancel(ctx))
		go store.RunJanitor(janitorCtx, cfg.SessionTTL, janitorInterval(cfg.SessionTTL))
	}
	validator := validation.NewImageValidator()
	designService := service.NewDesignService(store, cat, assetFetcher, validator, events, cfg.SketchArea)
	transformService := service.NewTransformService(store, generator, assetFetcher, cat, history, events,
		service.TransformConfig{
			SketchArea: cfg.SketchArea,
			SwatchSize: cfg.SwatchSize,
			Timeout:    cfg.TransformTimeout,
		})
	if err := events.SubscribeResponder(transformService); err != nil {
		stopJanitor()
		_ = history.Close()
		return nil, fmt.Errorf("failed to register transform responder: %w", err)
	}
	moodboardService := service.NewMoodboardService(store, validator)

	handler := transport.NewHandler(transport.Services{
		Design:    designService,
		Transform: transformService,
		Moodboard: moodboardService,
		Events:    events,
		Metrics:   metrics,
	}, cfg)

	logger.WithFields(logrus.Fields{
		"storage": cfg.StorageBackend,
		"genai":   cfg.GenAIBackend,
		"history": historyKind(cfg.HistoryDBPath),
		"items":   len(cat.Items("")),
	}).Info("Container initialized")

	return &Container{
		config:           cfg,
		assetFetcher:     assetFetcher,
		generator:        generator,
		history:          history,
		events:           events,
		metrics:          metrics,
		designService:    designService,
		transformService: transformService,
		moodboardService: moodboardService,
		handler:          handler,
		stopJanitor:      stopJanitor,
	}, nil
}

// janitorInterval sweeps a few times per TTL, at most once a minute.
func janitorInterval(ttl time.Duration) time.Duration {
	return max(ttl/4, time.Minute)
}

func openHistory(ctx context.Context, dbPath string) (repository.TransformRepository, error) {
	if dbPath == "" {
		return repository.NewMemoryTransformRepository(), nil
	}
	repo, err := repository.OpenSQLite(ctx, dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open transform history: %w", err)
	}
	return repo, nil
}

func historyKind(dbPath string) string {
	if dbPath == "" {
		return "memory"
	}
	return "sqlite"
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Metrics returns the pipeline counters
func (c *Container) Metrics() *observer.MetricsObserver {
	return c.metrics
}

// Close stops session eviction and releases the history store.
func (c *Container) Close() error {
	if c.stopJanitor != nil {
		c.stopJanitor()
	}
	var errs []error
	if c.history != nil {
		if err := c.history.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
