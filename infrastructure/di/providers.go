package di

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"

	"titlechain/application/commands/bus"
	commandhandlers "titlechain/application/commands/handlers"
	"titlechain/application/ports"
	querybus "titlechain/application/queries/bus"
	queryhandlers "titlechain/application/queries/handlers"
	"titlechain/application/services"
	domainconfig "titlechain/domain/config"
	"titlechain/infrastructure/config"
	"titlechain/infrastructure/messaging"
	"titlechain/infrastructure/messaging/eventbridge"
	"titlechain/infrastructure/persistence/dynamodb"
	"titlechain/infrastructure/persistence/memory"
	"titlechain/interfaces/http/rest"
	"titlechain/pkg/observability"
	"titlechain/pkg/ratelimit"
)

const serviceName = "titlechain-api"

// ProvideLogger creates a new logger instance at the configured level
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	zapCfg := zap.NewDevelopmentConfig()
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.LogLevel, err)
	}
	zapCfg.Level = level

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.With(zap.String("service", serviceName)), nil
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideCache creates the process-local cache
func ProvideCache() (*InMemoryCache, func()) {
	cache := NewInMemoryCache(time.Minute)
	return cache, func() { _ = cache.Close() }
}

// ProvideActRepository picks the act record store named by ACTS_SOURCE
func ProvideActRepository(cfg *config.Config, client *awsdynamodb.Client, logger *zap.Logger) (ports.ActRepository, error) {
	switch cfg.ActsSource {
	case config.ActsSourceMemory:
		if cfg.ActsFile == "" {
			logger.Warn("No ACTS_FILE set, serving an empty act list")
			return memory.NewActRepository(nil), nil
		}
		repo, err := memory.LoadActRepository(cfg.ActsFile)
		if err != nil {
			return nil, err
		}
		logger.Info("Loaded acts from file", zap.String("path", cfg.ActsFile))
		return repo, nil
	default:
		return dynamodb.NewActRepository(client, cfg.ActsTable, logger), nil
	}
}

// ProvideActCatalog creates the cached act catalog
func ProvideActCatalog(repo ports.ActRepository, cache ports.Cache, cfg *config.Config, logger *zap.Logger) *services.ActCatalogService {
	return services.NewActCatalogService(repo, cache, cfg.ActCacheTTL, logger)
}

// ProvideLayoutWatcher watches LAYOUT_CONFIG when one is set. It returns nil
// otherwise.
func ProvideLayoutWatcher(cfg *config.Config, logger *zap.Logger) (*config.LayoutWatcher, func(), error) {
	if cfg.LayoutConfigPath == "" {
		return nil, func() {}, nil
	}

	base := domainconfig.LoadDomainConfig(cfg.Environment)
	watcher, err := config.NewLayoutWatcher(cfg.LayoutConfigPath, base, logger)
	if err != nil {
		return nil, nil, err
	}
	watcher.Start()
	return watcher, func() { _ = watcher.Stop() }, nil
}

// ProvideLayoutSource returns the watched layout, or the environment default
func ProvideLayoutSource(watcher *config.LayoutWatcher, cfg *config.Config) ports.LayoutSource {
	if watcher != nil {
		return watcher
	}
	return ports.StaticLayout{Config: domainconfig.LoadDomainConfig(cfg.Environment)}
}

// ProvideCanvasStore creates the in-memory canvas store. CANVAS_IDLE_TTL
// overrides the layout's session TTL.
func ProvideCanvasStore(cfg *config.Config, layout ports.LayoutSource, logger *zap.Logger) (*memory.CanvasStore, func()) {
	idleTTL := cfg.CanvasIdleTTL
	if idleTTL == 0 {
		idleTTL = layout.Current().SessionIdleTTL
	}
	store := memory.NewCanvasStore(idleTTL, cfg.CanvasSweepInterval, logger)
	return store, func() { _ = store.Close() }
}

// ProvideEventPublisher publishes to EventBridge when events are enabled and
// to the log otherwise
func ProvideEventPublisher(cfg *config.Config, client *awseventbridge.Client, logger *zap.Logger) ports.EventPublisher {
	if !cfg.EnableEvents {
		return messaging.NewLogPublisher(logger)
	}
	return eventbridge.NewPublisher(client, cfg.EventBusName, logger)
}

// ProvideMetrics creates the buffered CloudWatch metrics. Disabled metrics
// are a no-op.
func ProvideMetrics(cfg *config.Config, client *awscloudwatch.Client, logger *zap.Logger) (*observability.Metrics, func()) {
	namespace := fmt.Sprintf("%s/%s", cfg.MetricsNamespace, cfg.Environment)

	var metrics *observability.Metrics
	if cfg.EnableMetrics {
		metrics = observability.NewMetrics(namespace, client, cfg.MetricsFlushInterval, logger)
	} else {
		metrics = observability.NewMetrics(namespace, nil, 0, logger)
	}

	return metrics, func() {
		if err := metrics.Close(); err != nil {
			logger.Warn("Failed to flush metrics on shutdown", zap.Error(err))
		}
	}
}

// ProvideTracer creates the X-Ray tracer
func ProvideTracer(cfg *config.Config) *observability.Tracer {
	return observability.NewTracer(serviceName, cfg.EnableTracing)
}

// ProvideCommandBus creates a command bus with the canvas handler behind
// the logging, metrics and tracing pipeline
func ProvideCommandBus(
	store ports.CanvasStore,
	catalog *services.ActCatalogService,
	layout ports.LayoutSource,
	publisher ports.EventPublisher,
	metrics *observability.Metrics,
	tracer *observability.Tracer,
	logger *zap.Logger,
) (*bus.CommandBus, error) {
	commandBus := bus.NewCommandBus()

	pipeline := bus.NewPipeline(
		bus.LoggingMiddleware(logger.Sugar()),
		bus.MetricsMiddleware(metrics),
		bus.TracingMiddleware(tracer),
	)

	canvasHandler := commandhandlers.NewCanvasHandler(store, catalog, layout, publisher, logger)
	handler := pipeline.Execute(canvasHandler)
	for _, cmd := range canvasHandler.Commands() {
		if err := commandBus.Register(cmd, handler); err != nil {
			return nil, err
		}
	}

	return commandBus, nil
}

// ProvideQueryBus creates a query bus. Act queries are cached; canvas
// queries always read live state.
func ProvideQueryBus(
	store ports.CanvasStore,
	catalog *services.ActCatalogService,
	cache ports.Cache,
	cfg *config.Config,
	metrics *observability.Metrics,
	logger *zap.Logger,
) (*querybus.QueryBus, error) {
	queryBus := querybus.NewQueryBus()
	withMetrics := querybus.NewMetricsMiddleware(metrics)

	canvasQueries := queryhandlers.NewCanvasQueryHandler(store)
	canvasHandler := withMetrics.Wrap(canvasQueries)
	for _, q := range canvasQueries.Queries() {
		if err := queryBus.Register(q, canvasHandler); err != nil {
			return nil, err
		}
	}

	ttl := int(cfg.ActCacheTTL / time.Second)
	actQueries := queryhandlers.NewActQueryHandler(catalog)
	actHandler := withMetrics.Wrap(querybus.NewCachingMiddleware(cache, ttl, logger).Wrap(actQueries))
	for _, q := range actQueries.Queries() {
		if err := queryBus.Register(q, actHandler); err != nil {
			return nil, err
		}
	}

	return queryBus, nil
}

// ProvideRateLimiter creates the per-client limiter, or nil when
// RATE_LIMIT_RPS is unset
func ProvideRateLimiter(cfg *config.Config) (*ratelimit.KeyedLimiter, func()) {
	if cfg.RateLimitRPS <= 0 {
		return nil, func() {}
	}
	limiter := ratelimit.NewKeyedLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, 5*time.Minute)
	return limiter, func() { _ = limiter.Close() }
}

// ProvideRouter creates the HTTP router
func ProvideRouter(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	tracer *observability.Tracer,
	limiter *ratelimit.KeyedLimiter,
	cfg *config.Config,
	logger *zap.Logger,
) *rest.Router {
	return rest.NewRouter(commandBus, queryBus, tracer, logger, rest.RouterOptions{
		EnableCORS:  cfg.EnableCORS,
		Debug:       cfg.IsDevelopment(),
		RateLimiter: limiter,
	})
}
