package di

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	domrepo "FinChat/internal/domain/repository"
	domsvc "FinChat/internal/domain/service"
	"FinChat/internal/handler/api"
	internalrepo "FinChat/internal/repository"
	"FinChat/internal/service/analysis"
	"FinChat/internal/service/classifier"
	"FinChat/internal/service/keywords"
	"FinChat/internal/service/llm"
	"FinChat/internal/service/ratelimit"
	"FinChat/internal/service/translate"
	"FinChat/internal/services/upstream"
	"FinChat/internal/usecase"
	"FinChat/pkg/cache"
	pkgch "FinChat/pkg/clickhouse"
	"FinChat/pkg/config"
	xhttp "FinChat/pkg/http"
	pkgkafka "FinChat/pkg/kafka"
	"FinChat/pkg/logger"
	"FinChat/pkg/metrics"
	"FinChat/pkg/queue"
	"FinChat/pkg/server"
)

// ProvideLogger builds the application logger from the logging section.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	l, err := logger.New(&logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(logger.String("app", cfg.App.Name), logger.String("env", cfg.App.Env)), nil
}

// ProvideMetrics creates the Prometheus recorder shared by every observer.
func ProvideMetrics(cfg *config.Config) *metrics.Recorder {
	return metrics.New(cfg.Metrics.Enabled)
}

// ProvideRedisClient connects when the cache or the query-log queue needs redis; otherwise it returns nil.
func ProvideRedisClient(cfg *config.Config) (*redis.Client, func(), error) {
	if cfg.Cache.Backend == "memory" && !cfg.QueryLog.Queue.Enabled {
		return nil, func() {}, nil
	}
	r := cfg.Cache.Redis
	client, err := cache.NewRedisClient(context.Background(),
		cache.WithRedisHost(r.Host),
		cache.WithRedisPort(r.Port),
		cache.WithRedisPassword(r.Password),
		cache.WithRedisDB(r.DB),
		cache.WithRedisPool(r.PoolSize, r.MinIdle),
	)
	if err != nil {
		return nil, nil, err
	}
	return client, func() { _ = client.Close() }, nil
}

// ProvideCache selects the memory, redis or layered cache.
func ProvideCache(cfg *config.Config, client *redis.Client) cache.Service {
	mem := []cache.MemoryOption{
		cache.WithMemoryMaxSize(cfg.Cache.Memory.MaxSize),
		cache.WithMemoryTTL(cfg.Cache.Memory.TTL),
		cache.WithMemoryCleanup(cfg.Cache.Memory.Cleanup),
	}
	switch cfg.Cache.Backend {
	case "redis":
		return cache.NewRedisCacheFromClient(client, cfg.Cache.Redis.Prefix)
	case "layered":
		return cache.NewLayeredCache(cache.NewRedisCacheFromClient(client, cfg.Cache.Redis.Prefix), cfg.Cache.Memory.TTL, mem...)
	default:
		return cache.NewMemoryCache(mem...)
	}
}

// ProvideKafkaProducer returns nil when no brokers are configured.
func ProvideKafkaProducer(cfg *config.Config, rec *metrics.Recorder) (*pkgkafka.Producer, func(), error) {
	k := cfg.QueryLog.Kafka
	if len(k.Brokers) == 0 {
		return nil, func() {}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(k.Brokers),
		pkgkafka.WithCompression(k.Compression),
		pkgkafka.WithRequiredAcks(k.RequiredAcks),
		pkgkafka.WithMaxAttempts(k.MaxAttempts),
		pkgkafka.WithBatching(k.BatchSize, k.BatchTimeout),
		pkgkafka.WithWriteTimeout(k.WriteTimeout),
		pkgkafka.WithAsync(k.Async),
		pkgkafka.WithObserver(rec),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, func() { _ = producer.Close() }, nil
}

// ProvideErrorDigest ships repeated error logs to Kafka when a producer exists.
func ProvideErrorDigest(cfg *config.Config, l *logger.Logger, producer *pkgkafka.Producer) (*logger.ErrorDigest, func()) {
	if producer == nil || cfg.Logging.ErrorTopic == "" {
		return nil, func() {}
	}
	d := logger.NewErrorDigest(logger.DigestConfig{Topic: cfg.Logging.ErrorTopic, Publisher: producer})
	l.AttachDigest(d)
	return d, l.DetachDigest
}

// ProvideLLM builds the three completion backends.
func ProvideLLM(cfg *config.Config, l *logger.Logger, rec *metrics.Recorder) *llm.Providers {
	return llm.NewProviders(cfg, l, llm.WithObserver(rec))
}

func ProvideClassifier(cfg *config.Config, p *llm.Providers, l *logger.Logger) *classifier.Service {
	return classifier.New(p.DeepSeek, l, cfg.Mock)
}

func ProvideTranslator(cfg *config.Config, p *llm.Providers, c cache.Service, l *logger.Logger) *translate.Service {
	return translate.New(p.DeepSeek, c, cfg.Cache.TranslationTTL, l, cfg.Mock)
}

func ProvideAnalyst(cfg *config.Config, p *llm.Providers, l *logger.Logger) *analysis.Service {
	return analysis.NewFromProviders(p, l, cfg.Mock)
}

// Upstream collaborators.

func ProvideNewsClient(cfg *config.Config, rec *metrics.Recorder) *upstream.NewsClient {
	return upstream.NewNewsClient(upstream.NewHTTPServiceBase("news", cfg.Upstream.NewsBaseURL, cfg.Upstream.Timeout, rec))
}

func ProvideKeyMetricsClient(cfg *config.Config, rec *metrics.Recorder) *upstream.KeyMetricsClient {
	return upstream.NewKeyMetricsClient(upstream.NewHTTPServiceBase("keymetrics", cfg.Upstream.KeyMetricsBaseURL, cfg.Upstream.Timeout, rec))
}

func ProvideFDAClient(cfg *config.Config, rec *metrics.Recorder, c cache.Service) *upstream.FDAClient {
	base := upstream.NewHTTPServiceBase("fda", cfg.Upstream.FDABaseURL, cfg.Upstream.Timeout, rec)
	return upstream.NewFDAClient(base, c, cfg.Cache.FDATTL, cfg.Mock)
}

func ProvideValuationClient(cfg *config.Config, rec *metrics.Recorder) *upstream.ValuationClient {
	base := upstream.NewHTTPServiceBase("valuation", cfg.Upstream.ValuationBaseURL, cfg.Upstream.ValuationTimeout, rec)
	return upstream.NewValuationClient(base, cfg.Upstream.ValuationTimeout, cfg.Mock)
}

func ProvideEarningsClient(cfg *config.Config, rec *metrics.Recorder) *upstream.EarningsClient {
	return upstream.NewEarningsClient(upstream.NewHTTPServiceBase("earnings", cfg.Upstream.EarningsBaseURL, cfg.Upstream.Timeout, rec), cfg.Mock)
}

// Query logs.

// ProvideQueryLogStore opens the configured backend. With querylog.queue enabled, writes go
// through the redis job queue and a worker persists them.
func ProvideQueryLogStore(cfg *config.Config, l *logger.Logger, client *redis.Client) (domrepo.QueryLogStore, func(), error) {
	var store domrepo.QueryLogStore
	switch cfg.QueryLog.Backend {
	case "clickhouse":
		c := cfg.QueryLog.ClickHouse
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		ch, err := pkgch.NewClient(ctx,
			pkgch.WithHost(c.Host),
			pkgch.WithPort(c.Port),
			pkgch.WithDatabase(c.Database),
			pkgch.WithCredentials(c.User, c.Password),
			pkgch.WithMaxConnections(10, 5),
			pkgch.WithHTTP(c.UseHTTP),
			pkgch.WithAsyncInsert(c.AsyncInsert),
			pkgch.WithTimeouts(c.DialTimeout, c.ReadTimeout),
			pkgch.WithMaxExecutionTime(c.MaxExecutionTime),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("clickhouse client: %w", err)
		}
		chStore := internalrepo.NewCHQueryLogStore(ch, l)
		if err := chStore.Init(ctx); err != nil {
			_ = chStore.Close()
			return nil, nil, fmt.Errorf("clickhouse schema: %w", err)
		}
		store = chStore
	default:
		store = internalrepo.NewMemoryQueryLogStore(cfg.QueryLog.MaxEntries)
	}

	if !cfg.QueryLog.Queue.Enabled || client == nil {
		return store, func() { _ = store.Close() }, nil
	}

	q := queue.NewRedisQueue(l, queue.QueueConfig{
		Workers:    cfg.QueryLog.Queue.Workers,
		RetryLimit: cfg.QueryLog.Queue.RetryLimit,
		RetryDelay: cfg.QueryLog.Queue.RetryDelay,
	}, client, queue.WithKeyPrefix(cfg.Cache.Redis.Prefix+":querylog"))
	q.RegisterJob(internalrepo.NewStoreQueryLogJob(store))
	if err := q.Start(context.Background()); err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("query log queue: %w", err)
	}
	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := q.Stop(ctx); err != nil {
			l.Warn("query log queue stop", logger.Error(err))
		}
		_ = store.Close()
	}
	return internalrepo.NewQueuedQueryLogStore(store, q, l), cleanup, nil
}

// ProvideQueryLogPublisher returns nil without a producer.
func ProvideQueryLogPublisher(cfg *config.Config, producer *pkgkafka.Producer) domrepo.Publisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaQueryLogPublisher(producer, cfg.QueryLog.Kafka.Topic)
}

func ProvideQueryLogUseCase(store domrepo.QueryLogStore, pub domrepo.Publisher, l *logger.Logger) *usecase.QueryLogUseCase {
	return usecase.NewQueryLogUseCase(store, pub, l)
}

// Chat pipeline.

func ProvideValuationUseCase(engine *upstream.ValuationClient, l *logger.Logger) *usecase.ValuationUseCase {
	return usecase.NewValuationUseCase(engine, l)
}

func ProvideEarningsUseCase(docs *upstream.EarningsClient, l *logger.Logger) *usecase.EarningsUseCase {
	return usecase.NewEarningsUseCase(docs, l)
}

func ProvideHandlers(
	news *upstream.NewsClient,
	km *upstream.KeyMetricsClient,
	valuation *usecase.ValuationUseCase,
	fda *upstream.FDAClient,
	earnings *usecase.EarningsUseCase,
	analyst *analysis.Service,
	rec *metrics.Recorder,
	l *logger.Logger,
) *usecase.Handlers {
	return usecase.NewHandlers(news, km, valuation, fda, earnings, analyst, rec, l)
}

func ProvideDispatcher(
	cfg *config.Config,
	c *classifier.Service,
	handlers *usecase.Handlers,
	queries *usecase.QueryLogUseCase,
	rec *metrics.Recorder,
	l *logger.Logger,
) (*usecase.Dispatcher, error) {
	router, err := keywords.NewRouter()
	if err != nil {
		return nil, fmt.Errorf("keyword router: %w", err)
	}
	screening, err := keywords.NewScreeningDetector()
	if err != nil {
		return nil, fmt.Errorf("screening detector: %w", err)
	}
	return usecase.NewDispatcher(c, router, screening, handlers, queries, rec, cfg.Chat.HideClassification, l), nil
}

func ProvideSessionStore(cfg *config.Config, tr *translate.Service, l *logger.Logger) (*usecase.SessionStore, func()) {
	st := usecase.NewSessionStore(cfg.Chat.SessionTTL, cfg.Chat.MaxSessions, tr, l)
	return st, func() { _ = st.Close() }
}

func ProvideChatUseCase(
	cfg *config.Config,
	sessions *usecase.SessionStore,
	d *usecase.Dispatcher,
	handlers *usecase.Handlers,
	tr *translate.Service,
	l *logger.Logger,
) *usecase.ChatUseCase {
	return usecase.NewChatUseCase(sessions, d, handlers, tr, usecase.NewDemo(cfg.Chat.DemoStepDelay, l), l)
}

func ProvideLimiter(cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.New(cfg.RateLimit.ChatRPS, cfg.RateLimit.Burst)
}

// HTTP surface.

func ProvideChatHandler(l *logger.Logger, chat *usecase.ChatUseCase, lim *ratelimit.Limiter) *api.ChatEchoHandler {
	return api.NewChatEchoHandler(l, chat, lim)
}

func ProvideResearchHandler(
	cfg *config.Config,
	l *logger.Logger,
	c *classifier.Service,
	analyst *analysis.Service,
	valuation *usecase.ValuationUseCase,
	fda *upstream.FDAClient,
	earnings *usecase.EarningsUseCase,
	tr *translate.Service,
	queries *usecase.QueryLogUseCase,
	p *llm.Providers,
) *api.ResearchEchoHandler {
	status := api.Status{
		OpenAIConfigured:    p.OpenAI.Configured(),
		ValuationConfigured: cfg.Mock || cfg.Upstream.ValuationBaseURL != "",
	}
	return api.NewResearchEchoHandler(l, c, analyst, valuation, fda, earnings, tr, queries, status)
}

func ProvideHTTPServer(
	cfg *config.Config,
	l *logger.Logger,
	rec *metrics.Recorder,
	chat *api.ChatEchoHandler,
	research *api.ResearchEchoHandler,
) *xhttp.Server {
	opts := []xhttp.ServerOption{
		xhttp.WithHost(cfg.Server.Host),
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.IdleTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithObserver(rec),
	}
	if len(cfg.Server.AllowOrigins) > 0 {
		opts = append(opts, xhttp.WithAllowOrigins(cfg.Server.AllowOrigins))
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetricsEndpoint(cfg.Metrics.Path, rec.Handler()))
	}
	return xhttp.NewServer(xhttp.Handlers{research, chat}, l, opts...)
}

// ProvideApp assembles the runnable application. The digest is taken so wire keeps it alive.
func ProvideApp(
	cfg *config.Config,
	l *logger.Logger,
	srv *xhttp.Server,
	store domrepo.QueryLogStore,
	_ *logger.ErrorDigest,
) *server.App {
	return server.New(cfg, l, srv, store)
}

var (
	_ domsvc.Classifier        = (*classifier.Service)(nil)
	_ domsvc.Translator        = (*translate.Service)(nil)
	_ domsvc.Analyst           = (*analysis.Service)(nil)
	_ domsvc.NewsService       = (*upstream.NewsClient)(nil)
	_ domsvc.KeyMetricsService = (*upstream.KeyMetricsClient)(nil)
	_ domsvc.FDACalendar       = (*upstream.FDAClient)(nil)
	_ domsvc.ValuationEngine   = (*upstream.ValuationClient)(nil)
	_ domsvc.EarningsDocs      = (*upstream.EarningsClient)(nil)
	_ domsvc.Observer          = (*metrics.Recorder)(nil)
)
