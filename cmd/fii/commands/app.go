package commands

import (
	"context"
	"fmt"

	"github.com/wonny/fii-advisor/backend/internal/assistant"
	"github.com/wonny/fii-advisor/backend/internal/contracts"
	"github.com/wonny/fii-advisor/backend/internal/dataset"
	"github.com/wonny/fii-advisor/backend/internal/external/cvm"
	"github.com/wonny/fii-advisor/backend/internal/external/yahoo"
	"github.com/wonny/fii-advisor/backend/internal/insights"
	"github.com/wonny/fii-advisor/backend/internal/policy"
	"github.com/wonny/fii-advisor/backend/internal/recommender"
	"github.com/wonny/fii-advisor/backend/pkg/config"
	"github.com/wonny/fii-advisor/backend/pkg/database"
	"github.com/wonny/fii-advisor/backend/pkg/httputil"
	"github.com/wonny/fii-advisor/backend/pkg/logger"
	"github.com/wonny/fii-advisor/backend/pkg/redis"
)

// app holds the dependencies shared by the commands
type app struct {
	cfg    *config.Config
	logger *logger.Logger

	db    *database.DB  // nil without DATABASE_URL
	redis *redis.Client // disabled client when REDIS_ENABLED=false
	cache *redis.Cache  // nil when Redis is disabled

	files    *dataset.FileProvider
	repo     *dataset.Repository // nil without DATABASE_URL
	provider contracts.DatasetProvider
	registry *dataset.Registry
	policy   *policy.Config
	quotes   *yahoo.Client
}

// newApp loads config and connects the configured backing services
func newApp(ctx context.Context) (*app, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	a := &app{cfg: cfg, logger: log}

	// 3. Connect to Redis (optional)
	a.redis, err = redis.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	if a.redis.Enabled() {
		a.cache = redis.NewCache(a.redis, "fii")
		log.Info("Connected to redis")
	}

	// 4. Connect to database (optional)
	if cfg.HasDatabase() {
		a.db, err = database.New(ctx, cfg)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		a.repo = dataset.NewRepository(a.db)
		if err := a.repo.EnsureSchema(ctx); err != nil {
			a.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		log.Info("Connected to database")
	}

	// 5. Dataset provider
	a.files = dataset.NewFileProvider(cfg.Dataset.DataDir, log)
	var source contracts.DatasetProvider = a.files
	if cfg.Dataset.Source == config.SourcePostgres {
		source = a.repo
	}
	a.provider = source
	if a.cache != nil {
		a.provider = dataset.NewCachedProvider(source, a.cache, cfg.Redis.CacheTTL, log)
	}

	// 6. Ticker registry
	a.registry, err = dataset.LoadRegistry(cfg.Dataset.RegistryPath)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("load registry: %w", err)
	}

	// 7. Recommendation policy
	a.policy, err = policy.Load(cfg.PolicyPath)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("load policy: %w", err)
	}
	if cfg.PolicyPath == "" {
		// Without a policy file the quote settings come from the environment
		a.policy.Quotes.MarketSuffix = cfg.Quote.Suffix
		a.policy.Quotes.Timeout = cfg.Quote.Timeout.String()
		if err := policy.Validate(a.policy); err != nil {
			a.Close()
			return nil, fmt.Errorf("quote settings: %w", err)
		}
	}
	policyHash, err := policy.Hash(a.policy)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("hash policy: %w", err)
	}

	// 8. Quote client (rate limited through Redis when enabled)
	var limiter *redis.RateLimiter
	if a.redis.Enabled() {
		limiter = redis.NewRateLimiter(a.redis, "fii")
	}
	a.quotes = yahoo.NewClient(limiter, log)

	log.WithFields(map[string]interface{}{
		"source":   cfg.Dataset.Source,
		"years":    cfg.Dataset.Years,
		"registry": a.registry.Len(),
		"policy":   a.policy.Meta.PolicyID,
		"hash":     policyHash[:12],
	}).Debug("Application initialized")

	return a, nil
}

// Close releases the backing services
func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
}

func (a *app) pipeline() *recommender.Pipeline {
	return recommender.New(a.provider, a.registry, a.quotes, a.policy, a.cfg.Dataset.Years, a.logger)
}

func (a *app) insightsService() *insights.Service {
	return insights.NewService(a.provider, a.registry, a.quotes, a.cache, insights.Config{
		Years:        a.cfg.Dataset.Years,
		DefaultLabel: a.policy.Segments.DefaultLabel,
		MarketSuffix: a.policy.Quotes.MarketSuffix,
		QuoteTimeout: a.policy.Quotes.TimeoutDuration(),
		CacheTTL:     a.cfg.Redis.CacheTTL,
	}, a.logger)
}

func (a *app) lookup() *dataset.Lookup {
	return dataset.NewLookup(a.provider, a.cfg.Dataset.Years)
}

func (a *app) cvmClient() *cvm.Client {
	httpClient := httputil.New(a.logger)
	if a.redis.Enabled() {
		httpClient = httpClient.WithRateLimiter(redis.NewRateLimiter(a.redis, "fii"), redis.CVMRateLimit)
	} else {
		httpClient = httpClient.WithLocalLimit(2, 1)
	}
	return cvm.NewClient(httpClient, a.cfg.Dataset.CVMBaseURL, a.logger)
}

func (a *app) newAssistant() (*assistant.Assistant, error) {
	provider, err := assistant.NewProvider(a.cfg.LLM, a.logger)
	if err != nil {
		return nil, fmt.Errorf("init llm provider: %w", err)
	}
	asst := assistant.New(provider, a.cfg.LLM.RequestsPerMin, a.logger)
	if a.redis.Enabled() {
		asst.WithSharedLimit(redis.NewRateLimiter(a.redis, "fii"), a.cfg.LLM.RequestsPerMin)
	}
	return asst, nil
}
