package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yungbote/arbor/internal/config"
	"github.com/yungbote/arbor/internal/data/cache"
	"github.com/yungbote/arbor/internal/data/db"
	"github.com/yungbote/arbor/internal/observability"
	"github.com/yungbote/arbor/internal/platform/logger"
)

// App owns every long-lived dependency and the wired router. Construction
// is all-or-nothing: a partially wired App is never returned.
type App struct {
	Log      *logger.Logger
	Cfg      config.Config
	DB       *gorm.DB
	Cache    cache.TreeCache
	Repos    Repos
	Services Services
	Router   *gin.Engine

	metrics      *observability.Metrics
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

func New() (*App, error) {
	cfg, err := config.Load("")
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	log.Info("Configuration loaded", "driver", cfg.DB.Driver, "addr", cfg.Server.Addr)

	dbs, err := db.Open(cfg.DB.Driver, cfg.DB.DSN, log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := dbs.AutoMigrateAll(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	theDB := dbs.DB()

	treeCache := wireCache(log, cfg)

	metrics := observability.Init(log)

	reposet, err := wireRepos(theDB, log)
	if err != nil {
		log.Sync()
		return nil, err
	}
	serviceset := wireServices(theDB, log, reposet, treeCache)
	handlerset := wireHandlers(log, serviceset)
	middlewareset := wireMiddleware(log, cfg)
	router := wireRouter(log, cfg, metrics, handlerset, middlewareset)

	return &App{
		Log:      log,
		Cfg:      cfg,
		DB:       theDB,
		Cache:    treeCache,
		Repos:    reposet,
		Services: serviceset,
		Router:   router,
		metrics:  metrics,
	}, nil
}

func wireCache(log *logger.Logger, cfg config.Config) cache.TreeCache {
	if cfg.Redis.Addr == "" {
		log.Info("REDIS_ADDR unset, tree cache disabled")
		return cache.NewNoop()
	}
	c, err := cache.NewRedisCache(log, cfg.Redis.Addr, cfg.CacheTTL())
	if err != nil {
		log.Warn("Redis cache unavailable, continuing without it", "error", err)
		return cache.NewNoop()
	}
	return c
}

// Start launches the background pieces: tracing, the metrics listener and
// its collectors. Safe to call once; later calls are no-ops.
func (a *App) Start() {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	a.otelShutdown = observability.InitOTel(ctx, a.Log, observability.OtelConfig{
		ServiceName: a.Cfg.Server.ServiceName,
		Environment: a.Cfg.Environment,
		Version:     a.Cfg.Version,
	})

	if a.metrics != nil {
		a.metrics.StartServer(ctx, a.Log, a.Cfg.MetricsAddr)
		a.metrics.StartDBStatsCollector(ctx, a.Log, a.DB)
		if a.Cfg.Redis.Addr != "" {
			a.metrics.StartRedisCollector(ctx, a.Log, a.Cfg.Redis.Addr)
		}
	}
}

func (a *App) Run(addr string) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	if addr == "" {
		addr = a.Cfg.Server.Addr
	}
	return a.Router.Run(addr)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
		cancel()
		a.otelShutdown = nil
	}
	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil {
			a.Log.Warn("cache close failed", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
