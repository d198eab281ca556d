package app

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/linemark/internal/config"
	"github.com/MrSnakeDoc/linemark/internal/decoration"
	"github.com/MrSnakeDoc/linemark/internal/httpserver"
	"github.com/MrSnakeDoc/linemark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linemark/internal/index"
	"github.com/MrSnakeDoc/linemark/internal/logger"
	"github.com/MrSnakeDoc/linemark/internal/messages"
	"github.com/MrSnakeDoc/linemark/internal/redis"
	"github.com/MrSnakeDoc/linemark/internal/scheduler"
	"github.com/MrSnakeDoc/linemark/internal/sources/file"
	redisstore "github.com/MrSnakeDoc/linemark/internal/store/redis"
	"github.com/MrSnakeDoc/linemark/internal/tree"
	"github.com/MrSnakeDoc/linemark/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	memIndex    *index.MemoryIndex
	syncer      *scheduler.RedisSyncer
	saver       *scheduler.Saver
	renumberer  *scheduler.Renumberer
	decorations *decoration.Provider
	ready       atomic.Bool
}

// Connect opens the Redis client described by cfg, retrying until
// RedisConnectTimeout.
func Connect(ctx context.Context, cfg *config.Config, loggerClient logger.Logger) (*goredis.Client, error) {
	return redis.New(ctx, redis.ConnectOptions{
		Addr:           cfg.RedisAddr,
		User:           cfg.RedisUser,
		Password:       cfg.RedisPassword,
		DB:             cfg.RedisDB,
		DialTimeout:    cfg.RedisDT,
		ReadTimeout:    cfg.RedisRT,
		WriteTimeout:   cfg.RedisWT,
		PoolSize:       cfg.RedisPoolSize,
		ConnectTimeout: cfg.RedisConnectTimeout,
		RetryInterval:  cfg.RedisRetryInterval,
		MaxWait:        cfg.RedisMaxWait,
		PingTimeout:    cfg.RedisPingTimeout,
		WarnThreshold:  cfg.RedisWarnThreshold,
	}, loggerClient)
}

// New wires every component. Redis must be reachable: the store is only
// useful if bookmarks survive a restart.
func New(ctx context.Context, cfg *config.Config, loggerClient logger.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	redisClient, err := Connect(ctx, cfg, loggerClient)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	loggerClient.Info("Redis initialized successfully")

	catalog, err := messages.Load(cfg.Language)
	if err != nil {
		_ = redisClient.Close()
		return nil, err
	}

	memIndex := index.NewMemoryIndex(loggerClient)
	store := redisstore.NewStore(redisClient, cfg.KeyPrefix, loggerClient)
	decorations := decoration.NewProvider(memIndex, loggerClient)

	a := &App{
		cfg:         cfg,
		logger:      loggerClient,
		redisClient: redisClient,
		memIndex:    memIndex,
		syncer:      scheduler.NewRedisSyncer(store, memIndex, loggerClient),
		saver:       scheduler.NewSaver(store, memIndex, loggerClient, cfg.SaveTimeout),
		decorations: decorations,
	}
	if cfg.RenumberInterval > 0 {
		a.renumberer = scheduler.NewRenumberer(memIndex, loggerClient, cfg.RenumberInterval, cfg.RenumberMinGap)
	}

	d := deps.Deps{
		Logger:       loggerClient,
		StartTime:    time.Now(),
		Version:      version.Version,
		Commit:       version.Commit,
		BuildDate:    version.BuildDate,
		GoVersion:    version.GoVersion,
		TimeNow:      time.Now,
		Ready:        a.ready.Load,
		AllowedHosts: cfg.AllowedHosts,
		AllowedCIDRS: cfg.AllowedCIDRS,
		TrustProxy:   cfg.TrustProxy,
		Index:        memIndex,
		Redis:        store,
		Saver:        a.saver,
		Tree:         tree.New(memIndex, loggerClient),
		Decorations:  decorations,
		Lines:        file.NewLoader(cfg.MaxSourceSize),
		Messages:     catalog,
	}
	a.server = httpserver.New(cfg.ListenAddr, loggerClient, d)

	return a, nil
}

// Run restores persisted bookmarks, starts background jobs and serves HTTP
// until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("starting linemark",
		logger.String("version", version.Version),
		logger.String("commit", version.Commit),
		logger.String("built", version.BuildDate),
		logger.String("go", version.GoVersion),
		logger.String("addr", a.cfg.ListenAddr))

	// Restore before the saver subscribes so the load is never written back.
	// Without a successful load the first save would overwrite the stored
	// bookmarks, so nothing starts.
	if err := a.syncer.Sync(ctx); err != nil {
		a.release()
		return fmt.Errorf("failed to restore bookmarks from redis: %w", err)
	}
	a.ready.Store(true)

	if err := a.saver.Start(ctx); err != nil {
		return fmt.Errorf("failed to start saver: %w", err)
	}
	a.logger.Info("saver started", logger.Duration("timeout", a.cfg.SaveTimeout))

	if a.renumberer != nil {
		if err := a.renumberer.Start(ctx); err != nil {
			return fmt.Errorf("failed to start renumberer: %w", err)
		}
		a.logger.Info("renumberer started",
			logger.Duration("interval", a.cfg.RenumberInterval),
			logger.Float64("min_gap", a.cfg.RenumberMinGap))
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("shutting down gracefully...")
	case runErr = <-errCh:
	}

	return a.shutdown(runErr)
}

func (a *App) shutdown(runErr error) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.server.Stop(shutdownCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("failed to stop server: %w", err)
	}

	if a.renumberer != nil {
		a.renumberer.Stop()
	}

	// Flush after the server stops so no mutation lands after the last save.
	a.saver.Stop(shutdownCtx)
	a.release()

	a.logger.Info("linemark stopped")
	return runErr
}

// release closes what New opened.
func (a *App) release() {
	a.decorations.Close()

	if err := a.redisClient.Close(); err != nil {
		a.logger.Warn("failed to close redis", logger.Error(err))
	} else {
		a.logger.Info("Redis closed cleanly")
	}
}
