package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ivankudzin/sparkmatch/internal/config"
	"github.com/ivankudzin/sparkmatch/internal/domain/model"
	"github.com/ivankudzin/sparkmatch/internal/infra/logger"
	s3infra "github.com/ivankudzin/sparkmatch/internal/infra/s3"
	pgrepo "github.com/ivankudzin/sparkmatch/internal/repo/postgres"
	redrepo "github.com/ivankudzin/sparkmatch/internal/repo/redis"
	authsvc "github.com/ivankudzin/sparkmatch/internal/services/auth"
	boostsvc "github.com/ivankudzin/sparkmatch/internal/services/boost"
	"github.com/ivankudzin/sparkmatch/internal/services/cards"
	feedsvc "github.com/ivankudzin/sparkmatch/internal/services/feed"
	matchessvc "github.com/ivankudzin/sparkmatch/internal/services/matches"
	mediasvc "github.com/ivankudzin/sparkmatch/internal/services/media"
	"github.com/ivankudzin/sparkmatch/internal/services/notify"
	prefsvc "github.com/ivankudzin/sparkmatch/internal/services/preferences"
	ratesvc "github.com/ivankudzin/sparkmatch/internal/services/rate"
	swipesvc "github.com/ivankudzin/sparkmatch/internal/services/swipes"
	"github.com/ivankudzin/sparkmatch/internal/services/taxonomy"
	"github.com/ivankudzin/sparkmatch/internal/transport/http/handlers"
)

const taxonomyCacheTTL = 30 * time.Minute

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	s3         *minio.Client
	httpRouter http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, cfg, log)

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Warn("redis ping failed, rate limiting falls back to local buckets", zap.Error(err))
	}

	var s3Client *minio.Client
	if c, err := s3infra.NewClient(s3infra.Config{
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		UseSSL:    cfg.S3.UseSSL,
	}); err != nil {
		log.Warn("s3 init failed, serving images from the public base url", zap.Error(err))
	} else {
		s3Client = c
	}

	jwtManager, err := authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	if err != nil {
		return nil, fmt.Errorf("init jwt manager: %w", err)
	}
	authService := authsvc.NewService(jwtManager)

	userRepo := pgrepo.NewUserRepo(pool)
	swipeRepo := pgrepo.NewSwipeRepo(pool)
	matchRepo := pgrepo.NewMatchRepo(pool)
	boostRepo := pgrepo.NewBoostRepo(pool)
	preferenceRepo := pgrepo.NewPreferenceRepo(pool)
	taxonomyRepo := pgrepo.NewTaxonomyRepo(pool)
	outbox := redrepo.NewNotificationQueueRepo(redisClient, cfg.Push.QueueKey)
	taxonomyCache := redrepo.NewTaxonomyCacheRepo(redisClient, taxonomyCacheTTL)

	mediaStorage := mediasvc.NewS3Storage(s3Client, cfg.S3.Bucket)
	if mediaStorage.Available() {
		if err := mediaStorage.EnsureBucket(ctx); err != nil {
			log.Warn("s3 bucket bootstrap failed, presigned urls may not resolve", zap.Error(err))
		}
	}
	mediaService := mediasvc.NewService(mediaStorage, mediasvc.Config{
		PublicBaseURL:   cfg.Media.PublicBaseURL,
		DefaultImageURL: cfg.Media.DefaultImageURL,
		PresignTTL:      cfg.Media.PresignTTL,
	}, logger.Named(log, "media"))
	cardBuilder := cards.NewBuilder(mediaService)

	preferenceService := prefsvc.NewService(preferenceRepo, prefsvc.Config{
		DefaultMinAge:      cfg.Discovery.DefaultMinAge,
		DefaultMaxAge:      cfg.Discovery.DefaultMaxAge,
		DefaultMaxDistance: cfg.Discovery.DefaultMaxDistance,
	})
	feedService := feedsvc.NewService(feedsvc.Dependencies{
		Users:       userRepo,
		Swipes:      swipeRepo,
		Preferences: preferenceService,
		Boosts:      boostRepo,
		Cards:       cardBuilder,
		Logger:      logger.Named(log, "feed"),
	}, feedsvc.Config{
		DefaultPageSize:  cfg.Discovery.DefaultPageSize,
		MaxPageSize:      cfg.Discovery.MaxPageSize,
		WorkingSetFactor: cfg.Discovery.WorkingSetFactor,
	})
	swipeService := swipesvc.NewService(swipesvc.Dependencies{
		Users:    userRepo,
		Swipes:   swipeRepo,
		Matches:  matchRepo,
		Notifier: notify.NewDispatcher(outbox, logger.Named(log, "notify")),
		Logger:   logger.Named(log, "swipes"),
	})
	matchService := matchessvc.NewService(matchessvc.Dependencies{
		Matches:    matchRepo,
		Users:      userRepo,
		Swipes:     swipeRepo,
		Taxonomies: taxonomy.NewResolver(taxonomyRepo, taxonomyCache, logger.Named(log, "taxonomy")),
		Images:     mediaService,
		Cards:      cardBuilder,
	}, matchessvc.Config{
		DefaultPageSize: cfg.Discovery.DefaultPageSize,
		MaxPageSize:     cfg.Discovery.MaxPageSize,
	})
	boostService := boostsvc.NewService(boostRepo, boostsvc.Config{
		DefaultDuration: cfg.Boost.DefaultDuration,
		Packages:        boostPackages(cfg.Boost.Packages),
	}, logger.Named(log, "boost"))
	swipeLimiter := ratesvc.NewLimiter(redisClient, cfg.Limits.SwipesPerMinute, logger.Named(log, "rate"))

	// A nil pool must stay an untyped nil so the health check reports it disabled.
	var pgCheck handlers.Pinger
	if pool != nil {
		pgCheck = pool
	}
	checks := map[string]handlers.Pinger{
		"postgres": pgCheck,
		"redis":    redisPinger{client: redisClient},
	}

	RegisterRoutes(r, Dependencies{
		AuthService:       authService,
		FeedService:       feedService,
		SwipeService:      swipeService,
		MatchService:      matchService,
		PreferenceService: preferenceService,
		BoostService:      boostService,
		SwipeLimiter:      swipeLimiter,
		HealthChecks:      checks,
		Logger:            log,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		s3:         s3Client,
		httpRouter: r,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}

func boostPackages(in []config.BoostPackageConfig) []model.BoostPackage {
	out := make([]model.BoostPackage, 0, len(in))
	for _, p := range in {
		out = append(out, model.BoostPackage{
			Code:    p.Code,
			Credits: p.Credits,
			Price:   p.Price,
			Label:   p.Label,
		})
	}
	return out
}

type redisPinger struct {
	client *goredis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
