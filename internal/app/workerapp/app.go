package workerapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ivankudzin/sparkmatch/internal/config"
	"github.com/ivankudzin/sparkmatch/internal/infra/httpclient"
	"github.com/ivankudzin/sparkmatch/internal/infra/logger"
	"github.com/ivankudzin/sparkmatch/internal/infra/push"
	"github.com/ivankudzin/sparkmatch/internal/jobs/boostexpiry"
	pgrepo "github.com/ivankudzin/sparkmatch/internal/repo/postgres"
	redrepo "github.com/ivankudzin/sparkmatch/internal/repo/redis"
	notifysvc "github.com/ivankudzin/sparkmatch/internal/services/notify"
)

// App runs the background side of the service: notification delivery and
// the periodic boost expiry sweep.
type App struct {
	cfg       config.Config
	logger    *zap.Logger
	postgres  *pgxpool.Pool
	redis     *goredis.Client
	outbox    *redrepo.NotificationQueueRepo
	worker    *notifysvc.Worker
	expiryJob *boostexpiry.Job
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	pool, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, fmt.Errorf("init postgres for worker app: %w", err)
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		pool.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("init redis for worker app: %w", err)
	}

	var pusher push.Pusher
	if strings.TrimSpace(cfg.Push.PlatformApplicationARN) != "" {
		snsPusher, err := push.NewSNSPusher(ctx, push.SNSConfig{
			Region:                 cfg.Push.Region,
			PlatformApplicationARN: cfg.Push.PlatformApplicationARN,
			HTTPClient:             httpclient.New(10 * time.Second),
		})
		if err != nil {
			pool.Close()
			_ = redisClient.Close()
			return nil, fmt.Errorf("init sns pusher: %w", err)
		}
		pusher = snsPusher
	} else {
		log.Warn("push platform application is not configured, notifications will only be logged")
		pusher = push.NewLogPusher(logger.Named(log, "push"))
	}

	userRepo := pgrepo.NewUserRepo(pool)
	boostRepo := pgrepo.NewBoostRepo(pool)
	queue := redrepo.NewNotificationQueueRepo(redisClient, cfg.Push.QueueKey)

	worker := notifysvc.NewWorker(queue, userRepo, pusher, notifysvc.WorkerConfig{
		RatePerSecond: cfg.Push.RatePerSecond,
		MaxAttempts:   cfg.Push.MaxAttempts,
		PollTimeout:   cfg.Worker.PollTimeout,
	}, logger.Named(log, "notify"))

	return &App{
		cfg:       cfg,
		logger:    log,
		postgres:  pool,
		redis:     redisClient,
		outbox:    queue,
		worker:    worker,
		expiryJob: boostexpiry.New(boostRepo, cfg.Worker.BoostSweepBatch, logger.Named(log, "boostexpiry")),
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	a.logger.Info("worker app started")

	errCh := make(chan error, 2)
	go func() {
		errCh <- a.runExpiryLoop(ctx)
	}()
	go func() {
		errCh <- a.worker.Run(ctx)
	}()

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("worker app stopped")
			return nil
		case err := <-errCh:
			if err == nil || errors.Is(err, context.Canceled) {
				continue
			}
			return err
		}
	}
}

func (a *App) runExpiryLoop(ctx context.Context) error {
	interval := a.cfg.Worker.BoostSweepInterval
	if interval <= 0 {
		interval = time.Minute
	}

	a.runExpiry(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			a.runExpiry(ctx)
			a.reportBacklog(ctx)
		}
	}
}

// runExpiry logs failures instead of returning them; a store hiccup should
// not stop notification delivery.
func (a *App) runExpiry(ctx context.Context) {
	if err := a.expiryJob.Run(ctx); err != nil && ctx.Err() == nil {
		a.logger.Warn("boost expiry sweep failed", zap.Error(err))
	}
}

func (a *App) reportBacklog(ctx context.Context) {
	pending, err := a.outbox.Len(ctx)
	if err != nil {
		if ctx.Err() == nil {
			a.logger.Warn("read notification backlog failed", zap.Error(err))
		}
		return
	}
	if pending > 0 {
		a.logger.Info("notification backlog", zap.Int64("pending", pending))
	}
}

func (a *App) Close() {
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
}
