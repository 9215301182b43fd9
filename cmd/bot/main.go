package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/moonforge/worker-bot/internal/bot"
	"github.com/moonforge/worker-bot/internal/database"
	"github.com/moonforge/worker-bot/internal/deposit"
	"github.com/moonforge/worker-bot/internal/health"
	"github.com/moonforge/worker-bot/internal/idempotency"
	"github.com/moonforge/worker-bot/internal/jobs"
	jobhandlers "github.com/moonforge/worker-bot/internal/jobs/handlers"
	"github.com/moonforge/worker-bot/internal/lifecycle"
	"github.com/moonforge/worker-bot/internal/middleware"
	"github.com/moonforge/worker-bot/internal/pricefeed"
	"github.com/moonforge/worker-bot/internal/ratelimit"
	"github.com/moonforge/worker-bot/internal/repository"
	"github.com/moonforge/worker-bot/internal/state"
	"github.com/moonforge/worker-bot/internal/worker"
	"github.com/moonforge/worker-bot/internal/workercache"
	"github.com/moonforge/worker-bot/internal/workflow"
	"github.com/moonforge/worker-bot/pkg/config"
	"github.com/moonforge/worker-bot/pkg/graceful"
	"github.com/moonforge/worker-bot/pkg/logger"
	"github.com/moonforge/worker-bot/pkg/metrics"
	redisclient "github.com/moonforge/worker-bot/pkg/redis"

	_ "github.com/lib/pq"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, _, err := config.Load()
	if err != nil {
		return err
	}

	if cfg.Sentry.Enabled {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.Sentry.DSN,
			Environment:      cfg.AppEnv,
			TracesSampleRate: cfg.Sentry.Rate,
		}); err != nil {
			return err
		}
		defer sentry.Flush(2 * time.Second)
	}

	log := logger.New(*cfg)
	log.Info("starting worker bot",
		slog.String("env", cfg.AppEnv),
		slog.String("mode", cfg.Bot.Mode),
		slog.String("zone", cfg.Bot.Zone),
	)

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		return err
	}

	if err := database.NewMigrator(db, log).ApplyDir(ctx, cfg.Database.MigrationsDir); err != nil {
		return err
	}

	rdb, err := redisclient.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}

	// Data layer.
	workers := repository.NewWorkerRepository(db, log)
	domains := repository.NewDomainRepository(db, log)
	profits := repository.NewProfitRepository(db, log)
	withdrawals := repository.NewWithdrawalRepository(db, log)

	cache := workercache.NewCache(rdb.Client)
	workerService := worker.NewService(workers, cache, log)
	locker := state.NewLocker(rdb.Client, log)
	prices := pricefeed.NewClient(cfg.Pricefeed, rdb.Client, log)

	engine := workflow.NewEngine(workflow.Config{
		Workers:     workers,
		Domains:     domains,
		Profits:     profits,
		Withdrawals: withdrawals,
		Service:     workerService,
		Locker:      locker,
		Prices:      prices,
		AdminIDs:    cfg.Bot.AdminSet(),
		AdminChatID: cfg.Bot.AdminChatID,
		Zone:        cfg.Bot.Zone,
		Log:         log,
	})

	idemManager := idempotency.NewManager(idempotency.NewRedisStore(rdb.Client, log), log)

	rules := ratelimit.NewRules(cfg.RateLimit, cfg.Bot.AdminSet())
	limiter := ratelimit.NewRedisLimiter(rdb.Client, log)
	rateLimitMw := middleware.NewRateLimitMiddleware(limiter, rules, log)

	appBot, err := bot.New(*cfg, log, engine, workerService, idemManager, rateLimitMw)
	if err != nil {
		return err
	}

	// Deposit webhook pushes notifications through the live bot session.
	notifier := bot.NewNotifier(appBot.Telebot())
	depositService := deposit.NewService(workers, domains, profits, notifier, prices, cfg.Bot.AdminChatID, log)
	depositHandler := deposit.NewHandler(depositService, cfg.Deposit.Secret, log)

	checker := health.NewChecker(log)
	checker.AddCheck("database", health.NewDBChecker(db))
	checker.AddCheck("redis", health.NewRedisChecker(rdb.Client))
	checker.AddCheck("telegram", health.NewTelegramChecker(appBot.Telebot()))

	mux := http.NewServeMux()
	mux.Handle("/health", checker.Handler())
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/webhooks/deposit", depositHandler)

	opsServer := graceful.NewServer(log, &http.Server{
		Addr:              cfg.Server.Port,
		Handler:           logger.Middleware(log)(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}, cfg.Server.ShutdownTimeout)

	shutdown := lifecycle.NewShutdown(cfg.Server.ShutdownTimeout, log)
	shutdown.Register("database", func(context.Context) error { return db.Close() })
	shutdown.Register("redis", func(context.Context) error { return rdb.Close() })
	shutdown.Register("bot", func(context.Context) error {
		appBot.Stop()
		return nil
	})

	if cfg.Jobs.Enabled {
		redisOpt := asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}

		jobsWorker := jobs.NewWorker(redisOpt, cfg.Jobs.Concurrency, log)
		jobsWorker.RegisterHandler(jobs.TaskTypePriceRefresh, jobhandlers.NewPriceRefreshHandler(prices, log))
		jobsWorker.RegisterHandler(jobs.TaskTypeStepCleanup, jobhandlers.NewStepCleanupHandler(workers, log))

		scheduler := jobs.NewScheduler(redisOpt, cfg.Jobs, log)
		if err := scheduler.RegisterTasks(); err != nil {
			return err
		}

		go func() {
			if err := jobsWorker.Run(); err != nil {
				log.Error("jobs worker stopped", "error", err)
			}
		}()
		scheduler.Run()

		// Warm the price cache right away instead of waiting for the
		// first scheduled refresh.
		queue := jobs.NewManager(redisOpt, log)
		if _, err := queue.Enqueue(ctx, jobs.NewPriceRefreshTask()); err != nil {
			log.Warn("initial price refresh enqueue failed", "error", err)
		}

		shutdown.Register("jobs", func(context.Context) error {
			scheduler.Shutdown()
			jobsWorker.Shutdown()
			return queue.Close()
		})
	}

	go metrics.NewWorkerGaugeCollector(workers, time.Minute).Run(ctx)

	go appBot.Start()

	go func() {
		if err := opsServer.ListenAndServe(ctx); err != nil {
			log.Error("ops server stopped", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	return shutdown.Execute(context.Background())
}
