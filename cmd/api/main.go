package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"

	"uploadapi/internal/cleanup"
	"uploadapi/internal/config"
	"uploadapi/internal/database"
	"uploadapi/internal/database/migration"
	handlers "uploadapi/internal/http/handler"
	"uploadapi/internal/http/middleware"
	"uploadapi/internal/image"
	"uploadapi/internal/jobs"
	"uploadapi/internal/otel"
	"uploadapi/internal/presence"
	"uploadapi/internal/registry"
	"uploadapi/internal/repository/postgres"
	"uploadapi/internal/service"
	"uploadapi/internal/storage"
	"uploadapi/internal/upload"
)

func main() {
	mode := flag.String("mode", "all", "run mode: all, api or worker")
	flag.Parse()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	cfg := config.Load()
	ctx := context.Background()

	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		log.Error("failed to initialize tracing", "error", err)
		os.Exit(1)
	}
	defer shutdownTracing(ctx)

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, log); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}

	store, err := storage.NewDiskStore(afero.NewOsFs(), cfg.Upload.Dir, cfg.Upload.PublicPrefix, log)
	if err != nil {
		log.Error("failed to prepare upload directories", "error", err)
		os.Exit(1)
	}

	var rdb *redis.Client
	if cfg.Redis.Disabled {
		log.Warn("redis disabled, presence tracking and scheduled cleanup are off")
	} else {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
	}

	metricsReg := prometheus.NewRegistry()
	metricsReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	userRepo := postgres.NewUserPostgres(db)
	refRepo := postgres.NewReferencePostgres(db)
	userSvc := service.NewUserService(userRepo, store, log)
	cache := presence.NewCache(rdb, time.Duration(cfg.Redis.PresenceTTLSec)*time.Second)

	ingestor := upload.NewIngestor(store, cfg.Upload, log)
	optimizer := image.NewOptimizer(store.Fs(), cfg.Upload.OptimizeThreshold, log)

	cleanupMetrics, err := cleanup.NewMetrics(metricsReg)
	if err != nil {
		log.Error("failed to register cleanup metrics", "error", err)
		os.Exit(1)
	}

	var runner *jobs.Runner
	if *mode != "api" {
		if cfg.Redis.Disabled {
			log.Warn("worker mode requested but redis is disabled, skipping cleanup jobs")
		} else {
			reclaimer := cleanup.NewOrphanReclaimer(store, refRepo, registry.Default(), log, cleanupMetrics)
			purger := cleanup.NewUnverifiedPurger(userRepo, store,
				time.Duration(cfg.Cleanup.MaxUnverifiedAgeHrs)*time.Hour, log, cleanupMetrics)

			redisOpt := asynq.RedisClientOpt{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			}
			runner = jobs.NewRunner(reclaimer, purger, cleanupMetrics, cfg.Cleanup, redisOpt, log)
			if err := runner.Start(); err != nil {
				log.Error("failed to start cleanup jobs", "error", err)
				os.Exit(1)
			}
			defer runner.Stop()
		}
	}

	if *mode == "worker" {
		waitForSignal(log)
		return
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    int(cfg.Upload.MaxFileSize) * (cfg.Upload.MaxFiles + 1),
	})

	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(log))

	promMw, err := middleware.NewPrometheusMiddleware(metricsReg)
	if err != nil {
		log.Error("failed to register http metrics", "error", err)
		os.Exit(1)
	}
	app.Use(promMw.Handler())
	app.Use(middleware.FileUpload(ingestor, optimizer, log))

	handlers.RegisterRoutes(app, db, userSvc, cache, metricsReg)

	// Stored files are served directly by their public paths.
	app.Static(cfg.Upload.PublicPrefix, cfg.Upload.Dir)

	addr := ":" + cfg.Port
	log.Info("api listening", "addr", addr, "mode", *mode)
	if err := app.Listen(addr); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func waitForSignal(log *slog.Logger) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	s := <-sig
	log.Info("shutting down", "signal", s.String())
}
