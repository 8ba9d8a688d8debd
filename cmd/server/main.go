package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/tanvir4425/Mask-App-sub001/internal/classifier"
	"github.com/tanvir4425/Mask-App-sub001/internal/config"
	"github.com/tanvir4425/Mask-App-sub001/internal/db"
	"github.com/tanvir4425/Mask-App-sub001/internal/handler"
	"github.com/tanvir4425/Mask-App-sub001/internal/middleware"
	"github.com/tanvir4425/Mask-App-sub001/internal/model"
	"github.com/tanvir4425/Mask-App-sub001/internal/repository"
	"github.com/tanvir4425/Mask-App-sub001/internal/router"
	"github.com/tanvir4425/Mask-App-sub001/internal/rules"
	"github.com/tanvir4425/Mask-App-sub001/internal/service"
)

const rulesPollInterval = 30 * time.Second

func main() {
	cfg := config.Load()

	middleware.InitLogger(cfg.LogLevel, "factcheck")
	log := middleware.Logger

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	cache := service.NewCacheService(cfg.RedisURL, log)
	defer cache.Close()

	// Repositories
	posts := repository.NewPostRepo(pool)
	results := repository.NewFactCheckRepo(pool)
	trusts := repository.NewTrustRepo(pool)

	// Classification stages
	ruleStore := rules.NewStore(cfg.FactCheck.RulesFile, log)
	gemini := classifier.NewGemini(ctx, classifier.GeminiConfig{
		APIKey:        cfg.FactCheck.GeminiAPIKey,
		ModelName:     cfg.FactCheck.GeminiModel,
		ImageEnabled:  cfg.FactCheck.AIImageEnabled,
		ImageMaxBytes: cfg.FactCheck.AIImageMaxBytes,
	}, log)
	defer gemini.Close()

	budget := classifier.NewHourlyBudget(cfg.FactCheck.AIHourlyBudget, cfg.FactCheck.AIMinInterval)
	aiStage := &classifier.AIStage{
		Gemini: gemini,
		Budget: budget,
		Config: classifier.AIStageConfig{
			Enabled:    cfg.FactCheck.AIEnabled,
			Force:      cfg.FactCheck.AIForce,
			DemoOnly:   cfg.FactCheck.AIDemoOnly,
			TriggerTag: cfg.FactCheck.AITriggerTag,
		},
		Log: log,
	}
	fileRules := &classifier.FileRulesStage{Store: ruleStore, Enabled: cfg.FactCheck.RulesEnabled}
	stages := service.BuildStages(cfg.FactCheck, aiStage, fileRules)

	// Pipeline core
	trust := service.NewTrustService(cfg.Trust)
	svc := service.NewFactCheckService(cfg.FactCheck, posts, results, trusts, trust, stages, cache, log)

	var queue service.Queue
	if cfg.FactCheck.QueueMode == "redis" && cache.Client() != nil {
		queue = service.NewRedisQueue(cache.Client(), svc, log)
	} else {
		if cfg.FactCheck.QueueMode == "redis" {
			log.Warn().Msg("redis queue requested but redis unavailable, using local queue")
		}
		queue = service.NewLocalQueue(svc, log)
	}
	svc.SetQueue(queue)
	queue.Start(ctx)

	trigger := service.NewAutoTrigger(cfg.AutoTrigger, svc)

	// Metrics, wired into the pipeline hooks
	handler.InitMetrics(pool, svc.QueueLen, budget.Remaining)
	svc.OnProcessed = func(stage string, verdict model.Verdict) {
		handler.Metrics.JobsProcessed.WithLabelValues(stage, string(verdict)).Inc()
	}
	svc.OnSkipped = func(reason string) {
		handler.Metrics.JobsSkipped.WithLabelValues(reason).Inc()
	}
	aiStage.OnCall = func(outcome string) {
		handler.Metrics.AICalls.WithLabelValues(outcome).Inc()
	}
	aiStage.OnBudgetSkip = func() {
		handler.Metrics.AIBudgetSkips.Inc()
	}

	// Background jobs
	jobs := []*service.BatchJob{
		{
			Name:     "rules-reload",
			Interval: rulesPollInterval,
			Log:      log,
			Tick: func(context.Context) error {
				ruleStore.Poll()
				return nil
			},
		},
		service.NewRetentionWorker(cfg.Retention, posts, log).Job(),
	}
	if cfg.FactCheck.OnlyOnce {
		// Re-checking is pointless when every existing result is terminal.
		log.Warn().Msg("only-once mode set, recheck scheduler disabled")
	} else {
		jobs = append(jobs, service.NewRecheckJob(cfg.Recheck, results, svc, log))
	}
	for _, j := range jobs {
		j.OnDuration = func(name string) func(time.Duration) {
			return func(d time.Duration) {
				handler.Metrics.TickDuration.WithLabelValues(name).Observe(d.Seconds())
			}
		}(j.Name)
		go j.Start(ctx)
	}

	// HTTP surface
	app := fiber.New(fiber.Config{
		AppName:      "FactCheck API",
		ServerHeader: "FactCheck",
	})
	router.Setup(app, &router.Handlers{
		FactCheck: handler.NewFactCheckHandler(svc),
		Trust:     handler.NewTrustHandler(svc),
		Event:     handler.NewEventHandler(svc, trigger),
		Admin:     handler.NewAdminHandler(svc),
		Health:    handler.NewHealthHandler(pool, cache.Client(), svc),
	}, cfg.CORSOrigins)

	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error().Err(err).Msg("shutdown failed")
		}
	}()

	log.Info().Str("port", cfg.Port).Str("env", cfg.Environment).Msg("factcheck backend starting")
	if err := app.Listen(":"+cfg.Port, fiber.ListenConfig{DisableStartupMessage: true}); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
