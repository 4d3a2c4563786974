package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/beaconlabs/beacon/internal/config"
	"github.com/beaconlabs/beacon/internal/database"
	"github.com/beaconlabs/beacon/internal/handler"
	"github.com/beaconlabs/beacon/internal/jobs"
	"github.com/beaconlabs/beacon/internal/middleware"
	"github.com/beaconlabs/beacon/internal/repository"
	"github.com/beaconlabs/beacon/internal/service"
)

// services bundles the wired pipeline services
type services struct {
	queue      *service.QueueService
	orch       *service.Orchestrator
	alerts     *service.AlertService
	completion *service.CompletionService
	authState  *service.AuthStateService
}

func buildServices(cfg *config.Config, db database.Database) *services {
	jobRepo := repository.NewJobRepository(db)
	campaignRepo := repository.NewCampaignRepository(db)
	postRepo := repository.NewPostRepository(db)
	engagementRepo := repository.NewEngagementRepository(db)
	alertRepo := repository.NewAlertRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)
	authStateRepo := repository.NewAuthStateRepository(db)

	var deliverer service.Deliverer
	switch cfg.Delivery.Transport {
	case "webhook":
		deliverer = service.NewWebhookDeliverer(cfg.Delivery.WebhookURL, cfg.Delivery.Timeout)
	default:
		deliverer = service.LogDeliverer{}
	}

	alerts := service.NewAlertService(service.AlertServiceConfig{
		AlertRepo:      alertRepo,
		EngagementRepo: engagementRepo,
		CampaignRepo:   campaignRepo,
		Scorer:         service.FollowerScorer{},
		Deliverer:      deliverer,
		Spacing:        cfg.AlertSpacing(),
	})

	return &services{
		queue: service.NewQueueService(service.QueueServiceConfig{
			JobRepo:      jobRepo,
			CampaignRepo: campaignRepo,
			PostRepo:     postRepo,
		}),
		orch: service.NewOrchestrator(service.OrchestratorConfig{
			JobRepo:           jobRepo,
			PostRepo:          postRepo,
			SnapshotRepo:      snapshotRepo,
			Platform:          service.PassivePlatform{},
			Alerts:            alerts,
			Concurrency:       cfg.Pipeline.Concurrency,
			StaleClaimTimeout: cfg.Pipeline.StaleClaimTimeout,
			SoftDeadline:      cfg.Pipeline.ProcessTimeout,
		}),
		alerts: alerts,
		completion: service.NewCompletionService(service.CompletionServiceConfig{
			CampaignRepo: campaignRepo,
		}),
		authState: service.NewAuthStateService(service.AuthStateServiceConfig{
			StateRepo: authStateRepo,
			TTL:       cfg.Auth.StateTTL,
		}),
	}
}

func buildRouter(cfg *config.Config, db database.Database, svc *services) http.Handler {
	pipeline := handler.NewPipelineHandler(handler.PipelineHandlerConfig{
		Queue:      svc.queue,
		Orch:       svc.orch,
		Alerts:     svc.alerts,
		Completion: svc.completion,
		MaxJobs:    cfg.Pipeline.MaxJobsPerRun,
		SendLimit:  cfg.Pipeline.AlertSendLimit,
	})
	health := handler.NewHealthHandler(db)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", health.Health)

	// Cycle entry points, normally hit by an external scheduler
	mux.HandleFunc("POST /v1/pipeline/trigger", pipeline.Trigger)
	mux.HandleFunc("POST /v1/pipeline/process", pipeline.Process)
	mux.HandleFunc("POST /v1/alerts/dispatch", pipeline.Dispatch)
	mux.HandleFunc("POST /v1/campaigns/complete-expired", pipeline.CompleteExpired)

	// Queue surface
	mux.HandleFunc("POST /v1/jobs", pipeline.Enqueue)
	mux.HandleFunc("POST /v1/campaigns/{campaignId}/jobs", pipeline.EnqueueCampaign)
	mux.HandleFunc("GET /v1/jobs/stats", pipeline.Stats)

	return mux
}

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("config invalid", slog.String("error", err.Error()))
		os.Exit(1)
	}

	db := database.NewSurrealDB(database.Config{
		Host:      cfg.Database.Host,
		Port:      cfg.Database.Port,
		User:      cfg.Database.User,
		Password:  cfg.Database.Password,
		Namespace: cfg.Database.Namespace,
		Database:  cfg.Database.Database,
	})
	if err := db.Connect(context.Background()); err != nil {
		slog.Error("store connection failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	slog.Info("store connected",
		slog.String("host", cfg.Database.Host),
		slog.String("database", cfg.Database.Database),
	)

	svc := buildServices(cfg, db)

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		Rate:   100,
		Window: time.Minute,
		Burst:  20,
	})
	defer rateLimiter.Stop()

	idempotencyStore := middleware.NewIdempotencyStore(middleware.IdempotencyConfig{
		TTL:     24 * time.Hour,
		Cleanup: time.Hour,
	})
	defer idempotencyStore.Stop()

	// Built-in runners for single-binary deployments; production normally
	// drives the trigger endpoints from an external scheduler instead
	if cfg.Pipeline.RunnersEnabled {
		trigger := jobs.NewPipelineTrigger(svc.queue, svc.completion, svc.authState, cfg.Pipeline.TriggerInterval)
		trigger.Start()
		defer trigger.Stop()

		worker := jobs.NewJobWorker(svc.orch, time.Minute, cfg.Pipeline.MaxJobsPerRun)
		worker.Start()
		defer worker.Stop()

		dispatcher := jobs.NewAlertDispatcher(svc.alerts, time.Minute, cfg.Pipeline.AlertSendLimit)
		dispatcher.Start()
		defer dispatcher.Stop()
	}

	server := &http.Server{
		Addr: ":" + cfg.Server.Port,
		Handler: middleware.Chain(
			buildRouter(cfg, db, svc),
			middleware.RequestID,
			middleware.Logger,
			middleware.Recovery,
			middleware.RateLimit(rateLimiter),
			middleware.Idempotency(idempotencyStore),
			middleware.Compress,
		),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("server listening",
			slog.String("port", cfg.Server.Port),
			slog.String("env", cfg.Server.Env),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown forced", slog.String("error", err.Error()))
	}

	slog.Info("server stopped")
}
