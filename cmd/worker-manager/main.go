// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"connect-workers/internal/common/aws"
	"connect-workers/internal/common/camunda"
	"connect-workers/internal/common/config"
	"connect-workers/internal/common/database"
	"connect-workers/internal/common/logger"
	"connect-workers/internal/common/observability"
	"connect-workers/internal/scoring"
	"connect-workers/internal/wizards"
	"connect-workers/pkg/registry"

	car "connect-workers/internal/workers/application/create-application-record"
	rar "connect-workers/internal/workers/application/route-application-review"
	spa "connect-workers/internal/workers/application/score-provider-application"
	sn "connect-workers/internal/workers/application/send-notification"
	vws "connect-workers/internal/workers/application/validate-wizard-step"
	wsc "connect-workers/internal/workers/application/wizard-session-command"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...", zap.String("environment", cfg.App.Environment))

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		zapLog.Fatal("observability setup failed", zap.Error(err))
	}

	ctx := context.Background()

	// --- Zeebe ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClient(ctx, cfg.Camunda)
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- PostgreSQL ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Elasticsearch ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Redis ---
	redis := database.NewRedis(cfg.Database.Redis)
	err = retryWithBackoff(func() error {
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- AWS ---
	awsCfg, err := aws.LoadConfig(ctx, cfg.Notifications.AWS.Region)
	if err != nil {
		zapLog.Fatal("aws config failed", zap.Error(err))
	}

	// --- Shared domain services ---
	scoringCfg, err := scoring.FromSettings(cfg.Scoring)
	if err != nil {
		zapLog.Fatal("invalid scoring settings", zap.Error(err))
	}
	engine, err := scoring.NewEngine(scoringCfg)
	if err != nil {
		zapLog.Fatal("scoring engine failed", zap.Error(err))
	}
	catalogue := wizards.Default()

	// --- Handlers ---
	recordHandler, err := car.NewHandler(car.HandlerOptions{
		Config:    car.FromAppConfig(cfg),
		DB:        pg,
		Engine:    engine,
		Catalogue: catalogue,
		Logger:    log,
	})
	if err != nil {
		zapLog.Fatal("failed to create create-application-record handler", zap.Error(err))
	}

	sessionHandler, err := wsc.NewHandler(wsc.HandlerOptions{
		Config:    wsc.FromAppConfig(cfg),
		Catalogue: catalogue,
		Redis:     redis,
		Submitter: recordHandler.Recorder(),
		Engine:    engine,
		Tracer:    obs,
		Logger:    log,
	})
	if err != nil {
		zapLog.Fatal("failed to create wizard-session-command handler", zap.Error(err))
	}

	validateHandler, err := vws.NewHandler(vws.HandlerOptions{
		Config:    vws.FromAppConfig(cfg),
		Catalogue: catalogue,
		Logger:    log,
	})
	if err != nil {
		zapLog.Fatal("failed to create validate-wizard-step handler", zap.Error(err))
	}

	scoreHandler, err := spa.NewHandler(spa.HandlerOptions{
		Config: spa.FromAppConfig(cfg),
		Engine: engine,
		Logger: log,
	})
	if err != nil {
		zapLog.Fatal("failed to create score-provider-application handler", zap.Error(err))
	}

	routeHandler, err := rar.NewHandler(rar.HandlerOptions{
		Config: rar.FromAppConfig(cfg),
		Index:  esClient,
		Logger: log,
	})
	if err != nil {
		zapLog.Fatal("failed to create route-application-review handler", zap.Error(err))
	}
	if err := routeHandler.Setup(ctx); err != nil {
		zapLog.Fatal("review index setup failed", zap.Error(err))
	}

	notifyHandler, err := sn.NewHandler(sn.HandlerOptions{
		Config: sn.FromAppConfig(cfg),
		Email:  aws.NewSESClient(awsCfg),
		SMS:    aws.NewSNSClient(awsCfg),
		Logger: log,
	})
	if err != nil {
		zapLog.Fatal("failed to create send-notification handler", zap.Error(err))
	}

	handlers := []struct {
		taskType string
		handler  camunda.JobHandler
	}{
		{wsc.TaskType, sessionHandler},
		{vws.TaskType, validateHandler},
		{spa.TaskType, scoreHandler},
		{car.TaskType, recordHandler},
		{rar.TaskType, routeHandler},
		{sn.TaskType, notifyHandler},
	}

	reg := registry.Default()
	var workers []*camunda.Worker
	for _, h := range handlers {
		if a, ok := reg.Find(h.taskType); ok {
			zapLog.Debug("registering activity", zap.String("taskType", h.taskType), zap.String("activity", a.DisplayName))
		}
		wc := config.GetWorkerConfig(cfg, h.taskType)
		if !wc.Enabled {
			zapLog.Info("worker disabled", zap.String("taskType", h.taskType))
			continue
		}
		workers = append(workers, camunda.StartWorker(zeebe.Zeebe(), h.taskType, wc, h.handler, obs, log))
	}
	zapLog.Info("workers registered", zap.Int("count", len(workers)))

	// --- Health & Metrics Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "healthy")
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		checkCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := readiness(checkCtx, zeebe, pg, redis); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		writeStatus(w, http.StatusOK, "ready")
	})
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/debug/pprof/", http.DefaultServeMux)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Metrics.Port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Stop()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error flushing telemetry", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

type pinger interface {
	Ping(ctx context.Context) error
}

func readiness(ctx context.Context, zeebe *camunda.Client, deps ...pinger) error {
	if err := zeebe.HealthCheck(ctx); err != nil {
		return err
	}
	for _, d := range deps {
		if err := d.Ping(ctx); err != nil {
			return err
		}
	}
	return nil
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
	})
}
