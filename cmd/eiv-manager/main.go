package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"eiv-admissions/internal/api"
	awsclient "eiv-admissions/internal/common/aws"
	"eiv-admissions/internal/common/camunda"
	"eiv-admissions/internal/common/config"
	"eiv-admissions/internal/common/database"
	apphttp "eiv-admissions/internal/common/http"
	"eiv-admissions/internal/common/logger"
	"eiv-admissions/internal/common/observability"
	"eiv-admissions/internal/eiv/persistence"
	"eiv-admissions/internal/eiv/pipeline"
	"eiv-admissions/internal/eiv/reference"
	"eiv-admissions/internal/eiv/scoring"
	"eiv-admissions/internal/eiv/synthesis"
	eivpredict "eiv-admissions/internal/workers/admissions/eiv-predict"
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
		zap.NewExample().Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting EIV manager...",
		zap.String("app", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		zapLog.Warn("observability exporter unavailable, stage metrics disabled", zap.Error(err))
		obs = observability.NewNoop()
	}

	ctx := context.Background()
	checks := map[string]apphttp.Check{}

	// --- Results store (PostgreSQL) ---
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
	checks["postgres"] = pg.Ping
	zapLog.Info("PostgreSQL connected successfully")

	// --- Reference warehouse ---
	var wh *database.WarehouseClient
	err = retryWithBackoff(func() error {
		var err error
		wh, err = database.NewWarehouse(cfg.Database.Warehouse)
		if err != nil {
			return err
		}
		return wh.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Warehouse connection")
	if err != nil {
		zapLog.Fatal("warehouse failed after retries", zap.Error(err))
	}
	defer wh.Close()
	checks["warehouse"] = wh.Ping
	zapLog.Info("Warehouse connected successfully", zap.String("driver", wh.Driver))

	referenceQuery, err := database.ReadQueryFile(cfg.Database.Warehouse.QueryFile)
	if err != nil {
		zapLog.Fatal("reference query unavailable", zap.Error(err))
	}

	// --- Reference snapshot cache (Redis, optional) ---
	var snapshots reference.SnapshotStore
	if cfg.Database.Redis.Enabled && cfg.EIV.SnapshotTTL > 0 {
		redis := database.NewRedis(cfg.Database.Redis)
		err = retryWithBackoff(func() error {
			return redis.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer redis.Close()
		snapshots = reference.NewRedisSnapshotCache(redis.Client, config.GetDuration(cfg.EIV.SnapshotTTL))
		zapLog.Info("Redis connected successfully")
	}

	// --- AWS (artifacts, prediction events) ---
	var (
		s3Client  *awsclient.S3Client
		snsClient *awsclient.SNSClient
	)
	if cfg.EIV.ArtifactSource == "s3" || cfg.AWS.SNS.Enabled {
		sdkCfg, err := awsclient.LoadConfig(ctx, cfg.AWS.Region)
		if err != nil {
			zapLog.Fatal("aws config failed", zap.Error(err))
		}
		s3Client = awsclient.NewS3Client(sdkCfg)
		snsClient = awsclient.NewSNSClient(sdkCfg)
	}

	var store scoring.ArtifactStore
	switch cfg.EIV.ArtifactSource {
	case "s3":
		store = scoring.NewS3Store(s3Client, cfg.AWS.ArtifactBucket, cfg.AWS.ArtifactPrefix)
	default:
		store = scoring.NewFileStore(cfg.EIV.ArtifactDir)
	}
	modelLoader := scoring.NewLoader(store, cfg.EIV.ManifestKey, log)
	if _, err := modelLoader.Get(ctx); err != nil {
		// Requests retry the load; a missing artifact is reported per request.
		zapLog.Warn("model artifacts not loaded at startup", zap.Error(err))
	}

	// --- Result persistence and sinks ---
	resultStore, err := persistence.NewResultStore(pg, cfg.EIV.ResultTable)
	if err != nil {
		zapLog.Fatal("result store failed", zap.Error(err))
	}
	var sinks []persistence.Sink
	if cfg.Database.Elasticsearch.Enabled {
		var es *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			es, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return es.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		sinks = append(sinks, persistence.NewElasticIndexer(es.Client, cfg.Database.Elasticsearch.Index))
		zapLog.Info("Elasticsearch connected successfully")
	}
	if cfg.AWS.SNS.Enabled {
		sinks = append(sinks, persistence.NewSNSPublisher(snsClient, cfg.AWS.SNS.TopicARN))
	}

	service := pipeline.NewService(pipeline.Deps{
		Reference:     reference.NewLoader(wh, referenceQuery, snapshots, log),
		Guard:         reference.NewGuard(cfg.EIV.GuardEnabled, cfg.EIV.GuardBypassColumns),
		Models:        modelLoader,
		Synthesizer:   synthesis.NewSynthesizer(cfg.EIV.ResetDate),
		Persister:     persistence.NewPersister(resultStore, log, sinks...),
		Observability: obs,
		Logger:        log,
	})

	// --- Zeebe worker ---
	var (
		zeebe     *camunda.Client
		eivWorker *camunda.Worker
	)
	if cfg.Camunda.Enabled {
		zeebe, err = camunda.Connect(ctx, cfg.Camunda, camunda.DefaultRetryConfig, log)
		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}
		checks["zeebe"] = zeebe.HealthCheck
		zapLog.Info("Zeebe client connected successfully")

		wcfg := config.GetWorkerConfig(cfg, eivpredict.TaskType)
		handler := eivpredict.NewHandler(
			&eivpredict.Config{Timeout: config.GetDuration(wcfg.Timeout)},
			service, log,
		)
		eivWorker = camunda.StartWorker(zeebe.GetClient(), eivpredict.TaskType, wcfg, handler.Handle, log)
	}

	// --- HTTP API, health & metrics ---
	server := apphttp.NewServer(cfg.Server, log, checks)
	api.NewHandler(service).Register(server.Engine())
	go func() {
		if err := server.Start(); err != nil {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping http server", zap.Error(err))
	}
	eivWorker.Stop()
	if zeebe != nil {
		if err := zeebe.Close(); err != nil {
			zapLog.Error("Error closing Zeebe client", zap.Error(err))
		}
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping observability", zap.Error(err))
	}

	zapLog.Info("EIV manager stopped gracefully")
}
