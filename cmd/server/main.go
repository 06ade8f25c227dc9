// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recruitflow/internal/api"
	"recruitflow/internal/auth"
	commonaws "recruitflow/internal/common/aws"
	"recruitflow/internal/common/config"
	"recruitflow/internal/common/database"
	"recruitflow/internal/common/logger"
	"recruitflow/internal/common/observability"
	"recruitflow/internal/cv"
	"recruitflow/internal/events"
	"recruitflow/internal/notify"
	"recruitflow/internal/pipeline"
	"recruitflow/internal/scoring"
	"recruitflow/internal/search"
	"recruitflow/internal/store"
)

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

func rawES(c *database.ElasticsearchClient) *elasticsearch.Client {
	if c == nil {
		return nil
	}
	return c.Client
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

	zapLog.Info("Starting recruitflow server...",
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Resolve the record store ---
	// Postgres is tried first when configured; an unreachable database drops
	// the process into memory mode rather than keeping it down.
	storeMode := store.ModeMemory
	var recordStore store.Store

	if cfg.Store.Mode == string(store.ModePostgres) {
		var pg *database.PostgresClient
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 5, 2*time.Second, zapLog, "PostgreSQL connection")

		if err != nil {
			zapLog.Warn("postgres unreachable, falling back to in-memory store", zap.Error(err))
		} else {
			defer pg.Close()
			storeMode = store.ModePostgres
			recordStore = store.NewPostgresStore(pg.DB)
			zapLog.Info("PostgreSQL connected successfully")
		}
	}
	if recordStore == nil {
		recordStore = store.NewMemoryStore()
		zapLog.Warn("running with in-memory store, all records are lost on restart")
	}

	// --- Init Redis (sessions) ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 5, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	sessions := auth.NewSessionStore(redis.Client, time.Duration(cfg.Auth.SessionTTL)*time.Second, log)

	// --- Init Elasticsearch (candidate search, optional) ---
	searchEnabled := cfg.Search.Enabled
	var esClient *database.ElasticsearchClient
	if searchEnabled {
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping(ctx)
		}, 5, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Warn("elasticsearch unreachable, candidate search disabled", zap.Error(err))
			searchEnabled = false
			esClient = nil
		} else {
			zapLog.Info("Elasticsearch connected successfully")
		}
	}

	indexer := search.NewIndexer(rawES(esClient), cfg.Search.Index, searchEnabled, log)

	// --- Init AWS clients (both channels degrade to simulation) ---
	var sesSenderClient notify.SESService
	if cfg.Notifications.Email.Enabled {
		sesClient, err := commonaws.NewSESClient(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Warn("SES client init failed, email sends will be simulated", zap.Error(err))
		} else {
			sesSenderClient = sesClient
		}
	}

	var snsPublisherClient events.SNSService
	if cfg.Events.SNS.Enabled {
		snsClient, err := commonaws.NewSNSClient(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Warn("SNS client init failed, hired events disabled", zap.Error(err))
		} else {
			snsPublisherClient = snsClient
		}
	}

	// --- Init scoring provider ---
	var provider scoring.Provider
	if cfg.Scoring.APIKey != "" {
		generator, err := scoring.NewGenerator(ctx, cfg.Scoring.APIKey, cfg.Scoring.Model)
		if err != nil {
			zapLog.Warn("scoring client init failed, evaluations will be degraded", zap.Error(err))
			provider = scoring.NewUnconfiguredProvider(log)
		} else {
			provider = scoring.NewGeminiProvider(generator, time.Duration(cfg.Scoring.Timeout)*time.Millisecond, log)
		}
	} else {
		zapLog.Warn("no scoring API key configured, evaluations will be degraded")
		provider = scoring.NewUnconfiguredProvider(log)
	}

	// --- Wire the pipeline ---
	emailSender := notify.NewSESEmailSender(sesSenderClient, cfg.Notifications.Email.FromEmail, cfg.Notifications.Email.Enabled, log)

	var waClient notify.WhatsAppService
	if cfg.Notifications.WhatsApp.Enabled {
		waClient = notify.NewGraphClient(
			cfg.Notifications.WhatsApp.BaseURL,
			cfg.Notifications.WhatsApp.AccessToken,
			cfg.Notifications.WhatsApp.PhoneNumberID,
		)
	}
	whatsappSender := notify.NewGraphWhatsAppSender(waClient, cfg.Notifications.WhatsApp.Enabled, log)

	notifier := notify.NewNotifier(emailSender, whatsappSender, log)
	publisher := events.NewPublisher(snsPublisherClient, cfg.Events.SNS.TopicARN, cfg.Events.SNS.Enabled, log)
	pipelineService := pipeline.NewService(recordStore, provider, notifier, indexer, publisher, obs, log)

	extractor := cv.NewExtractor(os.TempDir())

	// --- HTTP server ---
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := api.NewRouter(api.Deps{
		Store:     recordStore,
		StoreMode: storeMode,
		Pipeline:  pipelineService,
		Sessions:  sessions,
		Indexer:   indexer,
		Extractor: extractor,
		Logger:    log,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.Int("port", cfg.Server.Port), zap.String("storeMode", string(storeMode)))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLog.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("server shutdown failed", zap.Error(err))
	}
	zapLog.Info("Shutdown complete")
}
