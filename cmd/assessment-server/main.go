// cmd/assessment-server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"assessment-service/internal/api"
	"assessment-service/internal/auth"
	awsclients "assessment-service/internal/common/aws"
	"assessment-service/internal/common/config"
	"assessment-service/internal/common/database"
	"assessment-service/internal/common/logger"
	"assessment-service/internal/common/observability"
	"assessment-service/internal/notify"
	"assessment-service/internal/questionnaire"
	"assessment-service/internal/search"
	"assessment-service/internal/service"
	"assessment-service/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("starting assessment service",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New("assessment-server")
	defer obs.Shutdown()

	// Postgres is the source of truth; keep retrying while it comes up.
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "postgres")
	if err != nil {
		zapLog.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pg.Close()

	st := store.NewPostgresStore(pg.GetDB())
	if err := st.Migrate(context.Background()); err != nil {
		zapLog.Fatal("failed to run migrations", zap.Error(err))
	}

	registry := questionnaire.NewRegistry()
	if dir := cfg.App.QuestionnairesDir; dir != "" {
		if err := registry.LoadDir(dir); err != nil {
			zapLog.Fatal("failed to load questionnaire definitions",
				zap.String("dir", dir), zap.Error(err))
		}
	}

	var searchSvc *search.Service
	if cfg.Search.Enabled && cfg.Database.Elasticsearch.Enabled {
		var es *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			es, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return es.Ping()
		}, 15, 2*time.Second, zapLog, "elasticsearch")
		if err != nil {
			zapLog.Fatal("failed to connect to elasticsearch", zap.Error(err))
		}
		searchSvc = search.NewService(es.Client, cfg.Database.Elasticsearch.IndexName, log)
	}

	notifier := buildNotifier(cfg, log, zapLog)

	assessmentOpts := []service.AssessmentOption{service.WithRegistry(registry)}
	if searchSvc != nil {
		assessmentOpts = append(assessmentOpts, service.WithIndexer(searchSvc))
	}
	if notifier != nil {
		assessmentOpts = append(assessmentOpts, service.WithNotifier(notifier))
	}

	companies := service.NewCompanyService(st, log)
	assessments := service.NewAssessmentService(st, log, assessmentOpts...)
	authSvc := auth.NewService(st, cfg.Auth.JWTSecret, config.GetDuration(cfg.Auth.TokenTTLMS))

	srv := api.NewServer(companies, assessments, searchSvc, authSvc, log,
		api.WithObservability(obs))

	httpServer := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      srv.Router(),
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	go serveMetrics(cfg.Server.MetricsAddress, zapLog)

	go func() {
		zapLog.Info("http server listening", zap.String("address", cfg.Server.Address))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	zapLog.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		zapLog.Error("graceful shutdown failed", zap.Error(err))
	}
	zapLog.Info("shutdown complete")
}

// buildNotifier wires SES and SNS clients when either channel is enabled.
// Notification failures never block completion, so client construction
// failures only log.
func buildNotifier(cfg *config.Config, log logger.Logger, zapLog *zap.Logger) *notify.Service {
	if !cfg.Notifications.Email.Enabled && !cfg.Notifications.SMS.Enabled {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var email notify.EmailSender
	if cfg.Notifications.Email.Enabled {
		sesClient, err := awsclients.NewSESClient(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Warn("ses client unavailable, email notifications disabled", zap.Error(err))
		} else {
			email = sesClient
		}
	}

	var sms notify.SMSPublisher
	if cfg.Notifications.SMS.Enabled {
		snsClient, err := awsclients.NewSNSClient(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Warn("sns client unavailable, sms notifications disabled", zap.Error(err))
		} else {
			sms = snsClient
		}
	}

	if email == nil && sms == nil {
		return nil
	}

	return notify.NewService(notify.Config{
		EmailEnabled: cfg.Notifications.Email.Enabled && email != nil,
		SMSEnabled:   cfg.Notifications.SMS.Enabled && sms != nil,
		FromAddress:  cfg.Notifications.Email.FromEmail,
		ToAddresses:  cfg.Notifications.Email.ToEmails,
		SMSTopicARN:  cfg.Notifications.SMS.TopicARN,
	}, email, sms, log)
}

// serveMetrics exposes Prometheus metrics and liveness probes on a separate
// listener so the main API port stays clean.
func serveMetrics(address string, zapLog *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("READY"))
	})

	zapLog.Info("metrics server listening", zap.String("address", address))
	if err := http.ListenAndServe(address, mux); err != nil {
		zapLog.Error("metrics server failed", zap.Error(err))
	}
}

// retryWithBackoff retries an operation with exponential backoff.
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err = operation(); err == nil {
			if attempt > 1 {
				log.Info("operation succeeded after retry",
					zap.String("operation", operationName),
					zap.Int("attempt", attempt),
				)
			}
			return nil
		}

		if attempt < maxRetries {
			log.Warn("operation failed, retrying",
				zap.String("operation", operationName),
				zap.Int("attempt", attempt),
				zap.Int("max_retries", maxRetries),
				zap.Duration("retry_delay", delay),
				zap.Error(err),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}
