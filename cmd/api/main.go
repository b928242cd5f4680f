package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/xavierca1/lead-dashboard/internal/config"
	"github.com/xavierca1/lead-dashboard/internal/entity"
	"github.com/xavierca1/lead-dashboard/internal/infra/database"
	"github.com/xavierca1/lead-dashboard/internal/infra/http/handlers"
	"github.com/xavierca1/lead-dashboard/internal/infra/http/middleware"
	"github.com/xavierca1/lead-dashboard/internal/infra/mail"
	"github.com/xavierca1/lead-dashboard/internal/infra/queue"
	"github.com/xavierca1/lead-dashboard/internal/infra/spreadsheet"
	"github.com/xavierca1/lead-dashboard/internal/logger"
	"github.com/xavierca1/lead-dashboard/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	collections := entity.SelectCollections(entity.DefaultCollections(), cfg.LeadCollections)
	if len(collections) == 0 {
		logrus.WithField("names", cfg.LeadCollections).Fatal("no lead collection matches LEAD_COLLECTIONS")
	}

	// 1. Firebase
	fb, err := database.NewFirebaseClients(ctx, cfg.FirebaseProjectID, cfg.FirebaseCredentialsPath)
	if err != nil {
		logrus.WithError(err).Fatal("failed to initialize Firebase")
	}
	defer fb.Close()

	// 2. Live snapshots
	recorder := middleware.NewRecorder()
	cache := usecase.NewSnapshotCache()
	cache.OnApply(recorder.RecordSnapshot)

	watcher := database.NewSnapshotWatcher(database.NewFirestoreSubscriber(fb.Firestore), cache, cfg.SnapshotRetryInterval)
	watcher.OnError = recorder.RecordSnapshotError

	var watchers sync.WaitGroup
	for _, c := range collections {
		watchers.Add(1)
		go func(c entity.Collection) {
			defer watchers.Done()
			watcher.Run(ctx, c)
		}(c)
	}

	// 3. Broker (optional)
	var rabbitMQ *queue.RabbitMQ
	var broker handlers.BrokerHealth
	leadRepo := database.NewLeadRepository(fb.Firestore)
	transitionUC := usecase.NewStatusTransitionUseCase(leadRepo, nil)
	if cfg.RabbitMQURL != "" {
		rabbitMQ, err = queue.NewRabbitMQ(cfg.RabbitMQURL)
		if err != nil {
			logrus.WithError(err).Fatal("failed to connect to RabbitMQ")
		}
		defer rabbitMQ.Close()
		transitionUC.Events = queue.NewProducer(rabbitMQ.Ch)
		broker = rabbitMQ
	} else {
		logrus.Warn("RABBITMQ_URL not set, transition events disabled")
	}

	// 4. UseCases
	transitionUC.Recorder = recorder
	transitionUC.DefaultActor = cfg.DefaultActor
	listUC := usecase.NewListLeadsUseCase(cache)

	// 5. Handlers
	var mailer handlers.ExportMailer
	if cfg.MailEnabled() {
		mailer = mail.NewEmailSender(cfg.MailHost, cfg.MailPort, cfg.MailUser, cfg.MailPass, cfg.MailFrom)
	}
	limiter := handlers.NewRateLimiter(cfg.RateLimitMax, cfg.RateLimitWindow)
	defer limiter.Stop()

	leadHandler := handlers.NewLeadHandler(collections, listUC, transitionUC, spreadsheet.NewXLSXEncoder(), mailer, limiter)
	healthHandler := handlers.NewHealthHandler(collections, listUC, broker)

	// 6. Router
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))

	r.Get("/health", healthHandler.Handle)
	r.Handle("/metrics", promhttp.Handler())
	r.Route("/api", func(r chi.Router) {
		if cfg.AuthDisabled {
			logrus.Warn("AUTH_DISABLED set, /api is open")
		} else {
			r.Use(middleware.RequireSession(fb.Auth))
		}
		leadHandler.Routes(r)
	})

	srv := &http.Server{
		Addr:              cfg.Address,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logrus.WithFields(logrus.Fields{
			"address":     cfg.Address,
			"collections": len(collections),
		}).Info("lead dashboard listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logrus.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("graceful shutdown failed")
	}
	watchers.Wait()
}
