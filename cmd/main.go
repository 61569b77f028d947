package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sentry "github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/ev-rental-console/internal/auth"
	"github.com/ukydev/ev-rental-console/internal/client"
	"github.com/ukydev/ev-rental-console/internal/config"
	"github.com/ukydev/ev-rental-console/internal/console"
	"github.com/ukydev/ev-rental-console/internal/db"
	"github.com/ukydev/ev-rental-console/internal/handlers"
	"github.com/ukydev/ev-rental-console/internal/locales"
	"github.com/ukydev/ev-rental-console/internal/middleware"
	"github.com/ukydev/ev-rental-console/internal/notify"
)

type application struct {
	cfg            *config.Config
	auth           *middleware.AuthMiddleware
	limiter        *middleware.RateLimitMiddleware
	authHandler    *handlers.AuthHandler
	consoleHandler *handlers.ConsoleHandler
}

func setupLogging(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithError(err).Warn("Unknown log level, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)
	if cfg.LogJSON {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	setupLogging(cfg)

	if cfg.SentryDSN != "" {
		err = sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.AppEnv,
			Release:     cfg.Version,
		})
		if err != nil {
			log.Fatalf("sentry.Init: %s", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	catalog, err := locales.New(cfg.DefaultLang)
	if err != nil {
		log.Fatalf("Failed to load locales: %v", err)
	}

	mongoClient, err := db.ConnectMongo(cfg.MongoURI)
	if err != nil {
		sentry.CaptureException(err)
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.WithError(err).Error("Error disconnecting from MongoDB")
		}
	}()
	database := mongoClient.Database(cfg.MongoDatabase)
	if err := db.EnsureIndexes(context.Background(), database); err != nil {
		log.WithError(err).Warn("Failed to ensure indexes")
	}
	log.WithField("database", cfg.MongoDatabase).Info("Connected to MongoDB")

	operators := &db.MongoOperatorCollection{Collection: database.Collection(db.OperatorsCollection)}
	auditLog := &db.MongoAuditLog{Collection: database.Collection(db.AuditCollection)}

	sinks := []notify.Sink{notify.LogSink{}}
	if cfg.MQTTBroker != "" {
		mqttClient, err := notify.DialMQTT(cfg.MQTTBroker, "ev-console-"+uuid.NewString()[:8])
		if err != nil {
			log.WithError(err).WithField("broker", cfg.MQTTBroker).Warn("MQTT unavailable, toasts will not be mirrored")
		} else {
			defer mqttClient.Disconnect(250)
			sinks = append(sinks, notify.NewMQTTSink(mqttClient, cfg.MQTTTopic))
			log.WithField("topic", cfg.MQTTTopic).Info("Mirroring toasts to MQTT")
		}
	}

	transport := client.NewTransport(client.Config{
		BaseURL:   cfg.APIBaseURL,
		Token:     cfg.APIToken,
		Timeout:   cfg.APITimeout,
		RateLimit: cfg.APIRateLimit,
	})
	registry := console.NewRegistry(console.Services{
		Feedback:    client.NewFeedbackService(transport),
		Maintenance: client.NewMaintenanceService(transport),
		Stations:    client.NewStationService(transport),
		Vehicles:    client.NewVehicleService(transport),
		Chatbot:     client.NewChatbotService(transport),
	}, console.Options{
		PageSize:       cfg.PageSize,
		SearchDebounce: cfg.SearchDebounce,
		ToastTTL:       cfg.ToastTTL,
		Sinks:          sinks,
		Translator:     catalog,
		Auditor:        auditLog,
	})
	defer registry.Close()

	authService, err := auth.NewService(cfg.JWTSecret, cfg.JWTExpiry)
	if err != nil {
		log.Fatalf("Failed to create auth service: %v", err)
	}

	app := &application{
		cfg:            cfg,
		auth:           middleware.NewAuthMiddleware(authService),
		limiter:        middleware.NewRateLimitMiddleware(),
		authHandler:    handlers.NewAuthHandler(authService, operators),
		consoleHandler: handlers.NewConsoleHandler(registry, auditLog),
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      app.handler(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.APITimeout + 10*time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.WithFields(log.Fields{
			"port":    cfg.Port,
			"backend": cfg.APIBaseURL,
			"env":     cfg.AppEnv,
		}).Info("Console listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sentry.CaptureException(err)
			log.WithError(err).Error("HTTP server failed")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
	}
}
