// @title pass.in API
// @version 1.0
// @description Event registration, badges and check-in.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"passin/config"
	_ "passin/docs"
	authadapter "passin/internal/adapters/auth"
	"passin/internal/adapters/awsconfig"
	"passin/internal/adapters/email"
	"passin/internal/adapters/logsink"
	"passin/internal/adapters/probe"
	"passin/internal/adapters/qrcode"
	"passin/internal/adapters/storage"
	httpdelivery "passin/internal/delivery/http"
	"passin/internal/delivery/http/controllers"
	"passin/internal/delivery/http/middleware"
	"passin/internal/domain"
	"passin/internal/repository/postgres"
	"passin/internal/scheduler"
	"passin/internal/services"
)

const (
	badgeSize       = 256
	shutdownTimeout = 10 * time.Second
	jobTimeout      = time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	logger := config.NewLogger(cfg.Environment)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		return err
	}
	defer db.Close()
	pingCtx, cancel := context.WithTimeout(ctx, cfg.ContextTimeout)
	err = db.PingContext(pingCtx)
	cancel()
	if err != nil {
		return err
	}
	logger.Info("database connection established")

	awsCfg := awsconfig.New(awsconfig.Config{
		Region:             cfg.AWS.Region,
		AccessKeyID:        cfg.AWS.AccessKeyID,
		SecretAccessKey:    cfg.AWS.SecretAccessKey,
		InsecureSkipVerify: cfg.AWS.InsecureSkipVerify,
	}, logger)
	mailer := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
	}, awsCfg, logger)
	objectStorage := storage.New(storage.Config{
		Provider: cfg.Storage.Provider,
		Bucket:   cfg.Storage.Bucket,
		Region:   cfg.AWS.Region,
	}, awsCfg, logger)
	sink := logsink.New(logsink.Config{
		Provider:  cfg.LogSink.Provider,
		LogGroup:  cfg.LogSink.LogGroup,
		LogStream: cfg.LogSink.LogStream,
	}, awsCfg, logger)

	userRepo := postgres.NewUserRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	checkInRepo := postgres.NewCheckInRepository(db)
	tx := postgres.NewTransactor(db)

	jwt := authadapter.NewJWT(cfg.JWTSecret)
	hasher := authadapter.NewBcryptHasher(0)

	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer(), logger)
	authService := services.NewAuthService(userRepo, hasher, jwt, jwt, cfg.JWTAccessTTL, cfg.JWTRefreshTTL, cfg.ContextTimeout)
	userService := services.NewUserService(userRepo, tx, hasher, objectStorage, cfg.ContextTimeout)
	eventService := services.NewEventService(eventRepo, checkInRepo, tx, logger, cfg.ContextTimeout)
	badgeZone := services.BadgeZone(cfg.BadgeUTCOffsetHours)
	attendeeService := services.NewAttendeeService(tx, eventRepo, checkInRepo, emailService, badgeZone, logger, cfg.ContextTimeout)
	checkInService := services.NewCheckInService(
		eventRepo,
		checkInRepo,
		qrcode.NewEncoder(badgeSize),
		cfg.BaseURL,
		badgeZone,
		cfg.ContextTimeout,
	)
	healthService := services.NewHealthService([]domain.HealthIndicator{
		probe.NewHTTP("http", cfg.BaseURL, &http.Client{Timeout: cfg.ContextTimeout}),
		probe.NewDatabase("database", db),
		probe.NewDisk("storage", cfg.Health.DiskPath, cfg.Health.DiskMinFreePercent),
		probe.NewHeap("memory_heap", cfg.Health.HeapMaxBytes),
	}, sink, logger, cfg.ContextTimeout)

	sched := scheduler.New(logger, jobTimeout)
	if err := sched.Add("remove-past-events", cfg.Schedule.CleanupSpec, scheduler.RemovePastEventsJob(eventService)); err != nil {
		return err
	}
	if err := sched.Add("health-check", cfg.Schedule.HealthSpec, scheduler.HealthCheckJob(healthService)); err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := middleware.NewHTTPMetrics("passin", reg)

	mux := httpdelivery.NewRouter(httpdelivery.Controllers{
		Auth:     controllers.NewAuthController(logger, authService),
		User:     controllers.NewUserController(logger, userService),
		Event:    controllers.NewEventController(logger, eventService),
		Attendee: controllers.NewAttendeeController(logger, attendeeService),
		CheckIn:  controllers.NewCheckInController(logger, checkInService),
		Health:   controllers.NewHealthController(logger, healthService),
	}, jwt, metrics, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpdelivery.NewHandler(mux, metrics, cfg.CORSAllowedOrigins, logger),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	sched.Start()
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "env", cfg.Environment)
		serverErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			stopScheduler(sched, logger)
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	stopScheduler(sched, logger)
	return srv.Shutdown(shutdownCtx)
}

func stopScheduler(sched *scheduler.Scheduler, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := sched.Stop(ctx); err != nil {
		logger.Warn("scheduler did not stop cleanly", "error", err)
	}
}
