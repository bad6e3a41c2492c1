package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/freshnest/freshnest-api/internal/config"
	"github.com/freshnest/freshnest-api/internal/events"
	"github.com/freshnest/freshnest-api/internal/platform/mailer"
	"github.com/freshnest/freshnest-api/internal/platform/postgres"
	"github.com/freshnest/freshnest-api/internal/service"
	"github.com/freshnest/freshnest-api/internal/service/auth"
	"github.com/freshnest/freshnest-api/internal/store"
	"github.com/freshnest/freshnest-api/internal/task"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores (using interfaces for proper abstraction)
	userStore         store.UserStore
	apartmentStore    store.ApartmentStore
	catalogStore      store.CatalogStore
	orderStore        store.OrderStore
	giftCardStore     store.GiftCardStore
	specialOfferStore store.SpecialOfferStore
	subscriptionStore store.SubscriptionStore

	// Service interfaces
	jwtService          auth.JWTService
	passwordVerifier    auth.PasswordVerifier
	userService         service.UserService
	orderService        service.OrderService
	giftCardService     service.GiftCardService
	specialOfferService service.SpecialOfferService
	apartmentService    service.ApartmentService
	subscriptionService service.SubscriptionService

	// Event system and background work
	eventEmitter events.EventEmitter
	taskRunner   *task.Runner
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts core dependencies like configuration, logger, and
// database connection that must be established before application
// initialization.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.passwordVerifier = auth.NewBcryptVerifier()

	bcryptCost := cfg.Auth.BcryptCost
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}

	// Stores
	app.userStore = postgres.NewPostgresUserStore(db, bcryptCost, logger)
	app.apartmentStore = postgres.NewPostgresApartmentStore(db, logger)
	app.catalogStore = postgres.NewPostgresCatalogStore(db, logger)
	app.orderStore = postgres.NewPostgresOrderStore(db, logger)
	app.giftCardStore = postgres.NewPostgresGiftCardStore(db, logger)
	app.specialOfferStore = postgres.NewPostgresSpecialOfferStore(db, logger)
	app.subscriptionStore = postgres.NewPostgresSubscriptionStore(db, logger)

	// Background task runner for offer fan-out and outbound mail
	app.taskRunner = task.NewRunner(runnerConfig(cfg), logger)
	app.taskRunner.Start()

	// Event emitter with the mail handler attached
	emitter := events.NewInMemoryEventEmitter(logger)
	emitter.RegisterHandler(task.NewMailEventHandler(app.taskRunner, buildMailer(cfg, logger), logger))
	app.eventEmitter = emitter

	// Services
	app.specialOfferService, err = service.NewSpecialOfferService(
		db, app.specialOfferStore, app.userStore, app.eventEmitter, app.taskRunner, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create special offer service: %w", err)
	}

	app.userService, err = service.NewUserService(
		app.userStore, app.specialOfferService, app.eventEmitter, app.passwordVerifier, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create user service: %w", err)
	}

	app.orderService, err = service.NewOrderService(
		db, app.orderStore, app.userStore, app.catalogStore, app.apartmentStore,
		app.specialOfferStore, app.eventEmitter, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create order service: %w", err)
	}

	app.giftCardService, err = service.NewGiftCardService(
		db, app.giftCardStore, app.eventEmitter, nil, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create gift card service: %w", err)
	}

	app.apartmentService, err = service.NewApartmentService(app.apartmentStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create apartment service: %w", err)
	}

	app.subscriptionService, err = service.NewSubscriptionService(
		app.subscriptionStore, app.catalogStore, app.apartmentStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create subscription service: %w", err)
	}

	logger.Info("application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// runnerConfig translates task configuration into runner settings,
// falling back to defaults for unset values.
func runnerConfig(cfg *config.Config) task.RunnerConfig {
	rc := task.DefaultRunnerConfig()
	if cfg.Task.QueueSize > 0 {
		rc.QueueSize = cfg.Task.QueueSize
	}
	if cfg.Task.WorkerCount > 0 {
		rc.Pool.WorkerCount = cfg.Task.WorkerCount
	}
	return rc
}

// buildMailer returns an SMTP mailer when mail is configured and a no-op
// mailer otherwise, so notification plumbing works the same either way.
func buildMailer(cfg *config.Config, logger *slog.Logger) mailer.Mailer {
	if cfg.Mail.Host == "" {
		logger.Info("mail host not configured, outbound mail disabled")
		return mailer.NewNoopMailer(logger)
	}
	return mailer.NewSMTPMailer(cfg.Mail, logger)
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.taskRunner != nil {
		app.taskRunner.Stop()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}

	app.logger.Info("application shutdown completed")
}
