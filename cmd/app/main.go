package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/vslbak/gymflow-web/internal/auth"
	"github.com/vslbak/gymflow-web/internal/booking"
	"github.com/vslbak/gymflow-web/internal/checkout"
	"github.com/vslbak/gymflow-web/internal/config"
	"github.com/vslbak/gymflow-web/internal/db"
	"github.com/vslbak/gymflow-web/internal/email"
	"github.com/vslbak/gymflow-web/internal/gym"
	"github.com/vslbak/gymflow-web/internal/logger"
	"github.com/vslbak/gymflow-web/internal/seed"
	"github.com/vslbak/gymflow-web/internal/server"
	"github.com/vslbak/gymflow-web/internal/user"
)

// @title GymFlow API
// @version 1.0
// @description Fitness class booking API: classes, sessions, bookings and accounts.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger.Init()
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	logger.InitWithConfig(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	defer logger.Sync()
	logger.Info("Starting GymFlow API", "store", cfg.Store, "checkout", cfg.Checkout)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	target, database := openStore(ctx, cfg)
	if database != nil {
		defer database.Close()
	}

	transport := email.Transport(email.LogTransport{})
	if cfg.RedisAddr != "" {
		queue := email.NewQueue(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}), email.SMTPConfig{
			From:     cfg.EmailFrom,
			FromName: cfg.EmailFromName,
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Pass:     cfg.SMTPPass,
		})
		defer queue.Close()
		go queue.Start(ctx)
		transport = queue
		logger.Info("Email queue enabled", "redis", cfg.RedisAddr)
	}
	mailer := email.NewMailer(transport)

	provider, err := checkoutProvider(cfg)
	if err != nil {
		logger.Fatalf("Failed to configure checkout: %v", err)
	}

	issuer, err := auth.NewTokenIssuer(cfg.JWTSecret)
	if err != nil {
		logger.Fatalf("Failed to create token issuer: %v", err)
	}
	if cfg.JWTSecret == config.DefaultJWTSecret {
		logger.Warn("JWT_SECRET is the built-in default; set it outside of development")
	}

	userService := user.NewService(target.Users, issuer, mailer)
	gymService := gym.NewService(target.Gym)
	bookingService := booking.NewService(target.Bookings, gymService, userService, provider, mailer)

	srv := server.New(server.Deps{
		Users:    userService,
		Gym:      gymService,
		Bookings: bookingService,
		Issuer:   issuer,
		Store:    cfg.Store,
	}, cfg)

	serverErrChan := make(chan error, 1)
	go func() {
		logger.Infof("Server starting on port %s", cfg.Port)
		if err := srv.Start(); err != nil {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Infof("Received signal: %v", sig)
	case err := <-serverErrChan:
		logger.Errorf("Server error: %v", err)
	}

	logger.Info("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Error during server shutdown: %v", err)
	}

	logger.Info("Server stopped")
}

// openStore returns the repositories for cfg.Store, seeding them with demo
// data when they start out empty.
func openStore(ctx context.Context, cfg *config.Config) (seed.Target, *sqlx.DB) {
	if cfg.Store == "memory" {
		target := seed.Target{
			Users:    user.NewMemoryRepository(),
			Gym:      gym.NewMemoryRepository(),
			Bookings: booking.NewMemoryRepository(),
		}
		if err := seed.Load(ctx, target, time.Now()); err != nil {
			logger.Fatalf("Failed to seed demo data: %v", err)
		}
		return target, nil
	}

	logger.Info("Connecting to database...")
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := db.RunMigrations(database, cfg.MigrationsPath); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("Migrations completed")

	target := seed.Target{
		Users:    user.NewRepository(database),
		Gym:      gym.NewRepository(database),
		Bookings: booking.NewRepository(database),
	}
	empty, err := db.IsEmpty(ctx, database)
	if err != nil {
		logger.Fatalf("Failed to inspect database: %v", err)
	}
	if empty {
		if err := seed.Load(ctx, target, time.Now()); err != nil {
			logger.Fatalf("Failed to seed demo data: %v", err)
		}
		logger.Info("Seeded empty database with demo data")
	}
	return target, database
}

func checkoutProvider(cfg *config.Config) (checkout.Provider, error) {
	if cfg.Checkout != checkout.ProviderStripe {
		return checkout.NewRedirectProvider(cfg.PublicURL), nil
	}
	return checkout.NewStripeProvider(checkout.StripeConfig{
		SecretKey: cfg.StripeSecretKey,
		Currency:  cfg.Currency,
		PublicURL: cfg.PublicURL,
	})
}
