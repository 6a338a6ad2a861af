package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-accounts-api/internal/application/token"
	"github.com/go-accounts-api/internal/config"
	"github.com/go-accounts-api/internal/infrastructure/console"
	"github.com/go-accounts-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/go-accounts-api/internal/infrastructure/jwt"
	"github.com/go-accounts-api/internal/infrastructure/memory"
	mongoinfra "github.com/go-accounts-api/internal/infrastructure/mongo"
	redisinfra "github.com/go-accounts-api/internal/infrastructure/redis"
	"github.com/go-accounts-api/internal/infrastructure/smtp"
	"github.com/go-accounts-api/internal/infrastructure/sns"
	"github.com/go-accounts-api/internal/infrastructure/twilio"
	"github.com/go-accounts-api/internal/pkg/password"
	transporthttp "github.com/go-accounts-api/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	ctx := context.Background()
	var closers []func()
	defer func() {
		for _, c := range closers {
			c()
		}
	}()

	deps := &transporthttp.Deps{
		Hasher: password.NewHasher(cfg.BcryptCost),
		Mailer: smtp.NewMailer(cfg),
		Logger: logger,
	}

	switch cfg.StoreDriver {
	case "dynamo":
		client, err := dynamo.NewClient(ctx, cfg)
		if err != nil {
			log.Fatalf("dynamo client: %v", err)
		}
		dynamo.Bootstrap(ctx, client, cfg.DynamoTables)
		deps.AccountRepo = dynamo.NewAccountRepo(client, cfg.DynamoTables.Accounts, cfg.DynamoTables.AccountEmails)
	case "mongo":
		db, client, err := mongoinfra.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			log.Fatalf("mongo connect: %v", err)
		}
		closers = append(closers, func() { _ = client.Disconnect(context.Background()) })
		repo := mongoinfra.NewAccountRepo(db, cfg.MongoCollection)
		if err := repo.EnsureIndexes(ctx); err != nil {
			log.Fatalf("mongo indexes: %v", err)
		}
		deps.AccountRepo = repo
	case "memory":
		log.Println("WARN: using in-memory account store, data is lost on restart")
		deps.AccountRepo = memory.NewAccountStore()
	default:
		log.Fatalf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	switch cfg.OTPStoreDriver {
	case "dynamo":
		client, err := dynamo.NewClient(ctx, cfg)
		if err != nil {
			log.Fatalf("dynamo client: %v", err)
		}
		if cfg.StoreDriver != "dynamo" {
			dynamo.Bootstrap(ctx, client, cfg.DynamoTables)
		}
		deps.OTPRepo = dynamo.NewOTPRepo(client, cfg.DynamoTables.OTPs)
	case "redis":
		rdb, err := redisinfra.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatalf("redis connect: %v", err)
		}
		closers = append(closers, func() { _ = rdb.Close() })
		deps.OTPRepo = redisinfra.NewOTPRepo(rdb)
	case "memory":
		deps.OTPRepo = memory.NewOTPStore()
	default:
		log.Fatalf("unknown OTP_STORE_DRIVER %q", cfg.OTPStoreDriver)
	}

	switch cfg.SMSProvider {
	case "sns":
		sender, err := sns.NewSender(ctx, cfg)
		if err != nil {
			log.Printf("WARN: SNS sender not available, logging SMS instead: %v", err)
			deps.SMSSender = console.NewSender(logger)
		} else {
			deps.SMSSender = sender
		}
	case "twilio":
		deps.SMSSender = twilio.NewClient(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFrom)
	case "log":
		deps.SMSSender = console.NewSender(logger)
	default:
		log.Fatalf("unknown SMS_PROVIDER %q", cfg.SMSProvider)
	}

	sessionProvider, err := jwtinfra.NewProvider(cfg.SessionSecret, jwtinfra.KindSession, cfg.SessionTokenTTL)
	if err != nil {
		log.Fatalf("session tokens: %v", err)
	}
	emailProvider, err := jwtinfra.NewProvider(cfg.EmailSecret, jwtinfra.KindEmailVerify, cfg.EmailTokenTTL)
	if err != nil {
		log.Fatalf("email tokens: %v", err)
	}
	deps.Tokens = token.NewService(sessionProvider, emailProvider)

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s, store=%s, otp=%s, sms=%s)",
			cfg.AppPort, cfg.AppEnv, cfg.StoreDriver, cfg.OTPStoreDriver, cfg.SMSProvider)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("forced shutdown: %v", err)
		return
	}
	log.Println("Server stopped")
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
