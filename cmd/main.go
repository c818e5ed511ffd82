package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fintrackeasy/user-service/internal/config"
	"github.com/fintrackeasy/user-service/internal/handlers"
	"github.com/fintrackeasy/user-service/internal/mailer"
	"github.com/fintrackeasy/user-service/internal/metrics"
	"github.com/fintrackeasy/user-service/internal/middleware"
	"github.com/fintrackeasy/user-service/internal/repository"
	"github.com/fintrackeasy/user-service/internal/routes"
	"github.com/fintrackeasy/user-service/internal/service"
	"github.com/fintrackeasy/user-service/internal/token"
	"github.com/fintrackeasy/user-service/internal/utils"
)

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		panic(err)
	}
	dev := cfg.App.Env == "development"

	logger, err := utils.NewLogger(dev)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	// Mongo
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	mc, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		logger.Fatalf("mongo connect: %v", err)
	}
	if err := mc.Ping(ctx, nil); err != nil {
		logger.Fatalf("mongo ping: %v", err)
	}
	col := mc.Database(cfg.Mongo.Database).Collection(cfg.Mongo.Collection)
	repo := repository.NewUserRepo(col)
	if err := repo.EnsureIndexes(ctx); err != nil {
		logger.Fatalf("ensure indexes: %v", err)
	}

	// verification workflow
	tokens := token.NewGenerator(cfg.VerificationTTL)
	mail := mailer.NewEmailNotifier(cfg.Email.BrevoAPIKey, cfg.Email.SenderEmail, cfg.Email.SenderName, logger)
	svc := service.NewUserService(repo, mail, tokens, cfg.Verification.BaseURL, cfg.Verification.RedirectURL, logger)

	// auth collaborator
	verifier, err := middleware.NewJWTVerifier(cfg.JWT.Secret, cfg.JWT.PublicKeyPath)
	if err != nil {
		logger.Fatalf("jwt init: %v", err)
	}

	// rate limiting for the public endpoints, when redis is configured
	var limit fiber.Handler
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		limiter := middleware.NewRateLimiter(rdb, cfg.Redis.Prefix, cfg.Redis.Limit, time.Duration(cfg.Redis.WindowS)*time.Second)
		limit = limiter.ByIP()
	}

	// metrics side server
	metrics.Init()
	if cfg.Metrics.Addr != "" {
		go func() {
			if err := metrics.Serve(cfg.Metrics.Addr); err != nil {
				logger.Warnf("metrics server: %v", err)
			}
		}()
	}

	// fiber app & routes
	app := fiber.New(fiber.Config{
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})
	app.Use(middleware.RequestID())
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.SendString("ok") })

	h := handlers.NewUserHandler(svc, logger, cfg.OpTimeout)
	routes.Register(app, h, middleware.JWTAuth(verifier), limit)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.App.Port)
		logger.Infof("user-service listening on %s", addr)
		if err := app.Listen(addr); err != nil {
			logger.Fatalf("listen failed: %v", err)
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info("shutdown requested")
	timeoutCtx, cancel2 := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel2()

	_ = app.Shutdown()
	_ = mc.Disconnect(timeoutCtx)
	if rdb != nil {
		_ = rdb.Close()
	}
	logger.Info("shutdown completed")
}
