package main

import (
	"context"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/realtycore/auth-service/config"
	"github.com/realtycore/auth-service/db"
	"github.com/realtycore/auth-service/internal/auth/handler"
	"github.com/realtycore/auth-service/internal/auth/repository/postgres"
	"github.com/realtycore/auth-service/internal/auth/service"
	"github.com/realtycore/auth-service/internal/guard"
	"github.com/realtycore/auth-service/internal/mailer"
	"github.com/realtycore/auth-service/internal/password"
)

func main() {
	log, err := newLogger()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := db.NewPostgresPool(ctx, cfg.DBURL)
	if err != nil {
		log.Fatal("connect database", zap.Error(err))
	}
	defer pool.Close()

	repo := postgres.NewRepository(pool)
	tokens := service.NewTokenService(cfg.AccessTokenSecret, cfg.RefreshTokenSecret,
		cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	hasher := password.NewHasher(cfg.BcryptCost)
	mail := mailer.NewLogMailer(log)

	limits := guard.Limits{
		Window:      cfg.AttemptWindow,
		RegisterCap: cfg.RegisterAttemptCap,
		LoginCap:    cfg.LoginAttemptCap,
	}
	g, err := newGuard(cfg, limits, log)
	if err != nil {
		log.Fatal("init attempt guard", zap.Error(err))
	}

	twoFactorService := service.NewTwoFactorService(repo, cfg.TOTPIssuer, log)
	userService := service.NewUserService(repo, tokens, hasher, g, twoFactorService, mail, log)
	resetService := service.NewResetService(repo, hasher, mail, cfg.ResetTokenTTL, cfg.FrontendBaseURL, log)

	app := fiber.New()
	handler.RegisterRoutes(app, handler.NewAuthHandler(userService, resetService, twoFactorService))

	log.Info("auth service listening", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger() (*zap.Logger, error) {
	if os.Getenv("ENV") == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// newGuard picks the attempt store. Redis keeps throttling consistent across
// replicas; the in-memory guard is per-process and fits a single instance.
func newGuard(cfg *config.Config, limits guard.Limits, log *zap.Logger) (guard.Guard, error) {
	if cfg.RedisURL == "" {
		return guard.NewMemoryGuard(limits), nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	return guard.NewRedisGuard(redis.NewClient(opts), limits, log), nil
}
