package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"foundgames-backend-go/internal/config"
	"foundgames-backend-go/internal/db"
	"foundgames-backend-go/internal/discord"
	httpapi "foundgames-backend-go/internal/http"
	"foundgames-backend-go/internal/logger"
	"foundgames-backend-go/internal/migrations"
	"foundgames-backend-go/internal/ratelimit"
	"foundgames-backend-go/internal/services"
	"foundgames-backend-go/internal/storage"
	"foundgames-backend-go/internal/verification"
	"foundgames-backend-go/internal/whitelist"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logg, flush, err := logger.New(logger.Options{
		Env:           cfg.Env,
		Level:         cfg.LogLevel,
		Dir:           cfg.LogDir,
		RetentionDays: cfg.LogRetentionDays,
	})
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer flush()

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		logg.Fatal("db", zap.Error(err))
	}
	defer database.Close()
	if err := migrations.Apply(database); err != nil {
		logg.Fatal("migrations", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	documents, err := openDocumentStore(ctx, cfg)
	if err != nil {
		logg.Fatal("document storage", zap.Error(err))
	}

	publisher := openWhitelist(cfg, logg)
	defer publisher.Close()

	limiter, closeRedis := openLimiter(ctx, cfg, logg)
	defer closeRedis()

	hub := services.NewEventHub()
	rosterStore := services.RosterStore{DB: database}
	verifications := &services.VerificationService{
		DB:        database,
		Decider:   newDecider(cfg, rosterStore),
		Discord:   discord.New(cfg.DiscordAPIBase, cfg.DiscordBotToken, cfg.DiscordGuildID),
		Documents: documents,
		Whitelist: publisher,
		Events:    hub,
		Log:       logg.Named("verification"),
	}

	server := httpapi.NewServer(cfg, httpapi.Deps{
		DB:            database,
		Log:           logg,
		Verifications: verifications,
		Events:        hub,
		Limiter:       limiter,
	})
	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})
	g.Go(func() error {
		hostStatsLoop(gctx, hub, cfg)
		return nil
	})
	g.Go(func() error {
		logg.Info("listening", zap.String("addr", httpServer.Addr), zap.String("env", cfg.Env))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logg.Error("server stopped", zap.Error(err))
		return
	}
	logg.Info("shutdown complete")
}

func openDocumentStore(ctx context.Context, cfg config.Config) (storage.DocumentStore, error) {
	if cfg.DocumentStorage == "minio" {
		return storage.NewMinioStore(ctx, cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
	}
	return storage.NewFileStore(cfg.DocumentStoragePath)
}

func openWhitelist(cfg config.Config, logg *zap.Logger) whitelist.Publisher {
	if cfg.AMQPURL == "" {
		return whitelist.Noop{Log: logg.Named("whitelist")}
	}
	publisher, err := whitelist.NewAMQPPublisher(cfg.AMQPURL, cfg.WhitelistExchange)
	if err != nil {
		logg.Error("amqp unavailable, whitelist events will only be logged", zap.Error(err))
		return whitelist.Noop{Log: logg.Named("whitelist")}
	}
	return publisher
}

// openLimiter returns a nil limiter when Redis is not configured, which
// disables rate limiting.
func openLimiter(ctx context.Context, cfg config.Config, logg *zap.Logger) (httpapi.RateLimiter, func()) {
	if cfg.RedisAddr == "" {
		return nil, func() {}
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logg.Warn("redis ping failed, limiter will fail open until it recovers", zap.Error(err))
	}
	limiter, err := ratelimit.NewFixedWindowLimiter(client, "", cfg.RateLimitPerMinute, time.Minute)
	if err != nil {
		logg.Error("rate limiter disabled", zap.Error(err))
		_ = client.Close()
		return nil, func() {}
	}
	return limiter, func() { _ = client.Close() }
}

func newDecider(cfg config.Config, directory verification.ResidentDirectory) verification.Decider {
	if cfg.VerifierMode == verification.ModeRemote && cfg.VerifierURL != "" {
		return verification.RemoteDecider{
			URL:    cfg.VerifierURL,
			APIKey: cfg.VerifierAPIKey,
			HTTP:   &http.Client{Timeout: 10 * time.Second},
		}
	}
	return verification.RosterDecider{Directory: directory}
}

func hostStatsLoop(ctx context.Context, hub *services.EventHub, cfg config.Config) {
	ticker := time.NewTicker(time.Duration(cfg.MetricsSampleSeconds) * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if hub.Clients() == 0 {
				continue
			}
			hub.Publish(services.EventHostStats, services.CaptureHostStats(cfg.MetricsDiskPath))
		case <-ctx.Done():
			return
		}
	}
}
