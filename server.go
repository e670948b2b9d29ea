package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"recipeportal/auth"
	"recipeportal/catalog"
	"recipeportal/config"
	"recipeportal/db"
	"recipeportal/middleware"
	"recipeportal/mq"
	"recipeportal/ratelim"
	"recipeportal/rdx"
	"recipeportal/recipes"
	"recipeportal/routes"
	"recipeportal/utils"
)

const housekeepingInterval = time.Minute

func serve(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	database, err := db.Connect(ctx, cfg.Mongo, log)
	if err != nil {
		return err
	}
	defer disconnect(database, log)

	if err := database.EnsureIndexes(ctx); err != nil {
		return err
	}

	var (
		blacklist rdx.Blacklist
		events    mq.Emitter = mq.Nop{}
		stats     *rdx.StatsCache
	)
	if cfg.Redis.Addr != "" {
		client, err := rdx.Connect(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer client.Close()

		blacklist = rdx.NewRedisBlacklist(client)
		events = mq.NewRedisEmitter(client)
		stats = rdx.NewStatsCache(client, cfg.Redis.StatsCacheTTL)
		go listen(ctx, client, stats, log)
	} else {
		mem := rdx.NewMemoryBlacklist()
		blacklist = mem
		go sweep(ctx, mem)
		log.Info("redis not configured; token revocation is local to this instance")
	}

	svc := catalog.NewService(db.NewRecipeStore(database.Recipes), events)
	if stats != nil {
		svc.WithStatsCache(stats)
	}
	tokens := middleware.NewTokens(cfg.JWT, blacklist)

	proxies, err := utils.ParseTrustedProxies(cfg.HTTP.TrustedProxies)
	if err != nil {
		return fmt.Errorf("http.trusted_proxies: %w", err)
	}
	rateLimiter := ratelim.NewRateLimiter(cfg.RateLimit, proxies)
	go rateLimiter.Run(ctx, housekeepingInterval)

	router := httprouter.New()
	routes.RoutesWrapper(router, routes.Handlers{
		Recipes: recipes.NewHandler(svc, cfg.HTTP.StoreTimeout, cfg.HTTP.MaxBodySize),
		Auth: auth.NewHandler(db.NewUserStore(database.Users), svc, tokens, events, auth.Options{
			Google:      cfg.Google,
			FrontendURL: cfg.App.FrontendURL,
			Timeout:     cfg.HTTP.StoreTimeout,
			MaxBody:     cfg.HTTP.MaxBodySize,
		}),
		Tokens: tokens,
		Health: database,
	}, rateLimiter)

	// apply middleware: CORS → security headers → logging → router
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.HTTP.CORSAllowOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: cfg.HTTP.AllowCredentials(),
	}).Handler(router)
	handler := middleware.RequestLogger(log)(middleware.SecurityHeaders(corsHandler))

	server := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           handler,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
		ReadHeaderTimeout: 2 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", server.Addr), zap.String("env", cfg.App.Env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutdown signal received; shutting down gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	log.Info("server stopped cleanly")
	return nil
}

// listen runs the recipe event worker until ctx is done.
func listen(ctx context.Context, client *redis.Client, stats *rdx.StatsCache, log *zap.Logger) {
	if err := mq.Listen(ctx, client, log, catalog.StatsInvalidation(stats)); err != nil {
		log.Error("event worker stopped", zap.Error(err))
	}
}

func sweep(ctx context.Context, blacklist *rdx.MemoryBlacklist) {
	ticker := time.NewTicker(housekeepingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			blacklist.Sweep()
		}
	}
}

func disconnect(database *db.Database, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := database.Disconnect(ctx); err != nil {
		log.Warn("mongo disconnect", zap.Error(err))
	}
}
