package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/slofy/reviewmate/internal/config"
	"github.com/slofy/reviewmate/internal/database"
	"github.com/slofy/reviewmate/internal/dispatch"
	"github.com/slofy/reviewmate/internal/github"
	"github.com/slofy/reviewmate/internal/handler"
	"github.com/slofy/reviewmate/internal/httputil"
	"github.com/slofy/reviewmate/internal/middleware"
	"github.com/slofy/reviewmate/internal/redis"
	"github.com/slofy/reviewmate/internal/repository"
	"github.com/slofy/reviewmate/internal/service"
	"github.com/slofy/reviewmate/internal/upstream"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	setLogLevel(cfg.LogLevel)

	isProduction := os.Getenv("K_SERVICE") != "" || os.Getenv("FLY_APP_NAME") != ""
	if err := cfg.Validate(isProduction); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), config.DBPingTimeout)
	if err := db.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}
	cancel()
	log.Info().Msg("database connected")

	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected")

	accountRepo := repository.NewAccountRepository(db.DB)

	creditService := service.NewCreditService(accountRepo)
	authService := service.NewAuthService(accountRepo, cfg.JWTSecret)
	ipRateLimiter := service.NewRateLimiter(redisClient.Client)

	reviewClient := upstream.NewReviewClient(cfg.LLMServiceURL, cfg.UpstreamTimeout())
	notifyClient := upstream.NewNotifyClient(cfg.NotifyServiceURL, cfg.UpstreamTimeout())
	githubClient, err := github.NewClient(cfg.GitHubToken, cfg.GitHubAPIURL, cfg.UpstreamTimeout())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build github client")
	}

	dispatcher := dispatch.New(cfg.SideEffectTimeout())
	orchestrator := service.NewOrchestrator(
		reviewClient, githubClient, notifyClient, creditService, authService, dispatcher,
	)

	authHandler := handler.NewAuthHandler(orchestrator, authService)
	reviewHandler := handler.NewReviewHandler(orchestrator)
	githubHandler := handler.NewGitHubHandler(orchestrator, githubClient)
	creditsHandler := handler.NewCreditsHandler(creditService)

	apiRateLimit := middleware.NewIPRateLimitMiddleware(
		ipRateLimiter, cfg.RateLimitPerMinute, time.Minute, "api",
	)
	bodyLimitMiddleware := middleware.NewBodyLimitMiddleware(0)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))
	r.Use(bodyLimitMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"status":    "ok",
			"timestamp": time.Now().UnixMilli(),
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(apiRateLimit.Handler)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", authHandler.Signup)
			r.Post("/login", authHandler.Login)
			r.Get("/me", authHandler.Me)
		})

		r.Post("/llm/review", reviewHandler.Review)

		r.Route("/github", func(r chi.Router) {
			r.Post("/commit", githubHandler.Commit)
			r.Post("/pull-request", githubHandler.PullRequest)
			r.Get("/tree", githubHandler.Tree)
			r.Get("/file", githubHandler.File)
		})

		r.Route("/credits", func(r chi.Router) {
			r.Get("/", creditsHandler.Get)
			r.Post("/deduct", creditsHandler.Deduct)
			r.Post("/add", creditsHandler.Add)
		})
	})

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{cfg.ClientURL},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}).Handler(r)

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      corsHandler,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: 0,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	// Let in-flight billing and notification tasks drain before exit.
	dispatcher.Wait()

	log.Info().Msg("server stopped")
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
