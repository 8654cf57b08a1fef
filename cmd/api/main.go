// Package main is the entry point for the API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/brandforge/creative-console/internal/blob"
	"github.com/brandforge/creative-console/internal/brand"
	"github.com/brandforge/creative-console/internal/config"
	"github.com/brandforge/creative-console/internal/gen"
	"github.com/brandforge/creative-console/internal/handler"
	"github.com/brandforge/creative-console/internal/middleware"
	natsclient "github.com/brandforge/creative-console/internal/nats"
	"github.com/brandforge/creative-console/internal/orchestrator"
	"github.com/brandforge/creative-console/internal/store"
	"github.com/brandforge/creative-console/pkg/logger"
	"github.com/brandforge/creative-console/pkg/tracing"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	log.Info("starting creative console API")

	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "creative-console", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", "error", err)
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// NATS history log is best-effort; the service runs without it.
	var natsConn *natsclient.Client
	var history orchestrator.History
	natsConn, err = natsclient.Connect(ctx, natsclient.Config{
		URL:      cfg.NATSURL,
		CAFile:   cfg.NATSCAFile,
		CertFile: cfg.NATSCertFile,
		KeyFile:  cfg.NATSKeyFile,
		Token:    cfg.NATSToken,
	}, log)
	if err != nil {
		log.Warn("NATS unavailable, brand history log disabled", "error", err)
		natsConn = nil
	} else {
		defer natsConn.Close()
		manager := natsclient.NewHistoryManager(natsConn)
		if err := manager.EnsureStream(ctx); err != nil {
			log.Error("failed to ensure history stream", "error", err)
			os.Exit(1)
		}
		history = manager
	}

	var st store.Store
	if cfg.DatabaseURL != "" {
		pg, err := store.NewPostgres(cfg.DatabaseURL)
		if err != nil {
			log.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pg.Close()
		st = pg
	} else {
		log.Warn("DATABASE_URL not set, using in-memory store")
		st = store.NewMemory()
	}

	var sink blob.Sink
	if cfg.BlobBucket != "" {
		s3sink, err := blob.NewS3Sink(ctx, blob.Config{
			Bucket:    cfg.BlobBucket,
			AccountID: cfg.BlobAccountID,
			AccessKey: cfg.BlobAccessKey,
			SecretKey: cfg.BlobSecretKey,
			PublicURL: cfg.BlobPublicURL,
		})
		if err != nil {
			log.Error("failed to configure blob storage", "error", err)
			os.Exit(1)
		}
		sink = s3sink
	} else {
		log.Warn("BLOB_BUCKET not set, media served as data URLs")
		sink = blob.DataURLSink{}
	}

	provider := gen.Provider(cfg.DefaultProvider)
	apiKey := cfg.GeminiAPIKey
	if provider == gen.ProviderOpenAI {
		apiKey = cfg.OpenAIAPIKey
	}
	primary, err := gen.NewClient(ctx, provider, apiKey, cfg.VideoPollAttempts, cfg.VideoPollInterval)
	if err != nil {
		log.Error("failed to create generation client", "provider", string(provider), "error", err)
		os.Exit(1)
	}

	var chatFallback gen.Completer
	if cfg.AnthropicAPIKey != "" {
		fallback, err := gen.NewAnthropicCompleter(cfg.AnthropicAPIKey)
		if err != nil {
			log.Warn("failed to create Anthropic fallback, chat retries disabled", "error", err)
		} else {
			chatFallback = fallback
		}
	}

	gateway := gen.NewGateway(primary, chatFallback, sink, log)
	registry := orchestrator.NewRegistry(gateway, st, history, cfg.BatchQuantity, log)
	brandManager := brand.NewManager(st, gateway, log)

	healthHandler := handler.NewHealthHandler(natsConn, st)
	turnHandler := handler.NewTurnHandler(registry, log)
	streamHandler := handler.NewStreamHandler(registry, log)
	brandHandler := handler.NewBrandHandler(registry, brandManager, log)
	assetHandler := handler.NewAssetHandler(registry, log)
	onboardingHandler := handler.NewOnboardingHandler(registry, brandManager, log)
	composeHandler := handler.NewComposeHandler(sink, log)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(nil))

	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTSecret))
		r.Use(middleware.UserRateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

		r.Post("/turns", turnHandler.Submit)
		r.Get("/turns/stream", streamHandler.Stream)

		r.Route("/brands", func(r chi.Router) {
			r.Get("/", brandHandler.List)
			r.Post("/", brandHandler.Save)
			r.Route("/{id}", func(r chi.Router) {
				r.Put("/", brandHandler.Save)
				r.Delete("/", brandHandler.Delete)
				r.Post("/activate", brandHandler.Activate)
				r.Get("/messages", brandHandler.Messages)
			})
		})

		r.Route("/onboarding", func(r chi.Router) {
			r.Post("/", onboardingHandler.Start)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", onboardingHandler.Get)
				r.Post("/advance", onboardingHandler.Advance)
				r.Post("/back", onboardingHandler.Back)
				r.Post("/skip", onboardingHandler.Skip)
				r.Post("/finalize", onboardingHandler.Finalize)
			})
		})

		r.Route("/assets", func(r chi.Router) {
			r.Get("/", assetHandler.List)
			r.Route("/{id}", func(r chi.Router) {
				r.Put("/", assetHandler.Update)
				r.Delete("/", assetHandler.Delete)
				r.Post("/status", assetHandler.SetStatus)
				r.Post("/performance", assetHandler.SetPerformance)
				r.Post("/extend-video", assetHandler.ExtendVideo)
			})
		})

		r.Route("/folders", func(r chi.Router) {
			r.Put("/{id}", assetHandler.RenameFolder)
			r.Delete("/{id}", assetHandler.DeleteFolder)
		})

		r.Post("/compose/logo", composeHandler.ComposeLogo)
	})

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("server listening", "port", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
