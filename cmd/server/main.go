package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/dompetkeluarga/backend/internal/auth"
	"github.com/dompetkeluarga/backend/internal/config"
	"github.com/dompetkeluarga/backend/internal/handler"
	"github.com/dompetkeluarga/backend/internal/logger"
	"github.com/dompetkeluarga/backend/internal/model"
	"github.com/dompetkeluarga/backend/internal/pricing"
	"github.com/dompetkeluarga/backend/internal/service"
	"github.com/dompetkeluarga/backend/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	log := logger.New()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	ctx := context.Background()

	local := cfg.Server.Mode == "local"

	var st store.Store
	var firebaseAuth *auth.FirebaseAuth

	if local {
		log.Info().Msg("using in-memory store for local development")
		st = store.NewMemoryStore()
	} else {
		if cfg.Firestore.ProjectID == "" {
			log.Fatal().Msg("firestore.project_id is required outside local mode")
		}
		client, err := firestore.NewClient(ctx, cfg.Firestore.ProjectID)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create firestore client")
		}
		defer client.Close()
		st = store.NewFirestoreStore(client, cfg.Firestore.AppID)

		if !cfg.Auth.Skip {
			firebaseAuth, err = auth.NewFirebaseAuth(ctx)
			if err != nil {
				log.Fatal().Err(err).Msg("failed to initialize firebase auth")
			}
		}
	}
	if local || cfg.Auth.Skip {
		log.Warn().Msg("authentication disabled, all requests use the local dev identity")
	}

	financeService := service.NewFinanceService(st, log)
	reconciler := service.NewReconciler(st, log)
	exchanger := pricing.NewExchanger()
	gold := pricing.NewGoldClient(exchanger, cfg.Zakat.FallbackGoldPrice, log)
	zakat := service.NewZakatCalculator(gold)
	allocator, err := service.NewAllocator(cfg.Allocator.StateDir, st, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize allocator")
	}

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	api := router.Group("/api/v1")
	if firebaseAuth != nil {
		api.Use(auth.Middleware(firebaseAuth))
	} else {
		api.Use(auth.SkipMiddleware())
	}

	watcher := service.NewWatcher(st, financeService, reconciler, log).
		OnSummary(func(s service.Summary) {
			log.Debug().
				Str("netWorth", model.FormatIDR(s.NetWorth)).
				Int("wallets", len(s.WalletBalances)).
				Msg("summary recomputed")
		})
	watchers := service.NewWatcherManager(watcher, financeService, log)
	api.Use(func(c *gin.Context) {
		watchers.Ensure(ctx, auth.UserID(c))
		c.Next()
	})

	h := handler.New(financeService, reconciler, zakat, allocator, gold, exchanger, log)
	h.Register(api)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{
			"http://localhost:1234",
			"http://127.0.0.1:1234",
			"https://dompetkeluarga.app",
			"https://www.dompetkeluarga.app",
		},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"User-Agent",
			"X-User-ID",
		},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: h2c.NewHandler(c.Handler(router), &http2.Server{}),
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Str("mode", cfg.Server.Mode).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
