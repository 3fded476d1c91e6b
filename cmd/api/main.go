package main

import (
	"book-store/internal/adapter"
	"book-store/internal/core"
	"book-store/pkg/config"
	"book-store/pkg/http_client"
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, err := newBackend(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to create store backend:", err)
	}
	store := adapter.NewStore(backend, logger)

	catalog := adapter.NewOpenLibraryClient(cfg.CatalogBaseURL, cfg.CatalogRetry,
		http_client.CreateHTTPClient(cfg.CatalogTimeout), adapter.NewRandomSynth(cfg.SynthSeed))
	catalog.CoversURL = cfg.CoversBaseURL

	svc := core.NewService(ctx, store, catalog, core.Options{
		ToastDelay:         cfg.ToastDelay,
		AllowEmptyCheckout: cfg.AllowEmptyCheckout,
		BaseURL:            cfg.PublicBaseURL,
		Logger:             logger,
	})
	defer svc.Close()

	r := chi.NewRouter()
	adapter.NewHTTPHandler(svc, logger).Routes(r)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		logger.Info("listening", "port", cfg.Port, "store_backend", cfg.StoreBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}
}

func newBackend(ctx context.Context, cfg *config.Config) (adapter.Backend, error) {
	switch cfg.StoreBackend {
	case "memory":
		return adapter.NewMemoryBackend(), nil
	case "file":
		return adapter.NewFileBackend(cfg.StoreDir)
	case "dynamodb":
		client, err := adapter.NewDynamoDBClient(ctx, cfg.AWSRegion, cfg.DynamoDBEndpoint)
		if err != nil {
			return nil, err
		}
		return adapter.NewDynamoBackend(client, cfg.DynamoDBTable, cfg.DeviceID), nil
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}
}
