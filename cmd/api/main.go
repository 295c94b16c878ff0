package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/billable/internal/auth"
	"github.com/MrJamesThe3rd/billable/internal/client"
	clientStore "github.com/MrJamesThe3rd/billable/internal/client/store"
	"github.com/MrJamesThe3rd/billable/internal/config"
	"github.com/MrJamesThe3rd/billable/internal/dashboard"
	"github.com/MrJamesThe3rd/billable/internal/database"
	"github.com/MrJamesThe3rd/billable/internal/export"
	billableHttp "github.com/MrJamesThe3rd/billable/internal/http"
	clientHandler "github.com/MrJamesThe3rd/billable/internal/http/client"
	dashboardHandler "github.com/MrJamesThe3rd/billable/internal/http/dashboard"
	invoiceHandler "github.com/MrJamesThe3rd/billable/internal/http/invoice"
	matchingHandler "github.com/MrJamesThe3rd/billable/internal/http/matching"
	profileHandler "github.com/MrJamesThe3rd/billable/internal/http/profile"
	rateHandler "github.com/MrJamesThe3rd/billable/internal/http/rate"
	entryHandler "github.com/MrJamesThe3rd/billable/internal/http/timeentry"
	toolsHandler "github.com/MrJamesThe3rd/billable/internal/http/tools"
	"github.com/MrJamesThe3rd/billable/internal/importer"
	"github.com/MrJamesThe3rd/billable/internal/invoice"
	invoiceStore "github.com/MrJamesThe3rd/billable/internal/invoice/store"
	"github.com/MrJamesThe3rd/billable/internal/matching"
	matchingStore "github.com/MrJamesThe3rd/billable/internal/matching/store"
	"github.com/MrJamesThe3rd/billable/internal/profile"
	profileStore "github.com/MrJamesThe3rd/billable/internal/profile/store"
	"github.com/MrJamesThe3rd/billable/internal/rate"
	"github.com/MrJamesThe3rd/billable/internal/rate/cache"
	"github.com/MrJamesThe3rd/billable/internal/rate/nbp"
	rateStore "github.com/MrJamesThe3rd/billable/internal/rate/store"
	"github.com/MrJamesThe3rd/billable/internal/registry"
	"github.com/MrJamesThe3rd/billable/internal/render"
	"github.com/MrJamesThe3rd/billable/internal/storage"
	"github.com/MrJamesThe3rd/billable/internal/timeentry"
	entryStore "github.com/MrJamesThe3rd/billable/internal/timeentry/store"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.App.LogLevel})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, cfg.ConnectionString())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	rates, err := rateRepository(ctx, cfg, rateStore.New(db))
	if err != nil {
		return err
	}

	archive, err := pdfArchive(ctx, cfg)
	if err != nil {
		return err
	}

	renderer, closeRenderer := pdfRenderer(cfg)
	defer closeRenderer()

	var (
		clientService   = client.NewService(clientStore.New(db), registry.New(cfg.Registry.BaseURL, cfg.Registry.Timeout))
		profileService  = profile.NewService(profileStore.New(db))
		entryService    = timeentry.NewService(entryStore.New(db))
		matchingService = matching.NewService(matchingStore.New(db))
		rateService     = rate.NewService(rates, nbp.New(cfg.NBP.BaseURL, cfg.NBP.Timeout))
		invoiceService  = invoice.NewService(invoiceStore.New(db), clientService, entryService, rateService, matchingService)
		importService   = importer.NewService(clientService, matchingService)
		exportService   = export.NewService(entryService, clientService)
		renderService   = render.NewService(invoiceService, profileService, clientService, renderer, archive)
		dashService     = dashboard.NewService(entryService, invoiceService, cfg.App.InsightsThreshold)
	)

	router := billableHttp.New(billableHttp.Handlers{
		TimeEntries: entryHandler.NewHandler(entryService, importService, exportService),
		Clients:     clientHandler.NewHandler(clientService),
		Profile:     profileHandler.NewHandler(profileService),
		Rates:       rateHandler.NewHandler(rateService),
		Invoices:    invoiceHandler.NewHandler(invoiceService, renderService),
		Matching:    matchingHandler.NewHandler(matchingService),
		Dashboard:   dashboardHandler.NewHandler(dashService),
		Tools:       toolsHandler.NewHandler(),
	}, billableHttp.Options{
		Verifier:       auth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.Audience),
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Timeout:        cfg.Server.Timeout,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout + 10*time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)

	go func() {
		slog.Info("starting server", "app", cfg.App.Name, "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

// rateRepository puts the Redis cache in front of the rate table when Redis is configured.
func rateRepository(ctx context.Context, cfg *config.Config, next rate.Repository) (rate.Repository, error) {
	if cfg.Redis.Addr == "" {
		return next, nil
	}

	rdb, err := cache.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, fmt.Errorf("rate cache: %w", err)
	}

	slog.Info("exchange rate cache enabled", "addr", cfg.Redis.Addr)

	return cache.New(rdb, next, cfg.Redis.TTL), nil
}

func pdfArchive(ctx context.Context, cfg *config.Config) (render.Archive, error) {
	if !cfg.StorageEnabled() {
		slog.Info("pdf archive disabled")
		return nil, nil
	}

	store, err := storage.New(ctx, storage.Config{
		Endpoint:     cfg.Storage.Endpoint,
		Region:       cfg.Storage.Region,
		Bucket:       cfg.Storage.Bucket,
		AccessKey:    cfg.Storage.AccessKey,
		SecretKey:    cfg.Storage.SecretKey,
		UsePathStyle: cfg.Storage.UsePathStyle,
		PresignTTL:   cfg.Storage.PresignTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("configuring storage: %w", err)
	}

	if err := store.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("preparing bucket: %w", err)
	}

	return store, nil
}

func pdfRenderer(cfg *config.Config) (render.Renderer, func()) {
	if cfg.Renderer.ChromeURL == "" {
		slog.Info("using built-in pdf renderer")
		return render.NewFPDFRenderer(), func() {}
	}

	chrome := render.NewChromeRenderer(cfg.Renderer.ChromeURL, cfg.Renderer.Timeout)

	return chrome, func() {
		if err := chrome.Close(); err != nil {
			slog.Warn("closing chrome renderer", "error", err)
		}
	}
}
