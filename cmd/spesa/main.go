package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/spesa/internal/account"
	"github.com/angelmondragon/spesa/internal/history"
	"github.com/angelmondragon/spesa/internal/loader"
	"github.com/angelmondragon/spesa/internal/session"
	"github.com/angelmondragon/spesa/internal/tui"
	"github.com/angelmondragon/spesa/internal/virtual"
	"github.com/angelmondragon/spesa/pkg/apiclient"
	"github.com/angelmondragon/spesa/pkg/config"
	"github.com/angelmondragon/spesa/pkg/logger"
	"github.com/angelmondragon/spesa/pkg/metrics"
)

const shutdownTimeout = 5 * time.Second

func main() {
	sale := flag.Bool("sale", false, "open the products on sale right after sign in")
	baseURL := flag.String("api", "", "override SPESA_API_BASE_URL")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "spesa: %v\n", err)
		os.Exit(1)
	}
	if *baseURL != "" {
		cfg.API.BaseURL = *baseURL
	}

	// the terminal belongs to the UI, so logs go to a file
	logFile, err := logger.OpenFile(cfg.App.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "spesa: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	logg := logger.New(logger.Options{
		ServiceName: "spesa",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
		Output:      logFile,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctx = logg.WithFields(ctx, map[string]any{
		"env": cfg.App.Env,
		"api": cfg.API.BaseURL,
	})

	if err := run(ctx, cfg, logg, *sale); err != nil {
		logg.Error(ctx, "spesa stopped", err)
		fmt.Fprintf(os.Stderr, "spesa: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger, startOnSale bool) error {
	backend, err := session.Open(ctx, cfg, logg)
	if err != nil {
		return fmt.Errorf("opening session store: %w", err)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logg.Error(ctx, "closing session store", err)
		}
	}()

	var clientMetrics *metrics.ClientMetrics
	if cfg.Metrics.Enabled() {
		reg := prometheus.NewRegistry()
		clientMetrics = metrics.NewClientMetrics(reg)
		stop := serveMetrics(ctx, cfg.Metrics.Addr, reg, logg)
		defer stop()
	}

	var program *tea.Program
	client, err := apiclient.New(cfg.API.BaseURL, backend.Tokens,
		apiclient.WithTimeout(cfg.API.Timeout),
		apiclient.WithLogger(logg),
		apiclient.WithMetrics(clientMetrics),
		apiclient.WithUnauthorizedHandler(func(context.Context) {
			if program != nil {
				program.Send(tui.UnauthorizedMsg{})
			}
		}),
	)
	if err != nil {
		return fmt.Errorf("building api client: %w", err)
	}

	acct, err := account.NewService(account.ServiceParams{
		API:    client,
		Tokens: backend.Tokens,
		Logger: logg,
	})
	if err != nil {
		return err
	}

	loaderOpts := []loader.Option{loader.WithLogger(logg)}
	if backend.Favorites != nil {
		loaderOpts = append(loaderOpts, loader.WithFavoritesCache(backend.Favorites))
	}

	model := tui.New(ctx, tui.Deps{
		Account:     acct,
		Loader:      loader.New(client, loaderOpts...),
		Remote:      client,
		History:     history.NewService(client, logg),
		Layout:      virtual.NewLayout(cfg.View),
		Virtualize:  cfg.View.Virtualize,
		Metrics:     clientMetrics,
		Logger:      logg,
		StartOnSale: startOnSale,
	})

	program = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	logg.Info(ctx, "spesa started")
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running ui: %w", err)
	}
	logg.Info(ctx, "spesa exited")
	return nil
}

// serveMetrics exposes reg on addr until the returned stop func is called.
func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry, logg *logger.Logger) func() {
	r := chi.NewRouter()
	r.Handle("/metrics", metrics.Handler(reg))
	server := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "metrics server stopped", err)
		}
	}()
	logg.Info(logg.WithField(ctx, "addr", addr), "metrics server started")
	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "metrics shutdown failed", err)
		}
	}
}
