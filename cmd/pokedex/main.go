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

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	githubadapter "github.com/ericfisherdev/pokedex/internal/adapter/driven/github"
	"github.com/ericfisherdev/pokedex/internal/adapter/driven/pokedexjson"
	sqliteadapter "github.com/ericfisherdev/pokedex/internal/adapter/driven/sqlite"
	httphandler "github.com/ericfisherdev/pokedex/internal/adapter/driving/http"
	"github.com/ericfisherdev/pokedex/internal/application"
	"github.com/ericfisherdev/pokedex/internal/config"
	"github.com/ericfisherdev/pokedex/internal/domain/model"
	"github.com/ericfisherdev/pokedex/internal/domain/port/driven"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on missing required env vars).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"env", cfg.Env,
		"dataset_source", cfg.DatasetSource,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Load the dataset once, before the listener accepts connections.
	pokemon, err := loadDataset(ctx, cfg)
	if err != nil {
		return err
	}
	slog.Info("dataset loaded", "source", cfg.DatasetSource, "count", len(pokemon))

	// 4. Wire the query service and HTTP adapter.
	pokedexSvc := application.NewPokedexService(pokemon)
	apiHandler := httphandler.NewHandler(pokedexSvc, slog.Default())
	handler := httphandler.NewServeMux(apiHandler, httphandler.MiddlewareOptions{
		APIToken:   cfg.APIToken,
		Production: cfg.IsProduction(),
		Logger:     slog.Default(),
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
			stop()
		}
	}()

	// 5. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	// 6. Graceful shutdown with 10s timeout for in-flight requests.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}

// loadDataset builds the configured PokedexSource and loads it within a 30s
// deadline. Any resources the source opened are released before returning.
func loadDataset(ctx context.Context, cfg *config.Config) ([]model.Pokemon, error) {
	loadCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var src driven.PokedexSource

	switch cfg.DatasetSource {
	case config.DatasetSourceEmbedded:
		src = pokedexjson.NewEmbeddedSource()
	case config.DatasetSourceFile:
		src = pokedexjson.NewFileSource(cfg.DatasetPath)
	case config.DatasetSourceSQLite:
		return loadSQLite(loadCtx, cfg.DBPath)
	case config.DatasetSourceGitHub:
		ghSrc, err := githubadapter.NewSource(githubadapter.Location{
			Repo: cfg.GitHubRepo,
			Path: cfg.GitHubPath,
			Ref:  cfg.GitHubRef,
		}, cfg.GitHubToken)
		if err != nil {
			return nil, err
		}
		src = ghSrc
	default:
		return nil, fmt.Errorf("unsupported dataset source %q", cfg.DatasetSource)
	}

	return src.Load(loadCtx)
}

// loadSQLite reads the dataset from a database prepared by pokedex-seed. The
// file is opened read-only and must already carry the current schema and at
// least one record.
func loadSQLite(ctx context.Context, dbPath string) ([]model.Pokemon, error) {
	db, err := sqliteadapter.OpenReadOnly(ctx, dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w (run pokedex-seed -db %s first)", err, dbPath)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	if err := sqliteadapter.VerifySchema(ctx, db.Reader); err != nil {
		return nil, fmt.Errorf("%w (run pokedex-seed -db %s)", err, dbPath)
	}

	pokemon, err := sqliteadapter.NewPokemonRepo(db).Load(ctx)
	if err != nil {
		return nil, err
	}
	if len(pokemon) == 0 {
		return nil, fmt.Errorf("%w: database %s holds no pokemon (run pokedex-seed -db %s)",
			driven.ErrInvalidDataset, dbPath, dbPath)
	}

	return pokemon, nil
}
