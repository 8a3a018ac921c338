package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/meur/moonshade/internal/api"
	"github.com/meur/moonshade/internal/broadcast"
	"github.com/meur/moonshade/internal/config"
	"github.com/meur/moonshade/internal/events"
	"github.com/meur/moonshade/internal/storage"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Flags override the environment
	port := flag.Int("port", cfg.Port, "Server port")
	dbPath := flag.String("db", cfg.DBPath, "SQLite database path")
	backend := flag.String("storage", cfg.StorageBackend, "Storage backend (sqlite, redis, memory)")
	frontend := flag.String("frontend", "../frontend/dist", "Directory with the built admin console")
	flag.Parse()
	cfg.Port, cfg.DBPath, cfg.StorageBackend = *port, *dbPath, *backend

	config.SetupLogger(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// Initialize storage
	store, err := storage.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize storage: %w", err)
	}
	defer store.Close()

	hub := broadcast.NewHub()
	eventStore := events.New(store, events.WithShares(store), events.WithNotifier(hub))
	if err := eventStore.Open(ctx, cfg.ShareToken); err != nil {
		return fmt.Errorf("open event store: %w", err)
	}

	// Create router
	r := api.New(eventStore, store, hub, cfg.CORSOrigins)

	// Serve frontend static files (for production deployment)
	if dir, err := filepath.Abs(*frontend); err == nil {
		if info, statErr := os.Stat(dir); statErr == nil && info.IsDir() {
			FileServer(r.Router(), "/", http.Dir(dir))
			log.Info().Str("dir", dir).Msg("serving admin console")
		}
	}

	return serve(cfg.Port, r)
}

func serve(port int, handler http.Handler) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Msgf("Moonshade Events API starting on http://localhost:%d", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down server")
	case err := <-serverErr:
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

// FileServer conveniently sets up a http.FileServer handler to serve
// static files from a http.FileSystem.
func FileServer(r chi.Router, path string, root http.FileSystem) {
	if strings.ContainsAny(path, "{}*") {
		panic("FileServer does not permit URL parameters.")
	}

	if path != "/" && path[len(path)-1] != '/' {
		r.Get(path, http.RedirectHandler(path+"/", 301).ServeHTTP)
		path += "/"
	}
	path += "*"

	r.Get(path, func(w http.ResponseWriter, req *http.Request) {
		rctx := chi.RouteContext(req.Context())
		pathPrefix := strings.TrimSuffix(rctx.RoutePattern(), "/*")
		fs := http.StripPrefix(pathPrefix, http.FileServer(root))
		fs.ServeHTTP(w, req)
	})
}
