package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/banshee-data/lodstream/internal/api"
	"github.com/banshee-data/lodstream/internal/config"
	"github.com/banshee-data/lodstream/internal/storage"
)

func handleServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	listen := fs.String("listen", "", "Listen address")
	devMode := fs.Bool("dev", false, "Run in dev mode (enables admin SQL console)")
	workDir := fs.String("work-dir", "", "Working directory holding LOD artifacts to serve")
	configFile := fs.String("config", "", "Configuration file path")
	applyDB := dbFlags(fs)
	fs.Parse(args)

	cfg := buildConfig(*configFile, func(cfg *config.Config) {
		applyDB(cfg)
		if *listen != "" {
			cfg.ListenAddr = *listen
		}
		if *workDir != "" {
			cfg.WorkDir = *workDir
		}
	})

	runServe(context.Background(), cfg, *devMode)
}

// runServe runs the development HTTP server until interrupted.
func runServe(ctx context.Context, cfg config.Config, devMode bool) {
	store, err := storage.Open(cfg)
	if err != nil {
		fatal("%v", err)
	}
	defer store.Close()

	if err := store.MigrateUp(); err != nil {
		fatal("%v", err)
	}
	if v, dirty, err := store.MigrateVersion(); err == nil {
		log.Printf("schema at migration version %d (dirty=%v)", v, dirty)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mux := http.NewServeMux()

	// mount the admin debugging routes in dev mode only
	if devMode {
		store.AttachAdminRoutes(mux)
	}

	apiMux := api.NewServer(store).ServeMux()
	mux.Handle("/api/", http.StripPrefix("/api", apiMux))

	// serve the precomputed LOD artifacts (tileset.json and cache files)
	// straight from the working directory
	if cfg.WorkDir != "" {
		mux.Handle("/data/", http.StripPrefix("/data", http.FileServer(http.Dir(cfg.WorkDir))))
	}

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Printf("got request %q", r.URL.Path)
		mux.ServeHTTP(w, r)
	})

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: h,
	}

	// Start server in a goroutine so it doesn't block
	go func() {
		log.Printf("listening on %s", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	// Wait for context cancellation to shut down server
	<-ctx.Done()
	log.Println("shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}
	log.Printf("graceful shutdown complete")
}
