package cmd

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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/spf13/cobra"

	"github.com/pkfare/tripscale/api"
	"github.com/pkfare/tripscale/dify"
	"github.com/pkfare/tripscale/internal/config"
	"github.com/pkfare/tripscale/knowledge"
	"github.com/pkfare/tripscale/memory"
	"github.com/pkfare/tripscale/ratelimit"
	"github.com/pkfare/tripscale/session"
	"github.com/pkfare/tripscale/workflow"
)

var (
	port       int
	configPath string
	storeKind  string
	dataDir    string
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the travel planning server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = port
		}
		if cmd.Flags().Changed("store") {
			cfg.Session.Backend = storeKind
		}
		if cmd.Flags().Changed("data-dir") {
			cfg.Session.DataDir = dataDir
		}

		logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
		slog.SetDefault(logger)

		sessions, cleanup, err := openSessionStore(cmd.Context(), cfg.Session)
		if err != nil {
			return err
		}
		defer cleanup()

		limits := ratelimit.New()
		planner := workflow.New(
			memory.New(memory.DefaultUserData(), memory.WithLogger(logger)),
			dify.NewClient(dify.Config{
				BaseURL:    cfg.Dify.BaseURL,
				APIKey:     cfg.Dify.APIKey,
				Timeout:    cfg.Dify.Timeout(),
				MaxRetries: cfg.Dify.MaxRetries,
				RetryDelay: cfg.Dify.RetryDelay(),
			}, dify.WithLogger(logger)),
			knowledge.New(knowledge.WithLogger(logger)),
			sessions,
			limits,
			workflow.WithLogger(logger),
		)

		r := chi.NewRouter()
		r.Use(middleware.Logger)
		r.Use(middleware.Recoverer)
		r.Use(cors.New(cors.Options{
			AllowedOrigins: cfg.Server.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost},
			AllowedHeaders: []string{"Content-Type"},
		}).Handler)

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("OK"))
		})

		r.Mount("/api", api.New(planner, api.WithLogger(logger)).Router())

		server := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		}

		// Background sweeps keep the limiter and in-memory sessions
		// bounded.
		stopSweeps := startSweeper(cfg.Session, limits, sessions)
		defer stopSweeps()

		done := make(chan error, 1)
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				done <- fmt.Errorf("server failed: %w", err)
				return
			}
			done <- nil
		}()

		printBanner()
		fmt.Printf("Starting server on port %d (sessions: %s)...\n",
			cfg.Server.Port, cfg.Session.Backend)

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			fmt.Printf("\nReceived %s, shutting down...\n", sig)
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				return fmt.Errorf("server shutdown failed: %w", err)
			}
			return nil
		case err := <-done:
			return err
		}
	},
}

// openSessionStore builds the configured session store. The returned
// cleanup is safe to call once, after the server stops.
func openSessionStore(ctx context.Context, cfg config.SessionConfig) (session.Store, func(), error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return session.NewMemoryStore(cfg.IdleTTL()), func() {}, nil
	case config.BackendBolt:
		if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
			return nil, nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		store, err := session.NewBoltStoreFromFile(cfg.DataDir+"/sessions.db", nil)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open session storage: %w", err)
		}
		return store, func() { store.Close() }, nil
	case config.BackendPostgres:
		store, err := session.NewPostgresStoreFromDSN(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect session storage: %w", err)
		}
		return store, func() { store.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown session backend %q", cfg.Backend)
	}
}

// startSweeper runs periodic cleanup for the rate limiter and, when the
// store supports it, idle sessions. The returned function stops it.
func startSweeper(cfg config.SessionConfig, limits *ratelimit.Limiter, sessions session.Store) func() {
	ticker := time.NewTicker(cfg.SweepInterval())
	stop := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				limits.Sweep()
				if store, ok := sessions.(*session.MemoryStore); ok {
					store.Sweep()
				}
			case <-stop:
				return
			}
		}
	}()
	return func() {
		ticker.Stop()
		close(stop)
	}
}

func init() {
	rootCmd.AddCommand(serverCmd)
	serverCmd.Flags().IntVarP(&port, "port", "p", 8080, "Port to listen on")
	serverCmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to a config file")
	serverCmd.Flags().StringVar(&storeKind, "store", "memory", "Session store backend (memory|bolt|postgres)")
	serverCmd.Flags().StringVar(&dataDir, "data-dir", "./data", "Directory for persistent data")
}
