package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/vedran77/linkup/internal/config"
	"github.com/vedran77/linkup/internal/database"
	"github.com/vedran77/linkup/internal/logging"
	"github.com/vedran77/linkup/internal/monitoring"
	postgresrepo "github.com/vedran77/linkup/internal/repository/postgres"
	"github.com/vedran77/linkup/internal/service"
	"github.com/vedran77/linkup/internal/transport/http/handlers"
	"github.com/vedran77/linkup/internal/transport/ws"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

var (
	migrateFirst bool

	rootCmd = &cobra.Command{
		Use:           "linkup",
		Short:         "Professional networking API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and WebSocket server",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}

	migrateCmd = &cobra.Command{
		Use:       "migrate [up|down|status]",
		Short:     "Apply or inspect database migrations",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down", "status"},
		RunE:      runMigrate,
	}
)

func init() {
	serveCmd.Flags().BoolVar(&migrateFirst, "migrate", false, "apply pending migrations before serving")
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "linkup:", err)
		os.Exit(1)
	}
}

func setup() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	command := "up"
	if len(args) == 1 {
		command = args[0]
	}

	pool, err := database.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, command); err != nil {
		return fmt.Errorf("migrate %s: %w", command, err)
	}
	logger.Info("migrations done", "command", command)
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	// Database
	pool, err := database.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()
	logger.Info("connected to database", "host", cfg.DBHost, "name", cfg.DBName)

	if migrateFirst || cfg.MigrateOnStart {
		if err := database.Migrate(ctx, pool, "up"); err != nil {
			return fmt.Errorf("migrate up: %w", err)
		}
	}

	store := postgresrepo.NewStore(pool)
	metrics := monitoring.New()

	// Real-time
	hub := ws.NewHub(logger, metrics)

	// Services
	svc := handlers.Services{
		Auth:        service.NewAuthService(store, cfg.JWTSecret, cfg.JWTExpiresIn),
		Profiles:    service.NewProfileService(store),
		Hashtags:    service.NewHashtagService(store.Hashtags()),
		Discovery:   service.NewDiscoveryService(store),
		Connections: service.NewConnectionService(store, metrics),
		Users:       service.NewUserService(store.Users()),
	}

	router := handlers.NewRouter(svc, handlers.RouterOptions{
		Logger:     logger,
		CORSOrigin: cfg.CORSOrigin,
		Metrics:    metrics,
		Hub:        hub,
		WSOrigins:  originPatterns(cfg.CORSOrigin),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})
	g.Go(func() error {
		logger.Info("starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// originPatterns turns the CORS origin into a websocket origin host pattern.
func originPatterns(origin string) []string {
	if origin == "" || origin == "*" {
		return []string{"*"}
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return []string{origin}
	}
	return []string{u.Host}
}
