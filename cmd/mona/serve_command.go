package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/slipstream/mona/internal/api"
	"github.com/slipstream/mona/internal/config"
	"github.com/slipstream/mona/internal/scheduler"
	"github.com/slipstream/mona/internal/scheduler/tasks"
)

func newServeCommand(opts *globalOptions) *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP redirect server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("host") {
				cfg.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			return runServer(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Address to bind (overrides server.host)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (overrides server.port)")

	return cmd
}

func runServer(ctx context.Context, cfg *config.Config) error {
	a, err := newApp(cfg, os.Stdout)
	if err != nil {
		return err
	}
	defer a.Close()
	log := a.log

	log.Info().
		Str("version", config.Version).
		Str("logLevel", cfg.Logging.Level).
		Msg("starting mona")

	sched, err := scheduler.New(log.Logger)
	if err != nil {
		return err
	}
	if err := tasks.RegisterCachePruneTask(sched, a.cache, cfg.Cache.PruneSchedule, a.metrics, log.WithComponent("cache").Logger); err != nil {
		return err
	}
	sched.Start()

	server := api.NewServer(cfg, api.Dependencies{
		Resolver:  a.resolver,
		Parser:    a.parser,
		Torrents:  a.torrents,
		Metrics:   a.metrics,
		Scheduler: sched,
	}, log.Logger)

	addr := cfg.Server.Address()
	serverErr := make(chan error, 1)
	go func() {
		if err := server.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serverErr:
		_ = sched.Stop()
		return err
	case <-sigCtx.Done():
		log.Info().Msg("received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := sched.Stop(); err != nil {
		log.Warn().Err(err).Msg("Failed to stop scheduler")
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		return err
	}

	log.Info().Msg("server stopped")
	return nil
}
