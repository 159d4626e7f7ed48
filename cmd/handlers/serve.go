package handlers

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/CaliberConsultingLLC/LEP-2-sub001/internal/campaign"
	"github.com/CaliberConsultingLLC/LEP-2-sub001/internal/config"
	"github.com/CaliberConsultingLLC/LEP-2-sub001/internal/logger"
	"github.com/CaliberConsultingLLC/LEP-2-sub001/internal/narrative"
	"github.com/CaliberConsultingLLC/LEP-2-sub001/internal/persistence"
	"github.com/CaliberConsultingLLC/LEP-2-sub001/internal/server"
)

// NewServeCmd creates the serve command for starting the HTTP server
func NewServeCmd() *cobra.Command {
	var (
		port int
		host string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the Trailhead HTTP API.

The server provides:
  • Budgeted narrative summaries and trail maps
  • Campaign generation with trait and statement replacement
  • Dual-axis rating submission and aggregated results

Examples:
  # Start server on default port 8080
  trailhead serve

  # Start on custom port
  trailhead serve --port 3000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), port, host)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "HTTP server port (default from config: 8080)")
	cmd.Flags().StringVar(&host, "host", "", "HTTP server host (default from config: 0.0.0.0)")

	return cmd
}

func runServe(ctx context.Context, port int, host string) error {
	log := logger.Get()

	cfg := config.Get()
	if err := cfg.Validate(true); err != nil {
		return err
	}

	serverCfg := cfg.Server
	if port != 0 {
		serverCfg.Port = port
	}
	if host != "" {
		serverCfg.Host = host
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close(context.Background()) }()

	limiter, closeLimiter, err := newLimiter(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closeLimiter() }()

	summaryGen, err := newTextGenerator(ctx, cfg, "summary", true)
	if err != nil {
		return err
	}
	campaignGen, err := newTextGenerator(ctx, cfg, "campaign", true)
	if err != nil {
		return err
	}

	srv := server.New(server.Dependencies{
		Narratives: narrative.NewGenerator(summaryGen, narrativeOptions(cfg)),
		Campaigns:  campaign.NewService(campaignGen, campaignOptions(cfg)),
		Repository: persistence.NewRepository(store),
		Limiter:    limiter,
	}, serverCfg)

	serverErrors := make(chan error, 1)
	go func() {
		log.Info(fmt.Sprintf("Server listening on http://%s:%d", serverCfg.Host, serverCfg.Port))
		log.Info("Press Ctrl+C to stop")
		serverErrors <- srv.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Info("Server shutdown initiated", "signal", sig.String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Server shutdown failed", "error", err)
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		log.Info("Server stopped successfully")
	}

	return nil
}
