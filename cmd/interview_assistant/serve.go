package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/interview-assistant/internal/ingestion"
	"github.com/jonathan/interview-assistant/internal/interview"
	"github.com/jonathan/interview-assistant/internal/logging"
	"github.com/jonathan/interview-assistant/internal/metrics"
	"github.com/jonathan/interview-assistant/internal/questions"
	"github.com/jonathan/interview-assistant/internal/scoring"
	"github.com/jonathan/interview-assistant/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes the interviewee session flow and the interviewer roster.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on (overrides PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}

	logger := logging.Must(cfg.LogLevel)
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := openBackends(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer b.Close()

	client, err := newLLMClient(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if client != nil {
		defer client.Close() //nolint:errcheck
	}

	extractor, err := ingestion.NewExtractor(ctx, logger)
	if err != nil {
		return err
	}

	m := metrics.New(logger)
	srv, err := server.New(cfg, server.Deps{
		Logger:    logger,
		Metrics:   m,
		State:     b.state,
		Roster:    b.roster,
		Ingester:  extractor,
		Questions: &questions.Generator{Client: client, OnFallback: m.Fallback(metrics.ComponentQuestions)},
		Scorer:    &scoring.Adapter{Client: client, OnFallback: m.Fallback(metrics.ComponentScoring)},
		Clock:     interview.RealClock{},
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Run(ctx)
}
