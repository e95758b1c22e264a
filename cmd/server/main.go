package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Skufu/triage/internal/config"
	"github.com/Skufu/triage/internal/consult"
	"github.com/Skufu/triage/internal/llm"
	"github.com/Skufu/triage/internal/server"
	"github.com/Skufu/triage/internal/storage"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "triage",
		Short:        "Symptom triage web service",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(historyCmd())
	return rootCmd
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the CSV log header and the relational log table",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			store, _, err := openLogs(ctx, cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "Consultation logs ready: %s, %s\n", cfg.CSVLogPath, cfg.DatabaseURL)
			return nil
		},
	}
}

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print the most recent consultations from the relational log",
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			if limit <= 0 {
				return fmt.Errorf("--limit must be positive")
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			store, err := storage.Open(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.Recent(ctx, limit)
			if err != nil {
				return err
			}
			return printHistory(cmd.OutOrStdout(), records)
		},
	}
	cmd.Flags().Int("limit", 20, "Number of consultations to show")
	return cmd
}

func printHistory(out io.Writer, records []consult.Record) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATETIME\tNAME\tAGE\tURGENCY\tCONDITION")
	for _, r := range records {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", r.ID, r.Timestamp, r.FullName, r.Age, r.Urgency, r.Condition)
	}
	return w.Flush()
}

// openLogs prepares both consultation logs and returns the relational store
// alongside the fan-out recorder writing CSV first.
func openLogs(ctx context.Context, cfg *config.Config) (storage.Store, consult.Recorder, error) {
	flat, err := storage.NewCSVLog(cfg.CSVLogPath)
	if err != nil {
		return nil, nil, err
	}

	store, err := storage.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, nil, err
	}

	return store, consult.Recorders{flat, store}, nil
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := server.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err := cfg.Validate(); err != nil {
		logger.Error().Err(err).Msg("invalid configuration")
		return err
	}
	gin.SetMode(cfg.GinMode)

	ctx := context.Background()
	store, recorder, err := openLogs(ctx, cfg)
	if err != nil {
		logger.Error().Err(err).Msg("open consultation logs")
		return err
	}
	defer store.Close()

	client := llm.NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, cfg.OpenAITemperature)
	svc := consult.NewService(client, recorder, logger)

	staticRoot := cfg.StaticRoot
	if staticRoot == "" {
		staticRoot = server.DetectStaticRoot()
	}
	router := server.NewRouter(store, server.Options{
		StaticRoot:  staticRoot,
		CORSOrigins: cfg.CORSOrigins,
		Logger:      logger,
	}, consult.NewHandler(svc, logger))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	logger.Info().
		Str("port", cfg.Port).
		Str("model", cfg.OpenAIModel).
		Str("static_root", staticRoot).
		Msg("server listening")
	waitForShutdown(srv, logger)
	return nil
}

func waitForShutdown(srv *http.Server, logger zerolog.Logger) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info().Msg("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}
