package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kirillkom/file-organizer/internal/adapters/mcp"
	"github.com/kirillkom/file-organizer/internal/bootstrap"
	"github.com/kirillkom/file-organizer/internal/config"
	"github.com/kirillkom/file-organizer/internal/core/domain"
	natsqueue "github.com/kirillkom/file-organizer/internal/infrastructure/queue/nats"
	"github.com/kirillkom/file-organizer/internal/infrastructure/watcher"
	"github.com/kirillkom/file-organizer/internal/observability/metrics"
)

const version = "0.4.0"

func main() {
	cfg := config.Load()

	rootCmd := &cobra.Command{
		Use:           "organizer",
		Short:         "Classify, rename and file downloaded documents",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&cfg.CatalogPath, "config", cfg.CatalogPath, "category catalog YAML")
	rootCmd.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")

	rootCmd.AddCommand(organizeCmd(&cfg))
	rootCmd.AddCommand(watchCmd(&cfg))
	rootCmd.AddCommand(scoreCmd(&cfg))
	rootCmd.AddCommand(historyCmd(&cfg))
	rootCmd.AddCommand(requestCmd(&cfg))
	rootCmd.AddCommand(mcpCmd(&cfg))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Fatalf("organizer: %v", err)
	}
}

func organizeCmd(cfg *config.Config) *cobra.Command {
	var publish bool

	cmd := &cobra.Command{
		Use:   "organize [paths...]",
		Short: "Organize the given files",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return nil
			}
			app, err := bootstrap.New(cmd.Context(), *cfg, bootstrap.Options{Service: "organizer", Queue: publish})
			if err != nil {
				return fmt.Errorf("bootstrap: %w", err)
			}
			defer app.Close()

			outcomes := app.Organizer.OrganizeBatch(cmd.Context(), args, cfg.DryRun)
			printOutcomes(outcomes)
			return nil
		},
	}
	cmd.Flags().BoolVar(&cfg.DryRun, "dry-run", cfg.DryRun, "decide and log without moving anything")
	cmd.Flags().BoolVar(&publish, "publish", false, "publish file organized events to NATS")
	return cmd
}

func watchCmd(cfg *config.Config) *cobra.Command {
	var publish bool

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Organize files as they appear in a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := bootstrap.New(ctx, *cfg, bootstrap.Options{Service: "watch", Queue: publish})
			if err != nil {
				return fmt.Errorf("bootstrap: %w", err)
			}
			defer app.Close()

			w, err := watcher.NewFSNotifyWatcher(cfg.WatchSettleDelay, app.Logger)
			if err != nil {
				return err
			}
			defer func() { _ = w.Stop() }()

			paths, err := w.Watch(ctx, args[0])
			if err != nil {
				return err
			}

			go func() {
				addr := ":" + cfg.WorkerMetricsPort
				if err := metrics.Serve(ctx, addr, app.Metrics.Handler(), app.Logger); err != nil {
					app.Logger.Error("metrics_server_failed", "error", err)
				}
			}()

			app.Logger.Info("watching", "dir", args[0], "dry_run", cfg.DryRun)
			watcher.Drain(paths, watcher.NewRecent(10*time.Minute), func(path string) []string {
				app.Metrics.StartFile()
				outcome := app.Organizer.OrganizeFile(ctx, path, cfg.DryRun)
				app.Metrics.FinishFile()
				printOutcomes([]domain.FileOutcome{outcome})
				return producedPaths(outcome)
			})
			return nil
		},
	}
	cmd.Flags().BoolVar(&cfg.DryRun, "dry-run", cfg.DryRun, "decide and log without moving anything")
	cmd.Flags().BoolVar(&publish, "publish", false, "publish file organized events to NATS")
	return cmd
}

// producedPaths lists the files a disposition created, so watch mode does
// not organize its own renames or copies.
func producedPaths(outcome domain.FileOutcome) []string {
	if outcome.Disposition == nil {
		return nil
	}
	var produced []string
	if d := outcome.Disposition.DestinationPath; d != "" {
		produced = append(produced, d)
	}
	if l := outcome.Disposition.LocalPath; l != "" && l != outcome.Path {
		produced = append(produced, l)
	}
	return produced
}

func scoreCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "score <file>",
		Short: "Print the extracted content kind and domain scores",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := bootstrap.New(cmd.Context(), *cfg, bootstrap.Options{Service: "score", SkipBackendCheck: true})
			if err != nil {
				return fmt.Errorf("bootstrap: %w", err)
			}
			defer app.Close()

			extraction, scores, err := app.Organizer.Inspect(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Printf("Kind: %s\n", extraction.Kind)
			fmt.Printf("Text: %d chars\n", len(extraction.Text))
			if extraction.Metadata.SourceDomain != "" {
				fmt.Printf("Source: %s\n", extraction.Metadata.SourceDomain)
			}

			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			for _, s := range scores {
				fmt.Fprintf(tw, "%s\t%.1f\n", s.Domain, s.Score)
			}
			return tw.Flush()
		},
	}
}

func historyCmd(cfg *config.Config) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent journal entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.JournalDSN == "" {
				return fmt.Errorf("JOURNAL_DSN is not set")
			}
			app, err := bootstrap.New(cmd.Context(), *cfg, bootstrap.Options{Service: "history", SkipBackendCheck: true})
			if err != nil {
				return fmt.Errorf("bootstrap: %w", err)
			}
			defer app.Close()

			entries, err := app.Journal.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("No entries.")
				return nil
			}

			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "WHEN\tSTATUS\tCATEGORY\tSOURCE\tDESTINATION")
			for _, e := range entries {
				status := e.Status
				if e.DryRun && status != string(domain.OutcomeDryRun) {
					status += " (dry run)"
				}
				dest := e.Destination
				if e.FailedStep != "" {
					dest = "failed at " + e.FailedStep
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					e.CreatedAt.Local().Format("2006-01-02 15:04"), status, e.Category, e.SourcePath, dest)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of entries")
	return cmd
}

func requestCmd(cfg *config.Config) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "request [paths...]",
		Short: "Ask running workers to organize files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			queue, err := natsqueue.New(cfg.NATSURL, cfg.NATSOrganizeSubj, cfg.NATSOrganizedSubj, natsqueue.Options{})
			if err != nil {
				return err
			}
			defer queue.Close()

			for _, path := range args {
				if err := queue.RequestOrganize(cmd.Context(), natsqueue.OrganizeRequest{Path: path, DryRun: dryRun}); err != nil {
					return err
				}
				fmt.Printf("Requested: %s\n", path)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "workers decide without moving anything")
	return cmd
}

func mcpCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve organize_file and score_file as MCP tools over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// stdout carries the MCP protocol.
			app, err := bootstrap.New(cmd.Context(), *cfg, bootstrap.Options{Service: "mcp", LogWriter: os.Stderr})
			if err != nil {
				return fmt.Errorf("bootstrap: %w", err)
			}
			defer app.Close()

			return mcp.ServeStdio(mcp.NewServer(mcp.NewHandler(app.Organizer, app.Organizer), version))
		},
	}
}

func printOutcomes(outcomes []domain.FileOutcome) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, o := range outcomes {
		detail := o.Destination
		switch o.Status {
		case domain.OutcomeSkipped:
			detail = string(o.SkipReason)
		case domain.OutcomeUnreadable, domain.OutcomeFailed:
			detail = o.ErrorMessage()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", o.Status, o.Path, detail)
	}
	_ = tw.Flush()
}
