// Command miner runs offline pattern mining from the command line: a single
// domain analysis, or one full scheduler pass over candidate domains.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/LocalNewsImpact/boilerplate-engine/internal/boilerplate"
	"github.com/LocalNewsImpact/boilerplate-engine/internal/bootstrap"
	"github.com/LocalNewsImpact/boilerplate-engine/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "miner",
	Short: "Offline boilerplate pattern mining",
	Long: `Mines repeated text blocks from a publisher domain's recent articles,
scores them, and optionally promotes removable segments into the
persistent pattern library.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func main() {
	rootCmd.AddCommand(newAnalyzeCmd())
	rootCmd.AddCommand(newPassCmd())
	rootCmd.AddCommand(newScheduleCmd())
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// setup builds the engine without starting the HTTP server or cron.
func setup() (*bootstrap.EngineComponents, *logger.Logger, error) {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	log, err := bootstrap.CreateLogger(cfg)
	if err != nil {
		return nil, nil, err
	}
	engine, err := bootstrap.NewEngineComponents(cfg, log)
	if err != nil {
		log.Error("Failed to build engine", "error", err)
		return nil, nil, err
	}
	return engine, log, nil
}

func newAnalyzeCmd() *cobra.Command {
	var (
		dom            string
		sampleSize     int
		minOccurrences int
		promote        bool
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Mine one domain and print the analysis as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, log, err := setup()
			if err != nil {
				return err
			}
			defer engine.Close()
			defer func() {
				_ = log.Sync()
			}()

			analysis, err := engine.Miner.AnalyzeDomain(cmd.Context(), dom, boilerplate.MiningOptions{
				SampleSize:     sampleSize,
				MinOccurrences: minOccurrences,
				Promote:        promote,
			})
			if err != nil {
				return fmt.Errorf("analyze %s: %w", dom, err)
			}
			if promote && analysis.PatternsPromoted > 0 {
				engine.Cache.Invalidate(dom)
			}

			out, err := json.MarshalIndent(analysis, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&dom, "domain", "", "publisher domain to mine (required)")
	cmd.Flags().IntVar(&sampleSize, "sample-size", 0, "articles to sample (default from config)")
	cmd.Flags().IntVar(&minOccurrences, "min-occurrences", 0, "minimum distinct articles per block")
	cmd.Flags().BoolVar(&promote, "promote", false, "write removable segments to the pattern library")
	_ = cmd.MarkFlagRequired("domain")

	return cmd
}

func newScheduleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Run the cron mining scheduler in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, log, err := setup()
			if err != nil {
				return err
			}
			defer engine.Close()
			defer func() {
				_ = log.Sync()
			}()

			if err := engine.Scheduler.Start(); err != nil {
				return fmt.Errorf("start scheduler: %w", err)
			}

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			sig := <-quit
			log.Info("Shutting down", "signal", sig.String())
			engine.Scheduler.Stop()
			return nil
		},
	}
}

func newPassCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pass",
		Short: "Run one scheduler pass over all candidate domains",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, log, err := setup()
			if err != nil {
				return err
			}
			defer engine.Close()
			defer func() {
				_ = log.Sync()
			}()

			engine.Scheduler.RunPass(cmd.Context())
			return nil
		},
	}
}
