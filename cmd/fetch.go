package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/naka-gawa/github-portfolio/internal/config"
	"github.com/naka-gawa/github-portfolio/internal/gateway"
	"github.com/naka-gawa/github-portfolio/internal/store"
	"github.com/naka-gawa/github-portfolio/internal/usecase"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [username]",
	Short: "Fetches GitHub repository data and writes it as JSON",
	Long: `Fetches the profile, public repositories and pinned repositories of a GitHub
account, ranks them and writes {"repositories": [...]} to the output file.

Set GITHUB_TOKEN for higher API rate limits.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		logger := newLogger(cmd)

		cfg, err := loadConfig(cmd)
		if err != nil {
			logger.Error("Failed to load configuration", "err", err)
			os.Exit(1)
		}
		if err := applyFetchFlags(cmd, args, cfg); err != nil {
			logger.Error("Invalid flags", "err", err)
			os.Exit(1)
		}
		if err := cfg.Validate(); err != nil {
			logger.Error("Invalid configuration", "err", err)
			os.Exit(1)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := runFetch(ctx, cfg, logger); err != nil {
			logger.Error("Failed to fetch GitHub data", "err", err)
			stop()
			os.Exit(1)
		}
	},
}

func runFetch(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	start := time.Now()
	logger.Info("Starting GitHub data fetch", "user", cfg.Username, "output", cfg.Output)
	if cfg.Token != "" {
		logger.Info("Using GitHub token for authentication")
	} else {
		logger.Warn("No GitHub token found, rate limits may apply; set GITHUB_TOKEN for higher limits")
	}

	// Inject dependencies and run the main business logic.
	githubGateway, err := gateway.NewGitHubGateway(cfg, logger)
	if err != nil {
		return err
	}
	aggregator := usecase.NewAggregator(githubGateway, logger)

	result, err := aggregator.Aggregate(ctx, cfg.Username)
	if err != nil {
		return err
	}

	if err := store.Write(cfg.Output, result.Document); err != nil {
		return err
	}
	logger.Info("Data saved",
		"path", cfg.Output,
		"public", len(result.Document.Repositories),
		"featured", len(result.Document.Featured()),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return nil
}

// applyFetchFlags overrides cfg with any flag the user set explicitly.
func applyFetchFlags(cmd *cobra.Command, args []string, cfg *config.Config) error {
	if len(args) == 1 {
		cfg.Username = args[0]
	}
	flags := cmd.Flags()
	if flags.Changed("output") {
		cfg.Output, _ = flags.GetString("output")
	}
	if flags.Changed("token") {
		cfg.Token, _ = flags.GetString("token")
	}
	if flags.Changed("pinned-source") {
		cfg.PinnedSource, _ = flags.GetString("pinned-source")
	}
	if flags.Changed("max-pages") {
		n, err := flags.GetInt("max-pages")
		if err != nil {
			return err
		}
		cfg.MaxPages = n
	}
	if flags.Changed("timeout") {
		d, err := flags.GetDuration("timeout")
		if err != nil {
			return err
		}
		cfg.HTTPTimeout = d
	}
	return nil
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	fetchCmd.Flags().StringP("output", "o", config.DefaultOutput, "Path of the JSON file to write")
	fetchCmd.Flags().String("token", "", "GitHub token (prefer the GITHUB_TOKEN environment variable)")
	fetchCmd.Flags().String("pinned-source", config.PinnedSourceScrape, "Where to read pinned repositories from: scrape or graphql")
	fetchCmd.Flags().Int("max-pages", config.DefaultMaxPages, "Maximum number of repository pages to request")
	fetchCmd.Flags().Duration("timeout", config.DefaultHTTPTimeout, "Timeout for each HTTP request")
}
