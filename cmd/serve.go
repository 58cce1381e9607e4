package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reqbridge/reqbridge/internal/analysis"
	"github.com/reqbridge/reqbridge/internal/config"
	"github.com/reqbridge/reqbridge/internal/jira"
	"github.com/reqbridge/reqbridge/internal/logging"
	"github.com/reqbridge/reqbridge/internal/pipeline"
	"github.com/reqbridge/reqbridge/internal/review"
	slackbot "github.com/reqbridge/reqbridge/internal/slack"
)

// serveCmd runs the Slack bot until interrupted.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Slack bot",
	Long: `Start the Socket Mode Slack listener.

Documents shared in a channel the bot is in are analyzed and presented for
review; clicking the review button creates one Jira ticket per extracted
requirement.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := config.Validate(cfg); err != nil {
			return err
		}

		analyzer, err := analysis.NewAnalyzer(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize analyzer: %w", err)
		}

		jiraClient, err := jira.NewClient(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize jira client: %w", err)
		}

		store := review.NewDefaultStore()
		p := pipeline.New(analyzer, store, jiraClient)
		bot := slackbot.NewBot(cfg, p)

		logging.Info("starting slack listener",
			"jira_url", cfg.Jira.URL,
			"jira_project", cfg.Jira.ProjectKey,
			"analysis_backend", cfg.Analysis.Backend)

		return bot.Run(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
