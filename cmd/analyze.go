package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/reqbridge/reqbridge/internal/analysis"
	"github.com/reqbridge/reqbridge/internal/config"
	"github.com/reqbridge/reqbridge/internal/document"
	"github.com/reqbridge/reqbridge/internal/jira"
	"github.com/reqbridge/reqbridge/internal/logging"
)

// analyzeCmd runs extraction on a local file, bypassing Slack and the
// review step. Useful for checking a document before sharing it.
var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Extract requirements from a local document",
	Long: `Extract requirements from a local PDF, DOCX, or text file and print
them. With --create, a Jira ticket is created per requirement immediately,
without the interactive review step.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		create, err := cmd.Flags().GetBool("create")
		if err != nil {
			return err
		}

		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := config.ValidateAnalysisConfig(cfg); err != nil {
			return err
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[0], err)
		}

		text, err := document.ExtractText(data, filepath.Base(args[0]))
		if err != nil {
			return fmt.Errorf("failed to extract text: %w", err)
		}

		analyzer, err := analysis.NewAnalyzer(cfg)
		if err != nil {
			return err
		}

		result, err := analyzer.Analyze(cmd.Context(), text)
		if err != nil {
			return fmt.Errorf("analysis failed: %w", err)
		}

		fmt.Printf("Found %d requirements", len(result.Requirements))
		if result.DocumentSummary != "" {
			fmt.Printf(" (%s)", result.DocumentSummary)
		}
		fmt.Println()

		for _, req := range result.Requirements {
			fmt.Printf("  %s: %s", req.ID, req.Title)
			if req.Priority != "" {
				fmt.Printf(" [%s]", req.Priority)
			}
			if req.EstimatedHours > 0 {
				fmt.Printf(" (%dh)", req.EstimatedHours)
			}
			fmt.Println()
			for _, criterion := range req.AcceptanceCriteria {
				fmt.Printf("      - %s\n", criterion)
			}
		}

		if !create {
			return nil
		}

		jiraClient, err := jira.NewClient(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize jira client: %w", err)
		}

		tickets, createErr := jiraClient.CreateTickets(cmd.Context(), result.Requirements)
		for _, ticket := range tickets {
			fmt.Printf("Created %s for %s: %s\n", ticket.TicketKey, ticket.RequirementID, ticket.TicketURL)
		}
		if createErr != nil {
			logging.Error("ticket creation aborted",
				"created", len(tickets),
				"error", createErr)
			return fmt.Errorf("created %d of %d tickets: %w",
				len(tickets), len(result.Requirements), createErr)
		}

		fmt.Printf("Created %d tickets in project %s\n", len(tickets), strings.ToUpper(cfg.Jira.ProjectKey))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().Bool("create", false, "create Jira tickets immediately, without review")
}
