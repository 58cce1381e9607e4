// Package cmd provides the command-line interface for the reqbridge bot.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "reqbridge",
	Short: "Reqbridge turns shared documents into Jira tickets",
	Long: `Reqbridge ingests a document shared in a Slack channel, extracts
structured software requirements with a language model, presents them for
human review, and on confirmation creates one Jira ticket per requirement.

Run 'reqbridge serve' to start the Slack bot, or 'reqbridge analyze' to
extract requirements from a local file without Slack.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
