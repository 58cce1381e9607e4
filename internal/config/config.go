// Package config provides centralized configuration management for the application.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Analysis backend identifiers accepted in ANALYSIS_MODEL.
const (
	BackendOpenAI = "openai"
	BackendClaude = "claude"
	BackendLocal  = "local"
)

// DefaultOpenAIModel is the completion model used when OPENAI_MODEL is unset.
const DefaultOpenAIModel = "gpt-4o"

// Config holds all configuration parameters for the application.
type Config struct {
	Slack    SlackConfig
	Jira     JiraConfig
	Analysis AnalysisConfig
}

// SlackConfig holds Slack specific configuration.
type SlackConfig struct {
	BotToken string
	AppToken string
}

// JiraConfig holds JIRA specific configuration.
type JiraConfig struct {
	URL        string
	Email      string
	Token      string
	ProjectKey string
}

// AnalysisConfig holds language-model analysis configuration.
type AnalysisConfig struct {
	Backend      string
	OpenAIAPIKey string
	OpenAIModel  string
}

// LoadConfig initializes and loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	// Initialize Viper for environment variables
	v := viper.New()
	v.SetEnvPrefix("")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Map specific environment variables
	v.BindEnv("slack.bot_token", "SLACK_BOT_TOKEN")
	v.BindEnv("slack.app_token", "SLACK_APP_TOKEN")
	v.BindEnv("jira.url", "JIRA_URL")
	v.BindEnv("jira.email", "JIRA_EMAIL")
	v.BindEnv("jira.token", "JIRA_API_TOKEN")
	v.BindEnv("jira.project_key", "JIRA_PROJECT_KEY")
	v.BindEnv("analysis.backend", "ANALYSIS_MODEL")
	v.BindEnv("analysis.openai_api_key", "OPENAI_API_KEY")
	v.BindEnv("analysis.openai_model", "OPENAI_MODEL")

	v.SetDefault("analysis.backend", BackendOpenAI)
	v.SetDefault("analysis.openai_model", DefaultOpenAIModel)

	// Create config structure
	config := &Config{
		Slack: SlackConfig{
			BotToken: v.GetString("slack.bot_token"),
			AppToken: v.GetString("slack.app_token"),
		},
		Jira: JiraConfig{
			URL:        v.GetString("jira.url"),
			Email:      v.GetString("jira.email"),
			Token:      v.GetString("jira.token"),
			ProjectKey: v.GetString("jira.project_key"),
		},
		Analysis: AnalysisConfig{
			Backend:      v.GetString("analysis.backend"),
			OpenAIAPIKey: v.GetString("analysis.openai_api_key"),
			OpenAIModel:  v.GetString("analysis.openai_model"),
		},
	}

	return config, nil
}

// Validate ensures that every configuration value required to run the bot
// is provided. All missing variables are reported in a single error.
func Validate(config *Config) error {
	var missingVars []string

	if config.Slack.BotToken == "" {
		missingVars = append(missingVars, "SLACK_BOT_TOKEN")
	}
	if config.Slack.AppToken == "" {
		missingVars = append(missingVars, "SLACK_APP_TOKEN")
	}
	missingVars = append(missingVars, missingJiraVars(config)...)
	missingVars = append(missingVars, missingAnalysisVars(config)...)

	if len(missingVars) > 0 {
		return fmt.Errorf("missing required environment variables: %v", missingVars)
	}

	return ValidateAnalysisConfig(config)
}

// ValidateJiraConfig validates JIRA-specific configuration.
func ValidateJiraConfig(config *Config) error {
	if missing := missingJiraVars(config); len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %v", missing)
	}
	return nil
}

// ValidateAnalysisConfig validates language-model analysis configuration.
func ValidateAnalysisConfig(config *Config) error {
	if missing := missingAnalysisVars(config); len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %v", missing)
	}

	switch config.Analysis.Backend {
	case BackendOpenAI, BackendClaude, BackendLocal:
		return nil
	default:
		return fmt.Errorf("invalid ANALYSIS_MODEL: %q (must be one of %q, %q or %q)",
			config.Analysis.Backend, BackendOpenAI, BackendClaude, BackendLocal)
	}
}

func missingJiraVars(config *Config) []string {
	var missing []string
	if config.Jira.URL == "" {
		missing = append(missing, "JIRA_URL")
	}
	if config.Jira.Email == "" {
		missing = append(missing, "JIRA_EMAIL")
	}
	if config.Jira.Token == "" {
		missing = append(missing, "JIRA_API_TOKEN")
	}
	if config.Jira.ProjectKey == "" {
		missing = append(missing, "JIRA_PROJECT_KEY")
	}
	return missing
}

func missingAnalysisVars(config *Config) []string {
	// Only the OpenAI backend needs a key; the other backends fail later
	// with an explicit not-implemented error.
	if config.Analysis.Backend == BackendOpenAI && config.Analysis.OpenAIAPIKey == "" {
		return []string{"OPENAI_API_KEY"}
	}
	return nil
}
