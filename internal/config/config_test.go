package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setFullEnv populates every variable the bot needs; individual tests
// blank out the ones under test.
func setFullEnv(t *testing.T) {
	t.Setenv("SLACK_BOT_TOKEN", "xoxb-test")
	t.Setenv("SLACK_APP_TOKEN", "xapp-test")
	t.Setenv("JIRA_URL", "https://example.atlassian.net")
	t.Setenv("JIRA_EMAIL", "bot@example.com")
	t.Setenv("JIRA_API_TOKEN", "jira-token")
	t.Setenv("JIRA_PROJECT_KEY", "PROJ")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("ANALYSIS_MODEL", "openai")
}

func TestLoadConfig(t *testing.T) {
	setFullEnv(t)

	config, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "xoxb-test", config.Slack.BotToken)
	assert.Equal(t, "xapp-test", config.Slack.AppToken)
	assert.Equal(t, "https://example.atlassian.net", config.Jira.URL)
	assert.Equal(t, "bot@example.com", config.Jira.Email)
	assert.Equal(t, "jira-token", config.Jira.Token)
	assert.Equal(t, "PROJ", config.Jira.ProjectKey)
	assert.Equal(t, "sk-test", config.Analysis.OpenAIAPIKey)
	assert.Equal(t, BackendOpenAI, config.Analysis.Backend)
}

func TestLoadConfigDefaults(t *testing.T) {
	setFullEnv(t)
	t.Setenv("ANALYSIS_MODEL", "")
	t.Setenv("OPENAI_MODEL", "")

	config, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, BackendOpenAI, config.Analysis.Backend)
	assert.Equal(t, DefaultOpenAIModel, config.Analysis.OpenAIModel)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		blank       []string
		wantErr     bool
		errContains string
	}{
		{
			name:    "all present",
			wantErr: false,
		},
		{
			name:        "missing slack bot token",
			blank:       []string{"SLACK_BOT_TOKEN"},
			wantErr:     true,
			errContains: "SLACK_BOT_TOKEN",
		},
		{
			name:        "missing jira url",
			blank:       []string{"JIRA_URL"},
			wantErr:     true,
			errContains: "JIRA_URL",
		},
		{
			name:        "missing openai key",
			blank:       []string{"OPENAI_API_KEY"},
			wantErr:     true,
			errContains: "OPENAI_API_KEY",
		},
		{
			name:        "multiple missing vars reported together",
			blank:       []string{"SLACK_APP_TOKEN", "JIRA_PROJECT_KEY"},
			wantErr:     true,
			errContains: "SLACK_APP_TOKEN",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setFullEnv(t)
			for _, name := range tt.blank {
				t.Setenv(name, "")
			}

			config, err := LoadConfig()
			require.NoError(t, err)

			err = Validate(config)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateReportsAllMissingVars(t *testing.T) {
	setFullEnv(t)
	t.Setenv("SLACK_BOT_TOKEN", "")
	t.Setenv("JIRA_EMAIL", "")

	config, err := LoadConfig()
	require.NoError(t, err)

	err = Validate(config)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SLACK_BOT_TOKEN")
	assert.Contains(t, err.Error(), "JIRA_EMAIL")
}

func TestValidateAnalysisConfig(t *testing.T) {
	tests := []struct {
		name    string
		backend string
		key     string
		wantErr bool
	}{
		{name: "openai backend with key", backend: "openai", key: "sk-test", wantErr: false},
		{name: "openai backend without key", backend: "openai", key: "", wantErr: true},
		// The claude and local backends need no OpenAI key; they fail
		// later with a not-implemented error instead.
		{name: "claude backend", backend: "claude", key: "", wantErr: false},
		{name: "local backend", backend: "local", key: "", wantErr: false},
		{name: "unknown backend", backend: "bard", key: "sk-test", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setFullEnv(t)
			t.Setenv("ANALYSIS_MODEL", tt.backend)
			t.Setenv("OPENAI_API_KEY", tt.key)

			config, err := LoadConfig()
			require.NoError(t, err)

			err = ValidateAnalysisConfig(config)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateJiraConfig(t *testing.T) {
	setFullEnv(t)
	t.Setenv("JIRA_API_TOKEN", "")

	config, err := LoadConfig()
	require.NoError(t, err)

	err = ValidateJiraConfig(config)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JIRA_API_TOKEN")
}
