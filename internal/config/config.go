// Package config holds the runtime configuration, loaded from a JSON
// file and overridden by environment variables.
package config

import (
	"os"
	"path/filepath"
)

// PathsConfig holds filesystem locations.
type PathsConfig struct {
	DataDir string `json:"dataDir" envconfig:"DATA_DIR"`
	DBPath  string `json:"dbPath" envconfig:"DB_PATH"`
}

// ModelConfig holds model selection and sampling parameters.
type ModelConfig struct {
	Name        string  `json:"name" envconfig:"NAME"`
	MaxTokens   int     `json:"maxTokens" envconfig:"MAX_TOKENS"`
	Temperature float64 `json:"temperature" envconfig:"TEMPERATURE"`
}

// OpenAIConfig holds credentials for an OpenAI-compatible provider.
type OpenAIConfig struct {
	APIKey  string `json:"apiKey" envconfig:"API_KEY"`
	APIBase string `json:"apiBase" envconfig:"API_BASE"`
}

// ProvidersConfig groups language-model providers.
type ProvidersConfig struct {
	OpenAI OpenAIConfig `json:"openai"`
}

// PlatformConfig holds the product backend endpoint.
type PlatformConfig struct {
	BaseURL  string `json:"baseUrl" envconfig:"BASE_URL"`
	APIToken string `json:"apiToken" envconfig:"API_TOKEN"`
}

// NotificationsConfig holds optional notification mirrors.
type NotificationsConfig struct {
	SlackWebhookURL string `json:"slackWebhookUrl" envconfig:"SLACK_WEBHOOK_URL"`
}

// AuditConfig holds the optional Kafka audit mirror settings.
type AuditConfig struct {
	KafkaBrokers []string `json:"kafkaBrokers" envconfig:"KAFKA_BROKERS"`
	KafkaTopic   string   `json:"kafkaTopic" envconfig:"KAFKA_TOPIC"`
}

// Config is the root configuration.
type Config struct {
	Paths         PathsConfig         `json:"paths"`
	Model         ModelConfig         `json:"model"`
	Providers     ProvidersConfig     `json:"providers"`
	Platform      PlatformConfig      `json:"platform"`
	Notifications NotificationsConfig `json:"notifications"`
	Audit         AuditConfig         `json:"audit"`
}

// DefaultConfig returns the configuration defaults.
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	dataDir := filepath.Join(home, ConfigDir)
	return &Config{
		Paths: PathsConfig{
			DataDir: dataDir,
			DBPath:  filepath.Join(dataDir, "leadmate.db"),
		},
		Model: ModelConfig{
			Name:        "anthropic/claude-sonnet-4-5",
			MaxTokens:   4096,
			Temperature: 0.2,
		},
		Audit: AuditConfig{
			KafkaTopic: "leadmate.audit",
		},
	}
}
