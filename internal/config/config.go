package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rtfactory/rtfactory/pkg/artifactory"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName        string `mapstructure:"app_name"`
	LogLevel       string `mapstructure:"log_level"`
	ArtifactoryURL string `mapstructure:"artifactory_url"`
	APIKey         string `mapstructure:"artifactory_api_key"`
	EmailDomain    string `mapstructure:"email_domain"`
	PlanFile       string `mapstructure:"plan_file"`
	PublishersFile string `mapstructure:"publishers_file"`

	JournalType       string        `mapstructure:"journal_type"`
	JournalPath       string        `mapstructure:"journal_path"`
	JournalTTLSeconds int64         `mapstructure:"journal_ttl_seconds"`
	JournalTTL        time.Duration `mapstructure:"-"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	return LoadWith(viper.New())
}

// LoadWith reads configuration through v, which may already carry bound flags.
func LoadWith(v *viper.Viper) (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v.SetDefault("app_name", "rtfactory")
	v.SetDefault("log_level", "info")
	v.SetDefault("artifactory_url", artifactory.DefaultBaseURL)
	v.SetDefault("artifactory_api_key", "")
	v.SetDefault("email_domain", artifactory.DefaultEmailDomain)
	v.SetDefault("plan_file", "./configs/plan.yaml")
	v.SetDefault("publishers_file", "")
	v.SetDefault("journal_type", "none")
	v.SetDefault("journal_path", "./data/journal.db")
	v.SetDefault("journal_ttl_seconds", int64((24*time.Hour)/time.Second))

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.ArtifactoryURL = strings.TrimSpace(cfg.ArtifactoryURL)
	u, err := url.Parse(cfg.ArtifactoryURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid artifactory_url %q (expected http(s)://host/...)", cfg.ArtifactoryURL)
	}

	if cfg.JournalTTLSeconds <= 0 {
		return nil, fmt.Errorf("invalid journal_ttl_seconds (must be positive seconds)")
	}
	cfg.JournalTTL = time.Duration(cfg.JournalTTLSeconds) * time.Second

	return &cfg, nil
}

// ClientConfig returns the settings the Artifactory client is built from.
func (c *Config) ClientConfig() artifactory.Config {
	return artifactory.Config{
		BaseURL:     c.ArtifactoryURL,
		APIKey:      c.APIKey,
		EmailDomain: c.EmailDomain,
	}
}
