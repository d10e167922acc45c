package config

import (
	"time"

	"github.com/spf13/viper"

	"wandb-ci/internal/core/domain"
)

type Config struct {
	WandB    WandBConfig
	Registry RegistryConfig
	Run      RunConfig
	CI       CIConfig
	Logger   LoggerConfig
}

type WandBConfig struct {
	APIKey  string
	BaseURL string
	AppURL  string
	Entity  string
	Project string
	Timeout time.Duration
}

type RegistryConfig struct {
	Collection string
	Tag        string
}

type RunConfig struct {
	ID  string
	Tag string
}

type CIConfig struct {
	Enabled    bool
	OutputPath string
}

type LoggerConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("WANDB_BASE_URL", "https://api.wandb.ai")
	v.SetDefault("WANDB_APP_URL", "https://wandb.ai")
	v.SetDefault("WANDB_ENTITY", "FacuRoffet99")
	v.SetDefault("WANDB_PROJECT", "pytorch-intro")
	v.SetDefault("WANDB_TIMEOUT", "30s")
	v.SetDefault("REGISTRY_COLLECTION", "MNIST Classifier")
	v.SetDefault("LOGGER_LEVEL", "info")
	v.SetDefault("LOGGER_FORMAT", "text")

	// Env
	v.AutomaticEnv()

	timeout, err := time.ParseDuration(v.GetString("WANDB_TIMEOUT"))
	if err != nil {
		timeout = 30 * time.Second
	}

	cfg := &Config{
		WandB: WandBConfig{
			APIKey:  v.GetString("WANDB_API_KEY"),
			BaseURL: v.GetString("WANDB_BASE_URL"),
			AppURL:  v.GetString("WANDB_APP_URL"),
			Entity:  v.GetString("WANDB_ENTITY"),
			Project: v.GetString("WANDB_PROJECT"),
			Timeout: timeout,
		},
		Registry: RegistryConfig{
			Collection: v.GetString("REGISTRY_COLLECTION"),
			Tag:        v.GetString("REGISTRY_TAG"),
		},
		Run: RunConfig{
			ID:  v.GetString("RUN_ID"),
			Tag: v.GetString("RUN_TAG"),
		},
		CI: CIConfig{
			// Any non-empty value counts, including "false".
			Enabled:    v.GetString("CI") != "",
			OutputPath: v.GetString("GITHUB_OUTPUT"),
		},
		Logger: LoggerConfig{
			Level:  v.GetString("LOGGER_LEVEL"),
			Format: v.GetString("LOGGER_FORMAT"),
		},
	}

	return cfg, nil
}

// ValidatePromote checks the settings the promote helper needs.
func (c *Config) ValidatePromote() error {
	if err := c.validateCommon(); err != nil {
		return err
	}
	if c.Registry.Tag == "" {
		return domain.ErrMissingRegistryTag
	}
	return nil
}

// ValidateReport checks the settings the report helper needs.
func (c *Config) ValidateReport() error {
	if err := c.validateCommon(); err != nil {
		return err
	}
	if c.Run.Tag == "" {
		return domain.ErrMissingRunTag
	}
	return nil
}

func (c *Config) validateCommon() error {
	if c.WandB.APIKey == "" {
		return domain.ErrMissingAPIKey
	}
	if c.Run.ID == "" {
		return domain.ErrMissingRunID
	}
	if c.CI.Enabled && c.CI.OutputPath == "" {
		return domain.ErrMissingOutputPath
	}
	return nil
}
