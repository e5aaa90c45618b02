package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"go.yaml.in/yaml/v4"
)

// Config holds the application configuration, parsed from a YAML file.
type Config struct {
	API   APIConfig   `yaml:"api"`
	Model ModelConfig `yaml:"model"`
}

type APIConfig struct {
	BaseURL  string        `yaml:"base_url"`
	Token    string        `yaml:"token"`
	Timeout  time.Duration `yaml:"timeout"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

type ModelConfig struct {
	SpendSteps       int     `yaml:"spend_steps"`       // Points in each response curve's spend grid.
	CredibleInterval float64 `yaml:"credible_interval"` // Posterior interval for contribution bands.
}

func defaultConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL:  "http://localhost:8000",
			Timeout:  30 * time.Second,
			CacheTTL: 5 * time.Minute,
		},
		Model: ModelConfig{
			SpendSteps:       50,
			CredibleInterval: 0.9,
		},
	}
}

func ReadConfig(reader io.Reader) (Config, error) {
	config := defaultConfig()
	if err := yaml.NewDecoder(reader).Decode(&config); err != nil {
		return config, err
	}
	if err := config.validate(); err != nil {
		return config, err
	}
	return config, nil
}

// LoadConfig reads the config file at path. A missing file is not an
// error; the defaults apply.
func LoadConfig(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultConfig(), nil
		}
		return defaultConfig(), err
	}
	defer f.Close()
	return ReadConfig(f)
}

func (c Config) validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url must not be empty")
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive, got %s", c.API.Timeout)
	}
	if c.API.CacheTTL <= 0 {
		return fmt.Errorf("api.cache_ttl must be positive, got %s", c.API.CacheTTL)
	}
	if c.Model.SpendSteps < 10 || c.Model.SpendSteps > 400 {
		return fmt.Errorf("model.spend_steps must be between 10 and 400, got %d", c.Model.SpendSteps)
	}
	if c.Model.CredibleInterval < 0.5 || c.Model.CredibleInterval > 0.99 {
		return fmt.Errorf("model.credible_interval must be between 0.5 and 0.99, got %g", c.Model.CredibleInterval)
	}
	return nil
}
