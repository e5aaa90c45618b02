package main

import (
	"strings"
	"testing"
	"time"
)

func TestReadConfigDefaults(t *testing.T) {
	cfg, err := ReadConfig(strings.NewReader("api:\n  token: abc\n"))
	if err != nil {
		t.Fatalf("failed reading config: %v", err)
	}
	if cfg.API.Token != "abc" {
		t.Errorf("token = %q, want abc", cfg.API.Token)
	}
	if cfg.API.BaseURL != "http://localhost:8000" {
		t.Errorf("base url default not applied, got %q", cfg.API.BaseURL)
	}
	if cfg.Model.SpendSteps != 50 {
		t.Errorf("spend steps default not applied, got %d", cfg.Model.SpendSteps)
	}
	if cfg.API.CacheTTL != 5*time.Minute {
		t.Errorf("cache ttl default not applied, got %s", cfg.API.CacheTTL)
	}
}

func TestReadConfigOverrides(t *testing.T) {
	raw := `
api:
  base_url: https://api.example.com
  timeout: 10s
model:
  spend_steps: 120
  credible_interval: 0.8
`
	cfg, err := ReadConfig(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("failed reading config: %v", err)
	}
	if cfg.API.BaseURL != "https://api.example.com" {
		t.Errorf("base url = %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 10*time.Second {
		t.Errorf("timeout = %s", cfg.API.Timeout)
	}
	if cfg.Model.SpendSteps != 120 {
		t.Errorf("spend steps = %d", cfg.Model.SpendSteps)
	}
}

func TestReadConfigValidation(t *testing.T) {
	for _, raw := range []string{
		"api:\n  base_url: \"\"\n",
		"model:\n  spend_steps: 5\n",
		"model:\n  credible_interval: 0.3\n",
		"api:\n  timeout: -1s\n",
	} {
		if _, err := ReadConfig(strings.NewReader(raw)); err == nil {
			t.Errorf("expected config %q to fail validation", raw)
		}
	}
}
