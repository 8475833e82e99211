// Package httpprovider resolves option lists from a remote endpoint. The
// request is POSTed as JSON and the endpoint answers with a JSON array of
// {value, title} objects.
package httpprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/propsheet/propsheet/pkg/options"
	"github.com/propsheet/propsheet/pkg/schema"
)

// Config is read from the environment with the PROPSHEET_OPTIONS_ prefix.
type Config struct {
	URL     string        `env:"URL,required"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"10s"`
	Token   string        `env:"TOKEN"`
}

// ConfigFromEnv parses the provider configuration from the environment.
func ConfigFromEnv() (Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](env.Options{Prefix: "PROPSHEET_OPTIONS_"})
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse options provider config: %w", err)
	}

	return cfg, nil
}

// Provider implements options.Provider over HTTP.
type Provider struct {
	cfg    Config
	client *http.Client
}

// NewProvider creates a provider for the given endpoint configuration.
func NewProvider(cfg Config) *Provider {
	return &Provider{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// RequestOptions POSTs the request and decodes the option list.
func (p *Provider) RequestOptions(ctx context.Context, req options.Request) ([]schema.Option, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode options request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.URL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build options request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")

	if p.cfg.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.cfg.Token)
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("options request for %s failed: %w", req.PropertyPath, err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("options endpoint returned %d for %s", resp.StatusCode, req.PropertyPath)
	}

	var opts []schema.Option
	if err := json.NewDecoder(resp.Body).Decode(&opts); err != nil {
		return nil, fmt.Errorf("failed to decode options for %s: %w", req.PropertyPath, err)
	}

	return opts, nil
}
