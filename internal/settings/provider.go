package settings

import (
	"context"
	"errors"

	"github.com/wenw80/GrowAssess-sub000/internal/grading"
)

// Setting keys for the grading collaborator.
const (
	KeyGradingBaseURL = "grading.base_url"
	KeyGradingModel   = "grading.model"
	KeyGradingAPIKey  = "grading.api_key"
)

// Provider resolves the grading configuration once per request: stored
// values win over the environment defaults, and the result is handed to the
// grading client as an explicit value, never read as ambient state inside
// scoring logic.
type Provider struct {
	store    *Store
	defaults grading.Config
}

func NewProvider(store *Store, defaults grading.Config) *Provider {
	return &Provider{store: store, defaults: defaults}
}

func (p *Provider) GradingConfig(ctx context.Context) (grading.Config, error) {
	cfg := p.defaults
	if v, err := p.store.Get(ctx, KeyGradingBaseURL); err == nil && v != "" {
		cfg.BaseURL = v
	} else if err != nil && !errors.Is(err, ErrNotSet) {
		return grading.Config{}, err
	}
	if v, err := p.store.Get(ctx, KeyGradingModel); err == nil && v != "" {
		cfg.Model = v
	} else if err != nil && !errors.Is(err, ErrNotSet) {
		return grading.Config{}, err
	}
	if v, err := p.store.Get(ctx, KeyGradingAPIKey); err == nil && v != "" {
		cfg.APIKey = v
	} else if err != nil && !errors.Is(err, ErrNotSet) {
		return grading.Config{}, err
	}
	return cfg, nil
}
