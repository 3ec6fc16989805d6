package catalog

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vrroom/booking-bff/internal/domain/pricing"
)

// ConfigReader fetches the raw pricing configuration.
type ConfigReader interface {
	GetConfig(ctx context.Context) (map[string]interface{}, error)
}

type configState struct {
	config      pricing.Config
	loadedAt    time.Time
	attemptedAt time.Time
	lastErr     error
	degraded    bool
}

// ConfigProvider holds the normalised pricing configuration. Until a load
// succeeds it serves the degraded default; after that a failed reload keeps
// the last good configuration.
type ConfigProvider struct {
	reader ConfigReader
	state  atomic.Pointer[configState]
	now    func() time.Time
}

// NewConfigProvider creates a provider serving the degraded default.
func NewConfigProvider(reader ConfigReader) *ConfigProvider {
	p := &ConfigProvider{reader: reader, now: time.Now}
	p.state.Store(&configState{config: pricing.DefaultConfig(), degraded: true})
	return p
}

// Load fetches and normalises the configuration. On failure the previous
// state stays in effect and the error is recorded and returned.
func (p *ConfigProvider) Load(ctx context.Context) error {
	now := p.now()
	raw, err := p.reader.GetConfig(ctx)
	if err != nil {
		prev := *p.state.Load()
		prev.attemptedAt, prev.lastErr = now, err
		p.state.Store(&prev)
		if prev.degraded {
			log.Warn().Err(err).Msg("Pricing config unavailable, using degraded defaults")
		} else {
			log.Warn().Err(err).Time("loaded_at", prev.loadedAt).Msg("Pricing config reload failed, keeping last good config")
		}
		return err
	}
	cfg := pricing.NormalizeConfig(raw)
	p.state.Store(&configState{config: cfg, loadedAt: now, attemptedAt: now})
	log.Info().
		Int("tiers", len(cfg.Tiers)).
		Float64("tax_percentage", cfg.TaxPercentage).
		Int("holidays", len(cfg.Holidays)).
		Msg("Pricing config loaded")
	return nil
}

// Current returns the configuration in effect.
func (p *ConfigProvider) Current() pricing.Config {
	return p.state.Load().config
}

// Degraded reports whether the degraded default is in effect.
func (p *ConfigProvider) Degraded() bool {
	return p.state.Load().degraded
}

// LoadedAt is the time of the last successful load, zero if none.
func (p *ConfigProvider) LoadedAt() time.Time {
	return p.state.Load().loadedAt
}

// AttemptedAt is the time of the last load attempt.
func (p *ConfigProvider) AttemptedAt() time.Time {
	return p.state.Load().attemptedAt
}

// LastError is the error of the last load attempt, nil if it succeeded.
func (p *ConfigProvider) LastError() error {
	return p.state.Load().lastErr
}
