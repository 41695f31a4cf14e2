package wizardsessioncommand

import (
	"time"

	"connect-workers/internal/common/config"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type Config struct {
	Enabled       bool
	MaxJobsActive int
	Timeout       time.Duration
	SnapshotTTL   time.Duration
	KeyPrefix     string
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:       true,
		MaxJobsActive: 10,
		Timeout:       10 * time.Second,
		SnapshotTTL:   7 * 24 * time.Hour,
		KeyPrefix:     "wizard:",
	}
}

func FromAppConfig(cfg *config.Config) *Config {
	wc := config.GetWorkerConfig(cfg, TaskType)
	return &Config{
		Enabled:       wc.Enabled,
		MaxJobsActive: wc.MaxJobsActive,
		Timeout:       config.GetDuration(wc.Timeout),
		SnapshotTTL:   cfg.Wizard.SnapshotTTLDuration(),
		KeyPrefix:     cfg.Wizard.KeyPrefix,
	}
}

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.MaxJobsActive, validation.Min(1)),
		validation.Field(&c.Timeout, validation.Required),
		validation.Field(&c.SnapshotTTL, validation.Min(time.Duration(0))),
	)
}
