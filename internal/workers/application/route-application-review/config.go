package routeapplicationreview

import (
	"time"

	"connect-workers/internal/common/config"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type Config struct {
	Enabled       bool
	MaxJobsActive int
	Timeout       time.Duration
	Index         string
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       10 * time.Second,
		Index:         "provider_application_reviews",
	}
}

func FromAppConfig(cfg *config.Config) *Config {
	wc := config.GetWorkerConfig(cfg, TaskType)
	return &Config{
		Enabled:       wc.Enabled,
		MaxJobsActive: wc.MaxJobsActive,
		Timeout:       config.GetDuration(wc.Timeout),
		Index:         cfg.Review.Index,
	}
}

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.MaxJobsActive, validation.Min(1)),
		validation.Field(&c.Timeout, validation.Required),
		validation.Field(&c.Index, validation.Required),
	)
}
