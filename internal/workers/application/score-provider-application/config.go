package scoreproviderapplication

import (
	"time"

	"connect-workers/internal/common/config"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type Config struct {
	Enabled       bool
	MaxJobsActive int
	Timeout       time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:       true,
		MaxJobsActive: 10,
		Timeout:       5 * time.Second,
	}
}

// FromAppConfig reads the worker's section of the application config.
func FromAppConfig(cfg *config.Config) *Config {
	wc := config.GetWorkerConfig(cfg, TaskType)
	return &Config{
		Enabled:       wc.Enabled,
		MaxJobsActive: wc.MaxJobsActive,
		Timeout:       config.GetDuration(wc.Timeout),
	}
}

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.MaxJobsActive, validation.Min(1)),
		validation.Field(&c.Timeout, validation.Required),
	)
}
