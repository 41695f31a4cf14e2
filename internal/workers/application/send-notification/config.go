package sendnotification

import (
	"time"

	"connect-workers/internal/common/config"
	"connect-workers/internal/scoring"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

type Config struct {
	Enabled       bool
	MaxJobsActive int
	Timeout       time.Duration

	EmailEnabled bool
	FromEmail    string

	SMSEnabled bool
	// SMSMinimumTier is the lowest tier that pages the admins.
	SMSMinimumTier string
	AdminNumbers   []string

	AWSRegion string
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:        true,
		MaxJobsActive:  5,
		Timeout:        30 * time.Second,
		EmailEnabled:   true,
		FromEmail:      "noreply@connect.example.com",
		SMSMinimumTier: string(scoring.TierPremium),
		AWSRegion:      "us-east-1",
	}
}

func FromAppConfig(cfg *config.Config) *Config {
	wc := config.GetWorkerConfig(cfg, TaskType)
	n := cfg.Notifications
	return &Config{
		Enabled:        wc.Enabled,
		MaxJobsActive:  wc.MaxJobsActive,
		Timeout:        config.GetDuration(wc.Timeout),
		EmailEnabled:   n.Email.Enabled,
		FromEmail:      n.Email.FromEmail,
		SMSEnabled:     n.SMS.Enabled,
		SMSMinimumTier: n.SMS.MinimumTier,
		AdminNumbers:   n.SMS.AdminNumbers,
		AWSRegion:      n.AWS.Region,
	}
}

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.MaxJobsActive, validation.Min(1)),
		validation.Field(&c.Timeout, validation.Required),
		validation.Field(&c.FromEmail, validation.When(c.EmailEnabled, validation.Required, is.EmailFormat)),
		validation.Field(&c.SMSMinimumTier, validation.When(c.SMSEnabled,
			validation.Required,
			validation.In(string(scoring.TierStandard), string(scoring.TierVerified), string(scoring.TierPremium)),
		)),
	)
}
