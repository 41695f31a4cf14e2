package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig               `mapstructure:"app"`
	Camunda       CamundaConfig           `mapstructure:"camunda"`
	Database      DatabaseConfig          `mapstructure:"database"`
	Workers       map[string]WorkerConfig `mapstructure:"workers"`
	Logging       LoggingConfig           `mapstructure:"logging"`
	Metrics       MetricsConfig           `mapstructure:"metrics"`
	Notifications NotificationConfig      `mapstructure:"notifications"`
	Wizard        WizardConfig            `mapstructure:"wizard"`
	Review        ReviewConfig            `mapstructure:"review"`
	Scoring       ScoringConfig           `mapstructure:"scoring"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
	UsePlaintext   bool   `mapstructure:"use_plaintext"`
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the lib/pq connection string.
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// WorkerConfig holds the settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"` // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type MetricsConfig struct {
	Port int `mapstructure:"port"`
}

// NotificationConfig holds settings for the send-notification worker.
type NotificationConfig struct {
	Email struct {
		Enabled   bool   `mapstructure:"enabled"`
		FromEmail string `mapstructure:"from_email"`
	} `mapstructure:"email"`
	SMS struct {
		Enabled      bool     `mapstructure:"enabled"`
		MinimumTier  string   `mapstructure:"minimum_tier"`
		AdminNumbers []string `mapstructure:"admin_numbers"`
	} `mapstructure:"sms"`
	AWS struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`
}

// WizardConfig controls wizard snapshot persistence.
type WizardConfig struct {
	SnapshotTTL int    `mapstructure:"snapshot_ttl"` // seconds, 0 keeps snapshots forever
	KeyPrefix   string `mapstructure:"key_prefix"`
}

// SnapshotTTLDuration returns SnapshotTTL as a duration.
func (w WizardConfig) SnapshotTTLDuration() time.Duration {
	return time.Duration(w.SnapshotTTL) * time.Second
}

// ReviewConfig controls the admin review queue.
type ReviewConfig struct {
	Index string `mapstructure:"index"`
}

// ScoringConfig overrides the built-in scoring weights. Nil fields keep
// their defaults so a partial section is valid.
type ScoringConfig struct {
	ExperienceBuckets    []ExperienceBucket `mapstructure:"experience_buckets"`
	ExperienceCap        *int               `mapstructure:"experience_cap"`
	ExpertisePerArea     *int               `mapstructure:"expertise_per_area"`
	ExpertiseCap         *int               `mapstructure:"expertise_cap"`
	RecognizedExpertise  []string           `mapstructure:"recognized_expertise"`
	CaseStudyPoints      *int               `mapstructure:"case_study_points"`
	CaseStudyCap         *int               `mapstructure:"case_study_cap"`
	PortfolioPoints      *int               `mapstructure:"portfolio_points"`
	LinkedInPoints       *int               `mapstructure:"linkedin_points"`
	GuaranteeYes         *int               `mapstructure:"guarantee_yes"`
	GuaranteeConditional *int               `mapstructure:"guarantee_conditional"`
	PremiumThreshold     *int               `mapstructure:"premium_threshold"`
	VerifiedThreshold    *int               `mapstructure:"verified_threshold"`
	AutoApproveThreshold *int               `mapstructure:"auto_approve_threshold"`
	RequiredPlatform     string             `mapstructure:"required_platform"`
}

type ExperienceBucket struct {
	MinYears int `mapstructure:"min_years"`
	Points   int `mapstructure:"points"`
}
