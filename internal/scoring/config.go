package scoring

import (
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ErrInvalidConfig is returned when weights would let the score leave 0..100.
var ErrInvalidConfig = errors.New("invalid scoring config")

// ExperienceBucket awards Points when the applicant's years are at least MinYears.
type ExperienceBucket struct {
	MinYears int `json:"minYears"`
	Points   int `json:"points"`
}

func (b ExperienceBucket) Validate() error {
	return validation.ValidateStruct(&b,
		validation.Field(&b.MinYears, validation.Min(0)),
		validation.Field(&b.Points, validation.Min(0)),
	)
}

// Config holds every weight, cap and threshold of the heuristic.
type Config struct {
	// ExperienceBuckets are checked from the highest MinYears down.
	ExperienceBuckets []ExperienceBucket `json:"experienceBuckets"`
	ExperienceCap     int                `json:"experienceCap"`

	ExpertisePerArea    int      `json:"expertisePerArea"`
	ExpertiseCap        int      `json:"expertiseCap"`
	RecognizedExpertise []string `json:"recognizedExpertise"`

	// CaseStudyPoints is earned by a case study with every narrative field
	// filled; partial studies earn a floored share.
	CaseStudyPoints int `json:"caseStudyPoints"`
	CaseStudyCap    int `json:"caseStudyCap"`

	PortfolioPoints int `json:"portfolioPoints"`
	LinkedInPoints  int `json:"linkedinPoints"`

	GuaranteeYes         int `json:"guaranteeYes"`
	GuaranteeConditional int `json:"guaranteeConditional"`

	PremiumThreshold     int    `json:"premiumThreshold"`
	VerifiedThreshold    int    `json:"verifiedThreshold"`
	AutoApproveThreshold int    `json:"autoApproveThreshold"`
	RequiredPlatform     string `json:"requiredPlatform"`
}

// DefaultConfig returns the production weights.
func DefaultConfig() Config {
	return Config{
		ExperienceBuckets: []ExperienceBucket{
			{MinYears: 5, Points: 25},
			{MinYears: 3, Points: 20},
			{MinYears: 2, Points: 15},
			{MinYears: 1, Points: 10},
			{MinYears: 0, Points: 5},
		},
		ExperienceCap: 25,

		ExpertisePerArea: 5,
		ExpertiseCap:     20,
		RecognizedExpertise: []string{
			"Abandoned Cart Recovery",
			"Segmentation Strategy",
			"A/B Testing",
			"Welcome Series",
			"Post-Purchase Flows",
			"Win-Back Campaigns",
			"Deliverability",
			"Copywriting",
			"Email Design",
			"SMS Marketing",
			"Analytics & Reporting",
			"List Growth",
		},

		CaseStudyPoints: 10,
		CaseStudyCap:    20,

		PortfolioPoints: 10,
		LinkedInPoints:  10,

		GuaranteeYes:         15,
		GuaranteeConditional: 8,

		PremiumThreshold:     80,
		VerifiedThreshold:    60,
		AutoApproveThreshold: 85,
		RequiredPlatform:     "Klaviyo",
	}
}

// Validate rejects negative weights, out-of-range thresholds and caps that
// could add up to more than 100.
func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.ExperienceBuckets, validation.Required),
		validation.Field(&c.ExperienceCap, validation.Min(0)),
		validation.Field(&c.ExpertisePerArea, validation.Min(0)),
		validation.Field(&c.ExpertiseCap, validation.Min(0)),
		validation.Field(&c.CaseStudyPoints, validation.Min(0)),
		validation.Field(&c.CaseStudyCap, validation.Min(0)),
		validation.Field(&c.PortfolioPoints, validation.Min(0)),
		validation.Field(&c.LinkedInPoints, validation.Min(0)),
		validation.Field(&c.GuaranteeYes, validation.Min(0)),
		validation.Field(&c.GuaranteeConditional, validation.Min(0), validation.Max(c.GuaranteeYes)),
		validation.Field(&c.PremiumThreshold, validation.Min(0), validation.Max(100)),
		validation.Field(&c.VerifiedThreshold, validation.Min(0), validation.Max(c.PremiumThreshold)),
		validation.Field(&c.AutoApproveThreshold, validation.Min(0), validation.Max(100)),
		validation.Field(&c.RequiredPlatform, validation.Required),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if total := c.MaxScore(); total > 100 {
		return fmt.Errorf("%w: category caps add up to %d", ErrInvalidConfig, total)
	}
	return nil
}

// MaxScore is the highest total the weights allow.
func (c Config) MaxScore() int {
	return c.ExperienceCap +
		c.ExpertiseCap +
		c.CaseStudyCap +
		c.PortfolioPoints +
		c.LinkedInPoints +
		max(c.GuaranteeYes, c.GuaranteeConditional)
}

// TierFor maps a score onto its tier.
func (c Config) TierFor(score int) Tier {
	switch {
	case score >= c.PremiumThreshold:
		return TierPremium
	case score >= c.VerifiedThreshold:
		return TierVerified
	default:
		return TierStandard
	}
}
