package scoring

import "connect-workers/internal/common/config"

// FromSettings overlays the non-nil fields of a config file section onto DefaultConfig.
func FromSettings(s config.ScoringConfig) (Config, error) {
	c := DefaultConfig()

	if len(s.ExperienceBuckets) > 0 {
		c.ExperienceBuckets = make([]ExperienceBucket, len(s.ExperienceBuckets))
		for i, b := range s.ExperienceBuckets {
			c.ExperienceBuckets[i] = ExperienceBucket{MinYears: b.MinYears, Points: b.Points}
		}
	}
	if len(s.RecognizedExpertise) > 0 {
		c.RecognizedExpertise = append([]string(nil), s.RecognizedExpertise...)
	}
	if s.RequiredPlatform != "" {
		c.RequiredPlatform = s.RequiredPlatform
	}

	overlay := []struct {
		src *int
		dst *int
	}{
		{s.ExperienceCap, &c.ExperienceCap},
		{s.ExpertisePerArea, &c.ExpertisePerArea},
		{s.ExpertiseCap, &c.ExpertiseCap},
		{s.CaseStudyPoints, &c.CaseStudyPoints},
		{s.CaseStudyCap, &c.CaseStudyCap},
		{s.PortfolioPoints, &c.PortfolioPoints},
		{s.LinkedInPoints, &c.LinkedInPoints},
		{s.GuaranteeYes, &c.GuaranteeYes},
		{s.GuaranteeConditional, &c.GuaranteeConditional},
		{s.PremiumThreshold, &c.PremiumThreshold},
		{s.VerifiedThreshold, &c.VerifiedThreshold},
		{s.AutoApproveThreshold, &c.AutoApproveThreshold},
	}
	for _, o := range overlay {
		if o.src != nil {
			*o.dst = *o.src
		}
	}

	return c, c.Validate()
}
