package scoreproviderapplication

import "connect-workers/internal/models"

type Input struct {
	ApplicationID string                     `json:"applicationId,omitempty"`
	Application   models.ProviderApplication `json:"application"`
}

type Output struct {
	Score          int            `json:"score"`
	Tier           string         `json:"tier"`
	AutoApproved   bool           `json:"autoApproved"`
	ScoreBreakdown map[string]int `json:"scoreBreakdown"`
	Disqualifiers  []string       `json:"disqualifiers"`
	ReviewStatus   string         `json:"reviewStatus"` // models.StatusApproved or models.StatusPendingReview
}
