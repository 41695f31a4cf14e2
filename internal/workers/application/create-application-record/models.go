package createapplicationrecord

import "encoding/json"

type Input struct {
	UserID string `json:"userId"`
	// WizardKind defaults to provider-application.
	WizardKind string          `json:"wizardKind,omitempty"`
	FormData   json.RawMessage `json:"formData"`
}

type Output struct {
	ApplicationID     string         `json:"applicationId"`
	ApplicationStatus string         `json:"applicationStatus"`
	Score             int            `json:"score"`
	Tier              string         `json:"tier,omitempty"`
	AutoApproved      bool           `json:"autoApproved"`
	ScoreBreakdown    map[string]int `json:"scoreBreakdown,omitempty"`
	CreatedAt         string         `json:"createdAt"` // RFC 3339
}
