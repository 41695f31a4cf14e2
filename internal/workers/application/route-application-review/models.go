package routeapplicationreview

import "time"

type Input struct {
	ApplicationID string         `json:"applicationId"`
	UserID        string         `json:"userId"`
	Email         string         `json:"email"`
	CompanyName   string         `json:"companyName"`
	Score         int            `json:"score"`
	Tier          string         `json:"tier"`
	AutoApproved  bool           `json:"autoApproved"`
	Breakdown     map[string]int `json:"scoreBreakdown,omitempty"`
	Disqualifiers []string       `json:"disqualifiers,omitempty"`
}

type Output struct {
	ReviewStatus   string `json:"reviewStatus"`
	ReviewPriority string `json:"reviewPriority"`
	Queued         bool   `json:"queued"`
}

// Review priorities by tier.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// ReviewDocument is what the admin review queue stores per application.
type ReviewDocument struct {
	ApplicationID string         `json:"application_id"`
	UserID        string         `json:"user_id"`
	Email         string         `json:"email"`
	CompanyName   string         `json:"company_name"`
	Score         int            `json:"score"`
	Tier          string         `json:"tier"`
	AutoApproved  bool           `json:"auto_approved"`
	Breakdown     map[string]int `json:"score_breakdown,omitempty"`
	Disqualifiers []string       `json:"disqualifiers,omitempty"`
	Status        string         `json:"status"`
	Priority      string         `json:"priority"`
	QueuedAt      time.Time      `json:"queued_at"`
}

// ReviewIndexMapping is the mapping the review index is created with.
const ReviewIndexMapping = `{
  "mappings": {
    "properties": {
      "application_id": {"type": "keyword"},
      "user_id": {"type": "keyword"},
      "email": {"type": "keyword"},
      "company_name": {"type": "text"},
      "score": {"type": "integer"},
      "tier": {"type": "keyword"},
      "auto_approved": {"type": "boolean"},
      "score_breakdown": {"type": "object"},
      "disqualifiers": {"type": "keyword"},
      "status": {"type": "keyword"},
      "priority": {"type": "keyword"},
      "queued_at": {"type": "date"}
    }
  }
}`
