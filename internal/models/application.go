package models

import "time"

// Review statuses of a stored provider application.
const (
	StatusApproved      = "approved"
	StatusPendingReview = "pending_review"
)

// ApplicationRecord is a submitted provider application as persisted and indexed for review.
type ApplicationRecord struct {
	ID           string         `json:"id"`
	UserID       string         `json:"userId"`
	Email        string         `json:"email"`
	CompanyName  string         `json:"companyName"`
	Score        int            `json:"score"`
	Tier         string         `json:"tier"`
	AutoApproved bool           `json:"autoApproved"`
	Breakdown    map[string]int `json:"breakdown"`
	Status       string         `json:"status"`
	SubmittedAt  time.Time      `json:"submittedAt"`
}
