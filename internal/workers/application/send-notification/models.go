package sendnotification

import "connect-workers/internal/models"

type Input struct {
	ApplicationID string `json:"applicationId"`
	Email         string `json:"email"`
	FullName      string `json:"fullName,omitempty"`
	CompanyName   string `json:"companyName,omitempty"`
	Score         int    `json:"score"`
	Tier          string `json:"tier"`
	AutoApproved  bool   `json:"autoApproved"`
}

type Output struct {
	Notifications []models.Notification `json:"notifications"`
	EmailStatus   string                `json:"emailStatus"`
	SMSStatus     string                `json:"smsStatus"`
	SentAt        string                `json:"sentAt"`
}

// Delivery statuses.
const (
	StatusSent     = "sent"
	StatusFailed   = "failed"
	StatusDisabled = "disabled"
	StatusSkipped  = "skipped"
)

const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"

	RecipientApplicant = "applicant"
	RecipientAdmin     = "admin"
)
