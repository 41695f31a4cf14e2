package models

// Notification kinds sent after a provider application is recorded.
const (
	NotificationApplicationReceived = "application_received"
	NotificationApplicationApproved = "application_approved"
	NotificationPremiumApplicant    = "premium_applicant"
)

// Notification records one delivery attempt on one channel.
type Notification struct {
	RecipientType string `json:"recipientType"` // "applicant" or "admin"
	Recipient     string `json:"recipient"`
	Type          string `json:"type"`
	Channel       string `json:"channel"` // "email" or "sms"
	Status        string `json:"status"`  // "sent", "failed" or "disabled"
	MessageID     string `json:"messageId,omitempty"`
	Error         string `json:"error,omitempty"`
}
