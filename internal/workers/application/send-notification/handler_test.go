package sendnotification

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"connect-workers/internal/common/errors"
	"connect-workers/internal/common/logger"
	"connect-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Implementations
// ==========================

type sentEmail struct {
	From, To, Subject, HTML, Text string
}

type MockEmailSender struct {
	Sent []sentEmail
	Err  error
}

func (m *MockEmailSender) SendEmail(_ context.Context, from, to, subject, htmlBody, textBody string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	m.Sent = append(m.Sent, sentEmail{from, to, subject, htmlBody, textBody})
	return "ses-msg-1", nil
}

type MockSMSSender struct {
	Sent   map[string]string
	FailOn map[string]bool
}

func (m *MockSMSSender) SendSMS(_ context.Context, phoneNumber, message string) (string, error) {
	if m.FailOn[phoneNumber] {
		return "", stderrors.New("sms rejected")
	}
	if m.Sent == nil {
		m.Sent = map[string]string{}
	}
	m.Sent[phoneNumber] = message
	return "sns-" + phoneNumber, nil
}

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		Enabled:        true,
		MaxJobsActive:  5,
		Timeout:        30 * time.Second,
		EmailEnabled:   true,
		FromEmail:      "noreply@connect.example.com",
		SMSEnabled:     true,
		SMSMinimumTier: "premium",
		AdminNumbers:   []string{"+15550001", "+15550002"},
		AWSRegion:      "us-east-1",
	}
}

func createTestInput(tier string, autoApproved bool) *Input {
	return &Input{
		ApplicationID: "app-001",
		Email:         "jane@inboxcraft.co",
		FullName:      "Jane Doe",
		CompanyName:   "InboxCraft",
		Score:         95,
		Tier:          tier,
		AutoApproved:  autoApproved,
	}
}

func newTestHandler(t *testing.T, cfg *Config, email *MockEmailSender, sms *MockSMSSender) *Handler {
	h, err := NewHandler(HandlerOptions{Config: cfg, Email: email, SMS: sms, Logger: logger.NewTestLogger(t)})
	require.NoError(t, err)
	h.now = func() time.Time { return time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC) }
	return h
}

// ==========================
// Tests
// ==========================

func TestHandler_Execute_PremiumApproved(t *testing.T) {
	email := &MockEmailSender{}
	sms := &MockSMSSender{}
	h := newTestHandler(t, createTestConfig(), email, sms)

	out, err := h.Execute(context.Background(), createTestInput("premium", true))

	require.NoError(t, err)
	assert.Equal(t, StatusSent, out.EmailStatus)
	assert.Equal(t, StatusSent, out.SMSStatus)
	assert.Equal(t, "2026-03-01T09:30:00Z", out.SentAt)
	require.Len(t, out.Notifications, 3)
	assert.Equal(t, models.NotificationApplicationApproved, out.Notifications[0].Type)
	assert.Equal(t, "ses-msg-1", out.Notifications[0].MessageID)

	require.Len(t, email.Sent, 1)
	sent := email.Sent[0]
	assert.Equal(t, "noreply@connect.example.com", sent.From)
	assert.Equal(t, "Welcome to Connect, Jane", sent.Subject)
	assert.Contains(t, sent.HTML, "InboxCraft has been approved as a premium provider")
	assert.Contains(t, sent.Text, "Reference: app-001")

	assert.Equal(t, "Connect: premium applicant InboxCraft scored 95 (auto-approved). Ref app-001", sms.Sent["+15550001"])
	assert.Len(t, sms.Sent, 2)
}

func TestHandler_Execute_BelowSMSTier(t *testing.T) {
	email := &MockEmailSender{}
	sms := &MockSMSSender{}
	h := newTestHandler(t, createTestConfig(), email, sms)

	out, err := h.Execute(context.Background(), createTestInput("verified", false))

	require.NoError(t, err)
	assert.Equal(t, StatusSkipped, out.SMSStatus)
	assert.Len(t, out.Notifications, 1)
	assert.Equal(t, "We received your application, Jane", email.Sent[0].Subject)
	assert.Empty(t, sms.Sent)
}

func TestHandler_Execute_HTMLIsEscaped(t *testing.T) {
	email := &MockEmailSender{}
	h := newTestHandler(t, createTestConfig(), email, &MockSMSSender{})

	in := createTestInput("standard", false)
	in.CompanyName = "<script>alert(1)</script>"
	_, err := h.Execute(context.Background(), in)

	require.NoError(t, err)
	assert.NotContains(t, email.Sent[0].HTML, "<script>")
	assert.Contains(t, email.Sent[0].Text, "<script>")
}

func TestHandler_Execute_EmailFailureIsRetryable(t *testing.T) {
	email := &MockEmailSender{Err: stderrors.New("throttled")}
	sms := &MockSMSSender{}
	h := newTestHandler(t, createTestConfig(), email, sms)

	_, err := h.Execute(context.Background(), createTestInput("premium", true))

	var stdErr *errors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, errors.ErrCodeNotificationFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
	assert.Empty(t, sms.Sent, "admins are not paged when the applicant email fails")
}

func TestHandler_Execute_SMSFailureIsReported(t *testing.T) {
	sms := &MockSMSSender{FailOn: map[string]bool{"+15550001": true}}
	h := newTestHandler(t, createTestConfig(), &MockEmailSender{}, sms)

	out, err := h.Execute(context.Background(), createTestInput("premium", false))

	require.NoError(t, err)
	assert.Equal(t, StatusSent, out.SMSStatus)
	assert.Equal(t, StatusFailed, out.Notifications[1].Status)
	assert.Equal(t, "sms rejected", out.Notifications[1].Error)
	assert.Equal(t, StatusSent, out.Notifications[2].Status)

	sms.FailOn["+15550002"] = true
	out, err = h.Execute(context.Background(), createTestInput("premium", false))
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, out.SMSStatus)
}

func TestHandler_Execute_ChannelsDisabled(t *testing.T) {
	cfg := createTestConfig()
	cfg.EmailEnabled = false
	cfg.SMSEnabled = false
	h := newTestHandler(t, cfg, nil, nil)

	out, err := h.Execute(context.Background(), createTestInput("premium", true))

	require.NoError(t, err)
	assert.Equal(t, StatusDisabled, out.EmailStatus)
	assert.Equal(t, StatusDisabled, out.SMSStatus)
	require.Len(t, out.Notifications, 1)
	assert.Equal(t, StatusDisabled, out.Notifications[0].Status)
}

func TestHandler_Execute_InvalidInput(t *testing.T) {
	h := newTestHandler(t, createTestConfig(), &MockEmailSender{}, &MockSMSSender{})

	_, err := h.Execute(context.Background(), &Input{ApplicationID: "app-1", Email: "not-an-email"})

	var stdErr *errors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, errors.ErrCodeParseError, stdErr.Code)
}

func TestTemplateData_Fallbacks(t *testing.T) {
	data := newTemplateData(&Input{ApplicationID: "app-1"})
	assert.Equal(t, "there", data.FirstName)
	assert.Equal(t, "your company", data.CompanyName)
}

func TestNewHandler_Config(t *testing.T) {
	_, err := NewHandler(HandlerOptions{Config: createTestConfig()})
	assert.Error(t, err, "senders are required for enabled channels")

	cfg := createTestConfig()
	cfg.SMSMinimumTier = "gold"
	assert.Error(t, cfg.Validate())

	cfg = createTestConfig()
	cfg.FromEmail = ""
	assert.Error(t, cfg.Validate())
}
