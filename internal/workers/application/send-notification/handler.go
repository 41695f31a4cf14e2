package sendnotification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"connect-workers/internal/common/camunda"
	"connect-workers/internal/common/errors"
	"connect-workers/internal/common/logger"
	"connect-workers/internal/models"
	"connect-workers/internal/scoring"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

const TaskType = "send-notification"

// EmailSender is implemented by aws.SESClient.
type EmailSender interface {
	SendEmail(ctx context.Context, from, to, subject, htmlBody, textBody string) (string, error)
}

// SMSSender is implemented by aws.SNSClient.
type SMSSender interface {
	SendSMS(ctx context.Context, phoneNumber, message string) (string, error)
}

type Handler struct {
	config       *Config
	email        EmailSender
	sms          SMSSender
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
	now          func() time.Time
}

type HandlerOptions struct {
	Config *Config
	Email  EmailSender
	SMS    SMSSender
	Logger logger.Logger
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}
	if cfg.EmailEnabled && opts.Email == nil {
		return nil, fmt.Errorf("%s: email is enabled but no sender was given", TaskType)
	}
	if cfg.SMSEnabled && opts.SMS == nil {
		return nil, fmt.Errorf("%s: sms is enabled but no sender was given", TaskType)
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})

	return &Handler{
		config:       cfg,
		email:        opts.Email,
		sms:          opts.SMS,
		logger:       log,
		errorHandler: errors.NewErrorHandler(log),
		now:          func() time.Time { return time.Now().UTC() },
	}, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
	})

	var input Input
	if err := json.Unmarshal([]byte(job.GetVariables()), &input); err != nil {
		stdErr := errors.NewParseError(err)
		h.errorHandler.HandleJobError(ctx, client, job, stdErr)
		return stdErr
	}

	output, err := h.Execute(ctx, &input)
	if err != nil {
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return err
	}
	return camunda.CompleteJob(ctx, client, job, output, h.logger)
}

// Execute emails the applicant and pages the admins by SMS when the tier
// reaches the configured minimum. A failed email fails the job so it is
// retried; SMS failures are only reported.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if err := validation.ValidateStruct(input,
		validation.Field(&input.ApplicationID, validation.Required),
		validation.Field(&input.Email, validation.Required, is.EmailFormat),
	); err != nil {
		return nil, errors.NewParseError(err)
	}

	data := newTemplateData(input)
	out := &Output{SentAt: h.now().Format(time.RFC3339)}

	kind := models.NotificationApplicationReceived
	if input.AutoApproved {
		kind = models.NotificationApplicationApproved
	}
	emailNote, err := h.sendEmail(ctx, kind, input.Email, data)
	if err != nil {
		return nil, err
	}
	out.Notifications = append(out.Notifications, emailNote)
	out.EmailStatus = emailNote.Status

	smsNotes := h.sendAdminSMS(ctx, input, data)
	out.Notifications = append(out.Notifications, smsNotes...)
	out.SMSStatus = smsSummary(h.config.SMSEnabled, smsNotes)

	h.logger.Info("notifications dispatched", map[string]interface{}{
		"applicationId": input.ApplicationID,
		"emailStatus":   out.EmailStatus,
		"smsStatus":     out.SMSStatus,
	})
	return out, nil
}

func (h *Handler) sendEmail(ctx context.Context, kind, to string, data templateData) (models.Notification, error) {
	note := models.Notification{
		RecipientType: RecipientApplicant,
		Recipient:     to,
		Type:          kind,
		Channel:       ChannelEmail,
	}
	if !h.config.EmailEnabled {
		note.Status = StatusDisabled
		return note, nil
	}

	msg, err := renderEmail(kind, data)
	if err != nil {
		return note, errors.NewNotificationError(ChannelEmail, err)
	}
	id, err := h.email.SendEmail(ctx, h.config.FromEmail, to, msg.Subject, msg.HTML, msg.Text)
	if err != nil {
		h.logger.Error("email send failed", map[string]interface{}{
			"error": err,
			"email": to,
		})
		return note, errors.NewNotificationError(ChannelEmail, err)
	}
	note.Status = StatusSent
	note.MessageID = id
	return note, nil
}

func (h *Handler) sendAdminSMS(ctx context.Context, input *Input, data templateData) []models.Notification {
	if !h.config.SMSEnabled {
		return nil
	}
	tier, ok := scoring.ParseTier(input.Tier)
	minimum, _ := scoring.ParseTier(h.config.SMSMinimumTier)
	if !ok || !tier.AtLeast(minimum) || len(h.config.AdminNumbers) == 0 {
		return nil
	}

	body, err := renderSMS(data)
	if err != nil {
		h.logger.Error("admin sms render failed", map[string]interface{}{"error": err})
		return nil
	}

	notes := make([]models.Notification, 0, len(h.config.AdminNumbers))
	for _, number := range h.config.AdminNumbers {
		note := models.Notification{
			RecipientType: RecipientAdmin,
			Recipient:     number,
			Type:          models.NotificationPremiumApplicant,
			Channel:       ChannelSMS,
		}
		id, err := h.sms.SendSMS(ctx, number, body)
		if err != nil {
			h.logger.Warn("admin sms failed", map[string]interface{}{
				"error": err,
				"phone": number,
			})
			note.Status = StatusFailed
			note.Error = err.Error()
		} else {
			note.Status = StatusSent
			note.MessageID = id
		}
		notes = append(notes, note)
	}
	return notes
}

// smsSummary reports sent when any admin was reached.
func smsSummary(enabled bool, notes []models.Notification) string {
	if !enabled {
		return StatusDisabled
	}
	if len(notes) == 0 {
		return StatusSkipped
	}
	for _, n := range notes {
		if n.Status == StatusSent {
			return StatusSent
		}
	}
	return StatusFailed
}
