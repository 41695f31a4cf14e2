package createapplicationrecord

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"
	"time"

	"connect-workers/internal/common/database"
	"connect-workers/internal/common/errors"
	"connect-workers/internal/common/logger"
	"connect-workers/internal/models"
	"connect-workers/internal/wizards"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const providerForm = `{
  "full_name": "Jane Doe",
  "email": "jane@inboxcraft.co",
  "company_name": "InboxCraft",
  "years_email_marketing": "5+",
  "platforms": ["Klaviyo", "Mailchimp"],
  "expertise_areas": ["Abandoned Cart Recovery", "Segmentation Strategy", "A/B Testing"],
  "case_studies": [
    {"title": "Apparel", "challenge": "c", "solution": "s", "results": "r"},
    {"title": "Beauty", "challenge": "c", "solution": "s", "results": "r"}
  ],
  "portfolio_url": "https://inboxcraft.co/work",
  "linkedin_url": "https://www.linkedin.com/in/janedoe",
  "performance_guarantee": "yes",
  "agree_to_terms": true
}`

func setupHandler(t *testing.T) (*Handler, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	h, err := NewHandler(HandlerOptions{
		DB:     database.NewPostgresFromDB(db),
		Logger: logger.NewTestLogger(t),
	})
	require.NoError(t, err)
	return h, mock
}

func providerInput() *Input {
	return &Input{UserID: "user-001", FormData: json.RawMessage(providerForm)}
}

func codeOf(t *testing.T, err error) errors.ErrorCode {
	t.Helper()
	var stdErr *errors.StandardError
	require.True(t, stderrors.As(err, &stdErr), "expected StandardError, got %v", err)
	return stdErr.Code
}

func TestHandler_Execute_ProviderApplication(t *testing.T) {
	h, mock := setupHandler(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("jane@inboxcraft.co").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(`INSERT INTO provider_applications`).
		WithArgs(
			sqlmock.AnyArg(), // id
			"user-001",
			"jane@inboxcraft.co",
			"InboxCraft",
			sqlmock.AnyArg(), // application_data
			95,
			"premium",
			true,
			sqlmock.AnyArg(), // score_breakdown
			models.StatusApproved,
			sqlmock.AnyArg(), // created_at
		).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()
	mock.ExpectExec(`INSERT INTO audit_log`).
		WithArgs("provider_application_created", "provider_application", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	out, err := h.Execute(context.Background(), providerInput())

	require.NoError(t, err)
	assert.NotEmpty(t, out.ApplicationID)
	assert.Equal(t, models.StatusApproved, out.ApplicationStatus)
	assert.Equal(t, 95, out.Score)
	assert.Equal(t, "premium", out.Tier)
	assert.True(t, out.AutoApproved)
	assert.Equal(t, 15, out.ScoreBreakdown["guarantee"])
	_, err = time.Parse(time.RFC3339, out.CreatedAt)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_DuplicateApplication(t *testing.T) {
	h, mock := setupHandler(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("jane@inboxcraft.co").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	out, err := h.Execute(context.Background(), providerInput())

	assert.Nil(t, out)
	assert.ErrorIs(t, err, ErrDuplicateApplication)
	assert.Equal(t, errors.ErrCodeDuplicateApplication, codeOf(t, err))
	assert.Zero(t, errors.ConvertToBPMNError(errors.Normalize(err)).Retries)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_InsertError(t *testing.T) {
	h, mock := setupHandler(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT EXISTS`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(`INSERT INTO provider_applications`).
		WillReturnError(stderrors.New("connection reset by peer"))
	mock.ExpectRollback()

	_, err := h.Execute(context.Background(), providerInput())

	assert.ErrorIs(t, err, ErrDatabaseInsertFailed)
	assert.Contains(t, err.Error(), "insert failed")
	assert.Equal(t, errors.ErrCodeDatabaseInsertFailed, codeOf(t, err))
	assert.Equal(t, 3, errors.ConvertToBPMNError(errors.Normalize(err)).Retries)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_DuplicateCheckError(t *testing.T) {
	h, mock := setupHandler(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT EXISTS`).WillReturnError(stderrors.New("database connection failed"))
	mock.ExpectRollback()

	_, err := h.Execute(context.Background(), providerInput())

	assert.ErrorIs(t, err, ErrDatabaseInsertFailed)
	assert.Contains(t, err.Error(), "duplicate check failed")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_AuditFailureIsNotFatal(t *testing.T) {
	h, mock := setupHandler(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT EXISTS`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(`INSERT INTO provider_applications`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()
	mock.ExpectExec(`INSERT INTO audit_log`).
		WillReturnError(stderrors.New("audit table locked"))

	out, err := h.Execute(context.Background(), providerInput())

	require.NoError(t, err)
	assert.NotEmpty(t, out.ApplicationID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_IncompleteFormIsRejected(t *testing.T) {
	h, mock := setupHandler(t)

	_, err := h.Execute(context.Background(), &Input{
		UserID:   "user-001",
		FormData: json.RawMessage(`{"full_name":"Jane Doe","email":"jane@inboxcraft.co"}`),
	})

	assert.Equal(t, errors.ErrCodeStepValidationFailed, codeOf(t, err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_FounderApplication(t *testing.T) {
	h, mock := setupHandler(t)

	mock.ExpectExec(`INSERT INTO wizard_submissions`).
		WithArgs(sqlmock.AnyArg(), wizards.KindFounderApplication, "user-002", sqlmock.AnyArg(), SubmissionStatusReceived, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO audit_log`).
		WithArgs("wizard_submitted", wizards.KindFounderApplication, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	out, err := h.Execute(context.Background(), &Input{
		UserID:     "user-002",
		WizardKind: wizards.KindFounderApplication,
		FormData: json.RawMessage(`{
			"contact_name": "Sam", "contact_email": "sam@acme.co", "business_name": "Acme", "industry": "Apparel",
			"monthly_revenue": "50k-100k", "goals": ["grow list"],
			"budget_range": "2k-5k", "timeline": "this quarter",
			"agree_to_terms": true
		}`),
	})

	require.NoError(t, err)
	assert.Equal(t, SubmissionStatusReceived, out.ApplicationStatus)
	assert.Zero(t, out.Score)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_UnknownWizard(t *testing.T) {
	h, _ := setupHandler(t)
	_, err := h.Execute(context.Background(), &Input{WizardKind: "onboarding"})
	assert.Equal(t, errors.ErrCodeUnknownWizard, codeOf(t, err))
}

func TestRecorder_SubmitForm(t *testing.T) {
	h, mock := setupHandler(t)
	ctx := context.Background()

	_, err := h.Recorder().SubmitForm(ctx, wizards.KindProviderApplication, "user-001", map[string]interface{}{})
	assert.Error(t, err)

	var app models.ProviderApplication
	require.NoError(t, json.Unmarshal([]byte(providerForm), &app))
	app.Platforms = []string{"Mailchimp"}

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT EXISTS`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(`INSERT INTO provider_applications`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()
	mock.ExpectExec(`INSERT INTO audit_log`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	res, err := h.Recorder().SubmitForm(ctx, wizards.KindProviderApplication, "user-001", app)

	require.NoError(t, err)
	assert.Equal(t, models.StatusPendingReview, res.Status)
	rec, ok := res.Payload.(*models.ApplicationRecord)
	require.True(t, ok)
	assert.Equal(t, 95, rec.Score)
	assert.False(t, rec.AutoApproved)
	assert.NoError(t, mock.ExpectationsWereMet())
}
