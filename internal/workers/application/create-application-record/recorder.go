package createapplicationrecord

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"connect-workers/internal/common/database"
	"connect-workers/internal/common/errors"
	"connect-workers/internal/common/logger"
	"connect-workers/internal/models"
	"connect-workers/internal/scoring"
	"connect-workers/internal/wizard"
	"connect-workers/internal/wizards"

	"github.com/google/uuid"
)

var (
	ErrDatabaseInsertFailed = stderrors.New("DATABASE_INSERT_FAILED")
	ErrDuplicateApplication = stderrors.New("DUPLICATE_APPLICATION")
)

// SubmissionStatusReceived is the status of a stored non-provider wizard submission.
const SubmissionStatusReceived = "received"

// Recorder persists submitted wizards. Provider applications are scored and
// stored with their review status; other wizards land in wizard_submissions.
type Recorder struct {
	db     *database.PostgresClient
	engine *scoring.Engine
	logger logger.Logger
	now    func() time.Time
}

func NewRecorder(db *database.PostgresClient, engine *scoring.Engine, log logger.Logger) *Recorder {
	return &Recorder{db: db, engine: engine, logger: log, now: time.Now}
}

// Record scores app and inserts it. An applicant email that is already on
// file is rejected with ErrDuplicateApplication.
func (r *Recorder) Record(ctx context.Context, userID string, app *models.ProviderApplication) (*models.ApplicationRecord, error) {
	result := r.engine.Score(app)
	status := models.StatusPendingReview
	if result.AutoApproved {
		status = models.StatusApproved
	}
	rec := &models.ApplicationRecord{
		ID:           uuid.New().String(),
		UserID:       userID,
		Email:        app.Email,
		CompanyName:  app.CompanyName,
		Score:        result.Score,
		Tier:         string(result.Tier),
		AutoApproved: result.AutoApproved,
		Breakdown:    result.Breakdown.Map(),
		Status:       status,
		SubmittedAt:  r.now().UTC().Truncate(time.Second),
	}

	data, err := json.Marshal(app)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDatabaseInsertFailed, errors.NewDatabaseInsertError(err))
	}
	breakdown, err := json.Marshal(rec.Breakdown)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDatabaseInsertFailed, errors.NewDatabaseInsertError(err))
	}

	err = r.db.InTx(ctx, func(tx *sql.Tx) error {
		var exists bool
		if err := tx.QueryRowContext(ctx, `
			SELECT EXISTS(
				SELECT 1 FROM provider_applications
				WHERE lower(email) = lower($1)
			)`, app.Email).Scan(&exists); err != nil {
			return fmt.Errorf("%w: duplicate check failed: %w", ErrDatabaseInsertFailed, errors.NewDatabaseInsertError(err))
		}
		if exists {
			return fmt.Errorf("%w: %w", ErrDuplicateApplication, errors.NewDuplicateApplicationError(app.Email))
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO provider_applications (
				id, user_id, email, company_name, application_data,
				score, tier, auto_approved, score_breakdown, status, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)`,
			rec.ID, rec.UserID, rec.Email, rec.CompanyName, data,
			rec.Score, rec.Tier, rec.AutoApproved, breakdown, rec.Status, rec.SubmittedAt,
		)
		if err != nil {
			return fmt.Errorf("%w: insert failed: %w", ErrDatabaseInsertFailed, errors.NewDatabaseInsertError(err))
		}
		return nil
	})
	if err != nil {
		if !stderrors.Is(err, ErrDuplicateApplication) && !stderrors.Is(err, ErrDatabaseInsertFailed) {
			err = fmt.Errorf("%w: %w", ErrDatabaseInsertFailed, errors.NewDatabaseInsertError(err))
		}
		return nil, err
	}

	r.audit(ctx, "provider_application_created", "provider_application", rec.ID, map[string]interface{}{
		"userId":       rec.UserID,
		"score":        rec.Score,
		"tier":         rec.Tier,
		"autoApproved": rec.AutoApproved,
	}, rec.SubmittedAt)

	r.logger.Info("provider application recorded", map[string]interface{}{
		"applicationId": rec.ID,
		"userId":        rec.UserID,
		"score":         rec.Score,
		"tier":          rec.Tier,
		"status":        rec.Status,
	})
	return rec, nil
}

// RecordSubmission stores a completed non-provider wizard and returns its id.
func (r *Recorder) RecordSubmission(ctx context.Context, kind, userID string, data any) (string, time.Time, error) {
	id := uuid.New().String()
	createdAt := r.now().UTC().Truncate(time.Second)

	raw, err := json.Marshal(data)
	if err != nil {
		return "", createdAt, fmt.Errorf("%w: %w", ErrDatabaseInsertFailed, errors.NewDatabaseInsertError(err))
	}
	_, err = r.db.DB.ExecContext(ctx, `
		INSERT INTO wizard_submissions (id, wizard_kind, user_id, form_data, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		id, kind, userID, raw, SubmissionStatusReceived, createdAt,
	)
	if err != nil {
		return "", createdAt, fmt.Errorf("%w: insert failed: %w", ErrDatabaseInsertFailed, errors.NewDatabaseInsertError(err))
	}

	r.audit(ctx, "wizard_submitted", kind, id, map[string]interface{}{"userId": userID}, createdAt)
	return id, createdAt, nil
}

// SubmitForm stores the typed value of any catalogue wizard. It is the
// submission hook of wizard sessions driven by job commands.
func (r *Recorder) SubmitForm(ctx context.Context, kind, userID string, data any) (wizard.SubmitResult, error) {
	if kind == wizards.KindProviderApplication {
		app, ok := data.(models.ProviderApplication)
		if !ok {
			return wizard.SubmitResult{}, fmt.Errorf("provider application submitted as %T", data)
		}
		return r.ForUser(userID).Submit(ctx, app)
	}

	id, _, err := r.RecordSubmission(ctx, kind, userID, data)
	if err != nil {
		return wizard.SubmitResult{}, err
	}
	return wizard.SubmitResult{ID: id, Status: SubmissionStatusReceived}, nil
}

// ForUser binds the recorder to one applicant as a provider wizard submitter.
func (r *Recorder) ForUser(userID string) wizard.Submitter[models.ProviderApplication] {
	return wizard.SubmitterFunc[models.ProviderApplication](func(ctx context.Context, app models.ProviderApplication) (wizard.SubmitResult, error) {
		rec, err := r.Record(ctx, userID, &app)
		if err != nil {
			return wizard.SubmitResult{}, err
		}
		return wizard.SubmitResult{ID: rec.ID, Status: rec.Status, Payload: rec}, nil
	})
}

// audit writes an audit_log row. Failures are logged only.
func (r *Recorder) audit(ctx context.Context, event, resourceType, resourceID string, details map[string]interface{}, at time.Time) {
	raw, err := json.Marshal(details)
	if err != nil {
		r.logger.Warn("failed to marshal audit log details", map[string]interface{}{"error": err})
		raw = []byte("{}")
	}
	_, err = r.db.DB.ExecContext(ctx, `
		INSERT INTO audit_log (event_type, resource_type, resource_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		event, resourceType, resourceID, raw, at,
	)
	if err != nil {
		r.logger.Warn("audit log insert failed", map[string]interface{}{
			"error":      err,
			"resourceId": resourceID,
		})
	}
}
