package createapplicationrecord

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"connect-workers/internal/common/camunda"
	"connect-workers/internal/common/database"
	"connect-workers/internal/common/errors"
	"connect-workers/internal/common/logger"
	"connect-workers/internal/models"
	"connect-workers/internal/scoring"
	"connect-workers/internal/wizards"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "create-application-record"

type Handler struct {
	config       *Config
	recorder     *Recorder
	catalogue    *wizards.Catalogue
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
}

type HandlerOptions struct {
	Config    *Config
	DB        *database.PostgresClient
	Engine    *scoring.Engine
	Catalogue *wizards.Catalogue
	Logger    logger.Logger
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}
	if opts.DB == nil {
		return nil, fmt.Errorf("%s requires a database", TaskType)
	}
	engine := opts.Engine
	if engine == nil {
		engine = scoring.MustNewEngine(scoring.DefaultConfig())
	}
	catalogue := opts.Catalogue
	if catalogue == nil {
		catalogue = wizards.Default()
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})

	return &Handler{
		config:       cfg,
		recorder:     NewRecorder(opts.DB, engine, log),
		catalogue:    catalogue,
		logger:       log,
		errorHandler: errors.NewErrorHandler(log),
	}, nil
}

// Recorder exposes the submission collaborator for wizard sessions.
func (h *Handler) Recorder() *Recorder {
	return h.recorder
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

// Execute checks the form is complete, then records it.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	kind := input.WizardKind
	if kind == "" {
		kind = wizards.KindProviderApplication
	}
	w, err := h.catalogue.Lookup(kind)
	if err != nil {
		return nil, errors.NewUnknownWizardError(kind)
	}

	report, err := w.Validate(input.FormData, -1)
	if err != nil {
		return nil, errors.NewParseError(err)
	}
	if len(report.SchemaErrors) > 0 {
		return nil, errors.NewSchemaValidationError(kind, report.SchemaErrors)
	}
	if failed, ok := report.FirstFailure(); ok {
		return nil, errors.NewStepValidationError(kind, failed.Index, failed.Errors)
	}

	if kind != wizards.KindProviderApplication {
		var data map[string]interface{}
		if err := json.Unmarshal(input.FormData, &data); err != nil {
			return nil, errors.NewParseError(err)
		}
		id, createdAt, err := h.recorder.RecordSubmission(ctx, kind, input.UserID, data)
		if err != nil {
			return nil, err
		}
		return &Output{
			ApplicationID:     id,
			ApplicationStatus: SubmissionStatusReceived,
			CreatedAt:         createdAt.Format(time.RFC3339),
		}, nil
	}

	var app models.ProviderApplication
	if err := json.Unmarshal(input.FormData, &app); err != nil {
		return nil, errors.NewParseError(err)
	}
	rec, err := h.recorder.Record(ctx, input.UserID, &app)
	if err != nil {
		return nil, err
	}
	return &Output{
		ApplicationID:     rec.ID,
		ApplicationStatus: rec.Status,
		Score:             rec.Score,
		Tier:              rec.Tier,
		AutoApproved:      rec.AutoApproved,
		ScoreBreakdown:    rec.Breakdown,
		CreatedAt:         rec.SubmittedAt.Format(time.RFC3339),
	}, nil
}
