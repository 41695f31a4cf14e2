package wizardsessioncommand

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"

	"connect-workers/internal/common/camunda"
	"connect-workers/internal/common/database"
	"connect-workers/internal/common/errors"
	"connect-workers/internal/common/logger"
	"connect-workers/internal/models"
	"connect-workers/internal/scoring"
	"connect-workers/internal/wizard"
	"connect-workers/internal/wizards"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const TaskType = "wizard-session-command"

// FormSubmitter stores a completed wizard for a user.
type FormSubmitter interface {
	SubmitForm(ctx context.Context, kind, userID string, data any) (wizard.SubmitResult, error)
}

// Tracer opens spans; observability.Observability satisfies it.
type Tracer interface {
	StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, trace.Span)
}

type Handler struct {
	config       *Config
	catalogue    *wizards.Catalogue
	store        *wizard.SnapshotStore
	submitter    FormSubmitter
	engine       *scoring.Engine
	tracer       Tracer
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
}

type HandlerOptions struct {
	Config    *Config
	Catalogue *wizards.Catalogue
	// Redis backs snapshots unless Store is set.
	Redis     *database.RedisClient
	Store     *wizard.SnapshotStore
	Submitter FormSubmitter
	Engine    *scoring.Engine
	Tracer    Tracer
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
	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})

	store := opts.Store
	switch {
	case store != nil:
	case opts.Redis != nil:
		store = wizard.NewSnapshotStore(wizard.NewRedisKV(opts.Redis, cfg.SnapshotTTL), cfg.KeyPrefix)
	default:
		log.Warn("no snapshot backend configured, sessions are kept in memory", nil)
		store = wizard.NewSnapshotStore(wizard.NewMemoryKV(), cfg.KeyPrefix)
	}

	catalogue := opts.Catalogue
	if catalogue == nil {
		catalogue = wizards.Default()
	}
	engine := opts.Engine
	if engine == nil {
		engine = scoring.MustNewEngine(scoring.DefaultConfig())
	}

	return &Handler{
		config:       cfg,
		catalogue:    catalogue,
		store:        store,
		submitter:    opts.Submitter,
		engine:       engine,
		tracer:       opts.Tracer,
		logger:       log,
		errorHandler: errors.NewErrorHandler(log),
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

// Execute restores the user's session, merges any form data and applies the
// action. The session is persisted by the wizard itself after every change.
func (h *Handler) Execute(ctx context.Context, input *Input) (out *Output, err error) {
	ctx, span := h.startSpan(ctx, input)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if err := input.Validate(); err != nil {
		return nil, errors.NewParseError(err)
	}
	w, err := h.catalogue.Lookup(input.WizardKind)
	if err != nil {
		return nil, errors.NewUnknownWizardError(input.WizardKind)
	}

	key := wizard.SnapshotKey{WizardKind: input.WizardKind, Role: input.Role, UserID: input.UserID}
	var preview *scoring.ApplicationScore
	opts := wizards.SessionOptions{
		Store:    h.store,
		Key:      key,
		Logger:   h.logger,
		Observer: func(data any) { preview = h.preview(data) },
	}
	if h.submitter != nil {
		userID := input.UserID
		opts.Submit = func(ctx context.Context, kind string, data any) (wizard.SubmitResult, error) {
			return h.submitter.SubmitForm(ctx, kind, userID, data)
		}
	}
	ctrl, err := w.Open(opts)
	if err != nil {
		return nil, errors.NewParseError(err)
	}

	restored, err := ctrl.Restore(ctx)
	if err != nil {
		return nil, errors.NewSnapshotStoreError(key.String(), err)
	}
	out = &Output{Restored: restored}

	if len(input.FormData) > 0 && input.Action != ActionRestore {
		problems, err := w.CheckShape(input.FormData)
		if err != nil {
			return nil, errors.NewParseError(err)
		}
		if len(problems) > 0 {
			return nil, errors.NewSchemaValidationError(input.WizardKind, problems)
		}
		if err := ctrl.Merge(ctx, input.FormData); err != nil {
			return nil, errors.NewParseError(err)
		}
	}

	before := ctrl.State().CurrentStep
	switch input.Action {
	case ActionRestore, ActionUpdate:
	case ActionNext:
		err = ctrl.Next(ctx)
	case ActionPrev:
		ctrl.Prev(ctx)
	case ActionGoTo:
		err = ctrl.GoTo(ctx, input.Step)
	case ActionSubmit:
		var res wizard.SubmitResult
		if res, err = ctrl.Submit(ctx); err == nil {
			out.Submitted = true
			out.Submission = &res
		}
	default:
		return nil, errors.NewUnknownCommandError(input.Action)
	}

	state := ctrl.State()
	if err != nil {
		return nil, h.translate(input, state, err)
	}

	out.Session = state
	out.Moved = state.CurrentStep != before
	if preview == nil {
		preview = h.preview(state.FormData)
	}
	out.ScorePreview = preview

	h.logger.Info("wizard command applied", map[string]interface{}{
		"wizardKind":  input.WizardKind,
		"userId":      input.UserID,
		"action":      input.Action,
		"currentStep": state.CurrentStep,
		"moved":       out.Moved,
		"submitted":   out.Submitted,
	})
	return out, nil
}

// preview scores provider forms; other wizards have no score.
func (h *Handler) preview(data any) *scoring.ApplicationScore {
	app, ok := data.(models.ProviderApplication)
	if !ok {
		return nil
	}
	score := h.engine.Score(&app)
	return &score
}

func (h *Handler) translate(input *Input, state wizards.State, err error) error {
	var stepErr *wizard.StepError
	var subErr *wizard.SubmissionError
	var stdErr *errors.StandardError

	switch {
	case stderrors.As(err, &stepErr):
		return errors.NewStepValidationError(input.WizardKind, stepErr.Step, stepErr.Errors)
	case stderrors.Is(err, wizard.ErrStepOutOfRange):
		return errors.NewStepOutOfRangeError(input.Step, state.TotalSteps)
	case stderrors.Is(err, wizard.ErrNoNextStep):
		return errors.NewStepOutOfRangeError(state.CurrentStep+1, state.TotalSteps)
	case stderrors.Is(err, wizard.ErrNotTerminalStep):
		return errors.NewNotTerminalStepError(state.CurrentStep, state.TotalSteps)
	case stderrors.Is(err, wizard.ErrSubmitInProgress):
		return errors.NewSubmitInProgressError()
	case stderrors.As(err, &subErr):
		if stderrors.As(subErr.Err, &stdErr) {
			return err
		}
		return errors.NewSubmissionFailedError(subErr.Err)
	default:
		return err
	}
}

func (h *Handler) startSpan(ctx context.Context, input *Input) (context.Context, trace.Span) {
	if h.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return h.tracer.StartSpan(ctx, TaskType, map[string]string{
		"wizard.kind":   input.WizardKind,
		"wizard.action": input.Action,
	})
}
