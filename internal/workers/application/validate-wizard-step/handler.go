package validatewizardstep

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"

	"connect-workers/internal/common/camunda"
	"connect-workers/internal/common/errors"
	"connect-workers/internal/common/logger"
	"connect-workers/internal/common/metrics"
	"connect-workers/internal/wizard"
	"connect-workers/internal/wizards"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "validate-wizard-step"

type Handler struct {
	config       *Config
	catalogue    *wizards.Catalogue
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
}

type HandlerOptions struct {
	Config    *Config
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
		catalogue:    catalogue,
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

func (h *Handler) Execute(_ context.Context, input *Input) (*Output, error) {
	w, err := h.catalogue.Lookup(input.WizardKind)
	if err != nil {
		return nil, errors.NewUnknownWizardError(input.WizardKind)
	}

	step := -1
	if input.Step != nil {
		step = *input.Step
		if step < 0 {
			return nil, errors.NewStepOutOfRangeError(step, len(w.Steps()))
		}
	}

	report, err := w.Validate(input.FormData, step)
	switch {
	case stderrors.Is(err, wizard.ErrStepOutOfRange):
		return nil, errors.NewStepOutOfRangeError(step, len(w.Steps()))
	case err != nil:
		return nil, errors.NewParseError(err)
	}
	if len(report.SchemaErrors) > 0 {
		return nil, errors.NewSchemaValidationError(w.Kind(), report.SchemaErrors)
	}

	output := &Output{
		IsValid: report.Valid,
		Errors:  report.Errors(),
		Steps:   report.Steps,
	}
	if step >= 0 {
		output.StepName = w.Steps()[step]
	}

	if failed, ok := report.FirstFailure(); ok {
		metrics.StepValidationFailures.WithLabelValues(w.Kind(), failed.Name).Inc()
		h.logger.Info("wizard step incomplete", map[string]interface{}{
			"wizardKind": w.Kind(),
			"step":       failed.Index,
			"errors":     failed.Errors,
		})
		if h.config.FailOnInvalid {
			return nil, errors.NewStepValidationError(w.Kind(), failed.Index, failed.Errors)
		}
	}
	return output, nil
}
