package scoreproviderapplication

import (
	"context"
	"encoding/json"
	"fmt"

	"connect-workers/internal/common/camunda"
	"connect-workers/internal/common/errors"
	"connect-workers/internal/common/logger"
	"connect-workers/internal/common/metrics"
	"connect-workers/internal/models"
	"connect-workers/internal/scoring"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "score-provider-application"

type Handler struct {
	config       *Config
	engine       *scoring.Engine
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
}

type HandlerOptions struct {
	Config *Config
	Engine *scoring.Engine
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
	engine := opts.Engine
	if engine == nil {
		engine = scoring.MustNewEngine(scoring.DefaultConfig())
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})

	return &Handler{
		config:       cfg,
		engine:       engine,
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

// Execute scores the application. Scoring is total, so it never fails.
func (h *Handler) Execute(_ context.Context, input *Input) (*Output, error) {
	result := h.engine.Score(&input.Application)

	metrics.ApplicationsScored.WithLabelValues(string(result.Tier)).Inc()
	metrics.ApplicationScore.Observe(float64(result.Score))
	status := models.StatusPendingReview
	if result.AutoApproved {
		status = models.StatusApproved
		metrics.ApplicationsAutoApproved.Inc()
	}

	h.logger.Info("application scored", map[string]interface{}{
		"applicationId": input.ApplicationID,
		"score":         result.Score,
		"tier":          result.Tier,
		"autoApproved":  result.AutoApproved,
		"breakdown":     result.Breakdown.Map(),
	})

	return &Output{
		Score:          result.Score,
		Tier:           string(result.Tier),
		AutoApproved:   result.AutoApproved,
		ScoreBreakdown: result.Breakdown.Map(),
		Disqualifiers:  result.Disqualifiers,
		ReviewStatus:   status,
	}, nil
}
