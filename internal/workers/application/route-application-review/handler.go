package routeapplicationreview

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
)

const TaskType = "route-application-review"

// ReviewIndex is the admin review queue; database.ElasticsearchClient satisfies it.
type ReviewIndex interface {
	EnsureIndex(ctx context.Context, index, mapping string) error
	IndexDocument(ctx context.Context, index, id string, doc interface{}) error
}

type Handler struct {
	config       *Config
	index        ReviewIndex
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
	now          func() time.Time
}

type HandlerOptions struct {
	Config *Config
	Index  ReviewIndex
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
	if opts.Index == nil {
		return nil, fmt.Errorf("%s requires a review index", TaskType)
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})

	return &Handler{
		config:       cfg,
		index:        opts.Index,
		logger:       log,
		errorHandler: errors.NewErrorHandler(log),
		now:          func() time.Time { return time.Now().UTC() },
	}, nil
}

// Setup creates the review index when it does not exist yet.
func (h *Handler) Setup(ctx context.Context) error {
	if err := h.index.EnsureIndex(ctx, h.config.Index, ReviewIndexMapping); err != nil {
		return errors.NewReviewIndexError(err)
	}
	return nil
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

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if err := validation.ValidateStruct(input,
		validation.Field(&input.ApplicationID, validation.Required),
		validation.Field(&input.Tier, validation.Required),
	); err != nil {
		return nil, errors.NewParseError(err)
	}

	tier, ok := scoring.ParseTier(input.Tier)
	if !ok {
		h.logger.Warn("unknown tier, routing as standard", map[string]interface{}{
			"applicationId": input.ApplicationID,
			"tier":          input.Tier,
		})
		tier = scoring.TierStandard
	}

	status := models.StatusPendingReview
	if input.AutoApproved {
		status = models.StatusApproved
	}
	priority := determinePriority(tier)

	doc := ReviewDocument{
		ApplicationID: input.ApplicationID,
		UserID:        input.UserID,
		Email:         input.Email,
		CompanyName:   input.CompanyName,
		Score:         input.Score,
		Tier:          string(tier),
		AutoApproved:  input.AutoApproved,
		Breakdown:     input.Breakdown,
		Disqualifiers: input.Disqualifiers,
		Status:        status,
		Priority:      priority,
		QueuedAt:      h.now(),
	}
	if err := h.index.IndexDocument(ctx, h.config.Index, input.ApplicationID, doc); err != nil {
		return nil, errors.NewReviewIndexError(err)
	}

	h.logger.Info("application routed for review", map[string]interface{}{
		"applicationId": input.ApplicationID,
		"tier":          tier,
		"status":        status,
		"priority":      priority,
	})

	return &Output{
		ReviewStatus:   status,
		ReviewPriority: priority,
		Queued:         true,
	}, nil
}

func determinePriority(tier scoring.Tier) string {
	switch tier {
	case scoring.TierPremium:
		return PriorityHigh
	case scoring.TierVerified:
		return PriorityMedium
	default:
		return PriorityLow
	}
}
