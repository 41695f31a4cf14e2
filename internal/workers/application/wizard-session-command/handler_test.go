package wizardsessioncommand

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"
	"time"

	"connect-workers/internal/common/database"
	"connect-workers/internal/common/errors"
	"connect-workers/internal/common/logger"
	"connect-workers/internal/common/observability"
	"connect-workers/internal/models"
	"connect-workers/internal/wizard"
	"connect-workers/internal/wizards"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

type fakeSubmitter struct {
	calls  int
	userID string
	data   any
	err    error
}

func (f *fakeSubmitter) SubmitForm(_ context.Context, kind, userID string, data any) (wizard.SubmitResult, error) {
	f.calls++
	f.userID = userID
	f.data = data
	if f.err != nil {
		return wizard.SubmitResult{}, f.err
	}
	return wizard.SubmitResult{ID: "app-1", Status: "approved"}, nil
}

func newTestHandler(t *testing.T, sub FormSubmitter, opts ...func(*HandlerOptions)) (*Handler, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := database.NewRedisFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = client.Close() })

	o := HandlerOptions{
		Config:    DefaultConfig(),
		Catalogue: wizards.Default(),
		Redis:     client,
		Submitter: sub,
		Logger:    logger.NewTestLogger(t),
	}
	for _, fn := range opts {
		fn(&o)
	}
	h, err := NewHandler(o)
	require.NoError(t, err)
	return h, mr
}

func codeOf(t *testing.T, err error) errors.ErrorCode {
	t.Helper()
	var stdErr *errors.StandardError
	require.True(t, stderrors.As(err, &stdErr), "expected StandardError, got %v", err)
	return stdErr.Code
}

func command(action, formData string) *Input {
	in := &Input{
		WizardKind: wizards.KindProviderApplication,
		Role:       "provider",
		UserID:     "u-42",
		Action:     action,
	}
	if formData != "" {
		in.FormData = json.RawMessage(formData)
	}
	return in
}

var providerSteps = []string{
	`{"full_name":"Jane Doe","email":"jane@inboxcraft.co","company_name":"InboxCraft","website":"https://inboxcraft.co"}`,
	`{"years_email_marketing":"5+","platforms":["Klaviyo"]}`,
	`{"expertise_areas":["Abandoned Cart Recovery","Segmentation Strategy"]}`,
	`{"case_studies":[{"title":"Apparel","challenge":"c","solution":"s","results":"r"}],"portfolio_url":"https://inboxcraft.co/work","linkedin_url":"https://www.linkedin.com/in/janedoe"}`,
}

func TestHandler_Execute_ProviderFlow(t *testing.T) {
	sub := &fakeSubmitter{}
	h, mr := newTestHandler(t, sub)
	ctx := context.Background()

	out, err := h.Execute(ctx, command(ActionRestore, ""))
	require.NoError(t, err)
	assert.False(t, out.Restored)
	assert.Equal(t, "basics", out.Session.StepName)
	assert.Equal(t, 5, out.Session.TotalSteps)

	for i, data := range providerSteps {
		out, err = h.Execute(ctx, command(ActionNext, data))
		require.NoError(t, err, "step %d", i)
		assert.True(t, out.Restored)
		assert.True(t, out.Moved)
		assert.Equal(t, i+1, out.Session.CurrentStep)
	}
	assert.True(t, out.Session.IsTerminal)
	assert.Equal(t, 100, out.Session.Progress)
	require.NotNil(t, out.ScorePreview)
	assert.Greater(t, out.ScorePreview.Score, 0)
	assert.True(t, mr.Exists("wizard:provider-application_provider_u-42"))

	out, err = h.Execute(ctx, command(ActionSubmit, `{"performance_guarantee":"yes","agree_to_terms":true}`))
	require.NoError(t, err)
	assert.True(t, out.Submitted)
	require.NotNil(t, out.Submission)
	assert.Equal(t, "app-1", out.Submission.ID)

	assert.Equal(t, 1, sub.calls)
	assert.Equal(t, "u-42", sub.userID)
	app, ok := sub.data.(models.ProviderApplication)
	require.True(t, ok)
	assert.Equal(t, "InboxCraft", app.CompanyName)
	assert.False(t, mr.Exists("wizard:provider-application_provider_u-42"))
}

func TestHandler_Execute_IncompleteStep(t *testing.T) {
	h, _ := newTestHandler(t, nil)

	_, err := h.Execute(context.Background(), command(ActionNext, `{"full_name":"Jane","email":"nope"}`))
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeStepValidationFailed, codeOf(t, err))

	var stdErr *errors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, []string{"Email is not valid", "Company name is required"}, stdErr.Metadata["validationErrors"])

	// The merged data was kept even though the move failed.
	out, err := h.Execute(context.Background(), command(ActionRestore, ""))
	require.NoError(t, err)
	assert.True(t, out.Restored)
	assert.Equal(t, 0, out.Session.CurrentStep)
	assert.Equal(t, "Jane", out.Session.FormData.(models.ProviderApplication).FullName)
}

func TestHandler_Execute_Navigation(t *testing.T) {
	h, _ := newTestHandler(t, nil)
	ctx := context.Background()

	_, err := h.Execute(ctx, command(ActionNext, providerSteps[0]))
	require.NoError(t, err)

	out, err := h.Execute(ctx, command(ActionPrev, ""))
	require.NoError(t, err)
	assert.True(t, out.Moved)
	assert.Equal(t, 0, out.Session.CurrentStep)

	out, err = h.Execute(ctx, command(ActionPrev, ""))
	require.NoError(t, err)
	assert.False(t, out.Moved)

	jump := command(ActionGoTo, "")
	jump.Step = 3
	_, err = h.Execute(ctx, jump)
	assert.Equal(t, errors.ErrCodeStepValidationFailed, codeOf(t, err))

	jump.Step = 9
	_, err = h.Execute(ctx, jump)
	assert.Equal(t, errors.ErrCodeStepOutOfRange, codeOf(t, err))

	jump.Step = 1
	out, err = h.Execute(ctx, jump)
	require.NoError(t, err)
	assert.True(t, out.Moved)
	assert.Equal(t, "experience", out.Session.StepName)
}

func TestHandler_Execute_SubmitBeforeFinalStep(t *testing.T) {
	h, _ := newTestHandler(t, &fakeSubmitter{})

	_, err := h.Execute(context.Background(), command(ActionSubmit, providerSteps[0]))
	assert.Equal(t, errors.ErrCodeNotTerminalStep, codeOf(t, err))
}

func TestHandler_Execute_SubmitterRejects(t *testing.T) {
	sub := &fakeSubmitter{err: errors.NewDuplicateApplicationError("jane@inboxcraft.co")}
	h, mr := newTestHandler(t, sub)
	ctx := context.Background()

	for _, data := range providerSteps {
		_, err := h.Execute(ctx, command(ActionNext, data))
		require.NoError(t, err)
	}

	_, err := h.Execute(ctx, command(ActionSubmit, `{"performance_guarantee":"yes","agree_to_terms":true}`))
	assert.Equal(t, errors.ErrCodeDuplicateApplication, codeOf(t, err))
	assert.True(t, mr.Exists("wizard:provider-application_provider_u-42"))

	sub.err = stderrors.New("connection reset")
	_, err = h.Execute(ctx, command(ActionSubmit, ""))
	assert.Equal(t, errors.ErrCodeSubmissionFailed, codeOf(t, err))
}

func TestHandler_Execute_BadCommands(t *testing.T) {
	h, _ := newTestHandler(t, nil)
	ctx := context.Background()

	_, err := h.Execute(ctx, command("skip", ""))
	assert.Equal(t, errors.ErrCodeUnknownCommand, codeOf(t, err))

	in := command(ActionUpdate, "")
	in.WizardKind = "onboarding"
	_, err = h.Execute(ctx, in)
	assert.Equal(t, errors.ErrCodeUnknownWizard, codeOf(t, err))

	in = command(ActionUpdate, "")
	in.UserID = ""
	_, err = h.Execute(ctx, in)
	assert.Equal(t, errors.ErrCodeParseError, codeOf(t, err))

	in = command(ActionUpdate, "")
	in.Role = ""
	_, err = h.Execute(ctx, in)
	assert.Equal(t, errors.ErrCodeParseError, codeOf(t, err))

	_, err = h.Execute(ctx, command(ActionUpdate, `{"platforms":`))
	assert.Equal(t, errors.ErrCodeParseError, codeOf(t, err))
}

func TestHandler_Execute_FormDataShapeCheckedBeforeMerge(t *testing.T) {
	h, mr := newTestHandler(t, nil)
	ctx := context.Background()

	_, err := h.Execute(ctx, command(ActionUpdate, `{"platforms":"Klaviyo","full_name":7}`))

	var stdErr *errors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, errors.ErrCodeSchemaValidationFailed, stdErr.Code)
	problems, ok := stdErr.Metadata["validationErrors"].([]string)
	require.True(t, ok)
	assert.Len(t, problems, 2)
	assert.False(t, mr.Exists("wizard:provider-application_provider_u-42"))
}

func TestHandler_Execute_UsersWithUnderscoresKeepSeparateSessions(t *testing.T) {
	h, mr := newTestHandler(t, nil)
	ctx := context.Background()

	alice := command(ActionUpdate, `{"company_name":"Alice Co"}`)
	alice.Role, alice.UserID = "service_provider", "42"
	_, err := h.Execute(ctx, alice)
	require.NoError(t, err)
	assert.True(t, mr.Exists("wizard:provider-application_service%5Fprovider_42"))

	bob := command(ActionRestore, "")
	bob.Role, bob.UserID = "service", "provider_42"
	out, err := h.Execute(ctx, bob)
	require.NoError(t, err)
	assert.False(t, out.Restored)
	app, ok := out.Session.FormData.(models.ProviderApplication)
	require.True(t, ok)
	assert.Empty(t, app.CompanyName)
}

func TestHandler_Execute_SnapshotStoreDown(t *testing.T) {
	h, mr := newTestHandler(t, nil)
	mr.Close()

	_, err := h.Execute(context.Background(), command(ActionRestore, ""))
	assert.Equal(t, errors.ErrCodeSnapshotStoreFailed, codeOf(t, err))
}

func TestHandler_Execute_Tracing(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	obs, err := observability.New("connect-workers-test", observability.WithSpanProcessor(rec))
	require.NoError(t, err)
	defer func() { _ = obs.Shutdown(context.Background()) }()

	h, _ := newTestHandler(t, nil, func(o *HandlerOptions) { o.Tracer = obs })

	_, err = h.Execute(context.Background(), command(ActionUpdate, `{"full_name":"Jane"}`))
	require.NoError(t, err)
	_, err = h.Execute(context.Background(), command("skip", ""))
	require.Error(t, err)

	ended := rec.Ended()
	require.Len(t, ended, 2)
	assert.Equal(t, TaskType, ended[0].Name())
	assert.Equal(t, codes.Unset, ended[0].Status().Code)
	assert.Equal(t, codes.Error, ended[1].Status().Code)
}

func TestNewHandler_MemoryFallback(t *testing.T) {
	h, err := NewHandler(HandlerOptions{Config: &Config{MaxJobsActive: 1, Timeout: time.Second}})
	require.NoError(t, err)

	_, err = h.Execute(context.Background(), command(ActionUpdate, `{"full_name":"Jane"}`))
	require.NoError(t, err)
	out, err := h.Execute(context.Background(), command(ActionRestore, ""))
	require.NoError(t, err)
	assert.True(t, out.Restored)
}

func TestNewHandler_InvalidConfig(t *testing.T) {
	_, err := NewHandler(HandlerOptions{Config: &Config{MaxJobsActive: 0, Timeout: time.Second}})
	assert.Error(t, err)
}
