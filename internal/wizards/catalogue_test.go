package wizards

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"connect-workers/internal/models"
	"connect-workers/internal/wizard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const completeProvider = `{
  "full_name": "Jane Doe",
  "email": "jane@inboxcraft.co",
  "company_name": "InboxCraft",
  "website": "https://inboxcraft.co",
  "years_email_marketing": "5+",
  "platforms": ["Klaviyo"],
  "expertise_areas": ["Abandoned Cart Recovery", "Segmentation Strategy"],
  "case_studies": [{"title": "Apparel", "challenge": "c", "solution": "s", "results": "r"}],
  "portfolio_url": "https://inboxcraft.co/work",
  "linkedin_url": "https://www.linkedin.com/in/janedoe",
  "performance_guarantee": "yes",
  "agree_to_terms": true
}`

func TestDefault(t *testing.T) {
	c := Default()
	assert.Equal(t, []string{KindClientAcquisition, KindFounderApplication, KindProviderApplication}, c.Kinds())

	w, err := c.Lookup(KindProviderApplication)
	require.NoError(t, err)
	assert.Equal(t, []string{"basics", "experience", "expertise", "case-studies", "commitment"}, w.Steps())

	w, err = c.Lookup(KindFounderApplication)
	require.NoError(t, err)
	assert.Len(t, w.Steps(), 4)

	w, err = c.Lookup(KindClientAcquisition)
	require.NoError(t, err)
	assert.Len(t, w.Steps(), 3)

	_, err = c.Lookup("onboarding")
	assert.ErrorIs(t, err, ErrUnknownWizard)
}

func TestNewCatalogue_DuplicateKindPanics(t *testing.T) {
	w := newForm("Client acquisition", clientAcquisition, clientSchema)
	assert.Panics(t, func() { NewCatalogue(w, w) })
}

func TestValidate(t *testing.T) {
	provider, err := Default().Lookup(KindProviderApplication)
	require.NoError(t, err)

	t.Run("complete application passes every step", func(t *testing.T) {
		report, err := provider.Validate([]byte(completeProvider), -1)
		require.NoError(t, err)
		assert.True(t, report.Valid)
		assert.Len(t, report.Steps, 5)
		assert.Empty(t, report.Errors())
	})

	t.Run("single expertise area fails the expertise step", func(t *testing.T) {
		report, err := provider.Validate([]byte(`{"expertise_areas":["A/B Testing"]}`), 2)
		require.NoError(t, err)
		assert.False(t, report.Valid)
		require.Len(t, report.Steps, 1)
		assert.Equal(t, "expertise", report.Steps[0].Name)
		assert.Equal(t, []string{"Please select at least 2 expertise areas"}, report.Steps[0].Errors)
	})

	t.Run("first failure across all steps", func(t *testing.T) {
		report, err := provider.Validate([]byte(`{"full_name":"Jane","email":"nope","company_name":"IC"}`), -1)
		require.NoError(t, err)
		first, ok := report.FirstFailure()
		require.True(t, ok)
		assert.Equal(t, 0, first.Index)
		assert.Equal(t, []string{"Email is not valid"}, first.Errors)
	})

	t.Run("declined terms", func(t *testing.T) {
		report, err := provider.Validate([]byte(`{"performance_guarantee":"no","agree_to_terms":false}`), 4)
		require.NoError(t, err)
		assert.Equal(t, []string{"You must agree to the terms"}, report.Steps[0].Errors)
	})

	t.Run("wrong types are rejected before the rules run", func(t *testing.T) {
		report, err := provider.Validate([]byte(`{"platforms":"Klaviyo","full_name":7}`), -1)
		require.NoError(t, err)
		assert.False(t, report.Valid)
		assert.Len(t, report.SchemaErrors, 2)
		assert.Empty(t, report.Steps)
	})

	t.Run("step out of range", func(t *testing.T) {
		_, err := provider.Validate([]byte(`{}`), 5)
		assert.ErrorIs(t, err, wizard.ErrStepOutOfRange)
	})

	t.Run("not json", func(t *testing.T) {
		_, err := provider.Validate([]byte(`{`), -1)
		assert.Error(t, err)
	})
}

func TestFounderBusinessStep(t *testing.T) {
	founder, err := Default().Lookup(KindFounderApplication)
	require.NoError(t, err)

	report, err := founder.Validate([]byte(`{"contact_name":"Sam","contact_email":"sam@acme.co","business_name":"Acme"}`), 0)
	require.NoError(t, err)
	assert.False(t, report.Valid)
	assert.Equal(t, []string{"Industry is required"}, report.Steps[0].Errors)
}

func TestController(t *testing.T) {
	ctx := context.Background()
	client, err := Default().Lookup(KindClientAcquisition)
	require.NoError(t, err)

	var submitted models.ClientAcquisition
	var observed int
	ctrl, err := client.Open(SessionOptions{
		Initial:  json.RawMessage(`{"contact_name":"Sam"}`),
		Observer: func(any) { observed++ },
		Submit: func(_ context.Context, kind string, data any) (wizard.SubmitResult, error) {
			assert.Equal(t, KindClientAcquisition, kind)
			form, ok := data.(models.ClientAcquisition)
			if !ok {
				return wizard.SubmitResult{}, errors.New("unexpected form type")
			}
			submitted = form
			return wizard.SubmitResult{ID: "lead-1", Status: "received"}, nil
		},
	})
	require.NoError(t, err)

	state := ctrl.State()
	assert.Equal(t, "contact", state.StepName)
	assert.Equal(t, 3, state.TotalSteps)
	assert.False(t, state.Validation.IsValid)

	require.NoError(t, ctrl.Merge(ctx, json.RawMessage(`{"contact_email":"sam@acme.co","company_name":"Acme"}`)))
	require.NoError(t, ctrl.Next(ctx))
	require.NoError(t, ctrl.Merge(ctx, json.RawMessage(`{"services_needed":["flows"],"project_description":"Welcome series"}`)))
	require.NoError(t, ctrl.Next(ctx))

	_, err = ctrl.Submit(ctx)
	var stepErr *wizard.StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, "confirm", stepErr.Name)

	require.NoError(t, ctrl.Merge(ctx, json.RawMessage(`{"consent_to_contact":true}`)))
	res, err := ctrl.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, "lead-1", res.ID)
	assert.Equal(t, "Sam", submitted.ContactName)
	assert.Equal(t, 3, observed)

	state = ctrl.State()
	assert.True(t, state.IsTerminal)
	assert.Equal(t, 100, state.Progress)
}

func TestOpen_MalformedInitialData(t *testing.T) {
	founder, err := Default().Lookup(KindFounderApplication)
	require.NoError(t, err)

	ctrl, err := founder.Open(SessionOptions{Initial: json.RawMessage(`{"goals":"grow list"}`)})
	assert.Nil(t, ctrl)
	assert.ErrorContains(t, err, "initial data")

	_, err = founder.Open(SessionOptions{Initial: json.RawMessage(`{`)})
	assert.Error(t, err)
}

func TestCheckShape(t *testing.T) {
	provider, err := Default().Lookup(KindProviderApplication)
	require.NoError(t, err)

	problems, err := provider.CheckShape([]byte(`{"email":"jane@inboxcraft.co"}`))
	require.NoError(t, err)
	assert.Empty(t, problems)

	problems, err = provider.CheckShape([]byte(`{"platforms":"Klaviyo"}`))
	require.NoError(t, err)
	require.Len(t, problems, 1)
	assert.Contains(t, problems[0], "platforms")

	_, err = provider.CheckShape([]byte(`{`))
	assert.Error(t, err)
}
