package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const application = `{
  "full_name": "Jane Doe",
  "email": "jane@inboxcraft.co",
  "company_name": "InboxCraft",
  "years_email_marketing": "5+",
  "platforms": ["Klaviyo"],
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

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestWizardsCommand(t *testing.T) {
	out, err := run(t, "", "wizards")
	require.NoError(t, err)
	assert.Contains(t, out, "provider-application (Provider application)")
	assert.Contains(t, out, "  4. case-studies")
	assert.Contains(t, out, "client-acquisition")
}

func TestValidateCommand(t *testing.T) {
	out, err := run(t, application, "validate", "provider-application", "-")
	require.NoError(t, err)

	var report map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, true, report["isValid"])

	_, err = run(t, `{"expertise_areas":["A/B Testing"]}`, "validate", "provider-application", "-", "--step", "2")
	assert.ErrorIs(t, err, errIncomplete)

	_, err = run(t, "{}", "validate", "onboarding", "-")
	assert.Error(t, err)
}

func TestScoreCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "application.json")
	require.NoError(t, os.WriteFile(path, []byte(application), 0o600))

	out, err := run(t, "", "score", path)
	require.NoError(t, err)

	var score struct {
		Score        int    `json:"score"`
		Tier         string `json:"tier"`
		AutoApproved bool   `json:"autoApproved"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &score))
	assert.Equal(t, 95, score.Score)
	assert.Equal(t, "premium", score.Tier)
	assert.True(t, score.AutoApproved)

	_, err = run(t, "", "score", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = run(t, "not json", "score", "-")
	assert.Error(t, err)
}

func TestWorkersCommand(t *testing.T) {
	out, err := run(t, "", "workers")
	require.NoError(t, err)
	assert.Contains(t, out, "wizard-session-command")
	assert.Contains(t, out, "errors: NOTIFICATION_SEND_FAILED")

	_, err = run(t, "", "workers", "--registry", filepath.Join(t.TempDir(), "none.json"))
	assert.Error(t, err)
}
