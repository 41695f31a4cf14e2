// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// LoadRegistry reads and validates a registry file.
func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("decode registry %s: %w", path, err)
	}
	if err := reg.Validate(); err != nil {
		return nil, fmt.Errorf("registry %s: %w", path, err)
	}
	return &reg, nil
}

// Find returns the activity for taskType.
func (r *ActivityRegistry) Find(taskType string) (Activity, bool) {
	for _, a := range r.Activities {
		if a.TaskType == taskType {
			return a, true
		}
	}
	return Activity{}, false
}

// Validate checks every activity and rejects duplicate task types.
func (r *ActivityRegistry) Validate() error {
	seen := make(map[string]bool, len(r.Activities))
	for i := range r.Activities {
		a := &r.Activities[i]
		if err := a.Validate(); err != nil {
			return fmt.Errorf("activity %d (%s): %w", i, a.TaskType, err)
		}
		if seen[a.TaskType] {
			return fmt.Errorf("task type %s listed twice", a.TaskType)
		}
		seen[a.TaskType] = true
	}
	return nil
}

func (a *Activity) Validate() error {
	return validation.ValidateStruct(a,
		validation.Field(&a.TaskType, validation.Required),
		validation.Field(&a.DisplayName, validation.Required),
		validation.Field(&a.Category, validation.Required, validation.In("wizard", "application", "communication")),
		validation.Field(&a.Timeout, validation.Required, validation.By(isDuration)),
		validation.Field(&a.Retries, validation.Min(0)),
	)
}

func isDuration(v interface{}) error {
	s, _ := v.(string)
	if _, err := time.ParseDuration(s); err != nil {
		return fmt.Errorf("must be a duration such as 30s")
	}
	return nil
}

// Default is the registry of the workers shipped in this module.
func Default() *ActivityRegistry {
	return &ActivityRegistry{
		Version:     "1.0.0",
		LastUpdated: "2026-03-01",
		Activities: []Activity{
			{
				TaskType:    "wizard-session-command",
				DisplayName: "Wizard Session Command",
				Description: "Restores a user's wizard session, merges form data and applies a navigation or submit command.",
				Category:    "wizard",
				Inputs:      []string{"wizardKind", "role", "userId", "action", "formData", "step"},
				Outputs:     []string{"session", "restored", "moved", "submitted", "submission", "scorePreview"},
				ErrorCodes:  []string{"STEP_VALIDATION_FAILED", "STEP_OUT_OF_RANGE", "NOT_TERMINAL_STEP", "SUBMIT_IN_PROGRESS", "SUBMISSION_FAILED", "DUPLICATE_APPLICATION", "SNAPSHOT_STORE_FAILED", "UNKNOWN_WIZARD", "UNKNOWN_COMMAND"},
				Timeout:     "10s",
				Retries:     3,
			},
			{
				TaskType:    "validate-wizard-step",
				DisplayName: "Validate Wizard Step",
				Description: "Evaluates one step, or every step, of a wizard against a form document.",
				Category:    "wizard",
				Inputs:      []string{"wizardKind", "formData", "step"},
				Outputs:     []string{"isValid", "errors", "stepName", "steps"},
				ErrorCodes:  []string{"STEP_VALIDATION_FAILED", "STEP_OUT_OF_RANGE", "SCHEMA_VALIDATION_FAILED", "UNKNOWN_WIZARD"},
				Timeout:     "5s",
			},
			{
				TaskType:    "score-provider-application",
				DisplayName: "Score Provider Application",
				Description: "Scores a provider application, assigns its tier and decides auto-approval.",
				Category:    "application",
				Inputs:      []string{"applicationId", "application"},
				Outputs:     []string{"score", "tier", "autoApproved", "scoreBreakdown", "disqualifiers", "reviewStatus"},
				ErrorCodes:  []string{"INVALID_INPUT"},
				Timeout:     "5s",
			},
			{
				TaskType:    "create-application-record",
				DisplayName: "Create Application Record",
				Description: "Revalidates a submitted form and stores it with its score.",
				Category:    "application",
				Inputs:      []string{"userId", "wizardKind", "formData"},
				Outputs:     []string{"applicationId", "applicationStatus", "score", "tier", "autoApproved", "scoreBreakdown", "createdAt"},
				ErrorCodes:  []string{"STEP_VALIDATION_FAILED", "SCHEMA_VALIDATION_FAILED", "DUPLICATE_APPLICATION", "DATABASE_INSERT_FAILED"},
				Timeout:     "10s",
				Retries:     3,
			},
			{
				TaskType:    "route-application-review",
				DisplayName: "Route Application Review",
				Description: "Sets review status and priority and queues the application for admins.",
				Category:    "application",
				Inputs:      []string{"applicationId", "email", "companyName", "score", "tier", "autoApproved"},
				Outputs:     []string{"reviewStatus", "reviewPriority", "queued"},
				ErrorCodes:  []string{"REVIEW_INDEX_FAILED"},
				Timeout:     "10s",
				Retries:     3,
			},
			{
				TaskType:    "send-notification",
				DisplayName: "Send Notification",
				Description: "Emails the applicant and texts admins about high-tier applicants.",
				Category:    "communication",
				Inputs:      []string{"applicationId", "email", "fullName", "companyName", "score", "tier", "autoApproved"},
				Outputs:     []string{"notifications", "emailStatus", "smsStatus", "sentAt"},
				ErrorCodes:  []string{"NOTIFICATION_SEND_FAILED"},
				Timeout:     "30s",
				Retries:     3,
			},
		},
	}
}
