package validatewizardstep

import (
	"encoding/json"

	"connect-workers/internal/wizards"
)

type Input struct {
	WizardKind string          `json:"wizardKind"`
	FormData   json.RawMessage `json:"formData"`
	// Step is the 0-based step to check; nil checks every step.
	Step *int `json:"step,omitempty"`
}

type Output struct {
	IsValid  bool                 `json:"isValid"`
	Errors   []string             `json:"errors"`
	StepName string               `json:"stepName,omitempty"`
	Steps    []wizards.StepReport `json:"steps"`
}
