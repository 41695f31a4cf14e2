package wizardsessioncommand

import (
	"encoding/json"

	"connect-workers/internal/scoring"
	"connect-workers/internal/wizard"
	"connect-workers/internal/wizards"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Session commands.
const (
	ActionRestore = "restore"
	ActionUpdate  = "update"
	ActionNext    = "next"
	ActionPrev    = "prev"
	ActionGoTo    = "goto"
	ActionSubmit  = "submit"
)

type Input struct {
	WizardKind string `json:"wizardKind"`
	Role       string `json:"role"`
	UserID     string `json:"userId"`
	Action     string `json:"action"`
	// FormData is merged into the form before the action runs.
	FormData json.RawMessage `json:"formData,omitempty"`
	Step     int             `json:"step,omitempty"`
}

type Output struct {
	Session      wizards.State             `json:"session"`
	Restored     bool                      `json:"restored"`
	Moved        bool                      `json:"moved"`
	Submitted    bool                      `json:"submitted"`
	Submission   *wizard.SubmitResult      `json:"submission,omitempty"`
	ScorePreview *scoring.ApplicationScore `json:"scorePreview,omitempty"`
}

// Validate checks the fields every command needs.
func (i Input) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.WizardKind, validation.Required),
		validation.Field(&i.Role, validation.Required),
		validation.Field(&i.UserID, validation.Required),
		validation.Field(&i.Action, validation.Required),
	)
}
