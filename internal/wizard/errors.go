package wizard

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoNextStep       = errors.New("already on the final step")
	ErrStepOutOfRange   = errors.New("step out of range")
	ErrNotTerminalStep  = errors.New("submit is only allowed from the final step")
	ErrSubmitInProgress = errors.New("submission already in progress")
	ErrAlreadySubmitted = errors.New("wizard already submitted")
	ErrNoSubmitter      = errors.New("wizard has no submitter")
)

// StepError lists every validation failure of one step.
type StepError struct {
	Wizard string
	Step   int
	Name   string
	Errors []string
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s step %d (%s) is incomplete: %s", e.Wizard, e.Step, e.Name, strings.Join(e.Errors, "; "))
}

// SubmissionError wraps a rejection from the submission collaborator. The
// session stays on the final step with its data intact.
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string {
	return "submission failed: " + e.Err.Error()
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}
