// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Wizard / validation errors
const (
	ErrCodeStepValidationFailed   ErrorCode = "STEP_VALIDATION_FAILED"
	ErrCodeStepOutOfRange         ErrorCode = "STEP_OUT_OF_RANGE"
	ErrCodeNotTerminalStep        ErrorCode = "NOT_TERMINAL_STEP"
	ErrCodeSubmitInProgress       ErrorCode = "SUBMIT_IN_PROGRESS"
	ErrCodeSchemaValidationFailed ErrorCode = "SCHEMA_VALIDATION_FAILED"
	ErrCodeUnknownWizard          ErrorCode = "UNKNOWN_WIZARD"
	ErrCodeUnknownCommand         ErrorCode = "UNKNOWN_COMMAND"
	ErrCodeParseError             ErrorCode = "PARSE_ERROR"
)

// Collaborator errors
const (
	ErrCodeSubmissionFailed     ErrorCode = "SUBMISSION_FAILED"
	ErrCodeDuplicateApplication ErrorCode = "DUPLICATE_APPLICATION"
	ErrCodeDatabaseInsertFailed ErrorCode = "DATABASE_INSERT_FAILED"
	ErrCodeSnapshotStoreFailed  ErrorCode = "SNAPSHOT_STORE_FAILED"
	ErrCodeReviewIndexFailed    ErrorCode = "REVIEW_INDEX_FAILED"
	ErrCodeNotificationFailed   ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeInternal             ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause so errors.Is keeps working across the boundary.
func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata attaches a key to Metadata and returns the receiver.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

func newError(code ErrorCode, msg, details string, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   msg,
		Details:   details,
		Retryable: GetRetryCount(code) > 0,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewStepValidationError reports the messages of a step that failed its rules.
func NewStepValidationError(wizardKind string, step int, messages []string) *StandardError {
	return newError(ErrCodeStepValidationFailed,
		"Step validation failed",
		fmt.Sprintf("wizard: %s, step: %d, errors: %s", wizardKind, step, strings.Join(messages, "; ")),
		nil,
	).WithMetadata("validationErrors", messages).WithMetadata("step", step)
}

// NewStepOutOfRangeError reports a jump outside the wizard.
func NewStepOutOfRangeError(step, total int) *StandardError {
	return newError(ErrCodeStepOutOfRange,
		"Requested step is out of range",
		fmt.Sprintf("step: %d, totalSteps: %d", step, total),
		nil,
	)
}

// NewNotTerminalStepError reports a submit attempted before the last step.
func NewNotTerminalStepError(step, total int) *StandardError {
	return newError(ErrCodeNotTerminalStep,
		"Submit is only allowed from the final step",
		fmt.Sprintf("step: %d, totalSteps: %d", step, total),
		nil,
	)
}

// NewSubmitInProgressError reports an overlapping submit.
func NewSubmitInProgressError() *StandardError {
	return newError(ErrCodeSubmitInProgress, "A submission is already in progress", "", nil)
}

// NewSchemaValidationError reports form data that does not match the wizard's shape.
func NewSchemaValidationError(wizardKind string, problems []string) *StandardError {
	return newError(ErrCodeSchemaValidationFailed,
		"Form data does not match the wizard schema",
		fmt.Sprintf("wizard: %s, errors: %s", wizardKind, strings.Join(problems, "; ")),
		nil,
	).WithMetadata("validationErrors", problems)
}

// NewUnknownWizardError reports a wizard kind missing from the catalogue.
func NewUnknownWizardError(kind string) *StandardError {
	return newError(ErrCodeUnknownWizard, "Unknown wizard kind", fmt.Sprintf("wizardKind: %s", kind), nil)
}

// NewUnknownCommandError reports an unsupported session command.
func NewUnknownCommandError(action string) *StandardError {
	return newError(ErrCodeUnknownCommand, "Unsupported wizard command", fmt.Sprintf("action: %s", action), nil)
}

// NewParseError reports malformed job variables.
func NewParseError(err error) *StandardError {
	return newError(ErrCodeParseError, "Failed to parse job variables", err.Error(), err)
}

// NewSubmissionFailedError wraps a rejection from the submission collaborator.
func NewSubmissionFailedError(err error) *StandardError {
	return newError(ErrCodeSubmissionFailed, "Application submission failed", err.Error(), err)
}

// NewDuplicateApplicationError reports an applicant who already has an application on file.
func NewDuplicateApplicationError(email string) *StandardError {
	return newError(ErrCodeDuplicateApplication,
		"An application already exists for this applicant",
		fmt.Sprintf("email: %s", email),
		nil,
	)
}

// NewDatabaseInsertError wraps a failed insert.
func NewDatabaseInsertError(err error) *StandardError {
	return newError(ErrCodeDatabaseInsertFailed, "Database insert failed", err.Error(), err)
}

// NewSnapshotStoreError wraps a failed snapshot read or write.
func NewSnapshotStoreError(key string, err error) *StandardError {
	return newError(ErrCodeSnapshotStoreFailed,
		"Wizard snapshot store unavailable",
		fmt.Sprintf("key: %s, error: %s", key, err.Error()),
		err,
	)
}

// NewReviewIndexError wraps a failed write to the admin review queue.
func NewReviewIndexError(err error) *StandardError {
	return newError(ErrCodeReviewIndexFailed, "Failed to index application for review", err.Error(), err)
}

// NewNotificationError wraps a failed email or SMS send.
func NewNotificationError(channel string, err error) *StandardError {
	return newError(ErrCodeNotificationFailed,
		"Notification send failed",
		fmt.Sprintf("channel: %s, error: %s", channel, err.Error()),
		err,
	)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to the error codes caught by boundary events.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeStepValidationFailed:   "STEP_VALIDATION_FAILED",
	ErrCodeStepOutOfRange:         "STEP_OUT_OF_RANGE",
	ErrCodeNotTerminalStep:        "NOT_TERMINAL_STEP",
	ErrCodeSubmitInProgress:       "SUBMIT_IN_PROGRESS",
	ErrCodeSchemaValidationFailed: "STEP_VALIDATION_FAILED",
	ErrCodeUnknownWizard:          "UNKNOWN_WIZARD",
	ErrCodeUnknownCommand:         "UNKNOWN_COMMAND",
	ErrCodeParseError:             "INVALID_INPUT",
	ErrCodeSubmissionFailed:       "SUBMISSION_FAILED",
	ErrCodeDuplicateApplication:   "DUPLICATE_APPLICATION",
	ErrCodeDatabaseInsertFailed:   "DATABASE_INSERT_FAILED",
	ErrCodeSnapshotStoreFailed:    "SNAPSHOT_STORE_FAILED",
	ErrCodeReviewIndexFailed:      "REVIEW_INDEX_FAILED",
	ErrCodeNotificationFailed:     "NOTIFICATION_SEND_FAILED",
}

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseInsertFailed,
		ErrCodeSnapshotStoreFailed,
		ErrCodeReviewIndexFailed,
		ErrCodeNotificationFailed:
		return 3

	case ErrCodeSubmissionFailed:
		return 1

	default:
		return 0 // business errors are thrown, not retried
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	if msgs, ok := stdErr.Metadata["validationErrors"]; ok {
		vars["validationErrors"] = msgs
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "STEP") || strings.Contains(codeStr, "SUBMIT_IN_PROGRESS") ||
		strings.Contains(codeStr, "WIZARD") || strings.Contains(codeStr, "COMMAND"):
		return "WIZARD"
	case strings.Contains(codeStr, "VALIDATION") || strings.Contains(codeStr, "PARSE"):
		return "VALIDATION"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "DUPLICATE"):
		return "DATABASE"
	case strings.Contains(codeStr, "SNAPSHOT"):
		return "CACHE"
	case strings.Contains(codeStr, "REVIEW"):
		return "SEARCH"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "SUBMISSION"):
		return "SUBMISSION"
	default:
		return "OTHER"
	}
}
