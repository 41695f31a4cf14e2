package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertToBPMNError(t *testing.T) {
	tests := []struct {
		name          string
		err           *StandardError
		wantCode      string
		wantRetries   int
		wantRetryable bool
	}{
		{
			name:        "step validation is thrown",
			err:         NewStepValidationError("provider-application", 1, []string{"Email is required"}),
			wantCode:    "STEP_VALIDATION_FAILED",
			wantRetries: 0,
		},
		{
			name:        "schema failure maps onto the step validation boundary",
			err:         NewSchemaValidationError("founder-application", []string{"industry: Invalid type"}),
			wantCode:    "STEP_VALIDATION_FAILED",
			wantRetries: 0,
		},
		{
			name:          "insert failure is retried",
			err:           NewDatabaseInsertError(fmt.Errorf("connection reset")),
			wantCode:      "DATABASE_INSERT_FAILED",
			wantRetries:   3,
			wantRetryable: true,
		},
		{
			name:        "duplicate is a business error",
			err:         NewDuplicateApplicationError("a@b.co"),
			wantCode:    "DUPLICATE_APPLICATION",
			wantRetries: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bpmn := ConvertToBPMNError(tt.err)
			assert.Equal(t, tt.wantCode, bpmn.Code)
			assert.Equal(t, tt.wantRetries, bpmn.Retries)
			assert.Equal(t, tt.wantRetryable, bpmn.Retryable)
			assert.Equal(t, string(tt.err.Code), bpmn.ErrorVariables["originalErrorCode"])
		})
	}
}

func TestStepValidationErrorCarriesMessages(t *testing.T) {
	err := NewStepValidationError("provider-application", 2, []string{"a", "b"})
	vars := ConvertToBPMNError(err).ToErrorVariables()
	assert.Equal(t, []string{"a", "b"}, vars["validationErrors"])
	assert.Equal(t, "STEP_VALIDATION_FAILED", vars["errorCode"])
}

func TestNormalize(t *testing.T) {
	cause := stderrors.New("redis down")
	wrapped := fmt.Errorf("saving snapshot: %w", NewSnapshotStoreError("k", cause))

	got := Normalize(wrapped)
	assert.Equal(t, ErrCodeSnapshotStoreFailed, got.Code)
	assert.True(t, stderrors.Is(got, cause))

	plain := Normalize(stderrors.New("boom"))
	require.NotNil(t, plain)
	assert.Equal(t, ErrCodeInternal, plain.Code)
	assert.False(t, plain.Retryable)
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "WIZARD", GetErrorCategory(ErrCodeStepOutOfRange))
	assert.Equal(t, "WIZARD", GetErrorCategory(ErrCodeSubmitInProgress))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeSchemaValidationFailed))
	assert.Equal(t, "DATABASE", GetErrorCategory(ErrCodeDuplicateApplication))
	assert.Equal(t, "CACHE", GetErrorCategory(ErrCodeSnapshotStoreFailed))
	assert.Equal(t, "SEARCH", GetErrorCategory(ErrCodeReviewIndexFailed))
	assert.Equal(t, "NOTIFICATION", GetErrorCategory(ErrCodeNotificationFailed))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))
}
