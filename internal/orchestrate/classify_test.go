package orchestrate

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tscholak/devbox/internal/lambda"
)

func TestClassify_KnownCodes(t *testing.T) {
	tests := []struct {
		code      string
		kind      Kind
		retryable bool
	}{
		{code: lambda.CodeInsufficientCapacity, kind: KindCapacity, retryable: true},
		{code: lambda.CodeInvalidAPIKey, kind: KindAuth, retryable: false},
		{code: lambda.CodeAccountInactive, kind: KindAuth, retryable: false},
		{code: lambda.CodeQuotaExceeded, kind: KindQuota, retryable: false},
		{code: lambda.CodeInvalidParameters, kind: KindValidation, retryable: false},
		{code: lambda.CodeInvalidAddress, kind: KindValidation, retryable: false},
		{code: lambda.CodeFileSystemWrongRegion, kind: KindValidation, retryable: false},
		{code: lambda.CodeObjectDoesNotExist, kind: KindNotFound, retryable: false},
		{code: lambda.CodeUnknown, kind: KindUnknown, retryable: false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := &lambda.APIError{Status: 400, Code: tt.code, Message: "remote says no"}
			classified := Classify(err)

			assert.Equal(t, tt.kind, classified.Kind)
			assert.Equal(t, tt.retryable, classified.Retryable)
		})
	}
}

func TestClassify_UnrecognizedCodeIsUnknownAndFatal(t *testing.T) {
	err := &lambda.APIError{Status: 400, Code: "global/some-future-code", Message: "new failure mode"}
	classified := Classify(err)

	assert.Equal(t, KindUnknown, classified.Kind)
	assert.False(t, classified.Retryable, "unrecognized codes must never retry")
}

func TestClassify_NonAPIErrorIsUnknownAndFatal(t *testing.T) {
	classified := Classify(fmt.Errorf("connection reset by peer"))

	assert.Equal(t, KindUnknown, classified.Kind)
	assert.False(t, classified.Retryable)
}

func TestClassify_Deterministic(t *testing.T) {
	err := &lambda.APIError{Code: lambda.CodeQuotaExceeded, Message: "quota exceeded"}

	first := Classify(err)
	second := Classify(err)
	assert.Equal(t, first.Kind, second.Kind)
	assert.Equal(t, first.Retryable, second.Retryable)
}

func TestClassify_PreservesOriginalError(t *testing.T) {
	original := &lambda.APIError{Status: 403, Code: lambda.CodeInvalidAPIKey, Message: "bad key", Suggestion: "rotate it"}
	wrapped := fmt.Errorf("launch failed: %w", original)

	classified := Classify(wrapped)
	assert.Equal(t, wrapped.Error(), classified.Error(), "message must pass through unchanged")

	var apiErr *lambda.APIError
	require.True(t, errors.As(classified, &apiErr))
	assert.Equal(t, original, apiErr)
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "capacity", KindCapacity.String())
	assert.Equal(t, "auth", KindAuth.String())
	assert.Equal(t, "quota", KindQuota.String())
	assert.Equal(t, "validation", KindValidation.String())
	assert.Equal(t, "not-found", KindNotFound.String())
	assert.Equal(t, "unknown", KindUnknown.String())
}
